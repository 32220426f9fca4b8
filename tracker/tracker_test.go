package tracker_test

import (
	"testing"
	"time"

	"github.com/go-test/deep"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/l3lackShark/procmon/tracker"
)

func at(sec int64) time.Time { return time.Unix(sec, 0) }

func TestObserve(t *testing.T) {
	tr := tracker.New()

	assert.True(t, tr.Observe("123", at(1)))
	assert.False(t, tr.Observe("123", at(4)))
	assert.True(t, tr.Observe("456", at(4)))

	expected := []tracker.Duration{
		{PID: "123", Elapsed: 3 * time.Second},
		{PID: "456", Elapsed: 0},
	}
	if diff := deep.Equal(tr.Durations(), expected); diff != nil {
		t.Error(diff)
	}

	records := tr.Records()
	require.Len(t, records, 2)
	assert.Equal(t, at(1), records[0].FirstSeen)
	assert.Equal(t, at(4), records[0].LastSeen)
}

func TestEffectiveTotalUsesInsertionOrder(t *testing.T) {
	tr := tracker.New()

	tr.Observe("A", at(10))
	tr.Observe("B", at(5)) // earlier than A, still not the first record
	tr.Observe("B", at(90))
	tr.Observe("C", at(20))
	tr.Observe("C", at(50))

	total, ok := tr.EffectiveTotal()
	require.True(t, ok)
	assert.Equal(t, 40*time.Second, total)
}

func TestEffectiveTotalEmpty(t *testing.T) {
	_, ok := tracker.New().EffectiveTotal()
	assert.False(t, ok)
	assert.Empty(t, tracker.New().Durations())
}

func TestDiff(t *testing.T) {
	tr := tracker.New()

	observe := func(sec int64, pids ...string) {
		for _, pid := range pids {
			tr.Observe(pid, at(sec))
		}
	}

	observe(1, "1", "2")
	appeared, vanished := tr.Diff([]string{"1", "2"})
	assert.Equal(t, []string{"1", "2"}, appeared)
	assert.Empty(t, vanished)

	observe(2, "2", "3", "3")
	appeared, vanished = tr.Diff([]string{"2", "3", "3"})
	assert.Equal(t, []string{"3"}, appeared)
	assert.Equal(t, []string{"1"}, vanished)

	appeared, vanished = tr.Diff(nil)
	assert.Empty(t, appeared)
	assert.Equal(t, []string{"2", "3"}, vanished)

	// records survive disappearance
	assert.Equal(t, 3, tr.Len())
}
