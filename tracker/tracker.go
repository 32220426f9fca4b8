// Package tracker remembers when each pid was first and last listed.
package tracker

import "time"

type (
	// Record is how long a pid was visible. It is never removed; a pid that
	// stops being listed keeps the LastSeen of its final observation.
	Record struct {
		PID       string    `json:"pid"`
		FirstSeen time.Time `json:"firstSeen"`
		LastSeen  time.Time `json:"lastSeen"`
	}

	Duration struct {
		PID     string        `json:"pid"`
		Elapsed time.Duration `json:"elapsed"`
	}

	Tracker struct {
		order   []string
		records map[string]*Record
		//pids listed by the previous Diff call
		active map[string]struct{}
	}
)

func New() *Tracker {
	return &Tracker{
		records: make(map[string]*Record),
		active:  make(map[string]struct{}),
	}
}

// Observe records pid at now and reports whether it was seen for the first time.
func (t *Tracker) Observe(pid string, now time.Time) bool {
	if r, exists := t.records[pid]; exists {
		r.LastSeen = now
		return false
	}
	t.records[pid] = &Record{PID: pid, FirstSeen: now, LastSeen: now}
	t.order = append(t.order, pid)
	return true
}

func (t *Tracker) Len() int { return len(t.order) }

// Records returns copies in first-observation order.
func (t *Tracker) Records() []Record {
	out := make([]Record, 0, len(t.order))
	for _, pid := range t.order {
		out = append(out, *t.records[pid])
	}
	return out
}

// Durations returns LastSeen-FirstSeen per pid in first-observation order.
func (t *Tracker) Durations() []Duration {
	out := make([]Duration, 0, len(t.order))
	for _, pid := range t.order {
		r := t.records[pid]
		out = append(out, Duration{PID: pid, Elapsed: r.LastSeen.Sub(r.FirstSeen)})
	}
	return out
}

// EffectiveTotal is the last-inserted pid's LastSeen minus the first-inserted
// pid's FirstSeen. It follows insertion order, not the earliest and latest
// timestamps, so reused or overlapping pids make it an approximation.
// ok is false when nothing was observed.
func (t *Tracker) EffectiveTotal() (total time.Duration, ok bool) {
	if len(t.order) == 0 {
		return 0, false
	}
	first := t.records[t.order[0]]
	last := t.records[t.order[len(t.order)-1]]
	return last.LastSeen.Sub(first.FirstSeen), true
}

// Diff compares the pids listed in this tick with those of the previous call
// and returns the newly listed and no longer listed ones, in input and
// first-observation order respectively.
func (t *Tracker) Diff(seen []string) (appeared, vanished []string) {
	current := make(map[string]struct{}, len(seen))
	for _, pid := range seen {
		if _, dup := current[pid]; dup {
			continue
		}
		current[pid] = struct{}{}
		if _, exists := t.active[pid]; !exists {
			appeared = append(appeared, pid)
		}
	}

	for _, pid := range t.order {
		if _, was := t.active[pid]; !was {
			continue
		}
		if _, still := current[pid]; !still {
			vanished = append(vanished, pid)
		}
	}

	t.active = current
	return appeared, vanished
}
