package report_test

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"emperror.dev/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/l3lackShark/procmon/config"
	"github.com/l3lackShark/procmon/monitor"
	"github.com/l3lackShark/procmon/report"
	"github.com/l3lackShark/procmon/sampler"
	"github.com/l3lackShark/procmon/sysinfo"
)

type staticHost sysinfo.Host

func (h staticHost) Host() sysinfo.Host { return sysinfo.Host(h) }

type panickingHost struct{}

func (panickingHost) Host() sysinfo.Host { panic("resolver exploded") }

var facts = sysinfo.Facts{TotalMemoryMB: 16000, CPUCount: 8, CPUMHz: 2400}

func newSession(cpu, mem []float64) *monitor.Session {
	s := monitor.NewSession(config.Default(), facts, "alice", "worker", zerolog.Nop())
	start := time.Unix(1000, 0)
	for i := range cpu {
		s.RecordTick(sampler.TickResult{
			PIDs:  []string{"42"},
			CPU:   cpu[i],
			Mem:   mem[i],
			Found: true,
		}, start.Add(time.Duration(i)*time.Second))
	}
	return s
}

func summarize(t *testing.T, host report.HostSource, s *monitor.Session) string {
	t.Helper()
	var buf bytes.Buffer
	report.New(host, nil, zerolog.Nop()).Summarize(&buf, s)
	return buf.String()
}

func TestSummarizeEmptySession(t *testing.T) {
	out := summarize(t, staticHost{Hostname: "box", IP: "10.0.0.7"}, newSession(nil, nil))

	assert.Contains(t, out, "No information available for CPU for process worker")
	assert.Contains(t, out, "No information available for RAM for process worker")
	assert.NotContains(t, out, "Effective total time")
	assert.Contains(t, out, "Machine hostname box")
}

func TestSummarizeScenario(t *testing.T) {
	s := newSession([]float64{0, 0, 2, 4, 0}, []float64{1, 1, 1, 1, 1})
	out := summarize(t, staticHost{Hostname: "box", IP: "10.0.0.7"}, s)

	expected := []string{
		"*************** SUMMARY for 'worker' process ***************",
		"for pid = 42 Total time= 4 sec",
		"Effective total time taken is 4 sec",
		"********** CPU **********",
		"Max CPU usage: 4%",
		"Min CPU usage: 0%",
		"Avg CPU usage: 1.2%",
		"Median CPU usage: 0%",
		"Non-zero Median CPU usage: 3%",
		"Mode CPU usage: 0%",
		"P.Std.Dev CPU: 1.6%",
		"********** RAM **********",
		"Max RAM usage: 1% \ti.e. 160 MB",
		"Median RAM usage: 1% \ti.e. 160 MB",
		"Mode RAM usage: 1% \ti.e. 160 MB",
		"P.Std.Dev RAM: 0% \ti.e. 0 MB",
		"********** SYSTEM INFORMATION **********",
		"Machine hostname box",
		"IP Address: 10.0.0.7",
		"Total RAM on the system 16000 MB i.e. 15.63 GB",
		"CPU count on the system = 8",
		"CPU clock cycles are 2400 MHz i.e. 2.4 GHz",
	}

	lines := strings.Split(out, "\n")
	require.True(t, strings.HasPrefix(lines[0], "Current Time is : "))

	// every expected line appears, in order
	idx := 0
	for _, l := range lines {
		if idx < len(expected) && l == expected[idx] {
			idx++
		}
	}
	assert.Equal(t, len(expected), idx, "missing or misplaced line %q in:\n%s", expected[min(idx, len(expected)-1)], out)
	assert.NotContains(t, out, "Non-zero Median RAM")
}

func TestSummarizeUndefinedModeOnlyAffectsItsLine(t *testing.T) {
	s := newSession([]float64{1, 2, 3}, []float64{0.5, 0.5, 0.7})
	out := summarize(t, staticHost{}, s)

	assert.Contains(t, out, "DEBUG: CPU% list is [1 2 3]")
	assert.NotContains(t, out, "Mode CPU usage")
	assert.Contains(t, out, "P.Std.Dev CPU:")
	assert.Contains(t, out, "Mode RAM usage: 0.5%")
}

func TestSummarizeIsolatesPanickingBlock(t *testing.T) {
	s := newSession([]float64{1, 1}, []float64{1, 1})
	out := summarize(t, panickingHost{}, s)

	assert.Contains(t, out, "Mode RAM usage: 1%")
	assert.Contains(t, out, "DEBUG: system information unavailable")
}

type fakeRenderer struct {
	fail    map[string]bool
	metrics []string
}

func (f *fakeRenderer) Render(metric string, series []float64, process string, _ time.Time) (string, error) {
	if f.fail[metric] {
		return "", errors.NewPlain("no backend")
	}
	f.metrics = append(f.metrics, metric)
	return metric + "_vs_TIME_" + process + ".png", nil
}

func TestPlot(t *testing.T) {
	s := newSession([]float64{1, 2}, []float64{3, 4})

	r := &fakeRenderer{}
	paths, err := report.New(nil, r, zerolog.Nop()).Plot(s)
	require.NoError(t, err)
	assert.Equal(t, []string{"CPU_vs_TIME_worker.png", "RAM_vs_TIME_worker.png"}, paths)

	r = &fakeRenderer{fail: map[string]bool{"CPU": true}}
	paths, err = report.New(nil, r, zerolog.Nop()).Plot(s)
	require.Error(t, err)
	var rerr *report.RenderUnavailableError
	require.True(t, errors.As(err, &rerr))
	assert.Equal(t, "CPU", rerr.Metric)
	assert.Equal(t, []string{"RAM_vs_TIME_worker.png"}, paths)
}

func TestPlotWithoutRenderer(t *testing.T) {
	paths, err := report.New(nil, nil, zerolog.Nop()).Plot(newSession([]float64{1}, []float64{1}))
	assert.NoError(t, err)
	assert.Empty(t, paths)
}

func TestPlotSkipsEmptySeries(t *testing.T) {
	r := &fakeRenderer{}
	paths, err := report.New(nil, r, zerolog.Nop()).Plot(newSession(nil, nil))
	assert.NoError(t, err)
	assert.Empty(t, paths)
	assert.Empty(t, r.metrics)
}

func TestBuild(t *testing.T) {
	s := newSession([]float64{0, 0, 2, 4, 0}, []float64{1, 1, 1, 1, 1})
	at := time.Unix(2000, 0)

	sum := report.Build(s, sysinfo.Host{Hostname: "box"}, at)

	assert.Equal(t, 5, sum.Ticks)
	require.Len(t, sum.Pids, 1)
	assert.Equal(t, 4.0, sum.Pids[0].ElapsedSec)
	require.NotNil(t, sum.EffectiveTotalSec)
	assert.Equal(t, 4.0, *sum.EffectiveTotalSec)

	require.NotNil(t, sum.CPU)
	assert.Equal(t, 3.0, sum.CPU.Values[report.FigNonZeroMedian])
	assert.Nil(t, sum.CPU.MB)

	require.NotNil(t, sum.RAM)
	assert.Equal(t, 160.0, sum.RAM.MB[report.FigMedian])
	assert.Empty(t, sum.RAM.Errors)

	empty := report.Build(newSession(nil, nil), sysinfo.Host{}, at)
	assert.Nil(t, empty.CPU)
	assert.Nil(t, empty.RAM)
	assert.Nil(t, empty.EffectiveTotalSec)
}

func TestPlotLogsHintOncePerFailedMetric(t *testing.T) {
	var logs bytes.Buffer
	r := &fakeRenderer{fail: map[string]bool{"CPU": true, "RAM": true}}

	_, err := report.New(nil, r, zerolog.New(&logs)).Plot(newSession([]float64{1}, []float64{2}))
	require.Error(t, err)
	assert.Equal(t, 2, strings.Count(logs.String(), report.RenderHint))
}
