package report

import (
	"time"

	"github.com/l3lackShark/procmon/monitor"
	"github.com/l3lackShark/procmon/stats"
	"github.com/l3lackShark/procmon/sysinfo"
)

type (
	// Summary is the machine readable form of the printed report.
	Summary struct {
		GeneratedAt       time.Time      `json:"generatedAt"`
		Username          string         `json:"username"`
		Process           string         `json:"process"`
		Ticks             int            `json:"ticks"`
		Pids              []PidSummary   `json:"pids"`
		EffectiveTotalSec *float64       `json:"effectiveTotalSec,omitempty"`
		CPU               *MetricSummary `json:"cpu,omitempty"`
		RAM               *MetricSummary `json:"ram,omitempty"`
		Host              sysinfo.Host   `json:"host"`
		Facts             sysinfo.Facts  `json:"facts"`
	}

	PidSummary struct {
		PID        string  `json:"pid"`
		ElapsedSec float64 `json:"elapsedSec"`
	}

	// MetricSummary carries percentages. MB is filled for memory only.
	MetricSummary struct {
		Samples int                `json:"samples"`
		Values  map[string]float64 `json:"values"`
		MB      map[string]float64 `json:"mb,omitempty"`
		Errors  map[string]string  `json:"errors,omitempty"`
	}
)

// Names of the figures in MetricSummary maps.
const (
	FigMax           = "max"
	FigMin           = "min"
	FigMean          = "mean"
	FigMedian        = "median"
	FigNonZeroMedian = "nonZeroMedian"
	FigMode          = "mode"
	FigStdDev        = "stdDev"
)

// Build computes the summary document of a session.
func Build(s *monitor.Session, host sysinfo.Host, at time.Time) Summary {
	sum := Summary{
		GeneratedAt: at,
		Username:    s.Username,
		Process:     s.Process,
		Ticks:       s.Series.Len(),
		Host:        host,
		Facts:       s.Facts,
	}

	for _, d := range s.Tracker.Durations() {
		sum.Pids = append(sum.Pids, PidSummary{PID: d.PID, ElapsedSec: seconds(d.Elapsed)})
	}
	if total, ok := s.Tracker.EffectiveTotal(); ok {
		sec := seconds(total)
		sum.EffectiveTotalSec = &sec
	}

	sum.CPU = metricSummary(s.Series.CPU, 0)
	sum.RAM = metricSummary(s.Series.Mem, s.Facts.TotalMemoryMB)
	return sum
}

func metricSummary(series []float64, totalMB int64) *MetricSummary {
	d, err := stats.Describe(series)
	if err != nil {
		return nil
	}

	m := &MetricSummary{
		Samples: d.Samples,
		Values:  make(map[string]float64),
		Errors:  make(map[string]string),
	}
	if totalMB > 0 {
		m.MB = make(map[string]float64)
	}

	add := func(name string, f stats.Figure) {
		if !f.OK() {
			m.Errors[name] = f.Err.Error()
			return
		}
		m.Values[name] = f.Value
		if m.MB != nil {
			m.MB[name] = stats.ToMB(totalMB, f.Value)
		}
	}

	add(FigMax, d.Max)
	add(FigMin, d.Min)
	add(FigMean, d.Mean)
	add(FigMedian, d.Median)
	if d.NonZeroMedian != nil {
		add(FigNonZeroMedian, *d.NonZeroMedian)
	}
	add(FigMode, d.Mode)
	add(FigStdDev, d.StdDev)

	if len(m.Errors) == 0 {
		m.Errors = nil
	}
	return m
}

func seconds(d time.Duration) float64 {
	return stats.Round(d.Seconds(), 3)
}
