// Package report renders the end-of-run summary of a monitoring session.
package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"emperror.dev/errors"
	"github.com/rs/zerolog"

	"github.com/l3lackShark/procmon/monitor"
	"github.com/l3lackShark/procmon/stats"
	"github.com/l3lackShark/procmon/sysinfo"
)

type (
	// HostSource resolves host identity when the report is printed.
	HostSource interface {
		Host() sysinfo.Host
	}

	Reporter struct {
		host     HostSource
		renderer Renderer
		logger   zerolog.Logger
		now      func() time.Time
	}

	metric struct {
		label  string // CPU or RAM
		series []float64
		//megabyte equivalents are printed when set
		totalMB int64
	}
)

// New returns a Reporter. A nil renderer disables plotting.
func New(host HostSource, renderer Renderer, logger zerolog.Logger) *Reporter {
	return &Reporter{
		host:     host,
		renderer: renderer,
		logger:   logger.With().Str("component", "report").Logger(),
		now:      time.Now,
	}
}

// Summarize writes the text summary of s to w. Each block is rendered in
// isolation: a failure inside one block is replaced by a diagnostic line
// and the remaining blocks still print.
func (r *Reporter) Summarize(w io.Writer, s *monitor.Session) {
	fmt.Fprintln(w, "Current Time is :", r.now().Format(time.TimeOnly))
	fmt.Fprintln(w, banner(15, fmt.Sprintf(" SUMMARY for '%s' process ", s.Process)))

	r.block(w, "pid lifetimes", func() { writePids(w, s) })

	cpu := metric{label: "CPU", series: s.Series.CPU}
	ram := metric{label: "RAM", series: s.Series.Mem, totalMB: s.Facts.TotalMemoryMB}
	for _, m := range []metric{cpu, ram} {
		m := m
		r.block(w, m.label, func() { writeMetric(w, m, s.Process) }, m.fallback)
	}

	r.block(w, "system information", func() { r.writeSystem(w, s.Facts) })
}

func (r *Reporter) block(w io.Writer, name string, render func(), fallbacks ...func() string) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error().Interface("panic", rec).Str("block", name).Msg("summary block failed")
			if len(fallbacks) == 0 {
				fmt.Fprintf(w, "DEBUG: %s unavailable: %v\n", name, rec)
			}
			for _, fb := range fallbacks {
				fmt.Fprintln(w, fb())
			}
		}
	}()
	render()
}

func writePids(w io.Writer, s *monitor.Session) {
	for _, d := range s.Tracker.Durations() {
		fmt.Fprintf(w, "for pid = %s Total time= %s sec\n", d.PID, num(stats.Round(d.Elapsed.Seconds(), 3)))
	}
	// end of the last pid minus start of the first one
	if total, ok := s.Tracker.EffectiveTotal(); ok {
		fmt.Fprintf(w, "Effective total time taken is %s sec\n", num(stats.Round(total.Seconds(), 3)))
	}
}

func writeMetric(w io.Writer, m metric, process string) {
	d, err := stats.Describe(m.series)
	if errors.Is(err, stats.ErrEmpty) {
		fmt.Fprintf(w, "No information available for %s for process %s\n", m.label, process)
		return
	}

	fmt.Fprintln(w, banner(10, " "+m.label+" "))
	line := func(title string, f stats.Figure, shown float64) {
		if !f.OK() {
			fmt.Fprintln(w, m.fallback())
			return
		}
		fmt.Fprintf(w, "%s: %s%%%s\n", title, num(shown), m.mb(f.Value))
	}

	line(fmt.Sprintf("Max %s usage", m.label), d.Max, d.Max.Value)
	line(fmt.Sprintf("Min %s usage", m.label), d.Min, d.Min.Value)
	line(fmt.Sprintf("Avg %s usage", m.label), d.Mean, stats.Round(d.Mean.Value, 2))
	line(fmt.Sprintf("Median %s usage", m.label), d.Median, d.Median.Value)
	if nz := d.NonZeroMedian; nz != nil {
		line(fmt.Sprintf("Non-zero Median %s usage", m.label), *nz, nz.Value)
	}
	line(fmt.Sprintf("Mode %s usage", m.label), d.Mode, d.Mode.Value)
	line(fmt.Sprintf("P.Std.Dev %s", m.label), d.StdDev, stats.Round(d.StdDev.Value, 2))
}

func (m metric) mb(pct float64) string {
	if m.totalMB <= 0 {
		return ""
	}
	return fmt.Sprintf(" \ti.e. %s MB", num(stats.ToMB(m.totalMB, pct)))
}

func (m metric) fallback() string {
	return fmt.Sprintf("DEBUG: %s%% list is %v", m.label, m.series)
}

func (r *Reporter) writeSystem(w io.Writer, facts sysinfo.Facts) {
	host := sysinfo.Host{Hostname: "unknown", IP: "unknown"}
	if r.host != nil {
		host = r.host.Host()
	}

	fmt.Fprintln(w, banner(10, " SYSTEM INFORMATION "))
	fmt.Fprintf(w, "Machine hostname %s\n", host.Hostname)
	fmt.Fprintf(w, "IP Address: %s\n", host.IP)
	fmt.Fprintf(w, "Total RAM on the system %d MB i.e. %s GB\n",
		facts.TotalMemoryMB, num(stats.Round(float64(facts.TotalMemoryMB)/1024, 2)))
	fmt.Fprintf(w, "CPU count on the system = %d\n", facts.CPUCount)
	fmt.Fprintf(w, "CPU clock cycles are %s MHz i.e. %s GHz\n",
		num(facts.CPUMHz), num(stats.Round(facts.CPUMHz/1000, 1)))
}

func banner(width int, title string) string {
	stars := strings.Repeat("*", width)
	return stars + title + stars
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
