// Package plot draws utilization series as PNG line charts.
package plot

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"emperror.dev/errors"
	gonum "gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

const (
	width  = 9.6 * vg.Inch
	height = 4.8 * vg.Inch
)

type PNG struct {
	dir             string
	timestampFormat string
}

// NewPNG writes charts into dir, stamping file names with timestampFormat.
func NewPNG(dir, timestampFormat string) *PNG {
	return &PNG{dir: dir, timestampFormat: timestampFormat}
}

// FileName is {METRIC}_vs_TIME_{process}_{timestamp}.png. Path separators in
// the process name are replaced so the file lands in the output directory.
func (p *PNG) FileName(metric, process string, at time.Time) string {
	safe := strings.NewReplacer("/", "_", string(filepath.Separator), "_").Replace(process)
	return fmt.Sprintf("%s_vs_TIME_%s_%s.png", metric, safe, at.Format(p.timestampFormat))
}

// Render plots series against its sample index and saves it.
func (p *PNG) Render(metric string, series []float64, process string, at time.Time) (string, error) {
	if len(series) == 0 {
		return "", errors.NewPlain("empty series")
	}

	chart := gonum.New()
	chart.Title.Text = fmt.Sprintf("%s%% Usage over time for process '%s'", metric, process)
	chart.Y.Label.Text = metric + " %"
	chart.X.Label.Text = "Time --->"
	chart.X.Tick.Marker = gonum.ConstantTicks{}

	pts := make(plotter.XYs, len(series))
	for i, v := range series {
		pts[i].X = float64(i)
		pts[i].Y = v
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		return "", errors.Wrap(err, "plotter.NewLine()")
	}
	chart.Add(line)

	path := filepath.Join(p.dir, p.FileName(metric, process, at))
	if err := chart.Save(width, height, path); err != nil {
		return "", errors.Wrap(err, "chart.Save()")
	}
	return path, nil
}
