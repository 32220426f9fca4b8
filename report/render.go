package report

import (
	"time"

	"emperror.dev/errors"

	"github.com/l3lackShark/procmon/monitor"
)

// RenderHint is printed when plots could not be produced.
const RenderHint = "Unable to save the graphs. Check that the output directory is writable, or pass --no-plots to skip them."

// Renderer draws one metric series to an image and returns the file written.
type Renderer interface {
	Render(metric string, series []float64, process string, at time.Time) (path string, err error)
}

// RenderUnavailableError wraps any failure of the renderer. It never aborts
// the summary.
type RenderUnavailableError struct {
	Metric string
	Err    error
}

func (e *RenderUnavailableError) Error() string {
	return "render " + e.Metric + " graph: " + e.Err.Error()
}

func (e *RenderUnavailableError) Unwrap() error { return e.Err }

// Plot renders the CPU and RAM series. It returns the files written and the
// combined render failures, if any. Without a renderer it does nothing.
func (r *Reporter) Plot(s *monitor.Session) ([]string, error) {
	if r.renderer == nil {
		r.logger.Debug().Msg("plotting disabled")
		return nil, nil
	}

	at := r.now()
	var (
		paths []string
		errs  []error
	)
	for _, m := range []struct {
		name   string
		series []float64
	}{
		{name: "CPU", series: s.Series.CPU},
		{name: "RAM", series: s.Series.Mem},
	} {
		if len(m.series) == 0 {
			r.logger.Info().Str("metric", m.name).Msg("no samples to plot")
			continue
		}
		path, err := r.render(m.name, m.series, s.Process, at)
		if err != nil {
			r.logger.Warn().Err(err).Msg(RenderHint)
			errs = append(errs, err)
			continue
		}
		r.logger.Info().Str("file", path).Msgf("%s graph saved", m.name)
		paths = append(paths, path)
	}
	return paths, errors.Combine(errs...)
}

func (r *Reporter) render(metric string, series []float64, process string, at time.Time) (path string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = &RenderUnavailableError{Metric: metric, Err: errors.Errorf("renderer panicked: %v", rec)}
		}
	}()

	path, err = r.renderer.Render(metric, series, process, at)
	if err != nil {
		return "", &RenderUnavailableError{Metric: metric, Err: err}
	}
	return path, nil
}
