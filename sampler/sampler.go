// Package sampler turns one process-table snapshot into an aggregate sample.
package sampler

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/l3lackShark/procmon/proctable"
	"github.com/l3lackShark/procmon/stats"
)

// TickResult is the aggregate of every matching row in one snapshot.
type TickResult struct {
	PIDs  []string `json:"pids"`
	CPU   float64  `json:"cpu"`
	Mem   float64  `json:"mem"`
	Found bool     `json:"found"`
}

type Sampler struct {
	source   proctable.Source
	username string
	pattern  string
	timeout  time.Duration
	logger   zerolog.Logger
}

// New returns a Sampler for processes of username whose command contains
// pattern. A non-positive timeout leaves snapshots unbounded.
func New(source proctable.Source, username, pattern string, timeout time.Duration, logger zerolog.Logger) *Sampler {
	return &Sampler{
		source:   source,
		username: username,
		pattern:  pattern,
		timeout:  timeout,
		logger:   logger.With().Str("component", "sampler").Logger(),
	}
}

// SampleTick queries the source once and sums CPU% and MEM% over all rows
// whose command contains the pattern. Errors from the source are returned
// as is; unparsable rows are skipped.
func (s *Sampler) SampleTick(ctx context.Context) (TickResult, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	out, err := s.source.Snapshot(ctx, s.username)
	if err != nil {
		return TickResult{}, err
	}
	return s.Aggregate(proctable.Lines(out)), nil
}

// Aggregate sums the matching rows of an already captured listing.
func (s *Sampler) Aggregate(lines []string) TickResult {
	var res TickResult
	for _, line := range lines {
		//cheap filter before splitting, the pattern must appear somewhere
		if !strings.Contains(line, s.pattern) {
			continue
		}
		row, err := proctable.ParseRow(line)
		if err != nil {
			s.logger.Debug().Err(err).Str("line", line).Msg("skipping row")
			continue
		}
		//the pattern can also hit the user column or a header
		if !strings.Contains(row.Command, s.pattern) {
			continue
		}

		res.PIDs = append(res.PIDs, row.PID)
		res.CPU = stats.Round(res.CPU+row.CPU, 2)
		res.Mem = stats.Round(res.Mem+row.Mem, 2)
		res.Found = true
	}
	return res
}
