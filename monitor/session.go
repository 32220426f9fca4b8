// Package monitor owns the state of one monitoring run and the polling loop
// that fills it.
package monitor

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/l3lackShark/procmon/config"
	"github.com/l3lackShark/procmon/sampler"
	"github.com/l3lackShark/procmon/sysinfo"
	"github.com/l3lackShark/procmon/tracker"
)

// Session is everything collected during one run. It grows by one series
// entry per successful tick and is never trimmed.
type Session struct {
	Config   config.Config
	Facts    sysinfo.Facts
	Username string
	Process  string
	Started  time.Time

	Tracker *tracker.Tracker
	Series  Series

	logger zerolog.Logger
	//false once a not-found tick has been announced, true again after a match
	found bool
}

func NewSession(cfg config.Config, facts sysinfo.Facts, username, process string, logger zerolog.Logger) *Session {
	return &Session{
		Config:   cfg,
		Facts:    facts,
		Username: username,
		Process:  process,
		Started:  time.Now(),
		Tracker:  tracker.New(),
		logger:   logger,
		found:    true,
	}
}

// RecordTick folds one sample into the session. A tick without matches only
// produces a waiting notice, and only on the transition into not-found.
func (s *Session) RecordTick(res sampler.TickResult, now time.Time) {
	if !res.Found {
		if s.found {
			s.logger.Warn().Msgf("Waiting!! Process name %s is not yet found in TOP command output", s.Process)
		}
		s.found = false
		s.diff(nil)
		return
	}
	s.found = true

	for _, pid := range res.PIDs {
		s.Tracker.Observe(pid, now)
	}
	s.diff(res.PIDs)

	s.Series.Append(res.CPU, res.Mem, now)

	s.logger.Info().
		Strs("pid", res.PIDs).
		Float64("cpu", res.CPU).
		Float64("mem", res.Mem).
		Msgf("PID: %v CPU: %v%% MEM: %v%%", res.PIDs, res.CPU, res.Mem)
}

func (s *Session) diff(pids []string) {
	appeared, vanished := s.Tracker.Diff(pids)
	if len(appeared) > 0 {
		s.logger.Debug().Strs("pids", appeared).Msg("new pids listed")
	}
	if len(vanished) > 0 {
		s.logger.Info().Strs("pids", vanished).Msg("pids no longer listed")
	}
}
