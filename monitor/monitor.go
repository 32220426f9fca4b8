package monitor

import (
	"context"
	"time"

	"emperror.dev/errors"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/l3lackShark/procmon/proctable"
	"github.com/l3lackShark/procmon/sampler"
)

// Payload kinds handed to a Sink.
const (
	KindTick    = "tick"
	KindSummary = "summary"
)

type (
	// TickSampler produces one aggregate sample per call.
	TickSampler interface {
		SampleTick(ctx context.Context) (sampler.TickResult, error)
	}

	// Sink receives a JSON document per recorded tick. Optional.
	Sink interface {
		SendPayload(kind string, data []byte) error
	}

	Monitor struct {
		session *Session
		sampler TickSampler
		sink    Sink
		logger  zerolog.Logger
		now     func() time.Time
	}

	tickPayload struct {
		At time.Time `json:"at"`
		sampler.TickResult
	}
)

func New(session *Session, s TickSampler, sink Sink, logger zerolog.Logger) *Monitor {
	return &Monitor{
		session: session,
		sampler: s,
		sink:    sink,
		logger:  logger.With().Str("component", "monitor").Logger(),
		now:     time.Now,
	}
}

// Run polls until ctx is cancelled or the process table cannot be queried.
// Cancellation returns nil; a query failure is returned after everything
// collected so far has been kept in the session.
func (m *Monitor) Run(ctx context.Context) error {
	interval := m.session.Config.Interval
	wait := time.NewTimer(0)
	defer wait.Stop()

	for {
		if ctx.Err() != nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return nil
		case <-wait.C:
		}

		iterationStart := m.now()
		res, err := m.sampler.SampleTick(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			var qerr *proctable.QueryError
			if errors.As(err, &qerr) && qerr.Timeout() {
				m.logger.Warn().Err(err).Msg("snapshot timed out, counting tick as not found")
				res = sampler.TickResult{}
			} else {
				return errors.Wrap(err, "sample tick")
			}
		}

		m.session.RecordTick(res, m.now())
		if res.Found {
			m.export(iterationStart, res)
		}

		elapsed := m.now().Sub(iterationStart)
		m.logger.Trace().Dur("took", elapsed).Msg("cycle done")
		wait.Reset(interval)
	}
}

func (m *Monitor) export(at time.Time, res sampler.TickResult) {
	if m.sink == nil {
		return
	}
	out, err := json.Marshal(tickPayload{At: at, TickResult: res})
	if err != nil {
		m.logger.Warn().Err(err).Msg("json.Marshal()")
		return
	}
	if err := m.sink.SendPayload(KindTick, out); err != nil {
		m.logger.Warn().Err(err).Msg("export tick")
	}
}
