// Package scheduler triggers the collector on a daily cadence.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"
)

// Scheduler invokes a job once per day at a fixed local wall-clock time.
// Runs never overlap: the next firing is computed after the job returns, so
// a job that overruns simply delays the next one. That keeps the collector's
// single-writer assumption for the history files intact.
type Scheduler struct {
	clock  clockwork.Clock
	hour   int
	minute int
	logger *slog.Logger
}

// New creates a Scheduler firing daily at the given "HH:MM" local time.
func New(clock clockwork.Clock, at string, logger *slog.Logger) (*Scheduler, error) {
	t, err := time.Parse("15:04", at)
	if err != nil {
		return nil, fmt.Errorf("invalid schedule time %q: %w", at, err)
	}
	return &Scheduler{
		clock:  clock,
		hour:   t.Hour(),
		minute: t.Minute(),
		logger: logger,
	}, nil
}

// Run blocks, invoking job at each firing, until the context is cancelled.
func (s *Scheduler) Run(ctx context.Context, job func(context.Context)) error {
	for {
		now := s.clock.Now()
		next := s.nextFiring(now)
		s.logger.Info("next run scheduled", "at", next, "in", next.Sub(now))

		timer := s.clock.NewTimer(next.Sub(now))
		select {
		case <-ctx.Done():
			timer.Stop()
			s.logger.Info("scheduler stopping", "reason", ctx.Err())
			return nil
		case <-timer.Chan():
			job(ctx)
		}
	}
}

// nextFiring returns the next daily firing strictly after now, in now's
// location.
func (s *Scheduler) nextFiring(now time.Time) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), s.hour, s.minute, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}
