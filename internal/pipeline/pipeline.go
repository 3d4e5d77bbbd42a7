// Package pipeline runs the fetch → extract → normalize → append loop over
// an injected target list.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/davidjcox/birdcast-collector/internal/domain"
	"github.com/davidjcox/birdcast-collector/internal/observability"
)

// Fetcher retrieves raw page content for a target URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// Appender durably persists one observation to the history files.
type Appender interface {
	Append(obs domain.Observation) error
}

// Publisher emits one observation to a side channel (e.g. a Kafka topic).
type Publisher interface {
	Publish(ctx context.Context, obs domain.Observation) error
}

// Runner executes one batch over a target list. Targets are processed
// strictly sequentially so the inter-request delay enforces a global
// minimum spacing toward the upstream dashboard; that courtesy is the point,
// not a performance limitation.
type Runner struct {
	fetcher   Fetcher
	appender  Appender
	publisher Publisher // nil disables publishing
	logger    *slog.Logger
	metrics   *observability.Metrics
	clock     clockwork.Clock
	delay     time.Duration
	ready     atomic.Bool
}

// New creates a Runner. publisher may be nil.
func New(fetcher Fetcher, appender Appender, publisher Publisher, logger *slog.Logger, metrics *observability.Metrics, clock clockwork.Clock, delay time.Duration) *Runner {
	return &Runner{
		fetcher:   fetcher,
		appender:  appender,
		publisher: publisher,
		logger:    logger,
		metrics:   metrics,
		clock:     clock,
		delay:     delay,
	}
}

// CheckReadiness returns nil once at least one batch has completed.
func (r *Runner) CheckReadiness(_ context.Context) error {
	if !r.ready.Load() {
		return errors.New("no batch has completed yet")
	}
	return nil
}

// Run attempts every target exactly once, in list order, and returns the
// batch summary. No single target's failure aborts the batch; each failure
// is logged and counted. The inter-request delay is observed between
// targets, not after the last one. A cancelled context stops the batch
// between targets, with the remaining targets counted as failed attempts.
func (r *Runner) Run(ctx context.Context, targets []domain.Target) domain.RunSummary {
	start := r.clock.Now()
	r.logger.Info("batch started", "targets", len(targets))
	r.metrics.CollectorRunning.Set(1)
	defer r.metrics.CollectorRunning.Set(0)
	r.metrics.BatchTargets.Observe(float64(len(targets)))

	summary := domain.RunSummary{Attempted: len(targets)}

	for i, target := range targets {
		if ctx.Err() != nil {
			// Unattempted targets count as failed for this invocation.
			summary.Failed = summary.Attempted - summary.Succeeded
			r.logger.Warn("batch cancelled", "remaining", len(targets)-i)
			break
		}

		if r.processTarget(ctx, target) {
			summary.Succeeded++
			r.metrics.TargetsScraped.WithLabelValues("success").Inc()
		} else {
			summary.Failed++
			r.metrics.TargetsScraped.WithLabelValues("failed").Inc()
		}

		if i < len(targets)-1 {
			sleepWithContext(ctx, r.clock, r.delay)
		}
	}

	summary.Duration = r.clock.Since(start)
	r.metrics.BatchDuration.Observe(summary.Duration.Seconds())
	r.ready.Store(true)

	r.logger.Info("batch finished",
		"attempted", summary.Attempted,
		"succeeded", summary.Succeeded,
		"failed", summary.Failed,
		"duration", summary.Duration,
	)
	return summary
}

// processTarget runs the full pipeline for one target. Returns true when at
// least one field was extracted and the observation was durably appended.
func (r *Runner) processTarget(ctx context.Context, target domain.Target) bool {
	log := r.logger.With("region", target.RegionCode, "url", target.URL)

	content, err := r.fetcher.Fetch(ctx, target.URL)
	if err != nil {
		log.Error("fetch failed", "error", err)
		r.metrics.FetchErrors.Inc()
		return false
	}

	partial, missing := domain.Extract(content)
	if len(missing) > 0 {
		log.Warn("fields not found in page", "missing", missing)
		r.metrics.FieldsMissing.Add(float64(len(missing)))
	}

	obs, dropped := domain.Normalize(partial, target, r.clock.Now().UTC())
	if len(dropped) > 0 {
		log.Warn("fields dropped during normalization", "fields", dropped)
	}

	// A failed extraction still produces a row; partial data beats no data.
	if err := r.appender.Append(obs); err != nil {
		log.Error("append failed", "error", err)
		r.metrics.AppendErrors.Inc()
		return false
	}
	r.metrics.ObservationsAppended.Inc()

	if r.publisher != nil {
		if err := r.publisher.Publish(ctx, obs); err != nil {
			// The files are the durable record; a lost publish is not a
			// target failure.
			log.Warn("publish failed", "error", err)
			r.metrics.PublishErrors.Inc()
		} else {
			r.metrics.ObservationsPublished.Inc()
		}
	}

	if len(missing) >= len(domain.MetricFields) {
		log.Warn("no fields extracted, recorded empty observation")
		return false
	}

	log.Info("target scraped", "fields_missing", len(missing))
	return true
}

func sleepWithContext(ctx context.Context, clock clockwork.Clock, d time.Duration) bool {
	if d <= 0 {
		return true
	}

	timer := clock.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.Chan():
		return true
	}
}
