package outbox

import (
	"context"
	"math/rand"
	"time"

	"github.com/rs/zerolog"

	"github.com/harborline/omscore/internal/application/common"
	"github.com/harborline/omscore/internal/domain/outbox"
	"github.com/harborline/omscore/internal/domain/shared"
)

// WorkerConfig controls the claim-and-dispatch loop.
type WorkerConfig struct {
	PollInterval time.Duration
	BatchSize    int
	MaxAttempts  int
	BackoffBase  time.Duration
	Jitter       time.Duration
}

// WorkerMetrics records outbox delivery outcomes.
type WorkerMetrics interface {
	RecordDispatched()
	RecordRetried()
	RecordDeadLettered()
}

// Worker is the long-lived task that drains the outbox: claim a batch, map
// each row to its typed event, publish on the in-process bus, then move the
// row to a terminal state or schedule a retry with exponential backoff.
//
// Delivery is at-least-once; ordering is best-effort per aggregate via
// created_at claim order. Cancellation is checked between iterations, never
// mid-claim.
type Worker struct {
	repo      outbox.Repository
	publisher common.EventPublisher
	mapper    *Mapper
	clock     shared.Clock
	logger    zerolog.Logger
	metrics   WorkerMetrics
	cfg       WorkerConfig
}

// NewWorker constructs a worker; zero config fields fall back to defaults.
func NewWorker(repo outbox.Repository, publisher common.EventPublisher, mapper *Mapper,
	clock shared.Clock, logger zerolog.Logger, metrics WorkerMetrics, cfg WorkerConfig) *Worker {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 500 * time.Millisecond
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = outbox.DefaultMaxAttempts
	}
	if cfg.BackoffBase <= 0 {
		cfg.BackoffBase = outbox.DefaultBackoffBase
	}
	if cfg.Jitter <= 0 {
		cfg.Jitter = outbox.DefaultJitter
	}
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &Worker{
		repo:      repo,
		publisher: publisher,
		mapper:    mapper,
		clock:     clock,
		logger:    logger.With().Str("component", "outbox_worker").Logger(),
		metrics:   metrics,
		cfg:       cfg,
	}
}

// Run polls until the context is cancelled. On exit it releases any rows
// still claimed so nothing stays in processing across a shutdown.
func (w *Worker) Run(ctx context.Context) {
	w.logger.Info().
		Dur("poll_interval", w.cfg.PollInterval).
		Int("batch_size", w.cfg.BatchSize).
		Int("max_attempts", w.cfg.MaxAttempts).
		Msg("outbox worker starting")

	// Recover rows orphaned in processing by a previous crash.
	if released, err := w.repo.ReleaseProcessing(ctx, w.clock.Now()); err != nil {
		w.logger.Error().Err(err).Msg("failed to release orphaned outbox rows")
	} else if released > 0 {
		w.logger.Warn().Int64("released", released).Msg("recovered orphaned outbox rows")
	}

	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.shutdown()
			return
		case <-ticker.C:
			if err := w.ProcessOnce(ctx); err != nil {
				w.logger.Error().Err(err).Msg("outbox iteration failed")
			}
		}
	}
}

func (w *Worker) shutdown() {
	// The run context is gone; give the release a short independent window.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := w.repo.ReleaseProcessing(ctx, w.clock.Now()); err != nil {
		w.logger.Error().Err(err).Msg("failed to release outbox rows on shutdown")
	}
	w.logger.Info().Msg("outbox worker stopped")
}

// ProcessOnce claims and dispatches a single batch. Exported so tests can
// drive iterations without the ticker.
func (w *Worker) ProcessOnce(ctx context.Context) error {
	now := w.clock.Now()
	records, err := w.repo.Claim(ctx, w.cfg.BatchSize, now)
	if err != nil {
		return err
	}

	for _, record := range records {
		w.dispatch(ctx, record)
	}
	return nil
}

// dispatch publishes one claimed row and settles its status.
func (w *Worker) dispatch(ctx context.Context, record *outbox.Record) {
	event := w.mapper.Map(record)

	if err := w.publisher.Publish(event); err != nil {
		w.settleFailure(ctx, record, err)
		return
	}

	if err := w.repo.MarkDelivered(ctx, record.ID, w.clock.Now()); err != nil {
		w.logger.Error().Err(err).Str("outbox_id", record.ID).Msg("failed to mark row delivered")
		return
	}
	if w.metrics != nil {
		w.metrics.RecordDispatched()
	}
}

func (w *Worker) settleFailure(ctx context.Context, record *outbox.Record, cause error) {
	now := w.clock.Now()

	// Claim already incremented attempts; record.Attempts is current.
	if record.Attempts >= w.cfg.MaxAttempts {
		if err := w.repo.MarkFailed(ctx, record.ID, "max attempts exceeded", now); err != nil {
			w.logger.Error().Err(err).Str("outbox_id", record.ID).Msg("failed to dead-letter row")
			return
		}
		if w.metrics != nil {
			w.metrics.RecordDeadLettered()
		}
		w.logger.Error().
			Err(cause).
			Str("outbox_id", record.ID).
			Str("event_type", record.EventType).
			Int("attempts", record.Attempts).
			Msg("outbox row dead-lettered")
		return
	}

	delay := outbox.Backoff(w.cfg.BackoffBase, record.Attempts) + w.jitter()
	availableAt := now.Add(delay)
	if err := w.repo.ScheduleRetry(ctx, record.ID, availableAt, cause.Error(), now); err != nil {
		w.logger.Error().Err(err).Str("outbox_id", record.ID).Msg("failed to schedule retry")
		return
	}
	if w.metrics != nil {
		w.metrics.RecordRetried()
	}
	w.logger.Warn().
		Err(cause).
		Str("outbox_id", record.ID).
		Str("event_type", record.EventType).
		Int("attempts", record.Attempts).
		Time("available_at", availableAt).
		Msg("outbox publish failed, retry scheduled")
}

func (w *Worker) jitter() time.Duration {
	if w.cfg.Jitter <= 0 {
		return 0
	}
	return time.Duration(rand.Int63n(int64(w.cfg.Jitter)))
}
