package event

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OutboxProcessorConfig tunes polling and the purge of sent entries
type OutboxProcessorConfig struct {
	BatchSize    int
	PollInterval time.Duration

	CleanupEnabled   bool
	CleanupRetention time.Duration // sent entries older than this are purged
	CleanupInterval  time.Duration
}

func DefaultOutboxProcessorConfig() OutboxProcessorConfig {
	return OutboxProcessorConfig{
		BatchSize:        100,
		PollInterval:     2 * time.Second,
		CleanupEnabled:   true,
		CleanupRetention: 7 * 24 * time.Hour,
		CleanupInterval:  time.Hour,
	}
}

func (c OutboxProcessorConfig) withDefaults() OutboxProcessorConfig {
	def := DefaultOutboxProcessorConfig()
	if c.BatchSize <= 0 {
		c.BatchSize = def.BatchSize
	}
	if c.PollInterval <= 0 {
		c.PollInterval = def.PollInterval
	}
	if c.CleanupInterval <= 0 {
		c.CleanupInterval = def.CleanupInterval
	}
	return c
}

// OutboxProcessor moves committed outbox entries to the sinks. An entry is
// sent once every sink accepted it; a single failure fails the whole entry
// and the next attempt offers it to all sinks again.
type OutboxProcessor struct {
	repo   shared.OutboxRepository
	sinks  []Sink
	config OutboxProcessorConfig
	logger *zap.Logger

	stop context.CancelFunc
	wg   sync.WaitGroup
}

func NewOutboxProcessor(repo shared.OutboxRepository, sinks []Sink, config OutboxProcessorConfig, logger *zap.Logger) *OutboxProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OutboxProcessor{
		repo:   repo,
		sinks:  sinks,
		config: config.withDefaults(),
		logger: logger,
	}
}

// Start launches the polling loop and, when enabled, the purge loop
func (p *OutboxProcessor) Start(ctx context.Context) error {
	if len(p.sinks) == 0 {
		return errors.New("outbox processor needs at least one sink")
	}
	ctx, p.stop = context.WithCancel(ctx)

	p.every(ctx, p.config.PollInterval, func(ctx context.Context) { p.ProcessBatch(ctx) })
	if p.config.CleanupEnabled && p.config.CleanupRetention > 0 {
		p.every(ctx, p.config.CleanupInterval, p.purge)
	}

	p.logger.Info("outbox processor started",
		zap.Strings("sinks", p.sinkNames()),
		zap.Int("batch_size", p.config.BatchSize),
		zap.Duration("poll_interval", p.config.PollInterval),
	)
	return nil
}

// Stop ends the loops and closes the sinks. It gives up when ctx expires
// before the loops have returned.
func (p *OutboxProcessor) Stop(ctx context.Context) error {
	if p.stop != nil {
		p.stop()
	}
	finished := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(finished)
	}()
	select {
	case <-finished:
	case <-ctx.Done():
		return ctx.Err()
	}

	var errs []error
	for _, s := range p.sinks {
		if err := s.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close sink %s: %w", s.Name(), err))
		}
	}
	p.logger.Info("outbox processor stopped")
	return errors.Join(errs...)
}

func (p *OutboxProcessor) every(ctx context.Context, interval time.Duration, fn func(context.Context)) {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				fn(ctx)
			}
		}
	}()
}

func (p *OutboxProcessor) sinkNames() []string {
	names := make([]string, 0, len(p.sinks))
	for _, s := range p.sinks {
		names = append(names, s.Name())
	}
	return names
}

// ProcessBatch handles one batch of pending entries, then one batch of failed
// entries whose backoff has elapsed. It returns the number sent.
func (p *OutboxProcessor) ProcessBatch(ctx context.Context) int {
	pending, err := p.repo.FindPending(ctx, p.config.BatchSize)
	if err != nil {
		p.logger.Error("load pending outbox entries", zap.Error(err))
		return 0
	}
	sent := p.claimAndDeliver(ctx, pending)

	due, err := p.repo.FindRetryable(ctx, time.Now(), p.config.BatchSize)
	if err != nil {
		p.logger.Error("load retryable outbox entries", zap.Error(err))
		return sent
	}
	return sent + p.claimAndDeliver(ctx, due)
}

func (p *OutboxProcessor) claimAndDeliver(ctx context.Context, candidates []*shared.OutboxEntry) int {
	if len(candidates) == 0 {
		return 0
	}
	ids := make([]uuid.UUID, 0, len(candidates))
	for _, e := range candidates {
		ids = append(ids, e.ID)
	}
	// only the rows this instance managed to claim come back
	claimed, err := p.repo.MarkProcessing(ctx, ids)
	if err != nil {
		p.logger.Error("claim outbox entries", zap.Error(err))
		return 0
	}

	sent := 0
	for _, e := range claimed {
		if p.settle(ctx, e, p.offer(ctx, e)) {
			sent++
		}
	}
	return sent
}

// offer hands the entry to every sink and joins their errors
func (p *OutboxProcessor) offer(ctx context.Context, e *shared.OutboxEntry) error {
	var errs []error
	for _, s := range p.sinks {
		if err := s.Deliver(ctx, e); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", s.Name(), err))
		}
	}
	return errors.Join(errs...)
}

// settle records the outcome of a delivery and reports whether it was sent
func (p *OutboxProcessor) settle(ctx context.Context, e *shared.OutboxEntry, deliveryErr error) bool {
	log := p.logger.With(
		zap.Stringer("event_id", e.EventID),
		zap.String("event_type", e.EventType),
	)
	if deliveryErr == nil {
		e.MarkSent()
	} else {
		e.MarkFailed(deliveryErr.Error())
		log.Error("event delivery failed", zap.Int("retry_count", e.RetryCount), zap.Error(deliveryErr))
		if e.IsDead() {
			log.Warn("event is dead, requeue it from the admin API",
				zap.String("aggregate_type", e.AggregateType),
				zap.Stringer("aggregate_id", e.AggregateID),
			)
		}
	}
	if err := p.repo.Update(ctx, e); err != nil {
		log.Error("store outbox entry state", zap.String("status", string(e.Status)), zap.Error(err))
		return false
	}
	if deliveryErr != nil {
		return false
	}
	log.Debug("event delivered")
	return true
}

func (p *OutboxProcessor) purge(ctx context.Context) {
	cutoff := time.Now().Add(-p.config.CleanupRetention)
	n, err := p.repo.DeleteOlderThan(ctx, cutoff)
	switch {
	case err != nil:
		p.logger.Error("purge sent outbox entries", zap.Error(err))
	case n > 0:
		p.logger.Info("purged sent outbox entries", zap.Int64("deleted", n), zap.Time("cutoff", cutoff))
	}
}
