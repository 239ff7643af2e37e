package event

import (
	"context"
	"errors"
	"time"

	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const requeueBatch = 100

// OutboxService is the operator view on the outbox. It reads entries and
// sends dead letters back to the processor.
type OutboxService struct {
	repo   shared.OutboxInspector
	logger *zap.Logger
}

func NewOutboxService(repo shared.OutboxInspector, logger *zap.Logger) *OutboxService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OutboxService{repo: repo, logger: logger.Named("outbox")}
}

// OutboxEntryDTO is an outbox entry without its payload
type OutboxEntryDTO struct {
	ID            uuid.UUID  `json:"id"`
	EventID       uuid.UUID  `json:"event_id"`
	EventType     string     `json:"event_type"`
	AggregateID   uuid.UUID  `json:"aggregate_id"`
	AggregateType string     `json:"aggregate_type"`
	Status        string     `json:"status"`
	RetryCount    int        `json:"retry_count"`
	MaxRetries    int        `json:"max_retries"`
	LastError     string     `json:"last_error,omitempty"`
	NextRetryAt   *time.Time `json:"next_retry_at,omitempty"`
	ProcessedAt   *time.Time `json:"processed_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func newOutboxEntryDTO(e *shared.OutboxEntry) *OutboxEntryDTO {
	return &OutboxEntryDTO{
		ID:            e.ID,
		EventID:       e.EventID,
		EventType:     e.EventType,
		AggregateID:   e.AggregateID,
		AggregateType: e.AggregateType,
		Status:        string(e.Status),
		RetryCount:    e.RetryCount,
		MaxRetries:    e.MaxRetries,
		LastError:     e.LastError,
		NextRetryAt:   e.NextRetryAt,
		ProcessedAt:   e.ProcessedAt,
		CreatedAt:     e.CreatedAt,
		UpdatedAt:     e.UpdatedAt,
	}
}

// OutboxFilter pages the dead letter list
type OutboxFilter struct {
	Page     int `form:"page" binding:"omitempty,min=1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=100"`
}

type OutboxStatsDTO struct {
	Pending    int64 `json:"pending"`
	Processing int64 `json:"processing"`
	Sent       int64 `json:"sent"`
	Failed     int64 `json:"failed"`
	Dead       int64 `json:"dead"`
	Total      int64 `json:"total"`
}

func (s *OutboxService) DeadLetters(ctx context.Context, filter OutboxFilter) ([]OutboxEntryDTO, int64, error) {
	page, size := max(filter.Page, 1), filter.PageSize
	if size < 1 {
		size = 20
	}
	entries, total, err := s.repo.FindDead(ctx, page, size)
	if err != nil {
		return nil, 0, err
	}
	out := make([]OutboxEntryDTO, 0, len(entries))
	for _, e := range entries {
		out = append(out, *newOutboxEntryDTO(e))
	}
	return out, total, nil
}

func (s *OutboxService) GetEntry(ctx context.Context, id uuid.UUID) (*OutboxEntryDTO, error) {
	e, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	return newOutboxEntryDTO(e), nil
}

// RetryDeadEntry moves one dead entry back to PENDING with a fresh retry budget
func (s *OutboxService) RetryDeadEntry(ctx context.Context, id uuid.UUID) (*OutboxEntryDTO, error) {
	e, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !e.IsDead() {
		return nil, shared.NewInvalidStateError("Outbox entry is %s, only dead entries can be retried", e.Status)
	}
	if err := s.requeue(ctx, e); err != nil {
		return nil, err
	}
	s.logger.Info("dead letter requeued", zap.Stringer("id", id), zap.String("event_type", e.EventType))
	return newOutboxEntryDTO(e), nil
}

// RetryAllDeadEntries requeues dead entries batch by batch until none are
// left or a whole batch fails to update. It returns how many were requeued.
func (s *OutboxService) RetryAllDeadEntries(ctx context.Context) (int64, error) {
	var requeued int64
	for {
		// requeued entries leave the dead set, so page one always holds the rest
		batch, _, err := s.repo.FindDead(ctx, 1, requeueBatch)
		if err != nil {
			return requeued, err
		}
		progress := 0
		for _, e := range batch {
			if err := s.requeue(ctx, e); err != nil {
				s.logger.Error("requeue failed", zap.Stringer("id", e.ID), zap.Error(err))
				continue
			}
			progress++
		}
		requeued += int64(progress)
		if progress == 0 || len(batch) < requeueBatch {
			break
		}
	}
	s.logger.Info("dead letters requeued", zap.Int64("count", requeued))
	return requeued, nil
}

func (s *OutboxService) Stats(ctx context.Context) (*OutboxStatsDTO, error) {
	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	stats := &OutboxStatsDTO{}
	for status, n := range counts {
		stats.Total += n
		switch status {
		case shared.OutboxStatusPending:
			stats.Pending = n
		case shared.OutboxStatusProcessing:
			stats.Processing = n
		case shared.OutboxStatusSent:
			stats.Sent = n
		case shared.OutboxStatusFailed:
			stats.Failed = n
		case shared.OutboxStatusDead:
			stats.Dead = n
		}
	}
	return stats, nil
}

func (s *OutboxService) find(ctx context.Context, id uuid.UUID) (*shared.OutboxEntry, error) {
	e, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, shared.ErrNotFound) {
		return nil, shared.NewNotFoundError("Outbox entry")
	}
	return e, err
}

func (s *OutboxService) requeue(ctx context.Context, e *shared.OutboxEntry) error {
	if err := e.ResetForRetry(); err != nil {
		return err
	}
	return s.repo.Update(ctx, e)
}
