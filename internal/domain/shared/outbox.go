package shared

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// OutboxStatus is where an outbox row is on its way to the broker
type OutboxStatus string

const (
	OutboxStatusPending    OutboxStatus = "PENDING"
	OutboxStatusProcessing OutboxStatus = "PROCESSING"
	OutboxStatusSent       OutboxStatus = "SENT"
	OutboxStatusFailed     OutboxStatus = "FAILED"
	OutboxStatusDead       OutboxStatus = "DEAD"
)

const (
	DefaultMaxRetries  = 5
	DefaultBaseBackoff = time.Second
	// maxBackoff caps the doubling so a long outage does not push retries
	// hours into the future
	maxBackoff = 5 * time.Minute
)

// OutboxEntry is one recorded domain event. It is written by the same
// transaction as the stock or order change that raised it and later claimed
// by the outbox processor.
type OutboxEntry struct {
	ID            uuid.UUID
	EventID       uuid.UUID
	EventType     string
	AggregateID   uuid.UUID
	AggregateType string
	Payload       []byte
	Status        OutboxStatus
	RetryCount    int
	MaxRetries    int
	LastError     string
	NextRetryAt   *time.Time
	ProcessedAt   *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NewOutboxEntry wraps a serialized event as a pending row
func NewOutboxEntry(event DomainEvent, payload []byte) *OutboxEntry {
	e := &OutboxEntry{
		ID:            uuid.New(),
		EventID:       event.EventID(),
		EventType:     event.EventType(),
		AggregateID:   event.AggregateID(),
		AggregateType: event.AggregateType(),
		Payload:       payload,
		Status:        OutboxStatusPending,
		MaxRetries:    DefaultMaxRetries,
	}
	e.CreatedAt = e.touch()
	return e
}

func (e *OutboxEntry) touch() time.Time {
	e.UpdatedAt = time.Now()
	return e.UpdatedAt
}

func (e *OutboxEntry) IsDead() bool { return e.Status == OutboxStatusDead }

// CanRetry reports whether a failed row still has attempts left
func (e *OutboxEntry) CanRetry() bool {
	return e.Status == OutboxStatusFailed && e.RetryCount < e.MaxRetries
}

// MarkProcessing claims a pending or failed row
func (e *OutboxEntry) MarkProcessing() error {
	switch e.Status {
	case OutboxStatusPending, OutboxStatusFailed:
		e.Status = OutboxStatusProcessing
		e.touch()
		return nil
	}
	return NewInvalidStateError("outbox entry %s is %s and cannot be claimed", e.ID, e.Status)
}

func (e *OutboxEntry) MarkSent() {
	now := e.touch()
	e.Status = OutboxStatusSent
	e.ProcessedAt = &now
}

// MarkFailed counts the attempt. With attempts left the row is retried after
// DefaultBaseBackoff doubled per previous failure; otherwise it is dead.
func (e *OutboxEntry) MarkFailed(errMsg string) {
	now := e.touch()
	e.RetryCount++
	e.LastError = errMsg
	if e.RetryCount >= e.MaxRetries {
		e.Status = OutboxStatusDead
		e.NextRetryAt = nil
		return
	}
	e.Status = OutboxStatusFailed
	next := now.Add(retryDelay(e.RetryCount))
	e.NextRetryAt = &next
}

func retryDelay(attempt int) time.Duration {
	d := DefaultBaseBackoff
	for i := 1; i < attempt && d < maxBackoff; i++ {
		d *= 2
	}
	return min(d, maxBackoff)
}

// ResetForRetry gives a dead row a fresh set of attempts
func (e *OutboxEntry) ResetForRetry() error {
	if !e.IsDead() {
		return NewInvalidStateError("outbox entry %s is %s, only dead entries can be reset", e.ID, e.Status)
	}
	e.Status = OutboxStatusPending
	e.RetryCount = 0
	e.LastError = ""
	e.NextRetryAt = nil
	e.touch()
	return nil
}

// OutboxRepository is what the recorder and the processor need
type OutboxRepository interface {
	Save(ctx context.Context, entries ...*OutboxEntry) error
	FindPending(ctx context.Context, limit int) ([]*OutboxEntry, error)
	FindRetryable(ctx context.Context, before time.Time, limit int) ([]*OutboxEntry, error)
	// MarkProcessing claims entries and returns the ones this caller now owns
	MarkProcessing(ctx context.Context, ids []uuid.UUID) ([]*OutboxEntry, error)
	Update(ctx context.Context, entry *OutboxEntry) error
	DeleteOlderThan(ctx context.Context, before time.Time) (int64, error)
}

// OutboxInspector is the operator view used by the admin endpoints
type OutboxInspector interface {
	FindByID(ctx context.Context, id uuid.UUID) (*OutboxEntry, error)
	// FindDead pages through dead entries, newest first
	FindDead(ctx context.Context, page, pageSize int) ([]*OutboxEntry, int64, error)
	CountByStatus(ctx context.Context) (map[OutboxStatus]int64, error)
	Update(ctx context.Context, entry *OutboxEntry) error
}
