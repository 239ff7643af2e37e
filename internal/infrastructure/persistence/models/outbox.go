package models

import (
	"time"

	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/google/uuid"
)

// OutboxEntryModel is a row of outbox_events (migration 000002)
type OutboxEntryModel struct {
	BaseModel
	EventID       uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_outbox_events_event_id"`
	EventType     string    `gorm:"type:varchar(255);not null"`
	AggregateID   uuid.UUID `gorm:"type:uuid;not null"`
	AggregateType string    `gorm:"type:varchar(255);not null"`
	Payload       []byte    `gorm:"not null"`

	// delivery state; the processor polls on (status, created_at)
	Status      shared.OutboxStatus `gorm:"type:varchar(20);not null;default:'PENDING';index:idx_outbox_status_created,priority:1"`
	RetryCount  int                 `gorm:"not null;default:0"`
	MaxRetries  int                 `gorm:"not null;default:5"`
	LastError   string              `gorm:"type:text"`
	NextRetryAt *time.Time          `gorm:"index:idx_outbox_next_retry"`
	ProcessedAt *time.Time
}

func (OutboxEntryModel) TableName() string { return "outbox_events" }

func (m *OutboxEntryModel) ToDomain() *shared.OutboxEntry {
	e := &shared.OutboxEntry{
		ID:            m.ID,
		EventID:       m.EventID,
		EventType:     m.EventType,
		AggregateID:   m.AggregateID,
		AggregateType: m.AggregateType,
		Payload:       m.Payload,
		Status:        m.Status,
		RetryCount:    m.RetryCount,
		MaxRetries:    m.MaxRetries,
		LastError:     m.LastError,
		NextRetryAt:   m.NextRetryAt,
		ProcessedAt:   m.ProcessedAt,
	}
	e.CreatedAt, e.UpdatedAt = m.CreatedAt, m.UpdatedAt
	return e
}

// OutboxEntryModelFromDomain maps a domain entry to its row
func OutboxEntryModelFromDomain(e *shared.OutboxEntry) *OutboxEntryModel {
	return &OutboxEntryModel{
		BaseModel:     BaseModel{ID: e.ID, CreatedAt: e.CreatedAt, UpdatedAt: e.UpdatedAt},
		EventID:       e.EventID,
		EventType:     e.EventType,
		AggregateID:   e.AggregateID,
		AggregateType: e.AggregateType,
		Payload:       e.Payload,
		Status:        e.Status,
		RetryCount:    e.RetryCount,
		MaxRetries:    e.MaxRetries,
		LastError:     e.LastError,
		NextRetryAt:   e.NextRetryAt,
		ProcessedAt:   e.ProcessedAt,
	}
}
