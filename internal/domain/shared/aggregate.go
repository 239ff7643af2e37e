package shared

import (
	"time"

	"github.com/google/uuid"
)

// BaseEntity carries identity and timestamps
type BaseEntity struct {
	ID        uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (e *BaseEntity) GetID() uuid.UUID { return e.ID }

// Touch moves UpdatedAt to now
func (e *BaseEntity) Touch() { e.UpdatedAt = time.Now() }

// BaseAggregateRoot is embedded by everything stored in a versioned
// collection: products, ledger entries, customers, orders, purchases.
// Version starts at 1 and every successful write bumps it; a write that
// carries a stale version is rejected by the repository.
//
// Events queued with AddDomainEvent are drained by the collection after the
// row is written and end up in the outbox of the same transaction.
type BaseAggregateRoot struct {
	BaseEntity
	Version int
	pending []DomainEvent
}

// NewBaseAggregateRoot returns a root with a fresh id at version 1
func NewBaseAggregateRoot() BaseAggregateRoot {
	now := time.Now()
	return BaseAggregateRoot{
		BaseEntity: BaseEntity{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		Version:    1,
	}
}

func (a *BaseAggregateRoot) IncrementVersion() { a.Version++ }

func (a *BaseAggregateRoot) AddDomainEvent(event DomainEvent) {
	a.pending = append(a.pending, event)
}

func (a *BaseAggregateRoot) GetDomainEvents() []DomainEvent { return a.pending }

func (a *BaseAggregateRoot) ClearDomainEvents() { a.pending = nil }

// CloneRoot copies identity and version but not the queued events. Hooks work
// on clones, and a clone must not publish twice what its source queued.
func (a BaseAggregateRoot) CloneRoot() BaseAggregateRoot {
	return BaseAggregateRoot{BaseEntity: a.BaseEntity, Version: a.Version}
}
