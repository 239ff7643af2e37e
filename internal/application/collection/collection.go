// Package collection runs document writes through ordered before-change and
// after-change hook chains. A write and every nested write its hooks trigger
// share one transaction, so a failing hook anywhere rolls all of it back.
package collection

import (
	"context"
	"fmt"

	"github.com/erp/backoffice/internal/domain/identity"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/erp/backoffice/internal/infrastructure/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Operation tells hooks what kind of write is running
type Operation string

const (
	OperationCreate Operation = "create"
	OperationUpdate Operation = "update"
)

// Document is a storable aggregate
type Document[D any] interface {
	GetID() uuid.UUID
	Clone() D
}

// Store persists documents of one collection
type Store[D any] interface {
	FindByID(ctx context.Context, id uuid.UUID) (D, error)
	Create(ctx context.Context, doc D) error
	// SaveWithLock fails with a conflict when the stored version moved on
	SaveWithLock(ctx context.Context, doc D) error
}

// BeforeChangeArgs is handed to before-change hooks. Original is the stored
// document on update and the zero value on create.
type BeforeChangeArgs[D any] struct {
	Data      D
	Original  D
	Operation Operation
	User      *identity.User
}

// AfterChangeArgs is handed to after-change hooks. Previous is the stored
// document before the write, the zero value on create.
type AfterChangeArgs[D any] struct {
	Doc       D
	Previous  D
	Operation Operation
	User      *identity.User
}

// BeforeChangeHook returns the (possibly modified) candidate document. The
// next hook receives what this one returned.
type BeforeChangeHook[D any] func(ctx context.Context, args BeforeChangeArgs[D]) (D, error)

// AfterChangeHook reacts to a persisted document
type AfterChangeHook[D any] func(ctx context.Context, args AfterChangeArgs[D]) error

type namedBefore[D any] struct {
	name string
	fn   BeforeChangeHook[D]
}

type namedAfter[D any] struct {
	name string
	fn   AfterChangeHook[D]
}

type eventSource interface {
	GetDomainEvents() []shared.DomainEvent
	ClearDomainEvents()
}

// Collection is the write path of one document type
type Collection[D Document[D]] struct {
	slug     string
	store    Store[D]
	runner   *Runner
	recorder shared.EventRecorder
	before   []namedBefore[D]
	after    []namedAfter[D]
}

// New creates a collection. recorder may be nil when the documents emit no events.
func New[D Document[D]](slug string, store Store[D], runner *Runner, recorder shared.EventRecorder) *Collection[D] {
	return &Collection[D]{
		slug:     slug,
		store:    store,
		runner:   runner,
		recorder: recorder,
	}
}

// Slug returns the collection name
func (c *Collection[D]) Slug() string {
	return c.slug
}

// BeforeChange appends a hook to the before-change chain
func (c *Collection[D]) BeforeChange(name string, hook BeforeChangeHook[D]) {
	c.before = append(c.before, namedBefore[D]{name: name, fn: hook})
}

// AfterChange appends a hook to the after-change chain
func (c *Collection[D]) AfterChange(name string, hook AfterChangeHook[D]) {
	c.after = append(c.after, namedAfter[D]{name: name, fn: hook})
}

// FindByID reads a document, inside the current write when there is one
func (c *Collection[D]) FindByID(ctx context.Context, id uuid.UUID) (D, error) {
	return c.store.FindByID(ctx, id)
}

// Create runs the create chain for data. data itself is never modified; each
// attempt works on a fresh clone.
func (c *Collection[D]) Create(ctx context.Context, data D) (D, error) {
	var result D
	err := c.runner.Run(ctx, c.slug+".create", func(ctx context.Context) error {
		var zero D
		doc, err := c.runBefore(ctx, BeforeChangeArgs[D]{
			Data:      data.Clone(),
			Original:  zero,
			Operation: OperationCreate,
			User:      identity.UserFromContext(ctx),
		})
		if err != nil {
			return err
		}
		if err := c.store.Create(ctx, doc); err != nil {
			return fmt.Errorf("create %s: %w", c.slug, err)
		}
		if err := c.runAfter(ctx, AfterChangeArgs[D]{
			Doc:       doc,
			Previous:  zero,
			Operation: OperationCreate,
			User:      identity.UserFromContext(ctx),
		}); err != nil {
			return err
		}
		result = doc
		return c.flushEvents(ctx, doc)
	})
	return result, err
}

// Update loads the stored document, lets mutate change a copy of it and runs
// the update chain. mutate may run more than once when the write is retried.
func (c *Collection[D]) Update(ctx context.Context, id uuid.UUID, mutate func(D) error) (D, error) {
	var result D
	err := c.runner.Run(ctx, c.slug+".update", func(ctx context.Context) error {
		original, err := c.store.FindByID(ctx, id)
		if err != nil {
			return err
		}
		data := original.Clone()
		if err := mutate(data); err != nil {
			return err
		}
		doc, err := c.runBefore(ctx, BeforeChangeArgs[D]{
			Data:      data,
			Original:  original,
			Operation: OperationUpdate,
			User:      identity.UserFromContext(ctx),
		})
		if err != nil {
			return err
		}
		if err := c.store.SaveWithLock(ctx, doc); err != nil {
			return fmt.Errorf("update %s %s: %w", c.slug, id, err)
		}
		if err := c.runAfter(ctx, AfterChangeArgs[D]{
			Doc:       doc,
			Previous:  original,
			Operation: OperationUpdate,
			User:      identity.UserFromContext(ctx),
		}); err != nil {
			return err
		}
		result = doc
		return c.flushEvents(ctx, doc)
	})
	return result, err
}

func (c *Collection[D]) runBefore(ctx context.Context, args BeforeChangeArgs[D]) (D, error) {
	doc := args.Data
	for _, h := range c.before {
		args.Data = doc
		next, err := h.fn(ctx, args)
		if err != nil {
			logger.FromContext(ctx).Debug("before-change hook rejected write",
				zap.String("collection", c.slug),
				zap.String("hook", h.name),
				zap.String("operation", string(args.Operation)),
				zap.Error(err),
			)
			return doc, err
		}
		doc = next
	}
	return doc, nil
}

func (c *Collection[D]) runAfter(ctx context.Context, args AfterChangeArgs[D]) error {
	for _, h := range c.after {
		if err := h.fn(ctx, args); err != nil {
			logger.FromContext(ctx).Debug("after-change hook failed",
				zap.String("collection", c.slug),
				zap.String("hook", h.name),
				zap.String("operation", string(args.Operation)),
				zap.Error(err),
			)
			return err
		}
	}
	return nil
}

func (c *Collection[D]) flushEvents(ctx context.Context, doc D) error {
	src, ok := any(doc).(eventSource)
	if !ok {
		return nil
	}
	events := src.GetDomainEvents()
	if len(events) == 0 || c.recorder == nil {
		src.ClearDomainEvents()
		return nil
	}
	if err := c.recorder.Record(ctx, events...); err != nil {
		return fmt.Errorf("record %s events: %w", c.slug, err)
	}
	src.ClearDomainEvents()
	return nil
}
