package event

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"

	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeInspector struct {
	mu        sync.Mutex
	entries   map[uuid.UUID]*shared.OutboxEntry
	updateErr error
}

func newFakeInspector(entries ...*shared.OutboxEntry) *fakeInspector {
	f := &fakeInspector{entries: map[uuid.UUID]*shared.OutboxEntry{}}
	for _, e := range entries {
		f.entries[e.ID] = e
	}
	return f
}

func (f *fakeInspector) FindByID(_ context.Context, id uuid.UUID) (*shared.OutboxEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.entries[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (f *fakeInspector) FindDead(_ context.Context, page, pageSize int) ([]*shared.OutboxEntry, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var dead []*shared.OutboxEntry
	for _, e := range f.entries {
		if e.IsDead() {
			cp := *e
			dead = append(dead, &cp)
		}
	}
	sort.Slice(dead, func(i, j int) bool { return dead[i].ID.String() < dead[j].ID.String() })
	total := int64(len(dead))
	start := (page - 1) * pageSize
	if start >= len(dead) {
		return nil, total, nil
	}
	end := min(start+pageSize, len(dead))
	return dead[start:end], total, nil
}

func (f *fakeInspector) CountByStatus(context.Context) (map[shared.OutboxStatus]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := map[shared.OutboxStatus]int64{}
	for _, e := range f.entries {
		out[e.Status]++
	}
	return out, nil
}

func (f *fakeInspector) Update(_ context.Context, entry *shared.OutboxEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	cp := *entry
	f.entries[entry.ID] = &cp
	return nil
}

func outboxEntry(status shared.OutboxStatus) *shared.OutboxEntry {
	event := shared.NewBaseDomainEvent("OrderPlaced", "Order", uuid.New())
	e := shared.NewOutboxEntry(&event, []byte(`{}`))
	e.Status = status
	if status == shared.OutboxStatusDead {
		e.RetryCount = e.MaxRetries
		e.LastError = "broker down"
	}
	return e
}

func TestOutboxService_DeadLetters(t *testing.T) {
	repo := newFakeInspector(
		outboxEntry(shared.OutboxStatusDead),
		outboxEntry(shared.OutboxStatusDead),
		outboxEntry(shared.OutboxStatusDead),
		outboxEntry(shared.OutboxStatusSent),
	)
	svc := NewOutboxService(repo, zap.NewNop())

	entries, total, err := svc.DeadLetters(context.Background(), OutboxFilter{Page: 2, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, entries, 1)
	assert.Equal(t, "DEAD", entries[0].Status)
	assert.Equal(t, "broker down", entries[0].LastError)

	entries, _, err = svc.DeadLetters(context.Background(), OutboxFilter{})
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}

func TestOutboxService_RetryDeadEntry(t *testing.T) {
	dead := outboxEntry(shared.OutboxStatusDead)
	sent := outboxEntry(shared.OutboxStatusSent)
	repo := newFakeInspector(dead, sent)
	svc := NewOutboxService(repo, zap.NewNop())
	ctx := context.Background()

	t.Run("requeues a dead entry", func(t *testing.T) {
		dto, err := svc.RetryDeadEntry(ctx, dead.ID)
		require.NoError(t, err)
		assert.Equal(t, "PENDING", dto.Status)
		assert.Zero(t, dto.RetryCount)

		stored, _ := repo.FindByID(ctx, dead.ID)
		assert.Equal(t, shared.OutboxStatusPending, stored.Status)
	})

	t.Run("rejects a sent entry", func(t *testing.T) {
		_, err := svc.RetryDeadEntry(ctx, sent.ID)
		assert.ErrorIs(t, err, shared.ErrInvalidState)
	})

	t.Run("unknown entry", func(t *testing.T) {
		_, err := svc.RetryDeadEntry(ctx, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestOutboxService_RetryAllDeadEntries(t *testing.T) {
	var entries []*shared.OutboxEntry
	for i := 0; i < 150; i++ {
		entries = append(entries, outboxEntry(shared.OutboxStatusDead))
	}
	entries = append(entries, outboxEntry(shared.OutboxStatusPending))
	repo := newFakeInspector(entries...)
	svc := NewOutboxService(repo, zap.NewNop())

	count, err := svc.RetryAllDeadEntries(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(150), count)

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Zero(t, stats.Dead)
	assert.Equal(t, int64(151), stats.Pending)
	assert.Equal(t, int64(151), stats.Total)
}

func TestOutboxService_RetryAllStopsWhenUpdatesFail(t *testing.T) {
	repo := newFakeInspector(outboxEntry(shared.OutboxStatusDead))
	repo.updateErr = errors.New("database is locked")
	svc := NewOutboxService(repo, zap.NewNop())

	count, err := svc.RetryAllDeadEntries(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestOutboxService_GetEntry(t *testing.T) {
	entry := outboxEntry(shared.OutboxStatusFailed)
	svc := NewOutboxService(newFakeInspector(entry), zap.NewNop())

	dto, err := svc.GetEntry(context.Background(), entry.ID)
	require.NoError(t, err)
	assert.Equal(t, entry.EventID, dto.EventID)
	assert.Equal(t, "OrderPlaced", dto.EventType)
}
