package event

import (
	"context"
	"testing"

	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutboxRecorder_Record(t *testing.T) {
	repo := newMockOutboxRepository()
	recorder := NewOutboxRecorder(repo, NewEventSerializer(), 3)
	first := newTestEvent("TestEvent")
	second := newTestEvent("OtherEvent")

	require.NoError(t, recorder.Record(context.Background(), first, second))

	require.Len(t, repo.entries, 2)
	for _, entry := range repo.entries {
		assert.Equal(t, shared.OutboxStatusPending, entry.Status)
		assert.Equal(t, 3, entry.MaxRetries)
		assert.Contains(t, string(entry.Payload), `"sku":"ART-00042"`)
	}
}

func TestOutboxRecorder_DefaultsMaxRetries(t *testing.T) {
	repo := newMockOutboxRepository()
	recorder := NewOutboxRecorder(repo, NewEventSerializer(), 0)

	event := newTestEvent("TestEvent")
	require.NoError(t, recorder.Record(context.Background(), event))

	for _, entry := range repo.entries {
		assert.Equal(t, shared.DefaultMaxRetries, entry.MaxRetries)
		assert.Equal(t, event.EventID(), entry.EventID)
		assert.Equal(t, event.AggregateID(), entry.AggregateID)
	}
}

func TestOutboxRecorder_NoEvents(t *testing.T) {
	repo := newMockOutboxRepository()
	recorder := NewOutboxRecorder(repo, NewEventSerializer(), 0)

	require.NoError(t, recorder.Record(context.Background()))
	assert.Empty(t, repo.entries)
}
