package handler

import (
	"context"
	"net/http"
	"testing"

	eventapp "github.com/erp/backoffice/internal/application/event"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockOutboxAdmin struct {
	mock.Mock
}

func (m *MockOutboxAdmin) DeadLetters(ctx context.Context, filter eventapp.OutboxFilter) ([]eventapp.OutboxEntryDTO, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]eventapp.OutboxEntryDTO), args.Get(1).(int64), args.Error(2)
}

func (m *MockOutboxAdmin) GetEntry(ctx context.Context, id uuid.UUID) (*eventapp.OutboxEntryDTO, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*eventapp.OutboxEntryDTO), args.Error(1)
}

func (m *MockOutboxAdmin) RetryDeadEntry(ctx context.Context, id uuid.UUID) (*eventapp.OutboxEntryDTO, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*eventapp.OutboxEntryDTO), args.Error(1)
}

func (m *MockOutboxAdmin) RetryAllDeadEntries(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOutboxAdmin) Stats(ctx context.Context) (*eventapp.OutboxStatsDTO, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*eventapp.OutboxStatsDTO), args.Error(1)
}

func setupOutboxRouter(admin *MockOutboxAdmin) *gin.Engine {
	h := NewOutboxHandler(admin)
	r := gin.New()
	r.GET("/admin/outbox/stats", h.Stats)
	r.GET("/admin/outbox/dead", h.DeadLetters)
	r.POST("/admin/outbox/retry-all", h.RetryAll)
	r.GET("/admin/outbox/:id", h.GetEntry)
	r.POST("/admin/outbox/:id/retry", h.Retry)
	return r
}

func TestOutboxHandler_DeadLetters(t *testing.T) {
	admin := new(MockOutboxAdmin)
	router := setupOutboxRouter(admin)

	admin.On("DeadLetters", mock.Anything, eventapp.OutboxFilter{Page: 1, PageSize: 2}).
		Return([]eventapp.OutboxEntryDTO{{Status: "DEAD"}, {Status: "DEAD"}}, int64(3), nil)

	w := performRequest(router, http.MethodGet, "/admin/outbox/dead?page=1&page_size=2", nil)

	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	assert.Equal(t, 2, resp.Meta.TotalPages)
	admin.AssertExpectations(t)
}

func TestOutboxHandler_Retry(t *testing.T) {
	admin := new(MockOutboxAdmin)
	router := setupOutboxRouter(admin)

	dead, sent := uuid.New(), uuid.New()
	admin.On("RetryDeadEntry", mock.Anything, dead).Return(&eventapp.OutboxEntryDTO{ID: dead, Status: "PENDING"}, nil)
	admin.On("RetryDeadEntry", mock.Anything, sent).
		Return(nil, shared.NewInvalidStateError("Outbox entry is %s, only dead entries can be retried", "SENT"))

	w := performRequest(router, http.MethodPost, "/admin/outbox/"+dead.String()+"/retry", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var got eventapp.OutboxEntryDTO
	decodeData(t, w, &got)
	assert.Equal(t, "PENDING", got.Status)

	w = performRequest(router, http.MethodPost, "/admin/outbox/"+sent.String()+"/retry", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestOutboxHandler_RetryAllAndStats(t *testing.T) {
	admin := new(MockOutboxAdmin)
	router := setupOutboxRouter(admin)

	admin.On("RetryAllDeadEntries", mock.Anything).Return(int64(4), nil)
	admin.On("Stats", mock.Anything).Return(&eventapp.OutboxStatsDTO{Pending: 4, Sent: 10, Total: 14}, nil)

	w := performRequest(router, http.MethodPost, "/admin/outbox/retry-all", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var retried RetryAllResponse
	decodeData(t, w, &retried)
	assert.Equal(t, int64(4), retried.Requeued)

	w = performRequest(router, http.MethodGet, "/admin/outbox/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var stats eventapp.OutboxStatsDTO
	decodeData(t, w, &stats)
	assert.Equal(t, int64(14), stats.Total)
}

func TestOutboxHandler_GetEntry(t *testing.T) {
	admin := new(MockOutboxAdmin)
	router := setupOutboxRouter(admin)

	missing := uuid.New()
	admin.On("GetEntry", mock.Anything, missing).Return(nil, shared.NewNotFoundError("Outbox entry"))

	w := performRequest(router, http.MethodGet, "/admin/outbox/"+missing.String(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
