package handler

import (
	"context"

	eventapp "github.com/erp/backoffice/internal/application/event"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// OutboxAdmin is the dead letter surface of the outbox
type OutboxAdmin interface {
	DeadLetters(ctx context.Context, filter eventapp.OutboxFilter) ([]eventapp.OutboxEntryDTO, int64, error)
	GetEntry(ctx context.Context, id uuid.UUID) (*eventapp.OutboxEntryDTO, error)
	RetryDeadEntry(ctx context.Context, id uuid.UUID) (*eventapp.OutboxEntryDTO, error)
	RetryAllDeadEntries(ctx context.Context) (int64, error)
	Stats(ctx context.Context) (*eventapp.OutboxStatsDTO, error)
}

// OutboxHandler handles outbox management HTTP requests
type OutboxHandler struct {
	BaseHandler
	outbox OutboxAdmin
}

// NewOutboxHandler creates a new outbox handler
func NewOutboxHandler(outbox OutboxAdmin) *OutboxHandler {
	return &OutboxHandler{outbox: outbox}
}

// DeadLetters godoc
// @Summary      List dead letter entries
// @Tags         outbox
// @Router       /admin/outbox/dead [get]
func (h *OutboxHandler) DeadLetters(c *gin.Context) {
	var filter eventapp.OutboxFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	entries, total, err := h.outbox.DeadLetters(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, entries, total, filter.Page, filter.PageSize)
}

func (h *OutboxHandler) GetEntry(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	entry, err := h.outbox.GetEntry(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, entry)
}

// Retry godoc
// @Summary      Requeue a dead letter entry
// @Tags         outbox
// @Router       /admin/outbox/{id}/retry [post]
func (h *OutboxHandler) Retry(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	entry, err := h.outbox.RetryDeadEntry(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, entry)
}

// RetryAllResponse reports how many entries were requeued
type RetryAllResponse struct {
	Requeued int64 `json:"requeued"`
}

func (h *OutboxHandler) RetryAll(c *gin.Context) {
	count, err := h.outbox.RetryAllDeadEntries(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, RetryAllResponse{Requeued: count})
}

func (h *OutboxHandler) Stats(c *gin.Context) {
	stats, err := h.outbox.Stats(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stats)
}
