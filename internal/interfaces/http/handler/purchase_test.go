package handler

import (
	"context"
	"net/http"
	"testing"

	tradeapp "github.com/erp/backoffice/internal/application/trade"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockPurchaseService struct {
	mock.Mock
}

func (m *MockPurchaseService) Create(ctx context.Context, req tradeapp.CreatePurchaseRequest) (*tradeapp.PurchaseResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tradeapp.PurchaseResponse), args.Error(1)
}

func (m *MockPurchaseService) UpdateStatus(ctx context.Context, id uuid.UUID, req tradeapp.UpdatePurchaseStatusRequest) (*tradeapp.PurchaseResponse, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tradeapp.PurchaseResponse), args.Error(1)
}

func (m *MockPurchaseService) GetByID(ctx context.Context, id uuid.UUID) (*tradeapp.PurchaseResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tradeapp.PurchaseResponse), args.Error(1)
}

func (m *MockPurchaseService) List(ctx context.Context, filter tradeapp.PurchaseListFilter) ([]tradeapp.PurchaseResponse, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]tradeapp.PurchaseResponse), args.Get(1).(int64), args.Error(2)
}

func setupPurchaseRouter(purchases *MockPurchaseService) *gin.Engine {
	h := NewPurchaseHandler(purchases)
	r := gin.New()
	r.POST("/purchases", h.Create)
	r.GET("/purchases", h.List)
	r.GET("/purchases/:id", h.GetByID)
	r.PUT("/purchases/:id/status", h.UpdateStatus)
	return r
}

func TestPurchaseHandler_Create(t *testing.T) {
	purchases := new(MockPurchaseService)
	router := setupPurchaseRouter(purchases)

	supplierID := uuid.New()
	purchases.On("Create", mock.Anything, mock.MatchedBy(func(req tradeapp.CreatePurchaseRequest) bool {
		return req.SupplierID == supplierID && len(req.Items) == 1 && req.Items[0].Quantity == 10
	})).Return(&tradeapp.PurchaseResponse{ID: uuid.New(), Status: "ordered"}, nil)

	w := performRequest(router, http.MethodPost, "/purchases", map[string]any{
		"supplier_id": supplierID,
		"items":       []map[string]any{{"product_id": uuid.New(), "quantity": 10, "unit_price": "2.50"}},
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	w = performRequest(router, http.MethodPost, "/purchases", map[string]any{
		"supplier_id": supplierID,
		"items":       []map[string]any{{"product_id": uuid.New(), "quantity": 1, "unit_price": "-2"}},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	purchases.AssertExpectations(t)
}

func TestPurchaseHandler_UpdateStatus(t *testing.T) {
	purchases := new(MockPurchaseService)
	router := setupPurchaseRouter(purchases)

	id := uuid.New()
	itemID := uuid.New()
	purchases.On("UpdateStatus", mock.Anything, id, mock.MatchedBy(func(req tradeapp.UpdatePurchaseStatusRequest) bool {
		return req.Status == "partiallyDelivered" && len(req.Received) == 1 && req.Received[0].ItemID == itemID && req.Received[0].Quantity == 4
	})).Return(&tradeapp.PurchaseResponse{ID: id, Status: "partiallyDelivered"}, nil)

	w := performRequest(router, http.MethodPut, "/purchases/"+id.String()+"/status", map[string]any{
		"status":   "partiallyDelivered",
		"received": []map[string]any{{"item_id": itemID, "quantity": 4}},
	})

	assert.Equal(t, http.StatusOK, w.Code)
	purchases.AssertExpectations(t)
}

func TestPurchaseHandler_List(t *testing.T) {
	purchases := new(MockPurchaseService)
	router := setupPurchaseRouter(purchases)

	purchases.On("List", mock.Anything, mock.MatchedBy(func(f tradeapp.PurchaseListFilter) bool {
		return f.Status == "ordered" && f.SupplierID == nil
	})).Return([]tradeapp.PurchaseResponse{}, int64(0), nil)

	w := performRequest(router, http.MethodGet, "/purchases?status=ordered", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	purchases.AssertExpectations(t)
}
