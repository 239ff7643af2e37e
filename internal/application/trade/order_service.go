package trade

import (
	"context"

	"github.com/erp/backoffice/internal/domain/trade"
	"github.com/google/uuid"
)

// OrderService handles order business operations
type OrderService struct {
	orders *OrderCollection
	repo   trade.OrderRepository
}

// NewOrderService creates a new OrderService
func NewOrderService(orders *OrderCollection, repo trade.OrderRepository) *OrderService {
	return &OrderService{orders: orders, repo: repo}
}

// Create places an order. Numbering, pricing and the stock debit happen in
// the hook chain, all in one transaction.
func (s *OrderService) Create(ctx context.Context, req CreateOrderRequest) (*OrderResponse, error) {
	items := make([]trade.OrderItem, len(req.Items))
	for i, in := range req.Items {
		items[i] = trade.OrderItem{
			ProductID: in.ProductID,
			Quantity:  in.Quantity,
			UnitPrice: in.UnitPrice,
			Discount:  in.Discount,
		}
	}
	order, err := trade.NewOrder(trade.OrderType(req.OrderType), items)
	if err != nil {
		return nil, err
	}
	order.CustomerID = req.CustomerID
	if req.OrderDate != nil {
		order.OrderDate = *req.OrderDate
	}
	order.ShippingAddress = req.ShippingAddress.ToAddress()
	order.BillingAddress = req.BillingAddress.ToAddress()
	order.ShippingMethodID = req.ShippingMethodID
	order.PaymentMethod = req.PaymentMethod
	order.ShippingCost = req.ShippingCost
	order.Discount = req.Discount
	order.Notes = req.Notes

	created, err := s.orders.Create(ctx, order)
	if err != nil {
		return nil, err
	}
	resp := ToOrderResponse(created)
	return &resp, nil
}

// UpdateStatus moves an order to another status
func (s *OrderService) UpdateStatus(ctx context.Context, id uuid.UUID, req UpdateStatusRequest) (*OrderResponse, error) {
	updated, err := s.orders.Update(ctx, id, func(o *trade.Order) error {
		o.Status = trade.OrderStatus(req.Status)
		if req.Notes != "" {
			o.Notes = req.Notes
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	resp := ToOrderResponse(updated)
	return &resp, nil
}

// GetByID retrieves an order by ID
func (s *OrderService) GetByID(ctx context.Context, id uuid.UUID) (*OrderResponse, error) {
	o, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToOrderResponse(o)
	return &resp, nil
}

// List retrieves a page of orders
func (s *OrderService) List(ctx context.Context, filter OrderListFilter) ([]OrderResponse, int64, error) {
	f := pageFilter(filter.Page, filter.PageSize)
	if filter.Status != "" {
		f.Filters["status"] = filter.Status
	}
	if filter.CustomerID != nil {
		f.Filters["customer_id"] = *filter.CustomerID
	}
	orders, total, err := s.repo.FindAll(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	return toOrderResponses(orders), total, nil
}

// ListByCustomer returns the order history of a customer
func (s *OrderService) ListByCustomer(ctx context.Context, customerID uuid.UUID, page, pageSize int) ([]OrderResponse, int64, error) {
	orders, total, err := s.repo.FindByCustomer(ctx, customerID, pageFilter(page, pageSize))
	if err != nil {
		return nil, 0, err
	}
	return toOrderResponses(orders), total, nil
}

func toOrderResponses(orders []*trade.Order) []OrderResponse {
	out := make([]OrderResponse, len(orders))
	for i, o := range orders {
		out[i] = ToOrderResponse(o)
	}
	return out
}
