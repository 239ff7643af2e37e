package trade

import (
	"context"

	"github.com/erp/backoffice/internal/domain/trade"
	"github.com/google/uuid"
)

// PurchaseService handles purchase business operations
type PurchaseService struct {
	purchases *PurchaseCollection
	repo      trade.PurchaseRepository
}

// NewPurchaseService creates a new PurchaseService
func NewPurchaseService(purchases *PurchaseCollection, repo trade.PurchaseRepository) *PurchaseService {
	return &PurchaseService{purchases: purchases, repo: repo}
}

// Create orders goods from a supplier. Nothing is credited until delivery.
func (s *PurchaseService) Create(ctx context.Context, req CreatePurchaseRequest) (*PurchaseResponse, error) {
	items := make([]trade.PurchaseItem, len(req.Items))
	for i, in := range req.Items {
		items[i] = trade.PurchaseItem{
			ProductID: in.ProductID,
			Quantity:  in.Quantity,
			UnitPrice: in.UnitPrice,
			Discount:  in.Discount,
		}
	}
	p, err := trade.NewPurchase(req.SupplierID, items)
	if err != nil {
		return nil, err
	}
	if req.OrderDate != nil {
		p.OrderDate = *req.OrderDate
	}
	p.ExpectedDeliveryDate = req.ExpectedDeliveryDate
	p.ShippingCost = req.ShippingCost
	p.Discount = req.Discount
	p.Notes = req.Notes

	created, err := s.purchases.Create(ctx, p)
	if err != nil {
		return nil, err
	}
	resp := ToPurchaseResponse(created)
	return &resp, nil
}

// UpdateStatus moves a purchase to another status. For a partial delivery
// the reported received quantities replace the stored ones.
func (s *PurchaseService) UpdateStatus(ctx context.Context, id uuid.UUID, req UpdatePurchaseStatusRequest) (*PurchaseResponse, error) {
	received := make(map[uuid.UUID]int, len(req.Received))
	for _, r := range req.Received {
		received[r.ItemID] = r.Quantity
	}
	updated, err := s.purchases.Update(ctx, id, func(p *trade.Purchase) error {
		p.Status = trade.PurchaseStatus(req.Status)
		if req.Notes != "" {
			p.Notes = req.Notes
		}
		for i := range p.Items {
			if q, ok := received[p.Items[i].ID]; ok {
				p.Items[i].ReceivedQuantity = q
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	resp := ToPurchaseResponse(updated)
	return &resp, nil
}

// GetByID retrieves a purchase by ID
func (s *PurchaseService) GetByID(ctx context.Context, id uuid.UUID) (*PurchaseResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToPurchaseResponse(p)
	return &resp, nil
}

// List retrieves a page of purchases
func (s *PurchaseService) List(ctx context.Context, filter PurchaseListFilter) ([]PurchaseResponse, int64, error) {
	f := pageFilter(filter.Page, filter.PageSize)
	if filter.Status != "" {
		f.Filters["status"] = filter.Status
	}
	if filter.SupplierID != nil {
		f.Filters["supplier_id"] = *filter.SupplierID
	}
	purchases, total, err := s.repo.FindAll(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	out := make([]PurchaseResponse, len(purchases))
	for i, p := range purchases {
		out[i] = ToPurchaseResponse(p)
	}
	return out, total, nil
}
