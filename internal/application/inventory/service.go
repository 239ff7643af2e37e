package inventory

import (
	"context"

	"github.com/erp/backoffice/internal/domain/inventory"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/google/uuid"
)

// EntryService serves direct reads and edits of ledger entries
type EntryService struct {
	entries *EntryCollection
	repo    inventory.LedgerRepository
	ledger  *StockLedger
}

// NewEntryService creates an entry service
func NewEntryService(entries *EntryCollection, repo inventory.LedgerRepository, ledger *StockLedger) *EntryService {
	return &EntryService{entries: entries, repo: repo, ledger: ledger}
}

// Create opens a new entry. Its quantity flows into the product through the
// aggregate sync.
func (s *EntryService) Create(ctx context.Context, req CreateEntryRequest) (*EntryResponse, error) {
	entry, err := inventory.NewStockLedgerEntry(req.ProductID, req.WarehouseID, "", req.Quantity)
	if err != nil {
		return nil, err
	}
	entry.MinStockLevel = req.MinStockLevel
	entry.ReorderPoint = req.ReorderPoint
	entry.ReorderQuantity = req.ReorderQuantity
	entry.Location = inventory.Location(req.Location)
	entry.Notes = req.Notes

	created, err := s.entries.Create(ctx, entry)
	if err != nil {
		return nil, err
	}
	resp := ToEntryResponse(created)
	return &resp, nil
}

// Update edits an entry
func (s *EntryService) Update(ctx context.Context, id uuid.UUID, req UpdateEntryRequest) (*EntryResponse, error) {
	updated, err := s.entries.Update(ctx, id, func(e *inventory.StockLedgerEntry) error {
		if req.MinStockLevel != nil {
			e.MinStockLevel = *req.MinStockLevel
		}
		if req.ReorderPoint != nil {
			e.ReorderPoint = *req.ReorderPoint
		}
		if req.ReorderQuantity != nil {
			e.ReorderQuantity = *req.ReorderQuantity
		}
		if req.Location != nil {
			e.Location = inventory.Location(*req.Location)
		}
		if req.Notes != nil {
			e.Notes = *req.Notes
		}
		if req.Quantity != nil {
			return e.SetQuantity(*req.Quantity)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	resp := ToEntryResponse(updated)
	return &resp, nil
}

// GetByID returns one entry
func (s *EntryService) GetByID(ctx context.Context, id uuid.UUID) (*EntryResponse, error) {
	e, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToEntryResponse(e)
	return &resp, nil
}

// List returns a page of entries
func (s *EntryService) List(ctx context.Context, filter EntryListFilter) ([]EntryResponse, int64, error) {
	f := shared.DefaultFilter()
	if filter.Page > 0 {
		f.Page = filter.Page
	}
	if filter.PageSize > 0 {
		f.PageSize = filter.PageSize
	}
	if filter.ProductID != nil {
		f.Filters["product_id"] = *filter.ProductID
	}
	if filter.WarehouseID != nil {
		f.Filters["warehouse_id"] = *filter.WarehouseID
	}
	if filter.Status != "" {
		f.Filters["status"] = filter.Status
	}
	entries, total, err := s.repo.FindAll(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	out := make([]EntryResponse, len(entries))
	for i, e := range entries {
		out[i] = ToEntryResponse(e)
	}
	return out, total, nil
}

// ProductStock returns the ledger total of a product with its entries
func (s *EntryService) ProductStock(ctx context.Context, productID uuid.UUID) (*ProductStockResponse, error) {
	entries, err := s.ledger.Entries(ctx, productID)
	if err != nil {
		return nil, err
	}
	resp := &ProductStockResponse{
		ProductID: productID,
		Total:     inventory.Total(entries),
		Entries:   make([]EntryResponse, len(entries)),
	}
	for i, e := range entries {
		resp.Entries[i] = ToEntryResponse(e)
	}
	return resp, nil
}
