package catalog

import (
	"context"

	"github.com/erp/backoffice/internal/domain/catalog"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/google/uuid"
)

// DefaultLowStockLimit caps the low stock listing
const DefaultLowStockLimit = 100

// ProductService handles product-related business operations
type ProductService struct {
	products *ProductCollection
	repo     catalog.ProductRepository
}

// NewProductService creates a new ProductService
func NewProductService(products *ProductCollection, repo catalog.ProductRepository) *ProductService {
	return &ProductService{products: products, repo: repo}
}

// Create creates a new product. An initial stock quantity opens a ledger
// entry at the default warehouse.
func (s *ProductService) Create(ctx context.Context, req CreateProductRequest) (*ProductResponse, error) {
	product, err := catalog.NewProduct(req.Name, req.Price)
	if err != nil {
		return nil, err
	}
	product.Description = req.Description
	product.Barcode = req.Barcode
	product.CostPrice = req.CostPrice
	product.StockQuantity = req.StockQuantity
	product.MinStockLevel = req.MinStockLevel
	product.SupplierID = req.SupplierID

	created, err := s.products.Create(ctx, product)
	if err != nil {
		return nil, err
	}
	resp := ToProductResponse(created)
	return &resp, nil
}

// Update updates a product
func (s *ProductService) Update(ctx context.Context, id uuid.UUID, req UpdateProductRequest) (*ProductResponse, error) {
	updated, err := s.products.Update(ctx, id, func(p *catalog.Product) error {
		if req.Name != nil {
			p.Name = *req.Name
		}
		if req.Description != nil {
			p.Description = *req.Description
		}
		if req.Barcode != nil {
			p.Barcode = *req.Barcode
		}
		if req.Price != nil {
			p.Price = *req.Price
		}
		if req.CostPrice != nil {
			p.CostPrice = *req.CostPrice
		}
		if req.StockQuantity != nil {
			p.StockQuantity = *req.StockQuantity
		}
		if req.MinStockLevel != nil {
			p.MinStockLevel = *req.MinStockLevel
		}
		if req.SupplierID != nil {
			p.SupplierID = req.SupplierID
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	resp := ToProductResponse(updated)
	return &resp, nil
}

// GetByID retrieves a product by ID
func (s *ProductService) GetByID(ctx context.Context, id uuid.UUID) (*ProductResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToProductResponse(p)
	return &resp, nil
}

// GetBySKU retrieves a product by its SKU
func (s *ProductService) GetBySKU(ctx context.Context, sku string) (*ProductResponse, error) {
	p, err := s.repo.FindBySKU(ctx, sku)
	if err != nil {
		return nil, err
	}
	resp := ToProductResponse(p)
	return &resp, nil
}

// List retrieves a page of products
func (s *ProductService) List(ctx context.Context, filter ProductListFilter) ([]ProductResponse, int64, error) {
	f := shared.DefaultFilter()
	f.Search = filter.Search
	if filter.Page > 0 {
		f.Page = filter.Page
	}
	if filter.PageSize > 0 {
		f.PageSize = filter.PageSize
	}
	if filter.OrderBy != "" {
		f.OrderBy = filter.OrderBy
	}
	if filter.OrderDir != "" {
		f.OrderDir = filter.OrderDir
	}
	if filter.SupplierID != nil {
		f.Filters["supplier_id"] = *filter.SupplierID
	}
	products, total, err := s.repo.FindAll(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	return ToProductResponses(products), total, nil
}

// LowStock lists products at or below their minimum stock level
func (s *ProductService) LowStock(ctx context.Context, limit int) ([]ProductResponse, error) {
	if limit <= 0 || limit > DefaultLowStockLimit {
		limit = DefaultLowStockLimit
	}
	products, err := s.repo.FindLowStock(ctx, limit)
	if err != nil {
		return nil, err
	}
	return ToProductResponses(products), nil
}
