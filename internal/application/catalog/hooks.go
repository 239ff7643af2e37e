package catalog

import (
	"context"

	"github.com/erp/backoffice/internal/application/collection"
	"github.com/erp/backoffice/internal/domain/catalog"
	"github.com/erp/backoffice/internal/domain/sequence"
	"github.com/erp/backoffice/internal/domain/shared"
)

// ProductCollection is the write path of products
type ProductCollection = collection.Collection[*catalog.Product]

// ProductHooks issues SKUs and guards product writes
type ProductHooks struct {
	skus *sequence.Generator
}

// NewProductHooks creates the product hooks. source yields the highest SKU.
func NewProductHooks(source sequence.Source) *ProductHooks {
	return &ProductHooks{skus: sequence.NewGenerator(sequence.PrefixProduct, source)}
}

// Register installs the hooks on the product collection
func (h *ProductHooks) Register(products *ProductCollection) {
	products.BeforeChange("assignSKU", h.AssignSKU)
	products.BeforeChange("validateProduct", h.ValidateProduct)
}

// AssignSKU issues the next ART number on create and keeps it fixed afterwards
func (h *ProductHooks) AssignSKU(ctx context.Context, args collection.BeforeChangeArgs[*catalog.Product]) (*catalog.Product, error) {
	p := args.Data
	if args.Operation == collection.OperationUpdate {
		if p.SKU != args.Original.SKU {
			return nil, shared.NewDomainError(shared.CodeInvalidInput, "SKU cannot be changed")
		}
		return p, nil
	}
	sku, err := h.skus.Next(ctx)
	if err != nil {
		return nil, err
	}
	if err := p.AssignSKU(sku); err != nil {
		return nil, err
	}
	return p, nil
}

// ValidateProduct checks the product and raises its events
func (h *ProductHooks) ValidateProduct(_ context.Context, args collection.BeforeChangeArgs[*catalog.Product]) (*catalog.Product, error) {
	p := args.Data
	if err := p.Validate(); err != nil {
		return nil, err
	}
	switch args.Operation {
	case collection.OperationCreate:
		p.AddDomainEvent(catalog.NewProductCreatedEvent(p))
	case collection.OperationUpdate:
		if !p.Price.Equal(args.Original.Price) {
			p.AddDomainEvent(catalog.NewProductPriceChangedEvent(p, args.Original.Price))
		}
	}
	return p, nil
}
