// Package trade runs the order and purchase hook chains that number, price
// and validate documents and move stock through the ledger on status changes.
package trade

import (
	"context"
	"sort"

	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/google/uuid"
)

// StockLedger applies stock movements
type StockLedger interface {
	ApplyDelta(ctx context.Context, productID uuid.UUID, quantity int, effect shared.StockEffect) error
}

type productQuantity struct {
	productID uuid.UUID
	quantity  int
}

// byProduct orders quantities by product id so concurrent writers take the
// product locks in the same order.
func byProduct(quantities map[uuid.UUID]int) []productQuantity {
	out := make([]productQuantity, 0, len(quantities))
	for id, q := range quantities {
		out = append(out, productQuantity{productID: id, quantity: q})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].productID.String() < out[j].productID.String()
	})
	return out
}

func applyAll(ctx context.Context, ledger StockLedger, quantities map[uuid.UUID]int, effect shared.StockEffect) error {
	for _, pq := range byProduct(quantities) {
		if err := ledger.ApplyDelta(ctx, pq.productID, pq.quantity, effect); err != nil {
			return err
		}
	}
	return nil
}
