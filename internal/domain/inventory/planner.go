package inventory

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
)

// Adjustment is one planned quantity change on an existing entry
type Adjustment struct {
	EntryID uuid.UUID
	From    int
	To      int
}

// Delta returns To - From
func (a Adjustment) Delta() int {
	return a.To - a.From
}

// ShortageError is returned by PlanDebit when the entries cannot cover the request
type ShortageError struct {
	Available int
	Requested int
}

func (e *ShortageError) Error() string {
	return fmt.Sprintf("insufficient stock: available %d, requested %d", e.Available, e.Requested)
}

// byQuantityDesc returns the entries sorted by quantity, highest first. Ties
// keep a stable order on the inventory id.
func byQuantityDesc(entries []*StockLedgerEntry) []*StockLedgerEntry {
	sorted := make([]*StockLedgerEntry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Quantity != sorted[j].Quantity {
			return sorted[i].Quantity > sorted[j].Quantity
		}
		return sorted[i].InventoryID < sorted[j].InventoryID
	})
	return sorted
}

// PlanDebit drains qty from the fullest entries first. Nothing is planned
// unless the whole quantity can be taken.
func PlanDebit(entries []*StockLedgerEntry, qty int) ([]Adjustment, error) {
	if qty <= 0 {
		return nil, nil
	}
	if available := Total(entries); available < qty {
		return nil, &ShortageError{Available: available, Requested: qty}
	}
	remaining := qty
	var plan []Adjustment
	for _, e := range byQuantityDesc(entries) {
		if remaining == 0 {
			break
		}
		if e.Quantity <= 0 {
			continue
		}
		take := min(e.Quantity, remaining)
		plan = append(plan, Adjustment{EntryID: e.ID, From: e.Quantity, To: e.Quantity - take})
		remaining -= take
	}
	return plan, nil
}

// PlanReverse takes qty back out like PlanDebit but clamps at zero instead of
// failing. The part that could not be taken is returned as shortfall.
func PlanReverse(entries []*StockLedgerEntry, qty int) (plan []Adjustment, shortfall int) {
	if qty <= 0 {
		return nil, 0
	}
	remaining := qty
	for _, e := range byQuantityDesc(entries) {
		if remaining == 0 {
			break
		}
		if e.Quantity <= 0 {
			continue
		}
		take := min(e.Quantity, remaining)
		plan = append(plan, Adjustment{EntryID: e.ID, From: e.Quantity, To: e.Quantity - take})
		remaining -= take
	}
	return plan, remaining
}

// PlanRestore puts qty back onto the entry currently holding the most stock.
// ok is false when the product has no entry at all.
func PlanRestore(entries []*StockLedgerEntry, qty int) (adj Adjustment, ok bool) {
	if len(entries) == 0 {
		return Adjustment{}, false
	}
	top := byQuantityDesc(entries)[0]
	to := top.Quantity + qty
	if to < 0 {
		to = 0
	}
	return Adjustment{EntryID: top.ID, From: top.Quantity, To: to}, true
}

// PlanCredit adds qty: onto the single entry, proportionally across several,
// or, when there is no entry yet, as createQty for a new entry.
func PlanCredit(entries []*StockLedgerEntry, qty int) (plan []Adjustment, createQty int) {
	if qty <= 0 {
		return nil, 0
	}
	switch len(entries) {
	case 0:
		return nil, qty
	case 1:
		e := entries[0]
		return []Adjustment{{EntryID: e.ID, From: e.Quantity, To: e.Quantity + qty}}, 0
	}
	return distribute(byQuantityDesc(entries), qty), 0
}

// PlanSetTotal moves the product total to target: a single entry is set
// directly, several entries share the difference in proportion to what they
// hold (never going below zero), and without entries createQty holds the
// whole target.
func PlanSetTotal(entries []*StockLedgerEntry, target int) (plan []Adjustment, createQty int) {
	if target < 0 {
		target = 0
	}
	switch len(entries) {
	case 0:
		return nil, target
	case 1:
		e := entries[0]
		if e.Quantity == target {
			return nil, 0
		}
		return []Adjustment{{EntryID: e.ID, From: e.Quantity, To: target}}, 0
	}
	diff := target - Total(entries)
	if diff == 0 {
		return nil, 0
	}
	return distribute(byQuantityDesc(entries), diff), 0
}

// distribute spreads diff across entries weighted by their quantity. Shares
// are rounded with the largest remainder method so they add up to diff; when
// nothing is held yet the diff is split evenly. Results are floored at zero.
func distribute(entries []*StockLedgerEntry, diff int) []Adjustment {
	total := Total(entries)
	magnitude := diff
	sign := 1
	if diff < 0 {
		magnitude = -diff
		sign = -1
	}

	shares := make([]int, len(entries))
	remainders := make([]int, len(entries))
	assigned := 0
	for i, e := range entries {
		if total == 0 {
			shares[i] = magnitude / len(entries)
			remainders[i] = 0
		} else {
			num := magnitude * e.Quantity
			shares[i] = num / total
			remainders[i] = num % total
		}
		assigned += shares[i]
	}

	order := make([]int, len(entries))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return remainders[order[a]] > remainders[order[b]]
	})
	for k := 0; assigned < magnitude; k++ {
		shares[order[k%len(order)]]++
		assigned++
	}

	plan := make([]Adjustment, 0, len(entries))
	for i, e := range entries {
		if shares[i] == 0 {
			continue
		}
		to := e.Quantity + sign*shares[i]
		if to < 0 {
			to = 0
		}
		plan = append(plan, Adjustment{EntryID: e.ID, From: e.Quantity, To: to})
	}
	return plan
}
