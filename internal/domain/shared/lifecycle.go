package shared

import (
	"fmt"
	"sort"
)

// StockEffect describes what a status transition must do to the stock ledger
type StockEffect int

const (
	// EffectNone leaves the ledger untouched
	EffectNone StockEffect = iota
	// EffectDebit drains stock for new demand; shortages are hard errors
	EffectDebit
	// EffectRestore puts previously debited stock back
	EffectRestore
	// EffectCredit adds received stock
	EffectCredit
	// EffectReverse takes previously credited stock back out, clamping at zero
	EffectReverse
)

// String returns the effect name
func (e StockEffect) String() string {
	switch e {
	case EffectNone:
		return "none"
	case EffectDebit:
		return "debit"
	case EffectRestore:
		return "restore"
	case EffectCredit:
		return "credit"
	case EffectReverse:
		return "reverse"
	default:
		return fmt.Sprintf("effect(%d)", int(e))
	}
}

// Lifecycle is a transition table for a status type. Each allowed edge
// carries the stock effect the owning hook chain has to apply.
type Lifecycle[S ~string] struct {
	name     string
	initial  S
	onCreate StockEffect
	edges    map[S]map[S]StockEffect
	terminal map[S]bool
}

// NewLifecycle creates an empty lifecycle starting at initial. onCreate is
// the effect of entering the initial status on creation.
func NewLifecycle[S ~string](name string, initial S, onCreate StockEffect) *Lifecycle[S] {
	return &Lifecycle[S]{
		name:     name,
		initial:  initial,
		onCreate: onCreate,
		edges:    make(map[S]map[S]StockEffect),
		terminal: make(map[S]bool),
	}
}

// Allow registers from -> to with the given effect
func (l *Lifecycle[S]) Allow(from, to S, effect StockEffect) *Lifecycle[S] {
	if l.edges[from] == nil {
		l.edges[from] = make(map[S]StockEffect)
	}
	l.edges[from][to] = effect
	return l
}

// Terminal marks statuses with no way out
func (l *Lifecycle[S]) Terminal(statuses ...S) *Lifecycle[S] {
	for _, s := range statuses {
		l.terminal[s] = true
		delete(l.edges, s)
	}
	return l
}

// Initial returns the status new documents start in
func (l *Lifecycle[S]) Initial() S {
	return l.initial
}

// CreateEffect returns the effect of creating a document in the initial status
func (l *Lifecycle[S]) CreateEffect() StockEffect {
	return l.onCreate
}

// IsTerminal reports whether no transition leaves s
func (l *Lifecycle[S]) IsTerminal(s S) bool {
	return l.terminal[s]
}

// IsKnown reports whether s takes part in the lifecycle
func (l *Lifecycle[S]) IsKnown(s S) bool {
	if s == l.initial || l.terminal[s] {
		return true
	}
	if _, ok := l.edges[s]; ok {
		return true
	}
	for _, targets := range l.edges {
		if _, ok := targets[s]; ok {
			return true
		}
	}
	return false
}

// Allowed returns the statuses reachable from s in one step, sorted
func (l *Lifecycle[S]) Allowed(from S) []S {
	out := make([]S, 0, len(l.edges[from]))
	for to := range l.edges[from] {
		out = append(out, to)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Transition validates from -> to. Staying in the same status is always
// allowed and has no effect. Leaving a terminal status or taking an edge
// that is not in the table fails with INVALID_STATE.
func (l *Lifecycle[S]) Transition(from, to S) (StockEffect, error) {
	if !l.IsKnown(to) {
		return EffectNone, NewInvalidStateError("unknown %s status %q", l.name, to)
	}
	if from == to {
		return EffectNone, nil
	}
	if l.terminal[from] {
		return EffectNone, NewInvalidStateError("%s in status %q can no longer change status", l.name, from)
	}
	effect, ok := l.edges[from][to]
	if !ok {
		return EffectNone, NewInvalidStateError("cannot change %s status from %q to %q", l.name, from, to)
	}
	return effect, nil
}
