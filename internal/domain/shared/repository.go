package shared

import "context"

// TransactionScope runs fn inside one database transaction. The transaction
// travels on the context handed to fn; a nested Execute on that context joins
// the outer transaction instead of opening a new one.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(ctx context.Context) error) error
	InTransaction(ctx context.Context) bool
}

// Filter is the list query every repository understands. Filters holds
// equality conditions keyed by column; repositories ignore columns they do not
// allow.
type Filter struct {
	Page     int
	PageSize int
	OrderBy  string
	OrderDir string
	Search   string
	Filters  map[string]any
}

// DefaultFilter is the first page of twenty, newest first
func DefaultFilter() Filter {
	return Filter{
		Page:     1,
		PageSize: 20,
		OrderBy:  "created_at",
		OrderDir: "desc",
		Filters:  map[string]any{},
	}
}

// Offset is the number of rows before the requested page
func (f Filter) Offset() int {
	if f.Page < 1 {
		return 0
	}
	return (f.Page - 1) * f.PageSize
}
