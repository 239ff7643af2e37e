package persistence

import (
	"strings"

	"github.com/erp/backoffice/internal/domain/shared"
	"gorm.io/gorm"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

func withCommon(fields ...string) map[string]bool {
	out := map[string]bool{"id": true, "created_at": true, "updated_at": true}
	for _, f := range fields {
		out[f] = true
	}
	return out
}

// Allowed sort fields per table
var (
	ProductSortFields        = withCommon("sku", "name", "price", "cost_price", "stock_quantity", "min_stock_level")
	CustomerSortFields       = withCommon("customer_number", "name", "email", "customer_type")
	SupplierSortFields       = withCommon("name", "email")
	WarehouseSortFields      = withCommon("code", "name", "is_default")
	ShippingMethodSortFields = withCommon("name", "carrier", "price", "is_default")
	TaxRateSortFields        = withCommon("name", "rate", "region", "category", "is_default")
	LedgerSortFields         = withCommon("inventory_id", "quantity", "status")
	OrderSortFields          = withCommon("order_number", "order_date", "status", "total")
	PurchaseSortFields       = withCommon("purchase_number", "order_date", "status", "total")
)

// paginate applies the validated sort, offset and limit of filter
func paginate(query *gorm.DB, filter shared.Filter, allowed map[string]bool) *gorm.DB {
	field := ValidateSortField(filter.OrderBy, allowed, "created_at")
	query = query.Order(field + " " + ValidateSortOrder(filter.OrderDir))
	if field != "id" {
		query = query.Order("id ASC")
	}
	if filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}
	return query
}

// search adds a case-insensitive substring match over columns. LOWER/LIKE
// behaves the same on PostgreSQL and SQLite.
func search(query *gorm.DB, term string, columns ...string) *gorm.DB {
	term = strings.TrimSpace(term)
	if term == "" || len(columns) == 0 {
		return query
	}
	pattern := "%" + strings.ToLower(term) + "%"
	clauses := make([]string, len(columns))
	args := make([]any, len(columns))
	for i, c := range columns {
		clauses[i] = "LOWER(" + c + ") LIKE ?"
		args[i] = pattern
	}
	return query.Where("("+strings.Join(clauses, " OR ")+")", args...)
}

// equalFilters adds an equality condition for each whitelisted key present
// in filter.Filters
func equalFilters(query *gorm.DB, filter shared.Filter, columns ...string) *gorm.DB {
	for _, c := range columns {
		if v, ok := filter.Filters[c]; ok {
			query = query.Where(c+" = ?", v)
		}
	}
	return query
}

// lastNumber returns the greatest document number in column. Numbers share a
// prefix, so ordering by length first makes "X-100000" sort after "X-99999".
func lastNumber(db *gorm.DB, model any, column string) (string, error) {
	var numbers []string
	err := db.Model(model).
		Order("LENGTH(" + column + ") DESC").
		Order(column + " DESC").
		Limit(1).
		Pluck(column, &numbers).Error
	if err != nil {
		return "", err
	}
	if len(numbers) == 0 {
		return "", nil
	}
	return numbers[0], nil
}

// reusable lets the same filtered query serve both Count and Find
func reusable(query *gorm.DB) *gorm.DB {
	return query.Session(&gorm.Session{})
}
