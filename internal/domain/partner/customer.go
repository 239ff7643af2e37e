package partner

import (
	"context"
	"regexp"
	"strings"

	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/google/uuid"
)

// CustomerType classifies customers
type CustomerType string

const (
	CustomerTypeRetail    CustomerType = "retail"
	CustomerTypeWholesale CustomerType = "wholesale"
	CustomerTypeBusiness  CustomerType = "business"
)

// IsValid reports whether t is a known customer type
func (t CustomerType) IsValid() bool {
	switch t {
	case CustomerTypeRetail, CustomerTypeWholesale, CustomerTypeBusiness:
		return true
	}
	return false
}

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// Customer is a buyer of orders
type Customer struct {
	shared.BaseAggregateRoot
	CustomerNumber  string
	Name            string
	ContactPerson   string
	Email           string
	Phone           string
	CustomerType    CustomerType
	TaxID           string
	VatID           string
	PaymentTerms    string
	Notes           string
	BillingAddress  shared.Address
	ShippingAddress shared.Address
}

// NewCustomer creates a customer with a placeholder number
func NewCustomer(name, email string, customerType CustomerType) (*Customer, error) {
	c := &Customer{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              strings.TrimSpace(name),
		Email:             NormalizeEmail(email),
		CustomerType:      customerType,
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks field level invariants
func (c *Customer) Validate() error {
	if c.Name == "" {
		return shared.NewDomainError("INVALID_NAME", "Customer name cannot be empty")
	}
	if len(c.Name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Customer name cannot exceed 200 characters")
	}
	if c.Email != "" && !emailRegex.MatchString(c.Email) {
		return shared.NewDomainError("INVALID_EMAIL", "Invalid email format")
	}
	if c.CustomerType == "" {
		c.CustomerType = CustomerTypeRetail
	}
	if !c.CustomerType.IsValid() {
		return shared.NewDomainError("INVALID_CUSTOMER_TYPE", "Unknown customer type")
	}
	return nil
}

// Clone returns a copy without pending events
func (c *Customer) Clone() *Customer {
	out := *c
	out.BaseAggregateRoot = c.CloneRoot()
	return &out
}

// NormalizeEmail lower-cases and trims an email address
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CustomerRepository defines the interface for customer persistence
type CustomerRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Customer, error)
	// FindByEmail returns the first customer with the address, ErrNotFound if none
	FindByEmail(ctx context.Context, email string) (*Customer, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]*Customer, int64, error)
	LastNumber(ctx context.Context) (string, error)
	Create(ctx context.Context, customer *Customer) error
	SaveWithLock(ctx context.Context, customer *Customer) error
}
