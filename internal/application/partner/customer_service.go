package partner

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/erp/backoffice/internal/application/collection"
	"github.com/erp/backoffice/internal/domain/partner"
	"github.com/erp/backoffice/internal/domain/sequence"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/erp/backoffice/internal/infrastructure/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// CustomerCollection is the write path of customers
type CustomerCollection = collection.Collection[*partner.Customer]

// CustomerHooks issues customer numbers
type CustomerHooks struct {
	numbers *sequence.Generator
}

// NewCustomerHooks creates the customer hooks. source yields the highest number.
func NewCustomerHooks(source sequence.Source) *CustomerHooks {
	return &CustomerHooks{numbers: sequence.NewGenerator(sequence.PrefixCustomer, source)}
}

// Register installs the hooks on the customer collection
func (h *CustomerHooks) Register(customers *CustomerCollection) {
	customers.BeforeChange("assignCustomerNumber", h.AssignCustomerNumber)
	customers.BeforeChange("validateCustomer", validateCustomer)
}

// AssignCustomerNumber replaces an empty or placeholder number on create.
// The number is fixed afterwards.
func (h *CustomerHooks) AssignCustomerNumber(ctx context.Context, args collection.BeforeChangeArgs[*partner.Customer]) (*partner.Customer, error) {
	c := args.Data
	if args.Operation == collection.OperationUpdate {
		if c.CustomerNumber != args.Original.CustomerNumber {
			return nil, shared.NewDomainError(shared.CodeInvalidInput, "Customer number cannot be changed")
		}
		return c, nil
	}
	if c.CustomerNumber != "" && c.CustomerNumber != sequence.Placeholder {
		return c, nil
	}
	number, err := h.numbers.Next(ctx)
	if err != nil {
		return nil, err
	}
	c.CustomerNumber = number
	return c, nil
}

func validateCustomer(_ context.Context, args collection.BeforeChangeArgs[*partner.Customer]) (*partner.Customer, error) {
	c := args.Data
	c.Email = partner.NormalizeEmail(c.Email)
	c.BillingAddress = c.BillingAddress.Normalized()
	c.ShippingAddress = c.ShippingAddress.Normalized()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// CustomerService handles customer-related business operations
type CustomerService struct {
	customers *CustomerCollection
	repo      partner.CustomerRepository
}

// NewCustomerService creates a new CustomerService
func NewCustomerService(customers *CustomerCollection, repo partner.CustomerRepository) *CustomerService {
	return &CustomerService{customers: customers, repo: repo}
}

// Create creates a new customer
func (s *CustomerService) Create(ctx context.Context, req CreateCustomerRequest) (*CustomerResponse, error) {
	c, err := partner.NewCustomer(req.Name, req.Email, partner.CustomerType(req.CustomerType))
	if err != nil {
		return nil, err
	}
	c.CustomerNumber = sequence.Placeholder
	c.ContactPerson = req.ContactPerson
	c.Phone = req.Phone
	c.TaxID = req.TaxID
	c.VatID = req.VatID
	c.PaymentTerms = req.PaymentTerms
	c.Notes = req.Notes
	c.BillingAddress = req.BillingAddress.ToAddress()
	c.ShippingAddress = req.ShippingAddress.ToAddress()

	created, err := s.customers.Create(ctx, c)
	if err != nil {
		return nil, err
	}
	resp := ToCustomerResponse(created)
	return &resp, nil
}

// GetByID retrieves a customer by ID
func (s *CustomerService) GetByID(ctx context.Context, id uuid.UUID) (*CustomerResponse, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToCustomerResponse(c)
	return &resp, nil
}

// List retrieves a page of customers
func (s *CustomerService) List(ctx context.Context, filter ListFilter) ([]CustomerResponse, int64, error) {
	customers, total, err := s.repo.FindAll(ctx, filter.toFilter())
	if err != nil {
		return nil, 0, err
	}
	out := make([]CustomerResponse, len(customers))
	for i, c := range customers {
		out[i] = ToCustomerResponse(c)
	}
	return out, total, nil
}

// ResolveByEmail returns the first customer with email, creating a retail
// customer when there is none. name may be empty; the customer is then named
// after the local part of the address.
func (s *CustomerService) ResolveByEmail(ctx context.Context, email, name string) (*partner.Customer, error) {
	email = partner.NormalizeEmail(email)
	existing, err := s.repo.FindByEmail(ctx, email)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, fmt.Errorf("look up customer %s: %w", email, err)
	}

	if strings.TrimSpace(name) == "" {
		name = NameFromEmail(email)
	}
	c, err := partner.NewCustomer(name, email, partner.CustomerTypeRetail)
	if err != nil {
		return nil, err
	}
	c.CustomerNumber = sequence.Placeholder
	created, err := s.customers.Create(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("create customer for %s: %w", email, err)
	}
	logger.FromContext(ctx).Info("customer created from order principal",
		zap.String("customer_id", created.ID.String()),
		zap.String("customer_number", created.CustomerNumber),
	)
	return created, nil
}

// NameFromEmail turns "erika.mustermann@example.de" into "Erika Mustermann"
func NameFromEmail(email string) string {
	local, _, _ := strings.Cut(email, "@")
	local = strings.NewReplacer(".", " ", "_", " ", "-", " ", "+", " ").Replace(local)
	name := strings.Join(strings.Fields(local), " ")
	if name == "" {
		return email
	}
	// a Caser keeps state, so each call gets its own
	return cases.Title(language.German).String(name)
}
