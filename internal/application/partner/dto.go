package partner

import (
	"time"

	"github.com/erp/backoffice/internal/domain/partner"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/google/uuid"
)

// AddressDTO is a postal address in requests and responses
type AddressDTO struct {
	Street  string `json:"street" binding:"max=200"`
	ZipCode string `json:"zip_code" binding:"max=20"`
	City    string `json:"city" binding:"max=100"`
	Country string `json:"country" binding:"max=100"`
}

// ToAddress converts to the domain value object, filling the default country
func (a AddressDTO) ToAddress() shared.Address {
	return shared.Address(a).Normalized()
}

// CreateCustomerRequest represents a request to create a customer. The
// customer number is issued by the system.
type CreateCustomerRequest struct {
	Name            string     `json:"name" binding:"required,min=1,max=200"`
	ContactPerson   string     `json:"contact_person" binding:"max=100"`
	Email           string     `json:"email" binding:"omitempty,email"`
	Phone           string     `json:"phone" binding:"max=50"`
	CustomerType    string     `json:"customer_type" binding:"omitempty,oneof=retail wholesale business"`
	TaxID           string     `json:"tax_id" binding:"max=50"`
	VatID           string     `json:"vat_id" binding:"max=50"`
	PaymentTerms    string     `json:"payment_terms" binding:"max=100"`
	Notes           string     `json:"notes" binding:"max=2000"`
	BillingAddress  AddressDTO `json:"billing_address"`
	ShippingAddress AddressDTO `json:"shipping_address"`
}

// CustomerResponse represents a customer in API responses
type CustomerResponse struct {
	ID              uuid.UUID      `json:"id"`
	CustomerNumber  string         `json:"customer_number"`
	Name            string         `json:"name"`
	ContactPerson   string         `json:"contact_person,omitempty"`
	Email           string         `json:"email,omitempty"`
	Phone           string         `json:"phone,omitempty"`
	CustomerType    string         `json:"customer_type"`
	TaxID           string         `json:"tax_id,omitempty"`
	VatID           string         `json:"vat_id,omitempty"`
	PaymentTerms    string         `json:"payment_terms,omitempty"`
	Notes           string         `json:"notes,omitempty"`
	BillingAddress  shared.Address `json:"billing_address"`
	ShippingAddress shared.Address `json:"shipping_address"`
	Version         int            `json:"version"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

// ToCustomerResponse converts a domain Customer
func ToCustomerResponse(c *partner.Customer) CustomerResponse {
	return CustomerResponse{
		ID:              c.ID,
		CustomerNumber:  c.CustomerNumber,
		Name:            c.Name,
		ContactPerson:   c.ContactPerson,
		Email:           c.Email,
		Phone:           c.Phone,
		CustomerType:    string(c.CustomerType),
		TaxID:           c.TaxID,
		VatID:           c.VatID,
		PaymentTerms:    c.PaymentTerms,
		Notes:           c.Notes,
		BillingAddress:  c.BillingAddress,
		ShippingAddress: c.ShippingAddress,
		Version:         c.Version,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
	}
}

// CreateWarehouseRequest represents a request to create a warehouse
type CreateWarehouseRequest struct {
	Code        string     `json:"code" binding:"required,min=1,max=20"`
	Name        string     `json:"name" binding:"required,min=1,max=100"`
	Description string     `json:"description" binding:"max=500"`
	IsDefault   bool       `json:"is_default"`
	Address     AddressDTO `json:"address"`
}

// WarehouseResponse represents a warehouse in API responses
type WarehouseResponse struct {
	ID          uuid.UUID      `json:"id"`
	Code        string         `json:"code"`
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	IsDefault   bool           `json:"is_default"`
	IsActive    bool           `json:"is_active"`
	Address     shared.Address `json:"address"`
	CreatedAt   time.Time      `json:"created_at"`
}

// ToWarehouseResponse converts a domain Warehouse
func ToWarehouseResponse(w *partner.Warehouse) WarehouseResponse {
	return WarehouseResponse{
		ID:          w.ID,
		Code:        w.Code,
		Name:        w.Name,
		Description: w.Description,
		IsDefault:   w.IsDefault,
		IsActive:    w.IsActive,
		Address:     w.Address,
		CreatedAt:   w.CreatedAt,
	}
}

// CreateSupplierRequest represents a request to create a supplier
type CreateSupplierRequest struct {
	Name          string `json:"name" binding:"required,min=1,max=200"`
	ContactPerson string `json:"contact_person" binding:"max=100"`
	Email         string `json:"email" binding:"omitempty,email"`
	Phone         string `json:"phone" binding:"max=50"`
}

// SupplierResponse represents a supplier in API responses
type SupplierResponse struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	ContactPerson string    `json:"contact_person,omitempty"`
	Email         string    `json:"email,omitempty"`
	Phone         string    `json:"phone,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// ToSupplierResponse converts a domain Supplier
func ToSupplierResponse(s *partner.Supplier) SupplierResponse {
	return SupplierResponse{
		ID:            s.ID,
		Name:          s.Name,
		ContactPerson: s.ContactPerson,
		Email:         s.Email,
		Phone:         s.Phone,
		CreatedAt:     s.CreatedAt,
	}
}

// ListFilter is the shared paging query of partner lists
type ListFilter struct {
	Search   string `form:"search"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

func (f ListFilter) toFilter() shared.Filter {
	out := shared.DefaultFilter()
	out.Search = f.Search
	if f.Page > 0 {
		out.Page = f.Page
	}
	if f.PageSize > 0 {
		out.PageSize = f.PageSize
	}
	return out
}
