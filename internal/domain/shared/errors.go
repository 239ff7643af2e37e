package shared

import (
	"errors"
	"fmt"
)

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Is reports whether target carries the same code, so errors built with
// NewDomainError match the sentinels below through errors.Is.
func (e *DomainError) Is(target error) bool {
	var other *DomainError
	if !errors.As(target, &other) {
		return false
	}
	return e.Code == other.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Error codes used across the ledger workflow
const (
	CodeNotFound                  = "NOT_FOUND"
	CodeAlreadyExists             = "ALREADY_EXISTS"
	CodeInvalidInput              = "INVALID_INPUT"
	CodeConcurrencyConflict       = "CONCURRENCY_CONFLICT"
	CodeOptimisticLockFailed      = "OPTIMISTIC_LOCK_FAILED"
	CodeUnauthorized              = "UNAUTHORIZED"
	CodeForbidden                 = "FORBIDDEN"
	CodeInvalidState              = "INVALID_STATE"
	CodeInsufficientStock         = "INSUFFICIENT_STOCK"
	CodeSequenceConflict          = "SEQUENCE_CONFLICT"
	CodePartialRestorationFailure = "PARTIAL_RESTORATION_FAILURE"
)

// Common domain errors
var (
	ErrNotFound                  = NewDomainError(CodeNotFound, "Resource not found")
	ErrAlreadyExists             = NewDomainError(CodeAlreadyExists, "Resource already exists")
	ErrInvalidInput              = NewDomainError(CodeInvalidInput, "Invalid input provided")
	ErrConcurrencyConflict       = NewDomainError(CodeConcurrencyConflict, "Resource was modified by another process")
	ErrOptimisticLock            = NewDomainError(CodeOptimisticLockFailed, "The record has been modified by another transaction, please refresh and retry")
	ErrUnauthorized              = NewDomainError(CodeUnauthorized, "Not authorized to perform this action")
	ErrForbidden                 = NewDomainError(CodeForbidden, "Access to this resource is forbidden")
	ErrInvalidState              = NewDomainError(CodeInvalidState, "Operation not allowed in current state")
	ErrInsufficientStock         = NewDomainError(CodeInsufficientStock, "Insufficient stock available")
	ErrSequenceConflict          = NewDomainError(CodeSequenceConflict, "Generated number is already taken")
	ErrPartialRestorationFailure = NewDomainError(CodePartialRestorationFailure, "Stock could not be restored")
)

// NewNotFoundError returns a NOT_FOUND error naming the missing resource
func NewNotFoundError(resource string) *DomainError {
	return NewDomainError(CodeNotFound, fmt.Sprintf("%s not found", resource))
}

// NewInsufficientStockError names the product together with the available and
// requested amounts.
func NewInsufficientStockError(product string, available, requested int) *DomainError {
	return NewDomainError(CodeInsufficientStock,
		fmt.Sprintf("Not enough stock for product %s. Available: %d, Requested: %d", product, available, requested))
}

// NewInvalidStateError returns an INVALID_STATE error with a custom message
func NewInvalidStateError(format string, args ...any) *DomainError {
	return NewDomainError(CodeInvalidState, fmt.Sprintf(format, args...))
}

// IsRetryable reports whether a write failed only because another writer
// got there first, so replaying it against fresh state may succeed.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrConcurrencyConflict) ||
		errors.Is(err, ErrOptimisticLock) ||
		errors.Is(err, ErrSequenceConflict)
}

// ErrorCode extracts the code of the first DomainError in the chain
func ErrorCode(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}
