package dto

import (
	"net/http"

	"github.com/erp/backoffice/internal/domain/shared"
)

// Error codes produced by the HTTP layer itself. Domain codes come from
// shared.DomainError and pass through unchanged.
const (
	ErrCodeInternal        = "INTERNAL_ERROR"
	ErrCodeValidation      = "VALIDATION_ERROR"
	ErrCodeBadRequest      = "BAD_REQUEST"
	ErrCodeInvalidJSON     = "INVALID_JSON"
	ErrCodeRequestTooLarge = "REQUEST_TOO_LARGE"
	ErrCodeTokenExpired    = "TOKEN_EXPIRED"
	ErrCodeTokenRevoked    = "TOKEN_REVOKED"
	ErrCodeRouteNotFound   = "ROUTE_NOT_FOUND"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal: http.StatusInternalServerError,

	// Input errors -> 400 Bad Request
	ErrCodeValidation:       http.StatusBadRequest,
	ErrCodeBadRequest:       http.StatusBadRequest,
	ErrCodeInvalidJSON:      http.StatusBadRequest,
	shared.CodeInvalidInput: http.StatusBadRequest,
	ErrCodeRequestTooLarge:  http.StatusRequestEntityTooLarge,
	ErrCodeRouteNotFound:    http.StatusNotFound,

	// Auth errors
	shared.CodeUnauthorized: http.StatusUnauthorized,
	ErrCodeTokenExpired:     http.StatusUnauthorized,
	ErrCodeTokenRevoked:     http.StatusUnauthorized,
	shared.CodeForbidden:    http.StatusForbidden,

	// Resource errors
	shared.CodeNotFound:                  http.StatusNotFound,
	shared.CodeAlreadyExists:             http.StatusConflict,
	shared.CodeConcurrencyConflict:       http.StatusConflict,
	shared.CodeOptimisticLockFailed:      http.StatusConflict,
	shared.CodeSequenceConflict:          http.StatusConflict,
	shared.CodePartialRestorationFailure: http.StatusConflict,

	// Business rule errors -> 422 Unprocessable Entity
	shared.CodeInvalidState:      http.StatusUnprocessableEntity,
	shared.CodeInsufficientStock: http.StatusUnprocessableEntity,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Unknown codes are treated as internal errors.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
