package dto

import (
	"net/http"
	"strings"
)

// General error codes used by the HTTP layer itself
const (
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "INTERNAL_ERROR"
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "BAD_REQUEST"
	// ErrCodeValidation is used when request body validation fails
	ErrCodeValidation = "VALIDATION_ERROR"
	// ErrCodeUnauthorized is used when authentication is required but missing/invalid
	ErrCodeUnauthorized = "UNAUTHORIZED"
	// ErrCodeForbidden is used when the user lacks permission
	ErrCodeForbidden = "FORBIDDEN"
	// ErrCodeNotFound is used when a resource is not found
	ErrCodeNotFound = "NOT_FOUND"
	// ErrCodeTokenExpired is used when the auth token has expired
	ErrCodeTokenExpired = "TOKEN_EXPIRED"
	// ErrCodeTokenInvalid is used when the auth token is invalid
	ErrCodeTokenInvalid = "TOKEN_INVALID"
)

// ErrorCodeHTTPStatus maps domain error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	// Input and validation errors -> 400 Bad Request
	ErrCodeBadRequest: http.StatusBadRequest,
	ErrCodeValidation: http.StatusBadRequest,

	// Auth errors
	ErrCodeUnauthorized:   http.StatusUnauthorized,
	"INVALID_CREDENTIALS": http.StatusUnauthorized,
	"ACCOUNT_INACTIVE":    http.StatusUnauthorized,
	ErrCodeTokenExpired:   http.StatusUnauthorized,
	ErrCodeTokenInvalid:   http.StatusUnauthorized,
	ErrCodeForbidden:      http.StatusForbidden,

	// Resource errors
	ErrCodeNotFound:            http.StatusNotFound,
	"ALREADY_EXISTS":           http.StatusConflict,
	"CONCURRENCY_CONFLICT":     http.StatusConflict,
	"DUPLICATE_REQUEST":        http.StatusConflict,
	"DUPLICATE_TRANSACTION_ID": http.StatusConflict,
	"ALREADY_RETURNED":         http.StatusConflict,
	"PAYMENT_EXISTS":           http.StatusConflict,

	// Business rule errors -> 422 Unprocessable Entity
	"INVALID_STATE":        http.StatusUnprocessableEntity,
	"INSUFFICIENT_STOCK":   http.StatusUnprocessableEntity,
	"NEGATIVE_INVENTORY":   http.StatusUnprocessableEntity,
	"TRANSFER_NOT_PENDING": http.StatusUnprocessableEntity,
	"EMPTY_SALE":           http.StatusUnprocessableEntity,
	"EMPTY_RETURN":         http.StatusUnprocessableEntity,
	"RETURN_EXCEEDS_SALE":  http.StatusUnprocessableEntity,
	"PRICE_MISMATCH":       http.StatusUnprocessableEntity,

	// Internal errors
	ErrCodeInternal: http.StatusInternalServerError,
}

// GetHTTPStatus returns the HTTP status code for an error code. Codes not in
// the map starting with INVALID_ are treated as bad input; anything else is
// an internal error.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	if strings.HasPrefix(code, "INVALID_") {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
