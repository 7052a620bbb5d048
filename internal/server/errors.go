package server

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	CodeValidation  = "validation"
	CodeNotFound    = "not_found"
	CodeTooLarge    = "too_large"
	CodeUnavailable = "unavailable"
	CodeInternal    = "internal"
)

// Error is an API failure with a stable code.
type Error struct {
	Code    string
	Message string
	Status  int
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func statusForCode(code string) int {
	switch code {
	case CodeValidation:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeTooLarge:
		return http.StatusRequestEntityTooLarge
	case CodeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func newError(code, message string) *Error {
	return &Error{Code: code, Message: message, Status: statusForCode(code)}
}

func NewValidationJSONError(err error) error {
	return newError(CodeValidation, "invalid json: "+err.Error())
}

func NewValidationError(message string) error {
	return newError(CodeValidation, message)
}

func NewNotFoundError(message string) error {
	return newError(CodeNotFound, message)
}

func NewTooLargeError(limit int64) error {
	return newError(CodeTooLarge, fmt.Sprintf("request body too large (limit %d bytes)", limit))
}

func NewUnavailableError(message string) error {
	return newError(CodeUnavailable, message)
}

func NewInternalError(message string) error {
	return newError(CodeInternal, message)
}

// asAPIError maps any error onto an API error; unknown errors are internal.
func asAPIError(err error) *Error {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return newError(CodeInternal, "internal error")
}
