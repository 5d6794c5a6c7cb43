package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Error codes
const (
	CodeInvalidInput       = "INVALID_INPUT"
	CodeStorage            = "STORAGE_ERROR"
	CodeServiceUnavailable = "SERVICE_UNAVAILABLE"
	CodeInternal           = "INTERNAL_ERROR"
)

// DomainError represents a domain-specific error with a code and message
type DomainError struct {
	Code    string
	Message string
	Details []string
	Err     error // underlying error for wrapping
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for errors.Is and errors.As
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is matches on Code, so a wrapped ErrStorage still satisfies errors.Is(err, ErrStorage).
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// WrapError wraps an existing error with domain error context
func WrapError(domainErr *DomainError, err error) *DomainError {
	return &DomainError{
		Code:    domainErr.Code,
		Message: domainErr.Message,
		Err:     err,
	}
}

// NewValidationError collects every failed rule into one client-facing error.
// The message is the individual messages joined by a single space.
func NewValidationError(messages []string) *DomainError {
	return &DomainError{
		Code:    CodeInvalidInput,
		Message: strings.Join(messages, " "),
		Details: messages,
	}
}

// Predefined domain errors
var (
	ErrInvalidInput       = NewDomainError(CodeInvalidInput, "invalid input")
	ErrStorage            = NewDomainError(CodeStorage, "storage query failed")
	ErrServiceUnavailable = NewDomainError(CodeServiceUnavailable, "service unavailable")
	ErrInternal           = NewDomainError(CodeInternal, "internal server error")
)

// IsDomainError checks if an error is a domain error
func IsDomainError(err error) bool {
	var domainErr *DomainError
	return errors.As(err, &domainErr)
}

// GetDomainError extracts the domain error from an error
func GetDomainError(err error) *DomainError {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return nil
}

// IsValidation reports whether err is client-caused.
func IsValidation(err error) bool {
	if de := GetDomainError(err); de != nil {
		return de.Code == CodeInvalidInput
	}
	return false
}

// ToHTTPStatus maps domain errors to HTTP status codes
// This should only be used in the handler/presentation layer
func ToHTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}

	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		switch domainErr.Code {
		case CodeInvalidInput:
			return http.StatusBadRequest
		case CodeServiceUnavailable:
			return http.StatusServiceUnavailable
		}
	}

	return http.StatusInternalServerError
}
