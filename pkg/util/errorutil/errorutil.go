package errorutil

import (
	"errors"
	"fmt"
	"net/http"
)

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError("VALIDATION_FAILED", message, http.StatusBadRequest, details)
}

func NewNotFound(resource string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	return &DomainError{
		Code:       "NOT_FOUND",
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details:    details,
	}
}

func NewUnauthorized(message string) error {
	return NewDomainError("UNAUTHORIZED", message, http.StatusUnauthorized, nil)
}

func NewForbidden(message string) error {
	return NewDomainError("FORBIDDEN", message, http.StatusForbidden, nil)
}

// statusCoder is implemented by vendor errors that carry an HTTP status.
type statusCoder interface {
	StatusCode() int
}

// NewUpstreamError wraps a vendor API failure that is surfaced to the caller.
// Rate limiting and credential rejections get their own codes.
func NewUpstreamError(err error) error {
	domainErr := &DomainError{
		Code:       "UPSTREAM_FAILED",
		Message:    "ticketing system request failed",
		HTTPStatus: http.StatusBadGateway,
		Err:        err,
	}
	var sc statusCoder
	if !errors.As(err, &sc) {
		return domainErr
	}
	switch status := sc.StatusCode(); {
	case status == http.StatusTooManyRequests:
		domainErr.Code = "UPSTREAM_RATE_LIMITED"
		domainErr.Message = "ticketing system rate limit exceeded"
		domainErr.HTTPStatus = http.StatusTooManyRequests
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		domainErr.Code = "UPSTREAM_AUTH_FAILED"
		domainErr.Message = "ticketing system rejected the credentials"
	}
	return domainErr
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// IsNotFound reports whether err carries the NOT_FOUND code.
func IsNotFound(err error) bool {
	var domainErr *DomainError
	return errors.As(err, &domainErr) && domainErr.Code == "NOT_FOUND"
}

// ToDomainError converts generic errors to DomainError. Vendor errors that
// carry a status code map to NOT_FOUND or an upstream code.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	var sc statusCoder
	if errors.As(err, &sc) {
		if sc.StatusCode() == http.StatusNotFound {
			notFound := NewNotFound("record", nil).(*DomainError)
			notFound.Err = err
			return notFound
		}
		return NewUpstreamError(err).(*DomainError)
	}
	return NewInternalError(err).(*DomainError)
}

func MapError(err error) error {
	if err == nil {
		return nil
	}
	return ToDomainError(err)
}
