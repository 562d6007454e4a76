// Package kiho is a minimal client for the Kiho v3 worktime punch API.
package kiho

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors returned (wrapped) by Client.
var (
	ErrUnauthorized = errors.New("authentication failed")
	ErrForbidden    = errors.New("permission denied")
	ErrNotFound     = errors.New("resource not found")
	ErrBadRequest   = errors.New("bad request")
	ErrRateLimited  = errors.New("rate limit exceeded")
	ErrServerError  = errors.New("server error")

	// ErrMalformedResponse means the body was not the expected JSON envelope.
	ErrMalformedResponse = errors.New("malformed response")
)

// APIError is a non-2xx response from the punch API.
type APIError struct {
	StatusCode int
	Method     string
	Endpoint   string
	Message    string
	RequestID  string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.RequestID != "" {
		return fmt.Sprintf("kiho API error (%d) on %s %s [%s]: %s",
			e.StatusCode, e.Method, e.Endpoint, e.RequestID, e.Message)
	}
	return fmt.Sprintf("kiho API error (%d) on %s %s: %s",
		e.StatusCode, e.Method, e.Endpoint, e.Message)
}

// Unwrap maps the status code to a sentinel error.
func (e *APIError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusBadRequest:
		return ErrBadRequest
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusForbidden:
		return ErrForbidden
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusTooManyRequests:
		return ErrRateLimited
	default:
		if e.StatusCode >= 500 {
			return ErrServerError
		}
		return nil
	}
}

// IsUnauthorized reports whether the API rejected the key.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized) || errors.Is(err, ErrForbidden)
}
