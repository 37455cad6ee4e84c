package caclient

import (
	"fmt"
	"net/http"
)

// RequestError is a non-2xx answer from the CA; 4xx statuses are terminal.
type RequestError struct {
	StatusCode int
	Body       string
}

func (e *RequestError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("CA returned status %d: %s", e.StatusCode, e.Body)
	}
	return fmt.Sprintf("CA returned status %d", e.StatusCode)
}

func (e *RequestError) Terminal() bool {
	return e.StatusCode >= http.StatusBadRequest && e.StatusCode < http.StatusInternalServerError
}

// ParseError is a 2xx answer whose body could not be decoded; treated
// as transient.
type ParseError struct {
	Reason string
	Cause  error
}

func (e *ParseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("unparseable CA response: %s: %v", e.Reason, e.Cause)
	}
	return fmt.Sprintf("unparseable CA response: %s", e.Reason)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}
