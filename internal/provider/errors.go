package provider

import (
	"errors"
	"fmt"
)

// Kind classifies how a provider call failed.
type Kind string

const (
	KindStatus     Kind = "status"
	KindConnection Kind = "connection"
	KindTimeout    Kind = "timeout"
	KindDecode     Kind = "decode"
)

// APIError reports a failed document creation call. StatusCode is zero
// when no response was received.
type APIError struct {
	Kind       Kind
	StatusCode int
	Detail     string
	err        error
}

func (e *APIError) Error() string {
	switch e.Kind {
	case KindStatus:
		return fmt.Sprintf("provider returned %d: %s", e.StatusCode, e.Detail)
	case KindTimeout:
		return fmt.Sprintf("request timeout communicating with provider: %v", e.err)
	case KindDecode:
		return fmt.Sprintf("invalid JSON response from provider: %v", e.err)
	default:
		return fmt.Sprintf("connection error communicating with provider: %v", e.err)
	}
}

func (e *APIError) Unwrap() error {
	return e.err
}

// AsAPIError reports whether err is, or wraps, an *APIError.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	ok := errors.As(err, &apiErr)
	return apiErr, ok
}
