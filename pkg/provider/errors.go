package provider

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// ErrAllProvidersFailed indicates the router exhausted its fallback routing
// options for the requested model.
var ErrAllProvidersFailed = errors.New("all providers failed")

// ConfigError indicates a malformed endpoint or model string. It is always
// surfaced before any network call is attempted.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return "config error: " + e.Reason
}

// AuthError indicates a missing or invalid API credential.
type AuthError struct {
	Reason string
}

func (e *AuthError) Error() string {
	return "auth error: " + e.Reason
}

// UpstreamHTTPError preserves the upstream status code so the client can show
// a meaningful message.
type UpstreamHTTPError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamHTTPError) Error() string {
	return fmt.Sprintf("upstream error %d: %s", e.StatusCode, e.Category())
}

// Category maps the status code to a human-readable failure category.
func (e *UpstreamHTTPError) Category() string {
	switch e.StatusCode {
	case 400:
		return "bad request parameters"
	case 401:
		return "invalid credentials"
	case 402:
		return "insufficient credits"
	case 403:
		return "blocked by moderation"
	case 408:
		return "request timed out"
	case 429:
		return "rate limited"
	case 502:
		return "model unavailable"
	case 503:
		return "no provider available"
	default:
		return fmt.Sprintf("upstream failure (HTTP %d)", e.StatusCode)
	}
}

// ConnectionError is a network-level failure, distinct from an upstream HTTP
// error response.
type ConnectionError struct {
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connection error: %v", e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// TimeoutError is a network timeout, distinct from an upstream 408.
type TimeoutError struct {
	Err error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("timeout: %v", e.Err)
}

func (e *TimeoutError) Unwrap() error {
	return e.Err
}

// ClassifyTransportError wraps a transport failure into TimeoutError or
// ConnectionError. Errors that are already part of this package's taxonomy
// pass through unchanged.
func ClassifyTransportError(err error) error {
	if err == nil {
		return nil
	}

	var (
		cfgErr  *ConfigError
		authErr *AuthError
		upErr   *UpstreamHTTPError
		connErr *ConnectionError
		toErr   *TimeoutError
	)
	if errors.As(err, &cfgErr) || errors.As(err, &authErr) || errors.As(err, &upErr) ||
		errors.As(err, &connErr) || errors.As(err, &toErr) || errors.Is(err, ErrAllProvidersFailed) {
		return err
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return &TimeoutError{Err: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &TimeoutError{Err: err}
	}
	return &ConnectionError{Err: err}
}
