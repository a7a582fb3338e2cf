package marketplace

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

type ErrorKind string

const (
	KindUnauthorized   ErrorKind = "unauthorized"
	KindForbidden      ErrorKind = "forbidden"
	KindRateLimited    ErrorKind = "rate-limited"
	KindNotFound       ErrorKind = "not-found"
	KindServerError    ErrorKind = "server-error"
	KindNetworkTimeout ErrorKind = "network-timeout"
)

// Error is a typed marketplace failure carrying the HTTP status when available
type Error struct {
	Kind       ErrorKind
	StatusCode int
	Op         string
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("marketplace %s failed: HTTP %d (%s)", e.Op, e.StatusCode, e.Kind)
	}
	if e.Err != nil {
		return fmt.Sprintf("marketplace %s failed: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("marketplace %s failed: %s", e.Op, e.Kind)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Retryable reports whether the failure is transient and worth another attempt
func (e *Error) Retryable() bool {
	switch e.Kind {
	case KindRateLimited, KindServerError, KindNetworkTimeout:
		return true
	}
	return false
}

func classifyStatus(code int) ErrorKind {
	switch {
	case code == http.StatusUnauthorized:
		return KindUnauthorized
	case code == http.StatusForbidden:
		return KindForbidden
	case code == http.StatusTooManyRequests:
		return KindRateLimited
	case code == http.StatusNotFound:
		return KindNotFound
	default:
		return KindServerError
	}
}

func statusError(op string, code int) *Error {
	return &Error{Kind: classifyStatus(code), StatusCode: code, Op: op}
}

// transportError classifies timeouts and refused connections as retryable
// network errors rather than data errors
func transportError(op string, err error) *Error {
	kind := KindServerError

	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		kind = KindNetworkTimeout
	} else {
		var opErr *net.OpError
		if errors.As(err, &opErr) {
			kind = KindNetworkTimeout
		}
	}

	return &Error{Kind: kind, Op: op, Err: err}
}
