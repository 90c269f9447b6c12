package wb

import (
	"errors"
	"fmt"
)

// ErrorKind classifies advert API failures so callers can decide between
// retrying, skipping, and alerting without parsing response bodies.
type ErrorKind string

const (
	KindUnauthorized ErrorKind = "UNAUTHORIZED"
	KindNotFound     ErrorKind = "NOT_FOUND"
	KindRateLimited  ErrorKind = "RATE_LIMITED"
	KindTransient    ErrorKind = "TRANSIENT"
	KindRejected     ErrorKind = "REJECTED"
)

// APIError is a classified advert API failure.
type APIError struct {
	Kind       ErrorKind
	StatusCode int
	Op         string
	Err        error
}

func (e *APIError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s: %s (status %d): %v", e.Op, e.Kind, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *APIError) Unwrap() error { return e.Err }

// Kind extracts the error kind, defaulting to KindTransient for
// unclassified errors (network-level failures and the like).
func Kind(err error) ErrorKind {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return KindTransient
}

// IsRetryable reports whether a failed call may be retried with backoff.
func IsRetryable(err error) bool {
	switch Kind(err) {
	case KindTransient, KindRateLimited:
		return true
	default:
		return false
	}
}

// classify maps an HTTP status to an error kind.
func classify(status int) ErrorKind {
	switch {
	case status == 401 || status == 403:
		return KindUnauthorized
	case status == 404:
		return KindNotFound
	case status == 429:
		return KindRateLimited
	case status == 400 || status == 422:
		return KindRejected
	default:
		return KindTransient
	}
}
