package model

import (
	"errors"
	"fmt"
	"time"
)

// ErrKind classifies provider failures. The core never inspects
// provider-specific error shapes; adapters translate into this taxonomy.
type ErrKind string

const (
	ErrKindAuthFailure      ErrKind = "auth_failure"
	ErrKindNotFound         ErrKind = "not_found"
	ErrKindPermissionDenied ErrKind = "permission_denied"
	ErrKindRateLimited      ErrKind = "rate_limited"
	ErrKindConflict         ErrKind = "conflict"
	ErrKindUnavailable      ErrKind = "unavailable"
	ErrKindInvalidInput     ErrKind = "invalid_input"
	ErrKindInternal         ErrKind = "internal"
)

// ProviderError is a classified failure from one provider operation. It
// carries enough structure for a presentation layer to render a useful
// message without re-deriving it.
type ProviderError struct {
	Kind     ErrKind
	Provider ProviderType
	Op       string
	Message  string
	// RetryAfter is a hint carried by rate-limit responses; zero otherwise.
	RetryAfter time.Duration
	Err        error
}

func (e *ProviderError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s: %s", e.Provider, e.Op, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Provider, e.Op, e.Err)
	}
	return fmt.Sprintf("%s: %s: %s", e.Provider, e.Op, e.Kind)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// Retryable reports whether retrying the same call later could succeed.
func (e *ProviderError) Retryable() bool {
	return e.Kind == ErrKindRateLimited || e.Kind == ErrKindUnavailable
}

// NewProviderError builds a classified error for one provider operation.
func NewProviderError(kind ErrKind, provider ProviderType, op, message string, err error) *ProviderError {
	return &ProviderError{Kind: kind, Provider: provider, Op: op, Message: message, Err: err}
}

// KindOf extracts the error kind from err, unwrapping as needed.
// Unclassified errors report ErrKindInternal.
func KindOf(err error) ErrKind {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return ErrKindInternal
}
