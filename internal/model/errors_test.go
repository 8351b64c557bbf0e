package model

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProviderErrorError(t *testing.T) {
	pe := NewProviderError(ErrKindNotFound, ProviderGoogle, "GetEvent", "event e1 not found", nil)
	assert.Equal(t, "google: GetEvent: event e1 not found", pe.Error())

	pe = NewProviderError(ErrKindUnavailable, ProviderEWS, "Connect", "", errors.New("dial tcp: timeout"))
	assert.Equal(t, "ews: Connect: dial tcp: timeout", pe.Error())

	pe = NewProviderError(ErrKindAuthFailure, ProviderGraph, "Connect", "", nil)
	assert.Equal(t, "graph: Connect: auth_failure", pe.Error())
}

func TestProviderErrorUnwrap(t *testing.T) {
	inner := errors.New("boom")
	pe := NewProviderError(ErrKindInternal, ProviderGoogle, "ListEvents", "", inner)
	assert.True(t, errors.Is(pe, inner))
}

func TestProviderErrorRetryable(t *testing.T) {
	assert.True(t, NewProviderError(ErrKindRateLimited, ProviderGraph, "op", "", nil).Retryable())
	assert.True(t, NewProviderError(ErrKindUnavailable, ProviderEWS, "op", "", nil).Retryable())
	assert.False(t, NewProviderError(ErrKindNotFound, ProviderGoogle, "op", "", nil).Retryable())
	assert.False(t, NewProviderError(ErrKindAuthFailure, ProviderGoogle, "op", "", nil).Retryable())
}

func TestKindOf(t *testing.T) {
	pe := NewProviderError(ErrKindRateLimited, ProviderGraph, "ListEvents", "", nil)
	assert.Equal(t, ErrKindRateLimited, KindOf(pe))

	// Wrapped provider errors still classify.
	wrapped := fmt.Errorf("listing events: %w", pe)
	assert.Equal(t, ErrKindRateLimited, KindOf(wrapped))

	assert.Equal(t, ErrKindInternal, KindOf(errors.New("plain")))
}
