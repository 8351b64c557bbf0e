package provider

import (
	"fmt"
	"sync"

	"github.com/calmux/calmux/internal/model"
)

// Registry holds the connected provider adapters, one per provider type.
// Entries live for the server process lifetime.
type Registry struct {
	mu        sync.RWMutex
	providers map[model.ProviderType]Provider
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{providers: make(map[model.ProviderType]Provider)}
}

// Register adds a provider. Registering the same type twice is an error.
func (r *Registry) Register(p Provider) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.providers[p.Type()]; exists {
		return fmt.Errorf("provider %s already registered", p.Type())
	}
	r.providers[p.Type()] = p
	return nil
}

// Get returns the provider for a type, or a NotFound error.
func (r *Registry) Get(t model.ProviderType) (Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.providers[t]
	if !ok {
		return nil, model.NewProviderError(model.ErrKindNotFound, t, "registry.get",
			fmt.Sprintf("provider %s is not configured", t), nil)
	}
	return p, nil
}

// Connected returns the connected providers matching the filter, in a
// stable order. An empty filter matches every registered provider.
func (r *Registry) Connected(filter []model.ProviderType) []Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()

	want := func(t model.ProviderType) bool {
		if len(filter) == 0 {
			return true
		}
		for _, f := range filter {
			if f == t {
				return true
			}
		}
		return false
	}

	var out []Provider
	for _, t := range []model.ProviderType{model.ProviderGoogle, model.ProviderGraph, model.ProviderEWS} {
		if p, ok := r.providers[t]; ok && want(t) && p.IsConnected() {
			out = append(out, p)
		}
	}
	return out
}

// Types returns the registered provider types in a stable order.
func (r *Registry) Types() []model.ProviderType {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []model.ProviderType
	for _, t := range []model.ProviderType{model.ProviderGoogle, model.ProviderGraph, model.ProviderEWS} {
		if _, ok := r.providers[t]; ok {
			out = append(out, t)
		}
	}
	return out
}
