package provider_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calmux/calmux/internal/model"
	"github.com/calmux/calmux/internal/provider"
	"github.com/calmux/calmux/internal/provider/providertest"
)

func TestRegistryRegisterDuplicate(t *testing.T) {
	reg := provider.NewRegistry()
	require.NoError(t, reg.Register(providertest.New(model.ProviderGoogle)))

	err := reg.Register(providertest.New(model.ProviderGoogle))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already registered")
}

func TestRegistryGet(t *testing.T) {
	reg := provider.NewRegistry()
	f := providertest.New(model.ProviderEWS)
	require.NoError(t, reg.Register(f))

	got, err := reg.Get(model.ProviderEWS)
	require.NoError(t, err)
	assert.Equal(t, model.ProviderEWS, got.Type())

	_, err = reg.Get(model.ProviderGraph)
	require.Error(t, err)
	assert.Equal(t, model.ErrKindNotFound, model.KindOf(err))
}

func TestRegistryConnectedOrder(t *testing.T) {
	reg := provider.NewRegistry()
	// Register out of order; Connected returns google/graph/ews order.
	require.NoError(t, reg.Register(providertest.New(model.ProviderEWS)))
	require.NoError(t, reg.Register(providertest.New(model.ProviderGoogle)))
	require.NoError(t, reg.Register(providertest.New(model.ProviderGraph)))

	connected := reg.Connected(nil)
	require.Len(t, connected, 3)
	assert.Equal(t, model.ProviderGoogle, connected[0].Type())
	assert.Equal(t, model.ProviderGraph, connected[1].Type())
	assert.Equal(t, model.ProviderEWS, connected[2].Type())
}

func TestRegistryConnectedFilter(t *testing.T) {
	reg := provider.NewRegistry()
	require.NoError(t, reg.Register(providertest.New(model.ProviderGoogle)))
	require.NoError(t, reg.Register(providertest.New(model.ProviderEWS)))

	connected := reg.Connected([]model.ProviderType{model.ProviderEWS})
	require.Len(t, connected, 1)
	assert.Equal(t, model.ProviderEWS, connected[0].Type())
}

func TestRegistryConnectedSkipsDisconnected(t *testing.T) {
	reg := provider.NewRegistry()
	f := providertest.New(model.ProviderGoogle)
	f.Connected = false
	require.NoError(t, reg.Register(f))

	assert.Empty(t, reg.Connected(nil))
	assert.Equal(t, []model.ProviderType{model.ProviderGoogle}, reg.Types())
}
