package calendar_tools

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calmux/calmux/internal/model"
	"github.com/calmux/calmux/internal/provider"
)

func TestProviderFilterFromArgs(t *testing.T) {
	tests := []struct {
		name     string
		args     map[string]interface{}
		expected []model.ProviderType
		wantErr  bool
	}{
		{
			name:     "absent means all providers",
			args:     map[string]interface{}{},
			expected: nil,
		},
		{
			name:     "single provider",
			args:     map[string]interface{}{"providers": "ews"},
			expected: []model.ProviderType{model.ProviderEWS},
		},
		{
			name:     "comma separated with spaces",
			args:     map[string]interface{}{"providers": "google, graph"},
			expected: []model.ProviderType{model.ProviderGoogle, model.ProviderGraph},
		},
		{
			name:    "unknown provider",
			args:    map[string]interface{}{"providers": "google,icloud"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := providerFilterFromArgs(tt.args)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestRecurrenceFromArgs(t *testing.T) {
	t.Run("absent yields nil", func(t *testing.T) {
		p, err := recurrenceFromArgs(map[string]interface{}{})
		require.NoError(t, err)
		assert.Nil(t, p)
	})

	t.Run("weekly with count", func(t *testing.T) {
		p, err := recurrenceFromArgs(map[string]interface{}{
			"recurrenceType":     "weekly",
			"recurrenceInterval": 2.0,
			"recurrenceCount":    10.0,
		})
		require.NoError(t, err)
		require.NotNil(t, p)
		assert.Equal(t, model.RecurWeekly, p.Type)
		assert.Equal(t, 2, p.Interval)
		assert.Equal(t, 10, p.Count)
		assert.Nil(t, p.Until)
	})

	t.Run("interval defaults to one", func(t *testing.T) {
		p, err := recurrenceFromArgs(map[string]interface{}{"recurrenceType": "daily"})
		require.NoError(t, err)
		assert.Equal(t, 1, p.Interval)
	})

	t.Run("until bound", func(t *testing.T) {
		p, err := recurrenceFromArgs(map[string]interface{}{
			"recurrenceType":  "daily",
			"recurrenceUntil": "2025-12-31T00:00:00Z",
		})
		require.NoError(t, err)
		require.NotNil(t, p.Until)
		assert.Equal(t, time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC), *p.Until)
	})

	t.Run("invalid type", func(t *testing.T) {
		_, err := recurrenceFromArgs(map[string]interface{}{"recurrenceType": "fortnightly"})
		assert.Error(t, err)
	})

	t.Run("invalid until", func(t *testing.T) {
		_, err := recurrenceFromArgs(map[string]interface{}{
			"recurrenceType":  "daily",
			"recurrenceUntil": "someday",
		})
		assert.Error(t, err)
	})
}

func TestScopeFromArgs(t *testing.T) {
	scope, err := scopeFromArgs(map[string]interface{}{})
	require.NoError(t, err)
	assert.Equal(t, provider.ScopeSingle, scope)

	scope, err = scopeFromArgs(map[string]interface{}{"scope": "series"})
	require.NoError(t, err)
	assert.Equal(t, provider.ScopeSeries, scope)

	scope, err = scopeFromArgs(map[string]interface{}{"scope": "thisAndFuture"})
	require.NoError(t, err)
	assert.Equal(t, provider.ScopeThisAndFuture, scope)

	_, err = scopeFromArgs(map[string]interface{}{"scope": "everything"})
	assert.Error(t, err)
}
