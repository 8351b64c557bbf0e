package common

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calmux/calmux/internal/model"
)

func TestStringArg(t *testing.T) {
	args := map[string]interface{}{"name": "value", "empty": "", "number": 42.0}

	assert.Equal(t, "value", StringArg(args, "name", "def"))
	assert.Equal(t, "def", StringArg(args, "empty", "def"))
	assert.Equal(t, "def", StringArg(args, "missing", "def"))
	assert.Equal(t, "def", StringArg(args, "number", "def"))
}

func TestRequiredString(t *testing.T) {
	args := map[string]interface{}{"subject": "Standup"}

	v, err := RequiredString(args, "subject")
	require.NoError(t, err)
	assert.Equal(t, "Standup", v)

	_, err = RequiredString(args, "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing is required")
}

func TestTimeArg(t *testing.T) {
	args := map[string]interface{}{
		"start": "2025-06-02T09:00:00Z",
		"bad":   "yesterday",
	}

	got, err := TimeArg(args, "start")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC), got)

	_, err = TimeArg(args, "bad")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RFC3339")

	_, err = TimeArg(args, "missing")
	assert.Error(t, err)
}

func TestNumberArg(t *testing.T) {
	args := map[string]interface{}{"duration": 30.0, "text": "30"}

	assert.Equal(t, 30.0, NumberArg(args, "duration", 60))
	assert.Equal(t, 60.0, NumberArg(args, "text", 60))
	assert.Equal(t, 60.0, NumberArg(args, "missing", 60))
}

func TestBoolArg(t *testing.T) {
	args := map[string]interface{}{"flag": true}

	assert.True(t, BoolArg(args, "flag", false))
	assert.True(t, BoolArg(args, "missing", true))
	assert.False(t, BoolArg(args, "missing", false))
}

func TestProviderArg(t *testing.T) {
	args := map[string]interface{}{"provider": "ews", "bad": "outlook"}

	p, err := ProviderArg(args, "provider")
	require.NoError(t, err)
	assert.Equal(t, model.ProviderEWS, p)

	_, err = ProviderArg(args, "bad")
	assert.Error(t, err)

	_, err = ProviderArg(args, "missing")
	assert.Error(t, err)
}

func TestStringListArg(t *testing.T) {
	args := map[string]interface{}{
		"list":   "a, b ,c",
		"single": "a",
		"empty":  "",
		"messy":  " a,, b ",
	}

	assert.Equal(t, []string{"a", "b", "c"}, StringListArg(args, "list"))
	assert.Equal(t, []string{"a"}, StringListArg(args, "single"))
	assert.Nil(t, StringListArg(args, "empty"))
	assert.Nil(t, StringListArg(args, "missing"))
	assert.Equal(t, []string{"a", "b"}, StringListArg(args, "messy"))
}
