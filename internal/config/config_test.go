package config

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calmux/calmux/internal/model"
)

// clearEnv blanks every calmux variable so tests see only what they set.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"CALMUX_GOOGLE_CREDENTIALS_FILE", "CALMUX_GOOGLE_SUBJECT",
		"CALMUX_GRAPH_TENANT_ID", "CALMUX_GRAPH_CLIENT_ID", "CALMUX_GRAPH_CLIENT_SECRET",
		"CALMUX_GRAPH_USER_ID", "CALMUX_GRAPH_TIMEZONE",
		"CALMUX_EWS_URL", "CALMUX_EWS_USERNAME", "CALMUX_EWS_PASSWORD",
		"CALMUX_EWS_MAILBOX", "CALMUX_EWS_TIMEZONE",
		"CALMUX_WORKING_HOURS_START", "CALMUX_WORKING_HOURS_END", "CALMUX_WORKING_HOURS_DAYS",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.False(t, cfg.Google.Enabled())
	assert.False(t, cfg.Graph.Enabled())
	assert.False(t, cfg.EWS.Enabled())
	assert.Equal(t, "09:00", cfg.WorkingHours.Start)
	assert.Equal(t, "17:00", cfg.WorkingHours.End)
}

func TestLoadEWS(t *testing.T) {
	clearEnv(t)
	t.Setenv("CALMUX_EWS_URL", "https://mail.corp.example.com/EWS/Exchange.asmx")
	t.Setenv("CALMUX_EWS_USERNAME", "CORP\\svc-cal")
	t.Setenv("CALMUX_EWS_PASSWORD", "hunter2")
	t.Setenv("CALMUX_EWS_MAILBOX", "room@corp.example.com")
	t.Setenv("CALMUX_EWS_TIMEZONE", "Europe/Berlin")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.EWS.Enabled())
	assert.Equal(t, "Europe/Berlin", cfg.EWS.TimeZone)
	assert.Equal(t, "room@corp.example.com", cfg.EWS.Mailbox)
}

func TestLoadEWSMissingCredentials(t *testing.T) {
	clearEnv(t)
	t.Setenv("CALMUX_EWS_URL", "https://mail.corp.example.com/EWS/Exchange.asmx")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CALMUX_EWS_USERNAME")
	assert.Contains(t, err.Error(), "CALMUX_EWS_PASSWORD")
	assert.Contains(t, err.Error(), "CALMUX_EWS_MAILBOX")
}

func TestLoadEWSBadZone(t *testing.T) {
	clearEnv(t)
	t.Setenv("CALMUX_EWS_URL", "https://mail.corp.example.com/EWS/Exchange.asmx")
	t.Setenv("CALMUX_EWS_USERNAME", "u")
	t.Setenv("CALMUX_EWS_PASSWORD", "p")
	t.Setenv("CALMUX_EWS_MAILBOX", "m@example.com")
	t.Setenv("CALMUX_EWS_TIMEZONE", "Not/AZone")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CALMUX_EWS_TIMEZONE")
}

func TestLoadGraphPartial(t *testing.T) {
	clearEnv(t)
	t.Setenv("CALMUX_GRAPH_TENANT_ID", "tenant-1")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CALMUX_GRAPH_CLIENT_ID")
	assert.Contains(t, err.Error(), "CALMUX_GRAPH_CLIENT_SECRET")
}

func TestLoadWorkingHours(t *testing.T) {
	clearEnv(t)
	t.Setenv("CALMUX_WORKING_HOURS_START", "08:30")
	t.Setenv("CALMUX_WORKING_HOURS_END", "16:30")
	t.Setenv("CALMUX_WORKING_HOURS_DAYS", "Mon, Tue, Saturday")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "08:30", cfg.WorkingHours.Start)
	assert.Equal(t, "16:30", cfg.WorkingHours.End)
	assert.Equal(t, []time.Weekday{time.Monday, time.Tuesday, time.Saturday}, cfg.WorkingHours.Days)
}

func TestLoadWorkingHoursBadDay(t *testing.T) {
	clearEnv(t)
	t.Setenv("CALMUX_WORKING_HOURS_DAYS", "Mon,Funday")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Funday")
}

func TestBuildRegistryEWSOnly(t *testing.T) {
	cfg := &Config{
		EWS: EWSConfig{
			URL:      "https://mail.corp.example.com/EWS/Exchange.asmx",
			Username: "u",
			Password: "p",
			Mailbox:  "m@example.com",
			TimeZone: "UTC",
		},
	}

	reg, err := cfg.BuildRegistry(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []model.ProviderType{model.ProviderEWS}, reg.Types())
	// Adapters register unconnected; connecting is the caller's call.
	assert.Empty(t, reg.Connected(nil))
}

func TestBuildRegistryMissingGoogleCredentials(t *testing.T) {
	cfg := &Config{
		Google: GoogleConfig{CredentialsFile: "/nonexistent/key.json"},
	}

	_, err := cfg.BuildRegistry(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "google credentials")
}
