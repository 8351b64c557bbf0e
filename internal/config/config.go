// Package config loads calmux settings from environment variables, with
// optional .env support via godotenv. Each provider account is configured
// through a CALMUX_<PROVIDER>_* variable group and is enabled when its
// required variables are present.
package config

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/oauth2/google"

	"github.com/calmux/calmux/internal/availability"
	"github.com/calmux/calmux/internal/provider"
	ewsprovider "github.com/calmux/calmux/internal/provider/ews"
	googleprovider "github.com/calmux/calmux/internal/provider/google"
	graphprovider "github.com/calmux/calmux/internal/provider/graph"
)

// GoogleConfig configures the Google Calendar account. CredentialsFile
// points at a service-account JSON key; Subject is the user to impersonate
// with domain-wide delegation.
type GoogleConfig struct {
	CredentialsFile string
	Subject         string
}

func (c GoogleConfig) Enabled() bool { return c.CredentialsFile != "" }

// GraphConfig configures the Microsoft Graph account via the client
// credentials grant.
type GraphConfig struct {
	TenantID     string
	ClientID     string
	ClientSecret string
	UserID       string
	TimeZone     string
}

func (c GraphConfig) Enabled() bool { return c.TenantID != "" || c.ClientID != "" }

// EWSConfig configures the on-premises Exchange account. TimeZone is the
// IANA zone naive wire datetimes are interpreted in.
type EWSConfig struct {
	URL      string
	Username string
	Password string
	Mailbox  string
	TimeZone string
}

func (c EWSConfig) Enabled() bool { return c.URL != "" }

// Config is the full calmux runtime configuration.
type Config struct {
	Google GoogleConfig
	Graph  GraphConfig
	EWS    EWSConfig

	WorkingHours availability.WorkingHours
}

// Load reads configuration from the environment. A .env file in the working
// directory is merged in first when present; real environment variables win.
func Load() (*Config, error) {
	// Missing .env is the common case, not an error.
	_ = godotenv.Load()

	cfg := &Config{
		Google: GoogleConfig{
			CredentialsFile: os.Getenv("CALMUX_GOOGLE_CREDENTIALS_FILE"),
			Subject:         os.Getenv("CALMUX_GOOGLE_SUBJECT"),
		},
		Graph: GraphConfig{
			TenantID:     os.Getenv("CALMUX_GRAPH_TENANT_ID"),
			ClientID:     os.Getenv("CALMUX_GRAPH_CLIENT_ID"),
			ClientSecret: os.Getenv("CALMUX_GRAPH_CLIENT_SECRET"),
			UserID:       os.Getenv("CALMUX_GRAPH_USER_ID"),
			TimeZone:     envDefault("CALMUX_GRAPH_TIMEZONE", "UTC"),
		},
		EWS: EWSConfig{
			URL:      os.Getenv("CALMUX_EWS_URL"),
			Username: os.Getenv("CALMUX_EWS_USERNAME"),
			Password: os.Getenv("CALMUX_EWS_PASSWORD"),
			Mailbox:  os.Getenv("CALMUX_EWS_MAILBOX"),
			TimeZone: envDefault("CALMUX_EWS_TIMEZONE", "UTC"),
		},
		WorkingHours: availability.DefaultWorkingHours(),
	}

	if s := os.Getenv("CALMUX_WORKING_HOURS_START"); s != "" {
		cfg.WorkingHours.Start = s
	}
	if s := os.Getenv("CALMUX_WORKING_HOURS_END"); s != "" {
		cfg.WorkingHours.End = s
	}
	if s := os.Getenv("CALMUX_WORKING_HOURS_DAYS"); s != "" {
		days, err := parseDays(s)
		if err != nil {
			return nil, err
		}
		cfg.WorkingHours.Days = days
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

var weekdayNames = map[string]time.Weekday{
	"sun": time.Sunday, "sunday": time.Sunday,
	"mon": time.Monday, "monday": time.Monday,
	"tue": time.Tuesday, "tuesday": time.Tuesday,
	"wed": time.Wednesday, "wednesday": time.Wednesday,
	"thu": time.Thursday, "thursday": time.Thursday,
	"fri": time.Friday, "friday": time.Friday,
	"sat": time.Saturday, "saturday": time.Saturday,
}

func parseDays(s string) ([]time.Weekday, error) {
	var days []time.Weekday
	for _, part := range strings.Split(s, ",") {
		name := strings.ToLower(strings.TrimSpace(part))
		day, ok := weekdayNames[name]
		if !ok {
			return nil, fmt.Errorf("CALMUX_WORKING_HOURS_DAYS: unknown weekday %q (use e.g. Mon,Tue,Wed)", part)
		}
		days = append(days, day)
	}
	return days, nil
}

// Validate checks each enabled provider group for completeness and reports
// what is missing by variable name.
func (c *Config) Validate() error {
	if c.Graph.Enabled() {
		var missing []string
		if c.Graph.TenantID == "" {
			missing = append(missing, "CALMUX_GRAPH_TENANT_ID")
		}
		if c.Graph.ClientID == "" {
			missing = append(missing, "CALMUX_GRAPH_CLIENT_ID")
		}
		if c.Graph.ClientSecret == "" {
			missing = append(missing, "CALMUX_GRAPH_CLIENT_SECRET")
		}
		if len(missing) > 0 {
			return fmt.Errorf("graph account is partially configured, missing %s", strings.Join(missing, ", "))
		}
	}
	if c.EWS.Enabled() {
		var missing []string
		if c.EWS.Username == "" {
			missing = append(missing, "CALMUX_EWS_USERNAME")
		}
		if c.EWS.Password == "" {
			missing = append(missing, "CALMUX_EWS_PASSWORD")
		}
		if c.EWS.Mailbox == "" {
			missing = append(missing, "CALMUX_EWS_MAILBOX")
		}
		if len(missing) > 0 {
			return fmt.Errorf("ews account is partially configured, missing %s", strings.Join(missing, ", "))
		}
	}
	if _, err := time.LoadLocation(c.EWS.TimeZone); c.EWS.Enabled() && err != nil {
		return fmt.Errorf("CALMUX_EWS_TIMEZONE: %w", err)
	}
	return nil
}

// BuildRegistry constructs adapters for every enabled provider account and
// registers them. Nothing is connected yet; callers connect on demand or at
// startup.
func (c *Config) BuildRegistry(ctx context.Context) (*provider.Registry, error) {
	reg := provider.NewRegistry()

	if c.Google.Enabled() {
		data, err := os.ReadFile(c.Google.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("reading google credentials: %w", err)
		}
		jwtCfg, err := google.JWTConfigFromJSON(data, "https://www.googleapis.com/auth/calendar")
		if err != nil {
			return nil, fmt.Errorf("parsing google credentials: %w", err)
		}
		jwtCfg.Subject = c.Google.Subject
		if err := reg.Register(googleprovider.NewClient(jwtCfg.TokenSource(ctx))); err != nil {
			return nil, err
		}
	}

	if c.Graph.Enabled() {
		cc := &clientcredentials.Config{
			ClientID:     c.Graph.ClientID,
			ClientSecret: c.Graph.ClientSecret,
			TokenURL:     fmt.Sprintf("https://login.microsoftonline.com/%s/oauth2/v2.0/token", c.Graph.TenantID),
			Scopes:       []string{"https://graph.microsoft.com/.default"},
		}
		client := graphprovider.NewClient(cc.TokenSource(ctx), c.Graph.UserID, c.Graph.TimeZone)
		if err := reg.Register(client); err != nil {
			return nil, err
		}
	}

	if c.EWS.Enabled() {
		client, err := ewsprovider.NewClient(c.EWS.URL, c.EWS.Username, c.EWS.Password, c.EWS.Mailbox, c.EWS.TimeZone)
		if err != nil {
			return nil, err
		}
		if err := reg.Register(client); err != nil {
			return nil, err
		}
	}

	return reg, nil
}

func envDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
