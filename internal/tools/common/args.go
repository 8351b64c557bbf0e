package common

import (
	"fmt"
	"strings"
	"time"

	"github.com/calmux/calmux/internal/model"
)

// StringArg returns the named string argument or the default when absent.
func StringArg(args map[string]interface{}, name, def string) string {
	if v, ok := args[name].(string); ok && v != "" {
		return v
	}
	return def
}

// RequiredString returns the named string argument or an error naming it.
func RequiredString(args map[string]interface{}, name string) (string, error) {
	v, ok := args[name].(string)
	if !ok || v == "" {
		return "", fmt.Errorf("%s is required", name)
	}
	return v, nil
}

// TimeArg parses the named argument as an RFC3339 timestamp.
func TimeArg(args map[string]interface{}, name string) (time.Time, error) {
	s, err := RequiredString(args, name)
	if err != nil {
		return time.Time{}, err
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s format (want RFC3339, e.g. 2025-01-01T09:00:00Z): %v", name, err)
	}
	return t, nil
}

// NumberArg returns the named numeric argument or the default. JSON numbers
// arrive as float64.
func NumberArg(args map[string]interface{}, name string, def float64) float64 {
	if v, ok := args[name].(float64); ok {
		return v
	}
	return def
}

// BoolArg returns the named boolean argument or the default.
func BoolArg(args map[string]interface{}, name string, def bool) bool {
	if v, ok := args[name].(bool); ok {
		return v
	}
	return def
}

// ProviderArg parses the named argument as a provider tag.
func ProviderArg(args map[string]interface{}, name string) (model.ProviderType, error) {
	s, err := RequiredString(args, name)
	if err != nil {
		return "", err
	}
	return model.ParseProviderType(s)
}

// StringListArg splits a comma-separated argument into trimmed entries.
// Absent or empty yields nil.
func StringListArg(args map[string]interface{}, name string) []string {
	s, ok := args[name].(string)
	if !ok || s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
