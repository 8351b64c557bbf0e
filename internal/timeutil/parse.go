package timeutil

import (
	"fmt"
	"math"
	"time"
)

// Layouts accepted for naive (zone-less) civil datetimes. The EWS wire
// format carries no zone marker, so naive strings are interpreted in the
// caller's authoritative zone, never silently as UTC.
var naiveLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseDateTime parses a civil datetime string. Strings with an explicit
// offset or zone are honored as written; naive strings are interpreted in
// loc. A nil loc means UTC.
func ParseDateTime(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse datetime %q", s)
}

// LoadZone resolves an IANA zone name, defaulting to UTC for the empty
// string.
func LoadZone(name string) (*time.Location, error) {
	if name == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("unknown time zone %q: %w", name, err)
	}
	return loc, nil
}

// DurationMinutes returns the whole-minute duration between start and end,
// rounded from fractional results.
func DurationMinutes(start, end time.Time) int {
	return int(math.Round(end.Sub(start).Minutes()))
}
