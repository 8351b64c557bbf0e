package syncer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calmux/calmux/internal/model"
)

var matchBase = time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)

func sampleEvent(subject string) *model.CalendarEvent {
	return &model.CalendarEvent{
		ID:       "e-" + subject,
		Subject:  subject,
		Start:    matchBase,
		End:      matchBase.Add(time.Hour),
		Status:   model.StatusConfirmed,
		ShowAs:   model.ShowAsBusy,
		Provider: model.ProviderGoogle,
	}
}

func TestStringSimilarity(t *testing.T) {
	tests := []struct {
		name     string
		a, b     string
		expected float64
	}{
		{name: "identical", a: "Team Standup", b: "Team Standup", expected: 1.0},
		{name: "case and whitespace insensitive", a: "  Team Standup ", b: "team standup", expected: 1.0},
		{name: "both empty", a: "", b: "", expected: 1.0},
		{name: "completely different length 4", a: "abcd", b: "wxyz", expected: 0.0},
		{name: "one of four chars differs", a: "abcd", b: "abce", expected: 0.75},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, stringSimilarity(tt.a, tt.b), 0.001)
		})
	}
}

func TestTimeProximity(t *testing.T) {
	tests := []struct {
		name     string
		offset   time.Duration
		expected float64
	}{
		{name: "exact", offset: 0, expected: 1.0},
		{name: "under a minute", offset: 45 * time.Second, expected: 1.0},
		{name: "exactly a minute", offset: time.Minute, expected: 1.0},
		{name: "within five minutes", offset: 3 * time.Minute, expected: 0.5},
		{name: "exactly five minutes", offset: 5 * time.Minute, expected: 0.5},
		{name: "beyond five minutes", offset: 6 * time.Minute, expected: 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, timeProximity(matchBase, matchBase.Add(tt.offset)))
			assert.Equal(t, tt.expected, timeProximity(matchBase.Add(tt.offset), matchBase))
		})
	}
}

func TestCalculateMatchIdenticalEvents(t *testing.T) {
	src := sampleEvent("Team Standup")
	tgt := sampleEvent("Team Standup")
	tgt.Provider = model.ProviderEWS

	m := CalculateMatch(src, tgt)
	assert.InDelta(t, 1.0, m.Score, 0.001)
	assert.Equal(t, model.ConfidenceHigh, m.Confidence)
	assert.Same(t, src, m.SourceEvent)
	assert.Same(t, tgt, m.TargetEvent)
}

func TestCalculateMatchLocationSkippedWhenBothEmpty(t *testing.T) {
	src := sampleEvent("Standup")
	tgt := sampleEvent("Standup")

	m := CalculateMatch(src, tgt)
	for _, f := range m.Factors {
		assert.NotEqual(t, "location", f.Factor)
	}
	// With location absent the denominator drops to 85 and a perfect match
	// still scores 1.0.
	assert.InDelta(t, 1.0, m.Score, 0.001)
}

func TestCalculateMatchLocationEntersWhenOneSideHasIt(t *testing.T) {
	src := sampleEvent("Standup")
	src.Location = "Room 4"
	tgt := sampleEvent("Standup")

	m := CalculateMatch(src, tgt)
	var found bool
	for _, f := range m.Factors {
		if f.Factor == "location" {
			found = true
			assert.False(t, f.Matched)
		}
	}
	assert.True(t, found)
	// 85 of 95 weight points matched.
	assert.InDelta(t, 85.0/95.0, m.Score, 0.001)
}

func TestCalculateMatchICalUIDOnlyWhenBothPresent(t *testing.T) {
	t.Run("one side missing uid skips the factor", func(t *testing.T) {
		src := sampleEvent("Standup")
		src.ICalUID = "uid-1"
		tgt := sampleEvent("Standup")

		m := CalculateMatch(src, tgt)
		for _, f := range m.Factors {
			assert.NotEqual(t, "iCalUid", f.Factor)
		}
	})

	t.Run("matching uids add evidence", func(t *testing.T) {
		src := sampleEvent("Standup")
		src.ICalUID = "uid-1"
		tgt := sampleEvent("Standup")
		tgt.ICalUID = "uid-1"

		m := CalculateMatch(src, tgt)
		var found bool
		for _, f := range m.Factors {
			if f.Factor == "iCalUid" {
				found = true
				assert.True(t, f.Matched)
				assert.Equal(t, 5.0, f.Weight)
			}
		}
		assert.True(t, found)
		assert.InDelta(t, 1.0, m.Score, 0.001)
	})

	t.Run("differing uids count against", func(t *testing.T) {
		src := sampleEvent("Standup")
		src.ICalUID = "uid-1"
		tgt := sampleEvent("Standup")
		tgt.ICalUID = "uid-2"

		m := CalculateMatch(src, tgt)
		assert.InDelta(t, 90.0/95.0, m.Score, 0.001)
	})
}

func TestCalculateMatchShiftedTimes(t *testing.T) {
	src := sampleEvent("Standup")
	tgt := sampleEvent("Standup")
	tgt.Start = tgt.Start.Add(3 * time.Minute)
	tgt.End = tgt.End.Add(3 * time.Minute)

	m := CalculateMatch(src, tgt)
	// Subject 30 + start 12.5 + end 10 + allDay 10 over 85.
	assert.InDelta(t, 62.5/85.0, m.Score, 0.001)
	assert.Equal(t, model.ConfidenceMedium, m.Confidence)
}

func TestCalculateMatchAllDayMismatch(t *testing.T) {
	src := sampleEvent("Standup")
	tgt := sampleEvent("Standup")
	tgt.IsAllDay = true

	m := CalculateMatch(src, tgt)
	assert.InDelta(t, 75.0/85.0, m.Score, 0.001)
}

func TestCalculateMatchUnrelatedEvents(t *testing.T) {
	src := sampleEvent("Quarterly Planning")
	tgt := sampleEvent("Dentist")
	tgt.Start = matchBase.Add(26 * time.Hour)
	tgt.End = tgt.Start.Add(time.Hour)

	m := CalculateMatch(src, tgt)
	require.Less(t, m.Score, 0.5)
	assert.Equal(t, model.ConfidenceLow, m.Confidence)
}
