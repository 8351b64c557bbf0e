package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseProviderType(t *testing.T) {
	tests := []struct {
		input    string
		expected ProviderType
		wantErr  bool
	}{
		{input: "google", expected: ProviderGoogle},
		{input: "graph", expected: ProviderGraph},
		{input: "ews", expected: ProviderEWS},
		{input: "outlook", wantErr: true},
		{input: "", wantErr: true},
		{input: "Google", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseProviderType(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestCalendarEventValidate(t *testing.T) {
	start := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)

	ev := &CalendarEvent{ID: "e1", Start: start, End: start.Add(time.Hour)}
	assert.NoError(t, ev.Validate())

	ev = &CalendarEvent{ID: "e1", Start: start, End: start}
	assert.Error(t, ev.Validate())

	ev = &CalendarEvent{ID: "e1", Start: start.Add(time.Hour), End: start}
	assert.Error(t, ev.Validate())

	ev = &CalendarEvent{ID: "e1"}
	assert.Error(t, ev.Validate())
}

func TestCalendarEventIsBusy(t *testing.T) {
	for _, s := range []ShowAs{ShowAsBusy, ShowAsTentative, ShowAsOOF, ShowAsWorkingElsewhere} {
		ev := &CalendarEvent{ShowAs: s}
		assert.True(t, ev.IsBusy(), "showAs %s should block time", s)
	}
	ev := &CalendarEvent{ShowAs: ShowAsFree}
	assert.False(t, ev.IsBusy())
}
