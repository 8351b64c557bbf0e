package ics

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calmux/calmux/internal/model"
)

func sampleEvent() model.CalendarEvent {
	return model.CalendarEvent{
		ID:         "e1",
		Provider:   model.ProviderGoogle,
		CalendarID: "primary",
		Subject:    "Design Review",
		Body:       "agenda attached",
		Location:   "Room 4",
		Start:      time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC),
		End:        time.Date(2025, 6, 2, 11, 0, 0, 0, time.UTC),
		Status:     model.StatusConfirmed,
		ShowAs:     model.ShowAsBusy,
		ICalUID:    "uid-1@example.com",
		Organizer:  &model.Attendee{Email: "alex@example.com"},
		Attendees: []model.Attendee{
			{Email: "sam@example.com", Type: model.AttendeeRequired},
		},
	}
}

func TestExport(t *testing.T) {
	out, err := Export([]model.CalendarEvent{sampleEvent()})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "BEGIN:VCALENDAR"))
	assert.Contains(t, out, "VERSION:2.0")
	assert.Contains(t, out, "PRODID:-//calmux//EN")
	assert.Contains(t, out, "BEGIN:VEVENT")
	assert.Contains(t, out, "UID:uid-1@example.com")
	assert.Contains(t, out, "SUMMARY:Design Review")
	assert.Contains(t, out, "LOCATION:Room 4")
	assert.Contains(t, out, "STATUS:CONFIRMED")
	assert.Contains(t, out, "ORGANIZER:mailto:alex@example.com")
	assert.Contains(t, out, "ATTENDEE:mailto:sam@example.com")
	assert.Contains(t, out, "END:VEVENT")
	assert.Contains(t, out, "END:VCALENDAR")
}

func TestExportGeneratesUID(t *testing.T) {
	ev := sampleEvent()
	ev.ICalUID = ""

	out, err := Export([]model.CalendarEvent{ev})
	require.NoError(t, err)
	assert.Contains(t, out, "UID:")
	assert.NotContains(t, out, "UID:\r\n")
}

func TestExportStatusAndTransparency(t *testing.T) {
	cancelled := sampleEvent()
	cancelled.Status = model.StatusCancelled
	free := sampleEvent()
	free.ICalUID = "uid-2@example.com"
	free.Status = model.StatusTentative
	free.ShowAs = model.ShowAsFree

	out, err := Export([]model.CalendarEvent{cancelled, free})
	require.NoError(t, err)
	assert.Contains(t, out, "STATUS:CANCELLED")
	assert.Contains(t, out, "STATUS:TENTATIVE")
	assert.Contains(t, out, "TRANSP:TRANSPARENT")
}

func TestExportEmpty(t *testing.T) {
	out, err := Export(nil)
	require.NoError(t, err)
	assert.Contains(t, out, "BEGIN:VCALENDAR")
	assert.NotContains(t, out, "BEGIN:VEVENT")
}
