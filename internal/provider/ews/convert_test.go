package ews

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calmux/calmux/internal/model"
)

func testClient(t *testing.T, zone string) *Client {
	t.Helper()
	c, err := NewClient("https://mail.corp.example.com/EWS/Exchange.asmx", "u", "p", "m@example.com", zone)
	require.NoError(t, err)
	return c
}

func TestToEventParsesNaiveTimesInZone(t *testing.T) {
	c := testClient(t, "Europe/Berlin")

	item := &calendarItem{
		ItemID:  itemID{ID: "AAMkAGI="},
		Subject: "Team Standup",
		Start:   "2025-06-02T09:00:00",
		End:     "2025-06-02T09:30:00",
	}

	ev, err := c.toEvent(item, "Calendar")
	require.NoError(t, err)

	assert.Equal(t, "AAMkAGI=", ev.ID)
	assert.Equal(t, model.ProviderEWS, ev.Provider)
	assert.Equal(t, "Europe/Berlin", ev.TimeZone)
	// Berlin is UTC+2 in June.
	assert.Equal(t, time.Date(2025, 6, 2, 7, 0, 0, 0, time.UTC), ev.Start.UTC())
	assert.Equal(t, 30*time.Minute, ev.End.Sub(ev.Start))
}

func TestToEventStatusMapping(t *testing.T) {
	c := testClient(t, "UTC")

	base := calendarItem{
		ItemID: itemID{ID: "x"},
		Start:  "2025-06-02T09:00:00",
		End:    "2025-06-02T10:00:00",
	}

	cancelled := base
	cancelled.IsCancelled = true
	ev, err := c.toEvent(&cancelled, "Calendar")
	require.NoError(t, err)
	assert.Equal(t, model.StatusCancelled, ev.Status)

	tentative := base
	tentative.LegacyFreeBusy = "Tentative"
	ev, err = c.toEvent(&tentative, "Calendar")
	require.NoError(t, err)
	assert.Equal(t, model.StatusTentative, ev.Status)
	assert.Equal(t, model.ShowAsTentative, ev.ShowAs)

	ev, err = c.toEvent(&base, "Calendar")
	require.NoError(t, err)
	assert.Equal(t, model.StatusConfirmed, ev.Status)
	// Unset LegacyFreeBusyStatus defaults to busy.
	assert.Equal(t, model.ShowAsBusy, ev.ShowAs)
}

func TestToEventRecurrenceDetection(t *testing.T) {
	c := testClient(t, "UTC")

	item := calendarItem{
		ItemID:           itemID{ID: "x"},
		Start:            "2025-06-02T09:00:00",
		End:              "2025-06-02T10:00:00",
		CalendarItemType: "Occurrence",
	}
	ev, err := c.toEvent(&item, "Calendar")
	require.NoError(t, err)
	assert.True(t, ev.IsRecurring)

	item.CalendarItemType = "Single"
	ev, err = c.toEvent(&item, "Calendar")
	require.NoError(t, err)
	assert.False(t, ev.IsRecurring)
}

func TestToEventAttendees(t *testing.T) {
	c := testClient(t, "UTC")

	item := calendarItem{
		ItemID: itemID{ID: "x"},
		Start:  "2025-06-02T09:00:00",
		End:    "2025-06-02T10:00:00",
	}
	item.Organizer = &struct {
		Mailbox mailbox `xml:"Mailbox"`
	}{Mailbox: mailbox{Name: "Alex", EmailAddress: "alex@corp.example.com"}}
	item.RequiredAttendees = &struct {
		Attendee []attendeeItem `xml:"Attendee"`
	}{Attendee: []attendeeItem{
		{Mailbox: mailbox{EmailAddress: "sam@corp.example.com"}, ResponseType: "Accept"},
	}}
	item.OptionalAttendees = &struct {
		Attendee []attendeeItem `xml:"Attendee"`
	}{Attendee: []attendeeItem{
		{Mailbox: mailbox{EmailAddress: "kim@corp.example.com"}, ResponseType: "NoResponseReceived"},
	}}

	ev, err := c.toEvent(&item, "Calendar")
	require.NoError(t, err)

	require.NotNil(t, ev.Organizer)
	assert.Equal(t, "alex@corp.example.com", ev.Organizer.Email)
	assert.Equal(t, "Alex", ev.Organizer.DisplayName)

	require.Len(t, ev.Attendees, 2)
	assert.Equal(t, model.AttendeeRequired, ev.Attendees[0].Type)
	assert.Equal(t, model.ResponseAccepted, ev.Attendees[0].ResponseStatus)
	assert.Equal(t, model.AttendeeOptional, ev.Attendees[1].Type)
	assert.Equal(t, model.ResponseNone, ev.Attendees[1].ResponseStatus)
}

func TestToEventBadTime(t *testing.T) {
	c := testClient(t, "UTC")
	item := calendarItem{ItemID: itemID{ID: "x"}, Start: "not a time", End: "2025-06-02T10:00:00"}
	_, err := c.toEvent(&item, "Calendar")
	assert.Error(t, err)
}

func TestShowAsRoundTrip(t *testing.T) {
	for _, s := range []model.ShowAs{
		model.ShowAsFree, model.ShowAsBusy, model.ShowAsTentative,
		model.ShowAsOOF, model.ShowAsWorkingElsewhere,
	} {
		assert.Equal(t, s, toShowAs(fromShowAs(s)), "showAs %s", s)
	}
}

func TestToSensitivity(t *testing.T) {
	assert.Equal(t, model.SensitivityPersonal, toSensitivity("Personal"))
	assert.Equal(t, model.SensitivityPrivate, toSensitivity("Private"))
	assert.Equal(t, model.SensitivityConfidential, toSensitivity("Confidential"))
	assert.Equal(t, model.SensitivityNormal, toSensitivity("Normal"))
	assert.Equal(t, model.SensitivityNormal, toSensitivity(""))
}

func TestToBusySlotIsUTC(t *testing.T) {
	c := testClient(t, "Europe/Berlin")

	slot, err := c.toBusySlot(availabilityEvent{
		StartTime: "2025-06-02T09:00:00",
		EndTime:   "2025-06-02T10:00:00",
		BusyType:  "OOF",
	})
	require.NoError(t, err)

	// Availability requests pin a zero-bias zone, so wire values are UTC
	// no matter what zone the mailbox runs in.
	assert.Equal(t, time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC), slot.Start)
	assert.Equal(t, model.ShowAsOOF, slot.Status)
}

func TestNewClientRejectsBadZone(t *testing.T) {
	_, err := NewClient("https://mail.corp.example.com/EWS/Exchange.asmx", "u", "p", "m@example.com", "Not/AZone")
	assert.Error(t, err)
}
