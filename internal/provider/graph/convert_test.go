package graph

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calmux/calmux/internal/model"
)

func TestParseGraphTime(t *testing.T) {
	t.Run("graph layout with IANA zone", func(t *testing.T) {
		got, zone, err := parseGraphTime(&graphDateTime{
			DateTime: "2025-06-02T09:00:00.0000000",
			TimeZone: "Europe/Berlin",
		})
		require.NoError(t, err)
		assert.Equal(t, "Europe/Berlin", zone)
		assert.Equal(t, time.Date(2025, 6, 2, 7, 0, 0, 0, time.UTC), got.UTC())
	})

	t.Run("windows zone name resolves to IANA", func(t *testing.T) {
		got, zone, err := parseGraphTime(&graphDateTime{
			DateTime: "2025-06-02T09:00:00.0000000",
			TimeZone: "W. Europe Standard Time",
		})
		require.NoError(t, err)
		assert.Equal(t, "Europe/Berlin", zone)
		assert.Equal(t, time.Date(2025, 6, 2, 7, 0, 0, 0, time.UTC), got.UTC())
	})

	t.Run("empty zone means UTC", func(t *testing.T) {
		got, zone, err := parseGraphTime(&graphDateTime{DateTime: "2025-06-02T09:00:00"})
		require.NoError(t, err)
		assert.Equal(t, "", zone)
		assert.Equal(t, time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC), got)
	})

	t.Run("nil datetime", func(t *testing.T) {
		_, _, err := parseGraphTime(nil)
		assert.Error(t, err)
	})

	t.Run("garbage datetime", func(t *testing.T) {
		_, _, err := parseGraphTime(&graphDateTime{DateTime: "soon"})
		assert.Error(t, err)
	})
}

func TestToEvent(t *testing.T) {
	ge := &graphEvent{
		ID:      "AAMkAD=",
		Subject: "Design Review",
		Start:   &graphDateTime{DateTime: "2025-06-02T10:00:00.0000000", TimeZone: "UTC"},
		End:     &graphDateTime{DateTime: "2025-06-02T11:00:00.0000000", TimeZone: "UTC"},
		ShowAs:  "tentative",
		Body:    &graphItemBody{ContentType: "text", Content: "agenda"},
		Location: &graphLocation{DisplayName: "Room 4"},
		Organizer: &graphRecipient{
			EmailAddress: graphEmailAddress{Address: "alex@example.com", Name: "Alex"},
		},
		Attendees: []graphAttendee{
			{
				EmailAddress: graphEmailAddress{Address: "sam@example.com"},
				Type:         "required",
				Status:       &graphResponseStatus{Response: "accepted"},
			},
		},
		ICalUID: "uid-1",
	}

	ev, err := toEvent(ge, "calendar-1")
	require.NoError(t, err)

	assert.Equal(t, "AAMkAD=", ev.ID)
	assert.Equal(t, model.ProviderGraph, ev.Provider)
	assert.Equal(t, "calendar-1", ev.CalendarID)
	assert.Equal(t, "agenda", ev.Body)
	assert.Equal(t, "Room 4", ev.Location)
	assert.Equal(t, model.ShowAsTentative, ev.ShowAs)
	assert.Equal(t, "uid-1", ev.ICalUID)

	require.NotNil(t, ev.Organizer)
	assert.Equal(t, "alex@example.com", ev.Organizer.Email)
	require.Len(t, ev.Attendees, 1)
	assert.Equal(t, model.ResponseAccepted, ev.Attendees[0].ResponseStatus)
	assert.Equal(t, model.AttendeeRequired, ev.Attendees[0].Type)
}

func TestToEventBodyPreviewFallback(t *testing.T) {
	ge := &graphEvent{
		ID:          "x",
		BodyPreview: "preview only",
		Start:       &graphDateTime{DateTime: "2025-06-02T10:00:00"},
		End:         &graphDateTime{DateTime: "2025-06-02T11:00:00"},
	}

	ev, err := toEvent(ge, "c")
	require.NoError(t, err)
	assert.Equal(t, "preview only", ev.Body)
}

func TestToEventRecurringDetection(t *testing.T) {
	ge := &graphEvent{
		ID:             "x",
		Start:          &graphDateTime{DateTime: "2025-06-02T10:00:00"},
		End:            &graphDateTime{DateTime: "2025-06-02T11:00:00"},
		EventType:      "occurrence",
		SeriesMasterID: "master-1",
	}

	ev, err := toEvent(ge, "c")
	require.NoError(t, err)
	assert.True(t, ev.IsRecurring)
	assert.Equal(t, "master-1", ev.SeriesMasterID)
}
