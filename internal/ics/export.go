// Package ics renders unified calendar events as an RFC 5545 VCALENDAR
// stream, so agenda snapshots can be handed to any calendar application.
package ics

import (
	"fmt"
	"strings"

	"github.com/emersion/go-ical"
	"github.com/google/uuid"

	"github.com/calmux/calmux/internal/model"
)

const productID = "-//calmux//EN"

// Export renders events as a single VCALENDAR document. Events without an
// iCalendar UID get a generated one; ordering follows the input slice.
func Export(events []model.CalendarEvent) (string, error) {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, productID)

	for i := range events {
		cal.Children = append(cal.Children, toVEvent(&events[i]))
	}

	var buf strings.Builder
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return "", fmt.Errorf("encoding calendar: %w", err)
	}
	return buf.String(), nil
}

func toVEvent(ev *model.CalendarEvent) *ical.Component {
	ve := ical.NewComponent(ical.CompEvent)

	uid := ev.ICalUID
	if uid == "" {
		uid = uuid.NewString()
	}
	ve.Props.SetText(ical.PropUID, uid)
	ve.Props.SetText(ical.PropSummary, ev.Subject)
	ve.Props.SetDateTime(ical.PropDateTimeStamp, ev.Start.UTC())
	ve.Props.SetDateTime(ical.PropDateTimeStart, ev.Start)
	ve.Props.SetDateTime(ical.PropDateTimeEnd, ev.End)

	if ev.Body != "" {
		ve.Props.SetText(ical.PropDescription, ev.Body)
	}
	if ev.Location != "" {
		ve.Props.SetText(ical.PropLocation, ev.Location)
	}
	switch ev.Status {
	case model.StatusCancelled:
		ve.Props.SetText(ical.PropStatus, "CANCELLED")
	case model.StatusTentative:
		ve.Props.SetText(ical.PropStatus, "TENTATIVE")
	default:
		ve.Props.SetText(ical.PropStatus, "CONFIRMED")
	}
	if ev.ShowAs == model.ShowAsFree {
		ve.Props.SetText(ical.PropTransparency, "TRANSPARENT")
	}
	if ev.Organizer != nil && ev.Organizer.Email != "" {
		p := ical.NewProp(ical.PropOrganizer)
		p.SetText(fmt.Sprintf("mailto:%s", ev.Organizer.Email))
		ve.Props.Add(p)
	}
	for _, attendee := range ev.Attendees {
		if attendee.Email == "" {
			continue
		}
		p := ical.NewProp(ical.PropAttendee)
		p.SetText(fmt.Sprintf("mailto:%s", attendee.Email))
		ve.Props.Add(p)
	}
	return ve
}
