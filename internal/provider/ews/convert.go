package ews

import (
	"fmt"

	"github.com/calmux/calmux/internal/model"
	"github.com/calmux/calmux/internal/timeutil"
)

// Exchange returns naive datetimes in the mailbox's configured zone, so
// wire values are parsed with the client's zone rather than UTC.

func (c *Client) toEvent(item *calendarItem, calendarID string) (*model.CalendarEvent, error) {
	start, err := timeutil.ParseDateTime(item.Start, c.zone)
	if err != nil {
		return nil, fmt.Errorf("parsing event start %q: %w", item.Start, err)
	}
	end, err := timeutil.ParseDateTime(item.End, c.zone)
	if err != nil {
		return nil, fmt.Errorf("parsing event end %q: %w", item.End, err)
	}

	ev := &model.CalendarEvent{
		ID:          item.ItemID.ID,
		Provider:    model.ProviderEWS,
		CalendarID:  calendarID,
		Subject:     item.Subject,
		Body:        item.Body,
		Location:    item.Location,
		Start:       start,
		End:         end,
		TimeZone:    c.zoneName,
		IsAllDay:    item.IsAllDayEvent,
		Status:      toStatus(item),
		ShowAs:      toShowAs(item.LegacyFreeBusy),
		Sensitivity: toSensitivity(item.Sensitivity),
		IsRecurring: item.IsRecurring || item.CalendarItemType == "Occurrence" || item.CalendarItemType == "Exception",
		ICalUID:     item.UID,
	}

	if item.Organizer != nil {
		ev.Organizer = &model.Attendee{
			Email:       item.Organizer.Mailbox.EmailAddress,
			DisplayName: item.Organizer.Mailbox.Name,
		}
	}
	if item.RequiredAttendees != nil {
		for _, att := range item.RequiredAttendees.Attendee {
			ev.Attendees = append(ev.Attendees, toAttendee(att, model.AttendeeRequired))
		}
	}
	if item.OptionalAttendees != nil {
		for _, att := range item.OptionalAttendees.Attendee {
			ev.Attendees = append(ev.Attendees, toAttendee(att, model.AttendeeOptional))
		}
	}
	return ev, nil
}

func toAttendee(att attendeeItem, typ model.AttendeeType) model.Attendee {
	return model.Attendee{
		Email:          att.Mailbox.EmailAddress,
		DisplayName:    att.Mailbox.Name,
		Type:           typ,
		ResponseStatus: toResponseStatus(att.ResponseType),
	}
}

func toStatus(item *calendarItem) model.EventStatus {
	if item.IsCancelled {
		return model.StatusCancelled
	}
	if item.LegacyFreeBusy == "Tentative" {
		return model.StatusTentative
	}
	return model.StatusConfirmed
}

func toShowAs(legacy string) model.ShowAs {
	switch legacy {
	case "Free":
		return model.ShowAsFree
	case "Tentative":
		return model.ShowAsTentative
	case "OOF":
		return model.ShowAsOOF
	case "WorkingElsewhere":
		return model.ShowAsWorkingElsewhere
	default:
		return model.ShowAsBusy
	}
}

func fromShowAs(s model.ShowAs) string {
	switch s {
	case model.ShowAsFree:
		return "Free"
	case model.ShowAsTentative:
		return "Tentative"
	case model.ShowAsOOF:
		return "OOF"
	case model.ShowAsWorkingElsewhere:
		return "WorkingElsewhere"
	default:
		return "Busy"
	}
}

func toSensitivity(s string) model.Sensitivity {
	switch s {
	case "Personal":
		return model.SensitivityPersonal
	case "Private":
		return model.SensitivityPrivate
	case "Confidential":
		return model.SensitivityConfidential
	default:
		return model.SensitivityNormal
	}
}

func toResponseStatus(s string) model.ResponseStatus {
	switch s {
	case "Accept":
		return model.ResponseAccepted
	case "Decline":
		return model.ResponseDeclined
	case "Tentative":
		return model.ResponseTentative
	case "NoResponseReceived":
		return model.ResponseNone
	default:
		return model.ResponseNone
	}
}

// toBusySlot maps one availability view entry. Availability responses use
// UTC because the request pinned a zero-bias time zone.
func (c *Client) toBusySlot(ev availabilityEvent) (model.BusySlot, error) {
	start, err := timeutil.ParseDateTime(ev.StartTime, nil)
	if err != nil {
		return model.BusySlot{}, err
	}
	end, err := timeutil.ParseDateTime(ev.EndTime, nil)
	if err != nil {
		return model.BusySlot{}, err
	}
	return model.BusySlot{Start: start, End: end, Status: toShowAs(ev.BusyType)}, nil
}
