package google

import (
	"fmt"
	"time"

	calendar "google.golang.org/api/calendar/v3"

	"github.com/calmux/calmux/internal/model"
	"github.com/calmux/calmux/internal/provider"
	"github.com/calmux/calmux/internal/timeutil"
)

const allDayLayout = "2006-01-02"

// parseEventTime resolves one side of a Google event's timing. All-day
// events carry a bare date, timed events an RFC3339 datetime plus an
// optional IANA zone.
func parseEventTime(edt *calendar.EventDateTime) (t time.Time, zone string, allDay bool, err error) {
	if edt == nil {
		return time.Time{}, "", false, fmt.Errorf("missing event time")
	}
	if edt.Date != "" {
		loc, err := timeutil.LoadZone(edt.TimeZone)
		if err != nil {
			loc = time.UTC
		}
		t, err2 := time.ParseInLocation(allDayLayout, edt.Date, loc)
		return t, edt.TimeZone, true, err2
	}
	t, err = time.Parse(time.RFC3339, edt.DateTime)
	if err != nil {
		return time.Time{}, "", false, err
	}
	if edt.TimeZone != "" {
		if loc, zerr := timeutil.LoadZone(edt.TimeZone); zerr == nil {
			t = t.In(loc)
		}
	}
	return t, edt.TimeZone, false, nil
}

func toEvent(item *calendar.Event, calendarID string) (*model.CalendarEvent, error) {
	start, zone, allDay, err := parseEventTime(item.Start)
	if err != nil {
		return nil, fmt.Errorf("event %s: %w", item.Id, err)
	}
	end, _, _, err := parseEventTime(item.End)
	if err != nil {
		return nil, fmt.Errorf("event %s: %w", item.Id, err)
	}

	ev := &model.CalendarEvent{
		ID:             item.Id,
		Provider:       model.ProviderGoogle,
		CalendarID:     calendarID,
		Subject:        item.Summary,
		Body:           item.Description,
		Location:       item.Location,
		Start:          start,
		End:            end,
		TimeZone:       zone,
		IsAllDay:       allDay,
		Status:         toStatus(item.Status),
		ShowAs:         toShowAs(item),
		Sensitivity:    toSensitivity(item.Visibility),
		IsRecurring:    item.RecurringEventId != "" || len(item.Recurrence) > 0,
		SeriesMasterID: item.RecurringEventId,
		ICalUID:        item.ICalUID,
	}
	if item.RecurringEventId != "" && item.OriginalStartTime != nil {
		if item.OriginalStartTime.Date != "" {
			ev.InstanceDate = item.OriginalStartTime.Date
		} else if len(item.OriginalStartTime.DateTime) >= len(allDayLayout) {
			ev.InstanceDate = item.OriginalStartTime.DateTime[:len(allDayLayout)]
		}
	}

	if item.Organizer != nil {
		ev.Organizer = &model.Attendee{
			Email:       item.Organizer.Email,
			DisplayName: item.Organizer.DisplayName,
		}
	}
	for _, att := range item.Attendees {
		ev.Attendees = append(ev.Attendees, model.Attendee{
			Email:          att.Email,
			DisplayName:    att.DisplayName,
			ResponseStatus: toResponseStatus(att.ResponseStatus),
			Type:           toAttendeeType(att),
		})
	}
	return ev, nil
}

// toShowAs maps Google's transparency field onto the busy axis. Google has
// no tentative/oof transparency; tentative status carries over instead.
func toShowAs(item *calendar.Event) model.ShowAs {
	if item.Transparency == "transparent" {
		return model.ShowAsFree
	}
	if item.Status == "tentative" {
		return model.ShowAsTentative
	}
	return model.ShowAsBusy
}

func toStatus(s string) model.EventStatus {
	switch s {
	case "tentative":
		return model.StatusTentative
	case "cancelled":
		return model.StatusCancelled
	default:
		return model.StatusConfirmed
	}
}

func toSensitivity(visibility string) model.Sensitivity {
	switch visibility {
	case "private":
		return model.SensitivityPrivate
	case "confidential":
		return model.SensitivityConfidential
	default:
		return model.SensitivityNormal
	}
}

func toResponseStatus(s string) model.ResponseStatus {
	switch s {
	case "accepted":
		return model.ResponseAccepted
	case "declined":
		return model.ResponseDeclined
	case "tentative":
		return model.ResponseTentative
	default:
		return model.ResponseNone
	}
}

func toAttendeeType(att *calendar.EventAttendee) model.AttendeeType {
	switch {
	case att.Resource:
		return model.AttendeeResource
	case att.Optional:
		return model.AttendeeOptional
	default:
		return model.AttendeeRequired
	}
}

func toCalendar(entry *calendar.CalendarListEntry) model.Calendar {
	return model.Calendar{
		ID:        entry.Id,
		Provider:  model.ProviderGoogle,
		Name:      entry.Summary,
		IsPrimary: entry.Primary,
		CanEdit:   entry.AccessRole == "owner" || entry.AccessRole == "writer",
		TimeZone:  entry.TimeZone,
	}
}

func toBusySlot(period *calendar.TimePeriod) (model.BusySlot, error) {
	start, err := time.Parse(time.RFC3339, period.Start)
	if err != nil {
		return model.BusySlot{}, err
	}
	end, err := time.Parse(time.RFC3339, period.End)
	if err != nil {
		return model.BusySlot{}, err
	}
	return model.BusySlot{Start: start, End: end, Status: model.ShowAsBusy}, nil
}

// fromCreateParams builds the wire event for an insert.
func fromCreateParams(params provider.CreateEventParams) (*calendar.Event, error) {
	event := &calendar.Event{
		Summary:     params.Subject,
		Description: params.Body,
		Location:    params.Location,
	}

	if params.IsAllDay {
		event.Start = &calendar.EventDateTime{Date: params.Start.Format(allDayLayout)}
		event.End = &calendar.EventDateTime{Date: params.End.Format(allDayLayout)}
	} else {
		tz := params.TimeZone
		if tz == "" {
			tz = "UTC"
		}
		event.Start = &calendar.EventDateTime{
			DateTime: params.Start.Format(time.RFC3339),
			TimeZone: tz,
		}
		event.End = &calendar.EventDateTime{
			DateTime: params.End.Format(time.RFC3339),
			TimeZone: tz,
		}
	}

	if params.ShowAs == model.ShowAsFree {
		event.Transparency = "transparent"
	}
	switch params.Sensitivity {
	case model.SensitivityPrivate:
		event.Visibility = "private"
	case model.SensitivityConfidential:
		event.Visibility = "confidential"
	}

	for _, att := range params.Attendees {
		event.Attendees = append(event.Attendees, &calendar.EventAttendee{
			Email:       att.Email,
			DisplayName: att.DisplayName,
			Optional:    att.Type == model.AttendeeOptional,
			Resource:    att.Type == model.AttendeeResource,
		})
	}

	if params.Recurrence != nil {
		rule, err := params.Recurrence.RRule()
		if err != nil {
			return nil, err
		}
		event.Recurrence = []string{rule}
	}
	return event, nil
}

// fromUpdateParams builds a sparse patch; warn is non-empty when a scope
// had to be downgraded.
func fromUpdateParams(params provider.UpdateEventParams) (*calendar.Event, string) {
	patch := &calendar.Event{}
	warn := ""
	if params.Scope == provider.ScopeThisAndFuture {
		warn = "thisAndFuture downgraded to single instance"
	}

	if params.Subject != nil {
		patch.Summary = *params.Subject
	}
	if params.Body != nil {
		patch.Description = *params.Body
	}
	if params.Location != nil {
		patch.Location = *params.Location
	}

	tz := "UTC"
	if params.TimeZone != nil {
		tz = *params.TimeZone
	}
	allDay := params.IsAllDay != nil && *params.IsAllDay
	if params.Start != nil {
		if allDay {
			patch.Start = &calendar.EventDateTime{Date: params.Start.Format(allDayLayout)}
		} else {
			patch.Start = &calendar.EventDateTime{DateTime: params.Start.Format(time.RFC3339), TimeZone: tz}
		}
	}
	if params.End != nil {
		if allDay {
			patch.End = &calendar.EventDateTime{Date: params.End.Format(allDayLayout)}
		} else {
			patch.End = &calendar.EventDateTime{DateTime: params.End.Format(time.RFC3339), TimeZone: tz}
		}
	}

	if params.ShowAs != nil {
		if *params.ShowAs == model.ShowAsFree {
			patch.Transparency = "transparent"
		} else {
			patch.Transparency = "opaque"
		}
	}
	for _, att := range params.Attendees {
		patch.Attendees = append(patch.Attendees, &calendar.EventAttendee{
			Email:       att.Email,
			DisplayName: att.DisplayName,
			Optional:    att.Type == model.AttendeeOptional,
		})
	}
	return patch, warn
}
