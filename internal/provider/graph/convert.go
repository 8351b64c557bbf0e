package graph

import (
	"fmt"
	"time"

	"github.com/calmux/calmux/internal/model"
	"github.com/calmux/calmux/internal/provider"
	"github.com/calmux/calmux/internal/timeutil"
)

// graphLayout is the zone-less datetime format Graph uses alongside an
// explicit timeZone field.
const graphLayout = "2006-01-02T15:04:05.0000000"

var graphTimeLayouts = []string{
	graphLayout,
	"2006-01-02T15:04:05",
	time.RFC3339,
}

// windowsZones maps the Windows zone names Graph may return to IANA names.
// Tenants configured with "Prefer: outlook.timezone" using IANA names skip
// this path entirely.
var windowsZones = map[string]string{
	"UTC":                          "UTC",
	"GMT Standard Time":            "Europe/London",
	"W. Europe Standard Time":      "Europe/Berlin",
	"Central Europe Standard Time": "Europe/Budapest",
	"Romance Standard Time":        "Europe/Paris",
	"Eastern Standard Time":        "America/New_York",
	"Central Standard Time":        "America/Chicago",
	"Mountain Standard Time":       "America/Denver",
	"Pacific Standard Time":        "America/Los_Angeles",
	"China Standard Time":          "Asia/Shanghai",
	"Tokyo Standard Time":          "Asia/Tokyo",
	"India Standard Time":          "Asia/Kolkata",
	"AUS Eastern Standard Time":    "Australia/Sydney",
}

func resolveZone(name string) (*time.Location, string) {
	if name == "" {
		return time.UTC, ""
	}
	if iana, ok := windowsZones[name]; ok {
		name = iana
	}
	loc, err := timeutil.LoadZone(name)
	if err != nil {
		return time.UTC, ""
	}
	return loc, name
}

func parseGraphTime(gdt *graphDateTime) (time.Time, string, error) {
	if gdt == nil {
		return time.Time{}, "", fmt.Errorf("missing datetime")
	}
	loc, zone := resolveZone(gdt.TimeZone)
	for _, layout := range graphTimeLayouts {
		if t, err := time.ParseInLocation(layout, gdt.DateTime, loc); err == nil {
			return t, zone, nil
		}
	}
	return time.Time{}, "", fmt.Errorf("cannot parse graph datetime %q", gdt.DateTime)
}

func toEvent(ge *graphEvent, calendarID string) (*model.CalendarEvent, error) {
	start, zone, err := parseGraphTime(ge.Start)
	if err != nil {
		return nil, fmt.Errorf("event %s: %w", ge.ID, err)
	}
	end, _, err := parseGraphTime(ge.End)
	if err != nil {
		return nil, fmt.Errorf("event %s: %w", ge.ID, err)
	}

	ev := &model.CalendarEvent{
		ID:             ge.ID,
		Provider:       model.ProviderGraph,
		CalendarID:     calendarID,
		Subject:        ge.Subject,
		Start:          start,
		End:            end,
		TimeZone:       zone,
		IsAllDay:       ge.IsAllDay,
		Status:         toStatus(ge),
		ShowAs:         toShowAs(ge.ShowAs),
		Sensitivity:    toSensitivity(ge.Sensitivity),
		IsRecurring:    ge.EventType == "occurrence" || ge.EventType == "seriesMaster" || ge.SeriesMasterID != "",
		SeriesMasterID: ge.SeriesMasterID,
		ICalUID:        ge.ICalUID,
	}
	if ge.Body != nil {
		ev.Body = ge.Body.Content
	} else {
		ev.Body = ge.BodyPreview
	}
	if ge.Location != nil {
		ev.Location = ge.Location.DisplayName
	}
	if len(ge.OriginalStart) >= 10 {
		ev.InstanceDate = ge.OriginalStart[:10]
	}
	if ge.Organizer != nil {
		ev.Organizer = &model.Attendee{
			Email:       ge.Organizer.EmailAddress.Address,
			DisplayName: ge.Organizer.EmailAddress.Name,
		}
	}
	for _, att := range ge.Attendees {
		a := model.Attendee{
			Email:       att.EmailAddress.Address,
			DisplayName: att.EmailAddress.Name,
			Type:        toAttendeeType(att.Type),
		}
		if att.Status != nil {
			a.ResponseStatus = toResponseStatus(att.Status.Response)
		}
		ev.Attendees = append(ev.Attendees, a)
	}
	return ev, nil
}

func toStatus(ge *graphEvent) model.EventStatus {
	switch {
	case ge.IsCancelled:
		return model.StatusCancelled
	case ge.ShowAs == "tentative":
		return model.StatusTentative
	default:
		return model.StatusConfirmed
	}
}

func toShowAs(s string) model.ShowAs {
	switch s {
	case "free":
		return model.ShowAsFree
	case "tentative":
		return model.ShowAsTentative
	case "oof":
		return model.ShowAsOOF
	case "workingElsewhere":
		return model.ShowAsWorkingElsewhere
	default:
		return model.ShowAsBusy
	}
}

func toSensitivity(s string) model.Sensitivity {
	switch s {
	case "personal":
		return model.SensitivityPersonal
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
	case "accepted", "organizer":
		return model.ResponseAccepted
	case "declined":
		return model.ResponseDeclined
	case "tentativelyAccepted":
		return model.ResponseTentative
	default:
		return model.ResponseNone
	}
}

func toAttendeeType(s string) model.AttendeeType {
	switch s {
	case "optional":
		return model.AttendeeOptional
	case "resource":
		return model.AttendeeResource
	default:
		return model.AttendeeRequired
	}
}

// toBusySlot maps a getSchedule item; numeric statuses follow Graph's
// scheduleItem status vocabulary.
func toBusySlot(item graphScheduleItem) (model.BusySlot, error) {
	start, _, err := parseGraphTime(&item.Start)
	if err != nil {
		return model.BusySlot{}, err
	}
	end, _, err := parseGraphTime(&item.End)
	if err != nil {
		return model.BusySlot{}, err
	}
	return model.BusySlot{Start: start, End: end, Status: toShowAs(item.Status)}, nil
}

func fromCreateParams(params provider.CreateEventParams) *graphEvent {
	tz := params.TimeZone
	if tz == "" {
		tz = "UTC"
	}

	ge := &graphEvent{
		Subject:  params.Subject,
		IsAllDay: params.IsAllDay,
		Start:    &graphDateTime{DateTime: params.Start.Format("2006-01-02T15:04:05"), TimeZone: tz},
		End:      &graphDateTime{DateTime: params.End.Format("2006-01-02T15:04:05"), TimeZone: tz},
	}
	if params.Body != "" {
		ge.Body = &graphItemBody{ContentType: "text", Content: params.Body}
	}
	if params.Location != "" {
		ge.Location = &graphLocation{DisplayName: params.Location}
	}
	if params.ShowAs != "" {
		ge.ShowAs = fromShowAs(params.ShowAs)
	}
	if params.Sensitivity != "" {
		ge.Sensitivity = string(params.Sensitivity)
	}
	for _, att := range params.Attendees {
		ge.Attendees = append(ge.Attendees, graphAttendee{
			EmailAddress: graphEmailAddress{Address: att.Email, Name: att.DisplayName},
			Type:         fromAttendeeType(att.Type),
		})
	}
	if !params.SendInvites {
		responseRequested := false
		ge.ResponseRequested = &responseRequested
	}
	return ge
}

func fromUpdateParams(params provider.UpdateEventParams) map[string]any {
	patch := make(map[string]any)
	tz := "UTC"
	if params.TimeZone != nil {
		tz = *params.TimeZone
	}

	if params.Subject != nil {
		patch["subject"] = *params.Subject
	}
	if params.Body != nil {
		patch["body"] = graphItemBody{ContentType: "text", Content: *params.Body}
	}
	if params.Location != nil {
		patch["location"] = graphLocation{DisplayName: *params.Location}
	}
	if params.Start != nil {
		patch["start"] = graphDateTime{DateTime: params.Start.Format("2006-01-02T15:04:05"), TimeZone: tz}
	}
	if params.End != nil {
		patch["end"] = graphDateTime{DateTime: params.End.Format("2006-01-02T15:04:05"), TimeZone: tz}
	}
	if params.IsAllDay != nil {
		patch["isAllDay"] = *params.IsAllDay
	}
	if params.ShowAs != nil {
		patch["showAs"] = fromShowAs(*params.ShowAs)
	}
	if params.Sensitivity != nil {
		patch["sensitivity"] = string(*params.Sensitivity)
	}
	if params.Attendees != nil {
		var attendees []graphAttendee
		for _, att := range params.Attendees {
			attendees = append(attendees, graphAttendee{
				EmailAddress: graphEmailAddress{Address: att.Email, Name: att.DisplayName},
				Type:         fromAttendeeType(att.Type),
			})
		}
		patch["attendees"] = attendees
	}
	return patch
}

func fromShowAs(s model.ShowAs) string {
	return string(s)
}

func fromAttendeeType(t model.AttendeeType) string {
	switch t {
	case model.AttendeeOptional:
		return "optional"
	case model.AttendeeResource:
		return "resource"
	default:
		return "required"
	}
}
