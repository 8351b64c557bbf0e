package calendar_tools

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/calmux/calmux/internal/conflict"
	"github.com/calmux/calmux/internal/model"
	"github.com/calmux/calmux/internal/provider"
	"github.com/calmux/calmux/internal/server"
	"github.com/calmux/calmux/internal/tools/common"
)

// RegisterEventTools registers event CRUD and response tools.
func RegisterEventTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	listCalendarsTool := mcp.NewTool("calendar_list_calendars",
		mcp.WithDescription("List calendars across all connected providers, or a filtered subset"),
		mcp.WithString("providers",
			mcp.Description("Comma-separated provider filter (google, graph, ews). Default: all connected."),
		),
	)
	s.AddTool(listCalendarsTool, common.InstrumentedToolHandler("calendar_list_calendars", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleListCalendars(ctx, request, sc)
		}))

	listEventsTool := mcp.NewTool("calendar_list_events",
		mcp.WithDescription("List events in a time range, merged across providers and sorted by start time"),
		mcp.WithString("timeMin",
			mcp.Required(),
			mcp.Description("Start of the range (RFC3339, e.g. '2025-06-01T00:00:00Z')"),
		),
		mcp.WithString("timeMax",
			mcp.Required(),
			mcp.Description("End of the range (RFC3339)"),
		),
		mcp.WithString("providers",
			mcp.Description("Comma-separated provider filter (google, graph, ews). Default: all connected."),
		),
		mcp.WithString("calendarIds",
			mcp.Description("Comma-separated calendar IDs. Default: each provider's primary calendar."),
		),
		mcp.WithString("query",
			mcp.Description("Free-text subject filter"),
		),
	)
	s.AddTool(listEventsTool, common.InstrumentedToolHandler("calendar_list_events", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleListEvents(ctx, request, sc)
		}))

	getEventTool := mcp.NewTool("calendar_get_event",
		mcp.WithDescription("Get a single event by ID from a specific provider"),
		mcp.WithString("provider",
			mcp.Required(),
			mcp.Description("Provider holding the event (google, graph, ews)"),
		),
		mcp.WithString("eventId",
			mcp.Required(),
			mcp.Description("Provider-assigned event ID"),
		),
		mcp.WithString("calendarId",
			mcp.Description("Calendar containing the event. Default: primary."),
		),
	)
	s.AddTool(getEventTool, common.InstrumentedToolHandler("calendar_get_event", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleGetEvent(ctx, request, sc)
		}))

	createEventTool := mcp.NewTool("calendar_create_event",
		mcp.WithDescription("Create an event on one provider, with an optional conflict warning"),
		mcp.WithString("provider",
			mcp.Required(),
			mcp.Description("Provider to create the event on (google, graph, ews)"),
		),
		mcp.WithString("subject",
			mcp.Required(),
			mcp.Description("Event subject"),
		),
		mcp.WithString("start",
			mcp.Required(),
			mcp.Description("Event start (RFC3339)"),
		),
		mcp.WithString("end",
			mcp.Required(),
			mcp.Description("Event end (RFC3339)"),
		),
		mcp.WithString("calendarId",
			mcp.Description("Target calendar. Default: primary."),
		),
		mcp.WithString("body",
			mcp.Description("Event description"),
		),
		mcp.WithString("location",
			mcp.Description("Event location"),
		),
		mcp.WithBoolean("isAllDay",
			mcp.Description("All-day event (default: false)"),
		),
		mcp.WithString("showAs",
			mcp.Description("Busy status: free, busy, tentative, oof, workingElsewhere (default: busy)"),
		),
		mcp.WithString("attendees",
			mcp.Description("Comma-separated attendee email addresses"),
		),
		mcp.WithBoolean("sendInvites",
			mcp.Description("Notify attendees (default: false)"),
		),
		mcp.WithString("recurrenceType",
			mcp.Description("Repeat cadence: daily, weekly, monthly, yearly"),
		),
		mcp.WithNumber("recurrenceInterval",
			mcp.Description("Repeat every N periods (default: 1)"),
		),
		mcp.WithNumber("recurrenceCount",
			mcp.Description("Number of occurrences; omit with recurrenceUntil for unbounded"),
		),
		mcp.WithString("recurrenceUntil",
			mcp.Description("Last occurrence date (RFC3339)"),
		),
		mcp.WithBoolean("checkConflicts",
			mcp.Description("Warn when the new event overlaps existing busy events (default: false)"),
		),
	)
	s.AddTool(createEventTool, common.InstrumentedToolHandler("calendar_create_event", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleCreateEvent(ctx, request, sc)
		}))

	updateEventTool := mcp.NewTool("calendar_update_event",
		mcp.WithDescription("Update fields of an existing event; omitted fields are left unchanged"),
		mcp.WithString("provider",
			mcp.Required(),
			mcp.Description("Provider holding the event"),
		),
		mcp.WithString("eventId",
			mcp.Required(),
			mcp.Description("Provider-assigned event ID"),
		),
		mcp.WithString("calendarId",
			mcp.Description("Calendar containing the event. Default: primary."),
		),
		mcp.WithString("subject", mcp.Description("New subject")),
		mcp.WithString("body", mcp.Description("New description")),
		mcp.WithString("location", mcp.Description("New location")),
		mcp.WithString("start", mcp.Description("New start (RFC3339)")),
		mcp.WithString("end", mcp.Description("New end (RFC3339)")),
		mcp.WithString("showAs", mcp.Description("New busy status")),
		mcp.WithString("scope",
			mcp.Description("For recurring events: single, thisAndFuture, or series (default: single)"),
		),
	)
	s.AddTool(updateEventTool, common.InstrumentedToolHandler("calendar_update_event", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleUpdateEvent(ctx, request, sc)
		}))

	deleteEventTool := mcp.NewTool("calendar_delete_event",
		mcp.WithDescription("Delete an event"),
		mcp.WithString("provider",
			mcp.Required(),
			mcp.Description("Provider holding the event"),
		),
		mcp.WithString("eventId",
			mcp.Required(),
			mcp.Description("Provider-assigned event ID"),
		),
		mcp.WithString("calendarId",
			mcp.Description("Calendar containing the event. Default: primary."),
		),
		mcp.WithString("scope",
			mcp.Description("For recurring events: single, thisAndFuture, or series (default: single)"),
		),
		mcp.WithBoolean("notify",
			mcp.Description("Send cancellation notices to attendees (default: false)"),
		),
	)
	s.AddTool(deleteEventTool, common.InstrumentedToolHandler("calendar_delete_event", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleDeleteEvent(ctx, request, sc)
		}))

	respondEventTool := mcp.NewTool("calendar_respond_event",
		mcp.WithDescription("Accept, decline, or tentatively accept an event invitation"),
		mcp.WithString("provider",
			mcp.Required(),
			mcp.Description("Provider holding the invitation"),
		),
		mcp.WithString("eventId",
			mcp.Required(),
			mcp.Description("Provider-assigned event ID"),
		),
		mcp.WithString("response",
			mcp.Required(),
			mcp.Description("One of: accept, decline, tentative"),
		),
		mcp.WithString("calendarId",
			mcp.Description("Calendar containing the event. Default: primary."),
		),
		mcp.WithString("message",
			mcp.Description("Optional note sent with the response"),
		),
	)
	s.AddTool(respondEventTool, common.InstrumentedToolHandler("calendar_respond_event", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleRespondEvent(ctx, request, sc)
		}))

	return nil
}

func handleListCalendars(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	filter, err := providerFilterFromArgs(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	calendars, errs := sc.Orchestrator().ListCalendars(ctx, filter)

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d calendar(s):\n\n", len(calendars))
	for _, cal := range calendars {
		primary := ""
		if cal.IsPrimary {
			primary = " (primary)"
		}
		fmt.Fprintf(&b, "- [%s] %s%s\n  ID: %s\n", cal.Provider, cal.Name, primary, cal.ID)
	}
	for _, e := range errs {
		fmt.Fprintf(&b, "\nWarning: %s provider failed: %s\n", e.Provider, e.Message)
	}
	return mcp.NewToolResultText(b.String()), nil
}

func handleListEvents(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	timeMin, err := common.TimeArg(args, "timeMin")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	timeMax, err := common.TimeArg(args, "timeMax")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	filter, err := providerFilterFromArgs(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := sc.Orchestrator().ListEvents(ctx, provider.ListOptions{
		Start:       timeMin,
		End:         timeMax,
		CalendarIDs: common.StringListArg(args, "calendarIds"),
		Query:       common.StringArg(args, "query", ""),
	}, filter)

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d event(s):\n\n", len(result.Events))
	for _, ev := range result.Events {
		b.WriteString(formatEventLine(&ev))
	}
	if result.Partial {
		b.WriteString("\nNote: results are partial, some providers failed:\n")
	}
	for _, e := range result.Errors {
		fmt.Fprintf(&b, "  %s: %s\n", e.Provider, e.Message)
	}
	return mcp.NewToolResultText(b.String()), nil
}

func formatEventLine(ev *model.CalendarEvent) string {
	var b strings.Builder
	fmt.Fprintf(&b, "- [%s] %s\n", ev.Provider, ev.Subject)
	fmt.Fprintf(&b, "  %s to %s (%s)\n",
		ev.Start.Format("2006-01-02 15:04"),
		ev.End.Format("2006-01-02 15:04"),
		ev.ShowAs)
	if ev.Location != "" {
		fmt.Fprintf(&b, "  Location: %s\n", ev.Location)
	}
	fmt.Fprintf(&b, "  ID: %s\n", ev.ID)
	return b.String()
}

func formatEventDetail(ev *model.CalendarEvent) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Subject: %s\n", ev.Subject)
	fmt.Fprintf(&b, "Provider: %s\n", ev.Provider)
	fmt.Fprintf(&b, "Event ID: %s\n", ev.ID)
	if ev.CalendarID != "" {
		fmt.Fprintf(&b, "Calendar: %s\n", ev.CalendarID)
	}
	fmt.Fprintf(&b, "Start: %s\n", ev.Start.Format(time.RFC3339))
	fmt.Fprintf(&b, "End: %s\n", ev.End.Format(time.RFC3339))
	fmt.Fprintf(&b, "Status: %s, shows as %s\n", ev.Status, ev.ShowAs)
	if ev.IsAllDay {
		b.WriteString("All-day event\n")
	}
	if ev.Location != "" {
		fmt.Fprintf(&b, "Location: %s\n", ev.Location)
	}
	if ev.IsRecurring {
		b.WriteString("Recurring event\n")
	}
	if ev.Organizer != nil {
		fmt.Fprintf(&b, "Organizer: %s\n", ev.Organizer.Email)
	}
	if len(ev.Attendees) > 0 {
		fmt.Fprintf(&b, "Attendees (%d):\n", len(ev.Attendees))
		for _, att := range ev.Attendees {
			fmt.Fprintf(&b, "  - %s (%s)\n", att.Email, att.ResponseStatus)
		}
	}
	if ev.Body != "" {
		fmt.Fprintf(&b, "\n%s\n", ev.Body)
	}
	return b.String()
}

func handleGetEvent(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	typ, err := common.ProviderArg(args, "provider")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	eventID, err := common.RequiredString(args, "eventId")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	p, err := getProvider(sc, typ)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	ev, err := p.GetEvent(ctx, eventID, common.StringArg(args, "calendarId", ""))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get event: %v", err)), nil
	}
	return mcp.NewToolResultText(formatEventDetail(ev)), nil
}

func handleCreateEvent(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	typ, err := common.ProviderArg(args, "provider")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	subject, err := common.RequiredString(args, "subject")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	start, err := common.TimeArg(args, "start")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	end, err := common.TimeArg(args, "end")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if !start.Before(end) {
		return mcp.NewToolResultError("start must be before end"), nil
	}

	p, err := getProvider(sc, typ)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	params := provider.CreateEventParams{
		CalendarID:  common.StringArg(args, "calendarId", ""),
		Subject:     subject,
		Body:        common.StringArg(args, "body", ""),
		Location:    common.StringArg(args, "location", ""),
		Start:       start,
		End:         end,
		IsAllDay:    common.BoolArg(args, "isAllDay", false),
		ShowAs:      model.ShowAs(common.StringArg(args, "showAs", string(model.ShowAsBusy))),
		SendInvites: common.BoolArg(args, "sendInvites", false),
	}
	for _, email := range common.StringListArg(args, "attendees") {
		params.Attendees = append(params.Attendees, model.Attendee{Email: email, Type: model.AttendeeRequired})
	}
	if recurrence, err := recurrenceFromArgs(args); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	} else if recurrence != nil {
		params.Recurrence = recurrence
	}

	var warning string
	if common.BoolArg(args, "checkConflicts", false) {
		check, err := sc.Conflicts().CheckConflicts(ctx, conflict.Proposal{Start: start, End: end})
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Conflict check failed: %v", err)), nil
		}
		if check.HasConflict {
			warning = fmt.Sprintf("\nWarning: overlaps %d existing event(s):\n", len(check.Conflicts))
			for _, c := range check.Conflicts {
				warning += fmt.Sprintf("  - [%s] %s (%s to %s)\n", c.Provider, c.Subject,
					c.Start.Format("15:04"), c.End.Format("15:04"))
			}
			if check.Suggestion != nil {
				warning += fmt.Sprintf("  Suggested alternative: %s to %s (%s)\n",
					check.Suggestion.Start.Format(time.RFC3339),
					check.Suggestion.End.Format(time.RFC3339),
					check.Suggestion.Reason)
			}
		}
	}

	created, err := p.CreateEvent(ctx, params)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to create event: %v", err)), nil
	}

	result := fmt.Sprintf("Event created on %s:\n\n%s%s", typ, formatEventDetail(created), warning)
	return mcp.NewToolResultText(result), nil
}

func recurrenceFromArgs(args map[string]interface{}) (*model.RecurrencePattern, error) {
	recType := common.StringArg(args, "recurrenceType", "")
	if recType == "" {
		return nil, nil
	}

	pattern := &model.RecurrencePattern{
		Type:     model.RecurrenceType(recType),
		Interval: int(common.NumberArg(args, "recurrenceInterval", 1)),
		Count:    int(common.NumberArg(args, "recurrenceCount", 0)),
	}
	switch pattern.Type {
	case model.RecurDaily, model.RecurWeekly, model.RecurMonthly, model.RecurYearly:
	default:
		return nil, fmt.Errorf("invalid recurrenceType %q (want daily, weekly, monthly, or yearly)", recType)
	}

	if untilStr := common.StringArg(args, "recurrenceUntil", ""); untilStr != "" {
		until, err := time.Parse(time.RFC3339, untilStr)
		if err != nil {
			return nil, fmt.Errorf("invalid recurrenceUntil format: %v", err)
		}
		pattern.Until = &until
	}
	return pattern, nil
}

func scopeFromArgs(args map[string]interface{}) (provider.UpdateScope, error) {
	scope := provider.UpdateScope(common.StringArg(args, "scope", string(provider.ScopeSingle)))
	switch scope {
	case provider.ScopeSingle, provider.ScopeThisAndFuture, provider.ScopeSeries:
		return scope, nil
	default:
		return "", fmt.Errorf("invalid scope %q (want single, thisAndFuture, or series)", scope)
	}
}

func handleUpdateEvent(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	typ, err := common.ProviderArg(args, "provider")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	eventID, err := common.RequiredString(args, "eventId")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	scope, err := scopeFromArgs(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	params := provider.UpdateEventParams{Scope: scope}
	touched := false
	if v, ok := args["subject"].(string); ok {
		params.Subject = &v
		touched = true
	}
	if v, ok := args["body"].(string); ok {
		params.Body = &v
		touched = true
	}
	if v, ok := args["location"].(string); ok {
		params.Location = &v
		touched = true
	}
	if v, ok := args["showAs"].(string); ok && v != "" {
		showAs := model.ShowAs(v)
		params.ShowAs = &showAs
		touched = true
	}
	if v, ok := args["start"].(string); ok && v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid start format: %v", err)), nil
		}
		params.Start = &t
		touched = true
	}
	if v, ok := args["end"].(string); ok && v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid end format: %v", err)), nil
		}
		params.End = &t
		touched = true
	}
	if !touched {
		return mcp.NewToolResultError("at least one field to update is required"), nil
	}
	if params.Start != nil && params.End != nil && !params.Start.Before(*params.End) {
		return mcp.NewToolResultError("start must be before end"), nil
	}

	p, err := getProvider(sc, typ)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	updated, err := p.UpdateEvent(ctx, eventID, params, common.StringArg(args, "calendarId", ""))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to update event: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Event updated:\n\n%s", formatEventDetail(updated))), nil
}

func handleDeleteEvent(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	typ, err := common.ProviderArg(args, "provider")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	eventID, err := common.RequiredString(args, "eventId")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	scope, err := scopeFromArgs(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	p, err := getProvider(sc, typ)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	opts := provider.DeleteOptions{
		Scope:  scope,
		Notify: common.BoolArg(args, "notify", false),
	}
	if err := p.DeleteEvent(ctx, eventID, opts, common.StringArg(args, "calendarId", "")); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to delete event: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Event %s deleted from %s.", eventID, typ)), nil
}

func handleRespondEvent(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	typ, err := common.ProviderArg(args, "provider")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	eventID, err := common.RequiredString(args, "eventId")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	responseStr, err := common.RequiredString(args, "response")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	response := provider.EventResponse(responseStr)
	switch response {
	case provider.RespondAccept, provider.RespondDecline, provider.RespondTentative:
	default:
		return mcp.NewToolResultError(fmt.Sprintf("invalid response %q (want accept, decline, or tentative)", responseStr)), nil
	}

	p, err := getProvider(sc, typ)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	err = p.RespondToEvent(ctx, eventID, response, common.StringArg(args, "calendarId", ""), common.StringArg(args, "message", ""))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to respond to event: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Responded %q to event %s on %s.", response, eventID, typ)), nil
}
