package google

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/oauth2"
	calendar "google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/calmux/calmux/internal/logging"
	"github.com/calmux/calmux/internal/model"
	"github.com/calmux/calmux/internal/provider"
)

// calendarListTTL bounds the in-memory calendar list cache. This is the
// only mutable state the adapter keeps between calls.
const calendarListTTL = 5 * time.Minute

// Client adapts Google Calendar to the provider interface.
type Client struct {
	svc         *calendar.Service
	tokenSource oauth2.TokenSource

	mu          sync.Mutex
	connected   bool
	calCache    []model.Calendar
	calCachedAt time.Time
}

var _ provider.Provider = (*Client)(nil)

// NewClient creates a Google Calendar adapter from an OAuth2 token source.
func NewClient(ts oauth2.TokenSource) *Client {
	return &Client{tokenSource: ts}
}

func (c *Client) Type() model.ProviderType { return model.ProviderGoogle }

// Connect builds the Calendar service and verifies credentials with a
// cheap calendar list probe.
func (c *Client) Connect(ctx context.Context) error {
	httpClient := oauth2.NewClient(ctx, c.tokenSource)
	svc, err := calendar.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return c.wrapErr("connect", err)
	}
	if _, err := svc.CalendarList.List().MaxResults(1).Context(ctx).Do(); err != nil {
		return c.wrapErr("connect", err)
	}

	c.mu.Lock()
	c.svc = svc
	c.connected = true
	c.mu.Unlock()
	return nil
}

func (c *Client) Disconnect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.connected = false
	c.calCache = nil
	return nil
}

func (c *Client) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

// wrapErr classifies a Google API error into the unified taxonomy.
func (c *Client) wrapErr(op string, err error) error {
	kind := model.ErrKindInternal
	var retryAfter time.Duration
	if gerr, ok := err.(*googleapi.Error); ok {
		switch gerr.Code {
		case 401:
			kind = model.ErrKindAuthFailure
		case 403:
			kind = model.ErrKindPermissionDenied
		case 404:
			kind = model.ErrKindNotFound
		case 409:
			kind = model.ErrKindConflict
		case 429:
			kind = model.ErrKindRateLimited
			retryAfter = time.Minute
		case 500, 502, 503, 504:
			kind = model.ErrKindUnavailable
		}
	}
	pe := model.NewProviderError(kind, model.ProviderGoogle, op, err.Error(), err)
	pe.RetryAfter = retryAfter
	return pe
}

func (c *Client) service() (*calendar.Service, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.connected || c.svc == nil {
		return nil, model.NewProviderError(model.ErrKindUnavailable, model.ProviderGoogle,
			"service", "client is not connected", nil)
	}
	return c.svc, nil
}

// ListCalendars lists calendars, serving from the short-lived cache when
// fresh.
func (c *Client) ListCalendars(ctx context.Context) ([]model.Calendar, error) {
	c.mu.Lock()
	if c.calCache != nil && time.Since(c.calCachedAt) < calendarListTTL {
		cached := c.calCache
		c.mu.Unlock()
		return cached, nil
	}
	c.mu.Unlock()

	svc, err := c.service()
	if err != nil {
		return nil, err
	}
	list, err := svc.CalendarList.List().Context(ctx).Do()
	if err != nil {
		return nil, c.wrapErr("calendars.list", err)
	}

	calendars := make([]model.Calendar, 0, len(list.Items))
	for _, entry := range list.Items {
		calendars = append(calendars, toCalendar(entry))
	}

	c.mu.Lock()
	c.calCache = calendars
	c.calCachedAt = time.Now()
	c.mu.Unlock()
	return calendars, nil
}

func (c *Client) ListEvents(ctx context.Context, opts provider.ListOptions) ([]model.CalendarEvent, error) {
	svc, err := c.service()
	if err != nil {
		return nil, err
	}

	calendarIDs := opts.CalendarIDs
	if len(calendarIDs) == 0 {
		calendarIDs = []string{"primary"}
	}

	var events []model.CalendarEvent
	for _, calID := range calendarIDs {
		call := svc.Events.List(calID).
			TimeMin(opts.Start.Format(time.RFC3339)).
			TimeMax(opts.End.Format(time.RFC3339)).
			SingleEvents(true).
			OrderBy("startTime").
			Context(ctx)
		if opts.Query != "" {
			call = call.Q(opts.Query)
		}
		if opts.MaxResults > 0 {
			call = call.MaxResults(int64(opts.MaxResults))
		}

		list, err := call.Do()
		if err != nil {
			return nil, c.wrapErr("events.list", err)
		}
		for _, item := range list.Items {
			ev, err := toEvent(item, calID)
			if err != nil {
				continue
			}
			events = append(events, *ev)
		}
	}
	return events, nil
}

func (c *Client) GetEvent(ctx context.Context, eventID, calendarID string) (*model.CalendarEvent, error) {
	svc, err := c.service()
	if err != nil {
		return nil, err
	}
	if calendarID == "" {
		calendarID = "primary"
	}
	item, err := svc.Events.Get(calendarID, eventID).Context(ctx).Do()
	if err != nil {
		return nil, c.wrapErr("events.get", err)
	}
	return toEvent(item, calendarID)
}

func (c *Client) CreateEvent(ctx context.Context, params provider.CreateEventParams) (*model.CalendarEvent, error) {
	svc, err := c.service()
	if err != nil {
		return nil, err
	}
	calendarID := params.CalendarID
	if calendarID == "" {
		calendarID = "primary"
	}

	event, err := fromCreateParams(params)
	if err != nil {
		return nil, model.NewProviderError(model.ErrKindInvalidInput, model.ProviderGoogle,
			"events.insert", err.Error(), err)
	}

	call := svc.Events.Insert(calendarID, event).Context(ctx)
	if params.SendInvites {
		call = call.SendUpdates("all")
	} else {
		call = call.SendUpdates("none")
	}

	created, err := call.Do()
	if err != nil {
		return nil, c.wrapErr("events.insert", err)
	}
	return toEvent(created, calendarID)
}

func (c *Client) UpdateEvent(ctx context.Context, eventID string, params provider.UpdateEventParams, calendarID string) (*model.CalendarEvent, error) {
	svc, err := c.service()
	if err != nil {
		return nil, err
	}
	if calendarID == "" {
		calendarID = "primary"
	}

	// Google expands recurring series into instances with singleEvents, so
	// thisAndFuture degrades to a single-instance update here. Known
	// capability gap, surfaced rather than hidden.
	patch, warn := fromUpdateParams(params)
	if warn != "" {
		slog.Warn("recurring update scope downgraded",
			logging.Provider(model.ProviderGoogle),
			slog.String("event_id", eventID),
			slog.String("detail", warn))
	}

	updated, err := svc.Events.Patch(calendarID, eventID, patch).SendUpdates("none").Context(ctx).Do()
	if err != nil {
		return nil, c.wrapErr("events.patch", err)
	}
	return toEvent(updated, calendarID)
}

func (c *Client) DeleteEvent(ctx context.Context, eventID string, opts provider.DeleteOptions, calendarID string) error {
	svc, err := c.service()
	if err != nil {
		return err
	}
	if calendarID == "" {
		calendarID = "primary"
	}
	call := svc.Events.Delete(calendarID, eventID).Context(ctx)
	if opts.Notify {
		call = call.SendUpdates("all")
	} else {
		call = call.SendUpdates("none")
	}
	if err := call.Do(); err != nil {
		return c.wrapErr("events.delete", err)
	}
	return nil
}

func (c *Client) GetFreeBusy(ctx context.Context, start, end time.Time, calendarIDs []string) ([]provider.CalendarFreeBusy, error) {
	svc, err := c.service()
	if err != nil {
		return nil, err
	}
	if len(calendarIDs) == 0 {
		calendarIDs = []string{"primary"}
	}

	items := make([]*calendar.FreeBusyRequestItem, len(calendarIDs))
	for i, id := range calendarIDs {
		items[i] = &calendar.FreeBusyRequestItem{Id: id}
	}

	resp, err := svc.Freebusy.Query(&calendar.FreeBusyRequest{
		TimeMin: start.Format(time.RFC3339),
		TimeMax: end.Format(time.RFC3339),
		Items:   items,
	}).Context(ctx).Do()
	if err != nil {
		return nil, c.wrapErr("freebusy.query", err)
	}

	var out []provider.CalendarFreeBusy
	for calID, cal := range resp.Calendars {
		fb := provider.CalendarFreeBusy{CalendarID: calID, CalendarName: calID}
		for _, b := range cal.Busy {
			bs, err := toBusySlot(b)
			if err != nil {
				continue
			}
			fb.Busy = append(fb.Busy, bs)
		}
		out = append(out, fb)
	}
	return out, nil
}

// RespondToEvent patches the authenticated user's attendee entry with the
// requested response status.
func (c *Client) RespondToEvent(ctx context.Context, eventID string, response provider.EventResponse, calendarID, message string) error {
	svc, err := c.service()
	if err != nil {
		return err
	}
	if calendarID == "" {
		calendarID = "primary"
	}

	event, err := svc.Events.Get(calendarID, eventID).Context(ctx).Do()
	if err != nil {
		return c.wrapErr("events.respond", err)
	}

	status, err := responseStatus(response)
	if err != nil {
		return model.NewProviderError(model.ErrKindInvalidInput, model.ProviderGoogle,
			"events.respond", err.Error(), err)
	}

	found := false
	for _, att := range event.Attendees {
		if att.Self {
			att.ResponseStatus = status
			if message != "" {
				att.Comment = message
			}
			found = true
		}
	}
	if !found {
		return model.NewProviderError(model.ErrKindNotFound, model.ProviderGoogle,
			"events.respond", fmt.Sprintf("not an attendee of event %s", eventID), nil)
	}

	patch := &calendar.Event{Attendees: event.Attendees}
	if _, err := svc.Events.Patch(calendarID, eventID, patch).SendUpdates("all").Context(ctx).Do(); err != nil {
		return c.wrapErr("events.respond", err)
	}
	return nil
}

func responseStatus(r provider.EventResponse) (string, error) {
	switch r {
	case provider.RespondAccept:
		return "accepted", nil
	case provider.RespondDecline:
		return "declined", nil
	case provider.RespondTentative:
		return "tentative", nil
	}
	return "", fmt.Errorf("unknown response %q", r)
}
