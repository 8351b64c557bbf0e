package graph

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"golang.org/x/oauth2"

	"github.com/calmux/calmux/internal/model"
	"github.com/calmux/calmux/internal/provider"
)

const (
	defaultBaseURL  = "https://graph.microsoft.com/v1.0"
	calendarListTTL = 5 * time.Minute
)

// Client adapts Microsoft Graph to the provider interface. UserID selects
// the mailbox (/users/{id}); empty means /me.
type Client struct {
	baseURL     string
	userID      string
	timeZone    string
	httpClient  *http.Client
	tokenSource oauth2.TokenSource

	mu          sync.Mutex
	connected   bool
	calCache    []model.Calendar
	calCachedAt time.Time
}

var _ provider.Provider = (*Client)(nil)

// NewClient creates a Graph adapter. The token source typically comes from
// a client-credentials config; timeZone is the IANA zone requested via the
// Prefer header on reads.
func NewClient(ts oauth2.TokenSource, userID, timeZone string) *Client {
	return &Client{
		baseURL:     defaultBaseURL,
		userID:      userID,
		timeZone:    timeZone,
		tokenSource: ts,
	}
}

func (c *Client) Type() model.ProviderType { return model.ProviderGraph }

func (c *Client) Connect(ctx context.Context) error {
	c.httpClient = oauth2.NewClient(ctx, c.tokenSource)
	// Probe credentials with a one-item calendar listing.
	var list graphCalendarList
	if err := c.do(ctx, http.MethodGet, c.mailboxPath("/calendars?$top=1"), nil, &list); err != nil {
		return err
	}
	c.mu.Lock()
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

func (c *Client) mailboxPath(suffix string) string {
	if c.userID == "" {
		return "/me" + suffix
	}
	return "/users/" + url.PathEscape(c.userID) + suffix
}

// do executes one Graph request and decodes the response, translating HTTP
// failures into the unified error taxonomy.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	if c.httpClient == nil {
		return model.NewProviderError(model.ErrKindUnavailable, model.ProviderGraph,
			"request", "client is not connected", nil)
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return model.NewProviderError(model.ErrKindInternal, model.ProviderGraph, "request", err.Error(), err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return model.NewProviderError(model.ErrKindInternal, model.ProviderGraph, "request", err.Error(), err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.timeZone != "" {
		req.Header.Set("Prefer", fmt.Sprintf(`outlook.timezone="%s"`, c.timeZone))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return model.NewProviderError(model.ErrKindUnavailable, model.ProviderGraph, "request", err.Error(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return c.statusError(resp, method+" "+path)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return model.NewProviderError(model.ErrKindInternal, model.ProviderGraph, "decode", err.Error(), err)
	}
	return nil
}

func (c *Client) statusError(resp *http.Response, op string) error {
	var ge graphError
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	_ = json.Unmarshal(data, &ge)
	message := ge.Error.Message
	if message == "" {
		message = resp.Status
	}

	kind := model.ErrKindInternal
	var retryAfter time.Duration
	switch resp.StatusCode {
	case http.StatusUnauthorized:
		kind = model.ErrKindAuthFailure
	case http.StatusForbidden:
		kind = model.ErrKindPermissionDenied
	case http.StatusNotFound:
		kind = model.ErrKindNotFound
	case http.StatusConflict:
		kind = model.ErrKindConflict
	case http.StatusBadRequest:
		kind = model.ErrKindInvalidInput
	case http.StatusTooManyRequests:
		kind = model.ErrKindRateLimited
		if s := resp.Header.Get("Retry-After"); s != "" {
			if secs, err := strconv.Atoi(s); err == nil {
				retryAfter = time.Duration(secs) * time.Second
			}
		}
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout, http.StatusInternalServerError:
		kind = model.ErrKindUnavailable
	}

	pe := model.NewProviderError(kind, model.ProviderGraph, op, message, nil)
	pe.RetryAfter = retryAfter
	return pe
}

func (c *Client) ListCalendars(ctx context.Context) ([]model.Calendar, error) {
	c.mu.Lock()
	if c.calCache != nil && time.Since(c.calCachedAt) < calendarListTTL {
		cached := c.calCache
		c.mu.Unlock()
		return cached, nil
	}
	c.mu.Unlock()

	var list graphCalendarList
	if err := c.do(ctx, http.MethodGet, c.mailboxPath("/calendars"), nil, &list); err != nil {
		return nil, err
	}

	calendars := make([]model.Calendar, 0, len(list.Value))
	for _, gc := range list.Value {
		calendars = append(calendars, model.Calendar{
			ID:        gc.ID,
			Provider:  model.ProviderGraph,
			Name:      gc.Name,
			IsPrimary: gc.IsDefault,
			CanEdit:   gc.CanEdit,
			TimeZone:  c.timeZone,
		})
	}

	c.mu.Lock()
	c.calCache = calendars
	c.calCachedAt = time.Now()
	c.mu.Unlock()
	return calendars, nil
}

func (c *Client) eventsPath(calendarID, suffix string) string {
	if calendarID == "" {
		return c.mailboxPath(suffix)
	}
	return c.mailboxPath("/calendars/" + url.PathEscape(calendarID) + suffix)
}

func (c *Client) ListEvents(ctx context.Context, opts provider.ListOptions) ([]model.CalendarEvent, error) {
	calendarIDs := opts.CalendarIDs
	if len(calendarIDs) == 0 {
		calendarIDs = []string{""}
	}

	var events []model.CalendarEvent
	for _, calID := range calendarIDs {
		query := url.Values{}
		query.Set("startDateTime", opts.Start.UTC().Format(time.RFC3339))
		query.Set("endDateTime", opts.End.UTC().Format(time.RFC3339))
		query.Set("$orderby", "start/dateTime")
		if opts.MaxResults > 0 {
			query.Set("$top", strconv.Itoa(opts.MaxResults))
		}

		path := c.eventsPath(calID, "/calendarView?"+query.Encode())
		for path != "" {
			var list graphEventList
			if err := c.do(ctx, http.MethodGet, path, nil, &list); err != nil {
				return nil, err
			}
			for _, ge := range list.Value {
				ev, err := toEvent(&ge, calID)
				if err != nil {
					continue
				}
				events = append(events, *ev)
			}
			path = nextPath(list.NextLink, c.baseURL)
		}
	}
	return events, nil
}

// nextPath strips the base URL from an @odata.nextLink so pagination stays
// inside the configured endpoint.
func nextPath(next, base string) string {
	if next == "" || len(next) <= len(base) {
		return ""
	}
	if next[:len(base)] != base {
		return ""
	}
	return next[len(base):]
}

func (c *Client) GetEvent(ctx context.Context, eventID, calendarID string) (*model.CalendarEvent, error) {
	var ge graphEvent
	path := c.eventsPath(calendarID, "/events/"+url.PathEscape(eventID))
	if err := c.do(ctx, http.MethodGet, path, nil, &ge); err != nil {
		return nil, err
	}
	return toEvent(&ge, calendarID)
}

func (c *Client) CreateEvent(ctx context.Context, params provider.CreateEventParams) (*model.CalendarEvent, error) {
	body := fromCreateParams(params)
	var created graphEvent
	path := c.eventsPath(params.CalendarID, "/events")
	if err := c.do(ctx, http.MethodPost, path, body, &created); err != nil {
		return nil, err
	}
	return toEvent(&created, params.CalendarID)
}

func (c *Client) UpdateEvent(ctx context.Context, eventID string, params provider.UpdateEventParams, calendarID string) (*model.CalendarEvent, error) {
	if params.Scope == provider.ScopeThisAndFuture {
		return nil, model.NewProviderError(model.ErrKindInvalidInput, model.ProviderGraph,
			"events.update", "thisAndFuture scope is not supported by the graph adapter", nil)
	}
	body := fromUpdateParams(params)
	var updated graphEvent
	path := c.eventsPath(calendarID, "/events/"+url.PathEscape(eventID))
	if err := c.do(ctx, http.MethodPatch, path, body, &updated); err != nil {
		return nil, err
	}
	return toEvent(&updated, calendarID)
}

func (c *Client) DeleteEvent(ctx context.Context, eventID string, opts provider.DeleteOptions, calendarID string) error {
	if opts.Scope == provider.ScopeThisAndFuture {
		return model.NewProviderError(model.ErrKindInvalidInput, model.ProviderGraph,
			"events.delete", "thisAndFuture scope is not supported by the graph adapter", nil)
	}
	path := c.eventsPath(calendarID, "/events/"+url.PathEscape(eventID))
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

func (c *Client) GetFreeBusy(ctx context.Context, start, end time.Time, calendarIDs []string) ([]provider.CalendarFreeBusy, error) {
	schedules := calendarIDs
	if len(schedules) == 0 {
		schedules = []string{c.userID}
	}

	body := map[string]any{
		"schedules": schedules,
		"startTime": graphDateTime{DateTime: start.UTC().Format("2006-01-02T15:04:05"), TimeZone: "UTC"},
		"endTime":   graphDateTime{DateTime: end.UTC().Format("2006-01-02T15:04:05"), TimeZone: "UTC"},
	}

	var resp graphScheduleResponse
	if err := c.do(ctx, http.MethodPost, c.mailboxPath("/calendar/getSchedule"), body, &resp); err != nil {
		return nil, err
	}

	var out []provider.CalendarFreeBusy
	for _, info := range resp.Value {
		fb := provider.CalendarFreeBusy{CalendarID: info.ScheduleID, CalendarName: info.ScheduleID}
		for _, item := range info.ScheduleItems {
			slot, err := toBusySlot(item)
			if err != nil {
				continue
			}
			// getSchedule reports free stretches too; only blocking
			// statuses become busy slots.
			if slot.Status == model.ShowAsFree {
				continue
			}
			fb.Busy = append(fb.Busy, slot)
		}
		out = append(out, fb)
	}
	return out, nil
}

func (c *Client) RespondToEvent(ctx context.Context, eventID string, response provider.EventResponse, calendarID, message string) error {
	var action string
	switch response {
	case provider.RespondAccept:
		action = "accept"
	case provider.RespondDecline:
		action = "decline"
	case provider.RespondTentative:
		action = "tentativelyAccept"
	default:
		return model.NewProviderError(model.ErrKindInvalidInput, model.ProviderGraph,
			"events.respond", fmt.Sprintf("unknown response %q", response), nil)
	}

	body := map[string]any{"sendResponse": true}
	if message != "" {
		body["comment"] = message
	}
	path := c.eventsPath(calendarID, "/events/"+url.PathEscape(eventID)+"/"+action)
	return c.do(ctx, http.MethodPost, path, body, nil)
}
