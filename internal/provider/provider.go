package provider

import (
	"context"
	"time"

	"github.com/calmux/calmux/internal/model"
)

// ListOptions filters an event listing.
type ListOptions struct {
	Start       time.Time
	End         time.Time
	CalendarIDs []string
	Query       string
	MaxResults  int
}

// CreateEventParams is the provider-independent event creation request.
type CreateEventParams struct {
	CalendarID string
	Subject    string
	Body       string
	Location   string

	Start    time.Time
	End      time.Time
	TimeZone string
	IsAllDay bool

	ShowAs      model.ShowAs
	Sensitivity model.Sensitivity
	Attendees   []model.Attendee
	Recurrence  *model.RecurrencePattern

	// SendInvites controls whether the provider notifies attendees.
	// Cross-provider copies always suppress invites.
	SendInvites bool
}

// UpdateScope selects which instances of a recurring series an update or
// delete applies to. Not every provider supports every scope; adapters that
// cannot honor a scope either downgrade with a warning (Google,
// thisAndFuture) or reject with ErrKindInvalidInput.
type UpdateScope string

const (
	ScopeSingle        UpdateScope = "single"
	ScopeThisAndFuture UpdateScope = "thisAndFuture"
	ScopeSeries        UpdateScope = "series"
)

// UpdateEventParams is a partial update; nil fields are left unchanged.
type UpdateEventParams struct {
	Subject  *string
	Body     *string
	Location *string

	Start    *time.Time
	End      *time.Time
	TimeZone *string
	IsAllDay *bool

	ShowAs      *model.ShowAs
	Sensitivity *model.Sensitivity
	Attendees   []model.Attendee

	Scope UpdateScope
}

// DeleteOptions controls event deletion.
type DeleteOptions struct {
	Scope  UpdateScope
	Notify bool
}

// EventResponse is a reply to an event invitation.
type EventResponse string

const (
	RespondAccept    EventResponse = "accept"
	RespondDecline   EventResponse = "decline"
	RespondTentative EventResponse = "tentative"
)

// CalendarFreeBusy is one calendar's busy intervals within a queried range.
type CalendarFreeBusy struct {
	CalendarID   string           `json:"calendarId"`
	CalendarName string           `json:"calendarName"`
	Busy         []model.BusySlot `json:"busy"`
}

// Provider is the capability contract every back-end adapter satisfies.
// All methods classify failures into the model error taxonomy.
type Provider interface {
	// Type returns the provider tag this adapter serves.
	Type() model.ProviderType

	Connect(ctx context.Context) error
	Disconnect(ctx context.Context) error
	IsConnected() bool

	ListCalendars(ctx context.Context) ([]model.Calendar, error)

	ListEvents(ctx context.Context, opts ListOptions) ([]model.CalendarEvent, error)
	GetEvent(ctx context.Context, eventID, calendarID string) (*model.CalendarEvent, error)
	CreateEvent(ctx context.Context, params CreateEventParams) (*model.CalendarEvent, error)
	UpdateEvent(ctx context.Context, eventID string, params UpdateEventParams, calendarID string) (*model.CalendarEvent, error)
	DeleteEvent(ctx context.Context, eventID string, opts DeleteOptions, calendarID string) error

	GetFreeBusy(ctx context.Context, start, end time.Time, calendarIDs []string) ([]CalendarFreeBusy, error)
	RespondToEvent(ctx context.Context, eventID string, response EventResponse, calendarID, message string) error
}
