package model

import (
	"fmt"
	"time"
)

// ProviderType identifies a calendar back-end. The set is closed: the core
// branches on these values explicitly and never inspects adapter internals.
type ProviderType string

const (
	// ProviderGoogle is the Google Calendar REST API.
	ProviderGoogle ProviderType = "google"
	// ProviderGraph is the Microsoft Graph API.
	ProviderGraph ProviderType = "graph"
	// ProviderEWS is on-premises Exchange Web Services (SOAP/XML).
	ProviderEWS ProviderType = "ews"
)

// ParseProviderType validates a provider name from user input.
func ParseProviderType(s string) (ProviderType, error) {
	switch ProviderType(s) {
	case ProviderGoogle, ProviderGraph, ProviderEWS:
		return ProviderType(s), nil
	}
	return "", fmt.Errorf("unknown provider %q (expected google, graph or ews)", s)
}

// EventStatus is the lifecycle state of an event.
type EventStatus string

const (
	StatusConfirmed EventStatus = "confirmed"
	StatusTentative EventStatus = "tentative"
	StatusCancelled EventStatus = "cancelled"
)

// ShowAs is the busy-classification axis used by the availability engine and
// the conflict detector. Events marked ShowAsFree are never treated as busy.
type ShowAs string

const (
	ShowAsFree             ShowAs = "free"
	ShowAsBusy             ShowAs = "busy"
	ShowAsTentative        ShowAs = "tentative"
	ShowAsOOF              ShowAs = "oof"
	ShowAsWorkingElsewhere ShowAs = "workingElsewhere"
)

// Sensitivity is the visibility classification of an event.
type Sensitivity string

const (
	SensitivityNormal       Sensitivity = "normal"
	SensitivityPersonal     Sensitivity = "personal"
	SensitivityPrivate      Sensitivity = "private"
	SensitivityConfidential Sensitivity = "confidential"
)

// ResponseStatus is an attendee's reply to an invitation.
type ResponseStatus string

const (
	ResponseNone      ResponseStatus = "none"
	ResponseAccepted  ResponseStatus = "accepted"
	ResponseDeclined  ResponseStatus = "declined"
	ResponseTentative ResponseStatus = "tentative"
)

// AttendeeType distinguishes required and optional attendees from booked
// resources such as rooms.
type AttendeeType string

const (
	AttendeeRequired AttendeeType = "required"
	AttendeeOptional AttendeeType = "optional"
	AttendeeResource AttendeeType = "resource"
)

// Attendee is a participant on an event.
type Attendee struct {
	Email          string         `json:"email"`
	DisplayName    string         `json:"displayName,omitempty"`
	ResponseStatus ResponseStatus `json:"responseStatus,omitempty"`
	Type           AttendeeType   `json:"type,omitempty"`
}

// CalendarEvent is the unified event record. IDs are provider-scoped and
// opaque; the (ID, Provider, CalendarID) triple identifies an event.
type CalendarEvent struct {
	ID         string       `json:"id"`
	Provider   ProviderType `json:"provider"`
	CalendarID string       `json:"calendarId"`

	Subject  string `json:"subject"`
	Body     string `json:"body,omitempty"`
	Location string `json:"location,omitempty"`

	// Start and End carry their zone via time.Location; TimeZone records the
	// IANA name the provider reported so round-trips preserve it.
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
	TimeZone string    `json:"timeZone,omitempty"`
	IsAllDay bool      `json:"isAllDay"`

	Status      EventStatus `json:"status"`
	ShowAs      ShowAs      `json:"showAs"`
	Sensitivity Sensitivity `json:"sensitivity,omitempty"`

	Organizer *Attendee  `json:"organizer,omitempty"`
	Attendees []Attendee `json:"attendees,omitempty"`

	IsRecurring    bool               `json:"isRecurring"`
	Recurrence     *RecurrencePattern `json:"recurrence,omitempty"`
	SeriesMasterID string             `json:"seriesMasterId,omitempty"`
	InstanceDate   string             `json:"instanceDate,omitempty"`

	// ICalUID, when present on both sides of a comparison, is strong
	// evidence of cross-provider identity.
	ICalUID string `json:"iCalUId,omitempty"`
}

// Validate reports a construction error when the event's timing is
// malformed. Start must be strictly before End.
func (e *CalendarEvent) Validate() error {
	if e.Start.IsZero() || e.End.IsZero() {
		return fmt.Errorf("event %s: start and end are required", e.ID)
	}
	if !e.Start.Before(e.End) {
		return fmt.Errorf("event %s: start %s is not before end %s", e.ID, e.Start, e.End)
	}
	return nil
}

// IsBusy reports whether the event blocks time. ShowAsFree events are
// transparent to availability and conflict checks.
func (e *CalendarEvent) IsBusy() bool {
	return e.ShowAs != ShowAsFree
}

// Calendar describes one calendar within a provider account.
type Calendar struct {
	ID        string       `json:"id"`
	Provider  ProviderType `json:"provider"`
	Name      string       `json:"name"`
	IsPrimary bool         `json:"isPrimary"`
	CanEdit   bool         `json:"canEdit"`
	TimeZone  string       `json:"timeZone,omitempty"`
}

// BusySlot is a derived, per-request interval during which an account is
// unavailable. Never persisted.
type BusySlot struct {
	Start  time.Time `json:"start"`
	End    time.Time `json:"end"`
	Status ShowAs    `json:"status"`
}

// FreeSlot is a gap-computed interval with no overlapping busy slot.
type FreeSlot struct {
	Start           time.Time `json:"start"`
	End             time.Time `json:"end"`
	DurationMinutes int       `json:"durationMinutes"`
}
