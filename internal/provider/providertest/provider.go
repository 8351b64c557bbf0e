// Package providertest provides an in-memory Provider implementation for
// exercising the scheduling engines without network access.
package providertest

import (
	"context"
	"fmt"
	"time"

	"github.com/calmux/calmux/internal/model"
	"github.com/calmux/calmux/internal/provider"
	"github.com/calmux/calmux/internal/timeutil"
)

// Fake is a deterministic in-memory provider. Zero value is usable; set
// Events, Busy and error fields as the test requires.
type Fake struct {
	ProviderType model.ProviderType
	Connected    bool

	Calendars []model.Calendar
	Events    []model.CalendarEvent
	Busy      []provider.CalendarFreeBusy

	// Err, when set, is returned by every query method.
	Err error

	// CreateErr fails CreateEvent specifically.
	CreateErr error

	// Created records every event materialized through CreateEvent.
	Created []provider.CreateEventParams
}

var _ provider.Provider = (*Fake)(nil)

// New returns a connected fake for the given provider type.
func New(t model.ProviderType) *Fake {
	return &Fake{ProviderType: t, Connected: true}
}

func (f *Fake) Type() model.ProviderType { return f.ProviderType }

func (f *Fake) Connect(ctx context.Context) error    { f.Connected = true; return nil }
func (f *Fake) Disconnect(ctx context.Context) error { f.Connected = false; return nil }
func (f *Fake) IsConnected() bool                    { return f.Connected }

func (f *Fake) ListCalendars(ctx context.Context) ([]model.Calendar, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	return f.Calendars, nil
}

func (f *Fake) ListEvents(ctx context.Context, opts provider.ListOptions) ([]model.CalendarEvent, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	var out []model.CalendarEvent
	for _, e := range f.Events {
		if !opts.Start.IsZero() && !timeutil.RangesOverlap(e.Start, e.End, opts.Start, opts.End) {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (f *Fake) GetEvent(ctx context.Context, eventID, calendarID string) (*model.CalendarEvent, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	for i := range f.Events {
		if f.Events[i].ID == eventID {
			return &f.Events[i], nil
		}
	}
	return nil, model.NewProviderError(model.ErrKindNotFound, f.ProviderType, "events.get",
		fmt.Sprintf("event %s not found", eventID), nil)
}

func (f *Fake) CreateEvent(ctx context.Context, params provider.CreateEventParams) (*model.CalendarEvent, error) {
	if f.CreateErr != nil {
		return nil, f.CreateErr
	}
	if f.Err != nil {
		return nil, f.Err
	}
	f.Created = append(f.Created, params)
	ev := model.CalendarEvent{
		ID:         fmt.Sprintf("created-%d", len(f.Created)),
		Provider:   f.ProviderType,
		CalendarID: params.CalendarID,
		Subject:    params.Subject,
		Body:       params.Body,
		Location:   params.Location,
		Start:      params.Start,
		End:        params.End,
		TimeZone:   params.TimeZone,
		IsAllDay:   params.IsAllDay,
		Status:     model.StatusConfirmed,
		ShowAs:     params.ShowAs,
		Attendees:  params.Attendees,
	}
	f.Events = append(f.Events, ev)
	return &ev, nil
}

func (f *Fake) UpdateEvent(ctx context.Context, eventID string, params provider.UpdateEventParams, calendarID string) (*model.CalendarEvent, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	ev, err := f.GetEvent(ctx, eventID, calendarID)
	if err != nil {
		return nil, err
	}
	if params.Subject != nil {
		ev.Subject = *params.Subject
	}
	if params.Start != nil {
		ev.Start = *params.Start
	}
	if params.End != nil {
		ev.End = *params.End
	}
	return ev, nil
}

func (f *Fake) DeleteEvent(ctx context.Context, eventID string, opts provider.DeleteOptions, calendarID string) error {
	if f.Err != nil {
		return f.Err
	}
	for i := range f.Events {
		if f.Events[i].ID == eventID {
			f.Events = append(f.Events[:i], f.Events[i+1:]...)
			return nil
		}
	}
	return model.NewProviderError(model.ErrKindNotFound, f.ProviderType, "events.delete",
		fmt.Sprintf("event %s not found", eventID), nil)
}

func (f *Fake) GetFreeBusy(ctx context.Context, start, end time.Time, calendarIDs []string) ([]provider.CalendarFreeBusy, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	return f.Busy, nil
}

func (f *Fake) RespondToEvent(ctx context.Context, eventID string, response provider.EventResponse, calendarID, message string) error {
	return f.Err
}
