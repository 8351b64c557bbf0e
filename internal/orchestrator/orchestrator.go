package orchestrator

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/calmux/calmux/internal/instrumentation"
	"github.com/calmux/calmux/internal/logging"
	"github.com/calmux/calmux/internal/model"
	"github.com/calmux/calmux/internal/provider"
)

// ProviderError records which provider failed during a fan-out.
type ProviderError struct {
	Provider model.ProviderType `json:"provider"`
	Message  string             `json:"message"`
	Kind     model.ErrKind      `json:"kind"`
	Err      error              `json:"-"`
}

// EventsResult is the merged outcome of a fan-out event listing. Partial is
// set when at least one provider failed while others succeeded.
type EventsResult struct {
	Events  []model.CalendarEvent
	Errors  []ProviderError
	Partial bool
}

// FreeBusyResult is the merged outcome of a fan-out free/busy query.
type FreeBusyResult struct {
	Calendars []provider.CalendarFreeBusy
	Errors    []ProviderError
	Partial   bool
}

// Orchestrator fans requests out across the registry's connected providers.
// Per-provider failure is isolated: one erroring provider never fails the
// aggregate result.
type Orchestrator struct {
	registry *provider.Registry
	logger   *slog.Logger
	metrics  *instrumentation.Metrics
}

// New creates an orchestrator over the given registry. A nil metrics
// recorder disables telemetry.
func New(registry *provider.Registry, logger *slog.Logger, metrics *instrumentation.Metrics) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = &instrumentation.Metrics{}
	}
	return &Orchestrator{registry: registry, logger: logger, metrics: metrics}
}

// Registry exposes the underlying registry for direct single-provider work.
func (o *Orchestrator) Registry() *provider.Registry { return o.registry }

// fanOut issues one call per provider concurrently and joins them into
// (result, error) pairs, preserving per-provider error identity. Every call
// is recorded under op with its provider tag and outcome.
func fanOut[T any](ctx context.Context, providers []provider.Provider, op string,
	metrics *instrumentation.Metrics,
	call func(ctx context.Context, p provider.Provider) (T, error)) ([]T, []ProviderError) {

	type outcome struct {
		value T
		err   error
		ptype model.ProviderType
	}

	outcomes := make([]outcome, len(providers))
	var wg sync.WaitGroup
	for i, p := range providers {
		wg.Add(1)
		go func(i int, p provider.Provider) {
			defer wg.Done()
			start := time.Now()
			v, err := call(ctx, p)
			status := "success"
			if err != nil {
				status = "error"
			}
			metrics.RecordProviderOperation(ctx, string(p.Type()), op, status, time.Since(start))
			outcomes[i] = outcome{value: v, err: err, ptype: p.Type()}
		}(i, p)
	}
	wg.Wait()

	var values []T
	var errs []ProviderError
	for _, oc := range outcomes {
		if oc.err != nil {
			errs = append(errs, ProviderError{
				Provider: oc.ptype,
				Message:  oc.err.Error(),
				Kind:     model.KindOf(oc.err),
				Err:      oc.err,
			})
			continue
		}
		values = append(values, oc.value)
	}
	return values, errs
}

// ListEvents queries every connected provider matching the filter and merges
// the returned events, sorted by start time. An empty provider set yields an
// empty result, not an error.
func (o *Orchestrator) ListEvents(ctx context.Context, opts provider.ListOptions, filter []model.ProviderType) EventsResult {
	providers := o.registry.Connected(filter)

	lists, errs := fanOut(ctx, providers, "events.list", o.metrics,
		func(ctx context.Context, p provider.Provider) ([]model.CalendarEvent, error) {
			return p.ListEvents(ctx, opts)
		})

	var events []model.CalendarEvent
	for _, l := range lists {
		events = append(events, l...)
	}
	sort.Slice(events, func(i, j int) bool { return events[i].Start.Before(events[j].Start) })

	for _, e := range errs {
		o.logger.Warn("provider listing failed, continuing with partial results",
			logging.Provider(e.Provider), logging.Err(e.Err))
	}

	return EventsResult{
		Events:  events,
		Errors:  errs,
		Partial: len(errs) > 0 && len(providers) > len(errs),
	}
}

// GetFreeBusy queries every connected provider matching the filter for its
// busy intervals within [start, end).
func (o *Orchestrator) GetFreeBusy(ctx context.Context, start, end time.Time, filter []model.ProviderType, calendarIDs []string) FreeBusyResult {
	providers := o.registry.Connected(filter)

	lists, errs := fanOut(ctx, providers, "freebusy.query", o.metrics,
		func(ctx context.Context, p provider.Provider) ([]provider.CalendarFreeBusy, error) {
			return p.GetFreeBusy(ctx, start, end, calendarIDs)
		})

	var calendars []provider.CalendarFreeBusy
	for _, l := range lists {
		calendars = append(calendars, l...)
	}

	for _, e := range errs {
		o.logger.Warn("provider free/busy failed, continuing with partial results",
			logging.Provider(e.Provider), logging.Err(e.Err))
	}

	return FreeBusyResult{
		Calendars: calendars,
		Errors:    errs,
		Partial:   len(errs) > 0 && len(providers) > len(errs),
	}
}

// ListCalendars merges calendar listings across connected providers.
func (o *Orchestrator) ListCalendars(ctx context.Context, filter []model.ProviderType) ([]model.Calendar, []ProviderError) {
	providers := o.registry.Connected(filter)

	lists, errs := fanOut(ctx, providers, "calendars.list", o.metrics,
		func(ctx context.Context, p provider.Provider) ([]model.Calendar, error) {
			return p.ListCalendars(ctx)
		})

	var calendars []model.Calendar
	for _, l := range lists {
		calendars = append(calendars, l...)
	}
	return calendars, errs
}
