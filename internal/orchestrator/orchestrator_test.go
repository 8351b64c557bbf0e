package orchestrator

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/calmux/calmux/internal/instrumentation"
	"github.com/calmux/calmux/internal/model"
	"github.com/calmux/calmux/internal/provider"
	"github.com/calmux/calmux/internal/provider/providertest"
)

var base = time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)

func newOrchestrator(t *testing.T, fakes ...*providertest.Fake) *Orchestrator {
	t.Helper()
	reg := provider.NewRegistry()
	for _, f := range fakes {
		require.NoError(t, reg.Register(f))
	}
	return New(reg, nil, nil)
}

func busyEvent(id string, p model.ProviderType, start time.Time) model.CalendarEvent {
	return model.CalendarEvent{
		ID:       id,
		Provider: p,
		Subject:  id,
		Start:    start,
		End:      start.Add(time.Hour),
		ShowAs:   model.ShowAsBusy,
	}
}

func TestListEventsMergesAndSorts(t *testing.T) {
	g := providertest.New(model.ProviderGoogle)
	g.Events = []model.CalendarEvent{
		busyEvent("g-late", model.ProviderGoogle, base.Add(4*time.Hour)),
		busyEvent("g-early", model.ProviderGoogle, base),
	}
	e := providertest.New(model.ProviderEWS)
	e.Events = []model.CalendarEvent{
		busyEvent("x-mid", model.ProviderEWS, base.Add(2*time.Hour)),
	}

	o := newOrchestrator(t, g, e)
	res := o.ListEvents(context.Background(), provider.ListOptions{}, nil)

	require.Len(t, res.Events, 3)
	assert.Equal(t, "g-early", res.Events[0].ID)
	assert.Equal(t, "x-mid", res.Events[1].ID)
	assert.Equal(t, "g-late", res.Events[2].ID)
	assert.False(t, res.Partial)
	assert.Empty(t, res.Errors)
}

func TestListEventsProviderFilter(t *testing.T) {
	g := providertest.New(model.ProviderGoogle)
	g.Events = []model.CalendarEvent{busyEvent("g1", model.ProviderGoogle, base)}
	e := providertest.New(model.ProviderEWS)
	e.Events = []model.CalendarEvent{busyEvent("x1", model.ProviderEWS, base)}

	o := newOrchestrator(t, g, e)
	res := o.ListEvents(context.Background(), provider.ListOptions{}, []model.ProviderType{model.ProviderEWS})

	require.Len(t, res.Events, 1)
	assert.Equal(t, "x1", res.Events[0].ID)
}

func TestListEventsSkipsDisconnectedProviders(t *testing.T) {
	g := providertest.New(model.ProviderGoogle)
	g.Events = []model.CalendarEvent{busyEvent("g1", model.ProviderGoogle, base)}
	e := providertest.New(model.ProviderEWS)
	e.Connected = false
	e.Events = []model.CalendarEvent{busyEvent("x1", model.ProviderEWS, base)}

	o := newOrchestrator(t, g, e)
	res := o.ListEvents(context.Background(), provider.ListOptions{}, nil)

	require.Len(t, res.Events, 1)
	assert.Equal(t, "g1", res.Events[0].ID)
	assert.False(t, res.Partial)
}

func TestListEventsErrorIsolation(t *testing.T) {
	g := providertest.New(model.ProviderGoogle)
	g.Events = []model.CalendarEvent{busyEvent("g1", model.ProviderGoogle, base)}
	e := providertest.New(model.ProviderEWS)
	e.Err = model.NewProviderError(model.ErrKindRateLimited, model.ProviderEWS, "ListEvents", "throttled", nil)

	o := newOrchestrator(t, g, e)
	res := o.ListEvents(context.Background(), provider.ListOptions{}, nil)

	require.Len(t, res.Events, 1)
	assert.True(t, res.Partial)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, model.ProviderEWS, res.Errors[0].Provider)
	assert.Equal(t, model.ErrKindRateLimited, res.Errors[0].Kind)
	assert.Contains(t, res.Errors[0].Message, "throttled")
}

func TestListEventsAllFailedIsNotPartial(t *testing.T) {
	g := providertest.New(model.ProviderGoogle)
	g.Err = model.NewProviderError(model.ErrKindAuthFailure, model.ProviderGoogle, "ListEvents", "expired", nil)

	o := newOrchestrator(t, g)
	res := o.ListEvents(context.Background(), provider.ListOptions{}, nil)

	assert.Empty(t, res.Events)
	assert.False(t, res.Partial)
	require.Len(t, res.Errors, 1)
}

func TestListEventsNoProviders(t *testing.T) {
	o := newOrchestrator(t)
	res := o.ListEvents(context.Background(), provider.ListOptions{}, nil)
	assert.Empty(t, res.Events)
	assert.Empty(t, res.Errors)
	assert.False(t, res.Partial)
}

func TestGetFreeBusyMergesCalendars(t *testing.T) {
	g := providertest.New(model.ProviderGoogle)
	g.Busy = []provider.CalendarFreeBusy{{
		CalendarID: "primary",
		Busy:       []model.BusySlot{{Start: base, End: base.Add(time.Hour), Status: model.ShowAsBusy}},
	}}
	e := providertest.New(model.ProviderEWS)
	e.Busy = []provider.CalendarFreeBusy{{
		CalendarID: "Calendar",
		Busy:       []model.BusySlot{{Start: base.Add(2 * time.Hour), End: base.Add(3 * time.Hour), Status: model.ShowAsOOF}},
	}}

	o := newOrchestrator(t, g, e)
	res := o.GetFreeBusy(context.Background(), base, base.Add(8*time.Hour), nil, nil)

	require.Len(t, res.Calendars, 2)
	assert.False(t, res.Partial)
}

func TestGetFreeBusyPartial(t *testing.T) {
	g := providertest.New(model.ProviderGoogle)
	e := providertest.New(model.ProviderEWS)
	e.Err = model.NewProviderError(model.ErrKindUnavailable, model.ProviderEWS, "GetFreeBusy", "503", nil)

	o := newOrchestrator(t, g, e)
	res := o.GetFreeBusy(context.Background(), base, base.Add(time.Hour), nil, nil)

	assert.True(t, res.Partial)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, model.ProviderEWS, res.Errors[0].Provider)
}

func attrString(set attribute.Set, key string) string {
	v, _ := set.Value(attribute.Key(key))
	return v.AsString()
}

func operationCount(rm metricdata.ResourceMetrics, providerTag, op, status string) int64 {
	for _, sm := range rm.ScopeMetrics {
		for _, met := range sm.Metrics {
			if met.Name != "calendar_provider_operations_total" {
				continue
			}
			sum, ok := met.Data.(metricdata.Sum[int64])
			if !ok {
				continue
			}
			for _, dp := range sum.DataPoints {
				if attrString(dp.Attributes, "provider") == providerTag &&
					attrString(dp.Attributes, "operation") == op &&
					attrString(dp.Attributes, "status") == status {
					return dp.Value
				}
			}
		}
	}
	return 0
}

func TestFanOutRecordsProviderOperations(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	metrics, err := instrumentation.NewMetrics(mp.Meter("test"))
	require.NoError(t, err)

	g := providertest.New(model.ProviderGoogle)
	g.Events = []model.CalendarEvent{busyEvent("g1", model.ProviderGoogle, base)}
	e := providertest.New(model.ProviderEWS)
	e.Err = model.NewProviderError(model.ErrKindUnavailable, model.ProviderEWS, "ListEvents", "down", nil)

	reg := provider.NewRegistry()
	require.NoError(t, reg.Register(g))
	require.NoError(t, reg.Register(e))
	o := New(reg, nil, metrics)

	o.ListEvents(context.Background(), provider.ListOptions{}, nil)
	o.GetFreeBusy(context.Background(), base, base.Add(time.Hour), []model.ProviderType{model.ProviderGoogle}, nil)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	assert.Equal(t, int64(1), operationCount(rm, "google", "events.list", "success"))
	assert.Equal(t, int64(1), operationCount(rm, "ews", "events.list", "error"))
	assert.Equal(t, int64(1), operationCount(rm, "google", "freebusy.query", "success"))
	assert.Equal(t, int64(0), operationCount(rm, "ews", "freebusy.query", "error"))
}

func TestListCalendars(t *testing.T) {
	g := providertest.New(model.ProviderGoogle)
	g.Calendars = []model.Calendar{{ID: "primary", Provider: model.ProviderGoogle, Name: "Work", IsPrimary: true}}
	e := providertest.New(model.ProviderEWS)
	e.Calendars = []model.Calendar{{ID: "AAA=", Provider: model.ProviderEWS, Name: "Calendar", IsPrimary: true}}

	o := newOrchestrator(t, g, e)
	calendars, errs := o.ListCalendars(context.Background(), nil)

	assert.Empty(t, errs)
	require.Len(t, calendars, 2)
}
