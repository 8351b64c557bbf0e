package conflict

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calmux/calmux/internal/model"
	"github.com/calmux/calmux/internal/orchestrator"
	"github.com/calmux/calmux/internal/provider"
	"github.com/calmux/calmux/internal/provider/providertest"
)

var day = time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)

func at(h, m int) time.Time {
	return day.Add(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute)
}

func event(id string, p model.ProviderType, start, end time.Time, showAs model.ShowAs) model.CalendarEvent {
	return model.CalendarEvent{
		ID:         id,
		Provider:   p,
		CalendarID: "primary",
		Subject:    "meeting " + id,
		Start:      start,
		End:        end,
		Status:     model.StatusConfirmed,
		ShowAs:     showAs,
	}
}

func newDetector(t *testing.T, fakes ...*providertest.Fake) *Detector {
	t.Helper()
	reg := provider.NewRegistry()
	for _, f := range fakes {
		require.NoError(t, reg.Register(f))
	}
	return NewDetector(orchestrator.New(reg, nil, nil), nil)
}

func TestCheckConflictsOverlap(t *testing.T) {
	g := providertest.New(model.ProviderGoogle)
	g.Events = []model.CalendarEvent{
		event("e1", model.ProviderGoogle, at(10, 0), at(11, 0), model.ShowAsBusy),
	}

	d := newDetector(t, g)
	res, err := d.CheckConflicts(context.Background(), Proposal{Start: at(10, 30), End: at(11, 30)})
	require.NoError(t, err)

	assert.True(t, res.HasConflict)
	require.Len(t, res.Conflicts, 1)
	assert.Equal(t, "e1", res.Conflicts[0].EventID)
	assert.Equal(t, model.ProviderGoogle, res.Conflicts[0].Provider)
}

func TestCheckConflictsTouchingIsFree(t *testing.T) {
	g := providertest.New(model.ProviderGoogle)
	g.Events = []model.CalendarEvent{
		event("e1", model.ProviderGoogle, at(9, 0), at(10, 0), model.ShowAsBusy),
	}

	d := newDetector(t, g)
	res, err := d.CheckConflicts(context.Background(), Proposal{Start: at(10, 0), End: at(11, 0)})
	require.NoError(t, err)
	assert.False(t, res.HasConflict)
	assert.Nil(t, res.Suggestion)
}

func TestCheckConflictsIgnoresFreeEvents(t *testing.T) {
	g := providertest.New(model.ProviderGoogle)
	g.Events = []model.CalendarEvent{
		event("lunch", model.ProviderGoogle, at(12, 0), at(13, 0), model.ShowAsFree),
	}

	d := newDetector(t, g)
	res, err := d.CheckConflicts(context.Background(), Proposal{Start: at(12, 0), End: at(12, 30)})
	require.NoError(t, err)
	assert.False(t, res.HasConflict)
}

func TestCheckConflictsExcludesEvent(t *testing.T) {
	g := providertest.New(model.ProviderGoogle)
	g.Events = []model.CalendarEvent{
		event("mine", model.ProviderGoogle, at(10, 0), at(11, 0), model.ShowAsBusy),
	}

	d := newDetector(t, g)
	res, err := d.CheckConflicts(context.Background(), Proposal{
		Start:           at(10, 0),
		End:             at(11, 0),
		ExcludeEventID:  "mine",
		ExcludeProvider: model.ProviderGoogle,
	})
	require.NoError(t, err)
	assert.False(t, res.HasConflict)
}

func TestCheckConflictsExclusionIsProviderScoped(t *testing.T) {
	// The same opaque ID on a different provider is a different event.
	e := providertest.New(model.ProviderEWS)
	e.Events = []model.CalendarEvent{
		event("mine", model.ProviderEWS, at(10, 0), at(11, 0), model.ShowAsBusy),
	}

	d := newDetector(t, e)
	res, err := d.CheckConflicts(context.Background(), Proposal{
		Start:           at(10, 0),
		End:             at(11, 0),
		ExcludeEventID:  "mine",
		ExcludeProvider: model.ProviderGoogle,
	})
	require.NoError(t, err)
	assert.True(t, res.HasConflict)
}

func TestCheckConflictsSuggestsAlternative(t *testing.T) {
	g := providertest.New(model.ProviderGoogle)
	g.Events = []model.CalendarEvent{
		event("e1", model.ProviderGoogle, at(10, 0), at(11, 0), model.ShowAsBusy),
	}

	d := newDetector(t, g)
	res, err := d.CheckConflicts(context.Background(), Proposal{Start: at(10, 0), End: at(10, 30)})
	require.NoError(t, err)

	require.True(t, res.HasConflict)
	require.NotNil(t, res.Suggestion)
	assert.Equal(t, at(11, 0), res.Suggestion.Start)
	assert.Equal(t, at(11, 30), res.Suggestion.End)
	assert.Equal(t, "next available slot today", res.Suggestion.Reason)
}

func TestCheckConflictsSuggestionSkipsBackToBackEvents(t *testing.T) {
	g := providertest.New(model.ProviderGoogle)
	g.Events = []model.CalendarEvent{
		event("e1", model.ProviderGoogle, at(10, 0), at(11, 0), model.ShowAsBusy),
		event("e2", model.ProviderGoogle, at(11, 0), at(12, 0), model.ShowAsBusy),
	}

	d := newDetector(t, g)
	res, err := d.CheckConflicts(context.Background(), Proposal{Start: at(10, 30), End: at(11, 30)})
	require.NoError(t, err)

	require.NotNil(t, res.Suggestion)
	assert.Equal(t, at(12, 0), res.Suggestion.Start)
}

func TestCheckConflictsProviderFailureFailsCheck(t *testing.T) {
	g := providertest.New(model.ProviderGoogle)
	g.Events = []model.CalendarEvent{
		event("e1", model.ProviderGoogle, at(10, 0), at(11, 0), model.ShowAsBusy),
	}
	e := providertest.New(model.ProviderEWS)
	e.Err = model.NewProviderError(model.ErrKindUnavailable, model.ProviderEWS, "ListEvents", "down", nil)

	d := newDetector(t, g, e)
	_, err := d.CheckConflicts(context.Background(), Proposal{Start: at(10, 0), End: at(11, 0)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ews")
}

func TestCheckConflictsInvalidProposal(t *testing.T) {
	d := newDetector(t, providertest.New(model.ProviderGoogle))

	_, err := d.CheckConflicts(context.Background(), Proposal{Start: at(11, 0), End: at(10, 0)})
	require.Error(t, err)
	assert.Equal(t, model.ErrKindInvalidInput, model.KindOf(err))

	_, err = d.CheckConflicts(context.Background(), Proposal{Start: at(10, 0), End: at(10, 0)})
	assert.Error(t, err)
}

func TestFindAlternativeHorizonExhausted(t *testing.T) {
	// One busy block covering the whole search horizon leaves no slot.
	busy := []model.CalendarEvent{
		event("wall", model.ProviderGoogle, at(9, 0), at(9, 0).Add(8*24*time.Hour), model.ShowAsBusy),
	}
	alt := findAlternative(busy, Proposal{Start: at(10, 0), End: at(11, 0)})
	assert.Nil(t, alt)
}

func TestAlternativeReasonNamesTheDay(t *testing.T) {
	assert.Equal(t, "next available slot today", alternativeReason(at(10, 0), at(15, 0)))
	assert.Equal(t, "next available slot on Tue, Jun 3", alternativeReason(at(10, 0), at(10, 0).Add(24*time.Hour)))
}
