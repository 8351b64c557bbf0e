package conflict

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/calmux/calmux/internal/logging"
	"github.com/calmux/calmux/internal/model"
	"github.com/calmux/calmux/internal/orchestrator"
	"github.com/calmux/calmux/internal/provider"
	"github.com/calmux/calmux/internal/timeutil"
)

const (
	// queryBuffer widens the event query on both sides so the alternative
	// slot search has forward context without a second round trip.
	queryBuffer = 60 * time.Minute

	// searchHorizon bounds the forward search for an alternative slot.
	searchHorizon = 7 * 24 * time.Hour
)

// Proposal is a candidate meeting interval to test.
type Proposal struct {
	Start time.Time
	End   time.Time

	// ExcludeEventID/ExcludeProvider skip one event, supporting "does my
	// rescheduled meeting still fit" checks.
	ExcludeEventID  string
	ExcludeProvider model.ProviderType
}

// ConflictingEvent identifies one event overlapping the proposal.
type ConflictingEvent struct {
	EventID    string             `json:"eventId"`
	Provider   model.ProviderType `json:"provider"`
	CalendarID string             `json:"calendarId"`
	Subject    string             `json:"subject"`
	Start      time.Time          `json:"start"`
	End        time.Time          `json:"end"`
	ShowAs     model.ShowAs       `json:"showAs"`
}

// Alternative is a suggested replacement slot with a human-readable reason.
type Alternative struct {
	Start  time.Time `json:"start"`
	End    time.Time `json:"end"`
	Reason string    `json:"reason"`
}

// Result reports the conflicts found for one proposal.
type Result struct {
	HasConflict bool               `json:"hasConflict"`
	Conflicts   []ConflictingEvent `json:"conflicts,omitempty"`
	Suggestion  *Alternative       `json:"suggestion,omitempty"`
}

// Detector checks proposed intervals against existing events. A conflict
// check run on partial data could silently report "no conflict", so unlike
// the availability engine any provider failure fails the whole check.
type Detector struct {
	orch   *orchestrator.Orchestrator
	logger *slog.Logger
}

// NewDetector creates a conflict detector over the orchestrator.
func NewDetector(orch *orchestrator.Orchestrator, logger *slog.Logger) *Detector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Detector{orch: orch, logger: logger}
}

// CheckConflicts queries all events around the proposal, filters to
// non-free events, reports overlaps per half-open semantics, and searches
// forward for the next open slot of equal duration.
func (d *Detector) CheckConflicts(ctx context.Context, p Proposal) (*Result, error) {
	if !p.Start.Before(p.End) {
		return nil, model.NewProviderError(model.ErrKindInvalidInput, "", "conflict.check",
			fmt.Sprintf("proposed start %s is not before end %s", p.Start, p.End), nil)
	}

	listing := d.orch.ListEvents(ctx, provider.ListOptions{
		Start: p.Start.Add(-queryBuffer),
		End:   p.End.Add(queryBuffer),
	}, nil)
	if len(listing.Errors) > 0 {
		first := listing.Errors[0]
		return nil, fmt.Errorf("conflict check aborted, %s provider failed: %w", first.Provider, first.Err)
	}

	busy := relevantEvents(listing.Events, p)

	var conflicts []ConflictingEvent
	for _, e := range busy {
		if timeutil.RangesOverlap(e.Start, e.End, p.Start, p.End) {
			conflicts = append(conflicts, ConflictingEvent{
				EventID:    e.ID,
				Provider:   e.Provider,
				CalendarID: e.CalendarID,
				Subject:    e.Subject,
				Start:      e.Start,
				End:        e.End,
				ShowAs:     e.ShowAs,
			})
		}
	}

	result := &Result{HasConflict: len(conflicts) > 0, Conflicts: conflicts}
	if result.HasConflict {
		result.Suggestion = findAlternative(busy, p)
	}

	d.logger.Debug("conflict check complete",
		logging.Operation("conflict.check"),
		slog.Int("conflicts", len(conflicts)))

	return result, nil
}

// relevantEvents drops the excluded event and everything marked free, and
// returns the rest sorted by start.
func relevantEvents(events []model.CalendarEvent, p Proposal) []model.CalendarEvent {
	var busy []model.CalendarEvent
	for _, e := range events {
		if p.ExcludeEventID != "" && e.ID == p.ExcludeEventID && e.Provider == p.ExcludeProvider {
			continue
		}
		if !e.IsBusy() {
			continue
		}
		busy = append(busy, e)
	}
	sort.Slice(busy, func(i, j int) bool { return busy[i].Start.Before(busy[j].Start) })
	return busy
}

// findAlternative walks forward from the proposal start: any busy interval
// overlapping the candidate window jumps the candidate to that interval's
// end. Returns nil when no open window exists within the search horizon.
func findAlternative(busy []model.CalendarEvent, p Proposal) *Alternative {
	duration := p.End.Sub(p.Start)
	horizon := p.Start.Add(searchHorizon)

	candidate := p.Start
	for candidate.Add(duration).Before(horizon) || candidate.Add(duration).Equal(horizon) {
		end := candidate.Add(duration)
		blocked := false
		for _, e := range busy {
			if timeutil.RangesOverlap(e.Start, e.End, candidate, end) {
				next := e.End
				// Guard against zero-length or malformed events stalling
				// the cursor at the original proposal start.
				if !next.After(candidate) {
					next = p.End
				}
				candidate = next
				blocked = true
				break
			}
		}
		if !blocked {
			return &Alternative{
				Start:  candidate,
				End:    end,
				Reason: alternativeReason(p.Start, candidate),
			}
		}
	}
	return nil
}

func alternativeReason(proposed, found time.Time) string {
	py, pm, pd := proposed.Date()
	fy, fm, fd := found.In(proposed.Location()).Date()
	if py == fy && pm == fm && pd == fd {
		return "next available slot today"
	}
	return fmt.Sprintf("next available slot on %s", found.In(proposed.Location()).Format("Mon, Jan 2"))
}
