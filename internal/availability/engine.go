package availability

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/calmux/calmux/internal/logging"
	"github.com/calmux/calmux/internal/model"
	"github.com/calmux/calmux/internal/orchestrator"
	"github.com/calmux/calmux/internal/timeutil"
)

// maxSuggestions caps the number of suggested slots per request.
const maxSuggestions = 5

// Request describes one aggregated free/busy query.
type Request struct {
	Start time.Time
	End   time.Time

	// Providers filters which connected providers are queried; empty means
	// all. CalendarIDs is passed through to each provider.
	Providers   []model.ProviderType
	CalendarIDs []string

	// SlotDurationMinutes, when positive, derives suggested meeting slots.
	SlotDurationMinutes int

	// WorkingHoursOnly clips free slots to WorkingHours (or the default
	// window when nil).
	WorkingHoursOnly bool
	WorkingHours     *WorkingHours
}

// Result is the aggregated availability for one request. Errors holds
// per-provider failures; they never fail the whole call.
type Result struct {
	Busy        []model.BusySlot             `json:"busy"`
	Free        []model.FreeSlot             `json:"free"`
	Suggestions []model.FreeSlot             `json:"suggestions,omitempty"`
	Errors      []orchestrator.ProviderError `json:"errors,omitempty"`
	Partial     bool                         `json:"partial"`
}

// Engine computes aggregated availability from the orchestrator's
// per-provider busy data. It holds no state across calls.
type Engine struct {
	orch   *orchestrator.Orchestrator
	logger *slog.Logger
}

// NewEngine creates an availability engine over the orchestrator.
func NewEngine(orch *orchestrator.Orchestrator, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{orch: orch, logger: logger}
}

// GetAggregatedFreeBusy queries every matching provider concurrently,
// merges their busy slots, computes free gaps across the requested range,
// and optionally clips to working hours and derives slot suggestions.
// Provider errors are reported alongside a possibly-partial result.
func (e *Engine) GetAggregatedFreeBusy(ctx context.Context, req Request) (*Result, error) {
	fb := e.orch.GetFreeBusy(ctx, req.Start, req.End, req.Providers, req.CalendarIDs)

	var all []model.BusySlot
	for _, cal := range fb.Calendars {
		all = append(all, cal.Busy...)
	}

	busy := mergeBusySlots(all)
	free := computeFreeSlots(busy, req.Start, req.End)

	if req.WorkingHoursOnly {
		wh := DefaultWorkingHours()
		if req.WorkingHours != nil {
			wh = *req.WorkingHours
		}
		clipped, err := clipToWorkingHours(free, wh)
		if err != nil {
			return nil, err
		}
		free = clipped
	}

	result := &Result{
		Busy:    busy,
		Free:    free,
		Errors:  fb.Errors,
		Partial: fb.Partial,
	}
	if req.SlotDurationMinutes > 0 {
		result.Suggestions = FindSuggestedSlots(free, req.SlotDurationMinutes)
	}

	e.logger.Debug("aggregated free/busy computed",
		logging.Operation("availability.freebusy"),
		slog.Int("busy", len(result.Busy)),
		slog.Int("free", len(result.Free)),
		slog.Int("provider_errors", len(result.Errors)))

	return result, nil
}

// mergeBusySlots coalesces overlapping or touching busy slots. When either
// merging slot is busy the merged slot is busy; otherwise the incoming
// slot's status is kept.
func mergeBusySlots(slots []model.BusySlot) []model.BusySlot {
	if len(slots) == 0 {
		return nil
	}

	sorted := make([]model.BusySlot, len(slots))
	copy(sorted, slots)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start.Before(sorted[j].Start) })

	merged := []model.BusySlot{sorted[0]}
	for _, s := range sorted[1:] {
		last := &merged[len(merged)-1]
		if !s.Start.After(last.End) {
			if s.End.After(last.End) {
				last.End = s.End
			}
			if last.Status != model.ShowAsBusy {
				last.Status = s.Status
			}
			continue
		}
		merged = append(merged, s)
	}
	return merged
}

// computeFreeSlots derives the uncovered gaps of [rangeStart, rangeEnd).
func computeFreeSlots(busy []model.BusySlot, rangeStart, rangeEnd time.Time) []model.FreeSlot {
	intervals := make([]timeutil.Interval, len(busy))
	for i, b := range busy {
		intervals[i] = timeutil.Interval{Start: b.Start, End: b.End}
	}

	var free []model.FreeSlot
	for _, gap := range timeutil.FindGaps(intervals, rangeStart, rangeEnd) {
		free = append(free, model.FreeSlot{
			Start:           gap.Start,
			End:             gap.End,
			DurationMinutes: timeutil.DurationMinutes(gap.Start, gap.End),
		})
	}
	return free
}

// clipToWorkingHours re-derives free slots day by day: each calendar day a
// gap touches contributes the intersection of the gap with that day's
// working window. Non-working days contribute nothing.
func clipToWorkingHours(free []model.FreeSlot, wh WorkingHours) ([]model.FreeSlot, error) {
	var clipped []model.FreeSlot
	for _, slot := range free {
		loc := slot.Start.Location()
		day := time.Date(slot.Start.Year(), slot.Start.Month(), slot.Start.Day(), 0, 0, 0, 0, loc)
		for day.Before(slot.End) {
			winStart, winEnd, ok, err := wh.window(day)
			if err != nil {
				return nil, err
			}
			if ok && timeutil.RangesOverlap(slot.Start, slot.End, winStart, winEnd) {
				start, end := slot.Start, slot.End
				if start.Before(winStart) {
					start = winStart
				}
				if end.After(winEnd) {
					end = winEnd
				}
				clipped = append(clipped, model.FreeSlot{
					Start:           start,
					End:             end,
					DurationMinutes: timeutil.DurationMinutes(start, end),
				})
			}
			day = day.AddDate(0, 0, 1)
		}
	}
	return clipped, nil
}

// FindSuggestedSlots scans free slots in order and emits up to five
// suggestions, each the start of a free slot truncated to exactly the
// requested duration. Slots shorter than the duration are skipped.
func FindSuggestedSlots(free []model.FreeSlot, durationMinutes int) []model.FreeSlot {
	duration := time.Duration(durationMinutes) * time.Minute

	var suggestions []model.FreeSlot
	for _, slot := range free {
		if len(suggestions) == maxSuggestions {
			break
		}
		if slot.End.Sub(slot.Start) < duration {
			continue
		}
		suggestions = append(suggestions, model.FreeSlot{
			Start:           slot.Start,
			End:             slot.Start.Add(duration),
			DurationMinutes: durationMinutes,
		})
	}
	return suggestions
}
