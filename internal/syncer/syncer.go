package syncer

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/calmux/calmux/internal/logging"
	"github.com/calmux/calmux/internal/model"
	"github.com/calmux/calmux/internal/provider"
)

// MatchRequest describes one matching or comparison run between two
// provider/calendar pairs.
type MatchRequest struct {
	SourceProvider   model.ProviderType
	SourceCalendarID string
	TargetProvider   model.ProviderType
	TargetCalendarID string
	Start            time.Time
	End              time.Time
	MinConfidence    model.Confidence
}

// CopyRequest describes copying one event into a different provider.
type CopyRequest struct {
	SourceProvider   model.ProviderType
	SourceCalendarID string
	SourceEventID    string
	TargetProvider   model.ProviderType
	TargetCalendarID string

	// IncludeAttendees carries attendees onto the copy when set; the body
	// is included by default and suppressed via omitBody.
	IncludeAttendees bool
	IncludeBody      bool
}

// Synchronizer compares and copies events across providers. Like the
// conflict detector it fails whole operations on provider errors: a sync
// derived from incomplete data would be actively misleading.
type Synchronizer struct {
	registry *provider.Registry
	logger   *slog.Logger
}

// New creates a synchronizer over the registry.
func New(registry *provider.Registry, logger *slog.Logger) *Synchronizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Synchronizer{registry: registry, logger: logger}
}

// fetchSides loads both event lists; any provider failure aborts.
func (s *Synchronizer) fetchSides(ctx context.Context, req MatchRequest) (source, target []model.CalendarEvent, err error) {
	sp, err := s.registry.Get(req.SourceProvider)
	if err != nil {
		return nil, nil, err
	}
	tp, err := s.registry.Get(req.TargetProvider)
	if err != nil {
		return nil, nil, err
	}

	opts := provider.ListOptions{Start: req.Start, End: req.End}
	if req.SourceCalendarID != "" {
		opts.CalendarIDs = []string{req.SourceCalendarID}
	}
	source, err = sp.ListEvents(ctx, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("listing source events from %s: %w", req.SourceProvider, err)
	}

	opts.CalendarIDs = nil
	if req.TargetCalendarID != "" {
		opts.CalendarIDs = []string{req.TargetCalendarID}
	}
	target, err = tp.ListEvents(ctx, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("listing target events from %s: %w", req.TargetProvider, err)
	}
	return source, target, nil
}

// FindMatchingEvents scores the cross product of source and target events,
// filters to the requested confidence floor, and returns matches sorted
// descending by score. O(n*m) is acceptable: calendar windows are bounded
// and event counts per window are small.
func (s *Synchronizer) FindMatchingEvents(ctx context.Context, req MatchRequest) ([]model.EventMatch, error) {
	source, target, err := s.fetchSides(ctx, req)
	if err != nil {
		return nil, err
	}

	minConfidence := req.MinConfidence
	if minConfidence == "" {
		minConfidence = model.ConfidenceMedium
	}
	floor := minConfidence.Floor()

	var matches []model.EventMatch
	for i := range source {
		for j := range target {
			m := CalculateMatch(&source[i], &target[j])
			if m.Score >= floor {
				matches = append(matches, m)
			}
		}
	}
	sort.SliceStable(matches, func(i, j int) bool { return matches[i].Score > matches[j].Score })

	s.logger.Debug("event matching complete",
		logging.Operation("sync.match"),
		slog.Int("source", len(source)),
		slog.Int("target", len(target)),
		slog.Int("matches", len(matches)))

	return matches, nil
}

// CompareCalendars diffs two calendars with greedy first-come-first-served
// matching: each source event, in original order, claims the best-scoring
// unmatched target event with score >= 0.5. A later source event cannot
// steal a target already claimed, so three or more near-duplicates
// competing for two slots can assign suboptimally. That tradeoff is
// deliberate; the pass stays deterministic for a fixed input order.
func (s *Synchronizer) CompareCalendars(ctx context.Context, req MatchRequest) (*model.CalendarComparison, error) {
	source, target, err := s.fetchSides(ctx, req)
	if err != nil {
		return nil, err
	}

	claimed := make(map[int]bool, len(target))
	var matches []model.EventMatch
	var sourceOnly []*model.CalendarEvent

	for i := range source {
		bestIdx := -1
		var best model.EventMatch
		for j := range target {
			if claimed[j] {
				continue
			}
			m := CalculateMatch(&source[i], &target[j])
			if m.Score >= model.ConfidenceMedium.Floor() && (bestIdx == -1 || m.Score > best.Score) {
				bestIdx = j
				best = m
			}
		}
		if bestIdx >= 0 {
			claimed[bestIdx] = true
			matches = append(matches, best)
		} else {
			sourceOnly = append(sourceOnly, &source[i])
		}
	}

	var targetOnly []*model.CalendarEvent
	for j := range target {
		if !claimed[j] {
			targetOnly = append(targetOnly, &target[j])
		}
	}

	return &model.CalendarComparison{
		Matches:    matches,
		SourceOnly: sourceOnly,
		TargetOnly: targetOnly,
		Summary: model.ComparisonSummary{
			SourceTotal: len(source),
			TargetTotal: len(target),
			Matched:     len(matches),
			SourceOnly:  len(sourceOnly),
			TargetOnly:  len(targetOnly),
		},
	}, nil
}

// CopyEvent reads one event in full from its source provider and creates a
// copy in the target provider/calendar. Invite sending is always
// suppressed: copies never notify attendees. Failures come back as data
// embedding the source event ID, never as an error, so batch callers can
// report which copy failed.
func (s *Synchronizer) CopyEvent(ctx context.Context, req CopyRequest) *model.CopyResult {
	fail := func(err error) *model.CopyResult {
		s.logger.Warn("event copy failed",
			logging.Operation("sync.copy"),
			logging.Provider(req.TargetProvider),
			logging.Err(err))
		return &model.CopyResult{
			Success:       false,
			SourceEventID: req.SourceEventID,
			Error:         err.Error(),
		}
	}

	sp, err := s.registry.Get(req.SourceProvider)
	if err != nil {
		return fail(err)
	}
	tp, err := s.registry.Get(req.TargetProvider)
	if err != nil {
		return fail(err)
	}

	event, err := sp.GetEvent(ctx, req.SourceEventID, req.SourceCalendarID)
	if err != nil {
		return fail(fmt.Errorf("reading source event: %w", err))
	}

	params := provider.CreateEventParams{
		CalendarID:  req.TargetCalendarID,
		Subject:     event.Subject,
		Location:    event.Location,
		Start:       event.Start,
		End:         event.End,
		TimeZone:    event.TimeZone,
		IsAllDay:    event.IsAllDay,
		ShowAs:      event.ShowAs,
		Sensitivity: event.Sensitivity,
		SendInvites: false,
	}
	if req.IncludeBody {
		params.Body = event.Body
	}
	if req.IncludeAttendees {
		params.Attendees = event.Attendees
	}

	created, err := tp.CreateEvent(ctx, params)
	if err != nil {
		return fail(fmt.Errorf("creating copy in %s: %w", req.TargetProvider, err))
	}

	s.logger.Info("event copied",
		logging.Operation("sync.copy"),
		logging.Provider(req.TargetProvider),
		logging.Calendar(req.TargetCalendarID))

	return &model.CopyResult{
		Success:       true,
		SourceEventID: req.SourceEventID,
		Created:       created,
	}
}
