package syncer

import (
	"fmt"
	"strings"
	"time"

	"github.com/xrash/smetrics"

	"github.com/calmux/calmux/internal/model"
)

// Factor weights. The final score divides by the sum of the weights that
// actually entered the comparison, so it always lands in [0,1].
const (
	weightSubject  = 30.0
	weightStart    = 25.0
	weightEnd      = 20.0
	weightLocation = 10.0
	weightAllDay   = 10.0
	weightICalUID  = 5.0
)

// stringSimilarity is normalized Levenshtein similarity on lower-cased,
// trimmed strings: 1 - editDistance/maxLength.
func stringSimilarity(a, b string) float64 {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a == b {
		return 1.0
	}
	maxLen := len(a)
	if len(b) > maxLen {
		maxLen = len(b)
	}
	if maxLen == 0 {
		return 1.0
	}
	dist := smetrics.WagnerFischer(a, b, 1, 1, 1)
	return 1.0 - float64(dist)/float64(maxLen)
}

// timeProximity scores how close two instants are: 1.0 within 60 seconds,
// 0.5 within 5 minutes, 0 otherwise.
func timeProximity(a, b time.Time) float64 {
	diff := a.Sub(b)
	if diff < 0 {
		diff = -diff
	}
	switch {
	case diff <= time.Minute:
		return 1.0
	case diff <= 5*time.Minute:
		return 0.5
	default:
		return 0
	}
}

// CalculateMatch scores the similarity of two events as a weighted sum over
// independent factors. Each factor is retained with its raw detail string
// so the score stays explainable rather than a black box.
func CalculateMatch(source, target *model.CalendarEvent) model.EventMatch {
	var total, totalWeight float64
	var factors []model.MatchFactor

	add := func(name string, weight, score float64, details string) {
		total += weight * score
		totalWeight += weight
		factors = append(factors, model.MatchFactor{
			Factor:  name,
			Weight:  weight,
			Matched: score > 0,
			Details: details,
		})
	}

	subjectScore := stringSimilarity(source.Subject, target.Subject)
	add("subject", weightSubject, subjectScore,
		fmt.Sprintf("similarity %.2f between %q and %q", subjectScore, source.Subject, target.Subject))

	startScore := timeProximity(source.Start, target.Start)
	add("startTime", weightStart, startScore,
		fmt.Sprintf("start times %s apart", absDuration(source.Start, target.Start)))

	endScore := timeProximity(source.End, target.End)
	add("endTime", weightEnd, endScore,
		fmt.Sprintf("end times %s apart", absDuration(source.End, target.End)))

	// Location is skipped entirely when neither event carries one; its
	// weight stays out of the denominator.
	if source.Location != "" || target.Location != "" {
		locScore := stringSimilarity(source.Location, target.Location)
		add("location", weightLocation, locScore,
			fmt.Sprintf("similarity %.2f between %q and %q", locScore, source.Location, target.Location))
	}

	allDayScore := 0.0
	if source.IsAllDay == target.IsAllDay {
		allDayScore = 1.0
	}
	add("allDay", weightAllDay, allDayScore,
		fmt.Sprintf("all-day flags %v/%v", source.IsAllDay, target.IsAllDay))

	// iCalUID enters only when both sides carry one; equality is strong
	// evidence of identity.
	if source.ICalUID != "" && target.ICalUID != "" {
		uidScore := 0.0
		if source.ICalUID == target.ICalUID {
			uidScore = 1.0
		}
		add("iCalUid", weightICalUID, uidScore,
			fmt.Sprintf("uid match: %v", uidScore == 1.0))
	}

	score := 0.0
	if totalWeight > 0 {
		score = total / totalWeight
	}

	return model.EventMatch{
		SourceEvent: source,
		TargetEvent: target,
		Score:       score,
		Confidence:  model.ConfidenceFromScore(score),
		Factors:     factors,
	}
}

func absDuration(a, b time.Time) time.Duration {
	d := a.Sub(b)
	if d < 0 {
		d = -d
	}
	return d
}
