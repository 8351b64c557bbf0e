package model

// Confidence buckets a continuous match score for user-facing filtering.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// ConfidenceFromScore buckets a score in [0,1]: high at or above 0.8,
// medium at or above 0.5, low otherwise.
func ConfidenceFromScore(score float64) Confidence {
	switch {
	case score >= 0.8:
		return ConfidenceHigh
	case score >= 0.5:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// Floor returns the minimum score a match must reach to pass a confidence
// filter of this level.
func (c Confidence) Floor() float64 {
	switch c {
	case ConfidenceHigh:
		return 0.8
	case ConfidenceMedium:
		return 0.5
	default:
		return 0.3
	}
}

// MatchFactor explains one component of a match score.
type MatchFactor struct {
	Factor  string  `json:"factor"`
	Weight  float64 `json:"weight"`
	Matched bool    `json:"matched"`
	Details string  `json:"details"`
}

// EventMatch pairs a source and a target event with a similarity score.
// It references events by pointer, never copies; matches are created fresh
// per comparison call and discarded after the response is serialized.
type EventMatch struct {
	SourceEvent *CalendarEvent `json:"sourceEvent"`
	TargetEvent *CalendarEvent `json:"targetEvent"`
	Score       float64        `json:"score"`
	Confidence  Confidence     `json:"confidence"`
	Factors     []MatchFactor  `json:"factors"`
}

// ComparisonSummary carries the counts of one comparison pass.
type ComparisonSummary struct {
	SourceTotal int `json:"sourceTotal"`
	TargetTotal int `json:"targetTotal"`
	Matched     int `json:"matched"`
	SourceOnly  int `json:"sourceOnly"`
	TargetOnly  int `json:"targetOnly"`
}

// CalendarComparison aggregates one synchronization pass over two
// point-in-time event lists. It has no lifecycle of its own.
type CalendarComparison struct {
	Matches    []EventMatch      `json:"matches"`
	SourceOnly []*CalendarEvent  `json:"sourceOnly"`
	TargetOnly []*CalendarEvent  `json:"targetOnly"`
	Summary    ComparisonSummary `json:"summary"`
}

// CopyResult reports the outcome of copying one event across providers.
// Failures are data, not errors, so batch callers can report per item.
type CopyResult struct {
	Success       bool           `json:"success"`
	SourceEventID string         `json:"sourceEventId"`
	Created       *CalendarEvent `json:"created,omitempty"`
	Error         string         `json:"error,omitempty"`
}
