package timeutil

import (
	"sort"
	"time"
)

// Interval is a half-open [Start, End) time range.
type Interval struct {
	Start time.Time
	End   time.Time
}

// RangesOverlap reports whether [s1,e1) and [s2,e2) intersect. Touching
// ranges do not overlap.
func RangesOverlap(s1, e1, s2, e2 time.Time) bool {
	return s1.Before(e2) && e1.After(s2)
}

// MergeIntervals sorts intervals by start and coalesces any pair that
// overlaps or abuts into one interval ending at the later of the two ends.
// The input is not modified. Merging is idempotent.
func MergeIntervals(intervals []Interval) []Interval {
	if len(intervals) == 0 {
		return nil
	}

	sorted := make([]Interval, len(intervals))
	copy(sorted, intervals)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Start.Before(sorted[j].Start)
	})

	merged := []Interval{sorted[0]}
	for _, iv := range sorted[1:] {
		last := &merged[len(merged)-1]
		// Overlapping or touching: extend rather than append.
		if !iv.Start.After(last.End) {
			if iv.End.After(last.End) {
				last.End = iv.End
			}
			continue
		}
		merged = append(merged, iv)
	}
	return merged
}

// ClipToRange drops intervals entirely outside [rangeStart, rangeEnd) and
// trims partially overlapping ones to the range boundaries.
func ClipToRange(intervals []Interval, rangeStart, rangeEnd time.Time) []Interval {
	var clipped []Interval
	for _, iv := range intervals {
		if !RangesOverlap(iv.Start, iv.End, rangeStart, rangeEnd) {
			continue
		}
		start, end := iv.Start, iv.End
		if start.Before(rangeStart) {
			start = rangeStart
		}
		if end.After(rangeEnd) {
			end = rangeEnd
		}
		clipped = append(clipped, Interval{Start: start, End: end})
	}
	return clipped
}

// FindGaps walks the merged, range-clipped intervals left to right and
// returns every uncovered stretch of [rangeStart, rangeEnd), including
// before the first interval and after the last. An empty interval list
// yields one gap spanning the whole range. A reversed range yields nothing.
func FindGaps(intervals []Interval, rangeStart, rangeEnd time.Time) []Interval {
	if !rangeStart.Before(rangeEnd) {
		return nil
	}

	covered := MergeIntervals(ClipToRange(intervals, rangeStart, rangeEnd))

	var gaps []Interval
	cursor := rangeStart
	for _, iv := range covered {
		if cursor.Before(iv.Start) {
			gaps = append(gaps, Interval{Start: cursor, End: iv.Start})
		}
		if iv.End.After(cursor) {
			cursor = iv.End
		}
	}
	if cursor.Before(rangeEnd) {
		gaps = append(gaps, Interval{Start: cursor, End: rangeEnd})
	}
	return gaps
}
