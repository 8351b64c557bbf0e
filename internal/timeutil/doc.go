// Package timeutil provides civil datetime parsing with explicit IANA zone
// attachment and the interval algebra (overlap, merge, gap computation) the
// scheduling engines are built on.
//
// All interval operations use half-open semantics: two ranges overlap when
// s1 < e2 && e1 > s2, so intervals that merely touch do not overlap but are
// coalesced by MergeIntervals.
package timeutil
