// Package availability aggregates free/busy data across providers: it
// merges overlapping busy intervals, computes free gaps within a bounded
// range, optionally clips them to configured working hours, and derives
// suggested meeting slots of a requested duration.
package availability
