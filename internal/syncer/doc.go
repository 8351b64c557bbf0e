// Package syncer matches events across two provider/calendar pairs using a
// weighted multi-factor similarity score, derives calendar diffs, and can
// materialize a copy of one event into a different provider.
package syncer
