// Package conflict tests a proposed meeting interval against existing
// events across all connected providers and, when conflicts exist, searches
// forward for the next open slot of equal duration.
package conflict
