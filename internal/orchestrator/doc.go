// Package orchestrator fans a single logical request out across every
// connected provider matching a filter, merges the results, and collects
// per-provider errors without failing the whole request.
package orchestrator
