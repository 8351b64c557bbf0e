// Package batch provides helpers for tools that operate on multiple event
// IDs in one call, collecting per-item results instead of failing the whole
// request on the first error.
package batch
