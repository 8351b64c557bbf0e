// Package model defines the unified calendar data model shared by all
// provider adapters and the scheduling engines.
//
// Every provider adapter maps its vendor payloads into these types, so the
// orchestrator, availability engine, conflict detector and synchronizer
// never see provider-specific shapes. The package also carries the error
// taxonomy used to classify provider failures.
package model
