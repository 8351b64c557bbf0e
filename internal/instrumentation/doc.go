// Package instrumentation wires OpenTelemetry metrics with a Prometheus
// exporter. It records MCP tool invocations and back-end provider
// operations; a disabled provider degrades to no-op recording so callers
// never branch on whether metrics are on.
package instrumentation
