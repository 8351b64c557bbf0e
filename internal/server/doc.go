// Package server holds the MCP server's shared dependency context plus the
// sidecar HTTP endpoints (health probes and Prometheus metrics) used when
// running over the HTTP transport.
package server
