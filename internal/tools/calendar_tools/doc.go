// Package calendar_tools registers the MCP tool surface: event CRUD,
// availability and conflict checks, cross-provider sync, and ICS export.
package calendar_tools
