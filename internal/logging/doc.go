// Package logging provides slog helpers with the attribute vocabulary used
// across the server: operation, provider, calendar, tool, status and error
// keys, plus PII-safe helpers for attendee emails.
package logging
