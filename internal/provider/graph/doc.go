// Package graph adapts the Microsoft Graph API to the unified provider
// interface.
//
// Requests are plain JSON over HTTP with an OAuth2 client-credentials
// token source; the calendarView endpoint expands recurring series into
// instances and getSchedule supplies free/busy data.
package graph
