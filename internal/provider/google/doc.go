// Package google adapts the Google Calendar REST API to the unified
// provider interface.
//
// Events are listed with singleEvents expansion, free/busy comes from the
// freebusy endpoint, and invitation replies are written by patching the
// self attendee's response status. The calendar list is cached for a short
// interval per client.
package google
