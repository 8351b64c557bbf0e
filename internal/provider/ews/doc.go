// Package ews adapts on-premises Exchange Web Services (SOAP/XML) to the
// unified provider interface.
//
// Requests are hand-built SOAP envelopes over an NTLM-negotiating HTTP
// transport. EWS datetimes on this path arrive without zone markers, so
// they are interpreted in the configured authoritative zone, never as UTC.
package ews
