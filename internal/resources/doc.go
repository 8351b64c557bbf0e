// Package resources registers the MCP resources exposing provider and
// calendar inventory under the calmux:// scheme.
package resources
