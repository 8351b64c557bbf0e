// Package cmd implements the calmux command line interface: the MCP server
// (serve), one-shot cross-provider comparison (sync), and version.
package cmd
