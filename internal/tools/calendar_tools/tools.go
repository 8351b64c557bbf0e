package calendar_tools

import (
	"fmt"
	"strings"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/calmux/calmux/internal/model"
	"github.com/calmux/calmux/internal/provider"
	"github.com/calmux/calmux/internal/server"
)

// RegisterCalendarTools registers the whole calendar tool surface with the
// MCP server.
func RegisterCalendarTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	if err := RegisterEventTools(s, sc); err != nil {
		return fmt.Errorf("failed to register event tools: %w", err)
	}
	if err := RegisterSchedulingTools(s, sc); err != nil {
		return fmt.Errorf("failed to register scheduling tools: %w", err)
	}
	if err := RegisterSyncTools(s, sc); err != nil {
		return fmt.Errorf("failed to register sync tools: %w", err)
	}
	if err := RegisterExportTools(s, sc); err != nil {
		return fmt.Errorf("failed to register export tools: %w", err)
	}
	return nil
}

// getProvider resolves a provider tag to a connected adapter.
func getProvider(sc *server.ServerContext, typ model.ProviderType) (provider.Provider, error) {
	p, err := sc.Registry().Get(typ)
	if err != nil {
		return nil, err
	}
	if !p.IsConnected() {
		return nil, fmt.Errorf("provider %s is configured but not connected", typ)
	}
	return p, nil
}

// providerFilterFromArgs parses an optional comma-separated providers
// argument into a filter; nil means all connected providers.
func providerFilterFromArgs(args map[string]interface{}) ([]model.ProviderType, error) {
	s, ok := args["providers"].(string)
	if !ok || s == "" {
		return nil, nil
	}
	var filter []model.ProviderType
	for _, name := range strings.Split(s, ",") {
		typ, err := model.ParseProviderType(strings.TrimSpace(name))
		if err != nil {
			return nil, err
		}
		filter = append(filter, typ)
	}
	return filter, nil
}
