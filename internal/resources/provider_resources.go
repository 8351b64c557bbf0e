package resources

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/calmux/calmux/internal/model"
	"github.com/calmux/calmux/internal/server"
)

// RegisterProviderResources registers the provider inventory resources.
func RegisterProviderResources(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	providersResource := mcp.NewResource(
		"calmux://providers",
		"Configured Calendar Providers",
		mcp.WithResourceDescription("Every configured provider back-end and its connection state"),
		mcp.WithMIMEType("application/json"),
	)
	s.AddResource(providersResource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return handleProviders(ctx, request, sc)
	})

	calendarsTemplate := mcp.NewResourceTemplate(
		"calmux://providers/{provider}/calendars",
		"Provider Calendars",
		mcp.WithTemplateDescription("Calendar list for one provider (google, graph, or ews)"),
		mcp.WithTemplateMIMEType("application/json"),
	)
	s.AddResourceTemplate(calendarsTemplate, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return handleProviderCalendars(ctx, request, sc)
	})

	return nil
}

func handleProviders(ctx context.Context, request mcp.ReadResourceRequest, sc *server.ServerContext) ([]mcp.ResourceContents, error) {
	type providerInfo struct {
		Provider  model.ProviderType `json:"provider"`
		Connected bool               `json:"connected"`
	}

	var providers []providerInfo
	for _, typ := range sc.Registry().Types() {
		p, err := sc.Registry().Get(typ)
		if err != nil {
			continue
		}
		providers = append(providers, providerInfo{Provider: typ, Connected: p.IsConnected()})
	}

	jsonData, err := json.MarshalIndent(providers, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal provider list: %w", err)
	}

	return []mcp.ResourceContents{
		&mcp.TextResourceContents{
			URI:      request.Params.URI,
			MIMEType: "application/json",
			Text:     string(jsonData),
		},
	}, nil
}

func handleProviderCalendars(ctx context.Context, request mcp.ReadResourceRequest, sc *server.ServerContext) ([]mcp.ResourceContents, error) {
	name := providerFromURI(request.Params.URI)
	typ, err := model.ParseProviderType(name)
	if err != nil {
		return nil, err
	}

	p, err := sc.Registry().Get(typ)
	if err != nil {
		return nil, err
	}
	if !p.IsConnected() {
		return nil, fmt.Errorf("provider %s is configured but not connected", typ)
	}

	calendars, err := p.ListCalendars(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list calendars for %s: %w", typ, err)
	}

	jsonData, err := json.MarshalIndent(calendars, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal calendar list: %w", err)
	}

	return []mcp.ResourceContents{
		&mcp.TextResourceContents{
			URI:      request.Params.URI,
			MIMEType: "application/json",
			Text:     string(jsonData),
		},
	}, nil
}

// providerFromURI extracts the provider segment of
// calmux://providers/{provider}/calendars.
func providerFromURI(uri string) string {
	trimmed := strings.TrimPrefix(uri, "calmux://providers/")
	if idx := strings.Index(trimmed, "/"); idx >= 0 {
		return trimmed[:idx]
	}
	return trimmed
}
