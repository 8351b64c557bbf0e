package calendar_tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/calmux/calmux/internal/ics"
	"github.com/calmux/calmux/internal/provider"
	"github.com/calmux/calmux/internal/server"
	"github.com/calmux/calmux/internal/tools/common"
)

// RegisterExportTools registers the ICS export tool.
func RegisterExportTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	exportTool := mcp.NewTool("calendar_export_ics",
		mcp.WithDescription("Export events in a time range as an iCalendar (ICS) document, merged across providers"),
		mcp.WithString("timeMin",
			mcp.Required(),
			mcp.Description("Start of the range (RFC3339)"),
		),
		mcp.WithString("timeMax",
			mcp.Required(),
			mcp.Description("End of the range (RFC3339)"),
		),
		mcp.WithString("providers",
			mcp.Description("Comma-separated provider filter (google, graph, ews). Default: all connected."),
		),
		mcp.WithString("calendarIds",
			mcp.Description("Comma-separated calendar IDs. Default: each provider's primary calendar."),
		),
	)
	s.AddTool(exportTool, common.InstrumentedToolHandler("calendar_export_ics", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleExportICS(ctx, request, sc)
		}))

	return nil
}

func handleExportICS(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	timeMin, err := common.TimeArg(args, "timeMin")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	timeMax, err := common.TimeArg(args, "timeMax")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	filter, err := providerFilterFromArgs(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := sc.Orchestrator().ListEvents(ctx, provider.ListOptions{
		Start:       timeMin,
		End:         timeMax,
		CalendarIDs: common.StringListArg(args, "calendarIds"),
	}, filter)
	// Export requires complete data; an ICS built from a partial listing
	// would silently misrepresent the schedule.
	if len(result.Errors) > 0 {
		first := result.Errors[0]
		return mcp.NewToolResultError(fmt.Sprintf("Export aborted, %s provider failed: %s", first.Provider, first.Message)), nil
	}

	document, err := ics.Export(result.Events)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to render ICS: %v", err)), nil
	}

	return mcp.NewToolResultText(document), nil
}
