package calendar_tools

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/calmux/calmux/internal/availability"
	"github.com/calmux/calmux/internal/conflict"
	"github.com/calmux/calmux/internal/server"
	"github.com/calmux/calmux/internal/tools/common"
)

// RegisterSchedulingTools registers availability and conflict tools.
func RegisterSchedulingTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	freeBusyTool := mcp.NewTool("calendar_get_free_busy",
		mcp.WithDescription("Aggregate free/busy across all providers, with optional working-hours clipping and meeting slot suggestions"),
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
			mcp.Description("Comma-separated calendar IDs to query"),
		),
		mcp.WithNumber("slotDurationMinutes",
			mcp.Description("When set, suggest up to 5 meeting slots of this length"),
		),
		mcp.WithBoolean("workingHoursOnly",
			mcp.Description("Clip free slots to working hours (default: false)"),
		),
		mcp.WithString("workingHoursStart",
			mcp.Description("Working day start, HH:mm (default from server config)"),
		),
		mcp.WithString("workingHoursEnd",
			mcp.Description("Working day end, HH:mm (default from server config)"),
		),
	)
	s.AddTool(freeBusyTool, common.InstrumentedToolHandler("calendar_get_free_busy", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleGetFreeBusy(ctx, request, sc)
		}))

	checkConflictsTool := mcp.NewTool("calendar_check_conflicts",
		mcp.WithDescription("Check a proposed meeting time against existing events on every provider, suggesting an alternative slot when it conflicts"),
		mcp.WithString("start",
			mcp.Required(),
			mcp.Description("Proposed start (RFC3339)"),
		),
		mcp.WithString("end",
			mcp.Required(),
			mcp.Description("Proposed end (RFC3339)"),
		),
		mcp.WithString("excludeEventId",
			mcp.Description("Event ID to ignore, for rescheduling checks"),
		),
		mcp.WithString("excludeProvider",
			mcp.Description("Provider of the excluded event; required with excludeEventId"),
		),
	)
	s.AddTool(checkConflictsTool, common.InstrumentedToolHandler("calendar_check_conflicts", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleCheckConflicts(ctx, request, sc)
		}))

	return nil
}

func handleGetFreeBusy(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	timeMin, err := common.TimeArg(args, "timeMin")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	timeMax, err := common.TimeArg(args, "timeMax")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if !timeMin.Before(timeMax) {
		return mcp.NewToolResultError("timeMin must be before timeMax"), nil
	}
	filter, err := providerFilterFromArgs(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	req := availability.Request{
		Start:               timeMin,
		End:                 timeMax,
		Providers:           filter,
		CalendarIDs:         common.StringListArg(args, "calendarIds"),
		SlotDurationMinutes: int(common.NumberArg(args, "slotDurationMinutes", 0)),
		WorkingHoursOnly:    common.BoolArg(args, "workingHoursOnly", false),
	}
	if req.WorkingHoursOnly {
		wh := sc.WorkingHours()
		if v := common.StringArg(args, "workingHoursStart", ""); v != "" {
			wh.Start = v
		}
		if v := common.StringArg(args, "workingHoursEnd", ""); v != "" {
			wh.End = v
		}
		req.WorkingHours = &wh
	}

	result, err := sc.Availability().GetAggregatedFreeBusy(ctx, req)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to compute availability: %v", err)), nil
	}

	var b strings.Builder
	if len(result.Busy) == 0 {
		b.WriteString("No busy time in the requested range.\n")
	} else {
		fmt.Fprintf(&b, "Busy periods (%d):\n", len(result.Busy))
		for _, slot := range result.Busy {
			fmt.Fprintf(&b, "  %s to %s (%s)\n",
				slot.Start.Format("2006-01-02 15:04"),
				slot.End.Format("2006-01-02 15:04"),
				slot.Status)
		}
	}

	fmt.Fprintf(&b, "\nFree slots (%d):\n", len(result.Free))
	for _, slot := range result.Free {
		fmt.Fprintf(&b, "  %s to %s (%d min)\n",
			slot.Start.Format("2006-01-02 15:04"),
			slot.End.Format("2006-01-02 15:04"),
			slot.DurationMinutes)
	}

	if len(result.Suggestions) > 0 {
		fmt.Fprintf(&b, "\nSuggested meeting slots (%d):\n", len(result.Suggestions))
		for i, slot := range result.Suggestions {
			fmt.Fprintf(&b, "  %d. %s to %s\n", i+1,
				slot.Start.Format(time.RFC3339),
				slot.End.Format(time.RFC3339))
		}
	}

	if result.Partial {
		b.WriteString("\nNote: results are partial, some providers failed:\n")
		for _, e := range result.Errors {
			fmt.Fprintf(&b, "  %s: %s\n", e.Provider, e.Message)
		}
	}

	return mcp.NewToolResultText(b.String()), nil
}

func handleCheckConflicts(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	start, err := common.TimeArg(args, "start")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	end, err := common.TimeArg(args, "end")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	proposal := conflict.Proposal{
		Start:          start,
		End:            end,
		ExcludeEventID: common.StringArg(args, "excludeEventId", ""),
	}
	if proposal.ExcludeEventID != "" {
		typ, err := common.ProviderArg(args, "excludeProvider")
		if err != nil {
			return mcp.NewToolResultError("excludeProvider is required when excludeEventId is set"), nil
		}
		proposal.ExcludeProvider = typ
	}

	result, err := sc.Conflicts().CheckConflicts(ctx, proposal)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Conflict check failed: %v", err)), nil
	}

	if !result.HasConflict {
		return mcp.NewToolResultText(fmt.Sprintf("No conflicts: %s to %s is free on every provider.",
			start.Format(time.RFC3339), end.Format(time.RFC3339))), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d conflict(s):\n\n", len(result.Conflicts))
	for _, c := range result.Conflicts {
		fmt.Fprintf(&b, "- [%s] %s\n  %s to %s (%s)\n  Event ID: %s\n",
			c.Provider, c.Subject,
			c.Start.Format("2006-01-02 15:04"),
			c.End.Format("2006-01-02 15:04"),
			c.ShowAs, c.EventID)
	}
	if result.Suggestion != nil {
		fmt.Fprintf(&b, "\nSuggested alternative: %s to %s (%s)\n",
			result.Suggestion.Start.Format(time.RFC3339),
			result.Suggestion.End.Format(time.RFC3339),
			result.Suggestion.Reason)
	} else {
		b.WriteString("\nNo alternative slot found within the next 7 days.\n")
	}

	return mcp.NewToolResultText(b.String()), nil
}
