package calendar_tools

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/calmux/calmux/internal/model"
	"github.com/calmux/calmux/internal/server"
	"github.com/calmux/calmux/internal/syncer"
	"github.com/calmux/calmux/internal/tools/batch"
	"github.com/calmux/calmux/internal/tools/common"
)

// RegisterSyncTools registers cross-provider matching, comparison, and copy
// tools.
func RegisterSyncTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	findMatchesTool := mcp.NewTool("calendar_find_matches",
		mcp.WithDescription("Find events in a target calendar that likely correspond to events in a source calendar, scored by subject, time, and location similarity"),
		mcp.WithString("sourceProvider",
			mcp.Required(),
			mcp.Description("Provider to read source events from (google, graph, ews)"),
		),
		mcp.WithString("targetProvider",
			mcp.Required(),
			mcp.Description("Provider to search for counterparts"),
		),
		mcp.WithString("timeMin",
			mcp.Required(),
			mcp.Description("Start of the comparison window (RFC3339)"),
		),
		mcp.WithString("timeMax",
			mcp.Required(),
			mcp.Description("End of the comparison window (RFC3339)"),
		),
		mcp.WithString("sourceCalendarId",
			mcp.Description("Source calendar. Default: primary."),
		),
		mcp.WithString("targetCalendarId",
			mcp.Description("Target calendar. Default: primary."),
		),
		mcp.WithString("minConfidence",
			mcp.Description("Minimum match confidence: high, medium, or low (default: medium)"),
		),
	)
	s.AddTool(findMatchesTool, common.InstrumentedToolHandler("calendar_find_matches", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleFindMatches(ctx, request, sc)
		}))

	compareTool := mcp.NewTool("calendar_compare_calendars",
		mcp.WithDescription("Diff two calendars: matched event pairs plus events existing only on one side"),
		mcp.WithString("sourceProvider",
			mcp.Required(),
			mcp.Description("Provider of the source calendar"),
		),
		mcp.WithString("targetProvider",
			mcp.Required(),
			mcp.Description("Provider of the target calendar"),
		),
		mcp.WithString("timeMin",
			mcp.Required(),
			mcp.Description("Start of the comparison window (RFC3339)"),
		),
		mcp.WithString("timeMax",
			mcp.Required(),
			mcp.Description("End of the comparison window (RFC3339)"),
		),
		mcp.WithString("sourceCalendarId",
			mcp.Description("Source calendar. Default: primary."),
		),
		mcp.WithString("targetCalendarId",
			mcp.Description("Target calendar. Default: primary."),
		),
	)
	s.AddTool(compareTool, common.InstrumentedToolHandler("calendar_compare_calendars", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleCompareCalendars(ctx, request, sc)
		}))

	copyEventTool := mcp.NewTool("calendar_copy_event",
		mcp.WithDescription("Copy one event to a different provider's calendar. Attendees are never notified."),
		mcp.WithString("sourceProvider",
			mcp.Required(),
			mcp.Description("Provider holding the source event"),
		),
		mcp.WithString("sourceEventId",
			mcp.Required(),
			mcp.Description("Source event ID"),
		),
		mcp.WithString("targetProvider",
			mcp.Required(),
			mcp.Description("Provider to create the copy on"),
		),
		mcp.WithString("sourceCalendarId",
			mcp.Description("Source calendar. Default: primary."),
		),
		mcp.WithString("targetCalendarId",
			mcp.Description("Target calendar. Default: primary."),
		),
		mcp.WithBoolean("includeAttendees",
			mcp.Description("Carry the attendee list onto the copy (default: false)"),
		),
		mcp.WithBoolean("includeBody",
			mcp.Description("Carry the event description onto the copy (default: true)"),
		),
	)
	s.AddTool(copyEventTool, common.InstrumentedToolHandler("calendar_copy_event", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleCopyEvent(ctx, request, sc)
		}))

	copyEventsTool := mcp.NewTool("calendar_copy_events",
		mcp.WithDescription("Copy multiple events to a different provider's calendar, reporting per-event results"),
		mcp.WithString("sourceProvider",
			mcp.Required(),
			mcp.Description("Provider holding the source events"),
		),
		mcp.WithString("sourceEventIds",
			mcp.Required(),
			mcp.Description("Source event ID(s): a single ID or an array of IDs"),
		),
		mcp.WithString("targetProvider",
			mcp.Required(),
			mcp.Description("Provider to create the copies on"),
		),
		mcp.WithString("sourceCalendarId",
			mcp.Description("Source calendar. Default: primary."),
		),
		mcp.WithString("targetCalendarId",
			mcp.Description("Target calendar. Default: primary."),
		),
		mcp.WithBoolean("includeAttendees",
			mcp.Description("Carry attendee lists onto the copies (default: false)"),
		),
		mcp.WithBoolean("includeBody",
			mcp.Description("Carry event descriptions onto the copies (default: true)"),
		),
	)
	s.AddTool(copyEventsTool, common.InstrumentedToolHandler("calendar_copy_events", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleCopyEvents(ctx, request, sc)
		}))

	return nil
}

func matchRequestFromArgs(args map[string]interface{}) (syncer.MatchRequest, error) {
	var req syncer.MatchRequest

	sourceType, err := common.ProviderArg(args, "sourceProvider")
	if err != nil {
		return req, err
	}
	targetType, err := common.ProviderArg(args, "targetProvider")
	if err != nil {
		return req, err
	}
	timeMin, err := common.TimeArg(args, "timeMin")
	if err != nil {
		return req, err
	}
	timeMax, err := common.TimeArg(args, "timeMax")
	if err != nil {
		return req, err
	}

	return syncer.MatchRequest{
		SourceProvider:   sourceType,
		SourceCalendarID: common.StringArg(args, "sourceCalendarId", ""),
		TargetProvider:   targetType,
		TargetCalendarID: common.StringArg(args, "targetCalendarId", ""),
		Start:            timeMin,
		End:              timeMax,
	}, nil
}

func handleFindMatches(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	req, err := matchRequestFromArgs(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if v := common.StringArg(args, "minConfidence", ""); v != "" {
		confidence := model.Confidence(v)
		switch confidence {
		case model.ConfidenceHigh, model.ConfidenceMedium, model.ConfidenceLow:
			req.MinConfidence = confidence
		default:
			return mcp.NewToolResultError(fmt.Sprintf("invalid minConfidence %q (want high, medium, or low)", v)), nil
		}
	}

	matches, err := sc.Syncer().FindMatchingEvents(ctx, req)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to find matches: %v", err)), nil
	}

	jsonBytes, err := json.MarshalIndent(matches, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to encode matches: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Found %d match(es):\n\n%s", len(matches), jsonBytes)), nil
}

func handleCompareCalendars(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	req, err := matchRequestFromArgs(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	comparison, err := sc.Syncer().CompareCalendars(ctx, req)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to compare calendars: %v", err)), nil
	}

	jsonBytes, err := json.MarshalIndent(comparison, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to encode comparison: %v", err)), nil
	}

	summary := comparison.Summary
	header := fmt.Sprintf("Compared %d source and %d target event(s): %d matched, %d only in source, %d only in target.",
		summary.SourceTotal, summary.TargetTotal, summary.Matched, summary.SourceOnly, summary.TargetOnly)
	return mcp.NewToolResultText(fmt.Sprintf("%s\n\n%s", header, jsonBytes)), nil
}

func copyRequestFromArgs(args map[string]interface{}) (syncer.CopyRequest, error) {
	var req syncer.CopyRequest

	sourceType, err := common.ProviderArg(args, "sourceProvider")
	if err != nil {
		return req, err
	}
	targetType, err := common.ProviderArg(args, "targetProvider")
	if err != nil {
		return req, err
	}

	return syncer.CopyRequest{
		SourceProvider:   sourceType,
		SourceCalendarID: common.StringArg(args, "sourceCalendarId", ""),
		TargetProvider:   targetType,
		TargetCalendarID: common.StringArg(args, "targetCalendarId", ""),
		IncludeAttendees: common.BoolArg(args, "includeAttendees", false),
		IncludeBody:      common.BoolArg(args, "includeBody", true),
	}, nil
}

func handleCopyEvent(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	req, err := copyRequestFromArgs(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	req.SourceEventID, err = common.RequiredString(args, "sourceEventId")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := sc.Syncer().CopyEvent(ctx, req)
	if !result.Success {
		return mcp.NewToolResultError(fmt.Sprintf("Copy of event %s failed: %s", result.SourceEventID, result.Error)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Event copied to %s.\nNew event ID: %s\nStart: %s",
		req.TargetProvider, result.Created.ID, result.Created.Start.Format(time.RFC3339))), nil
}

func handleCopyEvents(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	req, err := copyRequestFromArgs(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	eventIDs, err := batch.ParseStringOrArray(args["sourceEventIds"], "sourceEventIds")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	results := batch.ProcessBatch(eventIDs, func(id string) (string, error) {
		itemReq := req
		itemReq.SourceEventID = id
		result := sc.Syncer().CopyEvent(ctx, itemReq)
		if !result.Success {
			return "", fmt.Errorf("%s", result.Error)
		}
		return fmt.Sprintf("copied as %s", result.Created.ID), nil
	})

	return mcp.NewToolResultText(batch.FormatResults(results)), nil
}
