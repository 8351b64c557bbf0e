package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/calmux/calmux/internal/config"
	"github.com/calmux/calmux/internal/logging"
	"github.com/calmux/calmux/internal/model"
	"github.com/calmux/calmux/internal/syncer"
)

func newSyncCmd() *cobra.Command {
	var (
		sourceName       string
		targetName       string
		sourceCalendar   string
		targetCalendar   string
		fromStr          string
		toStr            string
		copyMissing      bool
		includeAttendees bool
		debugMode        bool
	)

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Compare two providers' calendars and optionally copy missing events",
		Long: `Compare the events of one provider's calendar against another over a
time window. Matched pairs, source-only, and target-only events are
reported; with --copy-missing, source-only events are copied to the
target calendar (attendees are never notified).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSync(sourceName, targetName, sourceCalendar, targetCalendar,
				fromStr, toStr, copyMissing, includeAttendees, debugMode)
		},
	}

	cmd.Flags().StringVar(&sourceName, "source", "", "Source provider: google, graph, or ews (required)")
	cmd.Flags().StringVar(&targetName, "target", "", "Target provider: google, graph, or ews (required)")
	cmd.Flags().StringVar(&sourceCalendar, "source-calendar", "", "Source calendar ID (default: primary)")
	cmd.Flags().StringVar(&targetCalendar, "target-calendar", "", "Target calendar ID (default: primary)")
	cmd.Flags().StringVar(&fromStr, "from", "", "Window start, RFC3339 (default: now)")
	cmd.Flags().StringVar(&toStr, "to", "", "Window end, RFC3339 (default: from + 7 days)")
	cmd.Flags().BoolVar(&copyMissing, "copy-missing", false, "Copy source-only events to the target calendar")
	cmd.Flags().BoolVar(&includeAttendees, "include-attendees", false, "Carry attendee lists onto copies")
	cmd.Flags().BoolVar(&debugMode, "debug", false, "Enable debug logging")

	_ = cmd.MarkFlagRequired("source")
	_ = cmd.MarkFlagRequired("target")

	return cmd
}

func runSync(sourceName, targetName, sourceCalendar, targetCalendar, fromStr, toStr string,
	copyMissing, includeAttendees, debugMode bool) error {

	ctx := context.Background()
	logger := logging.Setup(debugMode, false)

	sourceType, err := model.ParseProviderType(sourceName)
	if err != nil {
		return err
	}
	targetType, err := model.ParseProviderType(targetName)
	if err != nil {
		return err
	}
	if sourceType == targetType {
		return fmt.Errorf("source and target must differ")
	}

	from := time.Now()
	if fromStr != "" {
		from, err = time.Parse(time.RFC3339, fromStr)
		if err != nil {
			return fmt.Errorf("invalid --from: %w", err)
		}
	}
	to := from.Add(7 * 24 * time.Hour)
	if toStr != "" {
		to, err = time.Parse(time.RFC3339, toStr)
		if err != nil {
			return fmt.Errorf("invalid --to: %w", err)
		}
	}
	if !from.Before(to) {
		return fmt.Errorf("--from must be before --to")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	registry, err := cfg.BuildRegistry(ctx)
	if err != nil {
		return fmt.Errorf("building provider registry: %w", err)
	}

	for _, typ := range []model.ProviderType{sourceType, targetType} {
		p, err := registry.Get(typ)
		if err != nil {
			return fmt.Errorf("provider %s is not configured", typ)
		}
		if err := p.Connect(ctx); err != nil {
			return fmt.Errorf("connecting %s: %w", typ, err)
		}
		defer p.Disconnect(ctx)
	}

	sync := syncer.New(registry, logger)
	comparison, err := sync.CompareCalendars(ctx, syncer.MatchRequest{
		SourceProvider:   sourceType,
		SourceCalendarID: sourceCalendar,
		TargetProvider:   targetType,
		TargetCalendarID: targetCalendar,
		Start:            from,
		End:              to,
	})
	if err != nil {
		return fmt.Errorf("comparing calendars: %w", err)
	}

	s := comparison.Summary
	fmt.Printf("Compared %s (%d events) against %s (%d events), %s to %s\n",
		sourceType, s.SourceTotal, targetType, s.TargetTotal,
		from.Format("2006-01-02"), to.Format("2006-01-02"))
	fmt.Printf("  Matched:        %d\n", s.Matched)
	fmt.Printf("  Only in source: %d\n", s.SourceOnly)
	fmt.Printf("  Only in target: %d\n", s.TargetOnly)

	for _, ev := range comparison.SourceOnly {
		fmt.Printf("    missing in target: %s (%s)\n", ev.Subject, ev.Start.Format("2006-01-02 15:04"))
	}

	if !copyMissing || len(comparison.SourceOnly) == 0 {
		return nil
	}

	fmt.Printf("\nCopying %d event(s) to %s...\n", len(comparison.SourceOnly), targetType)
	failed := 0
	for _, ev := range comparison.SourceOnly {
		result := sync.CopyEvent(ctx, syncer.CopyRequest{
			SourceProvider:   sourceType,
			SourceCalendarID: sourceCalendar,
			SourceEventID:    ev.ID,
			TargetProvider:   targetType,
			TargetCalendarID: targetCalendar,
			IncludeAttendees: includeAttendees,
			IncludeBody:      true,
		})
		if result.Success {
			fmt.Printf("  copied: %s -> %s\n", ev.Subject, result.Created.ID)
		} else {
			failed++
			fmt.Printf("  FAILED: %s: %s\n", ev.Subject, result.Error)
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d copies failed", failed, len(comparison.SourceOnly))
	}
	return nil
}
