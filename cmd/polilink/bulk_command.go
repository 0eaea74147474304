package main

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"polilink/internal/resolver"
	"polilink/internal/store"
)

func newBulkMatchCommand(ctx *commandContext) *cobra.Command {
	var (
		chamber         string
		fromFlag        string
		toFlag          string
		autoThreshold   float64
		reviewThreshold float64
		useFallback     bool
		broad           bool
		dryRun          bool
	)

	cmd := &cobra.Command{
		Use:   "bulk-match",
		Short: "Resolve speakers across every meeting of a chamber in a date range",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			from, err := time.Parse(store.DateLayout, fromFlag)
			if err != nil {
				return fmt.Errorf("--from must be YYYY-MM-DD: %w", err)
			}
			to, err := time.Parse(store.DateLayout, toFlag)
			if err != nil {
				return fmt.Errorf("--to must be YYYY-MM-DD: %w", err)
			}
			auto, review := autoThreshold, reviewThreshold
			if !cmd.Flags().Changed("auto-threshold") {
				auto = cfg.Matching.AutoMatchThreshold
			}
			if !cmd.Flags().Changed("review-threshold") {
				review = cfg.Matching.ReviewThreshold
			}

			r, st, err := ctx.newResolver()
			if err != nil {
				return err
			}
			defer st.Close()

			bulk, err := r.RunBulk(cmd.Context(), resolver.BulkRequest{
				GoverningBodyID:  cfg.Matching.GoverningBodyID,
				Chamber:          chamber,
				DateFrom:         from,
				DateTo:           to,
				AutoThreshold:    auto,
				ReviewThreshold:  review,
				EnableFallback:   useFallback,
				UseBroadStrategy: broad,
				DryRun:           dryRun,
			})
			if err != nil {
				return err
			}
			printBulkReport(cmd, bulk, dryRun)
			return nil
		},
	}

	cmd.Flags().StringVar(&chamber, "chamber", store.ChamberRepresentatives, "Chamber whose meetings to process")
	cmd.Flags().StringVar(&fromFlag, "from", "", "Start of the date range (YYYY-MM-DD)")
	cmd.Flags().StringVar(&toFlag, "to", "", "End of the date range (YYYY-MM-DD)")
	cmd.Flags().Float64Var(&autoThreshold, "auto-threshold", 0.9, "Confidence at or above which a match is accepted automatically")
	cmd.Flags().Float64Var(&reviewThreshold, "review-threshold", 0.7, "Confidence at or above which a match is queued for review")
	cmd.Flags().BoolVar(&useFallback, "fallback", false, "Consult the external fallback matcher for unresolved speakers")
	cmd.Flags().BoolVar(&broad, "broad", true, "Source candidates from election winners instead of rosters")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "List the meetings and term breakdown without writing anything")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

func printBulkReport(cmd *cobra.Command, bulk *resolver.BulkReport, dryRun bool) {
	out := cmd.OutOrStdout()
	if dryRun {
		fmt.Fprintf(out, "Dry run: %d meetings would be processed\n", bulk.Meetings)
	} else {
		fmt.Fprintf(out, "Processed %d meetings, %d speakers: %d auto, %d review, %d fallback, %d non-politician, %d skipped, %d pending\n",
			bulk.Meetings, bulk.TotalSpeakers, bulk.AutoMatched, bulk.ReviewMatched,
			bulk.FallbackMatched, bulk.NonPoliticians, bulk.Skipped, bulk.Pending)
	}

	terms := make([]string, 0, len(bulk.Terms))
	for term := range bulk.Terms {
		terms = append(terms, term)
	}
	sort.Strings(terms)
	rows := make([][]string, 0, len(terms))
	for _, term := range terms {
		stats := bulk.Terms[term]
		rows = append(rows, []string{
			term,
			strconv.Itoa(stats.Meetings),
			strconv.Itoa(stats.Speakers),
			strconv.Itoa(stats.AutoMatched),
			strconv.Itoa(stats.ReviewMatched),
			strconv.Itoa(stats.FallbackMatched),
			strconv.Itoa(stats.NonPoliticians),
			strconv.Itoa(stats.Pending),
			strconv.Itoa(stats.Errors),
		})
	}
	if len(rows) > 0 {
		fmt.Fprintln(out, renderTable(
			[]string{"Term", "Meetings", "Speakers", "Auto", "Review", "Fallback", "Non-politician", "Pending", "Errors"},
			rows,
			[]columnAlignment{alignLeft, alignRight, alignRight, alignRight, alignRight, alignRight, alignRight, alignRight, alignRight},
		))
	}

	for _, failure := range bulk.Failures {
		date := "unknown date"
		if failure.Date != nil {
			date = failure.Date.Format(store.DateLayout)
		}
		fmt.Fprintf(out, "Failed: meeting %d (%s, %s): %s\n", failure.MeetingID, failure.Name, date, failure.Message)
	}
}
