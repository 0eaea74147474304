package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"polilink/internal/resolver"
)

func newMatchCommand(ctx *commandContext) *cobra.Command {
	var (
		autoThreshold   float64
		reviewThreshold float64
		useFallback     bool
		broad           bool
	)

	cmd := &cobra.Command{
		Use:   "match <meeting-id>",
		Short: "Resolve the speakers of one meeting",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			meetingID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("meeting id must be an integer: %w", err)
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			auto, review := autoThreshold, reviewThreshold
			if !cmd.Flags().Changed("auto-threshold") {
				auto = cfg.Matching.AutoMatchThreshold
			}
			if !cmd.Flags().Changed("review-threshold") {
				review = cfg.Matching.ReviewThreshold
			}
			if !broad {
				// The roster-scoped flow collapses to one pass/fail cut.
				auto = cfg.Matching.ConfidenceThreshold
				review = cfg.Matching.ConfidenceThreshold
			}

			r, st, err := ctx.newResolver()
			if err != nil {
				return err
			}
			defer st.Close()

			report, err := r.Run(cmd.Context(), resolver.MeetingRequest{
				MeetingID:        meetingID,
				AutoThreshold:    auto,
				ReviewThreshold:  review,
				EnableFallback:   useFallback,
				UseBroadStrategy: broad,
			})
			if err != nil {
				return err
			}
			printReport(cmd, report)
			if !report.Success {
				return fmt.Errorf("meeting %d: %s", meetingID, report.Message)
			}
			return nil
		},
	}

	cmd.Flags().Float64Var(&autoThreshold, "auto-threshold", 0.9, "Confidence at or above which a match is accepted automatically")
	cmd.Flags().Float64Var(&reviewThreshold, "review-threshold", 0.7, "Confidence at or above which a match is queued for review")
	cmd.Flags().BoolVar(&useFallback, "fallback", false, "Consult the external fallback matcher for unresolved speakers")
	cmd.Flags().BoolVar(&broad, "broad", false, "Source candidates from election winners instead of the roster")
	return cmd
}

func printReport(cmd *cobra.Command, report *resolver.Report) {
	out := cmd.OutOrStdout()
	if !report.Success {
		fmt.Fprintf(out, "Failed: %s\n", report.Message)
		return
	}
	fmt.Fprintf(out, "Candidate source: %s\n", report.CandidateSource)
	fmt.Fprintln(out, renderTable(
		[]string{"Speakers", "Auto", "Review", "Fallback", "Non-politician", "Skipped", "Pending"},
		[][]string{{
			strconv.Itoa(report.TotalSpeakers),
			strconv.Itoa(report.AutoMatched),
			strconv.Itoa(report.ReviewMatched),
			strconv.Itoa(report.FallbackMatched),
			strconv.Itoa(report.NonPoliticians),
			strconv.Itoa(report.Skipped),
			strconv.Itoa(report.Pending),
		}},
		[]columnAlignment{alignRight, alignRight, alignRight, alignRight, alignRight, alignRight, alignRight},
	))

	if len(report.Results) == 0 {
		return
	}
	rows := make([][]string, 0, len(report.Results))
	for _, result := range report.Results {
		rows = append(rows, []string{
			strconv.FormatInt(result.SpeakerID, 10),
			result.SpeakerName,
			result.PoliticianName,
			fmt.Sprintf("%.2f", result.Confidence),
			string(result.Method),
		})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"Speaker ID", "Speaker", "Politician", "Confidence", "Method"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignLeft},
	))
}
