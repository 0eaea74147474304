package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newPendingCommand(ctx *commandContext) *cobra.Command {
	var (
		reviewThreshold float64
		autoThreshold   float64
	)

	cmd := &cobra.Command{
		Use:   "pending",
		Short: "List matches awaiting manual review",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			review, auto := reviewThreshold, autoThreshold
			if !cmd.Flags().Changed("review-threshold") {
				review = cfg.Matching.ReviewThreshold
			}
			if !cmd.Flags().Changed("auto-threshold") {
				auto = cfg.Matching.AutoMatchThreshold
			}

			r, st, err := ctx.newResolver()
			if err != nil {
				return err
			}
			defer st.Close()

			speakers, err := r.PendingReview(cmd.Context(), review, auto)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(speakers) == 0 {
				fmt.Fprintln(out, "No matches awaiting review")
				return nil
			}

			rows := make([][]string, 0, len(speakers))
			for _, speaker := range speakers {
				politician := ""
				if speaker.PoliticianID != nil {
					politician = strconv.FormatInt(*speaker.PoliticianID, 10)
				}
				confidence := ""
				if speaker.MatchingConfidence != nil {
					confidence = fmt.Sprintf("%.2f", *speaker.MatchingConfidence)
				}
				rows = append(rows, []string{
					strconv.FormatInt(speaker.ID, 10),
					speaker.Name,
					politician,
					confidence,
					speaker.MatchingReason,
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Speaker ID", "Speaker", "Politician ID", "Confidence", "Method"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignRight, alignRight, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().Float64Var(&reviewThreshold, "review-threshold", 0.7, "Lower bound of the review band")
	cmd.Flags().Float64Var(&autoThreshold, "auto-threshold", 0.9, "Upper bound of the review band")
	return cmd
}
