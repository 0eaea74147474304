package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"polilink/internal/classify"
	"polilink/internal/resolver"
)

func newLinkCommand(ctx *commandContext) *cobra.Command {
	var (
		userID string
		verify bool
	)

	cmd := &cobra.Command{
		Use:   "link <speaker-id> <politician-id|politician-name>",
		Short: "Manually link a speaker to a politician",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			speakerID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("speaker id must be an integer: %w", err)
			}

			r, st, err := ctx.newResolver()
			if err != nil {
				return err
			}
			defer st.Close()

			politicianID, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				// Not an id: look the politician up by name.
				matches, searchErr := st.SearchByNormalizedName(cmd.Context(), args[1])
				if searchErr != nil {
					return searchErr
				}
				switch len(matches) {
				case 0:
					return fmt.Errorf("no politician named %q", args[1])
				case 1:
					politicianID = matches[0].ID
				default:
					return fmt.Errorf("%d politicians named %q; pass the id instead", len(matches), args[1])
				}
			}

			speaker, err := r.LinkSpeaker(cmd.Context(), resolver.LinkRequest{
				SpeakerID:    speakerID,
				PoliticianID: politicianID,
				UserID:       strings.TrimSpace(userID),
				Verify:       verify,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Linked speaker %d (%s) to politician %d\n",
				speaker.ID, speaker.Name, politicianID)
			if verify {
				fmt.Fprintln(cmd.OutOrStdout(), "Link marked as manually verified; automated passes will not touch it")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "UUID of the user making the correction")
	cmd.Flags().BoolVar(&verify, "verify", false, "Mark the link as human-confirmed")
	return cmd
}

func newMarkNonPoliticianCommand(ctx *commandContext) *cobra.Command {
	var (
		reason string
		userID string
	)

	cmd := &cobra.Command{
		Use:   "mark-non-politician <speaker-id>",
		Short: "Mark a speaker as structurally not a politician",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			speakerID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("speaker id must be an integer: %w", err)
			}
			if !classify.Valid(reason) {
				return fmt.Errorf("unknown skip reason %q (valid: role_only, reference_person, government_official, other_non_politician, homonym)", reason)
			}

			r, st, err := ctx.newResolver()
			if err != nil {
				return err
			}
			defer st.Close()

			speaker, err := r.MarkNonPolitician(cmd.Context(), speakerID, reason, strings.TrimSpace(userID))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Marked speaker %d (%s) as non-politician: %s\n",
				speaker.ID, speaker.Name, reason)
			return nil
		},
	}

	cmd.Flags().StringVar(&reason, "reason", "", "Skip reason to record")
	cmd.Flags().StringVar(&userID, "user", "", "UUID of the user making the correction")
	_ = cmd.MarkFlagRequired("reason")
	return cmd
}
