package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newClassifyCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "classify",
		Short: "Reclassify the politician flag across all unlinked speakers",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, st, err := ctx.newResolver()
			if err != nil {
				return err
			}
			defer st.Close()

			counts, err := r.ClassifyAll(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Classified %d speakers as politicians, %d as non-politicians\n",
				counts.UpdatedToPolitician, counts.KeptNonPolitician)
			return nil
		},
	}
}
