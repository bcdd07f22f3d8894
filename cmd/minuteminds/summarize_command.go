package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newSummarizeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "summarize",
		Short: "Summarize the current transcript",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := ctx.pipeline.Summarize(cmd.Context()); err != nil {
				return userError(err)
			}

			doc := ctx.pipeline.Document()
			if doc.Summary == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "Summary already in progress")
				return nil
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, doc.Summary.Text)
			for _, bullet := range doc.Summary.BulletPoints {
				fmt.Fprintf(out, "  - %s\n", bullet)
			}

			if notifyErr := ctx.notifier.NotifySummarized(cmd.Context(), len(doc.Summary.BulletPoints)); notifyErr != nil {
				ctx.logger.Warn("summary notification not sent")
			}
			return nil
		},
	}
}
