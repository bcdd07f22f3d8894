package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List past transcriptions",
		RunE: func(cmd *cobra.Command, args []string) error {
			docs, degraded, err := ctx.historySvc.List(cmd.Context())
			if err != nil {
				return userError(err)
			}
			if asJSON {
				return writeJSON(cmd, docs)
			}

			out := cmd.OutOrStdout()
			if degraded {
				fmt.Fprintln(out, "Backend unreachable; showing cached history")
			}
			if len(docs) == 0 {
				fmt.Fprintln(out, "No transcriptions yet")
				return nil
			}

			rows := make([][]string, 0, len(docs))
			for _, doc := range docs {
				created := ""
				if !doc.CreatedAt.IsZero() {
					created = doc.CreatedAt.Format("2006-01-02 15:04")
				}
				rows = append(rows, []string{
					doc.ID,
					doc.Filename,
					created,
					truncate(doc.Summary, 50),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"ID", "File", "Created", "Summary"},
				rows,
				nil,
			))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}
