package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newSearchCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search past transcriptions",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			results, err := ctx.searchSvc.Search(cmd.Context(), query)
			if err != nil {
				return userError(err)
			}
			if asJSON {
				return writeJSON(cmd, results)
			}

			out := cmd.OutOrStdout()
			if len(results) == 0 {
				fmt.Fprintln(out, "No matches")
				return nil
			}
			for _, result := range results {
				fmt.Fprintf(out, "%s  %s\n", result.ID, result.Filename)
				for _, segment := range result.MatchingSegments {
					fmt.Fprintf(out, "    [%s - %s] %s\n",
						formatClock(segment.Start), formatClock(segment.End), truncate(segment.Text, 100))
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}
