package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"minuteminds/internal/pipeline"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show session and pipeline state",
		RunE: func(cmd *cobra.Command, args []string) error {
			doc := ctx.pipeline.Document()
			stages := ctx.pipeline.Stages()

			if asJSON {
				principal, _ := ctx.session.Principal()
				return writeJSON(cmd, map[string]any{
					"session":   ctx.session.State().String(),
					"principal": principal,
					"document":  doc,
					"stages":    stages,
				})
			}

			out := cmd.OutOrStdout()
			if principal, ok := ctx.session.Principal(); ok {
				fmt.Fprintf(out, "Session: verified as %s <%s>\n", principal.Name, principal.Email)
			} else {
				fmt.Fprintf(out, "Session: %s\n", ctx.session.State())
			}

			if !doc.HasTranscript() {
				fmt.Fprintln(out, "Document: none")
				return nil
			}
			fmt.Fprintf(out, "Document: %s (%s)\n", doc.ID, doc.Filename)
			fmt.Fprintf(out, "  summary: %s  items: %d  translations: %d\n",
				yesNo(doc.Summary != nil), len(doc.KeyItems), len(doc.Translations))

			keys := make([]string, 0, len(stages))
			for key := range stages {
				keys = append(keys, key)
			}
			sort.Strings(keys)

			rows := make([][]string, 0, len(keys))
			for _, key := range keys {
				status := stages[key]
				rows = append(rows, []string{stageLabel(key), string(status.State), status.ErrorMessage})
			}
			fmt.Fprintln(out, renderTable([]string{"Stage", "State", "Message"}, rows, nil))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

// stageLabel names parameterised stages for display.
func stageLabel(key string) string {
	switch key {
	case pipeline.StageTranscribe:
		return "Transcribe"
	case pipeline.StageSummarize:
		return "Summarize"
	case pipeline.StageItems:
		return "Extract items"
	default:
		return key
	}
}
