package main

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"minuteminds/internal/export"
)

func newExportCommand(ctx *commandContext) *cobra.Command {
	var format string
	var local bool

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the minutes as a document",
		Long: "Fetches the rendered minutes from the backend and writes them into " +
			"the export directory. With --local the document is rendered on this " +
			"machine from the current pipeline state instead.",
		RunE: func(cmd *cobra.Command, args []string) error {
			chosen := strings.ToLower(strings.TrimSpace(format))
			if chosen == "" {
				chosen = ctx.config.Export.DefaultFormat
			}

			if local {
				return exportLocal(cmd, ctx, chosen)
			}

			payload, label, err := ctx.pipeline.Export(cmd.Context(), chosen)
			if err != nil {
				return userError(err)
			}
			if label == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "Export already in progress")
				return nil
			}

			path, err := export.Save(ctx.config.Paths.ExportDir, label, payload)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported to %s\n", path)

			if notifyErr := ctx.notifier.NotifyExported(cmd.Context(), label); notifyErr != nil {
				ctx.logger.Warn("export notification not sent")
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "Export format: docx or pdf (defaults to export.default_format)")
	cmd.Flags().BoolVar(&local, "local", false, "Render the document locally instead of fetching it")
	return cmd
}

func exportLocal(cmd *cobra.Command, ctx *commandContext, format string) error {
	if format != "docx" {
		return fmt.Errorf("local rendering supports docx only, not %s", format)
	}

	doc := ctx.pipeline.Document()
	if !doc.HasTranscript() {
		return fmt.Errorf("nothing to export; transcribe a recording first")
	}

	minutes := export.Minutes{
		Title:      strings.TrimSuffix(doc.Filename, filepath.Ext(doc.Filename)),
		Date:       time.Now(),
		Transcript: doc.Transcript,
	}
	for _, segment := range doc.Segments {
		minutes.Segments = append(minutes.Segments, export.SegmentLine{
			Start: segment.Start,
			End:   segment.End,
			Text:  segment.Text,
		})
	}
	if doc.Summary != nil {
		minutes.Summary = doc.Summary.Text
		minutes.Bullets = doc.Summary.BulletPoints
	}
	for _, item := range doc.KeyItems {
		minutes.Items = append(minutes.Items, export.ItemLine{
			Text:     item.Text,
			Assignee: item.Assignee,
			Done:     item.Done(),
		})
	}

	label := export.Label(time.Now(), format)
	path := filepath.Join(ctx.config.Paths.ExportDir, label)
	if err := export.RenderDocx(minutes, path); err != nil {
		return fmt.Errorf("render minutes: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Rendered %s\n", path)
	return nil
}
