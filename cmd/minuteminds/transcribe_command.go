package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"minuteminds/internal/config"
)

func newTranscribeCommand(ctx *commandContext) *cobra.Command {
	var denoise bool
	var noDenoise bool

	cmd := &cobra.Command{
		Use:   "transcribe <audio-file>",
		Short: "Upload a recording and transcribe it",
		Long: "Uploads an audio recording and installs the transcript as the current " +
			"document. Any summary, key items, or translations from a previous " +
			"transcript are discarded.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.ExpandPath(args[0])
			if err != nil {
				return err
			}
			file, err := os.Open(path)
			if err != nil {
				return fmt.Errorf("open recording: %w", err)
			}
			defer file.Close()

			useDenoise := ctx.config.Transcribe.Denoise
			if cmd.Flags().Changed("denoise") {
				useDenoise = denoise
			}
			if noDenoise {
				useDenoise = false
			}

			filename := filepath.Base(path)
			if err := ctx.pipeline.Transcribe(cmd.Context(), filename, file, useDenoise); err != nil {
				return userError(err)
			}

			doc := ctx.pipeline.Document()
			if doc.ID == "" {
				// Duplicate invocation while a transcription was in flight.
				fmt.Fprintln(cmd.OutOrStdout(), "Transcription already in progress")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Transcribed %s (%d segments)\n", filename, len(doc.Segments))
			fmt.Fprintln(cmd.OutOrStdout(), truncate(doc.Transcript, 400))

			if notifyErr := ctx.notifier.NotifyTranscribed(cmd.Context(), filename, len(doc.Segments)); notifyErr != nil {
				ctx.logger.Warn("transcription notification not sent")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&denoise, "denoise", false, "Denoise the audio before transcription")
	cmd.Flags().BoolVar(&noDenoise, "no-denoise", false, "Skip denoising even when enabled in config")
	return cmd
}
