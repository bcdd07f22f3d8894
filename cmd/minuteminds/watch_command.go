package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"minuteminds/internal/watch"
)

func newWatchCommand(ctx *commandContext) *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Watch a directory and transcribe new recordings",
		Long: "Monitors a directory for new audio files and transcribes each one as " +
			"it arrives. Each new recording replaces the current document. Stop " +
			"with Ctrl-C.",
		RunE: func(cmd *cobra.Command, args []string) error {
			watchDir := strings.TrimSpace(dir)
			if watchDir == "" {
				watchDir = ctx.config.Watch.Dir
			}
			if watchDir == "" {
				return errors.New("no watch directory; set watch.dir in config or pass --dir")
			}

			settle := time.Duration(ctx.config.Watch.SettleMillis) * time.Millisecond
			handler := func(handlerCtx context.Context, path string) error {
				file, err := os.Open(path)
				if err != nil {
					return fmt.Errorf("open recording: %w", err)
				}
				defer file.Close()

				filename := filepath.Base(path)
				if err := ctx.pipeline.Transcribe(handlerCtx, filename, file, ctx.config.Transcribe.Denoise); err != nil {
					if notifyErr := ctx.notifier.NotifyError(handlerCtx, err, filename); notifyErr != nil {
						ctx.logger.Warn("error notification not sent")
					}
					return err
				}

				doc := ctx.pipeline.Document()
				fmt.Fprintf(cmd.OutOrStdout(), "Transcribed %s (%d segments)\n", filename, len(doc.Segments))
				if notifyErr := ctx.notifier.NotifyTranscribed(handlerCtx, filename, len(doc.Segments)); notifyErr != nil {
					ctx.logger.Warn("transcription notification not sent")
				}
				return nil
			}

			watcher, err := watch.New(watchDir, settle, handler, ctx.logger)
			if err != nil {
				return err
			}
			defer watcher.Close()

			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			fmt.Fprintf(cmd.OutOrStdout(), "Watching %s for recordings\n", watchDir)
			if err := watcher.Start(runCtx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&dir, "dir", "d", "", "Directory to watch (defaults to watch.dir)")
	return cmd
}
