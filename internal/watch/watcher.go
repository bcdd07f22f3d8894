// Package watch monitors a directory for new audio recordings and feeds them
// into the transcription pipeline.
package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"minuteminds/internal/logging"
)

// Handler processes one newly arrived audio file.
type Handler func(ctx context.Context, path string) error

var audioExtensions = map[string]struct{}{
	".wav":  {},
	".mp3":  {},
	".m4a":  {},
	".ogg":  {},
	".flac": {},
	".webm": {},
}

// Watcher monitors a directory and hands new audio files to a handler one at
// a time. Recordings arrive sequentially from a single device, so there is
// no concurrent processing.
type Watcher struct {
	dir     string
	settle  time.Duration
	handler Handler
	logger  *slog.Logger
	fs      *fsnotify.Watcher
}

// New builds a watcher over dir. The settle delay gives the recorder time to
// finish writing before the file is picked up.
func New(dir string, settle time.Duration, handler Handler, logger *slog.Logger) (*Watcher, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("watch directory required")
	}
	if handler == nil {
		return nil, errors.New("handler required")
	}
	if settle <= 0 {
		settle = 500 * time.Millisecond
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create file watcher: %w", err)
	}
	if err := fs.Add(dir); err != nil {
		_ = fs.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}

	return &Watcher{
		dir:     dir,
		settle:  settle,
		handler: handler,
		logger:  logging.NewComponentLogger(logger, "watch"),
		fs:      fs,
	}, nil
}

// Start blocks, processing new audio files until the context is cancelled.
func (w *Watcher) Start(ctx context.Context) error {
	w.logger.Info("watching for recordings",
		logging.String("dir", w.dir),
		logging.Duration("settle", w.settle))

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("watcher stopped")
			return ctx.Err()

		case event, ok := <-w.fs.Events:
			if !ok {
				return errors.New("watcher events channel closed")
			}
			if !event.Has(fsnotify.Create) {
				continue
			}
			if !isAudioFile(event.Name) {
				w.logger.Debug("ignoring non-audio file", logging.String("path", event.Name))
				continue
			}

			w.logger.Info("recording detected", logging.String("path", event.Name))
			select {
			case <-time.After(w.settle):
			case <-ctx.Done():
				return ctx.Err()
			}

			if err := w.handler(ctx, event.Name); err != nil {
				w.logger.Error("recording not processed",
					logging.String("path", event.Name),
					logging.Error(err))
			}

		case err, ok := <-w.fs.Errors:
			if !ok {
				return errors.New("watcher errors channel closed")
			}
			w.logger.Error("watcher error", logging.Error(err))
		}
	}
}

// Close releases the underlying file watcher.
func (w *Watcher) Close() error {
	return w.fs.Close()
}

func isAudioFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	_, ok := audioExtensions[ext]
	return ok
}
