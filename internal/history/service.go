package history

import (
	"context"
	"errors"
	"log/slog"

	"minuteminds/internal/gateway"
	"minuteminds/internal/logging"
	"minuteminds/internal/services"
)

// Lister is the slice of the gateway the history service depends on.
type Lister interface {
	ListDocuments(ctx context.Context) ([]gateway.DocumentSummary, error)
}

// Service serves the transcription history, refreshing a local cache from
// the backend and falling back to the cache when the backend is unreachable.
type Service struct {
	lister Lister
	store  *Store
	logger *slog.Logger
}

// NewService builds a history service over an open cache store.
func NewService(lister Lister, store *Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Service{
		lister: lister,
		store:  store,
		logger: logging.NewComponentLogger(logger, "history"),
	}
}

// List returns the transcription history, newest first. Fresh data replaces
// the cache; a transport failure degrades to the last cached listing.
func (s *Service) List(ctx context.Context) ([]gateway.DocumentSummary, bool, error) {
	docs, err := s.lister.ListDocuments(ctx)
	if err != nil {
		if errors.Is(err, services.ErrTransport) && s.store != nil {
			cached, cacheErr := s.store.List(ctx)
			if cacheErr == nil {
				s.logger.Warn("backend unreachable; serving cached history",
					logging.Int("documents", len(cached)))
				return cached, true, nil
			}
			s.logger.Warn("history cache unreadable", logging.Error(cacheErr))
		}
		return nil, false, err
	}

	if s.store != nil {
		if cacheErr := s.store.ReplaceAll(ctx, docs); cacheErr != nil {
			s.logger.Warn("history cache not updated", logging.Error(cacheErr))
		}
	}
	return docs, false, nil
}
