// Package search finds past transcriptions by text query.
package search

import (
	"context"
	"log/slog"
	"strings"

	"minuteminds/internal/gateway"
	"minuteminds/internal/logging"
	"minuteminds/internal/services"
)

// Querier is the slice of the gateway the search service depends on.
type Querier interface {
	Search(ctx context.Context, query string) ([]gateway.SearchResult, error)
}

// AuthState exposes the session fact search gates on.
type AuthState interface {
	Verified() bool
}

// Service validates queries locally and delegates matching to the backend.
type Service struct {
	querier Querier
	auth    AuthState
	logger  *slog.Logger
}

// NewService builds a search service.
func NewService(querier Querier, auth AuthState, logger *slog.Logger) *Service {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Service{
		querier: querier,
		auth:    auth,
		logger:  logging.NewComponentLogger(logger, "search"),
	}
}

// Search returns documents whose transcripts match the query. A blank query
// is rejected locally without a gateway call.
func (s *Service) Search(ctx context.Context, query string) ([]gateway.SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, services.Wrap(services.ErrPrecondition, "search", "query", "search query required", nil)
	}
	if !s.auth.Verified() {
		return nil, services.Wrap(services.ErrPrecondition, "search", "query", "login required", nil)
	}

	results, err := s.querier.Search(ctx, query)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("search completed",
		logging.String("query", query),
		logging.Int("results", len(results)))
	return results, nil
}
