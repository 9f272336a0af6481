package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/Radioacti1ve/MEOWShop/internal/domain"
	"github.com/Radioacti1ve/MEOWShop/internal/engine"
	apperrors "github.com/Radioacti1ve/MEOWShop/pkg/errors"
)

// SearchService delegates ranked read requests to the search engine. Request
// shape (non-empty query, pagination and limit bounds) is enforced at the
// HTTP boundary before a request reaches this service. Engine failures
// surface as 503s: the relational store being healthy does not make the
// search path servable.
type SearchService struct {
	engine engine.SearchEngine
	logger *slog.Logger
}

// NewSearchService creates a new search service.
func NewSearchService(eng engine.SearchEngine, logger *slog.Logger) *SearchService {
	return &SearchService{engine: eng, logger: logger}
}

// Search runs a ranked full-text query.
func (s *SearchService) Search(ctx context.Context, req *domain.SearchRequest) (*domain.SearchResult, error) {
	result, err := s.engine.Search(ctx, req)
	if err != nil {
		s.logger.Error("search query failed", "query", req.Query, "error", err)
		return nil, apperrors.Unavailable("search engine", err)
	}

	return result, nil
}

// Suggest returns autocomplete suggestions for a name prefix.
func (s *SearchService) Suggest(ctx context.Context, prefix string, limit int) ([]domain.Suggestion, error) {
	suggestions, err := s.engine.Suggest(ctx, prefix, limit)
	if err != nil {
		s.logger.Error("suggest query failed", "prefix", prefix, "error", err)
		return nil, apperrors.Unavailable("search engine", err)
	}

	return suggestions, nil
}

// Similar returns products similar to the given one. A product that is not
// indexed yields ErrNotFound rather than an empty result.
func (s *SearchService) Similar(ctx context.Context, productID string, limit int) ([]domain.ProductDocument, error) {
	items, err := s.engine.Similar(ctx, productID, limit)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
		s.logger.Error("similar query failed", "product_id", productID, "error", err)
		return nil, apperrors.Unavailable("search engine", err)
	}

	return items, nil
}
