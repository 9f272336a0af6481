package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Radioacti1ve/MEOWShop/internal/domain"
	"github.com/Radioacti1ve/MEOWShop/internal/repository"
	apperrors "github.com/Radioacti1ve/MEOWShop/pkg/errors"
)

// RatingService serves the average-rating aggregate read-through: cache hit
// first, otherwise compute from the relational store and backfill the cache.
// Detail and list views use separate TTL domains because a stale rating is
// far more visible on a product page than in a listing row.
//
// The cache is an optimization only. Any cache failure is logged and the
// rating is computed directly; rating reads never fail because Redis did.
type RatingService struct {
	repo        repository.CatalogRepository
	detailCache repository.RatingCache
	listCache   repository.RatingCache
	logger      *slog.Logger
}

// NewRatingService creates a rating service over the two cache TTL domains.
func NewRatingService(repo repository.CatalogRepository, detailCache, listCache repository.RatingCache, logger *slog.Logger) *RatingService {
	return &RatingService{
		repo:        repo,
		detailCache: detailCache,
		listCache:   listCache,
		logger:      logger,
	}
}

// DetailRating returns the serialized rating for a product detail view.
func (s *RatingService) DetailRating(ctx context.Context, productID string) (string, error) {
	return s.rating(ctx, s.detailCache, productID)
}

// ListRating returns the serialized rating for a product list row.
func (s *RatingService) ListRating(ctx context.Context, productID string) (string, error) {
	return s.rating(ctx, s.listCache, productID)
}

func (s *RatingService) rating(ctx context.Context, cache repository.RatingCache, productID string) (string, error) {
	value, err := cache.Get(ctx, productID)
	if err == nil {
		return value, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		s.logger.Warn("rating cache read failed, computing directly", "product_id", productID, "error", err)
	}

	return s.computeAndStore(ctx, cache, productID)
}

// computeAndStore computes the aggregate from the relational store and
// backfills the cache. A product with no comments is cached too, under the
// explicit no-ratings sentinel, so cold products do not hammer the store.
func (s *RatingService) computeAndStore(ctx context.Context, cache repository.RatingCache, productID string) (string, error) {
	avg, err := s.repo.AverageRating(ctx, productID)
	if err != nil {
		return "", fmt.Errorf("compute rating %s: %w", productID, err)
	}

	value := domain.FormatRating(avg)
	if err := cache.Set(ctx, productID, value); err != nil {
		s.logger.Warn("rating cache write failed", "product_id", productID, "error", err)
	}
	return value, nil
}
