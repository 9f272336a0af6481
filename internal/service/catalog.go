package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Radioacti1ve/MEOWShop/internal/domain"
	"github.com/Radioacti1ve/MEOWShop/internal/repository"
	apperrors "github.com/Radioacti1ve/MEOWShop/pkg/errors"
)

// CatalogService serves product detail and listing reads straight from the
// relational store, with the rating aggregate merged in from the cache.
type CatalogService struct {
	repo    repository.CatalogRepository
	ratings *RatingService
	logger  *slog.Logger
}

// NewCatalogService creates a new catalog read service.
func NewCatalogService(repo repository.CatalogRepository, ratings *RatingService, logger *slog.Logger) *CatalogService {
	return &CatalogService{repo: repo, ratings: ratings, logger: logger}
}

// ProductDetail returns a single product card with its rating.
func (s *CatalogService) ProductDetail(ctx context.Context, productID string) (*domain.ProductDetail, error) {
	if strings.TrimSpace(productID) == "" {
		return nil, apperrors.InvalidInput("product id must not be empty")
	}

	detail, err := s.repo.FetchProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	rating, err := s.ratings.DetailRating(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("product detail %s: %w", productID, err)
	}
	detail.AvgRating = rating

	return detail, nil
}

// ListProducts returns a page of product cards with ratings, plus the total
// matching count. Pagination bounds are enforced at the HTTP boundary.
func (s *CatalogService) ListProducts(ctx context.Context, filter repository.ProductFilter) ([]domain.ProductDetail, int, error) {
	details, total, err := s.repo.ListProducts(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	for i := range details {
		rating, err := s.ratings.ListRating(ctx, details[i].ProductID)
		if err != nil {
			return nil, 0, fmt.Errorf("list rating %s: %w", details[i].ProductID, err)
		}
		details[i].AvgRating = rating
	}

	return details, total, nil
}
