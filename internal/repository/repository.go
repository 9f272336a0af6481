package repository

import (
	"context"

	"github.com/Radioacti1ve/MEOWShop/internal/domain"
)

// ProductFilter defines filter criteria for listing products.
type ProductFilter struct {
	Category *string
	Page     int
	PageSize int
}

// CatalogRepository reads product state from the relational store. It is the
// single source of the canonical join/aggregate projection used both by the
// index synchronizer and by the detail/list views.
type CatalogRepository interface {
	// FetchAllDocuments returns the full document projection for every product.
	FetchAllDocuments(ctx context.Context) ([]domain.ProductDocument, error)

	// FetchDocument returns the document projection for a single product.
	// Returns ErrNotFound if the relational row is absent.
	FetchDocument(ctx context.Context, productID string) (*domain.ProductDocument, error)

	// FetchProduct returns a product card without the rating aggregate;
	// the caller merges the cached rating in.
	FetchProduct(ctx context.Context, productID string) (*domain.ProductDetail, error)

	// ListProducts returns product cards matching the filter plus the total count.
	ListProducts(ctx context.Context, filter ProductFilter) ([]domain.ProductDetail, int, error)

	// AverageRating computes the rating aggregate for one product.
	// A product with no comments yields nil, not an error.
	AverageRating(ctx context.Context, productID string) (*float64, error)
}

// RatingCache is a TTL key/value store for serialized rating values.
type RatingCache interface {
	// Get returns the cached value, or ErrNotFound on a cache miss.
	Get(ctx context.Context, productID string) (string, error)

	// Set stores the value under the cache's TTL domain.
	Set(ctx context.Context, productID, value string) error
}
