package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Radioacti1ve/MEOWShop/internal/domain"
	"github.com/Radioacti1ve/MEOWShop/internal/repository"
	apperrors "github.com/Radioacti1ve/MEOWShop/pkg/errors"
)

func newCatalogService(repo *fakeRepo) *CatalogService {
	ratings := NewRatingService(repo, newFakeCache(), newFakeCache(), testLogger())
	return NewCatalogService(repo, ratings, testLogger())
}

func TestProductDetail_MergesRating(t *testing.T) {
	repo := newFakeRepo()
	repo.docs["1"] = domain.ProductDocument{
		ProductID: "1", SellerID: "10", ProductName: "Wireless Mouse",
		Category: "electronics", Price: 29.99, InStock: 12,
		Status: domain.StatusAvailable, SellerName: "techstore",
	}
	repo.ratings["1"] = ratingValue(4.5)
	svc := newCatalogService(repo)

	detail, err := svc.ProductDetail(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, "Wireless Mouse", detail.ProductName)
	assert.Equal(t, "4.50", detail.AvgRating)
}

func TestProductDetail_NoCommentsShowsSentinel(t *testing.T) {
	repo := newFakeRepo()
	repo.docs["1"] = domain.ProductDocument{ProductID: "1", ProductName: "Mouse"}
	svc := newCatalogService(repo)

	detail, err := svc.ProductDetail(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, domain.NoRatings, detail.AvgRating)
}

func TestProductDetail_NotFound(t *testing.T) {
	svc := newCatalogService(newFakeRepo())

	_, err := svc.ProductDetail(context.Background(), "999")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestProductDetail_RejectsEmptyID(t *testing.T) {
	svc := newCatalogService(newFakeRepo())

	_, err := svc.ProductDetail(context.Background(), " ")
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestListProducts_MergesRatings(t *testing.T) {
	repo := newFakeRepo()
	repo.docs["1"] = domain.ProductDocument{ProductID: "1", ProductName: "Mouse", Category: "electronics"}
	repo.docs["2"] = domain.ProductDocument{ProductID: "2", ProductName: "Cat Tree", Category: "pets"}
	repo.ratings["1"] = ratingValue(4.5)
	svc := newCatalogService(repo)

	details, total, err := svc.ListProducts(context.Background(), repository.ProductFilter{
		Page: 1, PageSize: 20,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, total)

	byID := make(map[string]string, len(details))
	for _, d := range details {
		byID[d.ProductID] = d.AvgRating
	}
	assert.Equal(t, "4.50", byID["1"])
	assert.Equal(t, domain.NoRatings, byID["2"])
}
