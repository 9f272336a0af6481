package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Radioacti1ve/MEOWShop/internal/domain"
	"github.com/Radioacti1ve/MEOWShop/internal/engine/memory"
	"github.com/Radioacti1ve/MEOWShop/internal/repository"
	"github.com/Radioacti1ve/MEOWShop/internal/service"
	apperrors "github.com/Radioacti1ve/MEOWShop/pkg/errors"
	"github.com/Radioacti1ve/MEOWShop/pkg/health"
)

// stubRepo backs the catalog service with a fixed product set.
type stubRepo struct {
	docs map[string]domain.ProductDocument
}

func (s *stubRepo) FetchAllDocuments(context.Context) ([]domain.ProductDocument, error) {
	docs := make([]domain.ProductDocument, 0, len(s.docs))
	for _, doc := range s.docs {
		docs = append(docs, doc)
	}
	return docs, nil
}

func (s *stubRepo) FetchDocument(_ context.Context, id string) (*domain.ProductDocument, error) {
	doc, ok := s.docs[id]
	if !ok {
		return nil, apperrors.NotFound("product", id)
	}
	return &doc, nil
}

func (s *stubRepo) FetchProduct(_ context.Context, id string) (*domain.ProductDetail, error) {
	doc, ok := s.docs[id]
	if !ok {
		return nil, apperrors.NotFound("product", id)
	}
	return &domain.ProductDetail{
		ProductID:   doc.ProductID,
		ProductName: doc.ProductName,
		Category:    doc.Category,
		Price:       doc.Price,
		InStock:     doc.InStock,
		Status:      doc.Status,
	}, nil
}

func (s *stubRepo) ListProducts(_ context.Context, filter repository.ProductFilter) ([]domain.ProductDetail, int, error) {
	var details []domain.ProductDetail
	for _, doc := range s.docs {
		if filter.Category != nil && doc.Category != *filter.Category {
			continue
		}
		details = append(details, domain.ProductDetail{
			ProductID:   doc.ProductID,
			ProductName: doc.ProductName,
			Category:    doc.Category,
			Price:       doc.Price,
		})
	}
	return details, len(details), nil
}

func (s *stubRepo) AverageRating(context.Context, string) (*float64, error) {
	return nil, nil
}

// stubCache is always empty and accepts every write.
type stubCache struct{}

func (stubCache) Get(_ context.Context, id string) (string, error) {
	return "", apperrors.NotFound("rating", id)
}
func (stubCache) Set(context.Context, string, string) error { return nil }

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	repo := &stubRepo{docs: map[string]domain.ProductDocument{
		"1": {ProductID: "1", ProductName: "Wireless Mouse", Category: "electronics",
			Price: 29.99, InStock: 12, Status: domain.StatusAvailable},
		"2": {ProductID: "2", ProductName: "Wireless Keyboard", Category: "electronics",
			Price: 49.99, InStock: 5, Status: domain.StatusAvailable},
	}}

	eng := memory.New()
	docs, err := repo.FetchAllDocuments(context.Background())
	require.NoError(t, err)
	require.NoError(t, eng.RebuildAll(context.Background(), docs))

	searchService := service.NewSearchService(eng, logger)
	syncService := service.NewSyncService(repo, eng, logger)
	ratingService := service.NewRatingService(repo, stubCache{}, stubCache{}, logger)
	catalogService := service.NewCatalogService(repo, ratingService, logger)

	return NewRouter(
		searchService,
		catalogService,
		syncService,
		health.NewHandler(),
		CORSConfig{Environment: "development"},
		logger,
	)
}

func doGet(t *testing.T, router http.Handler, target string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var body map[string]any
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	return w, body
}

func TestSearchEndpoint(t *testing.T) {
	router := newTestRouter(t)

	w, body := doGet(t, router, "/api/v1/search/?q=wireless")
	assert.Equal(t, http.StatusOK, w.Code)

	data := body["data"].(map[string]any)
	assert.Equal(t, float64(2), data["total"])
	assert.Equal(t, float64(1), data["page"])
	assert.Equal(t, float64(20), data["page_size"])
	assert.Len(t, data["items"].([]any), 2)
}

func TestSearchEndpoint_EmptyQueryIs400(t *testing.T) {
	router := newTestRouter(t)

	w, body := doGet(t, router, "/api/v1/search/")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	errObj := body["error"].(map[string]any)
	assert.Equal(t, "VALIDATION_ERROR", errObj["code"])
	assert.Contains(t, errObj["fields"].(map[string]any), "Query")
}

func TestSearchEndpoint_BadPageParamIs400(t *testing.T) {
	router := newTestRouter(t)

	w, body := doGet(t, router, "/api/v1/search/?q=mouse&page=abc")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	errObj := body["error"].(map[string]any)
	assert.Equal(t, "INVALID_PARAMETER", errObj["code"])
}

func TestSearchEndpoint_OutOfRangePageSizeIs400(t *testing.T) {
	router := newTestRouter(t)

	w, body := doGet(t, router, "/api/v1/search/?q=mouse&page_size=500")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	errObj := body["error"].(map[string]any)
	assert.Equal(t, "VALIDATION_ERROR", errObj["code"])
	assert.Contains(t, errObj["fields"].(map[string]any), "PageSize")
}

func TestSearchEndpoint_ZeroPageIs400(t *testing.T) {
	router := newTestRouter(t)

	w, body := doGet(t, router, "/api/v1/search/?q=mouse&page=0")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	errObj := body["error"].(map[string]any)
	assert.Equal(t, "VALIDATION_ERROR", errObj["code"])
	assert.Contains(t, errObj["fields"].(map[string]any), "Page")
}

func TestSuggestEndpoint(t *testing.T) {
	router := newTestRouter(t)

	w, body := doGet(t, router, "/api/v1/search/suggest?q=wire")
	assert.Equal(t, http.StatusOK, w.Code)

	data := body["data"].(map[string]any)
	assert.Len(t, data["suggestions"].([]any), 2)
}

func TestSuggestEndpoint_EmptyPrefixReturnsEmptyList(t *testing.T) {
	router := newTestRouter(t)

	w, body := doGet(t, router, "/api/v1/search/suggest")
	assert.Equal(t, http.StatusOK, w.Code)

	data := body["data"].(map[string]any)
	assert.Empty(t, data["suggestions"])
}

func TestSuggestEndpoint_OutOfRangeLimitIs400(t *testing.T) {
	router := newTestRouter(t)

	w, body := doGet(t, router, "/api/v1/search/suggest?q=wire&limit=21")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	errObj := body["error"].(map[string]any)
	assert.Equal(t, "VALIDATION_ERROR", errObj["code"])
	assert.Contains(t, errObj["fields"].(map[string]any), "Limit")
}

func TestSimilarEndpoint(t *testing.T) {
	router := newTestRouter(t)

	w, body := doGet(t, router, "/api/v1/products/1/similar")
	assert.Equal(t, http.StatusOK, w.Code)

	data := body["data"].(map[string]any)
	items := data["items"].([]any)
	require.Len(t, items, 1)
	first := items[0].(map[string]any)
	assert.Equal(t, "2", first["product_id"])
}

func TestSimilarEndpoint_UnknownProductIs404(t *testing.T) {
	router := newTestRouter(t)

	w, body := doGet(t, router, "/api/v1/products/999/similar")
	assert.Equal(t, http.StatusNotFound, w.Code)

	errObj := body["error"].(map[string]any)
	assert.Equal(t, "NOT_FOUND", errObj["code"])
}

func TestProductDetailEndpoint(t *testing.T) {
	router := newTestRouter(t)

	w, body := doGet(t, router, "/api/v1/products/1")
	assert.Equal(t, http.StatusOK, w.Code)

	data := body["data"].(map[string]any)
	assert.Equal(t, "Wireless Mouse", data["product_name"])
	assert.Equal(t, domain.NoRatings, data["avg_rating"])
}

func TestProductDetailEndpoint_UnknownProductIs404(t *testing.T) {
	router := newTestRouter(t)

	w, _ := doGet(t, router, "/api/v1/products/999")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListProductsEndpoint(t *testing.T) {
	router := newTestRouter(t)

	w, body := doGet(t, router, "/api/v1/products/?page=1&page_size=10")
	assert.Equal(t, http.StatusOK, w.Code)

	data := body["data"].(map[string]any)
	assert.Equal(t, float64(2), data["total"])
	items := data["items"].([]any)
	require.Len(t, items, 2)

	first := items[0].(map[string]any)
	assert.Equal(t, domain.NoRatings, first["avg_rating"])
}

func TestSimilarEndpoint_OutOfRangeLimitIs400(t *testing.T) {
	router := newTestRouter(t)

	w, body := doGet(t, router, "/api/v1/products/1/similar?limit=0")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	errObj := body["error"].(map[string]any)
	assert.Equal(t, "VALIDATION_ERROR", errObj["code"])
}

func TestListProductsEndpoint_ZeroPageIs400(t *testing.T) {
	router := newTestRouter(t)

	w, body := doGet(t, router, "/api/v1/products/?page=0")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	errObj := body["error"].(map[string]any)
	assert.Equal(t, "VALIDATION_ERROR", errObj["code"])
	assert.Contains(t, errObj["fields"].(map[string]any), "Page")
}

func TestAdminReindexEndpoint(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/reindex", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusAccepted, w.Code)
}

func TestAdminReindexProductEndpoint(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/reindex/1", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAdminRemoveProductEndpoint(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/admin/index/1", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHealthLiveEndpoint(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}
