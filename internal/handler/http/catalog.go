package http

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Radioacti1ve/MEOWShop/internal/domain"
	"github.com/Radioacti1ve/MEOWShop/internal/repository"
	"github.com/Radioacti1ve/MEOWShop/internal/service"
	"github.com/Radioacti1ve/MEOWShop/pkg/httputil"
	"github.com/Radioacti1ve/MEOWShop/pkg/validator"
)

// Parameter defaults applied when the query string omits them.
const (
	defaultPage     = 1
	defaultPageSize = 20
	defaultLimit    = 5
)

// Query-string bindings, validated before any service call.
type searchParams struct {
	Query    string `validate:"required"`
	Page     int    `validate:"gte=1"`
	PageSize int    `validate:"gte=1,lte=100"`
}

type listParams struct {
	Page     int `validate:"gte=1"`
	PageSize int `validate:"gte=1,lte=100"`
}

type limitParam struct {
	Limit int `validate:"gte=1,lte=20"`
}

// CatalogHandler handles HTTP requests for search and catalog endpoints.
type CatalogHandler struct {
	search  *service.SearchService
	catalog *service.CatalogService
	logger  *slog.Logger
}

// NewCatalogHandler creates a new catalog HTTP handler.
func NewCatalogHandler(search *service.SearchService, catalog *service.CatalogService, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{
		search:  search,
		catalog: catalog,
		logger:  logger,
	}
}

// intParam parses an optional positive-integer query parameter. A missing
// parameter yields the fallback; a non-numeric one reports a 400 and returns
// false. Range checks happen afterwards through the tagged param structs.
func intParam(w http.ResponseWriter, r *http.Request, name string, fallback int) (int, bool) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return fallback, true
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_PARAMETER", Message: name + " must be a valid number"},
		})
		return 0, false
	}
	return n, true
}

// Search handles GET /api/v1/search
func (h *CatalogHandler) Search(w http.ResponseWriter, r *http.Request) {
	params := searchParams{
		Query: strings.TrimSpace(r.URL.Query().Get("q")),
	}

	var ok bool
	if params.Page, ok = intParam(w, r, "page", defaultPage); !ok {
		return
	}
	if params.PageSize, ok = intParam(w, r, "page_size", defaultPageSize); !ok {
		return
	}
	if err := validator.Validate(params); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	req := &domain.SearchRequest{
		Query:    params.Query,
		Page:     params.Page,
		PageSize: params.PageSize,
	}
	if v := r.URL.Query().Get("category"); v != "" {
		req.Category = &v
	}

	result, err := h.search.Search(r.Context(), req)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]any{
		"total":     result.Total,
		"page":      req.Page,
		"page_size": req.PageSize,
		"items":     result.Items,
	}})
}

// Suggest handles GET /api/v1/search/suggest
func (h *CatalogHandler) Suggest(w http.ResponseWriter, r *http.Request) {
	prefix := strings.TrimSpace(r.URL.Query().Get("q"))
	if prefix == "" {
		httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]any{"suggestions": []domain.Suggestion{}}})
		return
	}

	limit, ok := intParam(w, r, "limit", defaultLimit)
	if !ok {
		return
	}
	if err := validator.Validate(limitParam{Limit: limit}); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	suggestions, err := h.search.Suggest(r.Context(), prefix, limit)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]any{"suggestions": suggestions}})
}

// Similar handles GET /api/v1/products/{id}/similar
func (h *CatalogHandler) Similar(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	limit, ok := intParam(w, r, "limit", defaultLimit)
	if !ok {
		return
	}
	if err := validator.Validate(limitParam{Limit: limit}); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	items, err := h.search.Similar(r.Context(), id, limit)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]any{"items": items}})
}

// ProductDetail handles GET /api/v1/products/{id}
func (h *CatalogHandler) ProductDetail(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	detail, err := h.catalog.ProductDetail(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: detail})
}

// ListProducts handles GET /api/v1/products
func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	filter := repository.ProductFilter{}
	if v := r.URL.Query().Get("category"); v != "" {
		filter.Category = &v
	}

	var (
		params listParams
		ok     bool
	)
	if params.Page, ok = intParam(w, r, "page", defaultPage); !ok {
		return
	}
	if params.PageSize, ok = intParam(w, r, "page_size", defaultPageSize); !ok {
		return
	}
	if err := validator.Validate(params); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}
	filter.Page = params.Page
	filter.PageSize = params.PageSize

	details, total, err := h.catalog.ListProducts(r.Context(), filter)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	if details == nil {
		details = []domain.ProductDetail{}
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]any{
		"total":     total,
		"page":      filter.Page,
		"page_size": filter.PageSize,
		"items":     details,
	}})
}
