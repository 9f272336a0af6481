package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Radioacti1ve/MEOWShop/internal/service"
	"github.com/Radioacti1ve/MEOWShop/pkg/httputil"
)

// AdminHandler handles administrative index maintenance endpoints.
type AdminHandler struct {
	sync   *service.SyncService
	logger *slog.Logger
}

// NewAdminHandler creates a new admin HTTP handler.
func NewAdminHandler(syncSvc *service.SyncService, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{sync: syncSvc, logger: logger}
}

// Reindex handles POST /api/v1/admin/reindex. The rebuild runs in the
// background: the swap is atomic, so searches stay consistent throughout.
func (h *AdminHandler) Reindex(w http.ResponseWriter, r *http.Request) {
	go func() {
		ctx := context.Background()
		count, err := h.sync.ReindexAll(ctx)
		if err != nil {
			h.logger.ErrorContext(ctx, "background reindex failed", "error", err)
			return
		}
		h.logger.InfoContext(ctx, "background reindex finished", "documents", count)
	}()

	httputil.WriteJSON(w, http.StatusAccepted, httputil.Response{Data: map[string]string{"status": "reindex started"}})
}

// ReindexProduct handles POST /api/v1/admin/reindex/{id}
func (h *AdminHandler) ReindexProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.sync.ReindexOne(r.Context(), id); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]string{"id": id, "status": "indexed"}})
}

// RemoveProduct handles DELETE /api/v1/admin/index/{id}
func (h *AdminHandler) RemoveProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.sync.Remove(r.Context(), id); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]string{"id": id, "status": "deleted"}})
}
