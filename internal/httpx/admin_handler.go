package httpx

import (
	"context"
	"net/http"

	"github.com/Shazidulislam/final-project-plant-server/internal/orders"
	"github.com/go-chi/chi/v5"
)

type AdminHandler struct {
	Orders *orders.Service
	Gate   *Gate
}

func (h *AdminHandler) Register(r chi.Router) {
	r.With(h.Gate.RequireAuth, h.Gate.RequireAdmin).Get("/admin-state", h.stats)
}

func (h *AdminHandler) stats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readTimeout)
	defer cancel()

	st, err := h.Orders.Stats(ctx)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}
