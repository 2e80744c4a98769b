package httpx

import (
	"context"
	"net/http"

	"github.com/Shazidulislam/final-project-plant-server/internal/payment"
	"github.com/go-chi/chi/v5"
)

type PaymentHandler struct {
	Bridge *payment.Bridge
}

type paymentIntentReq struct {
	PlantID  string `json:"plantId"`
	Quantity int64  `json:"quantity"`
}

func (h *PaymentHandler) Register(r chi.Router) {
	r.Post("/create-payment-intent", h.createIntent)
}

func (h *PaymentHandler) createIntent(w http.ResponseWriter, r *http.Request) {
	var req paymentIntentReq
	if err := decode(w, r, paymentSchema, &req); err != nil {
		writeError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), writeTimeout)
	defer cancel()

	secret, err := h.Bridge.CreateIntent(ctx, req.PlantID, req.Quantity)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"secret": secret})
}
