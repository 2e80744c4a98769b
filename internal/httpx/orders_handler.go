package httpx

import (
	"context"
	"net/http"

	"github.com/Shazidulislam/final-project-plant-server/internal/docstore"
	"github.com/Shazidulislam/final-project-plant-server/internal/orders"
	"github.com/go-chi/chi/v5"
)

type OrdersHandler struct {
	Orders *orders.Service
}

type updateStatusReq struct {
	Status orders.Status `json:"status"`
}

func (h *OrdersHandler) Register(r chi.Router) {
	r.Post("/orders", h.createOrder)
	r.Get("/customer/orders/{email}", h.listCustomerOrders)
	r.Get("/orders/seller/{email}", h.listSellerOrders)
	r.Patch("/orders/status/{id}", h.updateStatus)
	r.Patch("/orders/status/cancle/{id}", h.cancelOrder)
}

// createOrder stores the order as submitted; stock and the plant reference
// are left to the client flow.
func (h *OrdersHandler) createOrder(w http.ResponseWriter, r *http.Request) {
	var order docstore.Document
	if err := decode(w, r, orderSchema, &order); err != nil {
		writeError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), writeTimeout)
	defer cancel()

	res, err := h.Orders.Create(ctx, order)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *OrdersHandler) listCustomerOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readTimeout)
	defer cancel()

	list, err := h.Orders.ListByCustomer(ctx, pathParam(r, "email"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *OrdersHandler) listSellerOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readTimeout)
	defer cancel()

	list, err := h.Orders.ListBySeller(ctx, pathParam(r, "email"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *OrdersHandler) updateStatus(w http.ResponseWriter, r *http.Request) {
	var req updateStatusReq
	if err := decode(w, r, statusSchema, &req); err != nil {
		writeError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), writeTimeout)
	defer cancel()

	res, err := h.Orders.UpdateStatus(ctx, chi.URLParam(r, "id"), req.Status)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *OrdersHandler) cancelOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), writeTimeout)
	defer cancel()

	res, err := h.Orders.Cancel(ctx, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
