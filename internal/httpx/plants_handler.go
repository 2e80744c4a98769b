package httpx

import (
	"context"
	"errors"
	"net/http"

	"github.com/Shazidulislam/final-project-plant-server/internal/docstore"
	"github.com/Shazidulislam/final-project-plant-server/internal/plants"
	"github.com/go-chi/chi/v5"
)

type PlantsHandler struct {
	Plants *plants.Service
}

type adjustQuantityReq struct {
	UpdateQuantity float64          `json:"updateQuantity"`
	Status         plants.Direction `json:"status"`
}

func (h *PlantsHandler) Register(r chi.Router) {
	r.Post("/add-plant", h.addPlant)
	r.Get("/plants", h.listPlants)
	r.Get("/plant/{id}", h.getPlant)
	r.Patch("/update_plant_quantity/{id}", h.adjustQuantity)
}

func (h *PlantsHandler) addPlant(w http.ResponseWriter, r *http.Request) {
	var plant docstore.Document
	if err := decode(w, r, plantSchema, &plant); err != nil {
		writeError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), writeTimeout)
	defer cancel()

	res, err := h.Plants.Add(ctx, plant)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *PlantsHandler) listPlants(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readTimeout)
	defer cancel()

	ps, err := h.Plants.List(ctx)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ps)
}

// getPlant answers null for a well-formed id with no plant behind it.
func (h *PlantsHandler) getPlant(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readTimeout)
	defer cancel()

	p, err := h.Plants.Get(ctx, chi.URLParam(r, "id"))
	if errors.Is(err, plants.ErrNotFound) {
		writeJSON(w, http.StatusOK, nil)
		return
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *PlantsHandler) adjustQuantity(w http.ResponseWriter, r *http.Request) {
	var req adjustQuantityReq
	if err := decode(w, r, quantitySchema, &req); err != nil {
		writeError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), writeTimeout)
	defer cancel()

	res, err := h.Plants.AdjustQuantity(ctx, chi.URLParam(r, "id"), req.UpdateQuantity, req.Status)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
