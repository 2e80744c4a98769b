package httpx

import (
	"context"
	"errors"
	"net/http"

	"github.com/Shazidulislam/final-project-plant-server/internal/docstore"
	"github.com/Shazidulislam/final-project-plant-server/internal/users"
	"github.com/go-chi/chi/v5"
)

type UsersHandler struct {
	Users *users.Service
	Gate  *Gate
}

type roleResp struct {
	Role users.Role `json:"role,omitempty"`
}

type updateRoleReq struct {
	Role users.Role `json:"role"`
}

func (h *UsersHandler) Register(r chi.Router) {
	r.Post("/user", h.saveUser)
	r.Get("/user-role/{email}", h.getRole)
	r.With(h.Gate.RequireAuth, h.Gate.RequireAdmin).Patch("/user/role/update/{email}", h.updateRole)
	r.With(h.Gate.RequireAuth).Patch("/user/become-seller/{email}", h.becomeSeller)
	r.With(h.Gate.RequireAuth, h.Gate.RequireAdmin).Get("/manage_user", h.listUsers)
}

// saveUser runs on every login: first sight inserts, later calls refresh
// last_login.
func (h *UsersHandler) saveUser(w http.ResponseWriter, r *http.Request) {
	var user docstore.Document
	if err := decode(w, r, userSchema, &user); err != nil {
		writeError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), writeTimeout)
	defer cancel()

	res, err := h.Users.UpsertOnLogin(ctx, user)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// getRole answers 401 for an unknown email; the web client treats that as
// signed out.
func (h *UsersHandler) getRole(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readTimeout)
	defer cancel()

	role, err := h.Users.Role(ctx, pathParam(r, "email"))
	if errors.Is(err, users.ErrNotFound) {
		writeMessage(w, http.StatusUnauthorized, "user not found!")
		return
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, roleResp{Role: role})
}

func (h *UsersHandler) updateRole(w http.ResponseWriter, r *http.Request) {
	var req updateRoleReq
	if err := decode(w, r, roleSchema, &req); err != nil {
		writeError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), writeTimeout)
	defer cancel()

	res, err := h.Users.UpdateRole(ctx, pathParam(r, "email"), req.Role)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *UsersHandler) becomeSeller(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), writeTimeout)
	defer cancel()

	res, err := h.Users.RequestSeller(ctx, pathParam(r, "email"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]docstore.UpdateResult{"result": res})
}

// listUsers returns everyone but the signed-in admin.
func (h *UsersHandler) listUsers(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), readTimeout)
	defer cancel()

	us, err := h.Users.ListOthers(ctx, id.Email)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, us)
}
