package httpx

import (
	"net/http"

	"github.com/Shazidulislam/final-project-plant-server/internal/auth"
	"github.com/go-chi/chi/v5"
)

type AuthHandler struct {
	Tokens  *auth.Tokens
	Cookies auth.Cookies
}

func (h *AuthHandler) Register(r chi.Router) {
	r.Post("/jwt", h.issue)
	r.Get("/logout", h.logout)
}

// issue signs whatever identity payload the client sends, as long as it
// carries an email, and sets it as the session cookie.
func (h *AuthHandler) issue(w http.ResponseWriter, r *http.Request) {
	var payload map[string]any
	if err := decode(w, r, tokenSchema, &payload); err != nil {
		writeError(w, r, err)
		return
	}
	token, err := h.Tokens.Sign(payload)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.Cookies.Set(w, token)
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *AuthHandler) logout(w http.ResponseWriter, r *http.Request) {
	h.Cookies.Clear(w)
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
