package httpx

import (
	"context"
	"net/http"

	"github.com/Shazidulislam/final-project-plant-server/internal/auth"
)

// AdminChecker is satisfied by *users.Service.
type AdminChecker interface {
	IsAdmin(ctx context.Context, email string) (bool, error)
}

type Gate struct {
	Tokens *auth.Tokens
	Admins AdminChecker
	// AdminGuard off lets any valid token through RequireAdmin.
	AdminGuard bool
}

func (g *Gate) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ck, err := r.Cookie(auth.CookieName)
		if err != nil || ck.Value == "" {
			writeMessage(w, http.StatusUnauthorized, "unauthorized access")
			return
		}
		id, err := g.Tokens.Verify(ck.Value)
		if err != nil {
			writeMessage(w, http.StatusUnauthorized, "unauthorized access")
			return
		}
		next.ServeHTTP(w, r.WithContext(auth.WithIdentity(r.Context(), id)))
	})
}

// RequireAdmin must run after RequireAuth. The stored role is looked up on
// every request.
func (g *Gate) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !g.AdminGuard {
			next.ServeHTTP(w, r)
			return
		}
		id, ok := auth.IdentityFrom(r.Context())
		if !ok {
			writeMessage(w, http.StatusUnauthorized, "unauthorized access")
			return
		}
		ctx, cancel := context.WithTimeout(r.Context(), readTimeout)
		defer cancel()
		admin, err := g.Admins.IsAdmin(ctx, id.Email)
		if err != nil {
			writeError(w, r, err)
			return
		}
		if !admin {
			writeMessage(w, http.StatusForbidden, "Only admin can action")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// identity fetches the caller placed in the context by RequireAuth.
func identity(w http.ResponseWriter, r *http.Request) (auth.Identity, bool) {
	id, ok := auth.IdentityFrom(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "unauthorized access")
	}
	return id, ok
}
