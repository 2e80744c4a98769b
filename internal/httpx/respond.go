package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/Shazidulislam/final-project-plant-server/internal/auth"
	"github.com/Shazidulislam/final-project-plant-server/internal/docstore"
	"github.com/Shazidulislam/final-project-plant-server/internal/payment"
	"github.com/Shazidulislam/final-project-plant-server/internal/plants"
	"github.com/Shazidulislam/final-project-plant-server/internal/users"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const (
	readTimeout  = 3 * time.Second
	writeTimeout = 5 * time.Second
)

// requestError is a client mistake reported verbatim with 400.
type requestError struct{ msg string }

func (e *requestError) Error() string { return e.msg }

func badRequest(format string, args ...any) error {
	return &requestError{msg: fmt.Sprintf(format, args...)}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"message": msg})
}

// writeError maps domain errors onto status codes. Server-side failures are
// logged with the request id; their details never reach the client.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var re *requestError
	switch {
	case errors.As(err, &re):
		writeMessage(w, http.StatusBadRequest, re.msg)
	case errors.Is(err, docstore.ErrInvalidID):
		writeMessage(w, http.StatusBadRequest, "invalid id")
	case errors.Is(err, users.ErrInvalidRole), errors.Is(err, auth.ErrNoEmail):
		writeMessage(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, plants.ErrNotFound):
		writeMessage(w, http.StatusNotFound, "Plant not found!")
	case errors.Is(err, users.ErrNotFound):
		writeMessage(w, http.StatusNotFound, "user not found!")
	case errors.Is(err, payment.ErrUnpriced):
		writeMessage(w, http.StatusUnprocessableEntity, "plant has no valid price")
	case errors.Is(err, payment.ErrProcessor):
		logFailure(r, err)
		writeMessage(w, http.StatusBadGateway, "payment processor unavailable")
	case errors.Is(err, docstore.ErrUnavailable), errors.Is(err, context.DeadlineExceeded):
		logFailure(r, err)
		writeMessage(w, http.StatusServiceUnavailable, "storage unavailable")
	default:
		logFailure(r, err)
		writeMessage(w, http.StatusInternalServerError, "internal error")
	}
}

func logFailure(r *http.Request, err error) {
	log.Printf("[%s] %s %s: %v", middleware.GetReqID(r.Context()), r.Method, r.URL.Path, err)
}

// pathParam returns the unescaped route parameter.
func pathParam(r *http.Request, name string) string {
	v := chi.URLParam(r, name)
	if u, err := url.PathUnescape(v); err == nil {
		return u
	}
	return v
}
