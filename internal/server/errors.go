package server

import (
	"errors"
	"net/http"

	"github.com/mmynk/tillpoint/internal/auth"
	"github.com/mmynk/tillpoint/internal/httpx"
	"github.com/mmynk/tillpoint/internal/service"
	"github.com/mmynk/tillpoint/internal/storage"
)

// statusOf maps a service error onto an HTTP status code.
func statusOf(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, storage.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, storage.ErrInsufficientPoints):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (h *handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusOf(err)
	if status == http.StatusInternalServerError {
		h.Logger.Error("Request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		httpx.Error(w, status, "internal error")
		return
	}
	httpx.Error(w, status, err.Error())
}
