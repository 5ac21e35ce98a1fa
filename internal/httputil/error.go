package httputil

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/canchapp/canchapp/internal/booking"
	"github.com/canchapp/canchapp/internal/service"
)

func InternalServerError(w http.ResponseWriter, msg string, err error) {
	slog.Error(msg, "error", err)
	http.Error(w, "Internal Server Error", http.StatusInternalServerError)
}

func BadRequest(w http.ResponseWriter, msg string, err error) {
	if err != nil {
		slog.Warn("bad request", "message", msg, "error", err)
	} else {
		slog.Warn("bad request", "message", msg)
	}
	http.Error(w, msg, http.StatusBadRequest)
}

func NotFound(w http.ResponseWriter, msg string, err error) {
	if err != nil {
		slog.Warn("not found", "message", msg, "error", err)
	} else {
		slog.Warn("not found", "message", msg)
	}
	http.Error(w, msg, http.StatusNotFound)
}

// ErrorBody is the JSON shape of every API error.
type ErrorBody struct {
	Error string             `json:"error"`
	Field string             `json:"field,omitempty"`
	Rows  []service.RowError `json:"rows,omitempty"`
}

// StatusOf maps service errors to HTTP status codes. Unknown errors are 500.
func StatusOf(err error) int {
	var verr *booking.ValidationError
	switch {
	case errors.As(err, &verr), errors.Is(err, service.ErrInvalid):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrConflict):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// Error writes err as JSON. Internal errors are logged and their message is hidden.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusOf(err)
	if status == http.StatusInternalServerError {
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		JSON(w, status, ErrorBody{Error: "internal server error"})
		return
	}

	body := ErrorBody{Error: err.Error()}
	var verr *booking.ValidationError
	if errors.As(err, &verr) {
		body.Field = verr.Field
	}
	var ierr *service.ImportError
	if errors.As(err, &ierr) {
		body.Rows = ierr.Rows
	}
	slog.Warn("request rejected", "method", r.Method, "path", r.URL.Path, "status", status, "error", err)
	JSON(w, status, body)
}
