package main

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/canchapp/canchapp/internal/httputil"
	"github.com/canchapp/canchapp/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

func idParam(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %s is not a valid id", service.ErrInvalid, name)
	}
	return id, nil
}

func queryFloat(r *http.Request, name string) (*float64, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be a number", service.ErrInvalid, name)
	}
	return &f, nil
}

func queryInt(r *http.Request, name string, def int) (int, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", service.ErrInvalid, name)
	}
	return n, nil
}

// withID adapts handlers keyed by the {id} URL parameter.
func withID(fn func(w http.ResponseWriter, r *http.Request, id uuid.UUID)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := idParam(r, "id")
		if err != nil {
			httputil.Error(w, r, err)
			return
		}
		fn(w, r, id)
	}
}

// respond writes v with status, or the error.
func respond(w http.ResponseWriter, r *http.Request, status int, v any, err error) {
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	if v == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	httputil.JSON(w, status, v)
}

// decode reads the JSON body and reports whether the handler should go on.
func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := httputil.DecodeJSON(w, r, dst); err != nil {
		httputil.Error(w, r, err)
		return false
	}
	return true
}

func invalidParam(name string) error {
	return fmt.Errorf("%w: %s is missing or malformed", service.ErrInvalid, name)
}
