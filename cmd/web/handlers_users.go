package main

import (
	"net/http"

	"github.com/canchapp/canchapp/internal/service"
	users "github.com/canchapp/canchapp/internal/user"
	"github.com/google/uuid"
)

func (a *app) me(w http.ResponseWriter, r *http.Request) {
	u, err := a.users.Me(r.Context())
	respond(w, r, http.StatusOK, u, err)
}

func (a *app) updateMe(w http.ResponseWriter, r *http.Request) {
	var in service.ProfileInput
	if !decode(w, r, &in) {
		return
	}
	u, err := a.users.UpdateMe(r.Context(), in)
	respond(w, r, http.StatusOK, u, err)
}

func (a *app) listUsers(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", 50)
	if err != nil {
		respond(w, r, 0, nil, err)
		return
	}
	offset, err := queryInt(r, "offset", 0)
	if err != nil {
		respond(w, r, 0, nil, err)
		return
	}
	list, err := a.users.List(r.Context(), limit, offset)
	respond(w, r, http.StatusOK, list, err)
}

func (a *app) setRole(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	var in struct {
		Role users.Role `json:"role"`
	}
	if !decode(w, r, &in) {
		return
	}
	respond(w, r, 0, nil, a.users.SetRole(r.Context(), id, in.Role))
}
