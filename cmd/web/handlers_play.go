package main

import (
	"net/http"

	"github.com/canchapp/canchapp/internal/bracket"
	"github.com/canchapp/canchapp/internal/community"
	"github.com/canchapp/canchapp/internal/service"
	"github.com/google/uuid"
)

func (a *app) listTournaments(w http.ResponseWriter, r *http.Request) {
	list, err := a.tournaments.List(r.Context(), bracket.TournamentStatus(r.URL.Query().Get("status")))
	respond(w, r, http.StatusOK, list, err)
}

func (a *app) myTournaments(w http.ResponseWriter, r *http.Request) {
	list, err := a.tournaments.Mine(r.Context())
	respond(w, r, http.StatusOK, list, err)
}

func (a *app) getTournament(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	data, err := a.tournaments.GetTournamentData(r.Context(), id)
	respond(w, r, http.StatusOK, data, err)
}

func (a *app) createTournament(w http.ResponseWriter, r *http.Request) {
	var in service.TournamentInput
	if !decode(w, r, &in) {
		return
	}
	t, err := a.tournaments.Create(r.Context(), in)
	respond(w, r, http.StatusCreated, t, err)
}

func (a *app) registerTeam(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	var in service.TeamInput
	if !decode(w, r, &in) {
		return
	}
	entry, err := a.tournaments.Register(r.Context(), id, in)
	respond(w, r, http.StatusCreated, entry, err)
}

func (a *app) removeEntry(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	entryID, err := idParam(r, "entryID")
	if err == nil {
		err = a.tournaments.RemoveEntry(r.Context(), id, entryID)
	}
	respond(w, r, 0, nil, err)
}

func (a *app) startTournament(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	data, err := a.tournaments.Start(r.Context(), id)
	respond(w, r, http.StatusOK, data, err)
}

func (a *app) recordResult(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	var in service.ResultInput
	if !decode(w, r, &in) {
		return
	}
	m, err := a.tournaments.RecordResult(r.Context(), id, in)
	respond(w, r, http.StatusOK, m, err)
}

func (a *app) standings(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	list, err := a.tournaments.Standings(r.Context(), id)
	respond(w, r, http.StatusOK, list, err)
}

func (a *app) listPickups(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		respond(w, r, 0, nil, err)
		return
	}
	list, err := a.pickups.List(r.Context(), community.MatchFilter{
		Sport:    q.Get("sport"),
		City:     q.Get("city"),
		FromDate: q.Get("date"),
		Limit:    limit,
	})
	respond(w, r, http.StatusOK, list, err)
}

func (a *app) getPickup(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	d, err := a.pickups.Get(r.Context(), id)
	respond(w, r, http.StatusOK, d, err)
}

func (a *app) createPickup(w http.ResponseWriter, r *http.Request) {
	var in service.PickupInput
	if !decode(w, r, &in) {
		return
	}
	m, err := a.pickups.Create(r.Context(), in)
	respond(w, r, http.StatusCreated, m, err)
}

func (a *app) joinPickup(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	m, err := a.pickups.Join(r.Context(), id)
	respond(w, r, http.StatusOK, m, err)
}

func (a *app) leavePickup(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	m, err := a.pickups.Leave(r.Context(), id)
	respond(w, r, http.StatusOK, m, err)
}

func (a *app) cancelPickup(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	m, err := a.pickups.Cancel(r.Context(), id)
	respond(w, r, http.StatusOK, m, err)
}
