package main

import (
	"net/http"

	"github.com/canchapp/canchapp/internal/booking"
	"github.com/canchapp/canchapp/internal/service"
	users "github.com/canchapp/canchapp/internal/user"
	"github.com/google/uuid"
)

func (a *app) searchCourts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	p := service.SearchParams{
		Query: q.Get("q"),
		Sport: q.Get("sport"),
		City:  q.Get("city"),
		Sort:  service.SortBy(q.Get("sort")),
	}
	lat, err := queryFloat(r, "lat")
	if err != nil {
		respond(w, r, 0, nil, err)
		return
	}
	lon, err := queryFloat(r, "lon")
	if err != nil {
		respond(w, r, 0, nil, err)
		return
	}
	radius, err := queryFloat(r, "radius_km")
	if err != nil {
		respond(w, r, 0, nil, err)
		return
	}
	p.Lat, p.Lon = lat, lon
	if radius != nil {
		p.RadiusKm = *radius
	}
	courts, err := a.courts.Search(r.Context(), p)
	respond(w, r, http.StatusOK, courts, err)
}

func (a *app) getCourt(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	court, err := a.courts.Get(r.Context(), id)
	respond(w, r, http.StatusOK, court, err)
}

func (a *app) myCourts(w http.ResponseWriter, r *http.Request) {
	courts, err := a.courts.Mine(r.Context())
	respond(w, r, http.StatusOK, courts, err)
}

func (a *app) createCourt(w http.ResponseWriter, r *http.Request) {
	var in service.CourtInput
	if !decode(w, r, &in) {
		return
	}
	court, err := a.courts.Create(r.Context(), in)
	respond(w, r, http.StatusCreated, court, err)
}

func (a *app) updateCourt(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	var in service.CourtInput
	if !decode(w, r, &in) {
		return
	}
	court, err := a.courts.Update(r.Context(), id, in)
	respond(w, r, http.StatusOK, court, err)
}

func (a *app) deleteCourt(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	respond(w, r, 0, nil, a.courts.Delete(r.Context(), id))
}

func (a *app) addPhoto(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	var in struct {
		URL string `json:"url"`
	}
	if !decode(w, r, &in) {
		return
	}
	photo, err := a.courts.AddPhoto(r.Context(), id, in.URL)
	respond(w, r, http.StatusCreated, photo, err)
}

func (a *app) removePhoto(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	photoID, err := idParam(r, "photoID")
	if err == nil {
		err = a.courts.RemovePhoto(r.Context(), id, photoID)
	}
	respond(w, r, 0, nil, err)
}

func (a *app) pendingCourts(w http.ResponseWriter, r *http.Request) {
	courts, err := a.courts.Pending(r.Context())
	respond(w, r, http.StatusOK, courts, err)
}

func (a *app) moderateCourt(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	var in struct {
		Approve bool   `json:"approve"`
		Reason  string `json:"reason"`
	}
	if !decode(w, r, &in) {
		return
	}
	court, err := a.courts.Moderate(r.Context(), id, in.Approve, in.Reason)
	respond(w, r, http.StatusOK, court, err)
}

func (a *app) listCollaborators(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	list, err := a.collaborators.List(r.Context(), id)
	respond(w, r, http.StatusOK, list, err)
}

func (a *app) addCollaborator(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	var in struct {
		Email string                 `json:"email"`
		Role  users.CollaboratorRole `json:"role"`
	}
	if !decode(w, r, &in) {
		return
	}
	c, err := a.collaborators.Add(r.Context(), id, in.Email, in.Role)
	respond(w, r, http.StatusCreated, c, err)
}

func (a *app) removeCollaborator(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	collaboratorID, err := idParam(r, "collaboratorID")
	if err == nil {
		err = a.collaborators.Remove(r.Context(), id, collaboratorID)
	}
	respond(w, r, 0, nil, err)
}

func (a *app) availability(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	slots, err := a.reservations.Availability(r.Context(), id, r.URL.Query().Get("date"))
	respond(w, r, http.StatusOK, slots, err)
}

func (a *app) quote(w http.ResponseWriter, r *http.Request) {
	var in service.QuoteInput
	if !decode(w, r, &in) {
		return
	}
	q, err := a.reservations.Quote(r.Context(), in)
	respond(w, r, http.StatusOK, q, err)
}

func (a *app) calendar(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	q := r.URL.Query()
	cal, err := a.reservations.Calendar(r.Context(), id, q.Get("from"), q.Get("to"))
	respond(w, r, http.StatusOK, cal, err)
}

func (a *app) conflicts(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	q := r.URL.Query()
	list, err := a.reservations.Conflicts(r.Context(), id, q.Get("from"), q.Get("to"))
	if list == nil {
		list = []booking.Conflict{}
	}
	respond(w, r, http.StatusOK, list, err)
}

func (a *app) block(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	var in service.BlockInput
	if !decode(w, r, &in) {
		return
	}
	res, err := a.reservations.Block(r.Context(), id, in)
	respond(w, r, http.StatusCreated, res, err)
}

func (a *app) createReservation(w http.ResponseWriter, r *http.Request) {
	var in service.ReservationInput
	if !decode(w, r, &in) {
		return
	}
	res, err := a.reservations.Create(r.Context(), in)
	respond(w, r, http.StatusCreated, res, err)
}

func (a *app) myReservations(w http.ResponseWriter, r *http.Request) {
	list, err := a.reservations.Mine(r.Context())
	respond(w, r, http.StatusOK, list, err)
}

func (a *app) getReservation(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	d, err := a.reservations.Get(r.Context(), id)
	respond(w, r, http.StatusOK, d, err)
}

func (a *app) cancelReservation(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	res, err := a.reservations.Cancel(r.Context(), id)
	respond(w, r, http.StatusOK, res, err)
}

func (a *app) confirmReservation(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	res, err := a.reservations.Confirm(r.Context(), id)
	respond(w, r, http.StatusOK, res, err)
}

func (a *app) listRules(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	rules, err := a.pricing.ListRules(r.Context(), id)
	respond(w, r, http.StatusOK, rules, err)
}

func (a *app) createRule(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	var in service.RuleInput
	if !decode(w, r, &in) {
		return
	}
	rule, err := a.pricing.CreateRule(r.Context(), id, in)
	respond(w, r, http.StatusCreated, rule, err)
}

func (a *app) updateRule(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	ruleID, err := idParam(r, "ruleID")
	if err != nil {
		respond(w, r, 0, nil, err)
		return
	}
	var in service.RuleInput
	if !decode(w, r, &in) {
		return
	}
	rule, err := a.pricing.UpdateRule(r.Context(), id, ruleID, in)
	respond(w, r, http.StatusOK, rule, err)
}

func (a *app) deleteRule(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	ruleID, err := idParam(r, "ruleID")
	if err == nil {
		err = a.pricing.DeleteRule(r.Context(), id, ruleID)
	}
	respond(w, r, 0, nil, err)
}

func (a *app) listPromotions(w http.ResponseWriter, r *http.Request) {
	list, err := a.pricing.ListPromotions(r.Context())
	respond(w, r, http.StatusOK, list, err)
}

func (a *app) createPromotion(w http.ResponseWriter, r *http.Request) {
	var in service.PromotionInput
	if !decode(w, r, &in) {
		return
	}
	p, err := a.pricing.CreatePromotion(r.Context(), in)
	respond(w, r, http.StatusCreated, p, err)
}

func (a *app) updatePromotion(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	var in service.PromotionInput
	if !decode(w, r, &in) {
		return
	}
	p, err := a.pricing.UpdatePromotion(r.Context(), id, in)
	respond(w, r, http.StatusOK, p, err)
}

func (a *app) deletePromotion(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	respond(w, r, 0, nil, a.pricing.DeletePromotion(r.Context(), id))
}

// validatePromotion checks ?code=&court_id=&date= without booking anything.
func (a *app) validatePromotion(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	courtID, err := uuid.Parse(q.Get("court_id"))
	if err != nil {
		respond(w, r, 0, nil, invalidParam("court_id"))
		return
	}
	p, err := a.pricing.ValidatePromotion(r.Context(), q.Get("code"), courtID, q.Get("date"))
	respond(w, r, http.StatusOK, p, err)
}

func (a *app) dashboard(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	d, err := a.analytics.OwnerDashboard(r.Context(), q.Get("from"), q.Get("to"))
	respond(w, r, http.StatusOK, d, err)
}

func (a *app) commissions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	report, err := a.analytics.CommissionSummary(r.Context(), q.Get("from"), q.Get("to"))
	respond(w, r, http.StatusOK, report, err)
}
