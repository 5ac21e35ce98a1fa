package commerce

import (
	"time"

	"github.com/google/uuid"
)

type Placement string

const (
	PlacementHome   Placement = "home"
	PlacementSearch Placement = "search"
	PlacementCourt  Placement = "court"
)

func (p Placement) Valid() bool {
	switch p {
	case PlacementHome, PlacementSearch, PlacementCourt:
		return true
	}
	return false
}

type Advertisement struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Title     string    `db:"title" json:"title"`
	ImageURL  string    `db:"image_url" json:"image_url"`
	LinkURL   string    `db:"link_url" json:"link_url"`
	Placement Placement `db:"placement" json:"placement"`
	Active    bool      `db:"active" json:"active"`
	StartsOn  string    `db:"starts_on" json:"starts_on"`
	EndsOn    string    `db:"ends_on" json:"ends_on"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// RunningOn reports whether the ad is shown on date (YYYY-MM-DD).
func (a *Advertisement) RunningOn(date string) bool {
	return a.Active && date >= a.StartsOn && date <= a.EndsOn
}
