package booking

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type CourtStatus string

const (
	CourtPending  CourtStatus = "pending"
	CourtApproved CourtStatus = "approved"
	CourtRejected CourtStatus = "rejected"
)

type Court struct {
	ID              uuid.UUID   `db:"id" json:"id"`
	OwnerID         uuid.UUID   `db:"owner_id" json:"owner_id"`
	Name            string      `db:"name" json:"name"`
	Sport           string      `db:"sport" json:"sport"`
	Description     string      `db:"description" json:"description"`
	Address         string      `db:"address" json:"address"`
	City            string      `db:"city" json:"city"`
	Latitude        float64     `db:"latitude" json:"latitude"`
	Longitude       float64     `db:"longitude" json:"longitude"`
	PricePerHour    int64       `db:"price_per_hour" json:"price_per_hour"`
	OpenHour        int         `db:"open_hour" json:"open_hour"`
	CloseHour       int         `db:"close_hour" json:"close_hour"`
	Surface         string      `db:"surface" json:"surface"`
	Indoor          bool        `db:"indoor" json:"indoor"`
	Amenities       string      `db:"amenities" json:"amenities"`
	Status          CourtStatus `db:"status" json:"status"`
	RejectionReason *string     `db:"rejection_reason" json:"rejection_reason,omitempty"`
	CreatedAt       time.Time   `db:"created_at" json:"created_at"`

	Photos     []CourtPhoto `db:"-" json:"photos,omitempty"`
	DistanceKm *float64     `db:"-" json:"distance_km,omitempty"`
}

type CourtPhoto struct {
	ID       uuid.UUID `db:"id" json:"id"`
	CourtID  uuid.UUID `db:"court_id" json:"court_id"`
	URL      string    `db:"url" json:"url"`
	Position int       `db:"position" json:"position"`
}

// OpenHours is the number of reservable one-hour slots per day.
func (c *Court) OpenHours() int {
	if c.CloseHour <= c.OpenHour {
		return 0
	}
	return c.CloseHour - c.OpenHour
}

func (c *Court) HasLocation() bool {
	return c.Latitude != 0 || c.Longitude != 0
}

func (c *Court) AmenityList() []string {
	var out []string
	for _, a := range strings.Split(c.Amenities, ",") {
		if a = strings.TrimSpace(a); a != "" {
			out = append(out, a)
		}
	}
	return out
}
