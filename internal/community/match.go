package community

import (
	"time"

	"github.com/google/uuid"
)

type MatchStatus string

const (
	MatchOpen      MatchStatus = "open"
	MatchFull      MatchStatus = "full"
	MatchCancelled MatchStatus = "cancelled"
)

// PickupMatch is a casual game organized by a user that others can join.
type PickupMatch struct {
	ID          uuid.UUID   `db:"id" json:"id"`
	OrganizerID uuid.UUID   `db:"organizer_id" json:"organizer_id"`
	CourtID     *uuid.UUID  `db:"court_id" json:"court_id,omitempty"`
	Sport       string      `db:"sport" json:"sport"`
	City        string      `db:"city" json:"city"`
	Date        string      `db:"date" json:"date"`
	StartHour   int         `db:"start_hour" json:"start_hour"`
	Level       string      `db:"level" json:"level"`
	MaxPlayers  int         `db:"max_players" json:"max_players"`
	Description string      `db:"description" json:"description"`
	Status      MatchStatus `db:"status" json:"status"`
	CreatedAt   time.Time   `db:"created_at" json:"created_at"`

	Players []uuid.UUID `db:"-" json:"players"`
}

// StatusFor is the status a non-cancelled match should have with n players.
func (m *PickupMatch) StatusFor(n int) MatchStatus {
	if m.Status == MatchCancelled {
		return MatchCancelled
	}
	if n >= m.MaxPlayers {
		return MatchFull
	}
	return MatchOpen
}

func (m *PickupMatch) HasPlayer(userID uuid.UUID) bool {
	for _, p := range m.Players {
		if p == userID {
			return true
		}
	}
	return false
}

type MatchFilter struct {
	Sport    string
	City     string
	FromDate string
	Limit    int
}
