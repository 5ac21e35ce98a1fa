package bracket

import (
	"time"

	"github.com/google/uuid"
)

type TournamentStatus string

const (
	TournamentRegistration TournamentStatus = "registration"
	TournamentStarted      TournamentStatus = "started"
	TournamentCompleted    TournamentStatus = "completed"
)

type Format string

const (
	Knockout   Format = "knockout"
	RoundRobin Format = "round_robin"
)

func (f Format) Valid() bool {
	return f == Knockout || f == RoundRobin
}

type Tournament struct {
	ID          uuid.UUID        `db:"id" json:"id"`
	OrganizerID uuid.UUID        `db:"organizer_id" json:"organizer_id"`
	CourtID     *uuid.UUID       `db:"court_id" json:"court_id,omitempty"`
	Name        string           `db:"name" json:"name"`
	Sport       string           `db:"sport" json:"sport"`
	Format      Format           `db:"format" json:"format"`
	Status      TournamentStatus `db:"status" json:"status"`
	MaxTeams    int              `db:"max_teams" json:"max_teams"`
	StartDate   string           `db:"start_date" json:"start_date"`
	EntryFee    int64            `db:"entry_fee" json:"entry_fee"`
	CreatedAt   time.Time        `db:"created_at" json:"created_at"`
}
