package bracket

import "github.com/google/uuid"

// Entry is a team registered in a tournament.
type Entry struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	TournamentID uuid.UUID  `db:"tournament_id" json:"tournament_id"`
	Name         string     `db:"name" json:"name"`
	CaptainID    *uuid.UUID `db:"captain_id" json:"captain_id,omitempty"`
	Seed         int        `db:"seed" json:"seed"`
}
