package bracket

import (
	"time"

	"github.com/google/uuid"
)

type MatchStatus string

const (
	MatchPending  MatchStatus = "pending"
	MatchFinished MatchStatus = "finished"
)

type Match struct {
	ID           uuid.UUID `db:"id" json:"id"`
	TournamentID uuid.UUID `db:"tournament_id" json:"tournament_id"`

	// Position in the tournament for reconstructing the view
	RoundNumber int `db:"round_number" json:"round_number"`
	MatchOrder  int `db:"match_order" json:"match_order"`

	Entry1ID *uuid.UUID `db:"entry_1_id" json:"entry_1_id,omitempty"`
	Entry2ID *uuid.UUID `db:"entry_2_id" json:"entry_2_id,omitempty"`

	Score1 int         `db:"score_1" json:"score_1"`
	Score2 int         `db:"score_2" json:"score_2"`
	Status MatchStatus `db:"status" json:"status"`

	WinnerNextMatchID *uuid.UUID `db:"winner_next_match_id" json:"winner_next_match_id,omitempty"`
	WinnerNextSlot    *int       `db:"winner_next_slot" json:"winner_next_slot,omitempty"`

	WinnerSlot *int `db:"winner_slot" json:"winner_slot,omitempty"`
	IsBye      bool `db:"is_bye" json:"is_bye"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

func (m *Match) IsWinner(slot int) bool {
	return m.Status == MatchFinished && m.WinnerSlot != nil && *m.WinnerSlot == slot
}

func (m *Match) IsLoser(slot int) bool {
	return m.Status == MatchFinished && m.WinnerSlot != nil && *m.WinnerSlot != slot
}

func (m *Match) Has(entryID uuid.UUID) bool {
	return (m.Entry1ID != nil && *m.Entry1ID == entryID) || (m.Entry2ID != nil && *m.Entry2ID == entryID)
}

// Ready means both teams are known and the result is still open.
func (m *Match) Ready() bool {
	return m.Status == MatchPending && m.Entry1ID != nil && m.Entry2ID != nil
}
