package store

import (
	"context"

	"github.com/canchapp/canchapp/internal/bracket"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type TournamentStore struct {
	db *sqlx.DB
}

const (
	tournamentColumns = `id, organizer_id, court_id, name, sport, format, status, max_teams, start_date, entry_fee, created_at`
	entryColumns      = `id, tournament_id, name, captain_id, seed`
	matchColumns      = `id, tournament_id, round_number, match_order, entry_1_id, entry_2_id, score_1, score_2, status,
		winner_next_match_id, winner_next_slot, winner_slot, is_bye, created_at`
)

func NewTournamentStore(db *sqlx.DB) *TournamentStore {
	return &TournamentStore{db: db}
}

func (s *TournamentStore) CreateTournament(ctx context.Context, tournament *bracket.Tournament) error {
	_, err := s.db.NamedExecContext(ctx, `INSERT INTO tournaments (`+tournamentColumns+`)
        VALUES (:id, :organizer_id, :court_id, :name, :sport, :format, :status, :max_teams, :start_date, :entry_fee, :created_at)`, tournament)
	return err
}

func (s *TournamentStore) CreateEntry(ctx context.Context, tx *sqlx.Tx, entry *bracket.Entry) error {
	_, err := tx.NamedExecContext(ctx, `INSERT INTO entries (`+entryColumns+`)
            VALUES (:id, :tournament_id, :name, :captain_id, :seed)`, entry)
	return err
}

func (s *TournamentStore) CreateMatches(ctx context.Context, tx *sqlx.Tx, matches []bracket.Match) error {
	if len(matches) == 0 {
		return nil
	}
	_, err := tx.NamedExecContext(ctx, `INSERT INTO tournament_matches (`+matchColumns+`)
		VALUES (:id, :tournament_id, :round_number, :match_order, :entry_1_id, :entry_2_id, :score_1, :score_2, :status,
			:winner_next_match_id, :winner_next_slot, :winner_slot, :is_bye, :created_at)`, matches)
	return err
}

func (s *TournamentStore) GetTournament(ctx context.Context, id uuid.UUID) (*bracket.Tournament, error) {
	return getTournament(ctx, s.db, id)
}

func (s *TournamentStore) GetTournamentTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (*bracket.Tournament, error) {
	return getTournament(ctx, tx, id)
}

func getTournament(ctx context.Context, q sqlx.QueryerContext, id uuid.UUID) (*bracket.Tournament, error) {
	var tournament bracket.Tournament
	if err := sqlx.GetContext(ctx, q, &tournament, "SELECT "+tournamentColumns+" FROM tournaments WHERE id = ?", id); err != nil {
		return nil, err
	}
	return &tournament, nil
}

// ListTournaments returns every tournament, optionally only those with status.
func (s *TournamentStore) ListTournaments(ctx context.Context, status bracket.TournamentStatus) ([]bracket.Tournament, error) {
	var tournaments []bracket.Tournament
	query := "SELECT " + tournamentColumns + " FROM tournaments"
	var args []any
	if status != "" {
		query += " WHERE status = ?"
		args = append(args, status)
	}
	err := s.db.SelectContext(ctx, &tournaments, query+" ORDER BY start_date ASC, created_at DESC", args...)
	return tournaments, err
}

func (s *TournamentStore) GetTournamentsByOrganizer(ctx context.Context, organizerID uuid.UUID) ([]bracket.Tournament, error) {
	var tournaments []bracket.Tournament
	err := s.db.SelectContext(ctx, &tournaments,
		"SELECT "+tournamentColumns+" FROM tournaments WHERE organizer_id = ? ORDER BY created_at DESC", organizerID)
	return tournaments, err
}

func (s *TournamentStore) UpdateTournamentStatusTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, status bracket.TournamentStatus) error {
	return execOne(ctx, tx, "UPDATE tournaments SET status = ? WHERE id = ?", status, id)
}

func (s *TournamentStore) GetEntries(ctx context.Context, tournamentID uuid.UUID) ([]bracket.Entry, error) {
	return getEntries(ctx, s.db, tournamentID)
}

func (s *TournamentStore) GetEntriesTx(ctx context.Context, tx *sqlx.Tx, tournamentID uuid.UUID) ([]bracket.Entry, error) {
	return getEntries(ctx, tx, tournamentID)
}

func getEntries(ctx context.Context, q sqlx.QueryerContext, tournamentID uuid.UUID) ([]bracket.Entry, error) {
	var entries []bracket.Entry
	err := sqlx.SelectContext(ctx, q, &entries,
		"SELECT "+entryColumns+" FROM entries WHERE tournament_id = ? ORDER BY seed ASC", tournamentID)
	return entries, err
}

func (s *TournamentStore) DeleteEntry(ctx context.Context, tournamentID, entryID uuid.UUID) error {
	return execOne(ctx, s.db, "DELETE FROM entries WHERE id = ? AND tournament_id = ?", entryID, tournamentID)
}

func (s *TournamentStore) GetMatches(ctx context.Context, tournamentID uuid.UUID) ([]bracket.Match, error) {
	return getMatches(ctx, s.db, tournamentID)
}

func (s *TournamentStore) GetMatchesTx(ctx context.Context, tx *sqlx.Tx, tournamentID uuid.UUID) ([]bracket.Match, error) {
	return getMatches(ctx, tx, tournamentID)
}

func getMatches(ctx context.Context, q sqlx.QueryerContext, tournamentID uuid.UUID) ([]bracket.Match, error) {
	var matches []bracket.Match
	err := sqlx.SelectContext(ctx, q, &matches, "SELECT "+matchColumns+` FROM tournament_matches
		WHERE tournament_id = ? ORDER BY round_number ASC, match_order ASC`, tournamentID)
	return matches, err
}

func (s *TournamentStore) GetMatch(ctx context.Context, id uuid.UUID) (*bracket.Match, error) {
	return getMatch(ctx, s.db, id)
}

func (s *TournamentStore) GetMatchTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (*bracket.Match, error) {
	return getMatch(ctx, tx, id)
}

func getMatch(ctx context.Context, q sqlx.QueryerContext, id uuid.UUID) (*bracket.Match, error) {
	var match bracket.Match
	if err := sqlx.GetContext(ctx, q, &match, "SELECT "+matchColumns+" FROM tournament_matches WHERE id = ?", id); err != nil {
		return nil, err
	}
	return &match, nil
}

func (s *TournamentStore) UpdateMatch(ctx context.Context, tx *sqlx.Tx, match *bracket.Match) error {
	res, err := tx.NamedExecContext(ctx, `UPDATE tournament_matches SET
		entry_1_id = :entry_1_id,
		entry_2_id = :entry_2_id,
		score_1 = :score_1,
		score_2 = :score_2,
		status = :status,
		winner_slot = :winner_slot
		WHERE id = :id`, match)
	if err != nil {
		return err
	}
	return rowsOrNotFound(res)
}

// CountPendingMatchesTx counts matches still waiting for a result.
func (s *TournamentStore) CountPendingMatchesTx(ctx context.Context, tx *sqlx.Tx, tournamentID uuid.UUID) (int, error) {
	var n int
	err := tx.GetContext(ctx, &n, "SELECT COUNT(*) FROM tournament_matches WHERE tournament_id = ? AND status = ?",
		tournamentID, bracket.MatchPending)
	return n, err
}
