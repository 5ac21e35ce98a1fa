package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/canchapp/canchapp/internal/booking"
	"github.com/canchapp/canchapp/internal/bracket"
	"github.com/canchapp/canchapp/internal/events"
	"github.com/canchapp/canchapp/internal/store"
	users "github.com/canchapp/canchapp/internal/user"
	"github.com/canchapp/canchapp/internal/utils"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/samber/lo"
)

const (
	minTeams = 2
	maxTeams = 64
)

type TournamentService struct {
	db     *sqlx.DB
	store  *store.TournamentStore
	courts *store.CourtStore
	events events.Publisher
	now    func() time.Time
}

func NewTournamentService(db *sqlx.DB, store *store.TournamentStore, courts *store.CourtStore, publisher events.Publisher) *TournamentService {
	return &TournamentService{db: db, store: store, courts: courts, events: publisher, now: time.Now}
}

type TournamentInput struct {
	Name      string         `json:"name"`
	Sport     string         `json:"sport"`
	Format    bracket.Format `json:"format"`
	MaxTeams  int            `json:"max_teams"`
	StartDate string         `json:"start_date"`
	EntryFee  int64          `json:"entry_fee"`
	CourtID   *uuid.UUID     `json:"court_id"`
}

type TournamentData struct {
	Tournament  *bracket.Tournament `json:"tournament"`
	Entries     []bracket.Entry     `json:"entries"`
	Matches     []bracket.Match     `json:"matches"`
	Standings   []bracket.Standing  `json:"standings,omitempty"`
	NextMatchID *uuid.UUID          `json:"next_match_id,omitempty"`
}

func (s *TournamentService) Create(ctx context.Context, in TournamentInput) (*bracket.Tournament, error) {
	u, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Name) == "" {
		return nil, invalidf("name is required")
	}
	if strings.TrimSpace(in.Sport) == "" {
		return nil, invalidf("sport is required")
	}
	if in.Format == "" {
		in.Format = bracket.Knockout
	}
	if !in.Format.Valid() {
		return nil, invalidf("unknown format %q", in.Format)
	}
	if in.MaxTeams < minTeams || in.MaxTeams > maxTeams {
		return nil, invalidf("max_teams must be between %d and %d", minTeams, maxTeams)
	}
	if in.EntryFee < 0 {
		return nil, invalidf("entry_fee must not be negative")
	}
	if in.StartDate != "" {
		d, err := booking.ParseDate(in.StartDate, s.now())
		if err != nil {
			return nil, invalidf("%v", err)
		}
		in.StartDate = booking.FormatDate(d)
	}
	if in.CourtID != nil {
		if _, err := s.courts.GetCourt(ctx, *in.CourtID); err != nil {
			return nil, notFound("court", err)
		}
	}

	tournament := &bracket.Tournament{
		ID:          uuid.New(),
		OrganizerID: u.ID,
		CourtID:     in.CourtID,
		Name:        strings.TrimSpace(in.Name),
		Sport:       utils.Normalize(in.Sport),
		Format:      in.Format,
		Status:      bracket.TournamentRegistration,
		MaxTeams:    in.MaxTeams,
		StartDate:   in.StartDate,
		EntryFee:    in.EntryFee,
		CreatedAt:   s.now().UTC(),
	}
	if err := s.store.CreateTournament(ctx, tournament); err != nil {
		return nil, fmt.Errorf("failed to create tournament: %w", err)
	}
	return tournament, nil
}

func (s *TournamentService) List(ctx context.Context, status bracket.TournamentStatus) ([]bracket.Tournament, error) {
	return s.store.ListTournaments(ctx, status)
}

func (s *TournamentService) Mine(ctx context.Context) ([]bracket.Tournament, error) {
	u, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	return s.store.GetTournamentsByOrganizer(ctx, u.ID)
}

func (s *TournamentService) GetTournamentData(ctx context.Context, id uuid.UUID) (*TournamentData, error) {
	tournament, err := s.store.GetTournament(ctx, id)
	if err != nil {
		return nil, notFound("tournament", err)
	}

	entries, err := s.store.GetEntries(ctx, id)
	if err != nil {
		return nil, err
	}

	matches, err := s.store.GetMatches(ctx, id)
	if err != nil {
		return nil, err
	}

	var nextMatchID *uuid.UUID
	for _, m := range matches {
		if m.Ready() {
			id := m.ID
			nextMatchID = &id
			break
		}
	}

	data := &TournamentData{
		Tournament:  tournament,
		Entries:     entries,
		Matches:     matches,
		NextMatchID: nextMatchID,
	}
	if tournament.Format == bracket.RoundRobin && tournament.Status != bracket.TournamentRegistration {
		data.Standings = bracket.Standings(entries, matches)
	}
	return data, nil
}

type TeamInput struct {
	Name string `json:"name"`
}

// Register signs up a team captained by the current user. Registration closes when the tournament starts.
func (s *TournamentService) Register(ctx context.Context, tournamentID uuid.UUID, in TeamInput) (*bracket.Entry, error) {
	u, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, invalidf("team name is required")
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	tournament, err := s.store.GetTournamentTx(ctx, tx, tournamentID)
	if err != nil {
		return nil, notFound("tournament", err)
	}
	if tournament.Status != bracket.TournamentRegistration {
		return nil, conflictf("registration for %s is closed", tournament.Name)
	}
	entries, err := s.store.GetEntriesTx(ctx, tx, tournamentID)
	if err != nil {
		return nil, err
	}
	if len(entries) >= tournament.MaxTeams {
		return nil, conflictf("%s is full (%d teams)", tournament.Name, tournament.MaxTeams)
	}
	for _, e := range entries {
		if strings.EqualFold(e.Name, name) {
			return nil, conflictf("a team named %s is already registered", e.Name)
		}
		if e.CaptainID != nil && *e.CaptainID == u.ID {
			return nil, conflictf("you already registered %s", e.Name)
		}
	}

	seed := 1
	if len(entries) > 0 {
		seed = entries[len(entries)-1].Seed + 1
	}
	captain := u.ID
	entry := &bracket.Entry{
		ID:           uuid.New(),
		TournamentID: tournamentID,
		Name:         name,
		CaptainID:    &captain,
		Seed:         seed,
	}
	if err := s.store.CreateEntry(ctx, tx, entry); err != nil {
		return nil, fmt.Errorf("failed to register team: %w", err)
	}
	return entry, tx.Commit()
}

// RemoveEntry withdraws a team before the tournament starts. Its captain or the organizer may do it.
func (s *TournamentService) RemoveEntry(ctx context.Context, tournamentID, entryID uuid.UUID) error {
	u, err := currentUser(ctx)
	if err != nil {
		return err
	}
	tournament, err := s.store.GetTournament(ctx, tournamentID)
	if err != nil {
		return notFound("tournament", err)
	}
	if tournament.Status != bracket.TournamentRegistration {
		return conflictf("teams cannot withdraw once %s has started", tournament.Name)
	}
	entries, err := s.store.GetEntries(ctx, tournamentID)
	if err != nil {
		return err
	}
	entry, ok := lo.Find(entries, func(e bracket.Entry) bool { return e.ID == entryID })
	if !ok {
		return fmt.Errorf("entry: %w", ErrNotFound)
	}
	isCaptain := entry.CaptainID != nil && *entry.CaptainID == u.ID
	if !isCaptain && !canRun(u, tournament) {
		return ErrForbidden
	}
	if err := s.store.DeleteEntry(ctx, tournamentID, entryID); err != nil {
		return notFound("entry", err)
	}
	return nil
}

func canRun(u *users.User, t *bracket.Tournament) bool {
	return u.IsAdmin() || t.OrganizerID == u.ID
}

// Start closes registration and generates the schedule: a seeded knockout bracket with byes, or a
// round robin where every team meets every other once.
func (s *TournamentService) Start(ctx context.Context, tournamentID uuid.UUID) (*TournamentData, error) {
	u, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	tournament, err := s.store.GetTournament(ctx, tournamentID)
	if err != nil {
		return nil, notFound("tournament", err)
	}
	if !canRun(u, tournament) {
		return nil, ErrForbidden
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	tournament, err = s.store.GetTournamentTx(ctx, tx, tournamentID)
	if err != nil {
		return nil, notFound("tournament", err)
	}
	if tournament.Status != bracket.TournamentRegistration {
		return nil, conflictf("%s has already started", tournament.Name)
	}
	entries, err := s.store.GetEntriesTx(ctx, tx, tournamentID)
	if err != nil {
		return nil, err
	}
	if len(entries) < minTeams {
		return nil, invalidf("at least %d teams are needed to start", minTeams)
	}

	var matches []bracket.Match
	switch tournament.Format {
	case bracket.RoundRobin:
		matches = generateRoundRobin(tournament.ID, entries, s.now().UTC())
	default:
		matches = generateKnockoutBracket(tournament.ID, entries, s.now().UTC())
	}

	if err := s.store.CreateMatches(ctx, tx, matches); err != nil {
		return nil, fmt.Errorf("failed to create matches: %w", err)
	}
	if err := s.store.UpdateTournamentStatusTx(ctx, tx, tournament.ID, bracket.TournamentStarted); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	captains := lo.Uniq(lo.FilterMap(entries, func(e bracket.Entry, _ int) (uuid.UUID, bool) {
		return lo.FromPtr(e.CaptainID), e.CaptainID != nil
	}))
	if err := s.events.Publish(ctx, events.RKTournamentStarted, events.TournamentStarted{
		TournamentID: tournament.ID,
		Name:         tournament.Name,
		CaptainIDs:   captains,
	}); err != nil {
		slog.Error("failed to publish tournament start", "tournament_id", tournament.ID, "error", err)
	}

	return s.GetTournamentData(ctx, tournament.ID)
}

type ResultInput struct {
	Score1 int `json:"score_1"`
	Score2 int `json:"score_2"`
}

// RecordResult stores the score of a match whose two teams are known. In a knockout the winner moves
// on to its next match and draws are rejected. The tournament completes when no match is pending.
func (s *TournamentService) RecordResult(ctx context.Context, matchID uuid.UUID, in ResultInput) (*bracket.Match, error) {
	u, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	if in.Score1 < 0 || in.Score2 < 0 {
		return nil, invalidf("scores must not be negative")
	}
	match, err := s.store.GetMatch(ctx, matchID)
	if err != nil {
		return nil, notFound("match", err)
	}
	tournament, err := s.store.GetTournament(ctx, match.TournamentID)
	if err != nil {
		return nil, notFound("tournament", err)
	}
	if !canRun(u, tournament) {
		return nil, ErrForbidden
	}
	if tournament.Status != bracket.TournamentStarted {
		return nil, conflictf("%s is not in progress", tournament.Name)
	}
	knockout := tournament.Format == bracket.Knockout
	if knockout && in.Score1 == in.Score2 {
		return nil, invalidf("knockout matches need a winner")
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	match, err = s.store.GetMatchTx(ctx, tx, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to get match: %w", err)
	}
	if !match.Ready() {
		return nil, conflictf("match is not ready for a result")
	}

	match.Score1, match.Score2 = in.Score1, in.Score2
	match.Status = bracket.MatchFinished
	switch {
	case in.Score1 > in.Score2:
		match.WinnerSlot = lo.ToPtr(1)
	case in.Score2 > in.Score1:
		match.WinnerSlot = lo.ToPtr(2)
	}

	if err := s.store.UpdateMatch(ctx, tx, match); err != nil {
		return nil, fmt.Errorf("failed to update match: %w", err)
	}

	if knockout && match.WinnerNextMatchID != nil && match.WinnerNextSlot != nil {
		nextMatch, err := s.store.GetMatchTx(ctx, tx, *match.WinnerNextMatchID)
		if err != nil {
			return nil, fmt.Errorf("failed to get next match: %w", err)
		}
		winner := match.Entry1ID
		if *match.WinnerSlot == 2 {
			winner = match.Entry2ID
		}
		placeInSlot(nextMatch, *match.WinnerNextSlot, winner)

		if err := s.store.UpdateMatch(ctx, tx, nextMatch); err != nil {
			return nil, fmt.Errorf("failed to update next match: %w", err)
		}
	}

	pending, err := s.store.CountPendingMatchesTx(ctx, tx, tournament.ID)
	if err != nil {
		return nil, err
	}
	if pending == 0 {
		if err := s.store.UpdateTournamentStatusTx(ctx, tx, tournament.ID, bracket.TournamentCompleted); err != nil {
			return nil, fmt.Errorf("failed to update tournament status: %w", err)
		}
	}

	return match, tx.Commit()
}

func (s *TournamentService) Standings(ctx context.Context, tournamentID uuid.UUID) ([]bracket.Standing, error) {
	if _, err := s.store.GetTournament(ctx, tournamentID); err != nil {
		return nil, notFound("tournament", err)
	}
	entries, err := s.store.GetEntries(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	matches, err := s.store.GetMatches(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	return bracket.Standings(entries, matches), nil
}
