package store

import (
	"context"
	"testing"
	"time"

	"github.com/canchapp/canchapp/internal/bracket"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedTournament(t *testing.T, db *sqlx.DB, store *TournamentStore) *bracket.Tournament {
	t.Helper()
	tournament := &bracket.Tournament{
		ID:          uuid.New(),
		OrganizerID: uuid.MustParse(testSuperUserID),
		Name:        "Copa Primavera",
		Sport:       "futbol5",
		Format:      bracket.Knockout,
		Status:      bracket.TournamentRegistration,
		MaxTeams:    8,
		StartDate:   "2030-09-21",
		EntryFee:    50000,
		CreatedAt:   time.Now().UTC(),
	}
	require.NoError(t, store.CreateTournament(context.Background(), tournament))
	return tournament
}

func TestCreateTournament(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	store := NewTournamentStore(db)
	tournament := seedTournament(t, db, store)

	fetched, err := store.GetTournament(context.Background(), tournament.ID)
	require.NoError(t, err)

	assert.Equal(t, tournament.ID, fetched.ID)
	assert.Equal(t, tournament.OrganizerID, fetched.OrganizerID)
	assert.Equal(t, tournament.Name, fetched.Name)
	assert.Equal(t, tournament.Status, fetched.Status)
	assert.Equal(t, tournament.Format, fetched.Format)
	assert.Equal(t, tournament.MaxTeams, fetched.MaxTeams)
	assert.Equal(t, tournament.EntryFee, fetched.EntryFee)
	assert.Nil(t, fetched.CourtID)
	assert.WithinDuration(t, tournament.CreatedAt, fetched.CreatedAt, time.Second)
}

func TestCreateEntries(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	store := NewTournamentStore(db)
	tournament := seedTournament(t, db, store)
	captain := uuid.MustParse(testSuperUserID)

	entries := []bracket.Entry{
		{ID: uuid.New(), TournamentID: tournament.ID, Name: "Los Pibes", Seed: 2, CaptainID: &captain},
		{ID: uuid.New(), TournamentID: tournament.ID, Name: "La Banda", Seed: 1},
	}

	tx, err := db.BeginTxx(context.Background(), nil)
	require.NoError(t, err)
	for i := range entries {
		require.NoError(t, store.CreateEntry(context.Background(), tx, &entries[i]))
	}
	require.NoError(t, tx.Commit())

	fetched, err := store.GetEntries(context.Background(), tournament.ID)
	require.NoError(t, err)

	require.Len(t, fetched, 2)
	assert.Equal(t, entries[1].ID, fetched[0].ID, "ordered by seed")
	assert.Nil(t, fetched[0].CaptainID)
	assert.Equal(t, entries[0].ID, fetched[1].ID)
	require.NotNil(t, fetched[1].CaptainID)
	assert.Equal(t, captain, *fetched[1].CaptainID)
}

func TestCreateMatches(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	store := NewTournamentStore(db)
	tournament := seedTournament(t, db, store)

	finalID := uuid.New()
	matches := []bracket.Match{
		{
			ID:           finalID,
			TournamentID: tournament.ID,
			RoundNumber:  2,
			MatchOrder:   1,
			Status:       bracket.MatchPending,
		},
		{
			ID:                uuid.New(),
			TournamentID:      tournament.ID,
			RoundNumber:       1,
			MatchOrder:        1,
			Status:            bracket.MatchPending,
			WinnerNextMatchID: &finalID,
			WinnerNextSlot:    lo.ToPtr(1),
		},
		{
			ID:                uuid.New(),
			TournamentID:      tournament.ID,
			RoundNumber:       1,
			MatchOrder:        2,
			Status:            bracket.MatchFinished,
			WinnerNextMatchID: &finalID,
			WinnerNextSlot:    lo.ToPtr(2),
			WinnerSlot:        lo.ToPtr(1),
			IsBye:             true,
		},
	}

	tx, err := db.BeginTxx(context.Background(), nil)
	require.NoError(t, err)
	require.NoError(t, store.CreateMatches(context.Background(), tx, matches))
	require.NoError(t, tx.Commit())

	fetched, err := store.GetMatches(context.Background(), tournament.ID)
	require.NoError(t, err)
	require.Len(t, fetched, 3)

	assert.Equal(t, matches[1].ID, fetched[0].ID)
	assert.Equal(t, 1, *fetched[0].WinnerNextSlot)
	assert.Equal(t, finalID, *fetched[0].WinnerNextMatchID)
	assert.Nil(t, fetched[0].WinnerSlot)

	assert.Equal(t, matches[2].ID, fetched[1].ID)
	assert.True(t, fetched[1].IsBye)
	assert.Equal(t, 1, *fetched[1].WinnerSlot)

	assert.Equal(t, finalID, fetched[2].ID)
	assert.Nil(t, fetched[2].WinnerNextMatchID)
	assert.Nil(t, fetched[2].WinnerNextSlot)

	tx, err = db.BeginTxx(context.Background(), nil)
	require.NoError(t, err)
	pending, err := store.CountPendingMatchesTx(context.Background(), tx, tournament.ID)
	require.NoError(t, err)
	require.NoError(t, tx.Rollback())
	assert.Equal(t, 2, pending)
}

func TestUpdateMatch(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	store := NewTournamentStore(db)
	tournament := seedTournament(t, db, store)
	ctx := context.Background()

	a := bracket.Entry{ID: uuid.New(), TournamentID: tournament.ID, Name: "A", Seed: 1}
	b := bracket.Entry{ID: uuid.New(), TournamentID: tournament.ID, Name: "B", Seed: 2}
	match := bracket.Match{ID: uuid.New(), TournamentID: tournament.ID, RoundNumber: 1, MatchOrder: 1, Status: bracket.MatchPending}

	tx, err := db.BeginTxx(ctx, nil)
	require.NoError(t, err)
	require.NoError(t, store.CreateEntry(ctx, tx, &a))
	require.NoError(t, store.CreateEntry(ctx, tx, &b))
	require.NoError(t, store.CreateMatches(ctx, tx, []bracket.Match{match}))
	require.NoError(t, tx.Commit())

	match.Entry1ID = &a.ID
	match.Entry2ID = &b.ID
	match.Score1, match.Score2 = 3, 1
	match.Status = bracket.MatchFinished
	match.WinnerSlot = lo.ToPtr(1)

	tx, err = db.BeginTxx(ctx, nil)
	require.NoError(t, err)
	require.NoError(t, store.UpdateMatch(ctx, tx, &match))
	require.NoError(t, store.UpdateTournamentStatusTx(ctx, tx, tournament.ID, bracket.TournamentCompleted))
	require.NoError(t, tx.Commit())

	fetched, err := store.GetMatch(ctx, match.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, fetched.Score1)
	assert.Equal(t, 1, fetched.Score2)
	assert.True(t, fetched.IsWinner(1))
	assert.True(t, fetched.IsLoser(2))

	updated, err := store.GetTournament(ctx, tournament.ID)
	require.NoError(t, err)
	assert.Equal(t, bracket.TournamentCompleted, updated.Status)

	list, err := store.ListTournaments(ctx, bracket.TournamentRegistration)
	require.NoError(t, err)
	assert.Empty(t, list)
}
