package store

import (
	"context"
	"testing"
	"time"

	"github.com/canchapp/canchapp/internal/booking"
	users "github.com/canchapp/canchapp/internal/user"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

const testSuperUserID = "00000000-0000-0000-0000-000000000001"

// setupTestDB creates an in-memory SQLite database and applies migrations
func setupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	database, err := sqlx.Connect("sqlite3", "file::memory:?_foreign_keys=on")
	require.NoError(t, err, "Failed to connect to in-memory DB")

	// every new connection would get its own empty memory database
	database.SetMaxOpenConns(1)

	driver, err := sqlite3.WithInstance(database.DB, &sqlite3.Config{})
	require.NoError(t, err, "Failed to create migrate driver instance")

	m, err := migrate.NewWithDatabaseInstance(
		"file://../../migrations",
		"sqlite3",
		driver,
	)
	require.NoError(t, err, "Failed to create migrate instance")

	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		require.NoError(t, err, "Failed to apply migrations")
	}

	return database
}

func seedUser(t *testing.T, db *sqlx.DB, name string) *users.User {
	t.Helper()
	u := &users.User{
		ID:        uuid.New(),
		Email:     name + "@example.com",
		Username:  name,
		Role:      users.RoleUser,
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, NewUserStore(db).CreateUser(context.Background(), u))
	return u
}

func seedCourt(t *testing.T, db *sqlx.DB, ownerID uuid.UUID, name string, status booking.CourtStatus) *booking.Court {
	t.Helper()
	c := &booking.Court{
		ID:           uuid.New(),
		OwnerID:      ownerID,
		Name:         name,
		Sport:        "padel",
		City:         "Rosario",
		Address:      "Av. Pellegrini 1200",
		Latitude:     -32.95,
		Longitude:    -60.65,
		PricePerHour: 10000,
		OpenHour:     8,
		CloseHour:    23,
		Status:       status,
		CreatedAt:    time.Now().UTC(),
	}
	require.NoError(t, NewCourtStore(db).CreateCourt(context.Background(), c))
	return c
}
