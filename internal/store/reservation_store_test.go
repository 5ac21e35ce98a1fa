package store

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/canchapp/canchapp/internal/booking"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func insertReservation(t *testing.T, db *sqlx.DB, store *ReservationStore, r booking.Reservation) booking.Reservation {
	t.Helper()
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.Status == "" {
		r.Status = booking.ReservationConfirmed
	}
	r.PlayerName = "Juan"
	r.Phone = "+54 341 555 0101"
	r.CreatedAt = time.Now().UTC()

	tx, err := db.BeginTxx(context.Background(), nil)
	require.NoError(t, err)
	require.NoError(t, store.CreateReservation(context.Background(), tx, &r))
	require.NoError(t, tx.Commit())
	return r
}

func TestCountOverlappingTx(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	owner := seedUser(t, db, "owner")
	player := seedUser(t, db, "player")
	court := seedCourt(t, db, owner.ID, "Cancha 1", booking.CourtApproved)
	store := NewReservationStore(db)

	insertReservation(t, db, store, booking.Reservation{CourtID: court.ID, UserID: player.ID, Date: "2030-05-10", StartHour: 18, EndHour: 20, TotalPrice: 20000})
	insertReservation(t, db, store, booking.Reservation{CourtID: court.ID, UserID: player.ID, Date: "2030-05-10", StartHour: 20, EndHour: 21, TotalPrice: 10000, Status: booking.ReservationCancelled})

	tests := []struct {
		name       string
		date       string
		start, end int
		want       int
	}{
		{"same hours", "2030-05-10", 18, 20, 1},
		{"partial overlap", "2030-05-10", 19, 21, 1},
		{"adjacent before", "2030-05-10", 16, 18, 0},
		{"adjacent after over cancelled", "2030-05-10", 20, 22, 0},
		{"other date", "2030-05-11", 18, 20, 0},
		{"covering", "2030-05-10", 10, 23, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx, err := db.BeginTxx(context.Background(), nil)
			require.NoError(t, err)
			defer tx.Rollback()

			n, err := store.CountOverlappingTx(context.Background(), tx, court.ID, tt.date, tt.start, tt.end)
			require.NoError(t, err)
			assert.Equal(t, tt.want, n)
		})
	}
}

func TestReservationCheckConstraint(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	owner := seedUser(t, db, "owner")
	court := seedCourt(t, db, owner.ID, "Cancha 1", booking.CourtApproved)
	store := NewReservationStore(db)

	r := booking.Reservation{
		ID: uuid.New(), CourtID: court.ID, UserID: owner.ID, Date: "2030-05-10",
		StartHour: 20, EndHour: 20, Status: booking.ReservationPending, PlayerName: "x", Phone: "1",
		CreatedAt: time.Now().UTC(),
	}
	tx, err := db.BeginTxx(context.Background(), nil)
	require.NoError(t, err)
	defer tx.Rollback()
	assert.Error(t, store.CreateReservation(context.Background(), tx, &r))
}

func TestPaymentsAndCommissions(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	owner := seedUser(t, db, "owner")
	player := seedUser(t, db, "player")
	court := seedCourt(t, db, owner.ID, "Cancha 1", booking.CourtApproved)
	store := NewReservationStore(db)

	r := insertReservation(t, db, store, booking.Reservation{CourtID: court.ID, UserID: player.ID, Date: "2030-05-10", StartHour: 18, EndHour: 19, TotalPrice: 12000})

	payment := booking.Payment{ID: uuid.New(), ReservationID: r.ID, UserID: player.ID, Amount: 12000, Method: booking.PaymentCard, Status: booking.PaymentPaid, CreatedAt: time.Now().UTC()}
	commission := booking.Commission{ID: uuid.New(), ReservationID: r.ID, CourtID: court.ID, OwnerID: owner.ID, Amount: 1200, Percent: 10, CreatedAt: time.Now().UTC()}

	tx, err := db.BeginTxx(ctx, nil)
	require.NoError(t, err)
	require.NoError(t, store.CreatePayment(ctx, tx, &payment))
	require.NoError(t, store.CreateCommission(ctx, tx, &commission))
	has, err := store.HasCommissionTx(ctx, tx, r.ID)
	require.NoError(t, err)
	assert.True(t, has)
	require.NoError(t, tx.Commit())

	fetched, err := store.GetPayment(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, booking.PaymentPaid, fetched.Status)
	assert.Equal(t, int64(12000), fetched.Amount)

	list, err := store.ListCommissions(ctx, "2030-05-01", "2030-05-31")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, int64(1200), list[0].Amount)

	list, err = store.ListCommissions(ctx, "2030-06-01", "2030-06-30")
	require.NoError(t, err)
	assert.Empty(t, list)

	tx, err = db.BeginTxx(ctx, nil)
	require.NoError(t, err)
	require.NoError(t, store.UpdatePaymentStatus(ctx, tx, payment.ID, booking.PaymentRefunded))
	require.NoError(t, store.DeleteCommission(ctx, tx, r.ID))
	require.NoError(t, store.UpdateStatus(ctx, tx, r.ID, booking.ReservationCancelled))
	require.NoError(t, tx.Commit())

	fetched, err = store.GetPayment(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, booking.PaymentRefunded, fetched.Status)

	cancelled, err := store.GetReservation(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, booking.ReservationCancelled, cancelled.Status)

	_, err = store.GetReservation(ctx, uuid.New())
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestListByCourts(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	owner := seedUser(t, db, "owner")
	c1 := seedCourt(t, db, owner.ID, "Cancha 1", booking.CourtApproved)
	c2 := seedCourt(t, db, owner.ID, "Cancha 2", booking.CourtApproved)
	c3 := seedCourt(t, db, owner.ID, "Cancha 3", booking.CourtApproved)
	store := NewReservationStore(db)

	insertReservation(t, db, store, booking.Reservation{CourtID: c1.ID, UserID: owner.ID, Date: "2030-05-10", StartHour: 9, EndHour: 10})
	insertReservation(t, db, store, booking.Reservation{CourtID: c2.ID, UserID: owner.ID, Date: "2030-05-12", StartHour: 9, EndHour: 10})
	insertReservation(t, db, store, booking.Reservation{CourtID: c3.ID, UserID: owner.ID, Date: "2030-05-11", StartHour: 9, EndHour: 10})
	insertReservation(t, db, store, booking.Reservation{CourtID: c1.ID, UserID: owner.ID, Date: "2030-06-01", StartHour: 9, EndHour: 10})

	list, err := store.ListByCourts(ctx, []uuid.UUID{c1.ID, c2.ID}, "2030-05-01", "2030-05-31")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "2030-05-10", list[0].Date)
	assert.Equal(t, "2030-05-12", list[1].Date)

	list, err = store.ListByCourts(ctx, nil, "2030-05-01", "2030-05-31")
	require.NoError(t, err)
	assert.Empty(t, list)

	mine, err := store.ListByUser(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, mine, 4)
	assert.Equal(t, "2030-06-01", mine[0].Date)
}
