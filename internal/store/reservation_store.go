package store

import (
	"context"

	"github.com/canchapp/canchapp/internal/booking"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type ReservationStore struct {
	db *sqlx.DB
}

const (
	reservationColumns = `id, court_id, user_id, date, start_hour, end_hour, total_price, status,
		player_name, phone, notes, promotion_code, created_at`
	paymentColumns = `id, reservation_id, user_id, amount, method, status, created_at`
)

func NewReservationStore(db *sqlx.DB) *ReservationStore {
	return &ReservationStore{db: db}
}

func (s *ReservationStore) CreateReservation(ctx context.Context, tx *sqlx.Tx, r *booking.Reservation) error {
	_, err := tx.NamedExecContext(ctx, `INSERT INTO reservations (id, court_id, user_id, date, start_hour, end_hour,
			total_price, status, player_name, phone, notes, promotion_code, created_at)
		VALUES (:id, :court_id, :user_id, :date, :start_hour, :end_hour,
			:total_price, :status, :player_name, :phone, :notes, :promotion_code, :created_at)`, r)
	return err
}

// CountOverlappingTx counts the active reservations of a court on date whose hours intersect [start, end).
// It runs inside the transaction that inserts the new reservation so two requests cannot book the same slot.
func (s *ReservationStore) CountOverlappingTx(ctx context.Context, tx *sqlx.Tx, courtID uuid.UUID, date string, start, end int) (int, error) {
	var n int
	err := tx.GetContext(ctx, &n, `SELECT COUNT(*) FROM reservations
		WHERE court_id = ? AND date = ? AND status != ?
		AND start_hour < ? AND end_hour > ?`, courtID, date, booking.ReservationCancelled, end, start)
	return n, err
}

func (s *ReservationStore) GetReservation(ctx context.Context, id uuid.UUID) (*booking.Reservation, error) {
	return getReservation(ctx, s.db, id)
}

func (s *ReservationStore) GetReservationTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (*booking.Reservation, error) {
	return getReservation(ctx, tx, id)
}

func getReservation(ctx context.Context, q sqlx.QueryerContext, id uuid.UUID) (*booking.Reservation, error) {
	var r booking.Reservation
	if err := sqlx.GetContext(ctx, q, &r, "SELECT "+reservationColumns+" FROM reservations WHERE id = ?", id); err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *ReservationStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]booking.Reservation, error) {
	var list []booking.Reservation
	err := s.db.SelectContext(ctx, &list, "SELECT "+reservationColumns+` FROM reservations
		WHERE user_id = ? ORDER BY date DESC, start_hour DESC`, userID)
	return list, err
}

// ListByCourtAndDate includes cancelled reservations; callers filter with Active.
func (s *ReservationStore) ListByCourtAndDate(ctx context.Context, courtID uuid.UUID, date string) ([]booking.Reservation, error) {
	var list []booking.Reservation
	err := s.db.SelectContext(ctx, &list, "SELECT "+reservationColumns+` FROM reservations
		WHERE court_id = ? AND date = ? ORDER BY start_hour ASC, created_at ASC`, courtID, date)
	return list, err
}

// ListByCourts returns the reservations of several courts dated within [from, to].
func (s *ReservationStore) ListByCourts(ctx context.Context, courtIDs []uuid.UUID, from, to string) ([]booking.Reservation, error) {
	var list []booking.Reservation
	if len(courtIDs) == 0 {
		return list, nil
	}
	err := selectIn(ctx, s.db, &list, "SELECT "+reservationColumns+` FROM reservations
		WHERE court_id IN (?) AND date >= ? AND date <= ?
		ORDER BY date ASC, start_hour ASC, created_at ASC`, courtIDs, from, to)
	return list, err
}

func (s *ReservationStore) UpdateStatus(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, status booking.ReservationStatus) error {
	return execOne(ctx, tx, "UPDATE reservations SET status = ? WHERE id = ?", status, id)
}

func (s *ReservationStore) CreatePayment(ctx context.Context, tx *sqlx.Tx, p *booking.Payment) error {
	_, err := tx.NamedExecContext(ctx, `INSERT INTO payments (id, reservation_id, user_id, amount, method, status, created_at)
		VALUES (:id, :reservation_id, :user_id, :amount, :method, :status, :created_at)`, p)
	return err
}

func (s *ReservationStore) GetPayment(ctx context.Context, reservationID uuid.UUID) (*booking.Payment, error) {
	return getPayment(ctx, s.db, reservationID)
}

func (s *ReservationStore) GetPaymentTx(ctx context.Context, tx *sqlx.Tx, reservationID uuid.UUID) (*booking.Payment, error) {
	return getPayment(ctx, tx, reservationID)
}

func getPayment(ctx context.Context, q sqlx.QueryerContext, reservationID uuid.UUID) (*booking.Payment, error) {
	var p booking.Payment
	err := sqlx.GetContext(ctx, q, &p, "SELECT "+paymentColumns+` FROM payments
		WHERE reservation_id = ? ORDER BY created_at DESC LIMIT 1`, reservationID)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *ReservationStore) UpdatePaymentStatus(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, status booking.PaymentStatus) error {
	return execOne(ctx, tx, "UPDATE payments SET status = ? WHERE id = ?", status, id)
}

func (s *ReservationStore) CreateCommission(ctx context.Context, tx *sqlx.Tx, c *booking.Commission) error {
	_, err := tx.NamedExecContext(ctx, `INSERT INTO commissions (id, reservation_id, court_id, owner_id, amount, percent, created_at)
		VALUES (:id, :reservation_id, :court_id, :owner_id, :amount, :percent, :created_at)`, c)
	return err
}

func (s *ReservationStore) DeleteCommission(ctx context.Context, tx *sqlx.Tx, reservationID uuid.UUID) error {
	_, err := tx.ExecContext(ctx, "DELETE FROM commissions WHERE reservation_id = ?", reservationID)
	return err
}

func (s *ReservationStore) HasCommissionTx(ctx context.Context, tx *sqlx.Tx, reservationID uuid.UUID) (bool, error) {
	var n int
	err := tx.GetContext(ctx, &n, "SELECT COUNT(*) FROM commissions WHERE reservation_id = ?", reservationID)
	return n > 0, err
}

// ListCommissions returns commissions of reservations dated within [from, to].
func (s *ReservationStore) ListCommissions(ctx context.Context, from, to string) ([]booking.Commission, error) {
	var list []booking.Commission
	err := s.db.SelectContext(ctx, &list, `SELECT c.id, c.reservation_id, c.court_id, c.owner_id, c.amount, c.percent, c.created_at
		FROM commissions c
		JOIN reservations r ON r.id = c.reservation_id
		WHERE r.date >= ? AND r.date <= ?
		ORDER BY r.date ASC, c.created_at ASC`, from, to)
	return list, err
}
