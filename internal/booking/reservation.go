package booking

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
)

type ReservationStatus string

const (
	ReservationPending   ReservationStatus = "pending"
	ReservationConfirmed ReservationStatus = "confirmed"
	ReservationCancelled ReservationStatus = "cancelled"
	ReservationCompleted ReservationStatus = "completed"
)

type Reservation struct {
	ID            uuid.UUID         `db:"id" json:"id"`
	CourtID       uuid.UUID         `db:"court_id" json:"court_id"`
	UserID        uuid.UUID         `db:"user_id" json:"user_id"`
	Date          string            `db:"date" json:"date"`
	StartHour     int               `db:"start_hour" json:"start_hour"`
	EndHour       int               `db:"end_hour" json:"end_hour"`
	TotalPrice    int64             `db:"total_price" json:"total_price"`
	Status        ReservationStatus `db:"status" json:"status"`
	PlayerName    string            `db:"player_name" json:"player_name"`
	Phone         string            `db:"phone" json:"phone"`
	Notes         string            `db:"notes" json:"notes"`
	PromotionCode *string           `db:"promotion_code" json:"promotion_code,omitempty"`
	CreatedAt     time.Time         `db:"created_at" json:"created_at"`
}

func (r *Reservation) Hours() int {
	return r.EndHour - r.StartHour
}

func (r *Reservation) Active() bool {
	return r.Status != ReservationCancelled
}

// Settled reports whether the booking counts as earned. Card bookings are confirmed on creation.
func (r *Reservation) Settled() bool {
	return r.Status == ReservationConfirmed || r.Status == ReservationCompleted
}

func (r *Reservation) Label() string {
	return fmt.Sprintf("%s %02d:00-%02d:00", r.Date, r.StartHour, r.EndHour)
}

type PaymentMethod string

const (
	PaymentCash     PaymentMethod = "cash"
	PaymentCard     PaymentMethod = "card"
	PaymentTransfer PaymentMethod = "transfer"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCash, PaymentCard, PaymentTransfer:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentRefunded PaymentStatus = "refunded"
)

type Payment struct {
	ID            uuid.UUID     `db:"id" json:"id"`
	ReservationID uuid.UUID     `db:"reservation_id" json:"reservation_id"`
	UserID        uuid.UUID     `db:"user_id" json:"user_id"`
	Amount        int64         `db:"amount" json:"amount"`
	Method        PaymentMethod `db:"method" json:"method"`
	Status        PaymentStatus `db:"status" json:"status"`
	CreatedAt     time.Time     `db:"created_at" json:"created_at"`
}

// Commission is the platform's cut of a paid reservation.
type Commission struct {
	ID            uuid.UUID `db:"id" json:"id"`
	ReservationID uuid.UUID `db:"reservation_id" json:"reservation_id"`
	CourtID       uuid.UUID `db:"court_id" json:"court_id"`
	OwnerID       uuid.UUID `db:"owner_id" json:"owner_id"`
	Amount        int64     `db:"amount" json:"amount"`
	Percent       float64   `db:"percent" json:"percent"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

func CommissionAmount(total int64, percent float64) int64 {
	if total <= 0 || percent <= 0 {
		return 0
	}
	return int64(math.Round(float64(total) * percent / 100))
}
