package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/canchapp/canchapp/internal/booking"
	"github.com/canchapp/canchapp/internal/events"
	"github.com/canchapp/canchapp/internal/store"
	users "github.com/canchapp/canchapp/internal/user"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/samber/lo"
)

type ReservationService struct {
	db                *sqlx.DB
	store             *store.ReservationStore
	courts            *store.CourtStore
	pricing           *store.PricingStore
	access            *CollaboratorService
	events            events.Publisher
	commissionPercent float64
	now               func() time.Time
}

func NewReservationService(db *sqlx.DB, store *store.ReservationStore, courts *store.CourtStore, pricing *store.PricingStore,
	access *CollaboratorService, publisher events.Publisher, commissionPercent float64) *ReservationService {
	return &ReservationService{
		db:                db,
		store:             store,
		courts:            courts,
		pricing:           pricing,
		access:            access,
		events:            publisher,
		commissionPercent: commissionPercent,
		now:               time.Now,
	}
}

// visibleCourt loads a court a player can book: approved, or managed by the current user.
func (s *ReservationService) visibleCourt(ctx context.Context, courtID uuid.UUID) (*booking.Court, error) {
	court, err := s.courts.GetCourt(ctx, courtID)
	if err != nil {
		return nil, notFound("court", err)
	}
	if court.Status == booking.CourtApproved {
		return court, nil
	}
	ok, err := s.access.CanManageCourt(ctx, currentUserOrNil(ctx), court)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("court: %w", ErrNotFound)
	}
	return court, nil
}

func (s *ReservationService) parseDate(input string) (time.Time, error) {
	d, err := booking.ParseDate(input, s.now())
	if err != nil {
		return time.Time{}, &booking.ValidationError{Field: "date", Message: err.Error()}
	}
	return d, nil
}

// Availability lists the court's one-hour slots on date with price and availability.
func (s *ReservationService) Availability(ctx context.Context, courtID uuid.UUID, date string) ([]booking.Slot, error) {
	court, err := s.visibleCourt(ctx, courtID)
	if err != nil {
		return nil, err
	}
	day, err := s.parseDate(date)
	if err != nil {
		return nil, err
	}
	reservations, err := s.store.ListByCourtAndDate(ctx, courtID, booking.FormatDate(day))
	if err != nil {
		return nil, fmt.Errorf("failed to list reservations: %w", err)
	}
	rules, err := s.pricing.ListRules(ctx, courtID)
	if err != nil {
		return nil, fmt.Errorf("failed to list pricing rules: %w", err)
	}
	return booking.Slots(court, day, reservations, rules, s.now()), nil
}

type QuoteInput struct {
	CourtID       uuid.UUID `json:"court_id"`
	Date          string    `json:"date"`
	StartHour     int       `json:"start_hour"`
	EndHour       int       `json:"end_hour"`
	PromotionCode string    `json:"promotion_code"`
}

func (s *ReservationService) Quote(ctx context.Context, in QuoteInput) (booking.Quote, error) {
	court, err := s.visibleCourt(ctx, in.CourtID)
	if err != nil {
		return booking.Quote{}, err
	}
	day, err := s.parseDate(in.Date)
	if err != nil {
		return booking.Quote{}, err
	}
	if in.StartHour >= in.EndHour || in.StartHour < court.OpenHour || in.EndHour > court.CloseHour {
		return booking.Quote{}, &booking.ValidationError{Field: "start_hour",
			Message: fmt.Sprintf("hours must be within %02d:00-%02d:00 and start before end", court.OpenHour, court.CloseHour)}
	}
	rules, err := s.pricing.ListRules(ctx, court.ID)
	if err != nil {
		return booking.Quote{}, err
	}
	var promo *booking.Promotion
	if code := strings.TrimSpace(in.PromotionCode); code != "" {
		p, err := s.pricing.GetPromotionByCode(ctx, code)
		if promo, err = checkPromotion(p, err, court, code, booking.FormatDate(day)); err != nil {
			return booking.Quote{}, err
		}
	}
	return booking.QuoteReservation(court, day, in.StartHour, in.EndHour, rules, promo), nil
}

type ReservationInput struct {
	CourtID       uuid.UUID             `json:"court_id"`
	Date          string                `json:"date"`
	StartHour     int                   `json:"start_hour"`
	EndHour       int                   `json:"end_hour"`
	PlayerName    string                `json:"player_name"`
	Phone         string                `json:"phone"`
	Notes         string                `json:"notes"`
	PromotionCode string                `json:"promotion_code"`
	PaymentMethod booking.PaymentMethod `json:"payment_method"`
}

type ReservationResult struct {
	Reservation *booking.Reservation `json:"reservation"`
	Payment     *booking.Payment     `json:"payment"`
	Quote       booking.Quote        `json:"quote"`
}

// Create books a slot. The overlap check, the reservation, its payment and the commission (for card
// payments, which are settled at once) are written in one transaction.
func (s *ReservationService) Create(ctx context.Context, in ReservationInput) (*ReservationResult, error) {
	u, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	court, err := s.visibleCourt(ctx, in.CourtID)
	if err != nil {
		return nil, err
	}
	if court.Status != booking.CourtApproved {
		return nil, invalidf("court %s is not accepting reservations yet", court.Name)
	}
	method := in.PaymentMethod
	if method == "" {
		method = booking.PaymentCash
	}
	if !method.Valid() {
		return nil, invalidf("unknown payment method %q", method)
	}
	day, err := s.parseDate(in.Date)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	r := &booking.Reservation{
		ID:         uuid.New(),
		CourtID:    court.ID,
		UserID:     u.ID,
		Date:       booking.FormatDate(day),
		StartHour:  in.StartHour,
		EndHour:    in.EndHour,
		PlayerName: strings.TrimSpace(in.PlayerName),
		Phone:      strings.TrimSpace(in.Phone),
		Notes:      strings.TrimSpace(in.Notes),
		Status:     booking.ReservationPending,
		CreatedAt:  now,
	}
	if err := booking.ValidateReservation(court, r, s.now()); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	n, err := s.store.CountOverlappingTx(ctx, tx, court.ID, r.Date, r.StartHour, r.EndHour)
	if err != nil {
		return nil, fmt.Errorf("failed to check overlapping reservations: %w", err)
	}
	if n > 0 {
		return nil, conflictf("%s is already booked on %s", court.Name, r.Label())
	}

	rules, err := s.pricing.ListRulesTx(ctx, tx, court.ID)
	if err != nil {
		return nil, err
	}
	var promo *booking.Promotion
	if code := strings.TrimSpace(in.PromotionCode); code != "" {
		p, err := s.pricing.GetPromotionByCodeTx(ctx, tx, code)
		if promo, err = checkPromotion(p, err, court, code, r.Date); err != nil {
			return nil, err
		}
		r.PromotionCode = lo.ToPtr(promo.Code)
	}
	quote := booking.QuoteReservation(court, day, r.StartHour, r.EndHour, rules, promo)
	r.TotalPrice = quote.Total

	payment := &booking.Payment{
		ID:            uuid.New(),
		ReservationID: r.ID,
		UserID:        u.ID,
		Amount:        quote.Total,
		Method:        method,
		Status:        booking.PaymentPending,
		CreatedAt:     now,
	}
	if method == booking.PaymentCard {
		r.Status = booking.ReservationConfirmed
		payment.Status = booking.PaymentPaid
	}

	if err := s.store.CreateReservation(ctx, tx, r); err != nil {
		return nil, fmt.Errorf("failed to create reservation: %w", err)
	}
	if err := s.store.CreatePayment(ctx, tx, payment); err != nil {
		return nil, fmt.Errorf("failed to create payment: %w", err)
	}
	if payment.Status == booking.PaymentPaid {
		if err := s.recordCommission(ctx, tx, court, r); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	s.publish(ctx, events.RKReservationCreated, events.ReservationCreated{
		ReservationID: r.ID,
		CourtID:       court.ID,
		CourtName:     court.Name,
		OwnerID:       court.OwnerID,
		UserID:        u.ID,
		PlayerName:    r.PlayerName,
		Date:          r.Date,
		StartHour:     r.StartHour,
		EndHour:       r.EndHour,
		Total:         r.TotalPrice,
	})
	return &ReservationResult{Reservation: r, Payment: payment, Quote: quote}, nil
}

func (s *ReservationService) recordCommission(ctx context.Context, tx *sqlx.Tx, court *booking.Court, r *booking.Reservation) error {
	amount := booking.CommissionAmount(r.TotalPrice, s.commissionPercent)
	if amount == 0 {
		return nil
	}
	has, err := s.store.HasCommissionTx(ctx, tx, r.ID)
	if err != nil || has {
		return err
	}
	return s.store.CreateCommission(ctx, tx, &booking.Commission{
		ID:            uuid.New(),
		ReservationID: r.ID,
		CourtID:       court.ID,
		OwnerID:       court.OwnerID,
		Amount:        amount,
		Percent:       s.commissionPercent,
		CreatedAt:     s.now().UTC(),
	})
}

// reservationFor loads a reservation the current user booked or whose court they manage.
func (s *ReservationService) reservationFor(ctx context.Context, id uuid.UUID) (*booking.Reservation, *booking.Court, *users.User, bool, error) {
	u, err := currentUser(ctx)
	if err != nil {
		return nil, nil, nil, false, err
	}
	r, err := s.store.GetReservation(ctx, id)
	if err != nil {
		return nil, nil, nil, false, notFound("reservation", err)
	}
	court, err := s.courts.GetCourt(ctx, r.CourtID)
	if err != nil {
		return nil, nil, nil, false, notFound("court", err)
	}
	manager, err := s.access.CanManageCourt(ctx, u, court)
	if err != nil {
		return nil, nil, nil, false, err
	}
	if r.UserID != u.ID && !manager {
		return nil, nil, nil, false, ErrForbidden
	}
	return r, court, u, manager, nil
}

type ReservationDetail struct {
	Reservation *booking.Reservation `json:"reservation"`
	Court       *booking.Court       `json:"court"`
	Payment     *booking.Payment     `json:"payment,omitempty"`
}

func (s *ReservationService) Get(ctx context.Context, id uuid.UUID) (*ReservationDetail, error) {
	r, court, _, _, err := s.reservationFor(ctx, id)
	if err != nil {
		return nil, err
	}
	d := &ReservationDetail{Reservation: r, Court: court}
	if p, err := s.store.GetPayment(ctx, id); err == nil {
		d.Payment = p
	}
	return d, nil
}

// Cancel is allowed to the player who booked and to the court's managers. A paid payment is refunded
// and the platform commission dropped.
func (s *ReservationService) Cancel(ctx context.Context, id uuid.UUID) (*booking.Reservation, error) {
	r, court, u, _, err := s.reservationFor(ctx, id)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	r, err = s.store.GetReservationTx(ctx, tx, id)
	if err != nil {
		return nil, notFound("reservation", err)
	}
	switch r.Status {
	case booking.ReservationCancelled:
		return nil, conflictf("reservation is already cancelled")
	case booking.ReservationCompleted:
		return nil, conflictf("a completed reservation cannot be cancelled")
	}

	if err := s.store.UpdateStatus(ctx, tx, r.ID, booking.ReservationCancelled); err != nil {
		return nil, fmt.Errorf("failed to cancel reservation: %w", err)
	}
	payment, err := s.store.GetPaymentTx(ctx, tx, r.ID)
	if err != nil && !isNoRows(err) {
		return nil, err
	}
	if payment != nil && payment.Status == booking.PaymentPaid {
		if err := s.store.UpdatePaymentStatus(ctx, tx, payment.ID, booking.PaymentRefunded); err != nil {
			return nil, fmt.Errorf("failed to refund payment: %w", err)
		}
	}
	if err := s.store.DeleteCommission(ctx, tx, r.ID); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	r.Status = booking.ReservationCancelled

	s.publish(ctx, events.RKReservationCancelled, events.ReservationCancelled{
		ReservationID: r.ID,
		CourtName:     court.Name,
		OwnerID:       court.OwnerID,
		UserID:        r.UserID,
		CancelledBy:   u.ID,
		Date:          r.Date,
		StartHour:     r.StartHour,
		EndHour:       r.EndHour,
	})
	return r, nil
}

// Confirm is used by court managers once a cash or transfer payment is collected.
func (s *ReservationService) Confirm(ctx context.Context, id uuid.UUID) (*booking.Reservation, error) {
	r, court, _, manager, err := s.reservationFor(ctx, id)
	if err != nil {
		return nil, err
	}
	if !manager {
		return nil, ErrForbidden
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	r, err = s.store.GetReservationTx(ctx, tx, id)
	if err != nil {
		return nil, notFound("reservation", err)
	}
	if r.Status != booking.ReservationPending {
		return nil, conflictf("only pending reservations can be confirmed, this one is %s", r.Status)
	}
	if err := s.store.UpdateStatus(ctx, tx, r.ID, booking.ReservationConfirmed); err != nil {
		return nil, err
	}
	payment, err := s.store.GetPaymentTx(ctx, tx, r.ID)
	if err != nil && !isNoRows(err) {
		return nil, err
	}
	if payment != nil && payment.Status == booking.PaymentPending {
		if err := s.store.UpdatePaymentStatus(ctx, tx, payment.ID, booking.PaymentPaid); err != nil {
			return nil, err
		}
		if err := s.recordCommission(ctx, tx, court, r); err != nil {
			return nil, err
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	r.Status = booking.ReservationConfirmed
	return r, nil
}

func (s *ReservationService) Mine(ctx context.Context) ([]booking.Reservation, error) {
	u, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	return s.store.ListByUser(ctx, u.ID)
}

type Calendar struct {
	Court        *booking.Court        `json:"court"`
	From         string                `json:"from"`
	To           string                `json:"to"`
	Reservations []booking.Reservation `json:"reservations"`
	Conflicts    []booking.Conflict    `json:"conflicts"`
}

// Calendar returns the reservations of a managed court in [from, to] with any overlapping pairs flagged.
func (s *ReservationService) Calendar(ctx context.Context, courtID uuid.UUID, from, to string) (*Calendar, error) {
	court, _, err := s.access.managedCourt(ctx, courtID)
	if err != nil {
		return nil, err
	}
	fromDay, err := s.parseDate(from)
	if err != nil {
		return nil, err
	}
	toDay := fromDay.AddDate(0, 0, 6)
	if to != "" {
		if toDay, err = s.parseDate(to); err != nil {
			return nil, err
		}
	}
	if toDay.Before(fromDay) {
		return nil, invalidf("to must not be before from")
	}

	list, err := s.store.ListByCourts(ctx, []uuid.UUID{courtID}, booking.FormatDate(fromDay), booking.FormatDate(toDay))
	if err != nil {
		return nil, err
	}
	return &Calendar{
		Court:        court,
		From:         booking.FormatDate(fromDay),
		To:           booking.FormatDate(toDay),
		Reservations: list,
		Conflicts:    booking.FindConflicts(list),
	}, nil
}

// Conflicts reports overlapping reservations of a managed court. Overlaps can only come from data
// written before the transactional check existed or imported directly.
func (s *ReservationService) Conflicts(ctx context.Context, courtID uuid.UUID, from, to string) ([]booking.Conflict, error) {
	cal, err := s.Calendar(ctx, courtID, from, to)
	if err != nil {
		return nil, err
	}
	return cal.Conflicts, nil
}

type BlockInput struct {
	Date      string `json:"date"`
	StartHour int    `json:"start_hour"`
	EndHour   int    `json:"end_hour"`
	Notes     string `json:"notes"`
}

// Block takes slots off the market (maintenance, phone bookings) with a free confirmed reservation.
func (s *ReservationService) Block(ctx context.Context, courtID uuid.UUID, in BlockInput) (*booking.Reservation, error) {
	court, u, err := s.access.managedCourt(ctx, courtID)
	if err != nil {
		return nil, err
	}
	day, err := s.parseDate(in.Date)
	if err != nil {
		return nil, err
	}
	notes := strings.TrimSpace(in.Notes)
	if notes == "" {
		notes = "blocked"
	}
	r := &booking.Reservation{
		ID:         uuid.New(),
		CourtID:    court.ID,
		UserID:     u.ID,
		Date:       booking.FormatDate(day),
		StartHour:  in.StartHour,
		EndHour:    in.EndHour,
		Status:     booking.ReservationConfirmed,
		PlayerName: u.Username,
		Phone:      "-",
		Notes:      notes,
		CreatedAt:  s.now().UTC(),
	}
	if err := booking.ValidateReservation(court, r, s.now()); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	n, err := s.store.CountOverlappingTx(ctx, tx, court.ID, r.Date, r.StartHour, r.EndHour)
	if err != nil {
		return nil, err
	}
	if n > 0 {
		return nil, conflictf("%s is already booked on %s", court.Name, r.Label())
	}
	if err := s.store.CreateReservation(ctx, tx, r); err != nil {
		return nil, fmt.Errorf("failed to block slot: %w", err)
	}
	return r, tx.Commit()
}

func (s *ReservationService) publish(ctx context.Context, key string, v any) {
	if err := s.events.Publish(ctx, key, v); err != nil {
		slog.Error("failed to publish event", "key", key, "error", err)
	}
}
