package service

import (
	"context"
	"testing"

	"github.com/canchapp/canchapp/internal/booking"
	"github.com/canchapp/canchapp/internal/events"
	users "github.com/canchapp/canchapp/internal/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const friday = "2030-05-10"

func TestReservationService_CreateAndOverlap(t *testing.T) {
	app := newTestApp(t)
	_, ownerCtx := app.user(t, "owner", users.RoleOwner)
	_, playerCtx := app.user(t, "player", users.RoleUser)
	court := app.approvedCourt(t, ownerCtx, padelCourt("Central"))

	res, err := app.reservations.Create(playerCtx, ReservationInput{
		CourtID:    court.ID,
		Date:       friday,
		StartHour:  18,
		EndHour:    20,
		PlayerName: "Juan",
		Phone:      "341555000",
	})
	require.NoError(t, err)
	assert.Equal(t, booking.ReservationPending, res.Reservation.Status)
	assert.Equal(t, booking.PaymentCash, res.Payment.Method)
	assert.Equal(t, booking.PaymentPending, res.Payment.Status)
	assert.Equal(t, int64(20000), res.Reservation.TotalPrice)
	assert.Contains(t, app.events.keys, events.RKReservationCreated)

	testCases := []struct {
		name       string
		start, end int
		wantErr    bool
	}{
		{"same slot", 18, 20, true},
		{"overlaps the end", 19, 21, true},
		{"contains it", 17, 22, true},
		{"touches the end", 20, 21, false},
		{"touches the start", 16, 18, false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := app.reservations.Create(playerCtx, ReservationInput{
				CourtID:    court.ID,
				Date:       friday,
				StartHour:  tc.start,
				EndHour:    tc.end,
				PlayerName: "Juan",
				Phone:      "341555000",
			})
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrConflict)
			} else {
				assert.NoError(t, err)
			}
		})
	}

	slots, err := app.reservations.Availability(ownerCtx, court.ID, friday)
	require.NoError(t, err)
	booked := 0
	for _, s := range slots {
		if !s.Available {
			booked++
		}
	}
	assert.Equal(t, 5, booked, "16-18, 18-20 and 20-21 are taken")
}

func TestReservationService_CreateValidation(t *testing.T) {
	app := newTestApp(t)
	_, ownerCtx := app.user(t, "owner", users.RoleOwner)
	_, playerCtx := app.user(t, "player", users.RoleUser)
	court := app.approvedCourt(t, ownerCtx, padelCourt("Central"))

	base := ReservationInput{CourtID: court.ID, Date: friday, StartHour: 10, EndHour: 11, PlayerName: "Ana", Phone: "1"}

	in := base
	in.Date = "2030-05-01"
	_, err := app.reservations.Create(playerCtx, in)
	var verr *booking.ValidationError
	assert.ErrorAs(t, err, &verr)

	in = base
	in.StartHour, in.EndHour = 6, 9
	_, err = app.reservations.Create(playerCtx, in)
	assert.ErrorAs(t, err, &verr)

	in = base
	in.PlayerName = " "
	_, err = app.reservations.Create(playerCtx, in)
	assert.ErrorAs(t, err, &verr)

	in = base
	in.PaymentMethod = "bitcoin"
	_, err = app.reservations.Create(playerCtx, in)
	assert.ErrorIs(t, err, ErrInvalid)

	pending, err := app.courts.Create(ownerCtx, padelCourt("Unreviewed"))
	require.NoError(t, err)
	in = base
	in.CourtID = pending.ID
	_, err = app.reservations.Create(playerCtx, in)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = app.reservations.Create(context.Background(), base)
	assert.ErrorIs(t, err, ErrUnauthorized)

	// the clock is 10:00 on 2030-05-08, so hours up to 10 are gone for today
	today := booking.FormatDate(fixedNow)
	slots, err := app.reservations.Availability(playerCtx, court.ID, today)
	require.NoError(t, err)
	assert.True(t, slots[0].Past)

	in = base
	in.Date, in.StartHour, in.EndHour = today, 8, 9
	_, err = app.reservations.Create(playerCtx, in)
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "start_hour", verr.Field)

	in.StartHour, in.EndHour = 10, 11
	_, err = app.reservations.Create(playerCtx, in)
	assert.ErrorAs(t, err, &verr)

	_, err = app.reservations.Block(ownerCtx, court.ID, BlockInput{Date: today, StartHour: 9, EndHour: 10})
	assert.ErrorAs(t, err, &verr)

	in.StartHour, in.EndHour = 11, 12
	_, err = app.reservations.Create(playerCtx, in)
	assert.NoError(t, err)
}

func TestReservationService_CardPaymentRecordsCommission(t *testing.T) {
	app := newTestApp(t)
	owner, ownerCtx := app.user(t, "owner", users.RoleOwner)
	_, playerCtx := app.user(t, "player", users.RoleUser)
	court := app.approvedCourt(t, ownerCtx, padelCourt("Central"))

	res, err := app.reservations.Create(playerCtx, ReservationInput{
		CourtID:       court.ID,
		Date:          friday,
		StartHour:     9,
		EndHour:       10,
		PlayerName:    "Juan",
		Phone:         "341",
		PaymentMethod: booking.PaymentCard,
	})
	require.NoError(t, err)
	assert.Equal(t, booking.ReservationConfirmed, res.Reservation.Status)
	assert.Equal(t, booking.PaymentPaid, res.Payment.Status)

	report, err := app.analytics.CommissionSummary(app.admin(t), "2030-05-01", "2030-05-31")
	require.NoError(t, err)
	assert.Equal(t, int64(1000), report.Total)
	require.Len(t, report.ByOwner, 1)
	assert.Equal(t, owner.ID, report.ByOwner[0].OwnerID)

	// cancelling refunds and drops the commission
	cancelled, err := app.reservations.Cancel(playerCtx, res.Reservation.ID)
	require.NoError(t, err)
	assert.Equal(t, booking.ReservationCancelled, cancelled.Status)

	detail, err := app.reservations.Get(ownerCtx, res.Reservation.ID)
	require.NoError(t, err)
	assert.Equal(t, booking.PaymentRefunded, detail.Payment.Status)

	report, err = app.analytics.CommissionSummary(app.admin(t), "2030-05-01", "2030-05-31")
	require.NoError(t, err)
	assert.Zero(t, report.Total)
	var rows int
	require.NoError(t, app.db.Get(&rows, `SELECT COUNT(*) FROM commissions WHERE reservation_id = ?`, res.Reservation.ID))
	assert.Zero(t, rows)

	_, err = app.reservations.Cancel(playerCtx, res.Reservation.ID)
	assert.ErrorIs(t, err, ErrConflict)

	// the freed slot can be booked again
	_, err = app.reservations.Create(playerCtx, ReservationInput{
		CourtID: court.ID, Date: friday, StartHour: 9, EndHour: 10, PlayerName: "Otro", Phone: "1",
	})
	assert.NoError(t, err)
}

func TestReservationService_ConfirmAndPermissions(t *testing.T) {
	app := newTestApp(t)
	_, ownerCtx := app.user(t, "owner", users.RoleOwner)
	_, playerCtx := app.user(t, "player", users.RoleUser)
	_, strangerCtx := app.user(t, "stranger", users.RoleUser)
	staff, _ := app.user(t, "staff", users.RoleUser)
	court := app.approvedCourt(t, ownerCtx, padelCourt("Central"))

	res, err := app.reservations.Create(playerCtx, ReservationInput{
		CourtID: court.ID, Date: friday, StartHour: 10, EndHour: 12, PlayerName: "Ana", Phone: "1",
		PaymentMethod: booking.PaymentTransfer,
	})
	require.NoError(t, err)

	_, err = app.reservations.Get(strangerCtx, res.Reservation.ID)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = app.reservations.Confirm(playerCtx, res.Reservation.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = app.collaborators.Add(ownerCtx, court.ID, staff.Email, users.CollaboratorStaff)
	require.NoError(t, err)
	staffCtx := users.WithUser(context.Background(), staff)

	confirmed, err := app.reservations.Confirm(staffCtx, res.Reservation.ID)
	require.NoError(t, err)
	assert.Equal(t, booking.ReservationConfirmed, confirmed.Status)

	_, err = app.reservations.Confirm(ownerCtx, res.Reservation.ID)
	assert.ErrorIs(t, err, ErrConflict)

	report, err := app.analytics.CommissionSummary(app.admin(t), "2030-05-01", "2030-05-31")
	require.NoError(t, err)
	assert.Equal(t, int64(2000), report.Total)

	mine, err := app.reservations.Mine(playerCtx)
	require.NoError(t, err)
	assert.Len(t, mine, 1)
}

func TestReservationService_PricingRulesAndPromotion(t *testing.T) {
	app := newTestApp(t)
	_, ownerCtx := app.user(t, "owner", users.RoleOwner)
	_, playerCtx := app.user(t, "player", users.RoleUser)
	court := app.approvedCourt(t, ownerCtx, padelCourt("Central"))

	_, err := app.pricing.CreateRule(ownerCtx, court.ID, RuleInput{
		Name: "Friday night", DaysOfWeek: "5", StartHour: 19, EndHour: 23, Multiplier: 1.5, Priority: 1,
	})
	require.NoError(t, err)
	_, err = app.pricing.CreateRule(ownerCtx, court.ID, RuleInput{
		Name: "Late", StartHour: 21, EndHour: 23, Multiplier: 2, Priority: 2,
	})
	require.NoError(t, err)
	_, err = app.pricing.CreatePromotion(ownerCtx, PromotionInput{
		Code: "verano", DiscountPercent: 10, ValidFrom: "2030-05-01", ValidTo: "2030-05-31",
	})
	require.NoError(t, err)

	quote, err := app.reservations.Quote(playerCtx, QuoteInput{
		CourtID: court.ID, Date: friday, StartHour: 18, EndHour: 22, PromotionCode: "VERANO",
	})
	require.NoError(t, err)
	// 18 base, 19 and 20 friday night, 21 late wins by priority
	assert.Equal(t, []int64{10000, 15000, 15000, 20000}, []int64{quote.Hours[0].Price, quote.Hours[1].Price, quote.Hours[2].Price, quote.Hours[3].Price})
	assert.Equal(t, int64(60000), quote.Subtotal)
	assert.Equal(t, int64(6000), quote.Discount)
	assert.Equal(t, int64(54000), quote.Total)

	_, err = app.reservations.Quote(playerCtx, QuoteInput{
		CourtID: court.ID, Date: "2030-06-07", StartHour: 18, EndHour: 19, PromotionCode: "VERANO",
	})
	assert.ErrorIs(t, err, ErrInvalid)

	_, err = app.reservations.Create(playerCtx, ReservationInput{
		CourtID: court.ID, Date: friday, StartHour: 18, EndHour: 19, PlayerName: "Ana", Phone: "1",
		PromotionCode: "nope",
	})
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestReservationService_CalendarAndBlock(t *testing.T) {
	app := newTestApp(t)
	owner, ownerCtx := app.user(t, "owner", users.RoleOwner)
	_, playerCtx := app.user(t, "player", users.RoleUser)
	court := app.approvedCourt(t, ownerCtx, padelCourt("Central"))

	blocked, err := app.reservations.Block(ownerCtx, court.ID, BlockInput{Date: friday, StartHour: 8, EndHour: 10})
	require.NoError(t, err)
	assert.Equal(t, booking.ReservationConfirmed, blocked.Status)
	assert.Equal(t, "blocked", blocked.Notes)
	assert.Equal(t, owner.Username, blocked.PlayerName)
	assert.Zero(t, blocked.TotalPrice)

	_, err = app.reservations.Create(playerCtx, ReservationInput{
		CourtID: court.ID, Date: friday, StartHour: 9, EndHour: 10, PlayerName: "Ana", Phone: "1",
	})
	assert.ErrorIs(t, err, ErrConflict)

	_, err = app.reservations.Block(playerCtx, court.ID, BlockInput{Date: friday, StartHour: 12, EndHour: 13})
	assert.ErrorIs(t, err, ErrForbidden)

	cal, err := app.reservations.Calendar(ownerCtx, court.ID, "2030-05-08", "")
	require.NoError(t, err)
	assert.Equal(t, "2030-05-14", cal.To)
	assert.Len(t, cal.Reservations, 1)
	assert.Empty(t, cal.Conflicts)

	_, err = app.reservations.Calendar(ownerCtx, court.ID, "2030-05-10", "2030-05-08")
	assert.ErrorIs(t, err, ErrInvalid)
}
