package booking

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPricingRuleMatches(t *testing.T) {
	rule := PricingRule{DaysOfWeek: "5, 6", StartHour: 18, EndHour: 23}

	assert.True(t, rule.Matches(time.Friday, 18))
	assert.True(t, rule.Matches(time.Saturday, 22))
	assert.False(t, rule.Matches(time.Saturday, 23))
	assert.False(t, rule.Matches(time.Monday, 19))

	everyDay := PricingRule{StartHour: 0, EndHour: 8}
	assert.True(t, everyDay.Matches(time.Sunday, 7))
	assert.False(t, everyDay.Matches(time.Sunday, 8))
}

func TestQuoteReservation(t *testing.T) {
	court := &Court{ID: uuid.New(), OwnerID: uuid.New(), PricePerHour: 10000, OpenHour: 8, CloseHour: 23}
	// 2026-10-23 is a Friday
	friday, err := time.Parse(DateLayout, "2026-10-23")
	require.NoError(t, err)

	rules := []PricingRule{
		{Name: "Prime time", StartHour: 18, EndHour: 23, Multiplier: 1.5, Priority: 1},
		{Name: "Weekend night", DaysOfWeek: "5,6", StartHour: 20, EndHour: 23, Multiplier: 2, Priority: 5},
		{Name: "Low priority", StartHour: 0, EndHour: 24, Multiplier: 0.5, Priority: 0},
	}

	t.Run("rules by priority", func(t *testing.T) {
		q := QuoteReservation(court, friday, 17, 21, rules, nil)
		require.Len(t, q.Hours, 4)
		assert.Equal(t, int64(5000), q.Hours[0].Price)
		assert.Equal(t, "Low priority", q.Hours[0].Rule)
		assert.Equal(t, int64(15000), q.Hours[1].Price)
		assert.Equal(t, int64(15000), q.Hours[2].Price)
		assert.Equal(t, int64(20000), q.Hours[3].Price)
		assert.Equal(t, "Weekend night", q.Hours[3].Rule)
		assert.Equal(t, int64(55000), q.Subtotal)
		assert.Equal(t, q.Subtotal, q.Total)
	})

	t.Run("no rules uses base price", func(t *testing.T) {
		q := QuoteReservation(court, friday, 10, 12, nil, nil)
		assert.Equal(t, int64(20000), q.Total)
		assert.Zero(t, q.Discount)
	})

	t.Run("promotion discount", func(t *testing.T) {
		promo := &Promotion{Code: "SPRING", DiscountPercent: 15, Active: true}
		q := QuoteReservation(court, friday, 10, 12, nil, promo)
		assert.Equal(t, int64(20000), q.Subtotal)
		assert.Equal(t, int64(3000), q.Discount)
		assert.Equal(t, int64(17000), q.Total)
		assert.Equal(t, "SPRING", q.PromotionCode)
	})
}

func TestPromotionScope(t *testing.T) {
	ownerID := uuid.New()
	court := &Court{ID: uuid.New(), OwnerID: ownerID}
	otherCourt := &Court{ID: uuid.New(), OwnerID: uuid.New()}

	ownerWide := Promotion{OwnerID: ownerID, Active: true, ValidFrom: "2026-10-01", ValidTo: "2026-10-31"}
	assert.True(t, ownerWide.AppliesTo(court))
	assert.False(t, ownerWide.AppliesTo(otherCourt))
	assert.True(t, ownerWide.ValidOn("2026-10-31"))
	assert.False(t, ownerWide.ValidOn("2026-11-01"))

	courtOnly := Promotion{OwnerID: ownerID, CourtID: &otherCourt.ID, Active: false, ValidFrom: "2026-10-01", ValidTo: "2026-10-31"}
	assert.False(t, courtOnly.AppliesTo(court))
	assert.True(t, courtOnly.AppliesTo(otherCourt))
	assert.False(t, courtOnly.ValidOn("2026-10-15"), "inactive promotions are never valid")
}

func TestCommissionAmount(t *testing.T) {
	assert.Equal(t, int64(2500), CommissionAmount(25000, 10))
	assert.Equal(t, int64(0), CommissionAmount(25000, 0))
	assert.Equal(t, int64(0), CommissionAmount(0, 10))
	assert.Equal(t, int64(1235), CommissionAmount(12345, 10))
}
