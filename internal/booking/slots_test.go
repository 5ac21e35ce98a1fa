package booking

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlots(t *testing.T) {
	court := &Court{ID: uuid.New(), PricePerHour: 8000, OpenHour: 16, CloseHour: 22}
	date, err := time.Parse(DateLayout, "2026-10-21")
	require.NoError(t, err)
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

	reservations := []Reservation{
		{CourtID: court.ID, Date: "2026-10-21", StartHour: 18, EndHour: 20, Status: ReservationConfirmed},
		{CourtID: court.ID, Date: "2026-10-21", StartHour: 16, EndHour: 17, Status: ReservationCancelled},
		{CourtID: uuid.New(), Date: "2026-10-21", StartHour: 20, EndHour: 21, Status: ReservationConfirmed},
	}
	rules := []PricingRule{{Name: "Night", StartHour: 20, EndHour: 22, Multiplier: 1.25}}

	slots := Slots(court, date, reservations, rules, now)
	require.Len(t, slots, 6)

	available := map[int]bool{}
	for _, s := range slots {
		available[s.Hour] = s.Available
	}
	assert.True(t, available[16], "cancelled reservations free the slot")
	assert.True(t, available[17])
	assert.False(t, available[18])
	assert.False(t, available[19])
	assert.True(t, available[20], "reservations of other courts are ignored")

	assert.Equal(t, "20:00-21:00", slots[4].Label)
	assert.Equal(t, int64(10000), slots[4].Price)
	assert.Equal(t, int64(8000), slots[0].Price)
}

func TestSlots_PastHours(t *testing.T) {
	court := &Court{ID: uuid.New(), PricePerHour: 8000, OpenHour: 10, CloseHour: 14}
	now := time.Date(2026, 10, 19, 11, 30, 0, 0, time.UTC)
	today, err := time.Parse(DateLayout, "2026-10-19")
	require.NoError(t, err)

	slots := Slots(court, today, nil, nil, now)
	require.Len(t, slots, 4)
	assert.True(t, slots[0].Past)
	assert.True(t, slots[1].Past, "the slot in progress can no longer be booked")
	assert.False(t, slots[2].Past)
	assert.True(t, slots[2].Available)

	yesterday := today.AddDate(0, 0, -1)
	for _, s := range Slots(court, yesterday, nil, nil, now) {
		assert.False(t, s.Available)
	}
}
