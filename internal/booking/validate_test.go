package booking

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateReservation(t *testing.T) {
	now := time.Date(2026, 10, 19, 15, 30, 0, 0, time.UTC)
	court := &Court{OpenHour: 9, CloseHour: 23}
	valid := Reservation{PlayerName: "Juan", Phone: "+54 11 5555 5555", Date: "2026-10-20", StartHour: 18, EndHour: 19}

	testCases := []struct {
		name   string
		mutate func(r *Reservation)
		field  string
	}{
		{"valid", func(r *Reservation) {}, ""},
		{"empty phone", func(r *Reservation) { r.Phone = "  " }, "phone"},
		{"empty player", func(r *Reservation) { r.PlayerName = "" }, "player_name"},
		{"past date", func(r *Reservation) { r.Date = "2026-10-18" }, "date"},
		{"earlier hour today", func(r *Reservation) { r.Date = "2026-10-19"; r.StartHour = 14; r.EndHour = 15 }, "start_hour"},
		{"current hour today", func(r *Reservation) { r.Date = "2026-10-19"; r.StartHour = 15; r.EndHour = 16 }, "start_hour"},
		{"later hour today", func(r *Reservation) { r.Date = "2026-10-19"; r.StartHour = 16; r.EndHour = 17 }, ""},
		{"missing date", func(r *Reservation) { r.Date = "" }, "date"},
		{"end before start", func(r *Reservation) { r.EndHour = 17 }, "end_hour"},
		{"before opening", func(r *Reservation) { r.StartHour = 8 }, "start_hour"},
		{"after closing", func(r *Reservation) { r.StartHour = 22; r.EndHour = 24 }, "start_hour"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r := valid
			tc.mutate(&r)
			err := ValidateReservation(court, &r, now)
			if tc.field == "" {
				assert.NoError(t, err)
				return
			}
			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tc.field, verr.Field)
		})
	}
}

func TestValidateCourt(t *testing.T) {
	c := Court{Name: "Cancha", Sport: "futbol5", PricePerHour: 1000, OpenHour: 8, CloseHour: 23}
	assert.NoError(t, ValidateCourt(&c))

	bad := c
	bad.CloseHour = 25
	assert.Error(t, ValidateCourt(&bad))

	bad = c
	bad.PricePerHour = 0
	assert.Error(t, ValidateCourt(&bad))

	bad = c
	bad.Latitude = 91
	assert.Error(t, ValidateCourt(&bad))
}

func TestParseDate(t *testing.T) {
	now := time.Date(2026, 10, 19, 22, 0, 0, 0, time.UTC)

	d, err := ParseDate("tomorrow", now)
	require.NoError(t, err)
	assert.Equal(t, "2026-10-20", FormatDate(d))

	d, err = ParseDate("2026-12-01", now)
	require.NoError(t, err)
	assert.Equal(t, "2026-12-01", FormatDate(d))

	_, err = ParseDate("01/12/2026", now)
	assert.Error(t, err)

	from, _ := ParseDate("2026-10-01", now)
	to, _ := ParseDate("2026-10-31", now)
	assert.Equal(t, 31, DaysBetween(from, to))
	assert.Equal(t, 0, DaysBetween(to, from))
}
