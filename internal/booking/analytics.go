package booking

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

type CourtStats struct {
	CourtID      uuid.UUID `json:"court_id"`
	CourtName    string    `json:"court_name"`
	Reservations int       `json:"reservations"`
	BookedHours  int       `json:"booked_hours"`
	OpenHours    int       `json:"open_hours"`
	Occupancy    float64   `json:"occupancy"`
	// Revenue only counts settled reservations; BookedValue adds the pending ones.
	Revenue     int64 `json:"revenue"`
	BookedValue int64 `json:"booked_value"`
}

type HourCount struct {
	Hour  int `json:"hour"`
	Count int `json:"count"`
}

type Dashboard struct {
	From         string       `json:"from"`
	To           string       `json:"to"`
	Courts       []CourtStats `json:"courts"`
	TotalRevenue int64        `json:"total_revenue"`
	TotalBooked  int64        `json:"total_booked"`
	Occupancy    float64      `json:"occupancy"`
	ByWeekday    [7]int       `json:"by_weekday"`
	PeakHours    []HourCount  `json:"peak_hours"`
}

// InRange keeps the active reservations dated within [from, to].
func InRange(reservations []Reservation, from, to time.Time) []Reservation {
	first, last := FormatDate(from), FormatDate(to)
	return lo.Filter(reservations, func(r Reservation, _ int) bool {
		return r.Active() && r.Date >= first && r.Date <= last
	})
}

// BuildDashboard aggregates revenue and occupancy of courts over [from, to].
// Pending reservations still take up hours but are not revenue until settled.
func BuildDashboard(courts []Court, reservations []Reservation, from, to time.Time, peak int) Dashboard {
	active := InRange(reservations, from, to)
	days := DaysBetween(from, to)
	byCourt := lo.GroupBy(active, func(r Reservation) uuid.UUID { return r.CourtID })

	d := Dashboard{From: FormatDate(from), To: FormatDate(to)}
	var booked, open int
	for i := range courts {
		c := &courts[i]
		rs := byCourt[c.ID]
		stats := CourtStats{
			CourtID:      c.ID,
			CourtName:    c.Name,
			Reservations: len(rs),
			BookedHours:  lo.SumBy(rs, func(r Reservation) int { return r.Hours() }),
			OpenHours:    c.OpenHours() * days,
			Revenue: lo.SumBy(rs, func(r Reservation) int64 {
				return lo.Ternary(r.Settled(), r.TotalPrice, 0)
			}),
			BookedValue: lo.SumBy(rs, func(r Reservation) int64 { return r.TotalPrice }),
		}
		if stats.OpenHours > 0 {
			stats.Occupancy = float64(stats.BookedHours) / float64(stats.OpenHours)
		}
		booked += stats.BookedHours
		open += stats.OpenHours
		d.TotalRevenue += stats.Revenue
		d.TotalBooked += stats.BookedValue
		d.Courts = append(d.Courts, stats)
	}
	if open > 0 {
		d.Occupancy = float64(booked) / float64(open)
	}
	d.ByWeekday = WeekdayHistogram(active)
	d.PeakHours = PeakHours(active, peak)
	return d
}

func WeekdayHistogram(reservations []Reservation) [7]int {
	var out [7]int
	for _, r := range reservations {
		t, err := time.Parse(DateLayout, r.Date)
		if err != nil {
			continue
		}
		out[t.Weekday()]++
	}
	return out
}

// PeakHours counts booked hours by hour of day, busiest first, at most n entries.
func PeakHours(reservations []Reservation, n int) []HourCount {
	counts := map[int]int{}
	for _, r := range reservations {
		for h := r.StartHour; h < r.EndHour; h++ {
			counts[h]++
		}
	}
	out := lo.MapToSlice(counts, func(h, c int) HourCount { return HourCount{Hour: h, Count: c} })
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Hour < out[j].Hour
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
