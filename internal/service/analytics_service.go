package service

import (
	"context"
	"sort"
	"time"

	"github.com/canchapp/canchapp/internal/booking"
	"github.com/canchapp/canchapp/internal/store"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

const (
	defaultDashboardDays = 30
	peakHoursShown       = 5
)

type AnalyticsService struct {
	courts       *store.CourtStore
	reservations *store.ReservationStore
	now          func() time.Time
}

func NewAnalyticsService(courts *store.CourtStore, reservations *store.ReservationStore) *AnalyticsService {
	return &AnalyticsService{courts: courts, reservations: reservations, now: time.Now}
}

// dateRange parses [from, to]; missing bounds default to the last 30 days up to today.
func (s *AnalyticsService) dateRange(from, to string) (time.Time, time.Time, error) {
	now := s.now()
	end, err := booking.ParseDate(lo.Ternary(to == "", "today", to), now)
	if err != nil {
		return time.Time{}, time.Time{}, invalidf("%v", err)
	}
	start := end.AddDate(0, 0, -(defaultDashboardDays - 1))
	if from != "" {
		if start, err = booking.ParseDate(from, now); err != nil {
			return time.Time{}, time.Time{}, invalidf("%v", err)
		}
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, invalidf("to must not be before from")
	}
	return start, end, nil
}

// OwnerDashboard aggregates revenue and occupancy of the current owner's courts.
func (s *AnalyticsService) OwnerDashboard(ctx context.Context, from, to string) (*booking.Dashboard, error) {
	u, err := requireOwner(ctx)
	if err != nil {
		return nil, err
	}
	start, end, err := s.dateRange(from, to)
	if err != nil {
		return nil, err
	}
	courts, err := s.courts.ListCourts(ctx, store.CourtFilter{OwnerID: &u.ID})
	if err != nil {
		return nil, err
	}
	ids := lo.Map(courts, func(c booking.Court, _ int) uuid.UUID { return c.ID })
	reservations, err := s.reservations.ListByCourts(ctx, ids, booking.FormatDate(start), booking.FormatDate(end))
	if err != nil {
		return nil, err
	}
	d := booking.BuildDashboard(courts, reservations, start, end, peakHoursShown)
	return &d, nil
}

type OwnerCommission struct {
	OwnerID      uuid.UUID `json:"owner_id"`
	Reservations int       `json:"reservations"`
	Amount       int64     `json:"amount"`
}

type CommissionReport struct {
	From    string               `json:"from"`
	To      string               `json:"to"`
	Total   int64                `json:"total"`
	ByOwner []OwnerCommission    `json:"by_owner"`
	Items   []booking.Commission `json:"items"`
}

// CommissionSummary is the platform's earnings over [from, to], by reservation date.
func (s *AnalyticsService) CommissionSummary(ctx context.Context, from, to string) (*CommissionReport, error) {
	if _, err := requireAdmin(ctx); err != nil {
		return nil, err
	}
	start, end, err := s.dateRange(from, to)
	if err != nil {
		return nil, err
	}
	items, err := s.reservations.ListCommissions(ctx, booking.FormatDate(start), booking.FormatDate(end))
	if err != nil {
		return nil, err
	}

	byOwner := lo.MapToSlice(lo.GroupBy(items, func(c booking.Commission) uuid.UUID { return c.OwnerID }),
		func(owner uuid.UUID, cs []booking.Commission) OwnerCommission {
			return OwnerCommission{
				OwnerID:      owner,
				Reservations: len(cs),
				Amount:       lo.SumBy(cs, func(c booking.Commission) int64 { return c.Amount }),
			}
		})
	sort.Slice(byOwner, func(i, j int) bool {
		if byOwner[i].Amount != byOwner[j].Amount {
			return byOwner[i].Amount > byOwner[j].Amount
		}
		return byOwner[i].OwnerID.String() < byOwner[j].OwnerID.String()
	})

	return &CommissionReport{
		From:    booking.FormatDate(start),
		To:      booking.FormatDate(end),
		Total:   lo.SumBy(items, func(c booking.Commission) int64 { return c.Amount }),
		ByOwner: byOwner,
		Items:   items,
	}, nil
}
