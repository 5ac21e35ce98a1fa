package booking

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// PricingRule multiplies the court's hourly price for the hours and weekdays it covers.
// DaysOfWeek is a comma separated list of time.Weekday numbers (0 = Sunday); empty means every day.
type PricingRule struct {
	ID         uuid.UUID `db:"id" json:"id"`
	CourtID    uuid.UUID `db:"court_id" json:"court_id"`
	Name       string    `db:"name" json:"name"`
	DaysOfWeek string    `db:"days_of_week" json:"days_of_week"`
	StartHour  int       `db:"start_hour" json:"start_hour"`
	EndHour    int       `db:"end_hour" json:"end_hour"`
	Multiplier float64   `db:"multiplier" json:"multiplier"`
	Priority   int       `db:"priority" json:"priority"`
}

func (p *PricingRule) Matches(day time.Weekday, hour int) bool {
	if hour < p.StartHour || hour >= p.EndHour {
		return false
	}
	if strings.TrimSpace(p.DaysOfWeek) == "" {
		return true
	}
	for _, d := range strings.Split(p.DaysOfWeek, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(d))
		if err == nil && time.Weekday(n) == day {
			return true
		}
	}
	return false
}

type Promotion struct {
	ID              uuid.UUID  `db:"id" json:"id"`
	OwnerID         uuid.UUID  `db:"owner_id" json:"owner_id"`
	CourtID         *uuid.UUID `db:"court_id" json:"court_id,omitempty"`
	Code            string     `db:"code" json:"code"`
	DiscountPercent int        `db:"discount_percent" json:"discount_percent"`
	ValidFrom       string     `db:"valid_from" json:"valid_from"`
	ValidTo         string     `db:"valid_to" json:"valid_to"`
	Active          bool       `db:"active" json:"active"`
}

// ValidOn reports whether the promotion can be used for a reservation on date (YYYY-MM-DD).
func (p *Promotion) ValidOn(date string) bool {
	return p.Active && date >= p.ValidFrom && date <= p.ValidTo
}

// AppliesTo is true for the promotion's own court, or every court of the owner when no court is set.
func (p *Promotion) AppliesTo(c *Court) bool {
	if p.CourtID == nil {
		return p.OwnerID == c.OwnerID
	}
	return *p.CourtID == c.ID
}

type HourPrice struct {
	Hour  int    `json:"hour"`
	Price int64  `json:"price"`
	Rule  string `json:"rule,omitempty"`
}

type Quote struct {
	Hours         []HourPrice `json:"hours"`
	Subtotal      int64       `json:"subtotal"`
	Discount      int64       `json:"discount"`
	Total         int64       `json:"total"`
	PromotionCode string      `json:"promotion_code,omitempty"`
}

// ruleFor returns the highest priority rule matching the hour. Earlier rules win ties.
func ruleFor(rules []PricingRule, day time.Weekday, hour int) *PricingRule {
	var best *PricingRule
	for i := range rules {
		r := &rules[i]
		if !r.Matches(day, hour) {
			continue
		}
		if best == nil || r.Priority > best.Priority {
			best = r
		}
	}
	return best
}

func HourlyPrice(c *Court, rules []PricingRule, day time.Weekday, hour int) (int64, string) {
	rule := ruleFor(rules, day, hour)
	if rule == nil {
		return c.PricePerHour, ""
	}
	return int64(math.Round(float64(c.PricePerHour) * rule.Multiplier)), rule.Name
}

// QuoteReservation prices [start, end) on date. promo may be nil; it must already be checked with ValidOn/AppliesTo.
func QuoteReservation(c *Court, date time.Time, start, end int, rules []PricingRule, promo *Promotion) Quote {
	var q Quote
	for h := start; h < end; h++ {
		price, rule := HourlyPrice(c, rules, date.Weekday(), h)
		q.Hours = append(q.Hours, HourPrice{Hour: h, Price: price, Rule: rule})
		q.Subtotal += price
	}
	if promo != nil && promo.DiscountPercent > 0 {
		q.Discount = q.Subtotal * int64(promo.DiscountPercent) / 100
		q.PromotionCode = promo.Code
	}
	q.Total = q.Subtotal - q.Discount
	return q
}
