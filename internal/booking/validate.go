package booking

import (
	"fmt"
	"strings"
	"time"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// ValidateReservation checks a reservation request against the court before it is priced.
// Hours that already started today are rejected the same way Slots reports them as past.
func ValidateReservation(c *Court, r *Reservation, now time.Time) error {
	today := FormatDate(now)
	if strings.TrimSpace(r.PlayerName) == "" {
		return invalid("player_name", "is required")
	}
	if strings.TrimSpace(r.Phone) == "" {
		return invalid("phone", "is required")
	}
	if r.Date == "" {
		return invalid("date", "is required")
	}
	if r.Date < today {
		return invalid("date", "%s is in the past", r.Date)
	}
	if r.Date == today && r.StartHour <= now.Hour() {
		return invalid("start_hour", "%02d:00 has already started", r.StartHour)
	}
	if r.StartHour >= r.EndHour {
		return invalid("end_hour", "must be after start_hour")
	}
	if r.StartHour < c.OpenHour || r.EndHour > c.CloseHour {
		return invalid("start_hour", "court is open from %02d:00 to %02d:00", c.OpenHour, c.CloseHour)
	}
	return nil
}

func ValidateCourt(c *Court) error {
	if strings.TrimSpace(c.Name) == "" {
		return invalid("name", "is required")
	}
	if strings.TrimSpace(c.Sport) == "" {
		return invalid("sport", "is required")
	}
	if c.PricePerHour <= 0 {
		return invalid("price_per_hour", "must be positive")
	}
	if c.OpenHour < 0 || c.CloseHour > 24 || c.OpenHour >= c.CloseHour {
		return invalid("open_hour", "opening hours must be within 0-24 and open before close")
	}
	if c.Latitude < -90 || c.Latitude > 90 || c.Longitude < -180 || c.Longitude > 180 {
		return invalid("latitude", "coordinates out of range")
	}
	return nil
}

func ValidatePricingRule(p *PricingRule) error {
	if strings.TrimSpace(p.Name) == "" {
		return invalid("name", "is required")
	}
	if p.StartHour < 0 || p.EndHour > 24 || p.StartHour >= p.EndHour {
		return invalid("start_hour", "hours must be within 0-24 and start before end")
	}
	if p.Multiplier <= 0 {
		return invalid("multiplier", "must be positive")
	}
	return nil
}

func ValidatePromotion(p *Promotion) error {
	if strings.TrimSpace(p.Code) == "" {
		return invalid("code", "is required")
	}
	if p.DiscountPercent <= 0 || p.DiscountPercent > 100 {
		return invalid("discount_percent", "must be between 1 and 100")
	}
	if p.ValidFrom == "" || p.ValidTo == "" || p.ValidTo < p.ValidFrom {
		return invalid("valid_to", "must not be before valid_from")
	}
	return nil
}
