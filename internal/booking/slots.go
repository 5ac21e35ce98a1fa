package booking

import (
	"fmt"
	"time"
)

type Slot struct {
	Hour      int    `json:"hour"`
	Label     string `json:"label"`
	Available bool   `json:"available"`
	Past      bool   `json:"past,omitempty"`
	Price     int64  `json:"price"`
}

// Slots lists the one-hour slots of a court on date with availability and price.
// Slots that already started relative to now are reported as past and unavailable.
func Slots(c *Court, date time.Time, reservations []Reservation, rules []PricingRule, now time.Time) []Slot {
	day := FormatDate(date)
	today := FormatDate(now)
	slots := make([]Slot, 0, c.OpenHours())
	for h := c.OpenHour; h < c.CloseHour; h++ {
		price, _ := HourlyPrice(c, rules, date.Weekday(), h)
		s := Slot{
			Hour:      h,
			Label:     fmt.Sprintf("%02d:00-%02d:00", h, h+1),
			Available: true,
			Price:     price,
		}
		if day < today || (day == today && h <= now.Hour()) {
			s.Past = true
			s.Available = false
		}
		for i := range reservations {
			r := &reservations[i]
			if r.Active() && r.CourtID == c.ID && r.Date == day && HoursOverlap(h, h+1, r.StartHour, r.EndHour) {
				s.Available = false
				break
			}
		}
		slots = append(slots, s)
	}
	return slots
}
