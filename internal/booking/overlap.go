package booking

// Overlaps is the slot-conflict test between two reservations: same court, same date
// and intersecting hour ranges. Cancelled reservations never conflict.
func Overlaps(a, b *Reservation) bool {
	if !a.Active() || !b.Active() {
		return false
	}
	if a.CourtID != b.CourtID || a.Date != b.Date {
		return false
	}
	return HoursOverlap(a.StartHour, a.EndHour, b.StartHour, b.EndHour)
}

func HoursOverlap(aStart, aEnd, bStart, bEnd int) bool {
	return aStart < bEnd && bStart < aEnd
}

type Conflict struct {
	First  Reservation `json:"first"`
	Second Reservation `json:"second"`
}

// FindConflicts returns every overlapping pair in reservations.
func FindConflicts(reservations []Reservation) []Conflict {
	var conflicts []Conflict
	for i := 0; i < len(reservations); i++ {
		for j := i + 1; j < len(reservations); j++ {
			if Overlaps(&reservations[i], &reservations[j]) {
				conflicts = append(conflicts, Conflict{First: reservations[i], Second: reservations[j]})
			}
		}
	}
	return conflicts
}
