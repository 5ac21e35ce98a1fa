package service

import (
	"math"
	"time"

	"github.com/canchapp/canchapp/internal/bracket"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

// Gets the nearest power of 2 while rounding up, so with input 5 it returns 8 and so on
func calcBracketSize(count int) int {
	if count <= 0 {
		return 0
	}

	// Log2 -> Ceil -> 2^^log2 to round up
	log2 := math.Ceil(math.Log2(float64(count)))
	return int(math.Pow(2, log2))
}

// generateRound1Pairs returns zero based seed pairs for the first round, so seed 1 meets the lowest seed
// and the top two seeds can only meet in the final.
func generateRound1Pairs(bracketSize int) [][2]int {
	if bracketSize == 0 {
		return [][2]int{}
	}

	rounds := []int{0}
	for len(rounds) < bracketSize {
		var nextRound []int
		currentCount := len(rounds) * 2

		for _, seed := range rounds {
			nextRound = append(nextRound, seed)
			nextRound = append(nextRound, (currentCount-1)-seed)
		}
		rounds = nextRound
	}

	pairs := make([][2]int, 0, len(rounds)/2)
	for i := 0; i < len(rounds); i += 2 {
		pairs = append(pairs, [2]int{rounds[i], rounds[i+1]})
	}

	return pairs
}

// generateKnockoutBracket builds every match of a single elimination bracket for entries, ordered by seed.
// Seeds without an opponent get a bye and are already placed in their second round match.
func generateKnockoutBracket(tournamentID uuid.UUID, entries []bracket.Entry, now time.Time) []bracket.Match {
	if len(entries) < 2 {
		return nil
	}
	var matches []bracket.Match

	bracketSize := calcBracketSize(len(entries))
	totalRounds := int(math.Log2(float64(bracketSize)))

	nextRoundMatchIDs := make(map[int]uuid.UUID)

	// Significantly easier to start from the last round and work backwards
	for r := totalRounds; r >= 1; r-- {
		matchesInCurrentRound := int(math.Pow(2, float64(totalRounds-r)))
		currentRoundMatchIDs := make(map[int]uuid.UUID)

		for i := 0; i < matchesInCurrentRound; i++ {
			matchID := uuid.New()
			matchOrder := i + 1

			m := bracket.Match{
				ID:           matchID,
				TournamentID: tournamentID,
				RoundNumber:  r,
				MatchOrder:   matchOrder,
				Status:       bracket.MatchPending,
				CreatedAt:    now,
			}

			if r < totalRounds {
				parentID := nextRoundMatchIDs[(matchOrder+1)/2]
				m.WinnerNextMatchID = &parentID

				if matchOrder%2 != 0 {
					m.WinnerNextSlot = lo.ToPtr(1)
				} else {
					m.WinnerNextSlot = lo.ToPtr(2)
				}
			}

			matches = append(matches, m)
			currentRoundMatchIDs[matchOrder] = matchID
		}
		nextRoundMatchIDs = currentRoundMatchIDs
	}

	byID := make(map[uuid.UUID]*bracket.Match, len(matches))
	round1 := make(map[int]*bracket.Match)
	for i := range matches {
		byID[matches[i].ID] = &matches[i]
		if matches[i].RoundNumber == 1 {
			round1[matches[i].MatchOrder] = &matches[i]
		}
	}

	for i, pair := range generateRound1Pairs(bracketSize) {
		match := round1[i+1]
		if pair[0] < len(entries) {
			match.Entry1ID = &entries[pair[0]].ID
		}
		if pair[1] < len(entries) {
			match.Entry2ID = &entries[pair[1]].ID
		}

		// Check for byes immediately
		switch {
		case match.Entry1ID != nil && match.Entry2ID == nil:
			finishBye(match, 1, byID)
		case match.Entry1ID == nil && match.Entry2ID != nil:
			finishBye(match, 2, byID)
		}
	}

	return matches
}

func finishBye(match *bracket.Match, slot int, byID map[uuid.UUID]*bracket.Match) {
	match.Status = bracket.MatchFinished
	match.WinnerSlot = lo.ToPtr(slot)
	match.IsBye = true

	winner := match.Entry1ID
	if slot == 2 {
		winner = match.Entry2ID
	}
	if next, ok := byID[lo.FromPtr(match.WinnerNextMatchID)]; ok {
		placeInSlot(next, lo.FromPtr(match.WinnerNextSlot), winner)
	}
}

func placeInSlot(m *bracket.Match, slot int, entryID *uuid.UUID) {
	switch slot {
	case 1:
		m.Entry1ID = entryID
	case 2:
		m.Entry2ID = entryID
	}
}

// generateRoundRobin schedules every pairing once with the circle method: the first entry stays put and
// the rest rotate one position per round. An odd field gets a phantom entry whose opponent rests.
func generateRoundRobin(tournamentID uuid.UUID, entries []bracket.Entry, now time.Time) []bracket.Match {
	if len(entries) < 2 {
		return nil
	}
	slots := make([]*uuid.UUID, 0, len(entries)+1)
	for i := range entries {
		slots = append(slots, &entries[i].ID)
	}
	if len(slots)%2 != 0 {
		slots = append(slots, nil)
	}
	n := len(slots)

	var matches []bracket.Match
	for round := 1; round < n; round++ {
		order := 0
		for i := 0; i < n/2; i++ {
			home, away := slots[i], slots[n-1-i]
			if home == nil || away == nil {
				continue
			}
			// alternate sides so the fixed entry is not always listed first
			if i == 0 && round%2 == 0 {
				home, away = away, home
			}
			order++
			matches = append(matches, bracket.Match{
				ID:           uuid.New(),
				TournamentID: tournamentID,
				RoundNumber:  round,
				MatchOrder:   order,
				Entry1ID:     home,
				Entry2ID:     away,
				Status:       bracket.MatchPending,
				CreatedAt:    now,
			})
		}
		// rotate everything but the first slot clockwise
		last := slots[n-1]
		copy(slots[2:], slots[1:n-1])
		slots[1] = last
	}
	return matches
}
