package views

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/canchapp/canchapp/internal/bracket"
	"github.com/google/uuid"
)

type BracketData struct {
	Rounds    map[int][]bracket.Match
	RoundNums []int
	EntryMap  map[uuid.UUID]bracket.Entry
}

// PrepareBracketData groups matches by round, each round in match order.
func PrepareBracketData(entries []bracket.Entry, matches []bracket.Match) BracketData {
	entryMap := make(map[uuid.UUID]bracket.Entry)
	for _, e := range entries {
		entryMap[e.ID] = e
	}

	rounds := make(map[int][]bracket.Match)
	var roundNums []int
	for _, m := range matches {
		if _, exists := rounds[m.RoundNumber]; !exists {
			roundNums = append(roundNums, m.RoundNumber)
		}
		rounds[m.RoundNumber] = append(rounds[m.RoundNumber], m)
	}

	sort.Ints(roundNums)
	for _, r := range roundNums {
		sort.Slice(rounds[r], func(i, j int) bool {
			return rounds[r][i].MatchOrder < rounds[r][j].MatchOrder
		})
	}

	return BracketData{Rounds: rounds, RoundNums: roundNums, EntryMap: entryMap}
}

// RoundName labels knockout rounds counted back from the final.
func RoundName(format bracket.Format, round, lastRound int) string {
	if format == bracket.RoundRobin {
		return fmt.Sprintf("Fecha %d", round)
	}
	switch lastRound - round {
	case 0:
		return "Final"
	case 1:
		return "Semifinal"
	case 2:
		return "Cuartos de final"
	}
	return fmt.Sprintf("Ronda %d", round)
}

func (b BracketData) LastRound() int {
	if len(b.RoundNums) == 0 {
		return 0
	}
	return b.RoundNums[len(b.RoundNums)-1]
}

// TournamentMeta is the summary line under the tournament name.
func TournamentMeta(t *bracket.Tournament, teams int) string {
	s := fmt.Sprintf("%s · %s · %d/%d equipos", t.Sport, t.Status, teams, t.MaxTeams)
	if t.EntryFee > 0 {
		s += " · inscripción " + Money(t.EntryFee)
	}
	return s
}

func isNextMatch(next *uuid.UUID, id uuid.UUID) bool {
	return next != nil && *next == id
}

func slotEntry(m *bracket.Match, slot int) *uuid.UUID {
	if slot == 2 {
		return m.Entry2ID
	}
	return m.Entry1ID
}

func slotScore(m *bracket.Match, slot int) string {
	if slot == 2 {
		return strconv.Itoa(m.Score2)
	}
	return strconv.Itoa(m.Score1)
}

// slotResult feeds the data-result attribute the stylesheet colors slots by.
func slotResult(m *bracket.Match, slot int) string {
	switch {
	case m.IsWinner(slot):
		return "winner"
	case m.IsLoser(slot):
		return "loser"
	}
	return ""
}

func showScore(m *bracket.Match) bool {
	return m.Status == bracket.MatchFinished && !m.IsBye
}
