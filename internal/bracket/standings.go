package bracket

import (
	"sort"

	"github.com/google/uuid"
)

const (
	PointsWin  = 3
	PointsDraw = 1
)

type Standing struct {
	EntryID         uuid.UUID `json:"entry_id"`
	Name            string    `json:"name"`
	Played          int       `json:"played"`
	Wins            int       `json:"wins"`
	Draws           int       `json:"draws"`
	Losses          int       `json:"losses"`
	ScoreFor        int       `json:"score_for"`
	ScoreAgainst    int       `json:"score_against"`
	ScoreDifference int       `json:"score_difference"`
	Points          int       `json:"points"`
	Rank            int       `json:"rank"`
}

// Standings builds the round robin table from finished matches.
// Ordering: points, score difference, score for, then seed.
func Standings(entries []Entry, matches []Match) []Standing {
	rows := make(map[uuid.UUID]*Standing, len(entries))
	seeds := make(map[uuid.UUID]int, len(entries))
	for _, e := range entries {
		rows[e.ID] = &Standing{EntryID: e.ID, Name: e.Name}
		seeds[e.ID] = e.Seed
	}

	for _, m := range matches {
		if m.Status != MatchFinished || m.IsBye || m.Entry1ID == nil || m.Entry2ID == nil {
			continue
		}
		home, away := rows[*m.Entry1ID], rows[*m.Entry2ID]
		if home == nil || away == nil {
			continue
		}
		record(home, m.Score1, m.Score2)
		record(away, m.Score2, m.Score1)
	}

	out := make([]Standing, 0, len(rows))
	for _, s := range rows {
		s.ScoreDifference = s.ScoreFor - s.ScoreAgainst
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Points != b.Points {
			return a.Points > b.Points
		}
		if a.ScoreDifference != b.ScoreDifference {
			return a.ScoreDifference > b.ScoreDifference
		}
		if a.ScoreFor != b.ScoreFor {
			return a.ScoreFor > b.ScoreFor
		}
		return seeds[a.EntryID] < seeds[b.EntryID]
	})
	for i := range out {
		out[i].Rank = i + 1
	}
	return out
}

func record(s *Standing, scored, conceded int) {
	s.Played++
	s.ScoreFor += scored
	s.ScoreAgainst += conceded
	switch {
	case scored > conceded:
		s.Wins++
		s.Points += PointsWin
	case scored == conceded:
		s.Draws++
		s.Points += PointsDraw
	default:
		s.Losses++
	}
}
