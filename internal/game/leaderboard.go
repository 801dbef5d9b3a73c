package game

import (
	"sort"

	"borderland-arena/internal/domain"
)

// Rank orders teams by total score descending, then total time ascending,
// then team id. Disqualified teams stay in the list and are flagged.
func Rank(teams []domain.Team, rows []domain.RoundScore) []domain.Standing {
	byTeam := make(map[string]*domain.Standing, len(teams))
	standings := make([]domain.Standing, 0, len(teams))
	for _, t := range teams {
		standings = append(standings, domain.Standing{
			TeamID:         t.ID,
			TeamName:       t.Name,
			IsDisqualified: t.IsDisqualified,
			BanCount:       t.BanCount,
		})
	}
	for i := range standings {
		byTeam[standings[i].TeamID] = &standings[i]
	}

	for _, r := range rows {
		s, ok := byTeam[r.TeamID]
		if !ok {
			continue
		}
		s.TotalScore += r.Score
		s.TotalTime += r.AnswerTimeSeconds
		if r.SuitChosen != nil {
			s.RoundsPlayed++
		}
	}

	sort.Slice(standings, func(i, j int) bool {
		a, b := standings[i], standings[j]
		if a.TotalScore != b.TotalScore {
			return a.TotalScore > b.TotalScore
		}
		if a.TotalTime != b.TotalTime {
			return a.TotalTime < b.TotalTime
		}
		return a.TeamID < b.TeamID
	})

	for i := range standings {
		standings[i].Rank = i + 1
	}
	return standings
}
