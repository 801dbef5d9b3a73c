package game

import "borderland-arena/internal/domain"

// Strike records a violation. One strike disqualifies the team.
func Strike(t domain.Team) domain.Team {
	t.BanCount++
	t.IsDisqualified = true
	return t
}

// Clear lifts disqualification and keeps the strike history.
func Clear(t domain.Team) domain.Team {
	t.IsDisqualified = false
	return t
}

// CheckEligible gates every scoring action of a team.
func CheckEligible(t *domain.Team) error {
	if t.IsDisqualified {
		return ErrTeamDisqualified
	}
	return nil
}
