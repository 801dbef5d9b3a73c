package game

import "borderland-arena/internal/domain"

// UsedSuits returns the suits a team chose in rounds other than currentRound.
func UsedSuits(rows []domain.RoundScore, currentRound int) map[domain.Suit]bool {
	used := make(map[domain.Suit]bool)
	for _, r := range rows {
		if r.RoundNumber == currentRound || r.SuitChosen == nil {
			continue
		}
		used[*r.SuitChosen] = true
	}
	return used
}

// PlayedMemberIDs returns the operatives a team used in rounds other than currentRound.
func PlayedMemberIDs(rows []domain.RoundScore, currentRound int) map[string]bool {
	played := make(map[string]bool)
	for _, r := range rows {
		if r.RoundNumber == currentRound || r.ActiveMemberID == nil {
			continue
		}
		played[*r.ActiveMemberID] = true
	}
	return played
}

// EligibleOperatives keeps members that are not eliminated and have not played another round.
func EligibleOperatives(members []domain.Member, rows []domain.RoundScore, currentRound int) []domain.Member {
	played := PlayedMemberIDs(rows, currentRound)
	eligible := make([]domain.Member, 0, len(members))
	for _, m := range members {
		if m.IsEliminated || played[m.ID] {
			continue
		}
		eligible = append(eligible, m)
	}
	return eligible
}

// SuitOptions lists the four suits, flagging the ones used in other rounds.
func SuitOptions(rows []domain.RoundScore, currentRound int) []domain.SuitOption {
	used := UsedSuits(rows, currentRound)
	opts := make([]domain.SuitOption, 0, len(domain.Suits))
	for _, s := range domain.Suits {
		opts = append(opts, domain.SuitOption{Suit: s, Name: s.Name(), Used: used[s]})
	}
	return opts
}

// CheckOperative validates memberID as this round's operative.
func CheckOperative(memberID string, members []domain.Member, rows []domain.RoundScore, currentRound int) error {
	for _, m := range EligibleOperatives(members, rows, currentRound) {
		if m.ID == memberID {
			return nil
		}
	}
	return ErrOperativeIneligible
}

// CheckSuit validates suit as this round's suit.
func CheckSuit(suit domain.Suit, rows []domain.RoundScore, currentRound int) error {
	if !suit.Valid() {
		return ErrInvalidSuit
	}
	if UsedSuits(rows, currentRound)[suit] {
		return ErrSuitUsed
	}
	return nil
}

// FindRound returns the row for round n, or nil.
func FindRound(rows []domain.RoundScore, n int) *domain.RoundScore {
	for i := range rows {
		if rows[i].RoundNumber == n {
			return &rows[i]
		}
	}
	return nil
}
