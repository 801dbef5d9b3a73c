package game

import (
	"testing"

	"borderland-arena/internal/domain"
	"github.com/stretchr/testify/assert"
)

func suitPtr(s domain.Suit) *domain.Suit { return &s }
func strPtr(s string) *string           { return &s }

func TestUsedSuits_ExcludesCurrentRound(t *testing.T) {
	rows := []domain.RoundScore{
		{RoundNumber: 1, SuitChosen: suitPtr(domain.SuitHearts), ActiveMemberID: strPtr("m1")},
	}

	// resuming round 1 must not block its own suit
	assert.NoError(t, CheckSuit(domain.SuitHearts, rows, 1))
	assert.Empty(t, UsedSuits(rows, 1))

	// round 2 must not offer hearts again
	assert.ErrorIs(t, CheckSuit(domain.SuitHearts, rows, 2), ErrSuitUsed)
	assert.Equal(t, map[domain.Suit]bool{domain.SuitHearts: true}, UsedSuits(rows, 2))
}

func TestUsedSuits_IgnoresUnsetSuit(t *testing.T) {
	rows := []domain.RoundScore{
		{RoundNumber: 1, ActiveMemberID: strPtr("m1")},
		{RoundNumber: 2, SuitChosen: suitPtr(domain.SuitClubs)},
	}
	assert.Equal(t, map[domain.Suit]bool{domain.SuitClubs: true}, UsedSuits(rows, 3))
}

func TestCheckSuit_Invalid(t *testing.T) {
	assert.ErrorIs(t, CheckSuit("jokers", nil, 1), ErrInvalidSuit)
}

func TestSuitOptions(t *testing.T) {
	rows := []domain.RoundScore{
		{RoundNumber: 1, SuitChosen: suitPtr(domain.SuitSpades)},
		{RoundNumber: 2, SuitChosen: suitPtr(domain.SuitDiamonds)},
	}
	opts := SuitOptions(rows, 3)

	assert.Len(t, opts, 4)
	assert.Equal(t, domain.SuitOption{Suit: domain.SuitSpades, Name: "Logic Puzzles", Used: true}, opts[0])
	assert.Equal(t, domain.SuitOption{Suit: domain.SuitHearts, Name: "Riddles & Patterns", Used: false}, opts[1])
	assert.True(t, opts[2].Used)
	assert.False(t, opts[3].Used)
}

func TestEligibleOperatives(t *testing.T) {
	round := 2
	members := []domain.Member{
		{ID: "m1", Name: "Arisu"},
		{ID: "m2", Name: "Usagi"},
		{ID: "m3", Name: "Chishiya", IsEliminated: true, EliminatedRound: &round},
		{ID: "m4", Name: "Kuina"},
	}
	rows := []domain.RoundScore{
		{RoundNumber: 1, ActiveMemberID: strPtr("m1")},
		{RoundNumber: 2, ActiveMemberID: strPtr("m2")},
	}

	tests := []struct {
		name         string
		currentRound int
		want         []string
	}{
		{name: "round 2 keeps its own operative", currentRound: 2, want: []string{"m2", "m4"}},
		{name: "round 3 excludes both previous operatives", currentRound: 3, want: []string{"m4"}},
		{name: "round 1 resumed", currentRound: 1, want: []string{"m1", "m4"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EligibleOperatives(members, rows, tt.currentRound)
			ids := make([]string, 0, len(got))
			for _, m := range got {
				ids = append(ids, m.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestCheckOperative(t *testing.T) {
	members := []domain.Member{{ID: "m1"}, {ID: "m2", IsEliminated: true}}
	rows := []domain.RoundScore{{RoundNumber: 1, ActiveMemberID: strPtr("m1")}}

	assert.ErrorIs(t, CheckOperative("m1", members, rows, 2), ErrOperativeIneligible)
	assert.ErrorIs(t, CheckOperative("m2", members, rows, 2), ErrOperativeIneligible)
	assert.ErrorIs(t, CheckOperative("stranger", members, rows, 2), ErrOperativeIneligible)
	assert.NoError(t, CheckOperative("m1", members, rows, 1))
}

func TestEligibleOperatives_DeadEnd(t *testing.T) {
	members := []domain.Member{{ID: "m1"}, {ID: "m2"}}
	rows := []domain.RoundScore{
		{RoundNumber: 1, ActiveMemberID: strPtr("m1")},
		{RoundNumber: 2, ActiveMemberID: strPtr("m2")},
	}
	assert.Empty(t, EligibleOperatives(members, rows, 3))
}

func TestFindRound(t *testing.T) {
	rows := []domain.RoundScore{{RoundNumber: 1, Score: 5}, {RoundNumber: 3, Score: 7}}
	assert.Equal(t, 7, FindRound(rows, 3).Score)
	assert.Nil(t, FindRound(rows, 2))
}
