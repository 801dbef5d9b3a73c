package game

import (
	"testing"

	"borderland-arena/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestStrikeAndClear(t *testing.T) {
	team := domain.Team{ID: "t1"}
	assert.NoError(t, CheckEligible(&team))

	team = Strike(team)
	assert.Equal(t, 1, team.BanCount)
	assert.True(t, team.IsDisqualified)
	assert.ErrorIs(t, CheckEligible(&team), ErrTeamDisqualified)

	team = Clear(team)
	assert.Equal(t, 1, team.BanCount, "strike history is kept")
	assert.False(t, team.IsDisqualified)
	assert.NoError(t, CheckEligible(&team))

	team = Strike(team)
	assert.Equal(t, 2, team.BanCount)
}
