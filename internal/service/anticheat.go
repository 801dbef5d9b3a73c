package service

import (
	"context"
	"time"

	"borderland-arena/internal/domain"
	"borderland-arena/internal/repository"
	"borderland-arena/pkg/errors"
	"borderland-arena/pkg/logger"
	"borderland-arena/pkg/metrics"
)

const (
	strikeSourceClient = "client"
	strikeSourceAdmin  = "admin"
)

// antiCheat applies strikes and clears for both the play and admin services
type antiCheat struct {
	repos       *repository.Repositories
	leaderboard LeaderboardService
	publisher   EventPublisher
	logger      *logger.Logger
	now         func() time.Time
}

func (a *antiCheat) strike(ctx context.Context, teamID, source, reason string) (*domain.Team, error) {
	team, err := a.repos.Teams.Strike(ctx, teamID)
	if err != nil {
		return nil, errors.NewInternalError("Failed to record strike", err)
	}
	if team == nil {
		return nil, errors.NewNotFoundError("Team not found")
	}

	metrics.Strikes.WithLabelValues(source).Inc()
	a.logger.WithFields(map[string]interface{}{
		"team_id":   team.ID,
		"game_id":   team.GameID,
		"source":    source,
		"reason":    reason,
		"ban_count": team.BanCount,
	}).Warn("Team disqualified")

	a.announce(ctx, team)
	return team, nil
}

func (a *antiCheat) clear(ctx context.Context, teamID string) (*domain.Team, error) {
	team, err := a.repos.Teams.Clear(ctx, teamID)
	if err != nil {
		return nil, errors.NewInternalError("Failed to clear team", err)
	}
	if team == nil {
		return nil, errors.NewNotFoundError("Team not found")
	}

	a.logger.WithFields(map[string]interface{}{
		"team_id":   team.ID,
		"game_id":   team.GameID,
		"ban_count": team.BanCount,
	}).Info("Team reinstated")

	a.announce(ctx, team)
	return team, nil
}

func (a *antiCheat) announce(ctx context.Context, team *domain.Team) {
	a.publisher.Publish(ctx, newEvent(domain.EventTeamUpdated, team.GameID, team.ID, 0, team, a.now()))
	if a.leaderboard != nil {
		a.leaderboard.Invalidate(ctx, team.GameID)
	}
}
