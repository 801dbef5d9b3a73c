package service

import (
	"context"
	"time"

	"borderland-arena/internal/domain"
	"borderland-arena/internal/game"
	"borderland-arena/internal/repository"
	"borderland-arena/pkg/errors"
	"borderland-arena/pkg/logger"
)

type leaderboardService struct {
	repos     *repository.Repositories
	cache     *CacheService
	publisher EventPublisher
	logger    *logger.Logger
	now       func() time.Time
}

// NewLeaderboardService creates the leaderboard aggregator
func NewLeaderboardService(repos *repository.Repositories, cache *CacheService, publisher EventPublisher, log *logger.Logger) LeaderboardService {
	return &leaderboardService{
		repos:     repos,
		cache:     cache,
		publisher: publisherOrNop(publisher),
		logger:    log,
		now:       time.Now,
	}
}

// Get returns the standings of a game, cached briefly
func (s *leaderboardService) Get(ctx context.Context, gameID string) (*domain.Leaderboard, error) {
	g, err := s.repos.Games.GetByID(ctx, gameID)
	if err != nil {
		return nil, errors.NewInternalError("Failed to load game", err)
	}
	if g == nil {
		return nil, errors.NewNotFoundError("Game not found")
	}

	board, err := s.cache.GetLeaderboardWithCache(ctx, gameID, s.compute)
	if err != nil {
		s.logger.WithError(err).WithField("game_id", gameID).Error("Failed to compute leaderboard")
		return nil, errors.NewInternalError("Failed to load leaderboard", err)
	}
	return board, nil
}

// Invalidate drops the cached standings and tells subscribers to refetch
func (s *leaderboardService) Invalidate(ctx context.Context, gameID string) {
	s.cache.InvalidateLeaderboard(ctx, gameID)
	s.publisher.Publish(ctx, newEvent(domain.EventLeaderboard, gameID, "", 0, nil, s.now()))
}

func (s *leaderboardService) compute(ctx context.Context, gameID string) (*domain.Leaderboard, error) {
	teams, err := s.repos.Teams.ListByGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	rows, err := s.repos.RoundScores.ListByGame(ctx, gameID)
	if err != nil {
		return nil, err
	}

	return &domain.Leaderboard{
		GameID:    gameID,
		Standings: game.Rank(teams, rows),
		UpdatedAt: s.now().UTC(),
	}, nil
}
