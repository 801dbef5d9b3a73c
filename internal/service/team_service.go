package service

import (
	"context"
	stderrors "errors"
	"strings"
	"time"

	"borderland-arena/internal/domain"
	"borderland-arena/internal/game"
	"borderland-arena/internal/repository"
	"borderland-arena/pkg/errors"
	"borderland-arena/pkg/logger"
	"github.com/google/uuid"
)

const maxTeamNameLength = 100

type teamService struct {
	repos       *repository.Repositories
	sessions    SessionService
	leaderboard LeaderboardService
	publisher   EventPublisher
	logger      *logger.Logger
	now         func() time.Time
}

// NewTeamService creates the service for joining games and registering teams
func NewTeamService(repos *repository.Repositories, sessions SessionService, leaderboard LeaderboardService, publisher EventPublisher, log *logger.Logger) TeamService {
	return &teamService{
		repos:       repos,
		sessions:    sessions,
		leaderboard: leaderboard,
		publisher:   publisherOrNop(publisher),
		logger:      log,
		now:         time.Now,
	}
}

// JoinGame finds a game by the code a team typed
func (s *teamService) JoinGame(ctx context.Context, joinCode string) (*domain.GameSummary, error) {
	code := game.NormalizeJoinCode(joinCode)
	if code == "" {
		return nil, errors.NewValidationError("join_code is required", nil)
	}

	g, err := s.repos.Games.GetByJoinCode(ctx, code)
	if err != nil {
		return nil, errors.NewInternalError("Failed to look up game", err)
	}
	if g == nil {
		return nil, errors.NewNotFoundError("No game with that code")
	}
	if g.Status == domain.StatusFinished {
		return nil, errors.NewConflictError("Game has already finished", game.ErrInvalidTransition)
	}

	return g.Summary(), nil
}

// RegisterTeam validates the roster, stores the team and issues its session
func (s *teamService) RegisterTeam(ctx context.Context, gameID string, req *domain.RegisterTeamRequest) (*domain.RegisterTeamResponse, error) {
	name, members, err := validateRoster(req)
	if err != nil {
		return nil, err
	}

	g, err := s.repos.Games.GetByID(ctx, gameID)
	if err != nil {
		return nil, errors.NewInternalError("Failed to load game", err)
	}
	if g == nil {
		return nil, errors.NewNotFoundError("Game not found")
	}

	team := &domain.Team{
		ID:      uuid.NewString(),
		GameID:  g.ID,
		Name:    name,
		Members: make([]domain.Member, 0, len(members)),
	}
	for _, m := range members {
		team.Members = append(team.Members, domain.Member{ID: uuid.NewString(), TeamID: team.ID, Name: m})
	}

	if err := s.repos.Teams.Create(ctx, team); err != nil {
		switch {
		case stderrors.Is(err, repository.ErrRegistrationClosed):
			return nil, errors.NewConflictError("Teams can only register before a round starts", err)
		case stderrors.Is(err, repository.ErrTeamNameTaken):
			return nil, errors.NewConflictError("Team name already taken", err)
		}
		return nil, errors.NewInternalError("Failed to register team", err)
	}

	session, err := s.sessions.Issue(ctx, g.ID, team.ID, g.JoinCode)
	if err != nil {
		return nil, errors.NewInternalError("Failed to issue session", err)
	}

	s.logger.WithFields(map[string]interface{}{
		"game_id": g.ID,
		"team_id": team.ID,
		"members": len(team.Members),
	}).Info("Team registered")

	s.publisher.Publish(ctx, newEvent(domain.EventTeamRegistered, g.ID, "", 0, team, s.now()))
	s.leaderboard.Invalidate(ctx, g.ID)

	return &domain.RegisterTeamResponse{Session: session, Team: team}, nil
}

// SessionInfo returns the session with the team and game it belongs to
func (s *teamService) SessionInfo(ctx context.Context, session *domain.Session) (*domain.SessionInfo, error) {
	g, err := s.repos.Games.GetByID(ctx, session.GameID)
	if err != nil {
		return nil, errors.NewInternalError("Failed to load game", err)
	}
	if g == nil {
		return nil, errors.NewNotFoundError("Game not found")
	}

	team, err := s.repos.Teams.GetByID(ctx, session.TeamID)
	if err != nil {
		return nil, errors.NewInternalError("Failed to load team", err)
	}
	if team == nil || team.GameID != g.ID {
		return nil, errors.NewAuthenticationError("Session no longer matches a team in this game")
	}

	return &domain.SessionInfo{Session: session, Team: team, Game: g.Summary()}, nil
}

// LeaveGame clears the session
func (s *teamService) LeaveGame(ctx context.Context, session *domain.Session) error {
	if err := s.sessions.Revoke(ctx, session); err != nil {
		return errors.NewInternalError("Failed to clear session", err)
	}
	s.logger.WithField("team_id", session.TeamID).Info("Team left game")
	return nil
}

// validateRoster trims names and enforces 2-6 unique, non-empty members
func validateRoster(req *domain.RegisterTeamRequest) (string, []string, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return "", nil, errors.NewValidationError("Team name is required", nil)
	}
	if len(name) > maxTeamNameLength {
		return "", nil, errors.NewValidationError("Team name is too long", map[string]interface{}{
			"max_length": maxTeamNameLength,
		})
	}

	members := make([]string, 0, len(req.Members))
	seen := make(map[string]bool, len(req.Members))
	for i, m := range req.Members {
		m = strings.TrimSpace(m)
		if m == "" {
			return "", nil, errors.NewValidationError("Member names cannot be empty", map[string]interface{}{
				"index": i,
			})
		}
		key := strings.ToLower(m)
		if seen[key] {
			return "", nil, errors.NewValidationError("Member names must be unique", map[string]interface{}{
				"name": m,
			})
		}
		seen[key] = true
		members = append(members, m)
	}

	if len(members) < domain.MinTeamMembers || len(members) > domain.MaxTeamMembers {
		return "", nil, errors.NewValidationError("A team needs between 2 and 6 members", map[string]interface{}{
			"min": domain.MinTeamMembers,
			"max": domain.MaxTeamMembers,
		})
	}

	return name, members, nil
}
