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
	"borderland-arena/pkg/metrics"
	"github.com/google/uuid"
)

// joinCodeAttempts bounds retries on the rare join code collision
const joinCodeAttempts = 5

type adminService struct {
	repos       *repository.Repositories
	cache       *CacheService
	leaderboard LeaderboardService
	publisher   EventPublisher
	anticheat   *antiCheat
	logger      *logger.Logger
	now         func() time.Time
	newJoinCode func() (string, error)
}

// NewAdminService creates the game master's service
func NewAdminService(repos *repository.Repositories, cache *CacheService, leaderboard LeaderboardService, publisher EventPublisher, log *logger.Logger) AdminService {
	return newAdminService(repos, cache, leaderboard, publisher, log, time.Now)
}

func newAdminService(repos *repository.Repositories, cache *CacheService, leaderboard LeaderboardService, publisher EventPublisher, log *logger.Logger, now func() time.Time) *adminService {
	publisher = publisherOrNop(publisher)
	return &adminService{
		repos:       repos,
		cache:       cache,
		leaderboard: leaderboard,
		publisher:   publisher,
		anticheat: &antiCheat{
			repos:       repos,
			leaderboard: leaderboard,
			publisher:   publisher,
			logger:      log,
			now:         now,
		},
		logger:      log,
		now:         now,
		newJoinCode: game.NewJoinCode,
	}
}

// CreateGame creates a waiting game with a fresh join code
func (s *adminService) CreateGame(ctx context.Context, adminEmail string, req *domain.CreateGameRequest) (*domain.Game, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = domain.DefaultGameName
	}

	for attempt := 1; attempt <= joinCodeAttempts; attempt++ {
		code, err := s.newJoinCode()
		if err != nil {
			return nil, errors.NewInternalError("Failed to generate join code", err)
		}

		g := &domain.Game{
			ID:         uuid.NewString(),
			Name:       name,
			AdminEmail: adminEmail,
			JoinCode:   code,
			Status:     domain.StatusWaiting,
		}
		err = s.repos.Games.Create(ctx, g)
		if stderrors.Is(err, repository.ErrJoinCodeTaken) {
			s.logger.WithField("attempt", attempt).Warn("Join code collision, retrying")
			continue
		}
		if err != nil {
			return nil, errors.NewInternalError("Failed to create game", err)
		}

		s.logger.WithFields(map[string]interface{}{
			"game_id":   g.ID,
			"join_code": g.JoinCode,
			"admin":     adminEmail,
		}).Info("Game created")
		return g, nil
	}

	return nil, errors.NewConflictError("Could not allocate a unique join code", repository.ErrJoinCodeTaken)
}

func (s *adminService) ListGames(ctx context.Context) ([]domain.Game, error) {
	games, err := s.repos.Games.List(ctx)
	if err != nil {
		return nil, errors.NewInternalError("Failed to list games", err)
	}
	if games == nil {
		games = []domain.Game{}
	}
	return games, nil
}

func (s *adminService) GetGame(ctx context.Context, gameID string) (*domain.Game, error) {
	g, err := s.repos.Games.GetByID(ctx, gameID)
	if err != nil {
		return nil, errors.NewInternalError("Failed to load game", err)
	}
	if g == nil {
		return nil, errors.NewNotFoundError("Game not found")
	}
	return g, nil
}

func (s *adminService) DeleteGame(ctx context.Context, gameID string) error {
	deleted, err := s.repos.Games.Delete(ctx, gameID)
	if err != nil {
		return errors.NewInternalError("Failed to delete game", err)
	}
	if !deleted {
		return errors.NewNotFoundError("Game not found")
	}

	if f, ok := s.publisher.(interface{ Forget(gameID string) }); ok {
		f.Forget(gameID)
	}
	s.cache.InvalidateLeaderboard(ctx, gameID)
	s.logger.WithField("game_id", gameID).Info("Game deleted")
	return nil
}

// StartRound opens round n; rounds run strictly in order
func (s *adminService) StartRound(ctx context.Context, gameID string, round int) (*domain.Game, error) {
	return s.transition(ctx, gameID, func(g domain.Game) (domain.Game, error) {
		return game.StartRound(g, round, s.now())
	})
}

// EndRound closes the active round
func (s *adminService) EndRound(ctx context.Context, gameID string) (*domain.Game, error) {
	return s.transition(ctx, gameID, game.EndRound)
}

// FinishGame ends the game
func (s *adminService) FinishGame(ctx context.Context, gameID string) (*domain.Game, error) {
	return s.transition(ctx, gameID, game.FinishGame)
}

// transition applies next and persists it only if nobody moved the game meanwhile
func (s *adminService) transition(ctx context.Context, gameID string, next func(domain.Game) (domain.Game, error)) (*domain.Game, error) {
	current, err := s.GetGame(ctx, gameID)
	if err != nil {
		return nil, err
	}

	updated, err := next(*current)
	if err != nil {
		if stderrors.Is(err, game.ErrInvalidRound) {
			return nil, errors.NewValidationError("Round must be between 1 and 4", nil).WithCause(err)
		}
		return nil, errors.NewConflictError(err.Error(), err)
	}

	ok, err := s.repos.Games.Transition(ctx, &updated, *current)
	if err != nil {
		return nil, errors.NewInternalError("Failed to update game", err)
	}
	if !ok {
		return nil, errors.NewConflictError("Game was changed by another request", game.ErrInvalidTransition)
	}

	metrics.RoundTransitions.WithLabelValues(string(updated.Status)).Inc()
	s.logger.WithFields(map[string]interface{}{
		"game_id": updated.ID,
		"from":    string(current.Status),
		"to":      string(updated.Status),
		"round":   updated.CurrentRound,
	}).Info("Game transitioned")

	s.publisher.Publish(ctx, newEvent(domain.EventGameUpdated, updated.ID, "", updated.CurrentRound, updated.Summary(), s.now()))
	return &updated, nil
}

func (s *adminService) ListTeams(ctx context.Context, gameID string) ([]domain.Team, error) {
	if _, err := s.GetGame(ctx, gameID); err != nil {
		return nil, err
	}
	teams, err := s.repos.Teams.ListByGame(ctx, gameID)
	if err != nil {
		return nil, errors.NewInternalError("Failed to list teams", err)
	}
	if teams == nil {
		teams = []domain.Team{}
	}
	return teams, nil
}

// StrikeTeam disqualifies a team on the game master's call
func (s *adminService) StrikeTeam(ctx context.Context, teamID string) (*domain.Team, error) {
	return s.anticheat.strike(ctx, teamID, strikeSourceAdmin, "admin")
}

// ClearTeam reinstates a team; its ban count is kept
func (s *adminService) ClearTeam(ctx context.Context, teamID string) (*domain.Team, error) {
	return s.anticheat.clear(ctx, teamID)
}

// EliminateMember removes a member from play after the current round
func (s *adminService) EliminateMember(ctx context.Context, gameID, memberID string) (*domain.Elimination, error) {
	g, err := s.GetGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if g.CurrentRound < 1 {
		return nil, errors.NewConflictError("No round has been played yet", game.ErrInvalidRound)
	}

	member, elim, err := s.repos.Teams.EliminateMember(ctx, g.ID, memberID, g.CurrentRound)
	if err != nil {
		switch {
		case stderrors.Is(err, repository.ErrMemberNotInGame):
			return nil, errors.NewNotFoundError("Member not found in this game")
		case stderrors.Is(err, repository.ErrAlreadyEliminated):
			return nil, errors.NewConflictError("Member already eliminated", err)
		}
		return nil, errors.NewInternalError("Failed to eliminate member", err)
	}

	s.logger.WithFields(map[string]interface{}{
		"game_id":   g.ID,
		"member_id": member.ID,
		"team_id":   member.TeamID,
		"round":     g.CurrentRound,
	}).Info("Member eliminated")

	s.publisher.Publish(ctx, newEvent(domain.EventMemberEliminated, g.ID, member.TeamID, g.CurrentRound, member, s.now()))
	return elim, nil
}

func (s *adminService) ListEliminations(ctx context.Context, gameID string) ([]domain.Elimination, error) {
	if _, err := s.GetGame(ctx, gameID); err != nil {
		return nil, err
	}
	elims, err := s.repos.Teams.ListEliminations(ctx, gameID)
	if err != nil {
		return nil, errors.NewInternalError("Failed to list eliminations", err)
	}
	if elims == nil {
		elims = []domain.Elimination{}
	}
	return elims, nil
}

func (s *adminService) ListQuestions(ctx context.Context, filter domain.QuestionFilter) ([]domain.Question, error) {
	if filter.RoundNumber < 0 || filter.RoundNumber > domain.Rounds {
		return nil, errors.NewValidationError("round must be between 1 and 4", nil)
	}
	if filter.Suit != "" && !filter.Suit.Valid() {
		return nil, errors.NewValidationError("Invalid suit", map[string]interface{}{"suit": string(filter.Suit)})
	}

	questions, err := s.repos.Questions.List(ctx, filter)
	if err != nil {
		return nil, errors.NewInternalError("Failed to list questions", err)
	}
	if questions == nil {
		questions = []domain.Question{}
	}
	return questions, nil
}

func (s *adminService) CreateQuestion(ctx context.Context, q *domain.Question) (*domain.Question, error) {
	if err := game.PrepareQuestion(q); err != nil {
		return nil, questionValidationError(err)
	}
	q.ID = uuid.NewString()

	if err := s.repos.Questions.Create(ctx, q); err != nil {
		if stderrors.Is(err, repository.ErrQuestionExists) {
			return nil, errors.NewConflictError("A question already exists in that slot", err)
		}
		return nil, errors.NewInternalError("Failed to create question", err)
	}

	s.cache.InvalidateQuestionSet(ctx, q.RoundNumber, q.Suit)
	return q, nil
}

func (s *adminService) UpdateQuestion(ctx context.Context, questionID string, q *domain.Question) (*domain.Question, error) {
	existing, err := s.repos.Questions.GetByID(ctx, questionID)
	if err != nil {
		return nil, errors.NewInternalError("Failed to load question", err)
	}
	if existing == nil {
		return nil, errors.NewNotFoundError("Question not found")
	}

	if err := game.PrepareQuestion(q); err != nil {
		return nil, questionValidationError(err)
	}
	q.ID = questionID

	updated, err := s.repos.Questions.Update(ctx, q)
	if err != nil {
		if stderrors.Is(err, repository.ErrQuestionExists) {
			return nil, errors.NewConflictError("A question already exists in that slot", err)
		}
		return nil, errors.NewInternalError("Failed to update question", err)
	}
	if !updated {
		return nil, errors.NewNotFoundError("Question not found")
	}

	s.cache.InvalidateQuestionSet(ctx, existing.RoundNumber, existing.Suit)
	s.cache.InvalidateQuestionSet(ctx, q.RoundNumber, q.Suit)
	return q, nil
}

func (s *adminService) DeleteQuestion(ctx context.Context, questionID string) error {
	existing, err := s.repos.Questions.GetByID(ctx, questionID)
	if err != nil {
		return errors.NewInternalError("Failed to load question", err)
	}
	if existing == nil {
		return errors.NewNotFoundError("Question not found")
	}

	if _, err := s.repos.Questions.Delete(ctx, questionID); err != nil {
		return errors.NewInternalError("Failed to delete question", err)
	}

	s.cache.InvalidateQuestionSet(ctx, existing.RoundNumber, existing.Suit)
	return nil
}

func questionValidationError(err error) error {
	return errors.NewValidationError(strings.TrimPrefix(err.Error(), game.ErrInvalidQuestion.Error()+": "), nil).WithCause(err)
}
