package handler

import (
	"context"

	"borderland-arena/internal/domain"
	"borderland-arena/pkg/errors"
	"github.com/stretchr/testify/mock"
)

type mockTeamService struct{ mock.Mock }

func (m *mockTeamService) JoinGame(ctx context.Context, joinCode string) (*domain.GameSummary, error) {
	args := m.Called(ctx, joinCode)
	summary, _ := args.Get(0).(*domain.GameSummary)
	return summary, args.Error(1)
}

func (m *mockTeamService) RegisterTeam(ctx context.Context, gameID string, req *domain.RegisterTeamRequest) (*domain.RegisterTeamResponse, error) {
	args := m.Called(ctx, gameID, req)
	resp, _ := args.Get(0).(*domain.RegisterTeamResponse)
	return resp, args.Error(1)
}

func (m *mockTeamService) SessionInfo(ctx context.Context, session *domain.Session) (*domain.SessionInfo, error) {
	args := m.Called(ctx, session)
	info, _ := args.Get(0).(*domain.SessionInfo)
	return info, args.Error(1)
}

func (m *mockTeamService) LeaveGame(ctx context.Context, session *domain.Session) error {
	return m.Called(ctx, session).Error(0)
}

type mockPlayService struct{ mock.Mock }

func (m *mockPlayService) RoundView(ctx context.Context, session *domain.Session) (*domain.RoundView, error) {
	args := m.Called(ctx, session)
	view, _ := args.Get(0).(*domain.RoundView)
	return view, args.Error(1)
}

func (m *mockPlayService) SelectOperative(ctx context.Context, session *domain.Session, memberID string) (*domain.RoundView, error) {
	args := m.Called(ctx, session, memberID)
	view, _ := args.Get(0).(*domain.RoundView)
	return view, args.Error(1)
}

func (m *mockPlayService) SelectSuit(ctx context.Context, session *domain.Session, suit domain.Suit) (*domain.RoundView, error) {
	args := m.Called(ctx, session, suit)
	view, _ := args.Get(0).(*domain.RoundView)
	return view, args.Error(1)
}

func (m *mockPlayService) SubmitAnswer(ctx context.Context, session *domain.Session, req *domain.AnswerRequest) (*domain.AnswerResult, error) {
	args := m.Called(ctx, session, req)
	result, _ := args.Get(0).(*domain.AnswerResult)
	return result, args.Error(1)
}

func (m *mockPlayService) ReportViolation(ctx context.Context, session *domain.Session, reason string) (*domain.Team, error) {
	args := m.Called(ctx, session, reason)
	team, _ := args.Get(0).(*domain.Team)
	return team, args.Error(1)
}

type mockAdminService struct{ mock.Mock }

func (m *mockAdminService) CreateGame(ctx context.Context, adminEmail string, req *domain.CreateGameRequest) (*domain.Game, error) {
	args := m.Called(ctx, adminEmail, req)
	g, _ := args.Get(0).(*domain.Game)
	return g, args.Error(1)
}

func (m *mockAdminService) ListGames(ctx context.Context) ([]domain.Game, error) {
	args := m.Called(ctx)
	games, _ := args.Get(0).([]domain.Game)
	return games, args.Error(1)
}

func (m *mockAdminService) GetGame(ctx context.Context, gameID string) (*domain.Game, error) {
	args := m.Called(ctx, gameID)
	g, _ := args.Get(0).(*domain.Game)
	return g, args.Error(1)
}

func (m *mockAdminService) DeleteGame(ctx context.Context, gameID string) error {
	return m.Called(ctx, gameID).Error(0)
}

func (m *mockAdminService) StartRound(ctx context.Context, gameID string, round int) (*domain.Game, error) {
	args := m.Called(ctx, gameID, round)
	g, _ := args.Get(0).(*domain.Game)
	return g, args.Error(1)
}

func (m *mockAdminService) EndRound(ctx context.Context, gameID string) (*domain.Game, error) {
	args := m.Called(ctx, gameID)
	g, _ := args.Get(0).(*domain.Game)
	return g, args.Error(1)
}

func (m *mockAdminService) FinishGame(ctx context.Context, gameID string) (*domain.Game, error) {
	args := m.Called(ctx, gameID)
	g, _ := args.Get(0).(*domain.Game)
	return g, args.Error(1)
}

func (m *mockAdminService) ListTeams(ctx context.Context, gameID string) ([]domain.Team, error) {
	args := m.Called(ctx, gameID)
	teams, _ := args.Get(0).([]domain.Team)
	return teams, args.Error(1)
}

func (m *mockAdminService) StrikeTeam(ctx context.Context, teamID string) (*domain.Team, error) {
	args := m.Called(ctx, teamID)
	team, _ := args.Get(0).(*domain.Team)
	return team, args.Error(1)
}

func (m *mockAdminService) ClearTeam(ctx context.Context, teamID string) (*domain.Team, error) {
	args := m.Called(ctx, teamID)
	team, _ := args.Get(0).(*domain.Team)
	return team, args.Error(1)
}

func (m *mockAdminService) EliminateMember(ctx context.Context, gameID, memberID string) (*domain.Elimination, error) {
	args := m.Called(ctx, gameID, memberID)
	elim, _ := args.Get(0).(*domain.Elimination)
	return elim, args.Error(1)
}

func (m *mockAdminService) ListEliminations(ctx context.Context, gameID string) ([]domain.Elimination, error) {
	args := m.Called(ctx, gameID)
	elims, _ := args.Get(0).([]domain.Elimination)
	return elims, args.Error(1)
}

func (m *mockAdminService) ListQuestions(ctx context.Context, filter domain.QuestionFilter) ([]domain.Question, error) {
	args := m.Called(ctx, filter)
	questions, _ := args.Get(0).([]domain.Question)
	return questions, args.Error(1)
}

func (m *mockAdminService) CreateQuestion(ctx context.Context, q *domain.Question) (*domain.Question, error) {
	args := m.Called(ctx, q)
	created, _ := args.Get(0).(*domain.Question)
	return created, args.Error(1)
}

func (m *mockAdminService) UpdateQuestion(ctx context.Context, questionID string, q *domain.Question) (*domain.Question, error) {
	args := m.Called(ctx, questionID, q)
	updated, _ := args.Get(0).(*domain.Question)
	return updated, args.Error(1)
}

func (m *mockAdminService) DeleteQuestion(ctx context.Context, questionID string) error {
	return m.Called(ctx, questionID).Error(0)
}

type mockAdminAuth struct{ mock.Mock }

func (m *mockAdminAuth) LoginURL(state string) string {
	return m.Called(state).String(0)
}

func (m *mockAdminAuth) Exchange(ctx context.Context, code string) (*domain.AdminToken, error) {
	args := m.Called(ctx, code)
	token, _ := args.Get(0).(*domain.AdminToken)
	return token, args.Error(1)
}

func (m *mockAdminAuth) SignInWithIDToken(ctx context.Context, idToken string) (*domain.AdminToken, error) {
	args := m.Called(ctx, idToken)
	token, _ := args.Get(0).(*domain.AdminToken)
	return token, args.Error(1)
}

func (m *mockAdminAuth) ValidateToken(ctx context.Context, token string) (*domain.AdminProfile, error) {
	args := m.Called(ctx, token)
	admin, _ := args.Get(0).(*domain.AdminProfile)
	return admin, args.Error(1)
}

type mockLeaderboard struct{ mock.Mock }

func (m *mockLeaderboard) Get(ctx context.Context, gameID string) (*domain.Leaderboard, error) {
	args := m.Called(ctx, gameID)
	board, _ := args.Get(0).(*domain.Leaderboard)
	return board, args.Error(1)
}

func (m *mockLeaderboard) Invalidate(ctx context.Context, gameID string) {
	m.Called(ctx, gameID)
}

type mockSandbox struct{ mock.Mock }

func (m *mockSandbox) Execute(ctx context.Context, req *domain.ExecuteRequest) (*domain.ExecuteResult, error) {
	args := m.Called(ctx, req)
	result, _ := args.Get(0).(*domain.ExecuteResult)
	return result, args.Error(1)
}

// stubSessions accepts the token "good" for team t1 of game g1
type stubSessions struct{}

var testSession = &domain.Session{GameID: "g1", TeamID: "t1", JoinCode: "ABCDE"}

func (stubSessions) Issue(context.Context, string, string, string) (*domain.Session, error) {
	return nil, errors.NewInternalError("not used", nil)
}

func (stubSessions) Parse(_ context.Context, token string) (*domain.Session, error) {
	if token != "good" {
		return nil, errors.NewAuthenticationError("bad token")
	}
	return testSession, nil
}

func (stubSessions) Revoke(context.Context, *domain.Session) error { return nil }
