package service

import (
	"context"

	"borderland-arena/internal/domain"
)

// SessionService issues and checks team session tokens
type SessionService interface {
	// Issue creates a signed session for a freshly registered team
	Issue(ctx context.Context, gameID, teamID, joinCode string) (*domain.Session, error)

	// Parse validates a session token and returns its context
	Parse(ctx context.Context, token string) (*domain.Session, error)

	// Revoke clears a session until it would have expired
	Revoke(ctx context.Context, session *domain.Session) error
}

// AdminAuthService signs game masters in with Google and checks their tokens
type AdminAuthService interface {
	// LoginURL returns the Google consent URL for the OAuth code flow
	LoginURL(state string) string

	// Exchange completes the code flow and issues an admin token
	Exchange(ctx context.Context, code string) (*domain.AdminToken, error)

	// SignInWithIDToken verifies a Google ID token and issues an admin token
	SignInWithIDToken(ctx context.Context, idToken string) (*domain.AdminToken, error)

	// ValidateToken checks an admin token and returns the admin identity
	ValidateToken(ctx context.Context, token string) (*domain.AdminProfile, error)
}

// TeamService handles joining a game and registering teams
type TeamService interface {
	// JoinGame looks a game up by join code
	JoinGame(ctx context.Context, joinCode string) (*domain.GameSummary, error)

	// RegisterTeam creates a team with its members and opens its session
	RegisterTeam(ctx context.Context, gameID string, req *domain.RegisterTeamRequest) (*domain.RegisterTeamResponse, error)

	// SessionInfo returns the session with the team and game it belongs to
	SessionInfo(ctx context.Context, session *domain.Session) (*domain.SessionInfo, error)

	// LeaveGame clears the session
	LeaveGame(ctx context.Context, session *domain.Session) error
}

// PlayService runs a team through the rounds
type PlayService interface {
	// RoundView derives what the team should see right now
	RoundView(ctx context.Context, session *domain.Session) (*domain.RoundView, error)

	// SelectOperative locks the member who plays the current round
	SelectOperative(ctx context.Context, session *domain.Session, memberID string) (*domain.RoundView, error)

	// SelectSuit locks the suit of the current round
	SelectSuit(ctx context.Context, session *domain.Session, suit domain.Suit) (*domain.RoundView, error)

	// SubmitAnswer grades and persists the answer to the current question
	SubmitAnswer(ctx context.Context, session *domain.Session, req *domain.AnswerRequest) (*domain.AnswerResult, error)

	// ReportViolation records an anti-cheat signal from the team's own client
	ReportViolation(ctx context.Context, session *domain.Session, reason string) (*domain.Team, error)
}

// AdminService is the game master's control surface
type AdminService interface {
	CreateGame(ctx context.Context, adminEmail string, req *domain.CreateGameRequest) (*domain.Game, error)
	ListGames(ctx context.Context) ([]domain.Game, error)
	GetGame(ctx context.Context, gameID string) (*domain.Game, error)
	DeleteGame(ctx context.Context, gameID string) error

	// StartRound, EndRound and FinishGame move the game through its lifecycle
	StartRound(ctx context.Context, gameID string, round int) (*domain.Game, error)
	EndRound(ctx context.Context, gameID string) (*domain.Game, error)
	FinishGame(ctx context.Context, gameID string) (*domain.Game, error)

	ListTeams(ctx context.Context, gameID string) ([]domain.Team, error)
	StrikeTeam(ctx context.Context, teamID string) (*domain.Team, error)
	ClearTeam(ctx context.Context, teamID string) (*domain.Team, error)
	EliminateMember(ctx context.Context, gameID, memberID string) (*domain.Elimination, error)
	ListEliminations(ctx context.Context, gameID string) ([]domain.Elimination, error)

	ListQuestions(ctx context.Context, filter domain.QuestionFilter) ([]domain.Question, error)
	CreateQuestion(ctx context.Context, q *domain.Question) (*domain.Question, error)
	UpdateQuestion(ctx context.Context, questionID string, q *domain.Question) (*domain.Question, error)
	DeleteQuestion(ctx context.Context, questionID string) error
}

// LeaderboardService ranks the teams of a game
type LeaderboardService interface {
	// Get returns the current standings
	Get(ctx context.Context, gameID string) (*domain.Leaderboard, error)

	// Invalidate drops the cached standings and announces the change
	Invalidate(ctx context.Context, gameID string)
}

// SandboxService runs code for display. Results never affect scoring.
type SandboxService interface {
	Execute(ctx context.Context, req *domain.ExecuteRequest) (*domain.ExecuteResult, error)
}

// EventPublisher delivers realtime events to a game's subscribers
type EventPublisher interface {
	Publish(ctx context.Context, evt domain.Event)
}

// Services aggregates all service interfaces
type Services struct {
	Sessions    SessionService
	AdminAuth   AdminAuthService
	Teams       TeamService
	Play        PlayService
	Admin       AdminService
	Leaderboard LeaderboardService
	Sandbox     SandboxService
}
