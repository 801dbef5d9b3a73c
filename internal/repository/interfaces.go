package repository

import (
	"context"
	"errors"
	"time"

	"borderland-arena/internal/domain"
)

var (
	ErrJoinCodeTaken      = errors.New("join code already in use")
	ErrTeamNameTaken      = errors.New("team name already taken in this game")
	ErrRegistrationClosed = errors.New("game is not accepting teams")
	ErrQuestionExists     = errors.New("question already exists for this round, suit and number")
	ErrAlreadyEliminated  = errors.New("member already eliminated")
	ErrMemberNotInGame    = errors.New("member does not belong to this game")
)

// GameRepository defines the interface for game data operations
type GameRepository interface {
	// Create inserts a new game. Returns ErrJoinCodeTaken on a code collision.
	Create(ctx context.Context, game *domain.Game) error

	// GetByID retrieves a game, nil when it does not exist
	GetByID(ctx context.Context, id string) (*domain.Game, error)

	// GetByJoinCode retrieves a game by its normalised join code
	GetByJoinCode(ctx context.Context, code string) (*domain.Game, error)

	// List returns every game, newest first
	List(ctx context.Context) ([]domain.Game, error)

	// Delete removes a game and everything that belongs to it
	Delete(ctx context.Context, id string) (bool, error)

	// Transition persists status, current_round and round_started_at of game
	// only if the stored status and current_round still match prev. Returns false when they do not.
	Transition(ctx context.Context, game *domain.Game, prev domain.Game) (bool, error)
}

// TeamRepository defines the interface for team, member and elimination operations
type TeamRepository interface {
	// Create inserts a team with its members while the game accepts registrations
	Create(ctx context.Context, team *domain.Team) error

	// GetByID retrieves a team with its members
	GetByID(ctx context.Context, id string) (*domain.Team, error)

	// ListByGame returns every team of a game with members
	ListByGame(ctx context.Context, gameID string) ([]domain.Team, error)

	// Strike disqualifies a team and increments its ban count atomically
	Strike(ctx context.Context, teamID string) (*domain.Team, error)

	// Clear lifts disqualification, keeping the ban count
	Clear(ctx context.Context, teamID string) (*domain.Team, error)

	// EliminateMember records an elimination for round and flags the member
	EliminateMember(ctx context.Context, gameID, memberID string, round int) (*domain.Member, *domain.Elimination, error)

	// ListEliminations returns the eliminations of a game in order
	ListEliminations(ctx context.Context, gameID string) ([]domain.Elimination, error)
}

// QuestionRepository defines the interface for question bank operations
type QuestionRepository interface {
	// ListByRoundSuit returns the questions of one round and suit by question_number
	ListByRoundSuit(ctx context.Context, round int, suit domain.Suit) ([]domain.Question, error)

	// List returns questions matching filter
	List(ctx context.Context, filter domain.QuestionFilter) ([]domain.Question, error)

	// GetByID retrieves a question
	GetByID(ctx context.Context, id string) (*domain.Question, error)

	// Create inserts a question. Returns ErrQuestionExists on a slot collision.
	Create(ctx context.Context, q *domain.Question) error

	// Update replaces a question
	Update(ctx context.Context, q *domain.Question) (bool, error)

	// Delete removes a question
	Delete(ctx context.Context, id string) (bool, error)
}

// AnswerWrite is a graded answer ready to be persisted
type AnswerWrite struct {
	TeamID        string
	GameID        string
	Round         int
	ExpectedIndex int
	Points        int
	Elapsed       int
	NextIndex     int
	Now           time.Time
}

// RoundScoreRepository defines the interface for per-round team progress.
// Every write is gated on the team not being disqualified and the game
// being in the round written to; a gated write reports false.
type RoundScoreRepository interface {
	// ListByTeam returns all round rows of a team in a game
	ListByTeam(ctx context.Context, teamID, gameID string) ([]domain.RoundScore, error)

	// ListByGame returns every round row of a game
	ListByGame(ctx context.Context, gameID string) ([]domain.RoundScore, error)

	// LockOperative sets active_member_id once, creating the row when needed
	LockOperative(ctx context.Context, rs *domain.RoundScore) (bool, error)

	// LockSuit sets suit_chosen once and starts the first question's clock
	LockSuit(ctx context.Context, teamID, gameID string, round int, suit domain.Suit, now time.Time) (bool, error)

	// RecordAnswer adds points and time and advances the pointer if it is still at
	// ExpectedIndex. The team's total_score is recomputed in the same transaction
	// and returned when the write applied.
	RecordAnswer(ctx context.Context, w AnswerWrite) (total int, applied bool, err error)
}

// Repositories aggregates all repository interfaces
type Repositories struct {
	Games       GameRepository
	Teams       TeamRepository
	Questions   QuestionRepository
	RoundScores RoundScoreRepository
}
