package game

import (
	"fmt"
	"sync"
	"time"

	"borderland-arena/internal/domain"
)

// StartRound moves a waiting or between-rounds game into round n.
// Rounds are played strictly in order.
func StartRound(g domain.Game, n int, now time.Time) (domain.Game, error) {
	if n < 1 || n > domain.Rounds {
		return g, ErrInvalidRound
	}
	if g.Status != domain.StatusWaiting && g.Status != domain.StatusBetweenRounds {
		return g, fmt.Errorf("%w: cannot start round %d from %s", ErrInvalidTransition, n, g.Status)
	}
	if n != g.CurrentRound+1 {
		return g, fmt.Errorf("%w: next round is %d", ErrInvalidTransition, g.CurrentRound+1)
	}

	started := now.UTC()
	g.Status = domain.RoundStatus(n)
	g.CurrentRound = n
	g.RoundStartedAt = &started
	return g, nil
}

// EndRound closes the active round.
func EndRound(g domain.Game) (domain.Game, error) {
	if !g.Status.IsRound() {
		return g, fmt.Errorf("%w: no round in progress (%s)", ErrInvalidTransition, g.Status)
	}
	g.Status = domain.StatusBetweenRounds
	g.RoundStartedAt = nil
	return g, nil
}

// FinishGame ends the game from an active round or between rounds.
func FinishGame(g domain.Game) (domain.Game, error) {
	if !g.Status.IsRound() && g.Status != domain.StatusBetweenRounds {
		return g, fmt.Errorf("%w: cannot finish from %s", ErrInvalidTransition, g.Status)
	}
	g.Status = domain.StatusFinished
	g.RoundStartedAt = nil
	return g, nil
}

// CheckRoundOpen returns the round being played or ErrRoundClosed.
func CheckRoundOpen(g *domain.Game) (int, error) {
	n := g.Status.RoundNumber()
	if n == 0 {
		return 0, ErrRoundClosed
	}
	return n, nil
}

// DerivePhase computes a team's sub-state inside an open round.
func DerivePhase(rs *domain.RoundScore, totalQuestions int) domain.Phase {
	switch {
	case rs == nil || rs.ActiveMemberID == nil:
		return domain.PhaseNoOperative
	case rs.SuitChosen == nil:
		return domain.PhaseSuitSelection
	case totalQuestions == 0:
		return domain.PhaseAwaitingQuestions
	case rs.CurrentQIndex < totalQuestions:
		return domain.PhaseAnswering
	default:
		return domain.PhaseRoundComplete
	}
}

// GamePhase maps a game that is not in a round to the phase a team sees.
func GamePhase(status domain.GameStatus) domain.Phase {
	switch status {
	case domain.StatusBetweenRounds:
		return domain.PhaseBetweenRounds
	case domain.StatusFinished:
		return domain.PhaseFinished
	default:
		return domain.PhaseWaiting
	}
}

// RoundKindFor selects the presentation variant of round n.
func RoundKindFor(n int) domain.RoundKind {
	switch n {
	case 1:
		return domain.RoundKindQuiz
	case 2:
		return domain.RoundKindCodeReview
	case 3:
		return domain.RoundKindFreeformTask
	case 4:
		return domain.RoundKindFinalChallenge
	}
	return ""
}

// RoundTracker remembers the last round observed per game so that a round
// start is acted on once, however many times the same status is observed.
type RoundTracker struct {
	mu   sync.Mutex
	last map[string]int
}

func NewRoundTracker() *RoundTracker {
	return &RoundTracker{last: make(map[string]int)}
}

// Observe returns true when status enters a round number not seen before for gameID.
func (t *RoundTracker) Observe(gameID string, status domain.GameStatus, currentRound int) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if status == domain.StatusFinished {
		delete(t.last, gameID)
		return false
	}
	if !status.IsRound() {
		return false
	}
	if t.last[gameID] == currentRound {
		return false
	}
	t.last[gameID] = currentRound
	return true
}

// Forget drops a game, used when it is deleted.
func (t *RoundTracker) Forget(gameID string) {
	t.mu.Lock()
	delete(t.last, gameID)
	t.mu.Unlock()
}
