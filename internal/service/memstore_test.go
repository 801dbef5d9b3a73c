package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"borderland-arena/internal/domain"
	"borderland-arena/internal/repository"
)

// memStore is an in-memory stand-in for PostgreSQL that applies the same
// conditional-write rules as the SQL repositories.
type memStore struct {
	mu           sync.Mutex
	games        map[string]*domain.Game
	teams        map[string]*domain.Team
	teamOrder    []string
	questions    map[string]*domain.Question
	rows         map[string]*domain.RoundScore
	eliminations []domain.Elimination
}

func newMemStore() *memStore {
	return &memStore{
		games:     make(map[string]*domain.Game),
		teams:     make(map[string]*domain.Team),
		questions: make(map[string]*domain.Question),
		rows:      make(map[string]*domain.RoundScore),
	}
}

func (s *memStore) repositories() *repository.Repositories {
	return &repository.Repositories{
		Games:       &memGames{s},
		Teams:       &memTeams{s},
		Questions:   &memQuestions{s},
		RoundScores: &memRounds{s},
	}
}

func rowKey(teamID, gameID string, round int) string {
	return fmt.Sprintf("%s|%s|%d", teamID, gameID, round)
}

// gatesOpen mirrors the EXISTS clauses on every round-score write
func (s *memStore) gatesOpen(teamID, gameID string, round int) bool {
	t, ok := s.teams[teamID]
	if !ok || t.GameID != gameID || t.IsDisqualified {
		return false
	}
	g, ok := s.games[gameID]
	return ok && g.Status == domain.RoundStatus(round)
}

func copyTeam(t *domain.Team) *domain.Team {
	c := *t
	c.Members = append([]domain.Member(nil), t.Members...)
	return &c
}

// memGames implements repository.GameRepository

type memGames struct{ s *memStore }

func (r *memGames) Create(ctx context.Context, g *domain.Game) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.games {
		if existing.JoinCode == g.JoinCode {
			return repository.ErrJoinCodeTaken
		}
	}
	g.CreatedAt = time.Now()
	g.UpdatedAt = g.CreatedAt
	c := *g
	r.s.games[g.ID] = &c
	return nil
}

func (r *memGames) GetByID(ctx context.Context, id string) (*domain.Game, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	g, ok := r.s.games[id]
	if !ok {
		return nil, nil
	}
	c := *g
	return &c, nil
}

func (r *memGames) GetByJoinCode(ctx context.Context, code string) (*domain.Game, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, g := range r.s.games {
		if g.JoinCode == code {
			c := *g
			return &c, nil
		}
	}
	return nil, nil
}

func (r *memGames) List(ctx context.Context) ([]domain.Game, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var games []domain.Game
	for _, g := range r.s.games {
		games = append(games, *g)
	}
	sort.Slice(games, func(i, j int) bool { return games[i].ID < games[j].ID })
	return games, nil
}

func (r *memGames) Delete(ctx context.Context, id string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.games[id]; !ok {
		return false, nil
	}
	delete(r.s.games, id)
	return true, nil
}

func (r *memGames) Transition(ctx context.Context, g *domain.Game, prev domain.Game) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.games[g.ID]
	if !ok || stored.Status != prev.Status || stored.CurrentRound != prev.CurrentRound {
		return false, nil
	}
	stored.Status = g.Status
	stored.CurrentRound = g.CurrentRound
	stored.RoundStartedAt = g.RoundStartedAt
	stored.UpdatedAt = time.Now()
	g.UpdatedAt = stored.UpdatedAt
	return true, nil
}

// memTeams implements repository.TeamRepository

type memTeams struct{ s *memStore }

func (r *memTeams) Create(ctx context.Context, t *domain.Team) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	g, ok := r.s.games[t.GameID]
	if !ok || (g.Status != domain.StatusWaiting && g.Status != domain.StatusBetweenRounds) {
		return repository.ErrRegistrationClosed
	}
	for _, existing := range r.s.teams {
		if existing.GameID == t.GameID && strings.EqualFold(existing.Name, t.Name) {
			return repository.ErrTeamNameTaken
		}
	}
	t.CreatedAt = time.Now()
	r.s.teams[t.ID] = copyTeam(t)
	r.s.teamOrder = append(r.s.teamOrder, t.ID)
	return nil
}

func (r *memTeams) GetByID(ctx context.Context, id string) (*domain.Team, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.teams[id]
	if !ok {
		return nil, nil
	}
	return copyTeam(t), nil
}

func (r *memTeams) ListByGame(ctx context.Context, gameID string) ([]domain.Team, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var teams []domain.Team
	for _, id := range r.s.teamOrder {
		if t, ok := r.s.teams[id]; ok && t.GameID == gameID {
			teams = append(teams, *copyTeam(t))
		}
	}
	return teams, nil
}

func (r *memTeams) Strike(ctx context.Context, teamID string) (*domain.Team, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.teams[teamID]
	if !ok {
		return nil, nil
	}
	t.BanCount++
	t.IsDisqualified = true
	c := copyTeam(t)
	c.Members = nil
	return c, nil
}

func (r *memTeams) Clear(ctx context.Context, teamID string) (*domain.Team, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.teams[teamID]
	if !ok {
		return nil, nil
	}
	t.IsDisqualified = false
	c := copyTeam(t)
	c.Members = nil
	return c, nil
}

func (r *memTeams) EliminateMember(ctx context.Context, gameID, memberID string, round int) (*domain.Member, *domain.Elimination, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, e := range r.s.eliminations {
		if e.GameID == gameID && e.MemberID == memberID {
			return nil, nil, repository.ErrAlreadyEliminated
		}
	}
	for _, t := range r.s.teams {
		if t.GameID != gameID {
			continue
		}
		for i := range t.Members {
			if t.Members[i].ID != memberID {
				continue
			}
			n := round
			t.Members[i].IsEliminated = true
			t.Members[i].EliminatedRound = &n
			e := domain.Elimination{ID: "elim-" + memberID, GameID: gameID, MemberID: memberID, RoundNumber: round, CreatedAt: time.Now()}
			r.s.eliminations = append(r.s.eliminations, e)
			m := t.Members[i]
			return &m, &e, nil
		}
	}
	return nil, nil, repository.ErrMemberNotInGame
}

func (r *memTeams) ListEliminations(ctx context.Context, gameID string) ([]domain.Elimination, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var result []domain.Elimination
	for _, e := range r.s.eliminations {
		if e.GameID == gameID {
			result = append(result, e)
		}
	}
	return result, nil
}

// memQuestions implements repository.QuestionRepository

type memQuestions struct{ s *memStore }

func (r *memQuestions) ListByRoundSuit(ctx context.Context, round int, suit domain.Suit) ([]domain.Question, error) {
	return r.List(ctx, domain.QuestionFilter{RoundNumber: round, Suit: suit})
}

func (r *memQuestions) List(ctx context.Context, filter domain.QuestionFilter) ([]domain.Question, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var result []domain.Question
	for _, q := range r.s.questions {
		if filter.RoundNumber > 0 && q.RoundNumber != filter.RoundNumber {
			continue
		}
		if filter.Suit != "" && q.Suit != filter.Suit {
			continue
		}
		result = append(result, *q)
	}
	sort.Slice(result, func(i, j int) bool {
		a, b := result[i], result[j]
		if a.RoundNumber != b.RoundNumber {
			return a.RoundNumber < b.RoundNumber
		}
		if a.Suit != b.Suit {
			return a.Suit < b.Suit
		}
		return a.QuestionNumber < b.QuestionNumber
	})
	return result, nil
}

func (r *memQuestions) GetByID(ctx context.Context, id string) (*domain.Question, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	q, ok := r.s.questions[id]
	if !ok {
		return nil, nil
	}
	c := *q
	return &c, nil
}

func (r *memQuestions) slotTaken(q *domain.Question) bool {
	for _, existing := range r.s.questions {
		if existing.ID != q.ID && existing.RoundNumber == q.RoundNumber && existing.Suit == q.Suit && existing.QuestionNumber == q.QuestionNumber {
			return true
		}
	}
	return false
}

func (r *memQuestions) Create(ctx context.Context, q *domain.Question) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.slotTaken(q) {
		return repository.ErrQuestionExists
	}
	c := *q
	r.s.questions[q.ID] = &c
	return nil
}

func (r *memQuestions) Update(ctx context.Context, q *domain.Question) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.questions[q.ID]; !ok {
		return false, nil
	}
	if r.slotTaken(q) {
		return false, repository.ErrQuestionExists
	}
	c := *q
	r.s.questions[q.ID] = &c
	return true, nil
}

func (r *memQuestions) Delete(ctx context.Context, id string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.questions[id]; !ok {
		return false, nil
	}
	delete(r.s.questions, id)
	return true, nil
}

// memRounds implements repository.RoundScoreRepository

type memRounds struct{ s *memStore }

func (r *memRounds) list(match func(*domain.RoundScore) bool) []domain.RoundScore {
	var result []domain.RoundScore
	for _, rs := range r.s.rows {
		if match(rs) {
			result = append(result, *rs)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].TeamID != result[j].TeamID {
			return result[i].TeamID < result[j].TeamID
		}
		return result[i].RoundNumber < result[j].RoundNumber
	})
	return result
}

func (r *memRounds) ListByTeam(ctx context.Context, teamID, gameID string) ([]domain.RoundScore, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.list(func(rs *domain.RoundScore) bool { return rs.TeamID == teamID && rs.GameID == gameID }), nil
}

func (r *memRounds) ListByGame(ctx context.Context, gameID string) ([]domain.RoundScore, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.list(func(rs *domain.RoundScore) bool { return rs.GameID == gameID }), nil
}

func (r *memRounds) LockOperative(ctx context.Context, rs *domain.RoundScore) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if !r.s.gatesOpen(rs.TeamID, rs.GameID, rs.RoundNumber) {
		return false, nil
	}
	key := rowKey(rs.TeamID, rs.GameID, rs.RoundNumber)
	if existing, ok := r.s.rows[key]; ok {
		if existing.ActiveMemberID != nil {
			return false, nil
		}
		member := *rs.ActiveMemberID
		existing.ActiveMemberID = &member
		return true, nil
	}
	c := *rs
	r.s.rows[key] = &c
	return true, nil
}

func (r *memRounds) LockSuit(ctx context.Context, teamID, gameID string, round int, suit domain.Suit, now time.Time) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if !r.s.gatesOpen(teamID, gameID, round) {
		return false, nil
	}
	rs, ok := r.s.rows[rowKey(teamID, gameID, round)]
	if !ok || rs.SuitChosen != nil || rs.ActiveMemberID == nil {
		return false, nil
	}
	for _, other := range r.s.rows {
		if other.TeamID == teamID && other.GameID == gameID && other.RoundNumber != round &&
			other.SuitChosen != nil && *other.SuitChosen == suit {
			return false, nil
		}
	}
	s := suit
	started := now
	rs.SuitChosen = &s
	rs.CurrentQIndex = 0
	rs.QuestionStartedAt = &started
	return true, nil
}

func (r *memRounds) RecordAnswer(ctx context.Context, w repository.AnswerWrite) (int, bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if !r.s.gatesOpen(w.TeamID, w.GameID, w.Round) {
		return 0, false, nil
	}
	rs, ok := r.s.rows[rowKey(w.TeamID, w.GameID, w.Round)]
	if !ok || rs.SuitChosen == nil || rs.CurrentQIndex != w.ExpectedIndex {
		return 0, false, nil
	}
	started := w.Now
	rs.Score += w.Points
	rs.AnswerTimeSeconds += w.Elapsed
	rs.CurrentQIndex = w.NextIndex
	rs.QuestionStartedAt = &started

	total := 0
	for _, row := range r.s.rows {
		if row.TeamID == w.TeamID && row.GameID == w.GameID {
			total += row.Score
		}
	}
	if t, ok := r.s.teams[w.TeamID]; ok {
		t.TotalScore = total
	}
	return total, true, nil
}
