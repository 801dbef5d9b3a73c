package service

import (
	"context"
	stderrors "errors"
	"strconv"
	"time"

	"borderland-arena/internal/domain"
	"borderland-arena/internal/game"
	"borderland-arena/internal/repository"
	"borderland-arena/pkg/errors"
	"borderland-arena/pkg/logger"
	"borderland-arena/pkg/metrics"
	"borderland-arena/pkg/redis"
	"github.com/google/uuid"
)

type playService struct {
	repos       *repository.Repositories
	cache       *CacheService
	guard       *SubmissionGuard
	leaderboard LeaderboardService
	publisher   EventPublisher
	anticheat   *antiCheat
	logger      *logger.Logger
	now         func() time.Time
}

// NewPlayService creates the service that runs teams through rounds
func NewPlayService(
	repos *repository.Repositories,
	cache *CacheService,
	guard *SubmissionGuard,
	leaderboard LeaderboardService,
	publisher EventPublisher,
	log *logger.Logger,
) PlayService {
	return newPlayService(repos, cache, guard, leaderboard, publisher, log, time.Now)
}

func newPlayService(
	repos *repository.Repositories,
	cache *CacheService,
	guard *SubmissionGuard,
	leaderboard LeaderboardService,
	publisher EventPublisher,
	log *logger.Logger,
	now func() time.Time,
) *playService {
	publisher = publisherOrNop(publisher)
	return &playService{
		repos:       repos,
		cache:       cache,
		guard:       guard,
		leaderboard: leaderboard,
		publisher:   publisher,
		anticheat: &antiCheat{
			repos:       repos,
			leaderboard: leaderboard,
			publisher:   publisher,
			logger:      log,
			now:         now,
		},
		logger: log,
		now:    now,
	}
}

// teamState is everything a play decision is made from
type teamState struct {
	game *domain.Game
	team *domain.Team
	rows []domain.RoundScore
}

// RoundView derives the team's phase in the current round
func (s *playService) RoundView(ctx context.Context, session *domain.Session) (*domain.RoundView, error) {
	st, err := s.load(ctx, session)
	if err != nil {
		return nil, err
	}
	return s.buildView(ctx, st)
}

// SelectOperative locks the round's operative. A second call is a no-op.
func (s *playService) SelectOperative(ctx context.Context, session *domain.Session, memberID string) (*domain.RoundView, error) {
	st, err := s.load(ctx, session)
	if err != nil {
		return nil, err
	}
	round, err := checkPlayable(st)
	if err != nil {
		return nil, err
	}

	if rs := game.FindRound(st.rows, round); rs != nil && rs.ActiveMemberID != nil {
		return s.buildView(ctx, st)
	}

	if memberID == "" {
		return nil, errors.NewValidationError("member_id is required", nil)
	}
	if err := game.CheckOperative(memberID, st.team.Members, st.rows, round); err != nil {
		if len(game.EligibleOperatives(st.team.Members, st.rows, round)) == 0 {
			return nil, errors.NewConflictError("No eligible operative is left for this round", game.ErrNoEligibleOperative)
		}
		return nil, errors.NewValidationError("Member cannot play this round", map[string]interface{}{
			"member_id": memberID,
		}).WithCause(err)
	}

	applied, err := s.repos.RoundScores.LockOperative(ctx, &domain.RoundScore{
		ID:             uuid.NewString(),
		TeamID:         st.team.ID,
		GameID:         st.game.ID,
		RoundNumber:    round,
		ActiveMemberID: &memberID,
	})
	if err != nil {
		return nil, errors.NewInternalError("Failed to select operative", err)
	}

	st, err = s.load(ctx, session)
	if err != nil {
		return nil, err
	}
	if !applied {
		// Lost a race with another selection; the stored operative stands
		if rs := game.FindRound(st.rows, round); rs != nil && rs.ActiveMemberID != nil {
			return s.buildView(ctx, st)
		}
		return nil, explainRejected(st, round, errors.NewConflictError("Operative could not be selected", game.ErrRoundClosed))
	}

	s.logger.WithFields(map[string]interface{}{
		"team_id":   st.team.ID,
		"round":     round,
		"member_id": memberID,
	}).Info("Operative selected")

	s.publishRound(ctx, st, round)
	return s.buildView(ctx, st)
}

// SelectSuit locks the round's suit and starts the first question's clock
func (s *playService) SelectSuit(ctx context.Context, session *domain.Session, suit domain.Suit) (*domain.RoundView, error) {
	st, err := s.load(ctx, session)
	if err != nil {
		return nil, err
	}
	round, err := checkPlayable(st)
	if err != nil {
		return nil, err
	}

	rs := game.FindRound(st.rows, round)
	if rs == nil || rs.ActiveMemberID == nil {
		return nil, errors.NewConflictError("Select an operative first", game.ErrOperativeRequired)
	}
	if rs.SuitChosen != nil {
		return s.buildView(ctx, st)
	}

	if err := game.CheckSuit(suit, st.rows, round); err != nil {
		if stderrors.Is(err, game.ErrSuitUsed) {
			return nil, errors.NewConflictError("Suit already played in another round", err)
		}
		return nil, errors.NewValidationError("Invalid suit", map[string]interface{}{
			"suit": string(suit),
		}).WithCause(err)
	}

	applied, err := s.repos.RoundScores.LockSuit(ctx, st.team.ID, st.game.ID, round, suit, s.now().UTC())
	if err != nil {
		return nil, errors.NewInternalError("Failed to select suit", err)
	}

	st, err = s.load(ctx, session)
	if err != nil {
		return nil, err
	}
	if !applied {
		if rs := game.FindRound(st.rows, round); rs != nil && rs.SuitChosen != nil {
			return s.buildView(ctx, st)
		}
		return nil, explainRejected(st, round, errors.NewConflictError("Suit could not be selected", game.ErrSuitUsed))
	}

	s.logger.WithFields(map[string]interface{}{
		"team_id": st.team.ID,
		"round":   round,
		"suit":    string(suit),
	}).Info("Suit selected")

	s.publishRound(ctx, st, round)
	return s.buildView(ctx, st)
}

// SubmitAnswer grades the answer to the current question and advances the pointer
func (s *playService) SubmitAnswer(ctx context.Context, session *domain.Session, req *domain.AnswerRequest) (*domain.AnswerResult, error) {
	st, err := s.load(ctx, session)
	if err != nil {
		return nil, err
	}
	round, err := checkPlayable(st)
	if err != nil {
		s.rejected(err)
		return nil, err
	}

	rs := game.FindRound(st.rows, round)
	if rs == nil || rs.SuitChosen == nil {
		return nil, errors.NewConflictError("Select an operative and a suit first", game.ErrOperativeRequired)
	}

	questions, err := s.questions(ctx, round, *rs.SuitChosen)
	if err != nil {
		return nil, err
	}
	total := len(questions)

	if rs.CurrentQIndex >= total {
		err := errors.NewConflictError("Round already complete", game.ErrRoundComplete)
		s.rejected(err)
		return nil, err
	}
	if req.QuestionIndex != rs.CurrentQIndex {
		err := errors.NewConflictError("Answer is for a different question", game.ErrStaleSubmission).WithDetails(map[string]interface{}{
			"current_index": rs.CurrentQIndex,
		})
		s.rejected(err)
		return nil, err
	}

	release, ok := s.guard.Acquire(ctx, s.guard.SubmitKey(st.team.ID, round, rs.CurrentQIndex))
	if !ok {
		err := errors.NewConflictError("Answer already being submitted", game.ErrSubmissionInFlight)
		s.rejected(err)
		return nil, err
	}
	defer release()

	now := s.now().UTC()
	startedAt := now
	switch {
	case rs.QuestionStartedAt != nil:
		startedAt = *rs.QuestionStartedAt
	case st.game.RoundStartedAt != nil:
		startedAt = *st.game.RoundStartedAt
	}

	outcome, err := game.ApplyAnswer(rs, &questions[rs.CurrentQIndex], req.Answer, total, startedAt, now)
	if err != nil {
		if stderrors.Is(err, game.ErrEmptyAnswer) {
			return nil, errors.NewValidationError("Answer is required", nil).WithCause(err)
		}
		return nil, errors.NewConflictError("Round already complete", err)
	}

	totalScore, applied, err := s.repos.RoundScores.RecordAnswer(ctx, repository.AnswerWrite{
		TeamID:        st.team.ID,
		GameID:        st.game.ID,
		Round:         round,
		ExpectedIndex: rs.CurrentQIndex,
		Points:        outcome.Points,
		Elapsed:       outcome.Elapsed,
		NextIndex:     outcome.NextIndex,
		Now:           now,
	})
	if err != nil {
		s.logger.WithError(err).WithField("team_id", st.team.ID).Error("Failed to record answer")
		return nil, errors.NewInternalError("Failed to record answer", err)
	}
	if !applied {
		latest, loadErr := s.load(ctx, session)
		if loadErr != nil {
			return nil, loadErr
		}
		err := explainRejected(latest, round, errors.NewConflictError("Answer already submitted", game.ErrDuplicateSubmission))
		s.rejected(err)
		return nil, err
	}

	result := &domain.AnswerResult{
		Correct:           outcome.Correct,
		PointsEarned:      outcome.Points,
		ElapsedSeconds:    outcome.Elapsed,
		RoundScore:        outcome.Score,
		AnswerTimeSeconds: outcome.AnswerTimeSeconds,
		TotalScore:        totalScore,
		NextIndex:         outcome.NextIndex,
		TotalQuestions:    total,
		RoundComplete:     outcome.RoundComplete,
	}

	metrics.AnswersSubmitted.WithLabelValues(strconv.Itoa(round), strconv.FormatBool(outcome.Correct)).Inc()
	s.logger.WithFields(map[string]interface{}{
		"team_id":        st.team.ID,
		"round":          round,
		"question_index": rs.CurrentQIndex,
		"correct":        outcome.Correct,
		"points":         outcome.Points,
		"elapsed":        outcome.Elapsed,
	}).Info("Answer recorded")

	s.publisher.Publish(ctx, newEvent(domain.EventRoundScoreUpdated, st.game.ID, st.team.ID, round, result, now))
	s.publisher.Publish(ctx, newEvent(domain.EventTeamUpdated, st.game.ID, st.team.ID, round, map[string]interface{}{
		"team_id":     st.team.ID,
		"total_score": totalScore,
	}, now))
	s.leaderboard.Invalidate(ctx, st.game.ID)

	return result, nil
}

// ReportViolation strikes the team for a client-side signal such as leaving the tab.
// Reports outside an open round and bursts within a short window are ignored.
func (s *playService) ReportViolation(ctx context.Context, session *domain.Session, reason string) (*domain.Team, error) {
	st, err := s.load(ctx, session)
	if err != nil {
		return nil, err
	}
	if st.team.IsDisqualified || !st.game.Status.IsRound() {
		return st.team, nil
	}
	if !s.guard.FirstWithin(ctx, s.guard.ViolationKey(st.team.ID), redis.TTLViolation) {
		return st.team, nil
	}

	team, err := s.anticheat.strike(ctx, st.team.ID, strikeSourceClient, reason)
	if err != nil {
		return nil, err
	}
	team.Members = st.team.Members
	return team, nil
}

func (s *playService) load(ctx context.Context, session *domain.Session) (*teamState, error) {
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

	rows, err := s.repos.RoundScores.ListByTeam(ctx, team.ID, g.ID)
	if err != nil {
		return nil, errors.NewInternalError("Failed to load round progress", err)
	}

	return &teamState{game: g, team: team, rows: rows}, nil
}

func (s *playService) questions(ctx context.Context, round int, suit domain.Suit) ([]domain.Question, error) {
	questions, err := s.cache.GetQuestionSetWithCache(ctx, round, suit, s.repos.Questions.ListByRoundSuit)
	if err != nil {
		return nil, errors.NewInternalError("Failed to load questions", err)
	}
	return questions, nil
}

func (s *playService) buildView(ctx context.Context, st *teamState) (*domain.RoundView, error) {
	g, team := st.game, st.team
	view := &domain.RoundView{
		GameID:         g.ID,
		TeamID:         team.ID,
		GameStatus:     g.Status,
		Round:          g.CurrentRound,
		RoundName:      domain.RoundName(g.CurrentRound),
		RoundStartedAt: g.RoundStartedAt,
		TotalScore:     game.TotalScore(st.rows),
		ElapsedSeconds: game.TotalTime(st.rows),
		IsDisqualified: team.IsDisqualified,
		BanCount:       team.BanCount,
	}

	if team.IsDisqualified {
		view.Phase = domain.PhaseDisqualified
		return view, nil
	}

	round := g.Status.RoundNumber()
	if round == 0 {
		view.Phase = game.GamePhase(g.Status)
		return view, nil
	}

	view.RoundKind = game.RoundKindFor(round)
	view.EligibleOperatives = game.EligibleOperatives(team.Members, st.rows, round)
	view.Suits = game.SuitOptions(st.rows, round)

	rs := game.FindRound(st.rows, round)
	var questions []domain.Question
	if rs != nil {
		view.ActiveMemberID = rs.ActiveMemberID
		view.SuitChosen = rs.SuitChosen
		view.RoundScore = rs.Score
		view.QuestionIndex = rs.CurrentQIndex
		if rs.SuitChosen != nil {
			var err error
			questions, err = s.questions(ctx, round, *rs.SuitChosen)
			if err != nil {
				return nil, err
			}
		}
	}
	view.TotalQuestions = len(questions)
	view.Phase = game.DerivePhase(rs, len(questions))

	switch view.Phase {
	case domain.PhaseNoOperative:
		if len(view.EligibleOperatives) == 0 {
			view.BlockedReason = game.ErrNoEligibleOperative.Error()
		}
	case domain.PhaseAnswering:
		view.Question = questions[rs.CurrentQIndex].View()
		view.QuestionStartedAt = rs.QuestionStartedAt
		view.TimerRunning = true
	}

	return view, nil
}

func (s *playService) publishRound(ctx context.Context, st *teamState, round int) {
	rs := game.FindRound(st.rows, round)
	if rs == nil {
		return
	}
	s.publisher.Publish(ctx, newEvent(domain.EventRoundScoreUpdated, st.game.ID, st.team.ID, round, rs, s.now()))
}

func (s *playService) rejected(err error) {
	reason := "other"
	switch {
	case stderrors.Is(err, game.ErrRoundClosed):
		reason = "round_closed"
	case stderrors.Is(err, game.ErrTeamDisqualified):
		reason = "disqualified"
	case stderrors.Is(err, game.ErrStaleSubmission):
		reason = "stale"
	case stderrors.Is(err, game.ErrDuplicateSubmission):
		reason = "duplicate"
	case stderrors.Is(err, game.ErrSubmissionInFlight):
		reason = "in_flight"
	case stderrors.Is(err, game.ErrRoundComplete):
		reason = "round_complete"
	}
	metrics.SubmissionsRejected.WithLabelValues(reason).Inc()
}

// checkPlayable gates every team action: the team must be eligible and a round open
func checkPlayable(st *teamState) (int, error) {
	if err := game.CheckEligible(st.team); err != nil {
		return 0, errors.NewAuthorizationError("Team is disqualified").WithCause(err)
	}
	round, err := game.CheckRoundOpen(st.game)
	if err != nil {
		return 0, errors.NewConflictError("No round is in progress", err)
	}
	return round, nil
}

// explainRejected names the gate that refused a conditional write
func explainRejected(st *teamState, round int, fallback error) error {
	if st.team.IsDisqualified {
		return errors.NewAuthorizationError("Team is disqualified").WithCause(game.ErrTeamDisqualified)
	}
	if st.game.Status.RoundNumber() != round {
		return errors.NewConflictError("Round has closed", game.ErrRoundClosed)
	}
	return fallback
}
