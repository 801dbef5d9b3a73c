package domain

import "time"

// RoundKind selects how a round is presented. Progression and scoring are the same for every kind.
type RoundKind string

const (
	RoundKindQuiz           RoundKind = "quiz"
	RoundKindCodeReview     RoundKind = "code_review"
	RoundKindFreeformTask   RoundKind = "freeform_task"
	RoundKindFinalChallenge RoundKind = "final_challenge"
)

// RoundScore is one team's participation in one round
type RoundScore struct {
	ID                string     `json:"id"`
	TeamID            string     `json:"team_id"`
	GameID            string     `json:"game_id"`
	RoundNumber       int        `json:"round_number"`
	Score             int        `json:"score"`
	AnswerTimeSeconds int        `json:"answer_time_seconds"`
	SuitChosen        *Suit      `json:"suit_chosen,omitempty"`
	ActiveMemberID    *string    `json:"active_member_id,omitempty"`
	CurrentQIndex     int        `json:"current_q_index"`
	QuestionStartedAt *time.Time `json:"question_started_at,omitempty"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// Phase is what a team's client should present right now
type Phase string

const (
	PhaseWaiting           Phase = "waiting"
	PhaseBetweenRounds     Phase = "between_rounds"
	PhaseFinished          Phase = "finished"
	PhaseDisqualified      Phase = "disqualified"
	PhaseNoOperative       Phase = "no_operative"
	PhaseSuitSelection     Phase = "suit_selection"
	PhaseAnswering         Phase = "answering"
	PhaseAwaitingQuestions Phase = "awaiting_questions"
	PhaseRoundComplete     Phase = "round_complete"
)

// RoundView is the derived state of a team in the current round
type RoundView struct {
	GameID             string        `json:"game_id"`
	TeamID             string        `json:"team_id"`
	GameStatus         GameStatus    `json:"game_status"`
	Round              int           `json:"round"`
	RoundName          string        `json:"round_name,omitempty"`
	RoundKind          RoundKind     `json:"round_kind,omitempty"`
	RoundStartedAt     *time.Time    `json:"round_started_at,omitempty"`
	Phase              Phase         `json:"phase"`
	EligibleOperatives []Member      `json:"eligible_operatives,omitempty"`
	ActiveMemberID     *string       `json:"active_member_id,omitempty"`
	Suits              []SuitOption  `json:"suits,omitempty"`
	SuitChosen         *Suit         `json:"suit_chosen,omitempty"`
	Question           *QuestionView `json:"question,omitempty"`
	QuestionIndex      int           `json:"question_index"`
	TotalQuestions     int           `json:"total_questions"`
	QuestionStartedAt  *time.Time    `json:"question_started_at,omitempty"`
	RoundScore         int           `json:"round_score"`
	TotalScore         int           `json:"total_score"`
	ElapsedSeconds     int           `json:"elapsed_seconds"`
	TimerRunning       bool          `json:"timer_running"`
	IsDisqualified     bool          `json:"is_disqualified"`
	BanCount           int           `json:"ban_count"`
	BlockedReason      string        `json:"blocked_reason,omitempty"`
}

// SelectOperativeRequest is the body of POST /api/play/operative
type SelectOperativeRequest struct {
	MemberID string `json:"member_id"`
}

// SelectSuitRequest is the body of POST /api/play/suit
type SelectSuitRequest struct {
	Suit Suit `json:"suit"`
}

// AnswerRequest is the body of POST /api/play/answer
type AnswerRequest struct {
	QuestionIndex int    `json:"question_index"`
	Answer        string `json:"answer"`
}

// AnswerResult is returned after a graded submission
type AnswerResult struct {
	Correct           bool `json:"correct"`
	PointsEarned      int  `json:"points_earned"`
	ElapsedSeconds    int  `json:"elapsed_seconds"`
	RoundScore        int  `json:"round_score"`
	AnswerTimeSeconds int  `json:"answer_time_seconds"`
	TotalScore        int  `json:"total_score"`
	NextIndex         int  `json:"next_index"`
	TotalQuestions    int  `json:"total_questions"`
	RoundComplete     bool `json:"round_complete"`
}

// Standing is one row of the leaderboard
type Standing struct {
	Rank           int    `json:"rank"`
	TeamID         string `json:"team_id"`
	TeamName       string `json:"team_name"`
	TotalScore     int    `json:"total_score"`
	TotalTime      int    `json:"total_time"`
	RoundsPlayed   int    `json:"rounds_played"`
	IsDisqualified bool   `json:"is_disqualified"`
	BanCount       int    `json:"ban_count"`
}

// Leaderboard is the ranked list of teams in a game
type Leaderboard struct {
	GameID    string     `json:"game_id"`
	Standings []Standing `json:"standings"`
	UpdatedAt time.Time  `json:"updated_at"`
}
