package game

import (
	"math"
	"strings"
	"time"

	"borderland-arena/internal/domain"
)

// Normalize is the only transformation applied before comparing answers.
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Grade is the outcome of checking one answer
type Grade struct {
	Correct bool
	Points  int
}

// GradeAnswer compares an answer with the question's correct answer.
// There is no partial credit and a wrong answer scores zero.
func GradeAnswer(answer string, q *domain.Question) Grade {
	if Normalize(answer) == Normalize(q.CorrectAnswer) {
		return Grade{Correct: true, Points: q.Points}
	}
	return Grade{}
}

// ElapsedSeconds rounds the time spent on a question to whole seconds.
func ElapsedSeconds(start, now time.Time) int {
	d := now.Sub(start)
	if d <= 0 {
		return 0
	}
	return int(math.Round(d.Seconds()))
}

// Outcome is the effect of one accepted answer on a RoundScore
type Outcome struct {
	Grade
	Elapsed           int
	Score             int
	AnswerTimeSeconds int
	NextIndex         int
	RoundComplete     bool
}

// ApplyAnswer grades answer against q, the question at rs.CurrentQIndex, and
// computes the updated score, time and pointer. rs is not modified.
func ApplyAnswer(rs *domain.RoundScore, q *domain.Question, answer string, total int, startedAt, now time.Time) (*Outcome, error) {
	if strings.TrimSpace(answer) == "" {
		return nil, ErrEmptyAnswer
	}
	if rs.CurrentQIndex >= total {
		return nil, ErrRoundComplete
	}

	grade := GradeAnswer(answer, q)
	elapsed := ElapsedSeconds(startedAt, now)
	next := rs.CurrentQIndex + 1

	return &Outcome{
		Grade:             grade,
		Elapsed:           elapsed,
		Score:             rs.Score + grade.Points,
		AnswerTimeSeconds: rs.AnswerTimeSeconds + elapsed,
		NextIndex:         next,
		RoundComplete:     next >= total,
	}, nil
}

// TotalScore sums score across every round of a team.
func TotalScore(rows []domain.RoundScore) int {
	total := 0
	for _, r := range rows {
		total += r.Score
	}
	return total
}

// TotalTime sums answering time across every round of a team.
func TotalTime(rows []domain.RoundScore) int {
	total := 0
	for _, r := range rows {
		total += r.AnswerTimeSeconds
	}
	return total
}
