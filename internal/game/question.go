package game

import (
	"fmt"
	"strings"

	"borderland-arena/internal/domain"
)

const (
	DefaultPoints       = 10
	DefaultFinalPoints  = 20
	ChoiceOptionCount   = 4
	defaultImageCaption = "Image Question"
)

// DefaultPointsFor is the authoring default for round n.
func DefaultPointsFor(n int) int {
	if n == domain.Rounds {
		return DefaultFinalPoints
	}
	return DefaultPoints
}

// PrepareQuestion normalises an authored question and checks it.
// Rounds 1-3 are multiple choice with exactly four options; round 4 is free text.
func PrepareQuestion(q *domain.Question) error {
	if q.RoundNumber < 1 || q.RoundNumber > domain.Rounds {
		return fmt.Errorf("%w: round_number must be 1-%d", ErrInvalidQuestion, domain.Rounds)
	}
	if !q.Suit.Valid() {
		return fmt.Errorf("%w: unknown suit %q", ErrInvalidQuestion, q.Suit)
	}
	if q.QuestionNumber < 1 || q.QuestionNumber > domain.QuestionsPerSuit {
		return fmt.Errorf("%w: question_number must be 1-%d", ErrInvalidQuestion, domain.QuestionsPerSuit)
	}
	if q.Points == 0 {
		q.Points = DefaultPointsFor(q.RoundNumber)
	}
	if q.Points < 0 {
		return fmt.Errorf("%w: points must be positive", ErrInvalidQuestion)
	}
	if strings.TrimSpace(q.CorrectAnswer) == "" {
		return fmt.Errorf("%w: correct_answer is required", ErrInvalidQuestion)
	}

	switch q.QuestionType {
	case "", domain.QuestionTypeText:
		q.QuestionType = domain.QuestionTypeText
		q.ImageURL = nil
		if strings.TrimSpace(q.QuestionText) == "" {
			return fmt.Errorf("%w: question_text is required", ErrInvalidQuestion)
		}
	case domain.QuestionTypeImage:
		if q.ImageURL == nil || strings.TrimSpace(*q.ImageURL) == "" {
			return fmt.Errorf("%w: image_url is required for image questions", ErrInvalidQuestion)
		}
		if strings.TrimSpace(q.QuestionText) == "" {
			q.QuestionText = defaultImageCaption
		}
	default:
		return fmt.Errorf("%w: unknown question_type %q", ErrInvalidQuestion, q.QuestionType)
	}

	if q.RoundNumber == domain.Rounds {
		q.Options = nil
		return nil
	}

	opts := make([]string, 0, len(q.Options))
	for _, o := range q.Options {
		if strings.TrimSpace(o) != "" {
			opts = append(opts, o)
		}
	}
	if len(opts) != ChoiceOptionCount {
		return fmt.Errorf("%w: %d options required", ErrInvalidQuestion, ChoiceOptionCount)
	}
	answer := strings.TrimSpace(q.CorrectAnswer)
	for _, o := range opts {
		if o == answer {
			q.Options = opts
			return nil
		}
	}
	return fmt.Errorf("%w: correct answer must match one option", ErrInvalidQuestion)
}
