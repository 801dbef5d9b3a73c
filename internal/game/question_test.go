package game

import (
	"testing"

	"borderland-arena/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func choiceQuestion() *domain.Question {
	return &domain.Question{
		RoundNumber:    1,
		Suit:           domain.SuitSpades,
		QuestionNumber: 1,
		QuestionText:   "2 + 2?",
		Options:        []string{"3", "4", "5", "6"},
		CorrectAnswer:  "4",
	}
}

func TestPrepareQuestion(t *testing.T) {
	img := "https://cdn.example.com/q.png"
	blank := "  "

	tests := []struct {
		name    string
		mutate  func(q *domain.Question)
		wantErr bool
		check   func(t *testing.T, q *domain.Question)
	}{
		{
			name:   "valid multiple choice gets defaults",
			mutate: func(q *domain.Question) {},
			check: func(t *testing.T, q *domain.Question) {
				assert.Equal(t, DefaultPoints, q.Points)
				assert.Equal(t, domain.QuestionTypeText, q.QuestionType)
			},
		},
		{
			name:   "blank options are dropped before counting",
			mutate: func(q *domain.Question) { q.Options = []string{"3", "", "4", "5", " ", "6"} },
			check: func(t *testing.T, q *domain.Question) {
				assert.Equal(t, []string{"3", "4", "5", "6"}, q.Options)
			},
		},
		{
			name:   "correct answer is trimmed before matching",
			mutate: func(q *domain.Question) { q.CorrectAnswer = " 4 " },
		},
		{name: "three options", mutate: func(q *domain.Question) { q.Options = []string{"3", "4", "5"} }, wantErr: true},
		{name: "answer not among options", mutate: func(q *domain.Question) { q.CorrectAnswer = "7" }, wantErr: true},
		{name: "empty answer", mutate: func(q *domain.Question) { q.CorrectAnswer = " " }, wantErr: true},
		{name: "empty text", mutate: func(q *domain.Question) { q.QuestionText = "" }, wantErr: true},
		{name: "bad suit", mutate: func(q *domain.Question) { q.Suit = "stars" }, wantErr: true},
		{name: "round out of range", mutate: func(q *domain.Question) { q.RoundNumber = 5 }, wantErr: true},
		{name: "question number out of range", mutate: func(q *domain.Question) { q.QuestionNumber = 6 }, wantErr: true},
		{name: "negative points", mutate: func(q *domain.Question) { q.Points = -5 }, wantErr: true},
		{name: "unknown type", mutate: func(q *domain.Question) { q.QuestionType = "video" }, wantErr: true},
		{
			name:    "image without url",
			mutate:  func(q *domain.Question) { q.QuestionType = domain.QuestionTypeImage; q.ImageURL = &blank },
			wantErr: true,
		},
		{
			name: "image question gets a caption",
			mutate: func(q *domain.Question) {
				q.QuestionType = domain.QuestionTypeImage
				q.ImageURL = &img
				q.QuestionText = ""
			},
			check: func(t *testing.T, q *domain.Question) {
				assert.Equal(t, "Image Question", q.QuestionText)
			},
		},
		{
			name: "final round is free text",
			mutate: func(q *domain.Question) {
				q.RoundNumber = 4
				q.Options = []string{"a"}
				q.CorrectAnswer = "anything"
			},
			check: func(t *testing.T, q *domain.Question) {
				assert.Nil(t, q.Options)
				assert.Equal(t, DefaultFinalPoints, q.Points)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := choiceQuestion()
			tt.mutate(q)
			err := PrepareQuestion(q)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidQuestion)
				return
			}
			require.NoError(t, err)
			if tt.check != nil {
				tt.check(t, q)
			}
		})
	}
}
