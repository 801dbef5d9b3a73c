package main

import (
	"context"
	"fmt"
	"strconv"

	"borderland-arena/internal/domain"
	"borderland-arena/internal/game"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// seedQuestions fills every round and suit with a playable sample bank.
// Slots that already hold a question are left alone.
func seedQuestions(ctx context.Context, conn *pgx.Conn) (int, error) {
	questions, err := sampleQuestions()
	if err != nil {
		return 0, err
	}

	batch := &pgx.Batch{}
	for _, q := range questions {
		batch.Queue(`
			INSERT INTO questions (id, round_number, suit, question_number, question_text, question_type, options, correct_answer, points, image_url)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			ON CONFLICT (round_number, suit, question_number) DO NOTHING`,
			q.ID, q.RoundNumber, string(q.Suit), q.QuestionNumber, q.QuestionText,
			string(q.QuestionType), q.Options, q.CorrectAnswer, q.Points, q.ImageURL)
	}

	results := conn.SendBatch(ctx, batch)
	defer results.Close()

	inserted := 0
	for range questions {
		tag, err := results.Exec()
		if err != nil {
			return inserted, fmt.Errorf("failed to insert question: %w", err)
		}
		inserted += int(tag.RowsAffected())
	}
	return inserted, nil
}

// sampleQuestions builds QuestionsPerSuit questions for every round and suit
func sampleQuestions() ([]domain.Question, error) {
	var questions []domain.Question
	for round := 1; round <= domain.Rounds; round++ {
		for _, suit := range domain.Suits {
			for n := 1; n <= domain.QuestionsPerSuit; n++ {
				q := sampleQuestion(round, suit, n)
				q.ID = uuid.NewString()
				if err := game.PrepareQuestion(&q); err != nil {
					return nil, fmt.Errorf("sample round %d %s #%d: %w", round, suit, n, err)
				}
				questions = append(questions, q)
			}
		}
	}
	return questions, nil
}

func sampleQuestion(round int, suit domain.Suit, n int) domain.Question {
	q := domain.Question{
		RoundNumber:    round,
		Suit:           suit,
		QuestionNumber: n,
		QuestionType:   domain.QuestionTypeText,
	}
	k := round*10 + n

	var answer int
	switch suit {
	case domain.SuitSpades:
		answer = k + 3*n
		q.QuestionText = fmt.Sprintf("Continue the sequence: %d, %d, %d, ?", k, k+n, k+2*n)
	case domain.SuitHearts:
		answer = k * 2
		q.QuestionText = fmt.Sprintf("I am twice the number %d. What am I?", k)
	case domain.SuitDiamonds:
		answer = k % 7
		q.QuestionText = fmt.Sprintf("What does the expression %d %% 7 evaluate to?", k)
	case domain.SuitClubs:
		answer = k
		q.QuestionText = fmt.Sprintf("Which decimal number is written 0b%s in binary?", strconv.FormatInt(int64(k), 2))
	}
	q.CorrectAnswer = strconv.Itoa(answer)

	// the final round is answered in free text
	if round < domain.Rounds {
		q.Options = []string{
			strconv.Itoa(answer - 1),
			strconv.Itoa(answer),
			strconv.Itoa(answer + 1),
			strconv.Itoa(answer + 2),
		}
		if n%2 == 0 {
			q.Options[0], q.Options[1] = q.Options[1], q.Options[0]
		}
	}
	return q
}
