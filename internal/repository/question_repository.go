package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"borderland-arena/internal/domain"
	"borderland-arena/pkg/database"
	"github.com/jackc/pgx/v5"
)

const questionColumns = `id, round_number, suit, question_number, question_text, question_type, options, correct_answer, points, image_url`

type QuestionPostgresRepository struct {
	db *database.PostgresDB
}

func NewQuestionRepository(db *database.PostgresDB) *QuestionPostgresRepository {
	return &QuestionPostgresRepository{db: db}
}

// ListByRoundSuit returns the ordered question sequence of a round and suit
func (r *QuestionPostgresRepository) ListByRoundSuit(ctx context.Context, round int, suit domain.Suit) ([]domain.Question, error) {
	return r.List(ctx, domain.QuestionFilter{RoundNumber: round, Suit: suit})
}

// List lists questions matching the filter
func (r *QuestionPostgresRepository) List(ctx context.Context, filter domain.QuestionFilter) ([]domain.Question, error) {
	var conds []string
	var args []any
	if filter.RoundNumber > 0 {
		args = append(args, filter.RoundNumber)
		conds = append(conds, fmt.Sprintf("round_number = $%d", len(args)))
	}
	if filter.Suit != "" {
		args = append(args, string(filter.Suit))
		conds = append(conds, fmt.Sprintf("suit = $%d", len(args)))
	}

	query := `SELECT ` + questionColumns + ` FROM questions`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY round_number, suit, question_number`

	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list questions: %w", err)
	}
	defer rows.Close()

	var questions []domain.Question
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan question: %w", err)
		}
		questions = append(questions, *q)
	}

	return questions, rows.Err()
}

// GetByID gets a question by ID
func (r *QuestionPostgresRepository) GetByID(ctx context.Context, id string) (*domain.Question, error) {
	query := `SELECT ` + questionColumns + ` FROM questions WHERE id = $1`
	q, err := scanQuestion(r.db.Pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get question: %w", err)
	}
	return q, nil
}

// Create inserts a question
func (r *QuestionPostgresRepository) Create(ctx context.Context, q *domain.Question) error {
	query := `
		INSERT INTO questions (` + questionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.db.Pool.Exec(ctx, query,
		q.ID,
		q.RoundNumber,
		string(q.Suit),
		q.QuestionNumber,
		q.QuestionText,
		string(q.QuestionType),
		q.Options,
		q.CorrectAnswer,
		q.Points,
		q.ImageURL,
	)
	if database.IsUniqueViolation(err, "questions_round_suit_number_key") {
		return ErrQuestionExists
	}
	if err != nil {
		return fmt.Errorf("failed to create question: %w", err)
	}
	return nil
}

// Update replaces every authored field of a question
func (r *QuestionPostgresRepository) Update(ctx context.Context, q *domain.Question) (bool, error) {
	query := `
		UPDATE questions
		SET round_number = $2, suit = $3, question_number = $4, question_text = $5,
		    question_type = $6, options = $7, correct_answer = $8, points = $9, image_url = $10
		WHERE id = $1
	`

	tag, err := r.db.Pool.Exec(ctx, query,
		q.ID,
		q.RoundNumber,
		string(q.Suit),
		q.QuestionNumber,
		q.QuestionText,
		string(q.QuestionType),
		q.Options,
		q.CorrectAnswer,
		q.Points,
		q.ImageURL,
	)
	if database.IsUniqueViolation(err, "questions_round_suit_number_key") {
		return false, ErrQuestionExists
	}
	if err != nil {
		return false, fmt.Errorf("failed to update question: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// Delete deletes a question
func (r *QuestionPostgresRepository) Delete(ctx context.Context, id string) (bool, error) {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM questions WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete question: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func scanQuestion(row pgx.Row) (*domain.Question, error) {
	var q domain.Question
	var suit, qtype string

	err := row.Scan(
		&q.ID,
		&q.RoundNumber,
		&suit,
		&q.QuestionNumber,
		&q.QuestionText,
		&qtype,
		&q.Options,
		&q.CorrectAnswer,
		&q.Points,
		&q.ImageURL,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	q.Suit = domain.Suit(suit)
	q.QuestionType = domain.QuestionType(qtype)
	return &q, nil
}
