package repository

import (
	"context"
	"fmt"
	"time"

	"borderland-arena/internal/domain"
	"borderland-arena/pkg/database"
	"github.com/jackc/pgx/v5"
)

const roundScoreColumns = `id, team_id, game_id, round_number, score, answer_time_seconds, suit_chosen, active_member_id, current_q_index, question_started_at, updated_at`

// Every write carries these gates: $team and $game are the team and game id
// parameters, $status the round status that must still be current.
const roundGates = `
	AND EXISTS (SELECT 1 FROM teams WHERE id = %[1]s AND game_id = %[2]s AND NOT is_disqualified)
	AND EXISTS (SELECT 1 FROM games WHERE id = %[2]s AND status = %[3]s)`

type RoundScorePostgresRepository struct {
	db *database.PostgresDB
}

func NewRoundScoreRepository(db *database.PostgresDB) *RoundScorePostgresRepository {
	return &RoundScorePostgresRepository{db: db}
}

// ListByTeam lists a team's rounds in order
func (r *RoundScorePostgresRepository) ListByTeam(ctx context.Context, teamID, gameID string) ([]domain.RoundScore, error) {
	query := `SELECT ` + roundScoreColumns + ` FROM round_scores WHERE team_id = $1 AND game_id = $2 ORDER BY round_number`
	return r.list(ctx, query, teamID, gameID)
}

// ListByGame lists all rounds of every team in a game
func (r *RoundScorePostgresRepository) ListByGame(ctx context.Context, gameID string) ([]domain.RoundScore, error) {
	query := `SELECT ` + roundScoreColumns + ` FROM round_scores WHERE game_id = $1 ORDER BY team_id, round_number`
	return r.list(ctx, query, gameID)
}

// LockOperative inserts the round row or fills an unset operative. An operative
// already set is never overwritten.
func (r *RoundScorePostgresRepository) LockOperative(ctx context.Context, rs *domain.RoundScore) (bool, error) {
	query := `
		INSERT INTO round_scores (id, team_id, game_id, round_number, active_member_id)
		SELECT $1::uuid, $2::uuid, $3::uuid, $4::int, $5::uuid
		WHERE TRUE` + fmt.Sprintf(roundGates, "$2", "$3", "$6") + `
		ON CONFLICT (team_id, game_id, round_number) DO UPDATE
		SET active_member_id = EXCLUDED.active_member_id, updated_at = NOW()
		WHERE round_scores.active_member_id IS NULL
	`

	tag, err := r.db.Pool.Exec(ctx, query,
		rs.ID,
		rs.TeamID,
		rs.GameID,
		rs.RoundNumber,
		rs.ActiveMemberID,
		string(domain.RoundStatus(rs.RoundNumber)),
	)
	if err != nil {
		return false, fmt.Errorf("failed to set operative: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// LockSuit sets the suit once. The suit must not be taken by another round of the team.
func (r *RoundScorePostgresRepository) LockSuit(ctx context.Context, teamID, gameID string, round int, suit domain.Suit, now time.Time) (bool, error) {
	query := `
		UPDATE round_scores
		SET suit_chosen = $4, current_q_index = 0, question_started_at = $5, updated_at = NOW()
		WHERE team_id = $1 AND game_id = $2 AND round_number = $3
		  AND suit_chosen IS NULL AND active_member_id IS NOT NULL
		  AND NOT EXISTS (
			SELECT 1 FROM round_scores o
			WHERE o.team_id = $1 AND o.game_id = $2 AND o.round_number <> $3 AND o.suit_chosen = $4
		  )` + fmt.Sprintf(roundGates, "$1", "$2", "$6")

	tag, err := r.db.Pool.Exec(ctx, query,
		teamID,
		gameID,
		round,
		string(suit),
		now,
		string(domain.RoundStatus(round)),
	)
	if err != nil {
		return false, fmt.Errorf("failed to set suit: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// recomputeTotalQuery derives teams.total_score from the round rows
const recomputeTotalQuery = `
	UPDATE teams
	SET total_score = (
		SELECT COALESCE(SUM(score), 0) FROM round_scores WHERE team_id = $1 AND game_id = $2
	)
	WHERE id = $1
	RETURNING total_score
`

// RecordAnswer applies a graded answer if the pointer has not moved and
// refreshes the team total in the same transaction
func (r *RoundScorePostgresRepository) RecordAnswer(ctx context.Context, w AnswerWrite) (int, bool, error) {
	query := `
		UPDATE round_scores
		SET score = score + $5,
		    answer_time_seconds = answer_time_seconds + $6,
		    current_q_index = $7,
		    question_started_at = $8,
		    updated_at = NOW()
		WHERE team_id = $1 AND game_id = $2 AND round_number = $3
		  AND current_q_index = $4 AND suit_chosen IS NOT NULL` + fmt.Sprintf(roundGates, "$1", "$2", "$9")

	var total int
	var applied bool
	err := r.db.WithTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, query,
			w.TeamID,
			w.GameID,
			w.Round,
			w.ExpectedIndex,
			w.Points,
			w.Elapsed,
			w.NextIndex,
			w.Now,
			string(domain.RoundStatus(w.Round)),
		)
		if err != nil {
			return fmt.Errorf("failed to record answer: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return nil
		}

		if err := tx.QueryRow(ctx, recomputeTotalQuery, w.TeamID, w.GameID).Scan(&total); err != nil {
			return fmt.Errorf("failed to recompute total score: %w", err)
		}
		applied = true
		return nil
	})
	if err != nil {
		return 0, false, err
	}
	return total, applied, nil
}

func (r *RoundScorePostgresRepository) list(ctx context.Context, query string, args ...any) ([]domain.RoundScore, error) {
	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list round scores: %w", err)
	}
	defer rows.Close()

	var result []domain.RoundScore
	for rows.Next() {
		rs, err := scanRoundScore(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan round score: %w", err)
		}
		result = append(result, rs)
	}

	return result, rows.Err()
}

func scanRoundScore(row pgx.Row) (domain.RoundScore, error) {
	var rs domain.RoundScore
	var suit *string

	err := row.Scan(
		&rs.ID,
		&rs.TeamID,
		&rs.GameID,
		&rs.RoundNumber,
		&rs.Score,
		&rs.AnswerTimeSeconds,
		&suit,
		&rs.ActiveMemberID,
		&rs.CurrentQIndex,
		&rs.QuestionStartedAt,
		&rs.UpdatedAt,
	)
	if err != nil {
		return rs, err
	}

	if suit != nil {
		s := domain.Suit(*suit)
		rs.SuitChosen = &s
	}
	return rs, nil
}
