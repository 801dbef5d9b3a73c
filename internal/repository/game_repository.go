package repository

import (
	"context"
	"errors"
	"fmt"

	"borderland-arena/internal/domain"
	"borderland-arena/pkg/database"
	"github.com/jackc/pgx/v5"
)

const gameColumns = `id, name, admin_email, join_code, status, current_round, round_started_at, created_at, updated_at`

type GamePostgresRepository struct {
	db *database.PostgresDB
}

func NewGameRepository(db *database.PostgresDB) *GamePostgresRepository {
	return &GamePostgresRepository{db: db}
}

// Create inserts a new game
func (r *GamePostgresRepository) Create(ctx context.Context, game *domain.Game) error {
	query := `
		INSERT INTO games (id, name, admin_email, join_code, status, current_round)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`

	err := r.db.Pool.QueryRow(ctx, query,
		game.ID,
		game.Name,
		game.AdminEmail,
		game.JoinCode,
		string(game.Status),
		game.CurrentRound,
	).Scan(&game.CreatedAt, &game.UpdatedAt)

	if database.IsUniqueViolation(err, "games_join_code_key") {
		return ErrJoinCodeTaken
	}
	if err != nil {
		return fmt.Errorf("failed to create game: %w", err)
	}
	return nil
}

// GetByID gets a game by ID
func (r *GamePostgresRepository) GetByID(ctx context.Context, id string) (*domain.Game, error) {
	query := `SELECT ` + gameColumns + ` FROM games WHERE id = $1`
	game, err := scanGame(r.db.Pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}
	return game, nil
}

// GetByJoinCode gets a game by join code
func (r *GamePostgresRepository) GetByJoinCode(ctx context.Context, code string) (*domain.Game, error) {
	query := `SELECT ` + gameColumns + ` FROM games WHERE join_code = $1`
	game, err := scanGame(r.db.Pool.QueryRow(ctx, query, code))
	if err != nil {
		return nil, fmt.Errorf("failed to get game by join code: %w", err)
	}
	return game, nil
}

// List lists all games
func (r *GamePostgresRepository) List(ctx context.Context) ([]domain.Game, error) {
	query := `SELECT ` + gameColumns + ` FROM games ORDER BY created_at DESC`

	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list games: %w", err)
	}
	defer rows.Close()

	var games []domain.Game
	for rows.Next() {
		game, err := scanGame(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan game: %w", err)
		}
		games = append(games, *game)
	}

	return games, rows.Err()
}

// Delete deletes a game; teams, scores and eliminations cascade
func (r *GamePostgresRepository) Delete(ctx context.Context, id string) (bool, error) {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM games WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete game: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// Transition applies a status change with compare-and-set on the previous status and round
func (r *GamePostgresRepository) Transition(ctx context.Context, game *domain.Game, prev domain.Game) (bool, error) {
	query := `
		UPDATE games
		SET status = $2, current_round = $3, round_started_at = $4, updated_at = NOW()
		WHERE id = $1 AND status = $5 AND current_round = $6
		RETURNING updated_at
	`

	err := r.db.Pool.QueryRow(ctx, query,
		game.ID,
		string(game.Status),
		game.CurrentRound,
		game.RoundStartedAt,
		string(prev.Status),
		prev.CurrentRound,
	).Scan(&game.UpdatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to update game status: %w", err)
	}
	return true, nil
}

// scanGame scans one game row, returning nil for no rows
func scanGame(row pgx.Row) (*domain.Game, error) {
	var game domain.Game
	var status string

	err := row.Scan(
		&game.ID,
		&game.Name,
		&game.AdminEmail,
		&game.JoinCode,
		&status,
		&game.CurrentRound,
		&game.RoundStartedAt,
		&game.CreatedAt,
		&game.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	game.Status = domain.GameStatus(status)
	return &game, nil
}
