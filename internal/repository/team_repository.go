package repository

import (
	"context"
	"errors"
	"fmt"

	"borderland-arena/internal/domain"
	"borderland-arena/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const teamColumns = `id, game_id, name, total_score, is_disqualified, ban_count, created_at`

type TeamPostgresRepository struct {
	db *database.PostgresDB
}

func NewTeamRepository(db *database.PostgresDB) *TeamPostgresRepository {
	return &TeamPostgresRepository{db: db}
}

// Create registers a team and its members in one transaction.
// The insert only happens while the game is waiting or between rounds.
func (r *TeamPostgresRepository) Create(ctx context.Context, team *domain.Team) error {
	return r.db.WithTx(ctx, func(tx pgx.Tx) error {
		query := `
			INSERT INTO teams (id, game_id, name)
			SELECT $1::uuid, $2::uuid, $3::varchar
			WHERE EXISTS (
				SELECT 1 FROM games WHERE id = $2 AND status IN ('waiting', 'between_rounds')
			)
			RETURNING total_score, is_disqualified, ban_count, created_at
		`

		err := tx.QueryRow(ctx, query, team.ID, team.GameID, team.Name).Scan(
			&team.TotalScore,
			&team.IsDisqualified,
			&team.BanCount,
			&team.CreatedAt,
		)
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrRegistrationClosed
		}
		if database.IsUniqueViolation(err, "teams_game_name_key") {
			return ErrTeamNameTaken
		}
		if err != nil {
			return fmt.Errorf("failed to create team: %w", err)
		}

		batch := &pgx.Batch{}
		for i := range team.Members {
			m := &team.Members[i]
			if m.ID == "" {
				m.ID = uuid.NewString()
			}
			m.TeamID = team.ID
			batch.Queue(`INSERT INTO members (id, team_id, name, position) VALUES ($1, $2, $3, $4)`,
				m.ID, m.TeamID, m.Name, i)
		}

		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("failed to create members: %w", err)
		}
		return nil
	})
}

// GetByID gets a team with its members
func (r *TeamPostgresRepository) GetByID(ctx context.Context, id string) (*domain.Team, error) {
	query := `SELECT ` + teamColumns + ` FROM teams WHERE id = $1`
	team, err := scanTeam(r.db.Pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get team: %w", err)
	}
	if team == nil {
		return nil, nil
	}

	members, err := r.listMembers(ctx, `WHERE m.team_id = $1`, id)
	if err != nil {
		return nil, err
	}
	team.Members = members[id]
	return team, nil
}

// ListByGame lists the teams of a game in registration order
func (r *TeamPostgresRepository) ListByGame(ctx context.Context, gameID string) ([]domain.Team, error) {
	query := `SELECT ` + teamColumns + ` FROM teams WHERE game_id = $1 ORDER BY created_at, id`

	rows, err := r.db.Pool.Query(ctx, query, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	defer rows.Close()

	var teams []domain.Team
	for rows.Next() {
		team, err := scanTeam(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan team: %w", err)
		}
		teams = append(teams, *team)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}

	members, err := r.listMembers(ctx, `JOIN teams t ON t.id = m.team_id WHERE t.game_id = $1`, gameID)
	if err != nil {
		return nil, err
	}
	for i := range teams {
		teams[i].Members = members[teams[i].ID]
	}
	return teams, nil
}

// Strike disqualifies a team; one strike is enough
func (r *TeamPostgresRepository) Strike(ctx context.Context, teamID string) (*domain.Team, error) {
	query := `
		UPDATE teams SET ban_count = ban_count + 1, is_disqualified = TRUE
		WHERE id = $1
		RETURNING ` + teamColumns
	team, err := scanTeam(r.db.Pool.QueryRow(ctx, query, teamID))
	if err != nil {
		return nil, fmt.Errorf("failed to strike team: %w", err)
	}
	return team, nil
}

// Clear reinstates a disqualified team
func (r *TeamPostgresRepository) Clear(ctx context.Context, teamID string) (*domain.Team, error) {
	query := `
		UPDATE teams SET is_disqualified = FALSE
		WHERE id = $1
		RETURNING ` + teamColumns
	team, err := scanTeam(r.db.Pool.QueryRow(ctx, query, teamID))
	if err != nil {
		return nil, fmt.Errorf("failed to clear team: %w", err)
	}
	return team, nil
}

// EliminateMember records the elimination and flags the member in one transaction
func (r *TeamPostgresRepository) EliminateMember(ctx context.Context, gameID, memberID string, round int) (*domain.Member, *domain.Elimination, error) {
	var member domain.Member
	elim := domain.Elimination{
		ID:          uuid.NewString(),
		GameID:      gameID,
		MemberID:    memberID,
		RoundNumber: round,
	}

	err := r.db.WithTx(ctx, func(tx pgx.Tx) error {
		query := `
			UPDATE members m SET is_eliminated = TRUE, eliminated_round = $3
			FROM teams t
			WHERE m.id = $1 AND t.id = m.team_id AND t.game_id = $2
			RETURNING m.id, m.team_id, m.name, m.is_eliminated, m.eliminated_round
		`
		err := tx.QueryRow(ctx, query, memberID, gameID, round).Scan(
			&member.ID,
			&member.TeamID,
			&member.Name,
			&member.IsEliminated,
			&member.EliminatedRound,
		)
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrMemberNotInGame
		}
		if err != nil {
			return fmt.Errorf("failed to eliminate member: %w", err)
		}

		err = tx.QueryRow(ctx, `
			INSERT INTO eliminations (id, game_id, member_id, round_number)
			VALUES ($1, $2, $3, $4)
			RETURNING created_at
		`, elim.ID, gameID, memberID, round).Scan(&elim.CreatedAt)
		if database.IsUniqueViolation(err, "eliminations_game_member_key") {
			return ErrAlreadyEliminated
		}
		if err != nil {
			return fmt.Errorf("failed to record elimination: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	return &member, &elim, nil
}

// ListEliminations lists eliminations of a game
func (r *TeamPostgresRepository) ListEliminations(ctx context.Context, gameID string) ([]domain.Elimination, error) {
	query := `
		SELECT id, game_id, member_id, round_number, created_at
		FROM eliminations
		WHERE game_id = $1
		ORDER BY round_number, created_at
	`

	rows, err := r.db.Pool.Query(ctx, query, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to list eliminations: %w", err)
	}
	defer rows.Close()

	var result []domain.Elimination
	for rows.Next() {
		var e domain.Elimination
		if err := rows.Scan(&e.ID, &e.GameID, &e.MemberID, &e.RoundNumber, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan elimination: %w", err)
		}
		result = append(result, e)
	}

	return result, rows.Err()
}

// listMembers loads members grouped by team id, in registration order
func (r *TeamPostgresRepository) listMembers(ctx context.Context, where string, arg string) (map[string][]domain.Member, error) {
	query := `
		SELECT m.id, m.team_id, m.name, m.is_eliminated, m.eliminated_round
		FROM members m ` + where + `
		ORDER BY m.team_id, m.position`

	rows, err := r.db.Pool.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	defer rows.Close()

	result := make(map[string][]domain.Member)
	for rows.Next() {
		var m domain.Member
		if err := rows.Scan(&m.ID, &m.TeamID, &m.Name, &m.IsEliminated, &m.EliminatedRound); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		result[m.TeamID] = append(result[m.TeamID], m)
	}

	return result, rows.Err()
}

func scanTeam(row pgx.Row) (*domain.Team, error) {
	var team domain.Team
	err := row.Scan(
		&team.ID,
		&team.GameID,
		&team.Name,
		&team.TotalScore,
		&team.IsDisqualified,
		&team.BanCount,
		&team.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &team, nil
}
