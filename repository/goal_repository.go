package repository

import (
	"context"
	"fmt"

	"betsim/database"
	"betsim/models"

	"github.com/jackc/pgx/v5"
)

// GoalRepository implements the GoalRepository interface
type GoalRepository struct {
	q queryable
}

// NewGoalRepository creates a new goal repository
func NewGoalRepository(db *database.DB) *GoalRepository {
	return &GoalRepository{q: db.Pool}
}

// newGoalRepositoryWithTx creates a new goal repository with a transaction
func newGoalRepositoryWithTx(tx queryable) *GoalRepository {
	return &GoalRepository{q: tx}
}

// GetAll returns the player's goals ordered by ID
func (r *GoalRepository) GetAll(ctx context.Context, playerID string) ([]*models.Goal, error) {
	query := `
		SELECT id, title, type, target_value, current_value, is_active, updated_at
		FROM goals
		WHERE player_id = $1
		ORDER BY id
	`

	rows, err := r.q.Query(ctx, query, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query goals for player %s: %w", playerID, err)
	}

	goals, err := pgx.CollectRows(rows, pgx.RowToAddrOfStructByName[models.Goal])
	if err != nil {
		return nil, fmt.Errorf("failed to scan goals for player %s: %w", playerID, err)
	}

	return goals, nil
}

// Upsert creates or replaces a goal
func (r *GoalRepository) Upsert(ctx context.Context, playerID string, goal *models.Goal) error {
	query := `
		INSERT INTO goals (player_id, id, title, type, target_value, current_value, is_active, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (player_id, id) DO UPDATE SET
			title = EXCLUDED.title,
			type = EXCLUDED.type,
			target_value = EXCLUDED.target_value,
			current_value = EXCLUDED.current_value,
			is_active = EXCLUDED.is_active,
			updated_at = EXCLUDED.updated_at
	`

	_, err := r.q.Exec(ctx, query,
		playerID,
		goal.ID,
		goal.Title,
		goal.Type,
		goal.TargetValue,
		goal.CurrentValue,
		goal.IsActive,
		goal.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert goal %s for player %s: %w", goal.ID, playerID, err)
	}

	return nil
}
