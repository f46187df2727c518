package repository

import (
	"context"
	"errors"
	"fmt"

	"betsim/database"
	"betsim/models"
	"betsim/service"

	"github.com/jackc/pgx/v5"
)

// LedgerRepository implements the LedgerRepository interface
type LedgerRepository struct {
	q queryable
}

// NewLedgerRepository creates a new ledger repository
func NewLedgerRepository(db *database.DB) *LedgerRepository {
	return &LedgerRepository{q: db.Pool}
}

// newLedgerRepositoryWithTx creates a new ledger repository with a transaction
func newLedgerRepositoryWithTx(tx queryable) *LedgerRepository {
	return &LedgerRepository{q: tx}
}

// Get retrieves the ledger for a player, locking the row for the transaction
func (r *LedgerRepository) Get(ctx context.Context, playerID string) (*models.Ledger, error) {
	query := `
		SELECT player_id, balance, state, created_at, updated_at
		FROM ledgers
		WHERE player_id = $1
		FOR UPDATE
	`

	var ledger models.Ledger
	err := r.q.QueryRow(ctx, query, playerID).Scan(
		&ledger.PlayerID,
		&ledger.Balance,
		&ledger.State,
		&ledger.CreatedAt,
		&ledger.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get ledger for player %s: %w", playerID, err)
	}

	return &ledger, nil
}

// Create stores a new ledger
func (r *LedgerRepository) Create(ctx context.Context, ledger *models.Ledger) error {
	query := `
		INSERT INTO ledgers (player_id, balance, state, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.q.Exec(ctx, query,
		ledger.PlayerID,
		ledger.Balance,
		ledger.State,
		ledger.CreatedAt,
		ledger.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create ledger for player %s: %w", ledger.PlayerID, err)
	}

	return nil
}

// Update persists balance and state changes
func (r *LedgerRepository) Update(ctx context.Context, ledger *models.Ledger) error {
	query := `
		UPDATE ledgers
		SET balance = $1, state = $2, updated_at = $3
		WHERE player_id = $4
	`

	result, err := r.q.Exec(ctx, query, ledger.Balance, ledger.State, ledger.UpdatedAt, ledger.PlayerID)
	if err != nil {
		return fmt.Errorf("failed to update ledger for player %s: %w", ledger.PlayerID, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("player %s: %w", ledger.PlayerID, service.ErrLedgerNotFound)
	}

	return nil
}
