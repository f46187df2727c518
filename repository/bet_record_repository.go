package repository

import (
	"context"
	"fmt"

	"betsim/database"
	"betsim/models"

	"github.com/jackc/pgx/v5"
)

// BetRecordRepository implements the BetRecordRepository interface
type BetRecordRepository struct {
	q queryable
}

// NewBetRecordRepository creates a new bet record repository
func NewBetRecordRepository(db *database.DB) *BetRecordRepository {
	return &BetRecordRepository{q: db.Pool}
}

// newBetRecordRepositoryWithTx creates a new bet record repository with a transaction
func newBetRecordRepositoryWithTx(tx queryable) *BetRecordRepository {
	return &BetRecordRepository{q: tx}
}

// Append adds a settled bet to the end of the player's history
func (r *BetRecordRepository) Append(ctx context.Context, playerID string, record *models.BetRecord) error {
	query := `
		INSERT INTO bet_records (
			id, player_id, event_id, event_name, bet_amount, outcome,
			settlement_amount, balance_after, risk_percentage, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.q.Exec(ctx, query,
		record.ID,
		playerID,
		record.EventID,
		record.EventName,
		record.BetAmount,
		record.Outcome,
		record.SettlementAmount,
		record.BalanceAfter,
		record.RiskPercentage,
		record.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to append bet record %s: %w", record.ID, err)
	}

	return nil
}

// GetByPlayer returns the player's history in insertion order
func (r *BetRecordRepository) GetByPlayer(ctx context.Context, playerID string) ([]*models.BetRecord, error) {
	query := `
		SELECT id, event_id, event_name, bet_amount, outcome,
		       settlement_amount, balance_after, risk_percentage, created_at
		FROM bet_records
		WHERE player_id = $1
		ORDER BY seq
	`

	rows, err := r.q.Query(ctx, query, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query bet records for player %s: %w", playerID, err)
	}

	records, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*models.BetRecord, error) {
		var record models.BetRecord
		err := row.Scan(
			&record.ID,
			&record.EventID,
			&record.EventName,
			&record.BetAmount,
			&record.Outcome,
			&record.SettlementAmount,
			&record.BalanceAfter,
			&record.RiskPercentage,
			&record.Timestamp,
		)
		return &record, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan bet records for player %s: %w", playerID, err)
	}

	return records, nil
}

// DeleteByPlayer clears the player's history
func (r *BetRecordRepository) DeleteByPlayer(ctx context.Context, playerID string) (int64, error) {
	result, err := r.q.Exec(ctx, `DELETE FROM bet_records WHERE player_id = $1`, playerID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete bet records for player %s: %w", playerID, err)
	}
	return result.RowsAffected(), nil
}
