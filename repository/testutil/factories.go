package testutil

import (
	"time"

	"betsim/models"

	"github.com/google/uuid"
)

// CreateTestLedger creates a playing ledger with the given balance
func CreateTestLedger(playerID string, balance float64) *models.Ledger {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &models.Ledger{
		PlayerID:  playerID,
		Balance:   balance,
		State:     models.LedgerStatePlaying,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// CreateTestBetRecord creates a settled coin flip record
func CreateTestBetRecord(amount float64, won bool, balanceAfter float64, at time.Time) *models.BetRecord {
	record := &models.BetRecord{
		ID:             uuid.NewString(),
		EventID:        "coin-flip",
		EventName:      "Coin Flip",
		BetAmount:      amount,
		BalanceAfter:   balanceAfter,
		RiskPercentage: 22,
		Timestamp:      at.UTC().Truncate(time.Microsecond),
	}
	if won {
		record.Outcome = models.OutcomeWin
	} else {
		record.Outcome = models.OutcomeLoss
	}
	record.SettlementAmount = amount
	return record
}

// CreateTestGoal creates an active goal
func CreateTestGoal(id string, goalType models.GoalType, target float64) *models.Goal {
	return &models.Goal{
		ID:          id,
		Title:       "Test goal " + id,
		Type:        goalType,
		TargetValue: target,
		IsActive:    true,
		UpdatedAt:   time.Now().UTC().Truncate(time.Microsecond),
	}
}
