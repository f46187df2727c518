package models

import "time"

// Outcome is the result of a settled bet
type Outcome string

const (
	OutcomeWin  Outcome = "win"
	OutcomeLoss Outcome = "loss"
)

// BetRecord is an immutable settled bet in the ledger history
type BetRecord struct {
	ID               string    `db:"id"`
	EventID          string    `db:"event_id"`
	EventName        string    `db:"event_name"`
	BetAmount        float64   `db:"bet_amount"`
	Outcome          Outcome   `db:"outcome"`
	SettlementAmount float64   `db:"settlement_amount"` // net win, or the lost stake
	BalanceAfter     float64   `db:"balance_after"`
	RiskPercentage   int       `db:"risk_percentage"`
	Timestamp        time.Time `db:"created_at"`
}

// IsWin reports whether the bet was won
func (b *BetRecord) IsWin() bool {
	return b.Outcome == OutcomeWin
}

// NetChange returns the signed balance change caused by the bet
func (b *BetRecord) NetChange() float64 {
	if b.IsWin() {
		return b.SettlementAmount
	}
	return -b.SettlementAmount
}

// BalanceBefore reconstructs the balance immediately before the bet.
// Balances are floored at zero so a loss never removes more than was held.
func (b *BetRecord) BalanceBefore() float64 {
	return b.BalanceAfter - b.NetChange()
}

// WagerPreview describes a candidate wager without settling it
type WagerPreview struct {
	EventID        string
	BetAmount      float64
	Balance        float64
	RiskPercentage int
	Persona        Persona
	PersonaMaxBet  float64
	PotentialWin   float64
}
