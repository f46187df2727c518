package models

import (
	"time"
)

// LedgerState is the lifecycle state of a ledger
type LedgerState string

const (
	LedgerStatePlaying LedgerState = "playing"
	LedgerStateWon     LedgerState = "won"
	LedgerStateLost    LedgerState = "lost"
)

// IsTerminal reports whether no further wagers are accepted
func (s LedgerState) IsTerminal() bool {
	return s == LedgerStateWon || s == LedgerStateLost
}

// Ledger holds the player's balance and game state
type Ledger struct {
	PlayerID  string      `db:"player_id"`
	Balance   float64     `db:"balance"`
	State     LedgerState `db:"state"`
	CreatedAt time.Time   `db:"created_at"`
	UpdatedAt time.Time   `db:"updated_at"`
}

// LedgerSnapshot is a read-only copy of the ledger together with its history
type LedgerSnapshot struct {
	Ledger  Ledger
	History []*BetRecord
}

// StateForBalance derives the ledger state from balance thresholds
func StateForBalance(balance, winningBalance float64) LedgerState {
	switch {
	case balance <= 0:
		return LedgerStateLost
	case balance >= winningBalance:
		return LedgerStateWon
	default:
		return LedgerStatePlaying
	}
}
