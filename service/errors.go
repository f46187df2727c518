package service

import (
	"errors"
	"fmt"

	"betsim/models"
)

// ErrWagerRejected matches every validation failure returned by PlaceWager
var ErrWagerRejected = errors.New("wager rejected")

// ErrLedgerNotFound is returned when a ledger vanished between reads
var ErrLedgerNotFound = errors.New("ledger not found")

// ErrGoalNotFound is returned when updating a goal that does not exist
var ErrGoalNotFound = errors.New("goal not found")

// GameOverError is returned once the ledger reached a terminal state
type GameOverError struct {
	State   models.LedgerState
	Balance float64
}

func (e *GameOverError) Error() string {
	return fmt.Sprintf("game over: ledger is %s with balance %.2f, reset to continue", e.State, e.Balance)
}

func (e *GameOverError) Is(target error) bool { return target == ErrWagerRejected }

// UnknownEventError is returned for an event ID missing from the catalog
type UnknownEventError struct {
	EventID string
}

func (e *UnknownEventError) Error() string {
	return fmt.Sprintf("unknown betting event %q", e.EventID)
}

func (e *UnknownEventError) Is(target error) bool { return target == ErrWagerRejected }

// BetLimitError is returned when the amount falls outside the event's bounds
type BetLimitError struct {
	EventID string
	Amount  float64
	Bound   string // "minBet" or "maxBet"
	Limit   float64
}

func (e *BetLimitError) Error() string {
	if e.Bound == "maxBet" {
		return fmt.Sprintf("bet of %.2f on %s exceeds %s=%g", e.Amount, e.EventID, e.Bound, e.Limit)
	}
	return fmt.Sprintf("bet of %.2f on %s is below %s=%g", e.Amount, e.EventID, e.Bound, e.Limit)
}

func (e *BetLimitError) Is(target error) bool { return target == ErrWagerRejected }

// InsufficientBalanceError is returned when the amount exceeds the balance
type InsufficientBalanceError struct {
	Amount  float64
	Balance float64
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient balance: have %.2f, need %.2f", e.Balance, e.Amount)
}

func (e *InsufficientBalanceError) Is(target error) bool { return target == ErrWagerRejected }

// PersonaLimitError is returned when the amount exceeds the active persona's cap
type PersonaLimitError struct {
	Persona        string
	MaxBetFraction float64
	Cap            float64
	Amount         float64
	RiskPercentage int
}

func (e *PersonaLimitError) Error() string {
	return fmt.Sprintf("bet of %.2f exceeds the %s persona cap of %.0f%% of balance (max %g) at risk %d%%",
		e.Amount, e.Persona, e.MaxBetFraction*100, e.Cap, e.RiskPercentage)
}

func (e *PersonaLimitError) Is(target error) bool { return target == ErrWagerRejected }

// rejectionReason names a rejection for logs and events
func rejectionReason(err error) string {
	var (
		gameOver     *GameOverError
		unknown      *UnknownEventError
		limit        *BetLimitError
		insufficient *InsufficientBalanceError
		persona      *PersonaLimitError
	)
	switch {
	case errors.As(err, &gameOver):
		return "game_over"
	case errors.As(err, &unknown):
		return "unknown_event"
	case errors.As(err, &limit):
		return "bet_limit"
	case errors.As(err, &insufficient):
		return "insufficient_balance"
	case errors.As(err, &persona):
		return "persona_limit"
	default:
		return "other"
	}
}
