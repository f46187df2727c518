package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"betsim/analytics"
	"betsim/config"
	"betsim/events"
	"betsim/models"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

type wagerService struct {
	uowFactory UnitOfWorkFactory
	catalog    *models.EventCatalog
	personas   []models.Persona
	rng        analytics.RandomSource

	playerID        string
	startingBalance float64
	winningBalance  float64

	now   func() time.Time
	newID func() string

	// one ledger, mutated serially
	mu sync.Mutex
}

// WagerOption customizes a wager service
type WagerOption func(*wagerService)

// WithClock replaces the wall clock used for bet timestamps
func WithClock(now func() time.Time) WagerOption {
	return func(s *wagerService) { s.now = now }
}

// WithPersonas replaces the persona catalog
func WithPersonas(personas []models.Persona) WagerOption {
	return func(s *wagerService) { s.personas = personas }
}

// NewWagerService creates a new wager service for the configured player
func NewWagerService(uowFactory UnitOfWorkFactory, catalog *models.EventCatalog, rng analytics.RandomSource, opts ...WagerOption) WagerService {
	cfg := config.Get()
	s := &wagerService{
		uowFactory:      uowFactory,
		catalog:         catalog,
		personas:        models.DefaultPersonas(),
		rng:             rng,
		playerID:        cfg.PlayerID,
		startingBalance: cfg.StartingBalance,
		winningBalance:  cfg.WinningBalance,
		now:             time.Now,
		newID:           uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *wagerService) Events() []models.BettingEvent {
	return s.catalog.All()
}

func (s *wagerService) ScoreRisk(ctx context.Context, eventID string, amount float64) (int, error) {
	preview, err := s.PreviewWager(ctx, eventID, amount)
	if err != nil {
		return 0, err
	}
	return preview.RiskPercentage, nil
}

func (s *wagerService) PreviewWager(ctx context.Context, eventID string, amount float64) (*models.WagerPreview, error) {
	event, ok := s.catalog.Get(eventID)
	if !ok {
		return nil, &UnknownEventError{EventID: eventID}
	}

	snapshot, err := s.GetLedger(ctx)
	if err != nil {
		return nil, err
	}
	balance := snapshot.Ledger.Balance

	risk := analytics.ScoreRisk(event.WinProbability, balance, amount)
	persona := analytics.ClassifyPersona(s.personas, risk)

	return &models.WagerPreview{
		EventID:        eventID,
		BetAmount:      amount,
		Balance:        balance,
		RiskPercentage: risk,
		Persona:        persona,
		PersonaMaxBet:  analytics.MaxBet(balance, persona),
		PotentialWin:   event.NetWin(math.Max(amount, 0)),
	}, nil
}

func (s *wagerService) PlaceWager(ctx context.Context, eventID string, amount float64) (*models.BetRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	ledger, err := s.getOrCreateLedger(ctx, uow)
	if err != nil {
		return nil, err
	}

	event, risk, persona, err := s.validate(ledger, eventID, amount)
	if err != nil {
		return nil, s.reject(uow, eventID, amount, err)
	}

	before := ledger.Balance
	won := s.rng.Float64() < event.WinProbability

	record := &models.BetRecord{
		ID:             s.newID(),
		EventID:        event.ID,
		EventName:      event.Name,
		BetAmount:      amount,
		RiskPercentage: risk,
		Timestamp:      s.timestamp(ledger),
	}
	if won {
		record.Outcome = models.OutcomeWin
		record.SettlementAmount = event.NetWin(amount)
	} else {
		record.Outcome = models.OutcomeLoss
		record.SettlementAmount = amount
	}
	record.BalanceAfter = math.Max(before+record.NetChange(), 0)

	ledger.Balance = record.BalanceAfter
	ledger.State = models.StateForBalance(ledger.Balance, s.winningBalance)
	ledger.UpdatedAt = record.Timestamp

	if err := uow.LedgerRepository().Update(ctx, ledger); err != nil {
		return nil, fmt.Errorf("failed to update ledger: %w", err)
	}
	if err := uow.BetRecordRepository().Append(ctx, s.playerID, record); err != nil {
		return nil, fmt.Errorf("failed to append bet record: %w", err)
	}

	uow.EventBus().Publish(events.BetSettledEvent{
		PlayerID:       s.playerID,
		BetID:          record.ID,
		EventID:        record.EventID,
		Amount:         amount,
		Won:            won,
		Settlement:     record.SettlementAmount,
		BalanceBefore:  before,
		BalanceAfter:   record.BalanceAfter,
		RiskPercentage: risk,
		Persona:        persona.ID,
	})
	if ledger.State.IsTerminal() {
		uow.EventBus().Publish(events.GameOverEvent{
			PlayerID: s.playerID,
			State:    ledger.State,
			Balance:  ledger.Balance,
		})
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"playerID": s.playerID,
		"betID":    record.ID,
		"eventID":  record.EventID,
		"amount":   amount,
		"outcome":  record.Outcome,
		"balance":  record.BalanceAfter,
		"risk":     risk,
		"persona":  persona.ID,
		"state":    ledger.State,
	}).Info("Wager settled")

	return record, nil
}

// validate applies the wager checks in order and returns the first failure
func (s *wagerService) validate(ledger *models.Ledger, eventID string, amount float64) (models.BettingEvent, int, models.Persona, error) {
	if ledger.State.IsTerminal() {
		return models.BettingEvent{}, 0, models.Persona{}, &GameOverError{State: ledger.State, Balance: ledger.Balance}
	}

	event, ok := s.catalog.Get(eventID)
	if !ok {
		return models.BettingEvent{}, 0, models.Persona{}, &UnknownEventError{EventID: eventID}
	}

	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount <= 0 || amount < event.MinBet {
		return event, 0, models.Persona{}, &BetLimitError{EventID: eventID, Amount: amount, Bound: "minBet", Limit: event.MinBet}
	}
	if event.HasMaxBet() && amount > event.MaxBet {
		return event, 0, models.Persona{}, &BetLimitError{EventID: eventID, Amount: amount, Bound: "maxBet", Limit: event.MaxBet}
	}

	if amount > ledger.Balance {
		return event, 0, models.Persona{}, &InsufficientBalanceError{Amount: amount, Balance: ledger.Balance}
	}

	risk := analytics.ScoreRisk(event.WinProbability, ledger.Balance, amount)
	persona := analytics.ClassifyPersona(s.personas, risk)
	if limit := analytics.MaxBet(ledger.Balance, persona); amount > limit {
		return event, risk, persona, &PersonaLimitError{
			Persona:        persona.Name,
			MaxBetFraction: persona.MaxBetFraction,
			Cap:            limit,
			Amount:         amount,
			RiskPercentage: risk,
		}
	}

	return event, risk, persona, nil
}

// reject records a validation failure. Nothing was written, so committing
// only delivers the rejection event.
func (s *wagerService) reject(uow UnitOfWork, eventID string, amount float64, cause error) error {
	reason := rejectionReason(cause)
	uow.EventBus().Publish(events.WagerRejectedEvent{
		PlayerID: s.playerID,
		EventID:  eventID,
		Amount:   amount,
		Reason:   reason,
	})
	if err := uow.Commit(); err != nil {
		log.WithError(err).Error("Failed to publish wager rejection")
	}

	log.WithFields(log.Fields{
		"playerID": s.playerID,
		"eventID":  eventID,
		"amount":   amount,
		"reason":   reason,
	}).Warn("Wager rejected")
	return cause
}

// timestamp never goes backwards relative to the last settled bet
func (s *wagerService) timestamp(ledger *models.Ledger) time.Time {
	now := s.now()
	if now.Before(ledger.UpdatedAt) {
		return ledger.UpdatedAt
	}
	return now
}

func (s *wagerService) ResetLedger(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	ledger, err := s.getOrCreateLedger(ctx, uow)
	if err != nil {
		return err
	}

	removed, err := uow.BetRecordRepository().DeleteByPlayer(ctx, s.playerID)
	if err != nil {
		return fmt.Errorf("failed to clear bet history: %w", err)
	}

	ledger.Balance = s.startingBalance
	ledger.State = models.LedgerStatePlaying
	ledger.UpdatedAt = s.now()
	if err := uow.LedgerRepository().Update(ctx, ledger); err != nil {
		return fmt.Errorf("failed to reset ledger: %w", err)
	}

	uow.EventBus().Publish(events.LedgerResetEvent{
		PlayerID: s.playerID,
		Balance:  ledger.Balance,
	})

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"playerID":       s.playerID,
		"balance":        ledger.Balance,
		"removedRecords": removed,
	}).Info("Ledger reset")
	return nil
}

func (s *wagerService) GetLedger(ctx context.Context) (*models.LedgerSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	ledger, err := s.getOrCreateLedger(ctx, uow)
	if err != nil {
		return nil, err
	}

	history, err := uow.BetRecordRepository().GetByPlayer(ctx, s.playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get bet history: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &models.LedgerSnapshot{Ledger: *ledger, History: history}, nil
}

// getOrCreateLedger loads the player's ledger, opening a fresh one on first use
func (s *wagerService) getOrCreateLedger(ctx context.Context, uow UnitOfWork) (*models.Ledger, error) {
	ledger, err := uow.LedgerRepository().Get(ctx, s.playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get ledger: %w", err)
	}
	if ledger != nil {
		return ledger, nil
	}

	now := s.now()
	ledger = &models.Ledger{
		PlayerID:  s.playerID,
		Balance:   s.startingBalance,
		State:     models.LedgerStatePlaying,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uow.LedgerRepository().Create(ctx, ledger); err != nil {
		return nil, fmt.Errorf("failed to create ledger: %w", err)
	}

	log.WithFields(log.Fields{
		"playerID": s.playerID,
		"balance":  ledger.Balance,
	}).Info("Opened new ledger")
	return ledger, nil
}

// IsRejection reports whether err is a wager validation failure rather than
// an infrastructure error
func IsRejection(err error) bool {
	return errors.Is(err, ErrWagerRejected)
}
