package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"betsim/config"
	"betsim/events"
	"betsim/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// fixedDraw always returns the same value
type fixedDraw float64

func (f fixedDraw) Float64() float64 { return float64(f) }

type wagerMocks struct {
	factory   *MockUnitOfWorkFactory
	uow       *MockUnitOfWork
	ledgers   *MockLedgerRepository
	bets      *MockBetRecordRepository
	goals     *MockGoalRepository
	publisher *MockEventPublisher
}

func newWagerMocks() *wagerMocks {
	m := &wagerMocks{
		factory:   new(MockUnitOfWorkFactory),
		uow:       new(MockUnitOfWork),
		ledgers:   new(MockLedgerRepository),
		bets:      new(MockBetRecordRepository),
		goals:     new(MockGoalRepository),
		publisher: new(MockEventPublisher),
	}
	m.uow.SetRepositories(m.ledgers, m.bets, m.goals, m.publisher)
	m.factory.On("Create").Return(m.uow)
	return m
}

func (m *wagerMocks) assertExpectations(t *testing.T) {
	m.factory.AssertExpectations(t)
	m.uow.AssertExpectations(t)
	m.ledgers.AssertExpectations(t)
	m.bets.AssertExpectations(t)
	m.publisher.AssertExpectations(t)
}

func setTestConfig(t *testing.T) {
	t.Helper()
	config.SetTestConfig(config.NewTestConfig())
	t.Cleanup(config.ResetConfig)
}

func playingLedger(balance float64) *models.Ledger {
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	return &models.Ledger{
		PlayerID:  "test-player",
		Balance:   balance,
		State:     models.LedgerStatePlaying,
		CreatedAt: at,
		UpdatedAt: at,
	}
}

func TestWagerService_PlaceWager_Win(t *testing.T) {
	setTestConfig(t)
	ctx := context.Background()
	m := newWagerMocks()

	now := time.Date(2024, 3, 1, 13, 0, 0, 0, time.UTC)
	svc := NewWagerService(m.factory, models.NewEventCatalog(models.DefaultEvents()), fixedDraw(0.1), WithClock(func() time.Time { return now }))
	svc.(*wagerService).newID = func() string { return "bet-1" }

	m.uow.On("Begin", ctx).Return(nil)
	m.uow.On("Commit").Return(nil)
	m.uow.On("Rollback").Return(nil)

	m.ledgers.On("Get", ctx, "test-player").Return(playingLedger(1000), nil)
	m.ledgers.On("Update", ctx, mock.MatchedBy(func(l *models.Ledger) bool {
		return l.Balance == 1100 && l.State == models.LedgerStatePlaying && l.UpdatedAt.Equal(now)
	})).Return(nil)
	m.bets.On("Append", ctx, "test-player", mock.MatchedBy(func(r *models.BetRecord) bool {
		return r.ID == "bet-1" &&
			r.EventID == "coin-flip" &&
			r.Outcome == models.OutcomeWin &&
			r.SettlementAmount == 100 &&
			r.BalanceAfter == 1100 &&
			r.RiskPercentage == 22
	})).Return(nil)
	m.publisher.On("Publish", mock.MatchedBy(func(e events.Event) bool {
		settled, ok := e.(events.BetSettledEvent)
		return ok && settled.Won && settled.BalanceBefore == 1000 && settled.BalanceAfter == 1100 && settled.Persona == models.PersonaConservative
	})).Return()

	record, err := svc.PlaceWager(ctx, "coin-flip", 100)

	require.NoError(t, err)
	assert.Equal(t, 1100.0, record.BalanceAfter)
	assert.Equal(t, now, record.Timestamp)
	m.assertExpectations(t)
}

func TestWagerService_PlaceWager_LossReachesLost(t *testing.T) {
	setTestConfig(t)
	ctx := context.Background()
	m := newWagerMocks()

	svc := NewWagerService(m.factory, models.NewEventCatalog(models.DefaultEvents()), fixedDraw(0.9))

	m.uow.On("Begin", ctx).Return(nil)
	m.uow.On("Commit").Return(nil)
	m.uow.On("Rollback").Return(nil)

	m.ledgers.On("Get", ctx, "test-player").Return(playingLedger(1000), nil)
	m.ledgers.On("Update", ctx, mock.MatchedBy(func(l *models.Ledger) bool {
		return l.Balance == 0 && l.State == models.LedgerStateLost
	})).Return(nil)
	m.bets.On("Append", ctx, "test-player", mock.AnythingOfType("*models.BetRecord")).Return(nil)
	m.publisher.On("Publish", mock.AnythingOfType("events.BetSettledEvent")).Return()
	m.publisher.On("Publish", events.GameOverEvent{PlayerID: "test-player", State: models.LedgerStateLost, Balance: 0}).Return()

	record, err := svc.PlaceWager(ctx, "coin-flip", 1000)

	require.NoError(t, err)
	assert.Equal(t, models.OutcomeLoss, record.Outcome)
	assert.Equal(t, 1000.0, record.SettlementAmount)
	assert.Zero(t, record.BalanceAfter)
	m.assertExpectations(t)
}

func TestWagerService_PlaceWager_AppendFailureRollsBack(t *testing.T) {
	setTestConfig(t)
	ctx := context.Background()
	m := newWagerMocks()

	svc := NewWagerService(m.factory, models.NewEventCatalog(models.DefaultEvents()), fixedDraw(0.1))

	m.uow.On("Begin", ctx).Return(nil)
	m.uow.On("Rollback").Return(nil)
	m.ledgers.On("Get", ctx, "test-player").Return(playingLedger(1000), nil)
	m.ledgers.On("Update", ctx, mock.Anything).Return(nil)
	m.bets.On("Append", ctx, "test-player", mock.Anything).Return(errors.New("disk full"))

	record, err := svc.PlaceWager(ctx, "coin-flip", 100)

	assert.Nil(t, record)
	assert.ErrorContains(t, err, "failed to append bet record")
	assert.False(t, IsRejection(err))
	m.uow.AssertNotCalled(t, "Commit")
	m.publisher.AssertNotCalled(t, "Publish", mock.Anything)
	m.assertExpectations(t)
}

func TestWagerService_PlaceWager_RejectionPublishesEvent(t *testing.T) {
	setTestConfig(t)
	ctx := context.Background()
	m := newWagerMocks()

	svc := NewWagerService(m.factory, models.NewEventCatalog(models.DefaultEvents()), fixedDraw(0.1))

	m.uow.On("Begin", ctx).Return(nil)
	m.uow.On("Commit").Return(nil)
	m.uow.On("Rollback").Return(nil)
	m.ledgers.On("Get", ctx, "test-player").Return(playingLedger(1000), nil)
	m.publisher.On("Publish", events.WagerRejectedEvent{
		PlayerID: "test-player",
		EventID:  "roulette",
		Amount:   50,
		Reason:   "bet_limit",
	}).Return()

	record, err := svc.PlaceWager(ctx, "roulette", 50)

	assert.Nil(t, record)
	var limitErr *BetLimitError
	require.ErrorAs(t, err, &limitErr)
	assert.Equal(t, "minBet", limitErr.Bound)
	m.ledgers.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	m.bets.AssertNotCalled(t, "Append", mock.Anything, mock.Anything, mock.Anything)
	m.assertExpectations(t)
}

func TestWagerService_PlaceWager_CreatesLedgerOnFirstUse(t *testing.T) {
	setTestConfig(t)
	ctx := context.Background()
	m := newWagerMocks()

	svc := NewWagerService(m.factory, models.NewEventCatalog(models.DefaultEvents()), fixedDraw(0.9))

	m.uow.On("Begin", ctx).Return(nil)
	m.uow.On("Commit").Return(nil)
	m.uow.On("Rollback").Return(nil)
	m.ledgers.On("Get", ctx, "test-player").Return(nil, nil)
	m.ledgers.On("Create", ctx, mock.MatchedBy(func(l *models.Ledger) bool {
		return l.PlayerID == "test-player" && l.Balance == 1000 && l.State == models.LedgerStatePlaying
	})).Return(nil)
	m.ledgers.On("Update", ctx, mock.Anything).Return(nil)
	m.bets.On("Append", ctx, "test-player", mock.Anything).Return(nil)
	m.publisher.On("Publish", mock.Anything).Return()

	record, err := svc.PlaceWager(ctx, "coin-flip", 50)

	require.NoError(t, err)
	assert.Equal(t, 950.0, record.BalanceAfter)
	m.assertExpectations(t)
}

func TestWagerService_BeginFailure(t *testing.T) {
	setTestConfig(t)
	ctx := context.Background()
	m := newWagerMocks()

	svc := NewWagerService(m.factory, models.NewEventCatalog(models.DefaultEvents()), fixedDraw(0.1))
	m.uow.On("Begin", ctx).Return(errors.New("connection refused"))

	_, err := svc.PlaceWager(ctx, "coin-flip", 100)
	assert.ErrorContains(t, err, "failed to begin transaction")

	err = svc.ResetLedger(ctx)
	assert.ErrorContains(t, err, "failed to begin transaction")
}

func TestRejectionReason(t *testing.T) {
	tests := []struct {
		err      error
		expected string
	}{
		{&GameOverError{State: models.LedgerStateWon}, "game_over"},
		{&UnknownEventError{EventID: "x"}, "unknown_event"},
		{&BetLimitError{Bound: "maxBet"}, "bet_limit"},
		{&InsufficientBalanceError{}, "insufficient_balance"},
		{&PersonaLimitError{}, "persona_limit"},
		{errors.New("other"), "other"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, rejectionReason(tt.err))
		assert.Equal(t, tt.expected != "other", errors.Is(tt.err, ErrWagerRejected))
	}
}
