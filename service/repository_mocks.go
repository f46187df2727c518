package service

import (
	"context"

	"betsim/events"
	"betsim/models"

	"github.com/stretchr/testify/mock"
)

// MockLedgerRepository is a mock implementation of LedgerRepository
type MockLedgerRepository struct {
	mock.Mock
}

func (m *MockLedgerRepository) Get(ctx context.Context, playerID string) (*models.Ledger, error) {
	args := m.Called(ctx, playerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Ledger), args.Error(1)
}

func (m *MockLedgerRepository) Create(ctx context.Context, ledger *models.Ledger) error {
	args := m.Called(ctx, ledger)
	return args.Error(0)
}

func (m *MockLedgerRepository) Update(ctx context.Context, ledger *models.Ledger) error {
	args := m.Called(ctx, ledger)
	return args.Error(0)
}

// MockBetRecordRepository is a mock implementation of BetRecordRepository
type MockBetRecordRepository struct {
	mock.Mock
}

func (m *MockBetRecordRepository) Append(ctx context.Context, playerID string, record *models.BetRecord) error {
	args := m.Called(ctx, playerID, record)
	return args.Error(0)
}

func (m *MockBetRecordRepository) GetByPlayer(ctx context.Context, playerID string) ([]*models.BetRecord, error) {
	args := m.Called(ctx, playerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.BetRecord), args.Error(1)
}

func (m *MockBetRecordRepository) DeleteByPlayer(ctx context.Context, playerID string) (int64, error) {
	args := m.Called(ctx, playerID)
	return args.Get(0).(int64), args.Error(1)
}

// MockGoalRepository is a mock implementation of GoalRepository
type MockGoalRepository struct {
	mock.Mock
}

func (m *MockGoalRepository) GetAll(ctx context.Context, playerID string) ([]*models.Goal, error) {
	args := m.Called(ctx, playerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Goal), args.Error(1)
}

func (m *MockGoalRepository) Upsert(ctx context.Context, playerID string, goal *models.Goal) error {
	args := m.Called(ctx, playerID, goal)
	return args.Error(0)
}

// MockEventPublisher is a mock implementation of EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(event events.Event) {
	m.Called(event)
}

// MockUnitOfWork is a mock implementation of UnitOfWork
type MockUnitOfWork struct {
	mock.Mock
	ledgerRepo    LedgerRepository
	betRecordRepo BetRecordRepository
	goalRepo      GoalRepository
	eventBus      EventPublisher
}

// SetRepositories wires the repositories returned by the getters
func (m *MockUnitOfWork) SetRepositories(ledgerRepo LedgerRepository, betRecordRepo BetRecordRepository, goalRepo GoalRepository, eventBus EventPublisher) {
	m.ledgerRepo = ledgerRepo
	m.betRecordRepo = betRecordRepo
	m.goalRepo = goalRepo
	m.eventBus = eventBus
}

func (m *MockUnitOfWork) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUnitOfWork) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) LedgerRepository() LedgerRepository {
	return m.ledgerRepo
}

func (m *MockUnitOfWork) BetRecordRepository() BetRecordRepository {
	return m.betRecordRepo
}

func (m *MockUnitOfWork) GoalRepository() GoalRepository {
	return m.goalRepo
}

func (m *MockUnitOfWork) EventBus() EventPublisher {
	return m.eventBus
}

// MockUnitOfWorkFactory is a mock implementation of UnitOfWorkFactory
type MockUnitOfWorkFactory struct {
	mock.Mock
}

func (m *MockUnitOfWorkFactory) Create() UnitOfWork {
	args := m.Called()
	return args.Get(0).(UnitOfWork)
}
