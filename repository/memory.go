package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"betsim/events"
	"betsim/models"
	"betsim/service"
)

// MemoryStore keeps ledgers, bet history and goals in process memory.
// It is used when no database is configured and in service tests.
type MemoryStore struct {
	mu    sync.Mutex
	state memoryState
}

type memoryState struct {
	ledgers map[string]models.Ledger
	bets    map[string][]*models.BetRecord
	goals   map[string]map[string]models.Goal
}

// NewMemoryStore creates an empty store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{state: memoryState{
		ledgers: make(map[string]models.Ledger),
		bets:    make(map[string][]*models.BetRecord),
		goals:   make(map[string]map[string]models.Goal),
	}}
}

// clone copies the maps. Bet records are immutable, so sharing pointers is safe.
func (s memoryState) clone() memoryState {
	out := memoryState{
		ledgers: make(map[string]models.Ledger, len(s.ledgers)),
		bets:    make(map[string][]*models.BetRecord, len(s.bets)),
		goals:   make(map[string]map[string]models.Goal, len(s.goals)),
	}
	for k, v := range s.ledgers {
		out.ledgers[k] = v
	}
	for k, v := range s.bets {
		out.bets[k] = append([]*models.BetRecord(nil), v...)
	}
	for player, goals := range s.goals {
		copied := make(map[string]models.Goal, len(goals))
		for id, g := range goals {
			copied[id] = g
		}
		out.goals[player] = copied
	}
	return out
}

// NewMemoryUnitOfWorkFactory creates a UnitOfWork factory over store
func NewMemoryUnitOfWorkFactory(store *MemoryStore, eventBus *events.Bus) service.UnitOfWorkFactory {
	return &memoryUnitOfWorkFactory{store: store, eventBus: eventBus}
}

type memoryUnitOfWorkFactory struct {
	store    *MemoryStore
	eventBus *events.Bus
}

func (f *memoryUnitOfWorkFactory) Create() service.UnitOfWork {
	return &memoryUnitOfWork{
		store:            f.store,
		transactionalBus: events.NewTransactionalBus(f.eventBus),
	}
}

// memoryUnitOfWork stages writes on a private copy of the store and swaps it
// in on commit. Concurrent units of work are last-writer-wins.
type memoryUnitOfWork struct {
	store            *MemoryStore
	working          *memoryState
	ctx              context.Context
	transactionalBus *events.TransactionalBus
}

func (u *memoryUnitOfWork) Begin(ctx context.Context) error {
	if u.working != nil {
		return fmt.Errorf("transaction already started")
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	u.store.mu.Lock()
	working := u.store.state.clone()
	u.store.mu.Unlock()

	u.working = &working
	u.ctx = ctx
	return nil
}

func (u *memoryUnitOfWork) Commit() error {
	if u.working == nil {
		return fmt.Errorf("no transaction to commit")
	}

	u.store.mu.Lock()
	u.store.state = *u.working
	u.store.mu.Unlock()

	u.working = nil
	return u.transactionalBus.Flush(u.ctx)
}

func (u *memoryUnitOfWork) Rollback() error {
	if u.working == nil {
		return nil
	}
	u.working = nil
	u.transactionalBus.Discard()
	return nil
}

func (u *memoryUnitOfWork) LedgerRepository() service.LedgerRepository {
	return &memoryLedgerRepository{state: u.started()}
}

func (u *memoryUnitOfWork) BetRecordRepository() service.BetRecordRepository {
	return &memoryBetRecordRepository{state: u.started()}
}

func (u *memoryUnitOfWork) GoalRepository() service.GoalRepository {
	return &memoryGoalRepository{state: u.started()}
}

func (u *memoryUnitOfWork) EventBus() service.EventPublisher {
	u.started()
	return u.transactionalBus
}

func (u *memoryUnitOfWork) started() *memoryState {
	if u.working == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.working
}

type memoryLedgerRepository struct {
	state *memoryState
}

func (r *memoryLedgerRepository) Get(ctx context.Context, playerID string) (*models.Ledger, error) {
	ledger, ok := r.state.ledgers[playerID]
	if !ok {
		return nil, nil
	}
	return &ledger, nil
}

func (r *memoryLedgerRepository) Create(ctx context.Context, ledger *models.Ledger) error {
	if _, ok := r.state.ledgers[ledger.PlayerID]; ok {
		return fmt.Errorf("ledger for player %s already exists", ledger.PlayerID)
	}
	r.state.ledgers[ledger.PlayerID] = *ledger
	return nil
}

func (r *memoryLedgerRepository) Update(ctx context.Context, ledger *models.Ledger) error {
	if _, ok := r.state.ledgers[ledger.PlayerID]; !ok {
		return fmt.Errorf("player %s: %w", ledger.PlayerID, service.ErrLedgerNotFound)
	}
	r.state.ledgers[ledger.PlayerID] = *ledger
	return nil
}

type memoryBetRecordRepository struct {
	state *memoryState
}

func (r *memoryBetRecordRepository) Append(ctx context.Context, playerID string, record *models.BetRecord) error {
	if _, ok := r.state.ledgers[playerID]; !ok {
		return fmt.Errorf("player %s: %w", playerID, service.ErrLedgerNotFound)
	}
	stored := *record
	r.state.bets[playerID] = append(r.state.bets[playerID], &stored)
	return nil
}

func (r *memoryBetRecordRepository) GetByPlayer(ctx context.Context, playerID string) ([]*models.BetRecord, error) {
	history := r.state.bets[playerID]
	out := make([]*models.BetRecord, len(history))
	for i, record := range history {
		copied := *record
		out[i] = &copied
	}
	return out, nil
}

func (r *memoryBetRecordRepository) DeleteByPlayer(ctx context.Context, playerID string) (int64, error) {
	removed := int64(len(r.state.bets[playerID]))
	delete(r.state.bets, playerID)
	return removed, nil
}

type memoryGoalRepository struct {
	state *memoryState
}

func (r *memoryGoalRepository) GetAll(ctx context.Context, playerID string) ([]*models.Goal, error) {
	goals := r.state.goals[playerID]
	out := make([]*models.Goal, 0, len(goals))
	for _, g := range goals {
		goal := g
		out = append(out, &goal)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memoryGoalRepository) Upsert(ctx context.Context, playerID string, goal *models.Goal) error {
	if r.state.goals[playerID] == nil {
		r.state.goals[playerID] = make(map[string]models.Goal)
	}
	r.state.goals[playerID][goal.ID] = *goal
	return nil
}
