package repository

import (
	"context"
	"errors"
	"fmt"

	"betsim/database"
	"betsim/events"
	"betsim/service"

	"github.com/jackc/pgx/v5"
	log "github.com/sirupsen/logrus"
)

// unitOfWork implements the UnitOfWork interface over a Postgres transaction
type unitOfWork struct {
	db               *database.DB
	tx               pgx.Tx
	ctx              context.Context
	transactionalBus *events.TransactionalBus
	ledgerRepo       service.LedgerRepository
	betRecordRepo    service.BetRecordRepository
	goalRepo         service.GoalRepository
}

// NewUnitOfWorkFactory creates a new UnitOfWork factory
func NewUnitOfWorkFactory(db *database.DB, eventBus *events.Bus) service.UnitOfWorkFactory {
	return &unitOfWorkFactory{
		db:       db,
		eventBus: eventBus,
	}
}

type unitOfWorkFactory struct {
	db       *database.DB
	eventBus *events.Bus
}

func (f *unitOfWorkFactory) Create() service.UnitOfWork {
	return &unitOfWork{
		db:               f.db,
		transactionalBus: events.NewTransactionalBus(f.eventBus),
	}
}

// Begin starts a new transaction
func (u *unitOfWork) Begin(ctx context.Context) error {
	if u.tx != nil {
		return fmt.Errorf("transaction already started")
	}

	tx, err := u.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	u.tx = tx
	u.ctx = ctx

	u.ledgerRepo = newLedgerRepositoryWithTx(tx)
	u.betRecordRepo = newBetRecordRepositoryWithTx(tx)
	u.goalRepo = newGoalRepositoryWithTx(tx)

	return nil
}

// Commit commits the transaction
func (u *unitOfWork) Commit() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to commit")
	}

	if err := u.tx.Commit(u.ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	u.tx = nil

	// Flush pending events after successful commit
	if err := u.transactionalBus.Flush(u.ctx); err != nil {
		log.WithError(err).Error("Failed to flush events after commit")
	}

	return nil
}

// Rollback rolls back the transaction
func (u *unitOfWork) Rollback() error {
	if u.tx == nil {
		return nil // Nothing to rollback
	}

	err := u.tx.Rollback(u.ctx)
	if err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return fmt.Errorf("failed to rollback transaction: %w", err)
	}

	u.tx = nil
	u.transactionalBus.Discard()

	return nil
}

// LedgerRepository returns the ledger repository for this unit of work
func (u *unitOfWork) LedgerRepository() service.LedgerRepository {
	if u.ledgerRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.ledgerRepo
}

// BetRecordRepository returns the bet record repository for this unit of work
func (u *unitOfWork) BetRecordRepository() service.BetRecordRepository {
	if u.betRecordRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.betRecordRepo
}

// GoalRepository returns the goal repository for this unit of work
func (u *unitOfWork) GoalRepository() service.GoalRepository {
	if u.goalRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.goalRepo
}

// EventBus returns the transactional event bus for this unit of work
func (u *unitOfWork) EventBus() service.EventPublisher {
	if u.transactionalBus == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.transactionalBus
}
