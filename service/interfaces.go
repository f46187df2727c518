package service

import (
	"context"

	"betsim/events"
	"betsim/models"
)

// LedgerRepository defines the interface for ledger data access
type LedgerRepository interface {
	// Get retrieves the ledger for a player, nil if none exists
	Get(ctx context.Context, playerID string) (*models.Ledger, error)

	// Create stores a new ledger
	Create(ctx context.Context, ledger *models.Ledger) error

	// Update persists balance and state changes
	Update(ctx context.Context, ledger *models.Ledger) error
}

// BetRecordRepository defines the interface for the append-only bet history
type BetRecordRepository interface {
	// Append adds a settled bet to the end of the player's history
	Append(ctx context.Context, playerID string, record *models.BetRecord) error

	// GetByPlayer returns the player's history in chronological order
	GetByPlayer(ctx context.Context, playerID string) ([]*models.BetRecord, error)

	// DeleteByPlayer clears the player's history and returns the number of removed records
	DeleteByPlayer(ctx context.Context, playerID string) (int64, error)
}

// GoalRepository defines the interface for responsible gambling goals
type GoalRepository interface {
	// GetAll returns the player's goals ordered by ID
	GetAll(ctx context.Context, playerID string) ([]*models.Goal, error)

	// Upsert creates or replaces a goal
	Upsert(ctx context.Context, playerID string, goal *models.Goal) error
}

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Publish(event events.Event)
}

// UnitOfWork defines the interface for transactional repository operations
type UnitOfWork interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) error

	// Commit commits the transaction and delivers queued events
	Commit() error

	// Rollback rolls back the transaction, a no-op after Commit
	Rollback() error

	// Repository getters
	LedgerRepository() LedgerRepository
	BetRecordRepository() BetRecordRepository
	GoalRepository() GoalRepository
	EventBus() EventPublisher
}

// UnitOfWorkFactory defines the interface for creating UnitOfWork instances
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}

// WagerService validates, resolves and settles wagers against the ledger
type WagerService interface {
	// ScoreRisk returns the risk percentage of a candidate wager on the current balance
	ScoreRisk(ctx context.Context, eventID string, amount float64) (int, error)

	// PreviewWager describes a candidate wager without settling it
	PreviewWager(ctx context.Context, eventID string, amount float64) (*models.WagerPreview, error)

	// PlaceWager validates and settles a wager, returning the appended record
	PlaceWager(ctx context.Context, eventID string, amount float64) (*models.BetRecord, error)

	// ResetLedger restores the starting balance and clears history
	ResetLedger(ctx context.Context) error

	// GetLedger returns a read-only snapshot of the ledger and its history
	GetLedger(ctx context.Context) (*models.LedgerSnapshot, error)

	// Events returns the betting event catalog
	Events() []models.BettingEvent
}

// AnalyticsService runs the analytics core over the stored history
type AnalyticsService interface {
	// GetMetrics summarizes the stored history
	GetMetrics(ctx context.Context) (*models.MetricsSummary, error)

	// DetectPatterns returns behavioral warnings for the stored history
	DetectPatterns(ctx context.Context) ([]models.Warning, error)

	// Project simulates one trajectory of horizon bets, nil with too little history
	Project(ctx context.Context, horizon int) (*models.ProjectionResult, error)

	// ProjectDistribution summarizes runs independent projections
	ProjectDistribution(ctx context.Context, horizon, runs int) (*models.ProjectionDistribution, error)
}

// GoalService manages responsible gambling goals
type GoalService interface {
	// ListGoals returns the player's goals, seeding the defaults on first use
	ListGoals(ctx context.Context) ([]*models.Goal, error)

	// UpdateGoal changes the target and active flag of an existing goal
	UpdateGoal(ctx context.Context, goalID string, target float64, active bool) (*models.Goal, error)

	// Evaluate compares active goals with the current metrics
	Evaluate(ctx context.Context) ([]models.GoalStatus, error)
}
