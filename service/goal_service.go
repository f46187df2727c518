package service

import (
	"context"
	"fmt"
	"time"

	"betsim/analytics"
	"betsim/config"
	"betsim/models"

	log "github.com/sirupsen/logrus"
)

const (
	GoalMaxDrawdown    = "max-drawdown"
	GoalSessionMinutes = "session-minutes"
	GoalBetCount       = "bet-count"
)

// DefaultGoals returns the goals seeded for a new player
func DefaultGoals() []models.Goal {
	return []models.Goal{
		{ID: GoalBetCount, Title: "Place at most 100 bets", Type: models.GoalTypeCount, TargetValue: 100, IsActive: true},
		{ID: GoalMaxDrawdown, Title: "Keep drawdown under 50%", Type: models.GoalTypePercentage, TargetValue: 50, IsActive: true},
		{ID: GoalSessionMinutes, Title: "Play at most 60 minutes per session", Type: models.GoalTypeMinutes, TargetValue: 60, IsActive: true},
	}
}

type goalService struct {
	uowFactory UnitOfWorkFactory
	ledger     LedgerReader
	aggregator *analytics.MetricsAggregator
	playerID   string
	now        func() time.Time
}

// NewGoalService creates a goal service for the configured player
func NewGoalService(uowFactory UnitOfWorkFactory, ledger LedgerReader, catalog *models.EventCatalog) GoalService {
	return &goalService{
		uowFactory: uowFactory,
		ledger:     ledger,
		aggregator: analytics.NewMetricsAggregator(catalog),
		playerID:   config.Get().PlayerID,
		now:        time.Now,
	}
}

func (s *goalService) ListGoals(ctx context.Context) ([]*models.Goal, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	goals, err := s.loadGoals(ctx, uow)
	if err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return goals, nil
}

func (s *goalService) UpdateGoal(ctx context.Context, goalID string, target float64, active bool) (*models.Goal, error) {
	if target <= 0 {
		return nil, fmt.Errorf("goal target must be positive, got %g", target)
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	goals, err := s.loadGoals(ctx, uow)
	if err != nil {
		return nil, err
	}

	var goal *models.Goal
	for _, g := range goals {
		if g.ID == goalID {
			goal = g
			break
		}
	}
	if goal == nil {
		return nil, fmt.Errorf("%w: %s", ErrGoalNotFound, goalID)
	}

	goal.TargetValue = target
	goal.IsActive = active
	goal.UpdatedAt = s.now()
	if err := uow.GoalRepository().Upsert(ctx, s.playerID, goal); err != nil {
		return nil, fmt.Errorf("failed to update goal %s: %w", goalID, err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"playerID": s.playerID,
		"goalID":   goalID,
		"target":   target,
		"active":   active,
	}).Info("Goal updated")
	return goal, nil
}

func (s *goalService) Evaluate(ctx context.Context) ([]models.GoalStatus, error) {
	snapshot, err := s.ledger.GetLedger(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get ledger snapshot: %w", err)
	}
	summary := s.aggregator.Summarize(snapshot.History)

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	goals, err := s.loadGoals(ctx, uow)
	if err != nil {
		return nil, err
	}

	now := s.now()
	statuses := make([]models.GoalStatus, 0, len(goals))
	for _, goal := range goals {
		goal.CurrentValue = currentGoalValue(goal, summary, snapshot.History)
		goal.UpdatedAt = now
		if err := uow.GoalRepository().Upsert(ctx, s.playerID, goal); err != nil {
			return nil, fmt.Errorf("failed to update goal %s: %w", goal.ID, err)
		}

		status := models.GoalStatus{Goal: *goal}
		if goal.TargetValue > 0 {
			status.Progress = goal.CurrentValue / goal.TargetValue
		}
		status.Breached = goal.IsActive && goal.CurrentValue > goal.TargetValue
		if status.Breached {
			log.WithFields(log.Fields{
				"playerID": s.playerID,
				"goalID":   goal.ID,
				"current":  goal.CurrentValue,
				"target":   goal.TargetValue,
			}).Warn("Goal breached")
		}
		statuses = append(statuses, status)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return statuses, nil
}

// loadGoals returns the stored goals, seeding the defaults when there are none
func (s *goalService) loadGoals(ctx context.Context, uow UnitOfWork) ([]*models.Goal, error) {
	goals, err := uow.GoalRepository().GetAll(ctx, s.playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get goals: %w", err)
	}
	if len(goals) > 0 {
		return goals, nil
	}

	now := s.now()
	for _, g := range DefaultGoals() {
		goal := g
		goal.UpdatedAt = now
		if err := uow.GoalRepository().Upsert(ctx, s.playerID, &goal); err != nil {
			return nil, fmt.Errorf("failed to seed goal %s: %w", goal.ID, err)
		}
		goals = append(goals, &goal)
	}
	return goals, nil
}

func currentGoalValue(goal *models.Goal, summary models.MetricsSummary, history []*models.BetRecord) float64 {
	switch goal.ID {
	case GoalMaxDrawdown:
		return summary.MaxDrawdown
	case GoalBetCount:
		return float64(summary.TotalBets)
	case GoalSessionMinutes:
		if len(history) < 2 {
			return 0
		}
		return history[len(history)-1].Timestamp.Sub(history[0].Timestamp).Minutes()
	}

	// Custom goals fall back to the metric matching their unit
	switch goal.Type {
	case models.GoalTypePercentage:
		return summary.MaxDrawdown
	case models.GoalTypeCount:
		return float64(summary.TotalBets)
	default:
		return goal.CurrentValue
	}
}
