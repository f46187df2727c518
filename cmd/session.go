package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"betsim/metrics"
	"betsim/models"
	"betsim/service"

	log "github.com/sirupsen/logrus"
)

// Session plays flat-stake wagers against one event
type Session struct {
	Wagers    service.WagerService
	Analytics service.AnalyticsService
	Goals     service.GoalService
	Metrics   *metrics.Collector

	EventID  string
	Amount   float64
	Rounds   int
	Interval time.Duration
	Horizon  int
	Runs     int
}

// SessionSummary describes how an autoplay session ended
type SessionSummary struct {
	Played     int
	StopReason string
	Ledger     models.Ledger
}

// Play places up to Rounds wagers. It stops early on a rejection, a
// terminal ledger, or ctx cancellation.
func (s *Session) Play(ctx context.Context) (*SessionSummary, error) {
	summary := &SessionSummary{StopReason: "rounds_complete"}

	for round := 1; round <= s.Rounds; round++ {
		if round > 1 && s.Interval > 0 {
			select {
			case <-ctx.Done():
				summary.StopReason = "cancelled"
				return s.finish(ctx, summary)
			case <-time.After(s.Interval):
			}
		}
		if ctx.Err() != nil {
			summary.StopReason = "cancelled"
			return s.finish(ctx, summary)
		}

		record, err := s.Wagers.PlaceWager(ctx, s.EventID, s.Amount)
		if err != nil {
			var gameOver *service.GameOverError
			switch {
			case errors.As(err, &gameOver):
				summary.StopReason = "game_over"
				return s.finish(ctx, summary)
			case service.IsRejection(err):
				log.WithError(err).WithField("round", round).Warn("Autoplay stopped by rejected wager")
				summary.StopReason = "rejected"
				return s.finish(ctx, summary)
			case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
				summary.StopReason = "cancelled"
				return s.finish(ctx, summary)
			default:
				return nil, fmt.Errorf("failed to place wager in round %d: %w", round, err)
			}
		}
		summary.Played++

		log.WithFields(log.Fields{
			"round":   round,
			"outcome": record.Outcome,
			"balance": record.BalanceAfter,
			"risk":    record.RiskPercentage,
		}).Debug("Autoplay round settled")

		ledger, err := s.Wagers.GetLedger(ctx)
		if err != nil {
			return nil, err
		}
		if ledger.Ledger.State.IsTerminal() {
			summary.StopReason = "game_over"
			summary.Ledger = ledger.Ledger
			return summary, nil
		}
	}
	return s.finish(ctx, summary)
}

func (s *Session) finish(ctx context.Context, summary *SessionSummary) (*SessionSummary, error) {
	// the session may end on a cancelled ctx, the final read must not
	snapshot, err := s.Wagers.GetLedger(context.WithoutCancel(ctx))
	if err != nil {
		return nil, err
	}
	summary.Ledger = snapshot.Ledger
	return summary, nil
}

// Report gathers everything the analytics layer knows about the history
type Report struct {
	Metrics      *models.MetricsSummary
	Warnings     []models.Warning
	Projection   *models.ProjectionResult
	Distribution *models.ProjectionDistribution
	Goals        []models.GoalStatus
}

// Report builds the end-of-session report. Projections are nil while the
// history is too short to extrapolate.
func (s *Session) Report(ctx context.Context) (*Report, error) {
	ctx = context.WithoutCancel(ctx)
	report := &Report{}

	var err error
	if report.Metrics, err = s.Analytics.GetMetrics(ctx); err != nil {
		return nil, fmt.Errorf("failed to get metrics: %w", err)
	}
	if report.Warnings, err = s.Analytics.DetectPatterns(ctx); err != nil {
		return nil, fmt.Errorf("failed to detect patterns: %w", err)
	}
	if report.Projection, err = s.Analytics.Project(ctx, s.Horizon); err != nil {
		return nil, fmt.Errorf("failed to project balance: %w", err)
	}
	if s.Metrics != nil {
		s.Metrics.ObserveProjection(report.Projection)
	}
	if report.Distribution, err = s.Analytics.ProjectDistribution(ctx, s.Horizon, s.Runs); err != nil {
		return nil, fmt.Errorf("failed to project distribution: %w", err)
	}
	if report.Goals, err = s.Goals.Evaluate(ctx); err != nil {
		return nil, fmt.Errorf("failed to evaluate goals: %w", err)
	}
	return report, nil
}

// Log writes the report through logrus
func (r *Report) Log(summary *SessionSummary) {
	log.WithFields(log.Fields{
		"played":  summary.Played,
		"reason":  summary.StopReason,
		"balance": summary.Ledger.Balance,
		"state":   summary.Ledger.State,
	}).Info("Session finished")

	m := r.Metrics
	log.WithFields(log.Fields{
		"bets":            m.TotalBets,
		"winRate":         m.WinRate,
		"netProfit":       m.NetProfit,
		"roi":             m.ROI,
		"maxDrawdown":     m.MaxDrawdown,
		"currentStreak":   m.CurrentStreak,
		"recoveryRate":    m.RecoveryRate,
		"diversification": m.DiversificationIndex,
	}).Info("Metrics")

	for _, w := range r.Warnings {
		log.WithFields(log.Fields{
			"pattern":  w.ID,
			"severity": w.Severity,
		}).Warn(w.Title + ": " + w.Recommendation)
	}

	if r.Projection == nil {
		log.Info("Not enough history for a projection")
	} else {
		log.WithFields(log.Fields{
			"horizon":      r.Projection.Horizon,
			"finalBalance": r.Projection.FinalBalance,
			"var95":        r.Projection.ValueAtRisk95,
			"score":        r.Projection.BankruptcyRiskScore,
			"category":     r.Projection.RiskCategory,
		}).Info("Projection")
	}
	if r.Distribution != nil {
		log.WithFields(log.Fields{
			"runs":        r.Distribution.Runs,
			"p5":          r.Distribution.FinalBalanceP5,
			"p50":         r.Distribution.FinalBalanceP50,
			"p95":         r.Distribution.FinalBalanceP95,
			"bankruptcy":  r.Distribution.BankruptcyProbability,
			"modalBucket": r.Distribution.ModalCategory,
		}).Info("Projection distribution")
	}

	for _, g := range r.Goals {
		log.WithFields(log.Fields{
			"goal":     g.Goal.ID,
			"active":   g.Goal.IsActive,
			"target":   g.Goal.TargetValue,
			"current":  g.Goal.CurrentValue,
			"progress": g.Progress,
			"breached": g.Breached,
		}).Info("Goal")
	}
}
