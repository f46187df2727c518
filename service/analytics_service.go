package service

import (
	"context"
	"fmt"

	"betsim/analytics"
	"betsim/models"

	log "github.com/sirupsen/logrus"
)

// LedgerReader provides read-only snapshots of the ledger
type LedgerReader interface {
	GetLedger(ctx context.Context) (*models.LedgerSnapshot, error)
}

type analyticsService struct {
	ledger     LedgerReader
	aggregator *analytics.MetricsAggregator
	projector  *analytics.Projector
}

// NewAnalyticsService creates an analytics service over the ledger's history
func NewAnalyticsService(ledger LedgerReader, catalog *models.EventCatalog, rng analytics.RandomSource) AnalyticsService {
	return &analyticsService{
		ledger:     ledger,
		aggregator: analytics.NewMetricsAggregator(catalog),
		projector:  analytics.NewProjector(rng),
	}
}

func (s *analyticsService) GetMetrics(ctx context.Context) (*models.MetricsSummary, error) {
	snapshot, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	summary := s.aggregator.Summarize(snapshot.History)
	return &summary, nil
}

func (s *analyticsService) DetectPatterns(ctx context.Context) ([]models.Warning, error) {
	snapshot, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return analytics.DetectPatterns(snapshot.History), nil
}

func (s *analyticsService) Project(ctx context.Context, horizon int) (*models.ProjectionResult, error) {
	snapshot, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	result, err := s.projector.Project(snapshot.History, snapshot.Ledger.Balance, horizon)
	if err != nil {
		return nil, err
	}
	if result == nil {
		log.WithField("bets", len(snapshot.History)).Debug("Not enough history to project")
	}
	return result, nil
}

func (s *analyticsService) ProjectDistribution(ctx context.Context, horizon, runs int) (*models.ProjectionDistribution, error) {
	snapshot, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	dist, err := s.projector.ProjectDistribution(ctx, snapshot.History, snapshot.Ledger.Balance, horizon, runs)
	if err != nil {
		return nil, err
	}
	if dist != nil {
		log.WithFields(log.Fields{
			"horizon":               horizon,
			"runs":                  runs,
			"bankruptcyProbability": dist.BankruptcyProbability,
			"modalCategory":         dist.ModalCategory,
		}).Debug("Projection distribution computed")
	}
	return dist, nil
}

func (s *analyticsService) snapshot(ctx context.Context) (*models.LedgerSnapshot, error) {
	snapshot, err := s.ledger.GetLedger(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get ledger snapshot: %w", err)
	}
	return snapshot, nil
}
