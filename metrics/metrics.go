package metrics

import (
	"context"
	"math"

	"betsim/events"
	"betsim/models"

	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
)

const namespace = "betsim"

// Collector turns domain events into Prometheus metrics
type Collector struct {
	registry *prometheus.Registry

	WagersTotal     *prometheus.CounterVec
	RejectionsTotal *prometheus.CounterVec
	StakedTotal     prometheus.Counter
	Balance         prometheus.GaugeFunc
	RiskPercentage  prometheus.Histogram
	ResetsTotal     prometheus.Counter
	GameOverTotal   *prometheus.CounterVec
	BankruptcyScore prometheus.Histogram
}

// NewCollector creates a collector registered on its own registry
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		WagersTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "wagers_settled_total",
				Help:      "Settled wagers by event and outcome.",
			},
			[]string{"event", "outcome"},
		),
		RejectionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "wagers_rejected_total",
				Help:      "Rejected wagers by reason.",
			},
			[]string{"reason"},
		),
		StakedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "staked_amount_total",
				Help:      "Total virtual currency staked on settled wagers.",
			},
		),
		RiskPercentage: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "wager_risk_percentage",
				Help:      "Risk score of settled wagers.",
				Buckets:   prometheus.LinearBuckets(10, 10, 10),
			},
		),
		ResetsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ledger_resets_total",
				Help:      "Ledger resets.",
			},
		),
		GameOverTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "games_over_total",
				Help:      "Ledgers that reached a terminal state, by state.",
			},
			[]string{"state"},
		),
		BankruptcyScore: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "projection_bankruptcy_score",
				Help:      "Bankruptcy risk score of computed projections.",
				Buckets:   []float64{20, 40, 60, 80, 100},
			},
		),
	}

	c.registry.MustRegister(
		c.WagersTotal,
		c.RejectionsTotal,
		c.StakedTotal,
		c.RiskPercentage,
		c.ResetsTotal,
		c.GameOverTotal,
		c.BankruptcyScore,
	)
	return c
}

// Registry exposes the registry the collector's metrics live on
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Subscribe wires the collector to the event bus
func (c *Collector) Subscribe(bus *events.Bus) {
	bus.Subscribe(events.EventTypeBetSettled, c.handle)
	bus.Subscribe(events.EventTypeWagerRejected, c.handle)
	bus.Subscribe(events.EventTypeLedgerReset, c.handle)
	bus.Subscribe(events.EventTypeGameOver, c.handle)
}

func (c *Collector) handle(ctx context.Context, event events.Event) {
	switch e := event.(type) {
	case events.BetSettledEvent:
		outcome := models.OutcomeLoss
		if e.Won {
			outcome = models.OutcomeWin
		}
		c.WagersTotal.WithLabelValues(e.EventID, string(outcome)).Inc()
		c.StakedTotal.Add(e.Amount)
		c.RiskPercentage.Observe(float64(e.RiskPercentage))
	case events.WagerRejectedEvent:
		c.RejectionsTotal.WithLabelValues(e.Reason).Inc()
	case events.LedgerResetEvent:
		c.ResetsTotal.Inc()
	case events.GameOverEvent:
		c.GameOverTotal.WithLabelValues(string(e.State)).Inc()
	default:
		log.WithField("eventType", event.Type()).Debug("Metrics collector ignoring event")
	}
}

// LedgerReader provides ledger snapshots for the balance gauge
type LedgerReader interface {
	GetLedger(ctx context.Context) (*models.LedgerSnapshot, error)
}

// WatchBalance registers a balance gauge read from the ledger at collection
// time rather than from bus events, whose handlers run unordered. Call it
// once per collector.
func (c *Collector) WatchBalance(ledger LedgerReader) {
	c.Balance = prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "ledger_balance",
			Help:      "Current ledger balance.",
		},
		func() float64 {
			snapshot, err := ledger.GetLedger(context.Background())
			if err != nil {
				log.WithError(err).Warn("Failed to read ledger balance for metrics")
				return math.NaN()
			}
			return snapshot.Ledger.Balance
		},
	)
	c.registry.MustRegister(c.Balance)
}

// ObserveProjection records the bankruptcy score of a computed projection
func (c *Collector) ObserveProjection(result *models.ProjectionResult) {
	if result == nil {
		return
	}
	c.BankruptcyScore.Observe(result.BankruptcyRiskScore)
}
