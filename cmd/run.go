package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"betsim/analytics"
	"betsim/config"
	"betsim/database"
	"betsim/events"
	"betsim/metrics"
	"betsim/models"
	"betsim/repository"
	"betsim/service"

	log "github.com/sirupsen/logrus"
)

// Run initializes the simulator and plays one autoplay session
func Run(ctx context.Context) error {
	cfg := config.Get()
	if err := ConfigureLogging(cfg); err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"environment": cfg.Environment,
		"playerID":    cfg.PlayerID,
	}).Info("Starting betting simulator")

	// Initialize event bus and metrics
	eventBus := events.NewBus()
	collector := metrics.NewCollector()
	collector.Subscribe(eventBus)

	// Initialize storage
	uowFactory, closeStore, err := newUnitOfWorkFactory(ctx, cfg, eventBus)
	if err != nil {
		return err
	}
	defer closeStore()

	// Initialize services
	seed := cfg.RandomSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	log.WithField("seed", seed).Debug("Seeding random source")
	rng := analytics.NewRandomSource(seed)

	catalog := models.NewEventCatalog(models.DefaultEvents())
	wagerService := service.NewWagerService(uowFactory, catalog, rng)
	analyticsService := service.NewAnalyticsService(wagerService, catalog, rng)
	goalService := service.NewGoalService(uowFactory, wagerService, catalog)
	collector.WatchBalance(wagerService)
	log.Info("Services initialized successfully")

	session := &Session{
		Wagers:    wagerService,
		Analytics: analyticsService,
		Goals:     goalService,
		Metrics:   collector,
		EventID:   cfg.AutoplayEvent,
		Amount:    cfg.AutoplayAmount,
		Rounds:    cfg.AutoplayRounds,
		Interval:  cfg.AutoplayInterval,
		Horizon:   cfg.ProjectionHorizon,
		Runs:      cfg.ProjectionRuns,
	}

	summary, err := session.Play(ctx)
	if err != nil {
		return err
	}
	eventBus.Wait()

	report, err := session.Report(ctx)
	if err != nil {
		return err
	}
	report.Log(summary)
	return nil
}

// ConfigureLogging applies the configured logrus level and formatter
func ConfigureLogging(cfg *config.Config) error {
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("invalid LOG_LEVEL %q: %w", cfg.LogLevel, err)
	}
	log.SetLevel(level)
	log.SetOutput(os.Stdout)

	switch cfg.LogFormat {
	case "json":
		log.SetFormatter(&log.JSONFormatter{})
	default:
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
	return nil
}

// newUnitOfWorkFactory picks Postgres when a database is configured and the
// in-memory store otherwise
func newUnitOfWorkFactory(ctx context.Context, cfg *config.Config, eventBus *events.Bus) (service.UnitOfWorkFactory, func(), error) {
	if !cfg.UsesDatabase() {
		log.Info("No DATABASE_URL set, using in-memory store")
		return repository.NewMemoryUnitOfWorkFactory(repository.NewMemoryStore(), eventBus), func() {}, nil
	}

	databaseURL := cfg.GetDatabaseURL()
	log.Info("Running database migrations...")
	if err := database.MigrateUp(databaseURL); err != nil {
		return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Info("Connecting to database...")
	db, err := database.NewConnection(ctx, databaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Info("Database connection established successfully")

	return repository.NewUnitOfWorkFactory(db, eventBus), func() {
		log.Info("Closing database connection...")
		db.Close()
	}, nil
}
