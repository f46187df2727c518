package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"betsim/cmd"
	"betsim/config"
	"betsim/database"

	log "github.com/sirupsen/logrus"
)

func main() {
	// Check for migration subcommands
	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		if err := handleMigrationCommand(); err != nil {
			log.WithError(err).Fatal("Migration error")
		}
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info("Received shutdown signal, stopping session...")
		cancel()
	}()

	if err := cmd.Run(ctx); err != nil {
		log.WithError(err).Fatal("Application error")
	}
}

func handleMigrationCommand() error {
	if len(os.Args) < 3 {
		return fmt.Errorf("usage: betsim migrate [up|down|status] [args...]")
	}

	cfg := config.Get()
	if err := cmd.ConfigureLogging(cfg); err != nil {
		return err
	}
	if !cfg.UsesDatabase() {
		return fmt.Errorf("DATABASE_URL must be set to run migrations")
	}
	databaseURL := cfg.GetDatabaseURL()

	command := os.Args[2]
	switch command {
	case "up":
		return database.MigrateUp(databaseURL)
	case "down":
		steps := 1
		if len(os.Args) > 3 {
			n, err := strconv.Atoi(os.Args[3])
			if err != nil {
				return fmt.Errorf("invalid steps %q: %w", os.Args[3], err)
			}
			steps = n
		}
		return database.MigrateDown(databaseURL, steps)
	case "status":
		status, err := database.MigrateStatus(databaseURL)
		if err != nil {
			return err
		}
		log.WithFields(log.Fields{
			"version": status.Version,
			"dirty":   status.Dirty,
			"applied": status.Applied,
		}).Info("Migration status")
		return nil
	default:
		return fmt.Errorf("unknown migration command: %s", command)
	}
}
