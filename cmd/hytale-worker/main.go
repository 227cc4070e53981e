// Command hytale-worker is the dashboard's background collector. It
// samples server performance, tracks player join/leave events from the
// systemd journal, and stores both in SQLite for the dashboard to read.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/jppabloc/hytale-dashboard/internal/config"
	"github.com/jppabloc/hytale-dashboard/internal/logging"
	"github.com/jppabloc/hytale-dashboard/internal/worker"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		fallback := logging.New("info", "console")
		fallback.Error().Err(err).Msg("invalid configuration")
		return 1
	}

	logger := logging.New(cfg.LogLevel, cfg.LogFormat)
	log := logging.Component(logger, "worker")

	store, err := worker.OpenStore(cfg.Worker.DBPath)
	if err != nil {
		log.Error().Err(err).Msg("opening dashboard database")
		return 1
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Warn().Err(err).Msg("closing database")
		}
	}()

	log.Info().Str("db", cfg.Worker.DBPath).Msg("dashboard database ready")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	journal := worker.NewJournal(cfg.Worker.ServiceName)
	collector := worker.NewCollector(store, journal, cfg.Worker, log)

	// Best effort: with no journal access the collector still samples
	// the process and fills player state in as events arrive.
	if err := collector.InitialSync(ctx); err != nil {
		log.Warn().Err(err).Msg("initial player sync failed")
	}

	err = collector.Tree().Serve(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("collector stopped")
		return 1
	}

	log.Info().Msg("shutdown complete")
	return 0
}
