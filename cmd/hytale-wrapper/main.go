// Command hytale-wrapper supervises a Hytale game server: it applies
// staged updates before each start, relays console commands through a
// named pipe, restarts the server when it asks for an update cycle, and
// surfaces any other exit code to the service manager.
//
// All trailing arguments are passed through to the server verbatim;
// configuration comes from HYTALE_-prefixed environment variables.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/jppabloc/hytale-dashboard/internal/config"
	"github.com/jppabloc/hytale-dashboard/internal/install"
	"github.com/jppabloc/hytale-dashboard/internal/logging"
	"github.com/jppabloc/hytale-dashboard/internal/supervisor"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(passthrough []string) int {
	cfg, err := config.Load()
	if err != nil {
		fallback := logging.New("info", "console")
		fallback.Error().Err(err).Msg("invalid configuration")
		return 1
	}

	logger := logging.New(cfg.LogLevel, cfg.LogFormat)
	log := logging.Component(logger, "wrapper")

	layout, err := install.NewLayout(cfg.InstallRoot)
	if err != nil {
		log.Error().Err(err).Msg("resolving install root")
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sup := supervisor.New(cfg, layout, logger, supervisor.WithPassthrough(passthrough))

	// Advisory staging watcher: operators see "update staged" in the log
	// as soon as a payload lands, ahead of the restart that applies it.
	notify, stopWatch, err := sup.Applier().WatchStaging(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("staging watcher unavailable")
	} else {
		defer func() {
			if err := stopWatch(); err != nil {
				log.Warn().Err(err).Msg("stopping staging watcher")
			}
		}()
		go func() {
			for range notify {
			}
		}()
	}

	code, err := sup.Run(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			log.Info().Msg("shutdown requested, server stopped")
			return 0
		}
		log.Error().Err(err).Msg("supervisor failed")
		return 1
	}

	return code
}
