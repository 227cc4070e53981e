package worker

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/thejerf/suture/v4"

	"github.com/jppabloc/hytale-dashboard/internal/config"
)

// Collector owns the worker's periodic tasks and the store they feed.
type Collector struct {
	// Store is the dashboard database
	Store *Store

	// Journal reads the server's systemd journal
	Journal *Journal

	// Config holds the collector intervals and retentions
	Config config.WorkerConfig

	// Log is the component logger
	Log zerolog.Logger
}

// NewCollector wires a Collector from its parts.
func NewCollector(store *Store, journal *Journal, cfg config.WorkerConfig, logger zerolog.Logger) *Collector {
	return &Collector{
		Store:   store,
		Journal: journal,
		Config:  cfg,
		Log:     logger,
	}
}

// Tree builds the supervision tree running the three periodic tasks:
// performance sampling, player event scanning, and retention pruning.
// A panicking or erroring task is restarted without taking the others
// down.
func (c *Collector) Tree() *suture.Supervisor {
	sup := suture.New("hytale-worker", suture.Spec{
		EventHook: func(ev suture.Event) {
			c.Log.Warn().Str("event", ev.String()).Msg("collector service event")
		},
	})

	sup.Add(&periodicService{
		name:     "perf-sampler",
		interval: c.Config.PerfInterval,
		run:      c.samplePerformance,
		log:      c.Log,
	})
	sup.Add(&periodicService{
		name:     "event-scanner",
		interval: c.Config.EventInterval,
		run:      c.scanEvents,
		log:      c.Log,
	})
	sup.Add(&periodicService{
		name:     "cleaner",
		interval: c.Config.CleanupInterval,
		run:      c.prune,
		log:      c.Log,
	})

	return sup
}

// InitialSync replays the last week of journal history so the players
// table reflects reality on a fresh database. Once any event has been
// recorded the scanner's checkpoint is authoritative and the replay is
// skipped; replaying again would append the same week of history to
// player_events on every restart.
func (c *Collector) InitialSync(ctx context.Context) error {
	last, err := c.Store.LastEventTime()
	if err != nil {
		return err
	}
	if last != "" {
		c.Log.Debug().Str("last_event", last).Msg("initial sync skipped, event history present")
		return nil
	}

	out, err := c.Journal.Since(ctx, "7 days ago")
	if err != nil {
		return err
	}

	events := ParseEvents(out)
	if err := c.Store.ApplyEvents(events); err != nil {
		return err
	}

	c.Log.Info().Int("events", len(events)).Msg("initial player sync complete")
	return nil
}

// samplePerformance collects one performance sample: TPS and view radius
// from recent journal lines, CPU and memory from the server process.
func (c *Collector) samplePerformance(ctx context.Context) error {
	var sample PerfSample

	if out, err := c.Journal.Tail(ctx, 200); err == nil {
		sample.TPS, sample.ViewRadius = ParsePerfHints(out)
	} else {
		c.Log.Debug().Err(err).Msg("journal tail failed, sampling process only")
	}

	if p, err := FindServerProcess(ctx); err == nil {
		SampleProcess(ctx, p, &sample)
	} else if !errors.Is(err, ErrServerNotRunning) {
		return err
	}

	return c.Store.RecordPerf(sample)
}

// scanEvents reads journal lines newer than the last processed event and
// rolls the player state forward.
func (c *Collector) scanEvents(ctx context.Context) error {
	since, err := c.Store.LastEventTime()
	if err != nil {
		return err
	}
	if since == "" {
		since = "3 days ago"
	}

	out, err := c.Journal.Since(ctx, since)
	if err != nil {
		return err
	}

	events := ParseEvents(out)
	if len(events) == 0 {
		return nil
	}

	if err := c.Store.ApplyEvents(events); err != nil {
		return err
	}

	c.Log.Info().Int("events", len(events)).Msg("processed player events")
	return nil
}

// prune enforces retention and checkpoints the WAL.
func (c *Collector) prune(_ context.Context) error {
	perfDeleted, eventsDeleted, err := c.Store.Prune(c.Config.PerfRetention, c.Config.EventRetention)
	if err != nil {
		return err
	}
	if perfDeleted > 0 || eventsDeleted > 0 {
		c.Log.Info().
			Int64("perf_rows", perfDeleted).
			Int64("event_rows", eventsDeleted).
			Msg("pruned old dashboard data")
	}
	return nil
}

// periodicService runs one task on a fixed interval under suture. The
// task runs once immediately so a fresh worker has data right away.
type periodicService struct {
	name     string
	interval time.Duration
	run      func(context.Context) error
	log      zerolog.Logger
}

// Serve implements suture.Service.
func (p *periodicService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		if err := p.run(ctx); err != nil && ctx.Err() == nil {
			// Log and keep ticking; only the supervisor restarts us
			p.log.Warn().Err(err).Str("service", p.name).Msg("task failed")
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// String names the service in suture events.
func (p *periodicService) String() string {
	return p.name
}
