// Package worker collects server metrics and player activity for the
// dashboard: performance samples and join/leave events are parsed from
// the server's journal and process state, then stored in SQLite for
// fast dashboard queries.
package worker

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS players (
	uuid TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	online INTEGER DEFAULT 0,
	last_login TEXT,
	last_logout TEXT,
	world TEXT,
	total_playtime_seconds INTEGER DEFAULT 0
);

CREATE TABLE IF NOT EXISTS performance (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	timestamp TEXT NOT NULL,
	tps INTEGER,
	cpu_percent REAL,
	ram_mb REAL,
	ram_percent REAL,
	view_radius INTEGER,
	players_online INTEGER DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_perf_ts ON performance(timestamp);

CREATE TABLE IF NOT EXISTS player_events (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	timestamp TEXT NOT NULL,
	uuid TEXT NOT NULL,
	name TEXT NOT NULL,
	event_type TEXT NOT NULL,
	world TEXT
);
CREATE INDEX IF NOT EXISTS idx_events_ts ON player_events(timestamp);

CREATE TABLE IF NOT EXISTS metadata (
	key TEXT PRIMARY KEY,
	value TEXT
);
`

// Store persists dashboard data in SQLite.
type Store struct {
	db *sqlx.DB
}

// OpenStore opens (creating if necessary) the dashboard database. WAL
// mode keeps concurrent dashboard reads cheap while the worker writes.
func OpenStore(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	db, err := sqlx.Connect("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("%s: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Player is a row in the players table.
type Player struct {
	UUID       string  `db:"uuid"`
	Name       string  `db:"name"`
	Online     bool    `db:"online"`
	LastLogin  *string `db:"last_login"`
	LastLogout *string `db:"last_logout"`
	World      *string `db:"world"`
	Playtime   int64   `db:"total_playtime_seconds"`
}

// PerfSample is one performance measurement. Nil fields mean the value
// could not be observed this round and are stored as NULL.
type PerfSample struct {
	TPS        *int
	CPUPercent *float64
	RAMMB      *float64
	RAMPercent *float64
	ViewRadius *int
}

// RecordPerf inserts a performance sample stamped with the current time
// and online player count.
func (s *Store) RecordPerf(sample PerfSample) error {
	online, err := s.OnlineCount()
	if err != nil {
		return err
	}

	_, err = s.db.Exec(`
		INSERT INTO performance (timestamp, tps, cpu_percent, ram_mb, ram_percent, view_radius, players_online)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		time.Now().UTC().Format(time.RFC3339),
		sample.TPS, sample.CPUPercent, sample.RAMMB, sample.RAMPercent, sample.ViewRadius, online,
	)
	if err != nil {
		return fmt.Errorf("recording performance: %w", err)
	}
	return nil
}

// OnlineCount returns how many players are currently marked online.
func (s *Store) OnlineCount() (int, error) {
	var n int
	if err := s.db.Get(&n, "SELECT COUNT(*) FROM players WHERE online = 1"); err != nil {
		return 0, fmt.Errorf("counting online players: %w", err)
	}
	return n, nil
}

// GetPlayer returns one player row by UUID.
func (s *Store) GetPlayer(uuid string) (*Player, error) {
	var p Player
	err := s.db.Get(&p, `
		SELECT uuid, name, online, last_login, last_logout, world, total_playtime_seconds
		FROM players WHERE uuid = $1`, uuid)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ApplyEvents records a batch of player events in one transaction:
// the events log is appended and the players table is rolled forward.
// The newest event timestamp is remembered so the next journal scan can
// resume where this one stopped.
func (s *Store) ApplyEvents(events []PlayerEvent) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := s.db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, ev := range events {
		switch ev.Type {
		case EventJoin:
			_, err = tx.Exec(`
				INSERT INTO players (uuid, name, online, last_login, world)
				VALUES ($1, $2, 1, $3, $4)
				ON CONFLICT(uuid) DO UPDATE SET
					name = excluded.name,
					online = 1,
					last_login = excluded.last_login,
					world = excluded.world`,
				ev.UUID, ev.Name, ev.Timestamp, ev.World)
		case EventLeave:
			_, err = tx.Exec(`
				UPDATE players SET online = 0, last_logout = $1 WHERE uuid = $2`,
				ev.Timestamp, ev.UUID)
		}
		if err != nil {
			return fmt.Errorf("updating player %s: %w", ev.UUID, err)
		}

		if _, err = tx.Exec(`
			INSERT INTO player_events (timestamp, uuid, name, event_type, world)
			VALUES ($1, $2, $3, $4, $5)`,
			ev.Timestamp, ev.UUID, ev.Name, ev.Type, ev.World); err != nil {
			return fmt.Errorf("logging event: %w", err)
		}
	}

	latest := events[len(events)-1].Timestamp
	if _, err = tx.Exec(`
		INSERT INTO metadata (key, value) VALUES ('last_event_ts', $1)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`, latest); err != nil {
		return fmt.Errorf("updating scan position: %w", err)
	}

	return tx.Commit()
}

// LastEventTime returns the newest processed event timestamp, or empty
// when no events have been seen yet.
func (s *Store) LastEventTime() (string, error) {
	var ts string
	err := s.db.Get(&ts, "SELECT value FROM metadata WHERE key = 'last_event_ts'")
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", err
	}
	return ts, nil
}

// Prune deletes performance samples and player events older than the
// given retentions and checkpoints the WAL. It returns how many rows of
// each kind were removed.
func (s *Store) Prune(perfRetention, eventRetention time.Duration) (int64, int64, error) {
	perfCutoff := time.Now().UTC().Add(-perfRetention).Format(time.RFC3339)
	eventCutoff := time.Now().UTC().Add(-eventRetention).Format(time.RFC3339)

	res, err := s.db.Exec("DELETE FROM performance WHERE timestamp < $1", perfCutoff)
	if err != nil {
		return 0, 0, fmt.Errorf("pruning performance: %w", err)
	}
	perfDeleted, _ := res.RowsAffected()

	res, err = s.db.Exec("DELETE FROM player_events WHERE timestamp < $1", eventCutoff)
	if err != nil {
		return perfDeleted, 0, fmt.Errorf("pruning events: %w", err)
	}
	eventsDeleted, _ := res.RowsAffected()

	if _, err := s.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		return perfDeleted, eventsDeleted, fmt.Errorf("checkpointing: %w", err)
	}

	return perfDeleted, eventsDeleted, nil
}
