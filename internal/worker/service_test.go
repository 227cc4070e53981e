package worker

import (
	"bytes"
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jppabloc/hytale-dashboard/internal/config"
)

func TestInitialSyncSkippedOnceEventsRecorded(t *testing.T) {
	store := newTestStore(t)

	err := store.ApplyEvents([]PlayerEvent{
		{Timestamp: "2026-08-29T10:15:02+0000", UUID: "uuid-nova", Name: "Nova", Type: EventJoin},
		{Timestamp: "2026-08-29T10:31:09+0000", UUID: "uuid-nova", Name: "Nova", Type: EventLeave},
	})
	require.NoError(t, err)

	// Worker restart: the sync must not replay the journal window on top
	// of history the scanner already recorded.
	var logs bytes.Buffer
	c := NewCollector(store, NewJournal("hytale-server"), config.WorkerConfig{}, zerolog.New(&logs))
	require.NoError(t, c.InitialSync(context.Background()))

	assert.Contains(t, logs.String(), "initial sync skipped")

	var rows int
	require.NoError(t, store.db.Get(&rows, `SELECT COUNT(*) FROM player_events`))
	assert.Equal(t, 2, rows, "restart must not duplicate recorded events")

	last, err := store.LastEventTime()
	require.NoError(t, err)
	assert.Equal(t, "2026-08-29T10:31:09+0000", last)
}

func TestPeriodicServiceRunsImmediatelyAndTicks(t *testing.T) {
	var runs atomic.Int32

	svc := &periodicService{
		name:     "test",
		interval: 20 * time.Millisecond,
		run: func(context.Context) error {
			runs.Add(1)
			return nil
		},
		log: zerolog.Nop(),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()

	err := svc.Serve(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want deadline exceeded", err)
	}

	if n := runs.Load(); n < 2 {
		t.Errorf("runs = %d, want at least an immediate run plus one tick", n)
	}
}

func TestPeriodicServiceKeepsTickingAfterTaskError(t *testing.T) {
	var runs atomic.Int32

	svc := &periodicService{
		name:     "flaky",
		interval: 10 * time.Millisecond,
		run: func(context.Context) error {
			runs.Add(1)
			return errors.New("task failed")
		},
		log: zerolog.Nop(),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	_ = svc.Serve(ctx)

	if n := runs.Load(); n < 2 {
		t.Errorf("runs = %d, want the loop to survive task errors", n)
	}
}
