//go:build linux || darwin

package update

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/jppabloc/hytale-dashboard/internal/install"
)

func TestWatchStagingNotifiesOnStagedJar(t *testing.T) {
	scaffold, err := install.NewScaffold(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if err := scaffold.Ensure(); err != nil {
		t.Fatal(err)
	}

	applier := NewApplier(scaffold.Layout, zerolog.Nop())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	ch, cleanup, err := applier.WatchStaging(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer func() {
		if err := cleanup(); err != nil {
			t.Errorf("cleanup: %v", err)
		}
	}()

	if err := scaffold.StageServerJar([]byte("jar-v2")); err != nil {
		t.Fatal(err)
	}

	select {
	case _, ok := <-ch:
		if !ok {
			t.Fatal("watch channel closed before notification")
		}
	case <-ctx.Done():
		t.Fatal("timeout waiting for staging notification")
	}
}

func TestWatchStagingCleanupClosesChannel(t *testing.T) {
	scaffold, err := install.NewScaffold(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if err := scaffold.Ensure(); err != nil {
		t.Fatal(err)
	}

	applier := NewApplier(scaffold.Layout, zerolog.Nop())

	ch, cleanup, err := applier.WatchStaging(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if err := cleanup(); err != nil {
		t.Fatal(err)
	}

	select {
	case _, ok := <-ch:
		if ok {
			t.Fatal("unexpected notification after cleanup")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("channel not closed after cleanup")
	}
}
