//go:build linux || darwin

package update

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"vawter.tech/stopper"

	"github.com/jppabloc/hytale-dashboard/internal/install"
)

// watchDebounce coalesces the burst of filesystem events an update
// producer emits while writing a payload.
const watchDebounce = 250 * time.Millisecond

// WatchStaging monitors the updater directory and emits a notification
// each time a staged server binary appears. The wrapper uses this purely
// for operator visibility: the update itself is applied on the next
// iteration, after the server exits with the restart code.
//
// The returned cleanup function stops the watcher goroutine and must be
// called exactly once.
func (a *Applier) WatchStaging(ctx context.Context) (<-chan struct{}, func() error, error) {
	updaterDir := filepath.Dir(a.Layout.StagingPath())
	if err := os.MkdirAll(updaterDir, install.DirMode); err != nil {
		return nil, nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, nil, err
	}

	if err := watcher.Add(updaterDir); err != nil {
		_ = watcher.Close()
		return nil, nil, err
	}

	// Producer may create staging/ and staging/Server/ later; fsnotify is
	// not recursive, so directories are added to the watch as they appear.
	addExisting := func() {
		for _, dir := range []string{a.Layout.StagingPath(), a.Layout.StagedServerPath()} {
			if info, err := os.Stat(dir); err == nil && info.IsDir() {
				_ = watcher.Add(dir)
			}
		}
	}
	addExisting()

	ch := make(chan struct{}, 1)
	sctx := stopper.WithContext(ctx)

	sctx.Defer(func() {
		_ = watcher.Close()
		close(ch)
	})

	var mu sync.Mutex
	var debouncer *time.Timer
	staged := fileExists(a.Layout.StagedJarPath())

	cleanup := func() error {
		sctx.Stop(100 * time.Millisecond)
		return sctx.Wait()
	}

	check := func() {
		if sctx.IsStopping() {
			return
		}

		mu.Lock()
		now := fileExists(a.Layout.StagedJarPath())
		arrived := now && !staged
		staged = now
		mu.Unlock()

		if !arrived {
			return
		}

		a.Log.Info().Str("staged", a.Layout.StagedJarPath()).
			Msg("update staged, will apply on next server restart")

		select {
		case ch <- struct{}{}:
		default:
			// Notification already pending
		}
	}

	sctx.Go(func(sctx *stopper.Context) error {
		sctx.Defer(func() {
			mu.Lock()
			if debouncer != nil {
				debouncer.Stop()
			}
			mu.Unlock()
		})

		for !sctx.IsStopping() {
			select {
			case <-sctx.Stopping():
				return nil

			case event, ok := <-watcher.Events:
				if !ok {
					return nil
				}
				if !strings.HasPrefix(event.Name, updaterDir) {
					continue
				}

				addExisting()

				mu.Lock()
				if debouncer != nil {
					debouncer.Stop()
				}
				debouncer = time.AfterFunc(watchDebounce, check)
				mu.Unlock()

			case err, ok := <-watcher.Errors:
				if !ok {
					return nil
				}
				if err != nil && !sctx.IsStopping() {
					a.Log.Warn().Err(err).Msg("staging watcher error")
				}
			}
		}
		return nil
	})

	return ch, cleanup, nil
}
