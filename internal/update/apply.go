// Package update applies staged server updates and watches the staging
// area for newly arrived payloads.
//
// An update producer stages a payload under updater/staging/, mirroring
// the active install layout. The staged server binary is the sole
// trigger: when it exists, the applier promotes the payload over the
// active install and removes the staging subtree. There is no rollback;
// if a step fails partway the install is left as-is and the error is
// surfaced. The previous binary is preserved under updater/previous/ so
// a bad update can be inspected or restored by hand.
package update

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/renameio/v2"
	"github.com/rs/zerolog"

	"github.com/jppabloc/hytale-dashboard/internal/install"
)

// ErrUnsupported is returned by WatchStaging on platforms without a
// filesystem notification backend.
var ErrUnsupported = errors.New("staging watch not supported on this platform")

// Applier promotes staged updates into the active install.
type Applier struct {
	// Layout resolves all install paths
	Layout install.Layout

	// Log is the component logger
	Log zerolog.Logger
}

// NewApplier creates an Applier for the given layout.
func NewApplier(layout install.Layout, logger zerolog.Logger) *Applier {
	return &Applier{Layout: layout, Log: logger}
}

// Apply checks for a staged update and promotes it. It returns false
// with no side effects when nothing is staged; that is a normal state,
// not an error. On success the entire staging subtree is gone and the
// function returns true. Filesystem errors are unrecoverable and leave
// whatever was already copied in place.
func (a *Applier) Apply() (bool, error) {
	l := a.Layout

	if !fileExists(l.StagedJarPath()) {
		return false, nil
	}

	a.Log.Info().Str("staged", l.StagedJarPath()).Msg("staged update found, applying")

	if err := a.preservePrevious(); err != nil {
		return false, err
	}

	if err := promoteFile(l.StagedJarPath(), l.JarPath(), install.ExecMode); err != nil {
		return false, fmt.Errorf("promoting server binary: %w", err)
	}

	if fileExists(l.StagedCachePath()) {
		if err := promoteFile(l.StagedCachePath(), l.CachePath(), install.FileMode); err != nil {
			return false, fmt.Errorf("promoting acceleration cache: %w", err)
		}
	}

	if dirExists(l.StagedLicensesPath()) {
		// Destructive replace: the staged subtree wins wholesale, stale
		// licenses must not linger.
		if err := os.RemoveAll(l.LicensesPath()); err != nil {
			return false, fmt.Errorf("removing old licenses: %w", err)
		}
		if err := copyTree(l.StagedLicensesPath(), l.LicensesPath()); err != nil {
			return false, fmt.Errorf("copying licenses: %w", err)
		}
	}

	if fileExists(l.StagedAssetsPath()) {
		if err := promoteFile(l.StagedAssetsPath(), l.AssetsPath(), install.FileMode); err != nil {
			return false, fmt.Errorf("promoting asset bundle: %w", err)
		}
	}

	// A staged launcher is never promoted: the active launcher is the
	// script that is running this process.
	if fileExists(filepath.Join(l.StagedServerPath(), install.LauncherScript)) {
		a.Log.Info().Msg("staged launcher present, refusing to overwrite our own launcher")
	}

	if err := os.RemoveAll(l.StagingPath()); err != nil {
		return false, fmt.Errorf("removing staging: %w", err)
	}

	a.Log.Info().Str("jar", l.JarPath()).Msg("update applied")
	return true, nil
}

// preservePrevious copies the active server binary into updater/previous/
// before it is overwritten. A missing active binary (first install) is
// fine; the copy is simply skipped.
func (a *Applier) preservePrevious() error {
	if !fileExists(a.Layout.JarPath()) {
		return nil
	}
	if err := os.MkdirAll(a.Layout.PreviousPath(), install.DirMode); err != nil {
		return fmt.Errorf("creating previous dir: %w", err)
	}
	if err := promoteFile(a.Layout.JarPath(), a.Layout.PreviousJarPath(), install.ExecMode); err != nil {
		return fmt.Errorf("preserving previous binary: %w", err)
	}
	return nil
}

// promoteFile copies src over dst atomically: the new content lands in a
// temp file next to dst and is renamed into place, so a reader never
// observes a half-written binary.
func promoteFile(src, dst string, mode os.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	out, err := renameio.NewPendingFile(dst, renameio.WithPermissions(mode))
	if err != nil {
		return err
	}
	defer func() { _ = out.Cleanup() }()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}

	return out.CloseAtomicallyReplace()
}

// copyTree copies the directory tree at src to dst, preserving file modes.
func copyTree(src, dst string) error {
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)

		if d.IsDir() {
			return os.MkdirAll(target, install.DirMode)
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		return promoteFile(path, target, info.Mode().Perm())
	})
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
