// Package install describes the on-disk layout of a Hytale server
// installation and resolves the well-known paths the wrapper operates on.
package install

import (
	"fmt"
	"path/filepath"
)

// Installation directory and file constants, all relative to the install root.
const (
	// ServerDir is the active install subdirectory containing the server
	// binary, launcher, and licenses. It is also the child's working
	// directory: the server creates its universe/ data directory relative
	// to wherever it is started from.
	ServerDir = "Server"

	// ServerJar is the server binary file name. Its presence in staging is
	// the sole trigger for applying a pending update.
	ServerJar = "HytaleServer.jar"

	// CacheArchive is the optional class-data archive that shortens server
	// startup when present. Its absence is a normal state, not an error.
	CacheArchive = "HytaleServer.jsa"

	// LicensesDir is the license subtree under Server.
	LicensesDir = "licenses"

	// LauncherScript is the wrapper's own launch script under Server.
	// Updates must never overwrite it while it is running us.
	LauncherScript = "start.sh"

	// UniverseDir is the child-managed world data directory under Server.
	UniverseDir = "universe"

	// AssetsBundle is the asset archive at the install root. The child
	// references it relative to its working directory (Server/).
	AssetsBundle = "Assets.zip"

	// StagingDir is where the update producer places a pending payload,
	// mirroring the active Server/ layout.
	StagingDir = "updater/staging"

	// PreviousDir preserves the pre-update server binary so operators can
	// inspect or restore it after a suspect update.
	PreviousDir = "updater/previous"

	// BackupDir is the world backup directory name passed to the server
	// when backups are enabled.
	BackupDir = "backups"

	// ConsolePipe is the command channel FIFO at the install root.
	ConsolePipe = ".console_pipe"
)

// File modes
const (
	// DirMode is the default mode for created directories
	DirMode = 0o755

	// FileMode is the default mode for created files
	FileMode = 0o644

	// ExecMode is the mode for the server binary and launcher
	ExecMode = 0o755

	// PipeMode restricts the console FIFO to owner and group
	PipeMode = 0o660
)

// Layout resolves well-known paths beneath a single install root.
// It is a plain value: methods never touch the filesystem.
type Layout struct {
	// Root is the absolute install root directory
	Root string
}

// NewLayout creates a Layout for the given install root.
// The root must resolve to an absolute path.
func NewLayout(root string) (Layout, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return Layout{}, fmt.Errorf("resolving install root: %w", err)
	}
	return Layout{Root: abs}, nil
}

// ServerPath returns the active install directory.
func (l Layout) ServerPath() string {
	return filepath.Join(l.Root, ServerDir)
}

// JarPath returns the active server binary.
func (l Layout) JarPath() string {
	return filepath.Join(l.Root, ServerDir, ServerJar)
}

// CachePath returns the active acceleration cache archive.
func (l Layout) CachePath() string {
	return filepath.Join(l.Root, ServerDir, CacheArchive)
}

// LicensesPath returns the active license subtree.
func (l Layout) LicensesPath() string {
	return filepath.Join(l.Root, ServerDir, LicensesDir)
}

// LauncherPath returns the wrapper's own launch script.
func (l Layout) LauncherPath() string {
	return filepath.Join(l.Root, ServerDir, LauncherScript)
}

// AssetsPath returns the asset bundle at the install root.
func (l Layout) AssetsPath() string {
	return filepath.Join(l.Root, AssetsBundle)
}

// StagingPath returns the root of a pending update payload.
func (l Layout) StagingPath() string {
	return filepath.Join(l.Root, StagingDir)
}

// StagedServerPath returns the Server/ subtree inside staging.
func (l Layout) StagedServerPath() string {
	return filepath.Join(l.Root, StagingDir, ServerDir)
}

// StagedJarPath returns the staged server binary, the update trigger.
func (l Layout) StagedJarPath() string {
	return filepath.Join(l.Root, StagingDir, ServerDir, ServerJar)
}

// StagedCachePath returns the staged acceleration cache archive.
func (l Layout) StagedCachePath() string {
	return filepath.Join(l.Root, StagingDir, ServerDir, CacheArchive)
}

// StagedLicensesPath returns the staged license subtree.
func (l Layout) StagedLicensesPath() string {
	return filepath.Join(l.Root, StagingDir, ServerDir, LicensesDir)
}

// StagedAssetsPath returns the staged asset bundle.
func (l Layout) StagedAssetsPath() string {
	return filepath.Join(l.Root, StagingDir, AssetsBundle)
}

// PreviousPath returns the directory preserving pre-update binaries.
func (l Layout) PreviousPath() string {
	return filepath.Join(l.Root, PreviousDir)
}

// PreviousJarPath returns the preserved pre-update server binary.
func (l Layout) PreviousJarPath() string {
	return filepath.Join(l.Root, PreviousDir, ServerJar)
}

// PipePath returns the console command FIFO.
func (l Layout) PipePath() string {
	return filepath.Join(l.Root, ConsolePipe)
}
