// Package launch derives the server process invocation from the active
// install contents and the wrapper configuration.
package launch

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jppabloc/hytale-dashboard/internal/config"
	"github.com/jppabloc/hytale-dashboard/internal/install"
)

// Invocation is the fully computed server command line. It is recomputed
// every iteration because an applied update can change which optional
// files exist.
type Invocation struct {
	// Bin is the executable to launch
	Bin string

	// Args are the arguments in contract order: memory bounds, optional
	// cache flag, jar, program arguments, optional backup flags,
	// pass-through arguments last
	Args []string

	// Dir is the working directory the server must run from. The server
	// creates its universe/ data directory relative to this, so it is a
	// hard requirement rather than a nicety.
	Dir string
}

// Build computes the invocation for one supervisor iteration.
// Pass-through arguments come from the wrapper's own command line and are
// appended verbatim, last, so callers can extend or override behavior.
func Build(layout install.Layout, cfg *config.Config, passthrough []string) Invocation {
	var args []string

	args = append(args, "-Xms"+cfg.MemMin, "-Xmx"+cfg.MemMax)

	// The acceleration cache is optional: include the flag only when the
	// archive is actually present in the active install.
	if fileExists(layout.CachePath()) {
		args = append(args, "-XX:SharedArchiveFile="+install.CacheArchive)
	}

	args = append(args, "-jar", install.ServerJar)
	args = append(args, "--assets", assetsRelPath())

	if cfg.BackupsEnabled() {
		args = append(args,
			"--backup-dir", install.BackupDir,
			"--backup-frequency", fmt.Sprintf("%d", cfg.BackupFrequency),
		)
	}

	args = append(args, passthrough...)

	return Invocation{
		Bin:  cfg.JavaBin,
		Args: args,
		Dir:  layout.ServerPath(),
	}
}

// assetsRelPath returns the asset bundle path relative to the server's
// working directory (Server/), where the bundle lives one level up.
func assetsRelPath() string {
	return filepath.Join("..", install.AssetsBundle)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
