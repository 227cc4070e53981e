package install

import (
	"fmt"
	"os"
	"path/filepath"
)

// Scaffold builds a scratch install tree for unprivileged operation.
// It is used by development tooling and by tests that need a realistic
// install root without touching a real server.
type Scaffold struct {
	// Layout resolves paths beneath the scratch root
	Layout Layout
}

// NewScaffold creates a Scaffold rooted at base.
func NewScaffold(base string) (*Scaffold, error) {
	layout, err := NewLayout(base)
	if err != nil {
		return nil, err
	}
	return &Scaffold{Layout: layout}, nil
}

// Ensure creates the active install directory structure if it doesn't exist.
func (s *Scaffold) Ensure() error {
	dirs := []string{
		s.Layout.ServerPath(),
		s.Layout.LicensesPath(),
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, DirMode); err != nil {
			return fmt.Errorf("creating directory %s: %w", dir, err)
		}
	}

	return nil
}

// WriteServerJar writes the active server binary with the given contents.
func (s *Scaffold) WriteServerJar(data []byte) error {
	return s.write(s.Layout.JarPath(), data, ExecMode)
}

// WriteCache writes the active acceleration cache archive.
func (s *Scaffold) WriteCache(data []byte) error {
	return s.write(s.Layout.CachePath(), data, FileMode)
}

// WriteLauncher writes the wrapper launch script.
func (s *Scaffold) WriteLauncher(data []byte) error {
	return s.write(s.Layout.LauncherPath(), data, ExecMode)
}

// WriteAssets writes the asset bundle at the install root.
func (s *Scaffold) WriteAssets(data []byte) error {
	return s.write(s.Layout.AssetsPath(), data, FileMode)
}

// WriteLicense writes a file into the active license subtree.
func (s *Scaffold) WriteLicense(name string, data []byte) error {
	return s.write(filepath.Join(s.Layout.LicensesPath(), name), data, FileMode)
}

// StageServerJar writes a staged server binary, arming a pending update.
func (s *Scaffold) StageServerJar(data []byte) error {
	return s.write(s.Layout.StagedJarPath(), data, ExecMode)
}

// StageCache writes a staged acceleration cache archive.
func (s *Scaffold) StageCache(data []byte) error {
	return s.write(s.Layout.StagedCachePath(), data, FileMode)
}

// StageLauncher writes a staged launch script. The applier must skip it.
func (s *Scaffold) StageLauncher(data []byte) error {
	return s.write(filepath.Join(s.Layout.StagedServerPath(), LauncherScript), data, ExecMode)
}

// StageAssets writes a staged asset bundle.
func (s *Scaffold) StageAssets(data []byte) error {
	return s.write(s.Layout.StagedAssetsPath(), data, FileMode)
}

// StageLicense writes a file into the staged license subtree.
func (s *Scaffold) StageLicense(name string, data []byte) error {
	return s.write(filepath.Join(s.Layout.StagedLicensesPath(), name), data, FileMode)
}

func (s *Scaffold) write(path string, data []byte, mode os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(path), DirMode); err != nil {
		return fmt.Errorf("creating directory %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, data, mode); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
