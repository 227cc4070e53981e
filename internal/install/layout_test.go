package install

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNewLayout(t *testing.T) {
	layout, err := NewLayout("/opt/hytale")
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"server dir", layout.ServerPath(), "/opt/hytale/Server"},
		{"jar", layout.JarPath(), "/opt/hytale/Server/HytaleServer.jar"},
		{"cache", layout.CachePath(), "/opt/hytale/Server/HytaleServer.jsa"},
		{"licenses", layout.LicensesPath(), "/opt/hytale/Server/licenses"},
		{"launcher", layout.LauncherPath(), "/opt/hytale/Server/start.sh"},
		{"assets", layout.AssetsPath(), "/opt/hytale/Assets.zip"},
		{"staging", layout.StagingPath(), "/opt/hytale/updater/staging"},
		{"staged jar", layout.StagedJarPath(), "/opt/hytale/updater/staging/Server/HytaleServer.jar"},
		{"previous jar", layout.PreviousJarPath(), "/opt/hytale/updater/previous/HytaleServer.jar"},
		{"pipe", layout.PipePath(), "/opt/hytale/.console_pipe"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}
}

func TestNewLayoutRelativeRoot(t *testing.T) {
	layout, err := NewLayout("hytale")
	if err != nil {
		t.Fatal(err)
	}
	if !filepath.IsAbs(layout.Root) {
		t.Errorf("Root = %q, want absolute path", layout.Root)
	}
}

func TestScaffold(t *testing.T) {
	scaffold, err := NewScaffold(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	if err := scaffold.Ensure(); err != nil {
		t.Fatal(err)
	}

	if err := scaffold.WriteServerJar([]byte("jar-v1")); err != nil {
		t.Fatal(err)
	}
	if err := scaffold.StageServerJar([]byte("jar-v2")); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(scaffold.Layout.JarPath())
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "jar-v1" {
		t.Errorf("active jar = %q, want jar-v1", data)
	}

	info, err := os.Stat(scaffold.Layout.StagedJarPath())
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != ExecMode {
		t.Errorf("staged jar mode = %v, want %v", info.Mode().Perm(), os.FileMode(ExecMode))
	}
}
