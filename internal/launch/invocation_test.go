package launch

import (
	"slices"
	"testing"

	"github.com/jppabloc/hytale-dashboard/internal/config"
	"github.com/jppabloc/hytale-dashboard/internal/install"
)

func testConfig(backupFrequency int) *config.Config {
	return &config.Config{
		JavaBin:         "java",
		MemMin:          "2G",
		MemMax:          "4G",
		BackupFrequency: backupFrequency,
	}
}

func testScaffold(t *testing.T) *install.Scaffold {
	t.Helper()
	scaffold, err := install.NewScaffold(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if err := scaffold.Ensure(); err != nil {
		t.Fatal(err)
	}
	if err := scaffold.WriteServerJar([]byte("jar")); err != nil {
		t.Fatal(err)
	}
	return scaffold
}

func TestBuildWithoutOptionalFiles(t *testing.T) {
	scaffold := testScaffold(t)

	inv := Build(scaffold.Layout, testConfig(0), nil)

	want := []string{
		"-Xms2G", "-Xmx4G",
		"-jar", "HytaleServer.jar",
		"--assets", "../Assets.zip",
	}
	if !slices.Equal(inv.Args, want) {
		t.Errorf("args = %v, want %v", inv.Args, want)
	}
	if inv.Bin != "java" {
		t.Errorf("bin = %q, want java", inv.Bin)
	}
	if inv.Dir != scaffold.Layout.ServerPath() {
		t.Errorf("dir = %q, want %q", inv.Dir, scaffold.Layout.ServerPath())
	}
}

func TestBuildCacheFlagTracksArchive(t *testing.T) {
	scaffold := testScaffold(t)
	cfg := testConfig(0)

	inv := Build(scaffold.Layout, cfg, nil)
	if slices.Contains(inv.Args, "-XX:SharedArchiveFile=HytaleServer.jsa") {
		t.Fatal("cache flag present without cache archive")
	}

	if err := scaffold.WriteCache([]byte("jsa")); err != nil {
		t.Fatal(err)
	}

	inv = Build(scaffold.Layout, cfg, nil)
	if !slices.Contains(inv.Args, "-XX:SharedArchiveFile=HytaleServer.jsa") {
		t.Fatal("cache flag missing with cache archive present")
	}

	// The cache flag belongs with the JVM flags, before -jar
	cacheIdx := slices.Index(inv.Args, "-XX:SharedArchiveFile=HytaleServer.jsa")
	jarIdx := slices.Index(inv.Args, "-jar")
	if cacheIdx > jarIdx {
		t.Errorf("cache flag at %d after -jar at %d", cacheIdx, jarIdx)
	}
}

func TestBuildBackupFlags(t *testing.T) {
	scaffold := testScaffold(t)

	tests := []struct {
		name      string
		frequency int
		want      bool
	}{
		{"enabled", 30, true},
		{"disabled", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv := Build(scaffold.Layout, testConfig(tt.frequency), nil)

			has := slices.Contains(inv.Args, "--backup-dir")
			if has != tt.want {
				t.Errorf("backup flags present = %v, want %v (args %v)", has, tt.want, inv.Args)
			}
			if tt.want {
				idx := slices.Index(inv.Args, "--backup-frequency")
				if idx < 0 || inv.Args[idx+1] != "30" {
					t.Errorf("backup frequency missing or wrong in %v", inv.Args)
				}
			}
		})
	}
}

func TestBuildPassthroughLast(t *testing.T) {
	scaffold := testScaffold(t)

	inv := Build(scaffold.Layout, testConfig(15), []string{"--debug", "--port", "25565"})

	n := len(inv.Args)
	got := inv.Args[n-3:]
	if !slices.Equal(got, []string{"--debug", "--port", "25565"}) {
		t.Errorf("trailing args = %v, want passthrough verbatim", got)
	}
}
