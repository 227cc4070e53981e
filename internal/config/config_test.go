package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/opt/hytale", cfg.InstallRoot)
	assert.Equal(t, "java", cfg.JavaBin)
	assert.Equal(t, "2G", cfg.MemMin)
	assert.Equal(t, "4G", cfg.MemMax)
	assert.Equal(t, 60, cfg.BackupFrequency)
	assert.Equal(t, 5*time.Second, cfg.Worker.PerfInterval)
	assert.True(t, cfg.BackupsEnabled())
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("HYTALE_INSTALL_ROOT", "/srv/hytale")
	t.Setenv("HYTALE_MEM_MAX", "8G")
	t.Setenv("HYTALE_BACKUP_FREQUENCY", "0")
	t.Setenv("HYTALE_WORKER_DB_PATH", "/srv/hytale/data/dashboard.db")
	t.Setenv("HYTALE_WORKER_PERF_INTERVAL", "15s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/srv/hytale", cfg.InstallRoot)
	assert.Equal(t, "8G", cfg.MemMax)
	assert.Equal(t, "2G", cfg.MemMin, "untouched keys keep defaults")
	assert.Equal(t, 0, cfg.BackupFrequency)
	assert.False(t, cfg.BackupsEnabled())
	assert.Equal(t, "/srv/hytale/data/dashboard.db", cfg.Worker.DBPath)
	assert.Equal(t, 15*time.Second, cfg.Worker.PerfInterval)
}

func TestLoadRejectsRelativeRoot(t *testing.T) {
	t.Setenv("HYTALE_INSTALL_ROOT", "hytale")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "absolute")
}

func TestLoadRejectsNegativeBackupFrequency(t *testing.T) {
	t.Setenv("HYTALE_BACKUP_FREQUENCY", "-5")

	_, err := Load()
	require.Error(t, err)
}

func TestEnvTransform(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"HYTALE_MEM_MIN", "mem_min"},
		{"HYTALE_INSTALL_ROOT", "install_root"},
		{"HYTALE_LOG_LEVEL", "log_level"},
		{"HYTALE_WORKER_DB_PATH", "worker.db_path"},
		{"HYTALE_WORKER_PERF_INTERVAL", "worker.perf_interval"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, envTransform(tt.in))
		})
	}
}
