// Package config loads wrapper and worker configuration with layered
// precedence: built-in defaults overridden by HYTALE_-prefixed
// environment variables.
package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is the prefix shared by all configuration environment variables.
const EnvPrefix = "HYTALE_"

// Config holds all settings for the wrapper and worker binaries.
// It is loaded once at startup and treated as read-only afterwards.
type Config struct {
	// InstallRoot is the absolute path of the server installation
	InstallRoot string `koanf:"install_root"`

	// JavaBin is the Java executable used to launch the server
	JavaBin string `koanf:"java_bin"`

	// MemMin is the initial JVM heap size (-Xms)
	MemMin string `koanf:"mem_min"`

	// MemMax is the maximum JVM heap size (-Xmx)
	MemMax string `koanf:"mem_max"`

	// BackupFrequency is the world backup interval in minutes.
	// Zero disables backups entirely.
	BackupFrequency int `koanf:"backup_frequency"`

	// LogLevel is the minimum log level: debug, info, warn, error
	LogLevel string `koanf:"log_level"`

	// LogFormat is the log output format: json or console
	LogFormat string `koanf:"log_format"`

	// Worker configures the dashboard collector
	Worker WorkerConfig `koanf:"worker"`
}

// WorkerConfig holds settings for the dashboard collector binary.
type WorkerConfig struct {
	// DBPath is the SQLite database file for dashboard data
	DBPath string `koanf:"db_path"`

	// ServiceName is the systemd unit whose journal is scanned for
	// server log lines
	ServiceName string `koanf:"service_name"`

	// PerfInterval is how often performance metrics are sampled
	PerfInterval time.Duration `koanf:"perf_interval"`

	// EventInterval is how often the journal is scanned for player events
	EventInterval time.Duration `koanf:"event_interval"`

	// CleanupInterval is how often old rows are pruned
	CleanupInterval time.Duration `koanf:"cleanup_interval"`

	// PerfRetention is how long performance samples are kept
	PerfRetention time.Duration `koanf:"perf_retention"`

	// EventRetention is how long player events are kept
	EventRetention time.Duration `koanf:"event_retention"`
}

// defaultConfig returns a Config with all default values. Defaults are
// applied first, then overridden by environment variables.
func defaultConfig() *Config {
	return &Config{
		InstallRoot:     "/opt/hytale",
		JavaBin:         "java",
		MemMin:          "2G",
		MemMax:          "4G",
		BackupFrequency: 60,
		LogLevel:        "info",
		LogFormat:       "console",
		Worker: WorkerConfig{
			DBPath:          "/opt/hytale/data/dashboard.db",
			ServiceName:     "hytale",
			PerfInterval:    5 * time.Second,
			EventInterval:   10 * time.Second,
			CleanupInterval: time.Hour,
			PerfRetention:   24 * time.Hour,
			EventRetention:  7 * 24 * time.Hour,
		},
	}
}

// Load builds the configuration from defaults and environment variables.
// Environment variables win: HYTALE_MEM_MAX=8G overrides the default,
// HYTALE_WORKER_DB_PATH targets the nested worker section.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envTransform), nil); err != nil {
		return nil, fmt.Errorf("loading environment: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// envTransform maps environment variable names to koanf paths:
//
//	HYTALE_MEM_MIN        -> mem_min
//	HYTALE_INSTALL_ROOT   -> install_root
//	HYTALE_WORKER_DB_PATH -> worker.db_path
func envTransform(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
	if rest, ok := strings.CutPrefix(key, "worker_"); ok {
		return "worker." + rest
	}
	return key
}

// Validate checks invariants the rest of the system depends on.
func (c *Config) Validate() error {
	if !filepath.IsAbs(c.InstallRoot) {
		return fmt.Errorf("install root %q: must be an absolute path", c.InstallRoot)
	}
	if c.BackupFrequency < 0 {
		return fmt.Errorf("backup frequency %d: must be >= 0", c.BackupFrequency)
	}
	if c.MemMin == "" || c.MemMax == "" {
		return fmt.Errorf("memory bounds must not be empty")
	}
	if c.JavaBin == "" {
		return fmt.Errorf("java binary must not be empty")
	}
	return nil
}

// BackupsEnabled reports whether world backups are configured.
func (c *Config) BackupsEnabled() bool {
	return c.BackupFrequency > 0
}
