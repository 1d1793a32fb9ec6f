package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/lazypower/kaizen/internal/engine"
	"github.com/lazypower/kaizen/internal/progress"
	"github.com/lazypower/kaizen/internal/recall"
	"github.com/lazypower/kaizen/internal/store"
)

// Config holds all kaizen configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Storage  StorageConfig  `yaml:"storage"`
	Recall   recall.Config  `yaml:"recall"`
	Sync     SyncConfig     `yaml:"sync"`
	Timezone string         `yaml:"timezone"`
}

type ServerConfig struct {
	Bind string `yaml:"bind"`
	Port int    `yaml:"port"`
}

type StorageConfig struct {
	Backend string `yaml:"backend"` // "file" or "sqlite"
	DataDir string `yaml:"data_dir"`
	DBPath  string `yaml:"db_path"`
}

type SyncConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Schedule string `yaml:"schedule"` // cron spec, evaluated in Timezone
	Mode     string `yaml:"mode"`     // "recompute" or "additive"
}

const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// Default returns a Config with sensible defaults.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Bind: "127.0.0.1",
			Port: 37778,
		},
		Storage: StorageConfig{
			Backend: BackendFile,
			DataDir: "", // resolved at runtime via store.DefaultDataDir()
		},
		Recall: recall.Config{
			Ladder:      append([]int(nil), recall.DefaultLadder...),
			DailySample: recall.DefaultDailySample,
		},
		Sync: SyncConfig{
			Enabled:  true,
			Schedule: engine.DefaultSyncSchedule,
			Mode:     "recompute",
		},
		Timezone: "Local",
	}
}

// DefaultConfigPath returns ~/.kaizen/config.yaml.
func DefaultConfigPath() (string, error) {
	dir, err := store.DefaultDataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Load reads path over the defaults, then applies environment overrides.
// An empty path means DefaultConfigPath, which may be absent.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		p, err := DefaultConfigPath()
		if err != nil {
			return cfg, err
		}
		path = p
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return cfg, fmt.Errorf("read config: %w", err)
	}

	if err := cfg.applyEnv(); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("KAIZEN_DATA_DIR"); v != "" {
		c.Storage.DataDir = v
	}
	if v := os.Getenv("KAIZEN_BACKEND"); v != "" {
		c.Storage.Backend = v
	}
	if v := os.Getenv("KAIZEN_DB"); v != "" {
		c.Storage.DBPath = v
	}
	if v := os.Getenv("KAIZEN_BIND"); v != "" {
		c.Server.Bind = v
	}
	if v := os.Getenv("KAIZEN_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("KAIZEN_PORT: %w", err)
		}
		c.Server.Port = port
	}
	if v := os.Getenv("KAIZEN_SYNC_SCHEDULE"); v != "" {
		c.Sync.Schedule = v
	}
	if v := os.Getenv("TZ"); v != "" {
		c.Timezone = v
	}
	return nil
}

// Validate checks values that would otherwise fail deep inside startup.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case BackendFile, BackendSQLite:
	default:
		return fmt.Errorf("storage backend %q: want %q or %q", c.Storage.Backend, BackendFile, BackendSQLite)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server port %d out of range", c.Server.Port)
	}
	switch c.Sync.Mode {
	case "", "recompute", "additive":
	default:
		return fmt.Errorf("sync mode %q: want \"recompute\" or \"additive\"", c.Sync.Mode)
	}
	if c.Sync.Enabled {
		if err := engine.ValidateSchedule(c.Sync.Schedule); err != nil {
			return err
		}
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	_, err := recall.New(c.Recall)
	return err
}

// ListenAddr returns the bind:port address string.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Bind, c.Server.Port)
}

// Location resolves Timezone; empty and "Local" mean the host zone.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// DataDir returns Storage.DataDir or the default.
func (c *Config) DataDir() (string, error) {
	if c.Storage.DataDir != "" {
		return c.Storage.DataDir, nil
	}
	return store.DefaultDataDir()
}

// OpenBackend opens the configured storage backend. The closer is a no-op
// for the file backend.
func (c *Config) OpenBackend() (store.Backend, func() error, error) {
	dir, err := c.DataDir()
	if err != nil {
		return nil, nil, err
	}
	if c.Storage.Backend == BackendSQLite {
		path := c.Storage.DBPath
		if path == "" {
			path = filepath.Join(dir, "kaizen.db")
		}
		db, err := store.Open(path)
		if err != nil {
			return nil, nil, err
		}
		return db, db.Close, nil
	}
	f, err := store.OpenFiles(dir)
	if err != nil {
		return nil, nil, err
	}
	return f, func() error { return nil }, nil
}

// EngineOptions translates the recall, sync and timezone settings.
func (c *Config) EngineOptions() (engine.Options, error) {
	sched, err := recall.New(c.Recall)
	if err != nil {
		return engine.Options{}, err
	}
	loc, err := c.Location()
	if err != nil {
		return engine.Options{}, err
	}
	return engine.Options{
		Scheduler: sched,
		SyncMode:  progress.ParseMode(c.Sync.Mode),
		Location:  loc,
	}, nil
}
