package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
	_ "time/tzdata" // timezone names resolve without a system zoneinfo

	"gopkg.in/yaml.v3"
)

// Settings backends
const (
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

// Config represents the focusguard configuration file.
type Config struct {
	DBPath          string       `yaml:"db_path,omitempty"`  // defaults to ~/.focusguard/focusguard.db
	Timezone        string       `yaml:"timezone,omitempty"` // IANA name, defaults to the system zone
	SettingsBackend string       `yaml:"settings_backend"`   // "sqlite" or "redis"
	Redis           RedisConfig  `yaml:"redis"`
	Shield          ShieldConfig `yaml:"shield"`
	Run             RunConfig    `yaml:"run"`
	Log             LogConfig    `yaml:"log"`
}

// RedisConfig locates the shared settings store.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password,omitempty"`
	DB       int    `yaml:"db"`
}

// ShieldConfig selects what gets blocked and how hard to try.
type ShieldConfig struct {
	TargetsFile    string        `yaml:"targets_file,omitempty"` // defaults to ~/.focusguard/blocklist
	Targets        []string      `yaml:"targets"`
	OnStart        string        `yaml:"on_start,omitempty"`
	OnStop         string        `yaml:"on_stop,omitempty"`
	MaxAttempts    int           `yaml:"max_attempts"`
	InitialBackoff time.Duration `yaml:"initial_backoff"`
}

// RunConfig paces the foreground runner.
type RunConfig struct {
	TickInterval   time.Duration `yaml:"tick_interval"`
	ReconcileBurst int           `yaml:"reconcile_burst"`
}

// LogConfig controls the slog handler.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text or json
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() *Config {
	return &Config{
		SettingsBackend: BackendSQLite,
		Redis: RedisConfig{
			Addr: "localhost:6379",
		},
		Shield: ShieldConfig{
			MaxAttempts:    3,
			InitialBackoff: 200 * time.Millisecond,
		},
		Run: RunConfig{
			TickInterval:   30 * time.Second,
			ReconcileBurst: 1,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// DefaultPath returns ~/.focusguard/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".focusguard", "config.yaml"), nil
}

// LoadConfig reads the config file at path. A missing file yields the
// defaults; fields absent from the file keep their default values.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return cfg, nil
}

// SaveConfig writes cfg to path, creating its directory.
func SaveConfig(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// Validate checks values that would otherwise fail deep inside wiring.
func (c *Config) Validate() error {
	switch c.SettingsBackend {
	case BackendSQLite, BackendRedis:
	default:
		return fmt.Errorf("unknown settings_backend %q", c.SettingsBackend)
	}
	if c.SettingsBackend == BackendRedis && c.Redis.Addr == "" {
		return fmt.Errorf("redis.addr is required for the redis backend")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if c.Run.TickInterval <= 0 {
		return fmt.Errorf("run.tick_interval must be positive")
	}
	if c.Shield.MaxAttempts < 1 {
		return fmt.Errorf("shield.max_attempts must be at least 1")
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log.format %q", c.Log.Format)
	}
	return nil
}

// Location resolves the configured timezone. Empty means the local zone.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}
