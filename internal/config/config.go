package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Store backends understood by store.Open.
const (
	BackendCSV    = "csv"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

// Account database drivers.
const (
	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"
)

// Environment overrides applied after the file is read.
const (
	StoreEnv    = "JURNAL_STORE"
	RedisURLEnv = "JURNAL_REDIS_URL"
)

// Config mirrors config.yaml in the jurnal home directory.
type Config struct {
	// Author is the default session display name.
	Author    string   `yaml:"author"`
	Equipment []string `yaml:"equipment"`

	Store    Store    `yaml:"store"`
	Accounts Accounts `yaml:"accounts"`
	Log      Log      `yaml:"log"`
}

type Store struct {
	Backend  string `yaml:"backend"`
	Resource string `yaml:"resource"`
	// Order is "insertion" or "date-desc".
	Order       string `yaml:"order"`
	SQLitePath  string `yaml:"sqlite_path"`
	RedisURL    string `yaml:"redis_url"`
	RedisPrefix string `yaml:"redis_prefix"`
}

type Accounts struct {
	Enabled bool   `yaml:"enabled"`
	Driver  string `yaml:"driver"`
	Path    string `yaml:"path"`
	MySQL   MySQL  `yaml:"mysql"`
}

type MySQL struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
}

type Log struct {
	Level string `yaml:"level"`
}

// Default returns the configuration used when no config.yaml exists.
func Default() Config {
	return Config{
		Store: Store{
			Backend:     BackendCSV,
			Resource:    "data",
			Order:       "insertion",
			RedisPrefix: "jurnal:sheet:",
		},
		Accounts: Accounts{
			Driver: DriverSQLite,
		},
		Log: Log{Level: "info"},
	}
}

// Load reads path over the defaults. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return Config{}, fmt.Errorf("read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	applyEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Save writes cfg as YAML to path.
func Save(path string, cfg Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// Validate checks enumerated settings.
func (c Config) Validate() error {
	switch c.Store.Backend {
	case BackendCSV, BackendSQLite, BackendRedis:
	default:
		return fmt.Errorf("unknown store backend %q (expected csv|sqlite|redis)", c.Store.Backend)
	}
	switch c.Store.Order {
	case "insertion", "date-desc":
	default:
		return fmt.Errorf("unknown store order %q (expected insertion|date-desc)", c.Store.Order)
	}
	if c.Store.Backend == BackendRedis && c.Store.RedisURL == "" {
		return errors.New("store.redis_url is required for the redis backend")
	}
	if c.Accounts.Enabled {
		switch c.Accounts.Driver {
		case DriverSQLite, DriverMySQL:
		default:
			return fmt.Errorf("unknown accounts driver %q (expected sqlite|mysql)", c.Accounts.Driver)
		}
	}
	return nil
}

func applyEnv(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv(StoreEnv)); v != "" {
		cfg.Store.Backend = v
	}
	if v := strings.TrimSpace(os.Getenv(RedisURLEnv)); v != "" {
		cfg.Store.RedisURL = v
	}
}
