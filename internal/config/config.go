// Package config handles loading and parsing application configuration.
// It supports two sources for the file path (in priority order):
//  1. A command-line flag:      --config=/path/to/config.yaml
//  2. An environment variable:  CONFIG_PATH=/path/to/config.yaml
//
// An optional .env file in the working directory is loaded first, so
// every env:"..." override below can also live there during development.
package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Backend names accepted in store.backend.
const (
	BackendPocketBase = "pocketbase"
	BackendSQLite     = "sqlite"
	BackendPostgres   = "postgres"
)

// Config is the root configuration structure.
// Every field maps to a key in the YAML file AND can be overridden
// by the corresponding environment variable (env:"...").
type Config struct {
	// Env controls log format and verbosity.
	// Valid values: "dev", "staging", "prod"
	Env string `yaml:"env" env:"ENV" env-default:"dev"`

	// LogFile receives logs while the terminal UI owns stdout.
	LogFile string `yaml:"log_file" env:"LOG_FILE" env-default:"student-lookup.log"`

	Store      `yaml:"store"`
	PocketBase `yaml:"pocketbase"`
	SQLite     `yaml:"sqlite"`
	Postgres   `yaml:"postgres"`
	Lookup     `yaml:"lookup"`
	HTTPServer `yaml:"http_server"`
}

// Store selects the record store backend.
type Store struct {
	// Backend is one of "pocketbase", "sqlite", "postgres".
	Backend string `yaml:"backend" env:"STORE_BACKEND" env-default:"pocketbase"`
}

// PocketBase holds settings for the PocketBase HTTP backend.
type PocketBase struct {
	URL     string        `yaml:"url" env:"POCKETBASE_URL" env-default:"http://127.0.0.1:8090"`
	Token   string        `yaml:"token" env:"POCKETBASE_TOKEN"`
	Timeout time.Duration `yaml:"timeout" env:"POCKETBASE_TIMEOUT" env-default:"10s"`
}

// SQLite holds settings for the SQLite backend.
type SQLite struct {
	// Path is the filesystem path to the SQLite .db file.
	Path string `yaml:"path" env:"SQLITE_PATH" env-default:"storage/students.db"`
}

// Postgres holds settings for the PostgreSQL backend.
type Postgres struct {
	DSN string `yaml:"dsn" env:"POSTGRES_DSN"`
}

// Lookup holds settings for the lookup controller.
type Lookup struct {
	// Timeout bounds each store call made for a submit.
	Timeout time.Duration `yaml:"timeout" env:"LOOKUP_TIMEOUT" env-default:"5s"`
}

// HTTPServer holds settings specific to the web presenter.
type HTTPServer struct {
	// Addr is the TCP address the server listens on, e.g. "localhost:8082".
	Addr string `yaml:"address" env:"HTTP_SERVER_ADDR" env-default:"localhost:8082"`

	// AllowWrites registers POST /api/students on writable stores.
	AllowWrites bool `yaml:"allow_writes" env:"HTTP_ALLOW_WRITES" env-default:"false"`
}

// Load reads configuration from path, or from CONFIG_PATH when path is
// empty. With neither set, defaults and environment variables alone are
// used.
func Load(path string) (*Config, error) {
	// A missing .env is normal outside development.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("config: load .env: %w", err)
	}

	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}

	var cfg Config

	if path == "" {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("config: read env: %w", err)
		}
		return &cfg, cfg.validate()
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config: file does not exist: %s", path)
	}

	// cleanenv.ReadConfig reads the YAML file, then applies env:"..."
	// overrides and env-default values.
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	return &cfg, cfg.validate()
}

// MustLoad is Load for program startup: it exits the process on failure,
// so if it returns the config is valid.
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		log.Fatalf("cannot load config: %s", err.Error())
	}
	return cfg
}

func (c *Config) validate() error {
	switch c.Store.Backend {
	case BackendPocketBase:
		if c.PocketBase.URL == "" {
			return errors.New("config: pocketbase.url is required")
		}
	case BackendSQLite:
		if c.SQLite.Path == "" {
			return errors.New("config: sqlite.path is required")
		}
	case BackendPostgres:
		if c.Postgres.DSN == "" {
			return errors.New("config: postgres.dsn is required")
		}
	default:
		return fmt.Errorf("config: unknown store backend %q", c.Store.Backend)
	}

	if c.Lookup.Timeout <= 0 {
		return errors.New("config: lookup.timeout must be positive")
	}
	return nil
}
