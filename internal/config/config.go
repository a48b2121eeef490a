// Package config loads service settings from an optional YAML file and the
// environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"asset-catalog/internal/catalog/infrastructure/sqlstore"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	envPrefix  = "CATALOG_"
	configPath = "CATALOG_CONFIG"
)

// Config holds process settings.
type Config struct {
	StoreDriver     string        `yaml:"store_driver" env:"STORE_DRIVER"`
	StorePath       string        `yaml:"store_path" env:"STORE_PATH"`
	DatabaseURL     string        `yaml:"database_url" env:"DATABASE_URL"`
	HTTPAddr        string        `yaml:"http_addr" env:"HTTP_ADDR"`
	RequestTimeout  time.Duration `yaml:"request_timeout" env:"REQUEST_TIMEOUT"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT"`
}

// Defaults returns the settings used when nothing overrides them.
func Defaults() Config {
	return Config{
		StoreDriver:     "sqlite",
		StorePath:       filepath.FromSlash("var/catalog.sqlite"),
		HTTPAddr:        "127.0.0.1:8080",
		RequestTimeout:  30 * time.Second,
		ShutdownTimeout: 10 * time.Second,
	}
}

// Load applies defaults, then the YAML file named by CATALOG_CONFIG, then
// CATALOG_* environment variables. A .env file in the working directory is
// loaded first when present; it never overrides variables already set.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("config: load .env: %w", err)
	}

	cfg := Defaults()
	if path := os.Getenv(configPath); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: envPrefix}); err != nil {
		return cfg, fmt.Errorf("config: parse env: %w", err)
	}
	if dialect, err := cfg.Dialect(); err == nil {
		cfg.StoreDriver = string(dialect)
	}
	return cfg, cfg.Validate()
}

// Dialect resolves StoreDriver, accepting the aliases sqlstore understands.
func (c Config) Dialect() (sqlstore.Dialect, error) {
	dialect, err := sqlstore.ParseDialect(c.StoreDriver)
	if err != nil {
		return "", fmt.Errorf("config: %w", err)
	}
	return dialect, nil
}

// Validate checks that the selected store is usable.
func (c Config) Validate() error {
	dialect, err := c.Dialect()
	if err != nil {
		return err
	}
	switch dialect {
	case sqlstore.DialectSQLite:
		if strings.TrimSpace(c.StorePath) == "" {
			return errors.New("config: store_path required for sqlite")
		}
	case sqlstore.DialectPostgres:
		if strings.TrimSpace(c.DatabaseURL) == "" {
			return errors.New("config: database_url required for postgres")
		}
	}
	if strings.TrimSpace(c.HTTPAddr) == "" {
		return errors.New("config: http_addr required")
	}
	return nil
}

// StoreSource returns the file path or DSN for the selected driver.
func (c Config) StoreSource() string {
	if dialect, _ := c.Dialect(); dialect == sqlstore.DialectPostgres {
		return c.DatabaseURL
	}
	return c.StorePath
}
