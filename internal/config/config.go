// Package config loads and validates application configuration.
//
// Values come from three layers, later layers winning: built-in defaults, an
// optional YAML file named by CONFIG_FILE, and environment variables. A .env
// file in the working directory is loaded into the environment first, without
// overriding variables that are already set.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Driver names as registered with database/sql.
const (
	DriverPostgres = "pgx"
	DriverSQLite   = "sqlite3"
)

// Config holds all configuration values for the server and the CLI.
type Config struct {
	// Port is the TCP port the HTTP server listens on. Defaults to "8080".
	Port string `yaml:"port"`

	// DatabaseURL selects the store. Required.
	// postgres:// and postgresql:// URLs use Postgres; sqlite://path,
	// file:path and :memory: use SQLite.
	DatabaseURL string `yaml:"database_url"`

	// LogLevel controls the minimum log level. Defaults to "info".
	// Valid values: debug, info, warn, error.
	LogLevel string `yaml:"log_level"`

	// CORSOrigins is the list of allowed cross-origin request origins.
	// Defaults to ["http://localhost:5173"] (Vite dev server).
	// Set CORS_ORIGINS to a comma-separated list to override.
	CORSOrigins []string `yaml:"cors_origins"`

	// MaxBodyBytes caps request bodies. Defaults to 1 MiB; 0 disables the cap.
	MaxBodyBytes int64 `yaml:"max_body_bytes"`

	// HistoryLimit is the number of history entries returned when a request
	// names no limit. Defaults to 50.
	HistoryLimit int `yaml:"history_limit"`

	// NodeID is the snowflake node number used for history sequence numbers.
	// Instances writing to the same database need distinct values (0-1023).
	NodeID int64 `yaml:"node_id"`

	// AutoMigrate applies pending migrations when the server starts.
	AutoMigrate bool `yaml:"auto_migrate"`
}

// Default returns the configuration used when nothing overrides it.
func Default() Config {
	return Config{
		Port:         "8080",
		LogLevel:     "info",
		CORSOrigins:  []string{"http://localhost:5173"},
		MaxBodyBytes: 1 << 20,
		HistoryLimit: 50,
	}
}

// Load reads configuration and returns a Config.
// Returns an error listing any required variables that are not set, or the
// first value that cannot be parsed.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("config: load .env: %w", err)
	}

	cfg := Default()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}
	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}

	var missing []string
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}
	if len(missing) > 0 {
		return Config{}, fmt.Errorf("required environment variables not set: %s", strings.Join(missing, ", "))
	}

	if _, _, err := cfg.Store(); err != nil {
		return Config{}, err
	}
	if cfg.NodeID < 0 || cfg.NodeID > 1023 {
		return Config{}, fmt.Errorf("config: NODE_ID must be between 0 and 1023, got %d", cfg.NodeID)
	}
	return cfg, nil
}

// Store returns the database/sql driver name and the DSN that driver expects.
func (c Config) Store() (driver, dsn string, err error) {
	u := c.DatabaseURL
	switch {
	case strings.HasPrefix(u, "postgres://"), strings.HasPrefix(u, "postgresql://"):
		return DriverPostgres, u, nil
	case strings.HasPrefix(u, "sqlite://"):
		return DriverSQLite, strings.TrimPrefix(u, "sqlite://"), nil
	case strings.HasPrefix(u, "file:"), u == ":memory:":
		return DriverSQLite, u, nil
	}
	return "", "", fmt.Errorf("config: unsupported DATABASE_URL scheme in %q", redact(u))
}

// loadFile overlays the YAML file at path onto cfg.
func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	return nil
}

// applyEnv overlays every set environment variable onto cfg.
func applyEnv(cfg *Config) error {
	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.DatabaseURL = getEnv("DATABASE_URL", cfg.DatabaseURL)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		cfg.CORSOrigins = splitCSV(v)
	}

	var err error
	if cfg.MaxBodyBytes, err = getInt("MAX_BODY_BYTES", cfg.MaxBodyBytes); err != nil {
		return err
	}
	limit, err := getInt("HISTORY_LIMIT", int64(cfg.HistoryLimit))
	if err != nil {
		return err
	}
	cfg.HistoryLimit = int(limit)
	if cfg.NodeID, err = getInt("NODE_ID", cfg.NodeID); err != nil {
		return err
	}
	if v := os.Getenv("AUTO_MIGRATE"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("config: AUTO_MIGRATE: %w", err)
		}
		cfg.AutoMigrate = b
	}
	return nil
}

// getEnv returns the value of the environment variable named by key,
// or fallback if the variable is not set or is empty.
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int64) (int64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	return n, nil
}

// splitCSV splits a comma-separated string into a trimmed slice, ignoring empty entries.
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// redact drops everything after the scheme so credentials never reach logs.
func redact(u string) string {
	if i := strings.Index(u, "://"); i >= 0 {
		return u[:i+3] + "..."
	}
	if len(u) > 8 {
		return u[:8] + "..."
	}
	return u
}
