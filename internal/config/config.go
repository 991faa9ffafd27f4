// Package config contains everything related to configuration
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/j-veylop/billing-dashboard-tui/internal/models"
)

// ErrMissingUserID is returned when neither a user id nor an email is configured.
var ErrMissingUserID = errors.New("no user id configured: set USAGE_USER_ID or USAGE_USER_EMAIL")

// appDirName names the per-user config and data directories.
const appDirName = "billing-dashboard"

// Config holds the application configuration.
type Config struct {
	APIBaseURL      string        `validate:"required,url"`
	UserID          string        `validate:"omitempty,excludesall=/?#"`
	DatabasePath    string        `validate:"required"`
	UsageFile       string        `validate:"omitempty"`
	RefreshInterval time.Duration `validate:"gte=0"`
	RequestTimeout  time.Duration `validate:"gt=0"`
	DefaultPeriod   string        `validate:"oneof=7d 30d 90d 1y"`
	Timezone        string        `validate:"tz"`
	MonthlyBudget   float64       `validate:"gte=0"`
	ExportDir       string        `validate:"required"`
	LogFile         string
	LogLevel        string `validate:"oneof=debug info warn error"`

	// Offline reads usage from the local cache instead of the API.
	Offline bool
	// ConfigFile is the config file that was applied, if any.
	ConfigFile string
}

// Default values
const (
	defaultAPIBaseURL      = "http://localhost:8000"
	defaultRefreshInterval = 5 * time.Minute
	defaultRequestTimeout  = 30 * time.Second
	defaultExportDir       = "."
	defaultLogLevel        = "info"
	defaultTimezone        = "Local"
)

// Load reads configuration from .env files, an optional config file and
// environment variables, in increasing order of precedence. configPath may be
// empty, in which case BDT_CONFIG is consulted.
func Load(configPath string) (*Config, error) {
	// Try loading .env from multiple locations
	for _, path := range getEnvPaths() {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			break
		}
	}

	cfg := defaults()

	if configPath == "" {
		configPath = os.Getenv("BDT_CONFIG")
	}
	if configPath != "" {
		fc, err := LoadFile(configPath)
		if err != nil {
			return nil, err
		}
		if err := fc.apply(cfg); err != nil {
			return nil, fmt.Errorf("invalid config file %s: %w", configPath, err)
		}
		cfg.ConfigFile = configPath
	}

	applyEnv(cfg)

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	// Ensure database directory exists
	if err := ensureDir(filepath.Dir(cfg.DatabasePath)); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	return cfg, nil
}

func defaults() *Config {
	return &Config{
		APIBaseURL:      defaultAPIBaseURL,
		DatabasePath:    getDefaultDatabasePath(),
		RefreshInterval: defaultRefreshInterval,
		RequestTimeout:  defaultRequestTimeout,
		DefaultPeriod:   string(models.DefaultPeriod),
		Timezone:        defaultTimezone,
		MonthlyBudget:   models.DefaultMonthlyBudget,
		ExportDir:       defaultExportDir,
		LogLevel:        defaultLogLevel,
	}
}

func applyEnv(cfg *Config) {
	cfg.APIBaseURL = strings.TrimRight(getEnvString("USAGE_API_BASE_URL", cfg.APIBaseURL), "/")
	cfg.DatabasePath = getEnvString("DATABASE_PATH", cfg.DatabasePath)
	cfg.UsageFile = getEnvString("USAGE_FILE", cfg.UsageFile)
	cfg.RefreshInterval = getEnvDuration("USAGE_REFRESH_INTERVAL", cfg.RefreshInterval)
	cfg.RequestTimeout = getEnvDuration("REQUEST_TIMEOUT", cfg.RequestTimeout)
	cfg.DefaultPeriod = getEnvString("DEFAULT_PERIOD", cfg.DefaultPeriod)
	cfg.Timezone = getEnvString("TIMEZONE", cfg.Timezone)
	cfg.MonthlyBudget = getEnvFloat("MONTHLY_BUDGET", cfg.MonthlyBudget)
	cfg.ExportDir = getEnvString("EXPORT_DIR", cfg.ExportDir)
	cfg.LogFile = getEnvString("LOG_FILE", cfg.LogFile)
	cfg.LogLevel = strings.ToLower(getEnvString("LOG_LEVEL", cfg.LogLevel))

	if id := os.Getenv("USAGE_USER_ID"); strings.TrimSpace(id) != "" {
		cfg.UserID = strings.TrimSpace(id)
	} else if email := os.Getenv("USAGE_USER_EMAIL"); email != "" {
		cfg.UserID = UserIDFromEmail(email)
	}
}

// UserIDFromEmail returns the part of an email address before the @.
// Inputs without an @ are returned trimmed.
func UserIDFromEmail(email string) string {
	prefix, _, _ := strings.Cut(strings.TrimSpace(email), "@")
	return strings.TrimSpace(prefix)
}

// SetUser sets the user id from an id or an email address.
func (c *Config) SetUser(user string) {
	if strings.Contains(user, "@") {
		c.UserID = UserIDFromEmail(user)
		return
	}
	c.UserID = strings.TrimSpace(user)
}

// RequireUserID returns ErrMissingUserID when no user id is set.
func (c *Config) RequireUserID() error {
	if c.UserID == "" {
		return ErrMissingUserID
	}
	return nil
}

// Location resolves the configured timezone. "Local" and "" map to time.Local.
func (c *Config) Location() *time.Location {
	loc, err := loadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// Period returns the configured default period.
func (c *Config) Period() models.Period {
	p, err := models.ParsePeriod(c.DefaultPeriod)
	if err != nil {
		return models.DefaultPeriod
	}
	return p
}

func loadLocation(name string) (*time.Location, error) {
	if name == "" || strings.EqualFold(name, "local") {
		return time.Local, nil
	}
	return time.LoadLocation(name)
}

// getEnvPaths returns a list of paths to check for .env files.
func getEnvPaths() []string {
	var paths []string

	// Current directory
	if cwd, err := os.Getwd(); err == nil {
		paths = append(paths, filepath.Join(cwd, ".env"))
	}

	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		paths = append(paths, filepath.Join(xdg, appDirName, ".env"))
	}

	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", appDirName, ".env"))
	}

	return paths
}

// getDefaultDatabasePath returns the default path for the SQLite cache.
func getDefaultDatabasePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "usage.db"
	}
	return filepath.Join(home, ".local", "share", appDirName, "usage.db")
}

// getEnvString retrieves a string environment variable or returns the default.
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvDuration retrieves a duration environment variable or returns the default.
// Accepts values like "30s", "1m", "500ms".
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
		// Try parsing as seconds if no unit specified
		if secs, err := strconv.Atoi(value); err == nil {
			return time.Duration(secs) * time.Second
		}
	}
	return defaultValue
}

// getEnvFloat retrieves a float environment variable or returns the default.
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err == nil {
			return f
		}
	}
	return defaultValue
}

// ensureDir creates a directory and all parent directories if they don't exist.
func ensureDir(path string) error {
	if path == "" || path == "." {
		return nil
	}
	return os.MkdirAll(path, 0o750)
}
