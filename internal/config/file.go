package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml"
	"gopkg.in/yaml.v3"
)

// FileConfig mirrors Config for YAML, TOML and JSON config files. Durations
// are strings such as "30s" or "5m".
type FileConfig struct {
	APIBaseURL      string   `yaml:"api_base_url" toml:"api_base_url" json:"api_base_url"`
	UserID          string   `yaml:"user_id" toml:"user_id" json:"user_id"`
	UserEmail       string   `yaml:"user_email" toml:"user_email" json:"user_email"`
	DatabasePath    string   `yaml:"database_path" toml:"database_path" json:"database_path"`
	UsageFile       string   `yaml:"usage_file" toml:"usage_file" json:"usage_file"`
	RefreshInterval string   `yaml:"refresh_interval" toml:"refresh_interval" json:"refresh_interval"`
	RequestTimeout  string   `yaml:"request_timeout" toml:"request_timeout" json:"request_timeout"`
	DefaultPeriod   string   `yaml:"default_period" toml:"default_period" json:"default_period"`
	Timezone        string   `yaml:"timezone" toml:"timezone" json:"timezone"`
	MonthlyBudget   *float64 `yaml:"monthly_budget" toml:"monthly_budget" json:"monthly_budget"`
	ExportDir       string   `yaml:"export_dir" toml:"export_dir" json:"export_dir"`
	LogFile         string   `yaml:"log_file" toml:"log_file" json:"log_file"`
	LogLevel        string   `yaml:"log_level" toml:"log_level" json:"log_level"`
}

// LoadFile reads a TOML, YAML or JSON config file, chosen by extension.
func LoadFile(filePath string) (*FileConfig, error) {
	ext := strings.ToLower(filepath.Ext(filePath))

	info, err := os.Stat(filePath)
	if err != nil {
		return nil, fmt.Errorf("error accessing config file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory, not a file", filePath)
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var fc FileConfig
	switch ext {
	case ".toml":
		if err := toml.Unmarshal(data, &fc); err != nil {
			return nil, fmt.Errorf("error parsing TOML file: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &fc); err != nil {
			return nil, fmt.Errorf("error parsing YAML file: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &fc); err != nil {
			return nil, fmt.Errorf("error parsing JSON file: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config file format: %s", ext)
	}

	return &fc, nil
}

// apply overlays the non-empty file values onto cfg.
func (fc *FileConfig) apply(cfg *Config) error {
	setString(&cfg.APIBaseURL, strings.TrimRight(fc.APIBaseURL, "/"))
	setString(&cfg.DatabasePath, fc.DatabasePath)
	setString(&cfg.UsageFile, fc.UsageFile)
	setString(&cfg.DefaultPeriod, fc.DefaultPeriod)
	setString(&cfg.Timezone, fc.Timezone)
	setString(&cfg.ExportDir, fc.ExportDir)
	setString(&cfg.LogFile, fc.LogFile)
	setString(&cfg.LogLevel, strings.ToLower(fc.LogLevel))

	switch {
	case fc.UserID != "":
		cfg.UserID = strings.TrimSpace(fc.UserID)
	case fc.UserEmail != "":
		cfg.UserID = UserIDFromEmail(fc.UserEmail)
	}

	if fc.MonthlyBudget != nil {
		cfg.MonthlyBudget = *fc.MonthlyBudget
	}

	if fc.RefreshInterval != "" {
		d, err := time.ParseDuration(fc.RefreshInterval)
		if err != nil {
			return fmt.Errorf("refresh_interval: %w", err)
		}
		cfg.RefreshInterval = d
	}
	if fc.RequestTimeout != "" {
		d, err := time.ParseDuration(fc.RequestTimeout)
		if err != nil {
			return fmt.Errorf("request_timeout: %w", err)
		}
		cfg.RequestTimeout = d
	}
	return nil
}

func setString(dst *string, v string) {
	if v = strings.TrimSpace(v); v != "" {
		*dst = v
	}
}
