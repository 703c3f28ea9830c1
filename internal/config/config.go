// Package config loads engine configuration from defaults, an optional TOML
// file, and BILLFLOW_-prefixed environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all engine settings.
type Config struct {
	Store      StoreConfig      `mapstructure:"store"`
	Classifier ClassifierConfig `mapstructure:"classifier"`
	Status     StatusConfig     `mapstructure:"status"`
	Jobs       JobsConfig       `mapstructure:"jobs"`
	Export     ExportConfig     `mapstructure:"export"`
}

// StoreConfig selects and parameterizes the document store backend.
type StoreConfig struct {
	// Backend is "memory" or "firestore".
	Backend    string `mapstructure:"backend"`
	ProjectID  string `mapstructure:"project_id"`
	DatabaseID string `mapstructure:"database_id"`
}

// ClassifierConfig holds payment-timing thresholds.
type ClassifierConfig struct {
	ExtraPrincipalRatio float64 `mapstructure:"extra_principal_ratio"`
	AdvanceDays         int     `mapstructure:"advance_days"`
}

// StatusConfig holds status derivation settings.
type StatusConfig struct {
	DueSoonDays int `mapstructure:"due_soon_days"`
}

// JobsConfig holds recompute queue settings.
type JobsConfig struct {
	DebounceSeconds int `mapstructure:"debounce_seconds"`
	Workers         int `mapstructure:"workers"`
	QueueSize       int `mapstructure:"queue_size"`
	MaxRetries      int `mapstructure:"max_retries"`
}

// ExportConfig holds the optional BigQuery summary export settings.
type ExportConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	ProjectID string `mapstructure:"project_id"`
	Dataset   string `mapstructure:"dataset"`
	Table     string `mapstructure:"table"`
}

// Debounce returns the job debounce window as a duration.
func (j JobsConfig) Debounce() time.Duration {
	return time.Duration(j.DebounceSeconds) * time.Second
}

// Load reads configuration from file and env. Env var overrides use prefix
// BILLFLOW_, e.g. BILLFLOW_STORE_PROJECT_ID.
func Load() (Config, error) {
	v := viper.New()

	v.SetDefault("store.backend", "memory")
	v.SetDefault("store.project_id", "")
	v.SetDefault("store.database_id", "(default)")
	v.SetDefault("classifier.extra_principal_ratio", 1.10)
	v.SetDefault("classifier.advance_days", 7)
	v.SetDefault("status.due_soon_days", 3)
	v.SetDefault("jobs.debounce_seconds", 5)
	v.SetDefault("jobs.workers", 5)
	v.SetDefault("jobs.queue_size", 100)
	v.SetDefault("jobs.max_retries", 3)
	v.SetDefault("export.enabled", false)
	v.SetDefault("export.project_id", "")
	v.SetDefault("export.dataset", "finance")
	v.SetDefault("export.table", "period_summaries")

	v.SetConfigType("toml")

	cfgPath := os.Getenv("BILLFLOW_CONFIG")
	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(filepath.Join(os.Getenv("HOME"), ".config", "billflow"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("BILLFLOW")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// config file is optional
	_ = v.ReadInConfig()

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return c, nil
}
