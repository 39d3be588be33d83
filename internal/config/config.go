// Package config loads the application configuration from a YAML
// file via Viper, falling back to defaults when the file or
// individual keys are absent.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/ksakurai/memoplan/internal/constants"
	"github.com/ksakurai/memoplan/internal/utils"
)

// SchedulerConfig holds the allocation knobs.
type SchedulerConfig struct {
	PermutationLimit int     `mapstructure:"permutation_limit" yaml:"permutation_limit"`
	MinutesPerUnit   float64 `mapstructure:"minutes_per_unit" yaml:"minutes_per_unit"`
}

// ScoringConfig holds the need-curve parameters.
type ScoringConfig struct {
	DeadlineHorizonDays       int `mapstructure:"deadline_horizon_days" yaml:"deadline_horizon_days"`
	BacklogSaturationDays     int `mapstructure:"backlog_saturation_days" yaml:"backlog_saturation_days"`
	DefaultDeadlineSessionMin int `mapstructure:"default_deadline_session_min" yaml:"default_deadline_session_min"`
	DefaultSessionMin         int `mapstructure:"default_session_min" yaml:"default_session_min"`
}

// DayConfig holds the time-of-day thresholds used when labeling gaps.
type DayConfig struct {
	MorningEnd   string `mapstructure:"morning_end" yaml:"morning_end"`
	EveningStart string `mapstructure:"evening_start" yaml:"evening_start"`
}

// EnrichmentConfig holds settings for the external metadata service.
type EnrichmentConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`
	Model   string `mapstructure:"model" yaml:"model"`
	DelayMS int    `mapstructure:"delay_ms" yaml:"delay_ms"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	StorePath  string           `mapstructure:"store_path" yaml:"store_path"`
	Scheduler  SchedulerConfig  `mapstructure:"scheduler" yaml:"scheduler"`
	Scoring    ScoringConfig    `mapstructure:"scoring" yaml:"scoring"`
	Day        DayConfig        `mapstructure:"day" yaml:"day"`
	Enrichment EnrichmentConfig `mapstructure:"enrichment" yaml:"enrichment"`
}

// DefaultConfigPath returns the default path for the configuration
// file, located at ~/.config/memoplan/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", constants.AppName, "config.yaml")
}

// DefaultStorePath returns the default database location next to the
// config file.
func DefaultStorePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", constants.AppName+".db")
	}
	return filepath.Join(home, ".config", constants.AppName, constants.AppName+".db")
}

func defaultAppConfig() *AppConfig {
	return &AppConfig{
		StorePath: DefaultStorePath(),
		Scheduler: SchedulerConfig{
			PermutationLimit: 8,
			MinutesPerUnit:   3.0,
		},
		Scoring: ScoringConfig{
			DeadlineHorizonDays:       14,
			BacklogSaturationDays:     30,
			DefaultDeadlineSessionMin: 45,
			DefaultSessionMin:         30,
		},
		Day: DayConfig{
			MorningEnd:   "09:00",
			EveningStart: "18:00",
		},
		Enrichment: EnrichmentConfig{
			Enabled: false,
			Model:   "fast-v1",
			DelayMS: 500,
		},
	}
}

// Load reads configuration from the given YAML file path using Viper.
// If the file does not exist, it returns a default configuration.
func Load(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	// Set defaults so missing keys resolve to sensible values.
	v.SetDefault("store_path", DefaultStorePath())
	v.SetDefault("scheduler.permutation_limit", 8)
	v.SetDefault("scheduler.minutes_per_unit", 3.0)
	v.SetDefault("scoring.deadline_horizon_days", 14)
	v.SetDefault("scoring.backlog_saturation_days", 30)
	v.SetDefault("scoring.default_deadline_session_min", 45)
	v.SetDefault("scoring.default_session_min", 30)
	v.SetDefault("day.morning_end", "09:00")
	v.SetDefault("day.evening_start", "18:00")
	v.SetDefault("enrichment.enabled", false)
	v.SetDefault("enrichment.model", "fast-v1")
	v.SetDefault("enrichment.delay_ms", 500)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(*os.PathError); ok {
			return defaultAppConfig(), nil
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return defaultAppConfig(), nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := defaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if !utils.ValidateTimeFormat(cfg.Day.MorningEnd) {
		return nil, fmt.Errorf("config day.morning_end: invalid time %q, want HH:MM", cfg.Day.MorningEnd)
	}
	if !utils.ValidateTimeFormat(cfg.Day.EveningStart) {
		return nil, fmt.Errorf("config day.evening_start: invalid time %q, want HH:MM", cfg.Day.EveningStart)
	}

	return cfg, nil
}
