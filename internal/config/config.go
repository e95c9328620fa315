package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultPath is read when no --config flag is given; a missing file is not an error.
const DefaultPath = "householdplanner.yaml"

// Config keeps runtime settings for the planner.
type Config struct {
	TelegramToken string         `yaml:"telegram_token"`
	DatabaseURL   string         `yaml:"database_url"`
	LogLevel      string         `yaml:"log_level"`
	MetricsAddr   string         `yaml:"metrics_addr"`
	Redis         RedisConfig    `yaml:"redis"`
	Planning      PlanningConfig `yaml:"planning"`
	Pace          PaceConfig     `yaml:"pace"`
}

type RedisConfig struct {
	Addr           string `yaml:"addr"`
	Password       string `yaml:"password"`
	DB             int    `yaml:"db"`
	TaskTTLSeconds int    `yaml:"task_ttl_seconds"`
}

type PlanningConfig struct {
	// Cron is a six-field (with seconds) spec for the nightly planning pass.
	Cron               string  `yaml:"cron"`
	HorizonDays        int     `yaml:"horizon_days"`
	WarningThreshold   float64 `yaml:"warning_threshold"`
	PaceRefreshMinutes int     `yaml:"pace_refresh_minutes"`
}

// PaceConfig holds the days-per-opportunity divisors of the pace forecast.
type PaceConfig struct {
	BiweeklyDaysPerSlot   int `yaml:"biweekly_days_per_slot"`
	BimonthlyDaysPerSlot  int `yaml:"bimonthly_days_per_slot"`
	SemiannualDaysPerSlot int `yaml:"semiannual_days_per_slot"`
}

// Load reads the YAML file at path (if present), applies environment overrides
// and fills defaults.
func Load(path string) (Config, error) {
	var cfg Config

	if path == "" {
		path = DefaultPath
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("decode %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return cfg, fmt.Errorf("read %s: %w", path, err)
	}

	overrideFromEnv(&cfg)
	applyDefaults(&cfg)

	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func overrideFromEnv(cfg *Config) {
	if v := env("TELEGRAM_TOKEN"); v != "" {
		cfg.TelegramToken = v
	}
	if v := env("DATABASE_URL"); v != "" {
		cfg.DatabaseURL = v
	}
	if v := env("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := env("METRICS_ADDR"); v != "" {
		cfg.MetricsAddr = v
	}
	if v := env("REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := env("REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := env("PLANNING_CRON"); v != "" {
		cfg.Planning.Cron = v
	}
	if n := parsePositive(env("PLANNING_HORIZON_DAYS")); n > 0 {
		cfg.Planning.HorizonDays = n
	}
	if n := parsePositive(env("PACE_REFRESH_MINUTES")); n > 0 {
		cfg.Planning.PaceRefreshMinutes = n
	}
}

func applyDefaults(cfg *Config) {
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = "household_planner.db"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.Redis.TaskTTLSeconds == 0 {
		cfg.Redis.TaskTTLSeconds = 30
	}
	if cfg.Planning.Cron == "" {
		cfg.Planning.Cron = "0 5 0 * * *"
	}
	if cfg.Planning.HorizonDays == 0 {
		cfg.Planning.HorizonDays = 7
	}
	if cfg.Planning.WarningThreshold == 0 {
		cfg.Planning.WarningThreshold = 0.25
	}
	if cfg.Planning.PaceRefreshMinutes == 0 {
		cfg.Planning.PaceRefreshMinutes = 15
	}
	if cfg.Pace.BiweeklyDaysPerSlot == 0 {
		cfg.Pace.BiweeklyDaysPerSlot = 7
	}
	if cfg.Pace.BimonthlyDaysPerSlot == 0 {
		cfg.Pace.BimonthlyDaysPerSlot = 30
	}
	if cfg.Pace.SemiannualDaysPerSlot == 0 {
		cfg.Pace.SemiannualDaysPerSlot = 60
	}
}

func (c Config) validate() error {
	if c.Planning.HorizonDays < 1 || c.Planning.HorizonDays > 90 {
		return fmt.Errorf("planning.horizon_days must be within 1..90, got %d", c.Planning.HorizonDays)
	}
	if c.Planning.WarningThreshold < 0 || c.Planning.WarningThreshold > 1 {
		return fmt.Errorf("planning.warning_threshold must be within 0..1, got %v", c.Planning.WarningThreshold)
	}
	if c.Pace.BiweeklyDaysPerSlot < 0 || c.Pace.BimonthlyDaysPerSlot < 0 || c.Pace.SemiannualDaysPerSlot < 0 {
		return fmt.Errorf("pace divisors must be positive")
	}
	return nil
}

// RequireTelegram fails when the bot is enabled without a token.
func (c Config) RequireTelegram() error {
	if c.TelegramToken == "" {
		return fmt.Errorf("TELEGRAM_TOKEN is required")
	}
	return nil
}

func env(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func parsePositive(raw string) int {
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0
	}
	return n
}
