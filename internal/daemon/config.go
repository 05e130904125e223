// Package daemon manages the Nutrio daemon lifecycle and configuration.
package daemon

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // timezone database for minimal containers

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"github.com/nutrio/nutrio/internal/domain"
)

// Config holds all daemon configuration.
type Config struct {
	API           APIConfig                 `toml:"api"`
	Engine        EngineConfig              `toml:"engine"`
	Catalog       CatalogConfig             `toml:"catalog"`
	Notifications domain.NotificationPolicy `toml:"notifications"`
	Logging       LoggingConfig             `toml:"logging"`
	Telemetry     TelemetryConfig           `toml:"telemetry"`
}

// APIConfig controls the HTTP API server.
type APIConfig struct {
	Host        string   `toml:"host"`
	Port        int      `toml:"port"`
	CORSOrigins []string `toml:"cors_origins"`

	// Per-user token bucket on mutating endpoints. Zero RPS disables it.
	RateLimitRPS   float64 `toml:"rate_limit_rps"`
	RateLimitBurst int     `toml:"rate_limit_burst"`
}

// EngineConfig controls the progression engine.
type EngineConfig struct {
	// Timezone defines calendar days for caps, streaks and weekends.
	Timezone              string `toml:"timezone"`
	MaxRetries            int    `toml:"max_retries"`
	AchievementMilestones bool   `toml:"achievement_milestones"`
	// PruneSchedule is a cron spec for dropping stale daily cap entries.
	// Empty disables the job.
	PruneSchedule string `toml:"prune_schedule"`
}

// CatalogConfig points at an optional reward catalog overlay.
type CatalogConfig struct {
	Path string `toml:"path"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

// TelemetryConfig controls metrics exposure.
type TelemetryConfig struct {
	Prometheus bool `toml:"prometheus"`
}

// DefaultConfig returns a sensible default configuration.
func DefaultConfig() Config {
	return Config{
		API: APIConfig{
			Host:           "127.0.0.1",
			Port:           8686,
			CORSOrigins:    []string{"*"},
			RateLimitRPS:   5,
			RateLimitBurst: 20,
		},
		Engine: EngineConfig{
			Timezone:              "UTC",
			MaxRetries:            3,
			AchievementMilestones: true,
			PruneSchedule:         "5 0 * * *",
		},
		Notifications: domain.DefaultNotificationPolicy(),
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Telemetry: TelemetryConfig{
			Prometheus: true,
		},
	}
}

// Location resolves the configured timezone.
func (c EngineConfig) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("engine timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// Addr returns host:port for the API listener.
func (c APIConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// LoadConfig reads config from $NUTRIO_HOME/config.toml, falling back to
// defaults, then applies .env and environment overrides.
func LoadConfig() (Config, error) {
	return LoadConfigFrom(nutrioHome())
}

// LoadConfigFrom is LoadConfig with an explicit home directory.
func LoadConfigFrom(home string) (Config, error) {
	cfg := DefaultConfig()
	path := filepath.Join(home, "config.toml")

	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config: %w", err)
		}
	}

	// .env in the home dir, then the working dir. Existing variables win.
	for _, envFile := range []string{filepath.Join(home, ".env"), ".env"} {
		if _, err := os.Stat(envFile); err == nil {
			if err := godotenv.Load(envFile); err != nil {
				return cfg, fmt.Errorf("load %s: %w", envFile, err)
			}
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// applyEnv overrides selected fields from NUTRIO_* variables.
func applyEnv(cfg *Config) error {
	if v := os.Getenv("NUTRIO_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("NUTRIO_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
	if v := os.Getenv("NUTRIO_API_HOST"); v != "" {
		cfg.API.Host = v
	}
	if v := os.Getenv("NUTRIO_API_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("NUTRIO_API_PORT: %w", err)
		}
		cfg.API.Port = port
	}
	if v := os.Getenv("NUTRIO_CATALOG"); v != "" {
		cfg.Catalog.Path = v
	}
	if v := os.Getenv("NUTRIO_TIMEZONE"); v != "" {
		cfg.Engine.Timezone = v
	}
	if v := os.Getenv("NUTRIO_CORS_ORIGINS"); v != "" {
		cfg.API.CORSOrigins = strings.Split(v, ",")
	}
	return nil
}

// Validate checks value ranges.
func (c Config) Validate() error {
	if c.API.Port <= 0 || c.API.Port > 65535 {
		return fmt.Errorf("api.port %d out of range", c.API.Port)
	}
	if c.API.RateLimitRPS < 0 || c.API.RateLimitBurst < 0 {
		return fmt.Errorf("api rate limit must not be negative")
	}
	if c.Engine.MaxRetries < 0 {
		return fmt.Errorf("engine.max_retries must not be negative")
	}
	if _, err := c.Engine.Location(); err != nil {
		return err
	}
	if c.Engine.PruneSchedule != "" {
		if _, err := cron.ParseStandard(c.Engine.PruneSchedule); err != nil {
			return fmt.Errorf("engine.prune_schedule %q: %w", c.Engine.PruneSchedule, err)
		}
	}
	if c.Notifications.MaxPerDay < 0 {
		return fmt.Errorf("notifications.max_per_day must not be negative")
	}
	return nil
}

// SaveConfig writes the config to $NUTRIO_HOME/config.toml.
func SaveConfig(cfg Config) error {
	return SaveConfigTo(nutrioHome(), cfg)
}

// SaveConfigTo writes the config to home/config.toml.
func SaveConfigTo(home string, cfg Config) error {
	path := filepath.Join(home, "config.toml")
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	return encoder.Encode(cfg)
}

// nutrioHome returns the Nutrio data directory.
func nutrioHome() string {
	if env := os.Getenv("NUTRIO_HOME"); env != "" {
		return env
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".nutrio")
}

// NutrioHome is exported for use by other packages.
func NutrioHome() string {
	return nutrioHome()
}
