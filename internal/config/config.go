// Package config loads and validates service configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Auth      AuthConfig      `mapstructure:"auth"`
	HTTP      HTTPConfig      `mapstructure:"http"`
	Ingest    IngestConfig    `mapstructure:"ingest"`
	DB        DBConfig        `mapstructure:"db"`
	PubSub    PubSubConfig    `mapstructure:"pubsub"`
	Archive   ArchiveConfig   `mapstructure:"archive"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// ServerConfig controls HTTP server behavior.
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// AuthConfig defines API authentication toggles.
type AuthConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	APIKey  string `mapstructure:"api_key"`
}

// HTTPConfig configures the outbound fetch client.
type HTTPConfig struct {
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	UserAgent      string `mapstructure:"user_agent"`
}

// IngestConfig governs orchestrator behavior.
type IngestConfig struct {
	Workers            int  `mapstructure:"workers"`
	TaskTimeoutSeconds int  `mapstructure:"task_timeout_seconds"`
	PageLimitDefault   int  `mapstructure:"page_limit_default"`
	HydrateSeen        bool `mapstructure:"hydrate_seen"`
}

// DBConfig selects and configures the vacancy store.
type DBConfig struct {
	Provider string `mapstructure:"provider"` // memory or postgres
	DSN      string `mapstructure:"dsn"`
	MaxConns int32  `mapstructure:"max_conns"`
}

// PubSubConfig holds publish-subscribe notification settings.
type PubSubConfig struct {
	ProjectID string `mapstructure:"project_id"`
	TopicName string `mapstructure:"topic_name"`
}

// ArchiveConfig controls raw-page archival.
type ArchiveConfig struct {
	Provider  string `mapstructure:"provider"` // none, local or gcs
	BaseDir   string `mapstructure:"base_dir"`
	GCSBucket string `mapstructure:"gcs_bucket"`
	Prefix    string `mapstructure:"prefix"`
}

// SchedulerConfig controls periodic ingestion of the default URL set.
type SchedulerConfig struct {
	Enabled             bool     `mapstructure:"enabled"`
	InitialDelaySeconds int      `mapstructure:"initial_delay_seconds"`
	IntervalSeconds     int      `mapstructure:"interval_seconds"`
	URLs                []string `mapstructure:"urls"`
	PageLimit           int      `mapstructure:"page_limit"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("VACANCYD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("http.timeout_seconds", 30)
	v.SetDefault("http.user_agent", "")
	v.SetDefault("ingest.workers", 10)
	v.SetDefault("ingest.task_timeout_seconds", 30)
	v.SetDefault("ingest.page_limit_default", 10)
	v.SetDefault("ingest.hydrate_seen", true)
	v.SetDefault("db.provider", "memory")
	v.SetDefault("db.max_conns", 4)
	v.SetDefault("archive.provider", "none")
	v.SetDefault("archive.prefix", "pages")
	v.SetDefault("scheduler.enabled", false)
	v.SetDefault("scheduler.initial_delay_seconds", 5)
	v.SetDefault("scheduler.interval_seconds", 300)
	v.SetDefault("scheduler.page_limit", 5)
	v.SetDefault("scheduler.urls", []string{
		"https://hh.ru/search/vacancy?text=java&area=1",
		"https://www.superjob.ru/vacancy/search/?keywords=java",
		"https://career.habr.com/vacancies?q=java",
	})
	v.SetDefault("logging.development", true)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0")
	}
	if c.Ingest.Workers <= 0 {
		return fmt.Errorf("ingest.workers must be > 0")
	}
	if c.Ingest.TaskTimeoutSeconds <= 0 {
		return fmt.Errorf("ingest.task_timeout_seconds must be > 0")
	}
	if c.HTTP.TimeoutSeconds <= 0 {
		return fmt.Errorf("http.timeout_seconds must be > 0")
	}
	switch c.DB.Provider {
	case "memory":
	case "postgres":
		if c.DB.DSN == "" {
			return fmt.Errorf("db.dsn must be set when db.provider is postgres")
		}
	default:
		return fmt.Errorf("unknown db.provider: %s", c.DB.Provider)
	}
	switch c.Archive.Provider {
	case "none":
	case "local":
		if c.Archive.BaseDir == "" {
			return fmt.Errorf("archive.base_dir must be set when archive.provider is local")
		}
	case "gcs":
		if c.Archive.GCSBucket == "" {
			return fmt.Errorf("archive.gcs_bucket must be set when archive.provider is gcs")
		}
	default:
		return fmt.Errorf("unknown archive.provider: %s", c.Archive.Provider)
	}
	if c.Auth.Enabled && c.Auth.APIKey == "" {
		return fmt.Errorf("auth.api_key must be set when auth is enabled")
	}
	if c.Scheduler.Enabled && c.Scheduler.IntervalSeconds <= 0 {
		return fmt.Errorf("scheduler.interval_seconds must be > 0 when scheduler is enabled")
	}
	return nil
}

// FetchTimeout returns the outbound HTTP timeout as a duration.
func (c Config) FetchTimeout() time.Duration {
	return time.Duration(c.HTTP.TimeoutSeconds) * time.Second
}

// TaskTimeout returns the per-URL task deadline as a duration.
func (c Config) TaskTimeout() time.Duration {
	return time.Duration(c.Ingest.TaskTimeoutSeconds) * time.Second
}
