package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the overall application configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Upstream   UpstreamConfig   `yaml:"upstream"`
	Database   DatabaseConfig   `yaml:"database"`
	Cache      CacheConfig      `yaml:"cache"`
	Push       PushConfig       `yaml:"push"`
	WorkerPool WorkerPoolConfig `yaml:"worker_pool"`
	Alerts     AlertsConfig     `yaml:"alerts"`
	Analytics  AnalyticsConfig  `yaml:"analytics"`
	Log        LogConfig        `yaml:"log"`
}

// WorkerPoolConfig holds the configuration for the notification worker pool.
type WorkerPoolConfig struct {
	Size int `yaml:"size"`
}

// PushConfig holds the VAPID keys for web push notifications.
type PushConfig struct {
	PublicKey  string `yaml:"vapid_public_key"`
	PrivateKey string `yaml:"vapid_private_key"`
	Subject    string `yaml:"subject"`
	TTL        int    `yaml:"ttl"`
}

// ServerConfig holds the server-related configuration.
type ServerConfig struct {
	Port            int     `yaml:"port"`
	RateLimitPerSec float64 `yaml:"rate_limit_per_sec"`
	RateLimitBurst  int     `yaml:"rate_limit_burst"`
	CacheTTLSeconds int     `yaml:"cache_ttl_seconds"`
}

// UpstreamConfig describes the hotel management API the records are pulled from.
type UpstreamConfig struct {
	Enabled         bool              `yaml:"enabled"`
	BaseURL         string            `yaml:"base_url"`
	Headers         map[string]string `yaml:"headers"`
	PageSize        int               `yaml:"page_size"`
	IntervalSeconds int               `yaml:"interval_seconds"`
	Interval        time.Duration     `yaml:"-"` // Ignored by YAML parser
	TimeoutSeconds  int               `yaml:"timeout_seconds"`
	HTTPProxy       string            `yaml:"http_proxy"`
	Timezone        string            `yaml:"timezone"`
	Endpoints       EndpointsConfig   `yaml:"endpoints"`
}

// EndpointsConfig holds the upstream paths, relative to BaseURL.
type EndpointsConfig struct {
	Stays    string `yaml:"stays"`
	Orders   string `yaml:"orders"`
	Services string `yaml:"services"`
	Rooms    string `yaml:"rooms"`
}

// DatabaseConfig holds the database connection configuration.
type DatabaseConfig struct {
	Driver                 string `yaml:"driver"` // postgres or sqlite
	DSN                    string `yaml:"dsn"`
	MaxOpenConns           int    `yaml:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes"`
	EnableTimescale        bool   `yaml:"enable_timescale"`
	LogLevel               string `yaml:"log_level"`
}

// CacheConfig selects where computed reports are cached.
type CacheConfig struct {
	Backend    string        `yaml:"backend"` // memory, redis or none
	RedisAddr  string        `yaml:"redis_addr"`
	RedisPass  string        `yaml:"redis_password"`
	RedisDB    int           `yaml:"redis_db"`
	TTLSeconds int           `yaml:"ttl_seconds"`
	TTL        time.Duration `yaml:"-"`
}

// AlertsConfig holds the thresholds for push alerts.
type AlertsConfig struct {
	OccupancyHighPct float64 `yaml:"occupancy_high_pct"`
}

// AnalyticsConfig holds reporting defaults.
type AnalyticsConfig struct {
	MonthsBack    int    `yaml:"months_back"`
	DefaultPeriod string `yaml:"default_period"`
}

// LogConfig holds the logging configuration.
type LogConfig struct {
	Level      string `yaml:"level"`
	Format     string `yaml:"format"` // text or json
	Output     string `yaml:"output"` // stdout, file or both
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

// Load reads the configuration from the given path. Values from a local .env
// file and the process environment override secrets and connection strings.
func Load(path string) (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, err
	}

	applyEnv(&cfg)
	applyDefaults(&cfg)
	return &cfg, nil
}

func applyEnv(cfg *Config) {
	setString(&cfg.Database.DSN, "DATABASE_DSN")
	setString(&cfg.Database.Driver, "DATABASE_DRIVER")
	setString(&cfg.Cache.RedisAddr, "REDIS_ADDR")
	setString(&cfg.Cache.RedisPass, "REDIS_PASSWORD")
	setString(&cfg.Push.PublicKey, "VAPID_PUBLIC_KEY")
	setString(&cfg.Push.PrivateKey, "VAPID_PRIVATE_KEY")
	setString(&cfg.Upstream.BaseURL, "UPSTREAM_BASE_URL")
	setString(&cfg.Log.Level, "LOG_LEVEL")

	if v := strings.TrimSpace(os.Getenv("PORT")); v != "" {
		if port, err := strconv.Atoi(v); err == nil && port > 0 {
			cfg.Server.Port = port
		}
	}
}

func setString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.RateLimitPerSec <= 0 {
		cfg.Server.RateLimitPerSec = 10
	}
	if cfg.Server.RateLimitBurst <= 0 {
		cfg.Server.RateLimitBurst = 5
	}
	if cfg.Server.CacheTTLSeconds <= 0 {
		cfg.Server.CacheTTLSeconds = 60
	}

	if cfg.Upstream.IntervalSeconds <= 0 {
		cfg.Upstream.IntervalSeconds = 300
	}
	cfg.Upstream.Interval = time.Duration(cfg.Upstream.IntervalSeconds) * time.Second
	if cfg.Upstream.PageSize <= 0 {
		cfg.Upstream.PageSize = 100
	}
	if cfg.Upstream.TimeoutSeconds <= 0 {
		cfg.Upstream.TimeoutSeconds = 30
	}
	if cfg.Upstream.Timezone == "" {
		cfg.Upstream.Timezone = "UTC"
	}
	if cfg.Upstream.Endpoints.Stays == "" {
		cfg.Upstream.Endpoints.Stays = "/stays"
	}
	if cfg.Upstream.Endpoints.Orders == "" {
		cfg.Upstream.Endpoints.Orders = "/orders"
	}
	if cfg.Upstream.Endpoints.Services == "" {
		cfg.Upstream.Endpoints.Services = "/scheduled-services"
	}
	if cfg.Upstream.Endpoints.Rooms == "" {
		cfg.Upstream.Endpoints.Rooms = "/rooms"
	}

	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "postgres"
	}

	if cfg.Cache.Backend == "" {
		cfg.Cache.Backend = "memory"
	}
	if cfg.Cache.TTLSeconds <= 0 {
		cfg.Cache.TTLSeconds = 300
	}
	cfg.Cache.TTL = time.Duration(cfg.Cache.TTLSeconds) * time.Second

	if cfg.Push.TTL <= 0 {
		cfg.Push.TTL = 3600
	}

	if cfg.WorkerPool.Size <= 0 {
		cfg.WorkerPool.Size = 1
	}

	if cfg.Alerts.OccupancyHighPct <= 0 {
		cfg.Alerts.OccupancyHighPct = 90
	}

	if cfg.Analytics.MonthsBack <= 0 {
		cfg.Analytics.MonthsBack = 6
	}
	if cfg.Analytics.DefaultPeriod == "" {
		cfg.Analytics.DefaultPeriod = "30d"
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
}
