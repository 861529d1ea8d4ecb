// Package config loads service configuration from defaults, an optional
// config file, a .env file and ROADTRIP_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/breatheroute/roadtrip/internal/overlay"
)

// EnvPrefix prefixes every environment variable: ROADTRIP_PLANNER_BASE_URL → planner.base_url.
const EnvPrefix = "ROADTRIP"

// Config holds all service configuration.
type Config struct {
	Env       string          `mapstructure:"env"`
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	Planner   PlannerConfig   `mapstructure:"planner"`
	Request   RequestConfig   `mapstructure:"request"`
	Overlay   OverlayConfig   `mapstructure:"overlay"`
	Session   SessionConfig   `mapstructure:"session"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	RequireTLS      bool          `mapstructure:"require_tls"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

type PlannerConfig struct {
	BaseURL      string        `mapstructure:"base_url"`
	Timeout      time.Duration `mapstructure:"timeout"`
	MaxBodyBytes int64         `mapstructure:"max_body_bytes"`
	Breaker      BreakerConfig `mapstructure:"breaker"`
}

// BreakerConfig tunes the circuit breaker in front of the planning service.
type BreakerConfig struct {
	MinRequests  uint32        `mapstructure:"min_requests"`
	FailureRatio float64       `mapstructure:"failure_ratio"`
	OpenTimeout  time.Duration `mapstructure:"open_timeout"`
}

type RequestConfig struct {
	// Timezone interprets departure times without an offset.
	Timezone     string `mapstructure:"timezone"`
	MaxStopHours int    `mapstructure:"max_stop_hours"`
}

type OverlayConfig struct {
	RecommendationLimit int `mapstructure:"recommendation_limit"`
	// StylesFile optionally overrides the marker style table (yaml or json).
	StylesFile string `mapstructure:"styles_file"`
}

type SessionConfig struct {
	IdleTTL         time.Duration `mapstructure:"idle_ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
	MaxSessions     int           `mapstructure:"max_sessions"`
}

type RateLimitConfig struct {
	PlanPerMinute     int `mapstructure:"plan_per_minute"`
	StandardPerMinute int `mapstructure:"standard_per_minute"`
}

type TelemetryConfig struct {
	Enabled        bool          `mapstructure:"enabled"`
	OTLPEndpoint   string        `mapstructure:"otlp_endpoint"`
	SampleRatio    float64       `mapstructure:"sample_ratio"`
	ExportInterval time.Duration `mapstructure:"export_interval"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "development")

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 120*time.Second)
	v.SetDefault("server.idle_timeout", 60*time.Second)
	v.SetDefault("server.shutdown_timeout", 30*time.Second)
	v.SetDefault("server.require_tls", false)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)

	v.SetDefault("planner.base_url", "http://127.0.0.1:8000")
	v.SetDefault("planner.timeout", 90*time.Second)
	v.SetDefault("planner.max_body_bytes", 16<<20)
	v.SetDefault("planner.breaker.min_requests", 5)
	v.SetDefault("planner.breaker.failure_ratio", 0.5)
	v.SetDefault("planner.breaker.open_timeout", 60*time.Second)

	v.SetDefault("request.timezone", "Local")
	v.SetDefault("request.max_stop_hours", 72)

	v.SetDefault("overlay.recommendation_limit", overlay.DefaultRecommendationLimit)
	v.SetDefault("overlay.styles_file", "")

	v.SetDefault("session.idle_ttl", 30*time.Minute)
	v.SetDefault("session.cleanup_interval", 5*time.Minute)
	v.SetDefault("session.max_sessions", 10000)

	v.SetDefault("rate_limit.plan_per_minute", 30)
	v.SetDefault("rate_limit.standard_per_minute", 100)

	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.otlp_endpoint", "localhost:4317")
	v.SetDefault("telemetry.sample_ratio", 1.0)
	v.SetDefault("telemetry.export_interval", 30*time.Second)
}

// Load reads configuration. A .env file in the working directory is applied
// to the environment first; then config.yaml is read from the working
// directory, ./configs or any extra path given. Both files are optional.
func Load(paths ...string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks every field and reports all problems at once.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port must be 1-65535, got %d", c.Server.Port))
	}
	if c.Server.ReadTimeout <= 0 {
		errs = append(errs, "server.read_timeout must be positive")
	}
	if c.Server.WriteTimeout <= 0 {
		errs = append(errs, "server.write_timeout must be positive")
	}
	if c.Server.WriteTimeout > 0 && c.Planner.Timeout > c.Server.WriteTimeout {
		errs = append(errs, "server.write_timeout must not be shorter than planner.timeout")
	}

	if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Sprintf("log.level %q is not a valid level", c.Log.Level))
	}

	if u, err := url.Parse(c.Planner.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Sprintf("planner.base_url must be an absolute URL, got %q", c.Planner.BaseURL))
	}
	if c.Planner.Timeout <= 0 {
		errs = append(errs, "planner.timeout must be positive")
	}
	if c.Planner.MaxBodyBytes <= 0 {
		errs = append(errs, "planner.max_body_bytes must be positive")
	}
	if c.Planner.Breaker.MinRequests == 0 {
		errs = append(errs, "planner.breaker.min_requests must be positive")
	}
	if c.Planner.Breaker.FailureRatio <= 0 || c.Planner.Breaker.FailureRatio > 1 {
		errs = append(errs, "planner.breaker.failure_ratio must be in (0, 1]")
	}

	if _, err := time.LoadLocation(c.Request.Timezone); err != nil {
		errs = append(errs, fmt.Sprintf("request.timezone %q is unknown", c.Request.Timezone))
	}
	if c.Request.MaxStopHours <= 0 {
		errs = append(errs, "request.max_stop_hours must be positive")
	}

	if c.Overlay.RecommendationLimit <= 0 {
		errs = append(errs, "overlay.recommendation_limit must be positive")
	}

	if c.Session.IdleTTL <= 0 {
		errs = append(errs, "session.idle_ttl must be positive")
	}
	if c.Session.MaxSessions <= 0 {
		errs = append(errs, "session.max_sessions must be positive")
	}

	if c.RateLimit.PlanPerMinute <= 0 || c.RateLimit.StandardPerMinute <= 0 {
		errs = append(errs, "rate_limit values must be positive")
	}

	if c.Telemetry.SampleRatio < 0 || c.Telemetry.SampleRatio > 1 {
		errs = append(errs, "telemetry.sample_ratio must be in [0, 1]")
	}
	if c.Telemetry.Enabled && c.Telemetry.OTLPEndpoint == "" {
		errs = append(errs, "telemetry.otlp_endpoint is required when telemetry is enabled")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// Location returns the departure-time location. Validate has already
// checked the name, so failure falls back to time.Local.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Request.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// LogLevel returns the parsed log level, defaulting to info.
func (c *Config) LogLevel() zerolog.Level {
	level, err := zerolog.ParseLevel(c.Log.Level)
	if err != nil {
		return zerolog.InfoLevel
	}
	return level
}

// IsProduction reports whether the service runs in production.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// LoadStyles returns the default style config, overridden by
// Overlay.StylesFile when set. Styles and congestion colors merge over
// the defaults; a non-empty rules list replaces the default rules.
func (c *Config) LoadStyles() (overlay.StyleConfig, error) {
	styles := overlay.DefaultStyleConfig()
	if c.Overlay.StylesFile == "" {
		return styles, nil
	}

	v := viper.New()
	v.SetConfigFile(c.Overlay.StylesFile)
	if err := v.ReadInConfig(); err != nil {
		return styles, fmt.Errorf("read styles file: %w", err)
	}

	var override overlay.StyleConfig
	if err := v.Unmarshal(&override); err != nil {
		return styles, fmt.Errorf("unmarshal styles file: %w", err)
	}

	if len(override.Rules) > 0 {
		styles.Rules = override.Rules
	}
	for key, style := range override.Styles {
		styles.Styles[key] = style
	}
	for level, color := range override.CongestionColors {
		styles.CongestionColors[level] = color
	}
	if override.RouteColor != "" {
		styles.RouteColor = override.RouteColor
	}
	return styles, nil
}
