package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

/* Config holds every tunable of the orchestrator
 * Values come from an optional .env (toml) file and the environment
 */
type Config struct {
	Port         string `mapstructure:"PORT"`
	LogLevel     string `mapstructure:"LOG_LEVEL"`
	GatewaysFile string `mapstructure:"GATEWAYS_FILE"`

	PaymentStore  string `mapstructure:"PAYMENT_STORE"`
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"REDIS_DB"`
	PostgresURL   string `mapstructure:"POSTGRES_URL"`

	FailoverThreshold       int     `mapstructure:"FAILOVER_THRESHOLD"`
	HealthCheckIntervalMs   int     `mapstructure:"HEALTH_CHECK_INTERVAL_MS"`
	ResponseTimeThresholdMs int     `mapstructure:"RESPONSE_TIME_THRESHOLD_MS"`
	SuccessRateThreshold    float64 `mapstructure:"SUCCESS_RATE_THRESHOLD"`
	MetricSmoothingAlpha    float64 `mapstructure:"METRIC_SMOOTHING_ALPHA"`
	AlertRetentionDays      int     `mapstructure:"ALERT_RETENTION_DAYS"`
	EvaluationIntervalMs    int     `mapstructure:"EVALUATION_INTERVAL_MS"`
	EventBufferSize         int     `mapstructure:"EVENT_BUFFER_SIZE"`
	EventMaxAgeHours        int     `mapstructure:"EVENT_MAX_AGE_HOURS"`
	AttemptTimeoutMs        int     `mapstructure:"ATTEMPT_TIMEOUT_MS"`
	AllowDegradedFallback   bool    `mapstructure:"ALLOW_DEGRADED_FALLBACK"`

	AlertWebhookURL    string `mapstructure:"ALERT_WEBHOOK_URL"`
	AlertWebhookSecret string `mapstructure:"ALERT_WEBHOOK_SECRET"`
}

var defaults = map[string]interface{}{
	"PORT":                       "8080",
	"LOG_LEVEL":                  "info",
	"GATEWAYS_FILE":              "gateways.yaml",
	"PAYMENT_STORE":              "memory",
	"REDIS_ADDR":                 "localhost:6379",
	"REDIS_PASSWORD":             "",
	"REDIS_DB":                   0,
	"POSTGRES_URL":               "",
	"FAILOVER_THRESHOLD":         3,
	"HEALTH_CHECK_INTERVAL_MS":   60000,
	"RESPONSE_TIME_THRESHOLD_MS": 5000,
	"SUCCESS_RATE_THRESHOLD":     0.95,
	"METRIC_SMOOTHING_ALPHA":     0.2,
	"ALERT_RETENTION_DAYS":       30,
	"EVALUATION_INTERVAL_MS":     60000,
	"EVENT_BUFFER_SIZE":          10000,
	"EVENT_MAX_AGE_HOURS":        48,
	"ATTEMPT_TIMEOUT_MS":         0,
	"ALLOW_DEGRADED_FALLBACK":    true,
	"ALERT_WEBHOOK_URL":          "",
	"ALERT_WEBHOOK_SECRET":       "",
}

// GetConfig reads .env from the working directory (if present) and the environment
func GetConfig() (*Config, error) {
	return Load(".")
}

// Load reads the configuration using dir as the .env search path
func Load(dir string) (*Config, error) {
	v := viper.New()
	v.SetConfigName(".env")
	v.SetConfigType("toml")
	v.AddConfigPath(dir)
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("parsing config data: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return &config, nil
}

// Validate rejects values the orchestrator cannot run with
func (c *Config) Validate() error {
	if c.FailoverThreshold < 1 {
		return fmt.Errorf("FAILOVER_THRESHOLD must be at least 1 (got %d)", c.FailoverThreshold)
	}
	if c.HealthCheckIntervalMs <= 0 {
		return fmt.Errorf("HEALTH_CHECK_INTERVAL_MS must be positive (got %d)", c.HealthCheckIntervalMs)
	}
	if c.ResponseTimeThresholdMs <= 0 {
		return fmt.Errorf("RESPONSE_TIME_THRESHOLD_MS must be positive (got %d)", c.ResponseTimeThresholdMs)
	}
	if c.SuccessRateThreshold <= 0 || c.SuccessRateThreshold > 1 {
		return fmt.Errorf("SUCCESS_RATE_THRESHOLD must be in (0, 1] (got %v)", c.SuccessRateThreshold)
	}
	if c.MetricSmoothingAlpha <= 0 || c.MetricSmoothingAlpha > 1 {
		return fmt.Errorf("METRIC_SMOOTHING_ALPHA must be in (0, 1] (got %v)", c.MetricSmoothingAlpha)
	}
	if c.AlertRetentionDays < 0 {
		return fmt.Errorf("ALERT_RETENTION_DAYS cannot be negative")
	}
	if c.EvaluationIntervalMs <= 0 {
		return fmt.Errorf("EVALUATION_INTERVAL_MS must be positive (got %d)", c.EvaluationIntervalMs)
	}
	if c.EventBufferSize < 1 {
		return fmt.Errorf("EVENT_BUFFER_SIZE must be at least 1 (got %d)", c.EventBufferSize)
	}
	if c.AttemptTimeoutMs < 0 {
		return fmt.Errorf("ATTEMPT_TIMEOUT_MS cannot be negative")
	}
	switch c.PaymentStore {
	case "memory", "redis":
	case "postgres":
		if c.PostgresURL == "" {
			return fmt.Errorf("POSTGRES_URL is required when PAYMENT_STORE=postgres")
		}
	default:
		return fmt.Errorf("PAYMENT_STORE must be memory, redis or postgres (got %q)", c.PaymentStore)
	}
	return nil
}

// HealthCheckInterval returns the probe period
func (c *Config) HealthCheckInterval() time.Duration {
	return time.Duration(c.HealthCheckIntervalMs) * time.Millisecond
}

// ResponseTimeThreshold returns the latency alert threshold
func (c *Config) ResponseTimeThreshold() time.Duration {
	return time.Duration(c.ResponseTimeThresholdMs) * time.Millisecond
}

// EvaluationInterval returns the period of the monitoring re-evaluation
func (c *Config) EvaluationInterval() time.Duration {
	return time.Duration(c.EvaluationIntervalMs) * time.Millisecond
}

// AlertRetention returns how long resolved alerts are kept
func (c *Config) AlertRetention() time.Duration {
	return time.Duration(c.AlertRetentionDays) * 24 * time.Hour
}

// EventMaxAge returns how long outcome events stay in the monitoring log
func (c *Config) EventMaxAge() time.Duration {
	return time.Duration(c.EventMaxAgeHours) * time.Hour
}

// AttemptTimeout returns the per-attempt deadline, zero meaning none
func (c *Config) AttemptTimeout() time.Duration {
	return time.Duration(c.AttemptTimeoutMs) * time.Millisecond
}
