// Package config loads collector settings from environment variables.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// defaultUserAgent is a browser identity; the dashboard serves a stripped
// page to clients that do not look like one.
const defaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Config holds all collector settings, populated from environment
// variables. Retry, backoff, and delay values are operational knobs, not
// protocol requirements; the defaults mirror long-running production use.
type Config struct {
	// Target list. When TargetsCSV is empty the built-in core county list
	// is used.
	TargetsCSV string `envconfig:"TARGETS_CSV"`

	// Output files.
	CSVPath  string `envconfig:"CSV_PATH" default:"data/birdcast_data.csv"`
	JSONPath string `envconfig:"JSON_PATH" default:"data/birdcast_data.json"`

	// Fetch behavior.
	UserAgent    string        `envconfig:"USER_AGENT"`
	FetchTimeout time.Duration `envconfig:"FETCH_TIMEOUT" default:"30s"`
	FetchRetries int           `envconfig:"FETCH_RETRIES" default:"3"`
	RetryWait    time.Duration `envconfig:"RETRY_WAIT" default:"2s"`
	RetryMaxWait time.Duration `envconfig:"RETRY_MAX_WAIT" default:"10s"`

	// Courtesy spacing between requests to the shared dashboard.
	RequestDelay time.Duration `envconfig:"REQUEST_DELAY" default:"500ms"`

	// Daily schedule (schedule mode only), local wall-clock "HH:MM".
	ScheduleAt string `envconfig:"SCHEDULE_AT" default:"12:00"`

	// Operational HTTP endpoints (schedule mode only).
	HTTPAddr        string        `envconfig:"HTTP_ADDR" default:":8080"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`

	// Optional Kafka publishing; disabled when no brokers are set.
	KafkaBrokers []string `envconfig:"KAFKA_BROKERS"`
	KafkaTopic   string   `envconfig:"KAFKA_TOPIC" default:"birdcast-observations"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"json"`
}

// Load reads configuration from environment variables, applying defaults
// where unset.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}

	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}

	if cfg.CSVPath == "" || cfg.JSONPath == "" {
		return nil, errors.New("CSV_PATH and JSON_PATH are required")
	}
	if cfg.FetchTimeout <= 0 {
		return nil, errors.New("FETCH_TIMEOUT must be positive")
	}
	if cfg.FetchRetries < 0 {
		return nil, errors.New("FETCH_RETRIES must not be negative")
	}
	if cfg.RequestDelay < 0 {
		return nil, errors.New("REQUEST_DELAY must not be negative")
	}
	if _, err := time.Parse("15:04", cfg.ScheduleAt); err != nil {
		return nil, fmt.Errorf("invalid SCHEDULE_AT: %w", err)
	}

	return &cfg, nil
}

// KafkaEnabled reports whether observation publishing is configured.
func (c *Config) KafkaEnabled() bool {
	return len(c.KafkaBrokers) > 0
}
