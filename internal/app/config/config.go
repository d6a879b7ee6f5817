package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/eziosoft/MavlinkStats/internal/adapters/mavlink"
	"github.com/eziosoft/MavlinkStats/internal/adapters/observability"
	"github.com/eziosoft/MavlinkStats/internal/app/query"
	"github.com/eziosoft/MavlinkStats/internal/app/streamreq"
	"github.com/eziosoft/MavlinkStats/internal/ports"
)

// Environment variables that take precedence over the file.
const (
	EnvConnection  = "MAVSTATS_CONNECTION"
	EnvHTTPAddr    = "MAVSTATS_HTTP_ADDR"
	EnvMetricsAddr = "MAVSTATS_METRICS_ADDR"
)

type Config struct {
	Policy           ports.Policy            `yaml:"policy"`
	MAVLink          mavlink.Config          `yaml:"mavlink"`
	StreamRequests   streamreq.Config        `yaml:"stream_requests"`
	ExpectedMessages map[string]float64      `yaml:"expected_messages"`
	HTTP             HTTPConfig              `yaml:"http"`
	Metrics          MetricsConfig           `yaml:"metrics"`
	Log              observability.LogConfig `yaml:"log"`
}

type HTTPConfig struct {
	Addr string `yaml:"addr"`
}

type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

// DefaultExpected is the table of message rates a healthy ArduPilot
// vehicle is expected to stream.
func DefaultExpected() map[string]float64 {
	return map[string]float64{
		"GLOBAL_POSITION_INT": 1,
		"SYS_STATUS":          1,
		"BATTERY_STATUS":      1,
		"GPS_RAW_INT":         1,
		"VIBRATION":           2,
		"ATTITUDE":            4,
		"MISSION_CURRENT":     0.5,
		"FENCE_STATUS":        1,
		"RANGEFINDER":         1,
		"LANDING_TARGET":      16,
	}
}

func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(raw)
}

// Parse builds a config from YAML bytes the same way Load does.
func Parse(raw []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, err
	}

	cfg.ApplyDefaults()
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// ApplyDefaults fills every unset field, including nested sections.
func (c *Config) ApplyDefaults() {
	if c.Policy.IdleSleep == 0 {
		c.Policy.IdleSleep = 5 * time.Millisecond
	}
	if c.Policy.StaleAfter == 0 {
		c.Policy.StaleAfter = 5 * time.Second
	}
	if c.Policy.Tolerance == 0 {
		c.Policy.Tolerance = query.DefaultTolerance
	}
	if c.Policy.PublishInterval == 0 {
		c.Policy.PublishInterval = time.Second
	}
	if c.Policy.MaxQueueLen == 0 {
		c.Policy.MaxQueueLen = 10_000
	}
	if c.Policy.OnQueueFull == "" {
		c.Policy.OnQueueFull = "block"
	}
	if c.ExpectedMessages == nil {
		c.ExpectedMessages = DefaultExpected()
	}
	if c.HTTP.Addr == "" {
		c.HTTP.Addr = ":5001"
	}
	if c.Metrics.Addr == "" {
		c.Metrics.Addr = ":9100"
	}

	c.MAVLink.ApplyDefaults()
	c.StreamRequests.ApplyDefaults()
	c.Log.ApplyDefaults()
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvConnection); v != "" {
		c.MAVLink.Connection = v
	}
	if v := os.Getenv(EnvHTTPAddr); v != "" {
		c.HTTP.Addr = v
	}
	if v := os.Getenv(EnvMetricsAddr); v != "" {
		c.Metrics.Addr = v
	}
}

func (c *Config) Validate() error {
	if err := c.MAVLink.Validate(); err != nil {
		return fmt.Errorf("mavlink config: %w", err)
	}
	return c.ValidateTracking()
}

// ValidateTracking checks everything except the upstream connection, for
// callers that supply their own link.
func (c *Config) ValidateTracking() error {
	if err := c.StreamRequests.Validate(); err != nil {
		return fmt.Errorf("stream_requests config: %w", err)
	}
	if err := c.Log.Validate(); err != nil {
		return fmt.Errorf("log config: %w", err)
	}
	if c.Policy.StaleAfter <= 0 {
		return fmt.Errorf("policy.stale_after must be positive")
	}
	if c.Policy.PublishInterval <= 0 {
		return fmt.Errorf("policy.publish_interval must be positive")
	}
	if c.Policy.Tolerance < 0 || c.Policy.Tolerance >= 1 {
		return fmt.Errorf("policy.tolerance must be in [0,1), got %v", c.Policy.Tolerance)
	}
	switch c.Policy.OnQueueFull {
	case "block", "drop", "reject":
	default:
		return fmt.Errorf("policy.on_queue_full: unknown mode %q", c.Policy.OnQueueFull)
	}
	for typ, hz := range c.ExpectedMessages {
		if hz < 0 {
			return fmt.Errorf("expected_messages.%s must not be negative", typ)
		}
	}
	if c.HTTP.Addr == "" {
		return fmt.Errorf("http.addr is required")
	}
	if c.Metrics.Addr == "" {
		return fmt.Errorf("metrics.addr is required")
	}
	return nil
}
