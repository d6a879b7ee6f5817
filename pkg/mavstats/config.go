package mavstats

import (
	"github.com/eziosoft/MavlinkStats/internal/adapters/mavlink"
	"github.com/eziosoft/MavlinkStats/internal/adapters/observability"
	"github.com/eziosoft/MavlinkStats/internal/app/config"
	"github.com/eziosoft/MavlinkStats/internal/app/streamreq"
	"github.com/eziosoft/MavlinkStats/internal/ports"
)

// Config re-exports the root configuration struct so downstream projects can
// construct or modify it programmatically.
type Config = config.Config

type (
	// Policy controls loop pacing, staleness and queue thresholds.
	Policy = ports.Policy
	// MAVLinkConfig selects the upstream connection and dialect.
	MAVLinkConfig = mavlink.Config
	// StreamRequestConfig controls which commands count as stream requests.
	StreamRequestConfig = streamreq.Config
	// HTTPConfig configures the dashboard server.
	HTTPConfig = config.HTTPConfig
	// MetricsConfig configures the metrics HTTP server.
	MetricsConfig = config.MetricsConfig
	// LogConfig configures structured logging.
	LogConfig = observability.LogConfig
)

// LoadConfig loads YAML from disk using the internal config reader.
func LoadConfig(path string) (*Config, error) {
	return config.Load(path)
}

// ParseConfig builds a config from YAML bytes.
func ParseConfig(raw []byte) (*Config, error) {
	return config.Parse(raw)
}

// DefaultExpected returns a fresh copy of the built-in expected-rate table.
func DefaultExpected() map[string]float64 {
	return config.DefaultExpected()
}
