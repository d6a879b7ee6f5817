package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
mavlink:
  connection: udpin:0.0.0.0:14550
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.Policy.IdleSleep != 5*time.Millisecond {
		t.Fatalf("expected IdleSleep default 5ms, got %s", cfg.Policy.IdleSleep)
	}
	if cfg.Policy.StaleAfter != 5*time.Second {
		t.Fatalf("expected StaleAfter default 5s, got %s", cfg.Policy.StaleAfter)
	}
	if cfg.Policy.Tolerance != 0.2 {
		t.Fatalf("expected Tolerance default 0.2, got %v", cfg.Policy.Tolerance)
	}
	if cfg.HTTP.Addr != ":5001" {
		t.Fatalf("expected default http addr :5001, got %s", cfg.HTTP.Addr)
	}
	if cfg.Metrics.Addr != ":9100" {
		t.Fatalf("expected default metrics addr :9100, got %s", cfg.Metrics.Addr)
	}
	if cfg.MAVLink.Dialect != "ardupilotmega" {
		t.Fatalf("expected default dialect ardupilotmega, got %s", cfg.MAVLink.Dialect)
	}
	if !cfg.StreamRequests.IsStrict() || cfg.StreamRequests.CommandID != 511 {
		t.Fatalf("expected strict stream requests on command 511, got %+v", cfg.StreamRequests)
	}
	if cfg.ExpectedMessages["LANDING_TARGET"] != 16 || len(cfg.ExpectedMessages) != 10 {
		t.Fatalf("expected default expected table, got %v", cfg.ExpectedMessages)
	}
}

func TestLoadKeepsExplicitValues(t *testing.T) {
	path := writeConfig(t, `
policy:
  stale_after: 2s
  tolerance: 0.1
mavlink:
  connection: tcp:192.168.1.10:5760
  dialect: common
stream_requests:
  strict: false
  names:
    26: SCALED_IMU3
expected_messages:
  HEARTBEAT: 1
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Policy.StaleAfter != 2*time.Second {
		t.Fatalf("expected stale_after 2s, got %s", cfg.Policy.StaleAfter)
	}
	if cfg.StreamRequests.IsStrict() {
		t.Fatalf("expected loose stream request mode")
	}
	if cfg.StreamRequests.Names[26] != "SCALED_IMU3" {
		t.Fatalf("expected name override, got %v", cfg.StreamRequests.Names)
	}
	if len(cfg.ExpectedMessages) != 1 {
		t.Fatalf("expected table must replace defaults, got %v", cfg.ExpectedMessages)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	t.Setenv(EnvConnection, "udpout:10.0.0.2:14550")
	t.Setenv(EnvHTTPAddr, ":8080")

	cfg, err := Parse([]byte("mavlink:\n  connection: udpin:0.0.0.0:14550\n"))
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.MAVLink.Connection != "udpout:10.0.0.2:14550" {
		t.Fatalf("expected env connection, got %s", cfg.MAVLink.Connection)
	}
	if cfg.HTTP.Addr != ":8080" {
		t.Fatalf("expected env http addr, got %s", cfg.HTTP.Addr)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := map[string]string{
		"missing connection": "policy:\n  idle_sleep: 1ms\n",
		"tolerance":          "mavlink:\n  connection: udpin:0.0.0.0:14550\npolicy:\n  tolerance: 1.5\n",
		"negative expected":  "mavlink:\n  connection: udpin:0.0.0.0:14550\nexpected_messages:\n  ATTITUDE: -1\n",
		"queue mode":         "mavlink:\n  connection: udpin:0.0.0.0:14550\npolicy:\n  on_queue_full: explode\n",
		"dialect":            "mavlink:\n  connection: udpin:0.0.0.0:14550\n  dialect: klingon\n",
	}
	for name, data := range cases {
		if _, err := Parse([]byte(data)); err == nil {
			t.Fatalf("%s: expected validation error", name)
		}
	}
}

func TestValidateTrackingIgnoresConnection(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()

	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected missing connection to fail full validation")
	}
	if err := cfg.ValidateTracking(); err != nil {
		t.Fatalf("tracking validation: %v", err)
	}
}
