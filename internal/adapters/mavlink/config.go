package mavlink

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/bluenviron/gomavlib/v3"
)

// Config captures the runtime details required to open a MAVLink link.
type Config struct {
	Connection       string        `yaml:"connection"`
	Dialect          string        `yaml:"dialect"`
	SystemID         uint8         `yaml:"system_id"`
	ComponentID      uint8         `yaml:"component_id"`
	HeartbeatTimeout time.Duration `yaml:"heartbeat_timeout"`
	RetryBackoff     time.Duration `yaml:"retry_backoff"`
}

const defaultBaud = 57600

func (c *Config) ApplyDefaults() {
	if c.Dialect == "" {
		c.Dialect = "ardupilotmega"
	}
	if c.SystemID == 0 {
		c.SystemID = 255
	}
	if c.ComponentID == 0 {
		c.ComponentID = 190
	}
	if c.HeartbeatTimeout <= 0 {
		c.HeartbeatTimeout = 10 * time.Second
	}
	if c.RetryBackoff <= 0 {
		c.RetryBackoff = 5 * time.Second
	}
}

func (c *Config) Validate() error {
	if c.Connection == "" {
		return errors.New("connection is required")
	}
	if _, err := ParseConnection(c.Connection); err != nil {
		return err
	}
	if _, ok := dialects[strings.ToLower(c.Dialect)]; !ok {
		return fmt.Errorf("unknown dialect %q", c.Dialect)
	}
	return nil
}

// ParseConnection turns a pymavlink-style connection string into an endpoint:
//
//	udpin:0.0.0.0:14550   udp:0.0.0.0:14550   udpout:10.0.0.2:14550
//	udpbcast:192.168.1.255:14550
//	tcp:127.0.0.1:5760    tcpin:0.0.0.0:5760
//	serial:/dev/ttyUSB0:57600   /dev/ttyACM0,115200   COM3
func ParseConnection(s string) (gomavlib.EndpointConf, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, errors.New("empty connection string")
	}

	scheme, rest, found := strings.Cut(s, ":")
	if !found || isDevicePath(s) {
		return parseSerial(s)
	}

	switch strings.ToLower(scheme) {
	case "udpin", "udp":
		addr, err := hostPort(rest)
		if err != nil {
			return nil, err
		}
		return gomavlib.EndpointUDPServer{Address: addr}, nil
	case "udpout":
		addr, err := hostPort(rest)
		if err != nil {
			return nil, err
		}
		return gomavlib.EndpointUDPClient{Address: addr}, nil
	case "udpbcast":
		addr, err := hostPort(rest)
		if err != nil {
			return nil, err
		}
		_, port, _ := net.SplitHostPort(addr)
		return gomavlib.EndpointUDPBroadcast{BroadcastAddress: addr, LocalAddress: ":" + port}, nil
	case "tcp":
		addr, err := hostPort(rest)
		if err != nil {
			return nil, err
		}
		return gomavlib.EndpointTCPClient{Address: addr}, nil
	case "tcpin":
		addr, err := hostPort(rest)
		if err != nil {
			return nil, err
		}
		return gomavlib.EndpointTCPServer{Address: addr}, nil
	case "serial":
		return parseSerial(rest)
	default:
		return nil, fmt.Errorf("unsupported connection scheme %q", scheme)
	}
}

func hostPort(s string) (string, error) {
	host, port, err := net.SplitHostPort(s)
	if err != nil {
		return "", fmt.Errorf("invalid address %q: %w", s, err)
	}
	if _, err := strconv.ParseUint(port, 10, 16); err != nil {
		return "", fmt.Errorf("invalid port in %q", s)
	}
	return net.JoinHostPort(host, port), nil
}

func isDevicePath(s string) bool {
	return strings.HasPrefix(s, "/") || strings.HasPrefix(strings.ToUpper(s), "COM")
}

func parseSerial(s string) (gomavlib.EndpointConf, error) {
	device, baud := s, defaultBaud
	if i := strings.LastIndexAny(s, ",:"); i > 0 {
		if b, err := strconv.Atoi(s[i+1:]); err == nil {
			device, baud = s[:i], b
		}
	}
	if device == "" {
		return nil, errors.New("serial device is required")
	}
	if baud <= 0 {
		return nil, fmt.Errorf("invalid baud rate %d", baud)
	}
	return gomavlib.EndpointSerial{Device: device, Baud: baud}, nil
}
