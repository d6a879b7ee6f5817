package mavlinkstats

import (
	"time"

	base "github.com/eziosoft/MavlinkStats/pkg/mavstats"
)

// Re-exported errors for convenience.
var (
	ErrQueueFull         = base.ErrQueueFull
	ErrLinkClosed        = base.ErrLinkClosed
	ErrChannelSinkClosed = base.ErrChannelSinkClosed
)

// Type aliases so consumers can import github.com/eziosoft/MavlinkStats directly.
type (
	Config              = base.Config
	Policy              = base.Policy
	MAVLinkConfig       = base.MAVLinkConfig
	StreamRequestConfig = base.StreamRequestConfig
	HTTPConfig          = base.HTTPConfig
	MetricsConfig       = base.MetricsConfig
	LogConfig           = base.LogConfig
	Flow                = base.Flow
	FlowOption          = base.FlowOption
	StreamInOption      = base.StreamInOption
	StreamOutOption     = base.StreamOutOption
	Monitor             = base.Monitor
	MonitorOption       = base.MonitorOption
	Message             = base.Message
	Participant         = base.Participant
	Command             = base.Command
	Snapshot            = base.Snapshot
	MessageState        = base.MessageState
	StreamRequest       = base.StreamRequest
	Health              = base.Health
	SnapshotHandler     = base.SnapshotHandler
	Link                = base.Link
	Sink                = base.Sink
	MessageQueue        = base.MessageQueue
	Observability       = base.Observability
	Field               = base.Field
	ExternalLink        = base.ExternalLink
	ExternalLinkConfig  = base.ExternalLinkConfig
)

// Health classes and the stream-request type tag.
const (
	HealthGood         = base.HealthGood
	HealthBad          = base.HealthBad
	HealthUnclassified = base.HealthUnclassified
	CommandLongType    = base.CommandLongType
)

// Config helpers.
func LoadConfig(path string) (*Config, error) {
	return base.LoadConfig(path)
}

func ParseConfig(raw []byte) (*Config, error) {
	return base.ParseConfig(raw)
}

func DefaultExpected() map[string]float64 {
	return base.DefaultExpected()
}

// Flow builder helpers.
func Conf(path string, opts ...FlowOption) (*Flow, error) {
	return base.Conf(path, opts...)
}

func ConfFromConfig(cfg *Config, opts ...FlowOption) (*Flow, error) {
	return base.ConfFromConfig(cfg, opts...)
}

func WithFlowOptions(opts ...MonitorOption) FlowOption {
	return base.WithFlowOptions(opts...)
}

func StreamInConnection(conn string) StreamInOption {
	return base.StreamInConnection(conn)
}

func StreamInLink(l Link) StreamInOption {
	return base.StreamInLink(l)
}

func StreamInObservability(obs Observability) StreamInOption {
	return base.StreamInObservability(obs)
}

func StreamOutSink(s Sink) StreamOutOption {
	return base.StreamOutSink(s)
}

func StreamOutObservability(obs Observability) StreamOutOption {
	return base.StreamOutObservability(obs)
}

func StreamOutCallback(name string, fn SnapshotHandler) StreamOutOption {
	return base.StreamOutCallback(name, fn)
}

func StreamOutEvery(d time.Duration) StreamOutOption {
	return base.StreamOutEvery(d)
}

// Monitor and options.
func NewMonitor(cfg *Config, opts ...MonitorOption) (*Monitor, error) {
	return base.NewMonitor(cfg, opts...)
}

func WithLink(l Link) MonitorOption {
	return base.WithLink(l)
}

func WithSink(s Sink) MonitorOption {
	return base.WithSink(s)
}

func WithObservability(obs Observability) MonitorOption {
	return base.WithObservability(obs)
}

func WithClock(now func() time.Time) MonitorOption {
	return base.WithClock(now)
}

// Sink adapters.
func NewCallbackSink(name string, fn SnapshotHandler) Sink {
	return base.NewCallbackSink(name, fn)
}

func NewChannelSink(name string, buffer int) (Sink, <-chan Snapshot, func()) {
	return base.NewChannelSink(name, buffer)
}

// External link.
func NewExternalLink(cfg *ExternalLinkConfig, obs Observability) (*ExternalLink, error) {
	return base.NewExternalLink(cfg, obs)
}
