package mavstats

import (
	"context"
	"errors"
	"time"
)

// Flow builds a Monitor in three steps: Conf loads the config, StreamIN picks
// where messages come from, StreamOUT picks where snapshots go.
type Flow struct {
	cfg   Config
	link  Link
	obs   Observability
	sinks []Sink
	extra []MonitorOption
	stops []func()
}

// FlowOption adjusts a Flow right after its config is loaded.
type FlowOption func(*Flow)

// StreamInOption configures the message source.
type StreamInOption func(*Flow)

// StreamOutOption configures snapshot delivery.
type StreamOutOption func(*Flow)

// Conf loads YAML from disk and returns a Flow over it.
func Conf(path string, opts ...FlowOption) (*Flow, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}
	return ConfFromConfig(cfg, opts...)
}

// ConfFromConfig returns a Flow over a copy of cfg.
func ConfFromConfig(cfg *Config, opts ...FlowOption) (*Flow, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	f := &Flow{cfg: *cfg}
	for _, opt := range opts {
		if opt != nil {
			opt(f)
		}
	}
	return f, nil
}

// Config exposes the flow's own config; edits apply to the next StreamOUT.
func (f *Flow) Config() *Config {
	return &f.cfg
}

func (f *Flow) StreamIN(opts ...StreamInOption) *Flow {
	for _, opt := range opts {
		if opt != nil {
			opt(f)
		}
	}
	return f
}

// StreamOUT applies opts and builds the Monitor.
func (f *Flow) StreamOUT(opts ...StreamOutOption) (*Monitor, error) {
	for _, opt := range opts {
		if opt != nil {
			opt(f)
		}
	}

	mopts := make([]MonitorOption, 0, len(f.sinks)+len(f.extra)+2)
	if f.link != nil {
		mopts = append(mopts, WithLink(f.link))
	}
	if f.obs != nil {
		mopts = append(mopts, WithObservability(f.obs))
	}
	for _, s := range f.sinks {
		mopts = append(mopts, WithSink(s))
	}
	mopts = append(mopts, f.extra...)

	cfg := f.cfg
	return NewMonitor(&cfg, mopts...)
}

// Run builds the Monitor and runs it until ctx ends. Channels handed out by
// Snapshots are closed when it returns.
func (f *Flow) Run(ctx context.Context, opts ...StreamOutOption) error {
	defer f.closeChannels()

	m, err := f.StreamOUT(opts...)
	if err != nil {
		return err
	}
	return m.Run(ctx)
}

// Snapshots registers a channel sink and returns its receive side. The
// channel keeps only the latest snapshots when the reader falls behind.
func (f *Flow) Snapshots(name string, buffer int) <-chan Snapshot {
	sink, ch, stop := NewChannelSink(name, buffer)
	f.sinks = append(f.sinks, sink)
	f.stops = append(f.stops, stop)
	return ch
}

func (f *Flow) closeChannels() {
	for _, stop := range f.stops {
		stop()
	}
	f.stops = nil
}

// WithFlowOptions passes raw MonitorOption values through to NewMonitor.
func WithFlowOptions(opts ...MonitorOption) FlowOption {
	return func(f *Flow) {
		f.extra = append(f.extra, opts...)
	}
}

// StreamInConnection overrides mavlink.connection, e.g. "udpin:0.0.0.0:14550".
func StreamInConnection(conn string) StreamInOption {
	return func(f *Flow) {
		if conn != "" {
			f.cfg.MAVLink.Connection = conn
		}
	}
}

// StreamInLink replaces the MAVLink connector.
func StreamInLink(l Link) StreamInOption {
	return func(f *Flow) {
		if l != nil {
			f.link = l
		}
	}
}

func StreamInObservability(obs Observability) StreamInOption {
	return func(f *Flow) {
		if obs != nil {
			f.obs = obs
		}
	}
}

func StreamOutObservability(obs Observability) StreamOutOption {
	return func(f *Flow) {
		if obs != nil {
			f.obs = obs
		}
	}
}

func StreamOutSink(s Sink) StreamOutOption {
	return func(f *Flow) {
		if s != nil {
			f.sinks = append(f.sinks, s)
		}
	}
}

func StreamOutCallback(name string, fn SnapshotHandler) StreamOutOption {
	return StreamOutSink(NewCallbackSink(name, fn))
}

// StreamOutEvery sets how often snapshots are pushed to sinks.
func StreamOutEvery(d time.Duration) StreamOutOption {
	return func(f *Flow) {
		if d > 0 {
			f.cfg.Policy.PublishInterval = d
		}
	}
}
