package mavstats

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/eziosoft/MavlinkStats/internal/adapters/httpapi"
	"github.com/eziosoft/MavlinkStats/internal/adapters/mavlink"
	"github.com/eziosoft/MavlinkStats/internal/adapters/observability"
	"github.com/eziosoft/MavlinkStats/internal/app/pipeline"
	"github.com/eziosoft/MavlinkStats/internal/app/query"
	"github.com/eziosoft/MavlinkStats/internal/app/streamreq"
	"github.com/eziosoft/MavlinkStats/internal/app/tracker"
	"github.com/eziosoft/MavlinkStats/internal/ports"
)

// MonitorOption customizes the dependencies used by Monitor.
type MonitorOption func(*monitorOverrides)

type monitorOverrides struct {
	link          Link
	observability Observability
	sinks         []Sink
	now           func() time.Time
}

// WithLink replaces the MAVLink connector with any message source (replays,
// simulators, an ExternalLink fed by the caller).
func WithLink(l Link) MonitorOption {
	return func(o *monitorOverrides) {
		o.link = l
	}
}

// WithObservability plugs in a custom observability backend.
func WithObservability(obs Observability) MonitorOption {
	return func(o *monitorOverrides) {
		o.observability = obs
	}
}

// WithSink adds a sink that receives a snapshot every publish interval.
// It may be given more than once.
func WithSink(s Sink) MonitorOption {
	return func(o *monitorOverrides) {
		if s != nil {
			o.sinks = append(o.sinks, s)
		}
	}
}

// WithClock overrides time.Now for ingestion and snapshots.
func WithClock(now func() time.Time) MonitorOption {
	return func(o *monitorOverrides) {
		o.now = now
	}
}

// catalogProvider is implemented by links that know their dialect's message names.
type catalogProvider interface {
	Catalog() map[uint32]string
}

// metricsProvider is implemented by observability backends that expose /metrics.
type metricsProvider interface {
	Handler() http.Handler
}

// Monitor wires link → tracker → query service and serves the dashboard,
// metrics and snapshot sinks around it.
type Monitor struct {
	cfg      Config
	obs      ports.Observability
	link     ports.Link
	store    *tracker.Store
	requests *streamreq.Interpreter
	query    *query.Service
	web      *httpapi.Server
	sinks    []ports.Sink
	now      func() time.Time
	closers  []io.Closer

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
	runErr error
}

// NewMonitor bootstraps the default adapters (MAVLink link, Prometheus
// observability with slog logging). MonitorOption values override any of them.
func NewMonitor(cfg *Config, opts ...MonitorOption) (*Monitor, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	var overrides monitorOverrides
	for _, opt := range opts {
		if opt != nil {
			opt(&overrides)
		}
	}

	c := *cfg
	c.ApplyDefaults()
	validate := c.Validate
	if overrides.link != nil {
		validate = c.ValidateTracking
	}
	if err := validate(); err != nil {
		return nil, err
	}

	m := &Monitor{
		cfg:   c,
		sinks: overrides.sinks,
		now:   overrides.now,
		done:  make(chan struct{}),
	}
	if m.now == nil {
		m.now = time.Now
	}

	m.obs = overrides.observability
	if m.obs == nil {
		logger, closer, err := observability.NewLogger(c.Log)
		if err != nil {
			return nil, err
		}
		m.closers = append(m.closers, closer)
		m.obs = observability.NewPromObs(logger)
	}

	m.link = overrides.link
	if m.link == nil {
		l, err := mavlink.NewLink(c.MAVLink, m.obs)
		if err != nil {
			m.closeAll()
			return nil, err
		}
		m.link = l
	}

	var catalog map[uint32]string
	if cp, ok := m.link.(catalogProvider); ok {
		catalog = cp.Catalog()
	} else {
		catalog = mavlink.Catalog(c.MAVLink.Dialect)
	}

	m.store = tracker.NewStore()
	m.requests = streamreq.New(c.StreamRequests, catalog)
	m.query = query.NewService(m.store, c.ExpectedMessages, c.Policy.Tolerance, m.now)

	web, err := httpapi.New(m.query, m.obs)
	if err != nil {
		m.closeAll()
		return nil, err
	}
	m.web = web

	return m, nil
}

// Start launches ingestion, the dashboard and metrics servers, the gauge
// recorder and the snapshot publisher. It returns immediately; call Run to
// block on a context instead.
func (m *Monitor) Start() error {
	if m == nil {
		return fmt.Errorf("monitor is nil")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cancel != nil {
		return fmt.Errorf("monitor already started")
	}

	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		err := pipeline.RunMonitorPipeline(gctx, pipeline.Deps{
			Link:     m.link,
			Store:    m.store,
			Requests: m.requests,
			Policy:   m.cfg.Policy,
			Obs:      m.obs,
			Now:      m.now,
		})
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	g.Go(func() error {
		return serve(gctx, &http.Server{Addr: m.cfg.HTTP.Addr, Handler: m.web.Handler()})
	})

	if mp, ok := m.obs.(metricsProvider); ok {
		g.Go(func() error {
			return serve(gctx, &http.Server{Addr: m.cfg.Metrics.Addr, Handler: metricsMux(mp.Handler())})
		})
	}

	g.Go(func() error {
		m.recordGauges(gctx, m.cfg.Policy.PublishInterval)
		return nil
	})

	if len(m.sinks) > 0 {
		g.Go(func() error {
			m.publishSnapshots(gctx, m.cfg.Policy.PublishInterval)
			return nil
		})
	}

	m.obs.LogInfo("monitor_started",
		ports.Field{Key: "http_addr", Value: m.cfg.HTTP.Addr},
		ports.Field{Key: "metrics_addr", Value: m.cfg.Metrics.Addr})

	go func() {
		err := g.Wait()
		m.mu.Lock()
		m.runErr = err
		m.mu.Unlock()
		if err != nil {
			m.obs.LogCritical("monitor_failed", err)
		}
		close(m.done)
	}()
	return nil
}

// Run starts the monitor and blocks until ctx is cancelled or a component
// fails. Upon return it attempts a graceful shutdown.
func (m *Monitor) Run(ctx context.Context) error {
	if err := m.Start(); err != nil {
		return err
	}
	select {
	case <-ctx.Done():
	case <-m.done:
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return m.Shutdown(shutdownCtx)
}

// Shutdown stops every component and waits for them, respecting ctx.
func (m *Monitor) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	cancel := m.cancel
	m.mu.Unlock()
	if cancel == nil {
		m.closeAll()
		return nil
	}
	cancel()

	var errs []error
	select {
	case <-m.done:
		m.mu.Lock()
		errs = append(errs, m.runErr)
		m.mu.Unlock()
	case <-ctx.Done():
		errs = append(errs, ctx.Err())
	}
	errs = append(errs, m.closeAll())
	return errors.Join(errs...)
}

// Snapshot returns the current state with health and missing types derived.
func (m *Monitor) Snapshot() Snapshot {
	return m.query.Snapshot()
}

// Reset clears participants, tracked messages and stream requests.
func (m *Monitor) Reset() error {
	if err := m.query.Reset(); err != nil {
		return err
	}
	m.obs.IncCounter("mavstats_resets_total", 1)
	return nil
}

// Handler exposes the dashboard and JSON API for mounting on a caller's mux.
func (m *Monitor) Handler() http.Handler {
	return m.web.Handler()
}

func (m *Monitor) recordGauges(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			types, participants := m.store.Counts()
			m.obs.SetGauge("mavstats_tracked_types", float64(types))
			m.obs.SetGauge("mavstats_detected_participants", float64(participants))
			m.obs.SetGauge("mavstats_missing_messages", float64(m.query.MissingCount()))
		}
	}
}

func (m *Monitor) publishSnapshots(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			snap := m.query.Snapshot()
			for _, s := range m.sinks {
				if err := s.WriteSnapshot(snap); err != nil {
					m.obs.LogError("sink_write_failed", err, ports.Field{Key: "sink", Value: s.Name()})
				}
			}
		}
	}
}

func (m *Monitor) closeAll() error {
	var errs []error
	for _, c := range m.closers {
		errs = append(errs, c.Close())
	}
	m.closers = nil
	return errors.Join(errs...)
}

func metricsMux(h http.Handler) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", h)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}

// serve runs srv until ctx is cancelled, then shuts it down gracefully.
func serve(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen %s: %w", srv.Addr, err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
