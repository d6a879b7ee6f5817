package observability

import (
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/eziosoft/MavlinkStats/internal/ports"
)

type PromObs struct {
	reg      *prometheus.Registry
	logger   *slog.Logger
	counters map[string]prometheus.Counter
	gauges   map[string]prometheus.Gauge
	histos   map[string]prometheus.Observer
}

func NewPromObs(logger *slog.Logger) *PromObs {
	if logger == nil {
		logger = slog.Default()
	}

	counter := func(name, help string) prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{Name: name, Help: help})
	}
	gauge := func(name, help string) prometheus.Gauge {
		return prometheus.NewGauge(prometheus.GaugeOpts{Name: name, Help: help})
	}

	counters := map[string]prometheus.Counter{
		"mavstats_messages_total":         counter("mavstats_messages_total", "MAVLink messages ingested."),
		"mavstats_stream_requests_total":  counter("mavstats_stream_requests_total", "Stream requests observed from peers."),
		"mavstats_evictions_total":        counter("mavstats_evictions_total", "Message types evicted as stale."),
		"mavstats_link_lost_total":        counter("mavstats_link_lost_total", "Times the upstream link was lost."),
		"mavstats_connect_attempts_total": counter("mavstats_connect_attempts_total", "Connection attempts, including retries."),
		"mavstats_parse_errors_total":     counter("mavstats_parse_errors_total", "Frames the decoder could not parse."),
		"mavstats_resets_total":           counter("mavstats_resets_total", "Operator resets of tracked state."),
		"mavstats_queue_dropped_total":    counter("mavstats_queue_dropped_total", "Externally published messages dropped by queue policy."),
	}
	gauges := map[string]prometheus.Gauge{
		"mavstats_tracked_types":         gauge("mavstats_tracked_types", "Message types currently fresh."),
		"mavstats_detected_participants": gauge("mavstats_detected_participants", "Distinct system/component pairs seen since reset."),
		"mavstats_missing_messages":      gauge("mavstats_missing_messages", "Expected message types currently absent."),
	}
	connect := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "mavstats_connect_seconds",
		Help:    "Time from opening the link to the first heartbeat.",
		Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
	})
	httpLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "mavstats_http_request_seconds",
		Help:    "Dashboard and API request latency.",
		Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
	})

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		connect,
		httpLatency,
	)
	for _, c := range counters {
		reg.MustRegister(c)
	}
	for _, g := range gauges {
		reg.MustRegister(g)
	}

	return &PromObs{
		reg:      reg,
		logger:   logger,
		counters: counters,
		gauges:   gauges,
		histos: map[string]prometheus.Observer{
			"mavstats_connect_seconds":      connect,
			"mavstats_http_request_seconds": httpLatency,
		},
	}
}

// Handler serves the private registry in the Prometheus exposition format.
func (p *PromObs) Handler() http.Handler {
	return promhttp.HandlerFor(p.reg, promhttp.HandlerOpts{})
}

func (p *PromObs) LogInfo(msg string, fields ...ports.Field) {
	p.logger.Info(msg, attrs(fields)...)
}

func (p *PromObs) LogError(msg string, err error, fields ...ports.Field) {
	if err != nil {
		p.logger.Error(msg, append(attrs(fields), slog.Any("err", err))...)
	}
}

func (p *PromObs) LogCritical(msg string, err error, fields ...ports.Field) {
	if err != nil {
		p.logger.Error(msg, append(attrs(fields), slog.Any("err", err), slog.Bool("critical", true))...)
	}
}

func (p *PromObs) IncCounter(name string, v float64) {
	if c, ok := p.counters[name]; ok {
		c.Add(v)
	}
}

func (p *PromObs) ObserveLatency(name string, seconds float64) {
	if h, ok := p.histos[name]; ok {
		h.Observe(seconds)
	}
}

func (p *PromObs) SetGauge(name string, v float64) {
	if g, ok := p.gauges[name]; ok {
		g.Set(v)
	}
}

func attrs(fields []ports.Field) []any {
	out := make([]any, 0, len(fields))
	for _, f := range fields {
		out = append(out, slog.Any(f.Key, f.Value))
	}
	return out
}

var _ ports.Observability = (*PromObs)(nil)
