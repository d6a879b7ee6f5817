package mavstats

import (
	"context"
	"net"
	"strings"
	"testing"
	"time"
)

func testConfig() *Config {
	return &Config{
		Policy: Policy{
			IdleSleep:       time.Millisecond,
			PublishInterval: 10 * time.Millisecond,
		},
		HTTP:    HTTPConfig{Addr: "127.0.0.1:0"},
		Metrics: MetricsConfig{Addr: "127.0.0.1:0"},
	}
}

func newExternal(t *testing.T) *ExternalLink {
	t.Helper()
	l, err := NewExternalLink(nil, nil)
	if err != nil {
		t.Fatalf("NewExternalLink returned error: %v", err)
	}
	return l
}

func TestNewMonitorWithCustomAdapters(t *testing.T) {
	link := newExternal(t)
	obs := nopObservability{}
	sink := NewCallbackSink("cb", func(Snapshot) error { return nil })

	m, err := NewMonitor(testConfig(), WithLink(link), WithObservability(obs), WithSink(sink))
	if err != nil {
		t.Fatalf("NewMonitor returned error: %v", err)
	}
	if m.link != link {
		t.Fatalf("expected custom link to be used")
	}
	if m.obs != obs {
		t.Fatalf("expected custom observability to be used")
	}
	if len(m.sinks) != 1 || m.sinks[0] != sink {
		t.Fatalf("expected custom sink to be used")
	}
	if m.cfg.Policy.StaleAfter != 5*time.Second {
		t.Fatalf("expected defaults to be applied, got stale_after %s", m.cfg.Policy.StaleAfter)
	}
}

func TestNewMonitorRequiresConnectionWithoutLink(t *testing.T) {
	if _, err := NewMonitor(testConfig(), WithObservability(nopObservability{})); err == nil {
		t.Fatalf("expected missing connection to be rejected")
	}
	if _, err := NewMonitor(nil); err == nil {
		t.Fatalf("expected nil config to be rejected")
	}
}

func TestNewMonitorDefaultsToMAVLinkLink(t *testing.T) {
	cfg := testConfig()
	cfg.MAVLink.Connection = "udpin:127.0.0.1:14550"
	cfg.MAVLink.Dialect = "common"

	m, err := NewMonitor(cfg, WithObservability(nopObservability{}))
	if err != nil {
		t.Fatalf("NewMonitor returned error: %v", err)
	}
	if _, ok := m.link.(catalogProvider); !ok {
		t.Fatalf("expected default link to expose a dialect catalog, got %T", m.link)
	}
	if got := m.requests.Name(30); got != "ATTITUDE" {
		t.Fatalf("expected catalog names to reach the interpreter, got %s", got)
	}
}

func TestMonitorEndToEndWithExternalLink(t *testing.T) {
	link := newExternal(t)
	sink, ch, closeSink := NewChannelSink("chan", 4)
	defer closeSink()

	m, err := NewMonitor(testConfig(), WithLink(link), WithObservability(nopObservability{}), WithSink(sink))
	if err != nil {
		t.Fatalf("NewMonitor returned error: %v", err)
	}

	origin := Participant{SystemID: 1, ComponentID: 1}
	gcs := Participant{SystemID: 255, ComponentID: 190}
	if err := link.Publish(Message{Type: "GLOBAL_POSITION_INT", Origin: origin}); err != nil {
		t.Fatalf("Publish returned error: %v", err)
	}
	if err := link.Publish(Message{
		Type:    CommandLongType,
		Origin:  gcs,
		Target:  &origin,
		Command: &Command{ID: 511, Param1: 33, Param2: 1e6, TargetSystem: 1, TargetComponent: 1},
	}); err != nil {
		t.Fatalf("Publish returned error: %v", err)
	}

	if err := m.Start(); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	if err := m.Start(); err == nil {
		t.Fatalf("expected second Start to fail")
	}

	var snap Snapshot
	deadline := time.After(2 * time.Second)
	for len(snap.Messages) < 2 {
		select {
		case snap = <-ch:
		case <-deadline:
			t.Fatalf("timed out waiting for snapshot, last: %+v", snap)
		}
	}

	if len(snap.Participants) != 2 {
		t.Fatalf("expected 2 participants, got %v", snap.Participants)
	}
	if len(snap.StreamRequests) != 1 || snap.StreamRequests[0].StreamName != "GLOBAL_POSITION_INT" {
		t.Fatalf("unexpected stream requests: %+v", snap.StreamRequests)
	}
	if snap.Messages["GLOBAL_POSITION_INT"].Health != HealthBad {
		t.Fatalf("single arrival has frequency 0 and must be bad, got %s", snap.Messages["GLOBAL_POSITION_INT"].Health)
	}

	if err := m.Reset(); err != nil {
		t.Fatalf("Reset returned error: %v", err)
	}
	after := m.Snapshot()
	if len(after.Messages) != 0 || len(after.Participants) != 0 || len(after.StreamRequests) != 0 {
		t.Fatalf("expected empty snapshot after reset, got %+v", after)
	}
	if len(after.Missing) != len(DefaultExpected()) {
		t.Fatalf("expected every default type to be missing, got %v", after.Missing)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := m.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown returned error: %v", err)
	}
	if err := link.Publish(Message{Type: "ATTITUDE"}); err != ErrLinkClosed {
		t.Fatalf("expected link to be closed on shutdown, got %v", err)
	}
}

func TestMonitorRunReportsListenFailure(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()

	cfg := testConfig()
	cfg.HTTP.Addr = ln.Addr().String()

	m, err := NewMonitor(cfg, WithLink(newExternal(t)), WithObservability(nopObservability{}))
	if err != nil {
		t.Fatalf("NewMonitor returned error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err = m.Run(ctx)
	if err == nil || !strings.Contains(err.Error(), "listen") {
		t.Fatalf("expected listen failure, got %v", err)
	}
}
