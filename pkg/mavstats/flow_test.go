package mavstats

import (
	"context"
	"testing"
	"time"
)

func TestConfFromConfigAndStreamBuilder(t *testing.T) {
	cfg := testConfig()

	flow, err := ConfFromConfig(cfg)
	if err != nil {
		t.Fatalf("ConfFromConfig returned error: %v", err)
	}

	link := newExternal(t)
	obs := nopObservability{}

	m, err := flow.
		StreamIN(
			StreamInLink(link),
			StreamInObservability(obs),
		).
		StreamOUT(
			StreamOutCallback("cb", func(Snapshot) error { return nil }),
			StreamOutObservability(obs),
			StreamOutEvery(250*time.Millisecond),
		)
	if err != nil {
		t.Fatalf("StreamOUT returned error: %v", err)
	}
	if m.link != link {
		t.Fatalf("expected custom link to be wired")
	}
	if len(m.sinks) != 1 || m.sinks[0].Name() != "cb" {
		t.Fatalf("expected callback sink to be wired")
	}
	if m.cfg.Policy.PublishInterval != 250*time.Millisecond {
		t.Fatalf("expected publish interval 250ms, got %s", m.cfg.Policy.PublishInterval)
	}
	if cfg.Policy.PublishInterval != 10*time.Millisecond {
		t.Fatalf("caller config must not be modified, got %s", cfg.Policy.PublishInterval)
	}
}

func TestStreamInConnectionOverridesConfig(t *testing.T) {
	cfg := testConfig()
	cfg.MAVLink.Connection = "udpin:0.0.0.0:14550"

	flow, err := ConfFromConfig(cfg)
	if err != nil {
		t.Fatalf("ConfFromConfig returned error: %v", err)
	}
	flow.StreamIN(StreamInConnection("tcp:127.0.0.1:5760"), StreamInConnection(""))

	if got := flow.Config().MAVLink.Connection; got != "tcp:127.0.0.1:5760" {
		t.Fatalf("expected connection override, got %q", got)
	}
	if cfg.MAVLink.Connection != "udpin:0.0.0.0:14550" {
		t.Fatalf("caller config must not be modified, got %q", cfg.MAVLink.Connection)
	}
}

func TestFlowSnapshotsDeliversAndClosesOnRun(t *testing.T) {
	flow, err := ConfFromConfig(testConfig())
	if err != nil {
		t.Fatalf("ConfFromConfig returned error: %v", err)
	}
	link := newExternal(t)
	flow.StreamIN(StreamInLink(link), StreamInObservability(nopObservability{}))
	snapshots := flow.Snapshots("watch", 2)

	if err := link.Publish(Message{Type: "ATTITUDE", Origin: Participant{SystemID: 1, ComponentID: 1}}); err != nil {
		t.Fatalf("Publish returned error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- flow.Run(ctx) }()

	deadline := time.After(2 * time.Second)
	for seen := false; !seen; {
		select {
		case snap := <-snapshots:
			_, seen = snap.Messages["ATTITUDE"]
		case <-deadline:
			cancel()
			t.Fatalf("no snapshot carrying ATTITUDE arrived")
		}
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned unexpected error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("Run did not return after cancel")
	}

	for range snapshots {
	}
}

func TestFlowRunUsesStreamOutOptions(t *testing.T) {
	flow, err := ConfFromConfig(testConfig())
	if err != nil {
		t.Fatalf("ConfFromConfig returned error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	// Stop immediately; Run must still start and shut down cleanly.
	cancel()
	if err := flow.StreamIN(
		StreamInLink(newExternal(t)),
		StreamInObservability(nopObservability{}),
	).Run(ctx,
		StreamOutSink(NewCallbackSink("cb", func(Snapshot) error { return nil })),
	); err != nil {
		t.Fatalf("Run returned unexpected error: %v", err)
	}
}

func TestConfMissingFile(t *testing.T) {
	if _, err := Conf("does-not-exist.yaml"); err == nil {
		t.Fatalf("expected missing file to fail")
	}
}

func TestConfFromNilConfig(t *testing.T) {
	if _, err := ConfFromConfig(nil); err == nil {
		t.Fatalf("expected nil config to fail")
	}
}
