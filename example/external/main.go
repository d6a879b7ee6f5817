package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/eziosoft/MavlinkStats"
)

// Feeds the monitor from a synthetic source instead of a MAVLink node.
func main() {
	cfg, err := mavlinkstats.ParseConfig([]byte("mavlink:\n  connection: udpin:127.0.0.1:14550\n"))
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	link, err := mavlinkstats.NewExternalLink(&mavlinkstats.ExternalLinkConfig{
		Policy: mavlinkstats.Policy{MaxQueueLen: 1024, OnQueueFull: "drop"},
	}, nil)
	if err != nil {
		log.Fatalf("external link: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go produce(ctx, link)

	m, err := mavlinkstats.NewMonitor(cfg, mavlinkstats.WithLink(link))
	if err != nil {
		log.Fatalf("monitor: %v", err)
	}
	log.Printf("dashboard on http://localhost%s/drone_stats", cfg.HTTP.Addr)
	if err := m.Run(ctx); err != nil {
		log.Fatalf("monitor exited: %v", err)
	}
}

func produce(ctx context.Context, link *mavlinkstats.ExternalLink) {
	vehicle := mavlinkstats.Participant{SystemID: 1, ComponentID: 1}
	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()

	for i := 0; ; i++ {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		_ = link.Publish(mavlinkstats.Message{Type: "ATTITUDE", Origin: vehicle, Fields: map[string]any{"roll": 0.01 * float64(i)}})
		if i%4 == 0 {
			_ = link.Publish(mavlinkstats.Message{Type: "GLOBAL_POSITION_INT", Origin: vehicle})
		}
	}
}
