package main

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/eziosoft/MavlinkStats/pkg/mavstats"
)

func main() {
	flow, err := mavstats.Conf("../../data/config.yaml")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	callback := func(snap mavstats.Snapshot) error {
		fmt.Printf("%s types=%d missing=%v\n",
			snap.TakenAt.Format(time.RFC3339),
			len(snap.Messages),
			snap.Missing,
		)
		for _, m := range snap.SortedMessages() {
			if m.Health == mavstats.HealthBad {
				fmt.Printf("  %s at %.2f Hz\n", m.Type, m.FrequencyHz)
			}
		}
		return nil
	}

	if err := flow.Run(ctx, mavstats.StreamOutCallback("stdout", callback)); err != nil && err != context.Canceled {
		log.Fatalf("monitor error: %v", err)
	}
}
