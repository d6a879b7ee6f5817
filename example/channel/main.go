package main

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/eziosoft/MavlinkStats"
)

func main() {
	flow, err := mavlinkstats.Conf("../../data/config.yaml")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go missingWatcher(flow.Snapshots("alerts", 4))

	if err := flow.Run(ctx, mavlinkstats.StreamOutEvery(2*time.Second)); err != nil && err != context.Canceled {
		log.Fatalf("monitor error: %v", err)
	}
}

func missingWatcher(snapshots <-chan mavlinkstats.Snapshot) {
	for snap := range snapshots {
		if len(snap.Missing) > 0 {
			fmt.Printf("[%s] missing %v\n", snap.TakenAt.Format(time.RFC3339), snap.Missing)
		}
	}
}
