package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/eziosoft/MavlinkStats"
)

var (
	statsURLFlag      string
	statsIntervalFlag time.Duration
	resetURLFlag      string
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Poll a running monitor and print per-type rates",
	Long: `Poll /api/snapshot of a running monitor and print one coloured line per
message type: green within tolerance, red outside it.

Examples:
  mavstats stats
  mavstats stats --url http://drone-gw:5001 --interval 2s`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return statsCommand(cmd.Context(), statsURLFlag, statsIntervalFlag)
	},
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Clear the tracked state of a running monitor",
	RunE: func(cmd *cobra.Command, args []string) error {
		return resetCommand(resetURLFlag)
	},
}

func init() {
	statsCmd.Flags().StringVar(&statsURLFlag, "url", "http://localhost:5001", "monitor base URL")
	statsCmd.Flags().DurationVar(&statsIntervalFlag, "interval", time.Second, "refresh interval")
	resetCmd.Flags().StringVar(&resetURLFlag, "url", "http://localhost:5001", "monitor base URL")
}

var httpClient = &http.Client{Timeout: 5 * time.Second}

func statsCommand(parent context.Context, baseURL string, interval time.Duration) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	fmt.Printf("Streaming stats from %s (Ctrl+C to stop)\n", baseURL)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			snap, err := fetchSnapshot(ctx, baseURL)
			if err != nil {
				fmt.Fprintf(os.Stderr, "stats error: %v\n", err)
				continue
			}
			printSnapshot(os.Stdout, snap)
		}
	}
}

func fetchSnapshot(ctx context.Context, baseURL string) (mavlinkstats.Snapshot, error) {
	var snap mavlinkstats.Snapshot
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimRight(baseURL, "/")+"/api/snapshot", nil)
	if err != nil {
		return snap, err
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return snap, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return snap, fmt.Errorf("unexpected status %s", resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		return snap, fmt.Errorf("decode snapshot: %w", err)
	}
	return snap, nil
}

func printSnapshot(w io.Writer, snap mavlinkstats.Snapshot) {
	good := color.New(color.FgGreen).SprintFunc()
	bad := color.New(color.FgRed).SprintFunc()
	dim := color.New(color.Faint).SprintFunc()

	fmt.Fprintf(w, "[%s] participants=%d types=%d stream_requests=%d\n",
		snap.TakenAt.Format(time.RFC3339), len(snap.Participants), len(snap.Messages), len(snap.StreamRequests))

	for _, m := range snap.SortedMessages() {
		expected := "-"
		if m.ExpectedHz != nil {
			expected = fmt.Sprintf("%.2f", *m.ExpectedHz)
		}
		line := fmt.Sprintf("  %-28s %8.2f Hz  expected %6s  from %s", m.Type, m.FrequencyHz, expected, m.Origin)
		switch m.Health {
		case mavlinkstats.HealthGood:
			line = good(line)
		case mavlinkstats.HealthBad:
			line = bad(line)
		default:
			line = dim(line)
		}
		fmt.Fprintln(w, line)
	}
	if len(snap.Missing) > 0 {
		fmt.Fprintf(w, "  %s %s\n", bad("missing:"), strings.Join(snap.Missing, ", "))
	}
}

func resetCommand(baseURL string) error {
	resp, err := httpClient.Post(strings.TrimRight(baseURL, "/")+"/api/reset", "application/json", nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var body struct {
		Status string `json:"status"`
		Error  string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return fmt.Errorf("decode reset response: %w", err)
	}
	if resp.StatusCode != http.StatusOK || body.Status != "ok" {
		return fmt.Errorf("reset failed: %s %s", resp.Status, body.Error)
	}
	fmt.Println("state reset")
	return nil
}
