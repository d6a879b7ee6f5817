package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/eziosoft/MavlinkStats"
	"github.com/eziosoft/MavlinkStats/internal/app/config"
)

// Command-specific flags
var (
	configPath     string
	connectionFlag string
	envFileFlag    string
)

var rootCmd = &cobra.Command{
	Use:   "mavstats",
	Short: "Live MAVLink message rate and freshness monitor",
	Long: `mavstats connects to a MAVLink telemetry feed, tracks how often each
message type arrives, and serves the result as a dashboard and JSON API.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadEnvFile(envFileFlag)
	},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the monitor using the provided config",
	Long: `Start the monitor: connect to the MAVLink endpoint, serve the dashboard
on http.addr and Prometheus metrics on metrics.addr.

Examples:
  mavstats run --config ./data/config.yaml
  mavstats run --config ./data/config.yaml --connection udpin:0.0.0.0:14550
  mavstats run --config ./data/config.yaml --connection /dev/ttyACM0,115200`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCommand(configPath, connectionFlag)
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Load and validate a config file without starting the monitor",
	RunE: func(cmd *cobra.Command, args []string) error {
		return validateCommand(configPath)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFileFlag, "env-file", ".env", "dotenv file loaded before config (ignored when absent)")

	for _, c := range []*cobra.Command{runCmd, validateCmd} {
		c.Flags().StringVar(&configPath, "config", "./data/config.yaml", "path to configuration file")
	}
	runCmd.Flags().StringVar(&connectionFlag, "connection", "", "override mavlink.connection (e.g. udpin:0.0.0.0:14550)")

	rootCmd.AddCommand(runCmd, validateCmd, statsCmd, resetCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func runCommand(cfgPath, connection string) error {
	// Set before loading so a config without mavlink.connection still validates.
	if connection != "" {
		if err := os.Setenv(config.EnvConnection, connection); err != nil {
			return err
		}
	}

	flow, err := mavlinkstats.Conf(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Printf("dashboard on %s, metrics on %s\n", flow.Config().HTTP.Addr, flow.Config().Metrics.Addr)
	return flow.Run(ctx)
}

func validateCommand(cfgPath string) error {
	cfg, err := mavlinkstats.LoadConfig(cfgPath)
	if err != nil {
		return err
	}
	fmt.Printf("config %s looks good: %s (%s), %d expected message types\n",
		cfgPath, cfg.MAVLink.Connection, cfg.MAVLink.Dialect, len(cfg.ExpectedMessages))
	return nil
}
