// wxstation - simulated weather station
//
// wxstation stands in for the hardware station: it publishes a compressed
// daily cycle of simulated sensor values to the same broker feeds, so the
// bridge and everything behind it can be exercised without a device.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mavaldez/wxbridge/internal/infrastructure/broker"
	"github.com/mavaldez/wxbridge/internal/infrastructure/config"
	"github.com/mavaldez/wxbridge/internal/infrastructure/logging"
	"github.com/mavaldez/wxbridge/internal/infrastructure/mqtt"
	"github.com/mavaldez/wxbridge/internal/station"
)

// Version information - set at build time via ldflags
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
func run(ctx context.Context) error {
	log := logging.Default()
	log.Info("starting wxstation",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log = logging.New(cfg.Logging, version)

	// Embedded broker for standalone runs without wxbridge alongside.
	if cfg.Broker.Embedded {
		addr := fmt.Sprintf("%s:%d", cfg.Broker.Host, cfg.Broker.Port)
		srv, brokerErr := broker.Start(addr)
		if brokerErr != nil {
			return fmt.Errorf("starting embedded broker: %w", brokerErr)
		}
		defer func() {
			log.Info("stopping embedded broker")
			if closeErr := srv.Close(); closeErr != nil {
				log.Error("error stopping embedded broker", "error", closeErr)
			}
		}()
		log.Info("embedded broker listening", "address", addr)
	}

	client := mqtt.New(cfg.Broker, cfg.Auth)
	client.SetLogger(log)
	if err := client.Connect(); err != nil {
		return fmt.Errorf("connecting to broker: %w", err)
	}
	defer func() {
		log.Info("disconnecting from broker")
		client.Disconnect()
	}()
	log.Info("broker connected",
		"broker", fmt.Sprintf("%s:%d", cfg.Broker.Host, cfg.Broker.Port),
	)

	st := station.New(client, cfg, log)
	log.Info("station running",
		"publish_interval_s", cfg.Station.PublishInterval,
		"acceleration", cfg.Station.Acceleration,
		"start_hour", cfg.Station.StartHour,
	)

	return st.Run(ctx)
}

// getConfigPath returns the configuration file path.
// Uses WXBRIDGE_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("WXBRIDGE_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}
