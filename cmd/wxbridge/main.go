// wxbridge - weather telemetry bridge
//
// wxbridge subscribes to the weather station's broker feeds, assembles the
// scalar stream back into complete readings, and persists them to SQLite
// with an optional InfluxDB mirror and a REST API over the stored data.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/mavaldez/wxbridge/migrations"

	"github.com/mavaldez/wxbridge/internal/api"
	"github.com/mavaldez/wxbridge/internal/bridge"
	"github.com/mavaldez/wxbridge/internal/infrastructure/broker"
	"github.com/mavaldez/wxbridge/internal/infrastructure/config"
	"github.com/mavaldez/wxbridge/internal/infrastructure/database"
	"github.com/mavaldez/wxbridge/internal/infrastructure/influxdb"
	"github.com/mavaldez/wxbridge/internal/infrastructure/logging"
	"github.com/mavaldez/wxbridge/internal/infrastructure/mqtt"
	"github.com/mavaldez/wxbridge/internal/reading"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
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
	log.Info("starting wxbridge",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)

	// Open database and run migrations
	db, err := database.Open(ctx, database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()

	if migrateErr := db.Migrate(ctx); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database ready", "path", cfg.Database.Path)

	repo := reading.NewSQLiteRepository(db.DB)

	// Embedded broker for local development: listens on the same address
	// the client is about to dial.
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

	// Connect to the broker
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
		"username", cfg.Auth.Username,
	)

	// Connect to InfluxDB (optional mirror)
	var mirror bridge.Mirror
	if cfg.InfluxDB.Enabled {
		influxClient, influxErr := influxdb.Connect(cfg.InfluxDB)
		if influxErr != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", influxErr)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
		mirror = influxClient
		log.Info("InfluxDB mirror connected",
			"url", cfg.InfluxDB.URL,
			"bucket", cfg.InfluxDB.Bucket,
		)
	} else {
		log.Info("InfluxDB mirror disabled")
	}

	// Start the REST API (optional)
	if cfg.API.Enabled {
		apiServer, apiErr := api.New(api.Deps{
			Config:  cfg.API,
			Logger:  log,
			Repo:    repo,
			Version: version,
		})
		if apiErr != nil {
			return fmt.Errorf("creating API server: %w", apiErr)
		}
		if startErr := apiServer.Start(ctx); startErr != nil {
			return fmt.Errorf("starting API server: %w", startErr)
		}
		defer func() {
			if closeErr := apiServer.Close(); closeErr != nil {
				log.Error("error closing API server", "error", closeErr)
			}
		}()
	} else {
		log.Info("API server disabled")
	}

	// Wire the bridge and run until shutdown
	b := bridge.New(client, repo, cfg, log, mirror)
	if err := b.Subscribe(); err != nil {
		return fmt.Errorf("subscribing to feeds: %w", err)
	}
	log.Info("initialisation complete, bridging")

	return b.Run(ctx)
}

// getConfigPath returns the configuration file path.
// Uses WXBRIDGE_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("WXBRIDGE_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}
