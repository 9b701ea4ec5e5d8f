package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for wxbridge.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Broker   BrokerConfig   `yaml:"broker"`
	Auth     AuthConfig     `yaml:"auth"`
	Feeds    FeedsConfig    `yaml:"feeds"`
	Buffer   BufferConfig   `yaml:"buffer"`
	Database DatabaseConfig `yaml:"database"`
	API      APIConfig      `yaml:"api"`
	InfluxDB InfluxDBConfig `yaml:"influxdb"`
	Logging  LoggingConfig  `yaml:"logging"`
	Station  StationConfig  `yaml:"station"`
}

// BrokerConfig contains MQTT broker connection settings.
type BrokerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`

	// ClientID identifies this client to the broker. When empty, a random
	// suffix is generated at connect time so parallel instances don't clash.
	ClientID string `yaml:"client_id"`

	// KeepAlive is the CONNECT keepalive interval in seconds.
	KeepAlive int `yaml:"keepalive"`

	// ReconnectDelay is the pause between disconnect and the next connect
	// attempt, in seconds.
	ReconnectDelay int `yaml:"reconnect_delay"`

	// Embedded starts an in-process broker listening on Host:Port instead of
	// dialling an external one. Intended for local development and tests.
	Embedded bool `yaml:"embedded"`
}

// AuthConfig contains the broker credentials. For Adafruit IO style brokers
// the API key doubles as the password.
type AuthConfig struct {
	Username string `yaml:"username"`
	Key      string `yaml:"key"`
}

// FeedsConfig names the scalar channels this deployment uses.
// The set is fixed at startup; messages on unlisted feeds are ignored.
type FeedsConfig struct {
	Temperature  string `yaml:"temperature"`
	Humidity     string `yaml:"humidity"`
	LightPercent string `yaml:"light_percent"`
	LightRaw     string `yaml:"light_raw"`
	Clock        string `yaml:"clock"`
	Comfort      string `yaml:"comfort"`
	Statistics   string `yaml:"statistics"`
	Events       string `yaml:"events"`
	Command      string `yaml:"command"`
}

// BufferConfig controls the reading buffer timeout policy and poll cadence.
type BufferConfig struct {
	// Timeout is how long a partially filled reading may sit before it is
	// force-committed with defaults, in seconds.
	Timeout int `yaml:"timeout"`

	// CheckInterval is how often the bridge runs the timeout check, in seconds.
	CheckInterval int `yaml:"check_interval"`

	// PollInterval is the pause between inbound message polls, in milliseconds.
	PollInterval int `yaml:"poll_interval"`
}

// DatabaseConfig contains SQLite database settings.
type DatabaseConfig struct {
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`
}

// APIConfig contains HTTP API server settings.
type APIConfig struct {
	Enabled  bool             `yaml:"enabled"`
	Host     string           `yaml:"host"`
	Port     int              `yaml:"port"`
	Timeouts APITimeoutConfig `yaml:"timeouts"`
}

// APITimeoutConfig contains HTTP timeout settings in seconds.
type APITimeoutConfig struct {
	Read  int `yaml:"read"`
	Write int `yaml:"write"`
	Idle  int `yaml:"idle"`
}

// InfluxDBConfig contains optional time-series mirror settings.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// StationConfig contains simulated weather station settings.
type StationConfig struct {
	// PublishInterval is the pause between full feed publishes, in seconds.
	PublishInterval int `yaml:"publish_interval"`

	// StatsEvery publishes an aggregate statistics message every N publish
	// cycles. Zero disables the statistics feed.
	StatsEvery int `yaml:"stats_every"`

	// Acceleration compresses the simulated day: 288 runs 24h in 5 minutes.
	// 1 tracks wall-clock time.
	Acceleration int `yaml:"acceleration"`

	// StartHour is the simulated hour of day at process start (0-23).
	StartHour int `yaml:"start_hour"`

	// SmoothingWindow is the moving-average window for light readings.
	SmoothingWindow int `yaml:"smoothing_window"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: WXBRIDGE_SECTION_KEY
// For example: WXBRIDGE_DATABASE_PATH, WXBRIDGE_AUTH_KEY
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If file cannot be read, parsed, or validation fails
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Default returns a Config with sensible defaults. The feed names match the
// channel set the station firmware has always published.
func Default() *Config {
	return &Config{
		Broker: BrokerConfig{
			Host:           "io.adafruit.com",
			Port:           1883,
			KeepAlive:      60,
			ReconnectDelay: 2,
		},
		Feeds: FeedsConfig{
			Temperature:  "sensor_temp",
			Humidity:     "sensor_hum",
			LightPercent: "sensor_ldr_pct",
			LightRaw:     "sensor_ldr_raw",
			Clock:        "sensor_estado",
			Comfort:      "sensor_comfort",
			Statistics:   "sensor_stats",
			Events:       "system_event",
			Command:      "comando_led",
		},
		Buffer: BufferConfig{
			Timeout:       60,
			CheckInterval: 5,
			PollInterval:  100,
		},
		Database: DatabaseConfig{
			Path:        "./data/wxbridge.db",
			WALMode:     true,
			BusyTimeout: 5,
		},
		API: APIConfig{
			Enabled: true,
			Host:    "0.0.0.0",
			Port:    8080,
			Timeouts: APITimeoutConfig{
				Read:  30,
				Write: 30,
				Idle:  60,
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
		Station: StationConfig{
			PublishInterval: 20,
			StatsEvery:      10,
			Acceleration:    288,
			StartHour:       6,
			SmoothingWindow: 5,
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: WXBRIDGE_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	// Broker
	if v := os.Getenv("WXBRIDGE_BROKER_HOST"); v != "" {
		cfg.Broker.Host = v
	}
	if v := os.Getenv("WXBRIDGE_BROKER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Broker.Port = port
		}
	}

	// Auth
	if v := os.Getenv("WXBRIDGE_AUTH_USERNAME"); v != "" {
		cfg.Auth.Username = v
	}
	if v := os.Getenv("WXBRIDGE_AUTH_KEY"); v != "" {
		cfg.Auth.Key = v
	}

	// Database
	if v := os.Getenv("WXBRIDGE_DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}

	// API
	if v := os.Getenv("WXBRIDGE_API_HOST"); v != "" {
		cfg.API.Host = v
	}

	// InfluxDB
	if v := os.Getenv("WXBRIDGE_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}
}

// Validate checks the configuration for errors.
//
// Returns:
//   - error: Description of validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	if c.Broker.Host == "" {
		errs = append(errs, "broker.host is required")
	}
	if c.Broker.Port < 1 || c.Broker.Port > 65535 {
		errs = append(errs, "broker.port must be between 1 and 65535")
	}
	if c.Broker.KeepAlive < 0 || c.Broker.KeepAlive > 65535 {
		errs = append(errs, "broker.keepalive must fit in 16 bits")
	}

	// Credentials are mandatory against a real broker; the embedded broker
	// accepts anonymous connections.
	if !c.Broker.Embedded {
		if c.Auth.Username == "" {
			errs = append(errs, "auth.username is required (set WXBRIDGE_AUTH_USERNAME)")
		}
		if c.Auth.Key == "" {
			errs = append(errs, "auth.key is required (set WXBRIDGE_AUTH_KEY)")
		}
	}

	if c.Feeds.LightPercent == "" || c.Feeds.LightRaw == "" || c.Feeds.Clock == "" {
		errs = append(errs, "feeds.light_percent, feeds.light_raw and feeds.clock are required")
	}

	if c.Buffer.Timeout <= 0 {
		errs = append(errs, "buffer.timeout must be positive")
	}
	if c.Buffer.CheckInterval <= 0 {
		errs = append(errs, "buffer.check_interval must be positive")
	}

	if c.Database.Path == "" {
		errs = append(errs, "database.path is required")
	}

	if c.API.Enabled && (c.API.Port < 1 || c.API.Port > 65535) {
		errs = append(errs, "api.port must be between 1 and 65535")
	}

	if c.Station.Acceleration < 1 {
		errs = append(errs, "station.acceleration must be at least 1")
	}
	if c.Station.StartHour < 0 || c.Station.StartHour > 23 {
		errs = append(errs, "station.start_hour must be between 0 and 23")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// BufferTimeout returns the reading buffer timeout as a Duration.
func (c *Config) BufferTimeout() time.Duration {
	return time.Duration(c.Buffer.Timeout) * time.Second
}

// CheckInterval returns the timeout check cadence as a Duration.
func (c *Config) CheckInterval() time.Duration {
	return time.Duration(c.Buffer.CheckInterval) * time.Second
}

// PollInterval returns the inbound poll cadence as a Duration.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Buffer.PollInterval) * time.Millisecond
}

// ReconnectDelay returns the reconnect pause as a Duration.
func (c *Config) ReconnectDelay() time.Duration {
	return time.Duration(c.Broker.ReconnectDelay) * time.Second
}

// GetReadTimeout returns the API read timeout as a Duration.
func (c *Config) GetReadTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Read) * time.Second
}

// GetWriteTimeout returns the API write timeout as a Duration.
func (c *Config) GetWriteTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Write) * time.Second
}

// GetIdleTimeout returns the API idle timeout as a Duration.
func (c *Config) GetIdleTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Idle) * time.Second
}
