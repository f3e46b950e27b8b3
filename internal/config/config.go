// Package config provides configuration types and loading for lensboard.
package config

import "time"

// Config is the root configuration struct.
// Top-level groups: Paths, Gateway, Feed, Monitor, Ingest, Notify.
type Config struct {
	Paths   PathsConfig   `json:"paths"`
	Gateway GatewayConfig `json:"gateway"`
	Feed    FeedConfig    `json:"feed"`
	Monitor MonitorConfig `json:"monitor"`
	Ingest  IngestConfig  `json:"ingest"`
	Notify  NotifyConfig  `json:"notify"`
}

// PathsConfig groups filesystem path settings.
type PathsConfig struct {
	DataDir string `json:"dataDir" envconfig:"DATA_DIR"`
}

// GatewayConfig contains HTTP API server settings.
type GatewayConfig struct {
	Host      string `json:"host" envconfig:"HOST"`
	Port      int    `json:"port" envconfig:"PORT"`
	AuthToken string `json:"authToken" envconfig:"AUTH_TOKEN"`
}

// FeedConfig controls activity-feed pagination.
type FeedConfig struct {
	PageSize int `json:"pageSize" envconfig:"FEED_PAGE_SIZE"`
	ShowMore int `json:"showMore" envconfig:"FEED_SHOW_MORE"`
}

// MonitorConfig contains the re-check scheduler's timing knobs. The
// per-project enabled flag and cadence live in the store; these are the
// host-level polling settings.
type MonitorConfig struct {
	TickInterval time.Duration `json:"tickInterval" envconfig:"MONITOR_TICK_INTERVAL"`
	StartupDelay time.Duration `json:"startupDelay" envconfig:"MONITOR_STARTUP_DELAY"`
}

// IngestConfig configures the Kafka activity-event consumer.
type IngestConfig struct {
	Enabled       bool   `json:"enabled" envconfig:"INGEST_ENABLED"`
	Brokers       string `json:"brokers" envconfig:"INGEST_BROKERS"`
	Topic         string `json:"topic" envconfig:"INGEST_TOPIC"`
	ConsumerGroup string `json:"consumerGroup" envconfig:"INGEST_CONSUMER_GROUP"`
}

// NotifyConfig configures the Slack insight digest.
type NotifyConfig struct {
	Slack SlackConfig `json:"slack"`
}

// SlackConfig contains settings for the Slack notifier.
type SlackConfig struct {
	Enabled bool   `json:"enabled" envconfig:"SLACK_ENABLED"`
	Token   string `json:"token" envconfig:"SLACK_TOKEN"`
	Channel string `json:"channel" envconfig:"SLACK_CHANNEL"`
}

// DefaultConfig returns the defaults applied before file and env overlays.
func DefaultConfig() Config {
	return Config{
		Gateway: GatewayConfig{
			Host: "127.0.0.1",
			Port: 8390,
		},
		Feed: FeedConfig{
			PageSize: 20,
			ShowMore: 20,
		},
		Monitor: MonitorConfig{
			TickInterval: 30 * time.Second,
			StartupDelay: 5 * time.Second,
		},
		Ingest: IngestConfig{
			Brokers:       "localhost:9092",
			Topic:         "lensboard.activity",
			ConsumerGroup: "lensboard",
		},
	}
}
