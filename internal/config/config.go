package config

import "time"

// GathererConfig is the root configuration for a gatherer instance.
type GathererConfig struct {
	Instance InstanceConfig `yaml:"instance"`
	Horizon  HorizonConfig  `yaml:"horizon"`
	Database DatabaseConfig `yaml:"database"`
	Streams  StreamsConfig  `yaml:"streams"`
	Writers  WritersConfig  `yaml:"writers"`
	Poller   PollerConfig   `yaml:"poller"`
	Health   HealthConfig   `yaml:"health"`
}

// InstanceConfig identifies this gatherer.
type InstanceConfig struct {
	ID string `yaml:"id"`
	AZ string `yaml:"az"`
}

// HorizonConfig holds Horizon API settings.
type HorizonConfig struct {
	URL        string        `yaml:"url"`
	ClientName string        `yaml:"client_name"`
	Timeout    time.Duration `yaml:"timeout"`
}

// DatabaseConfig holds the TimescaleDB connection for time-series data.
type DatabaseConfig struct {
	Timescale DBConfig `yaml:"timescale"`
}

// DBConfig holds a single database connection.
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`
	MaxConns int    `yaml:"max_conns"`
	MinConns int    `yaml:"min_conns"`
}

// StreamsConfig holds SSE stream pump settings. The backoff delays apply
// between stream errors; clean reconnects happen without delay.
type StreamsConfig struct {
	Ledgers            bool          `yaml:"ledgers"`
	Trades             bool          `yaml:"trades"`
	Transactions       bool          `yaml:"transactions"`
	ReconnectBaseDelay time.Duration `yaml:"reconnect_base_delay"`
	ReconnectMaxDelay  time.Duration `yaml:"reconnect_max_delay"`
}

// WritersConfig holds batch writer settings.
type WritersConfig struct {
	BatchSize     int           `yaml:"batch_size"`
	FlushInterval time.Duration `yaml:"flush_interval"`
	BufferSize    int           `yaml:"buffer_size"`
}

// PollerConfig holds fee stats poller settings.
type PollerConfig struct {
	Interval time.Duration `yaml:"interval"`
}

// HealthConfig holds the HTTP health endpoint settings.
type HealthConfig struct {
	Port int    `yaml:"port"`
	Path string `yaml:"path"`
}
