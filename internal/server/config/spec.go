package config

import "time"

// ServerConfig is the root configuration for wirecache-server.
type ServerConfig struct {
	Server  ServerSection  `koanf:"server"`
	Storage StorageSection `koanf:"storage"`
	Metrics MetricsSection `koanf:"metrics"`
	Log     LogSection     `koanf:"log"`
}

// ServerSection configures the cache protocol listener.
type ServerSection struct {
	// Addr is the TCP listen address.
	Addr string `koanf:"addr"`

	// MaxConns caps concurrently open client connections.
	// Zero means no cap.
	MaxConns int `koanf:"max_conns"`

	// ReadTimeout bounds a single read from a client.
	ReadTimeout time.Duration `koanf:"read_timeout"`

	// WriteTimeout bounds a single reply write to a client.
	WriteTimeout time.Duration `koanf:"write_timeout"`

	// IdleTimeout closes connections with no complete command for
	// this long. Zero disables idle tracking.
	IdleTimeout time.Duration `koanf:"idle_timeout"`

	// RateLimit throttles commands per client address.
	RateLimit RateLimitConfig `koanf:"rate_limit"`
}

// RateLimitConfig configures per-client command throttling.
type RateLimitConfig struct {
	Enabled bool `koanf:"enabled"`

	// PerSecond is the sustained commands-per-second allowance.
	PerSecond float64 `koanf:"per_second"`

	// Burst is the instantaneous allowance.
	Burst int `koanf:"burst"`
}

// StorageSection configures the storage engine.
type StorageSection struct {
	// Engine selects the backend ("memory" or "badger").
	Engine string `koanf:"engine"`

	// DataDir is the on-disk location for the badger engine.
	DataDir string `koanf:"data_dir"`

	// SweepInterval is the memory engine's expiry sweep interval.
	SweepInterval time.Duration `koanf:"sweep_interval"`

	// SyncWrites makes the badger engine fsync every write.
	SyncWrites bool `koanf:"sync_writes"`

	// GCInterval is the badger engine's value-log GC interval.
	GCInterval time.Duration `koanf:"gc_interval"`
}

// MetricsSection configures the Prometheus endpoint.
type MetricsSection struct {
	Enabled bool   `koanf:"enabled"`
	Addr    string `koanf:"addr"`
}

// LogSection configures logging.
type LogSection struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}
