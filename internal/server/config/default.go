package config

import "time"

// Default configuration values.
const (
	DefaultAddr        = "127.0.0.1:6379"
	DefaultMetricsAddr = "127.0.0.1:9121"

	DefaultReadTimeout  = 30 * time.Second
	DefaultWriteTimeout = 30 * time.Second
	DefaultIdleTimeout  = 5 * time.Minute

	DefaultStorageEngine = "memory"
	DefaultDataDir       = "/var/lib/wirecache/data"
	DefaultSweepInterval = time.Minute
	DefaultGCInterval    = 10 * time.Minute

	DefaultRateLimitPerSecond = 5000.0
	DefaultRateLimitBurst     = 10000

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// Default returns the default server configuration.
func Default() *ServerConfig {
	return &ServerConfig{
		Server: ServerSection{
			Addr:         DefaultAddr,
			ReadTimeout:  DefaultReadTimeout,
			WriteTimeout: DefaultWriteTimeout,
			IdleTimeout:  DefaultIdleTimeout,
			RateLimit: RateLimitConfig{
				Enabled:   false,
				PerSecond: DefaultRateLimitPerSecond,
				Burst:     DefaultRateLimitBurst,
			},
		},
		Storage: StorageSection{
			Engine:        DefaultStorageEngine,
			DataDir:       DefaultDataDir,
			SweepInterval: DefaultSweepInterval,
			GCInterval:    DefaultGCInterval,
		},
		Metrics: MetricsSection{
			Enabled: false,
			Addr:    DefaultMetricsAddr,
		},
		Log: LogSection{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}
