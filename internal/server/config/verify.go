package config

import (
	"errors"
	"fmt"
	"net"
	"os"
)

// Verify validates the configuration.
func Verify(cfg *ServerConfig) error {
	if err := verifyServer(&cfg.Server); err != nil {
		return err
	}
	if err := verifyStorage(&cfg.Storage); err != nil {
		return err
	}
	if err := verifyMetrics(&cfg.Metrics); err != nil {
		return err
	}
	return nil
}

func verifyServer(cfg *ServerSection) error {
	if cfg.Addr == "" {
		return errors.New("server.addr is required")
	}
	if _, _, err := net.SplitHostPort(cfg.Addr); err != nil {
		return fmt.Errorf("server.addr is not host:port: %w", err)
	}

	if cfg.MaxConns < 0 {
		return errors.New("server.max_conns must not be negative")
	}
	if cfg.ReadTimeout < 0 || cfg.WriteTimeout < 0 || cfg.IdleTimeout < 0 {
		return errors.New("server timeouts must not be negative")
	}

	if cfg.RateLimit.Enabled {
		if cfg.RateLimit.PerSecond <= 0 {
			return errors.New("server.rate_limit.per_second must be positive")
		}
		if cfg.RateLimit.Burst < 1 {
			return errors.New("server.rate_limit.burst must be at least 1")
		}
	}

	return nil
}

func verifyStorage(cfg *StorageSection) error {
	switch cfg.Engine {
	case "memory":
		return nil
	case "badger":
		if cfg.DataDir == "" {
			return errors.New("storage.data_dir is required for the badger engine")
		}
		if err := os.MkdirAll(cfg.DataDir, 0750); err != nil {
			return fmt.Errorf("cannot create data directory: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("storage.engine must be memory or badger, got %q", cfg.Engine)
	}
}

func verifyMetrics(cfg *MetricsSection) error {
	if !cfg.Enabled {
		return nil
	}
	if _, _, err := net.SplitHostPort(cfg.Addr); err != nil {
		return fmt.Errorf("metrics.addr is not host:port: %w", err)
	}
	return nil
}
