// Package main provides the entry point for wirecache-server.
//
// wirecache-server is a small cache service speaking a Redis-style
// wire protocol, backed by an in-memory or Badger storage engine.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/wirecache/wirecache/internal/infra/buildinfo"
	"github.com/wirecache/wirecache/internal/infra/confloader"
	"github.com/wirecache/wirecache/internal/infra/shutdown"
	"github.com/wirecache/wirecache/internal/server"
	"github.com/wirecache/wirecache/internal/server/config"
	"github.com/wirecache/wirecache/internal/storage"
	"github.com/wirecache/wirecache/internal/storage/memory"
	"github.com/wirecache/wirecache/internal/telemetry/logger"
	"github.com/wirecache/wirecache/internal/telemetry/metric"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configFile  = flag.String("config", "", "Path to configuration file")
		showVersion = flag.Bool("version", false, "Show version information")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("wirecache-server %s\n", buildinfo.String())
		return nil
	}

	cfg, err := loadConfig(*configFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: os.Stdout,
	})
	slog.SetDefault(log)

	log.Info("starting wirecache-server",
		"version", buildinfo.Version,
		"commit", buildinfo.Commit,
		"config", *configFile)

	metrics := metric.New()

	engine, err := initStorage(cfg, log, metrics)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}

	srv := server.New(&server.Config{
		Addr:               cfg.Server.Addr,
		MaxConns:           cfg.Server.MaxConns,
		ReadTimeout:        cfg.Server.ReadTimeout,
		WriteTimeout:       cfg.Server.WriteTimeout,
		IdleTimeout:        cfg.Server.IdleTimeout,
		RateLimitPerSecond: rateLimitPerSecond(cfg),
		RateLimitBurst:     cfg.Server.RateLimit.Burst,
	}, engine, log, server.WithMetrics(metrics))

	shutdownHandler := shutdown.NewHandler(30 * time.Second)

	shutdownHandler.OnShutdown(func(ctx context.Context) error {
		log.Info("shutting down storage engine")
		return engine.Close()
	})
	shutdownHandler.OnShutdown(func(ctx context.Context) error {
		log.Info("shutting down server")
		return srv.Shutdown(ctx)
	})

	ctx := context.Background()
	if err := srv.Start(ctx); err != nil {
		engine.Close()
		return fmt.Errorf("start server: %w", err)
	}

	if cfg.Metrics.Enabled {
		startMetricsServer(cfg.Metrics.Addr, metrics, log, shutdownHandler)
	}

	if *configFile != "" {
		if err := watchConfig(*configFile, log, shutdownHandler); err != nil {
			log.Warn("config watcher disabled", "error", err)
		}
	}

	log.Info("server started, press Ctrl+C to stop")
	if err := shutdownHandler.Wait(); err != nil {
		log.Error("shutdown error", "error", err)
		return err
	}

	log.Info("server stopped gracefully")
	return nil
}

// loadConfig loads configuration from file and environment.
func loadConfig(configFile string) (*config.ServerConfig, error) {
	cfg := config.Default()

	opts := []confloader.Option{}
	if configFile != "" {
		opts = append(opts, confloader.WithConfigFile(configFile))
	}

	loader := confloader.NewLoader(opts...)
	if err := loader.Load(cfg); err != nil {
		return nil, err
	}

	if err := config.Verify(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// initStorage builds the configured storage engine.
func initStorage(cfg *config.ServerConfig, log *slog.Logger, metrics *metric.Metrics) (storage.Engine, error) {
	switch cfg.Storage.Engine {
	case "memory":
		opts := []memory.Option{}
		if cfg.Storage.SweepInterval > 0 {
			opts = append(opts, memory.WithSweepInterval(cfg.Storage.SweepInterval))
		}
		log.Info("storage engine initialized", "engine", "memory")
		return memory.New(opts...), nil

	case "badger":
		badgerCfg := storage.DefaultBadgerConfig(cfg.Storage.DataDir)
		badgerCfg.SyncWrites = cfg.Storage.SyncWrites
		if cfg.Storage.GCInterval > 0 {
			badgerCfg.GCInterval = cfg.Storage.GCInterval
		}

		engine, err := storage.NewBadgerEngine(badgerCfg, log)
		if err != nil {
			return nil, err
		}
		engine.RegisterMetrics(metrics.Registry())

		log.Info("storage engine initialized",
			"engine", "badger",
			"data_dir", cfg.Storage.DataDir)
		return engine, nil

	default:
		return nil, fmt.Errorf("unknown storage engine %q", cfg.Storage.Engine)
	}
}

func rateLimitPerSecond(cfg *config.ServerConfig) float64 {
	if !cfg.Server.RateLimit.Enabled {
		return 0
	}
	return cfg.Server.RateLimit.PerSecond
}

// startMetricsServer serves the Prometheus endpoint on its own port.
func startMetricsServer(addr string, metrics *metric.Metrics, log *slog.Logger, sh *shutdown.Handler) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())

	metricsServer := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	sh.OnShutdown(func(ctx context.Context) error {
		log.Info("shutting down metrics server")
		return metricsServer.Shutdown(ctx)
	})

	go func() {
		log.Info("metrics server listening", "addr", addr)
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics server error", "error", err)
		}
	}()
}

// watchConfig reloads the log level when the configuration file
// changes. Other settings require a restart.
func watchConfig(configFile string, log *slog.Logger, sh *shutdown.Handler) error {
	watcher, err := confloader.NewWatcher(confloader.WithWatcherLogger(log))
	if err != nil {
		return err
	}

	if err := watcher.Watch(configFile); err != nil {
		watcher.Stop()
		return err
	}

	watcher.OnChange(func(string) {
		cfg, err := loadConfig(configFile)
		if err != nil {
			log.Error("config reload failed", "error", err)
			return
		}
		logger.SetLevel(cfg.Log.Level)
		log.Info("config reloaded", "log_level", cfg.Log.Level)
	})

	sh.OnShutdown(func(context.Context) error {
		return watcher.Stop()
	})

	watcher.StartAsync()
	return nil
}
