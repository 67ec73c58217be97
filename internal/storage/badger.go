package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/dgraph-io/badger/v3"
	"github.com/prometheus/client_golang/prometheus"
)

// Default Badger tuning values.
const (
	DefaultGCInterval  = 10 * time.Minute
	DefaultGCThreshold = 0.5
)

// BadgerConfig configures the persistent engine.
type BadgerConfig struct {
	// Dir is the storage directory. Required unless InMemory is set.
	Dir string

	// InMemory runs Badger without touching disk. Used in tests.
	InMemory bool

	// SyncWrites makes every write fsync before returning.
	SyncWrites bool

	// GCInterval is the interval between automatic value-log GC runs.
	GCInterval time.Duration

	// GCThreshold is the value-log discard ratio threshold (0.0-1.0).
	GCThreshold float64
}

// DefaultBadgerConfig returns the default configuration for dir.
func DefaultBadgerConfig(dir string) BadgerConfig {
	return BadgerConfig{
		Dir:         dir,
		GCInterval:  DefaultGCInterval,
		GCThreshold: DefaultGCThreshold,
	}
}

// BadgerEngine is the persistent storage engine backed by Badger v3.
//
// Expiry rides on Badger's native entry TTL, so expired keys vanish
// without a sweeper.
type BadgerEngine struct {
	db     *badger.DB
	cfg    BadgerConfig
	logger *slog.Logger

	closed     atomic.Bool
	gcRuns     atomic.Uint64
	lastGCTime atomic.Int64 // Unix milliseconds

	// Prometheus metrics
	metricsLSMSize      prometheus.GaugeFunc
	metricsValueLogSize prometheus.GaugeFunc
	metricsLastGCTime   prometheus.GaugeFunc
	metricsGCRuns       prometheus.CounterFunc

	// Shutdown
	stopCh chan struct{}
	doneCh chan struct{}
}

// NewBadgerEngine opens the database and starts the background GC loop.
func NewBadgerEngine(cfg BadgerConfig, logger *slog.Logger) (*BadgerEngine, error) {
	if cfg.Dir == "" && !cfg.InMemory {
		return nil, fmt.Errorf("badger: dir is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.GCInterval <= 0 {
		cfg.GCInterval = DefaultGCInterval
	}
	if cfg.GCThreshold <= 0 || cfg.GCThreshold > 1 {
		cfg.GCThreshold = DefaultGCThreshold
	}

	opts := badger.DefaultOptions(cfg.Dir)
	opts.InMemory = cfg.InMemory
	opts.SyncWrites = cfg.SyncWrites
	opts.Logger = &badgerLogger{logger: logger}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("badger: open db: %w", err)
	}

	engine := &BadgerEngine{
		db:     db,
		cfg:    cfg,
		logger: logger,
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}

	go engine.gcLoop()

	logger.Info("badger engine started",
		"dir", cfg.Dir,
		"in_memory", cfg.InMemory,
		"gc_interval", cfg.GCInterval)

	return engine, nil
}

// Set stores value under key, subject to opts.
func (e *BadgerEngine) Set(_ context.Context, key string, value []byte, opts SetOptions) (bool, error) {
	if e.closed.Load() {
		return false, ErrClosed
	}

	applied := false

	err := e.db.Update(func(txn *badger.Txn) error {
		if opts.IfNotExists || opts.IfExists {
			_, err := txn.Get([]byte(key))
			exists := err == nil
			if err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
				return err
			}
			if opts.IfNotExists && exists {
				return nil
			}
			if opts.IfExists && !exists {
				return nil
			}
		}

		entry := badger.NewEntry([]byte(key), value)
		if opts.TTL > 0 {
			entry = entry.WithTTL(opts.TTL)
		}
		if err := txn.SetEntry(entry); err != nil {
			return err
		}

		applied = true
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("badger: set: %w", err)
	}

	return applied, nil
}

// Get retrieves the value for key.
func (e *BadgerEngine) Get(_ context.Context, key string) ([]byte, error) {
	if e.closed.Load() {
		return nil, ErrClosed
	}

	var value []byte

	err := e.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrKeyNotFound
			}
			return err
		}

		value, err = item.ValueCopy(nil)
		if err != nil {
			return err
		}
		// ValueCopy hands back a nil slice for zero-length values; keep
		// empty distinct from null.
		if value == nil {
			value = []byte{}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return value, nil
}

// GetSet stores value under key and returns the previous value.
func (e *BadgerEngine) GetSet(_ context.Context, key string, value []byte) ([]byte, bool, error) {
	if e.closed.Load() {
		return nil, false, ErrClosed
	}

	var (
		old     []byte
		existed bool
	)

	err := e.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		switch {
		case err == nil:
			old, err = item.ValueCopy(nil)
			if err != nil {
				return err
			}
			if old == nil {
				old = []byte{}
			}
			existed = true
		case errors.Is(err, badger.ErrKeyNotFound):
			// First write for this key.
		default:
			return err
		}

		return txn.Set([]byte(key), value)
	})
	if err != nil {
		return nil, false, fmt.Errorf("badger: getset: %w", err)
	}

	return old, existed, nil
}

// StrLen returns the length in bytes of the value for key.
func (e *BadgerEngine) StrLen(ctx context.Context, key string) (int64, error) {
	value, err := e.Get(ctx, key)
	if err != nil {
		if errors.Is(err, ErrKeyNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return int64(len(value)), nil
}

// Exists reports whether key is present.
func (e *BadgerEngine) Exists(_ context.Context, key string) (bool, error) {
	if e.closed.Load() {
		return false, ErrClosed
	}

	exists := false

	err := e.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get([]byte(key))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return nil
			}
			return err
		}
		exists = true
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("badger: exists: %w", err)
	}

	return exists, nil
}

// Del removes the given keys and returns how many were present.
func (e *BadgerEngine) Del(_ context.Context, keys ...string) (int64, error) {
	if e.closed.Load() {
		return 0, ErrClosed
	}

	var removed int64

	err := e.db.Update(func(txn *badger.Txn) error {
		for _, key := range keys {
			_, err := txn.Get([]byte(key))
			if err != nil {
				if errors.Is(err, badger.ErrKeyNotFound) {
					continue
				}
				return err
			}

			if err := txn.Delete([]byte(key)); err != nil {
				return err
			}
			removed++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("badger: del: %w", err)
	}

	return removed, nil
}

// GC runs value-log garbage collection until nothing more can be
// reclaimed.
func (e *BadgerEngine) GC(_ context.Context) error {
	for {
		err := e.db.RunValueLogGC(e.cfg.GCThreshold)
		if err != nil {
			if errors.Is(err, badger.ErrNoRewrite) {
				break
			}
			return fmt.Errorf("badger: gc: %w", err)
		}
		e.gcRuns.Add(1)
	}

	e.lastGCTime.Store(time.Now().UnixMilli())
	return nil
}

// Close stops background loops and closes the database.
func (e *BadgerEngine) Close() error {
	if e.closed.Swap(true) {
		return nil
	}

	e.logger.Info("shutting down badger engine")

	close(e.stopCh)
	<-e.doneCh

	if err := e.db.Close(); err != nil {
		return fmt.Errorf("badger: close db: %w", err)
	}

	return nil
}

// RegisterMetrics registers size and GC gauges with registry.
// Returns the engine for method chaining.
func (e *BadgerEngine) RegisterMetrics(registry *prometheus.Registry) *BadgerEngine {
	e.metricsLSMSize = prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: "wirecache",
		Subsystem: "badger",
		Name:      "lsm_size_bytes",
		Help:      "Badger LSM tree size in bytes",
	}, func() float64 {
		lsm, _ := e.db.Size()
		return float64(lsm)
	})

	e.metricsValueLogSize = prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: "wirecache",
		Subsystem: "badger",
		Name:      "value_log_size_bytes",
		Help:      "Badger value log size in bytes",
	}, func() float64 {
		_, vlog := e.db.Size()
		return float64(vlog)
	})

	e.metricsLastGCTime = prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: "wirecache",
		Subsystem: "badger",
		Name:      "last_gc_timestamp_seconds",
		Help:      "Unix timestamp of the last value-log GC run",
	}, func() float64 {
		return float64(e.lastGCTime.Load()) / 1000.0
	})

	e.metricsGCRuns = prometheus.NewCounterFunc(prometheus.CounterOpts{
		Namespace: "wirecache",
		Subsystem: "badger",
		Name:      "gc_runs_total",
		Help:      "Total value-log GC cycles that rewrote a log file",
	}, func() float64 {
		return float64(e.gcRuns.Load())
	})

	registry.MustRegister(
		e.metricsLSMSize,
		e.metricsValueLogSize,
		e.metricsLastGCTime,
		e.metricsGCRuns,
	)

	return e
}

// gcLoop runs periodic value-log garbage collection.
func (e *BadgerEngine) gcLoop() {
	defer close(e.doneCh)

	ticker := time.NewTicker(e.cfg.GCInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
			if err := e.GC(ctx); err != nil {
				e.logger.Error("auto gc failed", "error", err)
			}
			cancel()

		case <-e.stopCh:
			return
		}
	}
}

// badgerLogger adapts slog.Logger to Badger's Logger interface.
type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Info(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}
