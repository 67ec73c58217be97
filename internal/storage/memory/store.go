package memory

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/wirecache/wirecache/internal/storage"
	"github.com/wirecache/wirecache/pkg/cmap"
)

// DefaultSweepInterval is the default interval between expiry sweeps.
const DefaultSweepInterval = time.Minute

// entry is a stored value with its expiry deadline.
type entry struct {
	value     []byte
	expiresAt int64 // Unix milliseconds, 0 means no expiry
}

// Store is the in-memory storage engine.
type Store struct {
	entries *cmap.Map[entry]

	sweepInterval time.Duration
	shardCount    int

	closed atomic.Bool
	stopCh chan struct{}
	doneCh chan struct{}
}

// Option configures the Store.
type Option func(*Store)

// WithSweepInterval sets the interval between background expiry sweeps.
func WithSweepInterval(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.sweepInterval = d
		}
	}
}

// WithShardCount sets the shard count of the underlying map.
func WithShardCount(n int) Option {
	return func(s *Store) {
		s.shardCount = n
	}
}

// New creates a new in-memory store and starts its expiry sweeper.
func New(opts ...Option) *Store {
	s := &Store{
		sweepInterval: DefaultSweepInterval,
		shardCount:    cmap.DefaultShardCount,
		stopCh:        make(chan struct{}),
		doneCh:        make(chan struct{}),
	}

	for _, opt := range opts {
		opt(s)
	}

	s.entries = cmap.NewWithShards[entry](s.shardCount)

	go s.sweepLoop()

	return s
}

// Set stores value under key, subject to opts.
func (s *Store) Set(_ context.Context, key string, value []byte, opts storage.SetOptions) (bool, error) {
	if s.closed.Load() {
		return false, storage.ErrClosed
	}

	now := time.Now()
	applied := false

	s.entries.Apply(key, func(e entry, exists bool) (entry, bool) {
		live := exists && !e.expired(now)

		if opts.IfNotExists && live {
			return e, true
		}
		if opts.IfExists && !live {
			// Drop an expired leftover if one is there.
			return e, false
		}

		applied = true
		return newEntry(value, opts.TTL, now), true
	})

	return applied, nil
}

// Get retrieves the value for key.
func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	if s.closed.Load() {
		return nil, storage.ErrClosed
	}

	e, ok := s.entries.Get(key)
	if !ok {
		return nil, storage.ErrKeyNotFound
	}

	if e.expired(time.Now()) {
		s.dropExpired(key)
		return nil, storage.ErrKeyNotFound
	}

	return cloneBytes(e.value), nil
}

// GetSet stores value under key and returns the previous value.
func (s *Store) GetSet(_ context.Context, key string, value []byte) ([]byte, bool, error) {
	if s.closed.Load() {
		return nil, false, storage.ErrClosed
	}

	now := time.Now()

	var (
		old     []byte
		existed bool
	)

	s.entries.Apply(key, func(e entry, exists bool) (entry, bool) {
		if exists && !e.expired(now) {
			old = e.value
			existed = true
		}
		return newEntry(value, 0, now), true
	})

	if !existed {
		return nil, false, nil
	}
	return cloneBytes(old), true, nil
}

// StrLen returns the length in bytes of the value for key.
func (s *Store) StrLen(ctx context.Context, key string) (int64, error) {
	value, err := s.Get(ctx, key)
	if err != nil {
		if errors.Is(err, storage.ErrKeyNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return int64(len(value)), nil
}

// Exists reports whether key is present.
func (s *Store) Exists(_ context.Context, key string) (bool, error) {
	if s.closed.Load() {
		return false, storage.ErrClosed
	}

	e, ok := s.entries.Get(key)
	if !ok {
		return false, nil
	}

	if e.expired(time.Now()) {
		s.dropExpired(key)
		return false, nil
	}

	return true, nil
}

// Del removes the given keys and returns how many were present.
func (s *Store) Del(_ context.Context, keys ...string) (int64, error) {
	if s.closed.Load() {
		return 0, storage.ErrClosed
	}

	now := time.Now()

	var removed int64
	for _, key := range keys {
		s.entries.Apply(key, func(e entry, exists bool) (entry, bool) {
			if exists && !e.expired(now) {
				removed++
			}
			return entry{}, false
		})
	}

	return removed, nil
}

// Len returns the number of live entries. Entries that expired but have
// not been swept yet are not counted.
func (s *Store) Len() int {
	now := time.Now()
	count := 0
	s.entries.Range(func(_ string, e entry) bool {
		if !e.expired(now) {
			count++
		}
		return true
	})
	return count
}

// Close stops the sweeper. Subsequent operations return ErrClosed.
func (s *Store) Close() error {
	if s.closed.Swap(true) {
		return nil
	}

	close(s.stopCh)
	<-s.doneCh
	return nil
}

// sweepLoop periodically removes expired entries.
func (s *Store) sweepLoop() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.sweep()
		case <-s.stopCh:
			return
		}
	}
}

// sweep drops every entry whose deadline has passed.
func (s *Store) sweep() {
	now := time.Now()

	var expired []string
	s.entries.Range(func(key string, e entry) bool {
		if e.expired(now) {
			expired = append(expired, key)
		}
		return true
	})

	for _, key := range expired {
		s.dropExpired(key)
	}
}

// dropExpired removes key if it is still expired. The recheck keeps a
// concurrent set from being clobbered.
func (s *Store) dropExpired(key string) {
	now := time.Now()
	s.entries.Apply(key, func(e entry, exists bool) (entry, bool) {
		if exists && !e.expired(now) {
			return e, true
		}
		return entry{}, false
	})
}

func (e entry) expired(now time.Time) bool {
	return e.expiresAt > 0 && now.UnixMilli() >= e.expiresAt
}

func newEntry(value []byte, ttl time.Duration, now time.Time) entry {
	e := entry{value: cloneBytes(value)}
	if ttl > 0 {
		e.expiresAt = now.Add(ttl).UnixMilli()
	}
	return e
}

// cloneBytes copies b so stored values never alias caller buffers.
func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
