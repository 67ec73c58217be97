package storage

import (
	"context"
	"errors"
	"time"
)

// Common errors returned by engines.
var (
	ErrKeyNotFound = errors.New("key not found")
	ErrClosed      = errors.New("storage engine closed")
)

// SetOptions qualifies a Set operation.
//
// A zero value means an unconditional set with no expiry.
type SetOptions struct {
	// TTL is the time until the key expires. Zero means no expiry.
	TTL time.Duration

	// IfNotExists only applies the set when the key is absent.
	IfNotExists bool

	// IfExists only applies the set when the key is present.
	IfExists bool
}

// Engine is the key/value store the command executor runs against.
//
// Implementations must be safe for concurrent use. Expired keys behave
// as absent for every operation.
type Engine interface {
	// Set stores value under key, subject to opts. It reports whether
	// the set was applied; a false return means a conditional set found
	// the key in the wrong state.
	Set(ctx context.Context, key string, value []byte, opts SetOptions) (bool, error)

	// Get retrieves the value for key.
	// Returns ErrKeyNotFound if the key is absent.
	Get(ctx context.Context, key string) ([]byte, error)

	// GetSet stores value under key and returns the previous value.
	// The second result reports whether a previous value existed.
	GetSet(ctx context.Context, key string, value []byte) ([]byte, bool, error)

	// StrLen returns the length in bytes of the value for key.
	// Absent keys count as length zero.
	StrLen(ctx context.Context, key string) (int64, error)

	// Exists reports whether key is present.
	Exists(ctx context.Context, key string) (bool, error)

	// Del removes the given keys and returns how many were present.
	Del(ctx context.Context, keys ...string) (int64, error)

	// Close gracefully shuts down the engine.
	Close() error
}
