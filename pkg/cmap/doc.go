// Package cmap provides a concurrent map for wirecache's key space.
//
// This package implements a sharded concurrent map optimized for
// high-throughput key/value storage with the following features:
//
//   - Sharding: configurable power-of-two shard count for parallelism
//   - Fine-grained locking: per-shard RWMutex for minimal contention
//   - Atomic per-key operations: Update, SetIfAbsent, SetIfPresent, Pop
//   - Iteration: safe iteration while holding read locks
//
// Keys are strings; shard selection hashes them with MurmurHash3.
//
// Usage:
//
//	m := cmap.New[entry]()
//	m.Set("key", e)
//	val, ok := m.Get("key")
//
// All operations are thread-safe. Read operations (Get, Has) use RLock,
// write operations (Set, Delete) use Lock.
package cmap
