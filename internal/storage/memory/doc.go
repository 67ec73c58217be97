// Package memory provides the in-memory storage engine.
//
// It keeps values in a sharded concurrent map with per-entry expiry.
// Expired entries are dropped lazily on access and by a background
// sweeper.
package memory
