// Package storage defines the key/value engine behind the cache
// commands and its persistent Badger-backed implementation.
//
// The in-memory implementation lives in the memory subpackage. Both
// engines share the Engine interface so the server can be wired to
// either one from configuration.
package storage
