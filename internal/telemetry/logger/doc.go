// Package logger provides structured logging for wirecache.
//
// It wraps the standard library log/slog to provide structured JSON
// logging with a runtime-adjustable level.
package logger
