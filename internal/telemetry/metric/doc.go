// Package metric provides Prometheus metrics for wirecache.
//
// It exposes connection counts, per-command throughput and latency,
// and protocol error counters for monitoring.
package metric
