// Package stats provides a unified interface for collecting metrics.
package stats

// Metric names used throughout the library.
const (
	// Registry metrics.
	MetricRegistrations = "bytepress_registry_registrations_total"
	MetricCreates       = "bytepress_registry_creates_total"
	MetricCreateMisses  = "bytepress_registry_create_misses_total"
	MetricAlgorithms    = "bytepress_registry_algorithms"

	// Lifecycle metrics.
	MetricPluginsRegistered = "bytepress_plugins_registered_total"
	MetricPluginsRejected   = "bytepress_plugins_rejected_total"
	MetricTransitions       = "bytepress_plugin_transitions_total"
	MetricHookFailures      = "bytepress_plugin_hook_failures_total"
)

// Collector defines the interface for collecting metrics.
type Collector interface {
	// IncCounter increments a counter metric by delta.
	IncCounter(name string, delta int64)

	// SetGauge sets a gauge metric to value.
	SetGauge(name string, value int64)
}
