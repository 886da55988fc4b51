// Package stats provides a unified interface for collecting simulation metrics.
package stats

// Metric names emitted by the simulator.
const (
	MetricAccesses      = "cachesim_accesses_total"
	MetricHits          = "cachesim_hits_total"
	MetricMisses        = "cachesim_misses_total"
	MetricEvictions     = "cachesim_evictions_total"
	MetricResidentLines = "cachesim_resident_lines"
	MetricHitRatio      = "cachesim_hit_ratio"
)

// Collector defines the interface for collecting metrics.
type Collector interface {
	// IncCounter increments a counter metric by delta.
	IncCounter(name string, delta int64)

	// SetGauge sets a gauge metric to value.
	SetGauge(name string, value int64)

	// ObserveHistogram records a value in a histogram metric.
	ObserveHistogram(name string, value float64)
}
