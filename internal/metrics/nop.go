// Package metrics provides internal metrics utilities for Rudder.
package metrics

import "github.com/arloliu/rudder/types"

// NopMetrics is a no-op metrics collector that discards all metrics.
//
// This is used as the default metrics collector when no collector is configured,
// avoiding nil checks throughout the codebase.
type NopMetrics struct{}

// Compile-time assertion that NopMetrics implements types.MetricsCollector.
var _ types.MetricsCollector = (*NopMetrics)(nil)

// NewNopMetrics creates a new no-op metrics collector.
//
// Returns:
//   - *NopMetrics: A collector that discards all metrics
func NewNopMetrics() *NopMetrics {
	return &NopMetrics{}
}

// ----------------------
// Topology Refresh
// ----------------------

// IncRefreshTotal discards the metric.
func (m *NopMetrics) IncRefreshTotal() {}

// IncRefreshError discards the metric.
func (m *NopMetrics) IncRefreshError() {}

// ObserveRefreshDuration discards the metric.
func (m *NopMetrics) ObserveRefreshDuration(_ float64) {}

// ----------------------
// Connection Acquisition
// ----------------------

// IncAcquireTotal discards the metric.
func (m *NopMetrics) IncAcquireTotal(_ types.Role) {}

// IncAcquireError discards the metric.
func (m *NopMetrics) IncAcquireError(_ types.Role) {}

// ----------------------
// Registry
// ----------------------

// IncServerEvicted discards the metric.
func (m *NopMetrics) IncServerEvicted(_ types.Role) {}

// SetRegistrySize discards the metric.
func (m *NopMetrics) SetRegistrySize(_ int) {}
