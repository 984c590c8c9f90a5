package vm

import (
	"fmt"
	"io"
	"net/http"
	"sync/atomic"

	"github.com/VictoriaMetrics/metrics"

	"github.com/arloliu/rudder/types"
)

// Option configures a Collector.
type Option func(*Collector)

// WithPrefix sets the metric name prefix.
//
// Default: "rudder"
//
// Parameters:
//   - prefix: The prefix to use for all metric names
//
// Returns:
//   - Option: A configuration option
func WithPrefix(prefix string) Option {
	return func(c *Collector) {
		c.prefix = prefix
	}
}

// WithMetricsSet sets the metrics set to use.
//
// If provided, the collector will register metrics with this set instead of
// creating a new one. The caller is responsible for exposing this set
// (e.g., via metrics.WritePrometheus or a custom handler).
//
// Parameters:
//   - set: The metrics set to use
//
// Returns:
//   - Option: A configuration option
func WithMetricsSet(set *metrics.Set) Option {
	return func(c *Collector) {
		c.set = set
	}
}

// roles indexes the fixed per-role metric instances.
var roles = [...]types.Role{types.RoleRead, types.RoleWrite, types.RoleRoute}

func roleIndex(role types.Role) int {
	switch role {
	case types.RoleRead:
		return 0
	case types.RoleWrite:
		return 1
	default:
		return 2
	}
}

// Collector implements types.MetricsCollector using VictoriaMetrics.
//
// All metrics are pre-created at initialization time for optimal performance.
// Thread-safe for concurrent use.
type Collector struct {
	set    *metrics.Set
	prefix string

	// Topology refresh metrics
	refreshTotal    *metrics.Counter
	refreshErrors   *metrics.Counter
	refreshDuration *metrics.Histogram

	// Connection acquisition metrics, indexed by role
	acquireTotal  [len(roles)]*metrics.Counter
	acquireErrors [len(roles)]*metrics.Counter

	// Registry metrics
	serverEvicted [len(roles)]*metrics.Counter
	registrySize  atomic.Int64
}

// Compile-time assertion that Collector implements types.MetricsCollector.
var _ types.MetricsCollector = (*Collector)(nil)

// New creates a new VictoriaMetrics-based metrics collector.
//
// The collector creates its own metrics.Set and registers it globally.
// All metrics are pre-created at initialization for optimal performance.
//
// Parameters:
//   - opts: Configuration options (e.g., WithPrefix)
//
// Returns:
//   - *Collector: A new metrics collector ready for use
//
// Example:
//
//	collector := vm.New(vm.WithPrefix("myapp"))
//	cfg := rudder.DefaultConfig(
//	    rudder.WithMetrics(collector),
//	)
func New(opts ...Option) *Collector {
	c := &Collector{
		prefix: "rudder",
	}

	for _, opt := range opts {
		opt(c)
	}

	// If no set is provided, create a new one and register it globally.
	// If a set is provided, we assume the caller manages it.
	if c.set == nil {
		c.set = metrics.NewSet()
		metrics.RegisterSet(c.set)
	}

	c.initMetrics()

	return c
}

// initMetrics pre-creates all metrics with the configured prefix.
func (c *Collector) initMetrics() {
	p := c.prefix

	c.refreshTotal = c.set.NewCounter(fmt.Sprintf(`%s_refresh_total`, p))
	c.refreshErrors = c.set.NewCounter(fmt.Sprintf(`%s_refresh_errors_total`, p))
	c.refreshDuration = c.set.NewHistogram(fmt.Sprintf(`%s_refresh_duration_seconds`, p))

	for i, role := range roles {
		label := role.String()
		c.acquireTotal[i] = c.set.NewCounter(fmt.Sprintf(`%s_acquire_total{role="%s"}`, p, label))
		c.acquireErrors[i] = c.set.NewCounter(fmt.Sprintf(`%s_acquire_errors_total{role="%s"}`, p, label))
		c.serverEvicted[i] = c.set.NewCounter(fmt.Sprintf(`%s_server_evicted_total{role="%s"}`, p, label))
	}

	c.set.NewGauge(fmt.Sprintf(`%s_registry_size`, p), func() float64 {
		return float64(c.registrySize.Load())
	})
}

// Set returns the underlying metrics set.
func (c *Collector) Set() *metrics.Set {
	return c.set
}

// Handler returns an HTTP handler that exposes metrics in Prometheus format.
//
// Example:
//
//	http.HandleFunc("/metrics", collector.Handler)
func (c *Collector) Handler(w http.ResponseWriter, _ *http.Request) {
	c.set.WritePrometheus(w)
}

// WritePrometheus writes all metrics in Prometheus format to the given writer.
//
// Parameters:
//   - w: The writer to write metrics to
func (c *Collector) WritePrometheus(w io.Writer) {
	c.set.WritePrometheus(w)
}

// ----------------------
// Topology Refresh
// ----------------------

// IncRefreshTotal increments the topology refresh attempts counter.
func (c *Collector) IncRefreshTotal() {
	c.refreshTotal.Inc()
}

// IncRefreshError increments the failed topology refresh counter.
func (c *Collector) IncRefreshError() {
	c.refreshErrors.Inc()
}

// ObserveRefreshDuration records a successful refresh round-trip duration in seconds.
func (c *Collector) ObserveRefreshDuration(seconds float64) {
	c.refreshDuration.Update(seconds)
}

// ----------------------
// Connection Acquisition
// ----------------------

// IncAcquireTotal increments the pool acquisition attempts counter for a role.
func (c *Collector) IncAcquireTotal(role types.Role) {
	c.acquireTotal[roleIndex(role)].Inc()
}

// IncAcquireError increments the failed pool acquisition counter for a role.
func (c *Collector) IncAcquireError(role types.Role) {
	c.acquireErrors[roleIndex(role)].Inc()
}

// ----------------------
// Registry
// ----------------------

// IncServerEvicted increments the eviction counter for a role.
func (c *Collector) IncServerEvicted(role types.Role) {
	c.serverEvicted[roleIndex(role)].Inc()
}

// SetRegistrySize sets the current registry size gauge.
func (c *Collector) SetRegistrySize(size int) {
	c.registrySize.Store(int64(size))
}
