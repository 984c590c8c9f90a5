package types

// MetricsCollector defines methods for collecting routing metrics.
//
// Role-scoped methods accept a Role parameter for labeling.
// Implementations should be thread-safe as methods may be called concurrently.
//
// Example usage with VictoriaMetrics (via contrib/metrics/vm):
//
//	import vmmetrics "github.com/arloliu/rudder/contrib/metrics/vm"
//
//	collector := vmmetrics.New(vmmetrics.WithPrefix("myapp"))
//	manager, _ := rudder.NewRoutedConnectionManager(table, factory,
//	    rudder.WithMetrics(collector),
//	)
//
//	// Expose metrics via HTTP
//	http.HandleFunc("/metrics", collector.Handler)
type MetricsCollector interface {
	// ----------------------
	// Topology Refresh
	// ----------------------

	// IncRefreshTotal increments the topology refresh attempts counter.
	IncRefreshTotal()

	// IncRefreshError increments the failed topology refresh counter.
	IncRefreshError()

	// ObserveRefreshDuration records a successful refresh round-trip
	// duration in seconds.
	ObserveRefreshDuration(seconds float64)

	// ----------------------
	// Connection Acquisition
	// ----------------------

	// IncAcquireTotal increments the pool acquisition attempts counter
	// for a role.
	IncAcquireTotal(role Role)

	// IncAcquireError increments the failed pool acquisition counter
	// for a role.
	IncAcquireError(role Role)

	// ----------------------
	// Registry
	// ----------------------

	// IncServerEvicted increments the eviction counter for a role.
	// Called when a server is removed outside the normal refresh cycle.
	IncServerEvicted(role Role)

	// SetRegistrySize sets the current registry size gauge.
	SetRegistrySize(size int)
}
