// Package vm provides a VictoriaMetrics-based implementation of the MetricsCollector interface.
//
// This package uses github.com/VictoriaMetrics/metrics for lightweight,
// high-performance Prometheus-compatible metrics collection.
//
// # Basic Usage
//
// Create a collector with default prefix "rudder":
//
//	collector := vm.New()
//	cfg := rudder.DefaultConfig(
//	    rudder.WithURI("neo4j://core1:7687"),
//	    rudder.WithAuth("neo4j", "password"),
//	    rudder.WithMetrics(collector),
//	)
//
// # Custom Prefix
//
// Use WithPrefix to customize the metric name prefix:
//
//	collector := vm.New(vm.WithPrefix("myapp"))
//
// This produces metrics like:
//   - myapp_refresh_total
//   - myapp_acquire_total{role="read"}
//
// # Exposing Metrics
//
// Use the Handler method to expose metrics via HTTP:
//
//	http.HandleFunc("/metrics", collector.Handler)
//	http.ListenAndServe(":8080", nil)
//
// Or use WritePrometheus to write metrics to a custom writer:
//
//	collector.WritePrometheus(w)
//
// # Metrics Provided
//
// Topology refresh:
//   - {prefix}_refresh_total - Counter of refresh attempts
//   - {prefix}_refresh_errors_total - Counter of failed refreshes
//   - {prefix}_refresh_duration_seconds - Histogram of refresh round-trip latencies
//
// Connection acquisition:
//   - {prefix}_acquire_total{role} - Counter of pool acquisitions per role
//   - {prefix}_acquire_errors_total{role} - Counter of failed acquisitions per role
//
// Registry:
//   - {prefix}_server_evicted_total{role} - Counter of server evictions per role
//   - {prefix}_registry_size - Gauge of currently registered servers
//
// # Performance Notes
//
// This implementation pre-creates all metrics at initialization time
// using the NewXXX pattern (instead of GetOrCreateXXX) for optimal
// performance in hot paths, as recommended by the VictoriaMetrics documentation.
//
// The metrics are registered with a dedicated Set that is registered
// globally, allowing standard Prometheus scraping.
package vm
