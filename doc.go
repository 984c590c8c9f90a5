// Package rudder provides the cluster-topology and connection-routing
// core of a graph-database client driver speaking the Bolt protocol.
//
// Given a cluster whose members advertise distinct roles (read replica,
// write primary, routing coordinator), rudder discovers and caches the
// topology, selects an appropriate server for each operation, pools
// connections per server, evicts unreachable servers, and refreshes the
// topology when it goes stale - all while serving concurrent callers
// without serializing them behind a single refresh.
//
// # Key Pieces
//
//   - RoutedConnectionManager: Hands out connections per operation kind,
//     with cross-server failover and lazy topology refresh
//   - ConnectionRegistry: TTL-cached server-to-pool map with
//     non-blocking, single-flight refresh
//   - policy.RoundRobin: Lock-free rotating selection among same-role
//     servers, one counter per role
//   - bolt.Route: The bit-exact topology-discovery request/response codec
//
// # Basic Usage
//
//	cfg := rudder.DefaultConfig(
//	    rudder.WithURI("neo4j://cluster:7687"),
//	    rudder.WithAuth("neo4j", "secret"),
//	    rudder.WithDatabase("movies"),
//	)
//
//	manager, err := rudder.NewRoutedConnectionManager(ctx, cfg, bootstrapTable, poolFactory)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer manager.Close()
//
//	conn, err := manager.Get(ctx, rudder.OperationRead)
//
// The initial routing table and the pool factory come from the
// connection layer: generic connection establishment, the protocol
// handshake, query execution and result streaming are collaborators of
// this core, not part of it.
//
// # Failure Model
//
// Per-candidate failures are handled locally: the failing server is
// evicted from the registry and the next candidate is tried, with no
// delay between attempts. Only exhaustion surfaces to the caller, as a
// typed error naming what ran out:
//
//   - types.RoutingTableRefreshFailedError: No server could satisfy the
//     requested operation
//   - types.ServerUnavailableError: No routing coordinator could be
//     reached during refresh
//
// A failed refresh never corrupts the registry; the previous topology
// and its pools remain usable.
//
// # Concurrency
//
// All exported types are safe for concurrent use. Topology refresh is
// single-flight per registry: callers arriving while a refresh is in
// flight proceed immediately with the pre-refresh topology instead of
// queueing, so topology staleness is bounded by the table ttl plus one
// refresh round-trip. Round-robin selection is lock-free and trades
// strict fairness under contention for never blocking a caller.
package rudder
