package rudder

import (
	"context"

	"github.com/arloliu/rudder/bolt"
	"github.com/arloliu/rudder/types"
)

// Connection is a single negotiated connection to one server.
//
// Connection establishment, the handshake, query execution and result
// streaming live with the connection layer; this core only needs the
// negotiated version and the Route exchange that drives topology
// refresh. Implementations carry the full protocol surface and hand it
// to the query layer above.
type Connection interface {
	// Version returns the negotiated protocol version, e.g. "5.4".
	Version() string

	// Route sends the Route request over this connection, awaits the
	// response and parses it into a routing table.
	//
	// Parameters:
	//   - ctx: Context for cancellation/timeout
	//   - route: The request to send
	//
	// Returns:
	//   - *types.RoutingTable: The freshly discovered topology
	//   - error: Transport or parse failure
	Route(ctx context.Context, route *bolt.Route) (*types.RoutingTable, error)
}

// Pool hands out pooled connections to a single server.
//
// Acquire/release bookkeeping, liveness checks and connect timeouts are
// the pool's responsibility, not this core's.
//
// Implementations MUST be safe for concurrent use from multiple goroutines.
type Pool interface {
	// Get acquires a connection, establishing one if the pool has
	// capacity.
	//
	// Parameters:
	//   - ctx: Context for cancellation/timeout
	//
	// Returns:
	//   - Connection: A usable connection
	//   - error: If the pool is exhausted or the server is unreachable
	Get(ctx context.Context) (Connection, error)

	// Close releases all pooled connections. The pool cannot be reused.
	Close()
}

// PoolFactory creates a connection pool for one server from the shared
// connection parameters. The registry calls it lazily the first time a
// server is seen.
type PoolFactory func(ctx context.Context, config *Config) (Pool, error)
