package rudder

import (
	"context"
	"sync"

	"github.com/cenkalti/backoff/v4"

	"github.com/arloliu/rudder/bolt"
	"github.com/arloliu/rudder/policy"
	"github.com/arloliu/rudder/types"
)

// Compile-time assertion that the default strategy satisfies the contract.
var _ LoadBalancingStrategy = (*policy.RoundRobin)(nil)

// RoutedConnectionManager hands out connections for read and write
// operations against a clustered deployment.
//
// It lazily refreshes its connection registry when the cached topology
// goes stale, consults the load-balancing strategy for a candidate
// server, and fails over across candidates: a server whose pool cannot
// produce a connection is evicted and the next candidate is tried.
// Only exhaustion of all candidates surfaces as an error.
//
// # Thread Safety
//
// RoutedConnectionManager is safe for concurrent use from multiple
// goroutines. Concurrent callers are never serialized behind a topology
// refresh: at most one refresh is in flight per registry, and callers
// arriving during a refresh proceed with the pre-refresh topology.
type RoutedConnectionManager struct {
	config   *Config
	strategy LoadBalancingStrategy
	registry *ConnectionRegistry
	logger   types.Logger
	metrics  types.MetricsCollector

	mu        sync.Mutex
	bookmarks []string
}

// NewRoutedConnectionManager creates a manager seeded with an initial
// routing table, typically obtained from the bootstrap server during
// the connection handshake.
//
// Parameters:
//   - ctx: Context for initial pool creation
//   - config: Immutable connection parameters (see DefaultConfig)
//   - table: The initial topology snapshot
//   - factory: Creates one connection pool per server
//
// Returns:
//   - *RoutedConnectionManager: A new manager
//   - error: types.ErrInvalidConfig or a pool creation failure
func NewRoutedConnectionManager(ctx context.Context, config *Config, table *types.RoutingTable, factory PoolFactory) (*RoutedConnectionManager, error) {
	registry, err := NewConnectionRegistry(ctx, config, factory, table)
	if err != nil {
		return nil, err
	}

	strategy := config.Strategy
	if strategy == nil {
		strategy = policy.NewRoundRobin(table)
	}

	return &RoutedConnectionManager{
		config:   config,
		strategy: strategy,
		registry: registry,
		logger:   config.Logger,
		metrics:  config.Metrics,
	}, nil
}

// Get returns a usable connection for the given operation.
//
// The registry is refreshed first if its topology is stale; a refresh
// failure is fatal to this call since there is no usable topology to
// fall back on. Candidates are then tried in strategy order: a server
// whose pool cannot produce a connection is marked unavailable and the
// next candidate is selected, immediately and without backoff. When no
// candidate for the operation's role remains, a
// types.RoutingTableRefreshFailedError naming the operation is returned.
//
// Parameters:
//   - ctx: Context for refresh and pool acquisition
//   - operation: types.OperationRead or types.OperationWrite
//
// Returns:
//   - Connection: A connection to a server holding the matching role
//   - error: Refresh failure or candidate exhaustion
func (m *RoutedConnectionManager) Get(ctx context.Context, operation types.Operation) (Connection, error) {
	if err := m.registry.UpdateIfExpired(ctx, m.RefreshRoutingTable); err != nil {
		return nil, err
	}

	role := operation.Role()
	for {
		server, ok := m.selectCandidate(operation)
		if !ok {
			break
		}

		pool, ok := m.registry.GetPool(server)
		if !ok {
			// Evicted between selection and lookup; nothing to mark, the
			// next snapshot no longer contains it.
			m.logger.Warn("no pool for selected server in the registry",
				"address", server.Addr(),
				"role", server.Role.String(),
			)
			continue
		}

		m.metrics.IncAcquireTotal(role)
		connection, err := pool.Get(ctx)
		if err == nil {
			return connection, nil
		}

		m.metrics.IncAcquireError(role)
		m.logger.Error("failed to get connection from pool",
			"address", server.Addr(),
			"role", server.Role.String(),
			"error", err.Error(),
		)
		m.registry.MarkUnavailable(server)
	}

	return nil, &types.RoutingTableRefreshFailedError{
		Detail: "no server available for " + operation.String() + " operation",
	}
}

// selectCandidate asks the strategy for a server matching the operation
// from a fresh registry snapshot.
func (m *RoutedConnectionManager) selectCandidate(operation types.Operation) (types.Server, bool) {
	servers := m.registry.Servers()
	if operation == types.OperationWrite {
		return m.strategy.SelectWriter(servers)
	}

	return m.strategy.SelectReader(servers)
}

// RefreshRoutingTable discovers the current topology by asking a
// routing coordinator.
//
// Routers are tried in strategy order. A router whose pool cannot
// produce a connection, or that fails the Route exchange, is marked
// unavailable and the next router is tried, naturally rotating through
// all known routers. When none remain, a types.ServerUnavailableError
// is returned and the previous topology stays intact and usable.
//
// Parameters:
//   - ctx: Context for the network round-trip
//
// Returns:
//   - *types.RoutingTable: The freshly discovered topology
//   - error: types.ServerUnavailableError when all routers are exhausted
func (m *RoutedConnectionManager) RefreshRoutingTable(ctx context.Context) (*types.RoutingTable, error) {
	for {
		router, ok := m.strategy.SelectRouter(m.registry.Servers())
		if !ok {
			break
		}

		pool, ok := m.registry.GetPool(router)
		if !ok {
			m.logger.Warn("no pool for selected router in the registry",
				"address", router.Addr(),
			)
			continue
		}

		connection, err := pool.Get(ctx)
		if err != nil {
			m.logger.Error("failed to get connection to router",
				"address", router.Addr(),
				"error", err.Error(),
			)
			m.registry.MarkUnavailable(router)
			continue
		}

		m.logger.Info("refreshing routing table from router",
			"address", router.Addr(),
			"version", connection.Version(),
		)
		route := bolt.NewRoute(m.config.RoutingContext, m.Bookmarks(), m.config.DB)

		table, err := connection.Route(ctx, route)
		if err != nil {
			m.logger.Error("failed to refresh routing table from router",
				"address", router.Addr(),
				"error", err.Error(),
			)
			m.registry.MarkUnavailable(router)
			continue
		}

		m.logger.Debug("routing table refreshed", "table", table.String())

		return table, nil
	}

	return nil, &types.ServerUnavailableError{Detail: "no router available"}
}

// AddBookmarks appends causal-consistency tokens to be sent with
// subsequent Route requests. The query layer feeds back bookmarks it
// received from completed transactions.
//
// Parameters:
//   - bookmarks: Opaque tokens from prior writes
func (m *RoutedConnectionManager) AddBookmarks(bookmarks ...string) {
	if len(bookmarks) == 0 {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bookmarks = append(m.bookmarks, bookmarks...)
}

// Bookmarks returns a copy of the accumulated bookmarks.
//
// Returns:
//   - []string: The tokens sent with the next Route request
func (m *RoutedConnectionManager) Bookmarks() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.bookmarks) == 0 {
		return nil
	}

	out := make([]string, len(m.bookmarks))
	copy(out, m.bookmarks)

	return out
}

// Backoff returns a fresh retry schedule configured from the manager's
// BackoffConfig, for layers above this core to pace whole-operation
// retries. Each call returns an independent stateful instance; the core
// itself never sleeps between candidate rotations.
//
// Returns:
//   - *backoff.ExponentialBackOff: An unstarted schedule
func (m *RoutedConnectionManager) Backoff() *backoff.ExponentialBackOff {
	return m.config.Backoff.build()
}

// Registry exposes the manager's connection registry, mainly for
// observability and tests.
//
// Returns:
//   - *ConnectionRegistry: The live registry
func (m *RoutedConnectionManager) Registry() *ConnectionRegistry {
	return m.registry
}

// Close evicts every server and closes its pool.
func (m *RoutedConnectionManager) Close() {
	m.registry.Close()
}
