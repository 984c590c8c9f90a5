package rudder

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	cmap "github.com/orcaman/concurrent-map/v2"

	"github.com/arloliu/rudder/types"
)

// registryEntry pairs a server with its lazily created pool. The
// concurrent map is keyed by Server.Key(), so the server value is kept
// alongside to rebuild snapshots.
type registryEntry struct {
	server types.Server
	pool   Pool
}

// ConnectionRegistry is a TTL-cached map from cluster servers to their
// connection pools.
//
// The server->pool map is the single piece of widely shared mutable
// state in the routing core. It is a sharded concurrent map, so lookups,
// inserts of distinct keys and removals proceed without one global lock.
// Only the refresh timestamp needs exclusive access, and that lock is
// acquired non-blockingly: a caller that loses the race simply keeps
// using the topology it already has.
//
// The registry lives as long as its owning manager and survives many
// refreshes; routing tables around it are replaced wholesale while the
// map mutates in place.
type ConnectionRegistry struct {
	config  *Config
	factory PoolFactory
	logger  types.Logger
	metrics types.MetricsCollector

	// ttl is copied from the routing table that seeded the registry.
	ttl uint64

	// refreshMu guards creationTime updates and gives refresh its
	// single-flight semantics via TryLock.
	refreshMu    sync.Mutex
	creationTime atomic.Int64 // unix seconds of the last successful refresh

	connections cmap.ConcurrentMap[string, registryEntry]
}

// NewConnectionRegistry builds the pool set for every server in the
// routing table and records the table's ttl and the current time.
//
// Parameters:
//   - ctx: Context for pool creation
//   - config: Immutable connection parameters
//   - factory: Creates one pool per server
//   - table: The initial topology snapshot
//
// Returns:
//   - *ConnectionRegistry: The populated registry
//   - error: If any pool creation fails
func NewConnectionRegistry(ctx context.Context, config *Config, factory PoolFactory, table *types.RoutingTable) (*ConnectionRegistry, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if factory == nil {
		return nil, types.ErrNilPoolFactory
	}
	if table == nil {
		return nil, types.ErrNilRoutingTable
	}

	r := &ConnectionRegistry{
		config:      config,
		factory:     factory,
		logger:      config.Logger,
		metrics:     config.Metrics,
		ttl:         table.TTL,
		connections: cmap.New[registryEntry](),
	}

	for _, server := range table.Servers {
		if r.connections.Has(server.Key()) {
			continue
		}
		pool, err := factory(ctx, config)
		if err != nil {
			r.Close()
			return nil, &types.PoolError{Address: server.Addr(), Cause: err}
		}
		r.connections.Set(server.Key(), registryEntry{server: server, pool: pool})
	}

	r.creationTime.Store(time.Now().Unix())
	r.metrics.SetRegistrySize(r.connections.Count())

	return r, nil
}

// UpdateIfExpired refreshes the registry when the cached topology has
// outlived its ttl.
//
// If the table is still fresh this is a no-op returning nil, with no
// blocking and no network call. If it is stale, a non-blocking try-lock
// keeps refresh single-flight: a caller that finds a refresh already in
// flight returns immediately and proceeds with the existing topology
// rather than queueing, which bounds its worst-case latency at the cost
// of serving stale topology for one more round-trip.
//
// On a successful refresh, pools are created for newly seen servers,
// entries for servers absent from the new table are removed (and their
// pools closed), and the timestamp advances to now. On failure the
// error propagates and the timestamp is left unchanged, so the next
// call attempts the refresh again immediately.
//
// Parameters:
//   - ctx: Context for the refresh round-trip and pool creation
//   - refresh: Obtains a fresh routing table, typically
//     Manager.RefreshRoutingTable
//
// Returns:
//   - error: The refresh or pool creation failure, nil otherwise
func (r *ConnectionRegistry) UpdateIfExpired(ctx context.Context, refresh func(ctx context.Context) (*types.RoutingTable, error)) error {
	r.logger.Debug("checking if routing table is expired")
	if !r.expired() {
		return nil
	}

	if !r.refreshMu.TryLock() {
		// A concurrent refresh is in flight; keep serving the topology
		// we already have.
		r.logger.Debug("routing table refresh already in flight, using cached topology")
		return nil
	}
	defer r.refreshMu.Unlock()

	// Another caller may have finished a refresh while we raced for the
	// lock.
	if !r.expired() {
		return nil
	}

	r.logger.Info("routing table expired, refreshing")
	r.metrics.IncRefreshTotal()
	start := time.Now()

	table, err := refresh(ctx)
	if err != nil {
		r.metrics.IncRefreshError()
		return err
	}
	r.metrics.ObserveRefreshDuration(time.Since(start).Seconds())
	r.logger.Info("routing table refreshed", "table", table.String())

	live := make(map[string]struct{}, len(table.Servers))
	for _, server := range table.Servers {
		live[server.Key()] = struct{}{}
		if r.connections.Has(server.Key()) {
			continue
		}
		pool, err := r.factory(ctx, r.config)
		if err != nil {
			r.metrics.IncRefreshError()
			return &types.PoolError{Address: server.Addr(), Cause: err}
		}
		r.connections.Set(server.Key(), registryEntry{server: server, pool: pool})
	}

	for _, key := range r.connections.Keys() {
		if _, ok := live[key]; ok {
			continue
		}
		r.connections.RemoveCb(key, func(_ string, entry registryEntry, exists bool) bool {
			if exists {
				entry.pool.Close()
			}
			return true
		})
	}

	r.creationTime.Store(time.Now().Unix())
	r.metrics.SetRegistrySize(r.connections.Count())
	r.logger.Info("registry updated", "size", r.connections.Count())

	return nil
}

// expired reports whether the cached topology has outlived its ttl.
func (r *ConnectionRegistry) expired() bool {
	return time.Now().Unix()-r.creationTime.Load() > int64(r.ttl)
}

// GetPool returns the pool for a server if it is still registered.
//
// Parameters:
//   - server: The server to look up
//
// Returns:
//   - Pool: The server's pool
//   - bool: false if the server is no longer registered
func (r *ConnectionRegistry) GetPool(server types.Server) (Pool, bool) {
	entry, ok := r.connections.Get(server.Key())
	if !ok {
		return nil, false
	}

	return entry.pool, true
}

// MarkUnavailable removes a server and its pool from the registry,
// outside the normal refresh cycle. Idempotent.
//
// Parameters:
//   - server: The server to evict
func (r *ConnectionRegistry) MarkUnavailable(server types.Server) {
	removed := r.connections.RemoveCb(server.Key(), func(_ string, entry registryEntry, exists bool) bool {
		if exists {
			entry.pool.Close()
		}
		return exists
	})
	if removed {
		r.metrics.IncServerEvicted(server.Role)
		r.metrics.SetRegistrySize(r.connections.Count())
		r.logger.Warn("server marked unavailable", "address", server.Addr(), "role", server.Role.String())
	}
}

// Servers returns a snapshot of the currently registered servers.
//
// Returns:
//   - []types.Server: The registered servers, in no particular order
func (r *ConnectionRegistry) Servers() []types.Server {
	servers := make([]types.Server, 0, r.connections.Count())
	for entry := range r.connections.IterBuffered() {
		servers = append(servers, entry.Val.server)
	}

	return servers
}

// Size returns the number of currently registered servers.
func (r *ConnectionRegistry) Size() int {
	return r.connections.Count()
}

// Close removes every entry and closes its pool. The registry can still
// be refreshed afterwards, but managers call this only on shutdown.
func (r *ConnectionRegistry) Close() {
	for _, key := range r.connections.Keys() {
		r.connections.RemoveCb(key, func(_ string, entry registryEntry, exists bool) bool {
			if exists {
				entry.pool.Close()
			}
			return true
		})
	}
	r.metrics.SetRegistrySize(0)
}
