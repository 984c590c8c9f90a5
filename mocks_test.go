package rudder

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/arloliu/rudder/bolt"
	"github.com/arloliu/rudder/types"
)

// mockConnection implements Connection and records the Route requests
// it receives.
type mockConnection struct {
	version string

	mu        sync.Mutex
	lastRoute *bolt.Route

	table    *types.RoutingTable
	routeErr error
}

func (c *mockConnection) Version() string {
	return c.version
}

func (c *mockConnection) Route(_ context.Context, route *bolt.Route) (*types.RoutingTable, error) {
	c.mu.Lock()
	c.lastRoute = route
	c.mu.Unlock()

	if c.routeErr != nil {
		return nil, c.routeErr
	}

	return c.table, nil
}

func (c *mockConnection) routedRequest() *bolt.Route {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.lastRoute
}

// mockPool implements Pool with a scripted outcome per Get.
type mockPool struct {
	conn   *mockConnection
	getErr error

	gets   atomic.Int32
	closed atomic.Bool
}

func (p *mockPool) Get(_ context.Context) (Connection, error) {
	p.gets.Add(1)
	if p.getErr != nil {
		return nil, p.getErr
	}

	return p.conn, nil
}

func (p *mockPool) Close() {
	p.closed.Store(true)
}

// queueFactory hands out pre-built pools in order. The registry creates
// pools in table order, so the n-th pool belongs to the n-th new server.
type queueFactory struct {
	mu    sync.Mutex
	pools []*mockPool
	calls int
	err   error
}

func (f *queueFactory) factory(_ context.Context, _ *Config) (Pool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return nil, f.err
	}

	f.calls++
	if len(f.pools) == 0 {
		// Tests that don't care about specific pools get a fresh healthy one.
		return &mockPool{conn: &mockConnection{version: "5.4"}}, nil
	}
	p := f.pools[0]
	f.pools = f.pools[1:]

	return p, nil
}

func (f *queueFactory) factoryCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.calls
}

// scriptedStrategy pops pre-planned candidates per role, making
// selection order deterministic in manager tests. An exhausted script
// reports no candidate.
type scriptedStrategy struct {
	mu      sync.Mutex
	readers []types.Server
	writers []types.Server
	routers []types.Server
}

func (s *scriptedStrategy) SelectReader(_ []types.Server) (types.Server, bool) {
	return s.pop(&s.readers)
}

func (s *scriptedStrategy) SelectWriter(_ []types.Server) (types.Server, bool) {
	return s.pop(&s.writers)
}

func (s *scriptedStrategy) SelectRouter(_ []types.Server) (types.Server, bool) {
	return s.pop(&s.routers)
}

func (s *scriptedStrategy) pop(queue *[]types.Server) (types.Server, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(*queue) == 0 {
		return types.Server{}, false
	}
	head := (*queue)[0]
	*queue = (*queue)[1:]

	return head, true
}

func testConfig(opts ...Option) *Config {
	base := []Option{
		WithURI("neo4j://localhost:7687"),
		WithAuth("user", "password"),
	}

	return DefaultConfig(append(base, opts...)...)
}

func clusterTable(ttl uint64) *types.RoutingTable {
	return &types.RoutingTable{
		TTL: ttl,
		DB:  "neo4j",
		Servers: []types.Server{
			{Addresses: []string{"host1:7687"}, Role: types.RoleRead},
			{Addresses: []string{"host2:7688"}, Role: types.RoleRead},
			{Addresses: []string{"host3:7687"}, Role: types.RoleWrite},
			{Addresses: []string{"host4:7688"}, Role: types.RoleWrite},
			{Addresses: []string{"host0:7687"}, Role: types.RoleRoute},
		},
	}
}
