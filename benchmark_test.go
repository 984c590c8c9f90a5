package rudder_test

import (
	"context"
	"testing"

	"github.com/arloliu/rudder"
	"github.com/arloliu/rudder/bolt"
	"github.com/arloliu/rudder/policy"
	"github.com/arloliu/rudder/types"
)

// =============================================================================
// Benchmark Infrastructure
// =============================================================================

// benchConnection provides a zero-overhead mock for benchmarking.
// It measures only routing overhead, not actual network operations.
type benchConnection struct {
	table *types.RoutingTable
}

func (c *benchConnection) Version() string {
	return "5.4"
}

func (c *benchConnection) Route(_ context.Context, _ *bolt.Route) (*types.RoutingTable, error) {
	return c.table, nil
}

type benchPool struct {
	conn *benchConnection
}

func (p *benchPool) Get(_ context.Context) (rudder.Connection, error) {
	return p.conn, nil
}

func (p *benchPool) Close() {}

func benchTable() *types.RoutingTable {
	return &types.RoutingTable{
		TTL: 300,
		DB:  "neo4j",
		Servers: []types.Server{
			{Addresses: []string{"core1:7687"}, Role: types.RoleWrite},
			{Addresses: []string{"core2:7687"}, Role: types.RoleWrite},
			{Addresses: []string{"replica1:7687"}, Role: types.RoleRead},
			{Addresses: []string{"replica2:7687"}, Role: types.RoleRead},
			{Addresses: []string{"replica3:7687"}, Role: types.RoleRead},
			{Addresses: []string{"core1:7687"}, Role: types.RoleRoute},
		},
	}
}

func benchManager(b *testing.B) *rudder.RoutedConnectionManager {
	b.Helper()

	table := benchTable()
	cfg := rudder.DefaultConfig(
		rudder.WithURI("neo4j://core1:7687"),
		rudder.WithAuth("user", "password"),
	)
	factory := func(_ context.Context, _ *rudder.Config) (rudder.Pool, error) {
		return &benchPool{conn: &benchConnection{table: table}}, nil
	}

	manager, err := rudder.NewRoutedConnectionManager(context.Background(), cfg, table, factory)
	if err != nil {
		b.Fatalf("failed to create manager: %v", err)
	}
	b.Cleanup(manager.Close)

	return manager
}

// =============================================================================
// Strategy Benchmarks
// =============================================================================

func BenchmarkRoundRobinSelectReader(b *testing.B) {
	table := benchTable()
	strategy := policy.NewRoundRobin(table)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, ok := strategy.SelectReader(table.Servers); !ok {
			b.Fatal("no reader selected")
		}
	}
}

func BenchmarkRoundRobinSelectReaderParallel(b *testing.B) {
	table := benchTable()
	strategy := policy.NewRoundRobin(table)

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			if _, ok := strategy.SelectReader(table.Servers); !ok {
				b.Fatal("no reader selected")
			}
		}
	})
}

// =============================================================================
// Manager Benchmarks
// =============================================================================

func BenchmarkManagerGetRead(b *testing.B) {
	manager := benchManager(b)
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := manager.Get(ctx, types.OperationRead); err != nil {
			b.Fatalf("get failed: %v", err)
		}
	}
}

func BenchmarkManagerGetWriteParallel(b *testing.B) {
	manager := benchManager(b)
	ctx := context.Background()

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			if _, err := manager.Get(ctx, types.OperationWrite); err != nil {
				b.Fatalf("get failed: %v", err)
			}
		}
	})
}

// =============================================================================
// Wire Codec Benchmarks
// =============================================================================

func BenchmarkRouteEncode(b *testing.B) {
	route := bolt.NewRoute(
		map[string]string{"address": "core1:7687"},
		[]string{"bookmark-1", "bookmark-2"},
		"neo4j",
	)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = route.Encode()
	}
}
