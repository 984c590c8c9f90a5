// Package policy provides load-balancing strategies for the rudder
// routed connection manager.
//
// All strategies implement the rudder.LoadBalancingStrategy interface:
//
//	type LoadBalancingStrategy interface {
//	    SelectReader(servers []types.Server) (types.Server, bool)
//	    SelectWriter(servers []types.Server) (types.Server, bool)
//	    SelectRouter(servers []types.Server) (types.Server, bool)
//	}
//
// Available strategies:
//
//   - [RoundRobin]: Lock-free rotation among the servers of each role,
//     one independent counter per role. This is the default used by the
//     manager when no strategy is configured.
//
// Custom strategies (for example least-connections) can be plugged into
// the manager via rudder.WithLoadBalancingStrategy without changes to
// the manager itself.
//
// Example:
//
//	manager, _ := rudder.NewRoutedConnectionManager(table, factory,
//	    rudder.WithLoadBalancingStrategy(policy.NewRoundRobin(table)),
//	)
package policy
