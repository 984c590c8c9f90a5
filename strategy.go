package rudder

import "github.com/arloliu/rudder/types"

// LoadBalancingStrategy selects one server per role from the currently
// known server set.
//
// Each method receives the full server snapshot, roles intermixed, and
// returns a server holding the matching role, or false when no server
// currently holds that role.
//
// Implementations MUST be safe for concurrent use from multiple
// goroutines; the manager calls the selection methods concurrently from
// every Get and refresh.
type LoadBalancingStrategy interface {
	// SelectReader picks a read replica.
	//
	// Parameters:
	//   - servers: The currently known servers
	//
	// Returns:
	//   - types.Server: The selected reader
	//   - bool: false if no reader is available
	SelectReader(servers []types.Server) (types.Server, bool)

	// SelectWriter picks a write primary.
	//
	// Parameters:
	//   - servers: The currently known servers
	//
	// Returns:
	//   - types.Server: The selected writer
	//   - bool: false if no writer is available
	SelectWriter(servers []types.Server) (types.Server, bool)

	// SelectRouter picks a routing coordinator for topology discovery.
	//
	// Parameters:
	//   - servers: The currently known servers
	//
	// Returns:
	//   - types.Server: The selected router
	//   - bool: false if no router is available
	SelectRouter(servers []types.Server) (types.Server, bool)
}
