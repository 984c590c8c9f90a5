// Package types provides shared types and error definitions for the rudder library.
//
// This is a leaf package with zero rudder imports to prevent import cycles.
// All packages in rudder can safely import this package.
//
// # Types
//
// Server and RoutingTable describe the cluster topology as reported by a
// routing coordinator:
//
//	type Server struct {
//	    Addresses []string
//	    Role      Role
//	}
//
//	type RoutingTable struct {
//	    TTL     uint64
//	    DB      Database
//	    Servers []Server
//	}
//
// Role identifies a cluster member's function:
//
//	const (
//	    RoleRead  Role = "READ"
//	    RoleWrite Role = "WRITE"
//	    RoleRoute Role = "ROUTE"
//	)
//
// Operation is what callers pass when asking for a connection:
//
//	const (
//	    OperationRead Operation = iota
//	    OperationWrite
//	)
//
// # Errors
//
// Sentinel errors are provided for common failure scenarios:
//
//   - ErrInvalidConfig: Configuration is missing required fields
//   - ErrNilRoutingTable: A nil routing table was provided
//   - ErrNilPoolFactory: No pool factory was provided
//
// Typed errors carry detail about exhausted candidate sets:
//
//   - ServerUnavailableError: No routing coordinator could be reached
//   - RoutingTableRefreshFailedError: No server could satisfy an operation
//   - PoolError: A connection pool failed for a specific server
package types
