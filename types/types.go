// Package types provides shared types and errors for the Rudder library.
//
// This is a "leaf" package with no imports from other rudder packages,
// allowing it to be imported by any package without causing import cycles.
package types

import (
	"errors"
	"strconv"
	"strings"
)

// Role identifies the function a cluster member advertises in the
// routing table.
type Role string

// String returns the string representation of the Role.
func (r Role) String() string {
	return string(r)
}

// Server roles as reported by the cluster in a routing table.
const (
	// RoleRead marks a read replica.
	RoleRead Role = "READ"
	// RoleWrite marks a write primary.
	RoleWrite Role = "WRITE"
	// RoleRoute marks a routing coordinator, used for topology discovery.
	RoleRoute Role = "ROUTE"
)

// Operation is the kind of work a caller wants a connection for.
//
// The routed connection manager uses it to pick between reader and
// writer nodes.
type Operation int

const (
	// OperationRead routes to a read replica.
	OperationRead Operation = iota
	// OperationWrite routes to a write primary.
	OperationWrite
)

// String returns a lowercase name suitable for error messages and logs.
func (o Operation) String() string {
	if o == OperationWrite {
		return "write"
	}
	return "read"
}

// Role returns the server role that can serve this operation.
func (o Operation) Role() Role {
	if o == OperationWrite {
		return RoleWrite
	}
	return RoleRead
}

// Database names a target database on the server.
//
// The zero value ("") means "server default database". It is a plain
// string under the hood, so it is cheap to copy and can be compared
// and used as a map key by value.
type Database string

// String returns the database name.
func (d Database) String() string {
	return string(d)
}

// IsDefault reports whether this refers to the server default database.
func (d Database) IsDefault() bool {
	return d == ""
}

// Server is one member of the cluster topology.
//
// It is an immutable value type: equality and hashing are structural
// over the ordered address list and the role, which makes it usable as
// a map key via Key().
type Server struct {
	// Addresses is the ordered list of host:port endpoints for this
	// member. The first entry is the primary address.
	Addresses []string

	// Role is the function this member advertises.
	Role Role
}

// Addr returns the primary (first) address, or "" if none is known.
func (s Server) Addr() string {
	if len(s.Addresses) == 0 {
		return ""
	}
	return s.Addresses[0]
}

// Key returns a stable string identity derived from the role and the
// ordered address list. Two servers with equal addresses and role map
// to the same key.
func (s Server) Key() string {
	return string(s.Role) + "|" + strings.Join(s.Addresses, ",")
}

// Equal reports structural equality of addresses and role.
func (s Server) Equal(other Server) bool {
	if s.Role != other.Role || len(s.Addresses) != len(other.Addresses) {
		return false
	}
	for i, addr := range s.Addresses {
		if other.Addresses[i] != addr {
			return false
		}
	}

	return true
}

// RoutingTable is a snapshot of the cluster topology.
//
// Tables are immutable after construction: a topology refresh produces
// a new table, never patches an old one.
type RoutingTable struct {
	// TTL is the number of seconds this table stays fresh.
	TTL uint64

	// DB is the database this table applies to. Empty means the server
	// default database.
	DB Database

	// Servers lists the known cluster members, roles intermixed.
	Servers []Server
}

// Role returns the servers holding the given role, in table order.
func (t *RoutingTable) Role(role Role) []Server {
	var matched []Server
	for _, s := range t.Servers {
		if s.Role == role {
			matched = append(matched, s)
		}
	}

	return matched
}

// String renders the table for logs: ttl, db and the comma-joined
// server addresses.
func (t *RoutingTable) String() string {
	addresses := make([]string, 0, len(t.Servers))
	for _, s := range t.Servers {
		addresses = append(addresses, strings.Join(s.Addresses, ", "))
	}

	return "RoutingTable{ttl: " + strconv.FormatUint(t.TTL, 10) +
		", db: " + string(t.DB) +
		", servers: " + strings.Join(addresses, ", ") + "}"
}

// Sentinel errors for common failure scenarios.
var (
	// ErrInvalidConfig indicates a malformed configuration. It is
	// returned before any connection is attempted.
	ErrInvalidConfig = errors.New("rudder: invalid configuration")

	// ErrNilRoutingTable indicates that a nil routing table was provided.
	ErrNilRoutingTable = errors.New("rudder: routing table cannot be nil")

	// ErrNilPoolFactory indicates that no pool factory was provided.
	ErrNilPoolFactory = errors.New("rudder: pool factory cannot be nil")
)

// ServerUnavailableError indicates that no routing coordinator could be
// reached while refreshing the topology.
type ServerUnavailableError struct {
	// Detail describes what was exhausted.
	Detail string
}

// Error implements the error interface.
func (e *ServerUnavailableError) Error() string {
	return "rudder: server unavailable: " + e.Detail
}

// RoutingTableRefreshFailedError indicates that no server could satisfy
// a requested operation after exhausting all candidates.
type RoutingTableRefreshFailedError struct {
	// Detail names the operation that could not be served.
	Detail string
}

// Error implements the error interface.
func (e *RoutingTableRefreshFailedError) Error() string {
	return "rudder: routing table refresh failed: " + e.Detail
}

// PoolError wraps a connection pool failure for a specific server.
//
// Per-candidate pool failures during selection are handled locally (the
// server is evicted and the next candidate is tried); this type surfaces
// the underlying cause when a pool cannot even be created.
type PoolError struct {
	// Address is the primary address of the affected server.
	Address string

	// Cause is the underlying error.
	Cause error
}

// Error implements the error interface.
func (e *PoolError) Error() string {
	return "rudder: pool for " + e.Address + " failed: " + e.Cause.Error()
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *PoolError) Unwrap() error {
	return e.Cause
}
