package rudder

import "github.com/arloliu/rudder/types"

// Type aliases for convenience - re-export from types package.
type (
	Role             = types.Role
	Operation        = types.Operation
	Database         = types.Database
	Server           = types.Server
	RoutingTable     = types.RoutingTable
	Logger           = types.Logger
	MetricsCollector = types.MetricsCollector
)

// Re-export role constants for convenience.
const (
	RoleRead  = types.RoleRead
	RoleWrite = types.RoleWrite
	RoleRoute = types.RoleRoute
)

// Re-export operation constants for convenience.
const (
	OperationRead  = types.OperationRead
	OperationWrite = types.OperationWrite
)
