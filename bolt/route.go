// Package bolt implements the Route request/response exchange used for
// topology discovery, together with the packstream primitives it needs.
//
// Only the routing wire contract lives here. Query execution,
// transactions and the authentication handshake belong to the
// connection layer and are out of scope for this package.
package bolt

import (
	"fmt"
	"sort"

	"github.com/arloliu/rudder/types"
)

// RouteSignature is the structure tag identifying a ROUTE request.
const RouteSignature byte = 0x66

// routeFieldCount is fixed by the protocol: routing context, bookmarks,
// database name.
const routeFieldCount = 3

// Route is the topology-discovery request sent to a routing coordinator.
//
// The encoded form is a 3-field structure tagged (0xB3, 0x66) carrying
// the routing context, the accumulated bookmarks and the target
// database name.
type Route struct {
	// Context is the routing-context mapping, may be empty.
	Context map[string]string

	// Bookmarks are opaque causal-consistency tokens from prior writes.
	Bookmarks []string

	// DB is the target database. Empty means the server default.
	DB types.Database
}

// NewRoute builds a Route request.
//
// Parameters:
//   - context: Routing-context mapping (nil for none)
//   - bookmarks: Accumulated bookmarks (nil for none)
//   - db: Target database ("" for the server default)
//
// Returns:
//   - *Route: The request, ready to Encode
func NewRoute(context map[string]string, bookmarks []string, db types.Database) *Route {
	return &Route{Context: context, Bookmarks: bookmarks, DB: db}
}

// Encode serializes the request to its packstream form.
//
// Map keys are written in sorted order so the output is deterministic.
//
// Returns:
//   - []byte: The encoded structure (0xB3, 0x66){context, bookmarks, db}
func (r *Route) Encode() []byte {
	var e encoder

	e.writeStructHeader(routeFieldCount, RouteSignature)

	keys := make([]string, 0, len(r.Context))
	for k := range r.Context {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	e.writeMapHeader(len(keys))
	for _, k := range keys {
		e.writeString(k)
		e.writeString(r.Context[k])
	}

	e.writeListHeader(len(r.Bookmarks))
	for _, b := range r.Bookmarks {
		e.writeString(b)
	}

	e.writeString(string(r.DB))

	return e.bytes()
}

// ParseRouteResponse decodes the server's reply to a Route request.
//
// The payload is a single-entry map keyed "rt" whose value carries the
// ttl, an optional db and the server list. A missing db means "use the
// default database"; any other structural deviation is rejected with an
// error wrapping ErrMalformed rather than silently substituting defaults.
//
// Parameters:
//   - data: The packstream-encoded response payload
//
// Returns:
//   - *types.RoutingTable: The decoded topology snapshot
//   - error: A parse error wrapping ErrMalformed
func ParseRouteResponse(data []byte) (*types.RoutingTable, error) {
	value, err := newDecoder(data).decodeValue()
	if err != nil {
		return nil, err
	}

	top, ok := value.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: route response is not a map", ErrMalformed)
	}
	rtValue, ok := top["rt"]
	if !ok {
		return nil, fmt.Errorf("%w: route response is missing %q", ErrMalformed, "rt")
	}

	return parseRoutingTable(rtValue)
}

func parseRoutingTable(value any) (*types.RoutingTable, error) {
	fields, ok := value.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: routing table is not a map", ErrMalformed)
	}

	ttl, ok := fields["ttl"].(int64)
	if !ok || ttl < 0 {
		return nil, fmt.Errorf("%w: routing table ttl is missing or not a non-negative integer", ErrMalformed)
	}

	table := &types.RoutingTable{TTL: uint64(ttl)}

	// db is optional; absent or null means the server default database.
	if dbValue, present := fields["db"]; present && dbValue != nil {
		db, ok := dbValue.(string)
		if !ok {
			return nil, fmt.Errorf("%w: routing table db is not a string", ErrMalformed)
		}
		table.DB = types.Database(db)
	}

	serversValue, ok := fields["servers"].([]any)
	if !ok {
		return nil, fmt.Errorf("%w: routing table servers is missing or not a list", ErrMalformed)
	}

	table.Servers = make([]types.Server, 0, len(serversValue))
	for i, entry := range serversValue {
		server, err := parseServer(entry)
		if err != nil {
			return nil, fmt.Errorf("server %d: %w", i, err)
		}
		table.Servers = append(table.Servers, server)
	}

	return table, nil
}

func parseServer(value any) (types.Server, error) {
	fields, ok := value.(map[string]any)
	if !ok {
		return types.Server{}, fmt.Errorf("%w: server entry is not a map", ErrMalformed)
	}

	role, ok := fields["role"].(string)
	if !ok {
		return types.Server{}, fmt.Errorf("%w: server role is missing or not a string", ErrMalformed)
	}

	addressesValue, ok := fields["addresses"].([]any)
	if !ok {
		return types.Server{}, fmt.Errorf("%w: server addresses is missing or not a list", ErrMalformed)
	}
	addresses := make([]string, 0, len(addressesValue))
	for _, a := range addressesValue {
		addr, ok := a.(string)
		if !ok {
			return types.Server{}, fmt.Errorf("%w: server address is not a string", ErrMalformed)
		}
		addresses = append(addresses, addr)
	}

	return types.Server{Addresses: addresses, Role: types.Role(role)}, nil
}
