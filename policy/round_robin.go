// Package policy provides load-balancing strategies for the rudder
// routed connection manager.
package policy

import (
	"sync/atomic"

	"github.com/arloliu/rudder/types"
)

// RoundRobin rotates through same-role servers using one independent
// atomic counter per role.
//
// Each counter represents "remaining slots before wraparound" and is
// primed to the role's server count at construction, so the very first
// selection decrements from a full cycle. Selection walks the candidate
// list from the last element toward the first; this traversal direction
// is part of the contract and pinned by tests.
//
// Selection is lock-free. Two goroutines racing between the wraparound
// reset and the decrement can observe a stale or duplicate index; that
// weakens fairness but never yields an out-of-range candidate, so it is
// deliberately left unserialized.
type RoundRobin struct {
	readerIndex atomic.Uint64
	writerIndex atomic.Uint64
	routerIndex atomic.Uint64
}

// NewRoundRobin creates a round-robin strategy primed from an initial
// routing table.
//
// For each role the counter starts at the number of servers currently
// holding that role, not at zero.
//
// Parameters:
//   - table: The initial topology snapshot
//
// Returns:
//   - *RoundRobin: A new strategy
func NewRoundRobin(table *types.RoutingTable) *RoundRobin {
	s := &RoundRobin{}
	s.readerIndex.Store(uint64(len(table.Role(types.RoleRead))))
	s.writerIndex.Store(uint64(len(table.Role(types.RoleWrite))))
	s.routerIndex.Store(uint64(len(table.Role(types.RoleRoute))))

	return s
}

// SelectReader picks the next read replica from the given server set.
//
// Parameters:
//   - servers: The currently known servers, roles intermixed
//
// Returns:
//   - types.Server: The selected reader
//   - bool: false if no server holds the READ role
func (s *RoundRobin) SelectReader(servers []types.Server) (types.Server, bool) {
	return next(filterRole(servers, types.RoleRead), &s.readerIndex)
}

// SelectWriter picks the next write primary from the given server set.
//
// Parameters:
//   - servers: The currently known servers, roles intermixed
//
// Returns:
//   - types.Server: The selected writer
//   - bool: false if no server holds the WRITE role
func (s *RoundRobin) SelectWriter(servers []types.Server) (types.Server, bool) {
	return next(filterRole(servers, types.RoleWrite), &s.writerIndex)
}

// SelectRouter picks the next routing coordinator from the given server set.
//
// Parameters:
//   - servers: The currently known servers, roles intermixed
//
// Returns:
//   - types.Server: The selected router
//   - bool: false if no server holds the ROUTE role
func (s *RoundRobin) SelectRouter(servers []types.Server) (types.Server, bool) {
	return next(filterRole(servers, types.RoleRoute), &s.routerIndex)
}

// next consumes indices from the end of the candidate list toward the
// front. When the counter reaches zero it is reset to the candidate
// count; the compare-and-swap is best effort, a concurrent reset makes
// it a harmless no-op. When the list has shrunk below the counter the
// counter is re-primed and the last element is returned as a safe
// fallback.
func next(candidates []types.Server, index *atomic.Uint64) (types.Server, bool) {
	if len(candidates) == 0 {
		return types.Server{}, false
	}

	count := uint64(len(candidates))
	index.CompareAndSwap(0, count)

	// Decrement, keeping the pre-decrement value. Underflow on a racing
	// zero wraps far past count and falls into the reset branch below.
	prev := index.Add(^uint64(0)) + 1
	if prev-1 < count {
		return candidates[prev-1], true
	}

	index.Store(count)

	return candidates[count-1], true
}

func filterRole(servers []types.Server, role types.Role) []types.Server {
	var matched []types.Server
	for _, s := range servers {
		if s.Role == role {
			matched = append(matched, s)
		}
	}

	return matched
}
