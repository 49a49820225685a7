package registry

import (
	"github.com/ethereum/go-ethereum/common"
)

// State is the registry's entire persisted storage layout. It is owned by
// the stable handle (see the proxy package) and survives logic upgrades:
// a new Registry implementation is constructed over the same *State.
//
// State carries no synchronization of its own; the Registry bound over it
// imposes the single global serialization order for all mutations.
type State struct {
	initialized  bool
	owner        common.Address
	pendingOwner common.Address

	// Deployer binding table. Both directions are kept in lockstep and the
	// list is enumerable; removal uses swap-and-pop, so list order is not
	// stable across mutations.
	deployerByQuote map[common.Address]common.Address
	quoteByDeployer map[common.Address]common.Address
	deployerList    []common.Address

	// Pending-feed arena. Append-only; approval or deletion tombstones a
	// slot by zeroing it, never compacting, so indices handed to external
	// callers stay stable for the remaining entries.
	pendingFeeds []FeedRecord

	// Approved records keyed by (deployer, feed), plus the per-deployer
	// enumerable feed list.
	approvedFeeds   map[FeedKey]FeedRecord
	feedsByDeployer map[common.Address][]common.Address

	// Staged single-token associations (two-phase variant), same arena
	// semantics as pendingFeeds.
	pendingBaseTokens []PendingBaseToken
}

// NewState returns empty, uninitialized storage.
func NewState() *State {
	return &State{
		deployerByQuote: make(map[common.Address]common.Address),
		quoteByDeployer: make(map[common.Address]common.Address),
		approvedFeeds:   make(map[FeedKey]FeedRecord),
		feedsByDeployer: make(map[common.Address][]common.Address),
	}
}

// Initialized reports whether Initialize has run for this storage lifetime.
func (s *State) Initialized() bool {
	return s.initialized
}

// tombstoned reports whether the pending slot at i has been consumed.
// A zero feed address marks a dead slot; callers must not assume a live
// record just because an index is in range.
func (s *State) pendingTombstoned(i int) bool {
	return s.pendingFeeds[i].Feed == (common.Address{})
}

func (s *State) pendingBaseTokenTombstoned(i int) bool {
	return s.pendingBaseTokens[i].BaseToken == (common.Address{})
}

// removeFromAddressList removes the first occurrence of addr from list via
// swap-and-pop. O(1) removal; reorders the remaining elements.
func removeFromAddressList(list []common.Address, addr common.Address) []common.Address {
	for i, a := range list {
		if a == addr {
			last := len(list) - 1
			list[i] = list[last]
			list[last] = common.Address{}
			return list[:last]
		}
	}
	return list
}

// containsAddress reports whether addr appears in list (linear scan).
func containsAddress(list []common.Address, addr common.Address) bool {
	for _, a := range list {
		if a == addr {
			return true
		}
	}
	return false
}

// copyAddresses returns a defensive copy of list.
func copyAddresses(list []common.Address) []common.Address {
	out := make([]common.Address, len(list))
	copy(out, list)
	return out
}
