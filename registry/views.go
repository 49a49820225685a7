package registry

import (
	"github.com/ethereum/go-ethereum/common"
)

// Read-only queries. Unauthenticated; every slice returned is a defensive
// copy so callers can hold results across subsequent mutations.

// Deployers returns the enumerable deployer list. Order is not stable
// across removals (swap-and-pop).
func (r *Registry) Deployers() []common.Address {
	r.mu.Lock()
	defer r.mu.Unlock()
	return copyAddresses(r.state.deployerList)
}

// DeployerForQuoteToken resolves a quote token to its bound deployer.
func (r *Registry) DeployerForQuoteToken(quoteToken common.Address) (common.Address, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.state.deployerByQuote[quoteToken]
	return d, ok
}

// QuoteTokenForDeployer resolves a deployer to its bound quote token.
func (r *Registry) QuoteTokenForDeployer(deployer common.Address) (common.Address, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	q, ok := r.state.quoteByDeployer[deployer]
	return q, ok
}

// PendingFeeds returns the pending arena including tombstoned slots, so a
// record's position in the result is its approvable index. Tombstoned
// slots are zero records; callers must not assume an in-range index is
// live.
func (r *Registry) PendingFeeds() []FeedRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]FeedRecord, len(r.state.pendingFeeds))
	for i, rec := range r.state.pendingFeeds {
		rec.BaseTokens = copyAddresses(rec.BaseTokens)
		out[i] = rec
	}
	return out
}

// PendingFeed returns the live pending record at index, or
// ErrFeedDoesNotExist if the index is out of range or tombstoned.
func (r *Registry) PendingFeed(index int) (FeedRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if index < 0 || index >= len(r.state.pendingFeeds) || r.state.pendingTombstoned(index) {
		return FeedRecord{}, ErrFeedDoesNotExist
	}
	rec := r.state.pendingFeeds[index]
	rec.BaseTokens = copyAddresses(rec.BaseTokens)
	return rec, nil
}

// FeedsForDeployer returns the deployer's enumerable approved-feed list.
func (r *Registry) FeedsForDeployer(deployer common.Address) []common.Address {
	r.mu.Lock()
	defer r.mu.Unlock()
	return copyAddresses(r.state.feedsByDeployer[deployer])
}

// IsFeedApproved reports whether feed is approved for quoteToken's bound
// deployer. Returns false when the quote token has no binding.
func (r *Registry) IsFeedApproved(quoteToken, feed common.Address) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	deployer, bound := r.state.deployerByQuote[quoteToken]
	if !bound {
		return false
	}
	_, ok := r.state.approvedFeeds[FeedKey{Deployer: deployer, Feed: feed}]
	return ok
}

// ApprovedFeed returns the approved record for (quoteToken's deployer,
// feed).
func (r *Registry) ApprovedFeed(quoteToken, feed common.Address) (FeedRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	record, err := r.approvedRecord(quoteToken, feed)
	if err != nil {
		return FeedRecord{}, err
	}
	record.BaseTokens = copyAddresses(record.BaseTokens)
	return record, nil
}

// AssociatedTokens returns the approved feed's associated base tokens.
// Order is not guaranteed after removals.
func (r *Registry) AssociatedTokens(quoteToken, feed common.Address) ([]common.Address, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	record, err := r.approvedRecord(quoteToken, feed)
	if err != nil {
		return nil, err
	}
	return copyAddresses(record.BaseTokens), nil
}

// PendingBaseTokens returns the staged single-token arena including
// tombstoned slots, positions doubling as approvable indices.
func (r *Registry) PendingBaseTokens() []PendingBaseToken {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]PendingBaseToken, len(r.state.pendingBaseTokens))
	copy(out, r.state.pendingBaseTokens)
	return out
}

// OrphanedFeeds returns approved records whose deployer no longer has a
// quote-token binding. Orphans survive RemoveDeployer by design; this
// query exists so operators can find and clean them up explicitly.
func (r *Registry) OrphanedFeeds() []FeedRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []FeedRecord
	for _, record := range r.state.approvedFeeds {
		if _, bound := r.state.quoteByDeployer[record.Deployer]; !bound {
			record.BaseTokens = copyAddresses(record.BaseTokens)
			out = append(out, record)
		}
	}
	return out
}
