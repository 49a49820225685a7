package registry

import (
	"context"
	"fmt"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/ethereum/go-ethereum/common"
)

// Validator gates which addresses may enter the registry. It probes
// candidates for liveness, not meaning: a feed is valid iff its latest-round
// query resolves, a token is valid iff its total-supply query resolves. Any
// non-failing numeric response, including zero, counts.
//
// Positive results may be cached; a live contract stays live for the
// registry's purposes until it is explicitly removed, so the cache never
// needs invalidation.
type Validator struct {
	feeds  FeedProber
	tokens TokenProber

	// cache holds addresses that have already passed a probe. Negative
	// results are never cached.
	cache mapset.Set[common.Address]
}

// NewValidator creates a Validator over the given probing capabilities.
// Passing cache=true enables the positive-result cache.
func NewValidator(feeds FeedProber, tokens TokenProber, cache bool) *Validator {
	v := &Validator{feeds: feeds, tokens: tokens}
	if cache {
		v.cache = mapset.NewSet[common.Address]()
	}
	return v
}

// ValidateFeed returns nil iff feed is non-zero and its latest-round query
// resolves without failure. A zero address fails with ErrInvalidAddress; a
// failing probe fails with ErrInvalidFeed carrying the probe error.
func (v *Validator) ValidateFeed(ctx context.Context, feed common.Address) error {
	if feed == (common.Address{}) {
		return fmt.Errorf("feed: %w", ErrInvalidAddress)
	}
	if v.cache != nil && v.cache.Contains(feed) {
		return nil
	}
	if _, err := v.feeds.LatestRoundData(ctx, feed); err != nil {
		return fmt.Errorf("feed %s: %w: %v", feed.Hex(), ErrInvalidFeed, err)
	}
	if v.cache != nil {
		v.cache.Add(feed)
	}
	return nil
}

// ValidateToken returns nil iff token is non-zero and its total-supply query
// resolves without failure.
func (v *Validator) ValidateToken(ctx context.Context, token common.Address) error {
	if token == (common.Address{}) {
		return fmt.Errorf("token: %w", ErrInvalidAddress)
	}
	if v.cache != nil && v.cache.Contains(token) {
		return nil
	}
	if _, err := v.tokens.TotalSupply(ctx, token); err != nil {
		return fmt.Errorf("token %s: %w: %v", token.Hex(), ErrInvalidToken, err)
	}
	if v.cache != nil {
		v.cache.Add(token)
	}
	return nil
}
