package registry

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// FeedKey is the identity of a feed record: the pool deployer it routes to
// and the feed contract address.
type FeedKey struct {
	Deployer common.Address `json:"deployer"`
	Feed     common.Address `json:"feed"`
}

// FeedRecord is a feed tracked by the registry.
//
// Lifecycle: a record is created unapproved in the pending arena by
// SuggestFeed, promoted by ApproveFeed, and deleted by RemoveFeed.
// BaseTokens has set semantics (no duplicates) but is stored as an
// appendable sequence with swap-remove deletion, so its order is not
// guaranteed after a removal.
type FeedRecord struct {
	Deployer   common.Address   `json:"deployer"`
	Feed       common.Address   `json:"feed"`
	Approved   bool             `json:"approved"`
	BaseTokens []common.Address `json:"baseTokens"`
}

// Key returns the record's identity key.
func (r FeedRecord) Key() FeedKey {
	return FeedKey{Deployer: r.Deployer, Feed: r.Feed}
}

// PendingBaseToken is a staged single-token association awaiting approval,
// decoupled from the bulk BaseTokens proposed at suggestion time.
type PendingBaseToken struct {
	QuoteToken common.Address `json:"quoteToken"`
	BaseFeed   common.Address `json:"baseFeed"`
	BaseToken  common.Address `json:"baseToken"`
}

// RoundData is the result of a feed's latest-round query. The registry
// probes for liveness only; answer semantics are not checked.
type RoundData struct {
	RoundID         *big.Int
	Answer          *big.Int
	StartedAt       *big.Int
	UpdatedAt       *big.Int
	AnsweredInRound *big.Int
}

// FeedProber is the capability the registry uses to probe candidate price
// feeds. A feed is considered live iff the call resolves without error.
type FeedProber interface {
	LatestRoundData(ctx context.Context, feed common.Address) (RoundData, error)
}

// TokenProber is the capability the registry uses to probe candidate tokens.
// Any non-failing response, including a zero supply, counts as live.
type TokenProber interface {
	TotalSupply(ctx context.Context, token common.Address) (*big.Int, error)
}

// DeployerConnector is the capability the registry uses to talk to pool
// deployer contracts: the self-reported binding cross-check, the typed
// administrative notifications, and the raw relay passthrough.
type DeployerConnector interface {
	// QuoteToken returns the deployer's self-reported quote token.
	QuoteToken(ctx context.Context, deployer common.Address) (common.Address, error)

	// AdminApproveBaseOracle notifies the deployer that a base oracle was
	// approved for it.
	AdminApproveBaseOracle(ctx context.Context, deployer, feed common.Address) error

	// AdminDisapproveBaseOracle notifies the deployer that a base oracle
	// was removed.
	AdminDisapproveBaseOracle(ctx context.Context, deployer, feed common.Address) error

	// Call forwards a raw instruction payload to the deployer and returns
	// its raw result. Used for operational needs the typed methods do not
	// cover, e.g. recovering ownership of a deployer contract.
	Call(ctx context.Context, deployer common.Address, data []byte) ([]byte, error)
}
