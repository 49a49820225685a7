package ethereum

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"

	"github.com/defistate/oracle-registry-go/registry"
)

// FeedClient implements registry.FeedProber over a read-only contract
// backend (satisfied by *ethclient.Client).
type FeedClient struct {
	backend bind.ContractCaller
}

// NewFeedClient creates a FeedClient.
func NewFeedClient(backend bind.ContractCaller) *FeedClient {
	return &FeedClient{backend: backend}
}

// LatestRoundData queries the Chainlink-shaped latestRoundData on feed.
// Any failure — no code at the address, a revert, an ABI mismatch — makes
// the feed invalid from the registry's point of view.
func (c *FeedClient) LatestRoundData(ctx context.Context, feed common.Address) (registry.RoundData, error) {
	bound := bind.NewBoundContract(feed, aggregatorABI, c.backend, nil, nil)

	var out []interface{}
	if err := bound.Call(&bind.CallOpts{Context: ctx}, &out, "latestRoundData"); err != nil {
		return registry.RoundData{}, fmt.Errorf("latestRoundData %s: %w", feed.Hex(), err)
	}
	if len(out) != 5 {
		return registry.RoundData{}, fmt.Errorf("latestRoundData %s: %d outputs, want 5", feed.Hex(), len(out))
	}

	data := registry.RoundData{}
	var ok bool
	if data.RoundID, ok = out[0].(*big.Int); !ok {
		return registry.RoundData{}, fmt.Errorf("latestRoundData %s: bad roundId type %T", feed.Hex(), out[0])
	}
	if data.Answer, ok = out[1].(*big.Int); !ok {
		return registry.RoundData{}, fmt.Errorf("latestRoundData %s: bad answer type %T", feed.Hex(), out[1])
	}
	if data.StartedAt, ok = out[2].(*big.Int); !ok {
		return registry.RoundData{}, fmt.Errorf("latestRoundData %s: bad startedAt type %T", feed.Hex(), out[2])
	}
	if data.UpdatedAt, ok = out[3].(*big.Int); !ok {
		return registry.RoundData{}, fmt.Errorf("latestRoundData %s: bad updatedAt type %T", feed.Hex(), out[3])
	}
	if data.AnsweredInRound, ok = out[4].(*big.Int); !ok {
		return registry.RoundData{}, fmt.Errorf("latestRoundData %s: bad answeredInRound type %T", feed.Hex(), out[4])
	}
	return data, nil
}

// TokenClient implements registry.TokenProber over a read-only contract
// backend.
type TokenClient struct {
	backend bind.ContractCaller
}

// NewTokenClient creates a TokenClient.
func NewTokenClient(backend bind.ContractCaller) *TokenClient {
	return &TokenClient{backend: backend}
}

// TotalSupply queries totalSupply on token. The value is not interpreted;
// a resolving call is the entire liveness criterion.
func (c *TokenClient) TotalSupply(ctx context.Context, token common.Address) (*big.Int, error) {
	bound := bind.NewBoundContract(token, erc20ABI, c.backend, nil, nil)

	var out []interface{}
	if err := bound.Call(&bind.CallOpts{Context: ctx}, &out, "totalSupply"); err != nil {
		return nil, fmt.Errorf("totalSupply %s: %w", token.Hex(), err)
	}
	supply, ok := out[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("totalSupply %s: bad output type %T", token.Hex(), out[0])
	}
	return supply, nil
}
