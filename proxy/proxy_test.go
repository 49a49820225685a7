package proxy

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/defistate/oracle-registry-go/registry"
)

var (
	owner     = common.HexToAddress("0x00000000000000000000000000000000000000A1")
	anyone    = common.HexToAddress("0x00000000000000000000000000000000000000A2")
	quoteUSDC = common.HexToAddress("0x0000000000000000000000000000000000000001")
	deployer1 = common.HexToAddress("0x00000000000000000000000000000000000000D1")
	feed1     = common.HexToAddress("0x00000000000000000000000000000000000000F1")
	token1    = common.HexToAddress("0x0000000000000000000000000000000000000011")
)

type stubProbes struct{}

func (stubProbes) LatestRoundData(ctx context.Context, feed common.Address) (registry.RoundData, error) {
	return registry.RoundData{Answer: big.NewInt(1)}, nil
}

func (stubProbes) TotalSupply(ctx context.Context, token common.Address) (*big.Int, error) {
	return big.NewInt(0), nil
}

type stubConnector struct{}

func (stubConnector) QuoteToken(ctx context.Context, deployer common.Address) (common.Address, error) {
	return quoteUSDC, nil
}

func (stubConnector) AdminApproveBaseOracle(ctx context.Context, deployer, feed common.Address) error {
	return nil
}

func (stubConnector) AdminDisapproveBaseOracle(ctx context.Context, deployer, feed common.Address) error {
	return nil
}

func (stubConnector) Call(ctx context.Context, deployer common.Address, data []byte) ([]byte, error) {
	return nil, nil
}

func factoryFor(version string) Factory {
	return func(state *registry.State) (*registry.Registry, error) {
		return registry.New(registry.Config{
			Version:   version,
			State:     state,
			Validator: registry.NewValidator(stubProbes{}, stubProbes{}, false),
			Deployers: stubConnector{},
			Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		})
	}
}

func TestNew(t *testing.T) {
	t.Run("NilFactory", func(t *testing.T) {
		_, err := New(nil)
		assert.Error(t, err)
	})

	t.Run("FactoryError", func(t *testing.T) {
		_, err := New(func(*registry.State) (*registry.Registry, error) {
			return nil, errors.New("bad config")
		})
		assert.Error(t, err)
	})
}

func TestInitializeOnce(t *testing.T) {
	handle, err := New(factoryFor("1.0.0"))
	require.NoError(t, err)

	require.NoError(t, handle.Initialize(owner))
	assert.ErrorIs(t, handle.Initialize(anyone), registry.ErrAlreadyInitialized)

	// An upgrade must not reopen the initialization window.
	require.NoError(t, handle.Upgrade(factoryFor("2.0.0")))
	assert.ErrorIs(t, handle.Initialize(anyone), registry.ErrAlreadyInitialized)
	assert.Equal(t, owner, handle.Registry().Owner())
}

func TestUpgradePreservesState(t *testing.T) {
	ctx := context.Background()
	handle, err := New(factoryFor("1.0.0"))
	require.NoError(t, err)
	require.NoError(t, handle.Initialize(owner))
	assert.Equal(t, "1.0.0", handle.Version())

	// Populate storage through the first implementation.
	reg := handle.Registry()
	require.NoError(t, reg.AddDeployer(ctx, owner, quoteUSDC, deployer1))
	index, err := reg.SuggestFeed(ctx, anyone, quoteUSDC, feed1, []common.Address{token1})
	require.NoError(t, err)
	require.NoError(t, reg.ApproveFeed(ctx, owner, index))

	require.NoError(t, handle.Upgrade(factoryFor("2.0.0")))
	assert.Equal(t, "2.0.0", handle.Version())

	// The new implementation observes exactly the records the old one left.
	upgraded := handle.Registry()
	assert.NotSame(t, reg, upgraded)
	assert.Equal(t, owner, upgraded.Owner())
	assert.Equal(t, []common.Address{deployer1}, upgraded.Deployers())
	assert.True(t, upgraded.IsFeedApproved(quoteUSDC, feed1))

	tokens, err := upgraded.AssociatedTokens(quoteUSDC, feed1)
	require.NoError(t, err)
	assert.Equal(t, []common.Address{token1}, tokens)

	// Consumed pending slots stay consumed across the upgrade.
	assert.ErrorIs(t, upgraded.ApproveFeed(ctx, owner, index), registry.ErrFeedDoesNotExist)

	// And the upgraded implementation keeps mutating the same storage.
	require.NoError(t, upgraded.RemoveFeed(ctx, owner, quoteUSDC, feed1))
	assert.False(t, upgraded.IsFeedApproved(quoteUSDC, feed1))
}

func TestUpgradeFailureKeepsOldImplementation(t *testing.T) {
	handle, err := New(factoryFor("1.0.0"))
	require.NoError(t, err)
	require.NoError(t, handle.Initialize(owner))

	err = handle.Upgrade(func(*registry.State) (*registry.Registry, error) {
		return nil, errors.New("refused")
	})
	assert.Error(t, err)
	assert.Equal(t, "1.0.0", handle.Version(), "a failed upgrade must leave the old logic in place")

	assert.Error(t, handle.Upgrade(nil))
	assert.Equal(t, "1.0.0", handle.Version())
}
