package registry

import (
	"context"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidator(t *testing.T) {
	ctx := context.Background()

	t.Run("ZeroAddresses", func(t *testing.T) {
		v := NewValidator(newProbeFake(), newProbeFake(), false)
		assert.ErrorIs(t, v.ValidateFeed(ctx, common.Address{}), ErrInvalidAddress)
		assert.ErrorIs(t, v.ValidateToken(ctx, common.Address{}), ErrInvalidAddress)
	})

	t.Run("ProbeFailures", func(t *testing.T) {
		probes := newProbeFake()
		probes.badFeeds[feed1] = true
		probes.badTokens[token1] = true
		v := NewValidator(probes, probes, false)

		err := v.ValidateFeed(ctx, feed1)
		assert.ErrorIs(t, err, ErrInvalidFeed)
		assert.Contains(t, err.Error(), feed1.Hex(), "error should name the failing address")

		assert.ErrorIs(t, v.ValidateToken(ctx, token1), ErrInvalidToken)
	})

	t.Run("CacheSkipsRepeatProbes", func(t *testing.T) {
		probes := newProbeFake()
		v := NewValidator(probes, probes, true)

		require.NoError(t, v.ValidateFeed(ctx, feed1))
		require.NoError(t, v.ValidateFeed(ctx, feed1))
		assert.Equal(t, 1, probes.feedCalls)

		require.NoError(t, v.ValidateToken(ctx, token1))
		require.NoError(t, v.ValidateToken(ctx, token1))
		assert.Equal(t, 1, probes.tokenCalls)
	})

	t.Run("NegativeResultsNotCached", func(t *testing.T) {
		probes := newProbeFake()
		probes.badFeeds[feed1] = true
		v := NewValidator(probes, probes, true)

		require.Error(t, v.ValidateFeed(ctx, feed1))

		// Once the contract responds, the same address passes.
		probes.badFeeds[feed1] = false
		assert.NoError(t, v.ValidateFeed(ctx, feed1))
		assert.Equal(t, 2, probes.feedCalls)
	})

	t.Run("CacheDisabledAlwaysProbes", func(t *testing.T) {
		probes := newProbeFake()
		v := NewValidator(probes, probes, false)

		require.NoError(t, v.ValidateToken(ctx, token1))
		require.NoError(t, v.ValidateToken(ctx, token1))
		assert.Equal(t, 2, probes.tokenCalls)
	})
}
