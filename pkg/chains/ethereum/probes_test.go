package ethereum

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	feedAddr     = common.HexToAddress("0x00000000000000000000000000000000000000F1")
	tokenAddr    = common.HexToAddress("0x0000000000000000000000000000000000000011")
	deployerAddr = common.HexToAddress("0x00000000000000000000000000000000000000D1")
	quoteAddr    = common.HexToAddress("0x0000000000000000000000000000000000000001")
	senderAddr   = common.HexToAddress("0x00000000000000000000000000000000000000A1")
)

// fakeBackend satisfies Backend with overridable call behavior. Defaults:
// every address has code, transactions mine immediately and succeed.
type fakeBackend struct {
	callContract func(ctx context.Context, call ethereum.CallMsg) ([]byte, error)
	codeAt       func(ctx context.Context, account common.Address) ([]byte, error)

	sent          []*types.Transaction
	receiptStatus uint64
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{receiptStatus: types.ReceiptStatusSuccessful}
}

func (b *fakeBackend) CodeAt(ctx context.Context, account common.Address, _ *big.Int) ([]byte, error) {
	if b.codeAt != nil {
		return b.codeAt(ctx, account)
	}
	return []byte{0x01}, nil
}

func (b *fakeBackend) CallContract(ctx context.Context, call ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	if b.callContract != nil {
		return b.callContract(ctx, call)
	}
	return nil, errors.New("no call handler configured")
}

func (b *fakeBackend) HeaderByNumber(ctx context.Context, _ *big.Int) (*types.Header, error) {
	return &types.Header{Number: big.NewInt(1)}, nil
}

func (b *fakeBackend) PendingCodeAt(ctx context.Context, account common.Address) ([]byte, error) {
	return []byte{0x01}, nil
}

func (b *fakeBackend) PendingNonceAt(ctx context.Context, account common.Address) (uint64, error) {
	return 0, nil
}

func (b *fakeBackend) SuggestGasPrice(ctx context.Context) (*big.Int, error) {
	return big.NewInt(1), nil
}

func (b *fakeBackend) SuggestGasTipCap(ctx context.Context) (*big.Int, error) {
	return big.NewInt(1), nil
}

func (b *fakeBackend) EstimateGas(ctx context.Context, call ethereum.CallMsg) (uint64, error) {
	return 100000, nil
}

func (b *fakeBackend) SendTransaction(ctx context.Context, tx *types.Transaction) error {
	b.sent = append(b.sent, tx)
	return nil
}

func (b *fakeBackend) FilterLogs(ctx context.Context, q ethereum.FilterQuery) ([]types.Log, error) {
	return nil, nil
}

func (b *fakeBackend) SubscribeFilterLogs(ctx context.Context, q ethereum.FilterQuery, ch chan<- types.Log) (ethereum.Subscription, error) {
	return nil, errors.New("not supported")
}

func (b *fakeBackend) TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	return &types.Receipt{Status: b.receiptStatus, TxHash: txHash}, nil
}

func mustPackOutputs(t *testing.T, method string, vals ...interface{}) []byte {
	t.Helper()
	var m = deployerABI.Methods
	switch method {
	case "latestRoundData":
		m = aggregatorABI.Methods
	case "totalSupply":
		m = erc20ABI.Methods
	}
	out, err := m[method].Outputs.Pack(vals...)
	require.NoError(t, err)
	return out
}

func TestFeedClientLatestRoundData(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		backend := newFakeBackend()
		backend.callContract = func(ctx context.Context, call ethereum.CallMsg) ([]byte, error) {
			require.NotNil(t, call.To)
			assert.Equal(t, feedAddr, *call.To)
			return mustPackOutputs(t, "latestRoundData",
				big.NewInt(7), big.NewInt(200000000000), big.NewInt(1700000000),
				big.NewInt(1700000100), big.NewInt(7)), nil
		}

		data, err := NewFeedClient(backend).LatestRoundData(ctx, feedAddr)
		require.NoError(t, err)
		assert.Equal(t, big.NewInt(7), data.RoundID)
		assert.Equal(t, big.NewInt(200000000000), data.Answer)
		assert.Equal(t, big.NewInt(1700000100), data.UpdatedAt)
	})

	t.Run("Revert", func(t *testing.T) {
		backend := newFakeBackend()
		backend.callContract = func(ctx context.Context, call ethereum.CallMsg) ([]byte, error) {
			return nil, errors.New("execution reverted")
		}

		_, err := NewFeedClient(backend).LatestRoundData(ctx, feedAddr)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "execution reverted")
	})

	t.Run("NoCodeAtAddress", func(t *testing.T) {
		backend := newFakeBackend()
		backend.callContract = func(ctx context.Context, call ethereum.CallMsg) ([]byte, error) {
			return nil, nil
		}
		backend.codeAt = func(ctx context.Context, account common.Address) ([]byte, error) {
			return nil, nil
		}

		_, err := NewFeedClient(backend).LatestRoundData(ctx, feedAddr)
		assert.Error(t, err, "an address with no code is not a feed")
	})
}

func TestTokenClientTotalSupply(t *testing.T) {
	backend := newFakeBackend()
	backend.callContract = func(ctx context.Context, call ethereum.CallMsg) ([]byte, error) {
		require.NotNil(t, call.To)
		assert.Equal(t, tokenAddr, *call.To)
		return mustPackOutputs(t, "totalSupply", big.NewInt(1000000)), nil
	}

	supply, err := NewTokenClient(backend).TotalSupply(context.Background(), tokenAddr)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(1000000), supply)
}

func TestDeployerConnectorQuoteToken(t *testing.T) {
	backend := newFakeBackend()
	backend.callContract = func(ctx context.Context, call ethereum.CallMsg) ([]byte, error) {
		require.NotNil(t, call.To)
		assert.Equal(t, deployerAddr, *call.To)
		return mustPackOutputs(t, "quoteToken", quoteAddr), nil
	}

	quote, err := NewDeployerConnector(backend, nil).QuoteToken(context.Background(), deployerAddr)
	require.NoError(t, err)
	assert.Equal(t, quoteAddr, quote)
}
