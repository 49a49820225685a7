package ethereum

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testAuth returns transact opts with everything pinned so the fake
// backend is never consulted for nonce, gas, or fees.
func testAuth() *bind.TransactOpts {
	return &bind.TransactOpts{
		From:     senderAddr,
		Nonce:    big.NewInt(1),
		GasPrice: big.NewInt(1),
		GasLimit: 100000,
		Signer: func(addr common.Address, tx *types.Transaction) (*types.Transaction, error) {
			return tx, nil
		},
	}
}

func TestDeployerConnectorCall(t *testing.T) {
	ctx := context.Background()
	payload, err := deployerABI.Pack("adminApproveBaseOracle", feedAddr)
	require.NoError(t, err)

	t.Run("ReadOnlyConnectorRefuses", func(t *testing.T) {
		backend := newFakeBackend()
		_, err := NewDeployerConnector(backend, nil).Call(ctx, deployerAddr, payload)
		require.Error(t, err)
		assert.Empty(t, backend.sent)
	})

	t.Run("Success_SimulatesThenTransacts", func(t *testing.T) {
		backend := newFakeBackend()
		backend.callContract = func(ctx context.Context, call ethereum.CallMsg) ([]byte, error) {
			assert.Equal(t, senderAddr, call.From)
			require.NotNil(t, call.To)
			assert.Equal(t, deployerAddr, *call.To)
			assert.Equal(t, payload, call.Data)
			return []byte{0xbe, 0xef}, nil
		}

		result, err := NewDeployerConnector(backend, testAuth()).Call(ctx, deployerAddr, payload)
		require.NoError(t, err)
		assert.Equal(t, []byte{0xbe, 0xef}, result, "simulation output is the call result")

		require.Len(t, backend.sent, 1)
		tx := backend.sent[0]
		require.NotNil(t, tx.To())
		assert.Equal(t, deployerAddr, *tx.To())
		assert.Equal(t, payload, tx.Data(), "calldata must reach the chain unmodified")
	})

	t.Run("SimulationRevertSurfacesVerbatim", func(t *testing.T) {
		backend := newFakeBackend()
		backend.callContract = func(ctx context.Context, call ethereum.CallMsg) ([]byte, error) {
			return nil, errors.New("execution reverted: Ownable: caller is not the owner")
		}

		_, err := NewDeployerConnector(backend, testAuth()).Call(ctx, deployerAddr, payload)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Ownable: caller is not the owner")
		assert.Empty(t, backend.sent, "a reverting payload must never be submitted")
	})

	t.Run("MinedRevertFails", func(t *testing.T) {
		backend := newFakeBackend()
		backend.receiptStatus = types.ReceiptStatusFailed
		backend.callContract = func(ctx context.Context, call ethereum.CallMsg) ([]byte, error) {
			return nil, nil
		}

		_, err := NewDeployerConnector(backend, testAuth()).Call(ctx, deployerAddr, payload)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "reverted")
	})
}

func TestAdminNotificationsPackCalldata(t *testing.T) {
	for _, tc := range []struct {
		name   string
		method string
		notify func(c *DeployerConnector) error
	}{
		{
			name:   "Approve",
			method: "adminApproveBaseOracle",
			notify: func(c *DeployerConnector) error {
				return c.AdminApproveBaseOracle(context.Background(), deployerAddr, feedAddr)
			},
		},
		{
			name:   "Disapprove",
			method: "adminDisapproveBaseOracle",
			notify: func(c *DeployerConnector) error {
				return c.AdminDisapproveBaseOracle(context.Background(), deployerAddr, feedAddr)
			},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			backend := newFakeBackend()
			backend.callContract = func(ctx context.Context, call ethereum.CallMsg) ([]byte, error) {
				return nil, nil
			}

			require.NoError(t, tc.notify(NewDeployerConnector(backend, testAuth())))

			want, err := deployerABI.Pack(tc.method, feedAddr)
			require.NoError(t, err)
			require.Len(t, backend.sent, 1)
			assert.Equal(t, want, backend.sent[0].Data())
		})
	}
}

func TestTransferDeployerOwnership(t *testing.T) {
	newOwner := common.HexToAddress("0x00000000000000000000000000000000000000A2")
	data, err := TransferDeployerOwnership(newOwner)
	require.NoError(t, err)

	want, err := deployerABI.Pack("transferOwnership", newOwner)
	require.NoError(t, err)
	assert.Equal(t, want, data)
}
