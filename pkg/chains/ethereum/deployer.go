package ethereum

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// Backend is the full backend the deployer connector needs: reads,
// transaction submission, and receipt lookup. *ethclient.Client satisfies
// it.
type Backend interface {
	bind.ContractBackend
	bind.DeployBackend
}

// DeployerConnector implements registry.DeployerConnector. Administrative
// notifications are submitted as transactions signed with the configured
// auth (the registry account is expected to own the deployer contracts
// downstream, so its calls are authorized there).
type DeployerConnector struct {
	backend Backend
	auth    *bind.TransactOpts
}

// NewDeployerConnector creates a connector. auth may be nil for read-only
// use; administrative and relay calls then fail.
func NewDeployerConnector(backend Backend, auth *bind.TransactOpts) *DeployerConnector {
	return &DeployerConnector{backend: backend, auth: auth}
}

// QuoteToken returns deployer's self-reported quote token.
func (c *DeployerConnector) QuoteToken(ctx context.Context, deployer common.Address) (common.Address, error) {
	bound := bind.NewBoundContract(deployer, deployerABI, c.backend, nil, nil)

	var out []interface{}
	if err := bound.Call(&bind.CallOpts{Context: ctx}, &out, "quoteToken"); err != nil {
		return common.Address{}, fmt.Errorf("quoteToken %s: %w", deployer.Hex(), err)
	}
	quote, ok := out[0].(common.Address)
	if !ok {
		return common.Address{}, fmt.Errorf("quoteToken %s: bad output type %T", deployer.Hex(), out[0])
	}
	return quote, nil
}

// AdminApproveBaseOracle notifies deployer of an approved base oracle.
func (c *DeployerConnector) AdminApproveBaseOracle(ctx context.Context, deployer, feed common.Address) error {
	data, err := deployerABI.Pack("adminApproveBaseOracle", feed)
	if err != nil {
		return err
	}
	_, err = c.Call(ctx, deployer, data)
	return err
}

// AdminDisapproveBaseOracle notifies deployer of a removed base oracle.
func (c *DeployerConnector) AdminDisapproveBaseOracle(ctx context.Context, deployer, feed common.Address) error {
	data, err := deployerABI.Pack("adminDisapproveBaseOracle", feed)
	if err != nil {
		return err
	}
	_, err = c.Call(ctx, deployer, data)
	return err
}

// TransferDeployerOwnership hands a deployer contract to newOwner. Packs
// the payload for use with the registry's relay, returning the calldata.
func TransferDeployerOwnership(newOwner common.Address) ([]byte, error) {
	return deployerABI.Pack("transferOwnership", newOwner)
}

// Call forwards raw calldata to deployer as a signed transaction and waits
// for it to be mined.
//
// The payload is simulated first; a revert surfaces with the node's
// original message, which the registry propagates verbatim to its caller.
// The simulation's return data is the method result handed back on
// success.
func (c *DeployerConnector) Call(ctx context.Context, deployer common.Address, data []byte) ([]byte, error) {
	if c.auth == nil {
		return nil, fmt.Errorf("connector is read-only: no transact auth configured")
	}

	msg := ethereum.CallMsg{From: c.auth.From, To: &deployer, Data: data}
	result, err := c.backend.CallContract(ctx, msg, nil)
	if err != nil {
		return nil, err
	}

	bound := bind.NewBoundContract(deployer, deployerABI, c.backend, c.backend, c.backend)
	opts := *c.auth
	opts.Context = ctx
	tx, err := bound.RawTransact(&opts, data)
	if err != nil {
		return nil, err
	}

	receipt, err := bind.WaitMined(ctx, c.backend, tx)
	if err != nil {
		return nil, fmt.Errorf("waiting for tx %s: %w", tx.Hash().Hex(), err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return nil, fmt.Errorf("tx %s reverted on chain", tx.Hash().Hex())
	}
	return result, nil
}
