// Package ethereum provides the concrete on-chain capability clients the
// registry consumes: Chainlink-shaped price feeds, ERC-20 tokens, and pool
// deployer contracts. The registry itself only sees the capability
// interfaces; everything RPC-specific lives here.
package ethereum

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// Minimal hand-held ABIs for the three capability surfaces. Only the
// methods the registry probes or relays are bound.
const (
	aggregatorABIJSON = `[
		{"inputs":[],"name":"latestRoundData","outputs":[
			{"internalType":"uint80","name":"roundId","type":"uint80"},
			{"internalType":"int256","name":"answer","type":"int256"},
			{"internalType":"uint256","name":"startedAt","type":"uint256"},
			{"internalType":"uint256","name":"updatedAt","type":"uint256"},
			{"internalType":"uint80","name":"answeredInRound","type":"uint80"}],
		"stateMutability":"view","type":"function"}
	]`

	erc20ABIJSON = `[
		{"inputs":[],"name":"totalSupply","outputs":[
			{"internalType":"uint256","name":"","type":"uint256"}],
		"stateMutability":"view","type":"function"}
	]`

	deployerABIJSON = `[
		{"inputs":[],"name":"quoteToken","outputs":[
			{"internalType":"address","name":"","type":"address"}],
		"stateMutability":"view","type":"function"},
		{"inputs":[{"internalType":"address","name":"baseOracle","type":"address"}],
		"name":"adminApproveBaseOracle","outputs":[],
		"stateMutability":"nonpayable","type":"function"},
		{"inputs":[{"internalType":"address","name":"baseOracle","type":"address"}],
		"name":"adminDisapproveBaseOracle","outputs":[],
		"stateMutability":"nonpayable","type":"function"},
		{"inputs":[{"internalType":"address","name":"newOwner","type":"address"}],
		"name":"transferOwnership","outputs":[],
		"stateMutability":"nonpayable","type":"function"}
	]`
)

var (
	aggregatorABI = mustParseABI(aggregatorABIJSON)
	erc20ABI      = mustParseABI(erc20ABIJSON)
	deployerABI   = mustParseABI(deployerABIJSON)
)

func mustParseABI(s string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(s))
	if err != nil {
		panic(err)
	}
	return parsed
}
