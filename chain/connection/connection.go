// Package connection binds a signing authority to a live EVM connection.
//
// Two signing authorities exist: a Keyed connection constructed from a raw
// private key against a fixed RPC endpoint, and a Wallet connection that
// delegates signing to an external wallet endpoint capable of interactive
// approval and of the wallet_switchEthereumChain / wallet_addEthereumChain
// RPCs. Exactly one is bound per manager.
package connection

import (
	"context"
	"errors"
	"math/big"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"

	"github.com/hashmint/contract-manager/chain"
)

// OnchainClient is the client surface the manager requires from a connection.
// For EVM we reuse the geth binding interfaces to abstract chain clients.
type OnchainClient interface {
	bind.ContractBackend
	bind.DeployBackend

	BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error)
	NonceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (uint64, error)
}

// Connection is a signing authority bound to a live chain connection.
type Connection interface {
	// Client returns the onchain client for reads, calls and broadcasts.
	Client() OnchainClient
	// From returns the signer address.
	From() common.Address
	// ChainID reports the chain id of the live connection. Implementations
	// must query eth_chainId directly rather than serve a cached network
	// record; cached records can produce spurious network-changed failures
	// in long-lived sessions.
	ChainID(ctx context.Context) (uint64, error)
	// Transactor returns bind transact options carrying the given context.
	Transactor(ctx context.Context) (*bind.TransactOpts, error)
}

// ChainSwitcher is implemented by connections that can move their live chain
// selection, i.e. delegated wallet connections. Fixed-endpoint connections do
// not implement it.
type ChainSwitcher interface {
	// SwitchChain asks the wallet to select the given chain.
	SwitchChain(ctx context.Context, chainID uint64) error
	// AddChain registers the chain with the wallet, carrying the full
	// endpoint metadata, so that a subsequent SwitchChain can succeed.
	AddChain(ctx context.Context, endpoint chain.Endpoint) error
}

// unknownChainErrCode is the well-known EIP-3326 error a wallet returns from
// wallet_switchEthereumChain when the chain has not been added yet.
const unknownChainErrCode = 4902

// IsUnknownChain reports whether err is the wallet's unrecognized-chain
// signal, which callers recover from by issuing an add-chain request.
func IsUnknownChain(err error) bool {
	var rerr rpc.Error

	return errors.As(err, &rerr) && rerr.ErrorCode() == unknownChainErrCode
}

const (
	chainIDQueryAttempts = 2 // one retry on a transient failure
	chainIDQueryDelay    = 250 * time.Millisecond
)

// queryChainID issues a direct eth_chainId query, retrying once on transient
// failures before giving up.
func queryChainID(ctx context.Context, client *rpc.Client) (uint64, error) {
	var result hexutil.Big
	err := retry.Do(
		func() error {
			return client.CallContext(ctx, &result, "eth_chainId")
		},
		retry.Context(ctx),
		retry.Attempts(chainIDQueryAttempts),
		retry.Delay(chainIDQueryDelay),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return 0, err
	}

	return result.ToInt().Uint64(), nil
}
