package connection

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/hashmint/contract-manager/chain"
	"github.com/hashmint/contract-manager/pkg/logger"
)

var _ Connection = (*Keyed)(nil)

// Keyed is a fixed-endpoint connection constructed from a raw private key.
// It signs locally and broadcasts through a failover MultiClient. A Keyed
// connection is pinned to the chain it was dialed for and cannot switch
// chains; a network mismatch on it is unrecoverable.
type Keyed struct {
	lggr   logger.Logger
	client *MultiClient
	from   common.Address
	opts   *bind.TransactOpts
}

// NewKeyed dials the endpoint's RPC URL plus any backup URLs and binds the
// hex-encoded private key as the signing authority for the endpoint's chain.
func NewKeyed(lggr logger.Logger, endpoint chain.Endpoint, privKeyHex string, backupRPCURLs ...string) (*Keyed, error) {
	if err := endpoint.Validate(); err != nil {
		return nil, fmt.Errorf("invalid endpoint: %w", err)
	}

	privKey, err := crypto.HexToECDSA(privKeyHex)
	if err != nil {
		return nil, fmt.Errorf("failed to convert private key to ECDSA: %w", err)
	}

	opts, err := bind.NewKeyedTransactorWithChainID(privKey, new(big.Int).SetUint64(endpoint.ChainID))
	if err != nil {
		return nil, err
	}

	rpcs := []RPC{{Name: "primary", URL: endpoint.RPCURL}}
	for i, u := range backupRPCURLs {
		rpcs = append(rpcs, RPC{Name: fmt.Sprintf("backup-%d", i), URL: u})
	}

	client, err := NewMultiClient(lggr, endpoint.Name(), rpcs)
	if err != nil {
		return nil, err
	}

	return &Keyed{
		lggr:   lggr,
		client: client,
		from:   crypto.PubkeyToAddress(privKey.PublicKey),
		opts:   opts,
	}, nil
}

func (k *Keyed) Client() OnchainClient { return k.client }

func (k *Keyed) From() common.Address { return k.from }

// ChainID queries eth_chainId directly on the primary endpoint.
func (k *Keyed) ChainID(ctx context.Context) (uint64, error) {
	return queryChainID(ctx, k.client.RPCClient())
}

// Transactor returns a copy of the transact options carrying ctx, so that
// concurrent callers do not share mutable options.
func (k *Keyed) Transactor(ctx context.Context) (*bind.TransactOpts, error) {
	opts := *k.opts
	opts.Context = ctx

	return &opts, nil
}
