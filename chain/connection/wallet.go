package connection

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/accounts/external"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"

	"github.com/hashmint/contract-manager/chain"
	"github.com/hashmint/contract-manager/pkg/logger"
)

var (
	_ Connection    = (*Wallet)(nil)
	_ ChainSwitcher = (*Wallet)(nil)
)

// Wallet is a delegated-interactive connection. Transactions are signed by an
// external wallet endpoint (clef-style account API) that may block on human
// approval, and the live chain selection is managed wallet-side through the
// wallet_switchEthereumChain and wallet_addEthereumChain RPCs.
type Wallet struct {
	lggr    logger.Logger
	rpc     *rpc.Client
	eth     *ethclient.Client
	signer  *external.ExternalSigner
	account accounts.Account
}

// NewWallet dials the wallet endpoint and binds its first exposed account as
// the signing authority.
func NewWallet(ctx context.Context, lggr logger.Logger, endpointURL string) (*Wallet, error) {
	rpcClient, err := rpc.DialContext(ctx, endpointURL)
	if err != nil {
		return nil, fmt.Errorf("failed to dial wallet endpoint: %w", err)
	}

	signer, err := external.NewExternalSigner(endpointURL)
	if err != nil {
		rpcClient.Close()

		return nil, fmt.Errorf("failed to attach external signer: %w", err)
	}

	accs := signer.Accounts()
	if len(accs) == 0 {
		rpcClient.Close()

		return nil, errors.New("wallet endpoint exposes no accounts")
	}

	return &Wallet{
		lggr:    lggr,
		rpc:     rpcClient,
		eth:     ethclient.NewClient(rpcClient),
		signer:  signer,
		account: accs[0],
	}, nil
}

func (w *Wallet) Client() OnchainClient { return w.eth }

func (w *Wallet) From() common.Address { return w.account.Address }

// ChainID queries eth_chainId directly on the wallet endpoint.
func (w *Wallet) ChainID(ctx context.Context) (uint64, error) {
	return queryChainID(ctx, w.rpc)
}

// Transactor returns transact options that route signing through the wallet.
// The wallet may block until the user approves or rejects the transaction.
func (w *Wallet) Transactor(ctx context.Context) (*bind.TransactOpts, error) {
	opts := bind.NewClefTransactor(w.signer, w.account)
	opts.Context = ctx

	return opts, nil
}

// switchChainParams is the single object parameter of
// wallet_switchEthereumChain (EIP-3326).
type switchChainParams struct {
	ChainID string `json:"chainId"`
}

// addChainParams is the single object parameter of wallet_addEthereumChain
// (EIP-3085).
type addChainParams struct {
	ChainID           string               `json:"chainId"`
	ChainName         string               `json:"chainName"`
	RPCURLs           []string             `json:"rpcUrls"`
	NativeCurrency    chain.NativeCurrency `json:"nativeCurrency"`
	BlockExplorerURLs []string             `json:"blockExplorerUrls,omitempty"`
}

// SwitchChain asks the wallet to select the given chain. The caller is
// expected to recover from an IsUnknownChain error by calling AddChain.
func (w *Wallet) SwitchChain(ctx context.Context, chainID uint64) error {
	w.lggr.Debugw("requesting wallet chain switch", "chainID", chainID)

	return w.rpc.CallContext(ctx, nil, "wallet_switchEthereumChain", switchChainParams{
		ChainID: chain.Endpoint{ChainID: chainID}.HexChainID(),
	})
}

// AddChain registers the chain with the wallet, carrying the full endpoint
// metadata so that a subsequent SwitchChain can succeed.
func (w *Wallet) AddChain(ctx context.Context, endpoint chain.Endpoint) error {
	if err := endpoint.Validate(); err != nil {
		return fmt.Errorf("invalid endpoint: %w", err)
	}

	w.lggr.Debugw("requesting wallet chain add", "chainID", endpoint.ChainID, "name", endpoint.Name())

	params := addChainParams{
		ChainID:        endpoint.HexChainID(),
		ChainName:      endpoint.Name(),
		RPCURLs:        []string{endpoint.RPCURL},
		NativeCurrency: endpoint.NativeCurrency,
	}
	if endpoint.BlockExplorerURL != "" {
		params.BlockExplorerURLs = []string{endpoint.BlockExplorerURL}
	}

	return w.rpc.CallContext(ctx, nil, "wallet_addEthereumChain", params)
}

// Close releases the underlying RPC connection.
func (w *Wallet) Close() {
	w.rpc.Close()
}
