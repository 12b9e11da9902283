// Package chain describes the EVM chain a manager binds to.
package chain

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
	chainsel "github.com/smartcontractkit/chain-selectors"
)

// NativeCurrency describes the fee currency of a chain. It is forwarded
// verbatim in wallet add-chain requests.
type NativeCurrency struct {
	Name     string `json:"name" toml:"name"`
	Symbol   string `json:"symbol" toml:"symbol"`
	Decimals uint8  `json:"decimals" toml:"decimals"`
}

// Endpoint identifies the chain a manager operates on. It is immutable once a
// manager is initialized: network reconciliation may move the live connection
// between chains, but it never rewrites this record.
type Endpoint struct {
	ChainID          uint64         `json:"chainId" toml:"chain_id"`
	DisplayName      string         `json:"displayName,omitempty" toml:"display_name,omitempty"`
	RPCURL           string         `json:"rpcUrl" toml:"rpc_url"`
	NativeCurrency   NativeCurrency `json:"nativeCurrency" toml:"native_currency"`
	BlockExplorerURL string         `json:"blockExplorerUrl,omitempty" toml:"block_explorer_url,omitempty"`
}

// Validate checks that the endpoint carries enough information to connect and
// to describe the chain to a wallet in an add-chain request.
func (e Endpoint) Validate() error {
	if e.ChainID == 0 {
		return errors.New("chain id is required")
	}
	if e.RPCURL == "" {
		return errors.New("rpc url is required")
	}

	return nil
}

// Name returns the display name of the chain, falling back to the canonical
// chain-selectors name for known chain ids and to "chain-<id>" otherwise.
func (e Endpoint) Name() string {
	if e.DisplayName != "" {
		return e.DisplayName
	}
	if sel, err := chainsel.SelectorFromChainId(e.ChainID); err == nil {
		if c, exists := chainsel.ChainBySelector(sel); exists {
			return c.Name
		}
	}

	return fmt.Sprintf("chain-%d", e.ChainID)
}

// HexChainID returns the chain id in the 0x-prefixed hex form used by the
// wallet_switchEthereumChain and wallet_addEthereumChain RPCs.
func (e Endpoint) HexChainID() string {
	return hexutil.EncodeUint64(e.ChainID)
}
