package connection

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hashmint/contract-manager/chain"
	"github.com/hashmint/contract-manager/pkg/logger"
)

const testWalletAccount = "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed"

// walletHandler serves the clef-style account API plus the wallet chain
// management RPCs on top of the minimal node surface.
type walletHandler struct {
	mu          sync.Mutex
	chainIDHex  string
	knownChains map[string]bool
	addParams   []json.RawMessage
}

func newWalletHandler(chainIDHex string) *walletHandler {
	return &walletHandler{
		chainIDHex:  chainIDHex,
		knownChains: map[string]bool{chainIDHex: true},
	}
}

func (h *walletHandler) handle(method string, params []json.RawMessage) (any, *rpcError) {
	h.mu.Lock()
	defer h.mu.Unlock()

	switch method {
	case "account_version":
		return "6.1.0", nil
	case "account_list":
		return []string{testWalletAccount}, nil
	case "eth_blockNumber":
		return "0x10", nil
	case "eth_chainId":
		return h.chainIDHex, nil
	case "wallet_switchEthereumChain":
		var p struct {
			ChainID string `json:"chainId"`
		}
		if err := json.Unmarshal(params[0], &p); err != nil {
			return nil, &rpcError{Code: -32602, Message: "invalid params"}
		}
		if !h.knownChains[p.ChainID] {
			return nil, &rpcError{Code: 4902, Message: "Unrecognized chain ID"}
		}
		h.chainIDHex = p.ChainID

		return nil, nil
	case "wallet_addEthereumChain":
		var p struct {
			ChainID string `json:"chainId"`
		}
		if err := json.Unmarshal(params[0], &p); err != nil {
			return nil, &rpcError{Code: -32602, Message: "invalid params"}
		}
		h.addParams = append(h.addParams, params[0])
		h.knownChains[p.ChainID] = true

		return nil, nil
	default:
		return nil, &rpcError{Code: -32601, Message: "method not found"}
	}
}

func Test_NewWallet(t *testing.T) {
	t.Parallel()

	handler := newWalletHandler("0x1")
	srv, _ := newRPCServer(t, handler.handle)

	w, err := NewWallet(t.Context(), logger.Test(t), srv.URL)
	require.NoError(t, err)
	defer w.Close()

	assert.Equal(t, testWalletAccount, w.From().Hex())

	id, err := w.ChainID(t.Context())
	require.NoError(t, err)
	assert.Equal(t, uint64(1), id)
}

func Test_Wallet_SwitchChain_Unknown(t *testing.T) {
	t.Parallel()

	handler := newWalletHandler("0x1")
	srv, _ := newRPCServer(t, handler.handle)

	w, err := NewWallet(t.Context(), logger.Test(t), srv.URL)
	require.NoError(t, err)
	defer w.Close()

	// The wallet has never seen chain 137; the switch must fail with the
	// well-known unrecognized-chain signal.
	err = w.SwitchChain(t.Context(), 137)
	require.Error(t, err)
	assert.True(t, IsUnknownChain(err))

	// After an add-chain request carrying the endpoint metadata, the switch
	// succeeds and the wallet reports the new chain.
	endpoint := chain.Endpoint{
		ChainID:          137,
		DisplayName:      "Polygon Mainnet",
		RPCURL:           "https://polygon-rpc.com",
		NativeCurrency:   chain.NativeCurrency{Name: "POL", Symbol: "POL", Decimals: 18},
		BlockExplorerURL: "https://polygonscan.com",
	}
	require.NoError(t, w.AddChain(t.Context(), endpoint))
	require.NoError(t, w.SwitchChain(t.Context(), 137))

	id, err := w.ChainID(t.Context())
	require.NoError(t, err)
	assert.Equal(t, uint64(137), id)

	// The add-chain request must carry the full endpoint metadata.
	require.Len(t, handler.addParams, 1)
	var added struct {
		ChainID           string               `json:"chainId"`
		ChainName         string               `json:"chainName"`
		RPCURLs           []string             `json:"rpcUrls"`
		NativeCurrency    chain.NativeCurrency `json:"nativeCurrency"`
		BlockExplorerURLs []string             `json:"blockExplorerUrls"`
	}
	require.NoError(t, json.Unmarshal(handler.addParams[0], &added))
	assert.Equal(t, "0x89", added.ChainID)
	assert.Equal(t, "Polygon Mainnet", added.ChainName)
	assert.Equal(t, []string{"https://polygon-rpc.com"}, added.RPCURLs)
	assert.Equal(t, uint8(18), added.NativeCurrency.Decimals)
	assert.Equal(t, []string{"https://polygonscan.com"}, added.BlockExplorerURLs)
}

func Test_IsUnknownChain(t *testing.T) {
	t.Parallel()

	assert.False(t, IsUnknownChain(nil))
	assert.False(t, IsUnknownChain(errors.New("plain failure")))
}
