package manager

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"github.com/hashmint/contract-manager/contracts"
)

// requireFamily guards family-specific operations. A manager only ever
// operates the family its policy names.
func (m *Manager) requireFamily(want contracts.Family) error {
	if m.policy.Family != want {
		return NewError(CodeInvalidParameter,
			fmt.Sprintf("operation requires the %s family but this manager operates %s", want, m.policy.Family),
			nil)
	}

	return nil
}

// Mint mints a token on the active NFT contract, locked to the given key
// hash. The emitted transfer event is verified best-effort: a verification
// failure is logged and the confirmed transaction hash is still returned,
// because the state change is already final on-chain.
func (m *Manager) Mint(ctx context.Context, to common.Address, keyHash common.Hash, tokenURI string) (common.Hash, error) {
	if err := m.requireFamily(contracts.FamilyNFT); err != nil {
		return common.Hash{}, err
	}
	if to == (common.Address{}) {
		return common.Hash{}, NewError(CodeInvalidAddress, "mint recipient must not be the zero address", nil)
	}

	handle, err := m.activeHandle(true)
	if err != nil {
		return common.Hash{}, err
	}

	receipt, err := m.transact(ctx, handle, "mint", to, keyHash, tokenURI)
	if err != nil {
		return common.Hash{}, err
	}

	if _, verr := m.verifier.VerifyMint(receipt, nil); verr != nil {
		m.lggr.Warnw("mint verification failed", "txHash", receipt.TxHash.Hex(), "err", verr)
	}

	return receipt.TxHash, nil
}

// TransferToken moves a token to a new holder, authorized by the key hash.
// Verification of the transfer event is best-effort.
func (m *Manager) TransferToken(ctx context.Context, to common.Address, tokenID *big.Int, keyHash common.Hash) (common.Hash, error) {
	if err := m.requireFamily(contracts.FamilyNFT); err != nil {
		return common.Hash{}, err
	}
	if to == (common.Address{}) {
		return common.Hash{}, NewError(CodeInvalidAddress, "transfer recipient must not be the zero address", nil)
	}
	if tokenID == nil {
		return common.Hash{}, NewError(CodeInvalidParameter, "token id is required", nil)
	}

	handle, err := m.activeHandle(true)
	if err != nil {
		return common.Hash{}, err
	}

	receipt, err := m.transact(ctx, handle, "transferByKey", to, tokenID, keyHash)
	if err != nil {
		return common.Hash{}, err
	}

	if _, verr := m.verifier.VerifyTransfer(receipt, nil, to, tokenID); verr != nil {
		m.lggr.Warnw("transfer verification failed", "txHash", receipt.TxHash.Hex(), "err", verr)
	}

	return receipt.TxHash, nil
}

// Destroy burns a token, authorized by the key hash. The receipt is checked
// twice, independently: once for the transfer-to-zero event and once for the
// dedicated destroyed event. Either check failing is a warning on its own;
// neither blocks the other or the returned hash.
func (m *Manager) Destroy(ctx context.Context, tokenID *big.Int, keyHash common.Hash) (common.Hash, error) {
	if err := m.requireFamily(contracts.FamilyNFT); err != nil {
		return common.Hash{}, err
	}
	if tokenID == nil {
		return common.Hash{}, NewError(CodeInvalidParameter, "token id is required", nil)
	}

	handle, err := m.activeHandle(true)
	if err != nil {
		return common.Hash{}, err
	}

	receipt, err := m.transact(ctx, handle, "destroy", tokenID, keyHash)
	if err != nil {
		return common.Hash{}, err
	}

	if _, verr := m.verifier.VerifyDestroyTransfer(receipt, tokenID); verr != nil {
		m.lggr.Warnw("destroy transfer verification failed", "txHash", receipt.TxHash.Hex(), "err", verr)
	}
	if _, verr := m.verifier.VerifyDestroyed(receipt, tokenID); verr != nil {
		m.lggr.Warnw("destroyed event verification failed", "txHash", receipt.TxHash.Hex(), "err", verr)
	}

	return receipt.TxHash, nil
}

// SetBaseURI updates the active NFT contract's metadata base URI.
func (m *Manager) SetBaseURI(ctx context.Context, baseURI string) (common.Hash, error) {
	if err := m.requireFamily(contracts.FamilyNFT); err != nil {
		return common.Hash{}, err
	}
	if strings.TrimSpace(baseURI) == "" {
		return common.Hash{}, NewError(CodeInvalidParameter, "base URI must not be empty", nil)
	}

	handle, err := m.activeHandle(true)
	if err != nil {
		return common.Hash{}, err
	}

	receipt, err := m.transact(ctx, handle, "setBaseURI", baseURI)
	if err != nil {
		return common.Hash{}, err
	}

	return receipt.TxHash, nil
}

// TokenURI reads the metadata URI of a token.
func (m *Manager) TokenURI(ctx context.Context, tokenID *big.Int) (string, error) {
	if err := m.requireFamily(contracts.FamilyNFT); err != nil {
		return "", err
	}
	if tokenID == nil {
		return "", NewError(CodeInvalidParameter, "token id is required", nil)
	}

	return m.callString(ctx, "tokenURI", tokenID)
}

// TotalSupply reads the number of tokens minted on the active NFT contract.
func (m *Manager) TotalSupply(ctx context.Context) (*big.Int, error) {
	if err := m.requireFamily(contracts.FamilyNFT); err != nil {
		return nil, err
	}

	var out []any
	if err := m.call(ctx, &out, "totalSupply"); err != nil {
		return nil, err
	}

	supply, ok := out[0].(*big.Int)
	if !ok {
		return nil, NewError(CodeContractCallFailed, "totalSupply returned a non-integer value", nil)
	}

	return supply, nil
}
