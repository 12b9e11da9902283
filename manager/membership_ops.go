package manager

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/hashmint/contract-manager/contracts"
)

// MintMembership mints a membership token for the given holder, locked to
// the key hash. Verification of the emitted transfer event is best-effort.
func (m *Manager) MintMembership(ctx context.Context, to common.Address, keyHash common.Hash) (common.Hash, error) {
	if err := m.requireFamily(contracts.FamilyMembership); err != nil {
		return common.Hash{}, err
	}
	if to == (common.Address{}) {
		return common.Hash{}, NewError(CodeInvalidAddress, "mint recipient must not be the zero address", nil)
	}

	handle, err := m.activeHandle(true)
	if err != nil {
		return common.Hash{}, err
	}

	receipt, err := m.transact(ctx, handle, "mint", to, keyHash)
	if err != nil {
		return common.Hash{}, err
	}

	if _, verr := m.verifier.VerifyMint(receipt, nil); verr != nil {
		m.lggr.Warnw("membership mint verification failed", "txHash", receipt.TxHash.Hex(), "err", verr)
	}

	return receipt.TxHash, nil
}

// CreateSnapshot records a point-in-time member set on the active membership
// contract and returns the new snapshot id. Unlike the token operations this
// is strict: the snapshot id only exists in the emitted event, so a receipt
// without a decodable event is a failure, not a warning.
func (m *Manager) CreateSnapshot(ctx context.Context) (*big.Int, common.Hash, error) {
	if err := m.requireFamily(contracts.FamilyMembership); err != nil {
		return nil, common.Hash{}, err
	}

	handle, err := m.activeHandle(true)
	if err != nil {
		return nil, common.Hash{}, err
	}

	receipt, err := m.transact(ctx, handle, "createSnapshot")
	if err != nil {
		return nil, common.Hash{}, err
	}

	id, err := m.verifier.SnapshotID(receipt)
	if err != nil {
		return nil, receipt.TxHash, err
	}

	m.lggr.Infow("snapshot created", "snapshotId", id.String(), "txHash", receipt.TxHash.Hex())

	return id, receipt.TxHash, nil
}

// SnapshotMemberCount reads the number of members captured in a snapshot.
func (m *Manager) SnapshotMemberCount(ctx context.Context, snapshotID *big.Int) (*big.Int, error) {
	if err := m.requireFamily(contracts.FamilyMembership); err != nil {
		return nil, err
	}
	if snapshotID == nil {
		return nil, NewError(CodeInvalidParameter, "snapshot id is required", nil)
	}

	var out []any
	if err := m.call(ctx, &out, "snapshotMemberCount", snapshotID); err != nil {
		return nil, err
	}

	count, ok := out[0].(*big.Int)
	if !ok {
		return nil, NewError(CodeContractCallFailed, "snapshotMemberCount returned a non-integer value", nil)
	}

	return count, nil
}

// SnapshotMembers reads the member addresses captured in a snapshot.
func (m *Manager) SnapshotMembers(ctx context.Context, snapshotID *big.Int) ([]common.Address, error) {
	if err := m.requireFamily(contracts.FamilyMembership); err != nil {
		return nil, err
	}
	if snapshotID == nil {
		return nil, NewError(CodeInvalidParameter, "snapshot id is required", nil)
	}

	var out []any
	if err := m.call(ctx, &out, "snapshotMembers", snapshotID); err != nil {
		return nil, err
	}

	members, ok := out[0].([]common.Address)
	if !ok {
		return nil, NewError(CodeContractCallFailed, "snapshotMembers returned a non-address list", nil)
	}

	return members, nil
}
