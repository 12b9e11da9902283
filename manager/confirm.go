package manager

import (
	"context"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/core/types"
)

// confirmPollInterval is the receipt polling cadence. Public chains include
// within a few block times; anything faster just burns RPC quota.
const confirmPollInterval = time.Second

// transact ensures the network, submits a state-changing call on the handle
// and waits for its receipt. The context bounds waiting only: once the
// transaction is broadcast it cannot be recalled, and cancelling here leaves
// it in the mempool.
func (m *Manager) transact(ctx context.Context, handle *bind.BoundContract, method string, args ...any) (*types.Receipt, error) {
	if err := EnsureNetwork(ctx, m.lggr, m.conn, m.network); err != nil {
		return nil, err
	}

	opts, err := m.conn.Transactor(ctx)
	if err != nil {
		return nil, Classify(err, CodeTransactionError, "failed to prepare transactor", nil)
	}

	tx, err := handle.Transact(opts, method, args...)
	if err != nil {
		return nil, Classify(err, CodeTransactionError,
			fmt.Sprintf("failed to submit %s transaction", method), nil)
	}

	m.lggr.Debugw("transaction submitted", "method", method, "txHash", tx.Hash().Hex())

	return m.confirm(ctx, tx)
}

// call performs a read against the active child contract. Reads never touch
// network reconciliation; a read against the wrong chain fails on its own.
func (m *Manager) call(ctx context.Context, out *[]any, method string, args ...any) error {
	handle, err := m.activeHandle(false)
	if err != nil {
		return err
	}

	if err := handle.Call(&bind.CallOpts{Context: ctx}, out, method, args...); err != nil {
		return Classify(err, CodeContractCallFailed,
			fmt.Sprintf("%s call failed", method), nil)
	}
	if len(*out) == 0 {
		return NewError(CodeContractCallFailed,
			fmt.Sprintf("%s call returned no values", method), nil)
	}

	return nil
}

// confirm waits for the transaction to be included and checks its status. A
// reverted transaction is replayed as a call at its own block to recover the
// revert reason the receipt does not carry.
func (m *Manager) confirm(ctx context.Context, tx *types.Transaction) (*types.Receipt, error) {
	receipt, err := m.waitMined(ctx, tx)
	if err != nil {
		return nil, Classify(err, CodeTransactionError,
			fmt.Sprintf("failed waiting for transaction %s", tx.Hash().Hex()),
			map[string]any{"txHash": tx.Hash().Hex()})
	}

	if receipt.Status == types.ReceiptStatusFailed {
		if reason := m.replayForRevert(ctx, tx, receipt); reason != nil {
			return nil, Classify(reason, CodeContractCallFailed,
				fmt.Sprintf("transaction %s reverted", tx.Hash().Hex()),
				map[string]any{"txHash": tx.Hash().Hex(), "blockNumber": receipt.BlockNumber.Uint64()})
		}

		return nil, NewError(CodeContractCallFailed,
			fmt.Sprintf("transaction %s reverted without a reason", tx.Hash().Hex()),
			map[string]any{"txHash": tx.Hash().Hex(), "blockNumber": receipt.BlockNumber.Uint64()})
	}

	return receipt, nil
}

// waitMined polls for the transaction receipt at a fixed interval until the
// context expires.
func (m *Manager) waitMined(ctx context.Context, tx *types.Transaction) (*types.Receipt, error) {
	ticker := time.NewTicker(confirmPollInterval)
	defer ticker.Stop()

	for {
		receipt, err := m.conn.Client().TransactionReceipt(ctx, tx.Hash())
		if err == nil {
			return receipt, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

// replayForRevert re-executes the failed transaction as a call pinned to its
// inclusion block. Nodes attach the revert reason to the call error; a nil
// return means the replay unexpectedly succeeded or the node kept quiet.
func (m *Manager) replayForRevert(ctx context.Context, tx *types.Transaction, receipt *types.Receipt) error {
	msg := ethereum.CallMsg{
		From:     m.conn.From(),
		To:       tx.To(),
		Gas:      tx.Gas(),
		GasPrice: tx.GasPrice(),
		Value:    tx.Value(),
		Data:     tx.Data(),
	}

	_, err := m.conn.Client().CallContract(ctx, msg, receipt.BlockNumber)

	return err
}
