package manager

import (
	"context"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/hashmint/contract-manager/registry"
)

// DeploymentRecord describes one confirmed deployment. It is immutable once
// returned.
type DeploymentRecord struct {
	ContractAddress common.Address
	TxHash          common.Hash
	BlockNumber     uint64
}

// DeployFactory deploys the family's factory contract and records its
// address in the registry. The manager adopts the new factory as its live
// handle; deploying a second factory over an existing one is rejected.
func (m *Manager) DeployFactory(ctx context.Context) (*DeploymentRecord, error) {
	if m.factoryAddr != nil {
		return nil, NewError(CodeInvalidParameter,
			fmt.Sprintf("factory already deployed at %s", m.factoryAddr.Hex()),
			map[string]any{"factoryAddress": m.factoryAddr.Hex()})
	}
	if m.policy.FactoryBin == "" {
		return nil, NewError(CodeInvalidParameter,
			fmt.Sprintf("no factory bytecode for family %q", m.policy.Family), nil)
	}

	if err := EnsureNetwork(ctx, m.lggr, m.conn, m.network); err != nil {
		return nil, err
	}

	opts, err := m.conn.Transactor(ctx)
	if err != nil {
		return nil, Classify(err, CodeTransactionError, "failed to prepare transactor", nil)
	}

	computed, tx, _, err := bind.DeployContract(opts, *m.policy.FactoryABI,
		common.FromHex(m.policy.FactoryBin), m.conn.Client())
	if err != nil {
		return nil, Classify(err, CodeTransactionError, "failed to submit factory deployment", nil)
	}

	m.lggr.Infow("factory deployment submitted", "txHash", tx.Hash().Hex())

	receipt, err := m.confirm(ctx, tx)
	if err != nil {
		return nil, err
	}

	// The receipt's contract address is authoritative; the locally computed
	// address only covers nodes that omit it.
	addr := receipt.ContractAddress
	if addr == (common.Address{}) {
		addr = computed
	}

	m.adoptFactory(addr)

	if err := m.reg.SetFactoryAddress(ctx, registry.SetFactoryRequest{
		Signer:         m.conn.From(),
		FactoryAddress: addr,
		Family:         m.policy.Family,
		Version:        m.policy.Version,
	}); err != nil {
		return nil, Classify(err, CodeRegistryError,
			"factory deployed but the registry write-back failed",
			map[string]any{"txHash": receipt.TxHash.Hex(), "factoryAddress": addr.Hex()})
	}

	m.lggr.Infow("factory deployed", "factoryAddress", addr.Hex(), "blockNumber", receipt.BlockNumber.Uint64())

	return &DeploymentRecord{
		ContractAddress: addr,
		TxHash:          receipt.TxHash,
		BlockNumber:     receipt.BlockNumber.Uint64(),
	}, nil
}

// DeployContract deploys a child contract through the factory. The child
// address is read exclusively from the factory's deployment event: the first
// event in log order whose name and symbol match is authoritative, and no
// simulated pre-call is consulted. The new contract becomes the active one.
func (m *Manager) DeployContract(ctx context.Context, name, symbol string) (*DeploymentRecord, error) {
	name = strings.TrimSpace(name)
	symbol = strings.TrimSpace(symbol)
	if name == "" {
		return nil, NewError(CodeInvalidParameter, "contract name must not be empty", nil)
	}
	if symbol == "" {
		return nil, NewError(CodeInvalidParameter, "contract symbol must not be empty", nil)
	}
	if m.factory == nil {
		return nil, NewError(CodeFactoryNotDeployed,
			"no factory deployed: call DeployFactory first", nil)
	}

	receipt, err := m.transact(ctx, m.factory, m.policy.DeployMethod, name, symbol)
	if err != nil {
		return nil, err
	}

	addr, err := m.deployedAddress(receipt, name, symbol)
	if err != nil {
		return nil, err
	}

	m.addAddress(addr)
	m.active = &addr

	if err := m.reg.SetContractAddress(ctx, registry.SetContractRequest{
		Signer:          m.conn.From(),
		ContractAddress: addr,
		Family:          m.policy.Family,
		Version:         m.policy.Version,
	}); err != nil {
		return nil, Classify(err, CodeRegistryError,
			"contract deployed but the registry write-back failed",
			map[string]any{"txHash": receipt.TxHash.Hex(), "contractAddress": addr.Hex()})
	}

	m.lggr.Infow("contract deployed",
		"contractAddress", addr.Hex(), "name", name, "symbol", symbol,
		"blockNumber", receipt.BlockNumber.Uint64())

	return &DeploymentRecord{
		ContractAddress: addr,
		TxHash:          receipt.TxHash,
		BlockNumber:     receipt.BlockNumber.Uint64(),
	}, nil
}

// deployedAddress extracts the child address from the factory's deployment
// event. Logs are scanned in their original order; the first decodable event
// matching the requested name and symbol wins. Undecodable logs are skipped.
func (m *Manager) deployedAddress(receipt *types.Receipt, name, symbol string) (common.Address, error) {
	ev, ok := m.policy.FactoryABI.Events[m.policy.DeployEvent]
	if !ok {
		return common.Address{}, NewError(CodeEventParseError,
			fmt.Sprintf("factory interface has no event %q", m.policy.DeployEvent), nil)
	}

	for _, lg := range receipt.Logs {
		if len(lg.Topics) == 0 || lg.Topics[0] != ev.ID {
			continue
		}
		fields, err := unpackLog(m.policy.FactoryABI, ev, lg)
		if err != nil {
			continue
		}
		if n, _ := fields["name"].(string); n != name {
			continue
		}
		if s, _ := fields["symbol"].(string); s != symbol {
			continue
		}
		addr, ok := fields[m.policy.DeployAddressField].(common.Address)
		if !ok {
			continue
		}

		return addr, nil
	}

	return common.Address{}, NewError(CodeEventParseError,
		"no deployment event for the requested contract in the receipt",
		map[string]any{
			"txHash":      receipt.TxHash.Hex(),
			"blockNumber": receipt.BlockNumber.Uint64(),
			"name":        name,
			"symbol":      symbol,
		})
}
