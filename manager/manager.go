// Package manager implements the contract lifecycle manager: factory
// deployment, event-sourced child contract deployment, post-hoc transaction
// verification, and network reconciliation, all parametrized by a family
// Policy.
package manager

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"

	"github.com/hashmint/contract-manager/chain"
	"github.com/hashmint/contract-manager/chain/connection"
	"github.com/hashmint/contract-manager/contracts"
	"github.com/hashmint/contract-manager/pkg/logger"
	"github.com/hashmint/contract-manager/registry"
)

// Params configures a Manager.
type Params struct {
	// Connection is the bound signing authority. Required.
	Connection connection.Connection
	// Registry is the external configuration service client. Required.
	Registry registry.Service
	// Policy selects and describes the contract family. Required.
	Policy Policy
	// Logger is the structured logger. Required.
	Logger logger.Logger
	// Endpoint pins the target network explicitly. Optional: when nil the
	// network recorded in the registry is adopted. When both are present
	// they must agree.
	Endpoint *chain.Endpoint
}

func (p Params) validate() error {
	if p.Connection == nil {
		return errors.New("connection is required")
	}
	if p.Registry == nil {
		return errors.New("registry is required")
	}
	if p.Logger == nil {
		return errors.New("logger is required")
	}
	if err := p.Policy.Validate(); err != nil {
		return fmt.Errorf("invalid policy: %w", err)
	}
	if p.Endpoint != nil {
		if err := p.Endpoint.Validate(); err != nil {
			return fmt.Errorf("invalid endpoint: %w", err)
		}
	}

	return nil
}

// Manager is the lifecycle manager for one contract family bound to one
// signing authority on one network.
//
// A Manager holds no lock: operations that mutate its state (deploys,
// SetContractAddress) must be serialized by the caller. Concurrent reads
// through separate Managers are always safe.
type Manager struct {
	lggr     logger.Logger
	conn     connection.Connection
	reg      registry.Service
	policy   Policy
	verifier *Verifier

	network     chain.Endpoint
	metadataURL string

	factoryAddr *common.Address
	factory     *bind.BoundContract
	active      *common.Address
	deployed    []common.Address
}

// New builds a Manager: it loads the signer's configuration from the
// registry, resolves the target network, reconciles the connection onto it,
// and reconstructs handles for any addresses the registry already knows.
// The returned handle is the only way to reach the manager; nothing is kept
// in package state.
func New(ctx context.Context, params Params) (*Manager, error) {
	if err := params.validate(); err != nil {
		return nil, NewError(CodeInvalidParameter, err.Error(), nil)
	}

	lggr := params.Logger.Named("Manager").Named(string(params.Policy.Family))

	signer := params.Connection.From()
	cfg, err := params.Registry.GetConfig(ctx, signer)
	if err != nil {
		return nil, Classify(err, CodeRegistryError,
			"failed to load signer configuration from registry",
			map[string]any{"signer": signer.Hex()})
	}

	network, err := resolveNetwork(params.Endpoint, cfg.Network)
	if err != nil {
		return nil, err
	}

	if err := EnsureNetwork(ctx, lggr, params.Connection, network); err != nil {
		return nil, err
	}

	m := &Manager{
		lggr:        lggr,
		conn:        params.Connection,
		reg:         params.Registry,
		policy:      params.Policy,
		verifier:    NewVerifier(lggr, params.Policy.ChildABI),
		network:     network,
		metadataURL: cfg.MetadataURL,
	}

	for _, addr := range cfg.DeployedAddresses {
		m.addAddress(addr)
	}
	if len(m.deployed) > 0 {
		last := m.deployed[len(m.deployed)-1]
		m.active = &last
	}
	if cfg.FactoryAddress != nil {
		m.adoptFactory(*cfg.FactoryAddress)
	}

	lggr.Infow("manager initialized",
		"signer", signer.Hex(),
		"chainID", network.ChainID,
		"factorySet", m.factoryAddr != nil,
		"knownContracts", len(m.deployed),
	)

	return m, nil
}

// resolveNetwork picks the target network from the explicit parameter and the
// registry record. An explicit endpoint wins; when both are present they must
// name the same chain.
func resolveNetwork(explicit, recorded *chain.Endpoint) (chain.Endpoint, error) {
	switch {
	case explicit != nil && recorded != nil:
		if explicit.ChainID != recorded.ChainID {
			return chain.Endpoint{}, NewError(CodeInvalidParameter,
				fmt.Sprintf("explicit endpoint targets chain %d but the registry records chain %d for this signer",
					explicit.ChainID, recorded.ChainID),
				map[string]any{"explicitChainID": explicit.ChainID, "registryChainID": recorded.ChainID})
		}

		return *explicit, nil
	case explicit != nil:
		return *explicit, nil
	case recorded != nil:
		return *recorded, nil
	default:
		return chain.Endpoint{}, NewError(CodeInvalidParameter,
			"no target network: pass an endpoint or record one in the registry", nil)
	}
}

// adoptFactory stores the factory address and binds a live handle for it.
func (m *Manager) adoptFactory(addr common.Address) {
	m.factoryAddr = &addr
	m.factory = m.bindFactory(addr)
}

// Family returns the contract family this manager operates.
func (m *Manager) Family() contracts.Family { return m.policy.Family }

// Network returns the network the manager is reconciled onto.
func (m *Manager) Network() chain.Endpoint { return m.network }

// MetadataURL returns the metadata base URL recorded for the signer, if any.
func (m *Manager) MetadataURL() string { return m.metadataURL }

// FactoryAddress returns the factory address, or an error when none is set.
func (m *Manager) FactoryAddress() (common.Address, error) {
	if m.factoryAddr == nil {
		return common.Address{}, NewError(CodeFactoryNotDeployed,
			"no factory deployed: call DeployFactory first", nil)
	}

	return *m.factoryAddr, nil
}

// ContractAddress returns the active child contract address.
func (m *Manager) ContractAddress() (common.Address, error) {
	if m.active == nil {
		return common.Address{}, NewError(CodeNoContractAddress,
			"no active contract: deploy one or set an address explicitly", nil)
	}

	return *m.active, nil
}

// SetContractAddress selects an existing child contract as the active one.
// The address is checksum-validated and recorded in the deployed set.
func (m *Manager) SetContractAddress(addr string) error {
	if !common.IsHexAddress(addr) {
		return NewError(CodeInvalidAddress,
			fmt.Sprintf("%q is not a valid contract address", addr), nil)
	}

	normalized := common.HexToAddress(addr)
	m.addAddress(normalized)
	m.active = &normalized

	return nil
}

// AllDeployedAddresses returns a copy of the known child contract addresses
// in insertion order.
func (m *Manager) AllDeployedAddresses() []common.Address {
	out := make([]common.Address, len(m.deployed))
	copy(out, m.deployed)

	return out
}

// addAddress appends addr to the deployed set unless it is already present.
// Addresses are checksum-normalized, so equality is canonical.
func (m *Manager) addAddress(addr common.Address) {
	for _, have := range m.deployed {
		if have == addr {
			return
		}
	}
	m.deployed = append(m.deployed, addr)
}

// activeHandle returns a bound handle on the active child contract. Writes
// and reads carry distinct guard codes: a write without a contract means
// nothing was deployed, a read means there is simply no address to read from.
func (m *Manager) activeHandle(write bool) (*bind.BoundContract, error) {
	if m.active == nil {
		if write {
			return nil, NewError(CodeContractNotDeployed,
				"no active contract to transact against: deploy one first", nil)
		}

		return nil, NewError(CodeNoContractAddress,
			"no active contract address to read from", nil)
	}

	return m.bindChild(*m.active), nil
}

// bindChild constructs a bound handle for a child contract address.
func (m *Manager) bindChild(addr common.Address) *bind.BoundContract {
	client := m.conn.Client()

	return bind.NewBoundContract(addr, *m.policy.ChildABI, client, client, client)
}

// bindFactory rebuilds the factory handle; used after reconnects.
func (m *Manager) bindFactory(addr common.Address) *bind.BoundContract {
	client := m.conn.Client()

	return bind.NewBoundContract(addr, *m.policy.FactoryABI, client, client, client)
}

// TransferOwner transfers ownership of the active child contract and records
// the transfer in the registry. The on-chain ownership event is verified
// best-effort; a registry write-back failure is fatal because nothing repairs
// the divergence afterwards.
func (m *Manager) TransferOwner(ctx context.Context, newOwner common.Address) (common.Hash, error) {
	if newOwner == (common.Address{}) {
		return common.Hash{}, NewError(CodeInvalidAddress, "new owner must not be the zero address", nil)
	}

	handle, err := m.activeHandle(true)
	if err != nil {
		return common.Hash{}, err
	}

	receipt, err := m.transact(ctx, handle, "transferOwnership", newOwner)
	if err != nil {
		return common.Hash{}, err
	}

	if verr := m.verifier.VerifyOwnershipTransfer(receipt, newOwner); verr != nil {
		m.lggr.Warnw("ownership transfer verification failed",
			"txHash", receipt.TxHash.Hex(), "err", verr)
	}

	if err := m.reg.TransferContractOwner(ctx, registry.TransferOwnerRequest{
		Signer:          m.conn.From(),
		ContractAddress: *m.active,
		Family:          m.policy.Family,
		NewOwner:        newOwner,
	}); err != nil {
		return receipt.TxHash, Classify(err, CodeRegistryError,
			"ownership transferred on-chain but the registry write-back failed",
			map[string]any{"txHash": receipt.TxHash.Hex(), "newOwner": newOwner.Hex()})
	}

	return receipt.TxHash, nil
}

// Name reads the active contract's name.
func (m *Manager) Name(ctx context.Context) (string, error) {
	return m.callString(ctx, "name")
}

// Symbol reads the active contract's symbol.
func (m *Manager) Symbol(ctx context.Context) (string, error) {
	return m.callString(ctx, "symbol")
}

// Owner reads the active contract's owner.
func (m *Manager) Owner(ctx context.Context) (common.Address, error) {
	var out []any
	if err := m.call(ctx, &out, "owner"); err != nil {
		return common.Address{}, err
	}

	addr, ok := out[0].(common.Address)
	if !ok {
		return common.Address{}, NewError(CodeContractCallFailed, "owner returned a non-address value", nil)
	}

	return addr, nil
}

// callString performs a read returning a single string output.
func (m *Manager) callString(ctx context.Context, method string, args ...any) (string, error) {
	var out []any
	if err := m.call(ctx, &out, method, args...); err != nil {
		return "", err
	}

	s, ok := out[0].(string)
	if !ok {
		return "", NewError(CodeContractCallFailed,
			fmt.Sprintf("%s returned a non-string value", method), nil)
	}

	return s, nil
}
