// Package registry is the client surface of the external configuration
// service. The service supplies network parameters and known addresses at
// manager init time and records factory and child deployments after the fact.
//
// The service itself is external; this package provides an HTTP client for
// the hosted service, a TOML file-backed implementation for local use, and an
// in-memory implementation for tests.
package registry

import (
	"context"

	"github.com/Masterminds/semver/v3"
	"github.com/ethereum/go-ethereum/common"

	"github.com/hashmint/contract-manager/chain"
	"github.com/hashmint/contract-manager/contracts"
)

// Config is the per-signer configuration the service hands out at manager
// init time.
type Config struct {
	// FactoryAddress is the pre-supplied factory address, if one was ever
	// recorded for the signer.
	FactoryAddress *common.Address
	// Network is the chain the signer's deployments live on.
	Network *chain.Endpoint
	// MetadataURL is the base URL for token metadata.
	MetadataURL string
	// DeployedAddresses are the known child contract addresses.
	DeployedAddresses []common.Address
}

// SetFactoryRequest records a factory deployment.
type SetFactoryRequest struct {
	Signer         common.Address
	FactoryAddress common.Address
	Family         contracts.Family
	Version        *semver.Version
}

// SetContractRequest records a child contract deployment.
type SetContractRequest struct {
	Signer          common.Address
	ContractAddress common.Address
	Family          contracts.Family
	Version         *semver.Version
}

// TransferOwnerRequest records an ownership transfer of a child contract.
type TransferOwnerRequest struct {
	Signer          common.Address
	ContractAddress common.Address
	Family          contracts.Family
	NewOwner        common.Address
}

// Service is the configuration service consumed by the manager. Write-backs
// are fire-and-forget from the chain's perspective, but their failures
// propagate to the caller: the on-chain state and the registry can diverge
// and no component repairs that divergence.
type Service interface {
	// GetConfig returns the configuration recorded for the signer. A signer
	// the service has never seen yields an empty Config, not an error.
	GetConfig(ctx context.Context, signer common.Address) (*Config, error)
	// SetFactoryAddress records the factory deployed by the signer.
	SetFactoryAddress(ctx context.Context, req SetFactoryRequest) error
	// SetContractAddress records a child contract deployed by the signer.
	SetContractAddress(ctx context.Context, req SetContractRequest) error
	// TransferContractOwner records an ownership transfer.
	TransferContractOwner(ctx context.Context, req TransferOwnerRequest) error
}
