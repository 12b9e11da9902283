package manager

import (
	"errors"
	"fmt"

	"github.com/Masterminds/semver/v3"
	"github.com/ethereum/go-ethereum/accounts/abi"

	"github.com/hashmint/contract-manager/contracts"
)

// Policy captures everything that differs between the contract families: the
// factory interface and bytecode, the deploy entry point, and the deployment
// event the child address is read from. A Manager is configured with exactly
// one Policy and drives both families through the same code paths.
type Policy struct {
	// Family tags the contract family this policy describes.
	Family contracts.Family

	// Version is the contract interface version recorded in the registry
	// alongside deployed addresses.
	Version *semver.Version

	// FactoryABI is the factory contract interface.
	FactoryABI *abi.ABI
	// FactoryBin is the factory creation bytecode as a hex string.
	FactoryBin string

	// DeployMethod is the factory method that deploys a child contract. It
	// takes the child's name and symbol.
	DeployMethod string
	// DeployEvent is the factory event emitted once per deployed child.
	DeployEvent string
	// DeployAddressField names the event field carrying the child address.
	DeployAddressField string

	// ChildABI is the deployed child contract interface.
	ChildABI *abi.ABI
}

// Validate checks the policy for internal consistency. A valid policy's
// deploy method and event exist on the factory interface, and the event
// carries the named address field.
func (p Policy) Validate() error {
	if err := p.Family.Validate(); err != nil {
		return err
	}
	if p.Version == nil {
		return errors.New("version is required")
	}
	if p.FactoryABI == nil {
		return errors.New("factory ABI is required")
	}
	if p.ChildABI == nil {
		return errors.New("child ABI is required")
	}
	if _, ok := p.FactoryABI.Methods[p.DeployMethod]; !ok {
		return fmt.Errorf("factory ABI has no method %q", p.DeployMethod)
	}

	ev, ok := p.FactoryABI.Events[p.DeployEvent]
	if !ok {
		return fmt.Errorf("factory ABI has no event %q", p.DeployEvent)
	}
	for _, arg := range ev.Inputs {
		if arg.Name == p.DeployAddressField {
			return nil
		}
	}

	return fmt.Errorf("event %q has no field %q", p.DeployEvent, p.DeployAddressField)
}

// interfaceVersion is the version of the externally defined contract
// interfaces this package was built against.
var interfaceVersion = semver.MustParse("1.2.0")

// NFTPolicy returns the policy for the NFT contract family.
func NFTPolicy() (Policy, error) {
	factoryABI, err := contracts.TokenFactoryMetaData.GetAbi()
	if err != nil {
		return Policy{}, fmt.Errorf("failed to parse token factory ABI: %w", err)
	}
	childABI, err := contracts.TokenMetaData.GetAbi()
	if err != nil {
		return Policy{}, fmt.Errorf("failed to parse token ABI: %w", err)
	}

	return Policy{
		Family:             contracts.FamilyNFT,
		Version:            interfaceVersion,
		FactoryABI:         factoryABI,
		FactoryBin:         contracts.TokenFactoryMetaData.Bin,
		DeployMethod:       contracts.TokenDeployMethod,
		DeployEvent:        contracts.TokenDeployedEvent,
		DeployAddressField: "token",
		ChildABI:           childABI,
	}, nil
}

// MembershipPolicy returns the policy for the membership contract family.
func MembershipPolicy() (Policy, error) {
	factoryABI, err := contracts.MembershipFactoryMetaData.GetAbi()
	if err != nil {
		return Policy{}, fmt.Errorf("failed to parse membership factory ABI: %w", err)
	}
	childABI, err := contracts.MembershipMetaData.GetAbi()
	if err != nil {
		return Policy{}, fmt.Errorf("failed to parse membership ABI: %w", err)
	}

	return Policy{
		Family:             contracts.FamilyMembership,
		Version:            interfaceVersion,
		FactoryABI:         factoryABI,
		FactoryBin:         contracts.MembershipFactoryMetaData.Bin,
		DeployMethod:       contracts.MembershipDeployMethod,
		DeployEvent:        contracts.MembershipDeployedEvent,
		DeployAddressField: "membership",
		ChildABI:           childABI,
	}, nil
}
