// Package contracts carries the ABI metadata of the factory and child
// contracts the manager deploys and operates. The manager drives them
// generically through bound contracts; this package only supplies the
// externally defined interfaces and creation bytecode.
package contracts

import "fmt"

// Family tags a contract family. A manager is instantiated for exactly one
// family and deploys only that family's contracts.
type Family string

const (
	// FamilyNFT is the NFT-like contract family.
	FamilyNFT Family = "nft"
	// FamilyMembership is the membership-like contract family.
	FamilyMembership Family = "membership"
)

// Validate checks that the family is one of the known tags.
func (f Family) Validate() error {
	switch f {
	case FamilyNFT, FamilyMembership:
		return nil
	default:
		return fmt.Errorf("unknown contract family %q", string(f))
	}
}

// Method and event names of the externally supplied contract ABIs.
const (
	// TokenDeployMethod is the NFT factory's deploy entry point.
	TokenDeployMethod = "deployToken"
	// TokenDeployedEvent is emitted by the NFT factory on child deployment.
	TokenDeployedEvent = "TokenDeployed"

	// MembershipDeployMethod is the membership factory's deploy entry point.
	MembershipDeployMethod = "deployMembership"
	// MembershipDeployedEvent is emitted by the membership factory on child
	// deployment.
	MembershipDeployedEvent = "MembershipDeployed"

	// TransferEvent is the transfer-style event both child families emit.
	// A zero "from" marks a mint, a zero "to" marks a destroy.
	TransferEvent = "Transfer"
	// DestroyedEvent is the NFT child's dedicated destroy event.
	DestroyedEvent = "Destroyed"
	// SnapshotCreatedEvent is the membership child's snapshot event.
	SnapshotCreatedEvent = "SnapshotCreated"
	// OwnershipTransferredEvent is emitted by both child families on
	// ownership transfer.
	OwnershipTransferredEvent = "OwnershipTransferred"
)
