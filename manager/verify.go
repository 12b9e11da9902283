package manager

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/hashmint/contract-manager/contracts"
	"github.com/hashmint/contract-manager/pkg/logger"
)

// Fields are the decoded fields of one emitted event, keyed by argument name.
type Fields map[string]any

// errEventNotFound signals that no log in the receipt decoded to the wanted
// event. Semantic checks map it to their operation-specific domain code.
var errEventNotFound = errors.New("no matching decodable event in receipt")

// TransferEvent is the decoded transfer-style event shared by both contract
// families. A zero From marks a mint, a zero To marks a destroy.
type TransferEvent struct {
	From    common.Address
	To      common.Address
	TokenID *big.Int
}

// Verifier decodes emitted events from confirmed receipts and checks them
// against semantic expectations. It never inspects chain state; everything it
// knows comes from the receipt the transaction already produced.
type Verifier struct {
	lggr        logger.Logger
	contractABI *abi.ABI
}

// NewVerifier creates a Verifier for the given contract interface.
func NewVerifier(lggr logger.Logger, contractABI *abi.ABI) *Verifier {
	return &Verifier{lggr: lggr, contractABI: contractABI}
}

// DecodeEvent scans the receipt's logs in their original order and returns
// the fields of the first log that decodes to the named event. Logs that fail
// to decode were emitted by unrelated contracts in the same block and are
// skipped silently. Log order reflects execution order and is never resorted.
func (v *Verifier) DecodeEvent(receipt *types.Receipt, eventName string) (Fields, error) {
	ev, ok := v.contractABI.Events[eventName]
	if !ok {
		return nil, fmt.Errorf("event %q is not part of the contract interface", eventName)
	}

	for _, lg := range receipt.Logs {
		if len(lg.Topics) == 0 || lg.Topics[0] != ev.ID {
			continue
		}
		fields, err := unpackLog(v.contractABI, ev, lg)
		if err != nil {
			continue
		}

		return fields, nil
	}

	return nil, errEventNotFound
}

// unpackLog decodes the non-indexed fields from the log data and the indexed
// fields from the topics.
func unpackLog(contractABI *abi.ABI, ev abi.Event, lg *types.Log) (Fields, error) {
	fields := Fields{}
	if len(ev.Inputs.NonIndexed()) > 0 {
		if err := contractABI.UnpackIntoMap(fields, ev.Name, lg.Data); err != nil {
			return nil, err
		}
	}

	var indexed abi.Arguments
	for _, arg := range ev.Inputs {
		if arg.Indexed {
			indexed = append(indexed, arg)
		}
	}
	if len(lg.Topics)-1 != len(indexed) {
		return nil, fmt.Errorf("log has %d topics, event %q expects %d", len(lg.Topics)-1, ev.Name, len(indexed))
	}
	if err := abi.ParseTopicsIntoMap(fields, indexed, lg.Topics[1:]); err != nil {
		return nil, err
	}

	return fields, nil
}

// transferFromFields converts decoded Transfer fields into a TransferEvent.
func transferFromFields(fields Fields) (*TransferEvent, error) {
	from, ok := fields["from"].(common.Address)
	if !ok {
		return nil, fmt.Errorf("transfer event is missing the from field")
	}
	to, ok := fields["to"].(common.Address)
	if !ok {
		return nil, fmt.Errorf("transfer event is missing the to field")
	}
	tokenID, ok := fields["tokenId"].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("transfer event is missing the tokenId field")
	}

	return &TransferEvent{From: from, To: to, TokenID: tokenID}, nil
}

// VerifyMint checks that the receipt carries a transfer-style event marking a
// mint. A non-zero "from" is only logged as a warning: contract variants emit
// differently and the transaction already succeeded on-chain. A tokenID
// expectation, when supplied, is enforced.
func (v *Verifier) VerifyMint(receipt *types.Receipt, expectedTokenID *big.Int) (*TransferEvent, error) {
	fields, err := v.DecodeEvent(receipt, contracts.TransferEvent)
	if err != nil {
		return nil, NewError(CodeTransferEventNotFound,
			"no decodable transfer event in mint receipt",
			map[string]any{"txHash": receipt.TxHash.Hex()})
	}

	ev, err := transferFromFields(fields)
	if err != nil {
		return nil, NewError(CodeEventParseError, err.Error(), map[string]any{"txHash": receipt.TxHash.Hex()})
	}

	if ev.From != (common.Address{}) {
		v.lggr.Warnw("mint transfer event has a non-zero from address",
			"txHash", receipt.TxHash.Hex(), "from", ev.From.Hex())
	}
	if expectedTokenID != nil && ev.TokenID.Cmp(expectedTokenID) != 0 {
		return nil, NewError(CodeTokenIDMismatch,
			fmt.Sprintf("minted token id %s does not match expected %s", ev.TokenID, expectedTokenID),
			map[string]any{"txHash": receipt.TxHash.Hex(), "tokenId": ev.TokenID.String()})
	}

	return ev, nil
}

// VerifyTransfer checks the receipt's transfer event against the caller's
// expectations. The verifier raises on any mismatch; best-effort callers
// downgrade the raise to a warning because the transaction already succeeded.
func (v *Verifier) VerifyTransfer(receipt *types.Receipt, expectedFrom *common.Address, recipient common.Address, tokenID *big.Int) (*TransferEvent, error) {
	fields, err := v.DecodeEvent(receipt, contracts.TransferEvent)
	if err != nil {
		return nil, NewError(CodeTransferEventNotFound,
			"no decodable transfer event in receipt",
			map[string]any{"txHash": receipt.TxHash.Hex()})
	}

	ev, err := transferFromFields(fields)
	if err != nil {
		return nil, NewError(CodeEventParseError, err.Error(), map[string]any{"txHash": receipt.TxHash.Hex()})
	}

	if tokenID != nil && ev.TokenID.Cmp(tokenID) != 0 {
		return nil, NewError(CodeTokenIDMismatch,
			fmt.Sprintf("transferred token id %s does not match expected %s", ev.TokenID, tokenID),
			map[string]any{"txHash": receipt.TxHash.Hex(), "tokenId": ev.TokenID.String()})
	}
	if ev.To != recipient {
		return nil, NewError(CodeRecipientMismatch,
			fmt.Sprintf("transfer recipient %s does not match expected %s", ev.To.Hex(), recipient.Hex()),
			map[string]any{"txHash": receipt.TxHash.Hex(), "to": ev.To.Hex()})
	}
	if expectedFrom != nil && ev.From != *expectedFrom {
		return nil, NewError(CodeFromMismatch,
			fmt.Sprintf("transfer sender %s does not match expected %s", ev.From.Hex(), expectedFrom.Hex()),
			map[string]any{"txHash": receipt.TxHash.Hex(), "from": ev.From.Hex()})
	}

	return ev, nil
}

// VerifyDestroyTransfer checks the transfer-style half of a destroy: a
// transfer event whose "to" is the zero sentinel.
func (v *Verifier) VerifyDestroyTransfer(receipt *types.Receipt, tokenID *big.Int) (*TransferEvent, error) {
	fields, err := v.DecodeEvent(receipt, contracts.TransferEvent)
	if err != nil {
		return nil, NewError(CodeTransferEventNotFound,
			"no decodable transfer event in destroy receipt",
			map[string]any{"txHash": receipt.TxHash.Hex()})
	}

	ev, err := transferFromFields(fields)
	if err != nil {
		return nil, NewError(CodeEventParseError, err.Error(), map[string]any{"txHash": receipt.TxHash.Hex()})
	}

	if ev.To != (common.Address{}) {
		return nil, NewError(CodeToMismatch,
			fmt.Sprintf("destroy transfer event has non-zero to address %s", ev.To.Hex()),
			map[string]any{"txHash": receipt.TxHash.Hex(), "to": ev.To.Hex()})
	}
	if tokenID != nil && ev.TokenID.Cmp(tokenID) != 0 {
		return nil, NewError(CodeTokenIDMismatch,
			fmt.Sprintf("destroyed token id %s does not match expected %s", ev.TokenID, tokenID),
			map[string]any{"txHash": receipt.TxHash.Hex(), "tokenId": ev.TokenID.String()})
	}

	return ev, nil
}

// VerifyDestroyed checks the dedicated destroy event carrying the token id
// and the key hash.
func (v *Verifier) VerifyDestroyed(receipt *types.Receipt, tokenID *big.Int) (Fields, error) {
	fields, err := v.DecodeEvent(receipt, contracts.DestroyedEvent)
	if err != nil {
		return nil, NewError(CodeDestroyEventNotFound,
			"no decodable destroyed event in receipt",
			map[string]any{"txHash": receipt.TxHash.Hex()})
	}

	if tokenID != nil {
		got, ok := fields["tokenId"].(*big.Int)
		if !ok || got.Cmp(tokenID) != 0 {
			return nil, NewError(CodeTokenIDMismatch,
				fmt.Sprintf("destroyed event token id does not match expected %s", tokenID),
				map[string]any{"txHash": receipt.TxHash.Hex()})
		}
	}

	return fields, nil
}

// VerifyOwnershipTransfer checks the ownership-transferred event against the
// expected new owner.
func (v *Verifier) VerifyOwnershipTransfer(receipt *types.Receipt, newOwner common.Address) error {
	fields, err := v.DecodeEvent(receipt, contracts.OwnershipTransferredEvent)
	if err != nil {
		return NewError(CodeOwnershipEventNotFound,
			"no decodable ownership transfer event in receipt",
			map[string]any{"txHash": receipt.TxHash.Hex()})
	}

	got, ok := fields["newOwner"].(common.Address)
	if !ok || got != newOwner {
		return NewError(CodeOwnerMismatch,
			fmt.Sprintf("ownership transfer event does not name expected new owner %s", newOwner.Hex()),
			map[string]any{"txHash": receipt.TxHash.Hex()})
	}

	return nil
}

// SnapshotID extracts the id of a newly created snapshot. This is a strict
// context: there is no fallback value when the event is absent, so event
// absence is fatal.
func (v *Verifier) SnapshotID(receipt *types.Receipt) (*big.Int, error) {
	fields, err := v.DecodeEvent(receipt, contracts.SnapshotCreatedEvent)
	if err != nil {
		return nil, NewError(CodeSnapshotEventNotFound,
			"no decodable snapshot created event in receipt",
			map[string]any{
				"txHash":      receipt.TxHash.Hex(),
				"blockNumber": receipt.BlockNumber.Uint64(),
			})
	}

	id, ok := fields["snapshotId"].(*big.Int)
	if !ok {
		return nil, NewError(CodeEventParseError,
			"snapshot created event is missing the snapshotId field",
			map[string]any{"txHash": receipt.TxHash.Hex()})
	}

	return id, nil
}
