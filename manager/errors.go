package manager

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/rpc"
)

// Code is a stable domain error code. Callers branch on the code only, never
// on message text.
type Code string

// The closed error taxonomy. Every failure surfaced by this package carries
// exactly one of these codes.
const (
	CodeInsufficientFunds  Code = "INSUFFICIENT_FUNDS"
	CodeUserRejected       Code = "USER_REJECTED"
	CodeNonceExpired       Code = "NONCE_EXPIRED"
	CodeContractCallFailed Code = "CONTRACT_CALL_FAILED"

	CodeTokenIDMismatch   Code = "TOKEN_ID_MISMATCH"
	CodeRecipientMismatch Code = "RECIPIENT_MISMATCH"
	CodeOwnerMismatch     Code = "OWNER_MISMATCH"
	CodeFromMismatch      Code = "FROM_MISMATCH"
	CodeToMismatch        Code = "TO_MISMATCH"

	CodeTransferEventNotFound  Code = "TRANSFER_EVENT_NOT_FOUND"
	CodeDestroyEventNotFound   Code = "DESTROY_EVENT_NOT_FOUND"
	CodeSnapshotEventNotFound  Code = "SNAPSHOT_EVENT_NOT_FOUND"
	CodeOwnershipEventNotFound Code = "OWNERSHIP_EVENT_NOT_FOUND"
	CodeEventParseError        Code = "EVENT_PARSE_ERROR"

	CodeWrongNetwork       Code = "WRONG_NETWORK"
	CodeNetworkMismatch    Code = "NETWORK_MISMATCH"
	CodeNetworkSwitchError Code = "NETWORK_SWITCH_ERROR"
	CodeNetworkAddError    Code = "NETWORK_ADD_ERROR"
	CodeNetworkError       Code = "NETWORK_ERROR"

	CodeFactoryNotDeployed  Code = "FACTORY_NOT_DEPLOYED"
	CodeContractNotDeployed Code = "CONTRACT_NOT_DEPLOYED"
	CodeNoContractAddress   Code = "NO_CONTRACT_ADDRESS"

	CodeInvalidParameter Code = "INVALID_PARAMETER"
	CodeInvalidAddress   Code = "INVALID_ADDRESS"

	CodeTransactionError Code = "TRANSACTION_ERROR"
	CodeRegistryError    Code = "REGISTRY_ERROR"
	CodeUnknownError     Code = "UNKNOWN_ERROR"
)

// Error is the typed domain error surfaced by every operation. Details is
// diagnostic only and must never be consulted for control flow.
type Error struct {
	Code    Code
	Message string
	Details map[string]any

	cause error
}

// NewError creates a domain error with no underlying cause.
func NewError(code Code, message string, details map[string]any) *Error {
	return &Error{Code: code, Message: message, Details: details}
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}

	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// CodeOf extracts the domain code from err, or CodeUnknownError when err was
// never classified.
func CodeOf(err error) Code {
	var derr *Error
	if errors.As(err, &derr) {
		return derr.Code
	}

	return CodeUnknownError
}

// IsCode reports whether err carries the given domain code.
func IsCode(err error, code Code) bool {
	var derr *Error
	return errors.As(err, &derr) && derr.Code == code
}

// transportRule maps a known transport error signature to a domain code.
type transportRule struct {
	substr string
	code   Code
}

// transportRules is the exhaustive mapping of known transport error
// identifiers to the domain taxonomy. First match wins; anything unmatched
// falls through to the caller-supplied fallback code.
var transportRules = []transportRule{
	{"insufficient funds", CodeInsufficientFunds},
	{"gas required exceeds allowance", CodeInsufficientFunds},
	{"user rejected", CodeUserRejected},
	{"user denied", CodeUserRejected},
	{"request denied", CodeUserRejected}, // clef wording
	{"nonce too low", CodeNonceExpired},
	{"nonce too high", CodeNonceExpired},
	{"invalid nonce", CodeNonceExpired},
	{"execution reverted", CodeContractCallFailed},
	{"always failing transaction", CodeContractCallFailed},
}

// rpcUserRejectedCode is the EIP-1193 error a wallet returns when the user
// declines approval.
const rpcUserRejectedCode = 4001

// Classify converts err into a domain error. An error that already carries a
// domain code passes through unchanged, never double-wrapped. Otherwise the
// transport rules decide the code, falling back to the supplied code when
// nothing matches. The original error is preserved in the wrap chain and its
// text in Details.
func Classify(err error, fallback Code, message string, details map[string]any) *Error {
	if err == nil {
		return nil
	}

	var derr *Error
	if errors.As(err, &derr) {
		return derr
	}

	code := classifyTransport(err)
	if code == "" {
		code = fallback
	}
	if code == "" {
		code = CodeUnknownError
	}

	if details == nil {
		details = map[string]any{}
	}
	details["cause"] = err.Error()

	if reason := revertReason(err); reason != "" {
		details["revertReason"] = reason
		message = fmt.Sprintf("%s: reverted: %s", message, reason)
	}

	return &Error{Code: code, Message: message, Details: details, cause: err}
}

func classifyTransport(err error) Code {
	var rerr rpc.Error
	if errors.As(err, &rerr) && rerr.ErrorCode() == rpcUserRejectedCode {
		return CodeUserRejected
	}

	msg := strings.ToLower(err.Error())
	for _, rule := range transportRules {
		if strings.Contains(msg, rule.substr) {
			return rule.code
		}
	}

	return ""
}

// revertReason extracts the revert reason a transport attaches to call
// failures, if any.
func revertReason(err error) string {
	var derr rpc.DataError
	if !errors.As(err, &derr) {
		return ""
	}
	if s, ok := derr.ErrorData().(string); ok {
		return s
	}

	return ""
}
