package manager

import (
	"context"
	"fmt"

	"github.com/hashmint/contract-manager/chain"
	"github.com/hashmint/contract-manager/chain/connection"
	"github.com/hashmint/contract-manager/pkg/logger"
)

// EnsureNetwork guarantees that the connection is on the expected chain
// before returning. A chain-switchable connection is healed wallet-side,
// adding the chain when the wallet does not know it yet. A fixed-endpoint
// connection cannot self-heal; a mismatch on it is immediately fatal.
//
// The current chain id is always taken from a direct query rather than any
// cached network record; the connection retries that query once on a
// transient failure before this function gives up.
func EnsureNetwork(ctx context.Context, lggr logger.Logger, conn connection.Connection, expected chain.Endpoint) error {
	current, err := conn.ChainID(ctx)
	if err != nil {
		return Classify(err, CodeNetworkError, "failed to query current chain id", nil)
	}
	if current == expected.ChainID {
		return nil
	}

	switcher, ok := conn.(connection.ChainSwitcher)
	if !ok {
		return NewError(CodeNetworkMismatch,
			fmt.Sprintf("connection is on chain %d but chain %d (%s) is required; reconnect with an endpoint for chain %d",
				current, expected.ChainID, expected.Name(), expected.ChainID),
			map[string]any{"currentChainID": current, "expectedChainID": expected.ChainID},
		)
	}

	lggr.Infow("switching wallet network", "currentChainID", current, "expectedChainID", expected.ChainID)
	if err := switcher.SwitchChain(ctx, expected.ChainID); err != nil {
		if !connection.IsUnknownChain(err) {
			return Classify(err, CodeNetworkSwitchError,
				fmt.Sprintf("failed to switch wallet to chain %d", expected.ChainID), nil)
		}

		// The wallet has never seen this chain; register it with the full
		// endpoint metadata, then retry the switch.
		lggr.Infow("wallet does not know chain, adding it", "chainID", expected.ChainID, "name", expected.Name())
		if err := switcher.AddChain(ctx, expected); err != nil {
			return Classify(err, CodeNetworkAddError,
				fmt.Sprintf("failed to add chain %d to wallet", expected.ChainID), nil)
		}
		if err := switcher.SwitchChain(ctx, expected.ChainID); err != nil {
			return Classify(err, CodeNetworkSwitchError,
				fmt.Sprintf("failed to switch wallet to chain %d after adding it", expected.ChainID), nil)
		}
	}

	current, err = conn.ChainID(ctx)
	if err != nil {
		return Classify(err, CodeNetworkError, "failed to re-validate chain id after switching", nil)
	}
	if current != expected.ChainID {
		return NewError(CodeWrongNetwork,
			fmt.Sprintf("connection reports chain %d after switching to chain %d", current, expected.ChainID),
			map[string]any{"currentChainID": current, "expectedChainID": expected.ChainID},
		)
	}

	return nil
}
