package connection

import (
	"encoding/json"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hashmint/contract-manager/pkg/logger"
)

func fastRetryConfig() RetryConfig {
	return RetryConfig{
		Attempts:     1,
		Delay:        10 * time.Millisecond,
		Timeout:      2 * time.Second,
		DialAttempts: 1,
		DialDelay:    10 * time.Millisecond,
		DialTimeout:  2 * time.Second,
	}
}

func Test_NewMultiClient(t *testing.T) {
	t.Parallel()

	srv, _ := newRPCServer(t, defaultNodeHandler("0x89"))

	tests := []struct {
		name     string
		giveRPCs []RPC
		wantErr  string
	}{
		{
			name:     "valid",
			giveRPCs: []RPC{{Name: "primary", URL: srv.URL}},
		},
		{
			name:    "no rpcs",
			wantErr: "no RPCs provided",
		},
		{
			name:     "all unreachable",
			giveRPCs: []RPC{{Name: "dead", URL: "http://127.0.0.1:1"}},
			wantErr:  "no valid RPC clients created",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			mc, err := NewMultiClient(logger.Test(t), "polygon", tt.giveRPCs, WithRetryConfig(fastRetryConfig()))
			if tt.wantErr != "" {
				require.ErrorContains(t, err, tt.wantErr)

				return
			}
			require.NoError(t, err)
			assert.Empty(t, mc.Backups)
		})
	}
}

func Test_MultiClient_FailoverToBackup(t *testing.T) {
	t.Parallel()

	primary, primaryCalls := newRPCServer(t, func(method string, _ []json.RawMessage) (any, *rpcError) {
		switch method {
		case "eth_blockNumber":
			return "0x10", nil
		default:
			return nil, &rpcError{Code: -32000, Message: "primary down"}
		}
	})
	backup, backupCalls := newRPCServer(t, func(method string, _ []json.RawMessage) (any, *rpcError) {
		switch method {
		case "eth_blockNumber":
			return "0x10", nil
		case "eth_getBalance":
			return "0x5", nil
		default:
			return nil, &rpcError{Code: -32601, Message: "method not found"}
		}
	})

	mc, err := NewMultiClient(logger.Test(t), "polygon", []RPC{
		{Name: "primary", URL: primary.URL},
		{Name: "backup", URL: backup.URL},
	}, WithRetryConfig(fastRetryConfig()))
	require.NoError(t, err)
	require.Len(t, mc.Backups, 1)

	balance, err := mc.BalanceAt(t.Context(), common.Address{}, nil)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(5), balance)

	assert.Equal(t, 1, primaryCalls.count("eth_getBalance"))
	assert.Equal(t, 1, backupCalls.count("eth_getBalance"))
}
