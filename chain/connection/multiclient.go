package connection

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/google/uuid"

	"github.com/hashmint/contract-manager/pkg/logger"
)

const (
	// Default retry configuration for RPC calls.
	rpcDefaultRetryAttempts = 1
	rpcDefaultRetryDelay    = 1000 * time.Millisecond
	rpcDefaultRetryTimeout  = 10 * time.Second

	// Default retry configuration for dialing RPC endpoints.
	rpcDefaultDialAttempts = 1
	rpcDefaultDialDelay    = 1000 * time.Millisecond
	rpcDefaultDialTimeout  = 10 * time.Second

	rpcDefaultHealthCheckTimeout = 2 * time.Second
)

// RPC names a single RPC endpoint.
type RPC struct {
	Name string
	URL  string
}

// RetryConfig controls per-endpoint retries before failing over to a backup.
type RetryConfig struct {
	Attempts     uint
	Delay        time.Duration
	Timeout      time.Duration
	DialAttempts uint
	DialDelay    time.Duration
	DialTimeout  time.Duration
}

func defaultRetryConfig() RetryConfig {
	return RetryConfig{
		Attempts:     rpcDefaultRetryAttempts,
		Delay:        rpcDefaultRetryDelay,
		Timeout:      rpcDefaultRetryTimeout,
		DialAttempts: rpcDefaultDialAttempts,
		DialDelay:    rpcDefaultDialDelay,
		DialTimeout:  rpcDefaultDialTimeout,
	}
}

// MultiClient satisfies the OnchainClient surface.
var _ OnchainClient = &MultiClient{}

// MultiClient provides failover across Ethereum RPC clients. Calls go to the
// primary endpoint first, with per-endpoint retries, then fall through the
// backups in order.
type MultiClient struct {
	*ethclient.Client
	Backups     []*ethclient.Client
	RetryConfig RetryConfig
	lggr        logger.Logger
	chainName   string
}

// NewMultiClient dials all given endpoints, health-checking each, and returns
// a client backed by every endpoint that responded. At least one endpoint must
// be reachable.
func NewMultiClient(lggr logger.Logger, chainName string, rpcs []RPC, opts ...func(*MultiClient)) (*MultiClient, error) {
	if len(rpcs) == 0 {
		return nil, errors.New("no RPCs provided, need at least one")
	}

	mc := MultiClient{lggr: lggr, chainName: chainName, RetryConfig: defaultRetryConfig()}
	for _, opt := range opts {
		opt(&mc)
	}

	clients := make([]*ethclient.Client, 0, len(rpcs))
	for i, r := range rpcs {
		client, err := mc.dialWithRetry(r)
		if err != nil {
			lggr.Warnf("failed to dial client %d for RPC %q - %s, trying with the next one: %v", i, r.Name, chainName, err)

			continue
		}
		if err := mc.healthCheck(context.Background(), client); err != nil {
			lggr.Warnf("health check failed for client %d for RPC %q - %s, trying with the next one: %v", i, r.Name, chainName, err)
			client.Close()

			continue
		}
		clients = append(clients, client)
	}

	if len(clients) == 0 {
		return nil, errors.New("no valid RPC clients created")
	}

	mc.Client = clients[0]
	mc.Backups = clients[1:]

	return &mc, nil
}

// WithRetryConfig overrides the default retry configuration.
func WithRetryConfig(cfg RetryConfig) func(*MultiClient) {
	return func(mc *MultiClient) {
		mc.RetryConfig = cfg
	}
}

// RPCClient returns the underlying RPC client of the primary endpoint, for
// raw calls such as the direct eth_chainId query.
func (mc *MultiClient) RPCClient() *rpc.Client {
	return mc.Client.Client()
}

// healthCheck performs a basic liveness probe by calling eth_blockNumber.
func (mc *MultiClient) healthCheck(ctx context.Context, client *ethclient.Client) error {
	timeoutCtx, cancel := context.WithTimeout(ctx, rpcDefaultHealthCheckTimeout)
	defer cancel()

	if _, err := client.BlockNumber(timeoutCtx); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}

	return nil
}

func (mc *MultiClient) SendTransaction(ctx context.Context, tx *types.Transaction) error {
	return mc.retryWithBackups(ctx, "SendTransaction", func(ct context.Context, client *ethclient.Client) error {
		return client.SendTransaction(ct, tx)
	})
}

func (mc *MultiClient) CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	var result []byte
	err := mc.retryWithBackups(ctx, "CallContract", func(ct context.Context, client *ethclient.Client) error {
		var err error
		result, err = client.CallContract(ct, msg, blockNumber)

		return err
	})

	return result, err
}

func (mc *MultiClient) CodeAt(ctx context.Context, account common.Address, blockNumber *big.Int) ([]byte, error) {
	var code []byte
	err := mc.retryWithBackups(ctx, "CodeAt", func(ct context.Context, client *ethclient.Client) error {
		var err error
		code, err = client.CodeAt(ct, account, blockNumber)

		return err
	})

	return code, err
}

func (mc *MultiClient) PendingCodeAt(ctx context.Context, account common.Address) ([]byte, error) {
	var code []byte
	err := mc.retryWithBackups(ctx, "PendingCodeAt", func(ct context.Context, client *ethclient.Client) error {
		var err error
		code, err = client.PendingCodeAt(ct, account)

		return err
	})

	return code, err
}

func (mc *MultiClient) PendingNonceAt(ctx context.Context, account common.Address) (uint64, error) {
	var nonce uint64
	err := mc.retryWithBackups(ctx, "PendingNonceAt", func(ct context.Context, client *ethclient.Client) error {
		var err error
		nonce, err = client.PendingNonceAt(ct, account)

		return err
	})

	return nonce, err
}

func (mc *MultiClient) NonceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (uint64, error) {
	var nonce uint64
	err := mc.retryWithBackups(ctx, "NonceAt", func(ct context.Context, client *ethclient.Client) error {
		var err error
		nonce, err = client.NonceAt(ct, account, blockNumber)

		return err
	})

	return nonce, err
}

func (mc *MultiClient) BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error) {
	var balance *big.Int
	err := mc.retryWithBackups(ctx, "BalanceAt", func(ct context.Context, client *ethclient.Client) error {
		var err error
		balance, err = client.BalanceAt(ct, account, blockNumber)

		return err
	})

	return balance, err
}

func (mc *MultiClient) HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error) {
	var header *types.Header
	err := mc.retryWithBackups(ctx, "HeaderByNumber", func(ct context.Context, client *ethclient.Client) error {
		var err error
		header, err = client.HeaderByNumber(ct, number)

		return err
	})

	return header, err
}

func (mc *MultiClient) SuggestGasPrice(ctx context.Context) (*big.Int, error) {
	var gasPrice *big.Int
	err := mc.retryWithBackups(ctx, "SuggestGasPrice", func(ct context.Context, client *ethclient.Client) error {
		var err error
		gasPrice, err = client.SuggestGasPrice(ct)

		return err
	})

	return gasPrice, err
}

func (mc *MultiClient) SuggestGasTipCap(ctx context.Context) (*big.Int, error) {
	var gasTipCap *big.Int
	err := mc.retryWithBackups(ctx, "SuggestGasTipCap", func(ct context.Context, client *ethclient.Client) error {
		var err error
		gasTipCap, err = client.SuggestGasTipCap(ct)

		return err
	})

	return gasTipCap, err
}

func (mc *MultiClient) EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error) {
	var gas uint64
	err := mc.retryWithBackups(ctx, "EstimateGas", func(ct context.Context, client *ethclient.Client) error {
		var err error
		gas, err = client.EstimateGas(ct, msg)

		return err
	})

	return gas, err
}

func (mc *MultiClient) TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	var receipt *types.Receipt
	err := mc.retryWithBackups(ctx, "TransactionReceipt", func(ct context.Context, client *ethclient.Client) error {
		var err error
		receipt, err = client.TransactionReceipt(ct, txHash)

		return err
	})

	return receipt, err
}

func (mc *MultiClient) FilterLogs(ctx context.Context, q ethereum.FilterQuery) ([]types.Log, error) {
	var logs []types.Log
	err := mc.retryWithBackups(ctx, "FilterLogs", func(ct context.Context, client *ethclient.Client) error {
		var err error
		logs, err = client.FilterLogs(ct, q)

		return err
	})

	return logs, err
}

func (mc *MultiClient) SubscribeFilterLogs(ctx context.Context, q ethereum.FilterQuery, ch chan<- types.Log) (ethereum.Subscription, error) {
	var sub ethereum.Subscription
	err := mc.retryWithBackups(ctx, "SubscribeFilterLogs", func(ct context.Context, client *ethclient.Client) error {
		var err error
		sub, err = client.SubscribeFilterLogs(ct, q, ch)

		return err
	})

	return sub, err
}

func (mc *MultiClient) clients() []*ethclient.Client {
	return append([]*ethclient.Client{mc.Client}, mc.Backups...)
}

func (mc *MultiClient) retryWithBackups(ctx context.Context, opName string, op func(context.Context, *ethclient.Client) error) error {
	var err error
	traceID := uuid.New()

	for rpcIndex, client := range mc.clients() {
		retryCount := 0
		err2 := retry.Do(func() error {
			timeoutCtx, cancel := ensureTimeout(ctx, mc.RetryConfig.Timeout)
			defer cancel()

			if err = op(timeoutCtx, client); err != nil {
				mc.lggr.Warnf("traceID %q: chain %q: op %q: client index %d: retryable error: %v", traceID, mc.chainName, opName, rpcIndex, err)

				return err
			}

			return nil
		},
			retry.Attempts(mc.RetryConfig.Attempts),
			retry.Delay(mc.RetryConfig.Delay),
			retry.OnRetry(func(uint, error) { retryCount++ }),
		)
		if err2 == nil {
			if retryCount > 0 {
				mc.lggr.Infof("traceID %q: chain %q: op %q: client index %d: succeeded after %d retry", traceID, mc.chainName, opName, rpcIndex, retryCount)
			}

			return nil
		}
		mc.lggr.Infof("traceID %q: chain %q: op %q: client index %d: failed, trying next client", traceID, mc.chainName, opName, rpcIndex)
	}

	return errors.Join(err, fmt.Errorf("all backup clients failed for chain %q", mc.chainName))
}

func (mc *MultiClient) dialWithRetry(r RPC) (*ethclient.Client, error) {
	var client *ethclient.Client
	err := retry.Do(func() error {
		dialCtx, cancel := context.WithTimeout(context.Background(), mc.RetryConfig.DialTimeout)
		defer cancel()

		var err error
		client, err = ethclient.DialContext(dialCtx, r.URL)

		return err
	},
		retry.Attempts(mc.RetryConfig.DialAttempts),
		retry.Delay(mc.RetryConfig.DialDelay),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to dial RPC %q: %w", r.Name, err)
	}

	return client, nil
}

// ensureTimeout attaches the configured timeout unless the caller already set
// an earlier deadline.
func ensureTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) < timeout {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, timeout)
}
