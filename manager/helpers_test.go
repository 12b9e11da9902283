package manager

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"

	"github.com/hashmint/contract-manager/chain"
	"github.com/hashmint/contract-manager/chain/connection"
	"github.com/hashmint/contract-manager/pkg/logger"
	"github.com/hashmint/contract-manager/registry"
)

var testEndpoint = chain.Endpoint{
	ChainID: 137,
	RPCURL:  "http://localhost:8545",
}

// fakeClient is an in-memory OnchainClient. Submitted transactions confirm
// immediately with the prepared receipt; networkCalls counts every method so
// guard tests can assert that no network traffic happened.
type fakeClient struct {
	networkCalls int

	sentTxs    []*types.Transaction
	sendErr    error
	receipt    *types.Receipt
	receiptErr error

	callResult []byte
	callErr    error
}

func (c *fakeClient) CodeAt(_ context.Context, _ common.Address, _ *big.Int) ([]byte, error) {
	c.networkCalls++
	return []byte{0x01}, nil
}

func (c *fakeClient) CallContract(_ context.Context, _ ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	c.networkCalls++
	return c.callResult, c.callErr
}

func (c *fakeClient) HeaderByNumber(_ context.Context, _ *big.Int) (*types.Header, error) {
	c.networkCalls++
	return &types.Header{Number: big.NewInt(1), BaseFee: big.NewInt(1_000_000_000)}, nil
}

func (c *fakeClient) PendingCodeAt(_ context.Context, _ common.Address) ([]byte, error) {
	c.networkCalls++
	return []byte{0x01}, nil
}

func (c *fakeClient) PendingNonceAt(_ context.Context, _ common.Address) (uint64, error) {
	c.networkCalls++
	return uint64(len(c.sentTxs)), nil
}

func (c *fakeClient) SuggestGasPrice(_ context.Context) (*big.Int, error) {
	c.networkCalls++
	return big.NewInt(1_000_000_000), nil
}

func (c *fakeClient) SuggestGasTipCap(_ context.Context) (*big.Int, error) {
	c.networkCalls++
	return big.NewInt(1_000_000_000), nil
}

func (c *fakeClient) EstimateGas(_ context.Context, _ ethereum.CallMsg) (uint64, error) {
	c.networkCalls++
	return 100_000, nil
}

func (c *fakeClient) SendTransaction(_ context.Context, tx *types.Transaction) error {
	c.networkCalls++
	if c.sendErr != nil {
		return c.sendErr
	}
	c.sentTxs = append(c.sentTxs, tx)

	return nil
}

func (c *fakeClient) FilterLogs(_ context.Context, _ ethereum.FilterQuery) ([]types.Log, error) {
	c.networkCalls++
	return nil, nil
}

func (c *fakeClient) SubscribeFilterLogs(_ context.Context, _ ethereum.FilterQuery, _ chan<- types.Log) (ethereum.Subscription, error) {
	return nil, errors.New("subscriptions are not supported")
}

func (c *fakeClient) TransactionReceipt(_ context.Context, txHash common.Hash) (*types.Receipt, error) {
	c.networkCalls++
	if c.receiptErr != nil {
		return nil, c.receiptErr
	}
	if c.receipt == nil {
		return nil, ethereum.NotFound
	}

	out := *c.receipt
	out.TxHash = txHash

	return &out, nil
}

func (c *fakeClient) BalanceAt(_ context.Context, _ common.Address, _ *big.Int) (*big.Int, error) {
	c.networkCalls++
	return big.NewInt(1_000_000_000_000_000_000), nil
}

func (c *fakeClient) NonceAt(_ context.Context, _ common.Address, _ *big.Int) (uint64, error) {
	c.networkCalls++
	return uint64(len(c.sentTxs)), nil
}

// fakeConn is a fixed-endpoint connection over a fakeClient, signing with a
// throwaway key.
type fakeConn struct {
	client  *fakeClient
	key     *ecdsa.PrivateKey
	from    common.Address
	chainID uint64
}

var _ connection.Connection = (*fakeConn)(nil)

func newFakeConn(t *testing.T, chainID uint64) *fakeConn {
	t.Helper()

	key, err := crypto.GenerateKey()
	require.NoError(t, err)

	return &fakeConn{
		client:  &fakeClient{},
		key:     key,
		from:    crypto.PubkeyToAddress(key.PublicKey),
		chainID: chainID,
	}
}

func (c *fakeConn) Client() connection.OnchainClient { return c.client }
func (c *fakeConn) From() common.Address             { return c.from }

func (c *fakeConn) ChainID(_ context.Context) (uint64, error) {
	return c.chainID, nil
}

func (c *fakeConn) Transactor(ctx context.Context) (*bind.TransactOpts, error) {
	opts, err := bind.NewKeyedTransactorWithChainID(c.key, new(big.Int).SetUint64(c.chainID))
	if err != nil {
		return nil, err
	}
	opts.Context = ctx

	return opts, nil
}

// successReceipt returns a minimal confirmed receipt carrying the given logs.
func successReceipt(logs ...*types.Log) *types.Receipt {
	return &types.Receipt{
		Status:      types.ReceiptStatusSuccessful,
		BlockNumber: big.NewInt(42),
		Logs:        logs,
	}
}

// eventLog hand-encodes a log for the named event: indexed args become
// topics after topic0, non-indexed args are packed into the data segment.
func eventLog(t *testing.T, contractABI *abi.ABI, eventName string, indexed []common.Hash, nonIndexed ...any) *types.Log {
	t.Helper()

	ev, ok := contractABI.Events[eventName]
	require.True(t, ok, "event %s not in ABI", eventName)

	data, err := ev.Inputs.NonIndexed().Pack(nonIndexed...)
	require.NoError(t, err)

	return &types.Log{
		Topics: append([]common.Hash{ev.ID}, indexed...),
		Data:   data,
	}
}

func addressTopic(addr common.Address) common.Hash {
	return common.BytesToHash(addr.Bytes())
}

func bigTopic(v *big.Int) common.Hash {
	return common.BigToHash(v)
}

// newTestManager builds a Manager over a fakeConn and a memory registry,
// seeded with the target network for the connection's signer.
func newTestManager(t *testing.T, policy Policy, seed func(*registry.MemoryService, common.Address)) (*Manager, *fakeConn, *registry.MemoryService) {
	t.Helper()

	conn := newFakeConn(t, testEndpoint.ChainID)
	reg := registry.NewMemoryService()
	network := testEndpoint
	reg.Seed(conn.from, registry.Config{Network: &network})
	if seed != nil {
		seed(reg, conn.from)
	}

	m, err := New(t.Context(), Params{
		Connection: conn,
		Registry:   reg,
		Policy:     policy,
		Logger:     logger.Test(t),
	})
	require.NoError(t, err)

	return m, conn, reg
}

func nftPolicy(t *testing.T) Policy {
	t.Helper()

	policy, err := NFTPolicy()
	require.NoError(t, err)

	return policy
}

func membershipPolicy(t *testing.T) Policy {
	t.Helper()

	policy, err := MembershipPolicy()
	require.NoError(t, err)

	return policy
}
