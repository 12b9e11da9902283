package manager

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/hashmint/contract-manager/chain"
	"github.com/hashmint/contract-manager/contracts"
	"github.com/hashmint/contract-manager/pkg/logger"
	"github.com/hashmint/contract-manager/registry"
)

var (
	testFactoryAddr  = common.HexToAddress("0xDe0B295669a9FD93d5F28D9Ec85E40f4cb697BAe")
	testContractAddr = common.HexToAddress("0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed")
)

func Test_New_AdoptsRegistryState(t *testing.T) {
	t.Parallel()

	m, _, _ := newTestManager(t, nftPolicy(t), func(reg *registry.MemoryService, signer common.Address) {
		network := testEndpoint
		factory := testFactoryAddr
		reg.Seed(signer, registry.Config{
			Network:           &network,
			FactoryAddress:    &factory,
			MetadataURL:       "https://meta.example.com",
			DeployedAddresses: []common.Address{testContractAddr},
		})
	})

	factory, err := m.FactoryAddress()
	require.NoError(t, err)
	assert.Equal(t, testFactoryAddr, factory)

	active, err := m.ContractAddress()
	require.NoError(t, err)
	assert.Equal(t, testContractAddr, active)

	assert.Equal(t, "https://meta.example.com", m.MetadataURL())
	assert.Equal(t, testEndpoint, m.Network())
	assert.Equal(t, contracts.FamilyNFT, m.Family())
}

func Test_New_RequiresNetwork(t *testing.T) {
	t.Parallel()

	conn := newFakeConn(t, testEndpoint.ChainID)

	_, err := New(t.Context(), Params{
		Connection: conn,
		Registry:   registry.NewMemoryService(),
		Policy:     nftPolicy(t),
		Logger:     logger.Test(t),
	})
	require.True(t, IsCode(err, CodeInvalidParameter))
	assert.Contains(t, err.Error(), "no target network")
}

func Test_New_ExplicitEndpointWins(t *testing.T) {
	t.Parallel()

	conn := newFakeConn(t, testEndpoint.ChainID)

	// The registry has never seen the signer; the explicit endpoint alone
	// is enough to initialize.
	endpoint := testEndpoint
	m, err := New(t.Context(), Params{
		Connection: conn,
		Registry:   registry.NewMemoryService(),
		Policy:     nftPolicy(t),
		Logger:     logger.Test(t),
		Endpoint:   &endpoint,
	})
	require.NoError(t, err)
	assert.Equal(t, testEndpoint, m.Network())
}

func Test_New_EndpointRegistryDisagree(t *testing.T) {
	t.Parallel()

	conn := newFakeConn(t, testEndpoint.ChainID)
	reg := registry.NewMemoryService()
	recorded := chain.Endpoint{ChainID: 1, RPCURL: "http://localhost:8545"}
	reg.Seed(conn.from, registry.Config{Network: &recorded})

	endpoint := testEndpoint
	_, err := New(t.Context(), Params{
		Connection: conn,
		Registry:   reg,
		Policy:     nftPolicy(t),
		Logger:     logger.Test(t),
		Endpoint:   &endpoint,
	})
	require.True(t, IsCode(err, CodeInvalidParameter))
	assert.Contains(t, err.Error(), "registry records chain 1")
}

func Test_New_ValidatesParams(t *testing.T) {
	t.Parallel()

	_, err := New(t.Context(), Params{})
	require.True(t, IsCode(err, CodeInvalidParameter))
}

func Test_SetContractAddress(t *testing.T) {
	t.Parallel()

	m, _, _ := newTestManager(t, nftPolicy(t), nil)

	// Lowercase input normalizes to the checksum form.
	require.NoError(t, m.SetContractAddress("0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed"))

	active, err := m.ContractAddress()
	require.NoError(t, err)
	assert.Equal(t, testContractAddr, active)

	// Selecting the same contract again does not duplicate it.
	require.NoError(t, m.SetContractAddress(testContractAddr.Hex()))
	assert.Equal(t, []common.Address{testContractAddr}, m.AllDeployedAddresses())

	err = m.SetContractAddress("not-an-address")
	assert.True(t, IsCode(err, CodeInvalidAddress))
}

func Test_AllDeployedAddresses_ReturnsCopy(t *testing.T) {
	t.Parallel()

	m, _, _ := newTestManager(t, nftPolicy(t), nil)
	require.NoError(t, m.SetContractAddress(testContractAddr.Hex()))

	got := m.AllDeployedAddresses()
	got[0] = common.Address{}
	assert.Equal(t, []common.Address{testContractAddr}, m.AllDeployedAddresses())
}

func Test_Accessors_EmptyState(t *testing.T) {
	t.Parallel()

	m, _, _ := newTestManager(t, nftPolicy(t), nil)

	_, err := m.FactoryAddress()
	assert.True(t, IsCode(err, CodeFactoryNotDeployed))

	_, err = m.ContractAddress()
	assert.True(t, IsCode(err, CodeNoContractAddress))

	// Reads and writes without an active contract carry distinct codes.
	_, err = m.Name(t.Context())
	assert.True(t, IsCode(err, CodeNoContractAddress))

	_, err = m.Mint(t.Context(), holderAddr, common.Hash{}, "ipfs://1")
	assert.True(t, IsCode(err, CodeContractNotDeployed))
}

func Test_TransferOwner(t *testing.T) {
	t.Parallel()

	policy := nftPolicy(t)
	conn := newFakeConn(t, testEndpoint.ChainID)
	reg := registry.NewMemoryService()
	network := testEndpoint
	reg.Seed(conn.from, registry.Config{
		Network:           &network,
		DeployedAddresses: []common.Address{testContractAddr},
	})

	lggr, logs := logger.TestObserved(t, zapcore.WarnLevel)
	m, err := New(t.Context(), Params{
		Connection: conn,
		Registry:   reg,
		Policy:     policy,
		Logger:     lggr,
	})
	require.NoError(t, err)

	conn.client.receipt = successReceipt(eventLog(t, policy.ChildABI, contracts.OwnershipTransferredEvent,
		[]common.Hash{addressTopic(conn.from), addressTopic(otherAddr)}))

	txHash, err := m.TransferOwner(t.Context(), otherAddr)
	require.NoError(t, err)
	assert.NotEqual(t, common.Hash{}, txHash)
	assert.Empty(t, logs.All())

	require.Len(t, reg.Transfers, 1)
	assert.Equal(t, otherAddr, reg.Transfers[0].NewOwner)
	assert.Equal(t, testContractAddr, reg.Transfers[0].ContractAddress)
	assert.Equal(t, contracts.FamilyNFT, reg.Transfers[0].Family)
}

func Test_TransferOwner_VerificationWarns(t *testing.T) {
	t.Parallel()

	conn := newFakeConn(t, testEndpoint.ChainID)
	reg := registry.NewMemoryService()
	network := testEndpoint
	reg.Seed(conn.from, registry.Config{
		Network:           &network,
		DeployedAddresses: []common.Address{testContractAddr},
	})

	lggr, logs := logger.TestObserved(t, zapcore.WarnLevel)
	m, err := New(t.Context(), Params{
		Connection: conn,
		Registry:   reg,
		Policy:     nftPolicy(t),
		Logger:     lggr,
	})
	require.NoError(t, err)

	// No ownership event in the receipt: the transfer still succeeds, the
	// missing event is only a warning.
	conn.client.receipt = successReceipt()

	_, err = m.TransferOwner(t.Context(), otherAddr)
	require.NoError(t, err)
	require.Len(t, logs.All(), 1)
	assert.Contains(t, logs.All()[0].Message, "verification failed")
}

func Test_TransferOwner_RejectsZeroOwner(t *testing.T) {
	t.Parallel()

	m, conn, _ := newTestManager(t, nftPolicy(t), nil)

	_, err := m.TransferOwner(t.Context(), common.Address{})
	assert.True(t, IsCode(err, CodeInvalidAddress))
	assert.Zero(t, conn.client.networkCalls)
}
