package chain_test

import (
	"context"
	"errors"
	"math/big"
	"os"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teocoin/settlement-engine/internal/chain"
	"github.com/teocoin/settlement-engine/internal/config"
	"github.com/teocoin/settlement-engine/internal/domain"
	"github.com/teocoin/settlement-engine/internal/logger"
	"github.com/teocoin/settlement-engine/internal/mocks"
)

const (
	testContract = "0x5FbDB2315678afecb367f032d93F642f64180aa3"
	testRPCURL   = "http://localhost:8545"
	// well-known development key
	testAdminKey = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
)

var (
	studentAddr  = common.HexToAddress("0x70997970C51812dc3A010C7d01b50e0d17dc79C8")
	platformAddr = common.HexToAddress("0x3C44CdDdB6a900fa2b585dd299e03d12FA4293BC")
)

func TestMain(m *testing.M) {
	if err := logger.Initialize(logger.Config{Debug: true}); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func testChainConfig() config.ChainConfig {
	return config.ChainConfig{
		RPCURL:               testRPCURL,
		TokenContractAddress: testContract,
		AdminPrivateKey:      testAdminKey,
		ChainID:              1337,
		MinGasGwei:           25,
		MaxGasGwei:           50,
		GasSafetyMultiplier:  1.1,
		FallbackGasGwei:      30,
		MintRetries:          3,
		MintRetryInterval:    time.Second,
		MintGasLimit:         200000,
		RPCTimeout:           30 * time.Second,
		PaymentTolerance:     0.85,
	}
}

func gweiOf(s string) *big.Int {
	v := decimal.RequireFromString(s).Shift(9)
	return v.BigInt()
}

func teoWei(s string) *big.Int {
	return decimal.RequireFromString(s).Shift(18).BigInt()
}

// immediate returns a fired timer channel so backoff waits do not sleep
func immediate(time.Duration) <-chan time.Time {
	ch := make(chan time.Time, 1)
	ch <- time.Now()
	return ch
}

type fixture struct {
	ctrl   *gomock.Controller
	dialer *mocks.MockEthClientDialer
	client *mocks.MockEthClient
	clock  *mocks.MockClock
}

func newFixture(t *testing.T) *fixture {
	ctrl := gomock.NewController(t)
	return &fixture{
		ctrl:   ctrl,
		dialer: mocks.NewMockEthClientDialer(ctrl),
		client: mocks.NewMockEthClient(ctrl),
		clock:  mocks.NewMockClock(ctrl),
	}
}

func (f *fixture) connected(t *testing.T, cfg config.ChainConfig) chain.Gateway {
	t.Helper()
	f.dialer.EXPECT().Dial(gomock.Any(), cfg.RPCURL).Return(f.client, nil)
	g, err := chain.New(context.Background(), cfg, f.dialer, f.clock)
	require.NoError(t, err)
	require.True(t, g.Connected())
	return g
}

func transferLog(contract, from, to common.Address, value *big.Int) *types.Log {
	return &types.Log{
		Address: contract,
		Topics: []common.Hash{
			crypto.Keccak256Hash([]byte("Transfer(address,address,uint256)")),
			common.BytesToHash(from.Bytes()),
			common.BytesToHash(to.Bytes()),
		},
		Data: common.LeftPadBytes(value.Bytes(), 32),
	}
}

func TestNew_DegradedMode(t *testing.T) {
	f := newFixture(t)
	cfg := testChainConfig()
	ctx := context.Background()

	f.dialer.EXPECT().Dial(gomock.Any(), testRPCURL).Return(nil, errors.New("connection refused")).Times(3)

	g, err := chain.New(ctx, cfg, f.dialer, f.clock)
	require.NoError(t, err)
	assert.False(t, g.Connected())

	_, err = g.GetBalance(ctx, studentAddr.Hex())
	assert.ErrorIs(t, err, domain.ErrChainDown)

	sub, err := g.Submitter()
	require.NoError(t, err)
	_, err = sub.Mint(ctx, studentAddr.Hex(), decimal.NewFromInt(1), "withdraw")
	assert.ErrorIs(t, err, domain.ErrChainDown)

	// signature checks are local and keep working
	hash := chain.DiscountMessageHash(studentAddr, 1, big.NewInt(1), common.HexToAddress(testContract))
	assert.False(t, g.VerifySignature(hash.Bytes(), "0x00", studentAddr.Hex()))
}

func TestNew_LazyRecovery(t *testing.T) {
	f := newFixture(t)
	cfg := testChainConfig()
	ctx := context.Background()

	gomock.InOrder(
		f.dialer.EXPECT().Dial(gomock.Any(), testRPCURL).Return(nil, errors.New("connection refused")),
		f.dialer.EXPECT().Dial(gomock.Any(), testRPCURL).Return(f.client, nil),
	)

	g, err := chain.New(ctx, cfg, f.dialer, f.clock)
	require.NoError(t, err)
	require.False(t, g.Connected())

	f.client.EXPECT().SuggestGasPrice(gomock.Any()).Return(gweiOf("40"), nil)
	assert.Equal(t, gweiOf("44").String(), g.GasPrice(ctx).String())
	assert.True(t, g.Connected())

	f.client.EXPECT().Close()
	g.Close()
	assert.False(t, g.Connected())
}

func TestNew_ReadsChainIDWhenUnset(t *testing.T) {
	f := newFixture(t)
	cfg := testChainConfig()
	cfg.ChainID = 0

	f.dialer.EXPECT().Dial(gomock.Any(), testRPCURL).Return(f.client, nil)
	f.client.EXPECT().ChainID(gomock.Any()).Return(big.NewInt(31337), nil)

	g, err := chain.New(context.Background(), cfg, f.dialer, f.clock)
	require.NoError(t, err)
	assert.True(t, g.Connected())
}

func TestNew_InvalidConfig(t *testing.T) {
	f := newFixture(t)

	cfg := testChainConfig()
	cfg.AdminPrivateKey = "zz"
	_, err := chain.New(context.Background(), cfg, f.dialer, f.clock)
	assert.Error(t, err)

	cfg = testChainConfig()
	cfg.TokenContractAddress = "0x123"
	_, err = chain.New(context.Background(), cfg, f.dialer, f.clock)
	assert.Error(t, err)
}

func TestSubmitter_CapabilityMissing(t *testing.T) {
	f := newFixture(t)
	cfg := testChainConfig()
	cfg.AdminPrivateKey = ""

	g := f.connected(t, cfg)
	_, err := g.Submitter()
	assert.ErrorIs(t, err, domain.ErrCapabilityMissing)
}

func TestGasPrice(t *testing.T) {
	tests := []struct {
		name      string
		suggested *big.Int
		err       error
		expected  *big.Int
	}{
		{name: "below floor is clamped to 25 gwei", suggested: gweiOf("10"), expected: gweiOf("27.5")},
		{name: "inside band", suggested: gweiOf("40"), expected: gweiOf("44")},
		{name: "above ceiling is clamped to 50 gwei", suggested: gweiOf("120"), expected: gweiOf("55")},
		{name: "rpc failure uses fixed fallback", err: errors.New("timeout"), expected: gweiOf("30")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			g := f.connected(t, testChainConfig())

			f.client.EXPECT().SuggestGasPrice(gomock.Any()).Return(tt.suggested, tt.err)
			if tt.err != nil {
				f.client.EXPECT().Close()
			}
			assert.Equal(t, tt.expected.String(), g.GasPrice(context.Background()).String())
			assert.Equal(t, tt.err == nil, g.Connected())
		})
	}
}

func TestGetBalance(t *testing.T) {
	f := newFixture(t)
	g := f.connected(t, testChainConfig())

	contract := common.HexToAddress(testContract)
	f.client.EXPECT().
		CallContract(gomock.Any(), gomock.Any(), nil).
		DoAndReturn(func(_ context.Context, msg ethereum.CallMsg, _ *big.Int) ([]byte, error) {
			assert.Equal(t, &contract, msg.To)
			// balanceOf(address) selector
			assert.Equal(t, []byte{0x70, 0xa0, 0x82, 0x31}, msg.Data[:4])
			return common.LeftPadBytes(teoWei("12.345").Bytes(), 32), nil
		})

	balance, err := g.GetBalance(context.Background(), studentAddr.Hex())
	require.NoError(t, err)
	assert.Equal(t, "12.345", balance.String())

	_, err = g.GetBalance(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrWalletMissing)
}

func TestMint_FirstAttempt(t *testing.T) {
	f := newFixture(t)
	g := f.connected(t, testChainConfig())
	sub, err := g.Submitter()
	require.NoError(t, err)

	adminKey, err := crypto.HexToECDSA(testAdminKey)
	require.NoError(t, err)
	admin := crypto.PubkeyToAddress(adminKey.PublicKey)

	f.client.EXPECT().PendingNonceAt(gomock.Any(), admin).Return(uint64(7), nil)
	f.client.EXPECT().SuggestGasPrice(gomock.Any()).Return(gweiOf("40"), nil)

	var sent *types.Transaction
	f.client.EXPECT().SendTransaction(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, tx *types.Transaction) error {
			sent = tx
			return nil
		})

	hash, err := sub.Mint(context.Background(), studentAddr.Hex(), decimal.RequireFromString("2.5"), "withdraw")
	require.NoError(t, err)
	require.NotNil(t, sent)

	assert.Equal(t, sent.Hash().Hex(), hash)
	assert.Equal(t, uint64(7), sent.Nonce())
	assert.Equal(t, gweiOf("44").String(), sent.GasPrice().String())
	assert.Equal(t, uint64(200000), sent.Gas())
	assert.Equal(t, common.HexToAddress(testContract), *sent.To())
	assert.Equal(t, uint8(types.LegacyTxType), sent.Type())

	from, err := types.Sender(types.LatestSignerForChainID(big.NewInt(1337)), sent)
	require.NoError(t, err)
	assert.Equal(t, admin, from)

	// mint(address,uint256)
	assert.Equal(t, []byte{0x40, 0xc1, 0x0f, 0x19}, sent.Data()[:4])
	assert.Equal(t, common.LeftPadBytes(studentAddr.Bytes(), 32), sent.Data()[4:36])
	assert.Equal(t, 0, new(big.Int).SetBytes(sent.Data()[36:68]).Cmp(teoWei("2.5")))
}

func TestMint_RetriesEscalateGasAndRefreshNonce(t *testing.T) {
	f := newFixture(t)
	g := f.connected(t, testChainConfig())
	sub, err := g.Submitter()
	require.NoError(t, err)

	f.client.EXPECT().SuggestGasPrice(gomock.Any()).Return(gweiOf("40"), nil).Times(3)
	gomock.InOrder(
		f.client.EXPECT().PendingNonceAt(gomock.Any(), gomock.Any()).Return(uint64(1), nil),
		f.client.EXPECT().PendingNonceAt(gomock.Any(), gomock.Any()).Return(uint64(2), nil),
		f.client.EXPECT().PendingNonceAt(gomock.Any(), gomock.Any()).Return(uint64(2), nil),
	)
	gomock.InOrder(
		f.clock.EXPECT().After(time.Second).DoAndReturn(immediate),
		f.clock.EXPECT().After(2*time.Second).DoAndReturn(immediate),
	)

	var prices []string
	var nonces []uint64
	f.client.EXPECT().SendTransaction(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, tx *types.Transaction) error {
			prices = append(prices, tx.GasPrice().String())
			nonces = append(nonces, tx.Nonce())
			if len(prices) < 3 {
				return errors.New("replacement transaction underpriced")
			}
			return nil
		}).Times(3)

	hash, err := sub.Mint(context.Background(), studentAddr.Hex(), decimal.NewFromInt(1), "reward")
	require.NoError(t, err)
	assert.NotEmpty(t, hash)

	assert.Equal(t, []string{"44000000000", "52800000000", "63360000000"}, prices)
	assert.Equal(t, []uint64{1, 2, 2}, nonces)
}

func TestMint_Exhausted(t *testing.T) {
	f := newFixture(t)
	g := f.connected(t, testChainConfig())
	sub, err := g.Submitter()
	require.NoError(t, err)

	f.client.EXPECT().SuggestGasPrice(gomock.Any()).Return(gweiOf("40"), nil).Times(4)
	f.client.EXPECT().PendingNonceAt(gomock.Any(), gomock.Any()).Return(uint64(3), nil).Times(4)
	f.client.EXPECT().SendTransaction(gomock.Any(), gomock.Any()).Return(errors.New("nonce too low")).Times(4)
	gomock.InOrder(
		f.clock.EXPECT().After(time.Second).DoAndReturn(immediate),
		f.clock.EXPECT().After(2*time.Second).DoAndReturn(immediate),
		f.clock.EXPECT().After(4*time.Second).DoAndReturn(immediate),
	)

	// a cancelled caller does not abort the submission loop
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = sub.Mint(ctx, studentAddr.Hex(), decimal.NewFromInt(1), "withdraw")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrMintExhausted)
	assert.Equal(t, domain.CodeMintExhausted, domain.CodeOf(err))
}

func TestMint_InvalidInput(t *testing.T) {
	f := newFixture(t)
	g := f.connected(t, testChainConfig())
	sub, err := g.Submitter()
	require.NoError(t, err)

	_, err = sub.Mint(context.Background(), "0xnope", decimal.NewFromInt(1), "withdraw")
	assert.ErrorIs(t, err, domain.ErrWalletMissing)

	_, err = sub.Mint(context.Background(), studentAddr.Hex(), decimal.RequireFromString("0.000000001"), "withdraw")
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)

	_, err = sub.Mint(context.Background(), studentAddr.Hex(), decimal.Zero, "withdraw")
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)
}

func TestVerifyPayment(t *testing.T) {
	txHash := common.HexToHash("0xaa")
	contract := common.HexToAddress(testContract)
	other := common.HexToAddress("0x90F79bf6EB2c4f870365E785982E1f101E93b906")

	tests := []struct {
		name     string
		receipt  *types.Receipt
		err      error
		expected bool
		wantErr  bool
	}{
		{
			name: "exact amount",
			receipt: &types.Receipt{Status: types.ReceiptStatusSuccessful, Logs: []*types.Log{
				transferLog(contract, studentAddr, platformAddr, teoWei("10")),
			}},
			expected: true,
		},
		{
			name: "within 15% tolerance",
			receipt: &types.Receipt{Status: types.ReceiptStatusSuccessful, Logs: []*types.Log{
				transferLog(contract, studentAddr, platformAddr, teoWei("8.5")),
			}},
			expected: true,
		},
		{
			name: "below tolerance",
			receipt: &types.Receipt{Status: types.ReceiptStatusSuccessful, Logs: []*types.Log{
				transferLog(contract, studentAddr, platformAddr, teoWei("8.49")),
			}},
			expected: false,
		},
		{
			name: "matching log among unrelated ones",
			receipt: &types.Receipt{Status: types.ReceiptStatusSuccessful, Logs: []*types.Log{
				nil,
				transferLog(other, studentAddr, platformAddr, teoWei("10")),
				transferLog(contract, other, platformAddr, teoWei("10")),
				transferLog(contract, studentAddr, platformAddr, teoWei("9")),
			}},
			expected: true,
		},
		{
			name: "wrong sender",
			receipt: &types.Receipt{Status: types.ReceiptStatusSuccessful, Logs: []*types.Log{
				transferLog(contract, other, platformAddr, teoWei("10")),
			}},
			expected: false,
		},
		{
			name: "wrong recipient",
			receipt: &types.Receipt{Status: types.ReceiptStatusSuccessful, Logs: []*types.Log{
				transferLog(contract, studentAddr, other, teoWei("10")),
			}},
			expected: false,
		},
		{
			name: "other token contract",
			receipt: &types.Receipt{Status: types.ReceiptStatusSuccessful, Logs: []*types.Log{
				transferLog(other, studentAddr, platformAddr, teoWei("10")),
			}},
			expected: false,
		},
		{
			name: "reverted transaction",
			receipt: &types.Receipt{Status: types.ReceiptStatusFailed, Logs: []*types.Log{
				transferLog(contract, studentAddr, platformAddr, teoWei("10")),
			}},
			expected: false,
		},
		{
			name:     "receipt not found",
			err:      ethereum.NotFound,
			expected: false,
		},
		{
			name:    "rpc failure",
			err:     errors.New("i/o timeout"),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			g := f.connected(t, testChainConfig())

			f.client.EXPECT().TransactionReceipt(gomock.Any(), txHash).Return(tt.receipt, tt.err)
			if tt.wantErr {
				f.client.EXPECT().Close()
			}

			ok, err := g.VerifyPayment(context.Background(), txHash.Hex(), studentAddr.Hex(), platformAddr.Hex(), decimal.NewFromInt(10))
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrChainDown)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, ok)
		})
	}
}

func TestTransferredAmount(t *testing.T) {
	txHash := common.HexToHash("0xbb")
	contract := common.HexToAddress(testContract)
	other := common.HexToAddress("0x90F79bf6EB2c4f870365E785982E1f101E93b906")

	tests := []struct {
		name     string
		receipt  *types.Receipt
		err      error
		expected string
	}{
		{
			name: "single transfer",
			receipt: &types.Receipt{Status: types.ReceiptStatusSuccessful, Logs: []*types.Log{
				transferLog(contract, studentAddr, platformAddr, teoWei("85")),
			}},
			expected: "85",
		},
		{
			name: "transfers are summed and unrelated ones skipped",
			receipt: &types.Receipt{Status: types.ReceiptStatusSuccessful, Logs: []*types.Log{
				transferLog(contract, studentAddr, platformAddr, teoWei("1.25")),
				transferLog(other, studentAddr, platformAddr, teoWei("50")),
				transferLog(contract, studentAddr, other, teoWei("50")),
				transferLog(contract, studentAddr, platformAddr, teoWei("2")),
			}},
			expected: "3.25",
		},
		{
			name: "reverted transaction",
			receipt: &types.Receipt{Status: types.ReceiptStatusFailed, Logs: []*types.Log{
				transferLog(contract, studentAddr, platformAddr, teoWei("10")),
			}},
			expected: "0",
		},
		{
			name:     "receipt not found",
			err:      ethereum.NotFound,
			expected: "0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			g := f.connected(t, testChainConfig())

			f.client.EXPECT().TransactionReceipt(gomock.Any(), txHash).Return(tt.receipt, tt.err)

			amount, err := g.TransferredAmount(context.Background(), txHash.Hex(), studentAddr.Hex(), platformAddr.Hex())
			require.NoError(t, err)
			assert.True(t, decimal.RequireFromString(tt.expected).Equal(amount), "got %s", amount)
		})
	}

	f := newFixture(t)
	g := f.connected(t, testChainConfig())
	amount, err := g.TransferredAmount(context.Background(), "0x1234", studentAddr.Hex(), platformAddr.Hex())
	require.NoError(t, err)
	assert.True(t, amount.IsZero())
}

func TestTransportFailure_Redials(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	g := f.connected(t, testChainConfig())

	gomock.InOrder(
		f.client.EXPECT().CallContract(gomock.Any(), gomock.Any(), nil).Return(nil, errors.New("connection reset by peer")),
		f.client.EXPECT().Close(),
	)
	_, err := g.GetBalance(ctx, studentAddr.Hex())
	assert.ErrorIs(t, err, domain.ErrChainDown)
	assert.False(t, g.Connected())

	// the next call re-dials and recovers
	f.dialer.EXPECT().Dial(gomock.Any(), testRPCURL).Return(f.client, nil)
	f.client.EXPECT().CallContract(gomock.Any(), gomock.Any(), nil).Return(common.LeftPadBytes(teoWei("4").Bytes(), 32), nil)
	balance, err := g.GetBalance(ctx, studentAddr.Hex())
	require.NoError(t, err)
	assert.Equal(t, "4", balance.String())
	assert.True(t, g.Connected())
}

func TestTransportFailure_RedialFails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	g := f.connected(t, testChainConfig())

	f.client.EXPECT().TransactionReceipt(gomock.Any(), gomock.Any()).Return(nil, errors.New("i/o timeout"))
	f.client.EXPECT().Close()
	_, err := g.TransactionStatus(ctx, common.HexToHash("0xcc").Hex())
	assert.ErrorIs(t, err, domain.ErrChainDown)

	// degraded until the endpoint answers again
	f.dialer.EXPECT().Dial(gomock.Any(), testRPCURL).Return(nil, errors.New("connection refused"))
	_, err = g.GetBalance(ctx, studentAddr.Hex())
	assert.ErrorIs(t, err, domain.ErrChainDown)
	assert.False(t, g.Connected())
}

func TestVerifyPayment_MalformedInput(t *testing.T) {
	f := newFixture(t)
	g := f.connected(t, testChainConfig())
	ctx := context.Background()

	ok, err := g.VerifyPayment(ctx, "0x1234", studentAddr.Hex(), platformAddr.Hex(), decimal.NewFromInt(1))
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = g.VerifyPayment(ctx, common.HexToHash("0xaa").Hex(), "bad", platformAddr.Hex(), decimal.NewFromInt(1))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTransactionStatus(t *testing.T) {
	txHash := common.HexToHash("0xbb")

	tests := []struct {
		name     string
		receipt  *types.Receipt
		err      error
		expected chain.TxStatus
	}{
		{name: "not mined", err: ethereum.NotFound, expected: chain.TxStatusPending},
		{name: "success", receipt: &types.Receipt{Status: types.ReceiptStatusSuccessful}, expected: chain.TxStatusSuccess},
		{name: "reverted", receipt: &types.Receipt{Status: types.ReceiptStatusFailed}, expected: chain.TxStatusReverted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			g := f.connected(t, testChainConfig())

			f.client.EXPECT().TransactionReceipt(gomock.Any(), txHash).Return(tt.receipt, tt.err)

			status, err := g.TransactionStatus(context.Background(), txHash.Hex())
			require.NoError(t, err)
			assert.Equal(t, tt.expected, status)
		})
	}
}

func TestRPCThrottle(t *testing.T) {
	f := newFixture(t)
	cfg := testChainConfig()
	cfg.RPCRequestsPerSecond = 0.001
	cfg.RPCBurst = 1
	// the handshake spends the only token
	g := f.connected(t, cfg)

	_, err := g.GetBalance(context.Background(), studentAddr.Hex())
	assert.ErrorIs(t, err, domain.ErrChainDown)

	price := g.GasPrice(context.Background())
	assert.Equal(t, gweiOf("30").String(), price.String())
}
