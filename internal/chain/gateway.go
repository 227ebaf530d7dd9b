package chain

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/teocoin/settlement-engine/internal/adapter"
	"github.com/teocoin/settlement-engine/internal/config"
	"github.com/teocoin/settlement-engine/internal/domain"
	"github.com/teocoin/settlement-engine/internal/logger"
	"github.com/teocoin/settlement-engine/internal/metrics"
)

var (
	errInvalidSignatureLength = errors.New("signature must be 65 bytes")

	gwei = big.NewInt(1_000_000_000)
)

// TxStatus is the on-chain outcome of a submitted transaction
type TxStatus string

const (
	// TxStatusPending means no receipt exists yet
	TxStatusPending  TxStatus = "pending"
	TxStatusSuccess  TxStatus = "success"
	TxStatusReverted TxStatus = "reverted"
)

// Reader is the read capability of the gateway. It exists in degraded mode too,
// where calls that need the RPC endpoint fail fast with ERR_CHAIN_DOWN.
//
//go:generate mockgen -source=gateway.go -destination=../mocks/chain.go -package=mocks -mock_names=Reader=MockChainReader,Submitter=MockChainSubmitter,Gateway=MockChainGateway
type Reader interface {
	SignatureVerifier

	// Connected reports whether an RPC connection is currently established
	Connected() bool

	// GetBalance reads the ERC-20 balance of address in TEO
	GetBalance(ctx context.Context, address string) (decimal.Decimal, error)

	// GasPrice returns the clamped network gas price with the safety margin applied
	GasPrice(ctx context.Context) *big.Int

	// VerifyPayment reports whether txHash succeeded and transferred at least
	// expected x tolerance tokens from -> to. Mismatches and unknown transactions yield false.
	VerifyPayment(ctx context.Context, txHash, from, to string, expected decimal.Decimal) (bool, error)

	// TransferredAmount sums the token transfers from -> to in a successful txHash.
	// Unknown, reverted and unrelated transactions yield zero.
	TransferredAmount(ctx context.Context, txHash, from, to string) (decimal.Decimal, error)

	// TransactionStatus reads the receipt status of a submitted transaction
	TransactionStatus(ctx context.Context, txHash string) (TxStatus, error)
}

// Submitter is the write capability. It is only present when an admin key is configured.
type Submitter interface {
	// Mint submits an admin-signed mint and returns the transaction hash
	Mint(ctx context.Context, to string, amount decimal.Decimal, reason string) (string, error)
}

// Gateway is the process-wide chain client
type Gateway interface {
	Reader

	// Submitter returns the submit capability or ERR_CAPABILITY_MISSING
	Submitter() (Submitter, error)

	// Close releases the RPC connection
	Close()
}

type gateway struct {
	cfg       config.ChainConfig
	dialer    adapter.EthClientDialer
	clock     adapter.Clock
	contract  common.Address
	tolerance decimal.Decimal
	limiter   *rate.Limiter

	// admin key material never leaves this package
	key   *ecdsa.PrivateKey
	admin common.Address

	mu      sync.RWMutex
	client  adapter.EthClient
	chainID *big.Int
}

// New creates the gateway and attempts the initial handshake. A failed handshake
// leaves the gateway disconnected; the next call that needs RPC re-dials.
func New(ctx context.Context, cfg config.ChainConfig, dialer adapter.EthClientDialer, clock adapter.Clock) (Gateway, error) {
	if cfg.TokenContractAddress != "" && !common.IsHexAddress(cfg.TokenContractAddress) {
		return nil, fmt.Errorf("invalid token contract address: %s", cfg.TokenContractAddress)
	}

	g := &gateway{
		cfg:       cfg,
		dialer:    dialer,
		clock:     clock,
		contract:  common.HexToAddress(cfg.TokenContractAddress),
		tolerance: decimal.NewFromFloat(cfg.PaymentTolerance),
	}
	if cfg.PaymentTolerance <= 0 {
		g.tolerance = decimal.RequireFromString(domain.DefaultPaymentTolerance)
	}
	if cfg.RPCRequestsPerSecond > 0 {
		burst := max(cfg.RPCBurst, 1)
		g.limiter = rate.NewLimiter(rate.Limit(cfg.RPCRequestsPerSecond), burst)
	}

	if cfg.AdminPrivateKey != "" {
		key, err := crypto.HexToECDSA(strings.TrimPrefix(strings.TrimSpace(cfg.AdminPrivateKey), "0x"))
		if err != nil {
			return nil, fmt.Errorf("invalid admin private key: %w", err)
		}
		g.key = key
		g.admin = crypto.PubkeyToAddress(key.PublicKey)
	}

	if _, _, err := g.conn(ctx); err != nil {
		logger.WarnCtx(ctx, "Chain gateway starting disconnected", zap.Error(err))
	}
	return g, nil
}

// rpcContext waits for an RPC token, then bounds the call by the configured timeout
func (g *gateway) rpcContext(ctx context.Context) (context.Context, context.CancelFunc, error) {
	timeout := g.cfg.RPCTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	rctx, cancel := context.WithTimeout(ctx, timeout)
	if g.limiter != nil {
		start := time.Now()
		if err := g.limiter.Wait(rctx); err != nil {
			cancel()
			return nil, nil, domain.ErrChainDown.Withf("rpc throttle: %v", err)
		}
		metrics.RPCThrottleWait.Observe(time.Since(start).Seconds())
	}
	return rctx, cancel, nil
}

// conn returns the live client, re-dialing when disconnected
func (g *gateway) conn(ctx context.Context) (adapter.EthClient, *big.Int, error) {
	g.mu.RLock()
	client, chainID := g.client, g.chainID
	g.mu.RUnlock()
	if client != nil {
		return client, chainID, nil
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.client != nil {
		return g.client, g.chainID, nil
	}
	if g.cfg.RPCURL == "" {
		return nil, nil, domain.ErrChainDown.Withf("no rpc url configured")
	}

	rctx, cancel, err := g.rpcContext(ctx)
	if err != nil {
		return nil, nil, err
	}
	defer cancel()

	start := time.Now()
	client, err = g.dialer.Dial(rctx, g.cfg.RPCURL)
	metrics.ObserveRPC("dial", start)
	if err != nil {
		return nil, nil, domain.ErrChainDown.Wrap(err)
	}

	chainID = big.NewInt(g.cfg.ChainID)
	if g.cfg.ChainID == 0 {
		chainID, err = client.ChainID(rctx)
		if err != nil {
			client.Close()
			return nil, nil, domain.ErrChainDown.Wrap(err)
		}
	}

	g.client, g.chainID = client, chainID
	logger.InfoCtx(ctx, "Chain gateway connected", zap.String("chainID", chainID.String()))
	return client, chainID, nil
}

// dropOnTransportError discards client after a failed round trip so the next call
// re-dials. JSON-RPC error replies and caller cancellation keep the connection.
func (g *gateway) dropOnTransportError(ctx context.Context, client adapter.EthClient, op string, err error) error {
	var rpcErr rpc.Error
	if errors.As(err, &rpcErr) || ctx.Err() != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	g.mu.Lock()
	if g.client == client {
		g.client.Close()
		g.client = nil
	}
	g.mu.Unlock()

	logger.WarnCtx(ctx, "Chain gateway lost its connection", zap.String("op", op), zap.Error(err))
	return domain.ErrChainDown.Wrap(err).With("op", op)
}

func (g *gateway) Connected() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.client != nil
}

func (g *gateway) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.client != nil {
		g.client.Close()
		g.client = nil
	}
}

func (g *gateway) Submitter() (Submitter, error) {
	if g.key == nil {
		return nil, domain.ErrCapabilityMissing
	}
	return &submitter{g: g}, nil
}

func (g *gateway) VerifySignature(messageHash []byte, signature string, expectedSigner string) bool {
	return VerifySignature(messageHash, signature, expectedSigner)
}

func (g *gateway) GetBalance(ctx context.Context, address string) (decimal.Decimal, error) {
	if !common.IsHexAddress(address) {
		return decimal.Zero, domain.ErrWalletMissing.With("address", address)
	}
	client, _, err := g.conn(ctx)
	if err != nil {
		return decimal.Zero, err
	}

	data, err := erc20ABI.Pack("balanceOf", common.HexToAddress(address))
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to pack data: %w", err)
	}

	rctx, cancel, err := g.rpcContext(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	defer cancel()

	start := time.Now()
	result, err := client.CallContract(rctx, ethereum.CallMsg{To: &g.contract, Data: data}, nil)
	metrics.ObserveRPC("eth_call", start)
	if err != nil {
		return decimal.Zero, g.dropOnTransportError(ctx, client, "eth_call", err)
	}

	out, err := erc20ABI.Unpack("balanceOf", result)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to unpack result: %w", err)
	}
	wei, ok := out[0].(*big.Int)
	if !ok {
		return decimal.Zero, fmt.Errorf("unexpected balanceOf output %T", out[0])
	}
	return domain.WeiToTEOExact(wei), nil
}

func (g *gateway) GasPrice(ctx context.Context) *big.Int {
	fallback := new(big.Int).Mul(big.NewInt(g.cfg.FallbackGasGwei), gwei)

	client, _, err := g.conn(ctx)
	if err != nil {
		return fallback
	}

	rctx, cancel, err := g.rpcContext(ctx)
	if err != nil {
		return fallback
	}
	defer cancel()

	start := time.Now()
	price, err := client.SuggestGasPrice(rctx)
	metrics.ObserveRPC("eth_gasPrice", start)
	if err != nil {
		err = g.dropOnTransportError(ctx, client, "eth_gasPrice", err)
	}
	if err != nil || price == nil {
		logger.WarnCtx(ctx, "Falling back to fixed gas price", zap.Error(err), zap.String("fallback", fallback.String()))
		return fallback
	}

	return applyGasPolicy(price, g.cfg.MinGasGwei, g.cfg.MaxGasGwei, g.cfg.GasSafetyMultiplier)
}

// applyGasPolicy clamps price to [min, max] gwei then applies the safety multiplier
func applyGasPolicy(price *big.Int, minGwei, maxGwei int64, multiplier float64) *big.Int {
	lo := new(big.Int).Mul(big.NewInt(minGwei), gwei)
	hi := new(big.Int).Mul(big.NewInt(maxGwei), gwei)

	clamped := new(big.Int).Set(price)
	if clamped.Cmp(lo) < 0 {
		clamped.Set(lo)
	}
	if clamped.Cmp(hi) > 0 {
		clamped.Set(hi)
	}
	if multiplier <= 0 {
		return clamped
	}
	return decimal.NewFromBigInt(clamped, 0).Mul(decimal.NewFromFloat(multiplier)).Floor().BigInt()
}

func (g *gateway) VerifyPayment(ctx context.Context, txHash, from, to string, expected decimal.Decimal) (bool, error) {
	if !common.IsHexAddress(from) || !common.IsHexAddress(to) {
		return false, nil
	}
	hash, ok := parseTxHash(txHash)
	if !ok {
		return false, nil
	}
	expectedWei, err := domain.TEOToWei(expected)
	if err != nil {
		return false, err
	}
	minimum := decimal.NewFromBigInt(expectedWei, 0).Mul(g.tolerance).Ceil().BigInt()

	receipt, err := g.receipt(ctx, hash)
	if err != nil {
		if errors.Is(err, ethereum.NotFound) {
			return false, nil
		}
		return false, err
	}
	if receipt == nil || receipt.Status != types.ReceiptStatusSuccessful {
		return false, nil
	}

	for _, value := range g.transfers(receipt, common.HexToAddress(from), common.HexToAddress(to)) {
		if value.Cmp(minimum) >= 0 {
			return true, nil
		}
	}
	return false, nil
}

func (g *gateway) TransferredAmount(ctx context.Context, txHash, from, to string) (decimal.Decimal, error) {
	if !common.IsHexAddress(from) || !common.IsHexAddress(to) {
		return decimal.Zero, nil
	}
	hash, ok := parseTxHash(txHash)
	if !ok {
		return decimal.Zero, nil
	}

	receipt, err := g.receipt(ctx, hash)
	if err != nil {
		if errors.Is(err, ethereum.NotFound) {
			return decimal.Zero, nil
		}
		return decimal.Zero, err
	}
	if receipt == nil || receipt.Status != types.ReceiptStatusSuccessful {
		return decimal.Zero, nil
	}

	total := new(big.Int)
	for _, value := range g.transfers(receipt, common.HexToAddress(from), common.HexToAddress(to)) {
		total.Add(total, value)
	}
	return domain.WeiToTEOExact(total), nil
}

// transfers decodes the values of the token's Transfer events from sender to recipient
func (g *gateway) transfers(receipt *types.Receipt, sender, recipient common.Address) []*big.Int {
	var values []*big.Int
	for _, log := range receipt.Logs {
		if log == nil || log.Address != g.contract {
			continue
		}
		if len(log.Topics) < 3 || log.Topics[0] != transferEventSignature {
			continue
		}
		if common.BytesToAddress(log.Topics[1].Bytes()) != sender {
			continue
		}
		if common.BytesToAddress(log.Topics[2].Bytes()) != recipient {
			continue
		}
		values = append(values, new(big.Int).SetBytes(log.Data))
	}
	return values
}

func (g *gateway) TransactionStatus(ctx context.Context, txHash string) (TxStatus, error) {
	hash, ok := parseTxHash(txHash)
	if !ok {
		return "", domain.ErrBadRequest.Withf("invalid tx hash %q", txHash)
	}

	receipt, err := g.receipt(ctx, hash)
	if err != nil {
		if errors.Is(err, ethereum.NotFound) {
			return TxStatusPending, nil
		}
		return "", err
	}
	if receipt == nil {
		return TxStatusPending, nil
	}
	if receipt.Status == types.ReceiptStatusSuccessful {
		return TxStatusSuccess, nil
	}
	return TxStatusReverted, nil
}

func (g *gateway) receipt(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	client, _, err := g.conn(ctx)
	if err != nil {
		return nil, err
	}

	rctx, cancel, err := g.rpcContext(ctx)
	if err != nil {
		return nil, err
	}
	defer cancel()

	start := time.Now()
	receipt, err := client.TransactionReceipt(rctx, hash)
	metrics.ObserveRPC("eth_getTransactionReceipt", start)
	if err != nil {
		if errors.Is(err, ethereum.NotFound) {
			return nil, err
		}
		return nil, g.dropOnTransportError(ctx, client, "eth_getTransactionReceipt", err)
	}
	return receipt, nil
}

func parseTxHash(s string) (common.Hash, bool) {
	s = normalizeHex(s)
	if len(s) != 66 {
		return common.Hash{}, false
	}
	for _, c := range s[2:] {
		if !strings.ContainsRune("0123456789abcdefABCDEF", c) {
			return common.Hash{}, false
		}
	}
	return common.HexToHash(s), true
}
