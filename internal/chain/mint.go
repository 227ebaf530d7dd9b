package chain

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/teocoin/settlement-engine/internal/adapter"
	"github.com/teocoin/settlement-engine/internal/domain"
	"github.com/teocoin/settlement-engine/internal/logger"
	"github.com/teocoin/settlement-engine/internal/metrics"
)

// gasEscalation is applied per retry: attempt k pays gas_price x 1.2^k
var gasEscalation = decimal.RequireFromString("1.2")

type submitter struct {
	g *gateway
}

// Mint submits mint(to, amount) signed by the admin key. Each attempt re-reads the
// pending nonce and escalates the gas price. Cancellation of ctx is ignored once
// submission starts since a broadcast transaction may land regardless.
func (s *submitter) Mint(ctx context.Context, to string, amount decimal.Decimal, reason string) (string, error) {
	if !common.IsHexAddress(to) {
		return "", domain.ErrWalletMissing.With("address", to)
	}
	if err := domain.ValidateAmount(amount); err != nil {
		return "", err
	}
	amountWei, err := domain.TEOToWei(amount)
	if err != nil {
		return "", err
	}

	_, chainID, err := s.g.conn(ctx)
	if err != nil {
		return "", err
	}

	data, err := erc20ABI.Pack("mint", common.HexToAddress(to), amountWei)
	if err != nil {
		return "", fmt.Errorf("failed to pack data: %w", err)
	}

	ctx = context.WithoutCancel(ctx)
	signer := types.LatestSignerForChainID(chainID)

	attempt := 0
	var txHash string
	operation := func() error {
		defer func() { attempt++ }()

		// a failed read may have dropped the connection since the last attempt
		client, _, err := s.g.conn(ctx)
		if err != nil {
			return err
		}

		rctx, cancel, err := s.g.rpcContext(ctx)
		if err != nil {
			return err
		}
		defer cancel()

		start := time.Now()
		nonce, err := client.PendingNonceAt(rctx, s.g.admin)
		metrics.ObserveRPC("eth_getTransactionCount", start)
		if err != nil {
			metrics.MintAttempts.WithLabelValues("failure").Inc()
			return fmt.Errorf("failed to get pending nonce: %w", err)
		}

		gasPrice := escalateGasPrice(s.g.GasPrice(ctx), attempt)
		tx := types.NewTx(&types.LegacyTx{
			Nonce:    nonce,
			To:       &s.g.contract,
			Value:    big.NewInt(0),
			Gas:      s.gasLimit(),
			GasPrice: gasPrice,
			Data:     data,
		})
		signed, err := types.SignTx(tx, signer, s.g.key)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("failed to sign transaction: %w", err))
		}

		start = time.Now()
		err = client.SendTransaction(rctx, signed)
		metrics.ObserveRPC("eth_sendRawTransaction", start)
		if err != nil {
			metrics.MintAttempts.WithLabelValues("failure").Inc()
			return fmt.Errorf("failed to send transaction: %w", err)
		}

		metrics.MintAttempts.WithLabelValues("success").Inc()
		txHash = signed.Hash().Hex()
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = s.retryInterval()
	b.Multiplier = 2
	b.RandomizationFactor = 0
	b.MaxInterval = time.Hour
	b.MaxElapsedTime = 0

	err = backoff.RetryNotifyWithTimer(
		operation,
		backoff.WithMaxRetries(b, uint64(max(s.g.cfg.MintRetries, 0))),
		func(err error, wait time.Duration) {
			logger.WarnCtx(ctx, "Retrying mint",
				zap.Error(err),
				zap.String("to", to),
				zap.String("reason", reason),
				zap.Int("attempt", attempt),
				zap.Duration("wait", wait))
		},
		&clockTimer{clock: s.g.clock},
	)
	if err != nil {
		mintErr := domain.ErrMintExhausted.Wrap(err).
			With("to", to).
			With("amount", amount.String()).
			With("reason", reason)
		logger.ErrorCtx(ctx, mintErr)
		return "", mintErr
	}

	logger.InfoCtx(ctx, "Mint submitted",
		zap.String("to", to),
		zap.String("amount", amount.String()),
		zap.String("reason", reason),
		zap.String("txHash", txHash))
	return txHash, nil
}

func (s *submitter) gasLimit() uint64 {
	if s.g.cfg.MintGasLimit == 0 {
		return 200_000
	}
	return s.g.cfg.MintGasLimit
}

func (s *submitter) retryInterval() time.Duration {
	if s.g.cfg.MintRetryInterval <= 0 {
		return time.Second
	}
	return s.g.cfg.MintRetryInterval
}

// escalateGasPrice returns price x 1.2^attempt
func escalateGasPrice(price *big.Int, attempt int) *big.Int {
	if attempt == 0 {
		return new(big.Int).Set(price)
	}
	factor := gasEscalation.Pow(decimal.NewFromInt(int64(attempt)))
	return decimal.NewFromBigInt(price, 0).Mul(factor).Floor().BigInt()
}

// clockTimer drives backoff waits from the injected clock
type clockTimer struct {
	clock adapter.Clock
	c     <-chan time.Time
}

func (t *clockTimer) Start(d time.Duration) {
	t.c = t.clock.After(d)
}

func (t *clockTimer) Stop() {}

func (t *clockTimer) C() <-chan time.Time {
	return t.c
}
