package chain

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/teocoin/settlement-engine/internal/adapter"
	"github.com/teocoin/settlement-engine/internal/logger"
)

const balanceCachePrefix = "teo:chain_balance:"

// BalanceReader reads on-chain token balances
type BalanceReader interface {
	GetBalance(ctx context.Context, address string) (decimal.Decimal, error)
}

// BalanceCache serves on-chain balances from Redis for a short ttl.
// Redis failures fall through to the chain (fail open).
type BalanceCache struct {
	reader BalanceReader
	redis  adapter.RedisClient
	ttl    time.Duration
}

// NewBalanceCache wraps reader with a Redis cache; a nil redis client disables caching
func NewBalanceCache(reader BalanceReader, redis adapter.RedisClient, ttl time.Duration) *BalanceCache {
	return &BalanceCache{reader: reader, redis: redis, ttl: ttl}
}

func (c *BalanceCache) GetBalance(ctx context.Context, address string) (decimal.Decimal, error) {
	if c.redis == nil || c.ttl <= 0 {
		return c.reader.GetBalance(ctx, address)
	}

	key := balanceCachePrefix + strings.ToLower(address)
	cached, err := c.redis.Get(ctx, key)
	switch {
	case err == nil:
		if v, perr := decimal.NewFromString(cached); perr == nil {
			return v, nil
		}
	case !errors.Is(err, adapter.ErrCacheMiss):
		logger.WarnCtx(ctx, "Balance cache unavailable", zap.Error(err), zap.String("address", address))
	}

	balance, err := c.reader.GetBalance(ctx, address)
	if err != nil {
		return decimal.Zero, err
	}

	if err := c.redis.Set(ctx, key, balance.String(), c.ttl); err != nil {
		logger.WarnCtx(ctx, "Failed to cache balance", zap.Error(err), zap.String("address", address))
	}
	return balance, nil
}
