package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/teocoin/settlement-engine/internal/adapter"
	"github.com/teocoin/settlement-engine/internal/api/middleware"
	"github.com/teocoin/settlement-engine/internal/api/server"
	"github.com/teocoin/settlement-engine/internal/api/shared/executor"
	"github.com/teocoin/settlement-engine/internal/bootstrap"
	"github.com/teocoin/settlement-engine/internal/chain"
	"github.com/teocoin/settlement-engine/internal/config"
	"github.com/teocoin/settlement-engine/internal/logger"
	"github.com/teocoin/settlement-engine/internal/mirror"
)

var (
	configFile = flag.String("config", "", "Path to configuration file")
	envPath    = flag.String("env", "config/", "Path to environment files")
)

func main() {
	flag.Parse()

	// Load configuration
	config.ChdirRepoRoot()
	cfg, err := config.LoadAPIConfig(*configFile, *envPath)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize logger with sentry integration
	err = logger.Initialize(logger.Config{
		Debug:           cfg.Debug,
		SentryDSN:       cfg.SentryDSN,
		Environment:     cfg.Environment,
		BreadcrumbLevel: zapcore.InfoLevel,
		Tags: map[string]string{
			"service": "settlement-api",
		},
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Flush(2 * time.Second)
	logger.InfoCtx(ctx, "Starting TeoCoin Settlement API")

	db, err := bootstrap.OpenDatabase(ctx, cfg.Database)
	if err != nil {
		logger.FatalCtx(ctx, "Failed to open database", zap.Error(err))
	}

	clock := adapter.NewClock()
	jsonAdapter := adapter.NewJSON()

	// The gateway starts disconnected when the RPC endpoint is unreachable; chain reads return ERR_CHAIN_DOWN
	gateway, err := chain.New(ctx, cfg.Chain, adapter.NewEthClientDialer(), clock)
	if err != nil {
		logger.FatalCtx(ctx, "Failed to create chain gateway", zap.Error(err))
	}
	defer gateway.Close()

	publisher, err := bootstrap.NewPublisher(ctx, cfg.NATS, jsonAdapter)
	if err != nil {
		logger.FatalCtx(ctx, "Failed to create settlement publisher", zap.Error(err))
	}
	defer publisher.Close()

	engine, err := bootstrap.NewEngine(db, bootstrap.Options{
		Engine:               cfg.Engine,
		TokenContractAddress: cfg.Chain.TokenContractAddress,
		Verifier:             gateway,
		Publisher:            publisher,
		Clock:                clock,
	})
	if err != nil {
		logger.FatalCtx(ctx, "Failed to create settlement engine", zap.Error(err))
	}
	if engine.Discounts == nil {
		logger.FatalCtx(ctx, "chain.token_contract_address is required")
	}

	deps := executor.Deps{
		Ledger:    engine.Ledger,
		Rewards:   engine.Rewards,
		Discounts: engine.Discounts,
		Mirror:    mirror.New(mirror.Config{PlatformWallet: cfg.Chain.PlatformWallet}, engine.Store, engine.Ledger, engine.Catalog, gateway, clock),
		Catalog:   engine.Catalog,
		Chain:     gateway,
		Decisions: engine.Store,
		Clock:     clock,
	}

	// Redis backs the chain balance cache and the rate limiter
	var limiter adapter.RedisRateLimiter
	if cfg.Redis.Addr != "" {
		redisClient := adapter.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		defer func() { _ = redisClient.Close() }()
		if err := redisClient.Ping(ctx); err != nil {
			logger.WarnCtx(ctx, "Redis unreachable at startup, cache and limiter fail open", zap.Error(err))
		}

		deps.Balances = chain.NewBalanceCache(gateway, redisClient, cfg.Redis.BalanceCacheTTL)
		if cfg.RateLimit.Enabled {
			limiter = redisClient.NewRateLimiter()
		}
		logger.InfoCtx(ctx, "Connected to Redis", zap.String("addr", cfg.Redis.Addr))
	}

	srv := server.New(server.Config{
		Debug:        cfg.Debug,
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
		CORSOrigins:  cfg.Server.CORSOrigins,
		Auth: middleware.AuthConfig{
			JWTPublicKey: cfg.Auth.JWTPublicKey,
			APIKeys:      cfg.Auth.APIKeys,
		},
		RateLimit: middleware.RateLimitConfig{
			RequestsPerMinute: cfg.RateLimit.RequestsPerMinute,
			Burst:             cfg.RateLimit.Burst,
		},
	}, executor.NewExecutor(deps), limiter)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil {
			errCh <- err
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		logger.InfoCtx(ctx, "Received shutdown signal", zap.String("signal", sig.String()))
		cancel()
	case err := <-errCh:
		logger.ErrorCtx(ctx, err, zap.String("component", "server"))
		cancel()
	}

	// Create shutdown context with timeout (don't use canceled ctx)
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.ErrorCtx(shutdownCtx, err)
	}

	logger.Info("API server stopped")
}
