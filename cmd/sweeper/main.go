package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/teocoin/settlement-engine/internal/adapter"
	"github.com/teocoin/settlement-engine/internal/bootstrap"
	"github.com/teocoin/settlement-engine/internal/chain"
	"github.com/teocoin/settlement-engine/internal/config"
	"github.com/teocoin/settlement-engine/internal/logger"
	"github.com/teocoin/settlement-engine/internal/mirror"
	"github.com/teocoin/settlement-engine/internal/sweeper"
)

var (
	configFile = flag.String("config", "", "Path to configuration file")
	envPath    = flag.String("env", "config/", "Path to environment files")
)

func main() {
	flag.Parse()

	// Load configuration
	config.ChdirRepoRoot()
	cfg, err := config.LoadSweeperConfig(*configFile, *envPath)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize logger with sentry integration
	err = logger.Initialize(logger.Config{
		Debug:           cfg.Debug,
		SentryDSN:       cfg.SentryDSN,
		Environment:     cfg.Environment,
		BreadcrumbLevel: zapcore.InfoLevel,
		Tags: map[string]string{
			"service": "settlement-sweeper",
		},
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Flush(2 * time.Second)
	logger.InfoCtx(ctx, "Starting Sweeper")

	db, err := bootstrap.OpenDatabase(ctx, cfg.Database)
	if err != nil {
		logger.FatalCtx(ctx, "Failed to open database", zap.Error(err))
	}

	clock := adapter.NewClock()
	jsonAdapter := adapter.NewJSON()

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

	mirrorService := mirror.New(mirror.Config{PlatformWallet: cfg.Chain.PlatformWallet}, engine.Store, engine.Ledger, engine.Catalog, gateway, clock)

	sweepers := []sweeper.Sweeper{
		sweeper.NewExpirySweeper(&sweeper.ExpirySweeperConfig{
			Interval:  time.Duration(cfg.Engine.SweeperIntervalSeconds) * time.Second,
			BatchSize: cfg.Engine.SweeperBatchSize,
		}, engine.Store, engine.Discounts, clock),
		sweeper.NewReconciler(&sweeper.ReconcilerConfig{
			Interval:       time.Duration(cfg.Engine.ReconcilerIntervalSeconds) * time.Second,
			BatchSize:      cfg.Engine.SweeperBatchSize,
			WorkerPoolSize: cfg.Worker.WorkerPoolSize,
		}, engine.Store, mirrorService, clock),
	}

	errChan := make(chan error, len(sweepers))
	for _, s := range sweepers {
		logger.InfoCtx(ctx, "Starting sweeper", zap.String("name", s.Name()))
		go func(s sweeper.Sweeper) {
			if err := s.Start(ctx); err != nil {
				errChan <- fmt.Errorf("%s: %w", s.Name(), err)
			}
		}(s)
	}

	// Wait for interrupt signal or error
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.InfoCtx(ctx, "Received shutdown signal", zap.String("signal", sig.String()))
	case err := <-errChan:
		logger.ErrorCtx(ctx, err)
	}

	// Cancel context to stop the sweepers
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	var wg sync.WaitGroup
	for _, s := range sweepers {
		wg.Add(1)
		go func(s sweeper.Sweeper) {
			defer wg.Done()
			if err := s.Stop(shutdownCtx); err != nil {
				logger.ErrorCtx(shutdownCtx, err, zap.String("sweeper", s.Name()))
			}
		}(s)
	}
	wg.Wait()

	logger.InfoCtx(shutdownCtx, "Sweeper stopped")
}
