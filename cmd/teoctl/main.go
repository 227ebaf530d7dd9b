package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/teocoin/settlement-engine/internal/adapter"
	"github.com/teocoin/settlement-engine/internal/api/shared/executor"
	"github.com/teocoin/settlement-engine/internal/bootstrap"
	"github.com/teocoin/settlement-engine/internal/chain"
	"github.com/teocoin/settlement-engine/internal/cli"
	"github.com/teocoin/settlement-engine/internal/config"
	"github.com/teocoin/settlement-engine/internal/logger"
	"github.com/teocoin/settlement-engine/internal/mirror"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.Execute(ctx, openEngine); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// openEngine wires the engine against the configured database and chain
func openEngine(ctx context.Context, configFile, envPath string) (executor.Executor, func(), error) {
	config.ChdirRepoRoot()
	cfg, err := config.LoadCLIConfig(configFile, envPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.Initialize(logger.Config{
		Debug:       cfg.Debug,
		SentryDSN:   cfg.SentryDSN,
		Environment: cfg.Environment,
		Tags:        map[string]string{"service": "teoctl"},
	}); err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	db, err := bootstrap.OpenDatabase(ctx, cfg.Database)
	if err != nil {
		return nil, nil, err
	}

	clock := adapter.NewClock()
	gateway, err := chain.New(ctx, cfg.Chain, adapter.NewEthClientDialer(), clock)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create chain gateway: %w", err)
	}

	engine, err := bootstrap.NewEngine(db, bootstrap.Options{
		Engine:               cfg.Engine,
		TokenContractAddress: cfg.Chain.TokenContractAddress,
		Verifier:             gateway,
		Clock:                clock,
	})
	if err != nil {
		gateway.Close()
		return nil, nil, err
	}
	if engine.Discounts == nil {
		gateway.Close()
		return nil, nil, fmt.Errorf("chain.token_contract_address is required")
	}

	exec := executor.NewExecutor(executor.Deps{
		Ledger:    engine.Ledger,
		Rewards:   engine.Rewards,
		Discounts: engine.Discounts,
		Mirror:    mirror.New(mirror.Config{PlatformWallet: cfg.Chain.PlatformWallet}, engine.Store, engine.Ledger, engine.Catalog, gateway, clock),
		Catalog:   engine.Catalog,
		Chain:     gateway,
		Decisions: engine.Store,
		Clock:     clock,
	})

	release := func() {
		gateway.Close()
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
		logger.Flush(2 * time.Second)
	}
	return exec, release, nil
}
