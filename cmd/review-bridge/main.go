package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/teocoin/settlement-engine/internal/adapter"
	"github.com/teocoin/settlement-engine/internal/bootstrap"
	"github.com/teocoin/settlement-engine/internal/bridge"
	"github.com/teocoin/settlement-engine/internal/config"
	"github.com/teocoin/settlement-engine/internal/logger"
)

var (
	configFile = flag.String("config", "", "Path to configuration file")
	envPath    = flag.String("env", "config/", "Path to environment files")
)

func main() {
	flag.Parse()

	// Load configuration
	config.ChdirRepoRoot()
	cfg, err := config.LoadBridgeConfig(*configFile, *envPath)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// Initialize logger with sentry integration
	err = logger.Initialize(logger.Config{
		Debug:           cfg.Debug,
		SentryDSN:       cfg.SentryDSN,
		Environment:     cfg.Environment,
		BreadcrumbLevel: zapcore.InfoLevel,
		Tags: map[string]string{
			"service": "review-bridge",
		},
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Flush(2 * time.Second)
	logger.Info("Starting Review Bridge")

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := bootstrap.OpenDatabase(ctx, cfg.Database)
	if err != nil {
		logger.FatalCtx(ctx, "Failed to open database", zap.Error(err))
	}

	jsonAdapter := adapter.NewJSON()

	// Settlement events go to the engine's own stream
	publisher, err := bootstrap.NewPublisher(ctx, cfg.NATS, jsonAdapter)
	if err != nil {
		logger.FatalCtx(ctx, "Failed to create settlement publisher", zap.Error(err))
	}
	defer publisher.Close()

	engine, err := bootstrap.NewEngine(db, bootstrap.Options{
		Engine:    cfg.Engine,
		Publisher: publisher,
	})
	if err != nil {
		logger.FatalCtx(ctx, "Failed to create settlement engine", zap.Error(err))
	}

	reviewBridge, err := bridge.NewBridge(
		bridge.Config{
			URL:             cfg.NATS.URL,
			StreamName:      cfg.ReviewStream,
			ConsumerName:    cfg.NATS.ConsumerName,
			Subject:         cfg.ReviewSubject,
			MaxReconnects:   cfg.NATS.MaxReconnects,
			ReconnectWait:   cfg.NATS.ReconnectWait,
			ConnectionName:  cfg.NATS.ConnectionName,
			AckWaitTimeout:  cfg.NATS.AckWait,
			MaxDeliver:      cfg.NATS.MaxDeliver,
			WorkerPoolSize:  cfg.Worker.WorkerPoolSize,
			WorkerQueueSize: cfg.Worker.WorkerQueueSize,
		},
		adapter.NewNatsJetStream(),
		engine.Rewards,
		jsonAdapter,
	)
	if err != nil {
		logger.FatalCtx(ctx, "Failed to create review bridge", zap.Error(err))
	}
	defer reviewBridge.Close()
	logger.Info("Review bridge created",
		zap.String("stream", cfg.ReviewStream),
		zap.String("subject", cfg.ReviewSubject),
		zap.String("consumer", cfg.NATS.ConsumerName))

	// Setup signal handling
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		if err := reviewBridge.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			errCh <- err
		}
	}()

	select {
	case sig := <-sigCh:
		logger.Info("Received shutdown signal", zap.String("signal", sig.String()))
		cancel()
	case err := <-errCh:
		logger.Error(err, zap.String("component", "bridge"))
		cancel()
	}

	// Give in-flight messages time to ack
	time.Sleep(time.Second)

	logger.Info("Review Bridge stopped")
}
