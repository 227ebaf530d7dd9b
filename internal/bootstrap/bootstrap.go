// Package bootstrap wires the settlement engine components shared by the binaries
package bootstrap

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/teocoin/settlement-engine/internal/adapter"
	"github.com/teocoin/settlement-engine/internal/catalog"
	"github.com/teocoin/settlement-engine/internal/chain"
	"github.com/teocoin/settlement-engine/internal/config"
	"github.com/teocoin/settlement-engine/internal/discount"
	"github.com/teocoin/settlement-engine/internal/ledger"
	"github.com/teocoin/settlement-engine/internal/logger"
	"github.com/teocoin/settlement-engine/internal/messaging"
	natsprovider "github.com/teocoin/settlement-engine/internal/providers/jetstream"
	"github.com/teocoin/settlement-engine/internal/reward"
	"github.com/teocoin/settlement-engine/internal/store"
)

// OpenDatabase connects to postgres, configures the pool and migrates the engine tables
func OpenDatabase(ctx context.Context, cfg config.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := store.ConfigureConnectionPool(db, cfg.MaxOpenConns, cfg.MaxIdleConns, cfg.ConnMaxLifetime, cfg.ConnMaxIdleTime); err != nil {
		return nil, err
	}
	if err := store.Migrate(db); err != nil {
		return nil, err
	}

	logger.InfoCtx(ctx, "Connected to database",
		zap.String("host", cfg.Host),
		zap.String("dbname", cfg.DBName),
		zap.Int("max_open_conns", cfg.MaxOpenConns),
		zap.Int("max_idle_conns", cfg.MaxIdleConns),
	)
	return db, nil
}

// NewPublisher connects the JetStream settlement publisher, or drops events when nats.url is empty
func NewPublisher(ctx context.Context, cfg config.NATSConfig, jsonAdapter adapter.JSON) (messaging.Publisher, error) {
	if cfg.URL == "" {
		logger.WarnCtx(ctx, "nats.url not configured, settlement events are dropped")
		return messaging.NewNopPublisher(), nil
	}

	pub, err := natsprovider.NewPublisher(ctx, natsprovider.Config{
		URL:            cfg.URL,
		StreamName:     cfg.StreamName,
		MaxReconnects:  cfg.MaxReconnects,
		ReconnectWait:  cfg.ReconnectWait,
		ConnectionName: cfg.ConnectionName,
	}, adapter.NewNatsJetStream(), jsonAdapter)
	if err != nil {
		return nil, err
	}

	logger.InfoCtx(ctx, "Connected to NATS JetStream", zap.String("url", cfg.URL), zap.String("stream", cfg.StreamName))
	return pub, nil
}

// Options select the components NewEngine builds
type Options struct {
	Engine config.EngineConfig
	// TokenContractAddress enables the discount orchestrator when set
	TokenContractAddress string
	Verifier             chain.SignatureVerifier
	Publisher            messaging.Publisher
	Clock                adapter.Clock
}

// Engine holds the wired settlement components
type Engine struct {
	Store     store.Store
	Ledger    ledger.Ledger
	Catalog   catalog.Catalog
	Rewards   reward.Engine
	Discounts discount.Orchestrator // nil without a token contract
	Clock     adapter.Clock
	JSON      adapter.JSON
}

// NewEngine builds the ledger, catalog, reward engine and (optionally) the discount orchestrator over db
func NewEngine(db *gorm.DB, opts Options) (*Engine, error) {
	if opts.Clock == nil {
		opts.Clock = adapter.NewClock()
	}
	if opts.Publisher == nil {
		opts.Publisher = messaging.NewNopPublisher()
	}
	if opts.Verifier == nil {
		opts.Verifier = chain.LocalVerifier{}
	}

	jsonAdapter := adapter.NewJSON()
	st := store.NewStore(db, store.WithTxMaxRetries(opts.Engine.TxMaxRetries))
	cat := catalog.NewGormCatalog(db)
	ldg := ledger.New(st, opts.Clock, jsonAdapter)

	e := &Engine{
		Store:   st,
		Ledger:  ldg,
		Catalog: cat,
		Rewards: reward.New(st, ldg, cat, opts.Publisher, opts.Clock),
		Clock:   opts.Clock,
		JSON:    jsonAdapter,
	}

	if opts.TokenContractAddress != "" {
		orch, err := discount.New(discount.Config{
			ReservePoolUserID:    opts.Engine.ReservePoolUserID,
			DecisionTTL:          opts.Engine.DecisionTTL(),
			TokenContractAddress: opts.TokenContractAddress,
		}, st, ldg, cat, opts.Verifier, opts.Publisher, opts.Clock, jsonAdapter)
		if err != nil {
			return nil, fmt.Errorf("failed to create discount orchestrator: %w", err)
		}
		e.Discounts = orch
	}

	return e, nil
}
