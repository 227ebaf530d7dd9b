package bootstrap_test

import (
	"context"
	"os"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teocoin/settlement-engine/internal/adapter"
	"github.com/teocoin/settlement-engine/internal/bootstrap"
	"github.com/teocoin/settlement-engine/internal/catalog"
	"github.com/teocoin/settlement-engine/internal/config"
	"github.com/teocoin/settlement-engine/internal/domain"
	"github.com/teocoin/settlement-engine/internal/logger"
	"github.com/teocoin/settlement-engine/internal/messaging"
	"github.com/teocoin/settlement-engine/internal/store/storetest"
)

func TestMain(m *testing.M) {
	if err := logger.Initialize(logger.Config{Debug: true}); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func TestNewEngine(t *testing.T) {
	db := storetest.NewSQLiteDB(t, catalog.Models()...)
	engineCfg := config.EngineConfig{ReservePoolUserID: 1000, DecisionTTLHours: 24, TxMaxRetries: 2}

	t.Run("without token contract", func(t *testing.T) {
		e, err := bootstrap.NewEngine(db, bootstrap.Options{Engine: engineCfg})
		require.NoError(t, err)
		assert.Nil(t, e.Discounts)
		assert.NotNil(t, e.Rewards)

		entry, err := e.Ledger.Credit(context.Background(), 7, decimal.NewFromInt(5), domain.KindAdjustment, "seed")
		require.NoError(t, err)
		assert.Equal(t, domain.UserID(7), entry.UserID)
	})

	t.Run("with token contract", func(t *testing.T) {
		e, err := bootstrap.NewEngine(db, bootstrap.Options{
			Engine:               engineCfg,
			TokenContractAddress: "0x5FbDB2315678afecb367f032d93F642f64180aa3",
			Publisher:            messaging.NewNopPublisher(),
			Clock:                adapter.NewClock(),
		})
		require.NoError(t, err)
		assert.NotNil(t, e.Discounts)
	})

	t.Run("invalid reserve pool", func(t *testing.T) {
		_, err := bootstrap.NewEngine(db, bootstrap.Options{
			Engine:               config.EngineConfig{DecisionTTLHours: 24},
			TokenContractAddress: "0x5FbDB2315678afecb367f032d93F642f64180aa3",
		})
		assert.Error(t, err)
	})
}

func TestNewPublisher_WithoutURL(t *testing.T) {
	pub, err := bootstrap.NewPublisher(context.Background(), config.NATSConfig{}, adapter.NewJSON())
	require.NoError(t, err)
	assert.NoError(t, pub.PublishEvent(context.Background(), messaging.NewEvent(messaging.EventDecisionCreated, adapter.NewClock().Now(), nil)))
}
