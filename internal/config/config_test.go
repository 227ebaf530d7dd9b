package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoadAPIConfig(t *testing.T) {
	tests := []struct {
		name        string
		configFile  string
		expectError bool
		validate    func(*testing.T, *APIConfig)
	}{
		{
			name: "valid config file",
			configFile: `
debug: true
sentry_dsn: "https://sentry.example.com"
server:
  port: 9090
database:
  host: localhost
  user: teo
  password: secret
  dbname: settlement
  sslmode: require
chain:
  rpc_url: "http://localhost:8545"
  token_contract_address: "0x5FbDB2315678afecb367f032d93F642f64180aa3"
  admin_private_key: "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
  chain_id: 31337
  min_gas_gwei: 10
engine:
  reserve_pool_user_id: 1
  decision_ttl_hours: 48
auth:
  api_keys: ["k1", "k2"]
redis:
  addr: "localhost:6379"
rate_limit:
  enabled: true
`,
			validate: func(t *testing.T, cfg *APIConfig) {
				assert.True(t, cfg.Debug)
				assert.Equal(t, "https://sentry.example.com", cfg.SentryDSN)
				assert.Equal(t, 9090, cfg.Server.Port)
				assert.Equal(t, "settlement", cfg.Database.DBName)
				assert.Equal(t, "require", cfg.Database.SSLMode)
				assert.Equal(t, int64(31337), cfg.Chain.ChainID)
				assert.Equal(t, int64(10), cfg.Chain.MinGasGwei)
				assert.Equal(t, int64(50), cfg.Chain.MaxGasGwei)
				assert.Equal(t, int64(1), cfg.Engine.ReservePoolUserID)
				assert.Equal(t, 48*time.Hour, cfg.Engine.DecisionTTL())
				assert.Equal(t, []string{"k1", "k2"}, cfg.Auth.APIKeys)
				assert.True(t, cfg.RateLimit.Enabled)
			},
		},
		{
			name: "config with defaults",
			configFile: `
database:
  host: localhost
  dbname: settlement
engine:
  reserve_pool_user_id: 1
`,
			validate: func(t *testing.T, cfg *APIConfig) {
				assert.Equal(t, 5432, cfg.Database.Port)
				assert.Equal(t, "disable", cfg.Database.SSLMode)
				assert.Equal(t, 8080, cfg.Server.Port)
				assert.Equal(t, int64(25), cfg.Chain.MinGasGwei)
				assert.Equal(t, int64(50), cfg.Chain.MaxGasGwei)
				assert.InDelta(t, 1.1, cfg.Chain.GasSafetyMultiplier, 1e-9)
				assert.Equal(t, int64(30), cfg.Chain.FallbackGasGwei)
				assert.Equal(t, 3, cfg.Chain.MintRetries)
				assert.Equal(t, time.Second, cfg.Chain.MintRetryInterval)
				assert.Equal(t, uint64(200000), cfg.Chain.MintGasLimit)
				assert.Equal(t, 30*time.Second, cfg.Chain.RPCTimeout)
				assert.InDelta(t, 0.85, cfg.Chain.PaymentTolerance, 1e-9)
				assert.Equal(t, 24, cfg.Engine.DecisionTTLHours)
				assert.Equal(t, 60, cfg.Engine.SweeperIntervalSeconds)
				assert.Equal(t, 100, cfg.Engine.SweeperBatchSize)
				assert.Equal(t, "SETTLEMENT_EVENTS", cfg.NATS.StreamName)
				assert.Equal(t, 5*time.Minute, cfg.Redis.BalanceCacheTTL)
			},
		},
		{
			name: "missing reserve pool",
			configFile: `
database:
  host: localhost
  dbname: settlement
`,
			expectError: true,
		},
		{
			name: "rate limit without redis",
			configFile: `
database:
  host: localhost
  dbname: settlement
engine:
  reserve_pool_user_id: 1
rate_limit:
  enabled: true
`,
			expectError: true,
		},
		{
			name: "invalid yaml",
			configFile: `
				database:
				  host: localhost
				  port: invalid
			`,
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadAPIConfig(writeConfig(t, tt.configFile), t.TempDir())

			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, cfg)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, cfg)
			tt.validate(t, cfg)
		})
	}
}

func TestLoadSweeperConfig(t *testing.T) {
	cfg, err := LoadSweeperConfig(writeConfig(t, `
database:
  host: localhost
  dbname: settlement
engine:
  reserve_pool_user_id: 2
  sweeper_interval_seconds: 5
`), t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.Engine.SweeperIntervalSeconds)
	assert.Equal(t, 30, cfg.Engine.ReconcilerIntervalSeconds)
	assert.Equal(t, 5, cfg.Database.MaxOpenConns)
	assert.Equal(t, 10, cfg.Worker.WorkerPoolSize)
}

func TestLoadBridgeConfig(t *testing.T) {
	t.Run("requires nats url", func(t *testing.T) {
		_, err := LoadBridgeConfig(writeConfig(t, `
database:
  host: localhost
  dbname: settlement
engine:
  reserve_pool_user_id: 1
`), t.TempDir())
		assert.Error(t, err)
	})

	t.Run("defaults", func(t *testing.T) {
		cfg, err := LoadBridgeConfig(writeConfig(t, `
database:
  host: localhost
  dbname: settlement
engine:
  reserve_pool_user_id: 1
nats:
  url: "nats://localhost:4222"
`), t.TempDir())
		require.NoError(t, err)
		assert.Equal(t, "REVIEW_EVENTS", cfg.ReviewStream)
		assert.Equal(t, "reviews.scored", cfg.ReviewSubject)
		assert.Equal(t, "settlement-review-bridge", cfg.NATS.ConsumerName)
		assert.Equal(t, 5, cfg.NATS.MaxDeliver)
		assert.Equal(t, 20, cfg.Worker.WorkerPoolSize)
	})
}

func TestLoadCLIConfig(t *testing.T) {
	cfg, err := LoadCLIConfig(writeConfig(t, `
database:
  host: localhost
  dbname: settlement
engine:
  reserve_pool_user_id: 9
`), t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, int64(9), cfg.Engine.ReservePoolUserID)
	assert.Equal(t, 2, cfg.Database.MaxOpenConns)
}

func TestDatabaseConfig_DSN(t *testing.T) {
	tests := []struct {
		name     string
		config   DatabaseConfig
		expected string
	}{
		{
			name: "complete config",
			config: DatabaseConfig{
				Host:     "localhost",
				Port:     5432,
				User:     "teo",
				Password: "secret",
				DBName:   "settlement",
				SSLMode:  "require",
			},
			expected: "host=localhost port=5432 user=teo password=secret dbname=settlement sslmode=require",
		},
		{
			name: "with special characters in password",
			config: DatabaseConfig{
				Host:     "db",
				Port:     6432,
				User:     "teo",
				Password: "p@ss!",
				DBName:   "settlement",
				SSLMode:  "disable",
			},
			expected: "host=db port=6432 user=teo password=p@ss! dbname=settlement sslmode=disable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.config.DSN())
		})
	}
}

func TestConfigWithEnvironmentVariables(t *testing.T) {
	keys := []string{
		"TEO_ENGINE_DEBUG",
		"TEO_ENGINE_DATABASE_HOST",
		"TEO_ENGINE_DATABASE_PORT",
		"TEO_ENGINE_DATABASE_DBNAME",
		"TEO_ENGINE_ENGINE_RESERVE_POOL_USER_ID",
		"TEO_ENGINE_CHAIN_MAX_GAS_GWEI",
	}
	// t.Setenv restores the originals once godotenv has overwritten them
	for _, k := range keys {
		t.Setenv(k, "")
	}

	envDir := t.TempDir()
	envContent := `TEO_ENGINE_DEBUG=true
TEO_ENGINE_DATABASE_HOST=env-host
TEO_ENGINE_DATABASE_PORT=6543
TEO_ENGINE_DATABASE_DBNAME=env-db
TEO_ENGINE_ENGINE_RESERVE_POOL_USER_ID=77
TEO_ENGINE_CHAIN_MAX_GAS_GWEI=80
`
	require.NoError(t, os.WriteFile(filepath.Join(envDir, ".env"), []byte(envContent), 0600))

	configPath := writeConfig(t, `
debug: false
database:
  host: file-host
  port: 5432
  dbname: file-db
engine:
  reserve_pool_user_id: 1
`)

	cfg, err := LoadAPIConfig(configPath, envDir)
	require.NoError(t, err)

	assert.True(t, cfg.Debug)
	assert.Equal(t, "env-host", cfg.Database.Host)
	assert.Equal(t, 6543, cfg.Database.Port)
	assert.Equal(t, "env-db", cfg.Database.DBName)
	assert.Equal(t, int64(77), cfg.Engine.ReservePoolUserID)
	assert.Equal(t, int64(80), cfg.Chain.MaxGasGwei)
}
