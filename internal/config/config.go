package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// BaseConfig holds base configuration
type BaseConfig struct {
	Debug       bool   `mapstructure:"debug"`
	SentryDSN   string `mapstructure:"sentry_dsn"`
	Environment string `mapstructure:"environment"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
}

// ChainConfig holds the EVM chain gateway configuration
type ChainConfig struct {
	RPCURL               string        `mapstructure:"rpc_url"`
	TokenContractAddress string        `mapstructure:"token_contract_address"`
	PlatformWallet       string        `mapstructure:"platform_wallet"`
	AdminPrivateKey      string        `mapstructure:"admin_private_key"`
	ChainID              int64         `mapstructure:"chain_id"` // 0 reads it from the node
	MinGasGwei           int64         `mapstructure:"min_gas_gwei"`
	MaxGasGwei           int64         `mapstructure:"max_gas_gwei"`
	GasSafetyMultiplier  float64       `mapstructure:"gas_safety_multiplier"`
	FallbackGasGwei      int64         `mapstructure:"fallback_gas_gwei"`
	MintRetries          int           `mapstructure:"mint_retries"`
	MintRetryInterval    time.Duration `mapstructure:"mint_retry_interval"`
	MintGasLimit         uint64        `mapstructure:"mint_gas_limit"`
	RPCTimeout           time.Duration `mapstructure:"rpc_timeout"`
	PaymentTolerance     float64       `mapstructure:"payment_tolerance"`
	RPCRequestsPerSecond float64       `mapstructure:"rpc_requests_per_second"` // 0 disables throttling
	RPCBurst             int           `mapstructure:"rpc_burst"`
}

// EngineConfig holds settlement engine configuration
type EngineConfig struct {
	ReservePoolUserID         int64 `mapstructure:"reserve_pool_user_id"`
	DecisionTTLHours          int   `mapstructure:"decision_ttl_hours"`
	SweeperIntervalSeconds    int   `mapstructure:"sweeper_interval_seconds"`
	SweeperBatchSize          int   `mapstructure:"sweeper_batch_size"`
	ReconcilerIntervalSeconds int   `mapstructure:"reconciler_interval_seconds"`
	TxMaxRetries              int   `mapstructure:"tx_max_retries"`
}

// DecisionTTL returns the decision lifetime
func (c EngineConfig) DecisionTTL() time.Duration {
	return time.Duration(c.DecisionTTLHours) * time.Hour
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Addr            string        `mapstructure:"addr"`
	Password        string        `mapstructure:"password"`
	DB              int           `mapstructure:"db"`
	BalanceCacheTTL time.Duration `mapstructure:"balance_cache_ttl"`
}

// NATSConfig holds NATS JetStream configuration
type NATSConfig struct {
	URL            string        `mapstructure:"url"`
	StreamName     string        `mapstructure:"stream_name"`
	ConsumerName   string        `mapstructure:"consumer_name"`
	MaxReconnects  int           `mapstructure:"max_reconnects"`
	ReconnectWait  time.Duration `mapstructure:"reconnect_wait"`
	ConnectionName string        `mapstructure:"connection_name"`
	AckWait        time.Duration `mapstructure:"ack_wait"`
	MaxDeliver     int           `mapstructure:"max_deliver"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	ReadTimeout  int    `mapstructure:"read_timeout"`  // in seconds
	WriteTimeout int    `mapstructure:"write_timeout"` // in seconds
	IdleTimeout  int    `mapstructure:"idle_timeout"`  // in seconds

	// CORSOrigins restricts browser origins; empty allows any
	CORSOrigins []string `mapstructure:"cors_origins"`
}

// AuthConfig holds service authentication configuration
type AuthConfig struct {
	JWTPublicKey string   `mapstructure:"jwt_public_key"`
	APIKeys      []string `mapstructure:"api_keys"`
}

// RateLimitConfig holds API rate limiting configuration
type RateLimitConfig struct {
	Enabled           bool `mapstructure:"enabled"`
	RequestsPerMinute int  `mapstructure:"requests_per_minute"`
	Burst             int  `mapstructure:"burst"`
}

// WorkerConfig holds worker pool configuration
type WorkerConfig struct {
	WorkerPoolSize  int `mapstructure:"pool_size"`
	WorkerQueueSize int `mapstructure:"queue_size"`
}

// APIConfig holds configuration for the API server
type APIConfig struct {
	BaseConfig `mapstructure:",squash"`
	Server     ServerConfig    `mapstructure:"server"`
	Database   DatabaseConfig  `mapstructure:"database"`
	Chain      ChainConfig     `mapstructure:"chain"`
	Engine     EngineConfig    `mapstructure:"engine"`
	Auth       AuthConfig      `mapstructure:"auth"`
	Redis      RedisConfig     `mapstructure:"redis"`
	RateLimit  RateLimitConfig `mapstructure:"rate_limit"`
	NATS       NATSConfig      `mapstructure:"nats"`
}

// SweeperConfig holds configuration for the sweeper daemon
type SweeperConfig struct {
	BaseConfig `mapstructure:",squash"`
	Database   DatabaseConfig `mapstructure:"database"`
	Chain      ChainConfig    `mapstructure:"chain"`
	Engine     EngineConfig   `mapstructure:"engine"`
	NATS       NATSConfig     `mapstructure:"nats"`
	Worker     WorkerConfig   `mapstructure:"worker"`
}

// BridgeConfig holds configuration for the review-scored bridge
type BridgeConfig struct {
	BaseConfig    `mapstructure:",squash"`
	Database      DatabaseConfig `mapstructure:"database"`
	Engine        EngineConfig   `mapstructure:"engine"`
	NATS          NATSConfig     `mapstructure:"nats"`
	Worker        WorkerConfig   `mapstructure:"worker"`
	ReviewStream  string         `mapstructure:"review_stream"`
	ReviewSubject string         `mapstructure:"review_subject"`
}

// CLIConfig holds configuration for teoctl
type CLIConfig struct {
	BaseConfig `mapstructure:",squash"`
	Database   DatabaseConfig `mapstructure:"database"`
	Chain      ChainConfig    `mapstructure:"chain"`
	Engine     EngineConfig   `mapstructure:"engine"`
}

// LoadAPIConfig loads configuration for the API server
func LoadAPIConfig(configFile string, envPath string) (*APIConfig, error) {
	v := configureViper("api", configFile, envPath)

	setDatabaseDefaults(v, 20, 5)
	setChainDefaults(v)
	setEngineDefaults(v)
	setNATSDefaults(v)
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 15)
	v.SetDefault("server.write_timeout", 15)
	v.SetDefault("server.idle_timeout", 60)
	v.SetDefault("redis.balance_cache_ttl", "5m")
	v.SetDefault("rate_limit.requests_per_minute", 600)
	v.SetDefault("rate_limit.burst", 100)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg APIConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validate(cfg.Database, cfg.Engine); err != nil {
		return nil, err
	}
	if cfg.RateLimit.Enabled && cfg.Redis.Addr == "" {
		return nil, errors.New("redis.addr is required when rate_limit.enabled is set")
	}

	return &cfg, nil
}

// LoadSweeperConfig loads configuration for the sweeper daemon
func LoadSweeperConfig(configFile string, envPath string) (*SweeperConfig, error) {
	v := configureViper("sweeper", configFile, envPath)

	setDatabaseDefaults(v, 5, 2)
	setChainDefaults(v)
	setEngineDefaults(v)
	setNATSDefaults(v)
	v.SetDefault("worker.pool_size", 10)
	v.SetDefault("worker.queue_size", 100)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg SweeperConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validate(cfg.Database, cfg.Engine); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadBridgeConfig loads configuration for the review-scored bridge
func LoadBridgeConfig(configFile string, envPath string) (*BridgeConfig, error) {
	v := configureViper("review-bridge", configFile, envPath)

	setDatabaseDefaults(v, 10, 2)
	setEngineDefaults(v)
	setNATSDefaults(v)
	v.SetDefault("nats.consumer_name", "settlement-review-bridge")
	v.SetDefault("review_stream", "REVIEW_EVENTS")
	v.SetDefault("review_subject", "reviews.scored")
	v.SetDefault("worker.pool_size", 20)
	v.SetDefault("worker.queue_size", 1024)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg BridgeConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validate(cfg.Database, cfg.Engine); err != nil {
		return nil, err
	}
	if cfg.NATS.URL == "" {
		return nil, errors.New("nats.url is required")
	}

	return &cfg, nil
}

// LoadCLIConfig loads configuration for teoctl
func LoadCLIConfig(configFile string, envPath string) (*CLIConfig, error) {
	v := configureViper("teoctl", configFile, envPath)

	setDatabaseDefaults(v, 2, 1)
	setChainDefaults(v)
	setEngineDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg CLIConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validate(cfg.Database, cfg.Engine); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDatabaseDefaults(v *viper.Viper, maxOpen, maxIdle int) {
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_open_conns", maxOpen)
	v.SetDefault("database.max_idle_conns", maxIdle)
	v.SetDefault("database.conn_max_lifetime", "1h")
	v.SetDefault("database.conn_max_idle_time", "10m")
}

func setChainDefaults(v *viper.Viper) {
	v.SetDefault("chain.min_gas_gwei", 25)
	v.SetDefault("chain.max_gas_gwei", 50)
	v.SetDefault("chain.gas_safety_multiplier", 1.1)
	v.SetDefault("chain.fallback_gas_gwei", 30)
	v.SetDefault("chain.mint_retries", 3)
	v.SetDefault("chain.mint_retry_interval", "1s")
	v.SetDefault("chain.mint_gas_limit", 200000)
	v.SetDefault("chain.rpc_timeout", "30s")
	v.SetDefault("chain.payment_tolerance", 0.85)
	v.SetDefault("chain.rpc_requests_per_second", 20)
	v.SetDefault("chain.rpc_burst", 10)
}

func setEngineDefaults(v *viper.Viper) {
	v.SetDefault("engine.decision_ttl_hours", 24)
	v.SetDefault("engine.sweeper_interval_seconds", 60)
	v.SetDefault("engine.sweeper_batch_size", 100)
	v.SetDefault("engine.reconciler_interval_seconds", 30)
	v.SetDefault("engine.tx_max_retries", 5)
}

func setNATSDefaults(v *viper.Viper) {
	v.SetDefault("nats.stream_name", "SETTLEMENT_EVENTS")
	v.SetDefault("nats.max_reconnects", 10)
	v.SetDefault("nats.reconnect_wait", "2s")
	v.SetDefault("nats.connection_name", "settlement-engine")
	v.SetDefault("nats.ack_wait", "30s")
	v.SetDefault("nats.max_deliver", 5)
}

func validate(db DatabaseConfig, engine EngineConfig) error {
	if db.Host == "" {
		return errors.New("database.host is required")
	}
	if db.DBName == "" {
		return errors.New("database.dbname is required")
	}
	if engine.ReservePoolUserID <= 0 {
		return errors.New("engine.reserve_pool_user_id must be positive")
	}
	if engine.DecisionTTLHours <= 0 {
		return errors.New("engine.decision_ttl_hours must be positive")
	}
	return nil
}

// configureViper returns a viper instance with the config file and environment variables set
func configureViper(service string, configFile string, envPath string) *viper.Viper {
	v := viper.New()

	loadEnv(envPath, service)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath(fmt.Sprintf("cmd/%s/", service))
		v.AddConfigPath("config/")
	}

	v.SetEnvPrefix("TEO_ENGINE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// viper only maps env vars onto struct fields for keys it already knows about
	bindAllEnvVars(v)
	return v
}

func bindAllEnvVars(v *viper.Viper) {
	keys := []string{
		"debug",
		"sentry_dsn",
		"environment",
		// Database
		"database.host",
		"database.port",
		"database.user",
		"database.password",
		"database.dbname",
		"database.sslmode",
		"database.max_open_conns",
		"database.max_idle_conns",
		"database.conn_max_lifetime",
		"database.conn_max_idle_time",
		// Chain
		"chain.rpc_url",
		"chain.token_contract_address",
		"chain.platform_wallet",
		"chain.admin_private_key",
		"chain.chain_id",
		"chain.min_gas_gwei",
		"chain.max_gas_gwei",
		"chain.gas_safety_multiplier",
		"chain.fallback_gas_gwei",
		"chain.mint_retries",
		"chain.mint_retry_interval",
		"chain.mint_gas_limit",
		"chain.rpc_timeout",
		"chain.payment_tolerance",
		"chain.rpc_requests_per_second",
		"chain.rpc_burst",
		// Engine
		"engine.reserve_pool_user_id",
		"engine.decision_ttl_hours",
		"engine.sweeper_interval_seconds",
		"engine.sweeper_batch_size",
		"engine.reconciler_interval_seconds",
		"engine.tx_max_retries",
		// Redis
		"redis.addr",
		"redis.password",
		"redis.db",
		"redis.balance_cache_ttl",
		// NATS
		"nats.url",
		"nats.stream_name",
		"nats.consumer_name",
		"nats.max_reconnects",
		"nats.reconnect_wait",
		"nats.connection_name",
		"nats.ack_wait",
		"nats.max_deliver",
		// Server
		"server.host",
		"server.port",
		"server.read_timeout",
		"server.write_timeout",
		"server.idle_timeout",
		"server.cors_origins",
		// Auth
		"auth.jwt_public_key",
		"auth.api_keys",
		// Rate limit
		"rate_limit.enabled",
		"rate_limit.requests_per_minute",
		"rate_limit.burst",
		// Worker
		"worker.pool_size",
		"worker.queue_size",
		// Review bridge
		"review_stream",
		"review_subject",
	}

	for _, key := range keys {
		_ = v.BindEnv(key)
	}
}

// loadEnv loads environment variables from the config directory
func loadEnv(envPath string, service string) {
	envFiles := []string{".env", ".env.local"}
	if service != "" {
		envFiles = append(envFiles, ".env."+service+".local")
	}

	if envPath == "" {
		envPath = "config/"
	}

	for _, envFile := range envFiles {
		_ = godotenv.Overload(filepath.Join(envPath, envFile))
	}
}

// ChdirRepoRoot changes the current working directory to the repository root
func ChdirRepoRoot() {
	cwd, _ := os.Getwd()
	for range 5 {
		if _, err := os.Stat(filepath.Join(cwd, "config")); err == nil {
			_ = os.Chdir(cwd)
			return
		}
		cwd = filepath.Dir(cwd)
	}
}

// DSN returns the database connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}
