package configs

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/greenstamp/greenstamp-wallet/internal/logging"
)

const (
	configName = "greenstamp"
	configType = "toml"
	envPrefix  = "GREENSTAMP"
)

// Config is the resolved application configuration
type Config struct {
	DataDir string

	RPCURL          string
	ChainID         int64
	ExplorerURL     string
	RegistryAddress string

	StorageBackend string
	StorageCodec   string

	DefaultGasPriceGwei int64
	FallbackGasLimit    uint64
	PriceMultiplierPct  int64
	LimitBufferPct      int64
	ConfirmTimeout      time.Duration

	HTTPAddress  string
	SyncInterval time.Duration
}

// setDefaultConfig sets default configuration values
func setDefaultConfig(config *viper.Viper) {
	config.SetDefault("rpc_url", DefaultRPCURL)
	config.SetDefault("chain_id", DefaultChainID)
	config.SetDefault("explorer_url", DefaultExplorerURL)
	config.SetDefault("registry.address", DefaultRegistryAddress)
	config.SetDefault("storage.backend", DefaultStorageBackend)
	config.SetDefault("storage.codec", DefaultStorageCodec)
	config.SetDefault("gas.default_price_gwei", DefaultGasPriceGwei)
	config.SetDefault("gas.fallback_limit", DefaultFallbackGasLimit)
	config.SetDefault("gas.price_multiplier_pct", DefaultPriceMultiplierPct)
	config.SetDefault("gas.limit_buffer_pct", DefaultLimitBufferPct)
	config.SetDefault("confirmation_timeout", DefaultConfirmTimeout)
	config.SetDefault("http.address", DefaultHTTPAddress)
	config.SetDefault("sync_interval", DefaultSyncInterval)
}

// Default returns the built-in configuration without touching the disk
func Default(dataDir string) *Config {
	v := viper.New()
	setDefaultConfig(v)
	return fromViper(v, dataDir)
}

// Load initializes the configuration with defaults and loads existing config.
// A missing config file is created from the defaults. Values from a .env file
// in the data dir or working dir and GREENSTAMP_* env variables take precedence.
func Load(dataDir string) (*Config, error) {
	for _, envFile := range []string{filepath.Join(dataDir, ".env"), ".env"} {
		// a missing .env is the common case
		if err := godotenv.Load(envFile); err == nil {
			logging.L.Debug().Str("file", envFile).Msg("loaded env file")
		}
	}

	config := viper.New()
	config.SetConfigName(configName)
	config.SetConfigType(configType)
	config.AddConfigPath(dataDir)
	config.SetEnvPrefix(envPrefix)
	config.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	config.AutomaticEnv()

	setDefaultConfig(config)

	if err := config.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		path := filepath.Join(dataDir, configName+"."+configType)
		if err := config.WriteConfigAs(path); err != nil {
			return nil, fmt.Errorf("failed to write default config: %w", err)
		}
		logging.L.Info().Str("path", path).Msg("default config file created")
	} else {
		logging.L.Debug().Str("path", config.ConfigFileUsed()).Msg("existing config loaded")
	}

	cfg := fromViper(config, dataDir)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func fromViper(v *viper.Viper, dataDir string) *Config {
	return &Config{
		DataDir:             dataDir,
		RPCURL:              v.GetString("rpc_url"),
		ChainID:             v.GetInt64("chain_id"),
		ExplorerURL:         v.GetString("explorer_url"),
		RegistryAddress:     v.GetString("registry.address"),
		StorageBackend:      v.GetString("storage.backend"),
		StorageCodec:        v.GetString("storage.codec"),
		DefaultGasPriceGwei: v.GetInt64("gas.default_price_gwei"),
		FallbackGasLimit:    v.GetUint64("gas.fallback_limit"),
		PriceMultiplierPct:  v.GetInt64("gas.price_multiplier_pct"),
		LimitBufferPct:      v.GetInt64("gas.limit_buffer_pct"),
		ConfirmTimeout:      v.GetDuration("confirmation_timeout"),
		HTTPAddress:         v.GetString("http.address"),
		SyncInterval:        v.GetDuration("sync_interval"),
	}
}

// Validate rejects values the manager cannot work with
func (c *Config) Validate() error {
	if c.RPCURL == "" {
		return fmt.Errorf("rpc_url must not be empty")
	}
	if c.ChainID <= 0 {
		return fmt.Errorf("chain_id must be positive, got %d", c.ChainID)
	}
	if c.FallbackGasLimit == 0 {
		return fmt.Errorf("gas.fallback_limit must be positive")
	}
	if c.PriceMultiplierPct <= 0 || c.LimitBufferPct <= 0 {
		return fmt.Errorf("gas multipliers must be positive")
	}
	if c.ConfirmTimeout <= 0 {
		return fmt.Errorf("confirmation_timeout must be positive")
	}
	if c.SyncInterval <= 0 {
		return fmt.Errorf("sync_interval must be positive")
	}
	return nil
}
