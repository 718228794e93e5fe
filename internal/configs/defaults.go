package configs

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/greenstamp/greenstamp-wallet/internal/logging"
)

// DefaultDataDir returns the default data dir "~/.greenstamp/"
// if homedir is not found falls back to current directory "."
func DefaultDataDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		logging.L.Err(err).Msg("error getting home directory")
		logging.L.Info().Msg("falling back to current directory")
		homeDir = "."
	}
	dataDir := filepath.Join(homeDir, ".greenstamp")
	logging.L.Trace().Str("data_dir", dataDir).Msg("data directory")
	return dataDir
}

// ResolvePath expands a leading "~" and makes the path absolute where possible
func ResolvePath(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(homeDir, strings.TrimPrefix(path, "~"))
		}
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return abs
}

// EDU chain testnet
const (
	DefaultRPCURL          = "https://alpha-scan-ai.vercel.app/api/proxy"
	DefaultChainID         = 656476
	DefaultExplorerURL     = "https://edu-chain-testnet.blockscout.com"
	DefaultRegistryAddress = "0x8fF00cED35C26EA1dC89F8B730F7949aC15F4116"
	NativeSymbol           = "EDU"
)

// Gas handling for native transfers
const (
	DefaultGasPriceGwei       = 50
	DefaultFallbackGasLimit   = 300000
	DefaultPriceMultiplierPct = 120
	DefaultLimitBufferPct     = 120
	DefaultConfirmTimeout     = 60 * time.Second
)

// Storage keys, kept identical to the ones the web client used
const (
	AgentWalletKey  = "agent-wallet"
	LinkedWalletKey = "wallet"
)

const (
	DefaultStorageBackend = "plain"
	DefaultStorageCodec   = "json"
	DefaultHTTPAddress    = "127.0.0.1:8080"
	DefaultSyncInterval   = 30 * time.Second
)

// ExplorerTxURL links a transaction hash on the block explorer
func ExplorerTxURL(explorer, hash string) string {
	return fmt.Sprintf("%s/tx/%s", strings.TrimRight(explorer, "/"), hash)
}

// ExplorerAddressURL links an account on the block explorer
func ExplorerAddressURL(explorer, address string) string {
	return fmt.Sprintf("%s/address/%s", strings.TrimRight(explorer, "/"), address)
}
