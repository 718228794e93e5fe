// Package setup wires configuration, storage and the wallet manager together
package setup

import (
	"fmt"
	"os"

	"github.com/greenstamp/greenstamp-wallet/internal/configs"
	"github.com/greenstamp/greenstamp-wallet/internal/logging"
	"github.com/greenstamp/greenstamp-wallet/internal/manager"
	"github.com/greenstamp/greenstamp-wallet/internal/storage"
)

// ResolveDataDir returns the default data dir for an empty input and the
// expanded absolute path otherwise
func ResolveDataDir(dataDir string) string {
	if dataDir == "" {
		return configs.DefaultDataDir()
	}
	return configs.ResolvePath(dataDir)
}

// NewManagerWithDataDir creates a wallet manager using the provided data directory.
// If dataDir is empty, it falls back to configs.DefaultDataDir().
// Returns (manager, exists, error) where exists indicates if an agent wallet was stored already.
// The caller closes the manager.
func NewManagerWithDataDir(dataDir string, opts ...manager.Option) (*manager.Manager, bool, error) {
	dataDir = ResolveDataDir(dataDir)

	// Ensure data directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, false, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg, err := configs.Load(dataDir)
	if err != nil {
		logging.L.Err(err).Msg("failed to load config")
		return nil, false, err
	}

	kv, err := storage.Open(cfg.StorageBackend, dataDir)
	if err != nil {
		return nil, false, fmt.Errorf("failed to open storage: %w", err)
	}

	codec, err := storage.NewCodec(cfg.StorageCodec)
	if err != nil {
		if closer, ok := kv.(storage.Closer); ok {
			closer.Close()
		}
		return nil, false, err
	}

	m := manager.NewManager(cfg, kv, codec, opts...)

	exists, err := m.HasWallet()
	if err != nil {
		logging.L.Err(err).Msg("failed to load wallet")
		m.Close()
		return nil, false, err
	}

	logging.L.Debug().
		Str("data_dir", dataDir).
		Str("storage", cfg.StorageBackend).
		Bool("wallet_exists", exists).
		Msg("manager ready")

	return m, exists, nil
}
