// Package manager runs the wallet operations that need the chain: balance
// sync, transfers, gas estimation, signing and agent key resolution
package manager

import (
	"errors"
	"strings"
	"sync"

	"github.com/greenstamp/greenstamp-wallet/internal/chain"
	"github.com/greenstamp/greenstamp-wallet/internal/configs"
	"github.com/greenstamp/greenstamp-wallet/internal/storage"
	"github.com/greenstamp/greenstamp-wallet/internal/wallet"
)

// Manager handles wallet operations against one configured chain
type Manager struct {
	cfg *configs.Config
	kv  storage.Store

	// agent is the generated wallet, linked holds keys taken over from the
	// registry or set by the user
	agent  *wallet.Store
	linked *wallet.Store

	dial chain.Dialer

	// sendMu serialises sends so two of them never read the same nonce
	sendMu sync.Mutex
	// recordMu guards load-modify-save cycles on the stored records
	recordMu sync.Mutex
}

type Option func(*Manager)

// WithDialer replaces the JSON-RPC dialer, used to plug in test backends
func WithDialer(dial chain.Dialer) Option {
	return func(m *Manager) {
		m.dial = dial
	}
}

// NewManager creates a manager keeping its records in kv
func NewManager(cfg *configs.Config, kv storage.Store, codec storage.Codec, opts ...Option) *Manager {
	m := &Manager{
		cfg:    cfg,
		kv:     kv,
		agent:  wallet.NewStore(kv, codec, configs.AgentWalletKey),
		linked: wallet.NewStore(kv, codec, configs.LinkedWalletKey),
		dial:   chain.Dial,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Manager) Config() *configs.Config {
	return m.cfg
}

// Close releases the storage backend
func (m *Manager) Close() error {
	if closer, ok := m.kv.(storage.Closer); ok {
		return closer.Close()
	}
	return nil
}

// GetOrCreateWallet returns the agent wallet, generating it on first use
func (m *Manager) GetOrCreateWallet() (wallet.Wallet, error) {
	return m.agent.GetOrCreate()
}

// HasWallet reports whether an agent wallet is stored already
func (m *Manager) HasWallet() (bool, error) {
	_, err := m.agent.Load()
	if errors.Is(err, wallet.ErrNoWallet) {
		return false, nil
	}
	return err == nil, err
}

// AddTransaction records a history entry for w under the key w was loaded
// from. The entry is added to the stored copy, so history written since w
// was loaded is kept.
func (m *Manager) AddTransaction(w wallet.Wallet, in wallet.NewTransaction) (wallet.Wallet, error) {
	m.recordMu.Lock()
	defer m.recordMu.Unlock()
	return m.storeFor(w).AddTransaction(m.latest(w), in)
}

// storeFor picks the record w belongs to. The linked record wins when its
// address matches, everything else is written to the agent record like the
// web client did.
func (m *Manager) storeFor(w wallet.Wallet) *wallet.Store {
	if linked, err := m.linked.Load(); err == nil && sameAddress(linked.Address, w.Address) {
		return m.linked
	}
	return m.agent
}

// latest returns the stored copy of w when there is one
func (m *Manager) latest(w wallet.Wallet) wallet.Wallet {
	stored, err := m.storeFor(w).Load()
	if err != nil || !sameAddress(stored.Address, w.Address) {
		return w
	}
	return stored
}

func sameAddress(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// ErrWalletExists is returned by ImportWallet when it would replace a wallet
var ErrWalletExists = errors.New("a wallet is stored already")

// ImportWallet stores w as the agent wallet. An existing agent wallet is
// only replaced when overwrite is set.
func (m *Manager) ImportWallet(w wallet.Wallet, overwrite bool) error {
	if !overwrite {
		exists, err := m.HasWallet()
		if err != nil {
			return err
		}
		if exists {
			return ErrWalletExists
		}
	}
	return m.agent.Save(w)
}
