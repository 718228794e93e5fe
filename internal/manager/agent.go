package manager

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/greenstamp/greenstamp-wallet/internal/chain"
	"github.com/greenstamp/greenstamp-wallet/internal/logging"
	"github.com/greenstamp/greenstamp-wallet/internal/registry"
	"github.com/greenstamp/greenstamp-wallet/internal/wallet"
)

// ErrNoRegistry is returned when no registry address is configured
var ErrNoRegistry = errors.New("no key registry configured")

// ResolveAgentWallet picks the wallet the agent works with for owner.
// Keys linked in the registry come first, then the locally linked record,
// then the generated agent wallet. The balance is refreshed on a best
// effort basis.
func (m *Manager) ResolveAgentWallet(ctx context.Context, owner common.Address) (wallet.Wallet, error) {
	var (
		keys registry.LinkedKeys
		ok   bool
		err  error
	)
	if owner != (common.Address{}) {
		keys, ok, err = m.LinkedKeys(ctx, owner)
		if err != nil && !errors.Is(err, ErrNoRegistry) {
			logging.L.Warn().Err(err).Str("owner", owner.Hex()).Msg("failed to read linked keys")
		}
	}

	if ok {
		w := wallet.Wallet{
			Address:      keys.PublicKey,
			PrivateKey:   keys.PrivateKey,
			Transactions: []wallet.Transaction{},
		}
		if err := m.rememberLinked(w); err != nil {
			return wallet.Wallet{}, err
		}
		return m.UpdateEduBalance(ctx, m.latest(w)), nil
	}

	w, err := m.linked.Load()
	switch {
	case err == nil:
	case errors.Is(err, wallet.ErrNoWallet):
		if w, err = m.agent.GetOrCreate(); err != nil {
			return wallet.Wallet{}, err
		}
	default:
		return wallet.Wallet{}, err
	}

	return m.UpdateEduBalance(ctx, w), nil
}

// rememberLinked stores the registry keys under the linked key unless the
// same keys are there already
func (m *Manager) rememberLinked(w wallet.Wallet) error {
	existing, err := m.linked.Load()
	if err == nil && sameAddress(existing.Address, w.Address) && existing.PrivateKey == w.PrivateKey {
		return nil
	}
	if err != nil && !errors.Is(err, wallet.ErrNoWallet) {
		return err
	}
	logging.L.Info().Str("address", w.Address).Msg("storing keys linked in registry")
	return m.linked.Save(w)
}

// LinkedKeys reads the keys linked for owner from the registry
func (m *Manager) LinkedKeys(ctx context.Context, owner common.Address) (registry.LinkedKeys, bool, error) {
	if m.cfg.RegistryAddress == "" {
		return registry.LinkedKeys{}, false, ErrNoRegistry
	}
	if !common.IsHexAddress(m.cfg.RegistryAddress) {
		return registry.LinkedKeys{}, false, fmt.Errorf("invalid registry address: %q", m.cfg.RegistryAddress)
	}

	client, err := m.dial(ctx, m.cfg.RPCURL)
	if err != nil {
		return registry.LinkedKeys{}, false, err
	}
	defer chain.Close(client)

	reg := registry.NewCaller(common.HexToAddress(m.cfg.RegistryAddress), client)
	reg.From = owner
	return reg.LinkedKeys(ctx, owner)
}

// LinkWallet writes the keys of w to the registry on behalf of signer and
// waits for the transaction within the confirmation timeout
func (m *Manager) LinkWallet(ctx context.Context, w wallet.Wallet, signer *ecdsa.PrivateKey) (*types.Transaction, error) {
	if m.cfg.RegistryAddress == "" {
		return nil, ErrNoRegistry
	}

	client, err := m.dial(ctx, m.cfg.RPCURL)
	if err != nil {
		return nil, err
	}
	defer chain.Close(client)

	backend, ok := client.(bind.ContractBackend)
	if !ok {
		return nil, fmt.Errorf("client %T cannot send contract transactions", client)
	}

	opts, err := bind.NewKeyedTransactorWithChainID(signer, big.NewInt(m.cfg.ChainID))
	if err != nil {
		return nil, fmt.Errorf("failed to create transactor: %w", err)
	}
	opts.Context = ctx

	reg := registry.New(common.HexToAddress(m.cfg.RegistryAddress), backend)
	tx, err := reg.LinkKeys(opts, w.PrivateKey, w.Address)
	if err != nil {
		return nil, fmt.Errorf("failed to link keys: %w", err)
	}
	logging.L.Info().Str("txid", tx.Hash().Hex()).Str("address", w.Address).Msg("link transaction sent")

	waitCtx, cancel := context.WithTimeout(ctx, m.cfg.ConfirmTimeout)
	defer cancel()

	if _, err := bind.WaitMined(waitCtx, client, tx); err != nil {
		logging.L.Warn().Err(err).Str("txid", tx.Hash().Hex()).Msg("link transaction may still be pending")
	}
	return tx, nil
}
