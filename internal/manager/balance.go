package manager

import (
	"context"
	"fmt"

	"github.com/greenstamp/greenstamp-wallet/internal/chain"
	"github.com/greenstamp/greenstamp-wallet/internal/logging"
	"github.com/greenstamp/greenstamp-wallet/internal/wallet"
)

// UpdateEduBalance reads the native balance of w and stores it.
// Any failure is logged and w is returned unchanged.
func (m *Manager) UpdateEduBalance(ctx context.Context, w wallet.Wallet) wallet.Wallet {
	updated, err := m.FetchEduBalance(ctx, w)
	if err != nil {
		logging.L.Warn().Err(err).Str("address", w.Address).Msg("error fetching EDU balance")
		return w
	}
	return updated
}

// FetchEduBalance is UpdateEduBalance with the error handed back
func (m *Manager) FetchEduBalance(ctx context.Context, w wallet.Wallet) (wallet.Wallet, error) {
	client, err := m.dial(ctx, m.cfg.RPCURL)
	if err != nil {
		return w, err
	}
	defer chain.Close(client)

	return m.refreshBalance(ctx, client, w)
}

func (m *Manager) refreshBalance(ctx context.Context, client chain.Client, w wallet.Wallet) (wallet.Wallet, error) {
	wei, err := client.BalanceAt(ctx, w.Account(), nil)
	if err != nil {
		return w, fmt.Errorf("failed to fetch balance: %w", err)
	}

	m.recordMu.Lock()
	defer m.recordMu.Unlock()

	updated := m.latest(w).Clone()
	updated.EduBalance = chain.FromWei(wei)
	if err := m.storeFor(updated).Save(updated); err != nil {
		return w, err
	}

	logging.L.Debug().
		Str("address", updated.Address).
		Str("balance", chain.FormatWei(wei)).
		Msg("updated EDU balance")
	return updated, nil
}
