package manager

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenstamp/greenstamp-wallet/internal/wallet"
)

func TestHasWalletAndImport(t *testing.T) {
	env := newTestEnv(t, newFakeClient())

	exists, err := env.m.HasWallet()
	require.NoError(t, err)
	assert.False(t, exists)

	imported, err := wallet.FromPrivateKey(devKey1)
	require.NoError(t, err)
	require.NoError(t, env.m.ImportWallet(imported, false))

	w, err := env.m.GetOrCreateWallet()
	require.NoError(t, err)
	assert.Equal(t, devAddress1, w.Address)

	other, err := wallet.FromPrivateKey(devKey0)
	require.NoError(t, err)
	assert.ErrorIs(t, env.m.ImportWallet(other, false), ErrWalletExists)
	require.NoError(t, env.m.ImportWallet(other, true))

	w, err = env.m.GetOrCreateWallet()
	require.NoError(t, err)
	assert.Equal(t, other.Address, w.Address)
}

func TestAddTransactionFollowsRecord(t *testing.T) {
	env := newTestEnv(t, newFakeClient())
	agent := env.fundedWallet(t)
	require.NoError(t, env.m.linked.Save(wallet.Wallet{Address: devAddress1, PrivateKey: devKey1}))

	linked, err := env.m.linked.Load()
	require.NoError(t, err)
	_, err = env.m.AddTransaction(linked, wallet.NewTransaction{
		Type:   wallet.TransactionTypeDeposit,
		Amount: 3,
	})
	require.NoError(t, err)

	linked, err = env.m.linked.Load()
	require.NoError(t, err)
	assert.Len(t, linked.Transactions, 1)
	assert.Equal(t, 3.0, linked.Balance)
	assert.Empty(t, env.storedAgent(t).Transactions)

	_, err = env.m.AddTransaction(agent, wallet.NewTransaction{
		Type:   wallet.TransactionTypeDeposit,
		Amount: 1,
	})
	require.NoError(t, err)
	assert.Len(t, env.storedAgent(t).Transactions, 1)
}
