package manager

import (
	"context"
	"errors"
	"math"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenstamp/greenstamp-wallet/internal/chain"
	"github.com/greenstamp/greenstamp-wallet/internal/wallet"
)

func TestSendRejectsBadInputWithoutNetwork(t *testing.T) {
	env := newTestEnv(t, newFakeClient())
	w := env.fundedWallet(t)

	cases := []struct {
		name   string
		to     string
		amount float64
		want   string
	}{
		{"empty recipient", "", 1, ErrMsgInvalidRecipient},
		{"short recipient", "0x1234", 1, ErrMsgInvalidRecipient},
		{"not hex", "0xZZ997970C51812dc3A010C7d01b50e0d17dc79C8", 1, ErrMsgInvalidRecipient},
		{"zero amount", devAddress1, 0, ErrMsgInvalidAmount},
		{"negative amount", devAddress1, -1, ErrMsgInvalidAmount},
		{"nan amount", devAddress1, math.NaN(), ErrMsgInvalidAmount},
		{"infinite amount", devAddress1, math.Inf(1), ErrMsgInvalidAmount},
		{"above balance", devAddress1, 10.5, ErrMsgInsufficientBalance},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := env.m.SendEduTokens(context.Background(), w, tc.to, tc.amount, "test")
			assert.False(t, res.Success)
			assert.Equal(t, tc.want, res.Error)
			assert.Empty(t, res.TxHash)
		})
	}

	assert.Zero(t, env.dials.Load(), "no network call for invalid input")
	assert.Empty(t, env.storedAgent(t).Transactions)
}

func TestSendConfirmed(t *testing.T) {
	client := newFakeClient()
	client.nonce = 5
	env := newTestEnv(t, client)
	w := env.fundedWallet(t)

	res := env.m.SendEduTokens(context.Background(), w, devAddress1, 1.5, "carbon offset")
	require.True(t, res.Success, res.Error)
	assert.Empty(t, res.Error)

	sent := client.sentTxs()
	require.Len(t, sent, 1)
	tx := sent[0]
	assert.Equal(t, res.TxHash, tx.Hash().Hex())
	assert.Equal(t, common.HexToAddress(devAddress1), *tx.To())
	assert.Equal(t, chain.ToWei(1.5), tx.Value())
	assert.EqualValues(t, 25200, tx.Gas(), "estimate plus 20%")
	assert.Equal(t, big.NewInt(1_200_000_000), tx.GasPrice(), "price plus 20%")
	assert.EqualValues(t, 5, tx.Nonce())
	assert.Equal(t, uint8(types.LegacyTxType), tx.Type())
	assert.Equal(t, big.NewInt(656476), tx.ChainId())

	sender, err := types.Sender(types.NewEIP155Signer(big.NewInt(656476)), tx)
	require.NoError(t, err)
	assert.Equal(t, w.Account(), sender)

	require.Len(t, client.estimates, 1)
	assert.Equal(t, w.Account(), client.estimates[0].From)
	assert.Equal(t, chain.ToWei(1.5), client.estimates[0].Value)

	stored := env.storedAgent(t)
	require.Len(t, stored.Transactions, 1)
	entry := stored.Transactions[0]
	assert.Equal(t, wallet.TransactionTypeWithdrawal, entry.Type)
	assert.Equal(t, 1.5, entry.Amount)
	assert.Equal(t, "carbon offset", entry.Description)
	assert.Equal(t, res.TxHash, entry.Hash)
	assert.Equal(t, -1.5, stored.Balance)
	assert.Equal(t, 8.5, stored.EduBalance, "balance refreshed after confirmation")
}

func TestSendUsesFallbacks(t *testing.T) {
	client := newFakeClient()
	client.gasErr = errors.New("execution reverted")
	client.gasPriceErr = errors.New("method not found")
	env := newTestEnv(t, client)
	w := env.fundedWallet(t)

	res := env.m.SendEduTokens(context.Background(), w, devAddress1, 1, "")
	require.True(t, res.Success, res.Error)

	sent := client.sentTxs()
	require.Len(t, sent, 1)
	assert.EqualValues(t, 300000, sent[0].Gas())
	assert.Equal(t, chain.GweiToWei(60), sent[0].GasPrice(), "50 gwei default plus 20%")
}

func TestSendConfirmationTimeout(t *testing.T) {
	client := newFakeClient()
	client.mined = false
	env := newTestEnv(t, client)
	env.m.cfg.ConfirmTimeout = 50 * time.Millisecond
	w := env.fundedWallet(t)

	start := time.Now()
	res := env.m.SendEduTokens(context.Background(), w, devAddress1, 2, "pending")
	assert.Less(t, time.Since(start), 2*time.Second)

	assert.True(t, res.Success)
	assert.Equal(t, MsgConfirmationTimeout, res.Error)
	require.NotEmpty(t, res.TxHash)

	stored := env.storedAgent(t)
	require.Len(t, stored.Transactions, 1, "pending record is kept")
	assert.Equal(t, res.TxHash, stored.Transactions[0].Hash)
	assert.Equal(t, 10.0, stored.EduBalance, "balance not refreshed without confirmation")
}

func TestSendClassifiesFailures(t *testing.T) {
	cases := []struct {
		name  string
		setup func(*fakeClient)
		want  string
	}{
		{
			name:  "insufficient funds on submit",
			setup: func(c *fakeClient) { c.sendErr = errors.New("insufficient funds for gas * price + value") },
			want:  ErrMsgInsufficientFunds,
		},
		{
			name:  "already known",
			setup: func(c *fakeClient) { c.sendErr = errors.New("already known") },
			want:  ErrMsgSequencing,
		},
		{
			name:  "nonce lookup fails",
			setup: func(c *fakeClient) { c.nonceErr = errors.New("dial tcp 10.0.0.1:443: connect: connection refused") },
			want:  ErrMsgNetwork,
		},
		{
			name:  "unknown error keeps its text",
			setup: func(c *fakeClient) { c.sendErr = errors.New("max fee per gas less than block base fee") },
			want:  "max fee per gas less than block base fee",
		},
		{
			name:  "on chain balance too low",
			setup: func(c *fakeClient) { c.balance = chain.ToWei(0.5) },
			want:  ErrMsgInsufficientBalance,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client := newFakeClient()
			tc.setup(client)
			env := newTestEnv(t, client)
			w := env.fundedWallet(t)

			res := env.m.SendEduTokens(context.Background(), w, devAddress1, 1, "")
			assert.False(t, res.Success)
			assert.Equal(t, tc.want, res.Error)
			assert.Empty(t, res.TxHash)
			assert.Empty(t, env.storedAgent(t).Transactions, "no record for a failed send")
		})
	}
}

func TestSendDialFailure(t *testing.T) {
	env := newTestEnv(t, newFakeClient())
	env.m.dial = func(context.Context, string) (chain.Client, error) {
		return nil, errors.New("failed to connect to https://rpc: dial tcp: lookup rpc: no such host")
	}
	w := env.fundedWallet(t)

	res := env.m.SendEduTokens(context.Background(), w, devAddress1, 1, "")
	assert.False(t, res.Success)
	assert.Equal(t, ErrMsgNetwork, res.Error)
}

func TestConcurrentSendsGetDistinctNonces(t *testing.T) {
	client := newFakeClient()
	env := newTestEnv(t, client)
	w := env.fundedWallet(t)

	var wg sync.WaitGroup
	results := make([]SendResult, 4)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = env.m.SendEduTokens(context.Background(), w, devAddress1, 1, "batch")
		}(i)
	}
	wg.Wait()

	for _, res := range results {
		assert.True(t, res.Success, res.Error)
	}

	nonces := map[uint64]bool{}
	for _, tx := range client.sentTxs() {
		nonces[tx.Nonce()] = true
	}
	assert.Len(t, nonces, len(results))
	assert.Len(t, env.storedAgent(t).Transactions, len(results), "every send is recorded")
}

func TestEstimateTransactionGas(t *testing.T) {
	client := newFakeClient()
	client.gasPrice = chain.GweiToWei(2)
	env := newTestEnv(t, client)
	w := env.fundedWallet(t)

	est, err := env.m.EstimateTransactionGas(context.Background(), w, devAddress1, 1)
	require.NoError(t, err)
	assert.EqualValues(t, 21000, est.GasLimit)
	assert.Equal(t, big.NewInt(42_000_000_000_000), est.GasInWei)
	assert.InDelta(t, 0.000042, est.GasInEdu, 1e-12)
	assert.Empty(t, client.sentTxs())
}

func TestEstimateTransactionGasErrors(t *testing.T) {
	client := newFakeClient()
	client.gasErr = errors.New("execution reverted")
	env := newTestEnv(t, client)
	w := env.fundedWallet(t)

	_, err := env.m.EstimateTransactionGas(context.Background(), w, devAddress1, 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "execution reverted")

	_, err = env.m.EstimateTransactionGas(context.Background(), w, "nope", 1)
	assert.Error(t, err)
}

func TestEstimateTransactionGasRejectsBadAmount(t *testing.T) {
	client := newFakeClient()
	env := newTestEnv(t, client)
	w := env.fundedWallet(t)

	for _, amount := range []float64{math.NaN(), math.Inf(1), math.Inf(-1), -1, 0} {
		_, err := env.m.EstimateTransactionGas(context.Background(), w, devAddress1, amount)
		assert.ErrorIs(t, err, ErrInvalidAmount, "amount %v", amount)
	}

	assert.Zero(t, env.dials.Load(), "no network call for invalid amounts")
	assert.Empty(t, client.estimates)
}

func TestTransactionStatus(t *testing.T) {
	client := newFakeClient()
	env := newTestEnv(t, client)

	confirmed := common.HexToHash("0x01")
	reverted := common.HexToHash("0x02")
	client.receipts[confirmed] = &types.Receipt{Status: types.ReceiptStatusSuccessful}
	client.receipts[reverted] = &types.Receipt{Status: types.ReceiptStatusFailed}

	ctx := context.Background()
	status, err := env.m.TransactionStatus(ctx, confirmed.Hex())
	require.NoError(t, err)
	assert.Equal(t, TransactionStatusConfirmed, status)

	status, err = env.m.TransactionStatus(ctx, reverted.Hex())
	require.NoError(t, err)
	assert.Equal(t, TransactionStatusFailed, status)

	status, err = env.m.TransactionStatus(ctx, common.HexToHash("0x03").Hex())
	require.NoError(t, err)
	assert.Equal(t, TransactionStatusPending, status)

	_, err = env.m.TransactionStatus(ctx, "0x1234")
	assert.Error(t, err)
}
