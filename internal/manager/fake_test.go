package manager

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/require"

	"github.com/greenstamp/greenstamp-wallet/internal/chain"
	"github.com/greenstamp/greenstamp-wallet/internal/configs"
	"github.com/greenstamp/greenstamp-wallet/internal/registry"
	"github.com/greenstamp/greenstamp-wallet/internal/storage"
	"github.com/greenstamp/greenstamp-wallet/internal/wallet"
)

// first two accounts of the well known development mnemonic
const (
	devKey0     = "0xac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
	devAddress1 = "0x70997970C51812dc3A010C7d01b50e0d17dc79C8"
	devKey1     = "0x59c6995e998f97a5a0044966f0945389dc9e86dae88c7a8412f4603b6b78690d"
)

// fakeClient is an in memory node. Sent transactions lower the balance by
// their value and get a receipt when mined is set.
type fakeClient struct {
	mu sync.Mutex

	balance    *big.Int
	balanceErr error

	gasPrice    *big.Int
	gasPriceErr error

	gas    uint64
	gasErr error

	nonce    uint64
	nonceErr error

	sendErr error
	sent    []*types.Transaction

	mined    bool
	receipts map[common.Hash]*types.Receipt

	// registry answers keyed by method name, nil makes every call revert
	contract map[string][]interface{}

	estimates []ethereum.CallMsg
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		balance:  chain.ToWei(10),
		gasPrice: chain.GweiToWei(1),
		gas:      21000,
		mined:    true,
		receipts: map[common.Hash]*types.Receipt{},
	}
}

func (f *fakeClient) BalanceAt(context.Context, common.Address, *big.Int) (*big.Int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.balanceErr != nil {
		return nil, f.balanceErr
	}
	return new(big.Int).Set(f.balance), nil
}

func (f *fakeClient) SuggestGasPrice(context.Context) (*big.Int, error) {
	if f.gasPriceErr != nil {
		return nil, f.gasPriceErr
	}
	return f.gasPrice, nil
}

func (f *fakeClient) EstimateGas(_ context.Context, msg ethereum.CallMsg) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.estimates = append(f.estimates, msg)
	if f.gasErr != nil {
		return 0, f.gasErr
	}
	return f.gas, nil
}

func (f *fakeClient) PendingNonceAt(context.Context, common.Address) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.nonceErr != nil {
		return 0, f.nonceErr
	}
	return f.nonce + uint64(len(f.sent)), nil
}

func (f *fakeClient) SendTransaction(_ context.Context, tx *types.Transaction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, tx)
	f.balance = new(big.Int).Sub(f.balance, tx.Value())
	return nil
}

func (f *fakeClient) TransactionReceipt(_ context.Context, hash common.Hash) (*types.Receipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if receipt, ok := f.receipts[hash]; ok {
		return receipt, nil
	}
	if !f.mined {
		return nil, ethereum.NotFound
	}
	for _, tx := range f.sent {
		if tx.Hash() == hash {
			return &types.Receipt{
				Status:      types.ReceiptStatusSuccessful,
				TxHash:      hash,
				BlockNumber: big.NewInt(1),
			}, nil
		}
	}
	return nil, ethereum.NotFound
}

func (f *fakeClient) CodeAt(context.Context, common.Address, *big.Int) ([]byte, error) {
	return []byte{0x60}, nil
}

func (f *fakeClient) CallContract(_ context.Context, call ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	if f.contract == nil {
		return nil, errors.New("execution reverted")
	}
	parsed := registry.ABI()
	method, err := parsed.MethodById(call.Data[:4])
	if err != nil {
		return nil, err
	}
	values, ok := f.contract[method.Name]
	if !ok {
		return nil, errors.New("execution reverted")
	}
	return method.Outputs.Pack(values...)
}

func (f *fakeClient) sentTxs() []*types.Transaction {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*types.Transaction(nil), f.sent...)
}

type testEnv struct {
	m      *Manager
	client *fakeClient
	dials  *atomic.Int32
}

func newTestEnv(t *testing.T, client *fakeClient) *testEnv {
	t.Helper()

	cfg := configs.Default(t.TempDir())
	cfg.ConfirmTimeout = 5 * time.Second
	cfg.RegistryAddress = ""

	dials := new(atomic.Int32)
	dial := func(context.Context, string) (chain.Client, error) {
		dials.Add(1)
		return client, nil
	}

	return &testEnv{
		m:      NewManager(cfg, storage.NewMemory(), storage.JSON{}, WithDialer(dial)),
		client: client,
		dials:  dials,
	}
}

// fundedWallet stores the first dev account as agent wallet with 10 EDU
func (e *testEnv) fundedWallet(t *testing.T) wallet.Wallet {
	t.Helper()
	w, err := wallet.FromPrivateKey(devKey0)
	require.NoError(t, err)
	w.EduBalance = 10
	require.NoError(t, e.m.agent.Save(w))
	return w
}

func (e *testEnv) storedAgent(t *testing.T) wallet.Wallet {
	t.Helper()
	w, err := e.m.agent.Load()
	require.NoError(t, err)
	return w
}
