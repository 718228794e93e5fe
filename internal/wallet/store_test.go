package wallet

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenstamp/greenstamp-wallet/internal/storage"
)

type seqIDs struct{ n int }

func (s *seqIDs) Generate() string {
	s.n++
	return fmt.Sprintf("tx-%d", s.n)
}

func newTestStore(t *testing.T, kv storage.Store) *Store {
	t.Helper()
	s := NewStore(kv, storage.JSON{}, "agent-wallet")
	s.ids = &seqIDs{}
	s.now = func() time.Time { return time.UnixMilli(1700000000000) }
	return s
}

func TestGetOrCreateIsStable(t *testing.T) {
	kv := storage.NewMemory()
	s := newTestStore(t, kv)

	first, err := s.GetOrCreate()
	require.NoError(t, err)
	second, err := s.GetOrCreate()
	require.NoError(t, err)

	assert.Equal(t, first.Address, second.Address)
	assert.Equal(t, first.PrivateKey, second.PrivateKey)
	assert.Zero(t, second.Balance)
	assert.Zero(t, second.EduBalance)
	assert.Empty(t, second.Transactions)

	// a fresh store on the same storage sees the same wallet
	third, err := newTestStore(t, kv).GetOrCreate()
	require.NoError(t, err)
	assert.Equal(t, first.Address, third.Address)
}

func TestGetOrCreateAcrossPlainReopen(t *testing.T) {
	dir := t.TempDir()
	kv, err := storage.NewPlain(dir)
	require.NoError(t, err)
	first, err := newTestStore(t, kv).GetOrCreate()
	require.NoError(t, err)

	kv, err = storage.NewPlain(dir)
	require.NoError(t, err)
	second, err := newTestStore(t, kv).GetOrCreate()
	require.NoError(t, err)

	assert.Equal(t, first.Address, second.Address)
}

func TestLoadMissing(t *testing.T) {
	_, err := newTestStore(t, storage.NewMemory()).Load()
	assert.ErrorIs(t, err, ErrNoWallet)
}

func TestLoadWebClientRecord(t *testing.T) {
	kv := storage.NewMemory()
	record := `{"address":"0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266","privateKey":"` + testPrivateKey + `",
		"balance":10,"eduBalance":1.25,"transactions":[{"id":"abc","type":"deposit","amount":10,
		"description":"Initial","timestamp":1700000000000}]}`
	require.NoError(t, kv.Set("agent-wallet", []byte(record)))

	w, err := newTestStore(t, kv).Load()
	require.NoError(t, err)
	assert.Equal(t, testAddress, w.Address)
	assert.Equal(t, 1.25, w.EduBalance)
	require.Len(t, w.Transactions, 1)
	assert.Equal(t, TransactionTypeDeposit, w.Transactions[0].Type)
	assert.Empty(t, w.Transactions[0].Hash)
}

func TestAddTransactionPrepends(t *testing.T) {
	s := newTestStore(t, storage.NewMemory())
	w, err := FromMnemonic(testMnemonic)
	require.NoError(t, err)

	w, err = s.AddTransaction(w, NewTransaction{Type: TransactionTypeDeposit, Amount: 5, Description: "top up"})
	require.NoError(t, err)
	before := w.Clone()

	w, err = s.AddTransaction(w, NewTransaction{
		Type:        TransactionTypeWithdrawal,
		Amount:      2,
		Description: "EDU Transfer",
		Hash:        "0xhash",
	})
	require.NoError(t, err)

	require.Len(t, w.Transactions, 2)
	assert.Equal(t, "tx-2", w.Transactions[0].ID)
	assert.Equal(t, TransactionTypeWithdrawal, w.Transactions[0].Type)
	assert.Equal(t, "0xhash", w.Transactions[0].Hash)
	assert.EqualValues(t, 1700000000000, w.Transactions[0].Timestamp)
	assert.Equal(t, before.Transactions, w.Transactions[1:])
	assert.Equal(t, 3.0, w.Balance)

	// the input copy is not modified
	assert.Len(t, before.Transactions, 1)

	stored, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, w, stored)
}

func TestAddTransactionRejectsNonPositive(t *testing.T) {
	s := newTestStore(t, storage.NewMemory())
	w, err := FromMnemonic(testMnemonic)
	require.NoError(t, err)

	for _, amount := range []float64{0, -1} {
		_, err = s.AddTransaction(w, NewTransaction{Type: TransactionTypeDeposit, Amount: amount})
		assert.ErrorIs(t, err, ErrInvalidAmount)
	}
}

type failingKV struct{}

func (failingKV) Get(string) ([]byte, error) { return nil, errors.New("disk gone") }
func (failingKV) Set(string, []byte) error   { return errors.New("disk gone") }

func TestGetOrCreateStorageFailure(t *testing.T) {
	_, err := newTestStore(t, failingKV{}).GetOrCreate()
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoWallet)
}

func TestCBORStore(t *testing.T) {
	kv := storage.NewMemory()
	s := NewStore(kv, storage.CBOR{}, "agent-wallet")

	created, err := s.GetOrCreate()
	require.NoError(t, err)
	loaded, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, created, loaded)
}
