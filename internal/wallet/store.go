package wallet

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/greenstamp/greenstamp-wallet/internal/logging"
	"github.com/greenstamp/greenstamp-wallet/internal/storage"
)

// IDGenerator generates transaction ids
type IDGenerator interface {
	Generate() string
}

// UUID generates time ordered RFC 9562 ids
type UUID struct{}

func (UUID) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// Store persists a single wallet record under one key
type Store struct {
	kv    storage.Store
	codec storage.Codec
	key   string

	ids IDGenerator
	now func() time.Time
}

func NewStore(kv storage.Store, codec storage.Codec, key string) *Store {
	return &Store{
		kv:    kv,
		codec: codec,
		key:   key,
		ids:   UUID{},
		now:   time.Now,
	}
}

// Key is the storage key of the record
func (s *Store) Key() string {
	return s.key
}

// Load returns the stored wallet or ErrNoWallet
func (s *Store) Load() (Wallet, error) {
	data, err := s.kv.Get(s.key)
	if errors.Is(err, storage.ErrNotFound) {
		return Wallet{}, ErrNoWallet
	}
	if err != nil {
		return Wallet{}, err
	}

	var w Wallet
	if err := s.codec.Unmarshal(data, &w); err != nil {
		return Wallet{}, fmt.Errorf("failed to deserialise wallet data: %w", err)
	}
	if w.Transactions == nil {
		w.Transactions = []Transaction{}
	}
	return w, nil
}

// Save replaces the stored record with w
func (s *Store) Save(w Wallet) error {
	if w.Transactions == nil {
		w.Transactions = []Transaction{}
	}
	data, err := s.codec.Marshal(w)
	if err != nil {
		return fmt.Errorf("failed to serialise wallet data: %w", err)
	}
	if err := s.kv.Set(s.key, data); err != nil {
		return fmt.Errorf("failed to save wallet: %w", err)
	}
	return nil
}

// GetOrCreate returns the stored wallet, creating and storing a new random
// one when the key is empty
func (s *Store) GetOrCreate() (Wallet, error) {
	w, err := s.Load()
	if err == nil {
		return w, nil
	}
	if !errors.Is(err, ErrNoWallet) {
		return Wallet{}, err
	}

	w, err = NewRandom()
	if err != nil {
		return Wallet{}, err
	}
	if err := s.Save(w); err != nil {
		return Wallet{}, err
	}

	logging.L.Info().Str("address", w.Address).Str("key", s.key).Msg("created new wallet")
	return w, nil
}

// NewTransaction is the caller supplied part of a Transaction
type NewTransaction struct {
	Type        TransactionType
	Amount      float64
	Description string
	Hash        string
}

// AddTransaction puts a transaction at the head of the history, moves the
// display balance and stores the result. w itself is left untouched.
func (s *Store) AddTransaction(w Wallet, in NewTransaction) (Wallet, error) {
	if !(in.Amount > 0) {
		return w, ErrInvalidAmount
	}

	tx := Transaction{
		ID:          s.ids.Generate(),
		Type:        in.Type,
		Amount:      in.Amount,
		Description: in.Description,
		Timestamp:   s.now().UnixMilli(),
		Hash:        in.Hash,
	}

	updated := w.Clone()
	switch in.Type {
	case TransactionTypeDeposit:
		updated.Balance += in.Amount
	case TransactionTypeWithdrawal:
		updated.Balance -= in.Amount
	default:
		return w, fmt.Errorf("unknown transaction type %q", in.Type)
	}
	updated.Transactions = append([]Transaction{tx}, w.Transactions...)

	if err := s.Save(updated); err != nil {
		return w, err
	}

	logging.L.Info().
		Str("id", tx.ID).
		Str("type", string(tx.Type)).
		Str("hash", tx.Hash).
		Float64("amount", tx.Amount).
		Int("total_history_count", len(updated.Transactions)).
		Msg("added transaction to history")

	return updated, nil
}
