// Package wallet holds the agent wallet record, its keys and its
// transaction history
package wallet

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

var (
	ErrNoWallet      = errors.New("no wallet stored")
	ErrInvalidAmount = errors.New("transaction amount must be positive")
)

type TransactionType string

const (
	TransactionTypeDeposit    TransactionType = "deposit"
	TransactionTypeWithdrawal TransactionType = "withdrawal"
)

// Transaction is an entry of the wallet history. Entries are never changed
// once written.
type Transaction struct {
	ID          string          `json:"id"`
	Type        TransactionType `json:"type"`
	Amount      float64         `json:"amount"` // display units, always > 0
	Description string          `json:"description"`
	Timestamp   int64           `json:"timestamp"` // unix millis
	Hash        string          `json:"hash,omitempty"`
}

// Wallet is persisted as one record. Field names match the records the web
// client wrote so existing data stays readable.
type Wallet struct {
	Address    string `json:"address"`
	PrivateKey string `json:"privateKey"`
	Mnemonic   string `json:"mnemonic,omitempty"`
	// Balance is a display-only USD figure
	Balance float64 `json:"balance"`
	// EduBalance is the native token balance as last read from the chain
	EduBalance   float64       `json:"eduBalance"`
	Transactions []Transaction `json:"transactions"`
}

// Clone returns a copy that shares no memory with w
func (w Wallet) Clone() Wallet {
	out := w
	out.Transactions = make([]Transaction, len(w.Transactions))
	copy(out.Transactions, w.Transactions)
	return out
}

// Account returns the wallet address
func (w Wallet) Account() common.Address {
	return common.HexToAddress(w.Address)
}

// Key parses the stored private key
func (w Wallet) Key() (*ecdsa.PrivateKey, error) {
	return ParsePrivateKey(w.PrivateKey)
}

// ParsePrivateKey accepts a hex key with or without 0x prefix
func ParsePrivateKey(hexKey string) (*ecdsa.PrivateKey, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(strings.TrimSpace(hexKey), "0x"))
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}
	return key, nil
}
