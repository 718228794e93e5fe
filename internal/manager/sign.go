package manager

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/greenstamp/greenstamp-wallet/internal/wallet"
)

// SignMessage creates a personal_sign (EIP-191) signature over message.
// The recovery id is returned as 27 or 28.
func (m *Manager) SignMessage(w wallet.Wallet, message string) (string, error) {
	key, err := w.Key()
	if err != nil {
		return "", err
	}

	sig, err := crypto.Sign(accounts.TextHash([]byte(message)), key)
	if err != nil {
		return "", fmt.Errorf("failed to sign message: %w", err)
	}
	sig[crypto.RecoveryIDOffset] += 27

	return hexutil.Encode(sig), nil
}

// SignTransaction signs tx for the configured chain and returns the raw
// encoding ready for eth_sendRawTransaction
func (m *Manager) SignTransaction(w wallet.Wallet, tx *types.Transaction) (string, error) {
	key, err := w.Key()
	if err != nil {
		return "", err
	}

	signed, err := types.SignTx(tx, types.LatestSignerForChainID(big.NewInt(m.cfg.ChainID)), key)
	if err != nil {
		return "", fmt.Errorf("failed to sign transaction: %w", err)
	}

	raw, err := signed.MarshalBinary()
	if err != nil {
		return "", fmt.Errorf("failed to encode transaction: %w", err)
	}
	return hexutil.Encode(raw), nil
}
