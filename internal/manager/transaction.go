package manager

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/greenstamp/greenstamp-wallet/internal/chain"
	"github.com/greenstamp/greenstamp-wallet/internal/logging"
	"github.com/greenstamp/greenstamp-wallet/internal/wallet"
)

// SendResult is the outcome of SendEduTokens. Error can be set on a
// successful result when the confirmation wait ran out.
type SendResult struct {
	Success bool   `json:"success"`
	TxHash  string `json:"txHash,omitempty"`
	Error   string `json:"error,omitempty"`
}

func failed(msg string) SendResult {
	return SendResult{Success: false, Error: msg}
}

// GasEstimate is the fee of a transfer at the current gas price
type GasEstimate struct {
	GasLimit uint64   `json:"gasLimit"`
	GasPrice *big.Int `json:"gasPrice"`
	GasInWei *big.Int `json:"gasInWei"`
	GasInEdu float64  `json:"gasInEdu"`
}

// Transaction status constants
const (
	TransactionStatusPending   = "Pending"
	TransactionStatusConfirmed = "Confirmed"
	TransactionStatusFailed    = "Failed"
)

// SendEduTokens transfers amount EDU from w to the recipient.
// Input problems and failures up to the broadcast give an unsuccessful
// result and leave the history alone. Once broadcast the withdrawal is
// recorded and the result is successful, even when the confirmation wait
// times out.
func (m *Manager) SendEduTokens(
	ctx context.Context, w wallet.Wallet, to string, amount float64, description string,
) SendResult {
	if !common.IsHexAddress(to) {
		return failed(ErrMsgInvalidRecipient)
	}
	if !validAmount(amount) {
		return failed(ErrMsgInvalidAmount)
	}
	if amount > w.EduBalance {
		return failed(ErrMsgInsufficientBalance)
	}

	m.sendMu.Lock()
	defer m.sendMu.Unlock()

	client, tx, err := m.broadcast(ctx, w, common.HexToAddress(to), amount)
	if client != nil {
		defer chain.Close(client)
	}
	if err != nil {
		if errors.Is(err, errBalanceTooLow) {
			return failed(ErrMsgInsufficientBalance)
		}
		logging.L.Err(err).
			Str("from", w.Address).
			Str("to", to).
			Float64("amount", amount).
			Msg("error sending EDU tokens")
		return failed(ClassifyError(err))
	}

	txHash := tx.Hash().Hex()
	logging.L.Info().Str("txid", txHash).Msg("transaction sent")

	updated, err := m.AddTransaction(w, wallet.NewTransaction{
		Type:        wallet.TransactionTypeWithdrawal,
		Amount:      amount,
		Description: description,
		Hash:        txHash,
	})
	if err != nil {
		// the transfer is out, only the local record is missing
		logging.L.Err(err).Str("txid", txHash).Msg("failed to record withdrawal")
	}

	waitCtx, cancel := context.WithTimeout(ctx, m.cfg.ConfirmTimeout)
	defer cancel()

	receipt, err := bind.WaitMined(waitCtx, client, tx)
	if err != nil {
		logging.L.Warn().Err(err).Str("txid", txHash).Msg("transaction may still be pending")
		return SendResult{Success: true, TxHash: txHash, Error: MsgConfirmationTimeout}
	}

	logging.L.Info().
		Str("txid", txHash).
		Uint64("block", receipt.BlockNumber.Uint64()).
		Uint64("status", receipt.Status).
		Msg("transaction confirmed")

	if _, err := m.refreshBalance(ctx, client, updated); err != nil {
		logging.L.Warn().Err(err).Msg("error fetching EDU balance")
	}

	return SendResult{Success: true, TxHash: txHash}
}

var errBalanceTooLow = errors.New("balance lower than amount")

// ErrInvalidAmount is returned for amounts that are not a positive finite number
var ErrInvalidAmount = errors.New("invalid amount")

func validAmount(amount float64) bool {
	return amount > 0 && !math.IsInf(amount, 1)
}

// broadcast signs and submits the transfer. The client is returned whenever
// it was dialed so the caller can keep using it.
func (m *Manager) broadcast(
	ctx context.Context, w wallet.Wallet, to common.Address, amount float64,
) (chain.Client, *types.Transaction, error) {
	key, err := w.Key()
	if err != nil {
		return nil, nil, err
	}

	client, err := m.dial(ctx, m.cfg.RPCURL)
	if err != nil {
		return nil, nil, err
	}

	from := w.Account()
	value := chain.ToWei(amount)

	balance, err := client.BalanceAt(ctx, from, nil)
	if err != nil {
		return client, nil, fmt.Errorf("failed to fetch balance: %w", err)
	}
	if balance.Cmp(value) < 0 {
		return client, nil, errBalanceTooLow
	}

	gasPrice := chain.ScalePct(m.gasPrice(ctx, client), m.cfg.PriceMultiplierPct)

	gasLimit, err := client.EstimateGas(ctx, ethereum.CallMsg{From: from, To: &to, Value: value})
	if err != nil {
		logging.L.Warn().Err(err).Uint64("gas_limit", m.cfg.FallbackGasLimit).Msg("gas estimation failed, using default")
		gasLimit = m.cfg.FallbackGasLimit
	} else {
		gasLimit = chain.ScalePct(new(big.Int).SetUint64(gasLimit), m.cfg.LimitBufferPct).Uint64()
	}

	// provider errors stay unwrapped from here on, ClassifyError reads them
	nonce, err := client.PendingNonceAt(ctx, from)
	if err != nil {
		return client, nil, err
	}

	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		To:       &to,
		Value:    value,
		Gas:      gasLimit,
		GasPrice: gasPrice,
	})

	signed, err := types.SignTx(tx, types.NewEIP155Signer(big.NewInt(m.cfg.ChainID)), key)
	if err != nil {
		return client, nil, fmt.Errorf("failed to sign transaction: %w", err)
	}

	logging.L.Info().
		Str("to", to.Hex()).
		Str("value", chain.FormatWei(value)+" EDU").
		Uint64("gas_limit", gasLimit).
		Str("gas_price", chain.FormatGwei(gasPrice)+" gwei").
		Uint64("nonce", nonce).
		Int64("chain_id", m.cfg.ChainID).
		Msg("sending transaction")

	if err := client.SendTransaction(ctx, signed); err != nil {
		return client, nil, err
	}
	return client, signed, nil
}

// gasPrice asks the node for a price and falls back to the configured one
func (m *Manager) gasPrice(ctx context.Context, client chain.Client) *big.Int {
	price, err := client.SuggestGasPrice(ctx)
	if err != nil || price == nil || price.Sign() == 0 {
		fallback := chain.GweiToWei(m.cfg.DefaultGasPriceGwei)
		logging.L.Warn().Err(err).Str("gas_price", chain.FormatGwei(fallback)+" gwei").Msg("no gas price from node, using default")
		return fallback
	}
	return price
}

// EstimateTransactionGas prices a transfer without sending it.
// Estimation errors are returned as is, there is no fallback limit here.
func (m *Manager) EstimateTransactionGas(
	ctx context.Context, w wallet.Wallet, to string, amount float64,
) (GasEstimate, error) {
	if !common.IsHexAddress(to) {
		return GasEstimate{}, fmt.Errorf("invalid recipient address: %q", to)
	}
	if !validAmount(amount) {
		return GasEstimate{}, fmt.Errorf("%w: %v", ErrInvalidAmount, amount)
	}

	client, err := m.dial(ctx, m.cfg.RPCURL)
	if err != nil {
		return GasEstimate{}, err
	}
	defer chain.Close(client)

	recipient := common.HexToAddress(to)
	gasLimit, err := client.EstimateGas(ctx, ethereum.CallMsg{
		From:  w.Account(),
		To:    &recipient,
		Value: chain.ToWei(amount),
	})
	if err != nil {
		return GasEstimate{}, fmt.Errorf("failed to estimate gas: %w", err)
	}

	price := m.gasPrice(ctx, client)
	total := new(big.Int).Mul(new(big.Int).SetUint64(gasLimit), price)

	return GasEstimate{
		GasLimit: gasLimit,
		GasPrice: price,
		GasInWei: total,
		GasInEdu: chain.FromWei(total),
	}, nil
}

// TransactionStatus looks up the receipt of a sent transaction
func (m *Manager) TransactionStatus(ctx context.Context, hash string) (string, error) {
	raw := common.FromHex(hash)
	if len(raw) != common.HashLength {
		return "", fmt.Errorf("invalid transaction hash: %q", hash)
	}

	client, err := m.dial(ctx, m.cfg.RPCURL)
	if err != nil {
		return "", err
	}
	defer chain.Close(client)

	receipt, err := client.TransactionReceipt(ctx, common.BytesToHash(raw))
	if errors.Is(err, ethereum.NotFound) {
		return TransactionStatusPending, nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to fetch receipt: %w", err)
	}
	if receipt.Status == types.ReceiptStatusSuccessful {
		return TransactionStatusConfirmed, nil
	}
	return TransactionStatusFailed, nil
}
