package controller

import (
	"math/big"

	"github.com/greenstamp/greenstamp-wallet/internal/configs"
	"github.com/greenstamp/greenstamp-wallet/internal/manager"
	"github.com/greenstamp/greenstamp-wallet/internal/wallet"
)

// WalletResponse leaves out the key material of the record
type WalletResponse struct {
	Address      string               `json:"address"`
	Balance      float64              `json:"balance"`
	EduBalance   float64              `json:"eduBalance"`
	Symbol       string               `json:"symbol"`
	ExplorerURL  string               `json:"explorerUrl"`
	Transactions []wallet.Transaction `json:"transactions"`
}

func (WalletResponse) Message() string { return "wallet loaded" }

func newWalletResponse(cfg *configs.Config, w wallet.Wallet) WalletResponse {
	txs := w.Transactions
	if txs == nil {
		txs = []wallet.Transaction{}
	}
	return WalletResponse{
		Address:      w.Address,
		Balance:      w.Balance,
		EduBalance:   w.EduBalance,
		Symbol:       configs.NativeSymbol,
		ExplorerURL:  configs.ExplorerAddressURL(cfg.ExplorerURL, w.Address),
		Transactions: txs,
	}
}

type TransactionsResponse struct {
	Transactions []wallet.Transaction `json:"transactions"`
}

type SendRequest struct {
	To          string  `json:"to"`
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
}

type SendResponse struct {
	manager.SendResult
	ExplorerURL string `json:"explorerUrl,omitempty"`
}

func (r SendResponse) Message() string {
	if r.Success {
		return "transaction sent"
	}
	return "transaction failed"
}

type EstimateRequest struct {
	To     string  `json:"to"`
	Amount float64 `json:"amount"`
}

type EstimateResponse struct {
	GasLimit uint64   `json:"gasLimit"`
	GasPrice *big.Int `json:"gasPrice"`
	GasInWei *big.Int `json:"gasInWei"`
	GasInEdu float64  `json:"gasInEdu"`
}

type SignRequest struct {
	Message string `json:"message"`
}

type SignResponse struct {
	Address   string `json:"address"`
	Signature string `json:"signature"`
}

type StatusResponse struct {
	Hash        string `json:"hash"`
	Status      string `json:"status"`
	ExplorerURL string `json:"explorerUrl"`
}

// RegistryResponse never includes the linked private key
type RegistryResponse struct {
	Owner     string `json:"owner"`
	Linked    bool   `json:"linked"`
	PublicKey string `json:"publicKey,omitempty"`
	LinkedAt  int64  `json:"linkedAt,omitempty"`
}
