// Package controller is the interface between a frontend and the wallet
// manager, served as a local json api
package controller

import (
	"context"

	"github.com/ethereum/go-ethereum/common"

	"github.com/greenstamp/greenstamp-wallet/internal/configs"
	"github.com/greenstamp/greenstamp-wallet/internal/manager"
	"github.com/greenstamp/greenstamp-wallet/internal/registry"
	"github.com/greenstamp/greenstamp-wallet/internal/wallet"
)

// WalletManager is the part of manager.Manager the api uses
type WalletManager interface {
	Config() *configs.Config
	GetOrCreateWallet() (wallet.Wallet, error)
	ResolveAgentWallet(ctx context.Context, owner common.Address) (wallet.Wallet, error)
	UpdateEduBalance(ctx context.Context, w wallet.Wallet) wallet.Wallet
	SendEduTokens(ctx context.Context, w wallet.Wallet, to string, amount float64, description string) manager.SendResult
	EstimateTransactionGas(ctx context.Context, w wallet.Wallet, to string, amount float64) (manager.GasEstimate, error)
	SignMessage(w wallet.Wallet, message string) (string, error)
	TransactionStatus(ctx context.Context, hash string) (string, error)
	LinkedKeys(ctx context.Context, owner common.Address) (registry.LinkedKeys, bool, error)
}

// Controller serves the wallet endpoints
type Controller struct {
	m WalletManager
}

// Register creates a router with every wallet endpoint on it
func Register(m WalletManager, ids Generator) *Router {
	c := &Controller{m: m}
	r := NewRouter(ids)

	r.GET("/health", c.Health)

	r.GET("/wallet", c.Wallet) // ?owner=
	r.POST("/wallet/balance", c.RefreshBalance)
	r.GET("/wallet/transactions", c.Transactions)
	r.POST("/wallet/send", c.Send)
	r.POST("/wallet/estimate", c.Estimate)
	r.POST("/wallet/sign", c.Sign)
	r.Handle("GET", "/wallet/qr", c.QR())

	r.GET("/transactions/:hash/status", c.Status)
	r.GET("/registry/:address", c.Registry)

	return r
}
