// Package chain wraps the JSON-RPC client used to talk to the EDU chain
package chain

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
)

// Client is the part of the JSON-RPC surface the wallet needs.
// *ethclient.Client and the simulated backend client both satisfy it.
type Client interface {
	BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error)
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
	CodeAt(ctx context.Context, account common.Address, blockNumber *big.Int) ([]byte, error)
	CallContract(ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

// Dialer opens a Client for an endpoint
type Dialer func(ctx context.Context, rawURL string) (Client, error)

// Dial connects to a JSON-RPC endpoint over http(s) or websocket
func Dial(ctx context.Context, rawURL string) (Client, error) {
	client, err := ethclient.DialContext(ctx, rawURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", rawURL, err)
	}
	return client, nil
}

// Close releases the connection if the client holds one
func Close(c Client) {
	if closer, ok := c.(interface{ Close() }); ok {
		closer.Close()
	}
}
