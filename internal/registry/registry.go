// Package registry binds the key registry contract that links an owner
// address to the agent wallet keys
package registry

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

var parsedABI abi.ABI

func init() {
	var err error
	parsedABI, err = abi.JSON(strings.NewReader(KeyRegistryABI))
	if err != nil {
		panic(fmt.Sprintf("invalid key registry abi: %v", err))
	}
}

// ABI returns the parsed contract interface
func ABI() abi.ABI {
	return parsedABI
}

// LinkedKeys are the agent keys stored for an owner
type LinkedKeys struct {
	Owner      common.Address `json:"owner"`
	PublicKey  string         `json:"publicKey"`
	PrivateKey string         `json:"privateKey"`
	LinkedAt   time.Time      `json:"linkedAt"`
}

// Registry talks to one deployed registry contract
type Registry struct {
	address  common.Address
	contract *bind.BoundContract

	// From is sent as msg.sender on reads, the contract restricts
	// private key reads to owners
	From common.Address
}

// New binds a registry for reads and writes
func New(address common.Address, backend bind.ContractBackend) *Registry {
	return &Registry{
		address:  address,
		contract: bind.NewBoundContract(address, parsedABI, backend, backend, backend),
	}
}

// NewCaller binds a read only registry
func NewCaller(address common.Address, caller bind.ContractCaller) *Registry {
	return &Registry{
		address:  address,
		contract: bind.NewBoundContract(address, parsedABI, caller, nil, nil),
	}
}

func (r *Registry) Address() common.Address {
	return r.address
}

func (r *Registry) callOpts(ctx context.Context) *bind.CallOpts {
	return &bind.CallOpts{Context: ctx, From: r.From}
}

func (r *Registry) call(ctx context.Context, method string, params ...interface{}) (interface{}, error) {
	var out []interface{}
	if err := r.contract.Call(r.callOpts(ctx), &out, method, params...); err != nil {
		return nil, fmt.Errorf("%s call failed: %w", method, err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%s returned no values", method)
	}
	return out[0], nil
}

func (r *Registry) GetPublicKey(ctx context.Context, wallet common.Address) (string, error) {
	out, err := r.call(ctx, "getPublicKey", wallet)
	if err != nil {
		return "", err
	}
	return *abi.ConvertType(out, new(string)).(*string), nil
}

func (r *Registry) GetPrivateKey(ctx context.Context, wallet common.Address) (string, error) {
	out, err := r.call(ctx, "getPrivateKey", wallet)
	if err != nil {
		return "", err
	}
	return *abi.ConvertType(out, new(string)).(*string), nil
}

func (r *Registry) HasLinkedKeys(ctx context.Context, wallet common.Address) (bool, error) {
	out, err := r.call(ctx, "hasLinkedKeys", wallet)
	if err != nil {
		return false, err
	}
	return *abi.ConvertType(out, new(bool)).(*bool), nil
}

func (r *Registry) IsOwner(ctx context.Context, address common.Address) (bool, error) {
	out, err := r.call(ctx, "isOwner", address)
	if err != nil {
		return false, err
	}
	return *abi.ConvertType(out, new(bool)).(*bool), nil
}

// GetLinkTimestamp returns the unix seconds at which keys were linked
func (r *Registry) GetLinkTimestamp(ctx context.Context, wallet common.Address) (*big.Int, error) {
	out, err := r.call(ctx, "getLinkTimestamp", wallet)
	if err != nil {
		return nil, err
	}
	return *abi.ConvertType(out, new(*big.Int)).(**big.Int), nil
}

// LinkedKeys reads everything stored for owner. ok is false when the owner
// never linked keys.
func (r *Registry) LinkedKeys(ctx context.Context, owner common.Address) (keys LinkedKeys, ok bool, err error) {
	linked, err := r.HasLinkedKeys(ctx, owner)
	if err != nil || !linked {
		return LinkedKeys{}, false, err
	}

	keys.Owner = owner
	if keys.PublicKey, err = r.GetPublicKey(ctx, owner); err != nil {
		return LinkedKeys{}, false, err
	}
	if keys.PrivateKey, err = r.GetPrivateKey(ctx, owner); err != nil {
		return LinkedKeys{}, false, err
	}
	ts, err := r.GetLinkTimestamp(ctx, owner)
	if err != nil {
		return LinkedKeys{}, false, err
	}
	keys.LinkedAt = time.Unix(ts.Int64(), 0).UTC()

	return keys, true, nil
}

// LinkKeys stores keys for the sender of opts
func (r *Registry) LinkKeys(opts *bind.TransactOpts, privateKey, publicKey string) (*types.Transaction, error) {
	return r.contract.Transact(opts, "linkKeys", privateKey, publicKey)
}

// LinkKeysForAddress stores keys for another wallet, owners only
func (r *Registry) LinkKeysForAddress(
	opts *bind.TransactOpts, wallet common.Address, privateKey, publicKey string,
) (*types.Transaction, error) {
	return r.contract.Transact(opts, "linkKeysForAddress", wallet, privateKey, publicKey)
}

func (r *Registry) AddOwner(opts *bind.TransactOpts, owner common.Address) (*types.Transaction, error) {
	return r.contract.Transact(opts, "addOwner", owner)
}

func (r *Registry) RemoveOwner(opts *bind.TransactOpts, owner common.Address) (*types.Transaction, error) {
	return r.contract.Transact(opts, "removeOwner", owner)
}
