package controller

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog"
	"github.com/skip2/go-qrcode"

	"github.com/greenstamp/greenstamp-wallet/internal/configs"
	"github.com/greenstamp/greenstamp-wallet/internal/manager"
	"github.com/greenstamp/greenstamp-wallet/internal/wallet"
)

const maxBodyBytes = 1 << 16

type healthResponse struct {
	Status  string `json:"status"`
	ChainID int64  `json:"chainId"`
}

func (healthResponse) Message() string { return "server is running well" }

func (c *Controller) Health(_ context.Context, _ *http.Request) (any, error) {
	return healthResponse{Status: "ok", ChainID: c.m.Config().ChainID}, nil
}

// current returns the wallet a request works on. With an owner query
// parameter the agent wallet is resolved for that owner.
func (c *Controller) current(ctx context.Context, r *http.Request) (wallet.Wallet, error) {
	owner := strings.TrimSpace(r.URL.Query().Get("owner"))
	if owner == "" {
		w, err := c.m.GetOrCreateWallet()
		if err != nil {
			return wallet.Wallet{}, NewInternal(err)
		}
		return w, nil
	}

	if !common.IsHexAddress(owner) {
		return wallet.Wallet{}, NewInvalidInput("invalid owner address")
	}
	w, err := c.m.ResolveAgentWallet(ctx, common.HexToAddress(owner))
	if err != nil {
		return wallet.Wallet{}, NewInternal(err)
	}
	return w, nil
}

func (c *Controller) Wallet(ctx context.Context, r *http.Request) (any, error) {
	w, err := c.current(ctx, r)
	if err != nil {
		return nil, err
	}
	return newWalletResponse(c.m.Config(), w), nil
}

func (c *Controller) RefreshBalance(ctx context.Context, r *http.Request) (any, error) {
	w, err := c.current(ctx, r)
	if err != nil {
		return nil, err
	}
	return newWalletResponse(c.m.Config(), c.m.UpdateEduBalance(ctx, w)), nil
}

func (c *Controller) Transactions(ctx context.Context, r *http.Request) (any, error) {
	w, err := c.current(ctx, r)
	if err != nil {
		return nil, err
	}
	resp := TransactionsResponse{Transactions: w.Transactions}
	if resp.Transactions == nil {
		resp.Transactions = []wallet.Transaction{}
	}
	return resp, nil
}

// Send answers 200 for every decoded request, the outcome is in the result
func (c *Controller) Send(ctx context.Context, r *http.Request) (any, error) {
	var req SendRequest
	if err := decode(r, &req); err != nil {
		return nil, err
	}

	w, err := c.current(ctx, r)
	if err != nil {
		return nil, err
	}

	res := c.m.SendEduTokens(ctx, w, strings.TrimSpace(req.To), req.Amount, req.Description)
	resp := SendResponse{SendResult: res}
	if res.TxHash != "" {
		resp.ExplorerURL = configs.ExplorerTxURL(c.m.Config().ExplorerURL, res.TxHash)
	}

	zerolog.Ctx(ctx).Info().
		Bool("success", res.Success).
		Str("txid", res.TxHash).
		Str("error", res.Error).
		Msg("send handled")
	return resp, nil
}

func (c *Controller) Estimate(ctx context.Context, r *http.Request) (any, error) {
	var req EstimateRequest
	if err := decode(r, &req); err != nil {
		return nil, err
	}
	if !common.IsHexAddress(strings.TrimSpace(req.To)) {
		return nil, NewInvalidInput(manager.ErrMsgInvalidRecipient)
	}
	if !(req.Amount > 0) {
		return nil, NewInvalidInput(manager.ErrMsgInvalidAmount)
	}

	w, err := c.current(ctx, r)
	if err != nil {
		return nil, err
	}

	est, err := c.m.EstimateTransactionGas(ctx, w, strings.TrimSpace(req.To), req.Amount)
	if err != nil {
		return nil, NewUnavailable(err)
	}
	return EstimateResponse(est), nil
}

func (c *Controller) Sign(ctx context.Context, r *http.Request) (any, error) {
	var req SignRequest
	if err := decode(r, &req); err != nil {
		return nil, err
	}
	if req.Message == "" {
		return nil, NewInvalidInput("message must not be empty")
	}

	w, err := c.current(ctx, r)
	if err != nil {
		return nil, err
	}

	sig, err := c.m.SignMessage(w, req.Message)
	if err != nil {
		return nil, NewInternal(err)
	}
	return SignResponse{Address: w.Address, Signature: sig}, nil
}

func (c *Controller) Status(ctx context.Context, r *http.Request) (any, error) {
	hash := Param(r, "hash")
	if len(common.FromHex(hash)) != common.HashLength {
		return nil, NewInvalidInput("invalid transaction hash")
	}

	status, err := c.m.TransactionStatus(ctx, hash)
	if err != nil {
		return nil, NewUnavailable(err)
	}
	return StatusResponse{
		Hash:        hash,
		Status:      status,
		ExplorerURL: configs.ExplorerTxURL(c.m.Config().ExplorerURL, hash),
	}, nil
}

func (c *Controller) Registry(ctx context.Context, r *http.Request) (any, error) {
	address := Param(r, "address")
	if !common.IsHexAddress(address) {
		return nil, NewInvalidInput("invalid owner address")
	}
	owner := common.HexToAddress(address)

	keys, ok, err := c.m.LinkedKeys(ctx, owner)
	if errors.Is(err, manager.ErrNoRegistry) {
		return nil, NewNotFound("no key registry configured")
	}
	if err != nil {
		return nil, NewUnavailable(err)
	}

	resp := RegistryResponse{Owner: owner.Hex(), Linked: ok}
	if ok {
		resp.PublicKey = keys.PublicKey
		resp.LinkedAt = keys.LinkedAt.Unix()
	}
	return resp, nil
}

// QR renders the wallet address as a png
func (c *Controller) QR() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		current, err := c.current(r.Context(), r)
		if err != nil {
			writeError(r.Context(), w, err)
			return
		}

		png, err := qrcode.Encode(current.Address, qrcode.Medium, 256)
		if err != nil {
			writeError(r.Context(), w, NewInternal(err))
			return
		}

		w.Header().Set("Content-Type", "image/png")
		w.WriteHeader(http.StatusOK)
		w.Write(png)
	})
}

func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return NewInvalidFormat(err)
	}
	return nil
}
