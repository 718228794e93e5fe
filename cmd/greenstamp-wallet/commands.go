package main

import (
	"errors"
	"fmt"
	"math"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/skip2/go-qrcode"
	"github.com/spf13/cobra"

	"github.com/greenstamp/greenstamp-wallet/internal/chain"
	"github.com/greenstamp/greenstamp-wallet/internal/configs"
	"github.com/greenstamp/greenstamp-wallet/internal/controller"
	"github.com/greenstamp/greenstamp-wallet/internal/logging"
	"github.com/greenstamp/greenstamp-wallet/internal/scanner"
	"github.com/greenstamp/greenstamp-wallet/internal/wallet"
)

func newAddressCmd(a *app) *cobra.Command {
	var showQR bool
	cmd := &cobra.Command{
		Use:   "address",
		Short: "Print the wallet address",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w, err := a.wallet(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, w.Address)
			fmt.Fprintln(out, configs.ExplorerAddressURL(a.manager.Config().ExplorerURL, w.Address))

			if showQR {
				qr, err := qrcode.New(w.Address, qrcode.Medium)
				if err != nil {
					return fmt.Errorf("failed to create qr code: %w", err)
				}
				fmt.Fprint(out, qr.ToSmallString(false))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&showQR, "qr", false, "render the address as qr code")
	return cmd
}

func newBalanceCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "balance",
		Short: "Fetch the EDU balance from the chain",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w, err := a.wallet(cmd.Context())
			if err != nil {
				return err
			}
			w, err = a.manager.FetchEduBalance(cmd.Context(), w)
			if err != nil {
				return err
			}
			a.println(cmd.OutOrStdout(), "%s", a.edu(w.EduBalance))
			return nil
		},
	}
}

func parseAmount(s string) (float64, error) {
	amount, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	if !(amount > 0) || math.IsInf(amount, 1) {
		return 0, fmt.Errorf("invalid amount %q: must be a positive number", s)
	}
	return amount, nil
}

func newSendCmd(a *app) *cobra.Command {
	var description string
	cmd := &cobra.Command{
		Use:   "send <to> <amount>",
		Short: "Send EDU to an address",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := parseAmount(args[1])
			if err != nil {
				return err
			}
			w, err := a.wallet(cmd.Context())
			if err != nil {
				return err
			}
			// the stored balance can be stale, the send checks it before any
			// network call
			w = a.manager.UpdateEduBalance(cmd.Context(), w)

			res := a.manager.SendEduTokens(cmd.Context(), w, args[0], amount, description)
			if !res.Success {
				return errors.New(res.Error)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, res.TxHash)
			fmt.Fprintln(out, configs.ExplorerTxURL(a.manager.Config().ExplorerURL, res.TxHash))
			if res.Error != "" {
				fmt.Fprintln(cmd.ErrOrStderr(), res.Error)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&description, "description", "d", "", "note stored with the transaction")
	return cmd
}

func newEstimateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "estimate <to> <amount>",
		Short: "Estimate the fee of a transfer",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := parseAmount(args[1])
			if err != nil {
				return err
			}
			w, err := a.wallet(cmd.Context())
			if err != nil {
				return err
			}
			est, err := a.manager.EstimateTransactionGas(cmd.Context(), w, args[0], amount)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			a.println(out, "gas limit: %d", est.GasLimit)
			a.println(out, "gas price: %s gwei", chain.FormatGwei(est.GasPrice))
			a.println(out, "fee:       %s (%s wei)", a.edu(est.GasInEdu), est.GasInWei.String())
			return nil
		},
	}
}

func newHistoryCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "List stored transactions, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w, err := a.wallet(cmd.Context())
			if err != nil {
				return err
			}
			if len(w.Transactions) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no transactions yet")
				return nil
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "TIME\tTYPE\tAMOUNT\tHASH\tDESCRIPTION")
			for _, tx := range w.Transactions {
				sign := "+"
				if tx.Type == wallet.TransactionTypeWithdrawal {
					sign = "-"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s%s\t%s\t%s\n",
					time.UnixMilli(tx.Timestamp).Format(time.DateTime),
					tx.Type,
					sign, a.edu(tx.Amount),
					tx.Hash,
					tx.Description,
				)
			}
			return tw.Flush()
		},
	}
}

func newSignCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "sign <message>",
		Short: "Sign a message with the wallet key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := a.wallet(cmd.Context())
			if err != nil {
				return err
			}
			sig, err := a.manager.SignMessage(w, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), sig)
			return nil
		},
	}
}

func newStatusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status <hash>",
		Short: "Look up the status of a sent transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			status, err := a.manager.TransactionStatus(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), status)
			return nil
		},
	}
}

func newKeysCmd(a *app) *cobra.Command {
	var showPrivate bool
	cmd := &cobra.Command{
		Use:   "keys <owner>",
		Short: "Read the agent keys linked for an owner in the registry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !common.IsHexAddress(args[0]) {
				return fmt.Errorf("invalid owner address: %q", args[0])
			}
			keys, ok, err := a.manager.LinkedKeys(cmd.Context(), common.HexToAddress(args[0]))
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if !ok {
				fmt.Fprintln(out, "no keys linked")
				return nil
			}
			fmt.Fprintf(out, "public key: %s\n", keys.PublicKey)
			fmt.Fprintf(out, "linked at:  %s\n", keys.LinkedAt.Format(time.RFC3339))
			if showPrivate {
				fmt.Fprintf(out, "private key: %s\n", keys.PrivateKey)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&showPrivate, "show-private", false, "also print the private key")
	return cmd
}

func newLinkCmd(a *app) *cobra.Command {
	var signerKey string
	cmd := &cobra.Command{
		Use:   "link",
		Short: "Store the wallet keys in the registry for the signer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if signerKey == "" {
				signerKey = os.Getenv("GREENSTAMP_SIGNER_KEY")
			}
			if signerKey == "" {
				return errors.New("a signer key is required, use --signer-key or GREENSTAMP_SIGNER_KEY")
			}
			signer, err := wallet.ParsePrivateKey(signerKey)
			if err != nil {
				return err
			}

			w, err := a.wallet(cmd.Context())
			if err != nil {
				return err
			}
			tx, err := a.manager.LinkWallet(cmd.Context(), w, signer)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tx.Hash().Hex())
			return nil
		},
	}
	cmd.Flags().StringVar(&signerKey, "signer-key", "", "hex private key of the owner account paying for the link")
	return cmd
}

func newImportCmd(a *app) *cobra.Command {
	var (
		mnemonic   string
		privateKey string
		force      bool
	)
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Replace the agent wallet with an existing key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var (
				w   wallet.Wallet
				err error
			)
			switch {
			case mnemonic != "" && privateKey != "":
				return errors.New("use either --mnemonic or --private-key")
			case mnemonic != "":
				w, err = wallet.FromMnemonic(mnemonic)
			case privateKey != "":
				w, err = wallet.FromPrivateKey(privateKey)
			default:
				return errors.New("--mnemonic or --private-key is required")
			}
			if err != nil {
				return err
			}
			if err := a.manager.ImportWallet(w, force); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), w.Address)
			return nil
		},
	}
	cmd.Flags().StringVar(&mnemonic, "mnemonic", "", "bip39 mnemonic")
	cmd.Flags().StringVar(&privateKey, "private-key", "", "hex private key")
	cmd.Flags().BoolVar(&force, "force", false, "replace an existing wallet")
	return cmd
}

func newServeCmd(a *app) *cobra.Command {
	var (
		address string
		noSync  bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the wallet json api",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if address == "" {
				address = a.manager.Config().HTTPAddress
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if !noSync {
				sc := scanner.NewScanner(a.manager, a.wallet, a.manager.Config().SyncInterval)
				sc.SetProgressCallback(func(res scanner.Result) {
					if pending := res.Pending(); len(pending) > 0 {
						logging.L.Info().Strs("pending", pending).Msg("transactions waiting for confirmation")
					}
				})
				if err := sc.Start(ctx); err != nil {
					return err
				}
				defer sc.StopSync()
			}

			srv := controller.NewServer(address, controller.Register(a.manager, wallet.UUID{}))
			return controller.Serve(ctx, srv)
		},
	}
	cmd.Flags().StringVar(&address, "address", "", "listen address, defaults to http.address from the config")
	cmd.Flags().BoolVar(&noSync, "no-sync", false, "do not refresh balance and transfer status in the background")
	return cmd
}
