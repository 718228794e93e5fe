package main

import (
	"context"
	"fmt"
	"io"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/greenstamp/greenstamp-wallet/internal/logging"
	"github.com/greenstamp/greenstamp-wallet/internal/manager"
	"github.com/greenstamp/greenstamp-wallet/internal/setup"
	"github.com/greenstamp/greenstamp-wallet/internal/wallet"
)

type globalFlags struct {
	debug   bool
	dataDir string
	owner   string
}

func (g *globalFlags) register(fs *pflag.FlagSet) {
	fs.BoolVar(&g.debug, "debug", false, "enable debug logging")
	fs.StringVar(&g.dataDir, "datadir", "", "path to data directory for the wallet")
	fs.StringVar(&g.owner, "owner", "", "owner address to resolve the linked agent wallet for")
}

// app is shared by all subcommands and set up before any of them runs
type app struct {
	flags   globalFlags
	manager *manager.Manager
	printer *message.Printer
}

// newRootCmd builds the command tree. The returned func releases the
// manager and must run whether or not the command failed.
func newRootCmd() (*cobra.Command, func()) {
	a := &app{printer: message.NewPrinter(language.English)}
	return a.rootCmd(), a.close
}

func (a *app) rootCmd() *cobra.Command {

	root := &cobra.Command{
		Use:           "greenstamp-wallet",
		Short:         "Agent wallet for the EDU chain testnet",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if a.flags.debug {
				logging.SetLogLevel(zerolog.DebugLevel)
			} else {
				logging.SetLogLevel(zerolog.InfoLevel)
			}

			m, exists, err := setup.NewManagerWithDataDir(a.flags.dataDir)
			if err != nil {
				return fmt.Errorf("failed to load wallet manager: %w", err)
			}
			a.manager = m
			logging.L.Debug().Bool("wallet_exists", exists).Msg("wallet manager loaded")
			return nil
		},
	}
	a.flags.register(root.PersistentFlags())

	root.AddCommand(
		newAddressCmd(a),
		newBalanceCmd(a),
		newSendCmd(a),
		newEstimateCmd(a),
		newHistoryCmd(a),
		newSignCmd(a),
		newStatusCmd(a),
		newKeysCmd(a),
		newLinkCmd(a),
		newImportCmd(a),
		newServeCmd(a),
	)
	return root
}

func (a *app) close() {
	if a.manager == nil {
		return
	}
	if err := a.manager.Close(); err != nil {
		logging.L.Err(err).Msg("failed to close storage")
	}
	a.manager = nil
}

// wallet returns the wallet commands act on, the linked one when --owner is set
func (a *app) wallet(ctx context.Context) (wallet.Wallet, error) {
	if a.flags.owner == "" {
		return a.manager.GetOrCreateWallet()
	}
	if !common.IsHexAddress(a.flags.owner) {
		return wallet.Wallet{}, fmt.Errorf("invalid owner address: %q", a.flags.owner)
	}
	return a.manager.ResolveAgentWallet(ctx, common.HexToAddress(a.flags.owner))
}

// edu formats a token amount with grouping and up to six decimals
func (a *app) edu(amount float64) string {
	return a.printer.Sprintf("%v EDU", number.Decimal(amount, number.MaxFractionDigits(6)))
}

func (a *app) println(w io.Writer, format string, args ...any) {
	a.printer.Fprintf(w, format+"\n", args...)
}
