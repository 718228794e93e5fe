package main

import (
	"context"
	"os"

	"github.com/greenstamp/greenstamp-wallet/internal/logging"
)

func main() {
	root, closeApp := newRootCmd()
	err := root.ExecuteContext(context.Background())
	closeApp()
	if err != nil {
		logging.L.Debug().Err(err).Msg("command failed")
		os.Exit(1)
	}
}
