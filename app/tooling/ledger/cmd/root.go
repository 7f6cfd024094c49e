// Package cmd contains the ledger commands.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ardanlabs/ledger/foundation/blockchain/genesis"
	"github.com/ardanlabs/ledger/foundation/blockchain/state"
	"github.com/ardanlabs/ledger/foundation/blockchain/storage"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var (
	storeKind   string
	storePath   string
	genesisPath string
	verbose     bool
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&storeKind, "store", "s", storage.KindDisk, fmt.Sprintf("Storage kind %v.", storage.Kinds))
	rootCmd.PersistentFlags().StringVarP(&storePath, "path", "p", "zblock/data.json", "Path to the chain file or directory.")
	rootCmd.PersistentFlags().StringVarP(&genesisPath, "genesis", "g", "zblock/genesis.json", "Path to the genesis file, json or yaml.")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Print mining and storage events.")
}

var rootCmd = &cobra.Command{
	Use:          "ledger",
	Short:        "Proof of work ledger",
	SilenceUsage: true,
}

// Execute runs the command selected on the command line. An interrupt
// cancels any mining in progress.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		pterm.Error.Println(err)
		os.Exit(1)
	}
}

// =============================================================================

// evHandler prints the chain events when running verbose.
func evHandler(v string, args ...any) {
	if verbose {
		pterm.Debug.Printfln(v, args...)
	}
}

// loadGenesis returns the genesis file when it exists, otherwise the default.
func loadGenesis() (genesis.Genesis, error) {
	_, err := os.Stat(genesisPath)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return genesis.Default(), nil
	case err != nil:
		return genesis.Genesis{}, err
	}

	return genesis.Load(genesisPath)
}

// openState constructs the chain over the selected storage. When load is
// set, the stored chain replaces the freshly mined genesis.
func openState(ctx context.Context, load bool) (*state.State, error) {
	if verbose {
		pterm.EnableDebugMessages()
	}

	gen, err := loadGenesis()
	if err != nil {
		return nil, fmt.Errorf("loading genesis: %w", err)
	}

	strg, err := storage.Open(storeKind, storePath)
	if err != nil {
		return nil, fmt.Errorf("opening storage: %w", err)
	}

	spinner, _ := pterm.DefaultSpinner.Start(fmt.Sprintf("Mining genesis block at difficulty %d ...", gen.Difficulty))

	st, err := state.New(ctx, state.Config{
		Genesis:   gen,
		Storage:   strg,
		EvHandler: evHandler,
	})
	if err != nil {
		spinner.Fail(err.Error())
		strg.Close()
		return nil, err
	}
	spinner.Success("Genesis block mined")

	if load {
		if err := st.LoadChain(); err != nil {
			st.Shutdown()
			return nil, fmt.Errorf("loading chain: %w", err)
		}
	}

	return st, nil
}
