package cmd

import (
	"context"
	"fmt"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/state"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Mine two blocks of transfers, save the chain and load it back.",
	RunE:  demoRun,
}

func init() {
	rootCmd.AddCommand(demoCmd)
}

func demoRun(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	st, err := openState(ctx, false)
	if err != nil {
		return err
	}
	defer st.Shutdown()

	batches := [][]database.Tx{
		{
			database.NewTx("Alice", "Bob", 20),
			database.NewTx("Alice", "Eva", 5),
			database.NewTx("Eva", "Bob", 10),
		},
		{
			database.NewTx("Bob", "Eva", 30),
			database.NewTx("Bob", "Alice", 15),
			database.NewTx("Eva", "Alice", 15),
		},
	}

	for i, batch := range batches {
		if err := submit(st, batch); err != nil {
			return err
		}

		if i == 0 {
			tx := database.NewTx("Alice", "Bob", 1000)
			if err := st.SubmitTransaction(tx); err != nil {
				pterm.Warning.Printfln("Rejected %s: %s", tx, err)
			}
		}

		if err := mine(ctx, st); err != nil {
			return err
		}

		if err := printBalances(st.RetrieveLatestBlock().Header.Number, st.RetrieveBalances(), nil, nil); err != nil {
			return err
		}
	}

	printValidation(st.ValidateChain())

	if err := st.SaveChain(); err != nil {
		return err
	}
	pterm.Success.Printfln("Chain saved to %s %s", storeKind, storePath)

	if err := st.LoadChain(); err != nil {
		return err
	}
	pterm.Success.Printfln("Chain loaded from %s %s", storeKind, storePath)

	printValidation(st.ValidateChain())

	for _, block := range st.RetrieveBlocks() {
		if err := printBlock(block); err != nil {
			return err
		}
	}

	tip := st.RetrieveLatestBlock().Header.Number
	low, high, err := st.QueryWatermarks(tip)
	if err != nil {
		return err
	}

	return printBalances(tip, st.RetrieveBalances(), low, high)
}

func submit(st *state.State, trans []database.Tx) error {
	for _, tx := range trans {
		if err := st.SubmitTransaction(tx); err != nil {
			return fmt.Errorf("submit %s: %w", tx, err)
		}
		pterm.Info.Printfln("Submitted %s", tx)
	}

	return nil
}

func mine(ctx context.Context, st *state.State) error {
	spinner, _ := pterm.DefaultSpinner.Start(fmt.Sprintf("Mining %d transactions ...", len(st.RetrieveMempool())))

	block, err := st.MineNewBlock(ctx)
	if err != nil {
		spinner.Fail(err.Error())
		return err
	}

	spinner.Success(fmt.Sprintf("Mined block %d with nonce %d: %s", block.Header.Number, block.Header.Nonce, block.Hash))

	return nil
}
