package cmd

import (
	"github.com/spf13/cobra"
)

var balancesIndex int64

var balancesCmd = &cobra.Command{
	Use:   "balances",
	Short: "Print the balances as of a block.",
	RunE:  balancesRun,
}

func init() {
	rootCmd.AddCommand(balancesCmd)
	balancesCmd.Flags().Int64VarP(&balancesIndex, "block", "b", -1, "Block index, -1 for the latest block.")
}

func balancesRun(cmd *cobra.Command, args []string) error {
	st, err := openState(cmd.Context(), true)
	if err != nil {
		return err
	}
	defer st.Shutdown()

	index := st.RetrieveLatestBlock().Header.Number
	if balancesIndex >= 0 {
		index = uint64(balancesIndex)
	}

	current, err := st.QueryBalances(index)
	if err != nil {
		return err
	}

	low, high, err := st.QueryWatermarks(index)
	if err != nil {
		return err
	}

	return printBalances(index, current, low, high)
}
