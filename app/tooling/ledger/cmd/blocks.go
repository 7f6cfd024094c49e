package cmd

import (
	"github.com/spf13/cobra"
)

var blocksAccount string

var blocksCmd = &cobra.Command{
	Use:   "blocks",
	Short: "Print the blocks in the chain.",
	RunE:  blocksRun,
}

func init() {
	rootCmd.AddCommand(blocksCmd)
	blocksCmd.Flags().StringVarP(&blocksAccount, "account", "a", "", "Only print blocks with transactions for this account.")
}

func blocksRun(cmd *cobra.Command, args []string) error {
	st, err := openState(cmd.Context(), true)
	if err != nil {
		return err
	}
	defer st.Shutdown()

	for _, block := range st.QueryBlocksByAccount(blocksAccount) {
		if err := printBlock(block); err != nil {
			return err
		}
	}

	return nil
}
