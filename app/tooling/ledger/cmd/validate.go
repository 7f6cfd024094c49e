package cmd

import (
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the stored chain.",
	RunE:  validateRun,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func validateRun(cmd *cobra.Command, args []string) error {
	st, err := openState(cmd.Context(), true)
	if err != nil {
		return err
	}
	defer st.Shutdown()

	err = st.ValidateChain()
	printValidation(err)

	return err
}
