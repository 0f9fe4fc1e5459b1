package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check that the fact-checking service is reachable",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, _, api, err := setup()
		if err != nil {
			return err
		}
		status, err := api.Health(cmd.Context())
		if err != nil {
			return &hintError{hint: "Service unreachable at " + api.BaseURL() + ".", err: err}
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", api.BaseURL(), status)
		return err
	},
}

func init() {
	rootCmd.AddCommand(healthCmd)
}
