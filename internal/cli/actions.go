package cli

import (
	"github.com/spf13/cobra"
)

func newActionsCmd() *cobra.Command {
	var admin string

	cmd := &cobra.Command{
		Use:   "actions",
		Short: "List admin actions from a running server",
		Long:  "Fetch the admin action log over the API. Requires a token from 'crm login'.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runActions(admin)
		},
	}

	cmd.Flags().StringVar(&admin, "admin", "", "only actions by this administrator")

	return cmd
}

func runActions(admin string) error {
	entries, err := newAPIClient().ListActions(admin)
	if err != nil {
		return err
	}

	if isJSON() {
		return printJSON(entries)
	}

	return printActionTable(entries)
}
