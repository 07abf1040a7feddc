package cli

import (
	"github.com/spf13/cobra"

	"github.com/lianasoft/agency-crm/internal/showing"
)

func newShowingsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "showings",
		Short: "List scheduled showings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShowings()
		},
	}
}

func runShowings() error {
	database, err := openDB()
	if err != nil {
		return err
	}
	defer closeDB(database)

	showings, err := showing.NewRepository(database).List()
	if err != nil {
		return err
	}

	if isJSON() {
		return printJSON(showings)
	}

	return printShowingTable(showings)
}
