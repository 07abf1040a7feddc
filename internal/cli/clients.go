package cli

import (
	"github.com/spf13/cobra"

	"github.com/lianasoft/agency-crm/internal/client"
)

func newClientsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clients",
		Short: "List clients",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClients()
		},
	}
}

func runClients() error {
	database, err := openDB()
	if err != nil {
		return err
	}
	defer closeDB(database)

	clients, err := client.NewRepository(database).List()
	if err != nil {
		return err
	}

	if isJSON() {
		return printJSON(clients)
	}

	return printClientTable(clients)
}
