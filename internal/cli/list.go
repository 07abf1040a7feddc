package cli

import (
	"github.com/spf13/cobra"

	"github.com/lianasoft/agency-crm/internal/property"
)

func newListCmd() *cobra.Command {
	var status, propType, district string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List properties",
		Long:  "List tracked properties, optionally filtered by status, type or district.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(status, propType, district)
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "filter by status (available|reserved|sold)")
	cmd.Flags().StringVar(&propType, "type", "", "filter by type (apartment|house)")
	cmd.Flags().StringVar(&district, "district", "", "filter by district")

	return cmd
}

func runList(status, propType, district string) error {
	database, err := openDB()
	if err != nil {
		return err
	}
	defer closeDB(database)

	repo := property.NewRepository(database)
	props, err := repo.List(property.ListOptions{
		Status:   property.Status(status),
		Type:     property.Type(propType),
		District: district,
	})
	if err != nil {
		return err
	}

	if isJSON() {
		return printJSON(props)
	}

	return printPropertyTable(props)
}
