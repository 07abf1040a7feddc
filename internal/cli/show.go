package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lianasoft/agency-crm/internal/property"
	"github.com/lianasoft/agency-crm/internal/showing"
)

func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <property-id>",
		Short: "Show a property with its showings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(args[0])
		},
	}
}

func runShow(id string) error {
	database, err := openDB()
	if err != nil {
		return err
	}
	defer closeDB(database)

	p, err := property.NewRepository(database).Get(id)
	if err != nil {
		return err
	}

	showings, err := showing.NewRepository(database).ListByProperty(id)
	if err != nil {
		return err
	}

	if isJSON() {
		return printJSON(map[string]interface{}{
			"property": p,
			"showings": showings,
		})
	}

	printPropertyDetail(p)
	fmt.Println()
	return printShowingTable(showings)
}
