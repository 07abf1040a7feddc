package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lianasoft/agency-crm/internal/db"
)

func newClearCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Wipe all business data from the local database",
		Long:  "Removes every property, client, showing and admin action. Admin accounts survive. Irreversible; requires --yes.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClear(yes)
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "confirm the wipe")

	return cmd
}

func runClear(yes bool) error {
	if !yes {
		return fmt.Errorf("refusing to wipe without --yes")
	}

	database, err := openDB()
	if err != nil {
		return err
	}
	defer closeDB(database)

	removed, err := db.Clear(database)
	if err != nil {
		return err
	}

	fmt.Printf("✓ Removed %d properties, %d clients, %d showings, %d actions\n",
		removed["properties"], removed["clients"], removed["showings"], removed["admin_actions"])
	return nil
}
