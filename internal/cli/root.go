// Package cli defines the cobra command tree for the crm binary.
package cli

import (
	"database/sql"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/lianasoft/agency-crm/internal/apiclient"
	"github.com/lianasoft/agency-crm/internal/db"
)

var (
	flagFormat string
	flagDB     string
	flagServer string
)

// NewRootCmd creates the root cobra command with global flags.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "crm",
		Short:         "Manage a real-estate agency's listings, clients and showings",
		Long:          "Agency CRM tracks property listings, buyer and seller clients, and scheduled showings. Data lives in a local SQLite database; a web UI and JSON API are served by 'crm serve'.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// A .env in the working directory supplies CRM_* variables.
			_ = godotenv.Load()
		},
	}

	root.PersistentFlags().StringVar(&flagFormat, "format", "text", "output format (text|json)")
	root.PersistentFlags().StringVar(&flagDB, "db", "", "SQLite database path (default: ~/.agency-crm/crm.db)")
	root.PersistentFlags().StringVar(&flagServer, "server", "", "server URL for remote commands (default: from config or http://localhost:8080)")

	root.AddCommand(
		newServeCmd(),
		newListCmd(),
		newShowCmd(),
		newClientsCmd(),
		newShowingsCmd(),
		newActionsCmd(),
		newLoginCmd(),
		newLogoutCmd(),
		newStatusCmd(),
		newUserCmd(),
		newClearCmd(),
		newVersionCmd(),
	)

	return root
}

// openDB opens the SQLite database using the --db flag or default path.
func openDB() (*sql.DB, error) {
	path := flagDB
	if path == "" {
		var err error
		path, err = db.DefaultPath()
		if err != nil {
			return nil, err
		}
	}
	return db.Open(path)
}

// newAPIClient creates an HTTP client for the agency-crm API.
func newAPIClient() *apiclient.Client {
	return apiclient.New(getServerURL(), getToken())
}

// isJSON returns true if the --format flag is set to json.
func isJSON() bool {
	return flagFormat == "json"
}

// closeDB closes the database, logging any error to stderr.
func closeDB(database *sql.DB) {
	if err := database.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: closing database: %v\n", err)
	}
}
