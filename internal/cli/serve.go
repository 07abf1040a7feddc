package cli

import (
	"github.com/spf13/cobra"

	"github.com/lianasoft/agency-crm/internal/auth"
	"github.com/lianasoft/agency-crm/internal/logging"
	"github.com/lianasoft/agency-crm/internal/web"
)

func newServeCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the web UI and JSON API",
		Long:  "Run migrations and start an HTTP server with the web UI and the JSON API.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(port)
		},
	}

	cmd.Flags().IntVar(&port, "port", 8080, "port to listen on")

	return cmd
}

func runServe(port int) error {
	cfg := auth.ConfigFromEnv()
	logging.Setup(cfg.DevMode)

	database, err := openDB()
	if err != nil {
		return err
	}
	defer closeDB(database)

	srv, err := web.NewServer(database, cfg)
	if err != nil {
		return err
	}

	return srv.ListenAndServe(port)
}
