package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check connection and auth status",
		Long:  "Tests the connection to the server and checks whether the stored token is still valid.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus()
		},
	}
}

func runStatus() error {
	serverURL := getServerURL()
	token := getToken()

	fmt.Printf("Server: %s\n", serverURL)

	if token == "" {
		fmt.Println("Token:  not configured")
		fmt.Println("\nRun 'crm login' to authenticate.")
		return nil
	}

	prefix := token
	if len(prefix) > 12 {
		prefix = prefix[:12]
	}
	fmt.Printf("Token:  %s…\n", prefix)

	username, err := newAPIClient().Verify()
	if err != nil {
		fmt.Printf("Status: ✗ %v\n", err)
		fmt.Println("\nRun 'crm login' to re-authenticate.")
		return nil
	}

	fmt.Printf("Status: ✓ authenticated as %s\n", username)
	return nil
}
