package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Discard the stored token",
		Long:  "Removes the stored token. Tokens are stateless, so nothing is revoked server-side; they expire 24 hours after issue.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogout()
		},
	}
}

func runLogout() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if cfg.Token == "" {
		fmt.Println("Not logged in.")
		return nil
	}

	cfg.Token = ""
	if err := saveConfig(cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	fmt.Println("✓ Logged out.")
	return nil
}
