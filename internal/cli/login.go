package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func newLoginCmd() *cobra.Command {
	var username string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to a server and store the token",
		Long:  "Authenticates against a running server and stores the token in ~/.config/crm/config.yaml for later commands.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogin(username)
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "admin username (prompted if omitted)")

	return cmd
}

func runLogin(username string) error {
	if username == "" {
		fmt.Print("Username: ")
		reader := bufio.NewReader(os.Stdin)
		line, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("reading input: %w", err)
		}
		username = strings.TrimSpace(line)
	}
	if username == "" {
		return fmt.Errorf("username is required")
	}

	fmt.Print("Password: ")
	password, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return fmt.Errorf("reading password: %w", err)
	}

	resp, err := newAPIClient().Login(username, string(password))
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	// Load existing config to preserve other fields
	cfg, err := loadConfig()
	if err != nil {
		cfg = CLIConfig{}
	}

	cfg.Token = resp.Token
	if flagServer != "" {
		cfg.ServerURL = flagServer
	}

	if err := saveConfig(cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	name := resp.DisplayName
	if name == "" {
		name = resp.Username
	}
	fmt.Printf("✓ Logged in as %s\n", name)
	return nil
}
