package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/lianasoft/agency-crm/internal/auth"
)

func newUserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage admin accounts in the local database",
	}

	cmd.AddCommand(
		newUserAddCmd(),
		newUserListCmd(),
		newUserRemoveCmd(),
	)

	return cmd
}

func newUserAddCmd() *cobra.Command {
	var name, email string

	cmd := &cobra.Command{
		Use:   "add <username>",
		Short: "Add an admin account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUserAdd(args[0], name, email)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&email, "email", "", "email address")

	return cmd
}

func runUserAdd(username, name, email string) error {
	fmt.Print("Password: ")
	password, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return fmt.Errorf("reading password: %w", err)
	}
	if len(password) == 0 {
		return fmt.Errorf("password is required")
	}

	database, err := openDB()
	if err != nil {
		return err
	}
	defer closeDB(database)

	user, err := auth.NewUserStore(database).Add(username, string(password), name, email)
	if err != nil {
		return err
	}

	fmt.Printf("✓ Added admin %s\n", user.Username)
	return nil
}

func newUserListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List admin accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUserList()
		},
	}
}

func runUserList() error {
	database, err := openDB()
	if err != nil {
		return err
	}
	defer closeDB(database)

	users, err := auth.NewUserStore(database).List()
	if err != nil {
		return err
	}

	if isJSON() {
		return printJSON(users)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintln(w, "USERNAME\tNAME\tEMAIL"); err != nil {
		return fmt.Errorf("writing table header: %w", err)
	}
	for _, u := range users {
		if _, err := fmt.Fprintf(w, "%s\t%s\t%s\n", u.Username, u.Name, u.Email); err != nil {
			return fmt.Errorf("writing table row: %w", err)
		}
	}
	return w.Flush()
}

func newUserRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <username>",
		Short: "Remove an admin account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUserRemove(args[0])
		},
	}
}

func runUserRemove(username string) error {
	database, err := openDB()
	if err != nil {
		return err
	}
	defer closeDB(database)

	if err := auth.NewUserStore(database).Delete(username); err != nil {
		return err
	}

	fmt.Printf("✓ Removed admin %s\n", username)
	return nil
}
