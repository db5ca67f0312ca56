package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/term"

	"github.com/folioapp/folio/internal/model"
	"github.com/folioapp/folio/internal/service"
	"github.com/folioapp/folio/internal/store"
)

func newAdminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Manage the admin account",
		Long:  "Create and inspect the administrator account without going through the HTTP setup flow.",
	}

	cmd.AddCommand(newAdminCreateCmd())
	cmd.AddCommand(newAdminListCmd())

	return cmd
}

// ---------- admin create ----------

func newAdminCreateCmd() *cobra.Command {
	var (
		username string
		password string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create the admin account",
		Example: `  folio admin create --username admin --password secret
  folio admin create --username admin  # prompts for password`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAdminCreate(username, password)
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "Admin username (required)")
	cmd.Flags().StringVar(&password, "password", "", "Admin password (prompted if omitted)")
	cmd.MarkFlagRequired("username")

	return cmd
}

func runAdminCreate(username, password string) error {
	if len(username) < service.MinUsernameLen {
		return fmt.Errorf("username must be at least %d characters", service.MinUsernameLen)
	}

	// Prompt for password if not provided
	if password == "" {
		fmt.Print("Password: ")
		pwBytes, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
		fmt.Println()
		password = string(pwBytes)

		fmt.Print("Confirm password: ")
		confirmBytes, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err != nil {
			return fmt.Errorf("failed to read confirmation: %w", err)
		}
		fmt.Println()

		if password != string(confirmBytes) {
			return fmt.Errorf("passwords do not match")
		}
	}

	if len(password) < service.MinPasswordLen {
		return fmt.Errorf("password must be at least %d characters", service.MinPasswordLen)
	}

	st, err := openStore()
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), service.HashCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	admin := &model.Admin{
		Username:     username,
		PasswordHash: string(hash),
	}
	if err := st.CreateAdmin(context.Background(), admin); err != nil {
		if errors.Is(err, store.ErrAdminExists) {
			return fmt.Errorf("an admin account already exists")
		}
		return fmt.Errorf("create admin: %w", err)
	}

	fmt.Printf("Created admin account %q\n", username)
	return nil
}

// ---------- admin list ----------

func newAdminListCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List the admin account",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAdminList(jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}

func runAdminList(jsonOutput bool) error {
	st, err := openStore()
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	admins, err := st.ListAdmins(context.Background())
	if err != nil {
		return fmt.Errorf("list admins: %w", err)
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(admins)
	}

	if len(admins) == 0 {
		fmt.Println("No admin account configured. Use 'folio admin create' to create one.")
		return nil
	}

	fmt.Printf("%-24s %-24s\n", "USERNAME", "CREATED")
	fmt.Printf("%-24s %-24s\n", "--------", "-------")
	for _, a := range admins {
		fmt.Printf("%-24s %-24s\n", a.Username, a.CreatedAt.Format("2006-01-02 15:04:05"))
	}

	return nil
}
