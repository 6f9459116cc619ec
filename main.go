package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"syscall"

	"vidly/config"
	"vidly/models"
	"vidly/server"

	"github.com/spf13/cobra"
	"github.com/umakantv/go-utils/db/migrations"
	"golang.org/x/term"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "vidly",
		Short:        "Video rental API",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStart()
		},
	}

	root.AddCommand(newStartCmd(), newCreateMigrationCmd(), newCreateAdminCmd())
	return root
}

func newStartCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStart()
		},
	}
}

func runStart() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	server.InitLogger()
	return server.StartServer(cfg)
}

func newCreateMigrationCmd() *cobra.Command {
	var name, dir string
	cmd := &cobra.Command{
		Use:   "create-migration",
		Short: "Create an empty timestamped .sql migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			if name == "" {
				return errors.New("--name is required")
			}
			migrations.CreateMigration(&name, &dir)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Migration name (alphanum+underscore only)")
	cmd.Flags().StringVar(&dir, "dir", "./database/migrations", "Target directory for the new .sql file")
	return cmd
}

func newCreateAdminCmd() *cobra.Command {
	var req models.CreateUserRequest
	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Register an administrator account",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			server.InitLogger()

			if req.Password == "" {
				if req.Password, err = readPassword("Password: "); err != nil {
					return fmt.Errorf("failed to read password: %w", err)
				}
			}

			user, err := server.CreateAdmin(context.Background(), cfg, req)
			if err != nil {
				return err
			}
			fmt.Printf("Admin %s created with id %s\n", user.Email, user.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&req.Name, "name", "", "Display name (5-50 characters)")
	cmd.Flags().StringVar(&req.Email, "email", "", "Login email")
	cmd.Flags().StringVar(&req.Password, "password", "", "Password; prompted for when omitted")
	cmd.MarkFlagRequired("name")
	cmd.MarkFlagRequired("email")
	return cmd
}

func loadConfig() (config.Config, error) {
	cfg, err := config.Load()
	if errors.Is(err, config.ErrMissingPrivateKey) {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	return cfg, err
}

// readPassword reads a password from the terminal without echoing it
func readPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	bytePassword, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		return "", err
	}
	fmt.Println()
	return strings.TrimSpace(string(bytePassword)), nil
}
