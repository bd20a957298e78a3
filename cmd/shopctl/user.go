package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mkrupp/shop/internal/infra/database"
	"github.com/mkrupp/shop/internal/repo/user"
)

var errEmptyCredentials = errors.New("--username and --password must not be empty")

func newUserCmd(cfg *Config) *cobra.Command {
	//nolint:exhaustruct
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage accounts",
	}

	var username, password string

	//nolint:exhaustruct
	add := &cobra.Command{
		Use:   "add",
		Short: "Create an account that can log in",
		Long: "Create an account that can log in. The password is stored as given, " +
			"accounts created here are meant for development setups.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if username == "" || password == "" {
				return errEmptyCredentials
			}

			db, err := database.Open(cmd.Context(), cfg.DB)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer db.Close()

			id, err := user.NewSQLiteUserRepository(db).CreateUser(cmd.Context(), username, password)
			if err != nil {
				return fmt.Errorf("create user: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "created user %s (id %d)\n", username, id)

			return nil
		},
	}

	add.Flags().StringVar(&username, "username", "", "login name, must be unique")
	add.Flags().StringVar(&password, "password", "", "login password")
	_ = add.MarkFlagRequired("username")
	_ = add.MarkFlagRequired("password")

	cmd.AddCommand(add)

	return cmd
}
