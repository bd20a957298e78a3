package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mkrupp/shop/internal/infra/database"
)

func newMigrateCmd(cfg *Config) *cobra.Command {
	//nolint:exhaustruct
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	//nolint:exhaustruct
	up := &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dbCfg := cfg.DB
			dbCfg.Migrate = true

			db, err := database.Open(cmd.Context(), dbCfg)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer db.Close()

			version, _, err := database.Version(db)
			if err != nil {
				return fmt.Errorf("schema version: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "schema at version %d\n", version)

			return nil
		},
	}

	//nolint:exhaustruct
	version := &cobra.Command{
		Use:   "version",
		Short: "Print the current schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dbCfg := cfg.DB
			dbCfg.Migrate = false

			db, err := database.Open(cmd.Context(), dbCfg)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer db.Close()

			version, dirty, err := database.Version(db)
			if err != nil {
				return fmt.Errorf("schema version: %w", err)
			}

			if dirty {
				fmt.Fprintf(cmd.OutOrStdout(), "schema at version %d (dirty)\n", version)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "schema at version %d\n", version)
			}

			return nil
		},
	}

	cmd.AddCommand(up, version)

	return cmd
}
