package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mkrupp/shop/internal/infra/config"
	"github.com/mkrupp/shop/internal/infra/database"
	"github.com/mkrupp/shop/internal/infra/logging"
)

const (
	appName = "shop"
	svcName = "shopctl"
)

type Config struct {
	config.EnvConfig

	Log logging.LoggerConfig `envPrefix:"LOG_"`
	DB  database.Config      `envPrefix:"DB_"`
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var cfg Config

	//nolint:exhaustruct
	root := &cobra.Command{
		Use:           svcName,
		Short:         "Administer the shop database",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			var (
				ctx          = cmd.Context()
				configPrefix = strings.ToUpper(strings.Join([]string{appName, svcName}, "_"))
				loggerName   = strings.ToLower(strings.Join([]string{appName, svcName}, "."))
			)

			if err := config.Parse(ctx, &cfg, configPrefix); err != nil {
				return fmt.Errorf("parse config: %w", err)
			}

			logging.Configure(ctx, cfg.Log, loggerName)

			return nil
		},
	}

	root.AddCommand(
		newMigrateCmd(&cfg),
		newUserCmd(&cfg),
	)

	return root
}
