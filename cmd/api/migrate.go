package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jhoicas/Bodega-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Bodega-api/pkg/config"
	"github.com/jhoicas/Bodega-api/pkg/logger"
)

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate [up|down]",
		Short: "Aplica o revierte las migraciones de PostgreSQL",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("cargar configuración: %w", err)
			}
			log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

			direction := "up"
			if len(args) == 1 {
				direction = args[0]
			}
			steps, _ := cmd.Flags().GetInt("steps")
			if err := postgres.Migrate(cfg.DB.ConnectionString(), direction, steps, log); err != nil {
				return fmt.Errorf("migrate database: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().Int("steps", 0, "Número de migraciones a aplicar (0 = todas)")
	return cmd
}
