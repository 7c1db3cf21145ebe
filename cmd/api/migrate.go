package main

import (
	"fmt"

	pg "cic-consultas/internal/adapters/storage/postgres"
	"cic-consultas/internal/config"

	"github.com/spf13/cobra"
)

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Migraciones de base de datos",
	}

	// migrate up
	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Aplica las migraciones pendientes",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cfg.Database.DSN == "" {
				return fmt.Errorf("DB_DSN requerido")
			}

			ctx := cmd.Context()
			pool, err := pg.NewPool(ctx, cfg.Database)
			if err != nil {
				return err
			}
			defer pool.Close()

			n, err := pg.Migrate(ctx, pool)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Applied %d migration(s) successfully.\n", n)
			return nil
		},
	})

	// migrate status
	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Muestra el estado de las migraciones",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cfg.Database.DSN == "" {
				return fmt.Errorf("DB_DSN requerido")
			}

			ctx := cmd.Context()
			pool, err := pg.NewPool(ctx, cfg.Database)
			if err != nil {
				return err
			}
			defer pool.Close()

			statuses, err := pg.Status(ctx, pool)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%-10s %-40s %s\n", "VERSION", "SOURCE", "STATUS")
			for _, s := range statuses {
				status := "pending"
				if s.Applied {
					status = "applied"
				}
				fmt.Fprintf(out, "%-10d %-40s %s\n", s.Version, s.Source, status)
			}
			return nil
		},
	})

	return cmd
}
