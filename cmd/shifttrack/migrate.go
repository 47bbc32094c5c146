package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"shifttrack/internal/shared/db"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply PostgreSQL migrations",
	Long: `Apply the embedded SQL migrations to the configured PostgreSQL database.
Migrations are idempotent and safe to re-run.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		list, _ := cmd.Flags().GetBool("list")
		if list {
			names, err := db.MigrationNames()
			if err != nil {
				return err
			}
			for _, n := range names {
				fmt.Fprintln(cmd.OutOrStdout(), n)
			}
			return nil
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		log, err := newLogger(cfg)
		if err != nil {
			return err
		}
		defer log.Close()

		pool, err := db.NewPool(cmd.Context(), cfg.Database, log)
		if err != nil {
			return err
		}
		defer db.Close(pool, log)

		applied, err := db.Migrate(cmd.Context(), pool)
		if err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		for _, n := range applied {
			fmt.Fprintf(cmd.OutOrStdout(), "✓ %s\n", n)
		}
		return nil
	},
}

func init() {
	migrateCmd.Flags().Bool("list", false, "print embedded migrations without connecting")
}
