package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"phonebook_backend/platform/db"
)

func migrateCmd() *cobra.Command {
	var down bool

	c := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			e, err := openEnv(ctx)
			if err != nil {
				return err
			}
			defer e.Close()

			if down {
				err = db.RollbackMigration(ctx, e.pool)
			} else {
				err = db.RunMigrations(ctx, e.pool)
			}
			if err != nil {
				return err
			}

			version, err := db.MigrationVersion(ctx, e.pool)
			if err != nil {
				return err
			}
			e.log.Info("migrations complete", "version", version)
			fmt.Fprintf(cmd.OutOrStdout(), "schema version %d\n", version)
			return nil
		},
	}

	c.Flags().BoolVar(&down, "down", false, "Roll back the most recent migration instead")
	return c
}
