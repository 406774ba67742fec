package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/orbita/internal/db"
)

// DBCmd returns the database maintenance command group.
func DBCmd() *cobra.Command {
	dbCmd := &cobra.Command{
		Use:   "db",
		Short: "Database maintenance",
	}

	dbCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create the database and apply migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			database, err := db.Open(cfg.DatabasePath)
			if err != nil {
				return err
			}
			defer database.Close()

			fmt.Fprintf(cmd.OutOrStdout(), "✓ Database ready at %s\n", cfg.DatabasePath)
			return nil
		},
	})

	dbCmd.AddCommand(&cobra.Command{
		Use:   "seed",
		Short: "Load demo missions and telemetry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			database, err := db.Open(cfg.DatabasePath)
			if err != nil {
				return err
			}
			defer database.Close()

			if err := db.SeedFixtures(database); err != nil {
				return fmt.Errorf("failed to seed database: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Seeded demo missions into %s\n", cfg.DatabasePath)
			return nil
		},
	})

	return dbCmd
}
