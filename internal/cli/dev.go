package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/focusguard/internal/config"
	"github.com/example/focusguard/internal/db"
	"github.com/example/focusguard/internal/wire"
)

// DevCmd returns the dev command group for development utilities.
func DevCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dev",
		Short: "Development utilities",
		Long: `Development utilities for working against a scratch database.

These commands require db_path to be set explicitly in the config file so
they never touch the default database in ~/.focusguard.`,
	}

	cmd.AddCommand(devResetCmd())
	return cmd
}

func devResetCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Reset the dev database with a day of fixture tasks",
		Long: `Delete the configured database and recreate it with fixture data.

This command:
1. Deletes the database file named by db_path
2. Creates a fresh database with the current schema
3. Seeds six tasks dated today and turns auto blocking on`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(wire.ConfigPath())
			if err != nil {
				return err
			}
			// Safety check: require db_path to be set
			dbPath := cfg.DBPath
			if dbPath == "" {
				return fmt.Errorf("db_path not set in %s\n\nThis safety check prevents accidental reset of your default database", wire.ConfigPath())
			}
			loc, err := cfg.Location()
			if err != nil {
				return err
			}

			// Confirmation unless --force
			if !force {
				fmt.Printf("This will delete and recreate: %s\n", dbPath)
				fmt.Print("Continue? [y/N] ")
				var response string
				fmt.Scanln(&response)
				if response != "y" && response != "Y" {
					fmt.Println("Aborted.")
					return nil
				}
			}

			if err := os.Remove(dbPath); err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("failed to delete database: %w", err)
			}
			fmt.Printf("✓ Deleted %s\n", dbPath)

			database, err := db.Open(dbPath)
			if err != nil {
				return fmt.Errorf("failed to create database: %w", err)
			}
			defer database.Close()
			fmt.Println("✓ Created fresh database with schema")

			day := time.Now().In(loc).Format("2006-01-02")
			if err := db.SeedFixtures(database, day); err != nil {
				return fmt.Errorf("failed to seed fixtures: %w", err)
			}
			fmt.Printf("✓ Seeded fixture tasks for %s\n", day)
			fmt.Println("\nRun 'focusguard schedule' to schedule today's blocking.")

			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Skip confirmation prompt")
	return cmd
}
