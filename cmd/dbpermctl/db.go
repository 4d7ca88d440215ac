package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/doodlesbykumbi/dbperm/pkg/db"
)

// dbCmd represents the db command
var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Manage the database",
	Long:  `Manage the database schema and migrations.`,
	Run:   requireSubcommand("migrate, down, status"),
}

var dbMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create and/or upgrade the database schema",
	Long: `Create and/or upgrade the database schema.

This command runs all pending migrations embedded in the binary against
database_url.

Example:
  dbpermctl db migrate`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runMigrations(cfg.DatabaseURL); err != nil {
			fmt.Println("Migration failed:", err)
			os.Exit(1)
		}
	},
}

var dbMigrateDownCmd = &cobra.Command{
	Use:   "down [steps]",
	Short: "Rollback database migrations",
	Long: `Rollback database migrations.

This command rolls back the specified number of migrations (default: 1).

Example:
  dbpermctl db down      # Rollback 1 migration
  dbpermctl db down 3    # Rollback 3 migrations`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		steps := 1
		if len(args) > 0 {
			n, err := strconv.Atoi(args[0])
			if err != nil || n < 1 {
				fmt.Println("steps must be a positive integer")
				os.Exit(1)
			}
			steps = n
		}
		if err := runMigrationsDown(cfg.DatabaseURL, steps); err != nil {
			fmt.Println("Rollback failed:", err)
			os.Exit(1)
		}
	},
}

var dbMigrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show current migration version",
	Long:  `Show the current database migration version.`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := showMigrationStatus(cfg.DatabaseURL); err != nil {
			fmt.Println("Failed to get status:", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(dbCmd)
	dbCmd.AddCommand(dbMigrateCmd, dbMigrateDownCmd, dbMigrateStatusCmd)
}

func databaseURL(configured string) string {
	if configured != "" {
		return configured
	}
	return db.URL()
}

func runMigrations(dbURL string) error {
	m, err := db.NewMigrator(databaseURL(dbURL))
	if err != nil {
		return err
	}
	defer func() { _ = m.Close() }()

	version, dirty, _ := m.Version()
	fmt.Printf("Current version: %d (dirty: %v)\n", version, dirty)

	changed, err := m.Up()
	if err != nil {
		return err
	}
	if !changed {
		fmt.Println("No migrations to run - database is up to date")
		return nil
	}
	newVersion, _, _ := m.Version()
	fmt.Printf("Migrated to version: %d\n", newVersion)
	return nil
}

func runMigrationsDown(dbURL string, steps int) error {
	m, err := db.NewMigrator(databaseURL(dbURL))
	if err != nil {
		return err
	}
	defer func() { _ = m.Close() }()

	if err := m.Down(steps); err != nil {
		return err
	}
	version, _, _ := m.Version()
	fmt.Printf("Rolled back %d migration(s); now at version %d\n", steps, version)
	return nil
}

func showMigrationStatus(dbURL string) error {
	m, err := db.NewMigrator(databaseURL(dbURL))
	if err != nil {
		return err
	}
	defer func() { _ = m.Close() }()

	version, dirty, err := m.Version()
	if err != nil {
		return err
	}
	files, err := db.MigrationFiles()
	if err != nil {
		return err
	}
	fmt.Printf("Version: %d\nDirty: %v\nAvailable migrations: %d\n", version, dirty, len(files))
	return nil
}
