package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Taichi-iskw/yt-trend/internal/config"
	"github.com/Taichi-iskw/yt-trend/internal/repository"
)

// dbCmd represents the db command
var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Catalog database operations",
}

// dbMigrateCmd applies the embedded schema migrations
var dbMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply catalog schema migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		url, err := databaseURL()
		if err != nil {
			return err
		}
		if err := repository.RunMigrations(url); err != nil {
			return err
		}
		version, _, _, err := repository.MigrationVersion(url)
		if err != nil {
			return err
		}
		cmd.Printf("Catalog schema is at version %d\n", version)
		return nil
	},
}

// dbStatusCmd prints the applied schema version
var dbStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the applied catalog schema version",
	RunE: func(cmd *cobra.Command, args []string) error {
		url, err := databaseURL()
		if err != nil {
			return err
		}
		version, dirty, ok, err := repository.MigrationVersion(url)
		if err != nil {
			return err
		}
		switch {
		case !ok:
			cmd.Println("No migrations applied. Run `yt-trend db migrate`.")
		case dirty:
			cmd.Printf("Schema version %d is dirty; a migration failed part way\n", version)
		default:
			cmd.Printf("Catalog schema is at version %d\n", version)
		}
		return nil
	},
}

func databaseURL() (string, error) {
	cfg, err := config.NewConfig()
	if err != nil {
		return "", fmt.Errorf("failed to load configuration: %w", err)
	}
	if cfg.DatabaseURL == "" {
		return "", fmt.Errorf("database_url is not set; export DATABASE_URL or edit the config file")
	}
	return cfg.DatabaseURL, nil
}

func init() {
	dbCmd.AddCommand(dbMigrateCmd)
	dbCmd.AddCommand(dbStatusCmd)
	rootCmd.AddCommand(dbCmd)
}
