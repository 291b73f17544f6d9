package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Taichi-iskw/yt-trend/internal/config"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration settings",
	Long:  `Manage configuration settings for yt-trend.`,
}

// configInitCmd represents the config init command
var configInitCmd = &cobra.Command{
	Use:   "init [YOUTUBE_API_KEY]",
	Short: "Initialize configuration file",
	Long:  `Create a new configuration file with the default settings.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var apiKey string
		if len(args) > 0 {
			apiKey = args[0]
		}

		if err := config.InitConfig(apiKey); err != nil {
			return err
		}

		configPath, err := config.GetConfigPath()
		if err != nil {
			return err
		}

		cmd.Printf("Created configuration file: %s\n", configPath)
		if apiKey == "" {
			cmd.Println("Set youtube_api_key in this file or export YOUTUBE_API_KEY before running ingest.")
		}
		return nil
	},
}

// configShowCmd represents the config show command
var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  `Display the configuration file path and the effective settings, secrets masked.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, err := config.GetConfigPath()
		if err != nil {
			return err
		}

		cfg, err := config.NewConfig()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		cmd.Printf("Configuration file: %s\n\n", configPath)
		cmd.Printf("youtube_api_key:            %s\n", config.MaskSecret(cfg.YouTubeAPIKey))
		cmd.Printf("openrouter_api_key:         %s\n", config.MaskSecret(cfg.OpenRouterAPIKey))
		cmd.Printf("database_url:               %s\n", maskDatabaseURL(cfg))
		cmd.Printf("transcripts_dir:            %s\n", cfg.TranscriptsDir)
		cmd.Printf("videos_per_channel:         %d\n", cfg.VideosPerChannel)
		cmd.Printf("transcript_timeout_seconds: %g\n", cfg.TranscriptTimeout)
		cmd.Printf("transcript_source:          %s\n", cfg.TranscriptSource)
		cmd.Printf("listing_source:             %s\n", cfg.ListingSource)
		cmd.Printf("requests_per_second:        %g\n", cfg.RequestsPerSecond)
		cmd.Printf("report.model:               %s\n", cfg.Report.Model)
		cmd.Printf("report.base_url:            %s\n", cfg.Report.BaseURL)
		if cfg.Report.CrewFile != "" {
			cmd.Printf("report.crew_file:           %s\n", cfg.Report.CrewFile)
		}
		return nil
	},
}

// maskDatabaseURL hides the password of the configured database
func maskDatabaseURL(cfg *config.Config) string {
	if cfg.DatabaseURL == "" {
		return "(not set)"
	}
	db, err := cfg.ParseDatabaseConfig()
	if err != nil {
		return "(invalid)"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s", db.User, config.MaskSecret(db.Password), db.Host, db.Port, db.DBName)
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
}
