package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/Taichi-iskw/yt-trend/internal/logging"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "yt-trend",
	Short: "Turn recent YouTube uploads into a transcript corpus and trend report",
	Long: `yt-trend resolves YouTube channels, selects their most recent videos inside a
date window, fetches transcripts under a per-video timeout and writes one text
file per video. The corpus can be summarized into a trend report.

Logging is configured with YT_TREND_LOG_LEVEL (debug, info, warn, error) and
YT_TREND_LOG_FORMAT (text, json).`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.Configure()
	},
}

// Execute runs the root command
func Execute() error {
	rootCmd.SetOut(os.Stdout)
	return rootCmd.Execute()
}
