package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Taichi-iskw/yt-trend/cmd/ingest"
	"github.com/Taichi-iskw/yt-trend/internal/model"
	"github.com/Taichi-iskw/yt-trend/internal/service/corpus"
)

// transcriptCmd represents the transcript command
var transcriptCmd = &cobra.Command{
	Use:   "transcript",
	Short: "Transcript operations for single videos",
}

// transcriptGetCmd fetches one video's transcript with the configured source
var transcriptGetCmd = &cobra.Command{
	Use:   "get [VIDEO_ID]",
	Short: "Fetch the timed transcript of a video",
	Long: `Fetch the timed transcript of a video with the configured transcript source,
under the same per-video timeout an ingestion run uses.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		videoID := args[0]

		factory, err := ingest.NewServiceFactory()
		if err != nil {
			return err
		}

		timeout := factory.Config().TranscriptTimeoutDuration()
		if cmd.Flags().Changed("timeout") {
			seconds, _ := cmd.Flags().GetFloat64("timeout")
			timeout = time.Duration(seconds * float64(time.Second))
		}

		result := factory.CreateFetcher().Fetch(context.Background(), videoID, true, timeout)
		if !result.Available {
			if result.Err != nil {
				return fmt.Errorf("transcript unavailable (%s): %w", result.Reason, result.Err)
			}
			return fmt.Errorf("transcript unavailable (%s)", result.Reason)
		}

		format, _ := cmd.Flags().GetString("format")
		switch format {
		case "json":
			output, err := json.MarshalIndent(result.Segments, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to format as JSON: %w", err)
			}
			cmd.Println(string(output))
		default:
			cmd.Print(corpus.Render(&model.Video{ID: videoID, Transcript: result.Segments}))
		}
		return nil
	},
}

func init() {
	transcriptGetCmd.Flags().Float64("timeout", 0, "Timeout in seconds (default from config: 8)")
	transcriptGetCmd.Flags().String("format", "text", "Output format (text, json)")

	transcriptCmd.AddCommand(transcriptGetCmd)
	rootCmd.AddCommand(transcriptCmd)
}
