package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Taichi-iskw/yt-trend/cmd/ingest"
	"github.com/Taichi-iskw/yt-trend/internal/model"
)

// channelCmd represents the channel command
var channelCmd = &cobra.Command{
	Use:   "channel",
	Short: "YouTube channel operations",
	Long:  `Resolve channel references and list their recent uploads.`,
}

// channelResolveCmd resolves a channel reference to its canonical ID
var channelResolveCmd = &cobra.Command{
	Use:   "resolve [CHANNEL]",
	Short: "Resolve a channel URL, @handle or ID",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		factory, err := ingest.NewServiceFactory()
		if err != nil {
			return err
		}

		channel, err := factory.CreateYouTubeService().ResolveChannel(ctx, args[0])
		if err != nil {
			return fmt.Errorf("failed to resolve channel: %w", err)
		}

		result, err := json.MarshalIndent(channel, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to format result: %w", err)
		}
		cmd.Println(string(result))
		return nil
	},
}

// channelVideosCmd lists the videos a run would select for one channel
var channelVideosCmd = &cobra.Command{
	Use:   "videos [CHANNEL]",
	Short: "List a channel's most recent videos inside a date window",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()

		factory, err := ingest.NewServiceFactory()
		if err != nil {
			return err
		}

		start, _ := cmd.Flags().GetString("start")
		end, _ := cmd.Flags().GetString("end")
		if end == "" {
			end = time.Now().UTC().Format("2006-01-02")
		}
		if start == "" {
			start = end
		}
		window, err := model.NewDateWindow(start, end)
		if err != nil {
			return fmt.Errorf("invalid date window: %w", err)
		}
		limit, _ := cmd.Flags().GetInt("limit")

		service := factory.CreateYouTubeService()
		channel, err := service.ResolveChannel(ctx, args[0])
		if err != nil {
			return fmt.Errorf("failed to resolve channel: %w", err)
		}
		videos, err := service.FetchChannelVideos(ctx, channel, window, limit)
		if err != nil {
			return fmt.Errorf("failed to fetch videos: %w", err)
		}

		format, _ := cmd.Flags().GetString("format")
		if format == "json" {
			result, err := json.MarshalIndent(videos, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to format result: %w", err)
			}
			cmd.Println(string(result))
			return nil
		}

		if len(videos) > 0 {
			cmd.Printf("Found %d videos.\n", len(videos))
		}
		cmd.Print(ingest.FormatVideoGrid(videos, 3))
		return nil
	},
}

func init() {
	channelVideosCmd.Flags().String("start", "", "First day of the window, YYYY-MM-DD (default: --end)")
	channelVideosCmd.Flags().String("end", "", "Last day of the window, YYYY-MM-DD (default: today, UTC)")
	channelVideosCmd.Flags().Int("limit", 3, "Maximum number of videos")
	channelVideosCmd.Flags().String("format", "text", "Output format (text, json)")

	channelCmd.AddCommand(channelResolveCmd)
	channelCmd.AddCommand(channelVideosCmd)
	rootCmd.AddCommand(channelCmd)
}
