package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Taichi-iskw/yt-trend/cmd/ingest"
)

// catalogCmd represents the catalog command
var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Browse channels and videos recorded with ingest --save",
}

// catalogChannelsCmd lists saved channels
var catalogChannelsCmd = &cobra.Command{
	Use:   "channels",
	Short: "List saved channels",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		factory, err := ingest.NewServiceFactory()
		if err != nil {
			return err
		}
		catalog, cleanup, err := factory.CreateCatalog(ctx)
		if err != nil {
			return err
		}
		defer cleanup()

		limit, _ := cmd.Flags().GetInt("limit")
		offset, _ := cmd.Flags().GetInt("offset")

		channels, err := catalog.Channels().List(ctx, limit, offset)
		if err != nil {
			return fmt.Errorf("failed to list channels: %w", err)
		}
		if len(channels) == 0 {
			cmd.Println("No channels found in the database.")
			return nil
		}

		result, err := json.MarshalIndent(channels, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to format result: %w", err)
		}
		cmd.Printf("Found %d channel(s):\n%s\n", len(channels), string(result))
		return nil
	},
}

// catalogVideosCmd lists saved videos of a channel
var catalogVideosCmd = &cobra.Command{
	Use:   "videos [CHANNEL_ID]",
	Short: "List saved videos of a channel, newest first",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		factory, err := ingest.NewServiceFactory()
		if err != nil {
			return err
		}
		catalog, cleanup, err := factory.CreateCatalog(ctx)
		if err != nil {
			return err
		}
		defer cleanup()

		limit, _ := cmd.Flags().GetInt("limit")
		offset, _ := cmd.Flags().GetInt("offset")

		videos, err := catalog.Videos().GetByChannelID(ctx, args[0], limit, offset)
		if err != nil {
			return fmt.Errorf("failed to list videos: %w", err)
		}
		if len(videos) == 0 {
			cmd.Println("No videos found for this channel.")
			return nil
		}
		cmd.Print(ingest.FormatVideoGrid(videos, 3))
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{catalogChannelsCmd, catalogVideosCmd} {
		c.Flags().Int("limit", 20, "Maximum number of rows to retrieve")
		c.Flags().Int("offset", 0, "Number of rows to skip")
	}

	catalogCmd.AddCommand(catalogChannelsCmd)
	catalogCmd.AddCommand(catalogVideosCmd)
	rootCmd.AddCommand(catalogCmd)
}
