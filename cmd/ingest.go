package cmd

import (
	"github.com/Taichi-iskw/yt-trend/cmd/ingest"
)

func init() {
	rootCmd.AddCommand(ingest.NewIngestCommand(nil))
}
