package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Taichi-iskw/yt-trend/cmd/ingest"
	"github.com/Taichi-iskw/yt-trend/internal/service/report"
)

// reportCmd summarizes an existing corpus
var reportCmd = &cobra.Command{
	Use:   "report [FILE...]",
	Short: "Generate a trend report from corpus files",
	Long: `Run the two-stage analysis and synthesis over corpus files. Without arguments
every .txt file in the configured transcripts directory is used. Files may also be
given as one comma-separated argument, the form ingest prints.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		factory, err := ingest.NewServiceFactory()
		if err != nil {
			return err
		}

		paths := splitPaths(args)
		if len(paths) == 0 {
			paths, err = filepath.Glob(filepath.Join(factory.Config().TranscriptsDir, "*.txt"))
			if err != nil {
				return err
			}
		}
		if len(paths) == 0 {
			return fmt.Errorf("no corpus files found in %s", factory.Config().TranscriptsDir)
		}

		summarizer, err := factory.CreateSummarizer()
		if err != nil {
			return fmt.Errorf("failed to create report summarizer: %w", err)
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		text, err := summarizer.Summarize(ctx, paths)
		if err != nil {
			return fmt.Errorf("failed to generate report: %w", err)
		}

		out, _ := cmd.Flags().GetString("out")
		if err := report.SaveReport(out, text); err != nil {
			return err
		}
		cmd.Println(text)
		cmd.Printf("\nReport saved to %s\n", out)
		return nil
	},
}

// splitPaths accepts space separated arguments and ", " joined lists
func splitPaths(args []string) []string {
	var paths []string
	for _, arg := range args {
		for _, p := range strings.Split(arg, ",") {
			if p = strings.TrimSpace(p); p != "" {
				paths = append(paths, p)
			}
		}
	}
	return paths
}

func init() {
	reportCmd.Flags().String("out", "analysis.md", "Where to write the report")
	rootCmd.AddCommand(reportCmd)
}
