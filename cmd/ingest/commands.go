package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Taichi-iskw/yt-trend/internal/config"
	"github.com/Taichi-iskw/yt-trend/internal/errors"
	ingestSvc "github.com/Taichi-iskw/yt-trend/internal/service/ingest"
	"github.com/Taichi-iskw/yt-trend/internal/service/report"
)

// defaultWindowDays is the window length used when --start is omitted
const defaultWindowDays = 7

// reportTimeout bounds both report stages together
const reportTimeout = 5 * time.Minute

// Dependencies are injected for testing; nil fields are built from configuration
type Dependencies struct {
	Config     *config.Config
	Service    ingestSvc.Service
	Summarizer report.Summarizer
}

// NewIngestCommand creates the ingest command
func NewIngestCommand(deps *Dependencies) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest [CHANNEL...]",
		Short: "Build a transcript corpus from recent channel uploads",
		Long: `Resolve each channel, select its most recent videos inside the date window,
fetch their transcripts and write one text file per video to the transcripts directory.

Channels may be given as arguments or with --channel, as channel URLs, @handles or UC... IDs.`,
		Example: `  yt-trend ingest @veritasium https://www.youtube.com/@mkbhd --start 2024-05-01 --end 2024-05-31
  yt-trend ingest --channel UCuAXFkgsw1L7xaCfnd5JJOw --quick --report`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if deps == nil {
				deps = &Dependencies{}
			}

			var factory *ServiceFactory
			if deps.Config == nil {
				f, err := NewServiceFactory()
				if err != nil {
					return err
				}
				factory = f
				deps.Config = f.Config()
			} else {
				factory = NewServiceFactoryWithConfig(deps.Config)
			}

			opts, err := optionsFromFlags(cmd, args, deps.Config, time.Now())
			if err != nil {
				return err
			}

			if dryRun, _ := cmd.Flags().GetBool("dry-run"); dryRun {
				plan, err := PlanRun(opts)
				if err != nil {
					return err
				}
				cmd.Print(plan.String())
				return nil
			}

			format, _ := cmd.Flags().GetString("format")
			formatter, err := GetFormatter(format)
			if err != nil {
				return err
			}
			wantReport, _ := cmd.Flags().GetBool("report")

			// Fail before any network call when the run or the report cannot start
			if err := opts.Validate(); err != nil {
				return err
			}
			summarizer := deps.Summarizer
			if wantReport && summarizer == nil {
				summarizer, err = factory.CreateSummarizer()
				if err != nil {
					return fmt.Errorf("failed to create report summarizer: %w", err)
				}
			}

			service := deps.Service
			if service == nil {
				save, _ := cmd.Flags().GetBool("save")
				var cleanup func()
				service, cleanup, err = factory.CreateService(context.Background(), save)
				if err != nil {
					return fmt.Errorf("failed to create ingest service: %w", err)
				}
				defer cleanup()
			}

			result, err := service.Run(context.Background(), opts)
			if err != nil {
				if errors.HasCode(err, errors.CodeEmptyResult) {
					cmd.Println("No videos found.")
				}
				return fmt.Errorf("ingestion failed: %w", err)
			}

			output, err := formatter.Format(result)
			if err != nil {
				return err
			}
			cmd.Println(output)

			if !wantReport {
				return nil
			}

			ctx, cancel := context.WithTimeout(context.Background(), reportTimeout)
			defer cancel()
			text, err := summarizer.Summarize(ctx, result.FilePaths())
			if err != nil {
				return fmt.Errorf("failed to generate report: %w", err)
			}

			reportOut, _ := cmd.Flags().GetString("report-out")
			if err := report.SaveReport(reportOut, text); err != nil {
				return err
			}
			cmd.Println(text)
			cmd.Printf("\nReport saved to %s\n", reportOut)
			return nil
		},
	}

	cmd.Flags().StringArray("channel", nil, "Channel URL, @handle or ID (repeatable)")
	cmd.Flags().String("start", "", "First day of the window, YYYY-MM-DD (default: 7 days before --end)")
	cmd.Flags().String("end", "", "Last day of the window, YYYY-MM-DD (default: today, UTC)")
	cmd.Flags().IntP("videos-per-channel", "n", 0, "Maximum videos per channel (default from config: 3)")
	cmd.Flags().Bool("quick", false, "Skip transcripts and write title/description only")
	cmd.Flags().Float64("timeout", 0, "Per-video transcript timeout in seconds (default from config: 8)")
	cmd.Flags().Bool("save", false, "Record channels and videos in the catalog database")
	cmd.Flags().Bool("report", false, "Generate a trend report from the corpus")
	cmd.Flags().String("report-out", "analysis.md", "Where to write the report")
	cmd.Flags().String("format", "text", "Output format (text, json)")
	cmd.Flags().Bool("dry-run", false, "Validate input and print the plan without network calls")

	return cmd
}

// optionsFromFlags merges flags over configuration defaults
func optionsFromFlags(cmd *cobra.Command, args []string, cfg *config.Config, now time.Time) (ingestSvc.Options, error) {
	opts := ingestSvc.DefaultOptions()

	flagChannels, _ := cmd.Flags().GetStringArray("channel")
	opts.Channels = append(append([]string{}, args...), flagChannels...)

	end, _ := cmd.Flags().GetString("end")
	if end == "" {
		end = now.UTC().Format("2006-01-02")
	}
	start, _ := cmd.Flags().GetString("start")
	if start == "" {
		endDay, err := time.Parse("2006-01-02", end)
		if err != nil {
			return ingestSvc.Options{}, errors.Wrap(err, errors.CodeInvalidArg, "dates must be formatted as YYYY-MM-DD")
		}
		start = endDay.AddDate(0, 0, -defaultWindowDays).Format("2006-01-02")
	}
	opts.StartDate = start
	opts.EndDate = end

	opts.VideosPerChannel = cfg.VideosPerChannel
	if cmd.Flags().Changed("videos-per-channel") {
		opts.VideosPerChannel, _ = cmd.Flags().GetInt("videos-per-channel")
	}

	timeout := cfg.TranscriptTimeoutDuration()
	if cmd.Flags().Changed("timeout") {
		seconds, _ := cmd.Flags().GetFloat64("timeout")
		timeout = time.Duration(seconds * float64(time.Second))
	}
	opts.TranscriptTimeout = timeout

	quick, _ := cmd.Flags().GetBool("quick")
	opts.GetTranscripts = !quick
	opts.APIKey = cfg.YouTubeAPIKey

	return opts, nil
}
