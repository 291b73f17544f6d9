package ingest

import (
	"context"
	stderrors "errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Taichi-iskw/yt-trend/internal/errors"
	"github.com/Taichi-iskw/yt-trend/internal/model"
	"github.com/Taichi-iskw/yt-trend/internal/service/corpus"
	"github.com/Taichi-iskw/yt-trend/internal/service/transcript"
	"github.com/Taichi-iskw/yt-trend/internal/service/youtube"
)

// Catalog records a finished run. Failures are logged, never fatal.
type Catalog interface {
	SaveRun(ctx context.Context, channels []*model.Channel, videos []*model.Video) error
}

// Result is the outcome of a successful run
type Result struct {
	RunID     string
	Videos    []*model.Video
	Artifacts []model.CorpusArtifact
	Warnings  []model.Warning
	// Transcripts counts fetch outcomes by reason; ReasonNone counts successes
	Transcripts map[transcript.Reason]int
}

// VideoCount returns the number of videos in the corpus
func (r *Result) VideoCount() int {
	return len(r.Videos)
}

// FilePaths returns artifact paths in corpus order
func (r *Result) FilePaths() []string {
	paths := make([]string, len(r.Artifacts))
	for i, a := range r.Artifacts {
		paths[i] = a.Path
	}
	return paths
}

// JoinedPaths returns the file paths as a single ", " separated field
func (r *Result) JoinedPaths() string {
	return strings.Join(r.FilePaths(), ", ")
}

// Service runs ingestion: resolve, select, fetch transcripts, write the corpus
type Service interface {
	Run(ctx context.Context, opts Options) (*Result, error)
}

// service implements Service
type service struct {
	youtube youtube.YouTubeService
	fetcher transcript.Fetcher
	writer  corpus.Writer
	catalog Catalog
	logger  *slog.Logger
}

// NewService creates a new Service. catalog may be nil.
func NewService(yt youtube.YouTubeService, fetcher transcript.Fetcher, writer corpus.Writer, catalog Catalog) Service {
	return &service{
		youtube: yt,
		fetcher: fetcher,
		writer:  writer,
		catalog: catalog,
		logger:  slog.Default(),
	}
}

// channelResult holds one channel's outcome; err is set when resolve or select failed
type channelResult struct {
	ref      string
	channel  *model.Channel
	videos   []*model.Video
	stage    string
	err      error
	warnings []model.Warning
}

func (s *service) Run(ctx context.Context, opts Options) (*Result, error) {
	plan, err := opts.Plan()
	if err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	logger := s.logger.With(slog.String("run_id", runID))
	logger.Info("starting ingestion",
		slog.Int("channels", len(plan.Channels)),
		slog.String("window", plan.Window.String()),
		slog.Int("videos_per_channel", opts.VideosPerChannel),
		slog.Bool("transcripts", opts.GetTranscripts))

	result := &Result{
		RunID:       runID,
		Transcripts: make(map[transcript.Reason]int),
	}

	results := make([]channelResult, 0, len(plan.Channels))
	for _, ref := range plan.Channels {
		results = append(results, s.runChannel(ctx, logger, ref, plan.Window, opts, result.Transcripts))
	}

	var channels []*model.Channel
	var failures []error
	for _, r := range results {
		result.Warnings = append(result.Warnings, r.warnings...)
		if r.err != nil {
			result.Warnings = append(result.Warnings, model.Warning{ChannelRef: r.ref, Stage: r.stage, Message: r.err.Error()})
			failures = append(failures, r.err)
			continue
		}
		channels = append(channels, r.channel)
		result.Videos = append(result.Videos, r.videos...)
	}

	if len(result.Videos) == 0 {
		// nil cause when every channel resolved but had nothing in range
		return nil, errors.Wrap(stderrors.Join(failures...), errors.CodeEmptyResult, "no videos found")
	}

	artifacts, err := s.writer.WriteAll(result.Videos)
	if err != nil {
		return nil, err
	}
	result.Artifacts = artifacts

	if s.catalog != nil {
		if err := s.catalog.SaveRun(ctx, channels, result.Videos); err != nil {
			logger.Warn("failed to save run to catalog", slog.Any("err", err))
		}
	}

	logger.Info("ingestion finished",
		slog.Int("videos", result.VideoCount()),
		slog.Int("warnings", len(result.Warnings)),
		slog.Int("transcripts", result.Transcripts[transcript.ReasonNone]))

	return result, nil
}

// runChannel resolves, selects and fetches transcripts for one channel.
// Resolve and select failures are returned in the result, never raised.
func (s *service) runChannel(ctx context.Context, logger *slog.Logger, ref string, window model.DateWindow, opts Options, reasons map[transcript.Reason]int) channelResult {
	start := time.Now()
	logger = logger.With(slog.String("channel", ref))

	channel, err := s.youtube.ResolveChannel(ctx, ref)
	if err != nil {
		logger.Warn("skipping channel", slog.String("stage", "resolve"), slog.Any("err", err))
		return channelResult{ref: ref, stage: model.StageResolve, err: err}
	}

	videos, err := s.youtube.FetchChannelVideos(ctx, channel, window, opts.VideosPerChannel)
	if err != nil {
		logger.Warn("skipping channel", slog.String("stage", "select"), slog.Any("err", err))
		return channelResult{ref: ref, channel: channel, stage: model.StageSelect, err: err}
	}

	videos, warnings := dropInvalidVideos(logger, ref, videos)

	for _, video := range videos {
		fetched := s.fetcher.Fetch(ctx, video.ID, opts.GetTranscripts, opts.TranscriptTimeout)
		reasons[fetched.Reason]++
		if fetched.Available {
			video.Transcript = fetched.Segments
			continue
		}
		video.Transcript = nil
		if fetched.Reason != transcript.ReasonDisabled {
			logger.Info("transcript unavailable, using metadata",
				slog.String("video_id", video.ID),
				slog.String("reason", string(fetched.Reason)))
		}
	}

	logger.Debug("channel done",
		slog.String("channel_id", channel.ID),
		slog.Int("videos", len(videos)),
		slog.Duration("elapsed", time.Since(start)))

	return channelResult{ref: ref, channel: channel, videos: videos, warnings: warnings}
}

// dropInvalidVideos removes videos whose id cannot name a corpus file, so one
// malformed listing entry never reaches the writer
func dropInvalidVideos(logger *slog.Logger, ref string, videos []*model.Video) ([]*model.Video, []model.Warning) {
	var warnings []model.Warning
	kept := make([]*model.Video, 0, len(videos))
	for _, video := range videos {
		if video == nil {
			continue
		}
		if err := corpus.ValidateVideoID(video.ID); err != nil {
			logger.Warn("skipping video", slog.String("stage", model.StageVideo), slog.Any("err", err))
			warnings = append(warnings, model.Warning{ChannelRef: ref, Stage: model.StageVideo, Message: err.Error()})
			continue
		}
		kept = append(kept, video)
	}
	return kept, warnings
}
