package transcript

import (
	"context"
	stderrors "errors"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/Taichi-iskw/yt-trend/internal/model"
)

// Reason explains why a transcript is unavailable
type Reason string

const (
	ReasonNone       Reason = ""
	ReasonDisabled   Reason = "disabled"
	ReasonNoCaptions Reason = "no_captions"
	ReasonTimeout    Reason = "timeout"
	ReasonError      Reason = "error"
)

// ErrNoCaptions is returned by sources when a video has no usable caption track
var ErrNoCaptions = stderrors.New("no captions available")

// Result is the outcome of one transcript fetch. It is never an error:
// when Available is false, Reason says why and Err may hold the cause.
type Result struct {
	Segments  []model.TranscriptSegment
	Available bool
	Reason    Reason
	Err       error
}

// Source retrieves the timed transcript of a single video
type Source interface {
	FetchTranscript(ctx context.Context, videoID string) ([]model.TranscriptSegment, error)
}

// Fetcher bounds a Source by a wall-clock timeout
type Fetcher interface {
	Fetch(ctx context.Context, videoID string, enabled bool, timeout time.Duration) Result
}

// fetcher implements Fetcher
type fetcher struct {
	source Source
	logger *slog.Logger
}

// NewFetcher creates a new Fetcher over source
func NewFetcher(source Source) Fetcher {
	return &fetcher{
		source: source,
		logger: slog.Default(),
	}
}

type outcome struct {
	segments []model.TranscriptSegment
	err      error
}

// Fetch makes at most one attempt. The source runs in its own goroutine with a
// context cancelled at the deadline; if it ignores cancellation it is abandoned
// and its result dropped into a buffered channel nobody reads.
func (f *fetcher) Fetch(ctx context.Context, videoID string, enabled bool, timeout time.Duration) Result {
	if !enabled {
		return Result{Reason: ReasonDisabled}
	}
	if timeout <= 0 {
		return Result{Reason: ReasonTimeout}
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan outcome, 1)
	go func() {
		segments, err := f.source.FetchTranscript(ctx, videoID)
		done <- outcome{segments: segments, err: err}
	}()

	var result Result
	select {
	case out := <-done:
		result = classify(out)
	case <-ctx.Done():
		result = Result{Reason: ReasonTimeout, Err: ctx.Err()}
	}

	if !result.Available {
		f.logger.Debug("transcript unavailable",
			slog.String("video_id", videoID),
			slog.String("reason", string(result.Reason)),
			slog.Any("err", result.Err))
	}
	return result
}

func classify(out outcome) Result {
	switch {
	case out.err == nil:
		segments := Normalize(out.segments)
		if len(segments) == 0 {
			return Result{Reason: ReasonNoCaptions}
		}
		return Result{Segments: segments, Available: true}
	case stderrors.Is(out.err, ErrNoCaptions):
		return Result{Reason: ReasonNoCaptions, Err: out.err}
	case stderrors.Is(out.err, context.DeadlineExceeded):
		return Result{Reason: ReasonTimeout, Err: out.err}
	default:
		return Result{Reason: ReasonError, Err: out.err}
	}
}

// Normalize drops blank segments, orders them by start time and clamps
// end times so that EndTime >= StartTime
func Normalize(segments []model.TranscriptSegment) []model.TranscriptSegment {
	out := make([]model.TranscriptSegment, 0, len(segments))
	for _, s := range segments {
		s.Text = strings.TrimSpace(s.Text)
		if s.Text == "" {
			continue
		}
		if s.EndTime < s.StartTime {
			s.EndTime = s.StartTime
		}
		out = append(out, s)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].StartTime < out[j].StartTime
	})
	return out
}
