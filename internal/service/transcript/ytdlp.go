package transcript

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Taichi-iskw/yt-trend/internal/model"
	"github.com/Taichi-iskw/yt-trend/internal/service/common"
)

// YtDlpSource downloads json3 subtitles with yt-dlp
type YtDlpSource struct {
	cmdRunner common.CmdRunner
	subLangs  string
}

// NewYtDlpSource creates a new YtDlpSource
func NewYtDlpSource() *YtDlpSource {
	return NewYtDlpSourceWithCmdRunner(common.NewCmdRunner())
}

// NewYtDlpSourceWithCmdRunner creates a new YtDlpSource with custom CmdRunner (for testing)
func NewYtDlpSourceWithCmdRunner(cmdRunner common.CmdRunner) *YtDlpSource {
	return &YtDlpSource{
		cmdRunner: cmdRunner,
		subLangs:  "en.*,en",
	}
}

// json3Doc is yt-dlp's json3 subtitle format
type json3Doc struct {
	Events []struct {
		TStartMs    int64 `json:"tStartMs"`
		DDurationMs int64 `json:"dDurationMs"`
		Segs        []struct {
			UTF8 string `json:"utf8"`
		} `json:"segs"`
	} `json:"events"`
}

// FetchTranscript implements Source
func (s *YtDlpSource) FetchTranscript(ctx context.Context, videoID string) ([]model.TranscriptSegment, error) {
	outputDir, err := os.MkdirTemp("", "yt-trend-subs-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp directory: %w", err)
	}
	defer os.RemoveAll(outputDir)

	args := []string{
		"--skip-download",
		"--write-subs",
		"--write-auto-subs",
		"--sub-langs", s.subLangs,
		"--sub-format", "json3",
		"--output", filepath.Join(outputDir, "%(id)s.%(ext)s"),
		"https://www.youtube.com/watch?v=" + videoID,
	}

	if _, err := s.cmdRunner.Run(ctx, "yt-dlp", args...); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("yt-dlp subtitles for %s: %w", videoID, err)
	}

	matches, err := filepath.Glob(filepath.Join(outputDir, "*.json3"))
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, ErrNoCaptions
	}
	sort.Strings(matches)

	data, err := os.ReadFile(matches[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read subtitles: %w", err)
	}
	return ParseJSON3(data)
}

// ParseJSON3 converts json3 events into transcript segments
func ParseJSON3(data []byte) ([]model.TranscriptSegment, error) {
	var doc json3Doc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse json3 subtitles: %w", err)
	}

	segments := make([]model.TranscriptSegment, 0, len(doc.Events))
	for _, event := range doc.Events {
		if len(event.Segs) == 0 {
			continue
		}
		var sb strings.Builder
		for _, seg := range event.Segs {
			sb.WriteString(seg.UTF8)
		}
		start := float64(event.TStartMs) / 1000
		segments = append(segments, model.TranscriptSegment{
			StartTime: start,
			EndTime:   start + float64(event.DDurationMs)/1000,
			Text:      cleanCaptionText(sb.String()),
		})
	}
	return Normalize(segments), nil
}
