package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/Taichi-iskw/yt-trend/internal/errors"
	"github.com/Taichi-iskw/yt-trend/internal/model"
)

// ytDlpVideoInfo represents yt-dlp JSON output structure for video info
type ytDlpVideoInfo struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	ChannelID   string `json:"channel_id"`
	URL         string `json:"webpage_url"`
	UploadDate  string `json:"upload_date"` // YYYYMMDD
	Timestamp   int64  `json:"timestamp"`
}

// ListUploads extracts the most recent uploads of a channel, skipping ones older than since
func (c *YtDlpClient) ListUploads(ctx context.Context, channel *model.Channel, since time.Time) ([]*model.Video, error) {
	if channel == nil || !IsChannelID(channel.ID) {
		return nil, errors.New(errors.CodeInvalidArg, "invalid channel ID format (must start with UC)")
	}

	channelURL := ChannelURL(channel.ID) + "/videos"
	args := []string{
		"--dump-json",
		"--skip-download",
		"--ignore-errors",
		"--playlist-end", fmt.Sprintf("%d", c.scanLimit),
	}
	if !since.IsZero() {
		args = append(args, "--dateafter", since.UTC().Format("20060102"))
	}
	args = append(args, channelURL)

	output, err := c.cmdRunner.Run(ctx, "yt-dlp", args...)
	if err != nil && len(output) == 0 {
		return nil, errors.Wrap(err, errors.CodeExternal, formatYtDlpError(err, channelURL))
	}

	// yt-dlp outputs one JSON object per line
	lines := strings.Split(strings.TrimSpace(string(output)), "\n")
	videos := make([]*model.Video, 0, len(lines))

	for _, line := range lines {
		if line == "" {
			continue
		}

		var info ytDlpVideoInfo
		if err := json.Unmarshal([]byte(line), &info); err != nil {
			return nil, errors.Wrap(err, errors.CodeInternal, "failed to parse yt-dlp output")
		}

		publishedAt, ok := ytDlpPublishedAt(info)
		if !ok {
			continue
		}

		videoURL := info.URL
		if videoURL == "" {
			videoURL = VideoURL(info.ID)
		}
		videos = append(videos, &model.Video{
			ID:          info.ID,
			ChannelID:   channel.ID,
			Title:       info.Title,
			Description: info.Description,
			URL:         videoURL,
			PublishedAt: publishedAt,
		})
	}

	return videos, nil
}

// ytDlpPublishedAt prefers the precise timestamp and falls back to upload_date
func ytDlpPublishedAt(info ytDlpVideoInfo) (time.Time, bool) {
	if info.Timestamp > 0 {
		return time.Unix(info.Timestamp, 0).UTC(), true
	}
	if info.UploadDate != "" {
		if t, err := time.Parse("20060102", info.UploadDate); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
