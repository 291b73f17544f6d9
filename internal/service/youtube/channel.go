package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Taichi-iskw/yt-trend/internal/errors"
	"github.com/Taichi-iskw/yt-trend/internal/model"
	"github.com/Taichi-iskw/yt-trend/internal/service/common"
)

// YtDlpClient resolves channels and lists uploads by shelling out to yt-dlp.
// It needs neither an API key nor HTML scraping, at the cost of speed.
type YtDlpClient struct {
	cmdRunner common.CmdRunner
	scanLimit int
}

// ytDlpScanLimit bounds how many recent uploads yt-dlp fully extracts per channel
const ytDlpScanLimit = 15

// NewYtDlpClient creates a new YtDlpClient
func NewYtDlpClient() *YtDlpClient {
	return NewYtDlpClientWithCmdRunner(common.NewCmdRunner())
}

// NewYtDlpClientWithCmdRunner creates a new YtDlpClient with custom CmdRunner (for testing)
func NewYtDlpClientWithCmdRunner(cmdRunner common.CmdRunner) *YtDlpClient {
	return &YtDlpClient{
		cmdRunner: cmdRunner,
		scanLimit: ytDlpScanLimit,
	}
}

// ytDlpChannelInfo represents yt-dlp JSON output structure for channel info
type ytDlpChannelInfo struct {
	Channel    string `json:"channel"`
	ChannelID  string `json:"channel_id"`
	ChannelURL string `json:"channel_url"`
	Uploader   string `json:"uploader"`
}

// ResolveChannel reads channel metadata from the first upload yt-dlp reports
func (c *YtDlpClient) ResolveChannel(ctx context.Context, ref string) (*model.Channel, error) {
	parsed, err := parseChannelRef(ref)
	if err != nil {
		return nil, err
	}
	channelURL := parsed.pageURL(youtubeBase)

	args := []string{
		"--dump-json",
		"--playlist-items", "1", // Get only first video to extract channel info
		"--skip-download",
		channelURL + "/videos",
	}

	output, err := c.cmdRunner.Run(ctx, "yt-dlp", args...)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeExternal, formatYtDlpError(err, channelURL))
	}

	line := strings.TrimSpace(string(output))
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	if line == "" {
		return nil, errors.New(errors.CodeNotFound, "channel has no public uploads: "+ref)
	}

	var info ytDlpChannelInfo
	if err := json.Unmarshal([]byte(line), &info); err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "failed to parse yt-dlp output")
	}
	if !IsChannelID(info.ChannelID) {
		return nil, errors.New(errors.CodeExternal, fmt.Sprintf("yt-dlp returned no channel ID for %s", ref))
	}

	name := info.Channel
	if name == "" {
		name = info.Uploader
	}
	return &model.Channel{
		ID:                info.ChannelID,
		Name:              name,
		URL:               ChannelURL(info.ChannelID),
		UploadsPlaylistID: UploadsPlaylistID(info.ChannelID),
	}, nil
}

// formatYtDlpError provides user-friendly error messages for yt-dlp failures
func formatYtDlpError(err error, target string) string {
	errMsg := err.Error()

	// Check for common yt-dlp error patterns
	switch {
	case strings.Contains(errMsg, "executable file not found") || strings.Contains(errMsg, "No such file or directory"):
		return "yt-dlp is not installed or not found in PATH. Please install yt-dlp"
	case strings.Contains(errMsg, "does not exist") || strings.Contains(errMsg, "HTTP Error 404"):
		return "channel or video not found - please check the reference"
	case strings.Contains(errMsg, "Private video"):
		return "video is private"
	case strings.Contains(errMsg, "Video unavailable") || strings.Contains(errMsg, "This video is not available"):
		return "video is not available (may be private, deleted, or region-blocked)"
	case strings.Contains(errMsg, "Sign in to confirm"):
		return "YouTube requires sign-in for this request"
	case strings.Contains(errMsg, "429"):
		return "rate limited by YouTube - please try again later"
	case strings.Contains(errMsg, "403"):
		return "access denied - content may be region-blocked or require login"
	default:
		return fmt.Sprintf("yt-dlp failed for %s", target)
	}
}
