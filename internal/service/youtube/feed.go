package youtube

import (
	"bytes"
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	ext "github.com/mmcdole/gofeed/extensions"

	"github.com/Taichi-iskw/yt-trend/internal/errors"
	"github.com/Taichi-iskw/yt-trend/internal/model"
	"github.com/Taichi-iskw/yt-trend/internal/service/common"
)

const feedBase = "https://www.youtube.com/feeds/videos.xml"

// FeedLister lists a channel's latest uploads from its public Atom feed.
// The feed carries only the ~15 most recent uploads and needs no API quota.
type FeedLister struct {
	http    *common.HTTPClient
	baseURL string
	parser  *gofeed.Parser
}

// NewFeedLister creates a new FeedLister
func NewFeedLister(httpClient *common.HTTPClient) *FeedLister {
	return NewFeedListerWithBaseURL(feedBase, httpClient)
}

// NewFeedListerWithBaseURL creates a new FeedLister against a custom feed endpoint (for testing)
func NewFeedListerWithBaseURL(baseURL string, httpClient *common.HTTPClient) *FeedLister {
	return &FeedLister{
		http:    httpClient,
		baseURL: baseURL,
		parser:  gofeed.NewParser(),
	}
}

// FeedURL returns the Atom feed URL for a channel ID
func (l *FeedLister) FeedURL(channelID string) string {
	return l.baseURL + "?channel_id=" + channelID
}

// ListUploads fetches and parses the channel feed. since is not used: the feed is already short.
func (l *FeedLister) ListUploads(ctx context.Context, channel *model.Channel, _ time.Time) ([]*model.Video, error) {
	header := http.Header{}
	header.Set("Accept", "application/atom+xml, application/xml;q=0.9")

	body, err := l.http.Get(ctx, l.FeedURL(channel.ID), header)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeExternal, "failed to fetch channel feed")
	}

	feed, err := l.parser.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeExternal, "failed to parse channel feed")
	}

	videos := make([]*model.Video, 0, len(feed.Items))
	for _, item := range feed.Items {
		videoID := extensionValue(item.Extensions, "yt", "videoId")
		if videoID == "" {
			videoID = videoIDFromLink(item.Link)
		}
		if videoID == "" {
			continue
		}

		var publishedAt time.Time
		switch {
		case item.PublishedParsed != nil:
			publishedAt = item.PublishedParsed.UTC()
		case item.UpdatedParsed != nil:
			publishedAt = item.UpdatedParsed.UTC()
		default:
			continue
		}

		description := item.Description
		if description == "" {
			description = mediaDescription(item.Extensions)
		}

		videos = append(videos, &model.Video{
			ID:          videoID,
			ChannelID:   channel.ID,
			Title:       item.Title,
			Description: description,
			URL:         VideoURL(videoID),
			PublishedAt: publishedAt,
		})
	}

	return videos, nil
}

func extensionValue(exts ext.Extensions, prefix, name string) string {
	values := exts[prefix][name]
	if len(values) == 0 {
		return ""
	}
	return strings.TrimSpace(values[0].Value)
}

// mediaDescription reads <media:group><media:description>
func mediaDescription(exts ext.Extensions) string {
	groups := exts["media"]["group"]
	if len(groups) == 0 {
		return ""
	}
	descriptions := groups[0].Children["description"]
	if len(descriptions) == 0 {
		return ""
	}
	return descriptions[0].Value
}

func videoIDFromLink(link string) string {
	const marker = "watch?v="
	idx := strings.Index(link, marker)
	if idx < 0 {
		return ""
	}
	id := link[idx+len(marker):]
	if amp := strings.IndexByte(id, '&'); amp >= 0 {
		id = id[:amp]
	}
	return id
}
