package youtube

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Taichi-iskw/yt-trend/internal/errors"
	"github.com/Taichi-iskw/yt-trend/internal/model"
	"github.com/Taichi-iskw/yt-trend/internal/service/common"
)

const (
	dataAPIBase = "https://www.googleapis.com/youtube/v3"

	playlistPageSize = 50
	maxPlaylistPages = 5
)

// DataAPIClient resolves channels and lists uploads through the YouTube Data API v3
type DataAPIClient struct {
	http     *common.HTTPClient
	baseURL  string
	apiKey   string
	pages    Resolver // used for /c/ and vanity URLs, which the API cannot look up
	maxPages int
	logger   *slog.Logger
}

// NewDataAPIClient creates a new DataAPIClient
func NewDataAPIClient(apiKey string, httpClient *common.HTTPClient, pages Resolver) *DataAPIClient {
	return NewDataAPIClientWithBaseURL(dataAPIBase, apiKey, httpClient, pages)
}

// NewDataAPIClientWithBaseURL creates a new DataAPIClient against a custom endpoint (for testing)
func NewDataAPIClientWithBaseURL(baseURL, apiKey string, httpClient *common.HTTPClient, pages Resolver) *DataAPIClient {
	return &DataAPIClient{
		http:     httpClient,
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		apiKey:   apiKey,
		pages:    pages,
		maxPages: maxPlaylistPages,
		logger:   slog.Default(),
	}
}

type apiChannelsResp struct {
	Items []struct {
		ID      string `json:"id"`
		Snippet struct {
			Title     string `json:"title"`
			CustomURL string `json:"customUrl"`
		} `json:"snippet"`
		ContentDetails struct {
			RelatedPlaylists struct {
				Uploads string `json:"uploads"`
			} `json:"relatedPlaylists"`
		} `json:"contentDetails"`
	} `json:"items"`
}

type apiPlaylistItemsResp struct {
	NextPageToken string `json:"nextPageToken"`
	Items         []struct {
		Snippet struct {
			PublishedAt string `json:"publishedAt"`
			Title       string `json:"title"`
			Description string `json:"description"`
			ResourceID  struct {
				VideoID string `json:"videoId"`
			} `json:"resourceId"`
		} `json:"snippet"`
		ContentDetails struct {
			VideoID          string `json:"videoId"`
			VideoPublishedAt string `json:"videoPublishedAt"`
		} `json:"contentDetails"`
	} `json:"items"`
}

type apiErrorResp struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Errors  []struct {
			Reason string `json:"reason"`
		} `json:"errors"`
	} `json:"error"`
}

// ResolveChannel looks the channel up by ID, handle or legacy username
func (c *DataAPIClient) ResolveChannel(ctx context.Context, ref string) (*model.Channel, error) {
	parsed, err := parseChannelRef(ref)
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	switch parsed.kind {
	case refChannelID:
		params.Set("id", parsed.value)
	case refHandle:
		params.Set("forHandle", parsed.value)
	case refUsername:
		params.Set("forUsername", parsed.value)
	default:
		if c.pages == nil {
			return nil, errors.New(errors.CodeInvalidArg, "custom channel URLs cannot be resolved without a page resolver: "+ref)
		}
		fromPage, err := c.pages.ResolveChannel(ctx, ref)
		if err != nil {
			return nil, err
		}
		params.Set("id", fromPage.ID)
	}
	params.Set("part", "snippet,contentDetails")

	var resp apiChannelsResp
	if err := c.getJSON(ctx, "/channels", params, &resp); err != nil {
		return nil, err
	}
	if len(resp.Items) == 0 {
		return nil, errors.New(errors.CodeNotFound, fmt.Sprintf("channel not found (%s %s)", parsed.kind, parsed.value))
	}

	item := resp.Items[0]
	return &model.Channel{
		ID:                item.ID,
		Name:              item.Snippet.Title,
		URL:               ChannelURL(item.ID),
		UploadsPlaylistID: item.ContentDetails.RelatedPlaylists.Uploads,
	}, nil
}

// ListUploads pages through the channel's uploads playlist until it reaches
// uploads older than since or runs out of pages
func (c *DataAPIClient) ListUploads(ctx context.Context, channel *model.Channel, since time.Time) ([]*model.Video, error) {
	playlistID := channel.UploadsPlaylistID
	if playlistID == "" {
		playlistID = UploadsPlaylistID(channel.ID)
	}
	sinceDay := model.TruncateToDay(since)

	var videos []*model.Video
	pageToken := ""
	exhausted := false
	for page := 0; page < c.maxPages; page++ {
		params := url.Values{}
		params.Set("part", "snippet,contentDetails")
		params.Set("playlistId", playlistID)
		params.Set("maxResults", fmt.Sprintf("%d", playlistPageSize))
		if pageToken != "" {
			params.Set("pageToken", pageToken)
		}

		var resp apiPlaylistItemsResp
		if err := c.getJSON(ctx, "/playlistItems", params, &resp); err != nil {
			return nil, err
		}

		reachedOlder := false
		for _, item := range resp.Items {
			videoID := item.ContentDetails.VideoID
			if videoID == "" {
				videoID = item.Snippet.ResourceID.VideoID
			}
			// private and deleted entries carry no videoPublishedAt
			if videoID == "" || item.ContentDetails.VideoPublishedAt == "" {
				continue
			}
			publishedAt, err := time.Parse(time.RFC3339, item.ContentDetails.VideoPublishedAt)
			if err != nil {
				continue
			}
			if !sinceDay.IsZero() && model.TruncateToDay(publishedAt).Before(sinceDay) {
				reachedOlder = true
			}
			videos = append(videos, &model.Video{
				ID:          videoID,
				ChannelID:   channel.ID,
				Title:       item.Snippet.Title,
				Description: item.Snippet.Description,
				URL:         VideoURL(videoID),
				PublishedAt: publishedAt.UTC(),
			})
		}

		if reachedOlder || resp.NextPageToken == "" {
			exhausted = true
			break
		}
		pageToken = resp.NextPageToken
	}

	if !exhausted {
		c.logger.Warn("upload listing truncated at page limit; older videos in the window are missing",
			slog.String("channel_id", channel.ID),
			slog.Int("pages", c.maxPages),
			slog.Int("videos", len(videos)))
	}

	return videos, nil
}

// UploadsPlaylistID derives the uploads playlist ("UU…") from a channel ID ("UC…")
func UploadsPlaylistID(channelID string) string {
	if strings.HasPrefix(channelID, "UC") {
		return "UU" + channelID[2:]
	}
	return channelID
}

func (c *DataAPIClient) getJSON(ctx context.Context, path string, params url.Values, out any) error {
	params.Set("key", c.apiKey)
	header := http.Header{}
	header.Set("Accept", "application/json")

	body, err := c.http.Get(ctx, c.baseURL+path+"?"+params.Encode(), header)
	if err != nil {
		return apiError(err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return errors.Wrap(err, errors.CodeExternal, "failed to decode YouTube Data API response")
	}
	return nil
}

// apiError converts an HTTP failure into an AppError carrying the API's own message
func apiError(err error) error {
	var statusErr *common.StatusError
	if !stderrors.As(err, &statusErr) {
		return errors.Wrap(err, errors.CodeExternal, "YouTube Data API request failed")
	}

	message := statusErr.Body
	var parsed apiErrorResp
	if json.Unmarshal([]byte(statusErr.Body), &parsed) == nil && parsed.Error.Message != "" {
		message = parsed.Error.Message
		if len(parsed.Error.Errors) > 0 && parsed.Error.Errors[0].Reason != "" {
			message += " (" + parsed.Error.Errors[0].Reason + ")"
		}
	}

	code := errors.CodeExternal
	if statusErr.StatusCode == http.StatusNotFound {
		code = errors.CodeNotFound
	}
	return errors.Wrap(err, code, fmt.Sprintf("YouTube Data API returned %d: %s", statusErr.StatusCode, message))
}
