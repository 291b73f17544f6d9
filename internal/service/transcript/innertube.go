package transcript

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/Taichi-iskw/yt-trend/internal/model"
	"github.com/Taichi-iskw/yt-trend/internal/service/common"
)

const (
	youtubeBase      = "https://www.youtube.com"
	androidVersion   = "20.10.38"
	androidUserAgent = "com.google.android.youtube/" + androidVersion + " (Linux; U; Android 11) gzip"

	// playerResponseMarker marks the start of the player response JSON in watch page HTML
	playerResponseMarker = "ytInitialPlayerResponse = "
)

// InnertubeSource reads caption tracks from the watch page (falling back to the
// ANDROID innertube /player endpoint) and downloads the chosen timedtext track
type InnertubeSource struct {
	http    *common.HTTPClient
	baseURL string
	langs   []string
	logger  *slog.Logger
}

// NewInnertubeSource creates a new InnertubeSource preferring English tracks
func NewInnertubeSource(httpClient *common.HTTPClient) *InnertubeSource {
	return NewInnertubeSourceWithBaseURL(youtubeBase, httpClient)
}

// NewInnertubeSourceWithBaseURL creates a new InnertubeSource against a custom host (for testing)
func NewInnertubeSourceWithBaseURL(baseURL string, httpClient *common.HTTPClient) *InnertubeSource {
	return &InnertubeSource{
		http:    httpClient,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		langs:   []string{"en"},
		logger:  slog.Default(),
	}
}

type playerRequest struct {
	VideoID        string        `json:"videoId"`
	Context        playerContext `json:"context"`
	RacyCheckOk    bool          `json:"racyCheckOk"`
	ContentCheckOk bool          `json:"contentCheckOk"`
}

type playerContext struct {
	Client playerClient `json:"client"`
}

type playerClient struct {
	ClientName        string `json:"clientName"`
	ClientVersion     string `json:"clientVersion"`
	AndroidSdkVersion int    `json:"androidSdkVersion,omitempty"`
	Hl                string `json:"hl,omitempty"`
	Gl                string `json:"gl,omitempty"`
}

type playerResponse struct {
	Captions *struct {
		PlayerCaptionsTracklistRenderer struct {
			CaptionTracks []captionTrack `json:"captionTracks"`
		} `json:"playerCaptionsTracklistRenderer"`
	} `json:"captions"`
	PlayabilityStatus *struct {
		Status string `json:"status"`
		Reason string `json:"reason"`
	} `json:"playabilityStatus"`
}

type captionTrack struct {
	BaseURL      string `json:"baseUrl"`
	LanguageCode string `json:"languageCode"`
	Kind         string `json:"kind"` // "asr" = auto-generated
}

// FetchTranscript implements Source
func (s *InnertubeSource) FetchTranscript(ctx context.Context, videoID string) ([]model.TranscriptSegment, error) {
	tracks, err := s.tracksFromWatchPage(ctx, videoID)
	if err != nil || len(tracks) == 0 {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		s.logger.Debug("watch page had no caption tracks, trying player endpoint",
			slog.String("video_id", videoID), slog.Any("err", err))

		tracks, err = s.tracksFromPlayer(ctx, videoID)
		if err != nil {
			return nil, err
		}
	}
	if len(tracks) == 0 {
		return nil, ErrNoCaptions
	}

	track, ok := pickBestTrack(tracks, s.langs)
	if !ok {
		return nil, fmt.Errorf("all caption tracks require a PO token: %w", ErrNoCaptions)
	}

	body, err := s.http.Get(ctx, track.BaseURL, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch timedtext: %w", err)
	}
	return ParseTimedText(body)
}

// tracksFromWatchPage scrapes ytInitialPlayerResponse from the watch page HTML
func (s *InnertubeSource) tracksFromWatchPage(ctx context.Context, videoID string) ([]captionTrack, error) {
	header := http.Header{}
	header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	header.Set("Accept-Language", "en-US,en;q=0.9")
	header.Set("Cookie", "CONSENT=YES+1")

	body, err := s.http.Get(ctx, s.baseURL+"/watch?v="+videoID, header)
	if err != nil {
		return nil, fmt.Errorf("watch page: %w", err)
	}

	idx := bytes.Index(body, []byte(playerResponseMarker))
	if idx < 0 {
		return nil, stderrors.New("ytInitialPlayerResponse not found in watch page")
	}
	jsonData := extractJSON(body[idx+len(playerResponseMarker):])
	if jsonData == nil {
		return nil, stderrors.New("failed to extract ytInitialPlayerResponse JSON")
	}

	var resp playerResponse
	if err := json.Unmarshal(jsonData, &resp); err != nil {
		return nil, fmt.Errorf("decode ytInitialPlayerResponse: %w", err)
	}
	return resp.tracks()
}

// tracksFromPlayer asks the ANDROID innertube client for the caption track list
func (s *InnertubeSource) tracksFromPlayer(ctx context.Context, videoID string) ([]captionTrack, error) {
	reqBody, err := json.Marshal(playerRequest{
		VideoID: videoID,
		Context: playerContext{
			Client: playerClient{
				ClientName:        "ANDROID",
				ClientVersion:     androidVersion,
				AndroidSdkVersion: 30,
				Hl:                "en",
				Gl:                "US",
			},
		},
		RacyCheckOk:    true,
		ContentCheckOk: true,
	})
	if err != nil {
		return nil, err
	}

	header := http.Header{}
	header.Set("Content-Type", "application/json")
	header.Set("User-Agent", androidUserAgent)
	header.Set("X-Youtube-Client-Name", "3")
	header.Set("X-Youtube-Client-Version", androidVersion)

	body, err := s.http.Post(ctx, s.baseURL+"/youtubei/v1/player?prettyPrint=false", header, reqBody)
	if err != nil {
		return nil, fmt.Errorf("android player: %w", err)
	}

	var resp playerResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode player response: %w", err)
	}
	return resp.tracks()
}

func (r *playerResponse) tracks() ([]captionTrack, error) {
	if r.Captions == nil {
		if r.PlayabilityStatus != nil && r.PlayabilityStatus.Reason != "" {
			return nil, fmt.Errorf("%w: %s", ErrNoCaptions, r.PlayabilityStatus.Reason)
		}
		return nil, ErrNoCaptions
	}
	return r.Captions.PlayerCaptionsTracklistRenderer.CaptionTracks, nil
}

// needsPoToken reports whether a caption track URL requires a PO token (browser-only)
func needsPoToken(baseURL string) bool {
	return strings.Contains(baseURL, "&exp=xpe")
}

// pickBestTrack prefers a manual track in a preferred language, then an
// auto-generated one, then any English track, then the first usable track
func pickBestTrack(tracks []captionTrack, langs []string) (captionTrack, bool) {
	usable := make([]captionTrack, 0, len(tracks))
	for _, t := range tracks {
		if t.BaseURL != "" && !needsPoToken(t.BaseURL) {
			usable = append(usable, t)
		}
	}
	if len(usable) == 0 {
		return captionTrack{}, false
	}
	for _, lang := range langs {
		for _, t := range usable {
			if t.LanguageCode == lang && t.Kind != "asr" {
				return t, true
			}
		}
	}
	for _, lang := range langs {
		for _, t := range usable {
			if t.LanguageCode == lang {
				return t, true
			}
		}
	}
	for _, t := range usable {
		if strings.HasPrefix(t.LanguageCode, "en") {
			return t, true
		}
	}
	return usable[0], true
}

// extractJSON returns the JSON object starting at b[0] by tracking brace depth
// outside of string literals
func extractJSON(b []byte) []byte {
	if len(b) == 0 || b[0] != '{' {
		return nil
	}
	depth := 0
	inStr := false
	escaped := false
	for i, c := range b {
		if inStr {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inStr = false
			}
			continue
		}
		switch c {
		case '"':
			inStr = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return b[:i+1]
			}
		}
	}
	return nil
}
