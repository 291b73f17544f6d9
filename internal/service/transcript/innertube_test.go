package transcript

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Taichi-iskw/yt-trend/internal/model"
	"github.com/Taichi-iskw/yt-trend/internal/service/common"
)

const legacyTimedText = `<?xml version="1.0" encoding="utf-8" ?><transcript>
<text start="0.5" dur="2.25">hello &amp;amp; welcome</text>
<text start="2.75" dur="1.5">it&amp;#39;s a   test</text>
</transcript>`

func newTestSource(baseURL string) *InnertubeSource {
	return NewInnertubeSourceWithBaseURL(baseURL, common.NewHTTPClient(common.HTTPClientConfig{RateLimit: 1000, RateBurst: 100, MaxTries: 1}))
}

func watchPage(playerJSON string) string {
	return `<html><head><script>var ytInitialPlayerResponse = ` + playerJSON + `;var meta = {};</script></head></html>`
}

func TestInnertubeSource_FetchTranscript_WatchPage(t *testing.T) {
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/watch":
			assert.Equal(t, "vid00000001", r.URL.Query().Get("v"))
			player := fmt.Sprintf(`{"videoDetails": {"title": "brace } inside \"string\""}, "captions": {"playerCaptionsTracklistRenderer": {"captionTracks": [
				{"baseUrl": "%[1]s/api/timedtext?v=vid00000001&lang=de", "languageCode": "de"},
				{"baseUrl": "%[1]s/api/timedtext?v=vid00000001&lang=en&kind=asr", "languageCode": "en", "kind": "asr"},
				{"baseUrl": "%[1]s/api/timedtext?v=vid00000001&lang=en&exp=xpe", "languageCode": "en"}
			]}}}`, server.URL)
			_, _ = io.WriteString(w, watchPage(player))
		case "/api/timedtext":
			assert.Equal(t, "en", r.URL.Query().Get("lang"))
			assert.Equal(t, "asr", r.URL.Query().Get("kind"))
			_, _ = io.WriteString(w, legacyTimedText)
		default:
			t.Errorf("unexpected request %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	segments, err := newTestSource(server.URL).FetchTranscript(context.Background(), "vid00000001")

	require.NoError(t, err)
	assert.Equal(t, []model.TranscriptSegment{
		{StartTime: 0.5, EndTime: 2.75, Text: "hello & welcome"},
		{StartTime: 2.75, EndTime: 4.25, Text: "it's a test"},
	}, segments)
}

func TestInnertubeSource_FetchTranscript_PlayerFallback(t *testing.T) {
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/watch":
			_, _ = io.WriteString(w, "<html>consent wall</html>")
		case "/youtubei/v1/player":
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "3", r.Header.Get("X-Youtube-Client-Name"))
			assert.Contains(t, r.Header.Get("User-Agent"), "com.google.android.youtube/")

			var req playerRequest
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "vid00000001", req.VideoID)
			assert.Equal(t, "ANDROID", req.Context.Client.ClientName)

			_, _ = fmt.Fprintf(w, `{"captions": {"playerCaptionsTracklistRenderer": {"captionTracks": [
				{"baseUrl": "%s/api/timedtext?fmt=srv3", "languageCode": "en"}]}}}`, server.URL)
		case "/api/timedtext":
			_, _ = io.WriteString(w, `<timedtext format="3"><body>
<p t="1000" d="1500"><s>first</s><s> words</s></p>
<p t="3000" d="500">second</p>
</body></timedtext>`)
		}
	}))
	defer server.Close()

	segments, err := newTestSource(server.URL).FetchTranscript(context.Background(), "vid00000001")

	require.NoError(t, err)
	assert.Equal(t, []model.TranscriptSegment{
		{StartTime: 1, EndTime: 2.5, Text: "first words"},
		{StartTime: 3, EndTime: 3.5, Text: "second"},
	}, segments)
}

func TestInnertubeSource_FetchTranscript_NoCaptions(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/watch":
			_, _ = io.WriteString(w, watchPage(`{"playabilityStatus": {"status": "OK"}}`))
		case "/youtubei/v1/player":
			_, _ = io.WriteString(w, `{"playabilityStatus": {"status": "OK"}}`)
		}
	}))
	defer server.Close()

	_, err := newTestSource(server.URL).FetchTranscript(context.Background(), "vid00000001")

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoCaptions)
}

func TestPickBestTrack(t *testing.T) {
	manualEN := captionTrack{BaseURL: "u1", LanguageCode: "en"}
	autoEN := captionTrack{BaseURL: "u2", LanguageCode: "en", Kind: "asr"}
	britishEN := captionTrack{BaseURL: "u3", LanguageCode: "en-GB"}
	german := captionTrack{BaseURL: "u4", LanguageCode: "de"}
	poToken := captionTrack{BaseURL: "u5&exp=xpe", LanguageCode: "en"}

	tests := []struct {
		name   string
		tracks []captionTrack
		want   captionTrack
		wantOK bool
	}{
		{name: "manual beats auto", tracks: []captionTrack{autoEN, manualEN}, want: manualEN, wantOK: true},
		{name: "auto in preferred language", tracks: []captionTrack{german, autoEN}, want: autoEN, wantOK: true},
		{name: "any english variant", tracks: []captionTrack{german, britishEN}, want: britishEN, wantOK: true},
		{name: "first usable otherwise", tracks: []captionTrack{german}, want: german, wantOK: true},
		{name: "po token tracks skipped", tracks: []captionTrack{poToken, german}, want: german, wantOK: true},
		{name: "only po token tracks", tracks: []captionTrack{poToken}, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := pickBestTrack(tt.tracks, []string{"en"})
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "simple", in: `{"a":1};rest`, want: `{"a":1}`},
		{name: "nested", in: `{"a":{"b":[{}]}} trailing`, want: `{"a":{"b":[{}]}}`},
		{name: "brace in string", in: `{"a":"}{"}x`, want: `{"a":"}{"}`},
		{name: "escaped quote", in: `{"a":"say \"}\""}x`, want: `{"a":"say \"}\""}`},
		{name: "escaped backslash before quote", in: `{"a":"dir\\"}x`, want: `{"a":"dir\\"}`},
		{name: "unterminated", in: `{"a":1`, want: ""},
		{name: "not an object", in: `[1,2]`, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, string(extractJSON([]byte(tt.in))))
		})
	}
}
