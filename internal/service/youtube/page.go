package youtube

import (
	"bytes"
	"context"
	stderrors "errors"
	"net/http"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/Taichi-iskw/yt-trend/internal/errors"
	"github.com/Taichi-iskw/yt-trend/internal/model"
	"github.com/Taichi-iskw/yt-trend/internal/service/common"
)

const youtubeBase = "https://www.youtube.com"

var canonicalChannelRE = regexp.MustCompile(`/channel/(UC[0-9A-Za-z_-]{22})`)

// PageResolver resolves channel references by reading the public channel page
// metadata. It needs no API key and covers /c/ and vanity URLs.
type PageResolver struct {
	http    *common.HTTPClient
	baseURL string
}

// NewPageResolver creates a new PageResolver
func NewPageResolver(httpClient *common.HTTPClient) *PageResolver {
	return NewPageResolverWithBaseURL(youtubeBase, httpClient)
}

// NewPageResolverWithBaseURL creates a new PageResolver against a custom host (for testing)
func NewPageResolverWithBaseURL(baseURL string, httpClient *common.HTTPClient) *PageResolver {
	return &PageResolver{
		http:    httpClient,
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}
}

// ResolveChannel fetches the channel page and extracts its canonical channel ID
func (r *PageResolver) ResolveChannel(ctx context.Context, ref string) (*model.Channel, error) {
	parsed, err := parseChannelRef(ref)
	if err != nil {
		return nil, err
	}

	header := http.Header{}
	header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	header.Set("Accept-Language", "en-US,en;q=0.9")
	// skips the EU consent interstitial
	header.Set("Cookie", "CONSENT=YES+1")

	body, err := r.http.Get(ctx, parsed.pageURL(r.baseURL), header)
	if err != nil {
		var statusErr *common.StatusError
		if stderrors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound {
			return nil, errors.Wrap(err, errors.CodeNotFound, "channel page not found: "+ref)
		}
		return nil, errors.Wrap(err, errors.CodeExternal, "failed to fetch channel page")
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeExternal, "failed to parse channel page")
	}

	channelID := channelIDFromDocument(doc)
	if channelID == "" {
		return nil, errors.New(errors.CodeNotFound, "no channel ID found on page for "+ref)
	}

	name, _ := doc.Find(`meta[property="og:title"]`).Attr("content")
	if name == "" {
		name, _ = doc.Find(`meta[itemprop="name"]`).Attr("content")
	}

	return &model.Channel{
		ID:                channelID,
		Name:              strings.TrimSpace(name),
		URL:               ChannelURL(channelID),
		UploadsPlaylistID: UploadsPlaylistID(channelID),
	}, nil
}

func channelIDFromDocument(doc *goquery.Document) string {
	for _, selector := range []string{`meta[itemprop="identifier"]`, `meta[itemprop="channelId"]`} {
		if id, ok := doc.Find(selector).Attr("content"); ok && IsChannelID(id) {
			return id
		}
	}

	canonical, _ := doc.Find(`link[rel="canonical"]`).Attr("href")
	ogURL, _ := doc.Find(`meta[property="og:url"]`).Attr("content")
	for _, value := range []string{canonical, ogURL} {
		if m := canonicalChannelRE.FindStringSubmatch(value); len(m) == 2 {
			return m[1]
		}
	}
	return ""
}
