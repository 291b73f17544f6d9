package youtube

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/Taichi-iskw/yt-trend/internal/errors"
)

// refKind identifies which form of channel reference the user supplied
type refKind int

const (
	refChannelID refKind = iota
	refHandle
	refUsername
	refCustom
)

func (k refKind) String() string {
	switch k {
	case refChannelID:
		return "channel_id"
	case refHandle:
		return "handle"
	case refUsername:
		return "username"
	default:
		return "custom_url"
	}
}

var (
	channelIDRE = regexp.MustCompile(`^UC[0-9A-Za-z_-]{22}$`)
	handleRE    = regexp.MustCompile(`^@[0-9A-Za-z._\-\p{L}]{3,30}$`)
	nameRE      = regexp.MustCompile(`^[0-9A-Za-z._\-\p{L}]+$`)
)

// channelRef is a parsed channel reference
type channelRef struct {
	kind  refKind
	value string // channel ID, "@handle", username or custom name
	raw   string
}

// pageURL returns the public channel page for the reference
func (r channelRef) pageURL(base string) string {
	switch r.kind {
	case refChannelID:
		return base + "/channel/" + r.value
	case refHandle:
		return base + "/" + r.value
	case refUsername:
		return base + "/user/" + r.value
	default:
		return base + "/c/" + r.value
	}
}

// ChannelURL returns the canonical URL of a channel ID
func ChannelURL(channelID string) string {
	return "https://www.youtube.com/channel/" + channelID
}

// VideoURL returns the playable URL of a video ID
func VideoURL(videoID string) string {
	return "https://www.youtube.com/watch?v=" + videoID
}

// IsChannelID reports whether s looks like a canonical channel ID
func IsChannelID(s string) bool {
	return channelIDRE.MatchString(s)
}

// parseChannelRef accepts channel URLs (/channel/UC…, /@handle, /user/name, /c/name, /name),
// bare @handles and bare UC… channel IDs
func parseChannelRef(ref string) (channelRef, error) {
	raw := ref
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return channelRef{}, errors.New(errors.CodeInvalidArg, "channel reference is empty")
	}

	if channelIDRE.MatchString(ref) {
		return channelRef{kind: refChannelID, value: ref, raw: raw}, nil
	}
	if strings.HasPrefix(ref, "@") {
		if !handleRE.MatchString(ref) {
			return channelRef{}, errors.New(errors.CodeInvalidArg, "invalid channel handle: "+ref)
		}
		return channelRef{kind: refHandle, value: ref, raw: raw}, nil
	}

	lower := strings.ToLower(ref)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		if !strings.Contains(lower, "youtube.com/") {
			return channelRef{}, errors.New(errors.CodeInvalidArg, "unrecognized channel reference: "+ref)
		}
		ref = "https://" + ref
	}

	u, err := url.Parse(ref)
	if err != nil {
		return channelRef{}, errors.Wrap(err, errors.CodeInvalidArg, "invalid channel URL: "+ref)
	}
	host := strings.ToLower(u.Hostname())
	if host != "youtube.com" && !strings.HasSuffix(host, ".youtube.com") {
		return channelRef{}, errors.New(errors.CodeInvalidArg, "not a YouTube URL: "+ref)
	}

	segments := strings.FieldsFunc(u.Path, func(r rune) bool { return r == '/' })
	if len(segments) == 0 {
		return channelRef{}, errors.New(errors.CodeInvalidArg, "channel URL has no path: "+ref)
	}

	first := segments[0]
	switch {
	case strings.HasPrefix(first, "@"):
		if !handleRE.MatchString(first) {
			return channelRef{}, errors.New(errors.CodeInvalidArg, "invalid channel handle: "+first)
		}
		return channelRef{kind: refHandle, value: first, raw: raw}, nil
	case first == "channel" && len(segments) > 1:
		if !channelIDRE.MatchString(segments[1]) {
			return channelRef{}, errors.New(errors.CodeInvalidArg, "invalid channel ID: "+segments[1])
		}
		return channelRef{kind: refChannelID, value: segments[1], raw: raw}, nil
	case first == "user" && len(segments) > 1 && nameRE.MatchString(segments[1]):
		return channelRef{kind: refUsername, value: segments[1], raw: raw}, nil
	case first == "c" && len(segments) > 1 && nameRE.MatchString(segments[1]):
		return channelRef{kind: refCustom, value: segments[1], raw: raw}, nil
	case len(segments) == 1 && !reservedPaths[first] && nameRE.MatchString(first):
		// legacy youtube.com/<name> vanity URL
		return channelRef{kind: refCustom, value: first, raw: raw}, nil
	}

	return channelRef{}, errors.New(errors.CodeInvalidArg, "unrecognized channel URL: "+ref)
}

// reservedPaths are top-level YouTube paths that are never channels
var reservedPaths = map[string]bool{
	"watch":    true,
	"results":  true,
	"playlist": true,
	"shorts":   true,
	"feed":     true,
	"embed":    true,
	"live":     true,
}
