package ingest

import (
	"fmt"
	"strings"
	"time"

	"github.com/Taichi-iskw/yt-trend/internal/errors"
	"github.com/Taichi-iskw/yt-trend/internal/model"
)

const (
	DefaultVideosPerChannel  = 3
	DefaultTranscriptTimeout = 8 * time.Second
)

// Options is the immutable input of one ingestion run
type Options struct {
	Channels          []string
	StartDate         string // YYYY-MM-DD, inclusive
	EndDate           string // YYYY-MM-DD, inclusive
	VideosPerChannel  int
	GetTranscripts    bool
	TranscriptTimeout time.Duration
	// APIKey is the credential for the listing provider
	APIKey string
}

// DefaultOptions returns options with the documented defaults and an empty channel list
func DefaultOptions() Options {
	return Options{
		VideosPerChannel:  DefaultVideosPerChannel,
		GetTranscripts:    true,
		TranscriptTimeout: DefaultTranscriptTimeout,
	}
}

// Plan is what validation derives from Options: trimmed channel refs in
// input order and the parsed date window
type Plan struct {
	Channels []string
	Window   model.DateWindow
}

// Validate checks the options without touching the network
func (o Options) Validate() error {
	_, err := o.Plan()
	return err
}

// Plan validates the options and returns the normalized run inputs
func (o Options) Plan() (Plan, error) {
	channels := make([]string, 0, len(o.Channels))
	for _, ref := range o.Channels {
		if ref = strings.TrimSpace(ref); ref != "" {
			channels = append(channels, ref)
		}
	}
	if len(channels) == 0 {
		return Plan{}, errors.New(errors.CodeInvalidArg, "at least one channel is required")
	}
	if strings.TrimSpace(o.APIKey) == "" {
		return Plan{}, errors.New(errors.CodeInvalidArg, "YOUTUBE_API_KEY is not set")
	}

	window, err := model.NewDateWindow(strings.TrimSpace(o.StartDate), strings.TrimSpace(o.EndDate))
	if err != nil {
		return Plan{}, errors.Wrap(err, errors.CodeInvalidArg, "dates must be formatted as YYYY-MM-DD")
	}
	if window.Start.After(window.End) {
		return Plan{}, errors.New(errors.CodeInvalidArg,
			fmt.Sprintf("start date %s is after end date %s", o.StartDate, o.EndDate))
	}

	if o.VideosPerChannel <= 0 {
		return Plan{}, errors.New(errors.CodeInvalidArg,
			fmt.Sprintf("videos per channel must be positive, got %d", o.VideosPerChannel))
	}
	if o.GetTranscripts && o.TranscriptTimeout <= 0 {
		return Plan{}, errors.New(errors.CodeInvalidArg,
			fmt.Sprintf("transcript timeout must be positive, got %s", o.TranscriptTimeout))
	}

	return Plan{Channels: channels, Window: window}, nil
}
