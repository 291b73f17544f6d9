package ingest

import (
	"fmt"
	"strings"
	"time"

	"github.com/Taichi-iskw/yt-trend/internal/model"
	ingestSvc "github.com/Taichi-iskw/yt-trend/internal/service/ingest"
)

// DryRunResult describes what a run would do
type DryRunResult struct {
	Channels          []string
	Window            model.DateWindow
	VideosPerChannel  int
	GetTranscripts    bool
	TranscriptTimeout time.Duration
	// MaxVideos is channels x videos per channel
	MaxVideos int
	// WorstCaseTranscriptWait bounds the time spent waiting on transcripts
	WorstCaseTranscriptWait time.Duration
}

// PlanRun validates opts and computes the run's upper bounds without network calls
func PlanRun(opts ingestSvc.Options) (*DryRunResult, error) {
	plan, err := opts.Plan()
	if err != nil {
		return nil, err
	}

	result := &DryRunResult{
		Channels:          plan.Channels,
		Window:            plan.Window,
		VideosPerChannel:  opts.VideosPerChannel,
		GetTranscripts:    opts.GetTranscripts,
		TranscriptTimeout: opts.TranscriptTimeout,
		MaxVideos:         len(plan.Channels) * opts.VideosPerChannel,
	}
	if opts.GetTranscripts {
		result.WorstCaseTranscriptWait = time.Duration(result.MaxVideos) * opts.TranscriptTimeout
	}
	return result, nil
}

// String renders the plan for the terminal
func (r *DryRunResult) String() string {
	var output strings.Builder
	output.WriteString("DRY RUN - no requests will be made\n")
	output.WriteString(fmt.Sprintf("Window: %s\n", r.Window))
	output.WriteString(fmt.Sprintf("Channels (%d):\n", len(r.Channels)))
	for _, ch := range r.Channels {
		output.WriteString(fmt.Sprintf("  - %s\n", ch))
	}
	output.WriteString(fmt.Sprintf("Videos per channel: %d (at most %d videos)\n", r.VideosPerChannel, r.MaxVideos))
	if r.GetTranscripts {
		output.WriteString(fmt.Sprintf("Transcripts: on, %s per video (worst case %s)\n", r.TranscriptTimeout, r.WorstCaseTranscriptWait))
	} else {
		output.WriteString("Transcripts: off (quick mode)\n")
	}
	return output.String()
}
