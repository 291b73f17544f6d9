package model

import "time"

// Channel represents YouTube channel information
type Channel struct {
	ID                string `json:"id" db:"id"`
	Name              string `json:"name" db:"name"`
	URL               string `json:"url" db:"url"`
	UploadsPlaylistID string `json:"uploads_playlist_id,omitempty" db:"uploads_playlist_id"`
}

// Video represents a YouTube video selected for ingestion.
// Transcript is empty when captions were disabled, missing or timed out.
type Video struct {
	ID          string              `json:"id" db:"id"`
	ChannelID   string              `json:"channel_id" db:"channel_id"`
	Title       string              `json:"title" db:"title"`
	Description string              `json:"description" db:"description"`
	URL         string              `json:"url" db:"url"`
	PublishedAt time.Time           `json:"published_at" db:"published_at"`
	Transcript  []TranscriptSegment `json:"formatted_transcript,omitempty" db:"-"`
}

// HasTranscript reports whether the video carries at least one transcript segment
func (v *Video) HasTranscript() bool {
	return len(v.Transcript) > 0
}

// TranscriptSegment represents one timed caption unit
type TranscriptSegment struct {
	StartTime float64 `json:"start_time"` // Start time in seconds
	EndTime   float64 `json:"end_time"`   // End time in seconds
	Text      string  `json:"text"`
}

// Warning stages
const (
	StageResolve = "resolve"
	StageSelect  = "select"
	StageVideo   = "video"
)

// Warning records a per-channel or per-video failure that did not abort the run
type Warning struct {
	ChannelRef string `json:"channel_ref"`
	Stage      string `json:"stage,omitempty"`
	Message    string `json:"message"`
}

// CorpusArtifact is the on-disk text file written for one video
type CorpusArtifact struct {
	VideoID string `json:"video_id"`
	Path    string `json:"path"`
}

// DateWindow is a closed interval of UTC calendar days
type DateWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// dateLayout is the ISO calendar date layout accepted for window bounds
const dateLayout = "2006-01-02"

// NewDateWindow parses ISO dates (YYYY-MM-DD) into a window.
// It does not validate ordering; callers decide how to report start > end.
func NewDateWindow(start, end string) (DateWindow, error) {
	s, err := time.Parse(dateLayout, start)
	if err != nil {
		return DateWindow{}, err
	}
	e, err := time.Parse(dateLayout, end)
	if err != nil {
		return DateWindow{}, err
	}
	return DateWindow{Start: s, End: e}, nil
}

// Contains reports whether t falls on a day inside the window (bounds inclusive)
func (w DateWindow) Contains(t time.Time) bool {
	day := TruncateToDay(t)
	return !day.Before(w.Start) && !day.After(w.End)
}

// TruncateToDay returns midnight UTC of t's UTC calendar day
func TruncateToDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// String formats the window as "start..end"
func (w DateWindow) String() string {
	return w.Start.Format(dateLayout) + ".." + w.End.Format(dateLayout)
}
