package ingest

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/Taichi-iskw/yt-trend/internal/model"
	ingestSvc "github.com/Taichi-iskw/yt-trend/internal/service/ingest"
	"github.com/Taichi-iskw/yt-trend/internal/service/transcript"
)

// gridColumns is the number of video URLs printed per row
const gridColumns = 3

// Formatter defines interface for output formatting
type Formatter interface {
	Format(result *ingestSvc.Result) (string, error)
}

// TextFormatter formats output as plain text
type TextFormatter struct{}

// Format formats an ingestion result as plain text
func (f *TextFormatter) Format(result *ingestSvc.Result) (string, error) {
	var output strings.Builder

	output.WriteString(fmt.Sprintf("Found %d videos.\n", result.VideoCount()))
	output.WriteString(fmt.Sprintf("Run ID: %s\n", result.RunID))
	if len(result.Transcripts) > 0 {
		output.WriteString(fmt.Sprintf("Transcripts: %s\n", summarizeReasons(result.Transcripts)))
	}
	output.WriteString("\n")
	output.WriteString(FormatVideoGrid(result.Videos, gridColumns))

	if len(result.Warnings) > 0 {
		output.WriteString("\nWarnings:\n")
		for _, w := range result.Warnings {
			if w.Stage != "" {
				output.WriteString(fmt.Sprintf("  - %s (%s): %s\n", w.ChannelRef, w.Stage, w.Message))
				continue
			}
			output.WriteString(fmt.Sprintf("  - %s: %s\n", w.ChannelRef, w.Message))
		}
	}

	output.WriteString("\nFiles:\n")
	for _, path := range result.FilePaths() {
		output.WriteString("  ")
		output.WriteString(path)
		output.WriteString("\n")
	}

	return output.String(), nil
}

// JSONFormatter formats output as JSON
type JSONFormatter struct{}

// Format formats an ingestion result as JSON
func (f *JSONFormatter) Format(result *ingestSvc.Result) (string, error) {
	type Output struct {
		RunID       string                    `json:"run_id"`
		VideoCount  int                       `json:"video_count"`
		FilePaths   []string                  `json:"file_paths"`
		Warnings    []model.Warning           `json:"warnings"`
		Transcripts map[transcript.Reason]int `json:"transcripts,omitempty"`
		Videos      []*model.Video            `json:"videos"`
	}

	warnings := result.Warnings
	if warnings == nil {
		warnings = []model.Warning{}
	}
	output := Output{
		RunID:       result.RunID,
		VideoCount:  result.VideoCount(),
		FilePaths:   result.FilePaths(),
		Warnings:    warnings,
		Transcripts: renameNone(result.Transcripts),
		Videos:      result.Videos,
	}

	jsonBytes, err := json.MarshalIndent(output, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON: %w", err)
	}

	return string(jsonBytes), nil
}

// GetFormatter returns the appropriate formatter based on format string
func GetFormatter(format string) (Formatter, error) {
	switch strings.ToLower(format) {
	case "text", "txt":
		return &TextFormatter{}, nil
	case "json":
		return &JSONFormatter{}, nil
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

// FormatVideoGrid lays out video URLs in rows of columns, each followed by its title
func FormatVideoGrid(videos []*model.Video, columns int) string {
	if len(videos) == 0 {
		return "No videos found.\n"
	}
	if columns <= 0 {
		columns = 1
	}

	var output strings.Builder
	for i := 0; i < len(videos); i += columns {
		end := min(i+columns, len(videos))
		cells := make([]string, 0, end-i)
		for _, v := range videos[i:end] {
			cells = append(cells, v.URL)
		}
		output.WriteString(strings.Join(cells, "  "))
		output.WriteString("\n")
		for _, v := range videos[i:end] {
			output.WriteString(fmt.Sprintf("  %s  %s\n", v.PublishedAt.UTC().Format("2006-01-02"), v.Title))
		}
	}
	return output.String()
}

// renameNone keys successful fetches as "ok" for output
func renameNone(reasons map[transcript.Reason]int) map[transcript.Reason]int {
	if len(reasons) == 0 {
		return nil
	}
	out := make(map[transcript.Reason]int, len(reasons))
	for reason, n := range reasons {
		if reason == transcript.ReasonNone {
			reason = "ok"
		}
		out[reason] = n
	}
	return out
}

// summarizeReasons renders outcome counts as "ok=2 timeout=1" in a stable order
func summarizeReasons(reasons map[transcript.Reason]int) string {
	renamed := renameNone(reasons)
	keys := make([]string, 0, len(renamed))
	for reason := range renamed {
		keys = append(keys, string(reason))
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%d", k, renamed[transcript.Reason(k)]))
	}
	return strings.Join(parts, " ")
}
