package corpus

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/Taichi-iskw/yt-trend/internal/errors"
	"github.com/Taichi-iskw/yt-trend/internal/model"
)

// DefaultDir is the relative directory artifacts are written to
const DefaultDir = "transcripts"

// Writer serializes videos into per-video text artifacts
type Writer interface {
	// Write writes one artifact and returns its path
	Write(video *model.Video) (model.CorpusArtifact, error)
	// WriteAll writes every video in order; any failure aborts and no artifacts are returned
	WriteAll(videos []*model.Video) ([]model.CorpusArtifact, error)
}

// writer implements Writer
type writer struct {
	dir    string
	logger *slog.Logger
}

// NewWriter creates a new Writer rooted at dir
func NewWriter(dir string) Writer {
	if dir == "" {
		dir = DefaultDir
	}
	return &writer{
		dir:    dir,
		logger: slog.Default(),
	}
}

// Render returns the artifact content for a video.
// Transcript lines are "(start-end): text"; without a transcript the
// content falls back to the title and description.
func Render(video *model.Video) string {
	var sb strings.Builder
	if video.HasTranscript() {
		for _, seg := range video.Transcript {
			fmt.Fprintf(&sb, "(%.2f-%.2f): %s\n", seg.StartTime, seg.EndTime, seg.Text)
		}
		return sb.String()
	}
	sb.WriteString("Title: ")
	sb.WriteString(video.Title)
	sb.WriteString("\nDesc: ")
	sb.WriteString(video.Description)
	sb.WriteString("\n")
	return sb.String()
}

// ArtifactPath returns the path of the artifact for videoID under dir
func ArtifactPath(dir, videoID string) string {
	return filepath.Join(dir, videoID+".txt")
}

func (w *writer) Write(video *model.Video) (model.CorpusArtifact, error) {
	if video == nil {
		return model.CorpusArtifact{}, errors.New(errors.CodeInvalidArg, "video is nil")
	}
	if err := ValidateVideoID(video.ID); err != nil {
		return model.CorpusArtifact{}, err
	}

	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return model.CorpusArtifact{}, errors.Wrap(err, errors.CodeIO, "failed to create corpus directory "+w.dir)
	}

	path := ArtifactPath(w.dir, video.ID)
	if err := writeFileAtomic(w.dir, path, []byte(Render(video))); err != nil {
		return model.CorpusArtifact{}, errors.Wrap(err, errors.CodeIO, "failed to write artifact "+path)
	}

	w.logger.Debug("wrote corpus artifact",
		slog.String("video_id", video.ID),
		slog.String("path", path),
		slog.Bool("transcript", video.HasTranscript()))

	return model.CorpusArtifact{VideoID: video.ID, Path: path}, nil
}

func (w *writer) WriteAll(videos []*model.Video) ([]model.CorpusArtifact, error) {
	artifacts := make([]model.CorpusArtifact, 0, len(videos))
	for _, video := range videos {
		artifact, err := w.Write(video)
		if err != nil {
			return nil, err
		}
		artifacts = append(artifacts, artifact)
	}
	return artifacts, nil
}

// ValidateVideoID rejects ids that would escape the corpus directory
func ValidateVideoID(id string) error {
	if id == "" {
		return errors.New(errors.CodeInvalidArg, "video id is empty")
	}
	if id == "." || id == ".." || strings.ContainsAny(id, `/\`) || strings.ContainsRune(id, 0) {
		return errors.New(errors.CodeInvalidArg, fmt.Sprintf("invalid video id %q", id))
	}
	return nil
}

// writeFileAtomic writes data to a temp file in dir and renames it over path
func writeFileAtomic(dir, path string, data []byte) error {
	tmp, err := os.CreateTemp(dir, ".artifact-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		// no-op once the rename succeeded
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
