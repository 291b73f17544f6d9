package report

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/Taichi-iskw/yt-trend/internal/errors"
)

// Summarizer turns a corpus into a single textual report
type Summarizer interface {
	Summarize(ctx context.Context, filePaths []string) (string, error)
}

// crewSummarizer runs analysis then synthesis, each as one chat exchange
type crewSummarizer struct {
	chat   ChatClient
	crew   *Crew
	logger *slog.Logger
}

// NewCrewSummarizer creates a two-stage Summarizer. A nil crew uses DefaultCrew.
func NewCrewSummarizer(chat ChatClient, crew *Crew) (Summarizer, error) {
	if crew == nil {
		crew = DefaultCrew()
	}
	if err := crew.Validate(); err != nil {
		return nil, errors.Wrap(err, errors.CodeInvalidArg, "invalid crew")
	}
	return &crewSummarizer{
		chat:   chat,
		crew:   crew,
		logger: slog.Default(),
	}, nil
}

func (s *crewSummarizer) Summarize(ctx context.Context, filePaths []string) (string, error) {
	if len(filePaths) == 0 {
		return "", errors.New(errors.CodeInvalidArg, "no corpus files to summarize")
	}

	corpusText, err := readCorpus(filePaths)
	if err != nil {
		return "", err
	}
	joined := strings.Join(filePaths, ", ")

	analysisTask := s.crew.Tasks[0].prompt(joined) + "\n\n" + corpusText
	s.logger.Info("running analysis stage", slog.Int("files", len(filePaths)))
	analysis, err := s.chat.Complete(ctx, s.crew.Agents[0].systemPrompt(), analysisTask)
	if err != nil {
		return "", fmt.Errorf("analysis stage: %w", err)
	}

	synthesisTask := s.crew.Tasks[1].prompt(joined) + "\n\nAnalysis:\n" + analysis
	s.logger.Info("running synthesis stage")
	report, err := s.chat.Complete(ctx, s.crew.Agents[1].systemPrompt(), synthesisTask)
	if err != nil {
		return "", fmt.Errorf("synthesis stage: %w", err)
	}
	return report, nil
}

// readCorpus concatenates corpus files under per-file headers
func readCorpus(filePaths []string) (string, error) {
	var sb strings.Builder
	for _, path := range filePaths {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", errors.Wrap(err, errors.CodeIO, "failed to read corpus file "+path)
		}
		if !utf8.Valid(data) {
			return "", errors.New(errors.CodeIO, "corpus file is not valid UTF-8: "+path)
		}
		fmt.Fprintf(&sb, "=== %s ===\n", filepath.Base(path))
		sb.Write(data)
		if len(data) > 0 && data[len(data)-1] != '\n' {
			sb.WriteString("\n")
		}
	}
	return sb.String(), nil
}

// SaveReport writes report to path, creating parent directories
func SaveReport(path, report string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errors.Wrap(err, errors.CodeIO, "failed to create report directory")
		}
	}
	if err := os.WriteFile(path, []byte(report), 0644); err != nil {
		return errors.Wrap(err, errors.CodeIO, "failed to write report "+path)
	}
	return nil
}
