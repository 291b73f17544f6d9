package ingest

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Taichi-iskw/yt-trend/internal/config"
	"github.com/Taichi-iskw/yt-trend/internal/errors"
	"github.com/Taichi-iskw/yt-trend/internal/model"
	ingestSvc "github.com/Taichi-iskw/yt-trend/internal/service/ingest"
)

// mockIngestService is a mock implementation of ingest.Service for testing
type mockIngestService struct {
	mock.Mock
}

func (m *mockIngestService) Run(ctx context.Context, opts ingestSvc.Options) (*ingestSvc.Result, error) {
	args := m.Called(ctx, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ingestSvc.Result), args.Error(1)
}

// mockSummarizer is a mock implementation of report.Summarizer for testing
type mockSummarizer struct {
	mock.Mock
}

func (m *mockSummarizer) Summarize(ctx context.Context, filePaths []string) (string, error) {
	args := m.Called(ctx, filePaths)
	return args.String(0), args.Error(1)
}

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.YouTubeAPIKey = "test-key"
	return cfg
}

func sampleResult() *ingestSvc.Result {
	return &ingestSvc.Result{
		RunID: "run-1",
		Videos: []*model.Video{
			{ID: "v1", Title: "First", URL: "https://www.youtube.com/watch?v=v1", PublishedAt: time.Date(2024, 5, 9, 0, 0, 0, 0, time.UTC)},
		},
		Artifacts: []model.CorpusArtifact{{VideoID: "v1", Path: "transcripts/v1.txt"}},
		Warnings:  []model.Warning{{ChannelRef: "bad-channel", Message: "RESOLUTION_ERROR: not found"}},
	}
}

func execute(t *testing.T, deps *Dependencies, args ...string) (string, error) {
	t.Helper()
	cmd := NewIngestCommand(deps)
	var output bytes.Buffer
	cmd.SetOut(&output)
	cmd.SetErr(&output)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return output.String(), err
}

func TestIngestCommand(t *testing.T) {
	tests := []struct {
		name           string
		args           []string
		setupMock      func(*mockIngestService)
		expectedOutput []string
		wantErr        bool
		wantCode       string
	}{
		{
			name: "successful run",
			args: []string{"bad-channel", "--channel", "@good", "--start", "2024-05-01", "--end", "2024-05-10"},
			setupMock: func(m *mockIngestService) {
				m.On("Run", mock.Anything, mock.MatchedBy(func(opts ingestSvc.Options) bool {
					return assert.ObjectsAreEqual([]string{"bad-channel", "@good"}, opts.Channels) &&
						opts.StartDate == "2024-05-01" && opts.EndDate == "2024-05-10" &&
						opts.VideosPerChannel == 3 && opts.GetTranscripts &&
						opts.TranscriptTimeout == 8*time.Second && opts.APIKey == "test-key"
				})).Return(sampleResult(), nil)
			},
			expectedOutput: []string{"Found 1 videos.", "https://www.youtube.com/watch?v=v1", "bad-channel: RESOLUTION_ERROR", "transcripts/v1.txt"},
		},
		{
			name: "quick mode and overrides",
			args: []string{"@good", "--quick", "-n", "5", "--timeout", "2.5", "--start", "2024-05-01", "--end", "2024-05-10"},
			setupMock: func(m *mockIngestService) {
				m.On("Run", mock.Anything, mock.MatchedBy(func(opts ingestSvc.Options) bool {
					return !opts.GetTranscripts && opts.VideosPerChannel == 5 && opts.TranscriptTimeout == 2500*time.Millisecond
				})).Return(sampleResult(), nil)
			},
			expectedOutput: []string{"Found 1 videos."},
		},
		{
			name: "no videos",
			args: []string{"@good", "--start", "2024-05-01", "--end", "2024-05-10"},
			setupMock: func(m *mockIngestService) {
				m.On("Run", mock.Anything, mock.Anything).Return(nil, errors.New(errors.CodeEmptyResult, "no videos found"))
			},
			expectedOutput: []string{"No videos found."},
			wantErr:        true,
			wantCode:       errors.CodeEmptyResult,
		},
		{
			name:      "no channels fails before running",
			args:      []string{"--start", "2024-05-01", "--end", "2024-05-10"},
			setupMock: func(m *mockIngestService) {},
			wantErr:   true,
			wantCode:  errors.CodeInvalidArg,
		},
		{
			name:      "start after end",
			args:      []string{"@good", "--start", "2024-05-11", "--end", "2024-05-10"},
			setupMock: func(m *mockIngestService) {},
			wantErr:   true,
			wantCode:  errors.CodeInvalidArg,
		},
		{
			name:      "unknown format",
			args:      []string{"@good", "--format", "xml"},
			setupMock: func(m *mockIngestService) {},
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := new(mockIngestService)
			tt.setupMock(service)

			output, err := execute(t, &Dependencies{Config: testConfig(), Service: service}, tt.args...)

			if tt.wantErr {
				require.Error(t, err)
				if tt.wantCode != "" {
					assert.True(t, errors.HasCode(err, tt.wantCode), "got %v", err)
				}
			} else {
				require.NoError(t, err)
			}
			for _, want := range tt.expectedOutput {
				assert.Contains(t, output, want)
			}
			service.AssertExpectations(t)
		})
	}
}

func TestIngestCommand_MissingAPIKey(t *testing.T) {
	service := new(mockIngestService)
	cfg := testConfig()
	cfg.YouTubeAPIKey = ""

	_, err := execute(t, &Dependencies{Config: cfg, Service: service}, "@good")

	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CodeInvalidArg))
	service.AssertNotCalled(t, "Run", mock.Anything, mock.Anything)
}

func TestIngestCommand_DryRun(t *testing.T) {
	service := new(mockIngestService)

	output, err := execute(t, &Dependencies{Config: testConfig(), Service: service},
		"@a", "@b", "--start", "2024-05-01", "--end", "2024-05-10", "--dry-run")

	require.NoError(t, err)
	assert.Contains(t, output, "DRY RUN")
	assert.Contains(t, output, "Window: 2024-05-01..2024-05-10")
	assert.Contains(t, output, "at most 6 videos")
	assert.Contains(t, output, "worst case 48s")
	service.AssertNotCalled(t, "Run", mock.Anything, mock.Anything)
}

func TestIngestCommand_Report(t *testing.T) {
	service := new(mockIngestService)
	summarizer := new(mockSummarizer)
	reportPath := filepath.Join(t.TempDir(), "analysis.md")

	service.On("Run", mock.Anything, mock.Anything).Return(sampleResult(), nil)
	summarizer.On("Summarize", mock.Anything, []string{"transcripts/v1.txt"}).Return("# Trends\n", nil)

	output, err := execute(t, &Dependencies{Config: testConfig(), Service: service, Summarizer: summarizer},
		"@good", "--start", "2024-05-01", "--end", "2024-05-10", "--report", "--report-out", reportPath)

	require.NoError(t, err)
	assert.Contains(t, output, "# Trends")
	assert.Contains(t, output, "Report saved to "+reportPath)

	data, err := os.ReadFile(reportPath)
	require.NoError(t, err)
	assert.Equal(t, "# Trends\n", string(data))
	summarizer.AssertExpectations(t)
}

func TestOptionsFromFlags_DefaultWindow(t *testing.T) {
	cmd := NewIngestCommand(nil)
	require.NoError(t, cmd.ParseFlags([]string{"--channel", "@a"}))
	now := time.Date(2024, 5, 10, 23, 0, 0, 0, time.UTC)

	opts, err := optionsFromFlags(cmd, nil, testConfig(), now)

	require.NoError(t, err)
	assert.Equal(t, "2024-05-03", opts.StartDate)
	assert.Equal(t, "2024-05-10", opts.EndDate)
	assert.Equal(t, []string{"@a"}, opts.Channels)
}
