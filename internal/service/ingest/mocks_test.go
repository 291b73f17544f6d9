package ingest

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/Taichi-iskw/yt-trend/internal/model"
	"github.com/Taichi-iskw/yt-trend/internal/service/transcript"
)

// mockYouTubeService is a mock implementation of youtube.YouTubeService for testing
type mockYouTubeService struct {
	mock.Mock
}

func (m *mockYouTubeService) ResolveChannel(ctx context.Context, ref string) (*model.Channel, error) {
	args := m.Called(ctx, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Channel), args.Error(1)
}

func (m *mockYouTubeService) FetchChannelVideos(ctx context.Context, channel *model.Channel, window model.DateWindow, limit int) ([]*model.Video, error) {
	args := m.Called(ctx, channel, window, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Video), args.Error(1)
}

// mockResolver is a mock implementation of youtube.Resolver for testing
type mockResolver struct {
	mock.Mock
}

func (m *mockResolver) ResolveChannel(ctx context.Context, ref string) (*model.Channel, error) {
	args := m.Called(ctx, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Channel), args.Error(1)
}

// mockLister is a mock implementation of youtube.Lister for testing
type mockLister struct {
	mock.Mock
}

func (m *mockLister) ListUploads(ctx context.Context, channel *model.Channel, since time.Time) ([]*model.Video, error) {
	args := m.Called(ctx, channel, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Video), args.Error(1)
}

// mockFetcher is a mock implementation of transcript.Fetcher for testing
type mockFetcher struct {
	mock.Mock
}

func (m *mockFetcher) Fetch(ctx context.Context, videoID string, enabled bool, timeout time.Duration) transcript.Result {
	args := m.Called(ctx, videoID, enabled, timeout)
	return args.Get(0).(transcript.Result)
}

// mockCatalog is a mock implementation of Catalog for testing
type mockCatalog struct {
	mock.Mock
}

func (m *mockCatalog) SaveRun(ctx context.Context, channels []*model.Channel, videos []*model.Video) error {
	args := m.Called(ctx, channels, videos)
	return args.Error(0)
}

// mockWriter is a mock implementation of corpus.Writer for testing
type mockWriter struct {
	mock.Mock
}

func (m *mockWriter) Write(video *model.Video) (model.CorpusArtifact, error) {
	args := m.Called(video)
	return args.Get(0).(model.CorpusArtifact), args.Error(1)
}

func (m *mockWriter) WriteAll(videos []*model.Video) ([]model.CorpusArtifact, error) {
	args := m.Called(videos)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.CorpusArtifact), args.Error(1)
}
