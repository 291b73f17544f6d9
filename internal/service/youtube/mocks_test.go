package youtube

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/Taichi-iskw/yt-trend/internal/model"
)

// mockCmdRunner is a mock implementation of CmdRunner for testing
type mockCmdRunner struct {
	mock.Mock
}

func (m *mockCmdRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	arguments := m.Called(ctx, name, args)
	return arguments.Get(0).([]byte), arguments.Error(1)
}

// mockResolver is a mock implementation of Resolver for testing
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

// mockLister is a mock implementation of Lister for testing
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

// day returns midnight UTC of the given date
func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}
