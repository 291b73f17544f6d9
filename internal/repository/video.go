package repository

import (
	"context"

	"github.com/Taichi-iskw/yt-trend/internal/model"
)

// VideoRepository defines operations for Video persistence.
// Transcripts are not stored; the corpus files hold them.
type VideoRepository interface {
	// UpsertBatch inserts or refreshes videos in a single transaction
	UpsertBatch(ctx context.Context, videos []*model.Video) error

	// GetByID retrieves a video by its ID
	GetByID(ctx context.Context, id string) (*model.Video, error)

	// GetByChannelID retrieves a channel's videos, newest first, with pagination
	GetByChannelID(ctx context.Context, channelID string, limit, offset int) ([]*model.Video, error)
}
