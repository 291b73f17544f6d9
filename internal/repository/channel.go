package repository

import (
	"context"

	"github.com/Taichi-iskw/yt-trend/internal/model"
)

// ChannelRepository defines operations for Channel persistence
type ChannelRepository interface {
	// Create creates a new channel record; an existing ID is a CONFLICT
	Create(ctx context.Context, channel *model.Channel) error

	// Upsert inserts the channel or refreshes its name, URL and uploads playlist
	Upsert(ctx context.Context, channel *model.Channel) error

	// GetByID retrieves a channel by its ID
	GetByID(ctx context.Context, id string) (*model.Channel, error)

	// List retrieves channels with pagination
	List(ctx context.Context, limit, offset int) ([]*model.Channel, error)

	// Delete deletes a channel and, by cascade, its videos
	Delete(ctx context.Context, id string) error
}
