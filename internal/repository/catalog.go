package repository

import (
	"context"
	"fmt"

	"github.com/Taichi-iskw/yt-trend/internal/model"
)

// Catalog records ingestion runs: channels first, then their videos
type Catalog struct {
	channels ChannelRepository
	videos   VideoRepository
}

// NewCatalog creates a Catalog over pool
func NewCatalog(pool Pool) *Catalog {
	return &Catalog{
		channels: NewChannelRepository(pool),
		videos:   NewVideoRepository(pool),
	}
}

// SaveRun upserts every channel and video of a run
func (c *Catalog) SaveRun(ctx context.Context, channels []*model.Channel, videos []*model.Video) error {
	for _, ch := range channels {
		if err := c.channels.Upsert(ctx, ch); err != nil {
			return fmt.Errorf("save channel %s: %w", ch.ID, err)
		}
	}
	if err := c.videos.UpsertBatch(ctx, videos); err != nil {
		return fmt.Errorf("save videos: %w", err)
	}
	return nil
}

// Channels returns the channel repository
func (c *Catalog) Channels() ChannelRepository {
	return c.channels
}

// Videos returns the video repository
func (c *Catalog) Videos() VideoRepository {
	return c.videos
}
