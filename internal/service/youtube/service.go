package youtube

import (
	"context"
	"time"

	"github.com/Taichi-iskw/yt-trend/internal/errors"
	"github.com/Taichi-iskw/yt-trend/internal/model"
)

// Resolver turns a free-form channel reference into a canonical channel
type Resolver interface {
	ResolveChannel(ctx context.Context, ref string) (*model.Channel, error)
}

// Lister enumerates a channel's uploads. Implementations may stop early once
// uploads are older than since; ordering is not guaranteed.
type Lister interface {
	ListUploads(ctx context.Context, channel *model.Channel, since time.Time) ([]*model.Video, error)
}

// YouTubeService is interface for YouTube operations used by an ingestion run
type YouTubeService interface {
	// ResolveChannel fails with CodeResolution when ref cannot be parsed or the channel is inaccessible
	ResolveChannel(ctx context.Context, ref string) (*model.Channel, error)
	// FetchChannelVideos returns at most limit videos published inside window, newest first
	FetchChannelVideos(ctx context.Context, channel *model.Channel, window model.DateWindow, limit int) ([]*model.Video, error)
}

// youTubeService implements YouTubeService
type youTubeService struct {
	resolver Resolver
	lister   Lister
}

// NewYouTubeService creates a new YouTubeService from a resolver and a lister
func NewYouTubeService(resolver Resolver, lister Lister) YouTubeService {
	return &youTubeService{
		resolver: resolver,
		lister:   lister,
	}
}

// ResolveChannel resolves ref and wraps every failure as a resolution error
func (s *youTubeService) ResolveChannel(ctx context.Context, ref string) (*model.Channel, error) {
	channel, err := s.resolver.ResolveChannel(ctx, ref)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeResolution, "failed to resolve channel "+ref)
	}
	if channel == nil || channel.ID == "" {
		return nil, errors.New(errors.CodeResolution, "channel "+ref+" resolved to an empty ID")
	}
	if channel.URL == "" {
		channel.URL = ChannelURL(channel.ID)
	}
	return channel, nil
}

// FetchChannelVideos lists the channel's uploads and applies SelectVideos
func (s *youTubeService) FetchChannelVideos(ctx context.Context, channel *model.Channel, window model.DateWindow, limit int) ([]*model.Video, error) {
	if channel == nil || channel.ID == "" {
		return nil, errors.New(errors.CodeInvalidArg, "channel ID is required")
	}

	videos, err := s.lister.ListUploads(ctx, channel, window.Start)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeResolution, "failed to list videos for channel "+channel.ID)
	}

	for _, v := range videos {
		if v == nil {
			continue
		}
		if v.ChannelID == "" {
			v.ChannelID = channel.ID
		}
		if v.URL == "" {
			v.URL = VideoURL(v.ID)
		}
	}

	return SelectVideos(videos, window, limit), nil
}
