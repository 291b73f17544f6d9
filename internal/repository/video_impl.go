package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	apperrors "github.com/Taichi-iskw/yt-trend/internal/errors"
	"github.com/Taichi-iskw/yt-trend/internal/model"
)

const videoColumns = "id, channel_id, title, description, url, published_at"

const upsertVideoSQL = `INSERT INTO videos (` + videoColumns + `, has_transcript)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (id) DO UPDATE SET
	title = EXCLUDED.title,
	description = EXCLUDED.description,
	url = EXCLUDED.url,
	published_at = EXCLUDED.published_at,
	has_transcript = videos.has_transcript OR EXCLUDED.has_transcript,
	ingested_at = now()`

// videoRepository implements VideoRepository using PostgreSQL
type videoRepository struct {
	pool Pool
}

// NewVideoRepository creates a new instance of VideoRepository
func NewVideoRepository(pool Pool) VideoRepository {
	return &videoRepository{
		pool: pool,
	}
}

// UpsertBatch writes all videos or none
func (r *videoRepository) UpsertBatch(ctx context.Context, videos []*model.Video) error {
	if len(videos) == 0 {
		return nil
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return handlePostgreSQLError(err, "failed to begin transaction")
	}
	defer func() {
		// no-op after commit
		_ = tx.Rollback(ctx)
	}()

	for _, video := range videos {
		_, err := tx.Exec(ctx, upsertVideoSQL,
			video.ID, video.ChannelID, video.Title, video.Description, video.URL, video.PublishedAt, video.HasTranscript())
		if err != nil {
			return handlePostgreSQLError(err, "failed to upsert video "+video.ID)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return handlePostgreSQLError(err, "failed to commit videos")
	}
	return nil
}

// GetByID retrieves a video by its ID
func (r *videoRepository) GetByID(ctx context.Context, id string) (*model.Video, error) {
	sql := "SELECT " + videoColumns + " FROM videos WHERE id = $1"
	row := r.pool.QueryRow(ctx, sql, id)

	var video model.Video
	err := row.Scan(&video.ID, &video.ChannelID, &video.Title, &video.Description, &video.URL, &video.PublishedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.Wrap(err, apperrors.CodeNotFound, "video not found")
		}
		return nil, apperrors.Wrap(err, apperrors.CodeInternal, "failed to get video")
	}

	return &video, nil
}

// GetByChannelID retrieves videos by channel ID with pagination
func (r *videoRepository) GetByChannelID(ctx context.Context, channelID string, limit, offset int) ([]*model.Video, error) {
	sql := "SELECT " + videoColumns + " FROM videos WHERE channel_id = $1 ORDER BY published_at DESC, id LIMIT $2 OFFSET $3"
	rows, err := r.pool.Query(ctx, sql, channelID, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternal, "failed to get videos by channel ID")
	}
	defer rows.Close()

	videos := []*model.Video{}
	for rows.Next() {
		var video model.Video
		err := rows.Scan(&video.ID, &video.ChannelID, &video.Title, &video.Description, &video.URL, &video.PublishedAt)
		if err != nil {
			return nil, apperrors.Wrap(err, apperrors.CodeInternal, "failed to scan video row")
		}
		videos = append(videos, &video)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternal, "failed to iterate video rows")
	}

	return videos, nil
}
