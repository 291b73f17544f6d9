package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	apperrors "github.com/Taichi-iskw/yt-trend/internal/errors"
	"github.com/Taichi-iskw/yt-trend/internal/model"
)

// Pool interface for abstracting pgx connection pool
type Pool interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
	Close()
}

const channelColumns = "id, name, url, uploads_playlist_id"

// channelRepository implements ChannelRepository using PostgreSQL
type channelRepository struct {
	pool Pool
}

// NewChannelRepository creates a new instance of ChannelRepository
func NewChannelRepository(pool Pool) ChannelRepository {
	return &channelRepository{
		pool: pool,
	}
}

// Create creates a new channel record
func (r *channelRepository) Create(ctx context.Context, channel *model.Channel) error {
	sql := "INSERT INTO channels (" + channelColumns + ") VALUES ($1, $2, $3, $4)"
	_, err := r.pool.Exec(ctx, sql, channel.ID, channel.Name, channel.URL, channel.UploadsPlaylistID)
	if err != nil {
		return handlePostgreSQLError(err, "failed to create channel")
	}
	return nil
}

// Upsert inserts or updates a channel record
func (r *channelRepository) Upsert(ctx context.Context, channel *model.Channel) error {
	_, err := r.pool.Exec(ctx, upsertChannelSQL, channel.ID, channel.Name, channel.URL, channel.UploadsPlaylistID)
	if err != nil {
		return handlePostgreSQLError(err, "failed to upsert channel")
	}
	return nil
}

// upsertChannelSQL keeps a stored name when the new one is empty (feed and
// yt-dlp listings do not always know it)
const upsertChannelSQL = `INSERT INTO channels (` + channelColumns + `)
VALUES ($1, $2, $3, $4)
ON CONFLICT (id) DO UPDATE SET
	name = COALESCE(NULLIF(EXCLUDED.name, ''), channels.name),
	url = EXCLUDED.url,
	uploads_playlist_id = COALESCE(NULLIF(EXCLUDED.uploads_playlist_id, ''), channels.uploads_playlist_id),
	updated_at = now()`

// GetByID retrieves a channel by its ID
func (r *channelRepository) GetByID(ctx context.Context, id string) (*model.Channel, error) {
	sql := "SELECT " + channelColumns + " FROM channels WHERE id = $1"
	row := r.pool.QueryRow(ctx, sql, id)

	var channel model.Channel
	err := row.Scan(&channel.ID, &channel.Name, &channel.URL, &channel.UploadsPlaylistID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.Wrap(err, apperrors.CodeNotFound, "channel not found")
		}
		return nil, apperrors.Wrap(err, apperrors.CodeInternal, "failed to get channel")
	}

	return &channel, nil
}

// Delete deletes a channel by its ID
func (r *channelRepository) Delete(ctx context.Context, id string) error {
	sql := "DELETE FROM channels WHERE id = $1"
	tag, err := r.pool.Exec(ctx, sql, id)
	if err != nil {
		return handlePostgreSQLError(err, "failed to delete channel")
	}
	if tag.RowsAffected() == 0 {
		return apperrors.New(apperrors.CodeNotFound, "channel not found")
	}
	return nil
}

// List retrieves channels with pagination
func (r *channelRepository) List(ctx context.Context, limit, offset int) ([]*model.Channel, error) {
	sql := "SELECT " + channelColumns + " FROM channels ORDER BY name, id LIMIT $1 OFFSET $2"
	rows, err := r.pool.Query(ctx, sql, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternal, "failed to list channels")
	}
	defer rows.Close()

	channels := []*model.Channel{}
	for rows.Next() {
		var channel model.Channel
		err := rows.Scan(&channel.ID, &channel.Name, &channel.URL, &channel.UploadsPlaylistID)
		if err != nil {
			return nil, apperrors.Wrap(err, apperrors.CodeInternal, "failed to scan channel row")
		}
		channels = append(channels, &channel)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternal, "failed to iterate channel rows")
	}

	return channels, nil
}
