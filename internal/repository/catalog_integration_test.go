//go:build integration

package repository

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	apperrors "github.com/Taichi-iskw/yt-trend/internal/errors"
	"github.com/Taichi-iskw/yt-trend/internal/model"
)

// setupTestDB starts PostgreSQL in a container and applies the embedded migrations
func setupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx, "postgres:15-alpine",
		postgres.WithDatabase("yttrend_test"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	require.NoError(t, RunMigrations(connStr))
	// second run is a no-op
	require.NoError(t, RunMigrations(connStr))

	version, dirty, ok, err := MigrationVersion(connStr)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.False(t, dirty)
	assert.Equal(t, uint(1), version)

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	return pool
}

func TestCatalog_Integration(t *testing.T) {
	pool := setupTestDB(t)
	catalog := NewCatalog(pool)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	channel := &model.Channel{
		ID:   "UCuAXFkgsw1L7xaCfnd5JJOw",
		Name: "Test Channel",
		URL:  "https://www.youtube.com/channel/UCuAXFkgsw1L7xaCfnd5JJOw",
	}
	older := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	newer := time.Date(2024, 5, 3, 10, 0, 0, 0, time.UTC)
	videos := []*model.Video{
		{ID: "vid_old", ChannelID: channel.ID, Title: "old", URL: "https://www.youtube.com/watch?v=vid_old", PublishedAt: older},
		{ID: "vid_new", ChannelID: channel.ID, Title: "new", URL: "https://www.youtube.com/watch?v=vid_new", PublishedAt: newer,
			Transcript: []model.TranscriptSegment{{StartTime: 0, EndTime: 1, Text: "hi"}}},
	}

	t.Run("SaveRun is repeatable", func(t *testing.T) {
		require.NoError(t, catalog.SaveRun(ctx, []*model.Channel{channel}, videos))

		videos[0].Title = "old (edited)"
		require.NoError(t, catalog.SaveRun(ctx, []*model.Channel{{ID: channel.ID, URL: channel.URL}}, videos))

		stored, err := catalog.Channels().GetByID(ctx, channel.ID)
		require.NoError(t, err)
		assert.Equal(t, "Test Channel", stored.Name, "empty name must not overwrite a stored one")
	})

	t.Run("GetByChannelID is newest first", func(t *testing.T) {
		got, err := catalog.Videos().GetByChannelID(ctx, channel.ID, 10, 0)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "vid_new", got[0].ID)
		assert.Equal(t, "old (edited)", got[1].Title)
		assert.True(t, got[1].PublishedAt.Equal(older))
	})

	t.Run("Create conflicts on existing ID", func(t *testing.T) {
		err := catalog.Channels().Create(ctx, channel)
		require.Error(t, err)
		assert.Equal(t, apperrors.CodeConflict, apperrors.CodeOf(err))
	})

	t.Run("video for unknown channel", func(t *testing.T) {
		err := catalog.Videos().UpsertBatch(ctx, []*model.Video{
			{ID: "orphan", ChannelID: "UCmissing", URL: "https://www.youtube.com/watch?v=orphan", PublishedAt: newer},
		})
		require.Error(t, err)
		assert.True(t, apperrors.HasCode(err, apperrors.CodeDependency))
	})

	t.Run("Delete cascades", func(t *testing.T) {
		require.NoError(t, catalog.Channels().Delete(ctx, channel.ID))

		_, err := catalog.Videos().GetByID(ctx, "vid_new")
		assert.Equal(t, apperrors.CodeNotFound, apperrors.CodeOf(err))
	})
}
