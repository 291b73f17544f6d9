package config

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// connectTimeout bounds pool creation and the initial ping
const connectTimeout = 10 * time.Second

// NewDatabasePool creates a new PostgreSQL connection pool for the run catalog
func NewDatabasePool(ctx context.Context, config *Config) (*pgxpool.Pool, error) {
	dbConfig, err := config.ParseDatabaseConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	poolConfig, err := pgxpool.ParseConfig(dbConfig.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	poolConfig.MaxConns = dbConfig.MaxConns
	poolConfig.MinConns = dbConfig.MinConns
	poolConfig.MaxConnLifetime = dbConfig.MaxConnLifetime
	poolConfig.MaxConnIdleTime = dbConfig.MaxConnIdleTime

	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database %s:%d: %w", dbConfig.Host, dbConfig.Port, err)
	}

	slog.Debug("connected to catalog database",
		slog.String("host", dbConfig.Host),
		slog.String("database", dbConfig.DBName),
		slog.Int("max_conns", int(dbConfig.MaxConns)))

	return pool, nil
}

// CloseDatabasePool gracefully closes the database connection pool
func CloseDatabasePool(pool *pgxpool.Pool) {
	if pool != nil {
		pool.Close()
	}
}
