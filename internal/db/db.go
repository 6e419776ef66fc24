// Package db provides the pgxpool-based Postgres connection pool used when
// DATABASE_URL is set.
package db

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/albapepper/footy-tipping/internal/config"
	"github.com/albapepper/footy-tipping/internal/store"
)

// Pool wraps pgxpool.Pool with application-specific helpers.
type Pool struct {
	*pgxpool.Pool
}

// New creates and validates a new connection pool.
func New(ctx context.Context, cfg *config.Config) (*Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	poolCfg.MinConns = int32(cfg.DBPoolMinConns)
	poolCfg.MaxConns = int32(cfg.DBPoolMaxConns)
	poolCfg.MaxConnLifetime = cfg.DBPoolMaxLife
	poolCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	// Verify connectivity
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &Pool{Pool: pool}, nil
}

// Open returns the store selected by configuration: Postgres through the
// pool when DATABASE_URL is set, otherwise the SQLite file at SQLitePath.
// The returned close function releases everything Open acquired.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*store.SQLStore, func(), error) {
	if !cfg.UsesPostgres() {
		s, err := store.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("Database connected", "driver", "sqlite", "path", cfg.SQLitePath)
		return s, func() { s.Close() }, nil
	}

	pool, err := New(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("Database connected",
		"driver", "postgres",
		"min_conns", cfg.DBPoolMinConns,
		"max_conns", cfg.DBPoolMaxConns)
	s := store.NewPostgres(pool.Pool)
	return s, func() {
		s.Close()
		pool.Close()
	}, nil
}
