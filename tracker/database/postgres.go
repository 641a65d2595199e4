package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const archiveSchema = `
CREATE TABLE IF NOT EXISTS generation_task_archive (
	id                      TEXT PRIMARY KEY,
	task_type               TEXT NOT NULL,
	status                  TEXT NOT NULL,
	service_id              INTEGER NOT NULL,
	prompt                  TEXT NOT NULL DEFAULT '',
	error_message           TEXT NOT NULL DEFAULT '',
	processing_time_seconds DOUBLE PRECISION,
	created_at              TIMESTAMPTZ NOT NULL,
	updated_at              TIMESTAMPTZ NOT NULL,
	archived_at             TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

type DB struct {
	Pool *pgxpool.Pool
}

func ConnectPostgres(ctx context.Context, databaseURL string) (*DB, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	cfg.MaxConns = 5
	cfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return &DB{Pool: pool}, nil
}

func (db *DB) EnsureArchiveSchema(ctx context.Context) error {
	if _, err := db.Pool.Exec(ctx, archiveSchema); err != nil {
		return fmt.Errorf("create archive table: %w", err)
	}
	return nil
}

func (db *DB) Close() {
	db.Pool.Close()
}
