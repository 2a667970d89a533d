// Package database persists mapped profile data into the portfolio
// site's PostgreSQL schema.
package database

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/khrees2412/linkfolio/internal/apperror"
)

// NewPool opens a pgx connection pool and verifies it with a ping.
func NewPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, apperror.NewDatabase("failed to create connection pool", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, apperror.NewDatabase("failed to ping database", err)
	}
	return pool, nil
}

// EnsureSchema creates the portfolio tables if they do not exist.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY,
		email TEXT UNIQUE NOT NULL,
		password_hash TEXT NOT NULL DEFAULT '',
		name TEXT NOT NULL,
		bio TEXT,
		avatar_url TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS projects (
		id UUID PRIMARY KEY,
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		slug TEXT UNIQUE NOT NULL CHECK (slug <> ''),
		title TEXT NOT NULL,
		description TEXT,
		long_description TEXT,
		image_url TEXT,
		live_url TEXT,
		github_url TEXT,
		featured BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS project_technologies (
		project_id UUID NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		technology TEXT NOT NULL CHECK (technology <> ''),
		PRIMARY KEY (project_id, technology)
	);

	CREATE INDEX IF NOT EXISTS idx_projects_user_id ON projects(user_id);
	CREATE INDEX IF NOT EXISTS idx_projects_created_at ON projects(created_at);
	`

	if _, err := pool.Exec(ctx, schema); err != nil {
		return apperror.NewDatabase("failed to run migrations", err)
	}
	return nil
}
