package database

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DB wraps the shared connection pool.
type DB struct {
	Pool *pgxpool.Pool
}

// Connect opens a pgx connection pool and verifies connectivity.
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{Pool: pool}, nil
}

// Close releases the pool.
func (db *DB) Close() {
	db.Pool.Close()
}

// HealthCheck pings the database for readiness probes.
func (db *DB) HealthCheck(ctx context.Context) error {
	return db.Pool.Ping(ctx)
}

// RunMigrations applies the schema. Statements are idempotent.
func RunMigrations(ctx context.Context, db *DB) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS posts (
			id UUID PRIMARY KEY,
			tx_id TEXT UNIQUE NOT NULL,
			content TEXT NOT NULL,
			is_public BOOLEAN NOT NULL DEFAULT TRUE,
			author TEXT NOT NULL DEFAULT 'anonymous',
			author_id UUID,
			created_at TIMESTAMPTZ NOT NULL,
			upvotes INT NOT NULL DEFAULT 0,
			downvotes INT NOT NULL DEFAULT 0,
			reply_count INT NOT NULL DEFAULT 0,
			view_count INT NOT NULL DEFAULT 0,
			gateway_url TEXT NOT NULL DEFAULT '',
			verified BOOLEAN NOT NULL DEFAULT FALSE,
			tags TEXT[] NOT NULL DEFAULT '{}',
			mood TEXT NOT NULL DEFAULT '',
			crisis_level TEXT NOT NULL DEFAULT 'none',
			mod_flagged BOOLEAN NOT NULL DEFAULT FALSE,
			mod_reviewed BOOLEAN NOT NULL DEFAULT FALSE,
			mod_approved BOOLEAN NOT NULL DEFAULT TRUE
		)`,
		`CREATE INDEX IF NOT EXISTS idx_posts_created_at ON posts(created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_posts_public ON posts(is_public)`,
		`CREATE INDEX IF NOT EXISTS idx_posts_author ON posts(author)`,
		`CREATE INDEX IF NOT EXISTS idx_posts_mood ON posts(mood)`,
		`CREATE TABLE IF NOT EXISTS replies (
			id UUID PRIMARY KEY,
			confession_id UUID NOT NULL REFERENCES posts(id),
			parent_reply_id UUID,
			content TEXT NOT NULL,
			author TEXT NOT NULL DEFAULT 'anonymous',
			author_id UUID,
			created_at TIMESTAMPTZ NOT NULL,
			upvotes INT NOT NULL DEFAULT 0,
			downvotes INT NOT NULL DEFAULT 0,
			tx_id TEXT NOT NULL DEFAULT '',
			verified BOOLEAN NOT NULL DEFAULT FALSE,
			crisis_level TEXT NOT NULL DEFAULT 'none',
			mod_flagged BOOLEAN NOT NULL DEFAULT FALSE,
			mod_reviewed BOOLEAN NOT NULL DEFAULT FALSE,
			mod_approved BOOLEAN NOT NULL DEFAULT TRUE
		)`,
		`CREATE INDEX IF NOT EXISTS idx_replies_confession ON replies(confession_id, created_at)`,
		`CREATE TABLE IF NOT EXISTS votes (
			id UUID PRIMARY KEY,
			subject_id UUID NOT NULL,
			voter_identity TEXT NOT NULL,
			vote_type TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_votes_subject_voter ON votes(subject_id, voter_identity)`,
		`CREATE TABLE IF NOT EXISTS reply_votes (
			id UUID PRIMARY KEY,
			subject_id UUID NOT NULL,
			voter_identity TEXT NOT NULL,
			vote_type TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_reply_votes_subject_voter ON reply_votes(subject_id, voter_identity)`,
	}

	for _, migration := range migrations {
		if _, err := db.Pool.Exec(ctx, migration); err != nil {
			return fmt.Errorf("failed to run migration: %w", err)
		}
	}

	slog.Info("Database migrations completed")
	return nil
}
