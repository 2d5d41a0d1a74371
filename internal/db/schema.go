package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// EnsureSchema creates the tables on startup if they are missing. Idempotent,
// so both the api and the worker can run it.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id            TEXT PRIMARY KEY,
			email         TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			name          TEXT NOT NULL,
			role          TEXT NOT NULL DEFAULT 'user',
			active        BOOLEAN NOT NULL DEFAULT TRUE,
			created_at    TIMESTAMPTZ NOT NULL,
			updated_at    TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS celebrants (
			id             TEXT PRIMARY KEY,
			user_id        TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			name           TEXT NOT NULL,
			relationship   TEXT NOT NULL,
			photo_url      TEXT NOT NULL DEFAULT '',
			favourite_tags TEXT[] NOT NULL DEFAULT '{}',
			key_dates      JSONB NOT NULL DEFAULT '[]',
			notes          TEXT NOT NULL DEFAULT '',
			created_at     TIMESTAMPTZ NOT NULL,
			updated_at     TIMESTAMPTZ NOT NULL,
			UNIQUE (user_id, name)
		)`,
		`CREATE TABLE IF NOT EXISTS events (
			id                 TEXT PRIMARY KEY,
			user_id            TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			celebrant_id       TEXT NOT NULL REFERENCES celebrants(id) ON DELETE CASCADE,
			title              TEXT NOT NULL,
			date               TIMESTAMPTZ NOT NULL,
			status             TEXT NOT NULL DEFAULT 'upcoming',
			remind_before_days INTEGER NOT NULL DEFAULT 0,
			reminded_at        TIMESTAMPTZ,
			created_at         TIMESTAMPTZ NOT NULL,
			updated_at         TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_events_user_date ON events (user_id, date)`,
		`CREATE INDEX IF NOT EXISTS idx_events_reminder ON events (date) WHERE reminded_at IS NULL AND status = 'upcoming'`,
		`CREATE TABLE IF NOT EXISTS messages (
			id         TEXT PRIMARY KEY,
			user_id    TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			event_id   TEXT NOT NULL REFERENCES events(id) ON DELETE CASCADE,
			content    TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
	}

	for _, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}

	return nil
}
