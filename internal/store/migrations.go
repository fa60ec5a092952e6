package store

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Schema creates the tables the PostgresStore expects. Statements are
// idempotent so startup can run them unconditionally.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS links (
		code                  TEXT PRIMARY KEY,
		destination_url       TEXT NOT NULL,
		owner_id              TEXT,
		owner_email           TEXT,
		created_at            TIMESTAMPTZ NOT NULL,
		expires_at            TIMESTAMPTZ,
		access_code           TEXT,
		allowed_emails        TEXT[] NOT NULL DEFAULT '{}',
		click_limit           INTEGER,
		current_clicks        INTEGER NOT NULL DEFAULT 0,
		visits                BIGINT NOT NULL DEFAULT 0,
		last_visited_at       TIMESTAMPTZ,
		notifications_enabled BOOLEAN NOT NULL DEFAULT FALSE,
		CONSTRAINT clicks_within_limit
			CHECK (click_limit IS NULL OR current_clicks <= click_limit)
	)`,
	`CREATE INDEX IF NOT EXISTS links_owner_id_idx ON links (owner_id)`,
	`CREATE TABLE IF NOT EXISTS visit_logs (
		id         UUID PRIMARY KEY,
		link_code  TEXT NOT NULL REFERENCES links (code) ON DELETE CASCADE,
		visited_at TIMESTAMPTZ NOT NULL,
		ip_address TEXT,
		user_agent TEXT,
		email      TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS visit_logs_link_code_idx
		ON visit_logs (link_code, visited_at DESC)`,
}

// Migrate applies the schema.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range schema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}

	return nil
}
