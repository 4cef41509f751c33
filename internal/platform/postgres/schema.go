package postgres

import (
	"context"
	"database/sql"
	"fmt"
)

// schema is applied at startup and by integration test setup. Every
// statement is idempotent so repeated application is safe.
const schema = `
CREATE EXTENSION IF NOT EXISTS vector;

CREATE TABLE IF NOT EXISTS watchlist_entities (
    id                   BIGSERIAL PRIMARY KEY,
    unique_id            TEXT NOT NULL UNIQUE,
    name                 TEXT NOT NULL,
    name_vector          vector(1536) NOT NULL,
    aliases              TEXT[] NOT NULL DEFAULT '{}',
    dates_of_birth       DATE[] NOT NULL DEFAULT '{}',
    gender               TEXT,
    nationality          TEXT,
    country_of_residence TEXT,
    risk_category        TEXT,
    additional_info      TEXT,
    entity_type          TEXT NOT NULL DEFAULT 'INDIVIDUAL',
    created_at           TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS watchlist_entities_name_vector_idx
    ON watchlist_entities USING ivfflat (name_vector vector_cosine_ops) WITH (lists = 100);

CREATE TABLE IF NOT EXISTS screening_records (
    id             BIGSERIAL PRIMARY KEY,
    name           TEXT NOT NULL,
    date_of_birth  DATE,
    screening_type TEXT NOT NULL,
    screening_time TIMESTAMPTZ NOT NULL,
    matched        BOOLEAN NOT NULL DEFAULT FALSE,
    risk_score     DOUBLE PRECISION,
    explanation    TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS screening_matches (
    id                  BIGSERIAL PRIMARY KEY,
    screening_id        BIGINT NOT NULL REFERENCES screening_records(id) ON DELETE CASCADE,
    watchlist_entity_id BIGINT NOT NULL REFERENCES watchlist_entities(id),
    match_type          TEXT NOT NULL,
    match_score         DOUBLE PRECISION NOT NULL
);

CREATE TABLE IF NOT EXISTS audit_events (
    id           UUID PRIMARY KEY,
    occurred_at  TIMESTAMPTZ NOT NULL,
    action       TEXT NOT NULL,
    subject      TEXT NOT NULL DEFAULT '',
    subject_hash TEXT NOT NULL DEFAULT '',
    decision     TEXT NOT NULL DEFAULT '',
    reason       TEXT NOT NULL DEFAULT '',
    request_id   TEXT NOT NULL DEFAULT ''
);
`

// EnsureSchema creates the tables and indexes if they do not exist. Requires
// the pgvector extension to be installable by the connected role.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
