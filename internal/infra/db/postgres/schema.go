package postgres

import (
	"context"

	"github.com/jackc/pgx/v4/pgxpool"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS jobs (
    id               TEXT PRIMARY KEY,
    status           TEXT NOT NULL DEFAULT 'pending',
    source_type      TEXT NOT NULL DEFAULT 'text',
    input_text       TEXT NOT NULL,
    full_translation TEXT,
    error_message    TEXT,
    metadata         JSONB NOT NULL DEFAULT '{}'::jsonb,
    created_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at       TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_jobs_status_created ON jobs (status, created_at DESC);

CREATE TABLE IF NOT EXISTS job_paragraphs (
    id            TEXT PRIMARY KEY,
    job_id        TEXT NOT NULL REFERENCES jobs(id) ON DELETE CASCADE,
    paragraph_idx INT  NOT NULL,
    indent        TEXT NOT NULL DEFAULT '',
    separator     TEXT NOT NULL DEFAULT '',
    UNIQUE (job_id, paragraph_idx)
);

CREATE TABLE IF NOT EXISTS job_segments (
    id            TEXT PRIMARY KEY,
    job_id        TEXT NOT NULL REFERENCES jobs(id) ON DELETE CASCADE,
    paragraph_idx INT  NOT NULL,
    seg_idx       INT  NOT NULL,
    segment_text  TEXT NOT NULL,
    pinyin        TEXT NOT NULL DEFAULT '',
    english       TEXT NOT NULL DEFAULT '',
    created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
    UNIQUE (job_id, paragraph_idx, seg_idx)
);

CREATE INDEX IF NOT EXISTS idx_job_segments_job ON job_segments (job_id, paragraph_idx, seg_idx);
`

// EnsureSchema creates the job tables if they do not exist. Idempotent;
// called once at startup.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, schemaSQL)
	return err
}
