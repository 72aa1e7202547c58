package db

import (
	"database/sql"
	"time"

	"world-digest/internal/observability/metrics"
)

// MigrateUp creates the schema if it does not exist.
func MigrateUp(db *sql.DB) error {
	start := time.Now()
	defer func() { metrics.RecordOperationDuration("migrate_up", time.Since(start)) }()

	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS raw_articles (
    id           TEXT PRIMARY KEY,
    region       TEXT NOT NULL,
    source_name  TEXT,
    source_url   TEXT,
    title        TEXT NOT NULL,
    description  TEXT,
    content      TEXT,
    url          TEXT NOT NULL UNIQUE,
    published_at TIMESTAMPTZ,
    language     VARCHAR(8) DEFAULT 'en',
    categories   TEXT[],
    fetched_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
    processed    BOOLEAN NOT NULL DEFAULT FALSE
)`); err != nil {
		return err
	}

	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS digests (
    id            TEXT PRIMARY KEY,
    region        TEXT NOT NULL,
    region_name   TEXT,
    summary       TEXT NOT NULL,
    key_topics    TEXT[],
    article_count INTEGER NOT NULL DEFAULT 0,
    sources_used  TEXT[],
    article_ids   TEXT[],
    time_period   VARCHAR(16),
    created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
    sent_at       TIMESTAMPTZ
)`); err != nil {
		return err
	}

	indexes := []string{
		// Region collection window scans.
		`CREATE INDEX IF NOT EXISTS idx_raw_articles_region_fetched ON raw_articles(region, fetched_at DESC)`,
		// Digest ordering within the window.
		`CREATE INDEX IF NOT EXISTS idx_raw_articles_published_at ON raw_articles(published_at DESC)`,
		// Unprocessed article lookups.
		`CREATE INDEX IF NOT EXISTS idx_raw_articles_unprocessed ON raw_articles(region) WHERE processed = FALSE`,
		// Latest digest per region.
		`CREATE INDEX IF NOT EXISTS idx_digests_region_created ON digests(region, created_at DESC)`,
	}

	for _, idx := range indexes {
		if _, err := db.Exec(idx); err != nil {
			return err
		}
	}

	return nil
}

// MigrateDown drops the schema.
// Use with caution: this deletes all stored articles and digests.
func MigrateDown(db *sql.DB) error {
	dropStatements := []string{
		`DROP TABLE IF EXISTS digests CASCADE`,
		`DROP TABLE IF EXISTS raw_articles CASCADE`,
	}

	for _, stmt := range dropStatements {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}

	return nil
}
