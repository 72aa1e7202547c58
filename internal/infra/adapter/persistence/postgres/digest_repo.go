package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"world-digest/internal/domain/entity"
	"world-digest/internal/observability/metrics"
	"world-digest/internal/repository"
)

type DigestRepo struct {
	db *sql.DB
}

func NewDigestRepo(db *sql.DB) repository.DigestRepository {
	return &DigestRepo{db: db}
}

func (repo *DigestRepo) Create(ctx context.Context, digest *entity.Digest) error {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("insert_digest", time.Since(start)) }()

	const query = `
INSERT INTO digests
       (id, region, region_name, summary, key_topics, article_count,
        sources_used, article_ids, time_period, created_at, sent_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := repo.db.ExecContext(ctx, query,
		digest.ID, digest.Region, digest.RegionName, digest.Summary,
		pq.Array(digest.KeyTopics), digest.ArticleCount,
		pq.Array(digest.SourcesUsed), pq.Array(digest.ArticleIDs),
		digest.TimePeriod, digest.CreatedAt, digest.SentAt,
	)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (repo *DigestRepo) LatestForRegion(ctx context.Context, region string) (*entity.Digest, error) {
	const query = `
SELECT id, region, region_name, summary, key_topics, article_count,
       sources_used, article_ids, time_period, created_at, sent_at
FROM digests
WHERE region = $1
ORDER BY created_at DESC
LIMIT 1`
	var digest entity.Digest
	var keyTopics, sourcesUsed, articleIDs pq.StringArray
	err := repo.db.QueryRowContext(ctx, query, region).
		Scan(&digest.ID, &digest.Region, &digest.RegionName, &digest.Summary,
			&keyTopics, &digest.ArticleCount, &sourcesUsed, &articleIDs,
			&digest.TimePeriod, &digest.CreatedAt, &digest.SentAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("LatestForRegion: %w", err)
	}
	digest.KeyTopics = keyTopics
	digest.SourcesUsed = sourcesUsed
	digest.ArticleIDs = articleIDs
	return &digest, nil
}

func (repo *DigestRepo) MarkSent(ctx context.Context, id string) error {
	const query = `UPDATE digests SET sent_at = now() WHERE id = $1`
	res, err := repo.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("MarkSent: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("MarkSent: no rows affected")
	}
	return nil
}

func (repo *DigestRepo) CountDigests(ctx context.Context) (int64, error) {
	const query = `SELECT COUNT(*) FROM digests`
	var count int64
	err := repo.db.QueryRowContext(ctx, query).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("CountDigests: %w", err)
	}
	return count, nil
}
