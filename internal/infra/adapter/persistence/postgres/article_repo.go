// Package postgres implements the repository interfaces on PostgreSQL.
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

type ArticleRepo struct {
	db *sql.DB
}

func NewArticleRepo(db *sql.DB) repository.ArticleRepository {
	return &ArticleRepo{db: db}
}

func (repo *ArticleRepo) Create(ctx context.Context, article *entity.Article) error {
	const query = `
INSERT INTO raw_articles
       (id, region, source_name, source_url, title, description, content, url,
        published_at, language, categories, fetched_at, processed)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := repo.db.ExecContext(ctx, query,
		article.ID, article.Region, article.SourceName, article.SourceURL,
		article.Title, article.Description, article.Content, article.URL,
		article.PublishedAt, article.Language, pq.Array(article.Categories),
		article.FetchedAt, article.Processed,
	)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

// CreateBatch inserts articles whose URLs are not yet stored.
// Conflicting URLs are skipped so repeated crawls stay idempotent.
func (repo *ArticleRepo) CreateBatch(ctx context.Context, articles []*entity.Article) (int, error) {
	if len(articles) == 0 {
		return 0, nil
	}
	start := time.Now()
	defer func() { metrics.RecordDBQuery("insert_articles_batch", time.Since(start)) }()

	const query = `
INSERT INTO raw_articles
       (id, region, source_name, source_url, title, description, content, url,
        published_at, language, categories, fetched_at, processed)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
ON CONFLICT (url) DO NOTHING`

	tx, err := repo.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("CreateBatch: BeginTx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	inserted := 0
	for _, article := range articles {
		res, err := tx.ExecContext(ctx, query,
			article.ID, article.Region, article.SourceName, article.SourceURL,
			article.Title, article.Description, article.Content, article.URL,
			article.PublishedAt, article.Language, pq.Array(article.Categories),
			article.FetchedAt, article.Processed,
		)
		if err != nil {
			return 0, fmt.Errorf("CreateBatch: Exec: %w", err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			inserted++
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("CreateBatch: Commit: %w", err)
	}
	return inserted, nil
}

func (repo *ArticleRepo) ListForRegion(ctx context.Context, region string, filters repository.ArticleListFilters) ([]*entity.Article, error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("select_articles_region", time.Since(start)) }()

	query := `
SELECT id, region, source_name, source_url, title, description, content, url,
       published_at, language, categories, fetched_at, processed
FROM raw_articles
WHERE region = $1`
	args := []interface{}{region}

	if filters.Since != nil {
		args = append(args, *filters.Since)
		query += fmt.Sprintf(" AND fetched_at >= $%d", len(args))
	}
	if filters.UnprocessedOnly {
		query += " AND processed = FALSE"
	}
	query += " ORDER BY published_at DESC NULLS LAST"

	rows, err := repo.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ListForRegion: %w", err)
	}
	defer func() { _ = rows.Close() }()

	articles := make([]*entity.Article, 0, 100)
	for rows.Next() {
		article, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("ListForRegion: %w", err)
		}
		articles = append(articles, article)
	}
	return articles, rows.Err()
}

func scanArticle(rows *sql.Rows) (*entity.Article, error) {
	var article entity.Article
	var categories pq.StringArray
	if err := rows.Scan(&article.ID, &article.Region, &article.SourceName,
		&article.SourceURL, &article.Title, &article.Description, &article.Content,
		&article.URL, &article.PublishedAt, &article.Language, &categories,
		&article.FetchedAt, &article.Processed); err != nil {
		return nil, fmt.Errorf("Scan: %w", err)
	}
	article.Categories = categories
	return &article, nil
}

func (repo *ArticleRepo) MarkProcessed(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	const query = `UPDATE raw_articles SET processed = TRUE WHERE id = ANY($1)`
	_, err := repo.db.ExecContext(ctx, query, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("MarkProcessed: %w", err)
	}
	return nil
}

func (repo *ArticleRepo) ExistsByURL(ctx context.Context, url string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM raw_articles WHERE url = $1)`
	var existsFlag bool
	err := repo.db.QueryRowContext(ctx, query, url).Scan(&existsFlag)
	if err != nil {
		return false, fmt.Errorf("ExistsByURL: %w", err)
	}
	return existsFlag, nil
}

// ExistsByURLBatch checks URL existence in one round trip to avoid N+1 queries.
func (repo *ArticleRepo) ExistsByURLBatch(ctx context.Context, urls []string) (map[string]bool, error) {
	if len(urls) == 0 {
		return make(map[string]bool), nil
	}
	start := time.Now()
	defer func() { metrics.RecordDBQuery("select_urls_batch", time.Since(start)) }()

	const query = `SELECT url FROM raw_articles WHERE url = ANY($1)`
	rows, err := repo.db.QueryContext(ctx, query, pq.Array(urls))
	if err != nil {
		return nil, fmt.Errorf("ExistsByURLBatch: QueryContext: %w", err)
	}
	defer func() { _ = rows.Close() }()

	result := make(map[string]bool)
	for rows.Next() {
		var url string
		if err := rows.Scan(&url); err != nil {
			return nil, fmt.Errorf("ExistsByURLBatch: Scan: %w", err)
		}
		result[url] = true
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ExistsByURLBatch: rows.Err: %w", err)
	}

	return result, nil
}

func (repo *ArticleRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("cleanup_old_articles", time.Since(start)) }()

	const query = `DELETE FROM raw_articles WHERE fetched_at < $1`
	res, err := repo.db.ExecContext(ctx, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("DeleteOlderThan: %w", err)
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("DeleteOlderThan: RowsAffected: %w", err)
	}
	return deleted, nil
}

func (repo *ArticleRepo) CountArticles(ctx context.Context) (int64, error) {
	const query = `SELECT COUNT(*) FROM raw_articles`
	var count int64
	err := repo.db.QueryRowContext(ctx, query).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("CountArticles: %w", err)
	}
	return count, nil
}
