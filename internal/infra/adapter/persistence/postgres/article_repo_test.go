package postgres_test

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/go-cmp/cmp"
	"github.com/lib/pq"

	"world-digest/internal/domain/entity"
	pg "world-digest/internal/infra/adapter/persistence/postgres"
	"world-digest/internal/repository"
)

func artRow(a *entity.Article) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "region", "source_name", "source_url", "title", "description",
		"content", "url", "published_at", "language", "categories",
		"fetched_at", "processed",
	}).AddRow(
		a.ID, a.Region, a.SourceName, a.SourceURL, a.Title, a.Description,
		a.Content, a.URL, a.PublishedAt, a.Language, "{}",
		a.FetchedAt, a.Processed,
	)
}

func TestArticleRepo_Create(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	now := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)
	article := &entity.Article{
		ID: "a-1", Region: "usa", SourceName: "AP Top News",
		Title: "Senate passes budget", URL: "https://example.com/budget",
		PublishedAt: &now, Language: "en", FetchedAt: now,
	}

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO raw_articles")).
		WithArgs(article.ID, article.Region, article.SourceName, article.SourceURL,
			article.Title, article.Description, article.Content, article.URL,
			article.PublishedAt, article.Language, pq.Array(article.Categories),
			article.FetchedAt, article.Processed).
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := pg.NewArticleRepo(db)
	if err := repo.Create(context.Background(), article); err != nil {
		t.Fatalf("Create err=%v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestArticleRepo_CreateBatch(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	now := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)
	articles := []*entity.Article{
		{ID: "a-1", Region: "usa", Title: "first", URL: "https://example.com/1", FetchedAt: now},
		{ID: "a-2", Region: "usa", Title: "second", URL: "https://example.com/2", FetchedAt: now},
	}

	mock.ExpectBegin()
	// First insert lands, second hits ON CONFLICT and affects zero rows.
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO raw_articles")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO raw_articles")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	repo := pg.NewArticleRepo(db)
	inserted, err := repo.CreateBatch(context.Background(), articles)
	if err != nil {
		t.Fatalf("CreateBatch err=%v", err)
	}
	if inserted != 1 {
		t.Fatalf("CreateBatch inserted=%d, want 1", inserted)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestArticleRepo_CreateBatch_Empty(t *testing.T) {
	db, _, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	repo := pg.NewArticleRepo(db)
	inserted, err := repo.CreateBatch(context.Background(), nil)
	if err != nil || inserted != 0 {
		t.Fatalf("CreateBatch err=%v inserted=%d", err, inserted)
	}
}

func TestArticleRepo_ListForRegion(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	now := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)
	want := &entity.Article{
		ID: "a-1", Region: "europe", SourceName: "Euronews",
		Title: "EU summit opens", URL: "https://example.com/summit",
		PublishedAt: &now, Language: "en", Categories: []string{},
		FetchedAt: now,
	}

	since := now.Add(-8 * time.Hour)
	mock.ExpectQuery("FROM raw_articles").
		WithArgs("europe", since).
		WillReturnRows(artRow(want))

	repo := pg.NewArticleRepo(db)
	got, err := repo.ListForRegion(context.Background(), "europe", repository.ArticleListFilters{
		Since:           &since,
		UnprocessedOnly: true,
	})
	if err != nil {
		t.Fatalf("ListForRegion err=%v", err)
	}
	if len(got) != 1 {
		t.Fatalf("ListForRegion len=%d, want 1", len(got))
	}
	if diff := cmp.Diff(want, got[0]); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestArticleRepo_ListForRegion_Empty(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectQuery("FROM raw_articles").
		WithArgs("latam").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "region", "source_name", "source_url", "title", "description",
			"content", "url", "published_at", "language", "categories",
			"fetched_at", "processed",
		}))

	repo := pg.NewArticleRepo(db)
	got, err := repo.ListForRegion(context.Background(), "latam", repository.ArticleListFilters{})
	if err != nil || len(got) != 0 {
		t.Fatalf("ListForRegion err=%v len=%d", err, len(got))
	}
}

func TestArticleRepo_MarkProcessed(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	ids := []string{"a-1", "a-2"}
	mock.ExpectExec(regexp.QuoteMeta("UPDATE raw_articles SET processed = TRUE")).
		WithArgs(pq.Array(ids)).
		WillReturnResult(sqlmock.NewResult(0, 2))

	repo := pg.NewArticleRepo(db)
	if err := repo.MarkProcessed(context.Background(), ids); err != nil {
		t.Fatalf("MarkProcessed err=%v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestArticleRepo_MarkProcessed_Empty(t *testing.T) {
	db, _, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	repo := pg.NewArticleRepo(db)
	if err := repo.MarkProcessed(context.Background(), nil); err != nil {
		t.Fatalf("MarkProcessed err=%v", err)
	}
}

func TestArticleRepo_ExistsByURL(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS")).
		WithArgs("https://example.com/budget").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	repo := pg.NewArticleRepo(db)
	exists, err := repo.ExistsByURL(context.Background(), "https://example.com/budget")
	if err != nil || !exists {
		t.Fatalf("ExistsByURL err=%v exists=%v", err, exists)
	}
}

func TestArticleRepo_ExistsByURLBatch(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	urls := []string{"https://example.com/1", "https://example.com/2"}
	mock.ExpectQuery(regexp.QuoteMeta("SELECT url FROM raw_articles")).
		WithArgs(pq.Array(urls)).
		WillReturnRows(sqlmock.NewRows([]string{"url"}).AddRow("https://example.com/1"))

	repo := pg.NewArticleRepo(db)
	got, err := repo.ExistsByURLBatch(context.Background(), urls)
	if err != nil {
		t.Fatalf("ExistsByURLBatch err=%v", err)
	}
	if !got["https://example.com/1"] || got["https://example.com/2"] {
		t.Fatalf("ExistsByURLBatch map=%v", got)
	}
}

func TestArticleRepo_ExistsByURLBatch_Empty(t *testing.T) {
	db, _, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	repo := pg.NewArticleRepo(db)
	got, err := repo.ExistsByURLBatch(context.Background(), nil)
	if err != nil || len(got) != 0 {
		t.Fatalf("ExistsByURLBatch err=%v len=%d", err, len(got))
	}
}

func TestArticleRepo_DeleteOlderThan(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	cutoff := time.Date(2026, 8, 13, 0, 0, 0, 0, time.UTC)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM raw_articles")).
		WithArgs(cutoff).
		WillReturnResult(sqlmock.NewResult(0, 42))

	repo := pg.NewArticleRepo(db)
	deleted, err := repo.DeleteOlderThan(context.Background(), cutoff)
	if err != nil || deleted != 42 {
		t.Fatalf("DeleteOlderThan err=%v deleted=%d", err, deleted)
	}
}

func TestArticleRepo_CountArticles(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM raw_articles")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(1200)))

	repo := pg.NewArticleRepo(db)
	count, err := repo.CountArticles(context.Background())
	if err != nil || count != 1200 {
		t.Fatalf("CountArticles err=%v count=%d", err, count)
	}
}
