package db

import (
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrateUp_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS raw_articles").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS digests").
		WillReturnResult(sqlmock.NewResult(0, 0))

	mock.ExpectExec("CREATE INDEX IF NOT EXISTS idx_raw_articles_region_fetched").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE INDEX IF NOT EXISTS idx_raw_articles_published_at").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE INDEX IF NOT EXISTS idx_raw_articles_unprocessed").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE INDEX IF NOT EXISTS idx_digests_region_created").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = MigrateUp(db)
	assert.NoError(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrateUp_ArticlesTableError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS raw_articles").
		WillReturnError(sql.ErrConnDone)

	err = MigrateUp(db)
	assert.Error(t, err)
	assert.Equal(t, sql.ErrConnDone, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrateUp_DigestsTableError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS raw_articles").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS digests").
		WillReturnError(sql.ErrConnDone)

	err = MigrateUp(db)
	assert.Error(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrateDown_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectExec("DROP TABLE IF EXISTS digests").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DROP TABLE IF EXISTS raw_articles").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = MigrateDown(db)
	assert.NoError(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}
