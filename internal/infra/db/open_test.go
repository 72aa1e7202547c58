package db

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestDefaultConnectionConfig(t *testing.T) {
	cfg := DefaultConnectionConfig()

	assert.Equal(t, 25, cfg.MaxOpenConns)
	assert.Equal(t, 10, cfg.MaxIdleConns)
	assert.Equal(t, 1*time.Hour, cfg.ConnMaxLifetime)
	assert.Equal(t, 30*time.Minute, cfg.ConnMaxIdleTime)
}

func TestGetConnectionConfigFromEnv_Defaults(t *testing.T) {
	cfg := getConnectionConfigFromEnv()

	assert.Equal(t, 25, cfg.MaxOpenConns)
	assert.Equal(t, 10, cfg.MaxIdleConns)
	assert.Equal(t, 1*time.Hour, cfg.ConnMaxLifetime)
	assert.Equal(t, 30*time.Minute, cfg.ConnMaxIdleTime)
}

func TestGetConnectionConfigFromEnv_Overrides(t *testing.T) {
	t.Setenv("DB_MAX_OPEN_CONNS", "50")
	t.Setenv("DB_MAX_IDLE_CONNS", "20")
	t.Setenv("DB_CONN_MAX_LIFETIME", "2h")
	t.Setenv("DB_CONN_MAX_IDLE_TIME", "15m")

	cfg := getConnectionConfigFromEnv()

	assert.Equal(t, 50, cfg.MaxOpenConns)
	assert.Equal(t, 20, cfg.MaxIdleConns)
	assert.Equal(t, 2*time.Hour, cfg.ConnMaxLifetime)
	assert.Equal(t, 15*time.Minute, cfg.ConnMaxIdleTime)
}

func TestGetConnectionConfigFromEnv_InvalidValuesIgnored(t *testing.T) {
	t.Setenv("DB_MAX_OPEN_CONNS", "not a number")
	t.Setenv("DB_MAX_IDLE_CONNS", "-5")
	t.Setenv("DB_CONN_MAX_LIFETIME", "forever")

	cfg := getConnectionConfigFromEnv()

	assert.Equal(t, 25, cfg.MaxOpenConns)
	assert.Equal(t, 10, cfg.MaxIdleConns)
	assert.Equal(t, 1*time.Hour, cfg.ConnMaxLifetime)
}

func TestOpen_EmptyDSN(t *testing.T) {
	_, err := Open("", discardLogger())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL not set")
}
