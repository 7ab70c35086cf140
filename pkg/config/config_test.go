package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "database.xlsx", cfg.Workbook.Path)
	assert.Equal(t, "inbox", cfg.Inbox.Dir)
	assert.Equal(t, 4, cfg.Inbox.Workers)
	assert.False(t, cfg.Database.Enabled)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("WORKBOOK_PATH", "/data/out.xlsx")
	t.Setenv("INBOX_WORKERS", "8")
	t.Setenv("POSTGRES_ENABLED", "true")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "/data/out.xlsx", cfg.Workbook.Path)
	assert.Equal(t, 8, cfg.Inbox.Workers)
	assert.True(t, cfg.Database.Enabled)
}

func TestLoadRejectsBadWorkers(t *testing.T) {
	t.Setenv("INBOX_WORKERS", "0")
	_, err := Load()
	require.Error(t, err)
}

func TestDatabaseDSN(t *testing.T) {
	c := DatabaseConfig{
		Host: "db", Port: 5432, User: "u", Password: "p",
		Database: "termsheets", SSLMode: "disable",
	}
	assert.Equal(t,
		"host=db port=5432 user=u password=p dbname=termsheets sslmode=disable",
		c.DSN())
}
