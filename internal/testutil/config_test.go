package testutil

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTestDBConfig(t *testing.T) {
	for _, key := range []string{"TEST_DB_HOST", "TEST_DB_PORT", "TEST_DB_USER", "TEST_DB_PASSWORD", "TEST_DB_NAME", "DB_SSL_MODE"} {
		t.Setenv(key, "")
	}

	cfg := DefaultTestDBConfig()
	assert.Equal(t, TestDBConfig{
		Host:     "localhost",
		Port:     "55432",
		User:     "enrich",
		Password: "enrich",
		DBName:   "enrich_test",
		SSLMode:  "disable",
	}, cfg)

	t.Setenv("TEST_DB_HOST", "postgres")
	t.Setenv("TEST_DB_PORT", "5432")
	cfg = DefaultTestDBConfig()
	assert.Equal(t, "postgres", cfg.Host)
	assert.Equal(t, "5432", cfg.Port)
}

func TestTestDBConfigDSN(t *testing.T) {
	cfg := TestDBConfig{Host: "db", Port: "5432", User: "u", Password: "p@ss", DBName: "enrich", SSLMode: "disable"}

	u, err := url.Parse(cfg.DSN(""))
	require.NoError(t, err)
	assert.Equal(t, "db:5432", u.Host)
	pw, _ := u.User.Password()
	assert.Equal(t, "p@ss", pw)
	assert.Empty(t, u.Query().Get("search_path"))

	u, err = url.Parse(cfg.DSN("t_abcd"))
	require.NoError(t, err)
	assert.Equal(t, "t_abcd,public", u.Query().Get("search_path"))
}

func TestSchemaName(t *testing.T) {
	assert.Regexp(t, `^t_[0-9a-f]{8}$`, schemaName())
}
