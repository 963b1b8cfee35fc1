package migrate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationFilesSorted(t *testing.T) {
	files, err := migrationFiles()
	require.NoError(t, err)
	require.NotEmpty(t, files)
	assert.Equal(t, "0001_init.sql", files[0])
}

func TestInitMigrationDeclaresInflightIndex(t *testing.T) {
	b, err := migrationsFS.ReadFile("migrations/0001_init.sql")
	require.NoError(t, err)
	sql := string(b)
	assert.Contains(t, sql, "jobs_research_inflight_idx")
	assert.Contains(t, sql, "job_id             UUID UNIQUE")
	assert.Contains(t, sql, "CREATE TABLE IF NOT EXISTS search_logs")
}
