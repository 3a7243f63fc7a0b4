package sqlite

import (
	"database/sql"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigration_NewDatabase(t *testing.T) {
	db, err := sql.Open("sqlite3", filepath.Join(t.TempDir(), "new.db"))
	require.NoError(t, err)
	defer db.Close()

	migrator := NewMigrator(db)
	require.NoError(t, migrator.Migrate())

	version, err := migrator.Version()
	require.NoError(t, err)
	assert.Equal(t, 1, version)

	for _, table := range []string{"objects", "version_records", "workflow_instances", "workflow_steps", "preserved_versions", "events"} {
		var name string
		err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		assert.NoError(t, err, "table %s should exist", table)
	}
}

func TestMigration_Idempotent(t *testing.T) {
	db, err := sql.Open("sqlite3", filepath.Join(t.TempDir(), "again.db"))
	require.NoError(t, err)
	defer db.Close()

	migrator := NewMigrator(db)
	require.NoError(t, migrator.Migrate())
	require.NoError(t, migrator.Migrate())

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count))
	assert.Equal(t, 1, count)
}

func TestMigration_VersionBeforeMigrate(t *testing.T) {
	db, err := sql.Open("sqlite3", filepath.Join(t.TempDir(), "empty.db"))
	require.NoError(t, err)
	defer db.Close()

	migrator := NewMigrator(db)
	require.NoError(t, migrator.ensureMigrationsTable())
	version, err := migrator.Version()
	require.NoError(t, err)
	assert.Equal(t, 0, version)
}

func TestSplitSQLStatements(t *testing.T) {
	stmts := splitSQLStatements(`
-- heading
CREATE TABLE a (id INTEGER);
  -- indented comment
CREATE INDEX idx_a ON a(id);
`)
	assert.Equal(t, []string{"CREATE TABLE a (id INTEGER)", "CREATE INDEX idx_a ON a(id)"}, stmts)
}
