package sqlite

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sul-dlss/dor-services-app-sub001/internal/infrastructure/transaction"
)

const testDruid = "druid:bc123df4567"

func setupTestDB(t *testing.T) (*sql.DB, *transaction.SQLiteTransactionManager) {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "versions.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, transaction.NewSQLiteTransactionManager(db)
}
