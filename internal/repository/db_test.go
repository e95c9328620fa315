package repository

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewDB_CreatesDirectoryAndSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "planner.db")

	db, err := NewDB(path, zap.NewNop())
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	defer sqlDB.Close()

	_, err = os.Stat(path)
	assert.NoError(t, err, "database file was not created")

	for _, table := range []string{"users", "tasks", "task_assignees", "occurrences", "completions", "absence_periods"} {
		assert.True(t, db.Migrator().HasTable(table), "missing table %s", table)
	}
	assert.True(t, db.Migrator().HasIndex("occurrences", "idx_occurrence_task_date"))
}

func TestNewDB_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "planner.db")
	for i := 0; i < 3; i++ {
		db, err := NewDB(path, nil)
		require.NoError(t, err, "iteration %d", i)
		sqlDB, err := db.DB()
		require.NoError(t, err)
		sqlDB.Close()
	}
}

func TestWithBusyTimeout(t *testing.T) {
	assert.Equal(t, "a.db?_busy_timeout=5000", withBusyTimeout("a.db"))
	assert.Equal(t, "file:a.db?cache=shared&_busy_timeout=5000", withBusyTimeout("file:a.db?cache=shared"))
	assert.Equal(t, "a.db?_busy_timeout=100", withBusyTimeout("a.db?_busy_timeout=100"))
}
