package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenSQLite(t *testing.T) {
	db, err := Open(DriverSQLite, filepath.Join(t.TempDir(), "eq.db"))
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	require.NoError(t, EnsureSchema(ctx, db))
	// running twice is a no-op
	require.NoError(t, EnsureSchema(ctx, db))

	var fk int
	require.NoError(t, db.Get(&fk, `PRAGMA foreign_keys`))
	assert.Equal(t, 1, fk)

	var tables []string
	require.NoError(t, db.Select(&tables, `SELECT name FROM sqlite_master WHERE type = 'table' AND name IN ('datasets', 'equipment') ORDER BY name`))
	assert.Equal(t, []string{"datasets", "equipment"}, tables)
}

func TestOpenUnknownDriver(t *testing.T) {
	_, err := Open("mysql", "whatever")
	assert.ErrorContains(t, err, "unsupported database driver")
}

func TestSQLiteUsesQuestionBinds(t *testing.T) {
	assert.Equal(t, sqlx.QUESTION, sqlx.BindType(DriverSQLite))
	assert.Equal(t, sqlx.DOLLAR, sqlx.BindType(DriverPostgres))
}
