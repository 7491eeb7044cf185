package cache

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/forgeline/dynsql/database"
	"github.com/forgeline/dynsql/utils"
)

func testDB(t *testing.T) database.Database {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	return database.NewSqlDatabase(db)
}

func TestGetOrPrepareCaches(t *testing.T) {
	db := testDB(t)
	c := NewStatementCache(4)
	defer c.Close()

	query := "SELECT ?"
	key := utils.FingerprintString(query)

	first, err := c.GetOrPrepare(context.Background(), key, db, query)
	require.NoError(t, err)
	second, err := c.GetOrPrepare(context.Background(), key, db, query)
	require.NoError(t, err)
	assert.Same(t, first, second)

	got, err := c.Get(key)
	require.NoError(t, err)
	assert.Same(t, first, got)
}

func TestGetMissingKey(t *testing.T) {
	c := NewStatementCache(4)
	defer c.Close()

	_, err := c.Get(utils.FingerprintString("never prepared"))
	assert.Error(t, err)
}

func TestEvictionClosesStatements(t *testing.T) {
	db := testDB(t)
	c := NewStatementCache(2)
	defer c.Close()

	queries := []string{"SELECT 1", "SELECT 2", "SELECT 3"}
	for _, q := range queries {
		_, err := c.GetOrPrepare(context.Background(), utils.FingerprintString(q), db, q)
		require.NoError(t, err)
	}

	// Oldest entry was evicted, the two newest survive.
	_, err := c.Get(utils.FingerprintString("SELECT 1"))
	assert.Error(t, err)
	_, err = c.Get(utils.FingerprintString("SELECT 3"))
	assert.NoError(t, err)
}

func TestPrepareErrorNotCached(t *testing.T) {
	db := testDB(t)
	c := NewStatementCache(4)
	defer c.Close()

	bad := "SELEKT nonsense"
	_, err := c.GetOrPrepare(context.Background(), utils.FingerprintString(bad), db, bad)
	require.Error(t, err)
	_, err = c.Get(utils.FingerprintString(bad))
	assert.Error(t, err)
}

func TestFingerprintStability(t *testing.T) {
	a := utils.FingerprintString("SELECT * FROM t WHERE a=?")
	b := utils.FingerprintString("SELECT * FROM t WHERE a=?")
	c2 := utils.FingerprintString("SELECT * FROM t WHERE b=?")
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c2)
}
