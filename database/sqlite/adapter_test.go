package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/satishbabariya/neodb/database"
	"github.com/satishbabariya/neodb/database/pool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDSN(t *testing.T) {
	dsn := DSN(database.Endpoint{Path: "/tmp/app.db", Params: map[string]string{"cache": "shared"}})
	assert.Equal(t, "file:/tmp/app.db?_busy_timeout=5000&_foreign_keys=on&cache=shared", dsn)

	dsn = DSN(database.Endpoint{Path: "file::memory:"})
	assert.Equal(t, "file::memory:?_busy_timeout=5000&_foreign_keys=on", dsn)
}

func TestAdapter(t *testing.T) {
	ctx := context.Background()
	a := New(database.Endpoint{Path: ":memory:"}, pool.DefaultConfig(), nil)

	_, err := a.Execute(ctx, "SELECT 1")
	assert.ErrorIs(t, err, database.ErrNotConnected)
	_, err = a.Session(ctx)
	assert.ErrorIs(t, err, database.ErrNotConnected)

	require.NoError(t, a.Connect(ctx))
	defer a.Disconnect(ctx)

	assert.Equal(t, database.SQLite, a.Driver())
	require.NoError(t, a.Ping(ctx))

	_, err = a.Execute(ctx, "CREATE TABLE users (id INTEGER PRIMARY KEY, name TEXT UNIQUE)")
	require.NoError(t, err)

	t.Run("transaction", func(t *testing.T) {
		tx, err := a.Begin(ctx, nil)
		require.NoError(t, err)

		_, err = tx.Execute(ctx, "INSERT INTO users (name) VALUES (?)", "a")
		require.NoError(t, err)
		require.NoError(t, tx.Rollback())

		rows, err := a.Query(ctx, "SELECT COUNT(*) FROM users")
		require.NoError(t, err)
		defer rows.Close()

		var n int
		require.True(t, rows.Next())
		require.NoError(t, rows.Scan(&n))
		assert.Zero(t, n)
	})

	t.Run("session keeps connection state", func(t *testing.T) {
		s, err := a.Session(ctx)
		require.NoError(t, err)

		_, err = s.Execute(ctx, "CREATE TEMP TABLE scratch (v INTEGER)")
		require.NoError(t, err)
		_, err = s.Execute(ctx, "INSERT INTO scratch (v) VALUES (?)", 7)
		require.NoError(t, err)

		rows, err := s.Query(ctx, "SELECT v FROM scratch")
		require.NoError(t, err)
		var v int
		require.True(t, rows.Next())
		require.NoError(t, rows.Scan(&v))
		require.NoError(t, rows.Close())
		assert.Equal(t, 7, v)

		require.NoError(t, s.Close())
	})

	t.Run("error info", func(t *testing.T) {
		_, err := a.Execute(ctx, "INSERT INTO users (name) VALUES (?)", "dup")
		require.NoError(t, err)
		_, err = a.Execute(ctx, "INSERT INTO users (name) VALUES (?)", "dup")
		require.Error(t, err)

		code, state := a.ErrorInfo(err)
		assert.Equal(t, 2067, code) // SQLITE_CONSTRAINT_UNIQUE
		assert.NotEmpty(t, state)

		code, state = a.ErrorInfo(errors.New("plain"))
		assert.Zero(t, code)
		assert.Empty(t, state)
	})
}
