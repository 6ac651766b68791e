package mapper

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProject(t *testing.T) {
	rows := []Row{
		{"id": int64(1), "name": "a"},
		{"id": int64(2), "name": "b"},
		{"id": int64(1), "name": "c"},
		{"id": int64(3)},
	}

	t.Run("key and element", func(t *testing.T) {
		pairs := Project(rows, "name", "id")
		require.Len(t, pairs, 2)
		assert.Equal(t, Pair{Key: int64(1), Value: "c"}, pairs[0])
		assert.Equal(t, Pair{Key: int64(2), Value: "b"}, pairs[1])
		assert.Equal(t, map[string]interface{}{"1": "c", "2": "b"}, pairs.Map())
	})

	t.Run("element only", func(t *testing.T) {
		pairs := Project(rows, "name", "")
		assert.Equal(t, []interface{}{0, 1, 2}, pairs.Keys())
		assert.Equal(t, []interface{}{"a", "b", "c"}, pairs.Values())
	})

	t.Run("key only", func(t *testing.T) {
		pairs := Project(rows, "", "id")
		require.Len(t, pairs, 3)
		assert.Equal(t, rows[2], pairs[0].Value)
		assert.Equal(t, int64(3), pairs[2].Key)
	})

	t.Run("neither", func(t *testing.T) {
		assert.Nil(t, Project(rows, "", ""))
	})
}

func TestScanTable(t *testing.T) {
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	defer db.Close()
	db.SetMaxOpenConns(1)

	ctx := context.Background()
	_, err = db.ExecContext(ctx, "CREATE TABLE t (id INTEGER, name TEXT, data BLOB)")
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, "INSERT INTO t VALUES (1, 'a', x'6869'), (2, NULL, NULL)")
	require.NoError(t, err)

	rows, err := db.QueryContext(ctx, "SELECT id, name, data FROM t ORDER BY id")
	require.NoError(t, err)
	defer rows.Close()

	columns, result, err := ScanTable(rows)
	require.NoError(t, err)

	assert.Equal(t, []string{"id", "name", "data"}, columns)
	require.Len(t, result, 2)
	assert.Equal(t, "hi", result[0]["data"])
	assert.Equal(t, "a", result[0].String("name"))
	assert.Nil(t, result[1]["name"])
	assert.Equal(t, "", result[1].String("name"))

	id, ok := result[1].Int64("id")
	assert.True(t, ok)
	assert.Equal(t, int64(2), id)
}

type user struct {
	ID      int64 `db:"id"`
	Name    string
	Score   *float64
	Active  bool
	Created time.Time `db:"created_at"`
	Skip    string    `db:"-"`
}

func TestDecode(t *testing.T) {
	row := Row{
		"id":         "7",
		"NAME":       "bob",
		"score":      "1.5",
		"active":     int64(1),
		"created_at": "2024-03-01 10:00:00",
		"skip":       "x",
	}

	var u user
	require.NoError(t, Decode(row, &u))

	assert.Equal(t, int64(7), u.ID)
	assert.Equal(t, "bob", u.Name)
	require.NotNil(t, u.Score)
	assert.Equal(t, 1.5, *u.Score)
	assert.True(t, u.Active)
	assert.Equal(t, 2024, u.Created.Year())
	assert.Empty(t, u.Skip)

	var users []*user
	require.NoError(t, DecodeAll([]Row{row, {"id": int64(8)}}, &users))
	require.Len(t, users, 2)
	assert.Equal(t, int64(8), users[1].ID)

	assert.Error(t, Decode(row, u))
	assert.Error(t, Decode(Row{"id": "x"}, &u))
}
