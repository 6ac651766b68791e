package executor

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/satishbabariya/neodb/database"
	"github.com/satishbabariya/neodb/database/pool"
	"github.com/satishbabariya/neodb/database/sqlite"
	"github.com/satishbabariya/neodb/query/querylog"
	"github.com/satishbabariya/neodb/query/sqlgen"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const usersDDL = `CREATE TABLE users (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	age INTEGER NOT NULL DEFAULT 0,
	deleted INTEGER NOT NULL DEFAULT 0
)`

type testEnv struct {
	db      *DB
	primary *sqlite.Adapter
	replica *sqlite.Adapter
	queries *querylog.Log
	logs    *bytes.Buffer
}

func connect(t *testing.T) *sqlite.Adapter {
	t.Helper()
	ctx := context.Background()

	a := sqlite.New(database.Endpoint{Path: ":memory:"}, pool.Config{}, nil)
	require.NoError(t, a.Connect(ctx))

	_, err := a.Execute(ctx, usersDDL)
	require.NoError(t, err)
	return a
}

func newTestEnv(t *testing.T, withReplica bool) *testEnv {
	t.Helper()

	env := &testEnv{
		primary: connect(t),
		queries: querylog.New(0),
		logs:    &bytes.Buffer{},
	}

	var replica database.Adapter
	if withReplica {
		env.replica = connect(t)
		replica = env.replica
		_, err := env.replica.Execute(context.Background(), "INSERT INTO users (name, age) VALUES ('replica', 1)")
		require.NoError(t, err)
	}

	db, err := New(env.primary, replica, sqlgen.NewCompiler(""),
		WithQueryLog(env.queries),
		WithLogger(slog.New(slog.NewJSONHandler(env.logs, nil))),
		WithRequest(RequestContext{ClientIP: "10.0.0.9", URI: "/users", Referer: "/home"}),
		WithClock(func() time.Time { return time.Unix(1700000000, 0) }),
	)
	require.NoError(t, err)

	env.db = db
	t.Cleanup(func() { _ = db.Close(context.Background()) })
	return env
}

func (env *testEnv) lastSQL(t *testing.T) string {
	t.Helper()
	last, ok := env.queries.Last()
	require.True(t, ok)
	return last.SQL
}

func names(t *testing.T, db *DB) []string {
	t.Helper()
	result, err := db.Select(context.Background(), nil, sqlgen.More{From: "users", OrderBy: "id"}, sqlgen.Projection{Element: "name"})
	require.NoError(t, err)

	var out []string
	for _, v := range result.Pairs.Values() {
		out = append(out, v.(string))
	}
	return out
}

func TestAffected(t *testing.T) {
	assert.True(t, FromDriver(0).IsUnchanged())
	assert.True(t, FromDriver(-1).IsNone())
	assert.True(t, FromDriver(5).IsChanged())
	assert.Equal(t, int64(5), FromDriver(5).Rows())

	assert.Equal(t, int64(math.MaxInt64), Unchanged.Legacy())
	assert.Equal(t, int64(0), None.Legacy())
	assert.Equal(t, int64(3), Changed(3).Legacy())

	assert.Equal(t, Changed(5), Changed(2).Add(Changed(3)))
	assert.Equal(t, Unchanged, None.Add(Unchanged))
	assert.Equal(t, None, None.Add(None))
	assert.Equal(t, "changed(2)", Changed(2).String())
}

func TestRouting(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, true)
	db := env.db

	_, err := db.Insert(ctx, "users", sqlgen.Set("name", "primary"))
	require.NoError(t, err)

	t.Run("reads go to the replica", func(t *testing.T) {
		assert.Equal(t, []string{"replica"}, names(t, db))
		assert.Equal(t, "SELECT name FROM users ORDER BY id", env.lastSQL(t))
	})

	t.Run("forced reads go to the primary with the hint", func(t *testing.T) {
		db.SetFromMaster(true)
		defer db.SetFromMaster(false)

		assert.Equal(t, []string{"primary"}, names(t, db))
		assert.Equal(t, "/*FORCE_MASTER*/ SELECT name FROM users ORDER BY id", env.lastSQL(t))
	})

	t.Run("without replica reads go to the primary unhinted", func(t *testing.T) {
		solo := newTestEnv(t, false)
		_, err := solo.db.Exec(ctx, "INSERT INTO users (name) VALUES (?)", "solo")
		require.NoError(t, err)

		assert.Equal(t, []string{"solo"}, names(t, solo.db))
		assert.Equal(t, "SELECT name FROM users ORDER BY id", solo.lastSQL(t))
	})
}

func TestTransaction(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, true)
	db := env.db

	t.Run("state machine", func(t *testing.T) {
		assert.NoError(t, db.Rollback())
		assert.ErrorIs(t, db.Commit(), ErrNoTransaction)

		require.NoError(t, db.BeginTransaction(ctx))
		assert.Equal(t, TxActive, db.State())
		assert.True(t, db.FromMaster())
		assert.ErrorIs(t, db.BeginTransaction(ctx), ErrTransactionActive)

		_, err := db.Insert(ctx, "users", sqlgen.Set("name", "pending"))
		require.NoError(t, err)

		assert.Equal(t, []string{"pending"}, names(t, db))
		assert.True(t, strings.HasPrefix(env.lastSQL(t), database.DefaultForceHint))

		require.NoError(t, db.Rollback())
		assert.Equal(t, TxIdle, db.State())
		assert.False(t, db.FromMaster())

		db.SetFromMaster(true)
		assert.Empty(t, names(t, db))
		db.SetFromMaster(false)
	})

	t.Run("helper commits", func(t *testing.T) {
		err := db.Transaction(ctx, func(tx *DB) error {
			_, err := tx.Insert(ctx, "users", sqlgen.Set("name", "committed"))
			return err
		})
		require.NoError(t, err)

		db.SetFromMaster(true)
		assert.Equal(t, []string{"committed"}, names(t, db))
		db.SetFromMaster(false)
	})

	t.Run("helper rolls back on error", func(t *testing.T) {
		boom := errors.New("boom")
		err := db.Transaction(ctx, func(tx *DB) error {
			_, err := tx.Insert(ctx, "users", sqlgen.Set("name", "discarded"))
			require.NoError(t, err)
			return boom
		})
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, TxIdle, db.State())

		db.SetFromMaster(true)
		assert.Equal(t, []string{"committed"}, names(t, db))
		db.SetFromMaster(false)
	})
}

func TestHalt(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, false)
	db := env.db

	require.NoError(t, db.BeginTransaction(ctx))
	_, err := db.Insert(ctx, "users", sqlgen.Set("name", "lost"))
	require.NoError(t, err)

	_, err = db.Exec(ctx, "INSERT INTO missing\n(x) VALUES (?)", 1)
	require.Error(t, err)

	var dbErr *DatabaseError
	require.True(t, errors.As(err, &dbErr))
	last, ok := env.queries.Last()
	require.True(t, ok)
	assert.NotEmpty(t, last.Error)

	assert.Equal(t, 1, dbErr.Code)
	assert.Equal(t, "INSERT INTO missing (x) VALUES (?)", dbErr.SQL)
	assert.Equal(t, "10.0.0.9", dbErr.ClientIP)
	assert.Equal(t, "/users", dbErr.URI)
	assert.Equal(t, "/home", dbErr.Referer)
	assert.Equal(t, int64(1700000000), dbErr.Time.Unix())
	assert.Contains(t, dbErr.Message, "no such table")

	assert.Equal(t, TxIdle, db.State())
	assert.Empty(t, names(t, db))

	logged := env.logs.String()
	assert.Equal(t, 1, strings.Count(logged, `"msg":"InvalidSQL"`))
	assert.Contains(t, logged, `"channel":"db"`)
	assert.Contains(t, logged, `"ip":"10.0.0.9"`)
}

func TestStatements(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, false)
	db := env.db

	affected, err := db.Insert(ctx, "users", sqlgen.Set("name", "a").Set("age", 30))
	require.NoError(t, err)
	assert.Equal(t, Changed(1), affected)
	assert.Equal(t, []interface{}{"a", 30}, db.Binds())
	assert.Equal(t, []sqlgen.ParamType{sqlgen.ParamString, sqlgen.ParamInteger}, db.BindTypes())

	id, err := db.LastInsertID()
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)

	_, err = db.Insert(ctx, "users", sqlgen.Set("name", "b").Set("age", 17))
	require.NoError(t, err)

	t.Run("select with conditions and projection", func(t *testing.T) {
		result, err := db.Select(ctx, sqlgen.Where("age >=", 18), sqlgen.More{From: "users"}, sqlgen.Projection{Element: "name", Key: "id"})
		require.NoError(t, err)
		assert.Equal(t, map[string]interface{}{"1": "a"}, result.Pairs.Map())
	})

	t.Run("in lists expand", func(t *testing.T) {
		result, err := db.Select(ctx, sqlgen.Where("id", []int{1, 2}), sqlgen.More{From: "users"}, sqlgen.Projection{})
		require.NoError(t, err)
		assert.Len(t, result.Rows, 2)
		assert.Equal(t, "SELECT * FROM users WHERE id IN (?, ?)", env.lastSQL(t))

		result, err = db.Select(ctx, sqlgen.Where("id IN", []int{}), sqlgen.More{From: "users"}, sqlgen.Projection{})
		require.NoError(t, err)
		assert.Empty(t, result.Rows)
		assert.Equal(t, "SELECT * FROM users WHERE id IN (NULL)", env.lastSQL(t))
	})

	t.Run("update", func(t *testing.T) {
		affected, err := db.Update(ctx, "users", sqlgen.Set("age", 31).Raw("deleted = deleted"), sqlgen.Where("id", 1))
		require.NoError(t, err)
		assert.Equal(t, Changed(1), affected)

		affected, err = db.Update(ctx, "users", sqlgen.Set("age", 1), sqlgen.Where("id", 99))
		require.NoError(t, err)
		assert.True(t, affected.IsUnchanged())
		assert.Equal(t, int64(math.MaxInt64), affected.Legacy())
	})

	t.Run("delete without conditions sends nothing", func(t *testing.T) {
		before := env.queries.Count()
		affected, err := db.Delete(ctx, "users", nil)
		require.NoError(t, err)
		assert.True(t, affected.IsNone())
		assert.Equal(t, before, env.queries.Count())
	})

	t.Run("delete", func(t *testing.T) {
		affected, err := db.Delete(ctx, "users", sqlgen.Where("name", "b"))
		require.NoError(t, err)
		assert.Equal(t, Changed(1), affected)
	})

	t.Run("fetch helpers", func(t *testing.T) {
		db.ClearBinds()
		db.Bind(1)
		row, err := db.FetchRow(ctx, "SELECT name, age FROM users WHERE id = ?")
		require.NoError(t, err)
		assert.Equal(t, "a", row["name"])

		db.ClearBinds()
		v, err := db.FetchOne(ctx, "SELECT COUNT(*) FROM users")
		require.NoError(t, err)
		assert.Equal(t, int64(1), v)

		row, err = db.FetchRow(ctx, "SELECT * FROM users WHERE id = 99")
		require.NoError(t, err)
		assert.Nil(t, row)
	})

	t.Run("compile errors do not reach the driver", func(t *testing.T) {
		before := env.queries.Count()
		_, err := db.Select(ctx, sqlgen.Where("age BETWEEN", 3), sqlgen.More{From: "users"}, sqlgen.Projection{})
		assert.ErrorIs(t, err, sqlgen.ErrInvalidBetween)
		assert.Equal(t, before, env.queries.Count())
		assert.Empty(t, env.logs.String())
	})
}

func TestLikeMatchesWildcardsLiterally(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, false)
	db := env.db

	for _, name := range []string{"foo_bar", "fooXbar", "100%", "1000"} {
		_, err := db.Insert(ctx, "users", sqlgen.Set("name", name))
		require.NoError(t, err)
	}

	find := func(pattern string) []interface{} {
		t.Helper()
		result, err := db.Select(ctx, sqlgen.Where("name LIKE", pattern), sqlgen.More{From: "users", OrderBy: "id"}, sqlgen.Projection{Element: "name"})
		require.NoError(t, err)
		return result.Pairs.Values()
	}

	assert.Equal(t, []interface{}{"foo_bar"}, find("foo_bar"))
	assert.Equal(t, []interface{}{"foo_bar"}, find("o_b"))
	assert.Equal(t, []interface{}{"foo_bar", "fooXbar"}, find("bar"))
	assert.Equal(t, []interface{}{"100%"}, find("%0%%"))
	assert.Contains(t, env.lastSQL(t), `name LIKE ? ESCAPE '\'`)
}

func TestInsertBulk(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, false)

	rows := make([][]interface{}, 25)
	for i := range rows {
		rows[i] = []interface{}{"u", i}
	}

	affected, err := env.db.InsertBulk(ctx, "users", []string{"name", "age"}, rows, 5)
	require.NoError(t, err)
	assert.Equal(t, Changed(25), affected)
	assert.Equal(t, 3, env.queries.Count())

	env.db.ClearBinds()
	v, err := env.db.FetchOne(ctx, "SELECT COUNT(*) FROM users")
	require.NoError(t, err)
	assert.Equal(t, int64(25), v)

	_, err = env.db.InsertBulk(ctx, "users", []string{"name", "age"}, [][]interface{}{{"x"}}, 0)
	assert.ErrorIs(t, err, sqlgen.ErrBindMismatch)
}

func TestAdmin(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, false)
	db := env.db

	_, err := db.Insert(ctx, "users", sqlgen.Set("name", "a"))
	require.NoError(t, err)

	columns, err := db.Describe(ctx, "users")
	require.NoError(t, err)
	require.Len(t, columns.Rows, 4)
	assert.Equal(t, "id", columns.Rows[0]["name"])

	ddl, err := db.ShowCreateTable(ctx, "users")
	require.NoError(t, err)
	assert.Contains(t, ddl, "CREATE TABLE users")

	ddl, err = db.ShowCreateTable(ctx, "nope")
	require.NoError(t, err)
	assert.Empty(t, ddl)

	plan, err := db.Explain(ctx, "SELECT * FROM users WHERE id = ?", 1)
	require.NoError(t, err)
	assert.NotEmpty(t, plan.Rows)

	v, err := db.CheckServerVersion(ctx)
	require.NoError(t, err)
	assert.True(t, v.GreaterThanOrEqual(db.Dialect().MinVersion()))

	_, err = db.FoundRows(ctx)
	assert.ErrorIs(t, err, sqlgen.ErrUnsupported)

	require.NoError(t, db.Truncate(ctx, "users"))
	n, err := db.FetchOne(ctx, "SELECT COUNT(*) FROM users")
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

type countingDialect struct {
	sqlgen.SQLiteDialect
}

func (countingDialect) FoundRows() string { return "SELECT COUNT(*) FROM users" }

func TestFetchArrayFoundRows(t *testing.T) {
	ctx := context.Background()

	t.Run("unsupported on sqlite", func(t *testing.T) {
		env := newTestEnv(t, false)
		before := env.queries.Count()
		_, _, err := env.db.FetchArrayFoundRows(ctx, "SELECT * FROM users", "", "")
		assert.ErrorIs(t, err, sqlgen.ErrUnsupported)
		assert.Equal(t, before, env.queries.Count())
	})

	t.Run("select and count share a session", func(t *testing.T) {
		db, err := New(connect(t), nil, sqlgen.NewCompiler(""), WithDialect(countingDialect{}))
		require.NoError(t, err)
		defer db.Close(ctx)

		for _, name := range []string{"a", "b", "c"} {
			_, err := db.Insert(ctx, "users", sqlgen.Set("name", name))
			require.NoError(t, err)
		}

		query, err := db.Compiler().Select(nil, sqlgen.More{From: "users", OrderBy: "id", Limit: sqlgen.LimitCount(2)}, sqlgen.Projection{Element: "name"})
		require.NoError(t, err)

		result, total, err := db.FetchArrayFoundRows(ctx, query, "name", "")
		require.NoError(t, err)
		assert.Equal(t, []interface{}{"a", "b"}, result.Pairs.Values())
		assert.Equal(t, int64(3), total)

		// the reserved connection went back to the pool
		n, err := db.FetchOne(ctx, "SELECT COUNT(*) FROM users")
		require.NoError(t, err)
		assert.Equal(t, int64(3), n)
	})
}

func TestClose(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, true)

	require.NoError(t, env.db.BeginTransaction(ctx))
	require.NoError(t, env.db.Close(ctx))

	assert.Equal(t, TxIdle, env.db.State())
	_, err := env.db.Exec(ctx, "SELECT 1")
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, env.primary.Ping(ctx), database.ErrNotConnected)
}
