package commands

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/satishbabariya/neodb/cli/internal/config"
	"github.com/satishbabariya/neodb/cli/internal/ui"
	"github.com/satishbabariya/neodb/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type harness struct {
	dir    string
	config string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	dir := t.TempDir()

	s := config.Default()
	s.Database = database.Config{
		Driver:  database.SQLite,
		Prefix:  "neo_",
		Primary: database.Endpoint{Path: filepath.Join(dir, "test.sqlite")},
	}
	s.Log.Level = "error"

	h := &harness{dir: dir, config: filepath.Join(dir, "neodb.yaml")}
	require.NoError(t, config.Save(h.config, s))
	return h
}

func (h *harness) run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	prev := ui.Out
	ui.Out = &out
	defer func() { ui.Out = prev }()

	cmd := NewRootCommand()
	cmd.SetArgs(append([]string{"--config", h.config}, args...))
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func (h *harness) file(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(h.dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestCompile(t *testing.T) {
	h := newHarness(t)
	doc := h.file(t, "select.yaml", `
table: users
conditions:
  "age >=": 18
  id: [1, 2]
more:
  orderby: id
`)

	out, err := h.run(t, "compile", doc)
	require.NoError(t, err)
	assert.Contains(t, out, "SELECT * FROM neo_users WHERE age >= ? AND id IN (?) ORDER BY id")
	assert.Contains(t, out, "integer[]")

	out, err = h.run(t, "compile", "--expand", doc)
	require.NoError(t, err)
	assert.Contains(t, out, "id IN (?, ?)")

	out, err = h.run(t, "compile", "--op", "delete", doc)
	require.NoError(t, err)
	assert.Contains(t, out, "DELETE FROM neo_users WHERE")

	_, err = h.run(t, "compile", filepath.Join(h.dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestDatabaseCommands(t *testing.T) {
	h := newHarness(t)

	_, err := h.run(t, "exec", "--sql", "CREATE TABLE neo_users (id INTEGER PRIMARY KEY AUTOINCREMENT, name TEXT, age INTEGER)")
	require.NoError(t, err)

	insert := h.file(t, "insert.yaml", "table: users\ndata: {name: alice, age: 30}\n")
	out, err := h.run(t, "exec", insert)
	require.NoError(t, err)
	assert.Contains(t, out, "insert id")

	out, err = h.run(t, "exec", "--sql", "INSERT INTO neo_users (name, age) VALUES (?, ?)", "-a", "bob", "-a", "25")
	require.NoError(t, err)
	assert.Contains(t, out, "changed(1)")

	query := h.file(t, "query.yaml", "table: users\nconditions: {\"age >\": 26}\n")
	out, err = h.run(t, "query", query)
	require.NoError(t, err)
	assert.Contains(t, out, "alice")
	assert.NotContains(t, out, "bob")
	assert.Contains(t, out, "1 rows")

	projected := h.file(t, "names.yaml", "table: users\nmore: {orderby: id}\nret: {e: name, k: id}\n")
	out, err = h.run(t, "query", projected)
	require.NoError(t, err)
	assert.Contains(t, out, "bob")

	_, err = h.run(t, "exec", query)
	assert.Error(t, err)

	out, err = h.run(t, "query", "--sql", "SELECT name FROM neo_users WHERE id = ?", "-a", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "bob")

	_, err = h.run(t, "query")
	assert.ErrorIs(t, err, errNoStatement)

	out, err = h.run(t, "describe", "neo_users")
	require.NoError(t, err)
	assert.Contains(t, out, "age")

	out, err = h.run(t, "show-create", "neo_users")
	require.NoError(t, err)
	assert.Contains(t, out, "CREATE TABLE neo_users")

	_, err = h.run(t, "show-create", "nope")
	assert.Error(t, err)

	out, err = h.run(t, "ping")
	require.NoError(t, err)
	assert.Contains(t, out, "sqlite")
	assert.Contains(t, out, "none")
}

func TestInit(t *testing.T) {
	h := newHarness(t)
	target := filepath.Join(h.dir, "new.yaml")

	_, err := h.run(t, "init", "--yes", "-o", target)
	require.NoError(t, err)

	s, err := config.Load(target)
	require.NoError(t, err)
	assert.Equal(t, database.MySQL, s.Database.Driver)

	_, err = h.run(t, "init", "--yes", "-o", target)
	assert.Error(t, err)

	_, err = h.run(t, "init", "--yes", "--force", "-o", target)
	assert.NoError(t, err)
}

func TestVersion(t *testing.T) {
	h := &harness{config: filepath.Join(t.TempDir(), "absent.yaml")}

	out, err := h.run(t, "version", "--latest", "99.0.0")
	require.NoError(t, err)
	assert.Contains(t, out, "A new version is available")
}
