package ui

import (
	"bytes"
	"testing"

	"github.com/satishbabariya/neodb/query/mapper"
	"github.com/satishbabariya/neodb/query/sqlgen"
	"github.com/stretchr/testify/assert"
)

func TestResultRows(t *testing.T) {
	result := &mapper.Result{
		Columns: []string{"id", "name"},
		Rows: []mapper.Row{
			{"id": int64(1), "name": "a|b"},
			{"id": int64(2), "name": nil},
		},
	}

	assert.Equal(t, [][]string{{"1", "a|b"}, {"2", "NULL"}}, ResultRows(result))
	assert.Equal(t, "| id | name |\n| --- | --- |\n| 1 | a\\|b |\n| 2 | NULL |\n", MarkdownTable(result))
	assert.Equal(t, "_no rows_\n", MarkdownTable(&mapper.Result{}))
}

func TestColumnsWithoutOrder(t *testing.T) {
	result := &mapper.Result{Rows: []mapper.Row{{"b": 2, "a": 1}}}
	assert.Equal(t, [][]string{{"1", "2"}}, ResultRows(result))
}

func TestPrinters(t *testing.T) {
	var buf bytes.Buffer
	prev := Out
	Out = &buf
	t.Cleanup(func() { Out = prev })

	PrintBinds(nil, nil)
	assert.Contains(t, buf.String(), "no binds")

	buf.Reset()
	PrintKV([][2]string{{"driver", "sqlite"}, {"replica", "none"}})
	assert.Contains(t, buf.String(), "sqlite")
	assert.Contains(t, buf.String(), "none")

	buf.Reset()
	PrintResult(&mapper.Result{})
	assert.Contains(t, buf.String(), "(no rows)")

	buf.Reset()
	PrintBinds([]interface{}{1, "x"}, []sqlgen.ParamType{sqlgen.ParamInteger, sqlgen.ParamString})
	assert.Contains(t, buf.String(), "x")
}
