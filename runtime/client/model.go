package client

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/satishbabariya/neodb/query/executor"
	"github.com/satishbabariya/neodb/query/mapper"
	"github.com/satishbabariya/neodb/query/sqlgen"
)

// DeletedAtNow as a deleted value stores the current unix time in the flag
// column.
const DeletedAtNow = "time"

// Model binds the handle to one table with its key and soft delete columns.
// Integer results of writes follow the legacy affected-rows encoding: no
// change is math.MaxInt64 and an unknown count is 0.
type Model struct {
	client *Client
	now    func() time.Time

	Table         string
	TableID       string
	DeletedFlag   string
	DeletedValue  interface{}
	HasPrimaryKey bool
}

// ModelOption configures a Model
type ModelOption func(*Model)

// WithTableID sets the key column, "id" by default
func WithTableID(column string) ModelOption {
	return func(m *Model) {
		m.TableID = column
	}
}

// WithSoftDelete sets the flag column and the value a soft delete writes.
// DeletedAtNow writes the current unix time.
func WithSoftDelete(flag string, value interface{}) ModelOption {
	return func(m *Model) {
		m.DeletedFlag = flag
		m.DeletedValue = value
	}
}

// WithoutPrimaryKey makes Insert return the affected rows instead of the
// last insert id
func WithoutPrimaryKey() ModelOption {
	return func(m *Model) {
		m.HasPrimaryKey = false
	}
}

// WithModelClock sets the clock used for DeletedAtNow
func WithModelClock(now func() time.Time) ModelOption {
	return func(m *Model) {
		m.now = now
	}
}

// NewModel returns a model for table
func NewModel(c *Client, table string, opts ...ModelOption) *Model {
	m := &Model{
		client:        c,
		now:           time.Now,
		Table:         table,
		TableID:       "id",
		DeletedFlag:   "deleted",
		DeletedValue:  1,
		HasPrimaryKey: true,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Model) db() *executor.DB {
	return m.client.db
}

// from fills the default FROM clause "table AS table"
func (m *Model) from(more sqlgen.More) sqlgen.More {
	if more.From == "" {
		more.From = m.Table + " AS " + m.Table
	}
	return more
}

// SelectSQL builds the SELECT the read helpers run, leaving the binds on
// the handle.
func (m *Model) SelectSQL(conds sqlgen.Conditions, more sqlgen.More, proj sqlgen.Projection) (string, error) {
	return m.db().Compiler().Select(conds, m.from(more), proj)
}

// Rows selects the matching rows. Pairs are keyed by proj.Key, by row
// index when proj.Positional is set, or else by the key column.
func (m *Model) Rows(ctx context.Context, conds sqlgen.Conditions, more sqlgen.More, proj sqlgen.Projection) (*mapper.Result, error) {
	if proj.Key == "" && !proj.Positional {
		proj.Key = m.TableID
	}

	var result *mapper.Result
	err := m.client.intercept(ctx, "rows", m.Table, func() error {
		var err error
		result, err = m.db().Select(ctx, conds, m.from(more), proj)
		return err
	})
	return result, err
}

// RowsInto selects the matching rows and decodes them into the slice dest
// points to. Columns match fields by `db` tag or lower-cased name.
func (m *Model) RowsInto(ctx context.Context, conds sqlgen.Conditions, more sqlgen.More, dest interface{}) error {
	return m.client.intercept(ctx, "rows", m.Table, func() error {
		result, err := m.db().Select(ctx, conds, m.from(more), sqlgen.Projection{})
		if err != nil {
			return err
		}
		return mapper.DecodeAll(result.Rows, dest)
	})
}

// Row returns the first matching row, or nil when there is none
func (m *Model) Row(ctx context.Context, conds sqlgen.Conditions, more sqlgen.More) (mapper.Row, error) {
	var row mapper.Row
	err := m.client.intercept(ctx, "row", m.Table, func() error {
		more.Limit = sqlgen.LimitCount(1)
		query, err := m.SelectSQL(conds, more, sqlgen.Projection{})
		if err != nil {
			return err
		}
		row, err = m.db().FetchRow(ctx, query)
		return err
	})
	return row, err
}

// Field returns the column field of the first matching row, or nil
func (m *Model) Field(ctx context.Context, conds sqlgen.Conditions, more sqlgen.More, field string) (interface{}, error) {
	more.Fields = field
	row, err := m.Row(ctx, conds, more)
	if err != nil || row == nil {
		return nil, err
	}
	return row[field], nil
}

// Get returns the row whose key column equals id
func (m *Model) Get(ctx context.Context, id interface{}) (mapper.Row, error) {
	return m.Row(ctx, sqlgen.Where(m.TableID, id), sqlgen.More{})
}

// GetInto decodes the row whose key column equals id into the struct dest
// points to. It reports false when there is no such row.
func (m *Model) GetInto(ctx context.Context, id interface{}, dest interface{}) (bool, error) {
	row, err := m.Get(ctx, id)
	if err != nil || row == nil {
		return false, err
	}
	return true, mapper.Decode(row, dest)
}

// Value returns the first column of the first matching row, or nil
func (m *Model) Value(ctx context.Context, conds sqlgen.Conditions, more sqlgen.More) (interface{}, error) {
	var value interface{}
	err := m.client.intercept(ctx, "value", m.Table, func() error {
		more.Limit = sqlgen.LimitCount(1)
		query, err := m.SelectSQL(conds, more, sqlgen.Projection{})
		if err != nil {
			return err
		}
		value, err = m.db().FetchOne(ctx, query)
		return err
	})
	return value, err
}

// Latest returns the matching row with the highest key
func (m *Model) Latest(ctx context.Context, conds sqlgen.Conditions) (mapper.Row, error) {
	return m.Row(ctx, conds, sqlgen.More{OrderBy: m.TableID + " DESC"})
}

// Max returns MAX(field) as a string, "" when there are no rows. An empty
// field means the key column.
func (m *Model) Max(ctx context.Context, field string, conds sqlgen.Conditions) (string, error) {
	if field == "" {
		field = m.TableID
	}
	v, err := m.aggregate(ctx, "max", "MAX("+field+")", conds, "")
	if err != nil || v == nil {
		return "", err
	}
	return fmt.Sprint(v), nil
}

// Sum returns SUM(field). With groupBy it is the sum of the first group.
func (m *Model) Sum(ctx context.Context, field string, conds sqlgen.Conditions, groupBy string) (int64, error) {
	v, err := m.aggregate(ctx, "sum", "SUM("+field+")", conds, groupBy)
	if err != nil {
		return 0, err
	}
	return toInt64(v), nil
}

// Total returns COUNT(field). An empty field counts rows.
func (m *Model) Total(ctx context.Context, conds sqlgen.Conditions, field string) (int64, error) {
	if field == "" {
		field = "*"
	}
	v, err := m.aggregate(ctx, "total", "COUNT("+field+")", conds, "")
	if err != nil {
		return 0, err
	}
	return toInt64(v), nil
}

func (m *Model) aggregate(ctx context.Context, op, expr string, conds sqlgen.Conditions, groupBy string) (interface{}, error) {
	var value interface{}
	err := m.client.intercept(ctx, op, m.Table, func() error {
		more := sqlgen.More{Fields: expr, GroupBy: groupBy, Limit: sqlgen.LimitCount(1)}
		query, err := m.SelectSQL(conds, more, sqlgen.Projection{})
		if err != nil {
			return err
		}
		value, err = m.db().FetchOne(ctx, query)
		return err
	})
	return value, err
}

// Save inserts data when it carries no key and no conditions are given,
// and updates otherwise. An empty key in data is dropped. A key in data
// without conditions becomes the condition. Empty data saves nothing and
// returns 0.
func (m *Model) Save(ctx context.Context, data sqlgen.Assignments, conds sqlgen.Conditions) (int64, error) {
	if len(data) == 0 {
		return 0, nil
	}

	id, hasID := data.Get(m.TableID)
	if hasID && isEmptyID(id) {
		data = data.Without(m.TableID)
		hasID = false
	}

	switch {
	case !hasID && conds.IsEmpty():
		return m.Insert(ctx, data)
	case hasID && conds.IsEmpty():
		return m.Update(ctx, data.Without(m.TableID), sqlgen.Where(m.TableID, id))
	}
	return m.Update(ctx, data, conds)
}

// Insert writes data and returns the last insert id, or the affected rows
// for tables without a primary key.
func (m *Model) Insert(ctx context.Context, data sqlgen.Assignments) (int64, error) {
	var n int64
	err := m.client.intercept(ctx, "insert", m.Table, func() error {
		affected, err := m.db().Insert(ctx, m.Table, data)
		if err != nil {
			return err
		}
		if !m.HasPrimaryKey {
			n = affected.Legacy()
			return nil
		}
		n, err = m.db().LastInsertID()
		return err
	})
	return n, err
}

// Update writes data to the matching rows
func (m *Model) Update(ctx context.Context, data sqlgen.Assignments, conds sqlgen.Conditions) (int64, error) {
	var n int64
	err := m.client.intercept(ctx, "update", m.Table, func() error {
		affected, err := m.db().Update(ctx, m.Table, data, conds)
		n = affected.Legacy()
		return err
	})
	return n, err
}

// Delete removes the matching rows, or flags them when soft is set. Empty
// conditions delete nothing and return 0.
func (m *Model) Delete(ctx context.Context, conds sqlgen.Conditions, soft bool) (int64, error) {
	if conds.IsEmpty() {
		return 0, nil
	}

	if soft {
		return m.Update(ctx, sqlgen.Set(m.DeletedFlag, m.deletedValue()), conds)
	}

	var n int64
	err := m.client.intercept(ctx, "delete", m.Table, func() error {
		affected, err := m.db().Delete(ctx, m.Table, conds)
		n = affected.Legacy()
		return err
	})
	return n, err
}

// DeleteItem deletes the row whose key column equals id
func (m *Model) DeleteItem(ctx context.Context, id interface{}, soft bool) (int64, error) {
	return m.Delete(ctx, sqlgen.Where(m.TableID, id), soft)
}

func (m *Model) deletedValue() interface{} {
	if s, ok := m.DeletedValue.(string); ok && s == DeletedAtNow {
		return m.now().Unix()
	}
	return m.DeletedValue
}

// BeginTransaction starts a transaction on the handle
func (m *Model) BeginTransaction(ctx context.Context) error {
	return m.db().BeginTransaction(ctx)
}

// Commit commits the handle's transaction
func (m *Model) Commit() error {
	return m.db().Commit()
}

// Rollback rolls back the handle's transaction
func (m *Model) Rollback() error {
	return m.db().Rollback()
}

func isEmptyID(v interface{}) bool {
	switch id := v.(type) {
	case nil:
		return true
	case string:
		return id == "" || id == "0"
	case int:
		return id == 0
	case int64:
		return id == 0
	}
	return false
}

func toInt64(v interface{}) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case float64:
		return int64(n)
	case string:
		i, _ := strconv.ParseInt(n, 10, 64)
		if i == 0 {
			f, _ := strconv.ParseFloat(n, 64)
			return int64(f)
		}
		return i
	}
	return 0
}
