package executor

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-version"
	"github.com/satishbabariya/neodb/database"
	"github.com/satishbabariya/neodb/query/mapper"
	"github.com/satishbabariya/neodb/query/sqlgen"
)

// LastInsertID returns the id generated by the last write.
func (db *DB) LastInsertID() (int64, error) {
	if db.lastResult == nil {
		return 0, ErrNoResult
	}
	return db.lastResult.LastInsertId()
}

// FoundRows returns the row count of the last SQL_CALC_FOUND_ROWS select.
// It reads from the same place the select did. Outside a transaction the
// pool may hand it a different connection than the select had; use
// FetchArrayFoundRows there.
func (db *DB) FoundRows(ctx context.Context) (int64, error) {
	query := db.dialect.FoundRows()
	if query == "" {
		return 0, fmt.Errorf("found rows: %w", sqlgen.ErrUnsupported)
	}

	db.ClearBinds()
	v, err := db.FetchOne(ctx, query)
	if err != nil {
		return 0, err
	}
	n, _ := mapper.Row{"n": v}.Int64("n")
	return n, nil
}

// FetchArrayFoundRows runs a SQL_CALC_FOUND_ROWS select like FetchArray and
// reads FOUND_ROWS() on the same connection.
func (db *DB) FetchArrayFoundRows(ctx context.Context, query, element, key string) (*mapper.Result, int64, error) {
	found := db.dialect.FoundRows()
	if found == "" {
		return nil, 0, fmt.Errorf("found rows: %w", sqlgen.ErrUnsupported)
	}
	if db.closed {
		return nil, 0, ErrClosed
	}

	target, hinted := db.reader()
	if adapter, ok := target.(database.Adapter); ok {
		session, err := adapter.Session(ctx)
		if err != nil {
			return nil, 0, db.halt(err, query)
		}
		defer session.Close()
		target = session
	}

	rows, err := db.readOn(ctx, target, hinted, query)
	if err != nil {
		return nil, 0, err
	}
	result, err := collect(rows, element, key)
	if err != nil {
		return nil, 0, err
	}

	db.ClearBinds()
	rows, err = db.readOn(ctx, target, hinted, found)
	if err != nil {
		return nil, 0, err
	}
	count, err := collect(rows, "", "")
	if err != nil {
		return nil, 0, err
	}

	var n int64
	if len(count.Rows) > 0 && len(count.Columns) > 0 {
		n, _ = count.Rows[0].Int64(count.Columns[0])
	}
	return result, n, nil
}

// Truncate empties table. SQLite has no TRUNCATE and runs DELETE FROM.
func (db *DB) Truncate(ctx context.Context, table string) error {
	db.ClearBinds()
	_, err := db.Write(ctx, db.dialect.Truncate(sqlgen.StripTags(table)))
	return err
}

// Describe returns the column definitions of table, one row per column.
func (db *DB) Describe(ctx context.Context, table string) (*mapper.Result, error) {
	db.ClearBinds()
	return db.FetchArray(ctx, db.dialect.Describe(sqlgen.StripTags(table)), "", "")
}

// Explain returns the query plan of query bound to args.
func (db *DB) Explain(ctx context.Context, query string, args ...interface{}) (*mapper.Result, error) {
	db.ClearBinds()
	db.Bind(args...)
	return db.FetchArray(ctx, db.dialect.Explain(query), "", "")
}

// ShowCreateTable returns the DDL of table, or "" when it does not exist.
func (db *DB) ShowCreateTable(ctx context.Context, table string) (string, error) {
	var server *version.Version
	if db.dialect.Name() == "sqlite" {
		raw, err := db.ServerVersion(ctx)
		if err != nil {
			return "", err
		}
		server, _ = sqlgen.ParseServerVersion(raw)
	}

	query, args, column := db.dialect.ShowCreate(sqlgen.StripTags(table), server)

	db.ClearBinds()
	db.Bind(args...)
	row, err := db.FetchRow(ctx, query)
	if err != nil || row == nil {
		return "", err
	}
	return row.String(column), nil
}

// ServerVersion returns the version string reported by the server.
func (db *DB) ServerVersion(ctx context.Context) (string, error) {
	db.ClearBinds()
	v, err := db.FetchOne(ctx, db.dialect.ServerVersion())
	if err != nil {
		return "", err
	}
	return mapper.Row{"v": v}.String("v"), nil
}

// CheckServerVersion reports an error when the server is older than the
// dialect supports.
func (db *DB) CheckServerVersion(ctx context.Context) (*version.Version, error) {
	raw, err := db.ServerVersion(ctx)
	if err != nil {
		return nil, err
	}
	v, err := sqlgen.ParseServerVersion(raw)
	if err != nil {
		return nil, err
	}
	if v.LessThan(db.dialect.MinVersion()) {
		return v, fmt.Errorf("server version %s is older than %s", v, db.dialect.MinVersion())
	}
	return v, nil
}
