package executor

import (
	"context"
	"fmt"

	"github.com/satishbabariya/neodb/query/mapper"
	"github.com/satishbabariya/neodb/query/sqlgen"
)

// DefaultBulkSize is the smallest chunk InsertBulk writes per statement.
const DefaultBulkSize = 10

// Select compiles and reads a SELECT, projecting the rows by proj.
func (db *DB) Select(ctx context.Context, conds sqlgen.Conditions, more sqlgen.More, proj sqlgen.Projection) (*mapper.Result, error) {
	query, err := db.compiler.Select(conds, more, proj)
	if err != nil {
		return nil, err
	}
	return db.FetchArray(ctx, query, proj.Element, proj.Key)
}

// Insert compiles and writes an INSERT.
func (db *DB) Insert(ctx context.Context, table string, data sqlgen.Assignments) (Affected, error) {
	query, err := db.compiler.Insert(table, data)
	if err != nil {
		return None, err
	}
	return db.Write(ctx, query)
}

// Replace compiles and writes a REPLACE.
func (db *DB) Replace(ctx context.Context, table string, data sqlgen.Assignments) (Affected, error) {
	query, err := db.compiler.Replace(table, data)
	if err != nil {
		return None, err
	}
	return db.Write(ctx, query)
}

// Update compiles and writes an UPDATE.
func (db *DB) Update(ctx context.Context, table string, data sqlgen.Assignments, conds sqlgen.Conditions) (Affected, error) {
	query, err := db.compiler.Update(table, data, conds)
	if err != nil {
		return None, err
	}
	return db.Write(ctx, query)
}

// Delete compiles and writes a DELETE. Without conditions nothing is sent
// and the result is None.
func (db *DB) Delete(ctx context.Context, table string, conds sqlgen.Conditions) (Affected, error) {
	if conds.IsEmpty() {
		db.ClearBinds()
		return None, nil
	}

	query, err := db.compiler.Delete(table, conds)
	if err != nil {
		return None, err
	}
	return db.Write(ctx, query)
}

// InsertBulk inserts rows of values for columns in multi-row statements of
// at most max(size, DefaultBulkSize) rows each.
func (db *DB) InsertBulk(ctx context.Context, table string, columns []string, rows [][]interface{}, size int) (Affected, error) {
	if len(rows) == 0 {
		return None, nil
	}
	if size < DefaultBulkSize {
		size = DefaultBulkSize
	}

	for i, row := range rows {
		if len(row) != len(columns) {
			return None, fmt.Errorf("insert bulk: row %d has %d values for %d columns: %w",
				i, len(row), len(columns), sqlgen.ErrBindMismatch)
		}
	}

	total := None
	for start := 0; start < len(rows); start += size {
		end := start + size
		if end > len(rows) {
			end = len(rows)
		}
		chunk := rows[start:end]

		query, err := db.compiler.InsertBulk(table, columns, len(chunk))
		if err != nil {
			return total, err
		}

		db.ClearBinds()
		for _, row := range chunk {
			db.Bind(row...)
		}

		affected, err := db.Write(ctx, query)
		if err != nil {
			return total, err
		}
		total = total.Add(affected)
	}

	return total, nil
}
