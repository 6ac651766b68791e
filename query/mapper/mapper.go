// Package mapper shapes *sql.Rows into rows, key/value pairs and structs.
package mapper

import (
	"database/sql"
	"fmt"
	"strconv"
)

// Row is one result row keyed by column name. []byte column values are
// converted to string.
type Row map[string]interface{}

// String returns the column as a string; NULL and missing columns are "".
func (r Row) String(col string) string {
	v, ok := r[col]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// Int64 returns the column as an int64.
func (r Row) Int64(col string) (int64, bool) {
	switch v := r[col].(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	case int32:
		return int64(v), true
	case uint64:
		return int64(v), true
	case float64:
		return int64(v), true
	case string:
		n, err := strconv.ParseInt(v, 10, 64)
		return n, err == nil
	}
	return 0, false
}

// ScanRows reads every remaining row. It does not close rows.
func ScanRows(rows *sql.Rows) ([]Row, error) {
	_, result, err := ScanTable(rows)
	return result, err
}

// ScanTable is ScanRows that also returns the column names in select order.
func ScanTable(rows *sql.Rows) ([]string, []Row, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get columns: %w", err)
	}

	var result []Row
	for rows.Next() {
		values := make([]interface{}, len(columns))
		valuePtrs := make([]interface{}, len(columns))
		for i := range values {
			valuePtrs[i] = &values[i]
		}

		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, nil, fmt.Errorf("failed to scan row: %w", err)
		}

		row := make(Row, len(columns))
		for i, col := range columns {
			if b, ok := values[i].([]byte); ok {
				row[col] = string(b)
			} else {
				row[col] = values[i]
			}
		}
		result = append(result, row)
	}

	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("failed to read rows: %w", err)
	}

	return columns, result, nil
}

// Pair is one key/value entry of a projected result.
type Pair struct {
	Key   interface{}
	Value interface{}
}

// Pairs is an ordered projection.
type Pairs []Pair

// Map returns the pairs as a lookup map keyed by the string form of Key.
func (p Pairs) Map() map[string]interface{} {
	m := make(map[string]interface{}, len(p))
	for _, pair := range p {
		m[fmt.Sprint(pair.Key)] = pair.Value
	}
	return m
}

// Keys returns the keys in order.
func (p Pairs) Keys() []interface{} {
	keys := make([]interface{}, len(p))
	for i, pair := range p {
		keys[i] = pair.Key
	}
	return keys
}

// Values returns the values in order.
func (p Pairs) Values() []interface{} {
	values := make([]interface{}, len(p))
	for i, pair := range p {
		values[i] = pair.Value
	}
	return values
}

// Project reshapes rows by an element column and a key column:
//
//	key only:     key value     -> full row
//	element only: row position  -> element value
//	both:         key value     -> element value
//
// With neither it returns nil. Rows without the element column are skipped.
// A repeated key overwrites the earlier pair in place. A row without the key
// column is keyed by its position.
func Project(rows []Row, element, key string) Pairs {
	if element == "" && key == "" {
		return nil
	}

	var (
		out   Pairs
		index = make(map[string]int)
	)

	for i, row := range rows {
		var value interface{} = row
		if element != "" {
			v, ok := row[element]
			if !ok {
				continue
			}
			value = v
		}

		var k interface{} = len(out)
		if key != "" {
			if kv, ok := row[key]; ok {
				k = kv
			} else {
				k = i
			}
		}

		ks := fmt.Sprint(k)
		if at, seen := index[ks]; seen {
			out[at].Value = value
			continue
		}
		index[ks] = len(out)
		out = append(out, Pair{Key: k, Value: value})
	}

	return out
}

// Result is a fetched result with its optional projection.
type Result struct {
	Columns []string
	Rows    []Row
	Pairs   Pairs
}
