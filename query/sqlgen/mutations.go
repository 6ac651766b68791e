package sqlgen

import (
	"fmt"
	"strings"
)

// Insert resets the binds and builds
// INSERT INTO <table> (a, b) VALUES (?, ?).
func (c *Compiler) Insert(table string, data Assignments) (string, error) {
	return c.insert("INSERT", table, data)
}

// Replace is Insert with REPLACE INTO. Both MySQL and SQLite accept it.
func (c *Compiler) Replace(table string, data Assignments) (string, error) {
	return c.insert("REPLACE", table, data)
}

func (c *Compiler) insert(verb, table string, data Assignments) (string, error) {
	c.binds.Reset()

	if table == "" {
		return "", fmt.Errorf("%s: %w", strings.ToLower(verb), ErrMissingTable)
	}
	if len(data) == 0 {
		return "", fmt.Errorf("%s: %w", strings.ToLower(verb), ErrEmptyData)
	}

	columns := make([]string, 0, len(data))
	for _, as := range data {
		if as.Raw {
			return "", fmt.Errorf("%s: %w: %q", strings.ToLower(verb), ErrRawInInsert, as.Field)
		}
		if HasOperator(as.Field) {
			return "", fmt.Errorf("%s: %w: %q", strings.ToLower(verb), ErrInvalidField, as.Field)
		}
		columns = append(columns, as.Field)
		c.binds.Add(as.Value)
	}

	return fmt.Sprintf("%s INTO %s (%s) VALUES (%s)",
		verb,
		c.TableName(table),
		strings.Join(columns, ", "),
		placeholders(len(columns)),
	), nil
}

// InsertBulk builds a multi-row INSERT template for rows rows of columns.
// Binds are left untouched; the caller binds the values row by row.
func (c *Compiler) InsertBulk(table string, columns []string, rows int) (string, error) {
	if table == "" {
		return "", fmt.Errorf("insert bulk: %w", ErrMissingTable)
	}
	if len(columns) == 0 || rows < 1 {
		return "", fmt.Errorf("insert bulk: %w", ErrEmptyData)
	}

	mark := "(" + placeholders(len(columns)) + ")"
	values := make([]string, rows)
	for i := range values {
		values[i] = mark
	}

	return fmt.Sprintf("INSERT INTO %s (%s) VALUES %s",
		c.TableName(table),
		strings.Join(columns, ", "),
		strings.Join(values, ","),
	), nil
}

// Update resets the binds and builds UPDATE <table> SET ... [WHERE ...].
// Without conditions every row is updated.
func (c *Compiler) Update(table string, data Assignments, conds Conditions) (string, error) {
	c.binds.Reset()

	if table == "" {
		return "", fmt.Errorf("update: %w", ErrMissingTable)
	}

	set, err := c.AssignmentList(data)
	if err != nil {
		return "", fmt.Errorf("update: %w", err)
	}

	where, err := c.WhereAnd(conds)
	if err != nil {
		return "", fmt.Errorf("update: %w", err)
	}

	sql := "UPDATE " + c.TableName(table) + " SET " + set
	if where != "" {
		sql += " " + where
	}
	return sql, nil
}

// Delete resets the binds and builds DELETE FROM <table> WHERE .... It
// refuses to build an unconditional delete.
func (c *Compiler) Delete(table string, conds Conditions) (string, error) {
	c.binds.Reset()

	if table == "" {
		return "", fmt.Errorf("delete: %w", ErrMissingTable)
	}
	if conds.IsEmpty() {
		return "", fmt.Errorf("delete: %w", ErrEmptyConditions)
	}

	where, err := c.WhereAnd(conds)
	if err != nil {
		return "", fmt.Errorf("delete: %w", err)
	}

	return "DELETE FROM " + c.TableName(table) + " " + where, nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
