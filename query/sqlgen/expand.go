package sqlgen

import (
	"fmt"
	"strings"
)

// Expand rewrites each placeholder bound to an array into one placeholder per
// element and flattens the values to match. An empty array becomes NULL, so
// "id IN (?)" with no ids reads "id IN (NULL)". Placeholders inside quoted
// strings, quoted identifiers and comments are ignored. A backslash escapes
// inside string literals, as in MySQL; Compiler.Expand follows the
// compiler's dialect instead.
func Expand(sql string, values []interface{}, types []ParamType) (string, []interface{}, error) {
	return expand(sql, values, types, true)
}

func expand(sql string, values []interface{}, types []ParamType, backslash bool) (string, []interface{}, error) {
	if len(values) != len(types) {
		return "", nil, fmt.Errorf("%w: %d values, %d types", ErrBindMismatch, len(values), len(types))
	}

	needsExpansion := false
	for _, t := range types {
		if t.IsArray() {
			needsExpansion = true
			break
		}
	}

	var (
		sb   strings.Builder
		args = make([]interface{}, 0, len(values))
		n    int
	)
	sb.Grow(len(sql))

	for i := 0; i < len(sql); i++ {
		ch := sql[i]

		switch {
		case ch == '\'' || ch == '"' || ch == '`':
			end := skipQuoted(sql, i, backslash)
			sb.WriteString(sql[i:end])
			i = end - 1
			continue
		case ch == '-' && i+1 < len(sql) && sql[i+1] == '-':
			end := strings.IndexByte(sql[i:], '\n')
			if end < 0 {
				end = len(sql) - i
			}
			sb.WriteString(sql[i : i+end])
			i += end - 1
			continue
		case ch == '/' && i+1 < len(sql) && sql[i+1] == '*':
			end := strings.Index(sql[i+2:], "*/")
			if end < 0 {
				end = len(sql)
			} else {
				end = i + 2 + end + 2
			}
			sb.WriteString(sql[i:end])
			i = end - 1
			continue
		case ch != '?':
			sb.WriteByte(ch)
			continue
		}

		if n >= len(values) {
			return "", nil, fmt.Errorf("%w: more placeholders than %d binds", ErrBindMismatch, len(values))
		}

		if !types[n].IsArray() {
			sb.WriteByte('?')
			args = append(args, values[n])
			n++
			continue
		}

		items := sequence(values[n])
		if len(items) == 0 {
			sb.WriteString("NULL")
		} else {
			sb.WriteString(placeholders(len(items)))
			args = append(args, items...)
		}
		n++
	}

	if n != len(values) {
		return "", nil, fmt.Errorf("%w: %d placeholders, %d binds", ErrBindMismatch, n, len(values))
	}

	if !needsExpansion {
		return sql, args, nil
	}
	return sb.String(), args, nil
}

// skipQuoted returns the index just past the quoted run starting at start.
// A doubled quote is a literal quote; with backslash set, a backslash also
// escapes the next byte of a string literal.
func skipQuoted(sql string, start int, backslash bool) int {
	quote := sql[start]
	for i := start + 1; i < len(sql); i++ {
		switch sql[i] {
		case '\\':
			if backslash && quote != '`' {
				i++
			}
		case quote:
			if i+1 < len(sql) && sql[i+1] == quote {
				i++
				continue
			}
			return i + 1
		}
	}
	return len(sql)
}
