// Package sqlgen compiles condition lists and clause descriptions into
// parameterized SQL with "?" placeholders.
package sqlgen

import (
	"fmt"
	"regexp"
	"strings"
)

// Compiler turns conditions, assignments and clause descriptions into SQL.
// It owns the binds of the statement being built; every statement builder
// (Select, Insert, Update, ...) clears them first. A Compiler belongs to one
// database handle and is not safe for concurrent use.
type Compiler struct {
	prefix  string
	dialect Dialect
	binds   Binds
}

// NewCompiler creates a compiler that prefixes table names with prefix.
func NewCompiler(prefix string) *Compiler {
	return &Compiler{prefix: prefix}
}

// Prefix returns the table name prefix.
func (c *Compiler) Prefix() string {
	return c.prefix
}

// TableName returns table with the configured prefix.
func (c *Compiler) TableName(table string) string {
	return c.prefix + table
}

// SetDialect sets the engine whose LIKE escaping and string quoting the
// compiler follows. Without one the compiler follows MySQL.
func (c *Compiler) SetDialect(d Dialect) {
	c.dialect = d
}

// Dialect returns the dialect set with SetDialect, or MySQLDialect.
func (c *Compiler) Dialect() Dialect {
	if c.dialect == nil {
		return MySQLDialect{}
	}
	return c.dialect
}

// Expand expands the current binds into sql for the compiler's dialect.
func (c *Compiler) Expand(sql string) (string, []interface{}, error) {
	return expand(sql, c.binds.Values(), c.binds.Types(), c.Dialect().BackslashEscapes())
}

// Binds returns the binds accumulated for the current statement.
func (c *Compiler) Binds() *Binds {
	return &c.binds
}

// Reset clears the binds.
func (c *Compiler) Reset() {
	c.binds.Reset()
}

// WhereAnd is Where with AND glue and the WHERE keyword.
func (c *Compiler) WhereAnd(conds Conditions) (string, error) {
	return c.Where(conds, "AND", true)
}

// Where compiles conds into a WHERE fragment and appends its binds. An empty
// list yields an empty fragment. Binds are only appended when the whole list
// compiles.
func (c *Compiler) Where(conds Conditions, glue string, withWhere bool) (string, error) {
	if len(conds) == 0 {
		return "", nil
	}

	glue = strings.ToUpper(strings.TrimSpace(glue))
	if glue == "" {
		glue = "AND"
	}
	if glue != "AND" && glue != "OR" {
		return "", fmt.Errorf("%w: %q", ErrInvalidGlue, glue)
	}

	var pending Binds
	parts := make([]string, 0, len(conds))
	escape := c.Dialect().LikeEscape()

	for _, cond := range conds {
		part, err := compileCondition(cond, &pending, escape)
		if err != nil {
			return "", err
		}
		parts = append(parts, part)
	}

	c.binds.append(&pending)

	sql := strings.Join(parts, " "+glue+" ")
	if withWhere {
		sql = "WHERE " + sql
	}
	return sql, nil
}

func compileCondition(cond Condition, binds *Binds, likeEscape string) (string, error) {
	field := cond.Field
	token := cond.Token
	if token == "" {
		token = cond.Operator.String()
	}

	switch cond.Operator {
	case OpRaw:
		// Trusted fragment: emitted as is.
		return fmt.Sprint(cond.Value), nil
	case OpIsNull, OpIsNotNull:
		return field + " " + token, nil
	}

	if isSequence(cond.Value) {
		if cond.Operator == OpBetween {
			items := sequence(cond.Value)
			if len(items) != 2 {
				return "", fmt.Errorf("%w: %s has %d values", ErrInvalidBetween, field, len(items))
			}
			binds.Add(items[0])
			binds.Add(items[1])
			return field + " BETWEEN ? AND ?", nil
		}

		if cond.Operator == OpNone {
			token = "IN"
		}
		binds.Add(cond.Value)
		return field + " " + token + " (?)", nil
	}

	switch cond.Operator {
	case OpIn, OpNotIn, OpExists, OpNotExists:
		binds.Add(cond.Value)
		return field + " " + token + " (?)", nil
	case OpLike, OpNotLike:
		binds.Add(likePattern(cond.Value))
		if likeEscape != "" {
			return field + " " + token + " ? " + likeEscape, nil
		}
		return field + " " + token + " ?", nil
	case OpBetween:
		return "", fmt.Errorf("%w: %s has a single value", ErrInvalidBetween, field)
	case OpNone:
		binds.Add(cond.Value)
		return field + " = ?", nil
	default:
		binds.Add(cond.Value)
		return field + " " + token + " ?", nil
	}
}

// likePattern wraps a pattern without leading or trailing % in %...% and
// escapes the literal % and _ inside it.
func likePattern(v interface{}) string {
	s := fmt.Sprint(v)

	lead := strings.HasPrefix(s, "%")
	inner := s
	if lead {
		inner = inner[1:]
	}
	trail := strings.HasSuffix(inner, "%")
	if trail {
		inner = inner[:len(inner)-1]
	}

	if !lead && !trail {
		lead, trail = true, true
	}

	var sb strings.Builder
	if lead {
		sb.WriteByte('%')
	}
	sb.WriteString(EscapeLike(inner))
	if trail {
		sb.WriteByte('%')
	}
	return sb.String()
}

// EscapeLike escapes the LIKE wildcards % and _.
func EscapeLike(s string) string {
	return likeEscaper.Replace(s)
}

var likeEscaper = strings.NewReplacer("%", `\%`, "_", `\_`)

// AssignmentList compiles data into "a = ?, b = ?" and appends the binds.
// Raw entries are emitted verbatim; other fields must be bare column names.
func (c *Compiler) AssignmentList(data Assignments) (string, error) {
	if len(data) == 0 {
		return "", ErrEmptyData
	}

	parts := make([]string, 0, len(data))
	for _, as := range data {
		if as.Raw {
			parts = append(parts, as.Field)
			continue
		}
		if HasOperator(as.Field) {
			return "", fmt.Errorf("%w: %q", ErrInvalidField, as.Field)
		}
		parts = append(parts, as.Field+" = ?")
		c.binds.Add(as.Value)
	}

	return strings.Join(parts, ", "), nil
}

// StripTags keeps only the characters allowed in database, table and field
// names: letters, digits, "_", "-" and ".". allow lists extra characters.
func StripTags(name string, allow ...string) string {
	if name == "" {
		return ""
	}
	pattern := stripPattern
	if len(allow) > 0 {
		pattern = regexp.MustCompile(`(?i)[^a-z0-9_\-.` + regexp.QuoteMeta(strings.Join(allow, "")) + `]`)
	}
	return pattern.ReplaceAllString(name, "")
}

var stripPattern = regexp.MustCompile(`(?i)[^a-z0-9_\-.]`)
