package sqlgen

import (
	"fmt"
	"strings"
)

// JoinKind is one of the supported JOIN forms.
type JoinKind int

const (
	JoinLeft JoinKind = iota
	JoinLeftOuter
	JoinInner
	JoinStraight
)

func (k JoinKind) keyword() string {
	switch k {
	case JoinLeftOuter:
		return "LEFT OUTER JOIN"
	case JoinInner:
		return "INNER JOIN"
	case JoinStraight:
		return "STRAIGHT_JOIN"
	default:
		return "LEFT JOIN"
	}
}

// ParseJoinKind maps "left", "left outer", "inner" and "straight".
func ParseJoinKind(s string) (JoinKind, bool) {
	switch strings.ToLower(strings.Join(strings.Fields(s), " ")) {
	case "left":
		return JoinLeft, true
	case "left outer":
		return JoinLeftOuter, true
	case "inner":
		return JoinInner, true
	case "straight":
		return JoinStraight, true
	}
	return 0, false
}

// Join is a table reference with its ON condition, e.g.
// "orders AS o ON o.user_id = u.id". The table gets the compiler prefix.
type Join struct {
	Kind  JoinKind
	Table string
}

// Limit is either a bare row count or an (offset, per page) pair. The zero
// value means no LIMIT.
type Limit struct {
	offset  int
	count   int
	paged   bool
	defined bool
}

// DefaultPerPage replaces a non-positive page size.
const DefaultPerPage = 20

// LimitCount limits the result to n rows. n <= 0 means no limit.
func LimitCount(n int) Limit {
	return Limit{count: n, defined: true}
}

// Page limits the result to perPage rows starting at offset. A negative
// offset disables the LIMIT clause; a non-positive perPage becomes
// DefaultPerPage.
func Page(offset, perPage int) Limit {
	return Limit{offset: offset, count: perPage, paged: true, defined: true}
}

// Clause returns the LIMIT clause or "".
func (l Limit) Clause() string {
	if !l.defined {
		return ""
	}
	if l.paged {
		if l.offset < 0 {
			return ""
		}
		perPage := l.count
		if perPage < 1 {
			perPage = DefaultPerPage
		}
		return fmt.Sprintf("LIMIT %d, %d", l.offset, perPage)
	}
	if l.count > 0 {
		return fmt.Sprintf("LIMIT %d", l.count)
	}
	return ""
}

// More holds the non-WHERE parts of a SELECT.
type More struct {
	// SelectExt goes right after SELECT: DISTINCT, SQL_CALC_FOUND_ROWS, ...
	SelectExt string
	Fields    string
	From      string
	Joins     []Join
	Partition string
	GroupBy   string
	Having    string
	OrderBy   string
	Limit     Limit
}

// Join appends a join and returns the receiver.
func (m *More) Join(kind JoinKind, table string) *More {
	m.Joins = append(m.Joins, Join{Kind: kind, Table: table})
	return m
}

// Projection names the columns a result is reshaped by: Element is the
// value column and Key the key column. Positional asks for pairs keyed by
// row index where a caller would otherwise default the key; a set Key wins.
type Projection struct {
	Element    string
	Key        string
	Positional bool
}

func (p Projection) fields() string {
	switch {
	case p.Element != "" && p.Key != "":
		return p.Element + ", " + p.Key
	case p.Element != "":
		return p.Element
	}
	return "*"
}

// Select resets the binds and builds a SELECT statement. The clause order is
// fixed: extensions, fields, FROM, joins, PARTITION, WHERE, GROUP BY, HAVING,
// ORDER BY, LIMIT.
func (c *Compiler) Select(conds Conditions, more More, proj Projection) (string, error) {
	c.binds.Reset()

	if strings.TrimSpace(more.From) == "" {
		return "", fmt.Errorf("select: %w", ErrMissingTable)
	}

	fields := more.Fields
	if fields == "" {
		fields = proj.fields()
	}

	parts := []string{"SELECT"}
	parts = appendNonEmpty(parts, more.SelectExt)
	parts = append(parts, fields, "FROM", c.TableName(more.From))

	for _, j := range more.Joins {
		parts = append(parts, j.Kind.keyword(), c.TableName(j.Table))
	}

	if more.Partition != "" {
		parts = append(parts, "PARTITION "+more.Partition)
	}

	where, err := c.WhereAnd(conds)
	if err != nil {
		return "", fmt.Errorf("select: %w", err)
	}
	parts = appendNonEmpty(parts, where)

	if more.GroupBy != "" {
		parts = append(parts, "GROUP BY "+more.GroupBy)
	}
	if more.Having != "" {
		parts = append(parts, "HAVING "+more.Having)
	}
	if more.OrderBy != "" {
		parts = append(parts, "ORDER BY "+more.OrderBy)
	}
	parts = appendNonEmpty(parts, more.Limit.Clause())

	return strings.Join(parts, " "), nil
}

func appendNonEmpty(parts []string, s string) []string {
	if s = strings.TrimSpace(s); s != "" {
		return append(parts, s)
	}
	return parts
}
