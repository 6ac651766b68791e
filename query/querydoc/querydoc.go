// Package querydoc reads query descriptions from YAML documents:
//
//	table: users
//	conditions: {age >=: 18, name LIKE: abc, 0: "deleted = 0"}
//	glue: AND
//	more: {field: "id, name", from: users, orderby: id DESC, limit: [0, 20]}
//	ret: {e: name, k: id}
//	data: {name: a, 0: "views = views + 1"}
//
// Mapping order is kept, so conditions, assignments and joins compile in
// document order. Purely numeric keys mark raw SQL fragments.
package querydoc

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/satishbabariya/neodb/query/sqlgen"
	"gopkg.in/yaml.v3"
)

var (
	ErrInvalidDocument = errors.New("invalid query document")
	ErrUnknownOp       = errors.New("unknown operation")
)

// Document is a parsed query description.
type Document struct {
	Table      string
	Conditions sqlgen.Conditions
	Glue       string
	More       sqlgen.More
	Projection sqlgen.Projection
	Data       sqlgen.Assignments
	// SQL is a literal statement run with Args instead of a compiled one.
	SQL  string
	Args []interface{}
}

// Parse reads a single YAML document.
func Parse(data []byte) (*Document, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return nil, fmt.Errorf("%w: empty document", ErrInvalidDocument)
	}

	body := root.Content[0]
	if body.Kind != yaml.MappingNode {
		return nil, invalid(body, "top level must be a mapping")
	}

	doc := &Document{Glue: "AND"}
	err := eachPair(body, func(key string, value *yaml.Node) error {
		var err error
		switch key {
		case "table":
			doc.Table, err = scalar(value)
		case "conditions":
			doc.Conditions, err = conditions(value)
		case "glue":
			doc.Glue, err = scalar(value)
		case "more":
			doc.More, err = more(value)
		case "ret":
			doc.Projection, err = projection(value)
		case "data":
			doc.Data, err = assignments(value)
		case "sql":
			doc.SQL, err = scalar(value)
		case "args":
			err = value.Decode(&doc.Args)
		default:
			err = invalid(value, "unknown key %q", key)
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	return doc, nil
}

// Op returns the operation a document describes when none is given: a
// literal statement, an update when it has data and conditions, an insert
// when it has data only and a select otherwise.
func (d *Document) Op() string {
	switch {
	case d.SQL != "":
		return "sql"
	case len(d.Data) > 0 && len(d.Conditions) > 0:
		return "update"
	case len(d.Data) > 0:
		return "insert"
	}
	return "select"
}

// Compile builds the statement for op with c. An empty op means d.Op().
// The binds are left in c.
func (d *Document) Compile(c *sqlgen.Compiler, op string) (string, error) {
	if op == "" {
		op = d.Op()
	}

	switch strings.ToLower(op) {
	case "sql":
		c.Reset()
		for _, arg := range d.Args {
			c.Binds().Add(arg)
		}
		return d.SQL, nil
	case "select":
		more := d.More
		if more.From == "" {
			more.From = d.Table
		}
		if strings.ToUpper(d.Glue) == "AND" || d.Glue == "" {
			return c.Select(d.Conditions, more, d.Projection)
		}
		return d.selectWithGlue(c, more)
	case "insert":
		return c.Insert(d.Table, d.Data)
	case "replace":
		return c.Replace(d.Table, d.Data)
	case "update":
		return c.Update(d.Table, d.Data, d.Conditions)
	case "delete":
		return c.Delete(d.Table, d.Conditions)
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownOp, op)
}

// selectWithGlue compiles a SELECT whose conditions are joined by OR: the
// WHERE is compiled on its own and passed as a single raw condition.
func (d *Document) selectWithGlue(c *sqlgen.Compiler, more sqlgen.More) (string, error) {
	where := sqlgen.NewCompiler(c.Prefix())
	where.SetDialect(c.Dialect())
	fragment, err := where.Where(d.Conditions, d.Glue, false)
	if err != nil {
		return "", err
	}

	var conds sqlgen.Conditions
	if fragment != "" {
		conds = conds.Raw("(" + fragment + ")")
	}

	sql, err := c.Select(conds, more, d.Projection)
	if err != nil {
		return "", err
	}
	c.Binds().Set(where.Binds().Values(), where.Binds().Types())
	return sql, nil
}

var numericKey = regexp.MustCompile(`^\d+$`)

func conditions(node *yaml.Node) (sqlgen.Conditions, error) {
	if node.Kind != yaml.MappingNode {
		return nil, invalid(node, "conditions must be a mapping")
	}

	var out sqlgen.Conditions
	err := eachPair(node, func(key string, value *yaml.Node) error {
		if numericKey.MatchString(key) {
			fragment, err := scalar(value)
			if err != nil {
				return err
			}
			out = out.Raw(fragment)
			return nil
		}

		v, err := decodeValue(value)
		if err != nil {
			return err
		}
		out = out.And(key, v)
		return nil
	})
	return out, err
}

func assignments(node *yaml.Node) (sqlgen.Assignments, error) {
	if node.Kind != yaml.MappingNode {
		return nil, invalid(node, "data must be a mapping")
	}

	var out sqlgen.Assignments
	err := eachPair(node, func(key string, value *yaml.Node) error {
		if numericKey.MatchString(key) {
			fragment, err := scalar(value)
			if err != nil {
				return err
			}
			out = out.Raw(fragment)
			return nil
		}

		v, err := decodeValue(value)
		if err != nil {
			return err
		}
		out = out.Set(key, v)
		return nil
	})
	return out, err
}

func more(node *yaml.Node) (sqlgen.More, error) {
	var m sqlgen.More
	if node.Kind != yaml.MappingNode {
		return m, invalid(node, "more must be a mapping")
	}

	err := eachPair(node, func(key string, value *yaml.Node) error {
		var err error
		switch key {
		case "selectext":
			m.SelectExt, err = scalar(value)
		case "field", "fields":
			m.Fields, err = scalar(value)
		case "from":
			m.From, err = scalar(value)
		case "partition":
			m.Partition, err = scalar(value)
		case "groupby":
			m.GroupBy, err = scalar(value)
		case "having":
			m.Having, err = scalar(value)
		case "orderby":
			m.OrderBy, err = scalar(value)
		case "limit":
			m.Limit, err = limit(value)
		default:
			kind, ok := sqlgen.ParseJoinKind(key)
			if !ok {
				return invalid(value, "unknown more key %q", key)
			}
			var tables []string
			tables, err = stringList(value)
			for _, table := range tables {
				m.Join(kind, table)
			}
		}
		return err
	})
	return m, err
}

func limit(node *yaml.Node) (sqlgen.Limit, error) {
	switch node.Kind {
	case yaml.ScalarNode:
		var n int
		if err := node.Decode(&n); err != nil {
			return sqlgen.Limit{}, invalid(node, "limit must be an integer")
		}
		return sqlgen.LimitCount(n), nil
	case yaml.SequenceNode:
		var pair []int
		if err := node.Decode(&pair); err != nil || len(pair) != 2 {
			return sqlgen.Limit{}, invalid(node, "limit must be [offset, per page]")
		}
		return sqlgen.Page(pair[0], pair[1]), nil
	}
	return sqlgen.Limit{}, invalid(node, "limit must be an integer or a pair")
}

func projection(node *yaml.Node) (sqlgen.Projection, error) {
	var p sqlgen.Projection
	if node.Kind != yaml.MappingNode {
		return p, invalid(node, "ret must be a mapping")
	}

	err := eachPair(node, func(key string, value *yaml.Node) error {
		var err error
		switch key {
		case "e":
			p.Element, err = scalar(value)
		case "k":
			p.Key, err = scalar(value)
			p.Positional = p.Key == ""
		default:
			err = invalid(value, "unknown ret key %q", key)
		}
		return err
	})
	return p, err
}

func eachPair(node *yaml.Node, fn func(key string, value *yaml.Node) error) error {
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i]
		if key.Kind != yaml.ScalarNode {
			return invalid(key, "keys must be scalars")
		}
		if err := fn(key.Value, node.Content[i+1]); err != nil {
			return err
		}
	}
	return nil
}

func scalar(node *yaml.Node) (string, error) {
	if node.Kind != yaml.ScalarNode {
		return "", invalid(node, "expected a scalar")
	}
	return node.Value, nil
}

func stringList(node *yaml.Node) ([]string, error) {
	if node.Kind == yaml.ScalarNode {
		return []string{node.Value}, nil
	}
	var out []string
	if err := node.Decode(&out); err != nil {
		return nil, invalid(node, "expected a string or a list of strings")
	}
	return out, nil
}

func decodeValue(node *yaml.Node) (interface{}, error) {
	if node.Kind == yaml.MappingNode {
		return nil, invalid(node, "values cannot be mappings")
	}
	var v interface{}
	if err := node.Decode(&v); err != nil {
		return nil, invalid(node, "%v", err)
	}
	return v, nil
}

func invalid(node *yaml.Node, format string, args ...interface{}) error {
	return fmt.Errorf("%w: line %d: %s", ErrInvalidDocument, node.Line, fmt.Sprintf(format, args...))
}
