package sqlgen

import "reflect"

// ParamType is the inferred type of a bound value.
type ParamType int

const (
	ParamString ParamType = iota
	ParamInteger
	ParamStrArray
	ParamIntArray
)

func (t ParamType) String() string {
	switch t {
	case ParamInteger:
		return "integer"
	case ParamStrArray:
		return "string[]"
	case ParamIntArray:
		return "integer[]"
	default:
		return "string"
	}
}

// IsArray reports whether the bound value is a list that expands to several
// placeholders at execution time.
func (t ParamType) IsArray() bool {
	return t == ParamStrArray || t == ParamIntArray
}

// Binds holds the values bound to the placeholders of one statement, in
// placeholder order, with their inferred types.
type Binds struct {
	values []interface{}
	types  []ParamType
}

// Add appends a value and its inferred type.
func (b *Binds) Add(value interface{}) {
	b.values = append(b.values, value)
	b.types = append(b.types, TypeOf(value))
}

// Values returns a copy of the bound values.
func (b *Binds) Values() []interface{} {
	return append([]interface{}(nil), b.values...)
}

// Types returns a copy of the bound types.
func (b *Binds) Types() []ParamType {
	return append([]ParamType(nil), b.types...)
}

// Len returns the number of bound values.
func (b *Binds) Len() int {
	return len(b.values)
}

// Set replaces the binds. values and types must be the same length.
func (b *Binds) Set(values []interface{}, types []ParamType) {
	b.values = append([]interface{}(nil), values...)
	b.types = append([]ParamType(nil), types...)
}

// Reset clears the binds.
func (b *Binds) Reset() {
	b.values = nil
	b.types = nil
}

func (b *Binds) append(other *Binds) {
	b.values = append(b.values, other.values...)
	b.types = append(b.types, other.types...)
}

// TypeOf infers the parameter type of v: integer kinds are integers,
// sequences of integers are integer arrays, any other sequence is a string
// array, and everything else is a string.
func TypeOf(v interface{}) ParamType {
	if isSequence(v) {
		for _, item := range sequence(v) {
			if !isInteger(item) {
				return ParamStrArray
			}
		}
		return ParamIntArray
	}
	if isInteger(v) {
		return ParamInteger
	}
	return ParamString
}

func isInteger(v interface{}) bool {
	switch v.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return true
	}
	return false
}

// isSequence reports whether v is a slice or array. []byte is a scalar.
func isSequence(v interface{}) bool {
	if v == nil {
		return false
	}
	if _, ok := v.([]byte); ok {
		return false
	}
	kind := reflect.TypeOf(v).Kind()
	return kind == reflect.Slice || kind == reflect.Array
}

func sequence(v interface{}) []interface{} {
	if items, ok := v.([]interface{}); ok {
		return items
	}
	rv := reflect.ValueOf(v)
	items := make([]interface{}, rv.Len())
	for i := range items {
		items[i] = rv.Index(i).Interface()
	}
	return items
}
