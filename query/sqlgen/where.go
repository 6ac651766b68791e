package sqlgen

// Condition is a single WHERE predicate. The operator is resolved once, when
// the condition is built, and never re-parsed at compile time.
type Condition struct {
	Field    string
	Operator Operator
	// Token is the operator text as it will be emitted, e.g. "!=" or "NOT IN".
	Token string
	Value interface{}
}

// Cond builds a condition from an operator-bearing key such as "age >=".
func Cond(key string, value interface{}) Condition {
	field, op, token := ParseKey(key)
	return Condition{
		Field:    field,
		Operator: op,
		Token:    token,
		Value:    value,
	}
}

// RawCond builds a caller-trusted fragment. It is emitted verbatim: no
// binding, no escaping. Callers are responsible for its safety.
func RawCond(fragment string) Condition {
	return Condition{Operator: OpRaw, Value: fragment}
}

// Conditions is an ordered list of predicates. Order determines the order of
// the emitted clauses.
type Conditions []Condition

// Where starts a condition list.
func Where(key string, value interface{}) Conditions {
	return Conditions{Cond(key, value)}
}

// And appends a condition parsed from key.
func (c Conditions) And(key string, value interface{}) Conditions {
	return append(c, Cond(key, value))
}

// Raw appends a caller-trusted fragment.
func (c Conditions) Raw(fragment string) Conditions {
	return append(c, RawCond(fragment))
}

// IsEmpty returns true if there are no conditions
func (c Conditions) IsEmpty() bool {
	return len(c) == 0
}

// Assignment is one "field = value" pair of an INSERT or UPDATE.
type Assignment struct {
	Field string
	Value interface{}
	// Raw assignments carry a verbatim fragment such as "views = views + 1"
	// in Field and are never bound.
	Raw bool
}

// Assignments is an ordered list of assignments.
type Assignments []Assignment

// Set starts an assignment list.
func Set(field string, value interface{}) Assignments {
	return Assignments{{Field: field, Value: value}}
}

// Set appends an assignment.
func (a Assignments) Set(field string, value interface{}) Assignments {
	return append(a, Assignment{Field: field, Value: value})
}

// Raw appends a verbatim fragment.
func (a Assignments) Raw(fragment string) Assignments {
	return append(a, Assignment{Field: fragment, Raw: true})
}

// Fields returns the bound field names in order.
func (a Assignments) Fields() []string {
	fields := make([]string, 0, len(a))
	for _, as := range a {
		if !as.Raw {
			fields = append(fields, as.Field)
		}
	}
	return fields
}

// Has reports whether field is assigned.
func (a Assignments) Has(field string) bool {
	for _, as := range a {
		if !as.Raw && as.Field == field {
			return true
		}
	}
	return false
}

// Get returns the value assigned to field.
func (a Assignments) Get(field string) (interface{}, bool) {
	for _, as := range a {
		if !as.Raw && as.Field == field {
			return as.Value, true
		}
	}
	return nil, false
}

// Without returns a copy without the given field.
func (a Assignments) Without(field string) Assignments {
	out := make(Assignments, 0, len(a))
	for _, as := range a {
		if !as.Raw && as.Field == field {
			continue
		}
		out = append(out, as)
	}
	return out
}
