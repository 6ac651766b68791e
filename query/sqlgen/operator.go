package sqlgen

import (
	"regexp"
	"strings"
)

// Operator identifies the comparison carried by a condition.
type Operator int

const (
	// OpNone means the condition key carried no operator token. Scalars
	// compile to "=", sequences to "IN".
	OpNone Operator = iota
	OpEq
	OpNe
	OpLt
	OpGt
	OpLe
	OpGe
	OpLike
	OpNotLike
	OpIn
	OpNotIn
	OpBetween
	OpIsNull
	OpIsNotNull
	OpExists
	OpNotExists
	// OpRaw marks a caller-trusted SQL fragment that is emitted verbatim.
	OpRaw
)

var operatorNames = map[Operator]string{
	OpNone:      "",
	OpEq:        "=",
	OpNe:        "<>",
	OpLt:        "<",
	OpGt:        ">",
	OpLe:        "<=",
	OpGe:        ">=",
	OpLike:      "LIKE",
	OpNotLike:   "NOT LIKE",
	OpIn:        "IN",
	OpNotIn:     "NOT IN",
	OpBetween:   "BETWEEN",
	OpIsNull:    "IS NULL",
	OpIsNotNull: "IS NOT NULL",
	OpExists:    "EXISTS",
	OpNotExists: "NOT EXISTS",
	OpRaw:       "RAW",
}

// String returns the canonical SQL token of the operator.
func (o Operator) String() string {
	return operatorNames[o]
}

// tokenOperators maps an upper-cased token to its operator.
var tokenOperators = map[string]Operator{
	"=":           OpEq,
	"!=":          OpNe,
	"<>":          OpNe,
	"<":           OpLt,
	">":           OpGt,
	"<=":          OpLe,
	">=":          OpGe,
	"LIKE":        OpLike,
	"NOT LIKE":    OpNotLike,
	"IN":          OpIn,
	"NOT IN":      OpNotIn,
	"BETWEEN":     OpBetween,
	"IS NULL":     OpIsNull,
	"IS NOT NULL": OpIsNotNull,
	"EXISTS":      OpExists,
	"NOT EXISTS":  OpNotExists,
}

// operatorPattern lists the recognised tokens in priority order. Go's
// regexp picks the leftmost match and, at equal positions, the first
// alternative, so the order below is significant.
var operatorPattern = regexp.MustCompile(`(?i)` + strings.Join([]string{
	`\s*(?:<|>|!)?=\s*`, // =, <=, >=, !=
	`\s*<>?\s*`,         // <, <>
	`\s*>\s*`,           // >
	`\s+IS NULL`,
	`\s+IS NOT NULL`,
	`\s+EXISTS`,
	`\s+NOT EXISTS`,
	`\s+BETWEEN`,
	`\s+IN`,
	`\s+NOT IN`,
	`\s+LIKE`,
	`\s+NOT LIKE`,
}, "|"))

// ParseKey splits a condition key such as "age >=" or "name not like" into
// the bare field, the operator and the upper-cased token to emit.
func ParseKey(key string) (field string, op Operator, token string) {
	loc := operatorPattern.FindStringIndex(key)
	if loc == nil {
		return strings.TrimSpace(key), OpNone, ""
	}

	token = strings.ToUpper(strings.TrimSpace(key[loc[0]:loc[1]]))
	field = strings.TrimSpace(key[:loc[0]] + key[loc[1]:])

	op, ok := tokenOperators[token]
	if !ok {
		return strings.TrimSpace(key), OpNone, ""
	}

	return field, op, token
}

// HasOperator reports whether s contains an SQL operator or whitespace.
func HasOperator(s string) bool {
	return hasOperatorPattern.MatchString(strings.TrimSpace(s))
}

var hasOperatorPattern = regexp.MustCompile(`(?i)(<|>|!|=|\sIS NULL|\sIS NOT NULL|\sEXISTS|\sBETWEEN|\sLIKE|\sIN\s*\(|\s)`)
