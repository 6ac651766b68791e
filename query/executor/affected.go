package executor

import (
	"math"
	"strconv"
)

type affectedKind int

const (
	affectedNone affectedKind = iota
	affectedUnchanged
	affectedChanged
)

// Affected is the outcome of a write as reported by the driver.
type Affected struct {
	kind affectedKind
	n    int64
}

var (
	// Unchanged means the statement ran and matched or changed no rows.
	Unchanged = Affected{kind: affectedUnchanged}
	// None means no statement ran or the driver could not report a count.
	None = Affected{kind: affectedNone}
)

// Changed reports n changed rows. n <= 0 yields Unchanged.
func Changed(n int64) Affected {
	if n <= 0 {
		return Unchanged
	}
	return Affected{kind: affectedChanged, n: n}
}

// FromDriver converts a driver row count: 0 is Unchanged, a negative count
// is None and anything else is Changed.
func FromDriver(n int64) Affected {
	switch {
	case n == 0:
		return Unchanged
	case n < 0:
		return None
	}
	return Affected{kind: affectedChanged, n: n}
}

// Rows returns the number of changed rows, zero unless Changed.
func (a Affected) Rows() int64 {
	return a.n
}

// IsChanged reports whether at least one row changed.
func (a Affected) IsChanged() bool { return a.kind == affectedChanged }

// IsUnchanged reports whether the statement ran without changing rows.
func (a Affected) IsUnchanged() bool { return a.kind == affectedUnchanged }

// IsNone reports whether no statement ran or no count was available.
func (a Affected) IsNone() bool { return a.kind == affectedNone }

// Add sums two outcomes. Changed wins over Unchanged, which wins over None.
func (a Affected) Add(b Affected) Affected {
	switch {
	case a.IsChanged() || b.IsChanged():
		return Changed(a.n + b.n)
	case a.IsUnchanged() || b.IsUnchanged():
		return Unchanged
	}
	return None
}

// Legacy returns the integer form callers expect, where a successful
// statement never reads as falsy: Unchanged is math.MaxInt64, None is 0 and
// Changed is the row count.
func (a Affected) Legacy() int64 {
	switch a.kind {
	case affectedChanged:
		return a.n
	case affectedUnchanged:
		return math.MaxInt64
	}
	return 0
}

func (a Affected) String() string {
	switch a.kind {
	case affectedChanged:
		return "changed(" + strconv.FormatInt(a.n, 10) + ")"
	case affectedUnchanged:
		return "unchanged"
	}
	return "none"
}
