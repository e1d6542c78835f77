package result

import (
	"sort"
	"strconv"
)

// Row maps column name to a scalar value. Column order is not significant.
type Row map[string]Value

// Set is the full sequence of rows returned by one query execution.
type Set []Row

// Outcome is the result of executing one SQL query: either a result set or
// the stringified execution error. Exactly one side holds.
type Outcome struct {
	Rows Set
	Err  string
}

func Success(rows Set) Outcome {
	return Outcome{Rows: rows}
}

// Failure records a failed execution. A blank message is normalized so the
// outcome can never be mistaken for an empty success.
func Failure(message string) Outcome {
	if message == "" {
		message = "unknown error"
	}
	return Outcome{Err: message}
}

// Failed reports whether the execution produced an error instead of rows.
func (o Outcome) Failed() bool {
	return o.Err != ""
}

// Compare decides whether two execution outcomes represent the same logical
// answer. Row order and column order never matter; value representation is
// normalized (1 == 1.0, dates by calendar date). A failed execution never
// matches anything, including an identical failure.
func Compare(a, b Outcome) bool {
	if a.Failed() || b.Failed() {
		return false
	}
	return EqualSets(a.Rows, b.Rows)
}

// EqualSets reports whether two result sets hold the same multiset of rows
// over the same column set.
func EqualSets(a, b Set) bool {
	if len(a) != len(b) {
		return false
	}
	if len(a) == 0 {
		return true
	}

	cols := Columns(a)
	if !sameColumns(cols, Columns(b)) {
		return false
	}

	ca := Canonicalize(a)
	cb := Canonicalize(b)
	for i := range ca {
		if !equalRows(ca[i], cb[i], cols) {
			return false
		}
	}
	return true
}

// Columns returns the sorted column names of a set. Every row of a set
// carries the same column set, so the first row is authoritative.
func Columns(s Set) []string {
	if len(s) == 0 {
		return nil
	}
	cols := make([]string, 0, len(s[0]))
	for name := range s[0] {
		cols = append(cols, name)
	}
	sort.Strings(cols)
	return cols
}

// Canonicalize returns a copy of the set sorted by a deterministic total
// order: lexicographic by column name, then by the fixed type-aware value
// order. Duplicate rows keep their multiplicity; nothing is deduplicated.
func Canonicalize(s Set) Set {
	cols := Columns(s)
	out := make(Set, len(s))
	copy(out, s)
	sort.SliceStable(out, func(i, j int) bool {
		return rowLess(out[i], out[j], cols)
	})
	return out
}

func rowLess(a, b Row, cols []string) bool {
	for _, col := range cols {
		av, bv := a[col], b[col]
		if av.Equal(bv) {
			continue
		}
		return av.Less(bv)
	}
	return false
}

func equalRows(a, b Row, cols []string) bool {
	if len(a) != len(b) {
		return false
	}
	for _, col := range cols {
		av, aok := a[col]
		bv, bok := b[col]
		if aok != bok || !av.Equal(bv) {
			return false
		}
	}
	return true
}

func sameColumns(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Shape describes a result set compactly for diagnostics.
func Shape(s Set) (rows, cols int) {
	return len(s), len(Columns(s))
}

// Describe renders a short human-readable shape, e.g. "3 rows x 2 cols".
func Describe(s Set) string {
	r, c := Shape(s)
	return plural(r, "row") + " x " + plural(c, "col")
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return strconv.Itoa(n) + " " + unit + "s"
}
