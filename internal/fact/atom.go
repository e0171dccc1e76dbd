// Package fact implements C1: hash-consing ground atoms to dense integer
// ids across three non-overlapping tables (dynamic, static, function).
package fact

import "strings"

// GroundAtom is a predicate applied to a tuple of object names. Identity is
// by value: two GroundAtoms with the same predicate and args are the same
// atom and, once interned, carry the same id.
type GroundAtom struct {
	Predicate string
	Args      []string
}

func (a GroundAtom) String() string {
	var b strings.Builder
	b.WriteByte('(')
	b.WriteString(a.Predicate)
	for _, arg := range a.Args {
		b.WriteByte(' ')
		b.WriteString(arg)
	}
	b.WriteByte(')')
	return b.String()
}

// unitSeparator-joined key. A control byte outside the alphabet any
// predicate/object name can contain keeps (pred, "a,b") from colliding with
// (pred, "a", "b") or similar concatenation ambiguities.
const fieldSep = "\x1f"

func encodeKey(predicate string, args []string) string {
	var b strings.Builder
	b.WriteString(predicate)
	for _, a := range args {
		b.WriteString(fieldSep)
		b.WriteString(a)
	}
	return b.String()
}
