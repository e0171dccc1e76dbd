// Package ground implements C3 (the reachability engine, relational and
// Datalog back-ends) and C4 (the operator materializer).
package ground

import (
	"sort"
	"strings"

	"stripsplan/internal/fact"
)

// FactRef names a ground atom by which of fact.Table's three interners it
// lives in plus its id there — spec.md §9 "Ground-atom identity across
// tables": the three interners are disjoint id spaces, so a reference is
// meaningless without its origin tag.
type FactRef struct {
	Origin fact.Origin
	ID     int
}

// CondLiteral is one conjunct of a conditional effect's condition. Unlike
// an action precondition, a condition is evaluated against the live search
// state (spec.md §4.7 step 5). Lifted validation admits a negated condition
// literal only over a static predicate, as for preconditions.
type CondLiteral struct {
	Ref     FactRef
	Negated bool
}

// RawConditional is one grounded `when(condition, effect)` branch, still
// addressed in grounding-internal fact-ref space (spec.md §4.4 step 2).
type RawConditional struct {
	Condition []CondLiteral
	Add       []FactRef
	Delete    []FactRef
	Cost      Cost
}

// RawOperator is a materialized ground action prior to C5's fact-id
// permutation: its precondition, add, delete and conditional sets still
// address atoms via FactRef rather than final task fact ids.
type RawOperator struct {
	SchemaID    int
	SchemaName  string
	Args        []string
	OpID        int
	Precondition map[FactRef]bool
	Add          []FactRef
	Delete       []FactRef
	Cost         Cost
	Conditionals []RawConditional
	DisplayName  string
}

// sortedPrecondition returns the precondition set as a stably ordered
// slice, used by anything that needs a deterministic walk (dedup keys,
// display, tests).
func (o *RawOperator) sortedPrecondition() []FactRef {
	out := make([]FactRef, 0, len(o.Precondition))
	for r := range o.Precondition {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Origin != out[j].Origin {
			return out[i].Origin < out[j].Origin
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func displayName(schemaName string, args []string) string {
	var b strings.Builder
	b.WriteString(schemaName)
	for _, a := range args {
		b.WriteByte(' ')
		b.WriteString(a)
	}
	return b.String()
}

// Result is what both C3 back-ends produce: the populated fact table, the
// reachable ground operators (already run through C4), and grounding-time
// flags spec.md §4.3's "failure model" and §6's layered-mode outputs.
type Result struct {
	Table      *fact.Table
	Operators  []*RawOperator
	Unsolvable bool
	Capped     bool
	Layer      map[FactRef]int // populated only in layered mode

	// StaticTrueBound: static fact ids below this bound were asserted true
	// by the initial state and so hold forever (spec.md's "static atoms'
	// atoms form the static database and are never changed after
	// grounding"); ids at or above it were interned only because a
	// conditional effect's condition happened to mention them (C4 does not
	// validate those against the static database the way it does for base
	// preconditions) and are therefore always false.
	StaticTrueBound int
}
