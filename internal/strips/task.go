// Package strips implements C5: assembling the grounder's output into the
// immutable propositional task the search driver consumes.
package strips

import "stripsplan/internal/ground"

// Fact is the dense integer id of a dynamic ground atom in the final task
// (spec.md §3), or of a true static atom kept by Config.KeepStaticFacts.
// Ids are dense and start at 0.
type Fact int

// GoalLiteral is one conjunct of the task's goal: a fact together with
// whether it must be absent (Negated) rather than present.
type GoalLiteral struct {
	Fact    Fact
	Negated bool
}

// ConditionalEffect is a grounded `when(condition, effect)` branch, carrying
// its own condition (evaluated against the live search state) and its own
// add/delete sets (spec.md §3). These sets are not made disjoint from the
// operator's base effect; Apply applies the base effect, then each firing
// branch.
type ConditionalEffect struct {
	// Condition literals are checked against the current state: a
	// non-negated literal must be present, a negated one absent.
	Condition []GoalLiteral
	Add       []Fact
	Delete    []Fact
	// Cost is added to the operator's base Cost only when this branch's
	// condition holds at application time (spec.md §9 Open Question (a)'s
	// per-conditional increase(total-cost, ...) term).
	Cost ground.Cost
}

// Operator is a ground action in its final, search-ready form: fact-id sets
// for precondition/add/delete, a non-negative cost, and any conditional
// effects (spec.md §3's "Operator" tuple).
type Operator struct {
	ID           int
	Name         string
	Precondition []Fact
	Add          []Fact
	Delete       []Fact
	Cost         ground.Cost
	Conditionals []ConditionalEffect

	// SchemaID/Args are populated only when Config.KeepActionArgs is set
	// (spec.md §6).
	SchemaID int
	Args     []string
}

// Task is the immutable STRIPS task handed to the search driver: facts,
// initial state, goal, operators, and grounding-time flags (spec.md §4.5).
// Nothing about a Task changes after Assemble returns it.
type Task struct {
	// FactNames is indexed by Fact id and holds its canonical display
	// string, e.g. "(on a b)" — useful for plan rendering and diagnostics.
	FactNames []string
	NumFacts  int

	Init []Fact
	Goal []GoalLiteral

	Operators []*Operator

	// Unsolvable is set when a goal atom never becomes reachable, or the
	// goal contains a literal impossibility — spec.md §4.3's "failure
	// model" / §7 kind 3. Downstream consumers must treat it as a
	// definitive answer without running search.
	Unsolvable bool

	// Capped records that the reachability fixpoint was stopped early by
	// Config.MaxLayers/MaxAtoms rather than reaching a true fixpoint
	// (spec.md §7: "a capped reachability run is a distinct status, not a
	// success").
	Capped bool

	UnitCost bool
}

// IsGoal reports whether every goal literal is satisfied in state.
func (t *Task) IsGoal(state map[Fact]bool) bool {
	for _, g := range t.Goal {
		if state[g.Fact] == g.Negated {
			return false
		}
	}
	return true
}

// Applicable reports whether op's base precondition holds in state
// (spec.md §8: "applicable(o, s) ⇔ pre(o) ⊆ s").
func (op *Operator) Applicable(state map[Fact]bool) bool {
	for _, f := range op.Precondition {
		if !state[f] {
			return false
		}
	}
	return true
}

// Apply computes (state \ delete) ∪ add for op's base effect plus any
// conditional branch whose condition holds, returning a freshly allocated
// successor state. The caller must have already checked Applicable.
func (op *Operator) Apply(state map[Fact]bool) map[Fact]bool {
	next := make(map[Fact]bool, len(state)+len(op.Add))
	for f := range state {
		next[f] = true
	}
	for _, f := range op.Delete {
		delete(next, f)
	}
	for _, f := range op.Add {
		next[f] = true
	}
	for _, c := range op.Conditionals {
		if !conditionHolds(c.Condition, state) {
			continue
		}
		for _, f := range c.Delete {
			delete(next, f)
		}
		for _, f := range c.Add {
			next[f] = true
		}
	}
	return next
}

// EffectiveCost returns op's base Cost plus the Cost of every conditional
// branch whose condition holds in state — the actual transition cost the
// search driver's g' = g + cost step (spec.md §4.7 step 7) must charge,
// since a conditional's increase(total-cost, ...) term only applies when
// its branch fires.
func (op *Operator) EffectiveCost(state map[Fact]bool) ground.Cost {
	total := op.Cost
	for _, c := range op.Conditionals {
		if conditionHolds(c.Condition, state) {
			total = total.Add(c.Cost)
		}
	}
	return total
}

func conditionHolds(cond []GoalLiteral, state map[Fact]bool) bool {
	for _, c := range cond {
		if state[c.Fact] == c.Negated {
			return false
		}
	}
	return true
}
