package search

import (
	"stripsplan/internal/ground"
	"stripsplan/internal/strips"
)

// Heuristic estimates the remaining cost from a state to the goal. A
// non-negative finite value is an estimate; ground.Infinite is the dead-end
// sentinel the caller must treat as pruning, never as an arithmetic value
// (spec.md §4.7 step 8, §9 "Heuristic as a trait").
type Heuristic interface {
	Evaluate(content []strips.Fact, task *strips.Task) ground.Cost
}

// Blind always reports zero: with w_g=1, w_h=0 equivalent weights this
// degrades A* to uniform-cost search, and is otherwise useful as a
// heuristic-disabled baseline for tests.
type Blind struct{}

func (Blind) Evaluate(_ []strips.Fact, _ *strips.Task) ground.Cost { return 0 }

// GoalCount counts unsatisfied goal literals — the simplest non-trivial
// admissible-for-unit-cost heuristic, grounded on the same "count what's
// missing" shape as the teacher's reachability queries
// (query.ReachabilityProbabilityQuery) checking presence rather than
// deriving a weighted estimate.
type GoalCount struct{}

func (GoalCount) Evaluate(content []strips.Fact, task *strips.Task) ground.Cost {
	present := make(map[strips.Fact]bool, len(content))
	for _, f := range content {
		present[f] = true
	}
	var n ground.Cost
	for _, g := range task.Goal {
		if present[g.Fact] == g.Negated {
			n++
		}
	}
	return n
}

// Aggregator selects h_max (worst-case-subgoal-cost) or h_add
// (sum-of-subgoal-cost, inadmissible but often more informative).
type Aggregator int

const (
	AggregateMax Aggregator = iota
	AggregateAdd
)

// RelaxedPlanningGraph implements spec.md §4.3.2's "weighted canonical
// model" — h_max under AggregateMax, h_add under AggregateAdd — as a
// forward label-propagation fixpoint over the delete-relaxed task: every
// fact's cost label starts at 0 if true in the evaluated state and
// Infinite otherwise, and repeatedly relaxes along every operator (and
// every conditional branch, treating a negated condition literal as
// already satisfied — the standard delete-relaxation treatment, since
// nothing is ever removed) until no label improves.
//
// This computes the same quantity spec.md describes the Datalog back-end's
// weighted canonical model producing, but does so directly against the
// already-materialized strips.Task rather than re-invoking Mangle's
// parse/analyze/eval pipeline once per state: that pipeline's cost is
// amortized across the whole reachability fixpoint at grounding time, but
// a heuristic call happens once per expanded search node, and Mangle's
// transactional add/rollback API spec.md alludes to could not be verified
// against the retrieved sources (see DESIGN.md's internal/ground entry) — a
// direct fixpoint is the smaller, verifiable implementation for a
// per-call-frequency the Datalog engine was never shown to support
// cheaply.
type RelaxedPlanningGraph struct {
	Agg Aggregator
}

func (h RelaxedPlanningGraph) combine(a, b ground.Cost) ground.Cost {
	if a.IsInfinite() || b.IsInfinite() {
		return ground.Infinite
	}
	if h.Agg == AggregateMax {
		if a > b {
			return a
		}
		return b
	}
	return a.Add(b)
}

func (h RelaxedPlanningGraph) Evaluate(content []strips.Fact, task *strips.Task) ground.Cost {
	dist := make(map[strips.Fact]ground.Cost, task.NumFacts)
	for _, f := range content {
		dist[f] = 0
	}
	get := func(f strips.Fact) ground.Cost {
		if c, ok := dist[f]; ok {
			return c
		}
		return ground.Infinite
	}
	relax := func(f strips.Fact, cost ground.Cost) bool {
		if cost.IsInfinite() {
			return false
		}
		if cur, ok := dist[f]; !ok || cost < cur {
			dist[f] = cost
			return true
		}
		return false
	}

	for {
		changed := false
		for _, op := range task.Operators {
			base, ok := h.sumLiterals(op.Precondition, get)
			if !ok {
				continue
			}
			opCost := h.combine(base, op.Cost)
			for _, f := range op.Add {
				if relax(f, opCost) {
					changed = true
				}
			}
			for _, c := range op.Conditionals {
				cbase, ok := h.sumCondition(c.Condition, base, get)
				if !ok {
					continue
				}
				ccost := h.combine(cbase, c.Cost)
				for _, f := range c.Add {
					if relax(f, ccost) {
						changed = true
					}
				}
			}
		}
		if !changed {
			break
		}
	}

	total := ground.Cost(0)
	for _, g := range task.Goal {
		if g.Negated {
			// Delete relaxation never removes a fact once achieved, so a
			// negated goal literal is only meaningfully estimable as
			// "already true"; approximate it as free.
			continue
		}
		c := get(g.Fact)
		if c.IsInfinite() {
			return ground.Infinite
		}
		total = h.combine(total, c)
	}
	return total
}

func (h RelaxedPlanningGraph) sumLiterals(facts []strips.Fact, get func(strips.Fact) ground.Cost) (ground.Cost, bool) {
	total := ground.Cost(0)
	for _, f := range facts {
		c := get(f)
		if c.IsInfinite() {
			return 0, false
		}
		total = h.combine(total, c)
	}
	return total, true
}

func (h RelaxedPlanningGraph) sumCondition(cond []strips.GoalLiteral, base ground.Cost, get func(strips.Fact) ground.Cost) (ground.Cost, bool) {
	total := base
	for _, cl := range cond {
		if cl.Negated {
			continue
		}
		c := get(cl.Fact)
		if c.IsInfinite() {
			return 0, false
		}
		total = h.combine(total, c)
	}
	return total, true
}
