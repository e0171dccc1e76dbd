package search

import (
	"fmt"
	"strings"

	"stripsplan/internal/ground"
	"stripsplan/internal/strips"
)

// Plan is the extracted solution: the operators applied in order, the total
// cost, and the states visited (spec.md §3's "Plan" tuple). States has
// length len(Operators)+1: States[0] is the initial state, States[i+1] is
// the state after applying Operators[i].
type Plan struct {
	Operators []int
	States    [][]strips.Fact
	Cost      ground.Cost
}

// Length reports the number of operators in the plan.
func (p *Plan) Length() int { return len(p.Operators) }

// extractPlan walks parent back-pointers from goalID to the initial state
// (parent = -1) and reverses the chain (spec.md §4.7.1). Plan cost is the
// g-value of the goal state.
func extractPlan(space *Space, goalID int) *Plan {
	var opChain []int
	var stateChain []int
	id := goalID
	for id != -1 {
		stateChain = append(stateChain, id)
		n := space.Node(id)
		if n.Op != -1 {
			opChain = append(opChain, n.Op)
		}
		id = n.Parent
	}

	ops := make([]int, len(opChain))
	for i, op := range opChain {
		ops[len(opChain)-1-i] = op
	}
	states := make([][]strips.Fact, len(stateChain))
	for i, sid := range stateChain {
		states[len(stateChain)-1-i] = space.Content(sid)
	}

	return &Plan{
		Operators: ops,
		States:    states,
		Cost:      space.Node(goalID).G,
	}
}

// Render formats the plan per spec.md §6's output format: a leading cost
// comment, a length comment, then one operator per line in parenthesized
// form.
func Render(task *strips.Task, plan *Plan) string {
	var b strings.Builder
	fmt.Fprintf(&b, ";; Cost: %d\n", int64(plan.Cost))
	fmt.Fprintf(&b, ";; Length: %d\n", plan.Length())
	for _, opID := range plan.Operators {
		fmt.Fprintf(&b, "(%s)\n", task.Operators[opID].Name)
	}
	return b.String()
}
