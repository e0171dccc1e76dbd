package strips

import (
	"sort"

	"stripsplan/internal/fact"
	"stripsplan/internal/ground"
	"stripsplan/internal/lifted"
)

type factKey struct {
	Origin fact.Origin
	ID     int
}

// Assemble implements C5 (spec.md §4.5): canonicalize fact numbering,
// rewrite init/goal/operators through the resulting permutation, and apply
// the final simplifications (static-fact removal, conditional-effect
// merge, operator dedup, unsolvability short-circuit).
func Assemble(res *ground.Result, p *lifted.Problem, cfg ground.Config) (*Task, error) {
	if res.Unsolvable {
		return degenerateTask(res), nil
	}

	perm, names := canonicalPermutation(res, cfg)

	init := rewriteInit(p, res.Table, perm)

	goal, impossible := rewriteGoal(p, res.Table, perm, res.StaticTrueBound)
	if impossible {
		return degenerateTask(res), nil
	}

	ops := make([]*Operator, 0, len(res.Operators))
	for _, raw := range res.Operators {
		op, ok := materializeOperator(raw, perm, cfg, res.StaticTrueBound)
		if !ok {
			continue
		}
		mergeConditionals(op)
		ops = append(ops, op)
	}
	ops = canonicalizeOperators(ops)

	return &Task{
		FactNames: names,
		NumFacts:  len(names),
		Init:      init,
		Goal:      goal,
		Operators: ops,
		Capped:    res.Capped,
		UnitCost:  p.UnitCostMetric,
	}, nil
}

// degenerateTask is the canonical "no operators, goal present in no
// reachable state" form every consumer observes for an unsolvable task
// (spec.md §4.5 step 8).
func degenerateTask(res *ground.Result) *Task {
	return &Task{Unsolvable: true, Capped: res.Capped}
}

// canonicalPermutation assigns final, lexicographically-sorted fact ids to
// every dynamic atom and, when Config.KeepStaticFacts is set, every static
// atom known true in the initial state (spec.md §4.5 steps 1-2).
func canonicalPermutation(res *ground.Result, cfg ground.Config) (map[factKey]Fact, []string) {
	type candidate struct {
		key     factKey
		display string
	}
	var cands []candidate
	for id, atom := range res.Table.Dynamic.All() {
		cands = append(cands, candidate{factKey{fact.Dynamic, id}, atom.String()})
	}
	if cfg.KeepStaticFacts {
		for id, atom := range res.Table.Static.All() {
			if id >= res.StaticTrueBound {
				continue
			}
			cands = append(cands, candidate{factKey{fact.Static, id}, atom.String()})
		}
	}
	sort.Slice(cands, func(i, j int) bool { return cands[i].display < cands[j].display })

	perm := make(map[factKey]Fact, len(cands))
	names := make([]string, len(cands))
	for newID, c := range cands {
		perm[c.key] = Fact(newID)
		names[newID] = c.display
	}
	return perm, names
}

func rewriteInit(p *lifted.Problem, t *fact.Table, perm map[factKey]Fact) []Fact {
	var out []Fact
	for _, atom := range p.Init {
		var key factKey
		if p.Domain.Predicates.IsStatic(atom.Predicate) {
			id, ok := t.Static.Find(atom.Predicate, atom.Args)
			if !ok {
				continue
			}
			key = factKey{fact.Static, id}
		} else {
			id, ok := t.Dynamic.Find(atom.Predicate, atom.Args)
			if !ok {
				continue
			}
			key = factKey{fact.Dynamic, id}
		}
		if f, ok := perm[key]; ok {
			out = append(out, f)
		}
	}
	return out
}

// rewriteGoal maps each goal conjunct through the permutation. A positive
// conjunct resolving to a static atom known true, or a negated conjunct
// that never resolves to any known atom, is trivially satisfied and
// dropped. A positive conjunct absent from both tables, or a negated
// conjunct resolving to a static atom known true, makes the goal
// impossible (spec.md §4.5 step 4 / §7 kind 3).
func rewriteGoal(p *lifted.Problem, t *fact.Table, perm map[factKey]Fact, staticTrueBound int) (lits []GoalLiteral, impossible bool) {
	if p.Goal.Impossible {
		return nil, true
	}
	for _, lit := range p.Goal.Conjuncts {
		args := make([]string, len(lit.Args))
		for i, a := range lit.Args {
			args[i] = a.Name
		}
		id, origin, found := t.FindEither(lit.Predicate, args)
		if !found {
			if lit.Negated {
				continue // can never be true: negation trivially holds
			}
			return nil, true // can never be true: positive goal fails
		}
		if origin == fact.Static && id < staticTrueBound {
			// statics never change: resolved once, for all time.
			if lit.Negated {
				return nil, true
			}
			continue
		}
		if origin == fact.Static {
			// interned only by a conditional's condition: never true.
			if lit.Negated {
				continue
			}
			return nil, true
		}
		key := factKey{origin, id}
		f, ok := perm[key]
		if !ok {
			// Not reached: every static atom is resolved above and every
			// dynamic atom has a task fact.
			if lit.Negated {
				return nil, true
			}
			continue
		}
		lits = append(lits, GoalLiteral{Fact: f, Negated: lit.Negated})
	}
	return lits, false
}

func materializeOperator(raw *ground.RawOperator, perm map[factKey]Fact, cfg ground.Config, staticTrueBound int) (*Operator, bool) {
	dropStatic := cfg.RemoveStaticFromPreconditions || !cfg.KeepStaticFacts

	precond := make([]Fact, 0, len(raw.Precondition))
	for ref := range raw.Precondition {
		f, ok := resolveRef(ref, perm, dropStatic)
		if !ok {
			continue
		}
		precond = append(precond, f)
	}
	sort.Slice(precond, func(i, j int) bool { return precond[i] < precond[j] })

	add := resolveRefs(raw.Add, perm, false)
	del := resolveRefs(raw.Delete, perm, false)

	var conds []ConditionalEffect
	for _, rc := range raw.Conditionals {
		var cond []GoalLiteral
		contradictory := false
		for _, cl := range rc.Condition {
			lit, drop, bad := resolveConditionLiteral(cl, perm, staticTrueBound)
			if bad {
				contradictory = true
				break
			}
			if drop {
				continue
			}
			cond = append(cond, lit)
		}
		if contradictory {
			continue // branch can never fire: sound to drop (spec.md §4.5 step 7)
		}
		cAdd := resolveRefs(rc.Add, perm, false)
		cDel := resolveRefs(rc.Delete, perm, false)
		if len(cAdd) == 0 && len(cDel) == 0 {
			continue
		}
		conds = append(conds, ConditionalEffect{Condition: cond, Add: cAdd, Delete: cDel, Cost: rc.Cost})
	}

	op := &Operator{
		Name:         raw.DisplayName,
		Precondition: precond,
		Add:          add,
		Delete:       del,
		Cost:         raw.Cost,
		Conditionals: conds,
	}
	if cfg.KeepActionArgs {
		op.SchemaID = raw.SchemaID
		op.Args = append([]string(nil), raw.Args...)
	}
	return op, true
}

// resolveRef maps a grounding-internal FactRef to a final Fact id. A static
// ref is dropped (ok=false) when dropStatic is set or the atom was never
// retained as a fact; this is always sound for a base precondition, since
// C3/C4 only interned a positive static precondition after confirming it
// held in the (invariant) static database.
func resolveRef(ref ground.FactRef, perm map[factKey]Fact, dropStatic bool) (Fact, bool) {
	if ref.Origin == fact.Static && dropStatic {
		return 0, false
	}
	f, ok := perm[factKey{ref.Origin, ref.ID}]
	return f, ok
}

func resolveRefs(refs []ground.FactRef, perm map[factKey]Fact, dropStatic bool) []Fact {
	out := make([]Fact, 0, len(refs))
	for _, r := range refs {
		if f, ok := resolveRef(r, perm, dropStatic); ok {
			out = append(out, f)
		}
	}
	return out
}

// resolveConditionLiteral maps a conditional effect's condition literal.
// Unlike a base precondition, this ref was never checked against the
// static database at grounding time (spec.md §9): a static ref below
// staticTrueBound was asserted true in the initial state and holds
// forever; one at or above it was interned only by this condition and so
// is permanently false. drop reports a trivially-satisfied conjunct to
// remove; bad reports a conjunct that can never hold, making the whole
// conditional branch dead.
func resolveConditionLiteral(cl ground.CondLiteral, perm map[factKey]Fact, staticTrueBound int) (lit GoalLiteral, drop bool, bad bool) {
	ref := cl.Ref
	if ref.Origin == fact.Static {
		trueForever := ref.ID < staticTrueBound
		switch {
		case trueForever && !cl.Negated:
			return GoalLiteral{}, true, false
		case trueForever && cl.Negated:
			return GoalLiteral{}, false, true
		case !trueForever && cl.Negated:
			return GoalLiteral{}, true, false
		default: // !trueForever && !cl.Negated
			return GoalLiteral{}, false, true
		}
	}
	f, ok := perm[factKey{ref.Origin, ref.ID}]
	if !ok {
		// Should not happen for a dynamic ref; treat defensively as
		// always-false rather than panicking on a malformed table.
		if cl.Negated {
			return GoalLiteral{}, true, false
		}
		return GoalLiteral{}, false, true
	}
	return GoalLiteral{Fact: f, Negated: cl.Negated}, false, false
}

// canonicalizeOperators sorts operators by name then by fact-set content
// and removes exact duplicates (spec.md §4.5 step 6). Per spec.md §9's
// Open Question (b), operators that differ only in display name are kept
// distinct by default.
func canonicalizeOperators(ops []*Operator) []*Operator {
	sort.SliceStable(ops, func(i, j int) bool {
		if ops[i].Name != ops[j].Name {
			return ops[i].Name < ops[j].Name
		}
		return operatorKey(ops[i]) < operatorKey(ops[j])
	})

	out := make([]*Operator, 0, len(ops))
	seen := make(map[string]bool, len(ops))
	for _, op := range ops {
		k := op.Name + "\x1f" + operatorKey(op)
		if seen[k] {
			continue
		}
		seen[k] = true
		op.ID = len(out)
		out = append(out, op)
	}
	return out
}

func operatorKey(op *Operator) string {
	var b []byte
	appendFacts := func(label string, fs []Fact) {
		b = append(b, label...)
		sorted := append([]Fact(nil), fs...)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
		for _, f := range sorted {
			b = append(b, byte(f), byte(f>>8), byte(f>>16), byte(f>>24))
		}
	}
	appendFacts("p", op.Precondition)
	appendFacts("a", op.Add)
	appendFacts("d", op.Delete)
	b = append(b, byte(op.Cost), byte(op.Cost>>8), byte(op.Cost>>16), byte(op.Cost>>24))
	for _, c := range op.Conditionals {
		appendFacts("cp", factsOf(c.Condition))
		appendFacts("ca", c.Add)
		appendFacts("cd", c.Delete)
		b = append(b, byte(c.Cost), byte(c.Cost>>8), byte(c.Cost>>16), byte(c.Cost>>24))
	}
	return string(b)
}

func factsOf(lits []GoalLiteral) []Fact {
	out := make([]Fact, len(lits))
	for i, l := range lits {
		f := l.Fact
		if l.Negated {
			f = -f - 1 // keep negated/non-negated of the same fact distinct
		}
		out[i] = f
	}
	return out
}

// mergeConditionals implements spec.md §4.5 step 7's "merge conditional
// effects whose conditions are pairwise contradictory or subsumed, where a
// sound merge is possible": branches with identical condition sets are
// folded into one by unioning their add/delete sets.
func mergeConditionals(op *Operator) {
	if len(op.Conditionals) < 2 {
		return
	}
	type bucket struct {
		cond   []GoalLiteral
		add    map[Fact]bool
		delete map[Fact]bool
		cost   ground.Cost
	}
	var order []string
	buckets := make(map[string]*bucket, len(op.Conditionals))
	for _, c := range op.Conditionals {
		key := conditionKey(c.Condition)
		b, ok := buckets[key]
		if !ok {
			b = &bucket{cond: c.Condition, add: map[Fact]bool{}, delete: map[Fact]bool{}}
			buckets[key] = b
			order = append(order, key)
		}
		for _, f := range c.Add {
			b.add[f] = true
		}
		for _, f := range c.Delete {
			b.delete[f] = true
		}
		// Two branches sharing a condition fire together, so their
		// increase(total-cost, ...) terms both apply.
		b.cost = b.cost.Add(c.Cost)
	}

	merged := make([]ConditionalEffect, 0, len(order))
	for _, key := range order {
		b := buckets[key]
		merged = append(merged, ConditionalEffect{
			Condition: b.cond,
			Add:       setToSortedFacts(b.add),
			Delete:    setToSortedFacts(b.delete),
			Cost:      b.cost,
		})
	}
	op.Conditionals = merged
}

func conditionKey(cond []GoalLiteral) string {
	sorted := append([]Fact(nil), factsOf(cond)...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	b := make([]byte, 0, len(sorted)*4)
	for _, f := range sorted {
		b = append(b, byte(f), byte(f>>8), byte(f>>16), byte(f>>24))
	}
	return string(b)
}

func setToSortedFacts(set map[Fact]bool) []Fact {
	out := make([]Fact, 0, len(set))
	for f := range set {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
