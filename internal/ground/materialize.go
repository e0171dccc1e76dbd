package ground

import (
	"go.uber.org/zap"

	"stripsplan/internal/fact"
	"stripsplan/internal/lifted"
	"stripsplan/internal/obslog"
	"stripsplan/internal/opid"
)

// materializer binds one schema's reachable argument tuples to propositional
// operators, per spec.md §4.4.
type materializer struct {
	domain   *lifted.Domain
	table    *fact.Table
	ops      *opid.Interner
	unitCost bool
	log      *obslog.Logger
}

func newMaterializer(d *lifted.Domain, t *fact.Table, ops *opid.Interner, unitCost bool) *materializer {
	return &materializer{domain: d, table: t, ops: ops, unitCost: unitCost, log: obslog.Nop()}
}

// bind resolves a Term against a schema's current parameter -> object
// binding.
func bind(t lifted.Term, env map[string]string) string {
	if t.IsVar {
		return env[t.Name]
	}
	return t.Name
}

func bindArgs(args []lifted.Term, env map[string]string) []string {
	out := make([]string, len(args))
	for i, a := range args {
		out[i] = bind(a, env)
	}
	return out
}

// internRef interns a resolved atom into the dynamic or static table
// depending on the predicate's declared staticness, returning a FactRef.
func (m *materializer) internRef(predicate string, args []string) FactRef {
	if m.domain.Predicates.IsStatic(predicate) {
		id, _ := m.table.Static.Intern(predicate, args)
		return FactRef{Origin: fact.Static, ID: id}
	}
	id, _ := m.table.Dynamic.Intern(predicate, args)
	return FactRef{Origin: fact.Dynamic, ID: id}
}

// Materialize grounds one (schema, args) instance. ok is false when the
// action is discarded: a violated static negative precondition (step 1),
// or an empty combined add/delete set (step 3).
func (m *materializer) Materialize(schemaID int, schema *lifted.ActionSchema, args []string) (op *RawOperator, ok bool) {
	env := make(map[string]string, len(schema.Params))
	for i, p := range schema.Params {
		env[p.Name] = args[i]
	}

	precond := make(map[FactRef]bool)
	for _, lit := range schema.Precond {
		litArgs := bindArgs(lit.Args, env)
		if lit.Negated {
			// Validate already enforces this references a static
			// predicate; a violated one discards the whole action.
			if _, found := m.table.Static.Find(lit.Predicate, litArgs); found {
				return nil, false
			}
			continue
		}
		precond[m.internRef(lit.Predicate, litArgs)] = true
	}

	var add, del []FactRef
	var cost Cost
	for _, lit := range schema.Effect.Adds {
		add = append(add, m.internRef(lit.Predicate, bindArgs(lit.Args, env)))
	}
	for _, lit := range schema.Effect.Deletes {
		del = append(del, m.internRef(lit.Predicate, bindArgs(lit.Args, env)))
	}
	for _, ct := range schema.Effect.Cost {
		cost += m.resolveCostTerm(ct, env)
	}

	var conditionals []RawConditional
	for _, ce := range schema.Effect.Conditionals {
		rc := RawConditional{}
		for _, lit := range ce.Condition {
			ref := m.internRef(lit.Predicate, bindArgs(lit.Args, env))
			rc.Condition = append(rc.Condition, CondLiteral{Ref: ref, Negated: lit.Negated})
		}
		for _, lit := range ce.Adds {
			rc.Add = append(rc.Add, m.internRef(lit.Predicate, bindArgs(lit.Args, env)))
		}
		for _, lit := range ce.Deletes {
			rc.Delete = append(rc.Delete, m.internRef(lit.Predicate, bindArgs(lit.Args, env)))
		}
		for _, ct := range ce.Cost {
			rc.Cost += m.resolveCostTerm(ct, env)
		}
		conditionals = append(conditionals, rc)
	}

	if len(add) == 0 && len(del) == 0 && allConditionalsEmpty(conditionals) {
		return nil, false
	}

	// step 4: delete := delete ∩ precondition; add := add \ precondition.
	del = intersectRefs(del, precond)
	add = subtractRefs(add, precond)
	for i := range conditionals {
		known := precond
		if len(conditionals[i].Condition) > 0 {
			known = unionPrecondWithCondition(precond, conditionals[i].Condition)
		}
		conditionals[i].Delete = intersectRefs(conditionals[i].Delete, known)
		conditionals[i].Add = subtractRefs(conditionals[i].Add, known)
	}

	if m.unitCost {
		cost = 1
		for i := range conditionals {
			conditionals[i].Cost = 0
		}
	}

	id, _ := m.ops.Intern(opid.Key{SchemaID: schemaID, Args: args})

	return &RawOperator{
		SchemaID:     schemaID,
		SchemaName:   schema.Name,
		Args:         args,
		OpID:         id,
		Precondition: precond,
		Add:          add,
		Delete:       del,
		Cost:         cost,
		Conditionals: conditionals,
		DisplayName:  displayName(schema.Name, args),
	}, true
}

func (m *materializer) resolveCostTerm(ct lifted.CostTerm, env map[string]string) Cost {
	if ct.Literal != nil {
		return Cost(*ct.Literal)
	}
	args := bindArgs(ct.Args, env)
	if id, ok := m.table.Function.Find(ct.Function, args); ok {
		return Cost(m.table.Function.Value(id))
	}
	// spec.md §9 open question (a): a missing cost function falls back
	// to zero.
	m.log.Warn("cost function has no matching binding, falling back to zero",
		zap.String("function", ct.Function), zap.Strings("args", args))
	return 0
}

func allConditionalsEmpty(cs []RawConditional) bool {
	for _, c := range cs {
		if len(c.Add) > 0 || len(c.Delete) > 0 {
			return false
		}
	}
	return true
}

func intersectRefs(refs []FactRef, set map[FactRef]bool) []FactRef {
	var out []FactRef
	for _, r := range refs {
		if set[r] {
			out = append(out, r)
		}
	}
	return out
}

func subtractRefs(refs []FactRef, set map[FactRef]bool) []FactRef {
	var out []FactRef
	for _, r := range refs {
		if !set[r] {
			out = append(out, r)
		}
	}
	return out
}

func unionPrecondWithCondition(precond map[FactRef]bool, cond []CondLiteral) map[FactRef]bool {
	out := make(map[FactRef]bool, len(precond)+len(cond))
	for r := range precond {
		out[r] = true
	}
	for _, c := range cond {
		if !c.Negated {
			out[c.Ref] = true
		}
	}
	return out
}
