package lifted

import "fmt"

// Term is either a schema parameter reference (a variable) or an object
// constant. Which one it is must be known at construction time: the DSL
// converter decides by syntax, turning a ?-prefixed token into a variable
// and a bare identifier into a constant.
type Term struct {
	Name  string
	IsVar bool
}

func Var(name string) Term    { return Term{Name: name, IsVar: true} }
func Const(name string) Term  { return Term{Name: name, IsVar: false} }
func (t Term) String() string { return t.Name }

// Literal is a (possibly negated) predicate atom over terms, used both in
// preconditions and in effect add/delete lists.
type Literal struct {
	Predicate string
	Args      []Term
	Negated   bool
}

func (l Literal) String() string {
	if l.Negated {
		return fmt.Sprintf("(not (%s %v))", l.Predicate, l.Args)
	}
	return fmt.Sprintf("(%s %v)", l.Predicate, l.Args)
}

// CostTerm is the argument of an `increase(total-cost, ...)` effect: either
// a literal non-negative integer amount, or a reference to a static
// function atom whose scalar value is read at grounding time.
type CostTerm struct {
	Literal  *int64
	Function string
	Args     []Term
}

// ConditionalEffect is a `when(condition, inner-effect)` block. The inner
// effect may not itself contain a conditional (spec §3: "no nesting of
// conditionals").
type ConditionalEffect struct {
	Condition []Literal
	Adds      []Literal
	Deletes   []Literal
	Cost      []CostTerm
}

// Effect is an action schema's effect formula: a conjunction of positive
// atoms, negative atoms, cost-increase terms, and conditional blocks.
type Effect struct {
	Adds         []Literal
	Deletes      []Literal
	Cost         []CostTerm
	Conditionals []ConditionalEffect
}

// Parameter is one typed formal parameter of an action schema.
type Parameter struct {
	Name string
	Type TypeName
}

// ActionSchema is (name, parameter list with types, precondition, effect).
type ActionSchema struct {
	Name      string
	Params    []Parameter
	Precond   []Literal
	Effect    Effect
}

func (a *ActionSchema) paramIndex() map[string]Parameter {
	idx := make(map[string]Parameter, len(a.Params))
	for _, p := range a.Params {
		idx[p.Name] = p
	}
	return idx
}

// Validate checks the structural invariants spec.md §3 places on a schema:
// any negated precondition atom must refer to a static predicate, effect
// conditionals may not nest, and every free variable in the effect must
// appear in the precondition.
func (a *ActionSchema) Validate(preds *PredicateTable) error {
	params := a.paramIndex()

	precondVars := map[string]bool{}
	for _, lit := range a.Precond {
		p, err := preds.Lookup(lit.Predicate)
		if err != nil {
			return err
		}
		if len(lit.Args) != p.Arity() {
			return errArityMismatch(lit.Predicate, p.Arity(), len(lit.Args))
		}
		if lit.Negated && !preds.IsStatic(lit.Predicate) {
			return errUnsupported("NegativePrecondition",
				fmt.Sprintf("action %q: negative precondition on non-static predicate %q", a.Name, lit.Predicate))
		}
		for _, t := range lit.Args {
			if t.IsVar {
				if _, ok := params[t.Name]; !ok {
					return Error{Kind: "UnboundVariable", Message: fmt.Sprintf("action %q: precondition variable %q is not a parameter", a.Name, t.Name)}
				}
				precondVars[t.Name] = true
			}
		}
	}

	checkEffectAtom := func(lit Literal, extraBound map[string]bool) error {
		p, err := preds.Lookup(lit.Predicate)
		if err != nil {
			return err
		}
		if len(lit.Args) != p.Arity() {
			return errArityMismatch(lit.Predicate, p.Arity(), len(lit.Args))
		}
		for _, t := range lit.Args {
			if !t.IsVar {
				continue
			}
			if _, ok := params[t.Name]; !ok {
				return Error{Kind: "UnboundVariable", Message: fmt.Sprintf("action %q: effect variable %q is not a parameter", a.Name, t.Name)}
			}
			if !precondVars[t.Name] && !extraBound[t.Name] {
				return Error{Kind: "UnboundEffectVariable", Message: fmt.Sprintf("action %q: effect variable %q does not appear in the precondition", a.Name, t.Name)}
			}
		}
		return nil
	}

	for _, lit := range a.Effect.Adds {
		if err := checkEffectAtom(lit, nil); err != nil {
			return err
		}
	}
	for _, lit := range a.Effect.Deletes {
		if err := checkEffectAtom(lit, nil); err != nil {
			return err
		}
	}
	for _, c := range a.Effect.Conditionals {
		condBound := map[string]bool{}
		for _, lit := range c.Condition {
			p, err := preds.Lookup(lit.Predicate)
			if err != nil {
				return err
			}
			if lit.Negated && !preds.IsStatic(lit.Predicate) {
				return errUnsupported("NegativePrecondition",
					fmt.Sprintf("action %q: negative condition on non-static predicate %q", a.Name, lit.Predicate))
			}
			_ = p
			for _, t := range lit.Args {
				if t.IsVar {
					condBound[t.Name] = true
				}
			}
		}
		for _, lit := range c.Adds {
			if err := checkEffectAtom(lit, condBound); err != nil {
				return err
			}
		}
		for _, lit := range c.Deletes {
			if err := checkEffectAtom(lit, condBound); err != nil {
				return err
			}
		}
	}
	return nil
}

// Domain bundles the type lattice, predicate table, and action schemas
// shared by a planning problem.
type Domain struct {
	Name       string
	Types      *TypeSet
	Predicates *PredicateTable
	Actions    []*ActionSchema
	HasMetric  bool
}

func NewDomain(name string) *Domain {
	return &Domain{
		Name:       name,
		Types:      NewTypeSet(),
		Predicates: NewPredicateTable(),
	}
}

// ResolveStatics marks every predicate mentioned in some schema's effect as
// dynamic and everything else (bar equality) static. Must be called once
// all action schemas have been added and before grounding.
func (d *Domain) ResolveStatics() {
	dynamic := map[string]bool{}
	mark := func(lits []Literal) {
		for _, l := range lits {
			dynamic[l.Predicate] = true
		}
	}
	for _, a := range d.Actions {
		mark(a.Effect.Adds)
		mark(a.Effect.Deletes)
		for _, c := range a.Effect.Conditionals {
			mark(c.Adds)
			mark(c.Deletes)
		}
	}
	d.Predicates.markAllStaticExceptMentioned(dynamic)
}

// Validate validates every action schema against the (already
// static-resolved) predicate table.
func (d *Domain) Validate() error {
	for _, a := range d.Actions {
		if err := a.Validate(d.Predicates); err != nil {
			return err
		}
	}
	return nil
}
