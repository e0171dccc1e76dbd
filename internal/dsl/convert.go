package dsl

import (
	"fmt"

	"stripsplan/internal/lifted"
)

// stripVar strips the leading '?' the lexer keeps as part of a Var token's
// text, so the same bare name is used both for a schema parameter's
// declared name and for every Term referencing it.
func stripVar(s string) string {
	if len(s) > 0 && s[0] == '?' {
		return s[1:]
	}
	return s
}

func convertTerm(t *TermAST) lifted.Term {
	if t.Var != nil {
		return lifted.Var(stripVar(*t.Var))
	}
	return lifted.Const(*t.Const)
}

func convertTerms(ts []*TermAST) []lifted.Term {
	out := make([]lifted.Term, len(ts))
	for i, t := range ts {
		out[i] = convertTerm(t)
	}
	return out
}

func convertAtom(a *AtomAST) lifted.Literal {
	return lifted.Literal{Predicate: a.Predicate, Args: convertTerms(a.Args)}
}

func convertLiteral(l *LiteralAST) lifted.Literal {
	switch {
	case l.NotEq != nil:
		return lifted.Literal{
			Predicate: lifted.EqualityPredicate,
			Args:      []lifted.Term{convertTerm(l.NotEq.Left), convertTerm(l.NotEq.Right)},
			Negated:   true,
		}
	case l.Eq != nil:
		return lifted.Literal{
			Predicate: lifted.EqualityPredicate,
			Args:      []lifted.Term{convertTerm(l.Eq.Left), convertTerm(l.Eq.Right)},
		}
	case l.Negative != nil:
		lit := convertAtom(l.Negative)
		lit.Negated = true
		return lit
	default:
		return convertAtom(l.Positive)
	}
}

func convertPrecondition(p *PreconditionAST) []lifted.Literal {
	if p == nil {
		return nil
	}
	if p.And != nil {
		out := make([]lifted.Literal, len(p.And))
		for i, l := range p.And {
			out[i] = convertLiteral(l)
		}
		return out
	}
	if p.Literal != nil {
		return []lifted.Literal{convertLiteral(p.Literal)}
	}
	return nil
}

func convertCostTerm(c *CostTermAST) lifted.CostTerm {
	if c.Int != nil {
		v := *c.Int
		return lifted.CostTerm{Literal: &v}
	}
	return lifted.CostTerm{Function: c.Function.Name, Args: convertTerms(c.Function.Args)}
}

func convertWhen(w *WhenAST) lifted.ConditionalEffect {
	ce := lifted.ConditionalEffect{}
	for _, l := range w.Condition {
		ce.Condition = append(ce.Condition, convertLiteral(l))
	}
	for _, it := range w.Effect {
		switch {
		case it.Increase != nil:
			ce.Cost = append(ce.Cost, convertCostTerm(it.Increase.Amount))
		case it.Negative != nil:
			ce.Deletes = append(ce.Deletes, convertAtom(it.Negative))
		default:
			ce.Adds = append(ce.Adds, convertAtom(it.Positive))
		}
	}
	return ce
}

func convertEffectItems(items []*EffectItemAST) lifted.Effect {
	var eff lifted.Effect
	for _, it := range items {
		switch {
		case it.Increase != nil:
			eff.Cost = append(eff.Cost, convertCostTerm(it.Increase.Amount))
		case it.When != nil:
			eff.Conditionals = append(eff.Conditionals, convertWhen(it.When))
		case it.Negative != nil:
			eff.Deletes = append(eff.Deletes, convertAtom(it.Negative))
		default:
			eff.Adds = append(eff.Adds, convertAtom(it.Positive))
		}
	}
	return eff
}

func convertActionEffect(e *ActionEffectAST) lifted.Effect {
	if e == nil {
		return lifted.Effect{}
	}
	if e.And != nil {
		return convertEffectItems(e.And)
	}
	if e.Single != nil {
		return convertEffectItems([]*EffectItemAST{e.Single})
	}
	return lifted.Effect{}
}

func groupType(t *string) lifted.TypeName {
	if t == nil {
		return lifted.TopType
	}
	return lifted.TypeName(*t)
}

func convertAction(a *ActionAST) *lifted.ActionSchema {
	var params []lifted.Parameter
	for _, vg := range a.Params {
		t := groupType(vg.Type)
		for _, name := range vg.Names {
			params = append(params, lifted.Parameter{Name: stripVar(name), Type: t})
		}
	}
	return &lifted.ActionSchema{
		Name:    a.Name,
		Params:  params,
		Precond: convertPrecondition(a.Precond),
		Effect:  convertActionEffect(a.Effect),
	}
}

// convertDomain builds a *lifted.Domain from a parsed domain AST. Type
// declarations are processed in written order: a name used only as a
// supertype (e.g. "car truck - vehicle") is auto-declared as a direct
// subtype of the top type the first time it's referenced, so a domain
// author need not pre-declare every supertype on its own line — but a
// type that IS later given its own, different supertype must be declared
// before any group uses it as a parent (see DESIGN.md).
func convertDomain(ast *DomainAST) (*lifted.Domain, error) {
	d := lifted.NewDomain(ast.Name)

	for _, g := range ast.Types {
		parent := lifted.TopType
		if g.Type != nil {
			parent = lifted.TypeName(*g.Type)
			if !d.Types.Has(parent) {
				if err := d.Types.Declare(parent, lifted.TopType); err != nil {
					return nil, err
				}
			}
		}
		for _, name := range g.Names {
			if err := d.Types.Declare(lifted.TypeName(name), parent); err != nil {
				return nil, err
			}
		}
	}

	for _, pd := range ast.Predicates {
		var paramTypes []lifted.TypeName
		for _, vg := range pd.Params {
			t := groupType(vg.Type)
			for range vg.Names {
				paramTypes = append(paramTypes, t)
			}
		}
		if err := d.Predicates.Declare(pd.Name, paramTypes...); err != nil {
			return nil, err
		}
	}

	for _, a := range ast.Actions {
		d.Actions = append(d.Actions, convertAction(a))
	}

	d.ResolveStatics()
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}

func constArgs(terms []*TermAST, context string) ([]string, error) {
	out := make([]string, len(terms))
	for i, t := range terms {
		if t.Var != nil {
			return nil, errSyntax("UnboundConstant", fmt.Sprintf("%s argument %q must be a constant, not a variable", context, *t.Var))
		}
		out[i] = *t.Const
	}
	return out, nil
}

func convertInit(items []*InitItemAST) ([]lifted.GroundAtom, []lifted.FunctionAssignment, error) {
	var atoms []lifted.GroundAtom
	var fns []lifted.FunctionAssignment
	for _, it := range items {
		if it.FuncAssign != nil {
			args, err := constArgs(it.FuncAssign.Function.Args, "init function")
			if err != nil {
				return nil, nil, err
			}
			fns = append(fns, lifted.FunctionAssignment{
				Function: it.FuncAssign.Function.Name,
				Args:     args,
				Value:    it.FuncAssign.Value,
			})
			continue
		}
		args, err := constArgs(it.Atom.Args, "init atom")
		if err != nil {
			return nil, nil, err
		}
		atoms = append(atoms, lifted.GroundAtom{Predicate: it.Atom.Predicate, Args: args})
	}
	return atoms, fns, nil
}

// hasCostTerms reports whether any action schema's effect carries an
// increase(total-cost, ...) term, base or conditional.
func hasCostTerms(d *lifted.Domain) bool {
	for _, a := range d.Actions {
		if len(a.Effect.Cost) > 0 {
			return true
		}
		for _, c := range a.Effect.Conditionals {
			if len(c.Cost) > 0 {
				return true
			}
		}
	}
	return false
}

// convertProblem builds a *lifted.Problem over an already-converted domain.
// spec.md §4.1 step 6 and §6's "unit-cost mode with a declared metric of
// zero" edge case: UnitCostMetric is set both when the problem declares no
// metric at all, and when it declares "minimize (total-cost)" but the
// domain never actually increases total-cost anywhere (an always-zero
// metric, indistinguishable in effect from having none).
func convertProblem(ast *ProblemAST, d *lifted.Domain) (*lifted.Problem, error) {
	if ast.Domain != d.Name {
		return nil, errSyntax("DomainMismatch", fmt.Sprintf("problem declares domain %q, expected %q", ast.Domain, d.Name))
	}

	objects := lifted.NewObjectUniverse(d.Types)
	for _, g := range ast.Objects {
		t := groupType(g.Type)
		for _, name := range g.Names {
			if err := objects.Add(name, t); err != nil {
				return nil, err
			}
		}
	}

	p := lifted.NewProblem(ast.Name, d, objects)

	atoms, fns, err := convertInit(ast.Init)
	if err != nil {
		return nil, err
	}
	p.Init = atoms
	p.InitFn = fns
	p.Goal = lifted.Goal{Conjuncts: convertPrecondition(ast.Goal)}

	d.HasMetric = ast.Metric != nil
	p.UnitCostMetric = ast.Metric == nil || !hasCostTerms(d)

	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}
