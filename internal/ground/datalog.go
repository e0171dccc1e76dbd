package ground

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/mangle/analysis"
	"github.com/google/mangle/ast"
	mengine "github.com/google/mangle/engine"
	"github.com/google/mangle/factstore"
	"github.com/google/mangle/parse"
	"go.uber.org/zap"

	"stripsplan/internal/fact"
	"stripsplan/internal/lifted"
	"stripsplan/internal/opid"
)

// RunDatalog implements C3's Datalog back-end (spec.md §4.3.2): the lifted
// problem compiles to a Mangle program — one unary predicate per type, one
// predicate per source predicate, one rule per effect atom, and a
// zero-arity goal predicate — evaluated to its unweighted canonical model
// via semi-naive bottom-up fixpoint. Unlike the relational back-end, this
// one asks Mangle's own engine to do the fixpoint instead of re-querying a
// SQL join on every round.
//
// Rule bodies are emitted exactly as written, without the normal-form
// (<=2 body atoms) decomposition spec.md describes for a hand-rolled
// consequence operator: Mangle's evaluator has no such restriction, so that
// transform buys nothing here and is skipped (see DESIGN.md).
func RunDatalog(p *lifted.Problem, cfg Config) (*Result, error) {
	if cfg.layered() {
		return nil, errLayeredDatalogUnsupported()
	}
	log := cfg.logger()
	b := &datalogBuilder{
		domain: p.Domain,
		table:  fact.NewTable(),
		ops:    opid.NewInterner(),
	}

	b.internInit(p)
	staticTrueBound := b.table.Static.Len()

	var src strings.Builder
	b.writeTypeFacts(&src, p)
	b.writeInitFacts(&src, p)
	b.writeRules(&src)
	b.writeGoalRule(&src, p)
	log.Debug("generated datalog program", zap.Int("bytes", src.Len()))

	unit, err := parse.Unit(bytes.NewReader([]byte(src.String())))
	if err != nil {
		return nil, errBackend("parse generated datalog program", err)
	}
	programInfo, err := analysis.AnalyzeOneUnit(unit, nil)
	if err != nil {
		return nil, errBackend("analyze generated datalog program", err)
	}

	store := factstore.NewConcurrentFactStore(factstore.NewSimpleInMemoryStore())
	if _, err := mengine.EvalProgramWithStats(programInfo, store); err != nil {
		return nil, errBackend("evaluate datalog program", err)
	}
	log.Debug("datalog fixpoint evaluated, canonical model computed")

	b.enumerateCandidates(p)

	m := newMaterializer(p.Domain, b.table, b.ops, p.UnitCostMetric)
	m.log = log
	var ops []*RawOperator
	for schemaID, schema := range p.Domain.Actions {
		for _, args := range b.candidateArgs[schemaID] {
			if !b.tupleDerived(store, schemaID, schema, args) {
				continue
			}
			op, ok := m.Materialize(schemaID, schema, args)
			if !ok {
				continue
			}
			ops = append(ops, op)
		}
	}

	goalReachable := true
	sym := ast.PredicateSym{Symbol: "goal", Arity: 0}
	found := false
	_ = store.GetFacts(ast.NewQuery(sym), func(ast.Atom) error {
		found = true
		return nil
	})
	goalReachable = found || len(p.Goal.Conjuncts) == 0

	return &Result{
		Table:           b.table,
		Operators:       ops,
		Unsolvable:      p.Goal.Impossible || !goalReachable,
		StaticTrueBound: staticTrueBound,
	}, nil
}

// internInit mirrors the relational back-end's seedInit: it records every
// initial-state atom in the shared fact.Table before any rule is generated,
// so static atoms that are genuinely true are interned (and hence counted
// in StaticTrueBound) ahead of any static atom a conditional effect's
// condition merely mentions.
func (b *datalogBuilder) internInit(p *lifted.Problem) {
	for _, atom := range p.Init {
		if b.domain.Predicates.IsStatic(atom.Predicate) {
			b.table.Static.Intern(atom.Predicate, atom.Args)
		} else {
			b.table.Dynamic.Intern(atom.Predicate, atom.Args)
		}
	}
	for _, fn := range p.InitFn {
		b.table.Function.Intern(fn.Function, fn.Args, fn.Value)
	}
}

type datalogBuilder struct {
	domain        *lifted.Domain
	table         *fact.Table
	ops           *opid.Interner
	candidateArgs map[int][][]string
}

func mangleIdent(prefix, name string) string {
	var b strings.Builder
	b.WriteString(prefix)
	for _, c := range name {
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') {
			b.WriteRune(c)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}

func mangleType(t lifted.TypeName) string { return mangleIdent("typ_", string(t)) }
func manglePred(name string) string       { return mangleIdent("pred_", name) }

func quoted(s string) string { return strconv.Quote(s) }

func (b *datalogBuilder) writeTypeFacts(w *strings.Builder, p *lifted.Problem) {
	for _, t := range p.Domain.Types.Names() {
		for _, obj := range p.Objects.Objects() {
			if p.Objects.IsA(obj, t) {
				fmt.Fprintf(w, "%s(%s).\n", mangleType(t), quoted(obj))
			}
		}
	}
}

func (b *datalogBuilder) writeInitFacts(w *strings.Builder, p *lifted.Problem) {
	for _, atom := range p.Init {
		args := make([]string, len(atom.Args))
		for i, a := range atom.Args {
			args[i] = quoted(a)
		}
		fmt.Fprintf(w, "%s(%s).\n", manglePred(atom.Predicate), strings.Join(args, ", "))
	}
}

// mangleVar returns the Mangle (upper-case) variable name for a schema
// parameter identified by its position, independent of the lifted name's
// own casing.
func mangleVar(i int) string { return fmt.Sprintf("V%d", i) }

func (b *datalogBuilder) writeRules(w *strings.Builder) {
	for _, schema := range b.domain.Actions {
		paramVar := make(map[string]string, len(schema.Params))
		var body []string
		for i, p := range schema.Params {
			v := mangleVar(i)
			paramVar[p.Name] = v
			body = append(body, fmt.Sprintf("%s(%s)", mangleType(p.Type), v))
		}
		for _, lit := range schema.Precond {
			if lit.Predicate == lifted.EqualityPredicate {
				op := "="
				if lit.Negated {
					op = "!="
				}
				body = append(body, fmt.Sprintf("%s %s %s", termText(lit.Args[0], paramVar), op, termText(lit.Args[1], paramVar)))
				continue
			}
			atomText := fmt.Sprintf("%s(%s)", manglePred(lit.Predicate), termList(lit.Args, paramVar))
			if lit.Negated {
				atomText = "!" + atomText
			}
			body = append(body, atomText)
		}
		bodyText := strings.Join(body, ", ")

		emit := func(lit lifted.Literal) {
			head := fmt.Sprintf("%s(%s)", manglePred(lit.Predicate), termList(lit.Args, paramVar))
			fmt.Fprintf(w, "%s :- %s.\n", head, bodyText)
		}
		for _, lit := range schema.Effect.Adds {
			emit(lit)
		}
		for _, ce := range schema.Effect.Conditionals {
			for _, lit := range ce.Adds {
				emit(lit)
			}
			for _, lit := range ce.Deletes {
				emit(lit)
			}
		}
	}
}

func (b *datalogBuilder) writeGoalRule(w *strings.Builder, p *lifted.Problem) {
	if p.Goal.Impossible {
		return
	}
	var body []string
	for _, lit := range p.Goal.Conjuncts {
		args := make([]string, len(lit.Args))
		for i, a := range lit.Args {
			args[i] = quoted(a.Name)
		}
		atomText := fmt.Sprintf("%s(%s)", manglePred(lit.Predicate), strings.Join(args, ", "))
		if lit.Negated {
			atomText = "!" + atomText
		}
		body = append(body, atomText)
	}
	if len(body) == 0 {
		fmt.Fprintf(w, "goal().\n")
		return
	}
	fmt.Fprintf(w, "goal() :- %s.\n", strings.Join(body, ", "))
}

func termText(t lifted.Term, paramVar map[string]string) string {
	if t.IsVar {
		return paramVar[t.Name]
	}
	return quoted(t.Name)
}

func termList(args []lifted.Term, paramVar map[string]string) string {
	out := make([]string, len(args))
	for i, a := range args {
		out[i] = termText(a, paramVar)
	}
	return strings.Join(out, ", ")
}

// tupleDerived re-checks a schema's precondition against the fixpoint's
// store for one candidate argument tuple. Candidates come from the object
// universe's cross product restricted by parameter type, filtered here
// rather than queried back out of Mangle: the reachability question this
// back-end answers is "which source predicates hold", and C4 needs the
// original schema/args pairing to materialize an operator, which a bare
// derived atom for the head predicate alone does not carry when several
// schemas could have produced it.
func (b *datalogBuilder) tupleDerived(store factstore.FactStore, schemaID int, schema *lifted.ActionSchema, args []string) bool {
	env := make(map[string]string, len(schema.Params))
	for i, p := range schema.Params {
		env[p.Name] = args[i]
	}
	for _, lit := range schema.Precond {
		if lit.Predicate == lifted.EqualityPredicate {
			lhs, rhs := bind(lit.Args[0], env), bind(lit.Args[1], env)
			eq := lhs == rhs
			if lit.Negated {
				eq = !eq
			}
			if !eq {
				return false
			}
			continue
		}
		litArgs := bindArgs(lit.Args, env)
		found := atomPresent(store, lit.Predicate, litArgs)
		if lit.Negated == found {
			return false
		}
	}
	return true
}

func atomPresent(store factstore.FactStore, predicate string, args []string) bool {
	sym := ast.PredicateSym{Symbol: manglePred(predicate), Arity: len(args)}
	found := false
	_ = store.GetFacts(ast.NewQuery(sym), func(atom ast.Atom) error {
		if found || !atomArgsMatch(atom, args) {
			return nil
		}
		found = true
		return nil
	})
	return found
}

func atomArgsMatch(atom ast.Atom, args []string) bool {
	if len(atom.Args) != len(args) {
		return false
	}
	for i, want := range args {
		c, ok := atom.Args[i].(ast.Constant)
		if !ok {
			return false
		}
		s, err := c.StringValue()
		if err != nil || s != want {
			return false
		}
	}
	return true
}

// enumerateCandidates precomputes, per schema, every argument tuple
// consistent with parameter types — the finite search space tupleDerived
// filters down using the computed canonical model. It runs after the single
// fixpoint evaluation; tupleDerived only reads the resulting store.
func (b *datalogBuilder) enumerateCandidates(p *lifted.Problem) {
	b.candidateArgs = map[int][][]string{}
	for schemaID, schema := range p.Domain.Actions {
		domains := make([][]string, len(schema.Params))
		for i, prm := range schema.Params {
			domains[i] = p.Objects.ObjectsOfType(prm.Type)
		}
		b.candidateArgs[schemaID] = crossProduct(domains)
	}
}

func crossProduct(domains [][]string) [][]string {
	if len(domains) == 0 {
		return [][]string{{}}
	}
	rest := crossProduct(domains[1:])
	var out [][]string
	for _, v := range domains[0] {
		for _, r := range rest {
			tuple := append([]string{v}, r...)
			out = append(out, tuple)
		}
	}
	return out
}
