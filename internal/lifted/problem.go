package lifted

import "fmt"

// GroundAtom is a fully-instantiated atom: a predicate applied to a tuple
// of object names (no variables).
type GroundAtom struct {
	Predicate string
	Args      []string
}

func (g GroundAtom) String() string {
	return fmt.Sprintf("(%s %v)", g.Predicate, g.Args)
}

// FunctionAssignment binds a numeric function atom (e.g. a per-action cost
// term) to a scalar value in the initial state.
type FunctionAssignment struct {
	Function string
	Args     []string
	Value    int64
}

// Goal is a conjunction of (possibly negated) ground-or-lifted-free atoms.
// spec.md §4.5 step 4: only conjunctive goals are accepted. Goal literals
// reuse lifted.Literal with object constants in Args (IsVar must be false);
// a literal goal value of `false` is represented as Impossible.
type Goal struct {
	Conjuncts   []Literal
	Impossible  bool
}

// Problem is the object universe, initial state, goal, and optional metric
// for one planning instance over a Domain.
type Problem struct {
	Name    string
	Domain  *Domain
	Objects *ObjectUniverse
	Init    []GroundAtom
	InitFn  []FunctionAssignment
	Goal    Goal
	// UnitCostMetric is true when the problem declares no metric, or
	// declares "minimize total-cost" over a domain with no cost terms; the
	// materializer then gives every operator cost 1. NewProblem leaves it
	// false.
	UnitCostMetric bool
}

func NewProblem(name string, d *Domain, objects *ObjectUniverse) *Problem {
	return &Problem{Name: name, Domain: d, Objects: objects}
}

// Validate checks every init/goal atom against declared predicates and
// objects, and that the goal is a plain conjunction (spec §4.5 step 4 /
// §7 kind 2: a disjunctive goal is an error — disjunction simply has no
// representation in Goal, so validation here only needs to check arity
// and that referenced names are declared).
func (p *Problem) Validate() error {
	checkArgs := func(pred string, args []string) error {
		pr, err := p.Domain.Predicates.Lookup(pred)
		if err != nil {
			return err
		}
		if len(args) != pr.Arity() {
			return errArityMismatch(pred, pr.Arity(), len(args))
		}
		for _, a := range args {
			if !p.Objects.Has(a) {
				return errUnknownObject(a)
			}
		}
		return nil
	}

	for _, atom := range p.Init {
		if err := checkArgs(atom.Predicate, atom.Args); err != nil {
			return err
		}
	}
	for _, lit := range p.Goal.Conjuncts {
		args := make([]string, len(lit.Args))
		for i, t := range lit.Args {
			if t.IsVar {
				return Error{Kind: "UnboundGoalVariable", Message: "goal atom " + lit.Predicate + " contains a free variable"}
			}
			args[i] = t.Name
		}
		if err := checkArgs(lit.Predicate, args); err != nil {
			return err
		}
	}
	return nil
}
