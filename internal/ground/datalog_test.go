package ground

import (
	"context"
	"sort"
	"testing"

	"stripsplan/internal/fact"
	"stripsplan/internal/lifted"
)

// buildRoadDomain grounds a small domain mixing a static binary predicate
// (road), a static unary predicate used only in a negated precondition
// (blocked), and two dynamic predicates — enough surface for the relational
// and datalog back-ends to disagree if either mishandles statics or
// negation. blocked(b) rules out the direct a->b edge, so the only ever
// reachable operator is "move a c" via the a->c edge.
func buildRoadDomain(t *testing.T) *lifted.Problem {
	t.Helper()
	d := lifted.NewDomain("roads")
	if err := d.Types.Declare("loc"); err != nil {
		t.Fatal(err)
	}
	if err := d.Predicates.Declare("at", "loc"); err != nil {
		t.Fatal(err)
	}
	if err := d.Predicates.Declare("visited", "loc"); err != nil {
		t.Fatal(err)
	}
	if err := d.Predicates.Declare("road", "loc", "loc"); err != nil {
		t.Fatal(err)
	}
	if err := d.Predicates.Declare("blocked", "loc"); err != nil {
		t.Fatal(err)
	}
	move := &lifted.ActionSchema{
		Name:   "move",
		Params: []lifted.Parameter{{Name: "x", Type: "loc"}, {Name: "y", Type: "loc"}},
		Precond: []lifted.Literal{
			{Predicate: "at", Args: []lifted.Term{lifted.Var("x")}},
			{Predicate: "road", Args: []lifted.Term{lifted.Var("x"), lifted.Var("y")}},
			{Predicate: "blocked", Args: []lifted.Term{lifted.Var("y")}, Negated: true},
		},
		Effect: lifted.Effect{
			Adds: []lifted.Literal{
				{Predicate: "at", Args: []lifted.Term{lifted.Var("y")}},
				{Predicate: "visited", Args: []lifted.Term{lifted.Var("y")}},
			},
			Deletes: []lifted.Literal{
				{Predicate: "at", Args: []lifted.Term{lifted.Var("x")}},
			},
		},
	}
	d.Actions = append(d.Actions, move)
	d.ResolveStatics()
	if err := d.Validate(); err != nil {
		t.Fatal(err)
	}

	objs := lifted.NewObjectUniverse(d.Types)
	for _, o := range []string{"a", "b", "c"} {
		if err := objs.Add(o, "loc"); err != nil {
			t.Fatal(err)
		}
	}
	p := lifted.NewProblem("roads-problem", d, objs)
	p.Init = []lifted.GroundAtom{
		{Predicate: "at", Args: []string{"a"}},
		{Predicate: "road", Args: []string{"a", "b"}},
		{Predicate: "road", Args: []string{"b", "c"}},
		{Predicate: "road", Args: []string{"a", "c"}},
		{Predicate: "blocked", Args: []string{"b"}},
	}
	p.Goal = lifted.Goal{Conjuncts: []lifted.Literal{{Predicate: "at", Args: []lifted.Term{lifted.Const("c")}}}}
	if err := p.Validate(); err != nil {
		t.Fatal(err)
	}
	return p
}

func sortedAtoms(atoms []fact.GroundAtom) []string {
	out := make([]string, len(atoms))
	for i, a := range atoms {
		out[i] = a.String()
	}
	sort.Strings(out)
	return out
}

func sortedOpNames(ops []*RawOperator) []string {
	out := make([]string, len(ops))
	for i, op := range ops {
		out[i] = op.DisplayName
	}
	sort.Strings(out)
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// TestDatalogAgreesWithRelationalReachability grounds the same lifted
// problem through both C3 back-ends and checks they compute the same
// reachable dynamic atoms, the same ground operator set, and the same
// solvability verdict. blocked(b) gives both back-ends a negated-precondition
// edge to reject identically, and the a->b->c vs a->c routes give them a
// static join to agree on.
func TestDatalogAgreesWithRelationalReachability(t *testing.T) {
	p := buildRoadDomain(t)

	rel, err := RunRelational(context.Background(), p, DefaultConfig())
	if err != nil {
		t.Fatalf("RunRelational: %v", err)
	}
	dl, err := RunDatalog(p, Config{Backend: Datalog})
	if err != nil {
		t.Fatalf("RunDatalog: %v", err)
	}

	if rel.Unsolvable != dl.Unsolvable {
		t.Fatalf("unsolvable mismatch: relational=%v datalog=%v", rel.Unsolvable, dl.Unsolvable)
	}
	if rel.Unsolvable {
		t.Fatal("expected the roads problem to be solvable: move a c is available")
	}

	wantAtoms := []string{"(at a)", "(at c)", "(visited c)"}
	if got := sortedAtoms(rel.Table.Dynamic.All()); !equalStrings(got, wantAtoms) {
		t.Errorf("relational dynamic atoms = %v, want %v", got, wantAtoms)
	}
	if got := sortedAtoms(dl.Table.Dynamic.All()); !equalStrings(got, wantAtoms) {
		t.Errorf("datalog dynamic atoms = %v, want %v", got, wantAtoms)
	}

	wantOps := []string{"move a c"}
	if got := sortedOpNames(rel.Operators); !equalStrings(got, wantOps) {
		t.Errorf("relational operators = %v, want %v (move a b must be excluded: blocked(b))", got, wantOps)
	}
	if got := sortedOpNames(dl.Operators); !equalStrings(got, wantOps) {
		t.Errorf("datalog operators = %v, want %v (move a b must be excluded: blocked(b))", got, wantOps)
	}
}

func TestGroundRejectsLayeredDatalogBackend(t *testing.T) {
	p := buildRoadDomain(t)
	_, err := Ground(context.Background(), p, Config{Backend: Datalog, MaxLayers: 3})
	if err == nil {
		t.Fatal("expected an error for a layered run against the datalog backend")
	}
	gerr, ok := err.(Error)
	if !ok {
		t.Fatalf("expected a ground.Error, got %T", err)
	}
	if gerr.Kind != "UnsupportedLayeredBackend" {
		t.Errorf("unexpected error kind %q", gerr.Kind)
	}
}

func TestRunDatalogRejectsLayeredConfigDirectly(t *testing.T) {
	p := buildRoadDomain(t)
	if _, err := RunDatalog(p, Config{Backend: Datalog, MaxAtoms: 10}); err == nil {
		t.Fatal("expected RunDatalog to reject a MaxAtoms-bounded config even when called directly")
	}
}
