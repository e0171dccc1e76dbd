package strips

import (
	"context"
	"testing"

	"stripsplan/internal/ground"
	"stripsplan/internal/lifted"
)

// buildMoveProblem grounds spec.md §8 scenario 2 ("one-step"): at(x), two
// objects, a single move(x,y) schema, init at(a), goal at(b), no metric
// (so unit-cost, as the DSL converter marks a metric-less problem).
func buildMoveProblem(t *testing.T) *lifted.Problem {
	t.Helper()
	d := lifted.NewDomain("move-domain")
	if err := d.Types.Declare("loc"); err != nil {
		t.Fatal(err)
	}
	if err := d.Predicates.Declare("at", "loc"); err != nil {
		t.Fatal(err)
	}
	move := &lifted.ActionSchema{
		Name:   "move",
		Params: []lifted.Parameter{{Name: "x", Type: "loc"}, {Name: "y", Type: "loc"}},
		Precond: []lifted.Literal{
			{Predicate: "at", Args: []lifted.Term{lifted.Var("x")}},
		},
		Effect: lifted.Effect{
			Adds:    []lifted.Literal{{Predicate: "at", Args: []lifted.Term{lifted.Var("y")}}},
			Deletes: []lifted.Literal{{Predicate: "at", Args: []lifted.Term{lifted.Var("x")}}},
		},
	}
	d.Actions = append(d.Actions, move)
	d.ResolveStatics()
	if err := d.Validate(); err != nil {
		t.Fatal(err)
	}

	objs := lifted.NewObjectUniverse(d.Types)
	for _, o := range []string{"a", "b"} {
		if err := objs.Add(o, "loc"); err != nil {
			t.Fatal(err)
		}
	}
	p := lifted.NewProblem("move-problem", d, objs)
	p.Init = []lifted.GroundAtom{{Predicate: "at", Args: []string{"a"}}}
	p.Goal = lifted.Goal{Conjuncts: []lifted.Literal{{Predicate: "at", Args: []lifted.Term{lifted.Const("b")}}}}
	p.UnitCostMetric = true
	if err := p.Validate(); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestAssembleOneStepScenario(t *testing.T) {
	p := buildMoveProblem(t)
	res, err := ground.Ground(context.Background(), p, ground.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	if res.Unsolvable {
		t.Fatal("expected the move problem to be solvable at grounding time")
	}

	task, err := Assemble(res, p, ground.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	if task.Unsolvable {
		t.Fatal("expected a solvable task")
	}
	if len(task.Goal) != 1 {
		t.Fatalf("expected exactly one goal literal, got %d", len(task.Goal))
	}
	if len(task.Operators) == 0 {
		t.Fatal("expected at least one grounded operator")
	}

	state := map[Fact]bool{}
	for _, f := range task.Init {
		state[f] = true
	}
	if task.IsGoal(state) {
		t.Fatal("initial state should not already satisfy the goal")
	}

	var moveAB *Operator
	for _, op := range task.Operators {
		if op.Name == "move a b" {
			moveAB = op
		}
	}
	if moveAB == nil {
		t.Fatal("expected a grounded \"move a b\" operator")
	}
	if !moveAB.Applicable(state) {
		t.Fatal("move a b should be applicable in the initial state")
	}
	next := moveAB.Apply(state)
	if !task.IsGoal(next) {
		t.Error("applying move a b should reach the goal")
	}
	if moveAB.Cost != 1 {
		t.Errorf("expected unit cost, got %d", moveAB.Cost)
	}
}

func TestAssembleGroundingUnsolvableShortCircuits(t *testing.T) {
	d := lifted.NewDomain("empty")
	d.Types.Declare("obj")
	d.Predicates.Declare("p", "obj")
	d.ResolveStatics()

	objs := lifted.NewObjectUniverse(d.Types)
	objs.Add("a", "obj")
	p := lifted.NewProblem("unsolvable", d, objs)
	p.Goal = lifted.Goal{Conjuncts: []lifted.Literal{{Predicate: "p", Args: []lifted.Term{lifted.Const("a")}}}}

	res, err := ground.Ground(context.Background(), p, ground.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	if !res.Unsolvable {
		t.Fatal("expected grounding to flag the goal as unreachable")
	}

	task, err := Assemble(res, p, ground.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	if !task.Unsolvable {
		t.Fatal("expected the assembled task to be marked unsolvable")
	}
	if len(task.Operators) != 0 {
		t.Error("the degenerate unsolvable task should carry no operators")
	}
}

func TestAssembleKeepStaticFacts(t *testing.T) {
	d := lifted.NewDomain("gate")
	d.Types.Declare("obj")
	d.Predicates.Declare("open", "obj")
	d.Predicates.Declare("unlocked", "obj")
	schema := &lifted.ActionSchema{
		Name:   "go-through",
		Params: []lifted.Parameter{{Name: "x", Type: "obj"}},
		Precond: []lifted.Literal{
			{Predicate: "unlocked", Args: []lifted.Term{lifted.Var("x")}},
		},
		Effect: lifted.Effect{
			Adds: []lifted.Literal{{Predicate: "open", Args: []lifted.Term{lifted.Var("x")}}},
		},
	}
	d.Actions = append(d.Actions, schema)
	d.ResolveStatics()
	if err := d.Validate(); err != nil {
		t.Fatal(err)
	}

	objs := lifted.NewObjectUniverse(d.Types)
	objs.Add("door", "obj")
	p := lifted.NewProblem("gate-problem", d, objs)
	p.Init = []lifted.GroundAtom{{Predicate: "unlocked", Args: []string{"door"}}}
	p.Goal = lifted.Goal{Conjuncts: []lifted.Literal{{Predicate: "open", Args: []lifted.Term{lifted.Const("door")}}}}

	cfg := ground.DefaultConfig()
	cfg.KeepStaticFacts = true
	res, err := ground.Ground(context.Background(), p, cfg)
	if err != nil {
		t.Fatal(err)
	}

	task, err := Assemble(res, p, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if task.Unsolvable {
		t.Fatal("expected a solvable task")
	}

	foundUnlocked := false
	for _, name := range task.FactNames {
		if name == "(unlocked door)" {
			foundUnlocked = true
		}
	}
	if !foundUnlocked {
		t.Error("expected the static unlocked(door) fact to be retained with KeepStaticFacts")
	}
}
