package dsl

import (
	"testing"

	"stripsplan/internal/lifted"
)

const gripperDomain = `
(define (domain gripper)
  (:types room ball gripper)
  (:predicates
    (at-robby ?r - room)
    (at ?b - ball ?r - room)
    (free ?g - gripper)
    (carry ?b - ball ?g - gripper))
  (:action move
    :parameters (?from - room ?to - room)
    :precondition (at-robby ?from)
    :effect (and (at-robby ?to) (not (at-robby ?from))))
  (:action pick
    :parameters (?b - ball ?r - room ?g - gripper)
    :precondition (and (at ?b ?r) (at-robby ?r) (free ?g))
    :effect (and (carry ?b ?g) (not (at ?b ?r)) (not (free ?g))))
  (:action drop
    :parameters (?b - ball ?r - room ?g - gripper)
    :precondition (and (carry ?b ?g) (at-robby ?r))
    :effect (and (at ?b ?r) (free ?g) (not (carry ?b ?g)))))
`

const gripperProblem = `
(define (problem gripper-1)
  (:domain gripper)
  (:objects
    room1 room2 - room
    ball1 - ball
    left - gripper)
  (:init
    (at-robby room1)
    (free left)
    (at ball1 room1))
  (:goal (at ball1 room2)))
`

func mustParseDomain(t *testing.T, src string) *lifted.Domain {
	t.Helper()
	d, err := ParseDomain(src)
	if err != nil {
		t.Fatalf("ParseDomain: %v", err)
	}
	return d
}

func TestParseDomainBuildsActionsAndPredicates(t *testing.T) {
	d := mustParseDomain(t, gripperDomain)

	if d.Name != "gripper" {
		t.Errorf("name = %q, want gripper", d.Name)
	}
	if len(d.Actions) != 3 {
		t.Fatalf("got %d actions, want 3", len(d.Actions))
	}

	var move *lifted.ActionSchema
	for _, a := range d.Actions {
		if a.Name == "move" {
			move = a
		}
	}
	if move == nil {
		t.Fatal("missing move action")
	}
	if len(move.Params) != 2 || move.Params[0].Name != "from" || move.Params[0].Type != "room" {
		t.Errorf("move params = %+v", move.Params)
	}
	if len(move.Precond) != 1 || move.Precond[0].Predicate != "at-robby" {
		t.Errorf("move precond = %+v", move.Precond)
	}
	if len(move.Effect.Adds) != 1 || len(move.Effect.Deletes) != 1 {
		t.Errorf("move effect = %+v", move.Effect)
	}
}

func TestParseDomainResolvesStaticsAndValidates(t *testing.T) {
	d := mustParseDomain(t, gripperDomain)

	if d.Predicates.IsStatic("at-robby") {
		t.Error("at-robby is mentioned in an effect, should be dynamic")
	}
}

func TestParseProblemBuildsInitAndGoal(t *testing.T) {
	d := mustParseDomain(t, gripperDomain)
	p, err := ParseProblem(gripperProblem, d)
	if err != nil {
		t.Fatalf("ParseProblem: %v", err)
	}

	if p.Name != "gripper-1" {
		t.Errorf("name = %q", p.Name)
	}
	if len(p.Init) != 3 {
		t.Errorf("got %d init atoms, want 3: %+v", len(p.Init), p.Init)
	}
	if len(p.Goal.Conjuncts) != 1 || p.Goal.Conjuncts[0].Predicate != "at" {
		t.Errorf("goal = %+v", p.Goal)
	}
	if !p.Objects.Has("room1") || !p.Objects.IsA("ball1", "ball") {
		t.Error("objects not registered as expected")
	}
	if !p.UnitCostMetric {
		t.Error("a problem with no :metric clause must be unit-cost")
	}
}

func TestParseProblemRejectsDomainMismatch(t *testing.T) {
	d := mustParseDomain(t, gripperDomain)
	bad := `
(define (problem mismatched)
  (:domain not-gripper)
  (:init)
  (:goal (at-robby room1)))
`
	if _, err := ParseProblem(bad, d); err == nil {
		t.Fatal("expected a domain mismatch error")
	}
}

func TestParseProblemRejectsVariableInInit(t *testing.T) {
	d := mustParseDomain(t, gripperDomain)
	bad := `
(define (problem bad-init)
  (:domain gripper)
  (:objects room1 - room)
  (:init (at-robby ?x))
  (:goal (at-robby room1)))
`
	if _, err := ParseProblem(bad, d); err == nil {
		t.Fatal("expected an unbound-constant error for a variable in :init")
	}
}

func TestParseDomainRejectsUndeclaredPredicate(t *testing.T) {
	bad := `
(define (domain bad)
  (:predicates (p ?x))
  (:action noop
    :parameters (?x)
    :precondition (q ?x)
    :effect (p ?x)))
`
	if _, err := ParseDomain(bad); err == nil {
		t.Fatal("expected an error for an undeclared predicate q")
	}
}

func TestParseDomainRejectsNegativePreconditionOnDynamicPredicate(t *testing.T) {
	bad := `
(define (domain bad)
  (:predicates (p ?x) (q ?x))
  (:action a1
    :parameters (?x)
    :precondition (not (p ?x))
    :effect (p ?x)))
`
	if _, err := ParseDomain(bad); err == nil {
		t.Fatal("expected an error: p is dynamic (appears in an effect), so negating it in a precondition is unsupported")
	}
}

func TestParseProblemFailsOnDomainInput(t *testing.T) {
	d := mustParseDomain(t, gripperDomain)
	if _, err := ParseProblem(gripperDomain, d); err == nil {
		t.Fatal("expected ParseProblem to reject a domain document")
	}
}

func TestParseDomainFailsOnProblemInput(t *testing.T) {
	if _, err := ParseDomain(gripperProblem); err == nil {
		t.Fatal("expected ParseDomain to reject a problem document")
	}
}

const costDomain = `
(define (domain logistics)
  (:types city)
  (:predicates (at ?c - city))
  (:action drive
    :parameters (?from - city ?to - city)
    :precondition (at ?from)
    :effect (and (at ?to) (not (at ?from)) (increase (total-cost) 5))))
`

const costProblem = `
(define (problem logistics-1)
  (:domain logistics)
  (:objects a b - city)
  (:init (at a))
  (:goal (at b))
  (:metric minimize (total-cost)))
`

func TestParseProblemWithRealMetricIsNotUnitCost(t *testing.T) {
	d := mustParseDomain(t, costDomain)
	p, err := ParseProblem(costProblem, d)
	if err != nil {
		t.Fatalf("ParseProblem: %v", err)
	}
	if p.UnitCostMetric {
		t.Error("a declared metric over a domain with real cost terms must not be forced to unit-cost")
	}
	if !d.HasMetric {
		t.Error("domain should be marked as having a metric after converting a problem that declares one")
	}
}

const zeroMetricProblem = `
(define (problem logistics-2)
  (:domain logistics-no-cost)
  (:objects a b - city)
  (:init (at a))
  (:goal (at b))
  (:metric minimize (total-cost)))
`

const noCostDomain = `
(define (domain logistics-no-cost)
  (:types city)
  (:predicates (at ?c - city))
  (:action drive
    :parameters (?from - city ?to - city)
    :precondition (at ?from)
    :effect (and (at ?to) (not (at ?from)))))
`

func TestParseProblemWithZeroMetricFallsBackToUnitCost(t *testing.T) {
	d := mustParseDomain(t, noCostDomain)
	p, err := ParseProblem(zeroMetricProblem, d)
	if err != nil {
		t.Fatalf("ParseProblem: %v", err)
	}
	if !p.UnitCostMetric {
		t.Error("a declared metric over a domain with no cost terms must still fall back to unit-cost")
	}
}

func TestConditionalEffectWithCost(t *testing.T) {
	src := `
(define (domain switches)
  (:predicates (on) (lit))
  (:action flip
    :parameters ()
    :precondition (on)
    :effect (and (not (on))
                 (when (and (lit)) (and (not (lit)) (increase (total-cost) 2))))))
`
	d := mustParseDomain(t, src)
	flip := d.Actions[0]
	if len(flip.Effect.Conditionals) != 1 {
		t.Fatalf("got %d conditionals, want 1", len(flip.Effect.Conditionals))
	}
	cond := flip.Effect.Conditionals[0]
	if len(cond.Condition) != 1 || cond.Condition[0].Predicate != "lit" {
		t.Errorf("condition = %+v", cond.Condition)
	}
	if len(cond.Deletes) != 1 || len(cond.Cost) != 1 {
		t.Errorf("conditional effect = %+v", cond)
	}
	if cond.Cost[0].Literal == nil || *cond.Cost[0].Literal != 2 {
		t.Errorf("conditional cost = %+v", cond.Cost[0])
	}
}

func TestEqualityLiteralInPrecondition(t *testing.T) {
	src := `
(define (domain eq)
  (:predicates (p ?x) (q ?x ?y))
  (:action a1
    :parameters (?x ?y)
    :precondition (and (p ?x) (not (= ?x ?y)))
    :effect (q ?x ?y)))
`
	d := mustParseDomain(t, src)
	precond := d.Actions[0].Precond
	if len(precond) != 2 {
		t.Fatalf("got %d precond literals, want 2", len(precond))
	}
	eq := precond[1]
	if eq.Predicate != lifted.EqualityPredicate || !eq.Negated {
		t.Errorf("equality literal = %+v", eq)
	}
}
