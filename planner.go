// Package stripsplan is the top-level façade over the lifted-problem
// parser, the grounder, and the search driver: Load a domain/problem pair,
// Ground it into a propositional Task, and Solve it into a Plan.
package stripsplan

import (
	"context"

	"stripsplan/internal/dsl"
	"stripsplan/internal/ground"
	"stripsplan/internal/lifted"
	"stripsplan/internal/search"
	"stripsplan/internal/strips"
)

type (
	Domain  = lifted.Domain
	Problem = lifted.Problem
	Task    = strips.Task
	Plan    = search.Plan
	Status  = search.Status
)

const (
	StatusFound      = search.StatusFound
	StatusUnsolvable = search.StatusUnsolvable
	StatusAbort      = search.StatusAbort
)

// LoadDomain parses a domain definition written in the package's surface
// syntax (internal/dsl) into a validated lifted.Domain.
func LoadDomain(src string) (*Domain, error) {
	return dsl.ParseDomain(src)
}

// LoadProblem parses a problem definition over an already-loaded domain.
func LoadProblem(src string, d *Domain) (*Problem, error) {
	return dsl.ParseProblem(src, d)
}

// Ground runs C3/C4/C5: reachability analysis, operator materialization,
// and task assembly, producing the immutable propositional Task the search
// driver consumes.
func Ground(ctx context.Context, p *Problem, cfg ground.Config) (*Task, error) {
	res, err := ground.Ground(ctx, p, cfg)
	if err != nil {
		return nil, err
	}
	return strips.Assemble(res, p, cfg)
}

// Solve runs C6/C7 best-first search over an already-grounded Task.
func Solve(task *Task, cfg search.Config, stop <-chan struct{}) (*Plan, Status, *search.Stats, error) {
	return search.Run(task, cfg, stop)
}

// Render formats a found plan per spec.md §6's output format.
func Render(task *Task, plan *Plan) string {
	return search.Render(task, plan)
}

// Solution is the full pipeline, domain+problem source to plan, using the
// given grounding and search configuration.
func Solution(ctx context.Context, domainSrc, problemSrc string, gcfg ground.Config, scfg search.Config, stop <-chan struct{}) (*Task, *Plan, Status, *search.Stats, error) {
	d, err := LoadDomain(domainSrc)
	if err != nil {
		return nil, nil, StatusAbort, nil, err
	}
	p, err := LoadProblem(problemSrc, d)
	if err != nil {
		return nil, nil, StatusAbort, nil, err
	}
	task, err := Ground(ctx, p, gcfg)
	if err != nil {
		return nil, nil, StatusAbort, nil, err
	}
	plan, status, stats, err := Solve(task, scfg, stop)
	return task, plan, status, stats, err
}
