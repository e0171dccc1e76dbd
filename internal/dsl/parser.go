// Package dsl implements a compact S-expression surface syntax for STRIPS
// domains and problems, parsed with participle into lifted.Domain and
// lifted.Problem values. The grammar is a restricted, unadorned subset of
// PDDL: typed lists, conjunctive preconditions and goals, equality
// literals, non-nesting conditional effects, and a single total-cost
// metric (see SPEC_FULL.md §3/§4).
package dsl

import (
	"stripsplan/internal/lifted"
)

// ParseDomain parses a (define (domain ...) ...) document into a validated
// lifted.Domain.
func ParseDomain(src string) (*lifted.Domain, error) {
	doc, err := parseDocument(src)
	if err != nil {
		return nil, err
	}
	if doc.Domain == nil {
		return nil, errSyntax("ExpectedDomain", "input is a problem definition, not a domain")
	}
	return convertDomain(doc.Domain)
}

// ParseProblem parses a (define (problem ...) ...) document into a
// validated lifted.Problem over the given, already-parsed domain.
func ParseProblem(src string, domain *lifted.Domain) (*lifted.Problem, error) {
	doc, err := parseDocument(src)
	if err != nil {
		return nil, err
	}
	if doc.Problem == nil {
		return nil, errSyntax("ExpectedProblem", "input is a domain definition, not a problem")
	}
	return convertProblem(doc.Problem, domain)
}

func parseDocument(src string) (*Document, error) {
	doc, err := dslParser.ParseString("", src)
	if err != nil {
		return nil, errSyntax("ParseError", err.Error())
	}
	return doc, nil
}
