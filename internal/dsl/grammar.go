package dsl

import (
	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

var dslLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Keyword", Pattern: `(?i)\b(define|domain|problem|types|predicates|action|parameters|precondition|effect|and|not|when|increase|total-cost|objects|init|goal|metric|minimize)\b`},
	{Name: "Var", Pattern: `\?[a-zA-Z_][a-zA-Z0-9_-]*`},
	{Name: "Int", Pattern: `-?\d+`},
	{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_-]*`},
	{Name: "Punct", Pattern: `[():=-]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

// TermAST is either a schema variable (?x) or an object/constant name.
type TermAST struct {
	Var   *string `parser:"  @Var"`
	Const *string `parser:"| @Ident"`
}

// AtomAST is a parenthesized predicate application: (name arg arg ...).
type AtomAST struct {
	Predicate string     `parser:"\"(\" @Ident"`
	Args      []*TermAST `parser:"@@* \")\""`
}

// EqAST is the pair of terms inside an equality atom: (= t1 t2).
type EqAST struct {
	Left  *TermAST `parser:"@@"`
	Right *TermAST `parser:"@@"`
}

// LiteralAST is a (possibly negated, possibly equality) atom, used in
// preconditions, conditions, and goals.
type LiteralAST struct {
	NotEq    *EqAST   `parser:"  \"(\" \"not\" \"(\" \"=\" @@ \")\" \")\""`
	Eq       *EqAST   `parser:"| \"(\" \"=\" @@ \")\""`
	Negative *AtomAST `parser:"| \"(\" \"not\" @@ \")\""`
	Positive *AtomAST `parser:"| @@"`
}

// PreconditionAST is either an explicit (and lit lit ...) conjunction or a
// single bare literal, the same convention used for :precondition and
// :goal bodies.
type PreconditionAST struct {
	And     []*LiteralAST `parser:"  \"(\" \"and\" @@* \")\""`
	Literal *LiteralAST   `parser:"| @@"`
}

// FunctionRefAST is a reference to a numeric function atom, either in a
// cost-increase term or an :init function assignment.
type FunctionRefAST struct {
	Name string     `parser:"\"(\" @Ident"`
	Args []*TermAST `parser:"@@* \")\""`
}

// CostTermAST is the argument of an (increase (total-cost) ...) effect:
// either a literal amount or a function reference resolved at grounding
// time.
type CostTermAST struct {
	Int      *int64          `parser:"  @Int"`
	Function *FunctionRefAST `parser:"| @@"`
}

// IncreaseAST is a (increase (total-cost) <cost-term>) effect item.
type IncreaseAST struct {
	Amount *CostTermAST `parser:"\"(\" \"increase\" \"(\" \"total-cost\" \")\" @@ \")\""`
}

// InnerEffectItemAST is an effect item allowed inside a when block: a
// literal add/delete or its own cost increase, but never another when
// (conditionals do not nest).
type InnerEffectItemAST struct {
	Increase *IncreaseAST `parser:"  @@"`
	Negative *AtomAST     `parser:"| \"(\" \"not\" @@ \")\""`
	Positive *AtomAST     `parser:"| @@"`
}

// WhenAST is a (when (and cond...) (and effect...)) conditional effect
// block.
type WhenAST struct {
	Condition []*LiteralAST         `parser:"\"(\" \"when\" \"(\" \"and\" @@* \")\""`
	Effect    []*InnerEffectItemAST `parser:"\"(\" \"and\" @@* \")\" \")\""`
}

// EffectItemAST is one top-level effect item: a cost increase, a
// conditional block, or a plain add/delete literal.
type EffectItemAST struct {
	Increase *IncreaseAST `parser:"  @@"`
	When     *WhenAST     `parser:"| @@"`
	Negative *AtomAST     `parser:"| \"(\" \"not\" @@ \")\""`
	Positive *AtomAST     `parser:"| @@"`
}

// ActionEffectAST is either an explicit (and item item ...) conjunction or
// a single bare effect item.
type ActionEffectAST struct {
	And    []*EffectItemAST `parser:"  \"(\" \"and\" @@* \")\""`
	Single *EffectItemAST   `parser:"| @@"`
}

// VarGroup is a typed list fragment used for :parameters and :predicates
// argument lists: a run of variables sharing a declared type.
type VarGroup struct {
	Names []string `parser:"@Var+"`
	Type  *string  `parser:"( \"-\" @Ident )?"`
}

// TypedGroup is the same shape as VarGroup but for plain names: used for
// :types and :objects.
type TypedGroup struct {
	Names []string `parser:"@Ident+"`
	Type  *string  `parser:"( \"-\" @Ident )?"`
}

// PredicateDeclAST declares one predicate's name and typed parameter list.
type PredicateDeclAST struct {
	Name   string      `parser:"\"(\" @Ident"`
	Params []*VarGroup `parser:"@@* \")\""`
}

// ActionAST is one :action block.
type ActionAST struct {
	Name    string           `parser:"\"(\" \":\" \"action\" @Ident"`
	Params  []*VarGroup      `parser:"\":\" \"parameters\" \"(\" @@* \")\""`
	Precond *PreconditionAST `parser:"\":\" \"precondition\" @@"`
	Effect  *ActionEffectAST `parser:"\":\" \"effect\" @@ \")\""`
}

// DomainAST is the top-level (define (domain NAME) ...) form.
type DomainAST struct {
	Name       string              `parser:"\"(\" \"define\" \"(\" \"domain\" @Ident \")\""`
	Types      []*TypedGroup       `parser:"( \"(\" \":\" \"types\" @@* \")\" )?"`
	Predicates []*PredicateDeclAST `parser:"( \"(\" \":\" \"predicates\" @@* \")\" )?"`
	Actions    []*ActionAST        `parser:"@@* \")\""`
}

// InitItemAST is one :init fact: a ground atom or a numeric function
// assignment.
type InitItemAST struct {
	FuncAssign *FuncAssignAST `parser:"  \"(\" \"=\" @@ \")\""`
	Atom       *AtomAST       `parser:"| @@"`
}

// FuncAssignAST is the body of an (= (func args) value) init item.
type FuncAssignAST struct {
	Function *FunctionRefAST `parser:"@@"`
	Value    int64           `parser:"@Int"`
}

// MetricAST is the problem's optional (:metric minimize (total-cost))
// declaration. Only unit-weighted "minimize total-cost" is supported.
type MetricAST struct {
	Minimize bool `parser:"@\"minimize\" \"(\" \"total-cost\" \")\""`
}

// ProblemAST is the top-level (define (problem NAME) ...) form.
type ProblemAST struct {
	Name    string           `parser:"\"(\" \"define\" \"(\" \"problem\" @Ident \")\""`
	Domain  string           `parser:"\"(\" \":\" \"domain\" @Ident \")\""`
	Objects []*TypedGroup    `parser:"( \"(\" \":\" \"objects\" @@* \")\" )?"`
	Init    []*InitItemAST   `parser:"\"(\" \":\" \"init\" @@* \")\""`
	Goal    *PreconditionAST `parser:"\"(\" \":\" \"goal\" @@ \")\""`
	Metric  *MetricAST       `parser:"( \"(\" \":\" \"metric\" @@ \")\" )? \")\""`
}

// Document is the parser's top-level entry point: either a domain or a
// problem definition, the two halves spec.md §3/§4 describe as a single
// lifted problem instance.
type Document struct {
	Domain  *DomainAST  `parser:"  @@"`
	Problem *ProblemAST `parser:"| @@"`
}

var dslParser = participle.MustBuild[Document](
	participle.Lexer(dslLexer),
	participle.CaseInsensitive("Keyword"),
	participle.Elide("Whitespace"),
)
