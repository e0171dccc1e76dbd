package lifted

// EqualityPredicate is the distinguished static predicate with fixed
// semantics: equal(x, x) holds for every object x of the appropriate type,
// and for no other pair.
const EqualityPredicate = "="

// Predicate is (name, arity, parameter-type-vector, is-static). A predicate
// is static iff no action schema's effect mentions it; that flag is
// resolved once all schemas are known (see Domain.ResolveStatics) and is
// not user-declared directly except for the built-in equality predicate.
type Predicate struct {
	Name      string
	ParamTypes []TypeName
	static    bool
}

func (p Predicate) Arity() int { return len(p.ParamTypes) }

// PredicateTable holds every declared predicate by name.
type PredicateTable struct {
	byName map[string]*Predicate
	order  []string
}

func NewPredicateTable() *PredicateTable {
	t := &PredicateTable{byName: make(map[string]*Predicate)}
	t.declare(&Predicate{Name: EqualityPredicate, ParamTypes: []TypeName{TopType, TopType}, static: true})
	return t
}

func (t *PredicateTable) declare(p *Predicate) {
	t.byName[p.Name] = p
	t.order = append(t.order, p.Name)
}

// Declare adds a predicate with the given parameter types. Redeclaring the
// same name with the same arity is idempotent; a mismatched arity is an
// error.
func (t *PredicateTable) Declare(name string, paramTypes ...TypeName) error {
	if existing, ok := t.byName[name]; ok {
		if existing.Arity() != len(paramTypes) {
			return errArityMismatch(name, existing.Arity(), len(paramTypes))
		}
		return nil
	}
	t.declare(&Predicate{Name: name, ParamTypes: append([]TypeName{}, paramTypes...)})
	return nil
}

func (t *PredicateTable) Lookup(name string) (*Predicate, error) {
	p, ok := t.byName[name]
	if !ok {
		return nil, errUnknownPredicate(name)
	}
	return p, nil
}

func (t *PredicateTable) Has(name string) bool {
	_, ok := t.byName[name]
	return ok
}

// IsStatic reports whether a predicate is static. Meaningful only after
// Domain.ResolveStatics has run; until then every non-equality predicate
// reports false.
func (t *PredicateTable) IsStatic(name string) bool {
	p, ok := t.byName[name]
	return ok && p.static
}

// Names returns every declared predicate name in declaration order.
func (t *PredicateTable) Names() []string {
	out := make([]string, len(t.order))
	copy(out, t.order)
	return out
}

// markDynamic clears the static flag for a predicate mentioned in some
// schema's effect. The equality predicate can never be marked dynamic.
func (t *PredicateTable) markDynamic(name string) {
	if name == EqualityPredicate {
		return
	}
	if p, ok := t.byName[name]; ok {
		p.static = false
	}
}

func (t *PredicateTable) markAllStaticExceptMentioned(dynamicNames map[string]bool) {
	for name, p := range t.byName {
		if name == EqualityPredicate {
			continue
		}
		p.static = !dynamicNames[name]
	}
}
