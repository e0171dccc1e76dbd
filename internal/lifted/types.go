package lifted

// TypeName identifies a node in the type lattice. "object" is the
// conventional top type: every declared type is, directly or transitively,
// a subtype of it.
type TypeName string

const TopType TypeName = "object"

// TypeSet is a DAG of named types with a single top type. Each object
// belongs to exactly one minimal (declared) type and transitively to all
// of that type's supertypes.
type TypeSet struct {
	parents map[TypeName][]TypeName
	// descendants is reset by Declare and not otherwise read; IsSubtype
	// walks parents directly.
	descendants map[TypeName]map[TypeName]bool
}

// NewTypeSet returns an empty type set seeded with the top type.
func NewTypeSet() *TypeSet {
	return &TypeSet{
		parents:     map[TypeName][]TypeName{TopType: nil},
		descendants: nil,
	}
}

// Declare adds a type with the given direct parents. If parents is empty the
// type is made a direct child of TopType. Declare is idempotent for a type
// declared with the same parents twice; it is an error to redeclare a type
// with different parents.
func (ts *TypeSet) Declare(name TypeName, parents ...TypeName) error {
	if len(parents) == 0 {
		parents = []TypeName{TopType}
	}
	for _, p := range parents {
		if p != TopType {
			if _, ok := ts.parents[p]; !ok {
				return errUnknownType(string(p))
			}
		}
	}
	if existing, ok := ts.parents[name]; ok {
		if !sameTypeSlice(existing, parents) {
			return Error{Kind: "ConflictingType", Message: "type " + string(name) + " redeclared with different parents"}
		}
		return nil
	}
	ts.parents[name] = append([]TypeName{}, parents...)
	ts.descendants = nil
	return nil
}

func sameTypeSlice(a, b []TypeName) bool {
	if len(a) != len(b) {
		return false
	}
	seen := make(map[TypeName]bool, len(a))
	for _, t := range a {
		seen[t] = true
	}
	for _, t := range b {
		if !seen[t] {
			return false
		}
	}
	return true
}

// Has reports whether name has been declared (TopType always counts).
func (ts *TypeSet) Has(name TypeName) bool {
	_, ok := ts.parents[name]
	return ok
}

// Names returns every declared type name, including TopType, in
// unspecified order.
func (ts *TypeSet) Names() []TypeName {
	out := make([]TypeName, 0, len(ts.parents))
	for t := range ts.parents {
		out = append(out, t)
	}
	return out
}

// IsSubtype reports whether sub is sub, or equal to, super in the lattice.
func (ts *TypeSet) IsSubtype(sub, super TypeName) bool {
	if sub == super || super == TopType {
		return true
	}
	visited := map[TypeName]bool{}
	var walk func(TypeName) bool
	walk = func(t TypeName) bool {
		if visited[t] {
			return false
		}
		visited[t] = true
		for _, p := range ts.parents[t] {
			if p == super || walk(p) {
				return true
			}
		}
		return false
	}
	return walk(sub)
}

// ObjectUniverse is the finite set of named objects, each assigned its
// minimal declared type.
type ObjectUniverse struct {
	types    *TypeSet
	objType  map[string]TypeName
	byType   map[TypeName][]string
	order    []string
}

func NewObjectUniverse(ts *TypeSet) *ObjectUniverse {
	return &ObjectUniverse{
		types:   ts,
		objType: make(map[string]TypeName),
		byType:  make(map[TypeName][]string),
	}
}

// Add registers an object of the given minimal type. The type must already
// be declared in the universe's TypeSet.
func (u *ObjectUniverse) Add(name string, minimalType TypeName) error {
	if !u.types.Has(minimalType) {
		return errUnknownType(string(minimalType))
	}
	if existing, ok := u.objType[name]; ok {
		if existing != minimalType {
			return Error{Kind: "ConflictingObject", Message: "object " + name + " redeclared with a different type"}
		}
		return nil
	}
	u.objType[name] = minimalType
	u.byType[minimalType] = append(u.byType[minimalType], name)
	u.order = append(u.order, name)
	return nil
}

// Has reports whether name is a declared object.
func (u *ObjectUniverse) Has(name string) bool {
	_, ok := u.objType[name]
	return ok
}

// TypeOf returns the minimal declared type of an object.
func (u *ObjectUniverse) TypeOf(name string) (TypeName, error) {
	t, ok := u.objType[name]
	if !ok {
		return "", errUnknownObject(name)
	}
	return t, nil
}

// IsA reports whether object belongs (directly or transitively) to t.
func (u *ObjectUniverse) IsA(object string, t TypeName) bool {
	own, ok := u.objType[object]
	if !ok {
		return false
	}
	return u.types.IsSubtype(own, t)
}

// Objects returns every declared object, in declaration order.
func (u *ObjectUniverse) Objects() []string {
	out := make([]string, len(u.order))
	copy(out, u.order)
	return out
}

// ObjectsOfType returns every object whose minimal type is a subtype of t,
// in declaration order.
func (u *ObjectUniverse) ObjectsOfType(t TypeName) []string {
	var out []string
	for _, name := range u.order {
		if u.IsA(name, t) {
			out = append(out, name)
		}
	}
	return out
}

func (u *ObjectUniverse) Len() int { return len(u.order) }
