package fact

// FunctionInterner hash-cons function atoms (e.g. a per-action cost term
// like `(distance ?x ?y)`) to dense ids, additionally storing the scalar
// value assigned at insertion — spec §4.1: "Function atoms additionally
// store a scalar value (action cost term, set at insertion)."
type FunctionInterner struct {
	inner  *Interner
	values []int64
}

func NewFunctionInterner() *FunctionInterner {
	return &FunctionInterner{inner: NewInterner()}
}

// Intern records (or updates) the scalar value of a function atom.
// Re-inserting the same atom with a different value overwrites the stored
// value in place — the id assignment itself is still permanent, consistent
// with C1's "duplicate insertion is idempotent" for identity purposes.
func (fi *FunctionInterner) Intern(predicate string, args []string, value int64) int {
	id, isNew := fi.inner.Intern(predicate, args)
	if isNew {
		fi.values = append(fi.values, value)
	} else {
		fi.values[id] = value
	}
	return id
}

func (fi *FunctionInterner) Find(predicate string, args []string) (id int, ok bool) {
	return fi.inner.Find(predicate, args)
}

func (fi *FunctionInterner) Value(id int) int64 { return fi.values[id] }

func (fi *FunctionInterner) Atom(id int) GroundAtom { return fi.inner.Atom(id) }

func (fi *FunctionInterner) Len() int { return fi.inner.Len() }
