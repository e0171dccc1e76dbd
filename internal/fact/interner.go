package fact

// Interner hash-cons GroundAtoms to dense, permanent integer ids in
// insertion order. It implements the common machinery shared by the
// dynamic and static atom tables (spec §4.1): insert-or-find, lookup by id,
// lookup by (predicate, args).
type Interner struct {
	atoms []GroundAtom
	index map[string]int
}

// NewInterner returns an empty interner.
func NewInterner() *Interner {
	return &Interner{index: make(map[string]int)}
}

// Intern returns the dense id for (predicate, args), inserting a new entry
// if the atom has not been seen before. isNew reports whether this call
// performed the insertion.
func (in *Interner) Intern(predicate string, args []string) (id int, isNew bool) {
	key := encodeKey(predicate, args)
	if existing, ok := in.index[key]; ok {
		return existing, false
	}
	id = len(in.atoms)
	argsCopy := append([]string(nil), args...)
	in.atoms = append(in.atoms, GroundAtom{Predicate: predicate, Args: argsCopy})
	in.index[key] = id
	return id, true
}

// Find looks up an already-interned atom without inserting.
func (in *Interner) Find(predicate string, args []string) (id int, ok bool) {
	id, ok = in.index[encodeKey(predicate, args)]
	return id, ok
}

// Atom returns the ground atom for a previously assigned id. Panics on an
// out-of-range id, which indicates a caller bug (ids are only ever handed
// out by Intern).
func (in *Interner) Atom(id int) GroundAtom {
	return in.atoms[id]
}

// Len returns the number of distinct atoms interned so far.
func (in *Interner) Len() int { return len(in.atoms) }

// All returns every interned atom in id order (index i has id i).
func (in *Interner) All() []GroundAtom {
	out := make([]GroundAtom, len(in.atoms))
	copy(out, in.atoms)
	return out
}
