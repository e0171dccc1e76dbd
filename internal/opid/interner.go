// Package opid implements C2: hash-consing ground action instances,
// identified by (schema id, secondary id, arg-tuple), to dense operator
// ids.
package opid

import "strings"

// Key identifies one ground action instance. Secondary distinguishes
// different conditional-effect branches grounded as separate operators
// from the same (schema, args) base action; 0 means "the base operator".
type Key struct {
	SchemaID  int
	Secondary int
	Args      []string
}

func encodeKey(k Key) string {
	var b strings.Builder
	b.WriteByte('s')
	writeInt(&b, k.SchemaID)
	b.WriteByte('/')
	writeInt(&b, k.Secondary)
	for _, a := range k.Args {
		b.WriteByte('\x1f')
		b.WriteString(a)
	}
	return b.String()
}

func writeInt(b *strings.Builder, n int) {
	if n == 0 {
		b.WriteByte('0')
		return
	}
	neg := n < 0
	if neg {
		n = -n
		b.WriteByte('-')
	}
	var digits [20]byte
	i := len(digits)
	for n > 0 {
		i--
		digits[i] = byte('0' + n%10)
		n /= 10
	}
	b.Write(digits[i:])
}

// Interner hash-cons Keys to dense ids in insertion order.
type Interner struct {
	keys  []Key
	index map[string]int
}

func NewInterner() *Interner {
	return &Interner{index: make(map[string]int)}
}

// Intern inserts (or finds) a Key, returning its id and whether this call
// performed the insertion.
func (in *Interner) Intern(k Key) (id int, isNew bool) {
	enc := encodeKey(k)
	if existing, ok := in.index[enc]; ok {
		return existing, false
	}
	id = len(in.keys)
	kc := Key{SchemaID: k.SchemaID, Secondary: k.Secondary, Args: append([]string(nil), k.Args...)}
	in.keys = append(in.keys, kc)
	in.index[enc] = id
	return id, true
}

func (in *Interner) Key(id int) Key { return in.keys[id] }

func (in *Interner) Len() int { return len(in.keys) }

// Finalize returns the set of ids (as a bool slice indexed by id) that must
// be discarded: those with a non-zero Secondary for which the primary
// (Secondary == 0) variant of the same (SchemaID, Args) was never interned
// — spec §4.2: "operators whose secondary id is non-zero but for which the
// primary variant is absent must be discarded (they would have no base
// effect)."
func (in *Interner) Finalize() []bool {
	hasPrimary := make(map[string]bool, len(in.keys))
	for _, k := range in.keys {
		if k.Secondary == 0 {
			hasPrimary[encodeKey(Key{SchemaID: k.SchemaID, Args: k.Args})] = true
		}
	}
	discard := make([]bool, len(in.keys))
	for id, k := range in.keys {
		if k.Secondary != 0 && !hasPrimary[encodeKey(Key{SchemaID: k.SchemaID, Args: k.Args})] {
			discard[id] = true
		}
	}
	return discard
}
