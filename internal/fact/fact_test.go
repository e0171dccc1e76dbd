package fact

import "testing"

func TestInternerIdempotent(t *testing.T) {
	in := NewInterner()
	id1, isNew1 := in.Intern("on", []string{"a", "b"})
	if !isNew1 {
		t.Fatal("first insertion should be new")
	}
	id2, isNew2 := in.Intern("on", []string{"a", "b"})
	if isNew2 {
		t.Error("re-inserting the same atom should not be new")
	}
	if id1 != id2 {
		t.Errorf("re-inserting the same atom should return the same id, got %d and %d", id1, id2)
	}
}

func TestInternerDenseIds(t *testing.T) {
	in := NewInterner()
	a, _ := in.Intern("p", []string{"x"})
	b, _ := in.Intern("p", []string{"y"})
	c, _ := in.Intern("q", []string{"x"})
	if a != 0 || b != 1 || c != 2 {
		t.Errorf("expected dense ids 0,1,2 got %d,%d,%d", a, b, c)
	}
	if in.Len() != 3 {
		t.Errorf("expected 3 atoms, got %d", in.Len())
	}
}

func TestInternerDoesNotConfuseArityOrOrder(t *testing.T) {
	in := NewInterner()
	id1, _ := in.Intern("p", []string{"a", "b"})
	id2, _ := in.Intern("p", []string{"ab"})
	if id1 == id2 {
		t.Error("different argument tuples must not collide on id")
	}
}

func TestFunctionInternerStoresValue(t *testing.T) {
	fi := NewFunctionInterner()
	id := fi.Intern("distance", []string{"a", "b"}, 5)
	if fi.Value(id) != 5 {
		t.Errorf("expected value 5, got %d", fi.Value(id))
	}
	fi.Intern("distance", []string{"a", "b"}, 9)
	if fi.Value(id) != 9 {
		t.Errorf("re-interning should update the stored value, got %d", fi.Value(id))
	}
}

func TestTableFindEitherChecksBothTables(t *testing.T) {
	tbl := NewTable()
	tbl.Dynamic.Intern("at", []string{"a"})
	tbl.Static.Intern("type-of", []string{"a"})

	if _, origin, ok := tbl.FindEither("at", []string{"a"}); !ok || origin != Dynamic {
		t.Error("expected to find 'at' in the dynamic table")
	}
	if _, origin, ok := tbl.FindEither("type-of", []string{"a"}); !ok || origin != Static {
		t.Error("expected to find 'type-of' in the static table")
	}
	if _, _, ok := tbl.FindEither("missing", []string{"a"}); ok {
		t.Error("expected not to find an unknown atom")
	}
}
