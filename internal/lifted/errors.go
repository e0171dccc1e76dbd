package lifted

import "fmt"

// Error reports a malformed-input or unsupported-feature condition detected
// while building or validating a lifted problem (spec §7, kinds 1 and 2).
type Error struct {
	Kind    string
	Message string
}

func (e Error) Error() string {
	return fmt.Sprintf("lifted problem error (%v): %v", e.Kind, e.Message)
}

func errUnknownType(name string) error {
	return Error{Kind: "UnknownType", Message: fmt.Sprintf("type %q is not declared", name)}
}

func errUnknownObject(name string) error {
	return Error{Kind: "UnknownObject", Message: fmt.Sprintf("object %q is not declared", name)}
}

func errUnknownPredicate(name string) error {
	return Error{Kind: "UnknownPredicate", Message: fmt.Sprintf("predicate %q is not declared", name)}
}

func errArityMismatch(predicate string, want, got int) error {
	return Error{
		Kind:    "ArityMismatch",
		Message: fmt.Sprintf("predicate %q expects %d argument(s), got %d", predicate, want, got),
	}
}

func errUnsupported(feature, detail string) error {
	return Error{Kind: "Unsupported:" + feature, Message: detail}
}
