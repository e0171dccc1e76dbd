package search

import "fmt"

// Error is search's package-local error type, matching the {Kind, Message}
// convention used throughout (see lifted.Error, ground.Error, strips.Error).
type Error struct {
	Kind    string
	Message string
}

func (e Error) Error() string {
	return fmt.Sprintf("search error (%v): %v", e.Kind, e.Message)
}

func errBadConfig(msg string) error {
	return Error{Kind: "BadConfig", Message: msg}
}
