package config

import "fmt"

type Error struct {
	Kind    string
	Message string
}

func (e Error) Error() string {
	return fmt.Sprintf("config error (%v): %v", e.Kind, e.Message)
}

func errBadValue(msg string) error {
	return Error{Kind: "BadValue", Message: msg}
}
