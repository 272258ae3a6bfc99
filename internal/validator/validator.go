package validator

import (
	"maps"
	"slices"
	"strings"
)

type Validator interface {
	// Validate validates the fields of the struct and returns a map of errors.
	// returns nil if no errors are found
	Validate() map[string]string
}

// Error lists the offending fields of a rejected value, keyed by JSON name.
type Error struct {
	Fields map[string]string
}

func (e *Error) Error() string {
	return "invalid fields: " + strings.Join(slices.Sorted(maps.Keys(e.Fields)), ", ")
}

func Validate(v Validator) *Error {
	if fields := v.Validate(); len(fields) > 0 {
		return &Error{Fields: fields}
	}
	return nil
}
