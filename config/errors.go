package config

import (
	"errors"
	"fmt"
)

// ErrMalformedInput is matched by every *MalformedInputError.
var ErrMalformedInput = errors.New("malformed configuration input")

// MalformedInputError reports a fragment that is not a well-formed
// configuration tree: it references itself, holds a nil entry, or contains a
// value kind that has no configuration representation.
//
// Shape mismatches between a base and an overlay are never reported as
// MalformedInputError; the overlay simply wins.
type MalformedInputError struct {
	// Path locates the offending node, e.g. "plugins[0].options".
	// Empty for the root.
	Path string

	// Reason describes what is wrong with the node.
	Reason string
}

// Error implements the error interface.
func (e *MalformedInputError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %s", ErrMalformedInput, e.Reason)
	}
	return fmt.Sprintf("%s at %s: %s", ErrMalformedInput, e.Path, e.Reason)
}

// Is reports whether target is ErrMalformedInput.
func (e *MalformedInputError) Is(target error) bool {
	return target == ErrMalformedInput
}

func malformed(path, reason string) error {
	return &MalformedInputError{Path: path, Reason: reason}
}
