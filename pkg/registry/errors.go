package registry

import (
	"errors"
	"fmt"
)

var (
	// ErrRegistryUnavailable reports that the registry object could not be read.
	ErrRegistryUnavailable = errors.New("registry unavailable")
	// ErrRegistryMalformed reports a registry or entry that does not have the expected shape.
	ErrRegistryMalformed = errors.New("registry malformed")
)

// MalformedError names the object and field whose shape was unexpected.
type MalformedError struct {
	ObjectID string
	Field    string
	Reason   string
}

func (e MalformedError) Error() string {
	return fmt.Sprintf("registry object %s field %q: %s", e.ObjectID, e.Field, e.Reason)
}

func (e MalformedError) Is(target error) bool {
	return target == ErrRegistryMalformed
}
