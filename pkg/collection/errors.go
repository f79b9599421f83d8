package collection

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound reports a collection object that does not exist.
	ErrNotFound = errors.New("collection not found")
	// ErrCollectionMalformed reports a collection object missing a required field.
	ErrCollectionMalformed = errors.New("collection malformed")
	// ErrManifestEmpty reports a manifest that is empty or not a JSON array.
	ErrManifestEmpty = errors.New("collection manifest is empty")
	// ErrNotCached reports a cache operation on a collection that is not cached.
	ErrNotCached = errors.New("collection not cached")
)

// MalformedError names the collection and field that failed to decode.
type MalformedError struct {
	CollectionID string
	Field        string
	Reason       string
}

func (e MalformedError) Error() string {
	return fmt.Sprintf("collection %s field %q: %s", e.CollectionID, e.Field, e.Reason)
}

func (e MalformedError) Is(target error) bool {
	return target == ErrCollectionMalformed
}
