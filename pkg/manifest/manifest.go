// Package manifest encodes and decodes the JSON array of asset URLs that
// enumerates a collection's tokens. The position of an entry is the token's
// mint ordinal.
package manifest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ContentType is the media type manifests are stored with.
const ContentType = "application/json"

var (
	// ErrEmpty reports a manifest that is empty or not a JSON array.
	ErrEmpty = errors.New("manifest is empty")
	// ErrInvalidEntry reports an array element that is not a non-empty string.
	ErrInvalidEntry = errors.New("manifest entry is invalid")
)

// Manifest is the ordered list of per-token asset references.
type Manifest []string

// Encode serializes the manifest as an indented JSON array.
func Encode(entries Manifest) ([]byte, error) {
	if len(entries) == 0 {
		return nil, ErrEmpty
	}
	for index, entry := range entries {
		if strings.TrimSpace(entry) == "" {
			return nil, fmt.Errorf("%w: index %d is blank", ErrInvalidEntry, index)
		}
	}
	return json.MarshalIndent([]string(entries), "", "  ")
}

// Decode parses a manifest. Empty input, JSON that is not an array and empty
// arrays are all ErrEmpty.
func Decode(data []byte) (Manifest, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, ErrEmpty
	}

	var raw []any
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmpty, err)
	}
	if len(raw) == 0 {
		return nil, ErrEmpty
	}

	entries := make(Manifest, 0, len(raw))
	for index, item := range raw {
		entry, ok := item.(string)
		if !ok || strings.TrimSpace(entry) == "" {
			return nil, fmt.Errorf("%w: index %d", ErrInvalidEntry, index)
		}
		entries = append(entries, strings.TrimSpace(entry))
	}
	return entries, nil
}

// Equal reports whether both manifests list the same entries in the same order.
func Equal(left Manifest, right Manifest) bool {
	if len(left) != len(right) {
		return false
	}
	for index := range left {
		if left[index] != right[index] {
			return false
		}
	}
	return true
}

// Resolve canonicalizes every entry with urlFor, which maps a bare blob
// identifier to its read URL. Entries that are already http(s) URLs are kept.
func (m Manifest) Resolve(urlFor func(blobID string) string) Manifest {
	resolved := make(Manifest, len(m))
	for index, entry := range m {
		resolved[index] = CanonicalURL(entry, urlFor)
	}
	return resolved
}

// CanonicalURL returns ref unchanged when it is an http(s) URL and
// urlFor(ref) otherwise.
func CanonicalURL(ref string, urlFor func(blobID string) string) string {
	trimmed := strings.TrimSpace(ref)
	lower := strings.ToLower(trimmed)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return trimmed
	}
	if urlFor == nil {
		return trimmed
	}
	return urlFor(trimmed)
}
