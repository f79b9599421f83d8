package shared

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// ObjectIDLength is the byte length of ledger object IDs and account addresses.
const ObjectIDLength = 32

// NormalizeObjectID returns the canonical 0x-prefixed, zero-padded, lower-case
// form of an object ID. Short forms such as "0x2" are accepted.
func NormalizeObjectID(raw string) (string, error) {
	candidate := strings.ToLower(strings.TrimSpace(raw))
	candidate = strings.TrimPrefix(candidate, "0x")
	if candidate == "" {
		return "", fmt.Errorf("object ID is required")
	}
	if len(candidate) > ObjectIDLength*2 {
		return "", fmt.Errorf("object ID %q is longer than %d bytes", raw, ObjectIDLength)
	}

	padded := strings.Repeat("0", ObjectIDLength*2-len(candidate)) + candidate
	if _, err := hex.DecodeString(padded); err != nil {
		return "", fmt.Errorf("object ID %q is not hex", raw)
	}
	return "0x" + padded, nil
}

// NormalizeAddress normalizes an account address. Addresses share the object ID format.
func NormalizeAddress(raw string) (string, error) {
	address, err := NormalizeObjectID(raw)
	if err != nil {
		return "", fmt.Errorf("invalid address: %w", err)
	}
	return address, nil
}

// SameObjectID reports whether two IDs normalize to the same value.
func SameObjectID(left string, right string) bool {
	normalizedLeft, leftErr := NormalizeObjectID(left)
	normalizedRight, rightErr := NormalizeObjectID(right)
	return leftErr == nil && rightErr == nil && normalizedLeft == normalizedRight
}
