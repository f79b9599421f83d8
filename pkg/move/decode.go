package move

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// maxIDDepth bounds how deep DecodeID follows nested "id" fields.
const maxIDDepth = 4

// Field looks up name one level inside a record. Wrapped records
// ({"fields": {...}}) and plain objects are both accepted. Anything else,
// or a missing field, yields Absent.
func Field(value Value, name string) Value {
	if value.kind != KindRecord {
		return Absent()
	}
	raw, ok := value.fields[name]
	if !ok {
		return Absent()
	}
	return FromJSON(raw)
}

// Path applies Field once per name.
func Path(value Value, names ...string) Value {
	current := value
	for _, name := range names {
		current = Field(current, name)
	}
	return current
}

// DecodeText accepts a native string or a UTF-8 byte vector. An empty list is
// the empty vector<u8> and decodes to "". Every other shape, and byte vectors
// that are not valid UTF-8, report ok=false.
func DecodeText(value Value) (string, bool) {
	switch value.kind {
	case KindText:
		return value.text, true
	case KindBytes:
		if !utf8.Valid(value.bytes) {
			return "", false
		}
		return string(value.bytes), true
	case KindList:
		if len(value.items) == 0 {
			return "", true
		}
		return "", false
	default:
		return "", false
	}
}

// DecodeBytes returns the raw bytes of a byte vector or the UTF-8 bytes of a string.
func DecodeBytes(value Value) ([]byte, bool) {
	switch value.kind {
	case KindBytes:
		copied := make([]byte, len(value.bytes))
		copy(copied, value.bytes)
		return copied, true
	case KindText:
		return []byte(value.text), true
	case KindList:
		if len(value.items) == 0 {
			return []byte{}, true
		}
		return nil, false
	default:
		return nil, false
	}
}

// DecodeUint64 accepts JSON numbers and decimal strings, the ledger's
// encoding of u64 values.
func DecodeUint64(value Value) (uint64, bool) {
	var raw string
	switch value.kind {
	case KindNumber:
		raw = value.number.String()
	case KindText:
		raw = strings.TrimSpace(value.text)
	default:
		return 0, false
	}

	parsed, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return parsed, true
}

// DecodeBool accepts JSON booleans.
func DecodeBool(value Value) (bool, bool) {
	if value.kind != KindBool {
		return false, false
	}
	return value.boolean, true
}

// DecodeID extracts an object ID from a bare string, a UID ({"id": "0x..."})
// or an ID record wrapped in further "id"/"fields" layers.
func DecodeID(value Value) (string, bool) {
	current := value
	for depth := 0; depth <= maxIDDepth; depth++ {
		switch current.kind {
		case KindText:
			id := strings.TrimSpace(current.text)
			if id == "" {
				return "", false
			}
			return id, true
		case KindRecord:
			current = Field(current, "id")
		default:
			return "", false
		}
	}
	return "", false
}

// DecodeList returns the elements of a list. Byte vectors are lists too.
func DecodeList(value Value) ([]Value, bool) {
	if value.kind != KindList && value.kind != KindBytes {
		return nil, false
	}

	if value.kind == KindBytes && value.items == nil {
		items := make([]Value, 0, len(value.bytes))
		for _, b := range value.bytes {
			items = append(items, FromJSON(int(b)))
		}
		return items, true
	}

	items := make([]Value, 0, len(value.items))
	for _, item := range value.items {
		items = append(items, FromJSON(item))
	}
	return items, true
}
