package move

import (
	"encoding/json"
	"math"
	"sort"
	"strconv"
)

// Kind identifies the shape of a Value.
type Kind int

const (
	KindAbsent Kind = iota
	KindText
	KindBytes
	KindNumber
	KindBool
	KindRecord
	KindList
)

func (k Kind) String() string {
	switch k {
	case KindAbsent:
		return "absent"
	case KindText:
		return "text"
	case KindBytes:
		return "bytes"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindRecord:
		return "record"
	case KindList:
		return "list"
	default:
		return "unknown"
	}
}

// Value is one classified node of a ledger value tree. The zero Value is Absent.
type Value struct {
	kind    Kind
	text    string
	bytes   []byte
	number  json.Number
	boolean bool
	fields  map[string]any
	items   []any
	typ     string
}

// Absent returns the explicit absence marker.
func Absent() Value {
	return Value{}
}

// Text wraps a native string.
func Text(value string) Value {
	return Value{kind: KindText, text: value}
}

// Bytes wraps a byte vector, the vector<u8> encoding of a string.
func Bytes(value []byte) Value {
	copied := make([]byte, len(value))
	copy(copied, value)
	return Value{kind: KindBytes, bytes: copied}
}

// FromJSON classifies a decoded JSON value. Numbers may be json.Number,
// float64 or any Go integer type. Arrays whose elements are all integers in
// 0..255 are classified as Bytes; other arrays, including empty ones, are Lists.
func FromJSON(raw any) Value {
	switch typed := raw.(type) {
	case nil:
		return Absent()
	case Value:
		return typed
	case string:
		return Text(typed)
	case bool:
		return Value{kind: KindBool, boolean: typed}
	case json.Number:
		return Value{kind: KindNumber, number: typed}
	case float64:
		if typed == math.Trunc(typed) && math.Abs(typed) < 1<<53 {
			return Value{kind: KindNumber, number: json.Number(strconv.FormatInt(int64(typed), 10))}
		}
		return Value{kind: KindNumber, number: json.Number(strconv.FormatFloat(typed, 'f', -1, 64))}
	case int:
		return Value{kind: KindNumber, number: json.Number(strconv.Itoa(typed))}
	case int64:
		return Value{kind: KindNumber, number: json.Number(strconv.FormatInt(typed, 10))}
	case uint64:
		return Value{kind: KindNumber, number: json.Number(strconv.FormatUint(typed, 10))}
	case []byte:
		return Bytes(typed)
	case map[string]any:
		value := Value{kind: KindRecord, fields: typed}
		if typeName, ok := typed["type"].(string); ok {
			value.typ = typeName
		}
		if wrapped, ok := typed["fields"].(map[string]any); ok {
			value.fields = wrapped
		}
		return value
	case []any:
		if encoded, ok := asByteVector(typed); ok {
			return Value{kind: KindBytes, bytes: encoded, items: typed}
		}
		return Value{kind: KindList, items: typed}
	default:
		return Absent()
	}
}

// Kind returns the shape of the value.
func (v Value) Kind() Kind {
	return v.kind
}

// IsAbsent reports whether the value is the absence marker.
func (v Value) IsAbsent() bool {
	return v.kind == KindAbsent
}

// Type returns the ledger type tag of a wrapped record, if any.
func (v Value) Type() string {
	return v.typ
}

// FieldNames returns the sorted field names of a record.
func (v Value) FieldNames() []string {
	if v.kind != KindRecord {
		return nil
	}
	names := make([]string, 0, len(v.fields))
	for name := range v.fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func asByteVector(items []any) ([]byte, bool) {
	if len(items) == 0 {
		return nil, false
	}

	encoded := make([]byte, 0, len(items))
	for _, item := range items {
		var number int64
		switch typed := item.(type) {
		case json.Number:
			parsed, err := typed.Int64()
			if err != nil {
				return nil, false
			}
			number = parsed
		case float64:
			if typed != math.Trunc(typed) {
				return nil, false
			}
			number = int64(typed)
		case int:
			number = int64(typed)
		default:
			return nil, false
		}
		if number < 0 || number > math.MaxUint8 {
			return nil, false
		}
		encoded = append(encoded, byte(number))
	}
	return encoded, true
}
