package move

import (
	"encoding/json"
	"strings"
	"testing"
)

func decodeJSON(t *testing.T, raw string) Value {
	t.Helper()
	decoder := json.NewDecoder(strings.NewReader(raw))
	decoder.UseNumber()
	var parsed any
	if err := decoder.Decode(&parsed); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return FromJSON(parsed)
}

func TestFromJSONClassifiesShapes(t *testing.T) {
	cases := []struct {
		raw  string
		kind Kind
	}{
		{raw: `null`, kind: KindAbsent},
		{raw: `"hello"`, kind: KindText},
		{raw: `[104, 105]`, kind: KindBytes},
		{raw: `[]`, kind: KindList},
		{raw: `["0x1", "0x2"]`, kind: KindList},
		{raw: `[1, 300]`, kind: KindList},
		{raw: `42`, kind: KindNumber},
		{raw: `true`, kind: KindBool},
		{raw: `{"fields": {"a": 1}}`, kind: KindRecord},
		{raw: `{"a": 1}`, kind: KindRecord},
	}

	for _, tc := range cases {
		if got := decodeJSON(t, tc.raw).Kind(); got != tc.kind {
			t.Fatalf("%s: expected %s, got %s", tc.raw, tc.kind, got)
		}
	}
}

func TestDecodeTextRoundTrip(t *testing.T) {
	inputs := []string{"", "DropForge", "ünïcödé ✓", "line\nbreak", "#42"}
	for _, input := range inputs {
		fromText, ok := DecodeText(Text(input))
		if !ok || fromText != input {
			t.Fatalf("text round trip failed for %q: %q %v", input, fromText, ok)
		}
		fromBytes, ok := DecodeText(Bytes([]byte(input)))
		if !ok || fromBytes != input {
			t.Fatalf("bytes round trip failed for %q: %q %v", input, fromBytes, ok)
		}
	}
}

func TestDecodeTextFromLedgerByteVector(t *testing.T) {
	value := decodeJSON(t, `{"type":"0x2::x::Y","fields":{"name":[68,114,111,112]}}`)
	name, ok := DecodeText(Field(value, "name"))
	if !ok || name != "Drop" {
		t.Fatalf("unexpected name: %q %v", name, ok)
	}
	if value.Type() != "0x2::x::Y" {
		t.Fatalf("unexpected type: %s", value.Type())
	}
}

func TestDecodeTextRejectsOtherShapes(t *testing.T) {
	rejected := []Value{
		Absent(),
		decodeJSON(t, `12`),
		decodeJSON(t, `true`),
		decodeJSON(t, `{"a":"b"}`),
		decodeJSON(t, `["a","b"]`),
		Bytes([]byte{0xff, 0xfe}),
	}
	for _, value := range rejected {
		if decoded, ok := DecodeText(value); ok {
			t.Fatalf("expected rejection for %s, got %q", value.Kind(), decoded)
		}
	}
}

func TestFieldAbsence(t *testing.T) {
	record := decodeJSON(t, `{"fields":{"name":"x"}}`)
	if !Field(record, "missing").IsAbsent() {
		t.Fatalf("expected absent for missing field")
	}
	if !Field(Text("x"), "name").IsAbsent() {
		t.Fatalf("expected absent for non-record")
	}
	if !Path(record, "name", "deeper").IsAbsent() {
		t.Fatalf("expected absent for path through text")
	}
}

func TestDecodeUint64(t *testing.T) {
	record := decodeJSON(t, `{"fields":{"a":"18446744073709551615","b":7,"c":"-1","d":"x"}}`)

	if value, ok := DecodeUint64(Field(record, "a")); !ok || value != 18446744073709551615 {
		t.Fatalf("unexpected a: %d %v", value, ok)
	}
	if value, ok := DecodeUint64(Field(record, "b")); !ok || value != 7 {
		t.Fatalf("unexpected b: %d %v", value, ok)
	}
	if _, ok := DecodeUint64(Field(record, "c")); ok {
		t.Fatalf("expected negative value to be rejected")
	}
	if _, ok := DecodeUint64(Field(record, "d")); ok {
		t.Fatalf("expected text value to be rejected")
	}
	if value, ok := DecodeUint64(FromJSON(float64(3))); !ok || value != 3 {
		t.Fatalf("unexpected float decode: %d %v", value, ok)
	}
}

func TestDecodeID(t *testing.T) {
	cases := map[string]string{
		`"0xabc"`:                          "0xabc",
		`{"id":"0xabc"}`:                   "0xabc",
		`{"fields":{"id":"0xabc"}}`:        "0xabc",
		`{"fields":{"id":{"id":"0xabc"}}}`: "0xabc",
	}
	for raw, expected := range cases {
		got, ok := DecodeID(decodeJSON(t, raw))
		if !ok || got != expected {
			t.Fatalf("%s: expected %s, got %q %v", raw, expected, got, ok)
		}
	}

	if _, ok := DecodeID(decodeJSON(t, `{"name":"x"}`)); ok {
		t.Fatalf("expected record without id to be rejected")
	}
	if _, ok := DecodeID(Text("  ")); ok {
		t.Fatalf("expected blank id to be rejected")
	}
}

func TestDecodeList(t *testing.T) {
	items, ok := DecodeList(decodeJSON(t, `["0x1","0x2"]`))
	if !ok || len(items) != 2 {
		t.Fatalf("unexpected list: %v %v", items, ok)
	}
	if id, _ := DecodeID(items[1]); id != "0x2" {
		t.Fatalf("unexpected second item: %s", id)
	}

	bytesItems, ok := DecodeList(Bytes([]byte{1, 2, 3}))
	if !ok || len(bytesItems) != 3 {
		t.Fatalf("unexpected byte list: %v %v", bytesItems, ok)
	}

	if _, ok := DecodeList(Text("x")); ok {
		t.Fatalf("expected text to be rejected")
	}
}
