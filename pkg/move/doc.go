// Package move decodes the generic, weakly-typed object representation
// returned by the ledger's JSON-RPC API into typed application values.
//
// Ledger responses nest domain values under layers of type wrappers
// ({"type": ..., "fields": {...}}) and may represent the same logical string
// either as a JSON string or as a vector<u8> byte array depending on the
// declared type of the entry point that wrote it. The decoder classifies every
// value into a closed set of shapes (Absent, Text, Bytes, Number, Bool,
// Record, List) and offers one decode function per target type, so callers
// never branch on raw JSON.
package move
