// Package ledger is a JSON-RPC 2.0 client for the object ledger's full node.
// It covers the read surface the DropForge SDK depends on (objects, dynamic
// field lookups and scans, transaction blocks) and the execute path used to
// submit signed mint and create-collection transactions.
//
// Object content is returned as a move.Value so callers decode ledger values
// through the tagged decoder instead of raw JSON. Numbers are decoded as
// json.Number, which keeps u64 values intact.
package ledger
