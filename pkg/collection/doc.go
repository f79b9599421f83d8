// Package collection reconstructs a collection's state from the ledger and
// the blob store: the on-chain record (name, supply, mint count, price and
// manifest reference) joined with the manifest that lists one image per
// token.
//
// Token mint status is derived from the record's minted count. A token is
// reported as minted when its ordinal is below minted_count. The ledger does
// not track which ordinal each mint consumed, so this is an approximation
// that misreports availability when tokens are minted out of manifest order.
//
// Cache keeps read-only copies of reconstructed state for display and layers
// local mint tracking on top of them (Submitted while a transaction is in
// flight, Optimistic once the ledger confirmed it but before a re-read).
package collection
