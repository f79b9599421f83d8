// Package blobstore is a client for a content-addressed blob store exposing
// the publisher/aggregator HTTP surface: blobs are written with
// PUT <publisher>/v1/blobs?epochs=N and read back with
// GET <aggregator>/v1/blobs/<id>.
//
// The store is opaque. The client performs no implicit retries, and re-putting
// identical bytes is safe but callers must not assume the returned identifier
// is stable across puts. MemoryStore implements the same Store contract in
// process and can serve the HTTP surface for tests and local development.
package blobstore
