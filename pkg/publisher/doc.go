// Package publisher turns an ordered batch of assets into one verifiable
// manifest blob. Every asset is stored and probed before the manifest is
// assembled, and the uploaded manifest is read back and compared with the
// local copy before its reference is returned.
//
// A failed publish is not rolled back. Blobs stored before the failure stay
// in the store as orphaned, content-addressed data; callers resubmit the
// whole batch.
package publisher
