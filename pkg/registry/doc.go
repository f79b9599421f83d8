// Package registry resolves which collections an account owns by walking the
// on-chain launchpad registry: the registry object holds a user_collections
// table whose dynamic fields are keyed by account address and hold the list
// of collection IDs created by that account.
//
// An account without an entry has simply never published and resolves to an
// empty list without error.
package registry
