// Package mint assembles the create-collection and mint transactions of the
// dropforge Move module, submits them through a Submitter and patches the
// local collection cache once the ledger confirms.
package mint
