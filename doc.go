// The DropForge SDK for Go publishes NFT image batches to a Walrus-style blob
// store, registers them as collections on a Sui-style object ledger, and
// reconstructs collection state from the ledger and the blob store alone.
//
// # Packages
//
//   - blobstore: publisher/aggregator HTTP client and an in-memory store
//   - manifest: the JSON array of asset URLs that fixes token order
//   - publisher: upload, verify and manifest a batch of assets
//   - move: decoding of loosely typed ledger field values
//   - ledger: JSON-RPC client for object reads and transaction execution
//   - registry: owned-collection lookup through the registry table
//   - collection: collection reconstruction and a mint-aware state cache
//   - mint: create-collection and mint transaction assembly and submission
//   - signer: Ed25519 and secp256k1 transaction signing
//   - shared: network defaults, configuration and logging
//
// The dropforge command in cmd/dropforge exposes publish, collection listing,
// collection display and mint transaction assembly.
//
// # Installation
//
//	go get github.com/dropforge-labs/dropforge-sdk-go@latest
package dropforge_sdk_go
