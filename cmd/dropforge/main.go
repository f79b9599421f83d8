// dropforge publishes image batches to the blob store, inspects collections
// registered on the ledger and assembles mint transactions.
//
// Usage:
//
//	dropforge <command> [flags] [args]
//
// Commands:
//
//	publish      upload files and their manifest; optionally assemble create_collection
//	collections  list the collections owned by an account
//	show         reconstruct one collection with its token items
//	mint-tx      assemble the mint transaction for one token
//	creators     list every account with an entry in the registry
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
